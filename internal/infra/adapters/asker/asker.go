// asker implements the ports.ForAsking interface.
package asker

import (
	"context"
	"fmt"
	"os"
	"sort"

	"github.com/AlecAivazis/survey/v2"
	"github.com/sa6mwa/castsdown/internal/app/ports"
	"github.com/sa6mwa/castsdown/internal/infra/adapters/logger"
	"golang.org/x/term"
)

type forAsking struct {
	dryrun     bool
	force      bool
	isTerminal func() bool
	askOne     func(survey.Prompt, interface{}, ...survey.AskOpt) error
}

// asker.New returns a terminal backed ports.ForAsking. If dryrun is
// true every question is answered no, if force is true every question
// is answered yes. Choose is only interactive when stdout is a
// terminal.
func New(dryrun, force bool) ports.ForAsking {
	return &forAsking{
		dryrun: dryrun,
		force:  force,
		isTerminal: func() bool {
			return term.IsTerminal(int(os.Stdout.Fd()))
		},
		askOne: survey.AskOne,
	}
}

func (p *forAsking) Ask(ctx context.Context, format string, a ...any) bool {
	l := logger.FromContext(ctx)
	if p.dryrun {
		l.Info(fmt.Sprintf("%s No", fmt.Sprintf(format, a...)))
		return false
	}
	if p.force {
		l.Info(fmt.Sprintf("%s Yes", fmt.Sprintf(format, a...)))
		return true
	}
	return p.yes(ctx, format, a...)
}

func (p *forAsking) yes(ctx context.Context, format string, a ...any) bool {
	l := logger.FromContext(ctx)
	if !p.isTerminal() {
		l.Warn("Stdout is not a terminal, will answer no", "question", fmt.Sprintf(format, a...))
		return false
	}
	choice := ""
	prompt := &survey.Select{
		Message: fmt.Sprintf(format, a...),
		Options: []string{"No", "Yes"},
		Default: "Yes",
	}
	if err := p.askOne(prompt, &choice); err != nil {
		l.Debug("Prompt aborted", "error", err)
		return false
	}
	return choice == "Yes"
}

// Choose shows a multi-select of options and returns the indexes of
// the selected options in ascending order.
func (p *forAsking) Choose(ctx context.Context, message string, options []string) []int {
	l := logger.FromContext(ctx)
	if len(options) == 0 {
		return nil
	}
	if !p.isTerminal() {
		l.Warn("Stdout is not a terminal, nothing selected", "question", message)
		return nil
	}
	labels := make([]string, len(options))
	index := make(map[string]int, len(options))
	for i, o := range options {
		labels[i] = fmt.Sprintf("%d. %s", i+1, o)
		index[labels[i]] = i
	}
	var selected []string
	prompt := &survey.MultiSelect{
		Message:  message,
		Options:  labels,
		PageSize: 15,
	}
	if err := p.askOne(prompt, &selected); err != nil {
		l.Debug("Prompt aborted", "error", err)
		return nil
	}
	var indexes []int
	for _, s := range selected {
		if i, ok := index[s]; ok {
			indexes = append(indexes, i)
		}
	}
	sort.Ints(indexes)
	return indexes
}
