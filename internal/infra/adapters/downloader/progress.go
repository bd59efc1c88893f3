package downloader

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/sa6mwa/castsdown/internal/app/model"
	"golang.org/x/term"
)

const progressWidth = 40

// tracker prints one line per finished episode and, when writing to
// a terminal, redraws a progress bar below the last line.
type tracker struct {
	out   io.Writer
	total int
	done  int
	bar   *progress.Model
}

func newTracker(out io.Writer, total int) *tracker {
	t := &tracker{out: out, total: total}
	if f, ok := out.(*os.File); ok && term.IsTerminal(int(f.Fd())) && total > 0 {
		bar := progress.New(progress.WithDefaultGradient(), progress.WithWidth(progressWidth))
		t.bar = &bar
		t.draw()
	}
	return t
}

func (t *tracker) report(r model.Result) {
	t.done++
	t.clear()
	if r.Success {
		fmt.Fprintf(t.out, "[+] %s\n", r.Message)
	} else {
		fmt.Fprintf(t.out, "[-] %s\n", r.Message)
	}
	t.draw()
}

func (t *tracker) finish() {
	if t.bar != nil {
		fmt.Fprintln(t.out)
	}
}

func (t *tracker) draw() {
	if t.bar == nil {
		return
	}
	fmt.Fprintf(t.out, "Download Progress %s %d/%d", t.bar.ViewAs(float64(t.done)/float64(t.total)), t.done, t.total)
}

func (t *tracker) clear() {
	if t.bar != nil {
		fmt.Fprint(t.out, "\r\x1b[2K")
	}
}
