// The postprocessor adapter implements the ports.ForPostprocessing
// interface by running a user supplied shell command template once
// per downloaded file.
package postprocessor

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"text/template"

	"github.com/alessio/shellescape"
	"github.com/sa6mwa/castsdown/internal/app/ports"
	"github.com/sa6mwa/castsdown/internal/infra/adapters/logger"
)

var (
	ErrNoFilesToProcess error = errors.New("empty slice, no media files to process")
	ErrEmptyTemplate    error = errors.New("empty command template")
)

const defaultShell = "/bin/sh"
const shellCommandOption = "-c"

// Postprocessor configuration.
type Config struct {
	// Template is a text/template executed for every file, e.g
	// `ffmpeg -i {{ escape .Path }} {{ escape (print .Dir "/" .Stem ".mp3") }}`.
	Template string
	// Shell defaults to /bin/sh.
	Shell string
	// Stdout and Stderr of the command, default to os.Stdout and
	// os.Stderr.
	Stdout io.Writer
	Stderr io.Writer
}

// Variables available in the command template.
type Variables struct {
	// Path is the path of the downloaded file.
	Path string
	// Dir is the directory of Path.
	Dir string
	// Name is the base name of Path.
	Name string
	// Stem is Name without extension.
	Stem string
	// Ext is the extension of Path including the dot.
	Ext string
}

type forPostprocessing struct {
	config Config
	tmpl   *template.Template
}

// postprocessor.New parses the command template and returns a
// ports.ForPostprocessing adapter.
func New(config *Config) (ports.ForPostprocessing, error) {
	if config == nil || strings.TrimSpace(config.Template) == "" {
		return nil, ErrEmptyTemplate
	}
	c := *config
	if c.Shell == "" {
		c.Shell = defaultShell
	}
	if c.Stdout == nil {
		c.Stdout = os.Stdout
	}
	if c.Stderr == nil {
		c.Stderr = os.Stderr
	}
	tmpl, err := template.New("Postprocessing").Funcs(template.FuncMap{
		"escape": func(s string) string {
			return shellescape.Quote(s)
		},
	}).Parse(c.Template)
	if err != nil {
		return nil, fmt.Errorf("unable to parse command template: %w", err)
	}
	return &forPostprocessing{config: c, tmpl: tmpl}, nil
}

// NewVariables returns the template variables for mediaFilePath.
func NewVariables(mediaFilePath string) Variables {
	name := filepath.Base(mediaFilePath)
	ext := filepath.Ext(name)
	return Variables{
		Path: mediaFilePath,
		Dir:  filepath.Dir(mediaFilePath),
		Name: name,
		Stem: strings.TrimSuffix(name, ext),
		Ext:  ext,
	}
}

// Command renders the shell command for mediaFilePath.
func (p *forPostprocessing) Command(mediaFilePath string) (string, error) {
	buf := &bytes.Buffer{}
	if err := p.tmpl.Execute(buf, NewVariables(mediaFilePath)); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// Process runs the command for each file in order and stops at the
// first failing command.
func (p *forPostprocessing) Process(ctx context.Context, mediaFilePaths []string) error {
	l := logger.FromContext(ctx)
	if len(mediaFilePaths) == 0 {
		return ErrNoFilesToProcess
	}
	var fcount int
	for _, input := range mediaFilePaths {
		command, err := p.Command(input)
		if err != nil {
			return err
		}
		l.Info("Postprocessing", "file", input, "command", command)
		cmd := exec.CommandContext(ctx, p.config.Shell, shellCommandOption, command)
		cmd.Stdout = p.config.Stdout
		cmd.Stderr = p.config.Stderr
		if err := cmd.Run(); err != nil {
			return fmt.Errorf("unable to post-process %q: %w", input, err)
		}
		fcount++
	}
	if fcount == 1 {
		l.Info("Processed one media file", "file", mediaFilePaths[0])
	} else {
		l.Info(fmt.Sprintf("Processed %d files", fcount))
	}
	return nil
}
