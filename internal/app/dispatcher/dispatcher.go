// Package dispatcher ties the ports together: it resolves a source
// URL, selects episodes, hands them to the downloader and runs the
// optional upload and postprocessing stages. Dispatch returns the
// process exit code.
package dispatcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/sa6mwa/castsdown/internal/app/model"
	"github.com/sa6mwa/castsdown/internal/app/ports"
	"github.com/sa6mwa/castsdown/internal/infra/adapters/logger"
)

const (
	ExitOK          = 0
	ExitFailure     = 1
	ExitInterrupted = 130
)

const (
	DefaultOutputDir         = "./podcasts"
	DefaultPlatformOutputDir = "./platform_downloads"
	DefaultLatest            = 1
)

var (
	ErrNilPort error = errors.New("dispatcher requires a resolver and a downloader")
)

// Options are the command line choices of one invocation.
type Options struct {
	// All selects every resolved episode.
	All bool
	// Latest selects the first Latest episodes. Zero means unset:
	// feeds default to DefaultLatest, platform collections to all.
	Latest int
	// OutputDir defaults per source kind if empty.
	OutputDir    string
	Concurrency  int
	SkipExisting bool
	// DryRun prints the plan as YAML instead of downloading.
	DryRun bool
	// Pick asks which of the resolved episodes to download.
	Pick bool
	// UploadBucket enables the upload stage.
	UploadBucket string
}

type Dispatcher struct {
	Resolver   ports.ForResolving
	Downloader ports.ForDownloading
	// Asker is required when Options.Pick is set.
	Asker ports.ForAsking
	// Uploader and Postprocessor are optional post stages run on
	// every file downloaded by the batch.
	Uploader      ports.ForUploading
	Postprocessor ports.ForPostprocessing
	// Out receives progress lines, Err error lines. Default to
	// os.Stdout and os.Stderr.
	Out io.Writer
	Err io.Writer
}

func (d *Dispatcher) out() io.Writer {
	if d.Out == nil {
		return os.Stdout
	}
	return d.Out
}

func (d *Dispatcher) err() io.Writer {
	if d.Err == nil {
		return os.Stderr
	}
	return d.Err
}

func (d *Dispatcher) errorf(format string, a ...any) {
	fmt.Fprintf(d.err(), "[!] "+format+"\n", a...)
}

// OutputDir returns opts.OutputDir or the default directory for kind.
func OutputDir(kind model.Kind, opts Options) string {
	if opts.OutputDir != "" {
		return opts.OutputDir
	}
	if kind.IsPlatform() {
		return DefaultPlatformOutputDir
	}
	return DefaultOutputDir
}

// Select applies the selection policy to a resolution: a matched
// single episode is returned as is, All returns everything, otherwise
// the first Latest episodes (source order) are returned. Platform
// collections return everything unless Latest is set, feeds default
// to DefaultLatest.
func Select(r *model.Resolution, opts Options) []model.Episode {
	if r == nil || len(r.Episodes) == 0 {
		return nil
	}
	if r.Single || opts.All {
		return r.Episodes
	}
	latest := opts.Latest
	if latest <= 0 {
		if r.Kind.IsPlatform() {
			return r.Episodes
		}
		latest = DefaultLatest
	}
	if latest > len(r.Episodes) {
		latest = len(r.Episodes)
	}
	return r.Episodes[:latest]
}

// Dispatch resolves rawURL and downloads the selected episodes. It
// returns ExitOK, ExitFailure or ExitInterrupted.
func (d *Dispatcher) Dispatch(ctx context.Context, rawURL string, opts Options) int {
	l := logger.FromContext(ctx)
	out := d.out()
	if d.Resolver == nil || d.Downloader == nil {
		d.errorf("Error: %v", ErrNilPort)
		return ExitFailure
	}

	kind, err := d.Resolver.Classify(rawURL)
	if err != nil {
		d.errorf("Error: %v", err)
		fmt.Fprintln(d.err(), "Supported formats:")
		fmt.Fprintln(d.err(), "  - https://podcasts.apple.com/{country}/podcast/{name}/id{id}[?i={episode}]")
		fmt.Fprintln(d.err(), "  - https://www.xiaoyuzhoufm.com/episode/{eid}")
		fmt.Fprintln(d.err(), "  - https://www.xiaoyuzhoufm.com/podcast/{pid}")
		fmt.Fprintln(d.err(), "  - any RSS or Atom feed URL")
		return ExitFailure
	}
	fmt.Fprintf(out, "[*] Detected: %s\n", kind)
	fmt.Fprintf(out, "[*] Parsing: %s\n\n", rawURL)

	res, err := d.Resolver.Resolve(ctx, rawURL)
	if err != nil {
		if ctx.Err() != nil {
			return d.interrupted()
		}
		d.errorf("Error: %v", err)
		return ExitFailure
	}
	if len(res.Episodes) == 0 {
		d.errorf("Error: %v", model.ErrNoEpisodes)
		return ExitFailure
	}
	d.describe(res)

	selected := Select(res, opts)
	if opts.Pick && !res.Single {
		if d.Asker == nil {
			d.errorf("Error: interactive picking is not available")
			return ExitFailure
		}
		selected = d.pick(ctx, res)
		if len(selected) == 0 {
			d.errorf("No episodes selected")
			return ExitFailure
		}
		if !opts.DryRun && !d.Asker.Ask(ctx, "Download %d episode(s)?", len(selected)) {
			fmt.Fprintln(out, "[*] Nothing downloaded")
			return ExitOK
		}
	}
	if len(selected) == 0 {
		d.errorf("Error: %v", model.ErrNoEpisodes)
		return ExitFailure
	}
	fmt.Fprintf(out, "[*] Preparing to download %d episode(s)\n\n", len(selected))

	outputDir := OutputDir(kind, opts)
	prefix := res.Name
	omitPrefix := res.Kind == model.KindXiaoyuzhouEpisode
	if omitPrefix {
		prefix = ""
	}
	if opts.DryRun {
		y, err := model.NewPlan(rawURL, res, selected, outputDir, prefix).Yaml()
		if err != nil {
			d.errorf("Error: %v", err)
			return ExitFailure
		}
		out.Write(y)
		return ExitOK
	}

	summary, err := d.Downloader.DownloadAll(ctx, &ports.BatchRequest{
		Episodes:     selected,
		DisplayName:  res.Name,
		OmitPrefix:   omitPrefix,
		OutputDir:    outputDir,
		Concurrency:  opts.Concurrency,
		SkipExisting: opts.SkipExisting,
	})
	if err != nil {
		if ctx.Err() != nil || errors.Is(err, context.Canceled) {
			return d.interrupted()
		}
		d.errorf("Error: %v", err)
		return ExitFailure
	}

	if summary.ID != "" {
		l = l.With("batch", summary.ID)
		ctx = logger.WithLogger(ctx, l)
	}
	l.Debug("Batch finished", "succeeded", summary.Succeeded, "total", summary.Total)

	code := ExitOK
	if res.Kind == model.KindXiaoyuzhouEpisode && summary.Succeeded == 0 {
		code = ExitFailure
	}
	downloaded := summary.Downloaded()
	if len(downloaded) == 0 {
		return code
	}
	if d.Uploader != nil && opts.UploadBucket != "" {
		for _, p := range downloaded {
			if err := d.Uploader.Upload(ctx, &ports.ForUploadingRequest{Store: opts.UploadBucket, From: p}); err != nil {
				if ctx.Err() != nil {
					return d.interrupted()
				}
				d.errorf("Upload failed: %s - %v", filepath.Base(p), err)
				code = ExitFailure
				continue
			}
			fmt.Fprintf(out, "[+] Uploaded: %s\n", filepath.Base(p))
		}
	}
	if d.Postprocessor != nil {
		if err := d.Postprocessor.Process(ctx, downloaded); err != nil {
			if ctx.Err() != nil {
				return d.interrupted()
			}
			d.errorf("Postprocessing failed: %v", err)
			code = ExitFailure
		}
	}
	l.Debug("Dispatch complete", "exitCode", code, "downloaded", len(downloaded))
	return code
}

// describe prints what the resolver found.
func (d *Dispatcher) describe(res *model.Resolution) {
	out := d.out()
	switch {
	case res.Kind == model.KindXiaoyuzhouEpisode:
		e := res.Episodes[0]
		fmt.Fprintf(out, "[*] Podcast: %s\n", res.Name)
		fmt.Fprintf(out, "[*] Title: %s\n", e.Title)
		if e.Duration > 0 {
			fmt.Fprintf(out, "[*] Duration: %s\n", model.ItunesDuration{Duration: e.Duration})
		}
		fmt.Fprintf(out, "[*] Audio: %s\n\n", e.AudioURL)
	case res.Single:
		fmt.Fprintf(out, "[*] Podcast: %s\n", res.Name)
		fmt.Fprintf(out, "[+] Found matching episode: %s\n\n", res.Episodes[0].Title)
	default:
		if res.FeedURL != "" && res.Kind == model.KindApple {
			fmt.Fprintf(out, "[+] RSS URL: %s\n", res.FeedURL)
		}
		fmt.Fprintf(out, "[*] Podcast: %s\n", res.Name)
		fmt.Fprintf(out, "[*] Total episodes: %d\n", len(res.Episodes))
		if res.Truncated() {
			fmt.Fprintf(out, "[!] %s declares %d episodes, only the first %d are available\n", res.Name, res.Total, len(res.Episodes))
		}
		if res.EpisodeID != "" {
			fmt.Fprintf(out, "[!] Could not match episode ID %s, falling back to the feed\n", res.EpisodeID)
		}
		fmt.Fprintln(out)
	}
}

// pick lets the user choose among all resolved episodes.
func (d *Dispatcher) pick(ctx context.Context, res *model.Resolution) []model.Episode {
	options := make([]string, len(res.Episodes))
	for i, e := range res.Episodes {
		options[i] = e.Title
		if e.HasPublished() {
			options[i] = e.Published.Format("2006-01-02") + " " + e.Title
		}
	}
	var selected []model.Episode
	for _, i := range d.Asker.Choose(ctx, "Select episodes to download", options) {
		if i >= 0 && i < len(res.Episodes) {
			selected = append(selected, res.Episodes[i])
		}
	}
	return selected
}

func (d *Dispatcher) interrupted() int {
	fmt.Fprintln(d.err(), "\n\n[!] Download interrupted by user")
	return ExitInterrupted
}
