package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/sa6mwa/castsdown/internal/app/dispatcher"
	"github.com/sa6mwa/castsdown/internal/app/model"
	"github.com/sa6mwa/castsdown/internal/app/ports"
	"github.com/sa6mwa/castsdown/internal/infra/adapters/asker"
	"github.com/sa6mwa/castsdown/internal/infra/adapters/downloader"
	"github.com/sa6mwa/castsdown/internal/infra/adapters/logger"
	"github.com/sa6mwa/castsdown/internal/infra/adapters/postprocessor"
	"github.com/sa6mwa/castsdown/internal/infra/adapters/prober"
	"github.com/sa6mwa/castsdown/internal/infra/adapters/resolver"
	"github.com/sa6mwa/castsdown/internal/infra/adapters/uploader"
	"github.com/urfave/cli/v2"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	app := newApp()
	if err := app.RunContext(ctx, interspersed(os.Args, app)); err != nil {
		fmt.Fprintf(os.Stderr, "[!] Error: %v\n", err)
		os.Exit(dispatcher.ExitFailure)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:      "castsdown",
		Usage:     "Download podcast episodes from Apple Podcasts, Xiaoyuzhou or any RSS feed.",
		ArgsUsage: "URL",
		UsageText: strings.Join([]string{
			`castsdown "https://podcasts.apple.com/us/podcast/name/id123?i=456"`,
			`castsdown "https://podcasts.apple.com/us/podcast/name/id123" --latest 3`,
			`castsdown "https://www.xiaoyuzhoufm.com/episode/6850d2ed4abe6e29cb814160"`,
			`castsdown "https://www.xiaoyuzhoufm.com/podcast/6388760f22567e8ea6ad070f" --latest 3`,
			`castsdown "https://feeds.example.com/podcast.rss" --all`,
		}, "\n"),
		Flags:  unifiedFlags(),
		Action: unified,
		Commands: []*cli.Command{
			{
				Name:      "podcast",
				Aliases:   []string{"rss"},
				Usage:     "Download from an RSS feed or an Apple Podcasts page",
				ArgsUsage: "URL",
				Flags:     podcastFlags(),
				Action: download(func(k model.Kind) bool {
					return !k.IsPlatform()
				}),
			},
			{
				Name:      "xiaoyuzhou",
				Aliases:   []string{"xyz"},
				Usage:     "Download a Xiaoyuzhou episode or the first page of a Xiaoyuzhou podcast",
				ArgsUsage: "URL",
				Description: "Podcast links only expose the first 15 episodes. Use episode links to\n" +
					"download older episodes one by one.",
				Flags: xiaoyuzhouFlags(),
				Action: download(func(k model.Kind) bool {
					return k.IsPlatform()
				}),
			},
		},
	}
}

func unified(c *cli.Context) error {
	fmt.Fprint(c.App.Writer, Banner())
	fmt.Fprintln(c.App.Writer, Disclaimer())
	return download(nil)(c)
}

// download returns the action shared by all commands. If accept is
// not nil, URLs of a kind it rejects are refused.
func download(accept func(model.Kind) bool) cli.ActionFunc {
	return func(c *cli.Context) error {
		if c.Args().Len() != 1 {
			cli.ShowAppHelp(c)
			return cli.Exit("", dispatcher.ExitFailure)
		}
		rawURL := c.Args().First()
		ctx := logger.WithLogger(c.Context, logger.New(c.App.ErrWriter, c.Bool("verbose")))

		r := resolver.New(nil)
		if accept != nil {
			if kind, err := r.Classify(rawURL); err == nil && !accept(kind) {
				fmt.Fprintf(c.App.ErrWriter, "[!] Unrecognized URL format for %s: %s\n", c.Command.Name, rawURL)
				return cli.Exit("", dispatcher.ExitFailure)
			}
		}

		var probe ports.ForProbing
		if c.Bool("probe") {
			probe = prober.New()
		}
		d := &dispatcher.Dispatcher{
			Resolver: r,
			Downloader: downloader.New(&downloader.Config{
				Out:    c.App.Writer,
				Prober: probe,
			}),
			Asker: asker.New(c.Bool("dry-run"), c.Bool("force")),
			Out:   c.App.Writer,
			Err:   c.App.ErrWriter,
		}
		if bucket := c.String("upload-bucket"); bucket != "" {
			u, err := uploader.New(&uploader.Config{
				Profile: c.String("aws-profile"),
				Region:  c.String("aws-region"),
				Prefix:  c.String("upload-prefix"),
			})
			if err != nil {
				fmt.Fprintf(c.App.ErrWriter, "[!] Error: %v\n", err)
				return cli.Exit("", dispatcher.ExitFailure)
			}
			d.Uploader = u
		}
		if tmpl := c.String("exec"); tmpl != "" {
			p, err := postprocessor.New(&postprocessor.Config{
				Template: tmpl,
				Stdout:   c.App.Writer,
				Stderr:   c.App.ErrWriter,
			})
			if err != nil {
				fmt.Fprintf(c.App.ErrWriter, "[!] Error: %v\n", err)
				return cli.Exit("", dispatcher.ExitFailure)
			}
			d.Postprocessor = p
		}

		code := d.Dispatch(ctx, rawURL, dispatcher.Options{
			All:          c.Bool("all"),
			Latest:       c.Int("latest"),
			OutputDir:    c.String("output"),
			Concurrency:  c.Int("concurrent"),
			SkipExisting: c.Bool("skip-existing"),
			DryRun:       c.Bool("dry-run"),
			Pick:         c.Bool("pick"),
			UploadBucket: c.String("upload-bucket"),
		})
		if code != dispatcher.ExitOK {
			return cli.Exit("", code)
		}
		return nil
	}
}
