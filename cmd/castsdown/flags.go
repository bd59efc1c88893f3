package main

import (
	"strings"

	"github.com/sa6mwa/castsdown/internal/app/dispatcher"
	"github.com/sa6mwa/castsdown/internal/infra/adapters/downloader"
	"github.com/urfave/cli/v2"
)

func allFlag() cli.Flag {
	return &cli.BoolFlag{
		Name:    "all",
		Aliases: []string{"a"},
		Usage:   "Download all episodes",
	}
}

// latestFlag with value 0 leaves the default to the dispatcher (1
// for feeds, everything for Xiaoyuzhou podcasts).
func latestFlag(value int) cli.Flag {
	return &cli.IntFlag{
		Name:    "latest",
		Aliases: []string{"l"},
		Value:   value,
		Usage:   "Download the latest N episodes",
	}
}

func outputFlag(value string) cli.Flag {
	usage := "Output directory"
	if value == "" {
		usage = "Output directory (default: " + dispatcher.DefaultOutputDir + ", or " + dispatcher.DefaultPlatformOutputDir + " for Xiaoyuzhou)"
	}
	return &cli.StringFlag{
		Name:    "output",
		Aliases: []string{"o"},
		Value:   value,
		Usage:   usage,
	}
}

func commonFlags() []cli.Flag {
	return []cli.Flag{
		&cli.IntFlag{
			Name:    "concurrent",
			Aliases: []string{"c"},
			Value:   downloader.DefaultConcurrency,
			Usage:   "Number of simultaneous downloads",
		},
		&cli.BoolFlag{
			Name:    "skip-existing",
			Aliases: []string{"s"},
			Usage:   "Skip episodes already present in the output directory",
		},
		&cli.BoolFlag{
			Name:    "dry-run",
			Aliases: []string{"n"},
			Usage:   "Print what would be downloaded as YAML without downloading anything",
		},
		&cli.BoolFlag{
			Name:    "pick",
			Aliases: []string{"p"},
			Usage:   "Choose the episodes to download interactively",
		},
		&cli.BoolFlag{
			Name:    "force",
			Aliases: []string{"f"},
			Usage:   "Force, do not ask if to proceed with an action, just do it",
		},
		&cli.BoolFlag{
			Name:    "verbose",
			Aliases: []string{"v"},
			Usage:   "Log debug information to stderr",
		},
		&cli.BoolFlag{
			Name:  "probe",
			Usage: "Report the playing time of every downloaded file",
		},
		&cli.StringFlag{
			Name:  "exec",
			Usage: "Run a shell command template for every downloaded file, e.g 'ffmpeg -i {{ escape .Path }} {{ escape (print .Dir \"/\" .Stem \".mp3\") }}'",
		},
		&cli.StringFlag{
			Name:  "upload-bucket",
			Usage: "Upload every downloaded file to this Amazon S3 bucket",
		},
		&cli.StringFlag{
			Name:  "upload-prefix",
			Usage: "Key prefix for uploaded files",
		},
		&cli.StringFlag{
			Name:  "aws-profile",
			Usage: "AWS profile used for uploads",
		},
		&cli.StringFlag{
			Name:  "aws-region",
			Usage: "AWS region used for uploads",
		},
	}
}

func unifiedFlags() []cli.Flag {
	return append([]cli.Flag{allFlag(), latestFlag(0), outputFlag("")}, commonFlags()...)
}

func podcastFlags() []cli.Flag {
	return append([]cli.Flag{allFlag(), latestFlag(dispatcher.DefaultLatest), outputFlag(dispatcher.DefaultOutputDir)}, commonFlags()...)
}

func xiaoyuzhouFlags() []cli.Flag {
	return append([]cli.Flag{latestFlag(0), outputFlag(dispatcher.DefaultPlatformOutputDir)}, commonFlags()...)
}

// interspersed reorders args so that flags given after the URL are
// parsed, e.g "castsdown URL --latest 3" becomes "castsdown --latest
// 3 URL". A leading command name stays in front of its flags.
func interspersed(args []string, app *cli.App) []string {
	if len(args) < 2 || args[1] == "help" || args[1] == "h" {
		return args
	}
	head := []string{args[0]}
	rest := args[1:]
	flags := app.Flags
	if c := app.Command(rest[0]); c != nil {
		head = append(head, rest[0])
		rest = rest[1:]
		flags = c.Flags
	}
	takesValue := make(map[string]bool)
	for _, f := range flags {
		if _, ok := f.(*cli.BoolFlag); ok {
			continue
		}
		for _, name := range f.Names() {
			takesValue[name] = true
		}
	}
	var flagArgs, positional []string
	for i := 0; i < len(rest); i++ {
		a := rest[i]
		switch {
		case a == "--":
			positional = append(positional, rest[i+1:]...)
			i = len(rest)
		case strings.HasPrefix(a, "-") && a != "-":
			flagArgs = append(flagArgs, a)
			name := strings.TrimLeft(a, "-")
			if !strings.Contains(name, "=") && takesValue[name] && i+1 < len(rest) {
				flagArgs = append(flagArgs, rest[i+1])
				i++
			}
		default:
			positional = append(positional, a)
		}
	}
	out := append(head, flagArgs...)
	if len(positional) > 0 {
		out = append(out, "--")
		out = append(out, positional...)
	}
	return out
}
