package model

import (
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Plan describes what a batch would download. It is printed as YAML
// by dry runs.
type Plan struct {
	Source    string        `yaml:"source"`
	Kind      string        `yaml:"kind"`
	Podcast   string        `yaml:"podcast"`
	FeedURL   string        `yaml:"feedURL,omitempty"`
	Total     int           `yaml:"total,omitempty"`
	OutputDir string        `yaml:"outputDir"`
	Episodes  []PlanEpisode `yaml:"episodes"`
}

type PlanEpisode struct {
	Title     string         `yaml:"title"`
	Published ItunesTime     `yaml:"published,omitempty"`
	Duration  ItunesDuration `yaml:"duration,omitempty"`
	URL       string         `yaml:"url"`
	Output    string         `yaml:"output"`
}

// NewPlan builds the plan for downloading episodes of r into
// outputDir. namePrefix is the podcast name used in filenames (empty
// to omit the prefix).
func NewPlan(source string, r *Resolution, episodes []Episode, outputDir, namePrefix string) *Plan {
	p := &Plan{
		Source:    source,
		Kind:      r.Kind.String(),
		Podcast:   r.Name,
		FeedURL:   r.FeedURL,
		Total:     r.Total,
		OutputDir: outputDir,
		Episodes:  make([]PlanEpisode, 0, len(episodes)),
	}
	for _, e := range episodes {
		p.Episodes = append(p.Episodes, PlanEpisode{
			Title:     e.Title,
			Published: ItunesTime{e.Published},
			Duration:  ItunesDuration{e.Duration},
			URL:       e.AudioURL,
			Output:    filepath.Join(outputDir, e.Filename(namePrefix)),
		})
	}
	return p
}

// Yaml returns the plan marshalled as YAML.
func (p *Plan) Yaml() ([]byte, error) {
	return yaml.Marshal(p)
}
