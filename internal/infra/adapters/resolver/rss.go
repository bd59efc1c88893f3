package resolver

import (
	"bytes"
	"context"
	"strings"

	"github.com/mmcdole/gofeed"
	"github.com/mmcdole/gofeed/atom"
	"github.com/sa6mwa/castsdown/internal/app/model"
	"github.com/sa6mwa/castsdown/internal/infra/adapters/logger"
)

const (
	defaultPodcastName  = "Unknown Podcast"
	defaultEpisodeTitle = "Untitled"
)

func (r *forResolving) resolveFeed(ctx context.Context, kind model.Kind, feedURL string) (*model.Resolution, error) {
	l := logger.FromContext(ctx)
	body, err := r.fetch(ctx, feedURL)
	if err != nil {
		return nil, &model.ResolutionError{URL: feedURL, Err: err}
	}
	name, episodes, err := ParseFeed(body)
	if err != nil {
		return nil, &model.ResolutionError{URL: feedURL, Err: &model.ParseError{URL: feedURL, Err: err}}
	}
	l.Debug("Parsed feed", "url", feedURL, "podcast", name, "episodes", len(episodes))
	return &model.Resolution{
		Kind:     kind,
		Name:     name,
		Episodes: episodes,
		FeedURL:  feedURL,
	}, nil
}

// ParseFeed parses an RSS or Atom document and returns the podcast
// name and every entry with a discoverable audio link, in feed order.
// Entries without audio are dropped.
func ParseFeed(body []byte) (string, []model.Episode, error) {
	feed, err := gofeed.NewParser().Parse(bytes.NewReader(body))
	if err != nil {
		return "", nil, err
	}
	name := strings.TrimSpace(feed.Title)
	if name == "" {
		name = defaultPodcastName
	}
	// gofeed.Item drops the type of Atom links, the atom parser keeps
	// it. Entries and items are translated one to one.
	var entries []*atom.Entry
	if feed.FeedType == "atom" {
		if af, err := (&atom.Parser{}).Parse(bytes.NewReader(body)); err == nil && len(af.Entries) == len(feed.Items) {
			entries = af.Entries
		}
	}
	episodes := make([]model.Episode, 0, len(feed.Items))
	for i, item := range feed.Items {
		if item == nil {
			continue
		}
		var entry *atom.Entry
		if entries != nil {
			entry = entries[i]
		}
		audio := audioURL(item, entry)
		if audio == "" {
			continue
		}
		e := model.Episode{
			Title:    strings.TrimSpace(item.Title),
			AudioURL: audio,
		}
		if e.Title == "" {
			e.Title = defaultEpisodeTitle
		}
		if item.PublishedParsed != nil {
			e.Published = *item.PublishedParsed
		}
		if item.ITunesExt != nil {
			e.Duration = parseItunesDuration(item.ITunesExt.Duration)
		}
		episodes = append(episodes, e)
	}
	return name, episodes, nil
}

// audioURL returns the first enclosure declaring an audio type, else
// the first media:content of an audio type, else (Atom only) the first
// link of any rel declaring an audio type. Links without a type are
// never taken as audio. Empty if the entry has no audio.
func audioURL(item *gofeed.Item, entry *atom.Entry) string {
	for _, enc := range item.Enclosures {
		if enc != nil && enc.URL != "" && strings.Contains(strings.ToLower(enc.Type), "audio") {
			return enc.URL
		}
	}
	for _, content := range item.Extensions["media"]["content"] {
		if isAudio(content.Attrs["type"]) && content.Attrs["url"] != "" {
			return content.Attrs["url"]
		}
	}
	if entry == nil {
		return ""
	}
	for _, link := range entry.Links {
		if link != nil && link.Href != "" && isAudio(link.Type) {
			return link.Href
		}
	}
	return ""
}

func isAudio(mediaType string) bool {
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(mediaType)), "audio")
}
