package resolver

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/sa6mwa/castsdown/internal/app/model"
)

const (
	applePodcastURL = "https://podcasts.apple.com/us/podcast/the-example-show/id123456789"
	appleEpisodeURL = applePodcastURL + "?i=1000747967318"
	applePagePath   = "podcasts.apple.com/us/podcast/the-example-show/id123456789"
)

func TestAppleEpisodeID(t *testing.T) {
	tables := []struct {
		url string
		id  string
	}{
		{appleEpisodeURL, "1000747967318"},
		{applePodcastURL + "?l=en&i=42", "42"},
		{applePodcastURL, ""},
		{applePodcastURL + "?i=abc", ""},
	}
	for _, table := range tables {
		if got := AppleEpisodeID(table.url); got != table.id {
			t.Errorf("AppleEpisodeID(%q) was incorrect, got: %q, want: %q", table.url, got, table.id)
		}
	}
}

func TestParseApplePage(t *testing.T) {
	tables := []struct {
		file  string
		title string
		feed  string
	}{
		{"apple_episode.html", "The Example Show: Episode 1: The beginning", "https://feeds.example.com/podcast.rss"},
		{"apple_link.html", "The Example Show", "https://feeds.example.com/podcast.rss"},
		{"apple_bare.html", "The Example Show on Apple Podcasts", ""},
	}
	for _, table := range tables {
		body, err := os.ReadFile(filepath.Join("testdata", table.file))
		if err != nil {
			t.Fatal(err)
		}
		meta, err := ParseApplePage(body)
		if err != nil {
			t.Fatal(err)
		}
		if meta.EpisodeTitle != table.title || meta.FeedURL != table.feed {
			t.Errorf("%s: expected %q %q, got %q %q", table.file, table.title, table.feed, meta.EpisodeTitle, meta.FeedURL)
		}
	}
}

func TestResolveAppleEpisode(t *testing.T) {
	srv, h := newTestServer(t, map[string]route{
		applePagePath:                   {file: "apple_episode.html", contentType: "text/html"},
		"feeds.example.com/podcast.rss": {file: "feed.rss", contentType: "application/rss+xml"},
	})
	r := newTestResolver(t, srv)
	res, err := r.Resolve(testContext(), appleEpisodeURL)
	if err != nil {
		t.Fatal(err)
	}
	if !res.Single || len(res.Episodes) != 1 {
		t.Fatalf("expected a single episode, got %+v", res)
	}
	if res.Episodes[0].Title != "Episode 1: The beginning" {
		t.Errorf("expected Episode 1: The beginning, got %q", res.Episodes[0].Title)
	}
	if res.Kind != model.KindApple || res.Name != "The Example Show" || res.FeedURL != "https://feeds.example.com/podcast.rss" {
		t.Errorf("unexpected resolution %+v", res)
	}
	if n := h.get(applePagePath); n != 1 {
		t.Errorf("expected exactly one request to the Apple Podcasts page, got %d", n)
	}
}

func TestResolveApplePodcastReturnsFullFeed(t *testing.T) {
	srv, h := newTestServer(t, map[string]route{
		applePagePath:                   {file: "apple_episode.html", contentType: "text/html"},
		"feeds.example.com/podcast.rss": {file: "feed.rss", contentType: "application/rss+xml"},
	})
	r := newTestResolver(t, srv)
	res, err := r.Resolve(testContext(), applePodcastURL)
	if err != nil {
		t.Fatal(err)
	}
	if res.Single || len(res.Episodes) != 3 {
		t.Errorf("expected the full feed without i=, got %+v", res)
	}
	if n := h.get(applePagePath); n != 1 {
		t.Errorf("expected exactly one request to the Apple Podcasts page, got %d", n)
	}
}

func TestResolveAppleUnmatchedEpisodeFallsBack(t *testing.T) {
	srv, _ := newTestServer(t, map[string]route{
		applePagePath: {body: `<html><head><meta property="og:title" content="Bonus: never published">` +
			`<meta property="og:audio" content="https://feeds.example.com/podcast.rss"></head></html>`},
		"feeds.example.com/podcast.rss": {file: "feed.rss"},
	})
	r := newTestResolver(t, srv)
	res, err := r.Resolve(testContext(), appleEpisodeURL)
	if err != nil {
		t.Fatal(err)
	}
	if res.Single || len(res.Episodes) != 3 || res.EpisodeID != "1000747967318" {
		t.Errorf("expected fallback to full feed, got %+v", res)
	}
}

func TestResolveAppleItunesLookup(t *testing.T) {
	srv, h := newTestServer(t, map[string]route{
		applePagePath:                   {file: "apple_bare.html"},
		"itunes.apple.com/lookup":       {body: `{"resultCount":1,"results":[{"collectionName":"The Example Show","feedUrl":"https://feeds.example.com/podcast.rss"}]}`, contentType: "application/json"},
		"feeds.example.com/podcast.rss": {file: "feed.rss"},
	})
	r := newTestResolver(t, srv)
	res, err := r.Resolve(testContext(), applePodcastURL)
	if err != nil {
		t.Fatal(err)
	}
	if res.FeedURL != "https://feeds.example.com/podcast.rss" || len(res.Episodes) != 3 {
		t.Errorf("unexpected resolution %+v", res)
	}
	if n := h.get("itunes.apple.com/lookup"); n != 1 {
		t.Errorf("expected one iTunes lookup, got %d", n)
	}
}

func TestResolveAppleNoFeed(t *testing.T) {
	srv, _ := newTestServer(t, map[string]route{
		applePagePath:             {file: "apple_bare.html"},
		"itunes.apple.com/lookup": {body: `{"resultCount":0,"results":[]}`},
	})
	r := newTestResolver(t, srv)
	_, err := r.Resolve(testContext(), applePodcastURL)
	var resolutionErr *model.ResolutionError
	if !errors.As(err, &resolutionErr) || !errors.Is(err, model.ErrNoFeedURL) {
		t.Errorf("expected ResolutionError wrapping ErrNoFeedURL, got %v", err)
	}
}
