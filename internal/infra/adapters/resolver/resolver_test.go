package resolver

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sa6mwa/castsdown/internal/app/model"
)

func TestClassify(t *testing.T) {
	tables := []struct {
		url  string
		kind model.Kind
		err  bool
	}{
		{"https://www.xiaoyuzhoufm.com/episode/6850d2ed4abe6e29cb814160", model.KindXiaoyuzhouEpisode, false},
		{"https://www.xiaoyuzhoufm.com/podcast/6388760f22567e8ea6ad070f", model.KindXiaoyuzhouPodcast, false},
		{"https://xiaoyuzhoufm.com/podcast/6388760f22567e8ea6ad070f/", model.KindXiaoyuzhouPodcast, false},
		{"https://www.xiaoyuzhoufm.com/about", model.KindUnknown, true},
		{"https://podcasts.apple.com/us/podcast/x/id123456789", model.KindApple, false},
		{"https://podcasts.apple.com/us/podcast/x/id123456789?i=1000747967318", model.KindApple, false},
		{"https://feeds.example.com/podcast.rss", model.KindFeed, false},
		{"https://feeds.example.com/podcast.XML", model.KindFeed, false},
		{"https://feeds.example.com/podcast.xml?format=xml", model.KindFeed, false},
		{"https://feeds.example.com/podcast", model.KindFeedGuess, false},
		{"https://example.com/feed.rss.html", model.KindFeedGuess, false},
		{"ftp://example.com/podcast.rss", model.KindUnknown, true},
		{"not a url", model.KindUnknown, true},
	}
	for _, table := range tables {
		kind, err := Classify(table.url)
		if (err != nil) != table.err {
			t.Errorf("Classify(%q) error = %v, want error: %t", table.url, err, table.err)
			continue
		}
		if err != nil && !errors.Is(err, model.ErrUnrecognizedURL) {
			t.Errorf("Classify(%q) error %v is not ErrUnrecognizedURL", table.url, err)
		}
		if kind != table.kind {
			t.Errorf("Classify(%q) was incorrect, got: %s, want: %s", table.url, kind, table.kind)
		}
	}
}

func TestParseItunesDuration(t *testing.T) {
	tables := []struct {
		s string
		d time.Duration
	}{
		{"", 0},
		{"1800", 30 * time.Minute},
		{"01:02:03", time.Hour + 2*time.Minute + 3*time.Second},
		{"45:10", 45*time.Minute + 10*time.Second},
		{"abc", 0},
		{"1:-1", 0},
	}
	for _, table := range tables {
		if got := parseItunesDuration(table.s); got != table.d {
			t.Errorf("parseItunesDuration(%q) was incorrect, got: %s, want: %s", table.s, got, table.d)
		}
	}
}

func TestParseFeedRSS(t *testing.T) {
	body, err := os.ReadFile(filepath.Join("testdata", "feed.rss"))
	if err != nil {
		t.Fatal(err)
	}
	name, episodes, err := ParseFeed(body)
	if err != nil {
		t.Fatal(err)
	}
	if name != "The Example Show" {
		t.Errorf("expected podcast name The Example Show, got %q", name)
	}
	expected := []struct {
		title, url string
	}{
		{"Episode 3: Latest news", "https://cdn.example.com/ep3.mp3"},
		{"Episode 2: Media content", "https://cdn.example.com/ep2.m4a"},
		{"Episode 1: The beginning", "https://cdn.example.com/ep1.mp3"},
	}
	if len(episodes) != len(expected) {
		t.Fatalf("expected %d episodes, got %d: %+v", len(expected), len(episodes), episodes)
	}
	for i, e := range expected {
		if episodes[i].Title != e.title || episodes[i].AudioURL != e.url {
			t.Errorf("episode %d: expected %q %q, got %q %q", i, e.title, e.url, episodes[i].Title, episodes[i].AudioURL)
		}
	}
	if episodes[0].Duration != time.Hour+2*time.Minute+3*time.Second {
		t.Errorf("unexpected duration %s", episodes[0].Duration)
	}
	if !episodes[0].HasPublished() || episodes[0].Published.Year() != 2025 {
		t.Errorf("expected published date in 2025, got %v", episodes[0].Published)
	}
}

func TestParseFeedAtom(t *testing.T) {
	body, err := os.ReadFile(filepath.Join("testdata", "feed.atom"))
	if err != nil {
		t.Fatal(err)
	}
	name, episodes, err := ParseFeed(body)
	if err != nil {
		t.Fatal(err)
	}
	if name != "Atom Cast" {
		t.Errorf("expected Atom Cast, got %q", name)
	}
	if len(episodes) != 1 || episodes[0].AudioURL != "https://cdn.example.com/atom1.ogg" {
		t.Errorf("expected the single enclosure entry, got %+v", episodes)
	}
}

func TestParseFeedTypedAtomLink(t *testing.T) {
	body := []byte(`<?xml version="1.0" encoding="utf-8"?>
<feed xmlns="http://www.w3.org/2005/Atom">
  <title>Stream Cast</title>
  <id>urn:example:streamcast</id>
  <updated>2025-10-01T00:00:00Z</updated>
  <entry>
    <title>Streamed</title>
    <id>urn:example:streamcast:1</id>
    <updated>2025-10-01T00:00:00Z</updated>
    <link rel="alternate" type="text/html" href="https://example.com/page/123"/>
    <link rel="alternate" type="audio/mpeg" href="https://cdn.example.com/stream/123"/>
  </entry>
</feed>`)
	_, episodes, err := ParseFeed(body)
	if err != nil {
		t.Fatal(err)
	}
	if len(episodes) != 1 || episodes[0].AudioURL != "https://cdn.example.com/stream/123" {
		t.Errorf("expected the audio/mpeg link, got %+v", episodes)
	}
}

func TestParseFeedIgnoresUntypedLink(t *testing.T) {
	body := []byte(`<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
  <channel>
    <title>Page Cast</title>
    <item>
      <title>Looks like audio</title>
      <link>https://example.com/episodes/ep1.mp3</link>
      <enclosure url="https://example.com/episodes/ep1.html" length="10" type="text/html"/>
    </item>
  </channel>
</rss>`)
	_, episodes, err := ParseFeed(body)
	if err != nil {
		t.Fatal(err)
	}
	if len(episodes) != 0 {
		t.Errorf("expected no episodes, got %+v", episodes)
	}
}

func TestParseFeedMalformed(t *testing.T) {
	if _, _, err := ParseFeed([]byte("this is not a feed at all")); err == nil {
		t.Error("expected error parsing garbage")
	}
}

func TestResolveFeed(t *testing.T) {
	srv, _ := newTestServer(t, map[string]route{
		"feeds.example.com/podcast.rss": {file: "feed.rss", contentType: "application/rss+xml"},
		"feeds.example.com/broken.rss":  {body: "<html><body>not a feed</body></html>", contentType: "text/html"},
	})
	r := newTestResolver(t, srv)

	res, err := r.Resolve(testContext(), "https://feeds.example.com/podcast.rss")
	if err != nil {
		t.Fatal(err)
	}
	if res.Kind != model.KindFeed || res.Name != "The Example Show" || len(res.Episodes) != 3 || res.Single {
		t.Errorf("unexpected resolution: %+v", res)
	}
	for _, e := range res.Episodes {
		if e.AudioURL == "https://example.com/notes.html" {
			t.Error("text/html enclosure must not be resolved as an episode")
		}
	}

	_, err = r.Resolve(testContext(), "https://feeds.example.com/broken.rss")
	var resolutionErr *model.ResolutionError
	var parseErr *model.ParseError
	if !errors.As(err, &resolutionErr) || !errors.As(err, &parseErr) {
		t.Errorf("expected ResolutionError wrapping ParseError, got %v", err)
	}

	_, err = r.Resolve(testContext(), "https://feeds.example.com/missing.rss")
	var networkErr *model.NetworkError
	if !errors.As(err, &networkErr) || networkErr.StatusCode != 404 {
		t.Errorf("expected NetworkError with status 404, got %v", err)
	}
}
