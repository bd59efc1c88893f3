package resolver

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/sa6mwa/castsdown/internal/app/model"
	"github.com/sa6mwa/castsdown/internal/infra/adapters/logger"
)

var (
	appleEpisodeIDRegex = regexp.MustCompile(`[?&]i=(\d+)`)
	applePodcastIDRegex = regexp.MustCompile(`/id(\d+)`)
	rssHrefRegex        = regexp.MustCompile(`https?://.*\.rss`)
)

// AppleMetadata is what a single fetch of an Apple Podcasts page
// reveals.
type AppleMetadata struct {
	FeedURL      string
	EpisodeTitle string
}

type itunesLookup struct {
	ResultCount int `json:"resultCount"`
	Results     []struct {
		CollectionName string `json:"collectionName"`
		FeedURL        string `json:"feedUrl"`
	} `json:"results"`
}

// AppleEpisodeID returns the numeric episode id of the i= query
// parameter, or an empty string.
func AppleEpisodeID(rawURL string) string {
	if m := appleEpisodeIDRegex.FindStringSubmatch(rawURL); m != nil {
		return m[1]
	}
	return ""
}

func (r *forResolving) resolveApple(ctx context.Context, rawURL string) (*model.Resolution, error) {
	l := logger.FromContext(ctx)
	episodeID := AppleEpisodeID(rawURL)
	meta, err := r.appleMetadata(ctx, rawURL)
	if err != nil {
		return nil, &model.ResolutionError{URL: rawURL, Err: err}
	}
	if meta.FeedURL == "" {
		return nil, &model.ResolutionError{URL: rawURL, Err: model.ErrNoFeedURL}
	}
	l.Debug("Apple Podcasts metadata", "feed", meta.FeedURL, "episodeTitle", meta.EpisodeTitle, "episodeID", episodeID)
	res, err := r.resolveFeed(ctx, model.KindApple, meta.FeedURL)
	if err != nil {
		return nil, err
	}
	res.EpisodeTitle = meta.EpisodeTitle
	res.EpisodeID = episodeID
	if episodeID == "" || meta.EpisodeTitle == "" {
		return res, nil
	}
	if e, ok := MatchEpisode(res.Name, res.Episodes, meta.EpisodeTitle); ok {
		res.Episodes = []model.Episode{e}
		res.Single = true
		return res, nil
	}
	l.Warn("Could not match episode id against feed", "episodeID", episodeID, "title", meta.EpisodeTitle)
	return res, nil
}

// appleMetadata extracts the feed URL and episode title with one
// request to the Apple Podcasts page. Only if the page does not
// reveal the feed is the iTunes lookup API asked.
func (r *forResolving) appleMetadata(ctx context.Context, rawURL string) (*AppleMetadata, error) {
	body, err := r.fetch(ctx, rawURL)
	if err != nil {
		return nil, err
	}
	meta, err := ParseApplePage(body)
	if err != nil {
		return nil, &model.ParseError{URL: rawURL, Err: err}
	}
	if meta.FeedURL != "" {
		return meta, nil
	}
	m := applePodcastIDRegex.FindStringSubmatch(rawURL)
	if m == nil {
		return meta, nil
	}
	feedURL, err := r.itunesFeedURL(ctx, m[1])
	if err != nil {
		logger.FromContext(ctx).Warn("iTunes lookup failed", "id", m[1], "error", err)
		return meta, nil
	}
	meta.FeedURL = feedURL
	return meta, nil
}

// ParseApplePage extracts the episode title (og:title, else <title>)
// and feed URL (og:audio, else the first link to an .rss document)
// from an Apple Podcasts HTML page.
func ParseApplePage(body []byte) (*AppleMetadata, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	meta := &AppleMetadata{}
	if content, ok := doc.Find(`meta[property="og:title"]`).First().Attr("content"); ok && strings.TrimSpace(content) != "" {
		meta.EpisodeTitle = strings.TrimSpace(content)
	} else {
		meta.EpisodeTitle = strings.TrimSpace(doc.Find("title").First().Text())
	}
	if content, ok := doc.Find(`meta[property="og:audio"]`).First().Attr("content"); ok && strings.TrimSpace(content) != "" {
		meta.FeedURL = strings.TrimSpace(content)
		return meta, nil
	}
	doc.Find("a[href]").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		href, _ := s.Attr("href")
		if rssHrefRegex.MatchString(href) {
			meta.FeedURL = href
			return false
		}
		return true
	})
	return meta, nil
}

func (r *forResolving) itunesFeedURL(ctx context.Context, podcastID string) (string, error) {
	q := url.Values{}
	q.Set("id", podcastID)
	q.Set("entity", "podcast")
	lookupURL := r.config.ItunesLookupURL + "?" + q.Encode()
	body, err := r.fetch(ctx, lookupURL)
	if err != nil {
		return "", err
	}
	var lookup itunesLookup
	if err := json.Unmarshal(body, &lookup); err != nil {
		return "", &model.ParseError{URL: lookupURL, Err: err}
	}
	if lookup.ResultCount < 1 || len(lookup.Results) == 0 || lookup.Results[0].FeedURL == "" {
		return "", fmt.Errorf("no feedUrl for podcast id %s", podcastID)
	}
	return lookup.Results[0].FeedURL, nil
}
