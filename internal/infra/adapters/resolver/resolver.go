// resolver implements the ports.ForResolving interface. It classifies
// a source URL and turns it into a display name and a list of
// episodes: generic RSS/Atom feeds (gofeed), Apple Podcasts pages
// (goquery and the iTunes lookup API) and Xiaoyuzhou episode and
// podcast pages (Next.js page data).
package resolver

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sa6mwa/castsdown/internal/app/model"
	"github.com/sa6mwa/castsdown/internal/app/ports"
	"github.com/sa6mwa/castsdown/internal/infra/adapters/logger"
)

const (
	defaultUserAgent      = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36"
	defaultTimeout        = 10 * time.Second
	defaultItunesLookup   = "https://itunes.apple.com/lookup"
	defaultXiaoyuzhouBase = "https://www.xiaoyuzhoufm.com"
	maxBodySize           = 64 << 20

	appleHost      = "podcasts.apple.com"
	xiaoyuzhouHost = "xiaoyuzhoufm.com"
)

// Resolver configuration. Zero values are replaced by defaults in
// New.
type Config struct {
	// Client used for all page, feed and API requests. Defaults to an
	// http.Client with Timeout.
	Client *http.Client
	// Timeout per metadata request, defaults to 10s.
	Timeout   time.Duration
	UserAgent string
	// ItunesLookupURL is the iTunes lookup endpoint used when an Apple
	// Podcasts page does not reveal its feed.
	ItunesLookupURL string
	// XiaoyuzhouBaseURL is the origin of the Next.js data endpoint.
	XiaoyuzhouBaseURL string
}

type forResolving struct {
	config Config
}

// resolver.New returns a resolver adapter for the ports.ForResolving
// port. If config is nil, default configuration is used.
func New(config *Config) ports.ForResolving {
	var c Config
	if config != nil {
		c = *config
	}
	if c.Timeout == 0 {
		c.Timeout = defaultTimeout
	}
	if c.Client == nil {
		c.Client = &http.Client{Timeout: c.Timeout}
	}
	if c.UserAgent == "" {
		c.UserAgent = defaultUserAgent
	}
	if c.ItunesLookupURL == "" {
		c.ItunesLookupURL = defaultItunesLookup
	}
	if c.XiaoyuzhouBaseURL == "" {
		c.XiaoyuzhouBaseURL = defaultXiaoyuzhouBase
	}
	c.XiaoyuzhouBaseURL = strings.TrimRight(c.XiaoyuzhouBaseURL, "/")
	return &forResolving{config: c}
}

// Classify returns the kind of source rawURL points to. First match
// wins: Xiaoyuzhou host, Apple Podcasts host, .rss/.xml path, anything
// else is guessed to be a feed.
func (r *forResolving) Classify(rawURL string) (model.Kind, error) {
	return Classify(rawURL)
}

// Classify is the stateless implementation of
// ports.ForResolving.Classify.
func Classify(rawURL string) (model.Kind, error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return model.KindUnknown, fmt.Errorf("%w: %v", model.ErrUnrecognizedURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" || u.Host == "" {
		return model.KindUnknown, fmt.Errorf("%w: %s", model.ErrUnrecognizedURL, rawURL)
	}
	host := strings.ToLower(u.Hostname())
	p := strings.ToLower(u.Path)
	switch {
	case host == xiaoyuzhouHost || strings.HasSuffix(host, "."+xiaoyuzhouHost):
		switch {
		case strings.Contains(p, "/episode/"):
			return model.KindXiaoyuzhouEpisode, nil
		case strings.Contains(p, "/podcast/"):
			return model.KindXiaoyuzhouPodcast, nil
		}
		return model.KindUnknown, fmt.Errorf("%w: supported formats are https://www.xiaoyuzhoufm.com/episode/{eid} and https://www.xiaoyuzhoufm.com/podcast/{pid}", model.ErrUnrecognizedURL)
	case host == appleHost:
		return model.KindApple, nil
	case strings.HasSuffix(p, ".rss"), strings.HasSuffix(p, ".xml"):
		return model.KindFeed, nil
	}
	return model.KindFeedGuess, nil
}

func (r *forResolving) Resolve(ctx context.Context, rawURL string) (*model.Resolution, error) {
	l := logger.FromContext(ctx)
	rawURL = strings.TrimSpace(rawURL)
	kind, err := Classify(rawURL)
	if err != nil {
		return nil, &model.ResolutionError{URL: rawURL, Err: err}
	}
	l.Debug("Resolving", "url", rawURL, "kind", kind.String())
	switch kind {
	case model.KindXiaoyuzhouEpisode:
		return r.resolveXiaoyuzhouEpisode(ctx, rawURL)
	case model.KindXiaoyuzhouPodcast:
		return r.resolveXiaoyuzhouPodcast(ctx, rawURL)
	case model.KindApple:
		return r.resolveApple(ctx, rawURL)
	default:
		return r.resolveFeed(ctx, kind, rawURL)
	}
}

// fetch GETs rawURL and returns the body. Non-2xx responses and
// transport failures are returned as *model.NetworkError.
func (r *forResolving) fetch(ctx context.Context, rawURL string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, r.config.Timeout)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", r.config.UserAgent)
	resp, err := r.config.Client.Do(req)
	if err != nil {
		return nil, &model.NetworkError{URL: rawURL, Err: err}
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &model.NetworkError{URL: rawURL, StatusCode: resp.StatusCode}
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, &model.NetworkError{URL: rawURL, Err: err}
	}
	return body, nil
}
