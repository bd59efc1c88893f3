package resolver

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/url"
	"path"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/sa6mwa/castsdown/internal/app/model"
	"github.com/sa6mwa/castsdown/internal/infra/adapters/logger"
)

// Xiaoyuzhou serves m4a audio regardless of the enclosure URL.
const xiaoyuzhouExtension = ".m4a"

var (
	ErrNoNextData    error = errors.New("unable to find __NEXT_DATA__ in page")
	ErrNoEpisodeData error = errors.New("unable to extract episode information")
	ErrNoBuildID     error = errors.New("unable to find buildId in page")
	ErrNoPodcastData error = errors.New("unable to extract podcast information")

	buildIDRegex = regexp.MustCompile(`"buildId":"([^"]+)"`)
)

type nextData struct {
	BuildID string `json:"buildId"`
	Props   struct {
		PageProps xyzPageProps `json:"pageProps"`
	} `json:"props"`
}

type xyzPageProps struct {
	Episode *xyzEpisode `json:"episode"`
	Podcast *xyzPodcast `json:"podcast"`
}

type xyzData struct {
	PageProps xyzPageProps `json:"pageProps"`
}

type xyzEpisode struct {
	EID       string `json:"eid"`
	Title     string `json:"title"`
	Duration  int    `json:"duration"`
	PubDate   string `json:"pubDate"`
	Enclosure struct {
		URL string `json:"url"`
	} `json:"enclosure"`
	Podcast *struct {
		Title string `json:"title"`
	} `json:"podcast"`
}

type xyzPodcast struct {
	PID          string       `json:"pid"`
	Title        string       `json:"title"`
	EpisodeCount int          `json:"episodeCount"`
	Episodes     []xyzEpisode `json:"episodes"`
}

func (e *xyzEpisode) episode() (model.Episode, bool) {
	if e == nil || strings.TrimSpace(e.Enclosure.URL) == "" {
		return model.Episode{}, false
	}
	ep := model.Episode{
		Title:     strings.TrimSpace(e.Title),
		AudioURL:  strings.TrimSpace(e.Enclosure.URL),
		Extension: xiaoyuzhouExtension,
		Duration:  time.Duration(e.Duration) * time.Second,
	}
	if ep.Title == "" {
		ep.Title = defaultEpisodeTitle
	}
	if t, err := time.Parse(time.RFC3339, e.PubDate); err == nil {
		ep.Published = t
	}
	return ep, true
}

// parseNextData extracts the JSON document of the
// <script id="__NEXT_DATA__"> element.
func parseNextData(body []byte) (*nextData, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	script := doc.Find(`script#__NEXT_DATA__`).First()
	if script.Length() == 0 {
		return nil, ErrNoNextData
	}
	var data nextData
	if err := json.Unmarshal([]byte(script.Text()), &data); err != nil {
		return nil, err
	}
	return &data, nil
}

func (r *forResolving) resolveXiaoyuzhouEpisode(ctx context.Context, rawURL string) (*model.Resolution, error) {
	body, err := r.fetch(ctx, rawURL)
	if err != nil {
		return nil, &model.ResolutionError{URL: rawURL, Err: err}
	}
	data, err := parseNextData(body)
	if err != nil {
		return nil, &model.ResolutionError{URL: rawURL, Err: &model.ParseError{URL: rawURL, Err: err}}
	}
	ep, ok := data.Props.PageProps.Episode.episode()
	if !ok {
		return nil, &model.ResolutionError{URL: rawURL, Err: ErrNoEpisodeData}
	}
	name := ep.Title
	if p := data.Props.PageProps.Episode.Podcast; p != nil && strings.TrimSpace(p.Title) != "" {
		name = strings.TrimSpace(p.Title)
	}
	logger.FromContext(ctx).Debug("Xiaoyuzhou episode", "eid", data.Props.PageProps.Episode.EID, "title", ep.Title)
	return &model.Resolution{
		Kind:      model.KindXiaoyuzhouEpisode,
		Name:      name,
		Episodes:  []model.Episode{ep},
		Single:    true,
		EpisodeID: data.Props.PageProps.Episode.EID,
	}, nil
}

// resolveXiaoyuzhouPodcast returns the episodes exposed by the
// podcast's Next.js data endpoint. The endpoint only serves the first
// page (15 episodes); Total carries the declared episode count.
func (r *forResolving) resolveXiaoyuzhouPodcast(ctx context.Context, rawURL string) (*model.Resolution, error) {
	l := logger.FromContext(ctx)
	body, err := r.fetch(ctx, rawURL)
	if err != nil {
		return nil, &model.ResolutionError{URL: rawURL, Err: err}
	}
	buildID := ""
	if data, err := parseNextData(body); err == nil {
		buildID = data.BuildID
	}
	if buildID == "" {
		if m := buildIDRegex.FindSubmatch(body); m != nil {
			buildID = string(m[1])
		}
	}
	if buildID == "" {
		return nil, &model.ResolutionError{URL: rawURL, Err: ErrNoBuildID}
	}
	podcastID, err := lastPathSegment(rawURL)
	if err != nil {
		return nil, &model.ResolutionError{URL: rawURL, Err: err}
	}
	dataURL := r.config.XiaoyuzhouBaseURL + "/_next/data/" + url.PathEscape(buildID) + "/podcast/" + url.PathEscape(podcastID) + ".json"
	l.Debug("Fetching Xiaoyuzhou podcast data", "url", dataURL)
	dataBody, err := r.fetch(ctx, dataURL)
	if err != nil {
		return nil, &model.ResolutionError{URL: rawURL, Err: err}
	}
	var data xyzData
	if err := json.Unmarshal(dataBody, &data); err != nil {
		return nil, &model.ResolutionError{URL: rawURL, Err: &model.ParseError{URL: dataURL, Err: err}}
	}
	podcast := data.PageProps.Podcast
	if podcast == nil {
		return nil, &model.ResolutionError{URL: rawURL, Err: ErrNoPodcastData}
	}
	res := &model.Resolution{
		Kind:     model.KindXiaoyuzhouPodcast,
		Name:     strings.TrimSpace(podcast.Title),
		Episodes: make([]model.Episode, 0, len(podcast.Episodes)),
		Total:    podcast.EpisodeCount,
	}
	if res.Name == "" {
		res.Name = defaultPodcastName
	}
	for i := range podcast.Episodes {
		if ep, ok := podcast.Episodes[i].episode(); ok {
			res.Episodes = append(res.Episodes, ep)
		}
	}
	return res, nil
}

func lastPathSegment(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", err
	}
	seg := path.Base(strings.TrimRight(u.Path, "/"))
	if seg == "" || seg == "." || seg == "/" {
		return "", model.ErrUnrecognizedURL
	}
	return seg, nil
}
