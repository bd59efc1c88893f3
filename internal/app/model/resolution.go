package model

// Kind classifies a source URL.
type Kind int

const (
	KindUnknown Kind = iota
	// KindFeed is a URL whose path ends in .rss or .xml.
	KindFeed
	// KindFeedGuess is any other URL, parsed as a feed anyway since
	// feeds often omit the extension.
	KindFeedGuess
	KindApple
	KindXiaoyuzhouEpisode
	KindXiaoyuzhouPodcast
)

func (k Kind) String() string {
	switch k {
	case KindFeed:
		return "RSS Feed"
	case KindFeedGuess:
		return "Podcast RSS Feed"
	case KindApple:
		return "Apple Podcasts"
	case KindXiaoyuzhouEpisode, KindXiaoyuzhouPodcast:
		return "Xiaoyuzhou Podcast"
	}
	return "Unknown"
}

// IsPlatform reports whether k is one of the platform-specific
// (Xiaoyuzhou) kinds.
func (k Kind) IsPlatform() bool {
	return k == KindXiaoyuzhouEpisode || k == KindXiaoyuzhouPodcast
}

// Resolution is what a resolver produces from a URL: a display name
// and the episodes found, in source order (newest first for well
// formed feeds).
type Resolution struct {
	Kind     Kind
	Name     string
	Episodes []Episode
	// Single is true when the URL targeted exactly one episode and
	// Episodes holds that episode only.
	Single bool
	// Total is the number of episodes the source declares, 0 if
	// unknown. Total larger than len(Episodes) means the list was
	// truncated by the source.
	Total int
	// FeedURL is the RSS feed the episodes came from, if any.
	FeedURL string
	// EpisodeTitle is the title extracted from an episode page, used
	// for matching against the feed.
	EpisodeTitle string
	// EpisodeID is the platform episode identifier the URL asked for,
	// if any. EpisodeID set while Single is false means the episode
	// could not be matched and Episodes holds the whole feed.
	EpisodeID string
}

// Truncated reports whether the source declares more episodes than
// it exposed.
func (r *Resolution) Truncated() bool {
	return r.Total > len(r.Episodes)
}
