package model

import (
	"net/url"
	"path"
	"regexp"
	"strings"
	"time"
)

const (
	// MaxTitleLength is the number of characters (runes) kept from an
	// episode title when building a filename.
	MaxTitleLength = 100
	// DefaultExtension is used when the audio URL path carries no
	// extension.
	DefaultExtension = ".mp3"
)

var illegalFilenameChars = regexp.MustCompile(`[<>:"/\\|?*]`)

// Episode is a single downloadable podcast episode. An Episode is
// treated as immutable once resolved.
type Episode struct {
	Title    string
	AudioURL string
	// Published is the zero time.Time if the source did not declare
	// a publish date.
	Published time.Time
	// Extension overrides the extension otherwise derived from the
	// path of AudioURL (platforms serving extensionless or signed
	// audio URLs set this, e.g ".m4a").
	Extension string
	// Duration as declared by the source, 0 if unknown.
	Duration time.Duration
}

// SanitizeName removes characters that are illegal in filenames on
// common filesystems.
func SanitizeName(s string) string {
	return illegalFilenameChars.ReplaceAllString(s, "")
}

// SanitizeTitle returns s without illegal filename characters and
// truncated to MaxTitleLength runes.
func SanitizeTitle(s string) string {
	s = SanitizeName(s)
	if r := []rune(s); len(r) > MaxTitleLength {
		s = string(r[:MaxTitleLength])
	}
	return s
}

// Ext returns the file extension (including the dot) to use for the
// episode's output file.
func (e Episode) Ext() string {
	if e.Extension != "" {
		return e.Extension
	}
	p := e.AudioURL
	if u, err := url.Parse(e.AudioURL); err == nil {
		p = u.Path
	}
	ext := path.Ext(p)
	if ext == "" || ext == "." || strings.ContainsAny(ext, " ") {
		return DefaultExtension
	}
	return ext
}

// Filename returns the sanitized output filename of the episode in
// the form "{podcastName} - {title}{ext}". If podcastName is empty
// the prefix is omitted. Two episodes with equal sanitized names
// will produce the same filename.
func (e Episode) Filename(podcastName string) string {
	title := SanitizeTitle(e.Title)
	if podcastName == "" {
		return title + e.Ext()
	}
	return SanitizeName(podcastName) + " - " + title + e.Ext()
}

// HasPublished reports whether the source declared a publish date.
func (e Episode) HasPublished() bool {
	return !e.Published.IsZero()
}
