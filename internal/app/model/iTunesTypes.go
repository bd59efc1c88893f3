package model

import (
	"time"

	"github.com/sa6mwa/mp3duration"
)

// ItunesTime marshals as RFC1123Z (the Itunes "RFC2822" date format)
// and as an empty string when zero.
type ItunesTime struct {
	time.Time
}

func (t ItunesTime) MarshalYAML() (interface{}, error) {
	return t.String(), nil
}

func (t ItunesTime) String() string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.RFC1123Z)
}

// ItunesDuration marshals in the itunes:duration HH:MM:SS format.
type ItunesDuration struct {
	time.Duration
}

func (d ItunesDuration) MarshalYAML() (interface{}, error) {
	return d.String(), nil
}

func (d ItunesDuration) String() string {
	if d.Duration <= 0 {
		return ""
	}
	return mp3duration.FormatDuration(d.Duration)
}
