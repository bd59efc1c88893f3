package model

import (
	"errors"
	"fmt"
)

var (
	ErrNoEpisodes      error = errors.New("no episodes found")
	ErrUnrecognizedURL error = errors.New("unrecognized URL format")
	ErrNoFeedURL       error = errors.New("unable to extract RSS URL from Apple Podcasts page")
)

// ResolutionError is fatal: the source could not be turned into a
// list of episodes and nothing is downloaded.
type ResolutionError struct {
	URL string
	Err error
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("unable to resolve %s: %v", e.URL, e.Err)
}

func (e *ResolutionError) Unwrap() error { return e.Err }

// ParseError is returned (wrapped in a ResolutionError) when a feed
// or page could not be parsed.
type ParseError struct {
	URL string
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error in %s: %v", e.URL, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// NetworkError is a connection, timeout or HTTP status failure.
// StatusCode is 0 unless the server answered.
type NetworkError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *NetworkError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: HTTP %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("%s: %v", e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// FilesystemError is fatal at batch start, e.g the output directory
// could not be created.
type FilesystemError struct {
	Path string
	Err  error
}

func (e *FilesystemError) Error() string {
	return fmt.Sprintf("%s: %v", e.Path, e.Err)
}

func (e *FilesystemError) Unwrap() error { return e.Err }
