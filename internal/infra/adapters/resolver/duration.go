package resolver

import (
	"strconv"
	"strings"
	"time"
)

// parseItunesDuration parses itunes:duration values (HH:MM:SS, MM:SS
// or plain seconds). Unparsable values yield 0.
func parseItunesDuration(s string) time.Duration {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	var total int
	for _, part := range strings.Split(s, ":") {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil || n < 0 {
			return 0
		}
		total = total*60 + n
	}
	return time.Duration(total) * time.Second
}
