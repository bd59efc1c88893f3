package resolver

import (
	"strings"

	"github.com/sa6mwa/castsdown/internal/app/model"
)

// MatchEpisode returns the first episode whose title fuzzy-matches
// title: both are lower-cased and trimmed, the podcast name is
// removed from title together with leading ":", "：", "-" and
// spaces, and either string containing the other is a match.
func MatchEpisode(podcastName string, episodes []model.Episode, title string) (model.Episode, bool) {
	target := strings.ToLower(strings.TrimSpace(title))
	if name := strings.ToLower(podcastName); name != "" {
		target = strings.ReplaceAll(target, name, "")
	}
	target = strings.TrimLeft(strings.TrimSpace(target), ":：- ")
	if target == "" {
		return model.Episode{}, false
	}
	for _, e := range episodes {
		candidate := strings.ToLower(strings.TrimSpace(e.Title))
		if strings.Contains(candidate, target) || strings.Contains(target, candidate) {
			return e, true
		}
	}
	return model.Episode{}, false
}
