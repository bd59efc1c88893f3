package ports

import (
	"context"

	"github.com/sa6mwa/castsdown/internal/app/model"
)

// ForResolving turns a source URL (RSS feed, Apple Podcasts page or
// platform page) into a display name and a list of episodes. Errors
// should be or wrap a *model.ResolutionError.
type ForResolving interface {
	Classify(rawURL string) (model.Kind, error)
	Resolve(ctx context.Context, rawURL string) (*model.Resolution, error)
}
