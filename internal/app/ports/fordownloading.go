package ports

import (
	"context"

	"github.com/sa6mwa/castsdown/internal/app/model"
)

type BatchRequest struct {
	Episodes []model.Episode
	// DisplayName is used in log output and, unless OmitPrefix is
	// set, as the filename prefix.
	DisplayName string
	OmitPrefix  bool
	OutputDir   string
	// Concurrency is the maximum number of simultaneous transfers,
	// defaults to 3 if below 1.
	Concurrency  int
	SkipExisting bool
}

// ForDownloading downloads a batch of episodes. Per-item failures
// are reported in the summary; the returned error is only non-nil
// for fatal conditions (output directory not creatable, context
// cancelled).
type ForDownloading interface {
	DownloadAll(ctx context.Context, request *BatchRequest) (*model.BatchSummary, error)
}

// ForProbing returns the playing time of a downloaded media file.
type ForProbing interface {
	Probe(ctx context.Context, path string) (model.MediaInfo, error)
}
