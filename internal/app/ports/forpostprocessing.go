package ports

import (
	"context"
)

// ForPostprocessing runs a user supplied action on each downloaded
// file.
type ForPostprocessing interface {
	Process(ctx context.Context, mediaFilePaths []string) error
}
