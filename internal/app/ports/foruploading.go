package ports

import (
	"context"
	"errors"
)

var (
	// ports.ErrNotFound should be used by adapters implementing
	// ForUploading when a bucket or key does not exist.
	ErrNotFound error = errors.New("no such file or key")
)

type ForUploadingRequest struct {
	// Bucket or store to upload to.
	Store string
	// Key or name of target. If empty, default to the base name of
	// the From field.
	To string
	// From is the local path to upload.
	From        string
	ContentType string
	// StorageClass only used for AWS. Can be STANDARD,
	// REDUCED_REDUNDANCY, STANDARD_IA, ONEZONE_IA, INTELLIGENT_TIERING,
	// GLACIER, DEEP_ARCHIVE, and GLACIER_IR. If empty, STANDARD is the
	// default.
	StorageClass string
}

// ForUploading mirrors downloaded episodes to object storage.
type ForUploading interface {
	Upload(ctx context.Context, request *ForUploadingRequest) error
}
