package uploader

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/sa6mwa/castsdown/internal/app/ports"
	"github.com/sa6mwa/castsdown/internal/infra/adapters/logger"
)

func TestKey(t *testing.T) {
	tables := []struct {
		prefix, to, from string
		want             string
	}{
		{"", "", "/tmp/podcasts/Show - One.mp3", "Show - One.mp3"},
		{"podcasts", "", "/tmp/podcasts/Show - One.mp3", "podcasts/Show - One.mp3"},
		{"podcasts/", "", "Show - One.mp3", "podcasts/Show - One.mp3"},
		{"podcasts", "podcasts/x.mp3", "Show - One.mp3", "podcasts/x.mp3"},
		{"", "custom/key.m4a", "a.m4a", "custom/key.m4a"},
	}
	for _, table := range tables {
		if got := Key(table.prefix, table.to, table.from); got != table.want {
			t.Errorf("Key(%q, %q, %q) was incorrect, got: %q, want: %q", table.prefix, table.to, table.from, got, table.want)
		}
	}
}

func TestGetContentType(t *testing.T) {
	p := filepath.Join(t.TempDir(), "ep.mp3")
	if err := os.WriteFile(p, append([]byte("ID3\x04\x00\x00\x00\x00\x00\x00"), make([]byte, 256)...), 0o644); err != nil {
		t.Fatal(err)
	}
	ct, err := getContentType(p)
	if err != nil {
		t.Fatal(err)
	}
	if ct != "audio/mpeg" {
		t.Errorf("expected audio/mpeg, got %q", ct)
	}
}

func TestUploadValidatesRequest(t *testing.T) {
	ctx := logger.WithLogger(context.Background(), logger.Discard())
	u, err := New(&Config{Region: "eu-north-1"})
	if err != nil {
		t.Fatal(err)
	}
	tables := []struct {
		request *ports.ForUploadingRequest
		err     error
	}{
		{nil, ErrNilPointerRequest},
		{&ports.ForUploadingRequest{Store: "bucket"}, ErrFilenameMissing},
		{&ports.ForUploadingRequest{From: "a.mp3"}, ErrBucketMissing},
	}
	for _, table := range tables {
		if err := u.Upload(ctx, table.request); !errors.Is(err, table.err) {
			t.Errorf("expected %v, got %v", table.err, err)
		}
	}
}
