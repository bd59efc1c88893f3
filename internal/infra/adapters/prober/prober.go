// The prober adapter implements the ports.ForProbing port, reading
// the playing time of mp3 and mp4/m4a files.
package prober

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/alfg/mp4"
	"github.com/gabriel-vasile/mimetype"
	"github.com/sa6mwa/castsdown/internal/app/model"
	"github.com/sa6mwa/castsdown/internal/app/ports"
	"github.com/sa6mwa/castsdown/internal/infra/adapters/logger"
	"github.com/sa6mwa/mp3duration"
)

var (
	ErrUnsupportedType error = errors.New("unsupported media type")
	ErrNoTimescale     error = errors.New("mvhd box has a zero timescale")
)

type forProbing struct{}

func New() ports.ForProbing {
	return &forProbing{}
}

func (p *forProbing) Probe(ctx context.Context, path string) (model.MediaInfo, error) {
	l := logger.FromContext(ctx)
	contentType, err := ContentType(path)
	if err != nil {
		return model.MediaInfo{}, err
	}
	info := model.MediaInfo{ContentType: contentType}
	switch contentType {
	case "audio/mpeg":
		di, err := mp3duration.ReadFile(path)
		if err != nil {
			return info, err
		}
		info.Size = di.Length
		info.Duration.Duration = di.TimeDuration
	case "audio/mp4", "video/mp4", "audio/x-m4a", "audio/x-mp4a-latm":
		size, duration, err := Mp4Duration(path)
		if err != nil {
			return info, err
		}
		info.Size = size
		info.Duration.Duration = duration
	default:
		return info, fmt.Errorf("%s: %w %s", path, ErrUnsupportedType, contentType)
	}
	l.Debug("Probed media file", "file", path, "contentType", contentType, "duration", info.Duration, "size", info.Size)
	return info, nil
}

// ContentType detects the mime type of filename from its content,
// ignoring parameters such as charset.
func ContentType(filename string) (string, error) {
	mimetype.SetLimit(1024 * 1024)
	mtype, err := mimetype.DetectFile(filename)
	if err != nil {
		return "", err
	}
	for m := mtype; m != nil; m = m.Parent() {
		switch m.String() {
		case "audio/mpeg", "audio/mp4", "video/mp4", "audio/x-m4a":
			return m.String(), nil
		}
	}
	return mtype.String(), nil
}

// Mp4Duration returns the length in bytes and the duration of an mp4
// file. The mvhd duration is counted in timescale units per second.
func Mp4Duration(filename string) (int64, time.Duration, error) {
	f, err := os.Open(filename)
	if err != nil {
		return 0, 0, err
	}
	defer f.Close()
	fi, err := f.Stat()
	if err != nil {
		return 0, 0, err
	}
	m, err := mp4.OpenFromReader(f, fi.Size())
	if err != nil {
		return 0, 0, err
	}
	if m == nil || m.Moov == nil || m.Moov.Mvhd == nil {
		return 0, 0, fmt.Errorf("%s does not contain a Moov Mvhd box (maybe not an mp4?)", filename)
	}
	mvhd := m.Moov.Mvhd
	if mvhd.Timescale == 0 {
		return 0, 0, fmt.Errorf("%s: %w", filename, ErrNoTimescale)
	}
	return fi.Size(), time.Duration(mvhd.Duration) * time.Second / time.Duration(mvhd.Timescale), nil
}
