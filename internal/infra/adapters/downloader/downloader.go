// The downloader adapter implements the ports.ForDownloading port. It
// transfers a batch of episodes over HTTP with a bounded number of
// simultaneous transfers, writing each file to a .tmp sibling that is
// renamed into place once complete.
package downloader

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sa6mwa/castsdown/internal/app/humanreadable"
	"github.com/sa6mwa/castsdown/internal/app/model"
	"github.com/sa6mwa/castsdown/internal/app/ports"
	"github.com/sa6mwa/castsdown/internal/infra/adapters/logger"
	"golang.org/x/sync/semaphore"
)

const (
	DefaultConcurrency = 3
	DefaultTimeout     = time.Hour
	DefaultChunkSize   = 8 * 1024
	DefaultUserAgent   = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36"
	tmpSuffix          = ".tmp"
)

var (
	ErrNilPointerRequest error = errors.New("received nil pointer as request")
	ErrShortBody         error = errors.New("transfer ended before Content-Length was reached")
)

// Downloader configuration. Zero values are replaced by defaults in
// New.
type Config struct {
	// Client used for every transfer. Defaults to a client with a one
	// hour timeout.
	Client    *http.Client
	UserAgent string
	// Out receives the per-episode [+]/[-] lines, the progress bar
	// (only if Out is a terminal) and the summary line. Defaults to
	// os.Stdout.
	Out io.Writer
	// Prober, if set, is asked for the playing time of every
	// downloaded file.
	Prober    ports.ForProbing
	ChunkSize int
}

type forDownloading struct {
	config Config
}

// downloader.New returns a ports.ForDownloading adapter. config may
// be nil.
func New(config *Config) ports.ForDownloading {
	c := Config{}
	if config != nil {
		c = *config
	}
	if c.Client == nil {
		c.Client = &http.Client{Timeout: DefaultTimeout}
	}
	if c.UserAgent == "" {
		c.UserAgent = DefaultUserAgent
	}
	if c.Out == nil {
		c.Out = os.Stdout
	}
	if c.ChunkSize < 1 {
		c.ChunkSize = DefaultChunkSize
	}
	return &forDownloading{config: c}
}

// DownloadAll downloads every episode of the request into
// request.OutputDir. Results are reported in completion order. The
// returned error is a *model.FilesystemError if the output directory
// could not be created, or the context's error if the batch was
// interrupted (the summary is still returned).
func (d *forDownloading) DownloadAll(ctx context.Context, request *ports.BatchRequest) (*model.BatchSummary, error) {
	if request == nil {
		return nil, ErrNilPointerRequest
	}
	id := uuid.NewString()
	l := logger.FromContext(ctx).With("batch", id)
	ctx = logger.WithLogger(ctx, l)
	if err := os.MkdirAll(request.OutputDir, 0o755); err != nil {
		return nil, &model.FilesystemError{Path: request.OutputDir, Err: err}
	}
	concurrency := request.Concurrency
	if concurrency < 1 {
		concurrency = DefaultConcurrency
	}
	prefix := request.DisplayName
	if request.OmitPrefix {
		prefix = ""
	}
	jobs := make([]model.Job, 0, len(request.Episodes))
	for _, e := range request.Episodes {
		jobs = append(jobs, model.Job{
			Episode:      e,
			Path:         filepath.Join(request.OutputDir, e.Filename(prefix)),
			SkipExisting: request.SkipExisting,
		})
	}
	l.Debug("Starting batch", "podcast", request.DisplayName, "episodes", len(jobs), "concurrency", concurrency, "output", request.OutputDir)

	// Jobs sharing a target path share its .tmp file and run one after
	// the other. The last one to finish owns the file.
	locks := make(map[string]*sync.Mutex, len(jobs))
	for _, job := range jobs {
		if _, ok := locks[job.Path]; !ok {
			locks[job.Path] = &sync.Mutex{}
		}
	}

	limiter := semaphore.NewWeighted(int64(concurrency))
	results := make(chan model.Result, len(jobs))
	for _, job := range jobs {
		go func(job model.Job, lock *sync.Mutex) {
			lock.Lock()
			defer lock.Unlock()
			if err := limiter.Acquire(ctx, 1); err != nil {
				results <- failure(job, err)
				return
			}
			defer limiter.Release(1)
			results <- d.download(ctx, job)
		}(job, locks[job.Path])
	}

	summary := &model.BatchSummary{ID: id}
	bar := newTracker(d.config.Out, len(jobs))
	for range jobs {
		r := <-results
		summary.Add(r)
		bar.report(r)
		l.Debug("Episode finished", "title", r.Episode.Title, "success", r.Success, "skipped", r.Skipped, "bytes", r.Bytes, "humanSize", humanreadable.SI(r.Bytes))
	}
	bar.finish()
	fmt.Fprintf(d.config.Out, "\nDownload complete: %d/%d succeeded\n", summary.Succeeded, summary.Total)
	l.Info("Batch complete", "succeeded", summary.Succeeded, "total", summary.Total)
	return summary, ctx.Err()
}

// download performs one transfer. It never returns an error, failures
// are carried by the Result.
func (d *forDownloading) download(ctx context.Context, job model.Job) model.Result {
	l := logger.FromContext(ctx)
	name := filepath.Base(job.Path)
	if job.SkipExisting {
		if _, err := os.Stat(job.Path); err == nil {
			return model.Result{
				Episode: job.Episode,
				Path:    job.Path,
				Success: true,
				Skipped: true,
				Message: "Skipped: " + name,
			}
		}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, job.Episode.AudioURL, nil)
	if err != nil {
		return failure(job, err)
	}
	req.Header.Set("User-Agent", d.config.UserAgent)
	resp, err := d.config.Client.Do(req)
	if err != nil {
		return failure(job, &model.NetworkError{URL: job.Episode.AudioURL, Err: err})
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return failure(job, &model.NetworkError{URL: job.Episode.AudioURL, StatusCode: resp.StatusCode})
	}

	tmp := job.Path + tmpSuffix
	f, err := os.Create(tmp)
	if err != nil {
		return failure(job, &model.FilesystemError{Path: tmp, Err: err})
	}
	n, err := copyChunks(f, resp.Body, d.config.ChunkSize)
	if cerr := f.Close(); err == nil && cerr != nil {
		err = &model.FilesystemError{Path: tmp, Err: cerr}
	}
	if err == nil && resp.ContentLength >= 0 && n != resp.ContentLength {
		err = fmt.Errorf("%w (%d of %d bytes)", ErrShortBody, n, resp.ContentLength)
	}
	if err != nil {
		// Interrupted transfers keep their .tmp file.
		if ctx.Err() == nil {
			os.Remove(tmp)
		}
		return failure(job, err)
	}
	if err := os.Rename(tmp, job.Path); err != nil {
		os.Remove(tmp)
		return failure(job, &model.FilesystemError{Path: job.Path, Err: err})
	}

	size := n
	if fi, err := os.Stat(job.Path); err == nil {
		size = fi.Size()
	}
	message := fmt.Sprintf("Completed: %s (%s)", name, humanreadable.MB(size))
	if d.config.Prober != nil {
		info, err := d.config.Prober.Probe(ctx, job.Path)
		if err != nil {
			l.Debug("Unable to probe media file", "file", job.Path, "error", err)
		} else if info.Duration.Duration > 0 {
			message = fmt.Sprintf("Completed: %s (%s, %s)", name, humanreadable.MB(size), info.Duration)
		}
	}
	return model.Result{
		Episode: job.Episode,
		Path:    job.Path,
		Success: true,
		Bytes:   size,
		Message: message,
	}
}

// copyChunks copies src to dst in chunks of chunkSize bytes and
// returns the number of bytes written.
func copyChunks(dst io.Writer, src io.Reader, chunkSize int) (int64, error) {
	buf := make([]byte, chunkSize)
	var written int64
	for {
		nr, rerr := src.Read(buf)
		if nr > 0 {
			nw, werr := dst.Write(buf[:nr])
			written += int64(nw)
			if werr != nil {
				return written, werr
			}
			if nw != nr {
				return written, io.ErrShortWrite
			}
		}
		if rerr == io.EOF {
			return written, nil
		}
		if rerr != nil {
			return written, rerr
		}
	}
}

func failure(job model.Job, err error) model.Result {
	message := fmt.Sprintf("Failed: %s - %v", job.Episode.Title, err)
	if isTimeout(err) {
		message = "Timeout: " + job.Episode.Title
	}
	return model.Result{
		Episode: job.Episode,
		Path:    job.Path,
		Message: message,
	}
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
