package resolver

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/sa6mwa/castsdown/internal/app/ports"
	"github.com/sa6mwa/castsdown/internal/infra/adapters/logger"
)

// rewriteTransport sends every request to target while keeping the
// original Host header, letting tests use real podcast URLs.
type rewriteTransport struct {
	target *url.URL
}

func (t *rewriteTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	r := req.Clone(req.Context())
	r.Host = req.URL.Host
	r.URL.Scheme = t.target.Scheme
	r.URL.Host = t.target.Host
	return http.DefaultTransport.RoundTrip(r)
}

type hits struct {
	mu sync.Mutex
	m  map[string]int
}

func (h *hits) add(key string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.m[key]++
}

func (h *hits) get(key string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.m[key]
}

// route maps host+path to a testdata file or an inline body.
type route struct {
	file        string
	body        string
	contentType string
	status      int
}

func newTestServer(t *testing.T, routes map[string]route) (*httptest.Server, *hits) {
	t.Helper()
	h := &hits{m: make(map[string]int)}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := r.Host + r.URL.Path
		h.add(key)
		rt, ok := routes[key]
		if !ok {
			http.NotFound(w, r)
			return
		}
		body := []byte(rt.body)
		if rt.file != "" {
			b, err := os.ReadFile(filepath.Join("testdata", rt.file))
			if err != nil {
				t.Errorf("unable to read fixture %s: %v", rt.file, err)
				http.Error(w, err.Error(), http.StatusInternalServerError)
				return
			}
			body = b
		}
		if rt.contentType != "" {
			w.Header().Set("Content-Type", rt.contentType)
		}
		if rt.status != 0 {
			w.WriteHeader(rt.status)
		}
		w.Write(body)
	}))
	t.Cleanup(srv.Close)
	return srv, h
}

func newTestResolver(t *testing.T, srv *httptest.Server) ports.ForResolving {
	t.Helper()
	target, err := url.Parse(srv.URL)
	if err != nil {
		t.Fatal(err)
	}
	return New(&Config{
		Client: &http.Client{Transport: &rewriteTransport{target: target}},
	})
}

func testContext() context.Context {
	return logger.WithLogger(context.Background(), logger.Discard())
}
