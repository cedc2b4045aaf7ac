package testsupport

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"
)

// FakeArchive serves the search, metadata and download endpoints from
// canned payloads.
type FakeArchive struct {
	server *httptest.Server

	mu         sync.Mutex
	searchBody string
	metadata   map[string]string
	files      map[string]map[string][]byte
	requests   map[string]int
	gate       chan struct{}
}

// NewFakeArchive starts a fake archive server and registers its shutdown.
func NewFakeArchive(t testing.TB) *FakeArchive {
	t.Helper()

	fake := &FakeArchive{
		searchBody: `{"responseHeader":{"status":0},"response":{"numFound":0,"start":0,"docs":[]}}`,
		metadata:   make(map[string]string),
		files:      make(map[string]map[string][]byte),
		requests:   make(map[string]int),
	}
	mux := http.NewServeMux()
	mux.HandleFunc("GET /advancedsearch.php", fake.handleSearch)
	mux.HandleFunc("GET /metadata/{id}", fake.handleMetadata)
	mux.HandleFunc("GET /download/{id}/{file...}", fake.handleDownload)
	fake.server = httptest.NewServer(mux)
	t.Cleanup(func() {
		fake.releaseGate()
		fake.server.Close()
	})
	return fake
}

// URL returns the base URL of the fake archive.
func (f *FakeArchive) URL() string {
	return f.server.URL
}

// SetSearchBody replaces the advanced search payload.
func (f *FakeArchive) SetSearchBody(body string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.searchBody = body
}

// AddItem registers the raw metadata payload of an item and the contents of
// its downloadable files.
func (f *FakeArchive) AddItem(identifier, metadataJSON string, files map[string][]byte) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.metadata[identifier] = metadataJSON
	f.files[identifier] = files
}

// Requests reports how often a path was requested.
func (f *FakeArchive) Requests(path string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.requests[path]
}

// HoldDownloads makes every download send half of its body and then stall
// until the returned release function is called or the client gives up.
func (f *FakeArchive) HoldDownloads() (release func()) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.gate = make(chan struct{})
	return f.releaseGate
}

func (f *FakeArchive) releaseGate() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.gate != nil {
		close(f.gate)
		f.gate = nil
	}
}

func (f *FakeArchive) track(r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests[r.URL.Path]++
}

func (f *FakeArchive) handleSearch(w http.ResponseWriter, r *http.Request) {
	f.track(r)
	f.mu.Lock()
	body := f.searchBody
	f.mu.Unlock()
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(body))
}

func (f *FakeArchive) handleMetadata(w http.ResponseWriter, r *http.Request) {
	f.track(r)
	f.mu.Lock()
	body, ok := f.metadata[r.PathValue("id")]
	f.mu.Unlock()
	if !ok {
		body = "{}"
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(body))
}

func (f *FakeArchive) handleDownload(w http.ResponseWriter, r *http.Request) {
	f.track(r)
	f.mu.Lock()
	data, ok := f.files[r.PathValue("id")][r.PathValue("file")]
	gate := f.gate
	f.mu.Unlock()
	if !ok {
		http.NotFound(w, r)
		return
	}

	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	if gate == nil {
		_, _ = w.Write(data)
		return
	}

	half := len(data) / 2
	_, _ = w.Write(data[:half])
	if flusher, ok := w.(http.Flusher); ok {
		flusher.Flush()
	}
	select {
	case <-gate:
		_, _ = w.Write(data[half:])
	case <-r.Context().Done():
	}
}
