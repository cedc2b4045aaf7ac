package archive_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"channelsurfer/internal/archive"
	"channelsurfer/internal/services"
)

func newClient(t *testing.T, handler http.HandlerFunc, opts ...archive.Option) *archive.Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	client, err := archive.New(server.URL, opts...)
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	return client
}

func TestNewRequiresBaseURL(t *testing.T) {
	if _, err := archive.New("  "); err == nil {
		t.Fatal("expected error when base url missing")
	}
}

func TestSearchBuildsQuery(t *testing.T) {
	client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/advancedsearch.php" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("q") != "mediatype:movies duck and cover" {
			t.Errorf("unexpected q %q", q.Get("q"))
		}
		if q.Get("rows") != "5" || q.Get("output") != "json" {
			t.Errorf("unexpected params %q", r.URL.RawQuery)
		}
		if len(q["fl[]"]) == 0 {
			t.Errorf("expected field list, got %q", r.URL.RawQuery)
		}
		if r.Header.Get("User-Agent") != "channelsurfer-test" {
			t.Errorf("unexpected user agent %q", r.Header.Get("User-Agent"))
		}
		_, _ = w.Write([]byte(`{"response":{"numFound":1,"docs":[{"identifier":"DuckandC1951","title":"Duck and Cover"}]}}`))
	}, archive.WithUserAgent("channelsurfer-test"))

	resp, err := client.Search(context.Background(), archive.Query{Text: "duck and cover", MediaType: "movies", Rows: 5})
	if err != nil {
		t.Fatalf("Search returned error: %v", err)
	}
	if len(resp.Documents) != 1 || resp.Documents[0].Title != "Duck and Cover" || resp.Partial {
		t.Fatalf("unexpected response %#v", resp)
	}
}

func TestSearchFallsBackToExtractor(t *testing.T) {
	client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"response":{"docs":[{"identifier":"x1","title":"Recovered"}]}}` + "\n<!-- served from cache -->"))
	})
	resp, err := client.Search(context.Background(), archive.Query{Text: "x"})
	if err != nil {
		t.Fatalf("Search returned error: %v", err)
	}
	if !resp.Partial || len(resp.Documents) != 1 || resp.Documents[0].Title != "Recovered" {
		t.Fatalf("expected partial recovery, got %#v", resp)
	}
}

func TestSearchUnrecoverablePayload(t *testing.T) {
	client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html>maintenance</html>`))
	})
	_, err := client.Search(context.Background(), archive.Query{Text: "x"})
	var decodeErr *archive.DecodeError
	if !errors.As(err, &decodeErr) || decodeErr.Excerpt != "<html>maintenance</html>" {
		t.Fatalf("expected decode error with excerpt, got %v", err)
	}
}

func TestSearchAPIErrorIsNotRecovered(t *testing.T) {
	client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"error":"search engine unavailable"}`))
	})
	_, err := client.Search(context.Background(), archive.Query{Text: "x"})
	if !errors.Is(err, archive.ErrAPIResponse) {
		t.Fatalf("expected api error, got %v", err)
	}
}

func TestSearchHTTPError(t *testing.T) {
	client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})
	_, err := client.Search(context.Background(), archive.Query{Text: "x"})
	if !errors.Is(err, services.ErrTransport) {
		t.Fatalf("expected transport error, got %v", err)
	}
}

func TestSearchEmptyQuery(t *testing.T) {
	client, err := archive.New("https://example.com")
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	if _, err := client.Search(context.Background(), archive.Query{Text: "  "}); err == nil {
		t.Fatal("expected error for empty query")
	}
}

func TestMetadataNotFound(t *testing.T) {
	client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})
	_, err := client.Metadata(context.Background(), "missing")
	if !errors.Is(err, services.ErrNotFound) || !errors.Is(err, services.ErrTransport) {
		t.Fatalf("expected not found transport error, got %v", err)
	}
}

func TestMetadataFillsIdentifier(t *testing.T) {
	client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/metadata/some_item" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		_, _ = w.Write([]byte(`{"files":[{"name":"a.mp4"}],"metadata":{"title":"Untitled"}}`))
	})
	resp, err := client.Metadata(context.Background(), "some_item")
	if err != nil {
		t.Fatalf("Metadata returned error: %v", err)
	}
	if resp.Metadata.Identifier != "some_item" {
		t.Fatalf("expected identifier filled from request, got %q", resp.Metadata.Identifier)
	}
}

func TestMetadataRequestTimeout(t *testing.T) {
	client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}, archive.WithRequestTimeout(50*time.Millisecond))
	_, err := client.Metadata(context.Background(), "slow")
	if !errors.Is(err, services.ErrTransport) {
		t.Fatalf("expected transport error on timeout, got %v", err)
	}
}

func TestOpenStreamsArtifact(t *testing.T) {
	client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.EscapedPath() != "/download/item/sub%20dir/My%20Film.mp4" {
			t.Errorf("unexpected path %q", r.URL.EscapedPath())
		}
		w.Header().Set("Content-Length", "5")
		_, _ = w.Write([]byte("hello"))
	})
	artifact, err := client.Open(context.Background(), "item", "sub dir/My Film.mp4")
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}
	defer artifact.Body.Close()
	data, err := io.ReadAll(artifact.Body)
	if err != nil {
		t.Fatalf("read artifact: %v", err)
	}
	if string(data) != "hello" || artifact.Size != 5 {
		t.Fatalf("unexpected artifact %q size=%d", data, artifact.Size)
	}
}

func TestThumbnailURL(t *testing.T) {
	client, err := archive.New("https://archive.org/")
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	if got := client.ThumbnailURL("reefer_madness"); !strings.HasSuffix(got, "archive.org/services/img/reefer_madness") {
		t.Fatalf("unexpected thumbnail url %q", got)
	}
}
