package archive_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"channelsurfer/internal/archive"
	"channelsurfer/internal/services"
)

func decodeOne(t *testing.T, doc string) archive.SearchDocument {
	t.Helper()
	resp, err := archive.DecodeSearchResponse([]byte(`{"response":{"numFound":1,"start":0,"docs":[` + doc + `]}}`))
	if err != nil {
		t.Fatalf("DecodeSearchResponse returned error: %v", err)
	}
	if len(resp.Documents) != 1 {
		t.Fatalf("expected one document, got %d", len(resp.Documents))
	}
	return resp.Documents[0]
}

func TestCreatorShapes(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want []string
	}{
		{"bare string", `{"identifier":"a","creator":"Prelinger Archives"}`, []string{"Prelinger Archives"}},
		{"array", `{"identifier":"a","creator":["Jam Handy","Chevrolet"]}`, []string{"Jam Handy", "Chevrolet"}},
		{"absent", `{"identifier":"a"}`, nil},
		{"null", `{"identifier":"a","creator":null}`, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := decodeOne(t, tt.doc)
			if diff := cmp.Diff(tt.want, doc.Creators); diff != "" {
				t.Fatalf("creators mismatch (-want +got):\n%s", diff)
			}
			if len(doc.Issues) != 0 {
				t.Fatalf("expected no issues, got %v", doc.Issues)
			}
		})
	}
}

func TestWrongListTypeDefaultsFieldOnly(t *testing.T) {
	doc := decodeOne(t, `{"identifier":"a","title":"Kept","creator":{"name":"x"},"subject":["ok",3]}`)
	if doc.Title != "Kept" {
		t.Fatalf("expected document to survive, got %#v", doc)
	}
	if len(doc.Creators) != 0 || len(doc.Subjects) != 0 {
		t.Fatalf("expected defaulted lists, got %v %v", doc.Creators, doc.Subjects)
	}
	if len(doc.Issues) != 2 {
		t.Fatalf("expected two issues, got %v", doc.Issues)
	}
	if doc.Issues[0].Path != "response.docs[0].creator" {
		t.Fatalf("unexpected issue path %q", doc.Issues[0].Path)
	}
}

func TestYearAcceptsStringOrInteger(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{`"1957"`, "1957"},
		{`1957`, "1957"},
		{`-12`, "-12"},
		{`18446744073709551615`, "18446744073709551615"},
		{`null`, ""},
	}
	for _, tt := range tests {
		doc := decodeOne(t, `{"identifier":"a","year":`+tt.raw+`}`)
		if doc.Year != tt.want {
			t.Fatalf("year %s decoded to %q, want %q", tt.raw, doc.Year, tt.want)
		}
	}
	doc := decodeOne(t, `{"identifier":"a","year":19.5}`)
	if doc.Year != "" || len(doc.Issues) != 1 {
		t.Fatalf("expected fractional year to be defaulted with an issue, got %q %v", doc.Year, doc.Issues)
	}
}

func TestSizeParsing(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want *uint64
	}{
		{"numeric string", `"104857600"`, ptr(104857600)},
		{"number", `104857600`, ptr(104857600)},
		{"float number", `2048.0`, ptr(2048)},
		{"not a number", `"n/a"`, nil},
		{"signed string", `"-5"`, nil},
		{"negative number", `-5`, nil},
		{"empty string", `""`, nil},
		{"bool", `true`, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := decodeOne(t, `{"identifier":"a","item_size":`+tt.raw+`}`)
			if diff := cmp.Diff(tt.want, doc.EstimatedSizeBytes); diff != "" {
				t.Fatalf("size mismatch (-want +got):\n%s", diff)
			}
			if len(doc.Issues) != 0 {
				t.Fatalf("size parsing must not record issues, got %v", doc.Issues)
			}
		})
	}
}

func TestDocumentsWithoutIdentifierDropped(t *testing.T) {
	payload := `{"response":{"numFound":4,"docs":[
		{"identifier":"keep_me","title":"One"},
		{"title":"No id"},
		{"identifier":""},
		{"identifier":42},
		"not an object"
	]}}`
	resp, err := archive.DecodeSearchResponse([]byte(payload))
	if err != nil {
		t.Fatalf("DecodeSearchResponse returned error: %v", err)
	}
	if len(resp.Documents) != 1 || resp.Documents[0].Identifier != "keep_me" {
		t.Fatalf("unexpected documents: %#v", resp.Documents)
	}
	if resp.NumFound != 4 {
		t.Fatalf("unexpected numFound %d", resp.NumFound)
	}
	if len(resp.Issues) != 4 {
		t.Fatalf("expected four dropped-document issues, got %v", resp.Issues)
	}
}

func TestAPIErrorPayload(t *testing.T) {
	_, err := archive.DecodeSearchResponse([]byte(`{"error":"Invalid query syntax"}`))
	var decodeErr *archive.DecodeError
	if !errors.As(err, &decodeErr) {
		t.Fatalf("expected DecodeError, got %v", err)
	}
	if decodeErr.Kind != archive.DecodeAPI {
		t.Fatalf("expected api kind, got %v", decodeErr.Kind)
	}
	if decodeErr.Message != "Invalid query syntax" {
		t.Fatalf("unexpected message %q", decodeErr.Message)
	}
	if !errors.Is(err, archive.ErrAPIResponse) || !errors.Is(err, services.ErrDecode) {
		t.Fatalf("expected api and decode markers, got %v", err)
	}
}

func TestStructuralErrorCarriesBoundedExcerpt(t *testing.T) {
	garbage := "<html>" + strings.Repeat("x", 500) + "</html>"
	_, err := archive.DecodeSearchResponse([]byte(garbage))
	var decodeErr *archive.DecodeError
	if !errors.As(err, &decodeErr) {
		t.Fatalf("expected DecodeError, got %v", err)
	}
	if decodeErr.Kind != archive.DecodeStructural {
		t.Fatalf("expected structural kind, got %v", decodeErr.Kind)
	}
	if got := len([]rune(decodeErr.Excerpt)); got != 200 {
		t.Fatalf("expected 200 character excerpt, got %d", got)
	}
	if errors.Is(err, archive.ErrAPIResponse) {
		t.Fatal("structural error must not carry the api marker")
	}
}

func TestDecodeNeverPanics(t *testing.T) {
	inputs := []string{
		"", "null", "[]", "{", `{"response":null}`, `{"response":[]}`,
		`{"response":{"docs":{}}}`, `{"response":{"docs":[null,1,[],{}]}}`,
		`{"files":"x"}`, `{"metadata":[]}`, `"just a string"`,
	}
	for _, input := range inputs {
		_, _ = archive.DecodeSearchResponse([]byte(input))
		_, _ = archive.DecodeItemResponse([]byte(input))
		_ = archive.ExtractDocuments([]byte(input))
	}
}

func TestDecodeItemResponse(t *testing.T) {
	payload := `{
		"files": [
			{"name":"movie.mp4","format":"h.264","size":"104857600","length":"1834.50"},
			{"format":"Thumbnail"},
			{"name":"movie.ogv","format":"Ogg Video","size":2048,"runtime":"00:30:34"}
		],
		"metadata": {
			"identifier":"reefer_madness",
			"title":"Reefer Madness",
			"year":1936,
			"creator":"Louis J. Gasnier",
			"subject":["exploitation","drugs"],
			"collection":"feature_films",
			"description":["Part one","Part two"]
		}
	}`
	resp, err := archive.DecodeItemResponse([]byte(payload))
	if err != nil {
		t.Fatalf("DecodeItemResponse returned error: %v", err)
	}
	want := archive.ItemMetadata{
		Identifier:  "reefer_madness",
		Title:       "Reefer Madness",
		Year:        "1936",
		Description: "Part one\nPart two",
		Creator:     []string{"Louis J. Gasnier"},
		Subject:     []string{"exploitation", "drugs"},
		Collection:  []string{"feature_films"},
	}
	if diff := cmp.Diff(want, resp.Metadata); diff != "" {
		t.Fatalf("metadata mismatch (-want +got):\n%s", diff)
	}
	if len(resp.Files) != 2 {
		t.Fatalf("expected nameless file dropped, got %#v", resp.Files)
	}
	if resp.Files[0].SizeBytes == nil || *resp.Files[0].SizeBytes != 104857600 {
		t.Fatalf("unexpected size %v", resp.Files[0].SizeBytes)
	}
	if resp.Files[0].Length != "1834.50" || resp.Files[1].Runtime != "00:30:34" {
		t.Fatalf("unexpected durations %#v", resp.Files)
	}
}

func TestDecodeItemResponseEmptyObject(t *testing.T) {
	_, err := archive.DecodeItemResponse([]byte(`{}`))
	var decodeErr *archive.DecodeError
	if !errors.As(err, &decodeErr) || decodeErr.Kind != archive.DecodeStructural {
		t.Fatalf("expected structural error for empty item, got %v", err)
	}
}

func TestDecodeItemResponseAPIError(t *testing.T) {
	_, err := archive.DecodeItemResponse([]byte(`{"error":"item is dark"}`))
	if !errors.Is(err, archive.ErrAPIResponse) {
		t.Fatalf("expected api error, got %v", err)
	}
}

func ptr(v uint64) *uint64 { return &v }
