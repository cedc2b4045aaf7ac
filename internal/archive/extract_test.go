package archive_test

import (
	"fmt"
	"strings"
	"testing"

	"channelsurfer/internal/archive"
)

func TestExtractDocumentsRecoversPartialData(t *testing.T) {
	payload := `{"responseHeader":{},"response":{"numFound":"many","docs":[
		{"identifier":"first","title":"First","size":"2048","creator":"Solo"},
		{"title":"missing id"},
		{"identifier":7},
		{"identifier":"second","item_size":4096,"creator":["A","B"],"year":1950}
	]}}`
	docs := archive.ExtractDocuments([]byte(payload))
	if len(docs) != 2 {
		t.Fatalf("expected two documents, got %#v", docs)
	}
	if docs[0].Identifier != "first" || docs[0].EstimatedSizeBytes == nil || *docs[0].EstimatedSizeBytes != 2048 {
		t.Fatalf("unexpected first document %#v", docs[0])
	}
	if docs[1].Year != "1950" || len(docs[1].Creators) != 2 || *docs[1].EstimatedSizeBytes != 4096 {
		t.Fatalf("unexpected second document %#v", docs[1])
	}
}

func TestExtractDocumentsCapsWork(t *testing.T) {
	var b strings.Builder
	b.WriteString(`{"response":{"docs":[`)
	for i := 0; i < 50; i++ {
		if i > 0 {
			b.WriteByte(',')
		}
		fmt.Fprintf(&b, `{"identifier":"item_%d"}`, i)
	}
	b.WriteString(`]}}`)
	docs := archive.ExtractDocuments([]byte(b.String()))
	if len(docs) != 20 {
		t.Fatalf("expected 20 documents, got %d", len(docs))
	}
}

func TestExtractDocumentsEmptyOnGarbage(t *testing.T) {
	for _, input := range []string{"", "not json", `{"response":{"docs":"x"}}`, `[1,2,3]`} {
		docs := archive.ExtractDocuments([]byte(input))
		if docs == nil || len(docs) != 0 {
			t.Fatalf("expected empty non-nil slice for %q, got %#v", input, docs)
		}
	}
}

func TestExtractDocumentsPrefersItemSizeLikeDecode(t *testing.T) {
	doc := `{"identifier":"both","item_size":4096,"size":"2048"}`
	strict, err := archive.DecodeSearchResponse([]byte(`{"response":{"numFound":1,"start":0,"docs":[` + doc + `]}}`))
	if err != nil {
		t.Fatalf("DecodeSearchResponse: %v", err)
	}
	recovered := archive.ExtractDocuments([]byte(`{"response":{"numFound":"?","docs":[` + doc + `]}}`))
	if len(strict.Documents) != 1 || len(recovered) != 1 {
		t.Fatalf("expected one document each, got %d strict and %d recovered", len(strict.Documents), len(recovered))
	}
	for name, got := range map[string]archive.SearchDocument{"strict": strict.Documents[0], "recovered": recovered[0]} {
		if got.EstimatedSizeBytes == nil || *got.EstimatedSizeBytes != 4096 {
			t.Fatalf("%s EstimatedSizeBytes = %v, want 4096", name, got.EstimatedSizeBytes)
		}
	}
}
