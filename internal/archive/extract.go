package archive

import (
	"bytes"
	"encoding/json"
	"strings"
)

// maxExtracted bounds how many docs elements the best-effort extractor looks at.
const maxExtracted = 20

// ExtractDocuments walks response.docs of an arbitrary JSON payload and
// recovers whatever search documents it can. Elements without a string
// identifier are skipped. It never fails; unrecoverable input yields an empty
// slice.
func ExtractDocuments(data []byte) []SearchDocument {
	out := []SearchDocument{}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var root any
	if err := dec.Decode(&root); err != nil {
		return out
	}
	docs, ok := lookup(root, "response", "docs").([]any)
	if !ok {
		return out
	}

	for i, item := range docs {
		if i >= maxExtracted {
			break
		}
		fields, ok := item.(map[string]any)
		if !ok {
			continue
		}
		id, ok := fields["identifier"].(string)
		if !ok || strings.TrimSpace(id) == "" {
			continue
		}
		doc := SearchDocument{
			Identifier:         strings.TrimSpace(id),
			Title:              anyText(fields["title"]),
			Description:        anyText(fields["description"]),
			MediaType:          anyText(fields["mediatype"]),
			Year:               anyText(fields["year"]),
			Creators:           anyStrings(fields["creator"]),
			Subjects:           anyStrings(fields["subject"]),
			EstimatedSizeBytes: anySize(fields["item_size"]),
			DownloadCount:      anySize(fields["downloads"]),
		}
		if doc.EstimatedSizeBytes == nil {
			doc.EstimatedSizeBytes = anySize(fields["size"])
		}
		out = append(out, doc)
	}
	return out
}

func lookup(node any, path ...string) any {
	for _, key := range path {
		m, ok := node.(map[string]any)
		if !ok {
			return nil
		}
		node = m[key]
	}
	return node
}

func anyText(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case json.Number:
		return t.String()
	case []any:
		return strings.Join(anyStrings(t), "\n")
	default:
		return ""
	}
}

func anyStrings(v any) []string {
	switch t := v.(type) {
	case string:
		return []string{t}
	case []any:
		out := make([]string, 0, len(t))
		for _, item := range t {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}

func anySize(v any) *uint64 {
	switch t := v.(type) {
	case json.Number:
		return parseNumberSize(t.String())
	case string:
		return parseDigitSize(t)
	default:
		return nil
	}
}
