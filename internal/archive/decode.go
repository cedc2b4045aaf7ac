package archive

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// DecodeSearchResponse decodes an advanced search payload. Documents without
// an identifier are dropped and recorded in the response issues.
func DecodeSearchResponse(data []byte) (*SearchResponse, error) {
	top, err := decodeObject(data)
	if err != nil {
		return nil, structuralError(data, "payload is not a JSON object", err)
	}

	respRaw, ok := top["response"]
	if !ok || rawKind(respRaw) == kindNull {
		if msg, ok := apiMessage(top); ok {
			return nil, apiError(data, msg)
		}
		return nil, structuralError(data, "missing response object", nil)
	}
	resp, err := decodeObject(respRaw)
	if err != nil {
		return nil, structuralError(data, "response is not an object", err)
	}

	out := &SearchResponse{}
	o := newObject("response", resp, &out.Issues)
	if v := o.size("numFound"); v != nil {
		out.NumFound = *v
	}
	if v := o.size("start"); v != nil {
		out.Start = *v
	}

	docsRaw, ok := resp["docs"]
	if !ok || rawKind(docsRaw) != kindArray {
		return nil, structuralError(data, "response.docs is not an array", nil)
	}
	var docs []json.RawMessage
	if err := json.Unmarshal(docsRaw, &docs); err != nil {
		return nil, structuralError(data, "response.docs is not an array", err)
	}

	out.Documents = make([]SearchDocument, 0, len(docs))
	for i, raw := range docs {
		path := fmt.Sprintf("response.docs[%d]", i)
		fields, err := decodeObject(raw)
		if err != nil {
			out.Issues = append(out.Issues, FieldIssue{Path: path, Reason: "not an object, dropped"})
			continue
		}
		doc, ok := decodeDocument(path, fields)
		if !ok {
			out.Issues = append(out.Issues, FieldIssue{Path: path + ".identifier", Reason: "missing identifier, dropped"})
			continue
		}
		out.Documents = append(out.Documents, doc)
	}
	return out, nil
}

func decodeDocument(path string, fields map[string]json.RawMessage) (SearchDocument, bool) {
	var doc SearchDocument
	o := newObject(path, fields, &doc.Issues)
	doc.Identifier = strings.TrimSpace(o.str("identifier"))
	if doc.Identifier == "" {
		return doc, false
	}
	doc.Title = o.text("title")
	doc.Description = o.text("description")
	doc.MediaType = o.str("mediatype")
	doc.Year = o.numberString("year")
	doc.Creators = o.stringList("creator")
	doc.Subjects = o.stringList("subject")
	doc.EstimatedSizeBytes = o.size("item_size")
	if doc.EstimatedSizeBytes == nil {
		doc.EstimatedSizeBytes = o.size("size")
	}
	doc.DownloadCount = o.size("downloads")
	return doc, true
}

// DecodeItemResponse decodes a /metadata/{identifier} payload. The archive
// answers unknown identifiers with an empty object, which is reported as a
// structural error. Files without a name are dropped.
func DecodeItemResponse(data []byte) (*ItemResponse, error) {
	top, err := decodeObject(data)
	if err != nil {
		return nil, structuralError(data, "payload is not a JSON object", err)
	}
	if len(top) == 0 {
		return nil, structuralError(data, "empty item payload, identifier may not exist", nil)
	}

	metaRaw, hasMeta := top["metadata"]
	filesRaw, hasFiles := top["files"]
	if !hasMeta {
		if msg, ok := apiMessage(top); ok {
			return nil, apiError(data, msg)
		}
		if !hasFiles {
			return nil, structuralError(data, "missing metadata and files", nil)
		}
	}

	out := &ItemResponse{}
	if hasMeta && rawKind(metaRaw) != kindNull {
		fields, err := decodeObject(metaRaw)
		if err != nil {
			return nil, structuralError(data, "metadata is not an object", err)
		}
		out.Metadata = decodeMetadata(newObject("metadata", fields, &out.Issues))
	}

	if hasFiles {
		out.Files = decodeFiles(filesRaw, &out.Issues)
	}
	return out, nil
}

func decodeMetadata(o object) ItemMetadata {
	return ItemMetadata{
		Identifier:  strings.TrimSpace(o.str("identifier")),
		Title:       o.text("title"),
		Year:        o.numberString("year"),
		Description: o.text("description"),
		Creator:     o.stringList("creator"),
		Subject:     o.stringList("subject"),
		Collection:  o.stringList("collection"),
		Date:        o.text("date"),
		MediaType:   o.str("mediatype"),
	}
}

func decodeFiles(raw json.RawMessage, issues *[]FieldIssue) []FileEntry {
	switch rawKind(raw) {
	case kindAbsent, kindNull:
		return nil
	case kindArray:
	default:
		*issues = append(*issues, FieldIssue{Path: "files", Reason: "expected array"})
		return nil
	}
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		*issues = append(*issues, FieldIssue{Path: "files", Reason: err.Error()})
		return nil
	}
	files := make([]FileEntry, 0, len(items))
	for i, item := range items {
		path := fmt.Sprintf("files[%d]", i)
		fields, err := decodeObject(item)
		if err != nil {
			*issues = append(*issues, FieldIssue{Path: path, Reason: "not an object, dropped"})
			continue
		}
		o := newObject(path, fields, issues)
		entry := FileEntry{
			Name:      o.str("name"),
			Format:    o.text("format"),
			SizeBytes: o.size("size"),
			Runtime:   o.text("runtime"),
			Length:    o.text("length"),
			Source:    o.str("source"),
		}
		if strings.TrimSpace(entry.Name) == "" {
			*issues = append(*issues, FieldIssue{Path: path + ".name", Reason: "missing name, dropped"})
			continue
		}
		files = append(files, entry)
	}
	return files
}

// apiMessage returns the message of a top-level {"error": ...} payload.
func apiMessage(top map[string]json.RawMessage) (string, bool) {
	raw, ok := top["error"]
	if !ok {
		return "", false
	}
	switch rawKind(raw) {
	case kindNull:
		return "", false
	case kindString:
		var msg string
		if err := json.Unmarshal(raw, &msg); err == nil && strings.TrimSpace(msg) != "" {
			return strings.TrimSpace(msg), true
		}
		return "unspecified error", true
	default:
		return string(bytes.TrimSpace(raw)), true
	}
}
