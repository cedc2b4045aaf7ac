package archive

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

var errNotObject = errors.New("not a JSON object")

// JSON value kinds as identified by their first significant byte.
const (
	kindAbsent = 0
	kindNull   = 'n'
	kindString = '"'
	kindArray  = '['
	kindObject = '{'
	kindNumber = '0'
)

func rawKind(raw json.RawMessage) byte {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return kindAbsent
	}
	c := trimmed[0]
	if c == '-' || (c >= '0' && c <= '9') {
		return kindNumber
	}
	return c
}

func decodeObject(raw []byte) (map[string]json.RawMessage, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, err
	}
	if fields == nil {
		return nil, errNotObject
	}
	return fields, nil
}

// object reads individual fields out of a decoded JSON object, defaulting and
// recording any field it cannot interpret.
type object struct {
	path   string
	fields map[string]json.RawMessage
	issues *[]FieldIssue
}

func newObject(path string, fields map[string]json.RawMessage, issues *[]FieldIssue) object {
	return object{path: path, fields: fields, issues: issues}
}

func (o object) issue(key, reason string) {
	path := key
	if o.path != "" {
		path = o.path + "." + key
	}
	*o.issues = append(*o.issues, FieldIssue{Path: path, Reason: reason})
}

func (o object) raw(key string) (json.RawMessage, byte) {
	raw, ok := o.fields[key]
	if !ok {
		return nil, kindAbsent
	}
	return raw, rawKind(raw)
}

// str reads a field that must be a JSON string.
func (o object) str(key string) string {
	raw, kind := o.raw(key)
	switch kind {
	case kindAbsent, kindNull:
		return ""
	case kindString:
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			o.issue(key, err.Error())
			return ""
		}
		return s
	default:
		o.issue(key, "expected string")
		return ""
	}
}

// text reads a free-text field. Arrays of strings are joined by newlines and
// numbers keep their literal form.
func (o object) text(key string) string {
	raw, kind := o.raw(key)
	switch kind {
	case kindAbsent, kindNull:
		return ""
	case kindString:
		return o.str(key)
	case kindNumber:
		return string(bytes.TrimSpace(raw))
	case kindArray:
		values, ok := stringArray(raw)
		if !ok {
			o.issue(key, "expected string or array of strings")
			return ""
		}
		return strings.Join(values, "\n")
	default:
		o.issue(key, "expected text")
		return ""
	}
}

// stringList reads an ordered string sequence that may arrive as a single
// string. Any other shape defaults to an empty list.
func (o object) stringList(key string) []string {
	raw, kind := o.raw(key)
	switch kind {
	case kindAbsent, kindNull:
		return nil
	case kindString:
		return []string{o.str(key)}
	case kindArray:
		values, ok := stringArray(raw)
		if !ok {
			o.issue(key, "array contains non-string elements")
			return nil
		}
		return values
	default:
		o.issue(key, "expected string or array of strings")
		return nil
	}
}

// numberString reads a string-valued number: a string, or an integer
// rendered in decimal.
func (o object) numberString(key string) string {
	raw, kind := o.raw(key)
	switch kind {
	case kindAbsent, kindNull:
		return ""
	case kindString:
		return o.str(key)
	case kindNumber:
		literal := string(bytes.TrimSpace(raw))
		if _, err := strconv.ParseInt(literal, 10, 64); err == nil {
			return literal
		}
		if _, err := strconv.ParseUint(literal, 10, 64); err == nil {
			return literal
		}
		o.issue(key, fmt.Sprintf("number %s is not an integer", literal))
		return ""
	default:
		o.issue(key, "expected string or integer")
		return ""
	}
}

// size reads a byte count or counter. Unparseable values are treated as
// absent without recording an issue.
func (o object) size(key string) *uint64 {
	raw, kind := o.raw(key)
	switch kind {
	case kindNumber:
		return parseNumberSize(string(bytes.TrimSpace(raw)))
	case kindString:
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil
		}
		return parseDigitSize(s)
	default:
		return nil
	}
}

func stringArray(raw json.RawMessage) ([]string, bool) {
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, false
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		if rawKind(item) != kindString {
			return nil, false
		}
		var s string
		if err := json.Unmarshal(item, &s); err != nil {
			return nil, false
		}
		out = append(out, s)
	}
	return out, true
}

func parseNumberSize(literal string) *uint64 {
	if v, err := strconv.ParseUint(literal, 10, 64); err == nil {
		return &v
	}
	f, err := strconv.ParseFloat(literal, 64)
	if err != nil || f < 0 || f != math.Trunc(f) || f >= math.MaxUint64 {
		return nil
	}
	v := uint64(f)
	return &v
}

func parseDigitSize(s string) *uint64 {
	if s == "" {
		return nil
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return nil
		}
	}
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return nil
	}
	return &v
}
