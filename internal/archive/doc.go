// Package archive talks to the Internet Archive search, metadata, and
// download endpoints and turns their loosely typed JSON into stable Go values.
//
// Decoding is tolerant field by field: a creator that arrives as a bare
// string, a year that arrives as an integer, or a size that arrives as a
// quoted number all normalize to the same model. Fields that cannot be
// interpreted are defaulted and reported as FieldIssue values instead of
// failing the whole document. Structural failures surface as *DecodeError,
// and search callers fall back to ExtractDocuments, a path walk that recovers
// whatever documents it can.
package archive
