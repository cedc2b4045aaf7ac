package archive

// SearchDocument is one candidate item from an advanced search.
type SearchDocument struct {
	Identifier         string
	Title              string
	Description        string
	MediaType          string
	Year               string
	Creators           []string
	Subjects           []string
	EstimatedSizeBytes *uint64
	DownloadCount      *uint64
	Issues             []FieldIssue
}

// SearchResponse is a decoded advanced search payload.
type SearchResponse struct {
	NumFound  uint64
	Start     uint64
	Documents []SearchDocument
	Issues    []FieldIssue
	// Partial is set when the documents were recovered by ExtractDocuments
	// after strict decoding failed.
	Partial bool
}

// FileEntry is one file listed by the metadata endpoint.
type FileEntry struct {
	Name      string
	Format    string
	SizeBytes *uint64
	Runtime   string
	Length    string
	Source    string
}

// ItemMetadata holds the descriptive fields of an item.
type ItemMetadata struct {
	Identifier  string
	Title       string
	Year        string
	Description string
	Creator     []string
	Subject     []string
	Collection  []string
	Date        string
	MediaType   string
}

// ItemResponse is a decoded /metadata/{identifier} payload.
type ItemResponse struct {
	Files    []FileEntry
	Metadata ItemMetadata
	Issues   []FieldIssue
}

// FieldIssue records a field that was present but could not be interpreted
// and was defaulted.
type FieldIssue struct {
	Path   string
	Reason string
}

func (i FieldIssue) String() string {
	return i.Path + ": " + i.Reason
}
