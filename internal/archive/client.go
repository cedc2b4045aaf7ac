package archive

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"channelsurfer/internal/logging"
	"channelsurfer/internal/services"
)

const (
	defaultRequestTimeout = 30 * time.Second
	// maxPayloadBytes caps search and metadata bodies read into memory.
	maxPayloadBytes = 32 << 20
	stageArchive    = "archive"
)

// searchFields are the document fields requested from advanced search.
var searchFields = []string{
	"identifier", "title", "description", "mediatype", "year",
	"creator", "subject", "item_size", "downloads",
}

// Query describes one advanced search.
type Query struct {
	Text      string
	MediaType string
	Rows      int
}

// Artifact is an open download stream. Size is zero when the server did not
// send a Content-Length.
type Artifact struct {
	Body io.ReadCloser
	Size int64
}

// Client provides access to the archive search, metadata, and download
// endpoints.
type Client struct {
	baseURL        string
	userAgent      string
	requestTimeout time.Duration
	httpClient     *http.Client
	logger         *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client. The client should not
// carry a global Timeout since it also serves long artifact streams.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithUserAgent sets the User-Agent header sent with every request.
func WithUserAgent(agent string) Option {
	return func(c *Client) {
		if agent = strings.TrimSpace(agent); agent != "" {
			c.userAgent = agent
		}
	}
}

// WithRequestTimeout bounds search and metadata requests.
func WithRequestTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.requestTimeout = timeout
		}
	}
}

// WithLogger attaches a logger for decode fallbacks and field issues.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// New creates an archive client rooted at baseURL.
func New(baseURL string, opts ...Option) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, errors.New("archive base url required")
	}
	if _, err := url.Parse(baseURL); err != nil {
		return nil, fmt.Errorf("parse archive base url: %w", err)
	}
	client := &Client{
		baseURL:        baseURL,
		userAgent:      "channelsurfer",
		requestTimeout: defaultRequestTimeout,
		httpClient:     &http.Client{},
		logger:         logging.NewNop(),
	}
	for _, opt := range opts {
		opt(client)
	}
	client.logger = logging.NewComponentLogger(client.logger, "archive")
	return client, nil
}

// BaseURL returns the archive root the client talks to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Search runs an advanced search. When strict decoding fails structurally the
// best-effort extractor is tried; recovered documents are returned with
// Partial set.
func (c *Client) Search(ctx context.Context, query Query) (*SearchResponse, error) {
	text := strings.TrimSpace(query.Text)
	if text == "" {
		return nil, errors.New("search query must not be empty")
	}
	mediaType := strings.TrimSpace(query.MediaType)
	if mediaType == "" {
		mediaType = "movies"
	}
	rows := query.Rows
	if rows <= 0 {
		rows = 10
	}

	params := url.Values{}
	params.Set("q", "mediatype:"+mediaType+" "+text)
	for _, field := range searchFields {
		params.Add("fl[]", field)
	}
	params.Set("sort[]", "downloads desc")
	params.Set("rows", strconv.Itoa(rows))
	params.Set("page", "1")
	params.Set("output", "json")

	body, err := c.get(ctx, "search", c.baseURL+"/advancedsearch.php?"+params.Encode())
	if err != nil {
		return nil, err
	}

	resp, err := DecodeSearchResponse(body)
	if err == nil {
		c.logIssues(ctx, "search", resp.Issues)
		for _, doc := range resp.Documents {
			c.logIssues(ctx, doc.Identifier, doc.Issues)
		}
		return resp, nil
	}

	var decodeErr *DecodeError
	if errors.As(err, &decodeErr) && decodeErr.Kind == DecodeStructural {
		docs := ExtractDocuments(body)
		if len(docs) > 0 {
			logging.WarnWithContext(logging.WithContext(ctx, c.logger), "search payload decoded by fallback extractor", "archive_decode_fallback",
				logging.Error(err),
				logging.Int("recovered", len(docs)),
				logging.String(logging.FieldErrorHint, "archive schema may have changed; results may be incomplete"),
			)
			return &SearchResponse{NumFound: uint64(len(docs)), Documents: docs, Partial: true}, nil
		}
	}
	return nil, err
}

// Metadata fetches and decodes the metadata of one item.
func (c *Client) Metadata(ctx context.Context, identifier string) (*ItemResponse, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" {
		return nil, errors.New("identifier must not be empty")
	}
	body, err := c.get(ctx, "metadata", c.baseURL+"/metadata/"+url.PathEscape(identifier))
	if err != nil {
		return nil, err
	}
	resp, err := DecodeItemResponse(body)
	if err != nil {
		return nil, err
	}
	if resp.Metadata.Identifier == "" {
		resp.Metadata.Identifier = identifier
	}
	c.logIssues(ctx, identifier, resp.Issues)
	return resp, nil
}

// Open starts streaming one file of an item. The caller owns Body. No
// request timeout is applied here; bound the stream through ctx.
func (c *Client) Open(ctx context.Context, identifier, fileName string) (*Artifact, error) {
	endpoint := c.DownloadURL(identifier, fileName)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, services.Wrap(services.ErrTransport, stageArchive, "download", "build request", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, services.Wrap(services.ErrTransport, stageArchive, "download", "execute request", err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, statusError("download", resp.StatusCode)
	}
	size := resp.ContentLength
	if size < 0 {
		size = 0
	}
	return &Artifact{Body: resp.Body, Size: size}, nil
}

// DownloadURL builds the /download URL for one file of an item. File names
// may contain directories.
func (c *Client) DownloadURL(identifier, fileName string) string {
	segments := strings.Split(fileName, "/")
	for i, segment := range segments {
		segments[i] = url.PathEscape(segment)
	}
	return c.baseURL + "/download/" + url.PathEscape(identifier) + "/" + strings.Join(segments, "/")
}

// ThumbnailURL returns the item thumbnail service URL.
func (c *Client) ThumbnailURL(identifier string) string {
	return c.baseURL + "/services/img/" + url.PathEscape(identifier)
}

func (c *Client) get(ctx context.Context, operation, endpoint string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, c.requestTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, services.Wrap(services.ErrTransport, stageArchive, operation, "build request", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	requestStart := time.Now()
	resp, err := c.httpClient.Do(req)
	latency := time.Since(requestStart)
	if err != nil {
		return nil, services.Wrap(services.ErrTransport, stageArchive, operation, fmt.Sprintf("execute request (latency=%v)", latency), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, statusError(operation, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPayloadBytes))
	if err != nil {
		return nil, services.Wrap(services.ErrTransport, stageArchive, operation, "read body", err)
	}
	c.logger.Debug("archive request complete",
		logging.String("operation", operation),
		logging.Duration("latency", latency),
		logging.Int("bytes", len(body)),
	)
	return body, nil
}

func statusError(operation string, code int) error {
	err := services.Wrap(services.ErrTransport, stageArchive, operation, fmt.Sprintf("archive returned status %d", code), nil)
	if code == http.StatusNotFound {
		return fmt.Errorf("%w: %w", services.ErrNotFound, err)
	}
	return err
}

func (c *Client) logIssues(ctx context.Context, subject string, issues []FieldIssue) {
	if len(issues) == 0 {
		return
	}
	fields := make([]string, 0, len(issues))
	for _, issue := range issues {
		fields = append(fields, issue.String())
	}
	logging.WithContext(ctx, c.logger).Debug("defaulted fields while decoding",
		logging.String("subject", subject),
		logging.String("issues", strings.Join(fields, "; ")),
	)
}
