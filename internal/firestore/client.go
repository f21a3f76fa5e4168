package firestore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/anshulchahar/gita"
	"github.com/anshulchahar/gita/internal/store"
)

// DefaultPageSize is the page size requested by List.
const DefaultPageSize = 300

// Document is a stored document as returned by List.
type Document struct {
	Name       string           `json:"name"`
	Fields     map[string]Value `json:"fields,omitempty"`
	CreateTime string           `json:"createTime,omitempty"`
	UpdateTime string           `json:"updateTime,omitempty"`
}

// ID returns the last path segment of the document name.
func (d Document) ID() string { return path.Base(d.Name) }

type listResponse struct {
	Documents     []Document `json:"documents"`
	NextPageToken string     `json:"nextPageToken"`
}

type writeRequest struct {
	Fields map[string]Value `json:"fields"`
}

// HTTPClient talks to the Firestore REST API under baseURL, which is the
// ".../databases/(default)/documents" root. Tokens are supplied per call.
type HTTPClient struct {
	baseURL    string
	pageSize   int
	httpClient *http.Client
}

// NewHTTPClient creates a document store client.
func NewHTTPClient(baseURL string) *HTTPClient {
	return &HTTPClient{
		baseURL:  strings.TrimSuffix(baseURL, "/"),
		pageSize: DefaultPageSize,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// WithHTTPClient sets a custom http.Client (for testing or custom timeouts).
func (c *HTTPClient) WithHTTPClient(client *http.Client) *HTTPClient {
	c.httpClient = client
	return c
}

// WithDebug traces every request and response through l by wrapping the
// transport of a copy of the current http.Client.
func (c *HTTPClient) WithDebug(l *gita.DebugLogger) *HTTPClient {
	hc := *c.httpClient
	hc.Transport = l.Transport(hc.Transport)
	c.httpClient = &hc
	return c
}

// WithPageSize overrides the List page size.
func (c *HTTPClient) WithPageSize(n int) *HTTPClient {
	if n > 0 {
		c.pageSize = n
	}
	return c
}

func (c *HTTPClient) setHeaders(req *http.Request, token string) {
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("User-Agent", "gita-sync/1.0")
}

func newSyncError(op, collection, id string, statusCode int, body []byte) *gita.SyncError {
	msg := ""
	if len(body) > 0 && statusCode >= 400 {
		if len(body) > 200 {
			msg = string(body[:200]) + "..."
		} else {
			msg = string(body)
		}
	}
	return &gita.SyncError{
		Operation:  op,
		Collection: collection,
		DocumentID: id,
		StatusCode: statusCode,
		Err:        fmt.Errorf("HTTP %d: %s", statusCode, msg),
	}
}

func (c *HTTPClient) documentURL(collection, id string) (string, error) {
	if err := store.ValidateCollection(collection); err != nil {
		return "", fmt.Errorf("%w: %q", err, collection)
	}
	if err := store.ValidateDocumentID(id); err != nil {
		return "", fmt.Errorf("%w: %q", err, id)
	}
	return c.baseURL + "/" + collection + "/" + url.PathEscape(id), nil
}

var simpleFieldPath = regexp.MustCompile(`^[A-Za-z_][A-Za-z_0-9]*$`)

// fieldMask lists the top-level keys being written, quoting any that are
// not simple identifiers.
func fieldMask(fields map[string]any) url.Values {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	q := url.Values{}
	for _, k := range keys {
		if !simpleFieldPath.MatchString(k) {
			k = "`" + strings.ReplaceAll(strings.ReplaceAll(k, `\`, `\\`), "`", "\\`") + "`"
		}
		q.Add("updateMask.fieldPaths", k)
	}
	return q
}

// Upsert creates the document or overwrites the given top-level fields.
// Fields not named are left as stored; nested maps are replaced wholesale.
func (c *HTTPClient) Upsert(ctx context.Context, token, collection, id string, fields map[string]any) error {
	const op = "upsert"
	docURL, err := c.documentURL(collection, id)
	if err != nil {
		return &gita.SyncError{Operation: op, Collection: collection, DocumentID: id, Err: err}
	}
	body, err := json.Marshal(writeRequest{Fields: EncodeFields(fields)})
	if err != nil {
		return &gita.SyncError{Operation: op, Collection: collection, DocumentID: id, Err: err}
	}
	reqURL := docURL + "?" + fieldMask(fields).Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodPatch, reqURL, bytes.NewReader(body))
	if err != nil {
		return &gita.SyncError{Operation: op, Collection: collection, DocumentID: id, Err: err}
	}
	c.setHeaders(req, token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &gita.SyncError{Operation: op, Collection: collection, DocumentID: id, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return newSyncError(op, collection, id, resp.StatusCode, respBody)
	}
	return nil
}

// Get fetches one document.
func (c *HTTPClient) Get(ctx context.Context, token, collection, id string) (*Document, error) {
	const op = "get"
	docURL, err := c.documentURL(collection, id)
	if err != nil {
		return nil, &gita.SyncError{Operation: op, Collection: collection, DocumentID: id, Err: err}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, docURL, nil)
	if err != nil {
		return nil, &gita.SyncError{Operation: op, Collection: collection, DocumentID: id, Err: err}
	}
	c.setHeaders(req, token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &gita.SyncError{Operation: op, Collection: collection, DocumentID: id, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode == http.StatusNotFound {
		return nil, &gita.SyncError{Operation: op, Collection: collection, DocumentID: id, StatusCode: resp.StatusCode, Err: gita.ErrDocumentNotFound}
	}
	if resp.StatusCode != http.StatusOK {
		return nil, newSyncError(op, collection, id, resp.StatusCode, respBody)
	}

	var doc Document
	if err := json.Unmarshal(respBody, &doc); err != nil {
		return nil, &gita.SyncError{Operation: op, Collection: collection, DocumentID: id, Err: err}
	}
	return &doc, nil
}

// List returns every document in collection, following page tokens.
func (c *HTTPClient) List(ctx context.Context, token, collection string) ([]Document, error) {
	const op = "list"
	if err := store.ValidateCollection(collection); err != nil {
		return nil, &gita.SyncError{Operation: op, Collection: collection, Err: err}
	}

	var docs []Document
	pageToken := ""
	for {
		q := url.Values{}
		q.Set("pageSize", fmt.Sprintf("%d", c.pageSize))
		if pageToken != "" {
			q.Set("pageToken", pageToken)
		}
		reqURL := c.baseURL + "/" + collection + "?" + q.Encode()

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
		if err != nil {
			return docs, &gita.SyncError{Operation: op, Collection: collection, Err: err}
		}
		c.setHeaders(req, token)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return docs, &gita.SyncError{Operation: op, Collection: collection, Err: err}
		}
		respBody, _ := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return docs, newSyncError(op, collection, "", resp.StatusCode, respBody)
		}

		var page listResponse
		if err := json.Unmarshal(respBody, &page); err != nil {
			return docs, &gita.SyncError{Operation: op, Collection: collection, Err: err}
		}
		docs = append(docs, page.Documents...)
		if page.NextPageToken == "" || page.NextPageToken == pageToken {
			return docs, nil
		}
		pageToken = page.NextPageToken
	}
}

// Delete removes one document. Deleting a missing document succeeds.
func (c *HTTPClient) Delete(ctx context.Context, token, collection, id string) error {
	const op = "delete"
	docURL, err := c.documentURL(collection, id)
	if err != nil {
		return &gita.SyncError{Operation: op, Collection: collection, DocumentID: id, Err: err}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, docURL, nil)
	if err != nil {
		return &gita.SyncError{Operation: op, Collection: collection, DocumentID: id, Err: err}
	}
	c.setHeaders(req, token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &gita.SyncError{Operation: op, Collection: collection, DocumentID: id, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		return newSyncError(op, collection, id, resp.StatusCode, respBody)
	}
	return nil
}
