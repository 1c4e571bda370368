package searchapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Outcome classifies one dispatch result. Connection-level failures are
// captured here and returned as values, never propagated as faults.
type Outcome int

const (
	OutcomeSuccess Outcome = iota
	OutcomeRemoteError
	OutcomeConnectionFailure
)

// Result is the classified outcome of one outbound call
type Result struct {
	Outcome Outcome
	Message string
	Body    string
}

// Callback headers attached to every document write so the remote side
// can report completion out of band.
const (
	HeaderCallback           = "X-Sync-Callback"
	HeaderCallbackErrorsOnly = "X-Sync-Callback-Errors-Only"
)

// Client talks to the remote document API. Base URL and token are read
// through getters so runtime settings updates take effect immediately.
type Client struct {
	getBaseURL func() string
	getToken   func() string
	httpClient *http.Client
}

func NewClient(baseURL, token string, timeout time.Duration) *Client {
	return &Client{
		getBaseURL: func() string { return baseURL },
		getToken:   func() string { return token },
		httpClient: &http.Client{Timeout: timeout},
	}
}

// NewClientWithGetters creates a client whose endpoint and token follow
// runtime settings updates
func NewClientWithGetters(getBaseURL, getToken func() string, timeout time.Duration) *Client {
	return &Client{
		getBaseURL: getBaseURL,
		getToken:   getToken,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Upsert creates or updates one document. typeLabel is the singular record
// type; the endpoint uses its plural form.
func (c *Client) Upsert(ctx context.Context, typeLabel string, body []byte, callbackURL string, errorsOnly bool) Result {
	endpoint := fmt.Sprintf("%s/%ss", strings.TrimRight(c.getBaseURL(), "/"), typeLabel)
	return c.send(ctx, http.MethodPost, endpoint, body, callbackURL, errorsOnly)
}

// Delete removes one document by its cross-system identifier
func (c *Client) Delete(ctx context.Context, typeLabel, externalID, callbackURL string, errorsOnly bool) Result {
	endpoint := fmt.Sprintf("%s/%ss/%s", strings.TrimRight(c.getBaseURL(), "/"), typeLabel, externalID)
	return c.send(ctx, http.MethodDelete, endpoint, nil, callbackURL, errorsOnly)
}

func (c *Client) send(ctx context.Context, method, endpoint string, body []byte, callbackURL string, errorsOnly bool) Result {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewBuffer(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return Result{Outcome: OutcomeConnectionFailure, Message: err.Error()}
	}
	req.Header.Set("Content-Type", "application/json")
	if token := c.getToken(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	req.Header.Set(HeaderCallback, callbackURL)
	if errorsOnly {
		req.Header.Set(HeaderCallbackErrorsOnly, "true")
	} else {
		req.Header.Set(HeaderCallbackErrorsOnly, "false")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// Timeout, DNS failure, refused connection
		return Result{Outcome: OutcomeConnectionFailure, Message: err.Error()}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return Result{Outcome: OutcomeConnectionFailure, Message: err.Error()}
	}

	return classify(resp.StatusCode, raw)
}

// classify decides between a successful acceptance and an application-level
// error signaled by the remote API
func classify(statusCode int, raw []byte) Result {
	var payload struct {
		Error   bool   `json:"error"`
		Message string `json:"message"`
	}
	_ = json.Unmarshal(raw, &payload)

	if statusCode >= 400 || payload.Error {
		message := payload.Message
		if message == "" {
			message = fmt.Sprintf("remote API returned status %d", statusCode)
		}
		return Result{Outcome: OutcomeRemoteError, Message: message, Body: string(raw)}
	}
	return Result{Outcome: OutcomeSuccess, Body: string(raw)}
}

// RemoteDocument is one indexed document's sync-relevant fields
type RemoteDocument struct {
	RecordID uint   `json:"record_id"`
	Modified string `json:"modified"`
}

type scrollResponse struct {
	Documents []RemoteDocument `json:"documents"`
	Cursor    string           `json:"cursor"`
}

// ScrollDocuments pages through every document belonging to this site,
// returning record id to remote modified timestamp. If a page request fails
// mid-scroll, the error is returned alongside whatever was collected.
func (c *Client) ScrollDocuments(ctx context.Context, pageSize int) (map[uint]string, error) {
	docs := make(map[uint]string)
	cursor := ""

	for {
		endpoint := fmt.Sprintf("%s/documents?size=%d", strings.TrimRight(c.getBaseURL(), "/"), pageSize)
		if cursor != "" {
			endpoint += "&cursor=" + url.QueryEscape(cursor)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return docs, err
		}
		if token := c.getToken(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return docs, fmt.Errorf("scroll request failed: %w", err)
		}

		raw, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			return docs, fmt.Errorf("failed to read scroll response: %w", err)
		}
		if resp.StatusCode != http.StatusOK {
			return docs, fmt.Errorf("scroll returned status %d", resp.StatusCode)
		}

		var page scrollResponse
		if err := json.Unmarshal(raw, &page); err != nil {
			return docs, fmt.Errorf("failed to decode scroll response: %w", err)
		}
		if len(page.Documents) == 0 {
			return docs, nil
		}
		for _, doc := range page.Documents {
			docs[doc.RecordID] = doc.Modified
		}
		if page.Cursor == "" {
			return docs, nil
		}
		cursor = page.Cursor
	}
}

// TestConnection performs a diagnostic passthrough against the given URL
// (or the configured base URL when empty) and returns the raw response.
func (c *Client) TestConnection(ctx context.Context, target string) (int, string, error) {
	if target == "" {
		target = c.getBaseURL()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return 0, "", err
	}
	if token := c.getToken(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, "", err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, "", err
	}
	return resp.StatusCode, string(raw), nil
}

// ExternalID builds the stable cross-system identifier for one record:
// the normalized site host joined with the record id.
func ExternalID(siteURL string, recordID uint) string {
	return fmt.Sprintf("%s_%d", NormalizedHost(siteURL), recordID)
}

// NormalizedHost lowercases the site host, drops scheme and port, and
// replaces dots so the value is safe inside a document identifier.
func NormalizedHost(siteURL string) string {
	host := siteURL
	if parsed, err := url.Parse(siteURL); err == nil && parsed.Host != "" {
		host = parsed.Hostname()
	}
	host = strings.ToLower(host)
	return strings.ReplaceAll(host, ".", "-")
}
