package notion

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// NewClient creates a new Notion client for the given ledger database.
func NewClient(token, databaseID string) *Client {
	return &Client{
		Token:      token,
		DatabaseID: databaseID,
		BaseURL:    DefaultAPIEndpoint,
		HTTPClient: &http.Client{
			Timeout: DefaultTimeout,
		},
	}
}

// WithBaseURL returns a new client with a custom base URL (for testing).
func (c *Client) WithBaseURL(baseURL string) *Client {
	return &Client{
		Token:      c.Token,
		DatabaseID: c.DatabaseID,
		BaseURL:    baseURL,
		HTTPClient: c.HTTPClient,
	}
}

// errorBody is the JSON shape of a Notion error response.
type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// doRequest performs an authenticated HTTP request. Non-2xx responses are
// returned as *APIError carrying the HTTP status, which is what the retry
// layer classifies on.
func (c *Client) doRequest(ctx context.Context, method, path string, body interface{}) ([]byte, error) {
	var reqBody io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		reqBody = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+c.Token)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Notion-Version", APIVersion)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}

	const maxResponseSize = 10 * 1024 * 1024
	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	_ = resp.Body.Close()
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var eb errorBody
		_ = json.Unmarshal(respBody, &eb)
		if eb.Message == "" {
			eb.Message = string(respBody)
		}
		return nil, &APIError{StatusCode: resp.StatusCode, Code: eb.Code, Message: eb.Message}
	}

	return respBody, nil
}

// queryResponse is the JSON shape of a database query response.
type queryResponse struct {
	Results    []Page  `json:"results"`
	HasMore    bool    `json:"has_more"`
	NextCursor *string `json:"next_cursor"`
}

// Query runs a database query with the given filter expression, following
// cursors until exhaustion. filter may be nil for an unfiltered query.
func (c *Client) Query(ctx context.Context, filter map[string]interface{}) ([]Page, error) {
	var pages []Page
	var cursor *string

	for {
		body := map[string]interface{}{
			"page_size": MaxPageSize,
		}
		if filter != nil {
			body["filter"] = filter
		}
		if cursor != nil {
			body["start_cursor"] = *cursor
		}

		respBody, err := c.doRequest(ctx, http.MethodPost, "/v1/databases/"+c.DatabaseID+"/query", body)
		if err != nil {
			return nil, fmt.Errorf("failed to query database: %w", err)
		}

		var qr queryResponse
		if err := json.Unmarshal(respBody, &qr); err != nil {
			return nil, fmt.Errorf("failed to parse query response: %w", err)
		}
		pages = append(pages, qr.Results...)

		if !qr.HasMore || qr.NextCursor == nil {
			break
		}
		cursor = qr.NextCursor
	}

	return pages, nil
}

// CreatePage creates a page in the ledger database with the given property
// shape and optional body blocks.
func (c *Client) CreatePage(ctx context.Context, properties map[string]interface{}, children []map[string]interface{}) (*Page, error) {
	body := map[string]interface{}{
		"parent":     map[string]interface{}{"database_id": c.DatabaseID},
		"properties": properties,
	}
	if len(children) > 0 {
		body["children"] = children
	}

	respBody, err := c.doRequest(ctx, http.MethodPost, "/v1/pages", body)
	if err != nil {
		return nil, fmt.Errorf("failed to create page: %w", err)
	}

	var page Page
	if err := json.Unmarshal(respBody, &page); err != nil {
		return nil, fmt.Errorf("failed to parse create response: %w", err)
	}
	return &page, nil
}

// PatchPage updates properties on an existing page.
func (c *Client) PatchPage(ctx context.Context, pageID string, properties map[string]interface{}) (*Page, error) {
	body := map[string]interface{}{
		"properties": properties,
	}

	respBody, err := c.doRequest(ctx, http.MethodPatch, "/v1/pages/"+pageID, body)
	if err != nil {
		return nil, fmt.Errorf("failed to patch page %s: %w", pageID, err)
	}

	var page Page
	if err := json.Unmarshal(respBody, &page); err != nil {
		return nil, fmt.Errorf("failed to parse patch response: %w", err)
	}
	return &page, nil
}
