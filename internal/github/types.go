// Package github provides client and data types for the GitHub REST and
// GraphQL APIs.
//
// The REST client fetches issues and pull requests; the GraphQL client
// reads Projects v2 boards and their status fields. Both normalize into the
// reconcile package's Item shape through the Source adapter.
package github

import (
	"fmt"
	"net/http"
	"time"
)

// API configuration constants.
const (
	// DefaultAPIEndpoint is the GitHub REST API base URL.
	DefaultAPIEndpoint = "https://api.github.com"

	// DefaultGraphQLEndpoint is the GitHub GraphQL API URL.
	DefaultGraphQLEndpoint = "https://api.github.com/graphql"

	// DefaultTimeout is the default HTTP request timeout.
	DefaultTimeout = 30 * time.Second

	// MaxPageSize is the maximum number of issues to fetch per page.
	MaxPageSize = 100

	// MaxPages is the maximum number of pages to fetch before stopping.
	// This prevents infinite loops from malformed Link headers.
	MaxPages = 1000
)

// Client provides methods to interact with the GitHub REST API.
type Client struct {
	Token      string       // GitHub personal access token
	Owner      string       // Repository owner (user or org)
	Repo       string       // Repository name
	BaseURL    string       // API base URL (default: https://api.github.com)
	HTTPClient *http.Client // Optional custom HTTP client
}

// APIError is a non-2xx response from the GitHub API.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("github: API error: %s (status %d)", e.Body, e.StatusCode)
}

// HTTPStatus returns the HTTP status code so the retry layer can classify
// the failure.
func (e *APIError) HTTPStatus() int { return e.StatusCode }

// Issue represents an issue (or pull request) from the GitHub REST API.
type Issue struct {
	ID          int        `json:"id"`      // Numeric database ID
	NodeID      string     `json:"node_id"` // Opaque GraphQL node ID, stable across transfers
	Number      int        `json:"number"`  // Repository-scoped issue number
	Title       string     `json:"title"`
	Body        string     `json:"body"`
	State       string     `json:"state"` // "open" or "closed"
	CreatedAt   *time.Time `json:"created_at"`
	UpdatedAt   *time.Time `json:"updated_at"`
	ClosedAt    *time.Time `json:"closed_at,omitempty"`
	Labels      []Label    `json:"labels"`
	HTMLURL     string     `json:"html_url"`
	PullRequest *PullRef   `json:"pull_request,omitempty"` // Non-nil if this is a PR
}

// PullRef indicates an issue is actually a pull request. The GitHub Issues
// API returns PRs alongside issues; this field distinguishes them.
type PullRef struct {
	URL string `json:"url,omitempty"`
}

// PullRequest carries the PR-only attributes from the pulls endpoint.
type PullRequest struct {
	ID        int     `json:"id"`
	NodeID    string  `json:"node_id"`
	Number    int     `json:"number"`
	Title     string  `json:"title"`
	Body      string  `json:"body"`
	State     string  `json:"state"`
	Merged    bool    `json:"merged"`
	Draft     bool    `json:"draft"`
	Additions int     `json:"additions"`
	Deletions int     `json:"deletions"`
	HTMLURL   string  `json:"html_url"`
	Labels    []Label `json:"labels"`
}

// Label represents a GitHub label.
type Label struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Color       string `json:"color"`
	Description string `json:"description,omitempty"`
}

// validStates for GitHub issues.
var validStates = map[string]bool{
	"open":   true,
	"closed": true,
	"all":    true,
}

// IsValidState checks if a GitHub state filter string is valid.
func IsValidState(state string) bool {
	return validStates[state]
}

// LabelNames extracts label name strings from a slice of Label structs.
func LabelNames(labels []Label) []string {
	names := make([]string, len(labels))
	for i, l := range labels {
		names[i] = l.Name
	}
	return names
}
