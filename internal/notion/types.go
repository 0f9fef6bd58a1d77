// Package notion provides the ledger backend: a client for the Notion API
// and the property codecs that map sync items onto database pages.
package notion

import (
	"fmt"
	"net/http"
	"time"
)

// API configuration constants.
const (
	// DefaultAPIEndpoint is the Notion REST API base URL.
	DefaultAPIEndpoint = "https://api.notion.com"

	// APIVersion is sent in the Notion-Version header. Property shapes in
	// this package are tied to this version.
	APIVersion = "2022-06-28"

	// DefaultTimeout is the default HTTP request timeout.
	DefaultTimeout = 30 * time.Second

	// MaxPageSize is the maximum page size for database queries.
	MaxPageSize = 100
)

// Database property names. The ledger database is expected to carry these
// properties; Validate in the config package documents them to operators.
const (
	PropTitle    = "Name"
	PropNumber   = "Number"
	PropStatus   = "Status"
	PropState    = "State"
	PropLabels   = "Labels"
	PropURL      = "URL"
	PropKind     = "Kind"
	PropNodeID   = "Node ID"
	PropMerged   = "Merged"
	PropDraft    = "Draft"
	PropDiffSize = "Diff Size"
)

// Client provides methods to interact with the Notion API.
type Client struct {
	Token      string // Notion integration token
	DatabaseID string // Target database (the ledger)
	BaseURL    string
	HTTPClient *http.Client
}

// APIError is a non-2xx response from the Notion API.
type APIError struct {
	StatusCode int
	Code       string // Notion error code, e.g. "conflict_error"
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("notion: %s (status %d, code %s)", e.Message, e.StatusCode, e.Code)
}

// HTTPStatus returns the HTTP status code so the retry layer can classify
// the failure.
func (e *APIError) HTTPStatus() int { return e.StatusCode }

// Page is a Notion page as returned by the API, with only the parts this
// system reads.
type Page struct {
	ID             string                   `json:"id"`
	LastEditedTime time.Time                `json:"last_edited_time"`
	URL            string                   `json:"url"`
	Properties     map[string]PropertyValue `json:"properties"`
}

// PropertyValue is one typed property on a page. Exactly one of the typed
// fields is populated, per Type.
type PropertyValue struct {
	Type        string         `json:"type"`
	Title       []RichText     `json:"title,omitempty"`
	RichText    []RichText     `json:"rich_text,omitempty"`
	Number      *float64       `json:"number,omitempty"`
	URL         string         `json:"url,omitempty"`
	Checkbox    *bool          `json:"checkbox,omitempty"`
	Select      *SelectOption  `json:"select,omitempty"`
	MultiSelect []SelectOption `json:"multi_select,omitempty"`
	Status      *SelectOption  `json:"status,omitempty"`
}

// RichText is one segment of a title or rich-text property.
type RichText struct {
	Type      string `json:"type"`
	PlainText string `json:"plain_text,omitempty"`
	Text      *Text  `json:"text,omitempty"`
}

// Text is the literal content of a rich-text segment.
type Text struct {
	Content string `json:"content"`
}

// SelectOption is a select, multi-select, or status value.
type SelectOption struct {
	Name string `json:"name"`
}

// plainText concatenates the segments of a title or rich-text property.
func plainText(segments []RichText) string {
	var out string
	for _, s := range segments {
		if s.PlainText != "" {
			out += s.PlainText
		} else if s.Text != nil {
			out += s.Text.Content
		}
	}
	return out
}
