package github

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// ProjectsClient reads GitHub Projects v2 boards over GraphQL. Projects v2
// has no REST surface; the status column lives in a single-select field on
// each project item.
type ProjectsClient struct {
	Token      string
	Owner      string // User or organization that owns the project
	Endpoint   string
	HTTPClient *http.Client
}

// NewProjectsClient creates a GraphQL client for Projects v2 boards.
func NewProjectsClient(token, owner string) *ProjectsClient {
	return &ProjectsClient{
		Token:    token,
		Owner:    owner,
		Endpoint: DefaultGraphQLEndpoint,
		HTTPClient: &http.Client{
			Timeout: DefaultTimeout,
		},
	}
}

// WithEndpoint returns a new client targeting a custom GraphQL endpoint.
func (p *ProjectsClient) WithEndpoint(endpoint string) *ProjectsClient {
	return &ProjectsClient{
		Token:      p.Token,
		Owner:      p.Owner,
		Endpoint:   endpoint,
		HTTPClient: p.HTTPClient,
	}
}

// ProjectItem is one card on a Projects v2 board.
type ProjectItem struct {
	// ContentNodeID is the node ID of the underlying issue or PR.
	ContentNodeID string
	Number        int
	Title         string
	// Status is the board's single-select status value; empty when no
	// status is assigned.
	Status string
}

type graphQLError struct {
	Message string `json:"message"`
}

type graphQLResponse struct {
	Data   json.RawMessage `json:"data"`
	Errors []graphQLError  `json:"errors"`
}

// doQuery posts a GraphQL query and decodes the data payload into out.
func (p *ProjectsClient) doQuery(ctx context.Context, query string, variables map[string]interface{}, out interface{}) error {
	reqBody, err := json.Marshal(map[string]interface{}{
		"query":     query,
		"variables": variables,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal query: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.Endpoint, bytes.NewReader(reqBody))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+p.Token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 10*1024*1024))
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &APIError{StatusCode: resp.StatusCode, Body: string(respBody)}
	}

	var gqlResp graphQLResponse
	if err := json.Unmarshal(respBody, &gqlResp); err != nil {
		return fmt.Errorf("failed to parse GraphQL response: %w", err)
	}
	if len(gqlResp.Errors) > 0 {
		return fmt.Errorf("GraphQL error: %s", gqlResp.Errors[0].Message)
	}

	if err := json.Unmarshal(gqlResp.Data, out); err != nil {
		return fmt.Errorf("failed to parse GraphQL data: %w", err)
	}
	return nil
}

// findProjectQuery lists the owner's projects; we match by title client-side
// because ProjectsV2 has no title filter.
const findProjectQuery = `query($owner: String!, $cursor: String) {
  repositoryOwner(login: $owner) {
    ... on ProjectV2Owner {
      projectsV2(first: 50, after: $cursor) {
        nodes { id title }
        pageInfo { hasNextPage endCursor }
      }
    }
  }
}`

type projectsPage struct {
	RepositoryOwner struct {
		ProjectsV2 struct {
			Nodes []struct {
				ID    string `json:"id"`
				Title string `json:"title"`
			} `json:"nodes"`
			PageInfo struct {
				HasNextPage bool   `json:"hasNextPage"`
				EndCursor   string `json:"endCursor"`
			} `json:"pageInfo"`
		} `json:"projectsV2"`
	} `json:"repositoryOwner"`
}

// FindProjectByName resolves a board name to its project node ID.
// Returns "", nil when no board with that title exists.
func (p *ProjectsClient) FindProjectByName(ctx context.Context, name string) (string, error) {
	var cursor *string
	for {
		vars := map[string]interface{}{"owner": p.Owner}
		if cursor != nil {
			vars["cursor"] = *cursor
		}

		var page projectsPage
		if err := p.doQuery(ctx, findProjectQuery, vars, &page); err != nil {
			return "", fmt.Errorf("failed to list projects: %w", err)
		}

		for _, n := range page.RepositoryOwner.ProjectsV2.Nodes {
			if n.Title == name {
				return n.ID, nil
			}
		}

		info := page.RepositoryOwner.ProjectsV2.PageInfo
		if !info.HasNextPage {
			return "", nil
		}
		cursor = &info.EndCursor
	}
}

// FirstProject returns the ID and title of the owner's first board.
// Used only by the explicitly enabled first-board fallback.
func (p *ProjectsClient) FirstProject(ctx context.Context) (id, title string, err error) {
	var page projectsPage
	if err := p.doQuery(ctx, findProjectQuery, map[string]interface{}{"owner": p.Owner}, &page); err != nil {
		return "", "", fmt.Errorf("failed to list projects: %w", err)
	}
	nodes := page.RepositoryOwner.ProjectsV2.Nodes
	if len(nodes) == 0 {
		return "", "", nil
	}
	return nodes[0].ID, nodes[0].Title, nil
}

const listItemsQuery = `query($project: ID!, $cursor: String) {
  node(id: $project) {
    ... on ProjectV2 {
      items(first: 100, after: $cursor) {
        nodes {
          content {
            ... on Issue { id number title }
            ... on PullRequest { id number title }
          }
          fieldValueByName(name: "Status") {
            ... on ProjectV2ItemFieldSingleSelectValue { name }
          }
        }
        pageInfo { hasNextPage endCursor }
      }
    }
  }
}`

type itemsPage struct {
	Node struct {
		Items struct {
			Nodes []struct {
				Content struct {
					ID     string `json:"id"`
					Number int    `json:"number"`
					Title  string `json:"title"`
				} `json:"content"`
				FieldValueByName *struct {
					Name string `json:"name"`
				} `json:"fieldValueByName"`
			} `json:"nodes"`
			PageInfo struct {
				HasNextPage bool   `json:"hasNextPage"`
				EndCursor   string `json:"endCursor"`
			} `json:"pageInfo"`
		} `json:"items"`
	} `json:"node"`
}

// ListItems returns every card on the board with its content node ID and
// status column value.
func (p *ProjectsClient) ListItems(ctx context.Context, projectID string) ([]ProjectItem, error) {
	var items []ProjectItem
	var cursor *string
	start := time.Now()

	for {
		vars := map[string]interface{}{"project": projectID}
		if cursor != nil {
			vars["cursor"] = *cursor
		}

		var page itemsPage
		if err := p.doQuery(ctx, listItemsQuery, vars, &page); err != nil {
			return nil, fmt.Errorf("failed to list project items: %w", err)
		}

		for _, n := range page.Node.Items.Nodes {
			if n.Content.ID == "" {
				continue // Draft card with no backing issue/PR
			}
			item := ProjectItem{
				ContentNodeID: n.Content.ID,
				Number:        n.Content.Number,
				Title:         n.Content.Title,
			}
			if n.FieldValueByName != nil {
				item.Status = n.FieldValueByName.Name
			}
			items = append(items, item)
		}

		info := page.Node.Items.PageInfo
		if !info.HasNextPage {
			break
		}
		cursor = &info.EndCursor

		if time.Since(start) > 5*time.Minute {
			return nil, fmt.Errorf("project item pagination exceeded 5m, aborting")
		}
	}

	return items, nil
}
