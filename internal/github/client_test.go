package github

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
)

func testClient(srv *httptest.Server) *Client {
	return NewClient("tok", "octo", "widgets").WithBaseURL(srv.URL)
}

func TestFetchIssuesPagination(t *testing.T) {
	var requests atomic.Int32
	var srv *httptest.Server
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/repos/octo/widgets/issues" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer tok" {
			t.Errorf("Authorization = %q", got)
		}
		if got := r.URL.Query().Get("state"); got != "all" {
			t.Errorf("state = %q, want all", got)
		}

		n := requests.Add(1)
		if n == 1 {
			w.Header().Set("Link", fmt.Sprintf(`<%s/repos/octo/widgets/issues?page=2>; rel="next"`, srv.URL))
			_ = json.NewEncoder(w).Encode([]map[string]interface{}{
				{"node_id": "I_1", "number": 1, "title": "First"},
			})
			return
		}
		_ = json.NewEncoder(w).Encode([]map[string]interface{}{
			{"node_id": "PR_2", "number": 2, "title": "Second", "pull_request": map[string]interface{}{"url": "x"}},
		})
	}))
	defer srv.Close()

	issues, err := testClient(srv).FetchIssues(context.Background(), "")
	if err != nil {
		t.Fatalf("FetchIssues: %v", err)
	}
	if len(issues) != 2 {
		t.Fatalf("issues = %d, want 2", len(issues))
	}
	if issues[0].NodeID != "I_1" {
		t.Errorf("NodeID = %q", issues[0].NodeID)
	}
	if issues[0].PullRequest != nil {
		t.Error("issue #1 misclassified as pull request")
	}
	if issues[1].PullRequest == nil {
		t.Error("issue #2 should carry the pull_request marker")
	}
	if got := requests.Load(); got != 2 {
		t.Errorf("requests = %d, want 2", got)
	}
}

func TestFetchIssuesStateFilter(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("state"); got != "open" {
			t.Errorf("state = %q, want open", got)
		}
		_ = json.NewEncoder(w).Encode([]map[string]interface{}{})
	}))
	defer srv.Close()

	if _, err := testClient(srv).FetchIssues(context.Background(), "open"); err != nil {
		t.Fatalf("FetchIssues: %v", err)
	}
}

func TestFetchIssueByNumberNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"message":"Not Found"}`))
	}))
	defer srv.Close()

	issue, err := testClient(srv).FetchIssueByNumber(context.Background(), 999)
	if err != nil {
		t.Fatalf("expected nil error for missing issue, got %v", err)
	}
	if issue != nil {
		t.Errorf("issue = %+v, want nil", issue)
	}
}

func TestFetchIssueByNumberServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := testClient(srv).FetchIssueByNumber(context.Background(), 1)
	if err == nil {
		t.Fatal("expected error")
	}
}

func TestFetchPullRequest(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/repos/octo/widgets/pulls/12" {
			t.Errorf("path = %s", r.URL.Path)
		}
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"number": 12, "merged": true, "additions": 120, "deletions": 30,
		})
	}))
	defer srv.Close()

	pr, err := testClient(srv).FetchPullRequest(context.Background(), 12)
	if err != nil {
		t.Fatalf("FetchPullRequest: %v", err)
	}
	if !pr.Merged || pr.Additions != 120 || pr.Deletions != 30 {
		t.Errorf("pr = %+v", pr)
	}
}

func TestHasNextPage(t *testing.T) {
	tests := []struct {
		name string
		link string
		want bool
	}{
		{"next present", `<https://api.github.test/x?page=2>; rel="next", <https://api.github.test/x?page=9>; rel="last"`, true},
		{"last only", `<https://api.github.test/x?page=9>; rel="last"`, false},
		{"empty", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			headers := http.Header{}
			if tt.link != "" {
				headers.Set("Link", tt.link)
			}
			if _, got := hasNextPage(headers); got != tt.want {
				t.Errorf("hasNextPage = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAPIErrorCarriesStatus(t *testing.T) {
	err := &APIError{StatusCode: 503, Body: "unavailable"}
	if err.HTTPStatus() != 503 {
		t.Errorf("HTTPStatus() = %d", err.HTTPStatus())
	}
}
