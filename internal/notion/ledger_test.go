package notion

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"ghledger/internal/reconcile"
)

func testLedger(srv *httptest.Server) *Ledger {
	client := NewClient("tok", "db-1").WithBaseURL(srv.URL)
	return NewLedger(client, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestFindByNodeIDFilterAndDecode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]interface{}
		_ = json.NewDecoder(r.Body).Decode(&body)
		filter, _ := body["filter"].(map[string]interface{})
		if filter["property"] != PropNodeID {
			t.Errorf("filter property = %v, want %q", filter["property"], PropNodeID)
		}

		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"results": []map[string]interface{}{{
				"id":               "page-1",
				"last_edited_time": "2026-08-01T10:00:00.000Z",
				"properties": map[string]interface{}{
					PropTitle: map[string]interface{}{
						"type":  "title",
						"title": []map[string]interface{}{{"plain_text": "Fix crash"}},
					},
					PropNumber: map[string]interface{}{"type": "number", "number": 7},
					PropStatus: map[string]interface{}{
						"type":   "status",
						"status": map[string]interface{}{"name": "Backlog"},
					},
					PropNodeID: map[string]interface{}{
						"type":      "rich_text",
						"rich_text": []map[string]interface{}{{"plain_text": "I_abc"}},
					},
				},
			}},
			"has_more": false,
		})
	}))
	defer srv.Close()

	recs, err := testLedger(srv).FindByNodeID(context.Background(), "I_abc")
	if err != nil {
		t.Fatalf("FindByNodeID: %v", err)
	}
	if len(recs) != 1 {
		t.Fatalf("records = %d, want 1", len(recs))
	}
	rec := recs[0]
	if rec.PageID != "page-1" || rec.Title != "Fix crash" || rec.Number != 7 {
		t.Errorf("decoded record = %+v", rec)
	}
	if rec.Status != "Backlog" || rec.NodeID != "I_abc" {
		t.Errorf("status/node ID = %q/%q", rec.Status, rec.NodeID)
	}
	if rec.LastEdited.IsZero() {
		t.Error("LastEdited not decoded")
	}
}

func TestFindByStatusBuildsOrFilter(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]interface{}
		_ = json.NewDecoder(r.Body).Decode(&body)
		filter, _ := body["filter"].(map[string]interface{})
		clauses, _ := filter["or"].([]interface{})
		if len(clauses) != 2 {
			t.Errorf("or clauses = %d, want 2", len(clauses))
		}
		_ = json.NewEncoder(w).Encode(map[string]interface{}{"results": []interface{}{}, "has_more": false})
	}))
	defer srv.Close()

	if _, err := testLedger(srv).FindByStatus(context.Background(), []string{"Backlog", "Done"}); err != nil {
		t.Fatalf("FindByStatus: %v", err)
	}
}

func TestWriteRetriesTransientFailure(t *testing.T) {
	var attempts atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if attempts.Add(1) == 1 {
			w.WriteHeader(http.StatusConflict)
			_, _ = w.Write([]byte(`{"code":"conflict_error","message":"saving in progress"}`))
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]interface{}{"id": "page-1"})
	}))
	defer srv.Close()

	if err := testLedger(srv).SetStatus(context.Background(), "page-1", "Done"); err != nil {
		t.Fatalf("SetStatus after transient 409: %v", err)
	}
	if got := attempts.Load(); got != 2 {
		t.Errorf("attempts = %d, want 2", got)
	}
}

func TestWriteDoesNotRetryValidationFailure(t *testing.T) {
	var attempts atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"code":"validation_error","message":"Status is not a property"}`))
	}))
	defer srv.Close()

	_, err := testLedger(srv).Create(context.Background(), reconcile.Item{Number: 7, Title: "x"})
	if err == nil {
		t.Fatal("expected error")
	}
	if got := attempts.Load(); got != 1 {
		t.Errorf("attempts = %d, want 1 (validation errors are permanent)", got)
	}
}
