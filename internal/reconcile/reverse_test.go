package reconcile

import (
	"context"
	"testing"
)

func TestReverseSyncUpdatesFromBoard(t *testing.T) {
	item := testItem("n1", 7, "Fix crash")
	item.BoardStatus = "In progress"
	ledger := &memLedger{records: []Record{
		{PageID: "p1", Title: "Fix crash", Number: 7, Status: "Backlog"},
	}}
	engine := NewEngine(&memSources{items: []Item{item}}, ledger, nil, testLogger())

	summary, err := engine.ReverseSync(context.Background(), ReverseOptions{})
	if err != nil {
		t.Fatalf("ReverseSync: %v", err)
	}
	if summary.Matched != 1 || summary.Updated != 1 {
		t.Errorf("matched=%d updated=%d, want 1/1", summary.Matched, summary.Updated)
	}
	if got := ledger.records[0].Status; got != "In progress" {
		t.Errorf("Status = %q, want %q", got, "In progress")
	}
}

func TestReverseSyncDryRunWritesNothing(t *testing.T) {
	item := testItem("n1", 7, "Fix crash")
	item.BoardStatus = "Done"
	ledger := &memLedger{records: []Record{
		{PageID: "p1", Title: "Fix crash", Status: "Backlog"},
	}}
	engine := NewEngine(&memSources{items: []Item{item}}, ledger, nil, testLogger())

	summary, err := engine.ReverseSync(context.Background(), ReverseOptions{DryRun: true})
	if err != nil {
		t.Fatalf("ReverseSync: %v", err)
	}
	if summary.Updated != 1 {
		t.Errorf("Updated = %d, want 1 (dry run still counts the decision)", summary.Updated)
	}
	if ledger.setStatusCalls != 0 {
		t.Errorf("setStatusCalls = %d, want 0 in dry run", ledger.setStatusCalls)
	}
	if got := ledger.records[0].Status; got != "Backlog" {
		t.Errorf("Status = %q, want unchanged %q", got, "Backlog")
	}
}

func TestReverseSyncReportsUnmatched(t *testing.T) {
	item := testItem("n1", 7, "Fix crash")
	item.BoardStatus = "Done"
	ledger := &memLedger{records: []Record{
		{PageID: "p1", Title: "Fix crash", Status: "Backlog"},
		{PageID: "p2", Title: "Manual note with no issue", Status: "Backlog"},
	}}
	engine := NewEngine(&memSources{items: []Item{item}}, ledger, nil, testLogger())

	summary, err := engine.ReverseSync(context.Background(), ReverseOptions{})
	if err != nil {
		t.Fatalf("ReverseSync: %v", err)
	}
	if len(summary.Unmatched) != 1 {
		t.Fatalf("Unmatched = %d records, want 1", len(summary.Unmatched))
	}
	if got := summary.Unmatched[0].Title; got != "Manual note with no issue" {
		t.Errorf("Unmatched[0].Title = %q", got)
	}
}

func TestReverseSyncSkipsItemsWithoutBoardStatus(t *testing.T) {
	item := testItem("n1", 7, "Fix crash") // BoardStatus empty
	ledger := &memLedger{records: []Record{
		{PageID: "p1", Title: "Fix crash", Status: "In progress"},
	}}
	engine := NewEngine(&memSources{items: []Item{item}}, ledger, nil, testLogger())

	summary, err := engine.ReverseSync(context.Background(), ReverseOptions{})
	if err != nil {
		t.Fatalf("ReverseSync: %v", err)
	}
	if summary.Matched != 1 || summary.Skipped != 1 || summary.Updated != 0 {
		t.Errorf("matched=%d skipped=%d updated=%d, want 1/1/0",
			summary.Matched, summary.Skipped, summary.Updated)
	}
	if got := ledger.records[0].Status; got != "In progress" {
		t.Errorf("Status = %q, want untouched %q", got, "In progress")
	}
}

func TestReverseSyncStatusFilter(t *testing.T) {
	item := testItem("n1", 7, "Fix crash")
	item.BoardStatus = "Done"
	ledger := &memLedger{records: []Record{
		{PageID: "p1", Title: "Fix crash", Status: "Backlog"},
		{PageID: "p2", Title: "Fix crash", Status: "Done"},
	}}
	engine := NewEngine(&memSources{items: []Item{item}}, ledger, nil, testLogger())

	summary, err := engine.ReverseSync(context.Background(), ReverseOptions{Statuses: []string{"Backlog"}})
	if err != nil {
		t.Fatalf("ReverseSync: %v", err)
	}
	if summary.Matched != 1 {
		t.Errorf("Matched = %d, want 1 (only Backlog records considered)", summary.Matched)
	}
	if got := ledger.records[1].Status; got != "Done" {
		t.Errorf("filtered-out record was touched: Status = %q", got)
	}
}

func TestReverseSyncStructuredKeyWinsOverText(t *testing.T) {
	// The text of the record title equals the first item's text exactly,
	// but the key on the second item must win.
	textual := testItem("n1", 1, "renamed after triage")
	textual.BoardStatus = "Backlog"
	keyed := testItem("n2", 2, "core-12: renamed on the board side")
	keyed.BoardStatus = "Done"
	ledger := &memLedger{records: []Record{
		{PageID: "p1", Title: "CORE-12: renamed after triage", Status: "This week"},
	}}
	engine := NewEngine(&memSources{items: []Item{textual, keyed}}, ledger, nil, testLogger())

	summary, err := engine.ReverseSync(context.Background(), ReverseOptions{})
	if err != nil {
		t.Fatalf("ReverseSync: %v", err)
	}
	if summary.Matched != 1 {
		t.Fatalf("Matched = %d, want 1", summary.Matched)
	}
	if got := ledger.records[0].Status; got != "Done" {
		t.Errorf("Status = %q, want %q from the key-bearing item", got, "Done")
	}
}
