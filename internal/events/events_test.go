package events

import (
	"context"
	"testing"
	"time"
)

func TestLedgerMaterialized_JSONRoundTrip(t *testing.T) {
	at := time.Date(2024, time.March, 15, 9, 30, 0, 0, time.FixedZone("CET", 3600))
	event := NewLedgerMaterialized("b1", "c1", []string{"t1", "t2"}, at)

	if event.MaterializedAt.Location() != time.UTC {
		t.Errorf("expected UTC timestamp, got %v", event.MaterializedAt.Location())
	}

	body, err := event.ToJSON()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, err := LedgerMaterializedFromJSON(body)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.BudgetID != "b1" || got.CycleID != "c1" {
		t.Errorf("unexpected ids: %+v", got)
	}
	if len(got.TransactionIDs) != 2 || got.TransactionIDs[1] != "t2" {
		t.Errorf("unexpected transaction ids: %v", got.TransactionIDs)
	}
	if !got.MaterializedAt.Equal(at) {
		t.Errorf("expected %v, got %v", at, got.MaterializedAt)
	}
}

func TestLedgerMaterializedFromJSON_Invalid(t *testing.T) {
	if _, err := LedgerMaterializedFromJSON([]byte("{not json")); err == nil {
		t.Error("expected error for malformed body")
	}
}

func TestNopPublisher(t *testing.T) {
	var p Publisher = NopPublisher{}
	if err := p.PublishLedgerMaterialized(context.Background(), &LedgerMaterialized{}); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if err := p.Close(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}
