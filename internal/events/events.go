// Package events publishes ledger notifications to a message broker.
package events

import (
	"context"
	"encoding/json"
	"time"
)

// LedgerMaterialized is emitted after a sync inserts transactions into a cycle.
type LedgerMaterialized struct {
	BudgetID       string    `json:"budget_id"`
	CycleID        string    `json:"cycle_id"`
	TransactionIDs []string  `json:"transaction_ids"`
	MaterializedAt time.Time `json:"materialized_at"`
}

// NewLedgerMaterialized builds the event for the given inserted rows.
func NewLedgerMaterialized(budgetID, cycleID string, transactionIDs []string, at time.Time) *LedgerMaterialized {
	return &LedgerMaterialized{
		BudgetID:       budgetID,
		CycleID:        cycleID,
		TransactionIDs: transactionIDs,
		MaterializedAt: at.UTC(),
	}
}

// ToJSON converts the event to JSON bytes
func (e *LedgerMaterialized) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// LedgerMaterializedFromJSON decodes an event body.
func LedgerMaterializedFromJSON(data []byte) (*LedgerMaterialized, error) {
	var e LedgerMaterialized
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, err
	}
	return &e, nil
}

// Publisher delivers ledger events.
type Publisher interface {
	PublishLedgerMaterialized(ctx context.Context, event *LedgerMaterialized) error
	Close() error
}

// NopPublisher drops every event. It is used when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) PublishLedgerMaterialized(context.Context, *LedgerMaterialized) error {
	return nil
}

func (NopPublisher) Close() error { return nil }
