package testutil

import (
	"errors"
	"testing"

	"budgetly/internal/cycle"
	apperrors "budgetly/internal/errors"
	"budgetly/internal/models"
)

// AssertAppError checks that err is an *AppError with the expected error code.
func AssertAppError(t *testing.T, err error, expectedCode string) {
	t.Helper()

	if err == nil {
		t.Fatalf("expected AppError with code %q, got nil", expectedCode)
	}

	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) {
		t.Fatalf("expected *AppError, got %T: %v", err, err)
	}

	if appErr.Code != expectedCode {
		t.Errorf("expected error code %q, got %q (message: %s)", expectedCode, appErr.Code, appErr.Message)
	}
}

// AssertNoError fails the test if err is not nil.
func AssertNoError(t *testing.T, err error) {
	t.Helper()

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// AssertCyclePeriod checks a cycle's inclusive bounds, given as YYYY-MM-DD.
func AssertCyclePeriod(t *testing.T, c *models.BudgetCycle, start, end string) {
	t.Helper()

	if c == nil {
		t.Fatalf("expected cycle %s..%s, got nil", start, end)
	}
	p := c.Period()
	if p.Start.Format(cycle.DateLayout) != start || p.End.Format(cycle.DateLayout) != end {
		t.Errorf("expected cycle %s..%s, got %s", start, end, p)
	}
}

// AssertLedger checks how many rows of each source a budget's ledger holds
// and the sum of their amounts.
func AssertLedger(t *testing.T, txs []models.Transaction, wantBySource map[models.TransactionSource]int, wantTotal int64) {
	t.Helper()

	got := make(map[models.TransactionSource]int)
	var total int64
	for _, tx := range txs {
		got[tx.Source]++
		total += tx.Amount
	}
	for source, n := range wantBySource {
		if got[source] != n {
			t.Errorf("expected %d %s rows, got %d", n, source, got[source])
		}
	}
	if len(txs) != sumCounts(wantBySource) {
		t.Errorf("expected %d rows, got %d", sumCounts(wantBySource), len(txs))
	}
	if total != wantTotal {
		t.Errorf("expected total %d, got %d", wantTotal, total)
	}
}

func sumCounts(m map[models.TransactionSource]int) int {
	n := 0
	for _, v := range m {
		n += v
	}
	return n
}
