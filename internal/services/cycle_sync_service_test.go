package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"budgetly/internal/cycle"
	"budgetly/internal/events"
	"budgetly/internal/models"
	"budgetly/internal/testutil"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []*events.LedgerMaterialized
	err    error
}

func (p *recordingPublisher) PublishLedgerMaterialized(_ context.Context, e *events.LedgerMaterialized) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return p.err
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.events)
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestSync_MonthlyScenario(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	user := testutil.CreateTestUser(t, db)
	budget := testutil.CreateTestBudgetWithRule(t, db, user.ID, cycle.MonthlyOn(1))
	rent := testutil.CreateTestFixedExpense(t, db, budget.ID, "Rent", 1000)
	gym := testutil.CreateTestRecurringExpense(t, db, budget.ID, "Gym", 40, cycle.MonthlyOn(10))

	svc := NewCycleSynchronizer(db, WithClock(fixedClock(testutil.MustDay(t, "2024-03-15"))))

	c, err := svc.Sync(user.ID, budget.ID)
	testutil.AssertNoError(t, err)
	testutil.AssertCyclePeriod(t, c, "2024-03-01", "2024-03-31")

	txs := testutil.BudgetTransactions(t, db, budget.ID)
	if len(txs) != 2 {
		t.Fatalf("expected 2 transactions, got %d", len(txs))
	}

	tests := []struct {
		tx     models.Transaction
		defID  string
		source models.TransactionSource
		amount int64
		date   string
	}{
		{txs[0], rent.ID, models.TransactionSourceFixed, 1000, "2024-03-01"},
		{txs[1], gym.ID, models.TransactionSourceRecurring, 40, "2024-03-10"},
	}
	for _, tt := range tests {
		if tt.tx.Source != tt.source || tt.tx.Amount != tt.amount || tt.tx.Date.UTC().Format(cycle.DateLayout) != tt.date {
			t.Errorf("unexpected transaction %+v", tt.tx)
		}
		if tt.tx.DefinitionID == nil || *tt.tx.DefinitionID != tt.defID {
			t.Errorf("expected definition %s, got %v", tt.defID, tt.tx.DefinitionID)
		}
		if tt.tx.CycleID != c.ID || tt.tx.UserID != user.ID || tt.tx.Type != models.TransactionTypeExpense {
			t.Errorf("transaction not attached to cycle/user as expense: %+v", tt.tx)
		}
	}
}

func TestSync_Idempotent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	user := testutil.CreateTestUser(t, db)
	budget := testutil.CreateTestBudgetWithRule(t, db, user.ID, cycle.WeeklyOn(1))
	testutil.CreateTestFixedExpense(t, db, budget.ID, "Allowance", 2000)
	testutil.CreateTestRecurringExpense(t, db, budget.ID, "Coffee", 350, cycle.WeeklyOn(3))

	pub := &recordingPublisher{}
	svc := NewCycleSynchronizer(db, WithClock(fixedClock(testutil.MustDay(t, "2024-03-14"))), WithPublisher(pub))

	var first *models.BudgetCycle
	for i := 0; i < 5; i++ {
		c, err := svc.Sync(user.ID, budget.ID)
		testutil.AssertNoError(t, err)
		if first == nil {
			first = c
			testutil.AssertCyclePeriod(t, c, "2024-03-11", "2024-03-17")
		} else if c.ID != first.ID {
			t.Fatalf("sync %d returned cycle %s, want %s", i, c.ID, first.ID)
		}
	}

	if n := testutil.CountCycles(t, db, budget.ID); n != 1 {
		t.Errorf("expected 1 cycle, got %d", n)
	}
	testutil.AssertLedger(t, testutil.BudgetTransactions(t, db, budget.ID), map[models.TransactionSource]int{
		models.TransactionSourceFixed:     1,
		models.TransactionSourceRecurring: 1,
	}, 2350)
	if pub.count() != 1 {
		t.Errorf("expected exactly one ledger event, got %d", pub.count())
	}
	if got := pub.events[0].TransactionIDs; len(got) != 2 {
		t.Errorf("expected event with 2 transaction ids, got %v", got)
	}
}

func TestSync_ConcurrentCallers(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	user := testutil.CreateTestUser(t, db)
	budget := testutil.CreateTestBudget(t, db, user.ID)
	testutil.CreateTestFixedExpense(t, db, budget.ID, "Rent", 100000)
	testutil.CreateTestRecurringExpense(t, db, budget.ID, "Gym", 4000, cycle.WeeklyOn(3))

	svc := NewCycleSynchronizer(db)

	// Different reference days inside the same cycle bypass in-process
	// deduplication and race on the database constraints instead.
	var refs []time.Time
	for _, s := range []string{"2024-04-01", "2024-04-02", "2024-04-09", "2024-04-16", "2024-04-30"} {
		refs = append(refs, testutil.MustDay(t, s))
	}
	var wg sync.WaitGroup
	ids := make([]string, len(refs)*4)
	errs := make([]error, len(ids))
	for i := range ids {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			c, err := svc.SyncAt(user.ID, budget.ID, refs[i%len(refs)])
			errs[i] = err
			if c != nil {
				ids[i] = c.ID
			}
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			t.Fatalf("sync %d failed: %v", i, err)
		}
		if ids[i] != ids[0] {
			t.Fatalf("sync %d resolved a different cycle", i)
		}
	}
	if n := testutil.CountCycles(t, db, budget.ID); n != 1 {
		t.Errorf("expected 1 cycle, got %d", n)
	}
	// Rent once plus four Wednesdays in April 2024.
	testutil.AssertLedger(t, testutil.BudgetTransactions(t, db, budget.ID), map[models.TransactionSource]int{
		models.TransactionSourceFixed:     1,
		models.TransactionSourceRecurring: 4,
	}, 116000)
}

func TestSync_NewDefinitionIsPickedUpMidCycle(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	user := testutil.CreateTestUser(t, db)
	budget := testutil.CreateTestBudget(t, db, user.ID)
	svc := NewCycleSynchronizer(db, WithClock(fixedClock(testutil.MustDay(t, "2024-03-15"))))

	_, err := svc.Sync(user.ID, budget.ID)
	testutil.AssertNoError(t, err)
	if n := len(testutil.BudgetTransactions(t, db, budget.ID)); n != 0 {
		t.Fatalf("expected empty ledger, got %d", n)
	}

	testutil.CreateTestFixedExpense(t, db, budget.ID, "Internet", 5000)
	_, err = svc.Sync(user.ID, budget.ID)
	testutil.AssertNoError(t, err)

	txs := testutil.BudgetTransactions(t, db, budget.ID)
	if len(txs) != 1 || txs[0].Date.UTC().Format(cycle.DateLayout) != "2024-03-01" {
		t.Errorf("expected Internet posted on cycle start, got %+v", txs)
	}
}

func TestSync_EditedDefinitionDoesNotRewriteLedger(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	user := testutil.CreateTestUser(t, db)
	budget := testutil.CreateTestBudget(t, db, user.ID)
	rent := testutil.CreateTestFixedExpense(t, db, budget.ID, "Rent", 1000)
	svc := NewCycleSynchronizer(db, WithClock(fixedClock(testutil.MustDay(t, "2024-03-15"))))

	_, err := svc.Sync(user.ID, budget.ID)
	testutil.AssertNoError(t, err)

	db.Model(rent).Update("amount", 1200)
	_, err = svc.Sync(user.ID, budget.ID)
	testutil.AssertNoError(t, err)

	txs := testutil.BudgetTransactions(t, db, budget.ID)
	if len(txs) != 1 || txs[0].Amount != 1000 {
		t.Errorf("expected the original 1000 posting to stay, got %+v", txs)
	}
}

func TestSync_NextCycleIsCreatedLazily(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	user := testutil.CreateTestUser(t, db)
	budget := testutil.CreateTestBudget(t, db, user.ID)
	testutil.CreateTestFixedExpense(t, db, budget.ID, "Rent", 1000)
	svc := NewCycleSynchronizer(db)

	march, err := svc.SyncAt(user.ID, budget.ID, testutil.MustDay(t, "2024-03-31"))
	testutil.AssertNoError(t, err)
	april, err := svc.SyncAt(user.ID, budget.ID, testutil.MustDay(t, "2024-04-01"))
	testutil.AssertNoError(t, err)

	testutil.AssertCyclePeriod(t, march, "2024-03-01", "2024-03-31")
	testutil.AssertCyclePeriod(t, april, "2024-04-01", "2024-04-30")
	if march.ID == april.ID {
		t.Fatal("expected distinct cycles")
	}

	// Looking back resolves the stored March cycle; nothing new is created.
	again, err := svc.SyncAt(user.ID, budget.ID, testutil.MustDay(t, "2024-03-20"))
	testutil.AssertNoError(t, err)
	if again.ID != march.ID {
		t.Errorf("expected March cycle, got %s", again.Period())
	}
	if n := testutil.CountCycles(t, db, budget.ID); n != 2 {
		t.Errorf("expected 2 cycles, got %d", n)
	}
	if n := len(testutil.BudgetTransactions(t, db, budget.ID)); n != 2 {
		t.Errorf("expected one Rent per cycle, got %d", n)
	}
}

func TestSync_RuleChangeDoesNotOverlapHistory(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	user := testutil.CreateTestUser(t, db)
	budget := testutil.CreateTestBudgetWithRule(t, db, user.ID, cycle.MonthlyOn(1))
	svc := NewCycleSynchronizer(db)

	march, err := svc.SyncAt(user.ID, budget.ID, testutil.MustDay(t, "2024-03-10"))
	testutil.AssertNoError(t, err)
	testutil.AssertCyclePeriod(t, march, "2024-03-01", "2024-03-31")

	budget.SetResetRule(cycle.MonthlyOn(15))
	testutil.AssertNoError(t, db.Save(budget).Error)

	// Still inside March: the existing cycle wins, the edit is not retroactive.
	same, err := svc.SyncAt(user.ID, budget.ID, testutil.MustDay(t, "2024-03-20"))
	testutil.AssertNoError(t, err)
	if same.ID != march.ID {
		t.Errorf("expected existing March cycle, got %s", same.Period())
	}

	// The new rule's period would be 03-15..04-14; it starts after March ends.
	bridged, err := svc.SyncAt(user.ID, budget.ID, testutil.MustDay(t, "2024-04-10"))
	testutil.AssertNoError(t, err)
	testutil.AssertCyclePeriod(t, bridged, "2024-04-01", "2024-04-14")

	next, err := svc.SyncAt(user.ID, budget.ID, testutil.MustDay(t, "2024-04-20"))
	testutil.AssertNoError(t, err)
	testutil.AssertCyclePeriod(t, next, "2024-04-15", "2024-05-14")
}

func TestSync_TimezoneDecidesToday(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	user := testutil.CreateTestUser(t, db)
	budget := testutil.CreateTestBudget(t, db, user.ID)

	// 2024-02-29 20:00 UTC is already March 1 in UTC+10.
	now := time.Date(2024, time.February, 29, 20, 0, 0, 0, time.UTC)
	svc := NewCycleSynchronizer(db,
		WithClock(fixedClock(now)),
		WithLocation(time.FixedZone("UTC+10", 10*60*60)),
	)

	if got := svc.Today().Format(cycle.DateLayout); got != "2024-03-01" {
		t.Errorf("expected today 2024-03-01, got %s", got)
	}
	c, err := svc.Sync(user.ID, budget.ID)
	testutil.AssertNoError(t, err)
	testutil.AssertCyclePeriod(t, c, "2024-03-01", "2024-03-31")
}

func TestSync_Errors(t *testing.T) {
	t.Run("budget_not_found", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		user := testutil.CreateTestUser(t, db)
		svc := NewCycleSynchronizer(db)

		_, err := svc.Sync(user.ID, "0190f5c4-0000-7000-8000-00000000beef")
		testutil.AssertAppError(t, err, "BUDGET_NOT_FOUND")
	})

	t.Run("budget_of_other_user", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		owner := testutil.CreateTestUser(t, db)
		intruder := testutil.CreateTestUser(t, db)
		budget := testutil.CreateTestBudget(t, db, owner.ID)
		svc := NewCycleSynchronizer(db)

		_, err := svc.Sync(intruder.ID, budget.ID)
		testutil.AssertAppError(t, err, "BUDGET_NOT_FOUND")
		if n := testutil.CountCycles(t, db, budget.ID); n != 0 {
			t.Errorf("expected no cycle to be created, got %d", n)
		}
	})

	t.Run("malformed_reset_rule", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		user := testutil.CreateTestUser(t, db)
		budget := testutil.CreateTestBudgetWithRule(t, db, user.ID, cycle.MonthlyOn(31))
		svc := NewCycleSynchronizer(db)

		_, err := svc.Sync(user.ID, budget.ID)
		testutil.AssertAppError(t, err, "INVALID_RESET_RULE")
	})

	t.Run("malformed_schedule_is_skipped", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		user := testutil.CreateTestUser(t, db)
		budget := testutil.CreateTestBudget(t, db, user.ID)
		testutil.CreateTestRecurringExpense(t, db, budget.ID, "Broken", 100, cycle.MonthlyOn(31))
		testutil.CreateTestRecurringExpense(t, db, budget.ID, "Gym", 40, cycle.MonthlyOn(10))
		svc := NewCycleSynchronizer(db)

		_, err := svc.SyncAt(user.ID, budget.ID, testutil.MustDay(t, "2024-03-15"))
		testutil.AssertNoError(t, err)

		txs := testutil.BudgetTransactions(t, db, budget.ID)
		if len(txs) != 1 || txs[0].Description != "Gym" {
			t.Errorf("expected only Gym to be materialized, got %+v", txs)
		}
	})

	t.Run("publish_failure_is_not_returned", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		user := testutil.CreateTestUser(t, db)
		budget := testutil.CreateTestBudget(t, db, user.ID)
		testutil.CreateTestFixedExpense(t, db, budget.ID, "Rent", 1000)
		pub := &recordingPublisher{err: errors.New("broker down")}
		svc := NewCycleSynchronizer(db, WithPublisher(pub))

		_, err := svc.SyncAt(user.ID, budget.ID, testutil.MustDay(t, "2024-03-15"))
		testutil.AssertNoError(t, err)
		if pub.count() != 1 {
			t.Errorf("expected a publish attempt, got %d", pub.count())
		}
	})
}

func TestFitBetween(t *testing.T) {
	mk := func(start, end string) *models.BudgetCycle {
		return &models.BudgetCycle{StartDate: testutil.MustDay(t, start), EndDate: testutil.MustDay(t, end)}
	}

	tests := []struct {
		name      string
		period    [2]string
		prev      *models.BudgetCycle
		next      *models.BudgetCycle
		wantStart string
		wantEnd   string
	}{
		{"no_neighbors", [2]string{"2024-04-01", "2024-04-30"}, nil, nil, "2024-04-01", "2024-04-30"},
		{"adjacent_prev", [2]string{"2024-04-01", "2024-04-30"}, mk("2024-03-01", "2024-03-31"), nil, "2024-04-01", "2024-04-30"},
		{"overlapping_prev", [2]string{"2024-03-15", "2024-04-14"}, mk("2024-03-01", "2024-03-31"), nil, "2024-04-01", "2024-04-14"},
		{"overlapping_next", [2]string{"2024-04-01", "2024-04-30"}, nil, mk("2024-04-12", "2024-05-11"), "2024-04-01", "2024-04-11"},
		{"gap_is_not_filled", [2]string{"2024-06-01", "2024-06-30"}, mk("2024-03-01", "2024-03-31"), nil, "2024-06-01", "2024-06-30"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := fitBetween(cycle.Period{Start: testutil.MustDay(t, tt.period[0]), End: testutil.MustDay(t, tt.period[1])}, tt.prev, tt.next)
			if got.Start.Format(cycle.DateLayout) != tt.wantStart || got.End.Format(cycle.DateLayout) != tt.wantEnd {
				t.Errorf("got %s, want %s..%s", got, tt.wantStart, tt.wantEnd)
			}
		})
	}
}
