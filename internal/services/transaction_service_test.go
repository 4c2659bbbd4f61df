package services

import (
	"testing"

	"budgetly/internal/models"
	"budgetly/internal/pagination"
	"budgetly/internal/testutil"
)

func TestCreateTransaction(t *testing.T) {
	t.Run("defaults_to_today_in_current_cycle", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		user := testutil.CreateTestUser(t, db)
		budget := testutil.CreateTestBudget(t, db, user.ID)
		svc := NewTransactionService(db, NewCycleSynchronizer(db, WithClock(fixedClock(testutil.MustDay(t, "2024-03-15")))))

		tx, c, err := svc.CreateTransaction(user.ID, budget.ID, models.TransactionTypeExpense, nil, 1250, "Lunch", nil)
		testutil.AssertNoError(t, err)
		testutil.AssertCyclePeriod(t, c, "2024-03-01", "2024-03-31")
		if tx.CycleID != c.ID || tx.Source != models.TransactionSourceManual || tx.UniqueKey != nil {
			t.Errorf("unexpected transaction %+v", tx)
		}
		if !tx.Date.Equal(testutil.MustDay(t, "2024-03-15")) {
			t.Errorf("expected today's date, got %s", tx.Date)
		}
	})

	t.Run("past_date_joins_past_cycle", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		user := testutil.CreateTestUser(t, db)
		budget := testutil.CreateTestBudget(t, db, user.ID)
		syncer := NewCycleSynchronizer(db, WithClock(fixedClock(testutil.MustDay(t, "2024-04-05"))))
		february, err := syncer.SyncAt(user.ID, budget.ID, testutil.MustDay(t, "2024-02-10"))
		testutil.AssertNoError(t, err)
		svc := NewTransactionService(db, syncer)

		date := testutil.MustDay(t, "2024-02-20")
		_, c, err := svc.CreateTransaction(user.ID, budget.ID, models.TransactionTypeIncome, nil, 900, "Refund", &date)
		testutil.AssertNoError(t, err)
		if c.ID != february.ID {
			t.Errorf("expected February cycle, got %s", c.Period())
		}
	})

	t.Run("date_outside_any_cycle", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		user := testutil.CreateTestUser(t, db)
		budget := testutil.CreateTestBudget(t, db, user.ID)
		svc := NewTransactionService(db, NewCycleSynchronizer(db, WithClock(fixedClock(testutil.MustDay(t, "2024-03-15")))))

		date := testutil.MustDay(t, "2023-12-01")
		_, _, err := svc.CreateTransaction(user.ID, budget.ID, models.TransactionTypeExpense, nil, 100, "", &date)
		testutil.AssertAppError(t, err, "DATE_OUTSIDE_CYCLE")
	})

	t.Run("invalid_amount", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		user := testutil.CreateTestUser(t, db)
		budget := testutil.CreateTestBudget(t, db, user.ID)
		svc := NewTransactionService(db, NewCycleSynchronizer(db))

		_, _, err := svc.CreateTransaction(user.ID, budget.ID, models.TransactionTypeExpense, nil, 0, "", nil)
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})

	t.Run("foreign_budget", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		owner := testutil.CreateTestUser(t, db)
		other := testutil.CreateTestUser(t, db)
		budget := testutil.CreateTestBudget(t, db, owner.ID)
		svc := NewTransactionService(db, NewCycleSynchronizer(db))

		_, _, err := svc.CreateTransaction(other.ID, budget.ID, models.TransactionTypeExpense, nil, 100, "", nil)
		testutil.AssertAppError(t, err, "BUDGET_NOT_FOUND")
	})
}

func TestGetBudgetTransactions(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	user := testutil.CreateTestUser(t, db)
	budget := testutil.CreateTestBudget(t, db, user.ID)
	testutil.CreateTestFixedExpense(t, db, budget.ID, "Rent", 100000)
	syncer := NewCycleSynchronizer(db, WithClock(fixedClock(testutil.MustDay(t, "2024-03-15"))))
	svc := NewTransactionService(db, syncer)

	february, err := syncer.SyncAt(user.ID, budget.ID, testutil.MustDay(t, "2024-02-10"))
	testutil.AssertNoError(t, err)
	_, _, err = svc.CreateTransaction(user.ID, budget.ID, models.TransactionTypeExpense, nil, 500, "Coffee", nil)
	testutil.AssertNoError(t, err)
	_, _, err = svc.CreateTransaction(user.ID, budget.ID, models.TransactionTypeIncome, nil, 9000, "Salary", nil)
	testutil.AssertNoError(t, err)

	t.Run("defaults_to_current_cycle", func(t *testing.T) {
		result, err := svc.GetBudgetTransactions(user.ID, budget.ID, pagination.PageRequest{}, TransactionFilter{})
		testutil.AssertNoError(t, err)
		if result.TotalItems != 3 {
			t.Errorf("expected Rent plus two manual entries, got %d", result.TotalItems)
		}
	})

	t.Run("explicit_cycle", func(t *testing.T) {
		result, err := svc.GetBudgetTransactions(user.ID, budget.ID, pagination.PageRequest{}, TransactionFilter{CycleID: &february.ID})
		testutil.AssertNoError(t, err)
		if result.TotalItems != 1 || result.Data[0].Description != "Rent" {
			t.Errorf("expected only February's Rent, got %+v", result.Data)
		}
	})

	t.Run("filter_by_source_and_type", func(t *testing.T) {
		manual := models.TransactionSourceManual
		expense := models.TransactionTypeExpense
		result, err := svc.GetBudgetTransactions(user.ID, budget.ID, pagination.PageRequest{}, TransactionFilter{Source: &manual, Type: &expense})
		testutil.AssertNoError(t, err)
		if result.TotalItems != 1 || result.Data[0].Description != "Coffee" {
			t.Errorf("expected only Coffee, got %+v", result.Data)
		}
	})

	t.Run("filter_by_date_range", func(t *testing.T) {
		from := testutil.MustDay(t, "2024-03-10")
		result, err := svc.GetBudgetTransactions(user.ID, budget.ID, pagination.PageRequest{}, TransactionFilter{FromDate: &from})
		testutil.AssertNoError(t, err)
		if result.TotalItems != 2 {
			t.Errorf("expected the two mid-month entries, got %d", result.TotalItems)
		}
	})

	t.Run("unknown_cycle", func(t *testing.T) {
		id := "0190f5c4-0000-7000-8000-00000000beef"
		_, err := svc.GetBudgetTransactions(user.ID, budget.ID, pagination.PageRequest{}, TransactionFilter{CycleID: &id})
		testutil.AssertAppError(t, err, "CYCLE_NOT_FOUND")
	})
}

func TestDeleteTransaction(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	user := testutil.CreateTestUser(t, db)
	budget := testutil.CreateTestBudget(t, db, user.ID)
	testutil.CreateTestFixedExpense(t, db, budget.ID, "Rent", 100000)
	syncer := NewCycleSynchronizer(db, WithClock(fixedClock(testutil.MustDay(t, "2024-03-15"))))
	svc := NewTransactionService(db, syncer)

	manual, _, err := svc.CreateTransaction(user.ID, budget.ID, models.TransactionTypeExpense, nil, 500, "Coffee", nil)
	testutil.AssertNoError(t, err)

	var fixed models.Transaction
	testutil.AssertNoError(t, db.Where("budget_id = ? AND source = ?", budget.ID, models.TransactionSourceFixed).First(&fixed).Error)

	t.Run("materialized_row_is_protected", func(t *testing.T) {
		err := svc.DeleteTransaction(user.ID, fixed.ID)
		testutil.AssertAppError(t, err, "TRANSACTION_NOT_EDITABLE")
	})

	t.Run("other_user", func(t *testing.T) {
		other := testutil.CreateTestUser(t, db)
		err := svc.DeleteTransaction(other.ID, manual.ID)
		testutil.AssertAppError(t, err, "TRANSACTION_NOT_FOUND")
	})

	t.Run("manual_row", func(t *testing.T) {
		testutil.AssertNoError(t, svc.DeleteTransaction(user.ID, manual.ID))
		_, err := svc.GetTransactionByID(user.ID, manual.ID)
		testutil.AssertAppError(t, err, "TRANSACTION_NOT_FOUND")
	})

	t.Run("resync_does_not_resurrect", func(t *testing.T) {
		_, err := syncer.Sync(user.ID, budget.ID)
		testutil.AssertNoError(t, err)
		var n int64
		db.Model(&models.Transaction{}).Where("budget_id = ?", budget.ID).Count(&n)
		if n != 1 {
			t.Errorf("expected only the Rent row, got %d", n)
		}
	})
}
