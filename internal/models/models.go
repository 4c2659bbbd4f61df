package models

// All returns every persisted model, in dependency order, for AutoMigrate.
func All() []interface{} {
	return []interface{}{
		&User{},
		&Category{},
		&Budget{},
		&BudgetCycle{},
		&FixedExpense{},
		&RecurringExpense{},
		&Provision{},
		&Transaction{},
	}
}
