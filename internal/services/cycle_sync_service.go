package services

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"

	"budgetly/internal/cycle"
	apperrors "budgetly/internal/errors"
	"budgetly/internal/events"
	"budgetly/internal/logger"
	"budgetly/internal/models"
)

// cycleSynchronizer resolves a budget's current cycle on demand and fills it
// from the budget's expense definitions. Nothing is cached between calls;
// concurrent calls for the same budget and day share one execution.
type cycleSynchronizer struct {
	db           *gorm.DB
	cycles       CycleRepository
	materializer *Materializer
	publisher    events.Publisher
	location     *time.Location
	now          func() time.Time
	group        singleflight.Group
	log          *zap.SugaredLogger
}

// SyncOption customizes a synchronizer.
type SyncOption func(*cycleSynchronizer)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) SyncOption {
	return func(s *cycleSynchronizer) { s.now = now }
}

// WithLocation sets the zone whose calendar decides what "today" is.
func WithLocation(loc *time.Location) SyncOption {
	return func(s *cycleSynchronizer) {
		if loc != nil {
			s.location = loc
		}
	}
}

// WithPublisher sets where ledger events go.
func WithPublisher(p events.Publisher) SyncOption {
	return func(s *cycleSynchronizer) {
		if p != nil {
			s.publisher = p
		}
	}
}

// NewCycleSynchronizer creates a CycleSynchronizer.
func NewCycleSynchronizer(db *gorm.DB, opts ...SyncOption) CycleSynchronizer {
	s := &cycleSynchronizer{
		db:           db,
		cycles:       NewCycleRepository(db),
		materializer: NewMaterializer(db),
		publisher:    events.NopPublisher{},
		location:     time.UTC,
		now:          time.Now,
		log:          logger.Named("sync"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *cycleSynchronizer) Today() time.Time {
	return cycle.Day(s.now().In(s.location))
}

func (s *cycleSynchronizer) Sync(userID, budgetID string) (*models.BudgetCycle, error) {
	return s.SyncAt(userID, budgetID, s.now())
}

func (s *cycleSynchronizer) SyncAt(userID, budgetID string, ref time.Time) (*models.BudgetCycle, error) {
	day := cycle.Day(ref.In(s.location))
	key := userID + "|" + budgetID + "|" + day.Format(cycle.DateLayout)

	v, err, _ := s.group.Do(key, func() (interface{}, error) {
		return s.sync(userID, budgetID, day)
	})
	if err != nil {
		return nil, err
	}
	return v.(*models.BudgetCycle), nil
}

func (s *cycleSynchronizer) sync(userID, budgetID string, day time.Time) (*models.BudgetCycle, error) {
	budget, err := findOwnedBudget(s.db, userID, budgetID)
	if err != nil {
		return nil, err
	}

	current, err := s.resolveCycle(budget, day)
	if err != nil {
		return nil, err
	}

	// Materialization always runs: definitions may have been added since the
	// cycle was created, and a previous run may have stopped part-way.
	fixed, err := s.materializer.MaterializeFixed(budget, current)
	if err != nil {
		return nil, err
	}
	recurring, err := s.materializer.MaterializeRecurring(budget, current)
	if err != nil {
		return nil, err
	}

	if n := len(fixed) + len(recurring); n > 0 {
		s.log.Infow("materialized transactions",
			"budget_id", budget.ID,
			"cycle_id", current.ID,
			"fixed", len(fixed),
			"recurring", len(recurring),
		)
		ids := make([]string, 0, n)
		for _, tx := range fixed {
			ids = append(ids, tx.ID)
		}
		for _, tx := range recurring {
			ids = append(ids, tx.ID)
		}
		s.publish(events.NewLedgerMaterialized(budget.ID, current.ID, ids, s.now()))
	} else {
		s.log.Debugw("cycle already materialized", "budget_id", budget.ID, "cycle_id", current.ID)
	}

	return current, nil
}

// resolveCycle returns the stored cycle containing day, creating it first if
// none does.
func (s *cycleSynchronizer) resolveCycle(budget *models.Budget, day time.Time) (*models.BudgetCycle, error) {
	existing, err := s.cycles.FindCycleContaining(budget.ID, day)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, apperrors.ErrCycleNotFound) {
		return nil, err
	}

	period, err := cycle.Compute(budget.ResetRule(), day)
	if err != nil {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidResetRule, err.Error())
	}

	prev, next, err := s.cycles.Neighbors(budget.ID, day)
	if err != nil {
		return nil, err
	}
	if prev != nil && prev.Period().Contains(day) {
		// A concurrent sync created the cycle after our lookup.
		return prev, nil
	}
	period = fitBetween(period, prev, next)

	created, err := s.cycles.CreateCycle(budget.ID, period)
	if err != nil {
		return nil, err
	}
	s.log.Infow("created budget cycle",
		"budget_id", budget.ID,
		"cycle_id", created.ID,
		"start", created.StartDate.Format(cycle.DateLayout),
		"end", created.EndDate.Format(cycle.DateLayout),
	)
	return created, nil
}

// fitBetween trims p so it does not overlap the stored cycles around it.
// Overlap only happens after the reset rule was edited; the earlier rule's
// cycles win. Because neither neighbor contains the reference day, the
// trimmed period still does.
func fitBetween(p cycle.Period, prev, next *models.BudgetCycle) cycle.Period {
	if prev != nil {
		prevEnd := cycle.Day(prev.EndDate.UTC())
		if !p.Start.After(prevEnd) {
			p.Start = prevEnd.AddDate(0, 0, 1)
		}
	}
	if next != nil {
		nextStart := cycle.Day(next.StartDate.UTC())
		if !p.End.Before(nextStart) {
			p.End = nextStart.AddDate(0, 0, -1)
		}
	}
	return p
}

func (s *cycleSynchronizer) publish(event *events.LedgerMaterialized) {
	if err := s.publisher.PublishLedgerMaterialized(context.Background(), event); err != nil {
		s.log.Warnw("failed to publish ledger event",
			"budget_id", event.BudgetID,
			"cycle_id", event.CycleID,
			"error", err,
		)
	}
}
