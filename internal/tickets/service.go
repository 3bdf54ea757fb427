package tickets

import (
	"context"
	"errors"
	"fmt"

	"github.com/bolao-platform/bolao-backend/internal/multiset"
	"github.com/bolao-platform/bolao-backend/pkg/db/models"
	"github.com/bolao-platform/bolao-backend/pkg/enums"
	pkgerrors "github.com/bolao-platform/bolao-backend/pkg/errors"
	"github.com/bolao-platform/bolao-backend/pkg/metrics"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PoolSource loads the cumulative draw-pool frequency map, optionally inside
// a running transaction so re-evaluation sees a consistent snapshot.
type PoolSource interface {
	Pool(ctx context.Context, tx *gorm.DB) (map[int64]int, error)
}

// Service exposes ticket reads, the administrative unpaid hold, and the
// status re-evaluation pass that runs after every draw mutation.
type Service interface {
	Reevaluate(ctx context.Context, tx *gorm.DB) (ReevaluationSummary, error)
	ListForAccount(ctx context.Context, accountID uuid.UUID) ([]ScoredTicket, error)
	MarkUnpaid(ctx context.Context, id uuid.UUID) (*models.Ticket, error)
}

// ScoredTicket pairs a ticket with its match count and per-position coverage
// flags against the current pool.
type ScoredTicket struct {
	Ticket  models.Ticket `json:"ticket"`
	Matches int           `json:"matches"`
	Covered []bool        `json:"covered"`
}

// ReevaluationSummary reports what one pass changed.
type ReevaluationSummary struct {
	Evaluated int
	Promoted  int
	Reverted  int
}

type service struct {
	repo      Repository
	pool      PoolSource
	pickCount int
	metrics   *metrics.EngineMetrics
}

// NewService wires the ticket service.
func NewService(repo Repository, pool PoolSource, pickCount int, engineMetrics *metrics.EngineMetrics) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("ticket repository required")
	}
	if pool == nil {
		return nil, fmt.Errorf("pool source required")
	}
	if pickCount <= 0 {
		return nil, fmt.Errorf("pick count must be positive")
	}
	return &service{
		repo:      repo,
		pool:      pool,
		pickCount: pickCount,
		metrics:   engineMetrics,
	}, nil
}

// Reevaluate recomputes the status of every active and winning ticket against
// the current pool. Unpaid and expired tickets are left untouched. When tx is
// non-nil the whole pass runs inside it, so the draw mutation that triggered
// the pass and the status updates commit together.
func (s *service) Reevaluate(ctx context.Context, tx *gorm.DB) (ReevaluationSummary, error) {
	repo := s.repo.WithTx(tx)

	pool, err := s.pool.Pool(ctx, tx)
	if err != nil {
		return ReevaluationSummary{}, err
	}

	eligible, err := repo.ListByStatuses(ctx, enums.TicketStatusActive, enums.TicketStatusWinning)
	if err != nil {
		return ReevaluationSummary{}, err
	}

	summary := ReevaluationSummary{Evaluated: len(eligible)}
	for _, ticket := range eligible {
		matches := multiset.Matches(ticket.Numbers, pool)
		next := NextStatus(ticket.Status, len(ticket.Numbers), matches, s.pickCount)
		if next == ticket.Status {
			continue
		}
		if err := repo.UpdateStatus(ctx, ticket.ID, next); err != nil {
			return ReevaluationSummary{}, err
		}
		s.metrics.IncStatusTransition(next.String())
		switch next {
		case enums.TicketStatusWinning:
			summary.Promoted++
		case enums.TicketStatusActive:
			summary.Reverted++
		}
	}

	s.metrics.IncReevaluation()
	return summary, nil
}

func (s *service) ListForAccount(ctx context.Context, accountID uuid.UUID) ([]ScoredTicket, error) {
	if accountID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "account id required")
	}

	pool, err := s.pool.Pool(ctx, nil)
	if err != nil {
		return nil, err
	}

	owned, err := s.repo.ListByAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}

	scored := make([]ScoredTicket, len(owned))
	for i, ticket := range owned {
		scored[i] = ScoredTicket{
			Ticket:  ticket,
			Matches: multiset.Matches(ticket.Numbers, pool),
			Covered: multiset.PositionFlags(ticket.Numbers, pool),
		}
	}
	return scored, nil
}

// MarkUnpaid places an administrative hold on a live ticket. Expired tickets
// cannot be held; re-evaluation never clears the hold.
func (s *service) MarkUnpaid(ctx context.Context, id uuid.UUID) (*models.Ticket, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "ticket id required")
	}

	ticket, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "ticket not found")
		}
		return nil, err
	}

	switch ticket.Status {
	case enums.TicketStatusUnpaid:
		return ticket, nil
	case enums.TicketStatusExpired:
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "expired ticket cannot be held").
			WithDetails(map[string]any{"status": ticket.Status})
	}

	if err := s.repo.UpdateStatus(ctx, id, enums.TicketStatusUnpaid); err != nil {
		return nil, err
	}
	ticket.Status = enums.TicketStatusUnpaid
	return ticket, nil
}
