package draws

import (
	"context"
	"errors"
	"fmt"

	"github.com/bolao-platform/bolao-backend/internal/tickets"
	"github.com/bolao-platform/bolao-backend/pkg/config"
	"github.com/bolao-platform/bolao-backend/pkg/db/models"
	pkgerrors "github.com/bolao-platform/bolao-backend/pkg/errors"
	"github.com/bolao-platform/bolao-backend/pkg/logger"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"go.uber.org/multierr"
	"gorm.io/gorm"
)

// Draws carry either a quick pick of five numbers or a full line of ten.
var allowedDrawSizes = []int{5, 10}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Reevaluator re-runs the ticket status pass inside the draw mutation's
// transaction.
type Reevaluator interface {
	Reevaluate(ctx context.Context, tx *gorm.DB) (tickets.ReevaluationSummary, error)
}

// BoardPublisher rebuilds and stores the public ranking snapshot after a
// draw mutation commits.
type BoardPublisher interface {
	Publish(ctx context.Context) error
}

// Service owns the draw lifecycle. Every mutation re-evaluates ticket
// statuses in the same transaction and republishes the ranking board before
// returning, so callers never observe a pool that disagrees with the board.
type Service interface {
	Create(ctx context.Context, input DrawInput) (*models.Draw, error)
	Update(ctx context.Context, id uuid.UUID, input DrawInput) (*models.Draw, error)
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context) ([]models.Draw, error)
}

// DrawInput carries the admin-submitted draw data.
type DrawInput struct {
	Name    *string `json:"name,omitempty"`
	Numbers []int64 `json:"numbers" validate:"required"`
}

type service struct {
	tx     txRunner
	repo   Repository
	reeval Reevaluator
	board  BoardPublisher
	game   config.GameConfig
	logg   *logger.Logger
}

// NewService wires the draw service.
func NewService(tx txRunner, repo Repository, reeval Reevaluator, board BoardPublisher, game config.GameConfig, logg *logger.Logger) (Service, error) {
	if tx == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	if repo == nil {
		return nil, fmt.Errorf("draw repository required")
	}
	if reeval == nil {
		return nil, fmt.Errorf("reevaluator required")
	}
	if board == nil {
		return nil, fmt.Errorf("board publisher required")
	}
	return &service{
		tx:     tx,
		repo:   repo,
		reeval: reeval,
		board:  board,
		game:   game,
		logg:   logg,
	}, nil
}

func (s *service) Create(ctx context.Context, input DrawInput) (*models.Draw, error) {
	if err := s.validateNumbers(input.Numbers); err != nil {
		return nil, err
	}

	draw := &models.Draw{
		Name:    input.Name,
		Numbers: pq.Int64Array(input.Numbers),
	}
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.repo.WithTx(tx).Create(ctx, draw); err != nil {
			return err
		}
		return s.reevaluate(ctx, tx)
	})
	if err != nil {
		return nil, err
	}

	return draw, s.publishBoard(ctx)
}

func (s *service) Update(ctx context.Context, id uuid.UUID, input DrawInput) (*models.Draw, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "draw id required")
	}
	if err := s.validateNumbers(input.Numbers); err != nil {
		return nil, err
	}

	var updated *models.Draw
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		draw, err := repo.FindByID(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "draw not found")
			}
			return err
		}
		draw.Name = input.Name
		draw.Numbers = pq.Int64Array(input.Numbers)
		if err := repo.Update(ctx, draw); err != nil {
			return err
		}
		updated = draw
		return s.reevaluate(ctx, tx)
	})
	if err != nil {
		return nil, err
	}

	return updated, s.publishBoard(ctx)
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "draw id required")
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if _, err := repo.FindByID(ctx, id); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "draw not found")
			}
			return err
		}
		if err := repo.Delete(ctx, id); err != nil {
			return err
		}
		return s.reevaluate(ctx, tx)
	})
	if err != nil {
		return err
	}

	return s.publishBoard(ctx)
}

func (s *service) List(ctx context.Context) ([]models.Draw, error) {
	return s.repo.ListAll(ctx)
}

func (s *service) reevaluate(ctx context.Context, tx *gorm.DB) error {
	summary, err := s.reeval.Reevaluate(ctx, tx)
	if err != nil {
		return err
	}
	if s.logg != nil && (summary.Promoted > 0 || summary.Reverted > 0) {
		s.logg.Info(ctx, fmt.Sprintf("ticket re-evaluation: %d promoted, %d reverted", summary.Promoted, summary.Reverted))
	}
	return nil
}

func (s *service) publishBoard(ctx context.Context) error {
	if err := s.board.Publish(ctx); err != nil {
		if s.logg != nil {
			s.logg.Error(ctx, "ranking board publish failed after draw mutation", err)
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "ranking snapshot publish failed")
	}
	return nil
}

func (s *service) validateNumbers(numbers []int64) error {
	var err error
	if !isAllowedDrawSize(len(numbers)) {
		err = multierr.Append(err, fmt.Errorf("draw must contain 5 or 10 numbers, got %d", len(numbers)))
	}
	for _, n := range numbers {
		if n < int64(s.game.MinValue) || n > int64(s.game.MaxValue) {
			err = multierr.Append(err, fmt.Errorf("number %d outside range %d..%d", n, s.game.MinValue, s.game.MaxValue))
		}
	}
	if err != nil {
		messages := []string{}
		for _, e := range multierr.Errors(err) {
			messages = append(messages, e.Error())
		}
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid draw numbers").
			WithDetails(map[string]any{"errors": messages})
	}
	return nil
}

func isAllowedDrawSize(size int) bool {
	for _, allowed := range allowedDrawSizes {
		if size == allowed {
			return true
		}
	}
	return false
}
