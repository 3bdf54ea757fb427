package accounts

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/bolao-platform/bolao-backend/pkg/db"
	"github.com/bolao-platform/bolao-backend/pkg/db/models"
	"github.com/bolao-platform/bolao-backend/pkg/enums"
	pkgerrors "github.com/bolao-platform/bolao-backend/pkg/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// CreateAccountInput carries the fields needed to open an account.
type CreateAccountInput struct {
	Name     string `json:"name" validate:"required"`
	Username string `json:"username" validate:"required,min=3"`
	Role     string `json:"role" validate:"required"`
}

// Service exposes account reads, creation, and administrative balance credits.
type Service interface {
	Create(ctx context.Context, input CreateAccountInput) (*models.Account, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Account, error)
	Credit(ctx context.Context, id uuid.UUID, amount decimal.Decimal) (*models.Account, error)
}

type service struct {
	tx   txRunner
	repo Repository
}

// NewService wires the account service.
func NewService(tx txRunner, repo Repository) (Service, error) {
	if tx == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	if repo == nil {
		return nil, fmt.Errorf("account repository required")
	}
	return &service{tx: tx, repo: repo}, nil
}

func (s *service) Create(ctx context.Context, input CreateAccountInput) (*models.Account, error) {
	role, err := enums.ParseAccountRole(input.Role)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid account role").
			WithDetails(map[string]any{"role": input.Role})
	}

	account := &models.Account{
		Name:     strings.TrimSpace(input.Name),
		Username: strings.ToLower(strings.TrimSpace(input.Username)),
		Role:     role,
		Balance:  decimal.Zero,
	}
	if account.Name == "" || account.Username == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name and username are required")
	}

	if err := s.repo.Create(ctx, account); err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "username already taken").
				WithDetails(map[string]any{"username": account.Username})
		}
		return nil, err
	}
	return account, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.Account, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "account id required")
	}
	account, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeAccountNotFound, "account not found")
		}
		return nil, err
	}
	return account, nil
}

// Credit applies an administrative balance adjustment. Negative amounts are
// allowed for corrections as long as the resulting balance stays non-negative.
// The read-adjust-write runs under a row lock so it cannot race a settlement.
func (s *service) Credit(ctx context.Context, id uuid.UUID, amount decimal.Decimal) (*models.Account, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "account id required")
	}
	if amount.IsZero() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "adjustment amount must be non-zero")
	}

	var adjusted *models.Account
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		account, err := repo.FindByIDForUpdate(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeAccountNotFound, "account not found")
			}
			return err
		}

		next := account.Balance.Add(amount)
		if next.IsNegative() {
			return pkgerrors.New(pkgerrors.CodeInsufficientFunds, "adjustment would make balance negative").
				WithDetails(map[string]any{
					"balance":    account.Balance,
					"adjustment": amount,
				})
		}
		if err := repo.UpdateBalance(ctx, id, next); err != nil {
			return err
		}
		account.Balance = next
		adjusted = account
		return nil
	})
	if err != nil {
		return nil, err
	}
	return adjusted, nil
}
