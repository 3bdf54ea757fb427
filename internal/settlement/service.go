package settlement

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bolao-platform/bolao-backend/internal/accounts"
	"github.com/bolao-platform/bolao-backend/internal/multiset"
	"github.com/bolao-platform/bolao-backend/internal/tickets"
	"github.com/bolao-platform/bolao-backend/pkg/config"
	"github.com/bolao-platform/bolao-backend/pkg/db"
	"github.com/bolao-platform/bolao-backend/pkg/db/models"
	"github.com/bolao-platform/bolao-backend/pkg/enums"
	pkgerrors "github.com/bolao-platform/bolao-backend/pkg/errors"
	"github.com/bolao-platform/bolao-backend/pkg/logger"
	"github.com/bolao-platform/bolao-backend/pkg/metrics"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"go.uber.org/multierr"
	"gorm.io/gorm"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// exportNotifier receives issued tickets after the settlement commits.
type exportNotifier interface {
	NotifyIssued(ctx context.Context, tickets []models.Ticket)
}

// PurchaseInput is a client buying tickets for themselves in the app.
type PurchaseInput struct {
	AccountID  uuid.UUID `json:"account_id" validate:"required"`
	NumberSets [][]int64 `json:"number_sets" validate:"required,min=1"`
}

// SaleInput is a seller recording an offline sale against their own balance.
type SaleInput struct {
	SellerID   uuid.UUID `json:"seller_id" validate:"required"`
	BuyerName  string    `json:"buyer_name" validate:"required"`
	NumberSets [][]int64 `json:"number_sets" validate:"required,min=1"`
}

// Receipt reports a committed settlement.
type Receipt struct {
	Tickets []models.Ticket `json:"tickets"`
	Balance decimal.Decimal `json:"balance"`
}

// Service is the settlement transactor: it debits an account and issues
// tickets as one atomic unit, retrying transparently on store conflicts.
type Service interface {
	Purchase(ctx context.Context, input PurchaseInput) (*Receipt, error)
	RecordSale(ctx context.Context, input SaleInput) (*Receipt, error)
}

type service struct {
	tx       txRunner
	accounts accounts.Repository
	tickets  tickets.Repository
	notifier exportNotifier
	game     config.GameConfig
	metrics  *metrics.EngineMetrics
	logg     *logger.Logger
}

// NewService wires the settlement service. notifier may be nil when the
// export sink is disabled.
func NewService(tx txRunner, accountRepo accounts.Repository, ticketRepo tickets.Repository, notifier exportNotifier, game config.GameConfig, engineMetrics *metrics.EngineMetrics, logg *logger.Logger) (Service, error) {
	if tx == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	if accountRepo == nil {
		return nil, fmt.Errorf("account repository required")
	}
	if ticketRepo == nil {
		return nil, fmt.Errorf("ticket repository required")
	}
	return &service{
		tx:       tx,
		accounts: accountRepo,
		tickets:  ticketRepo,
		notifier: notifier,
		game:     game,
		metrics:  engineMetrics,
		logg:     logg,
	}, nil
}

func (s *service) Purchase(ctx context.Context, input PurchaseInput) (*Receipt, error) {
	if input.AccountID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "account id required")
	}
	if err := s.validateNumberSets(input.NumberSets); err != nil {
		return nil, err
	}

	return s.settle(ctx, input.AccountID, input.NumberSets,
		func(account *models.Account) error { return nil },
		func(account *models.Account, ticket *models.Ticket) {
			ticket.BuyerName = account.Name
			id := account.ID
			ticket.BuyerID = &id
		})
}

func (s *service) RecordSale(ctx context.Context, input SaleInput) (*Receipt, error) {
	if input.SellerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "seller id required")
	}
	if input.BuyerName == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "buyer name required for seller-recorded sales")
	}
	if err := s.validateNumberSets(input.NumberSets); err != nil {
		return nil, err
	}

	return s.settle(ctx, input.SellerID, input.NumberSets,
		func(account *models.Account) error {
			if account.Role != enums.AccountRoleSeller && account.Role != enums.AccountRoleAdmin {
				return pkgerrors.New(pkgerrors.CodeValidation, "account cannot record sales").
					WithDetails(map[string]any{"role": account.Role})
			}
			return nil
		},
		func(account *models.Account, ticket *models.Ticket) {
			ticket.BuyerName = input.BuyerName
			id := account.ID
			username := account.Username
			ticket.SellerID = &id
			ticket.SellerUsername = &username
		})
}

// settle runs the atomic debit-and-issue unit with bounded retry on
// transaction conflicts. Validation has already happened; nothing here may
// mutate state unless the whole unit commits.
func (s *service) settle(ctx context.Context, accountID uuid.UUID, sets [][]int64, verify func(*models.Account) error, attribute func(*models.Account, *models.Ticket)) (*Receipt, error) {
	start := time.Now()

	var receipt *Receipt
	var err error
	for attempt := 0; ; attempt++ {
		receipt, err = s.attempt(ctx, accountID, sets, verify, attribute)
		if err == nil || !db.IsTransactionConflict(err) {
			break
		}
		if attempt >= s.game.SettlementRetries {
			err = pkgerrors.Wrap(pkgerrors.CodeConflict, err, "settlement retries exhausted")
			break
		}
		if s.logg != nil {
			s.logg.Warn(ctx, fmt.Sprintf("settlement conflict, retrying (attempt %d)", attempt+1))
		}
	}

	s.metrics.ObserveSettlement(settlementResult(err), time.Since(start))
	if err != nil {
		return nil, err
	}

	s.metrics.AddTicketsIssued(len(receipt.Tickets))
	if s.notifier != nil {
		// The export is best-effort and must outlive the request.
		go s.notifier.NotifyIssued(context.WithoutCancel(ctx), receipt.Tickets)
	}
	return receipt, nil
}

func (s *service) attempt(ctx context.Context, accountID uuid.UUID, sets [][]int64, verify func(*models.Account) error, attribute func(*models.Account, *models.Ticket)) (*Receipt, error) {
	var receipt Receipt
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		accountRepo := s.accounts.WithTx(tx)
		ticketRepo := s.tickets.WithTx(tx)

		// Balance is re-read under the row lock, never trusted from the caller.
		account, err := accountRepo.FindByIDForUpdate(ctx, accountID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeAccountNotFound, "account not found")
			}
			return err
		}
		if err := verify(account); err != nil {
			return err
		}

		total := s.game.TicketPrice.Mul(decimal.NewFromInt(int64(len(sets))))
		if account.Balance.LessThan(total) {
			return pkgerrors.New(pkgerrors.CodeInsufficientFunds, "balance below total price").
				WithDetails(map[string]any{
					"balance":  account.Balance,
					"required": total,
				})
		}

		created := make([]models.Ticket, 0, len(sets))
		for _, set := range sets {
			ticket := &models.Ticket{
				Numbers: pq.Int64Array(set),
				Status:  enums.TicketStatusActive,
			}
			attribute(account, ticket)
			if err := ticketRepo.Create(ctx, ticket); err != nil {
				return err
			}
			created = append(created, *ticket)
		}

		next := account.Balance.Sub(total)
		if err := accountRepo.UpdateBalance(ctx, account.ID, next); err != nil {
			return err
		}

		receipt = Receipt{Tickets: created, Balance: next}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &receipt, nil
}

func (s *service) validateNumberSets(sets [][]int64) error {
	if len(sets) == 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "at least one number set required")
	}

	var err error
	for i, set := range sets {
		if len(set) != s.game.PickCount {
			err = multierr.Append(err, fmt.Errorf("set %d: expected %d numbers, got %d", i, s.game.PickCount, len(set)))
			continue
		}
		freq := multiset.Frequency(set)
		for value, count := range freq {
			if value < int64(s.game.MinValue) || value > int64(s.game.MaxValue) {
				err = multierr.Append(err, fmt.Errorf("set %d: number %d outside range %d..%d", i, value, s.game.MinValue, s.game.MaxValue))
			}
			if count > s.game.MaxRepeats {
				err = multierr.Append(err, fmt.Errorf("set %d: number %d repeated %d times, limit is %d", i, value, count, s.game.MaxRepeats))
			}
		}
	}
	if err != nil {
		messages := []string{}
		for _, e := range multierr.Errors(err) {
			messages = append(messages, e.Error())
		}
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid ticket numbers").
			WithDetails(map[string]any{"errors": messages})
	}
	return nil
}

func settlementResult(err error) string {
	if err == nil {
		return "success"
	}
	switch {
	case pkgerrors.HasCode(err, pkgerrors.CodeInsufficientFunds):
		return "insufficient_funds"
	case pkgerrors.HasCode(err, pkgerrors.CodeAccountNotFound):
		return "account_not_found"
	case pkgerrors.HasCode(err, pkgerrors.CodeConflict):
		return "conflict"
	default:
		return "error"
	}
}
