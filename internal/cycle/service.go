package cycle

import (
	"context"
	"fmt"
	"sort"

	"github.com/bolao-platform/bolao-backend/internal/draws"
	"github.com/bolao-platform/bolao-backend/internal/tickets"
	"github.com/bolao-platform/bolao-backend/pkg/config"
	"github.com/bolao-platform/bolao-backend/pkg/db/models"
	"github.com/bolao-platform/bolao-backend/pkg/enums"
	pkgerrors "github.com/bolao-platform/bolao-backend/pkg/errors"
	"github.com/bolao-platform/bolao-backend/pkg/logger"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// BoardPublisher republishes the (now empty) public board once a reset lands.
type BoardPublisher interface {
	Publish(ctx context.Context) error
}

// ResetSummary reports what one cycle reset archived and cleared.
type ResetSummary struct {
	SellerEntries     int   `json:"seller_entries"`
	AdminEntryWritten bool  `json:"admin_entry_written"`
	DrawsCleared      int64 `json:"draws_cleared"`
	ExpiredTickets    int64 `json:"expired_tickets"`
}

// Service closes out sales cycles and serves the archived history.
type Service interface {
	Reset(ctx context.Context) (*ResetSummary, error)
	SellerHistory(ctx context.Context) ([]models.SellerHistoryEntry, error)
	AdminHistory(ctx context.Context) ([]models.AdminHistoryEntry, error)
}

type service struct {
	tx      txRunner
	history Repository
	tickets tickets.Repository
	draws   draws.Repository
	board   BoardPublisher
	game    config.GameConfig
	logg    *logger.Logger
}

// NewService wires the cycle service.
func NewService(tx txRunner, history Repository, ticketRepo tickets.Repository, drawRepo draws.Repository, board BoardPublisher, game config.GameConfig, logg *logger.Logger) (Service, error) {
	if tx == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	if history == nil {
		return nil, fmt.Errorf("history repository required")
	}
	if ticketRepo == nil {
		return nil, fmt.Errorf("ticket repository required")
	}
	if drawRepo == nil {
		return nil, fmt.Errorf("draw repository required")
	}
	if board == nil {
		return nil, fmt.Errorf("board publisher required")
	}
	return &service{
		tx:      tx,
		history: history,
		tickets: ticketRepo,
		draws:   drawRepo,
		board:   board,
		game:    game,
		logg:    logg,
	}, nil
}

var liveStatuses = []enums.TicketStatus{
	enums.TicketStatusActive,
	enums.TicketStatusWinning,
	enums.TicketStatusUnpaid,
}

// Reset archives the financial summaries, clears the draw pool, and expires
// every live ticket in one atomic batch. Either the whole reset commits or
// nothing does; on failure it is retried as a whole, never resumed midway.
func (s *service) Reset(ctx context.Context) (*ResetSummary, error) {
	var summary ResetSummary
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		historyRepo := s.history.WithTx(tx)
		ticketRepo := s.tickets.WithTx(tx)
		drawRepo := s.draws.WithTx(tx)

		live, err := ticketRepo.ListByStatuses(ctx, liveStatuses...)
		if err != nil {
			return err
		}

		sellerEntries, admin := s.summarize(live)
		if err := historyRepo.AppendSellerHistory(ctx, sellerEntries); err != nil {
			return err
		}
		summary.SellerEntries = len(sellerEntries)

		if !admin.TotalRevenue.IsZero() {
			if err := historyRepo.AppendAdminHistory(ctx, &admin); err != nil {
				return err
			}
			summary.AdminEntryWritten = true
		}

		cleared, err := drawRepo.DeleteAll(ctx)
		if err != nil {
			return err
		}
		summary.DrawsCleared = cleared

		expired, err := ticketRepo.BulkUpdateStatus(ctx, liveStatuses, enums.TicketStatusExpired)
		if err != nil {
			return err
		}
		summary.ExpiredTickets = expired
		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := s.board.Publish(ctx); err != nil {
		if s.logg != nil {
			s.logg.Error(ctx, "ranking board publish failed after cycle reset", err)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "ranking snapshot publish failed")
	}

	if s.logg != nil {
		s.logg.Info(ctx, fmt.Sprintf("cycle closed: %d tickets expired, %d draws cleared", summary.ExpiredTickets, summary.DrawsCleared))
	}
	return &summary, nil
}

// summarize folds the cycle's live tickets into history rows. Unpaid tickets
// never produced revenue, so only active and winning tickets count.
func (s *service) summarize(live []models.Ticket) ([]models.SellerHistoryEntry, models.AdminHistoryEntry) {
	type sellerTally struct {
		username string
		count    int
	}
	sellers := map[uuid.UUID]*sellerTally{}
	clientTickets := 0
	sellerTickets := 0

	for _, ticket := range live {
		if ticket.Status != enums.TicketStatusActive && ticket.Status != enums.TicketStatusWinning {
			continue
		}
		if ticket.Origin() == enums.TicketOriginSeller {
			tally := sellers[*ticket.SellerID]
			if tally == nil {
				tally = &sellerTally{}
				if ticket.SellerUsername != nil {
					tally.username = *ticket.SellerUsername
				}
				sellers[*ticket.SellerID] = tally
			}
			tally.count++
			sellerTickets++
		} else {
			clientTickets++
		}
	}

	entries := make([]models.SellerHistoryEntry, 0, len(sellers))
	totalSellerCommission := decimal.Zero
	for id, tally := range sellers {
		revenue := s.game.TicketPrice.Mul(decimal.NewFromInt(int64(tally.count)))
		commission := revenue.Mul(s.game.SellerCommissionPct).Round(2)
		totalSellerCommission = totalSellerCommission.Add(commission)
		entries = append(entries, models.SellerHistoryEntry{
			SellerID:       id,
			SellerUsername: tally.username,
			ActiveTickets:  tally.count,
			Revenue:        revenue,
			Commission:     commission,
		})
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].SellerUsername < entries[j].SellerUsername
	})

	totalRevenue := s.game.TicketPrice.Mul(decimal.NewFromInt(int64(clientTickets + sellerTickets)))
	ownerCommission := totalRevenue.Mul(s.game.OwnerCommissionPct).Round(2)
	admin := models.AdminHistoryEntry{
		TotalRevenue:     totalRevenue,
		SellerCommission: totalSellerCommission,
		OwnerCommission:  ownerCommission,
		PrizePool:        totalRevenue.Sub(totalSellerCommission).Sub(ownerCommission),
		ClientTickets:    clientTickets,
		SellerTickets:    sellerTickets,
	}
	return entries, admin
}

func (s *service) SellerHistory(ctx context.Context) ([]models.SellerHistoryEntry, error) {
	return s.history.ListSellerHistory(ctx)
}

func (s *service) AdminHistory(ctx context.Context) ([]models.AdminHistoryEntry, error) {
	return s.history.ListAdminHistory(ctx)
}
