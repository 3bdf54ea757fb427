package routes

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/bolao-platform/bolao-backend/internal/accounts"
	"github.com/bolao-platform/bolao-backend/internal/cycle"
	"github.com/bolao-platform/bolao-backend/internal/draws"
	"github.com/bolao-platform/bolao-backend/internal/ranking"
	"github.com/bolao-platform/bolao-backend/internal/settlement"
	"github.com/bolao-platform/bolao-backend/internal/tickets"
	"github.com/bolao-platform/bolao-backend/pkg/config"
	"github.com/bolao-platform/bolao-backend/pkg/db/models"
	"github.com/bolao-platform/bolao-backend/pkg/enums"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type stubAccounts struct{}

func (stubAccounts) Create(ctx context.Context, input accounts.CreateAccountInput) (*models.Account, error) {
	return &models.Account{ID: uuid.New()}, nil
}

func (stubAccounts) Get(ctx context.Context, id uuid.UUID) (*models.Account, error) {
	return &models.Account{ID: id}, nil
}

func (stubAccounts) Credit(ctx context.Context, id uuid.UUID, amount decimal.Decimal) (*models.Account, error) {
	return &models.Account{ID: id, Balance: amount}, nil
}

type stubSettlement struct{}

func (stubSettlement) Purchase(ctx context.Context, input settlement.PurchaseInput) (*settlement.Receipt, error) {
	return &settlement.Receipt{}, nil
}

func (stubSettlement) RecordSale(ctx context.Context, input settlement.SaleInput) (*settlement.Receipt, error) {
	return &settlement.Receipt{}, nil
}

type stubTickets struct {
	unpaidID uuid.UUID
}

func (s *stubTickets) Reevaluate(ctx context.Context, tx *gorm.DB) (tickets.ReevaluationSummary, error) {
	return tickets.ReevaluationSummary{}, nil
}

func (s *stubTickets) ListForAccount(ctx context.Context, accountID uuid.UUID) ([]tickets.ScoredTicket, error) {
	return nil, nil
}

func (s *stubTickets) MarkUnpaid(ctx context.Context, id uuid.UUID) (*models.Ticket, error) {
	s.unpaidID = id
	return &models.Ticket{ID: id, Status: enums.TicketStatusUnpaid}, nil
}

type stubDraws struct{}

func (stubDraws) Create(ctx context.Context, input draws.DrawInput) (*models.Draw, error) {
	return &models.Draw{ID: uuid.New()}, nil
}

func (stubDraws) Update(ctx context.Context, id uuid.UUID, input draws.DrawInput) (*models.Draw, error) {
	return &models.Draw{ID: id}, nil
}

func (stubDraws) Delete(ctx context.Context, id uuid.UUID) error { return nil }

func (stubDraws) List(ctx context.Context) ([]models.Draw, error) { return nil, nil }

type stubRanking struct{}

func (stubRanking) Publish(ctx context.Context) error { return nil }

func (stubRanking) Board(ctx context.Context) (*ranking.Board, error) {
	return &ranking.Board{Ranking: []ranking.BoardEntry{}}, nil
}

func (stubRanking) CycleRanking(ctx context.Context) ([]ranking.AdminEntry, error) {
	return nil, nil
}

type stubCycle struct{}

func (stubCycle) Reset(ctx context.Context) (*cycle.ResetSummary, error) {
	return &cycle.ResetSummary{}, nil
}

func (stubCycle) SellerHistory(ctx context.Context) ([]models.SellerHistoryEntry, error) {
	return nil, nil
}

func (stubCycle) AdminHistory(ctx context.Context) ([]models.AdminHistoryEntry, error) {
	return nil, nil
}

func newTestRouter(ticketSvc tickets.Service) http.Handler {
	cfg := &config.Config{}
	cfg.App.Env = "dev"
	return NewRouter(cfg, nil, nil, nil, nil,
		stubAccounts{}, stubSettlement{}, ticketSvc, stubDraws{}, stubRanking{}, stubCycle{})
}

func TestRouterHealthLive(t *testing.T) {
	router := newTestRouter(&stubTickets{})
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health/live", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if w.Header().Get("X-Bolao-Env") != "dev" {
		t.Fatalf("expected env header, got %q", w.Header().Get("X-Bolao-Env"))
	}
}

func TestRouterPublicRanking(t *testing.T) {
	router := newTestRouter(&stubTickets{})
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/ranking", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
}

func TestRouterUnpaidHoldParsesTicketID(t *testing.T) {
	ticketSvc := &stubTickets{}
	router := newTestRouter(ticketSvc)

	id := uuid.New()
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/admin/v1/tickets/"+id.String()+"/unpaid", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if ticketSvc.unpaidID != id {
		t.Fatalf("expected ticket id %s to reach the service, got %s", id, ticketSvc.unpaidID)
	}
}

func TestRouterUnpaidHoldRejectsBadID(t *testing.T) {
	router := newTestRouter(&stubTickets{})
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/admin/v1/tickets/not-a-uuid/unpaid", nil))

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestRouterUnknownRoute(t *testing.T) {
	router := newTestRouter(&stubTickets{})
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/nope", nil))

	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}
