package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/bolao-platform/bolao-backend/internal/settlement"
	"github.com/bolao-platform/bolao-backend/internal/tickets"
	"github.com/bolao-platform/bolao-backend/pkg/db/models"
	pkgerrors "github.com/bolao-platform/bolao-backend/pkg/errors"
	"github.com/bolao-platform/bolao-backend/pkg/types"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type fakeSettlement struct {
	receipt *settlement.Receipt
	err     error

	gotPurchase *settlement.PurchaseInput
	gotSale     *settlement.SaleInput
}

func (f *fakeSettlement) Purchase(ctx context.Context, input settlement.PurchaseInput) (*settlement.Receipt, error) {
	f.gotPurchase = &input
	return f.receipt, f.err
}

func (f *fakeSettlement) RecordSale(ctx context.Context, input settlement.SaleInput) (*settlement.Receipt, error) {
	f.gotSale = &input
	return f.receipt, f.err
}

type fakeTicketService struct {
	scored []tickets.ScoredTicket
	ticket *models.Ticket
	err    error
}

func (f *fakeTicketService) Reevaluate(ctx context.Context, tx *gorm.DB) (tickets.ReevaluationSummary, error) {
	return tickets.ReevaluationSummary{}, nil
}

func (f *fakeTicketService) ListForAccount(ctx context.Context, accountID uuid.UUID) ([]tickets.ScoredTicket, error) {
	return f.scored, f.err
}

func (f *fakeTicketService) MarkUnpaid(ctx context.Context, id uuid.UUID) (*models.Ticket, error) {
	return f.ticket, f.err
}

func TestPurchaseTicketsHappyPath(t *testing.T) {
	accountID := uuid.New()
	svc := &fakeSettlement{receipt: &settlement.Receipt{Balance: decimal.RequireFromString("6.00")}}

	body := `{"account_id":"` + accountID.String() + `","number_sets":[[5,5,9,12,3,1,1,1,1,2]]}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/tickets/purchase", strings.NewReader(body))
	w := httptest.NewRecorder()

	PurchaseTickets(svc, nil)(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	if svc.gotPurchase == nil || svc.gotPurchase.AccountID != accountID {
		t.Fatalf("service did not receive the decoded input: %+v", svc.gotPurchase)
	}
}

func TestPurchaseTicketsRejectsMalformedBody(t *testing.T) {
	svc := &fakeSettlement{}
	req := httptest.NewRequest(http.MethodPost, "/api/v1/tickets/purchase", strings.NewReader(`{"account_id":`))
	w := httptest.NewRecorder()

	PurchaseTickets(svc, nil)(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	if svc.gotPurchase != nil {
		t.Fatal("malformed body must not reach the service")
	}
}

func TestPurchaseTicketsMapsInsufficientFunds(t *testing.T) {
	svc := &fakeSettlement{err: pkgerrors.New(pkgerrors.CodeInsufficientFunds, "balance below total price")}

	body := `{"account_id":"` + uuid.NewString() + `","number_sets":[[1,2,3,4,5,6,7,8,9,10]]}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/tickets/purchase", strings.NewReader(body))
	w := httptest.NewRecorder()

	PurchaseTickets(svc, nil)(w, req)

	if w.Code != http.StatusPaymentRequired {
		t.Fatalf("expected 402, got %d", w.Code)
	}
	var envelope types.ErrorEnvelope
	if err := json.NewDecoder(w.Body).Decode(&envelope); err != nil {
		t.Fatalf("decoding error envelope: %v", err)
	}
	if envelope.Error.Code != string(pkgerrors.CodeInsufficientFunds) {
		t.Fatalf("unexpected error code %s", envelope.Error.Code)
	}
}

func TestRecordSaleHappyPath(t *testing.T) {
	sellerID := uuid.New()
	svc := &fakeSettlement{receipt: &settlement.Receipt{Balance: decimal.Zero}}

	body := `{"seller_id":"` + sellerID.String() + `","buyer_name":"Comprador","number_sets":[[1,2,3,4,5,6,7,8,9,10]]}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/tickets/sale", strings.NewReader(body))
	w := httptest.NewRecorder()

	RecordSale(svc, nil)(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	if svc.gotSale == nil || svc.gotSale.BuyerName != "Comprador" {
		t.Fatalf("service did not receive the decoded input: %+v", svc.gotSale)
	}
}

func TestListTicketsRequiresAccountID(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/tickets/", nil)
	w := httptest.NewRecorder()

	ListTickets(&fakeTicketService{}, nil)(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without account_id, got %d", w.Code)
	}
}

func TestListTicketsReturnsScored(t *testing.T) {
	scored := []tickets.ScoredTicket{{Matches: 4, Covered: []bool{true, false}}}
	req := httptest.NewRequest(http.MethodGet, "/api/v1/tickets/?account_id="+uuid.NewString(), nil)
	w := httptest.NewRecorder()

	ListTickets(&fakeTicketService{scored: scored}, nil)(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var envelope types.SuccessEnvelope
	if err := json.NewDecoder(w.Body).Decode(&envelope); err != nil {
		t.Fatalf("decoding envelope: %v", err)
	}
	if envelope.Data == nil {
		t.Fatal("expected scored tickets in response")
	}
}
