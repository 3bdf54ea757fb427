package controllers

import (
	"net/http"

	"github.com/bolao-platform/bolao-backend/api/responses"
	"github.com/bolao-platform/bolao-backend/api/validators"
	"github.com/bolao-platform/bolao-backend/internal/settlement"
	"github.com/bolao-platform/bolao-backend/internal/tickets"
	"github.com/bolao-platform/bolao-backend/pkg/logger"
)

// PurchaseTickets handles a client buying tickets for themselves.
func PurchaseTickets(svc settlement.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var input settlement.PurchaseInput
		if err := validators.DecodeJSONBody(r, &input); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		if logg != nil {
			ctx = logg.WithAccountID(ctx, input.AccountID.String())
		}

		receipt, err := svc.Purchase(ctx, input)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, receipt)
	}
}

// RecordSale handles a seller registering an offline sale.
func RecordSale(svc settlement.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var input settlement.SaleInput
		if err := validators.DecodeJSONBody(r, &input); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		if logg != nil {
			ctx = logg.WithAccountID(ctx, input.SellerID.String())
		}

		receipt, err := svc.RecordSale(ctx, input)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, receipt)
	}
}

// ListTickets returns an account's tickets scored against the current pool.
func ListTickets(svc tickets.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		accountID, err := validators.UUIDQueryParam(r, "account_id")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		scored, err := svc.ListForAccount(ctx, accountID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, scored)
	}
}

// MarkTicketUnpaid places an administrative payment hold on a ticket.
func MarkTicketUnpaid(svc tickets.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		ticketID, err := validators.UUIDURLParam(r, "ticketID")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		if logg != nil {
			ctx = logg.WithTicketID(ctx, ticketID.String())
		}

		ticket, err := svc.MarkUnpaid(ctx, ticketID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, ticket)
	}
}
