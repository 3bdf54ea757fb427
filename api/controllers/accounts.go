package controllers

import (
	"net/http"

	"github.com/bolao-platform/bolao-backend/api/responses"
	"github.com/bolao-platform/bolao-backend/api/validators"
	"github.com/bolao-platform/bolao-backend/internal/accounts"
	"github.com/bolao-platform/bolao-backend/pkg/logger"
	"github.com/shopspring/decimal"
)

func CreateAccount(svc accounts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var input accounts.CreateAccountInput
		if err := validators.DecodeJSONBody(r, &input); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		account, err := svc.Create(ctx, input)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, account)
	}
}

func GetAccount(svc accounts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		accountID, err := validators.UUIDURLParam(r, "accountID")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		account, err := svc.Get(ctx, accountID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, account)
	}
}

type creditRequest struct {
	Amount decimal.Decimal `json:"amount" validate:"required"`
}

// CreditAccount applies an administrative balance adjustment.
func CreditAccount(svc accounts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		accountID, err := validators.UUIDURLParam(r, "accountID")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		if logg != nil {
			ctx = logg.WithAccountID(ctx, accountID.String())
		}

		var input creditRequest
		if err := validators.DecodeJSONBody(r, &input); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		account, err := svc.Credit(ctx, accountID, input.Amount)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, account)
	}
}
