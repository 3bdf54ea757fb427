package controllers

import (
	"net/http"

	"github.com/bolao-platform/bolao-backend/api/responses"
	"github.com/bolao-platform/bolao-backend/internal/cycle"
	"github.com/bolao-platform/bolao-backend/pkg/logger"
)

// ResetCycle closes out the current sales cycle.
func ResetCycle(svc cycle.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		summary, err := svc.Reset(ctx)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, summary)
	}
}

func SellerHistory(svc cycle.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		entries, err := svc.SellerHistory(ctx)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, entries)
	}
}

func AdminHistory(svc cycle.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		entries, err := svc.AdminHistory(ctx)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, entries)
	}
}
