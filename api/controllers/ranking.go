package controllers

import (
	"net/http"

	"github.com/bolao-platform/bolao-backend/api/responses"
	"github.com/bolao-platform/bolao-backend/internal/ranking"
	"github.com/bolao-platform/bolao-backend/pkg/logger"
)

// PublicRanking serves the anonymized top-N board snapshot.
func PublicRanking(svc ranking.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		board, err := svc.Board(ctx)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, board)
	}
}

// AdminRanking serves the unbounded cycle ranking with full identity.
func AdminRanking(svc ranking.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		entries, err := svc.CycleRanking(ctx)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, entries)
	}
}
