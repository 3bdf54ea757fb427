package controllers

import (
	"net/http"

	"github.com/bolao-platform/bolao-backend/api/responses"
	"github.com/bolao-platform/bolao-backend/api/validators"
	"github.com/bolao-platform/bolao-backend/internal/draws"
	"github.com/bolao-platform/bolao-backend/pkg/logger"
)

func CreateDraw(svc draws.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var input draws.DrawInput
		if err := validators.DecodeJSONBody(r, &input); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		draw, err := svc.Create(ctx, input)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, draw)
	}
}

func ListDraws(svc draws.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		all, err := svc.List(ctx)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, all)
	}
}

func UpdateDraw(svc draws.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		drawID, err := validators.UUIDURLParam(r, "drawID")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		var input draws.DrawInput
		if err := validators.DecodeJSONBody(r, &input); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		draw, err := svc.Update(ctx, drawID, input)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, draw)
	}
}

func DeleteDraw(svc draws.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		drawID, err := validators.UUIDURLParam(r, "drawID")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		if err := svc.Delete(ctx, drawID); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}
