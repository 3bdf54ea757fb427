package controllers

import (
	"net/http"

	"github.com/bolao-platform/bolao-backend/api/responses"
	"github.com/bolao-platform/bolao-backend/pkg/config"
	"github.com/bolao-platform/bolao-backend/pkg/db"
	pkgerrors "github.com/bolao-platform/bolao-backend/pkg/errors"
	"github.com/bolao-platform/bolao-backend/pkg/logger"
	"github.com/bolao-platform/bolao-backend/pkg/redis"
)

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Bolao-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady verifies the hard dependencies. Nil pingers are skipped so dev
// setups without the full stack still report ready.
func HealthReady(cfg *config.Config, logg *logger.Logger, dbP db.Pinger, redisP redis.Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		w.Header().Set("X-Bolao-Env", cfg.App.Env)

		checks := map[string]string{}
		failed := false

		if dbP != nil {
			if err := dbP.Ping(ctx); err != nil {
				checks["database"] = err.Error()
				failed = true
			} else {
				checks["database"] = "ok"
			}
		}
		if redisP != nil {
			if err := redisP.Ping(ctx); err != nil {
				checks["redis"] = err.Error()
				failed = true
			} else {
				checks["redis"] = "ok"
			}
		}

		if failed {
			responses.WriteError(ctx, logg, w,
				pkgerrors.New(pkgerrors.CodeDependency, "dependency check failed").
					WithDetails(checks))
			return
		}
		responses.WriteSuccess(w, map[string]any{"status": "ready", "checks": checks})
	}
}
