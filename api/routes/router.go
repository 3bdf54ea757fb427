package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/bolao-platform/bolao-backend/api/controllers"
	"github.com/bolao-platform/bolao-backend/api/middleware"
	"github.com/bolao-platform/bolao-backend/internal/accounts"
	"github.com/bolao-platform/bolao-backend/internal/cycle"
	"github.com/bolao-platform/bolao-backend/internal/draws"
	"github.com/bolao-platform/bolao-backend/internal/ranking"
	"github.com/bolao-platform/bolao-backend/internal/settlement"
	"github.com/bolao-platform/bolao-backend/internal/tickets"
	"github.com/bolao-platform/bolao-backend/pkg/config"
	"github.com/bolao-platform/bolao-backend/pkg/db"
	"github.com/bolao-platform/bolao-backend/pkg/logger"
	"github.com/bolao-platform/bolao-backend/pkg/redis"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisP redis.Pinger,
	registry *prometheus.Registry,
	accountService accounts.Service,
	settlementService settlement.Service,
	ticketService tickets.Service,
	drawService draws.Service,
	rankingService ranking.Service,
	cycleService cycle.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisP))
	})

	if registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/accounts", func(r chi.Router) {
			r.Post("/", controllers.CreateAccount(accountService, logg))
			r.Get("/{accountID}", controllers.GetAccount(accountService, logg))
		})

		r.Route("/tickets", func(r chi.Router) {
			r.Post("/purchase", controllers.PurchaseTickets(settlementService, logg))
			r.Post("/sale", controllers.RecordSale(settlementService, logg))
			r.Get("/", controllers.ListTickets(ticketService, logg))
		})

		r.Get("/ranking", controllers.PublicRanking(rankingService, logg))
	})

	r.Route("/api/admin/v1", func(r chi.Router) {
		r.Route("/draws", func(r chi.Router) {
			r.Post("/", controllers.CreateDraw(drawService, logg))
			r.Get("/", controllers.ListDraws(drawService, logg))
			r.Put("/{drawID}", controllers.UpdateDraw(drawService, logg))
			r.Delete("/{drawID}", controllers.DeleteDraw(drawService, logg))
		})

		r.Post("/tickets/{ticketID}/unpaid", controllers.MarkTicketUnpaid(ticketService, logg))
		r.Post("/accounts/{accountID}/credit", controllers.CreditAccount(accountService, logg))

		r.Get("/ranking", controllers.AdminRanking(rankingService, logg))

		r.Post("/cycle/reset", controllers.ResetCycle(cycleService, logg))
		r.Get("/history/sellers", controllers.SellerHistory(cycleService, logg))
		r.Get("/history/admin", controllers.AdminHistory(cycleService, logg))
	})

	return r
}
