package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/Sparq-System/Stock-Manager-sub001/internal/api/handlers"
	custommiddleware "github.com/Sparq-System/Stock-Manager-sub001/internal/api/middleware"
	"github.com/Sparq-System/Stock-Manager-sub001/internal/config"
	"github.com/Sparq-System/Stock-Manager-sub001/internal/service"
)

// Services groups the services the HTTP layer delegates to.
type Services struct {
	System      *service.SystemService
	Account     *service.AccountService
	Ledger      *service.LedgerService
	Transaction *service.TransactionService
	Fund        *service.FundService
	Value       *service.ValueService
	NAV         *service.NAVService
	Totals      *service.TotalsService
}

// NewRouter creates and configures the HTTP router
func NewRouter(svc Services, cfg *config.Config, logger zerolog.Logger) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(custommiddleware.Logger(logger))
	r.Use(middleware.Recoverer)

	// CORS middleware
	corsMiddleware := custommiddleware.NewCORS(cfg.CORS.AllowedOrigins)
	r.Use(corsMiddleware.Handler)

	systemHandler := handlers.NewSystemHandler(svc.System)
	accountHandler := handlers.NewAccountHandler(svc.Account, svc.Transaction)
	ledgerHandler := handlers.NewLedgerHandler(svc.Ledger)
	transactionHandler := handlers.NewTransactionHandler(svc.Transaction)
	fundHandler := handlers.NewFundHandler(svc.Fund, svc.Value, svc.NAV, svc.Totals)

	// API routes
	r.Route("/api", func(r chi.Router) {
		r.Route("/system", func(r chi.Router) {
			r.Get("/health", systemHandler.Health)
			r.Get("/version", systemHandler.Version)
		})

		r.Route("/account", func(r chi.Router) {
			r.Get("/", accountHandler.Accounts)
			r.Post("/", accountHandler.OpenAccount)

			r.Route("/{uuid}", func(r chi.Router) {
				r.Use(custommiddleware.ValidateUUIDMiddleware)
				r.Get("/", accountHandler.Account)
				r.Post("/invest", accountHandler.Invest)
				r.Post("/withdraw", accountHandler.Withdraw)
				r.Get("/transaction", accountHandler.Transactions)
				r.Post("/buy", ledgerHandler.Buy)
				r.Get("/holding", ledgerHandler.Holdings)
				r.With(custommiddleware.ValidateURLParamUUID("holdingId")).
					Post("/holding/{holdingId}/sell", ledgerHandler.Sell)
			})
		})

		r.Route("/holding/{uuid}", func(r chi.Router) {
			r.Use(custommiddleware.ValidateUUIDMiddleware)
			r.Get("/", ledgerHandler.Holding)
			r.Get("/lot", ledgerHandler.Lots)
			r.Get("/transaction", ledgerHandler.HoldingTransactions)
		})

		r.With(custommiddleware.ValidateUUIDMiddleware).Get("/lot/{uuid}/sale", ledgerHandler.LotSales)
		r.With(custommiddleware.ValidateUUIDMiddleware).Get("/transaction/{uuid}", transactionHandler.GetTransaction)

		r.Route("/fund", func(r chi.Router) {
			r.Get("/overview", fundHandler.Overview)

			r.Get("/value", fundHandler.Value)
			r.Put("/value", fundHandler.SetValue)
			r.Post("/value/adjust", fundHandler.AdjustValue)
			r.Get("/value/history", fundHandler.ValueHistory)

			r.Get("/nav", fundHandler.NAV)
			r.Post("/nav", fundHandler.RecordNAV)
			r.Get("/nav/history", fundHandler.NAVHistory)
			r.Post("/nav/recompute", fundHandler.RecomputeNAV)

			r.Get("/totals", fundHandler.Totals)
			r.Post("/totals/recompute", fundHandler.RecomputeTotals)
		})
	})

	return r
}
