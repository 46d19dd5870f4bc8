package main

import (
	"context"
	"crypto/tls"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/username/divtracker/backend/src/config"
	"github.com/username/divtracker/backend/src/database"
	"github.com/username/divtracker/backend/src/handlers"
	"github.com/username/divtracker/backend/src/logger"
	"github.com/username/divtracker/backend/src/processors"
	"github.com/username/divtracker/backend/src/services"
	"github.com/username/divtracker/backend/src/utils"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

func proxyHeadersMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-Forwarded-Proto") == "https" {
			r.URL.Scheme = "https"
			r.TLS = &tls.ConnectionState{}
		}
		next.ServeHTTP(w, r)
	})
}

type routerDeps struct {
	holdingHandler  *handlers.HoldingHandler
	dividendHandler *handlers.DividendHandler
	currencyHandler *handlers.CurrencyHandler
	proxyHandler    *handlers.DividendProxyHandler
	allowedOrigins  []string
	limiter         *rate.Limiter
}

func newRouter(deps routerDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(handlers.ContextualLoggerMiddleware)
	r.Use(proxyHeadersMiddleware)
	r.Use(handlers.CORSMiddleware(deps.allowedOrigins))
	r.Use(handlers.RateLimitMiddleware(deps.limiter))

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		utils.WriteJSON(w, http.StatusOK, map[string]string{"message": "Dividend tracker backend is running"})
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/holdings", deps.holdingHandler.HandleListHoldings)
		r.Post("/holdings", deps.holdingHandler.HandleAddHolding)
		r.Post("/holdings/import", deps.holdingHandler.HandleImportHoldings)
		r.Delete("/holdings", deps.holdingHandler.HandleClearHoldings)
		r.Delete("/holdings/{id}", deps.holdingHandler.HandleDeleteHolding)

		r.Post("/sessions", deps.dividendHandler.HandleCreateSession)
		r.Get("/sessions/{id}", deps.dividendHandler.HandleGetSession)
		r.Get("/sessions/{id}/ledger", deps.dividendHandler.HandleGetLedger)
		r.Get("/sessions/{id}/ledger.csv", deps.dividendHandler.HandleExportLedgerCSV)
		r.Patch("/sessions/{id}/ledger/{entryID}", deps.dividendHandler.HandlePatchLedgerEntry)
		r.Get("/sessions/{id}/statistics", deps.dividendHandler.HandleGetStatistics)
		r.Get("/sessions/{id}/projection", deps.dividendHandler.HandleGetProjection)

		r.Get("/currencies", deps.currencyHandler.HandleListCurrencies)
		r.Get("/dividends/{ticker}", deps.proxyHandler.HandleGetDividends)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/api/") {
			utils.SendJSONError(w, "Not found", http.StatusNotFound)
			return
		}
		http.NotFound(w, r)
	})
	return r
}

func main() {
	config.LoadConfig()
	logger.InitLogger(config.Cfg.LogLevel)

	logger.L.Info("Dividend tracker backend server starting...")

	logger.L.Info("Initializing database...", "path", config.Cfg.DatabasePath)
	database.InitDB(config.Cfg.DatabasePath)
	defer database.DB.Close()

	provider, err := services.NewProviderFromConfig(config.Cfg)
	if err != nil {
		logger.L.Error("Dividend provider configuration invalid", "error", err)
		os.Exit(1)
	}

	lenientConverter := processors.NewCurrencyConverter(processors.TreatUnknownAsReference)
	strictConverter := processors.NewCurrencyConverter(processors.RejectUnknown)

	holdingService := services.NewHoldingService(database.DB)
	dividendService := services.NewDividendService(
		services.NewDividendFetcher(provider, config.Cfg.FetchConcurrency),
		processors.NewLedgerBuilder(),
		processors.NewLedgerQuery(),
		processors.NewStatisticsEstimator(),
		processors.NewAllocationPlanner(lenientConverter, processors.EqualSplit{}),
		strictConverter,
		config.Cfg.SessionExpiration,
	)

	router := newRouter(routerDeps{
		holdingHandler:  handlers.NewHoldingHandler(holdingService, config.Cfg.MaxUploadSizeBytes),
		dividendHandler: handlers.NewDividendHandler(dividendService, holdingService, config.Cfg.DefaultTargetCurrency),
		currencyHandler: handlers.NewCurrencyHandler(strictConverter),
		proxyHandler:    handlers.NewDividendProxyHandler(provider),
		allowedOrigins:  config.Cfg.AllowedOrigins,
		limiter:         rate.NewLimiter(rate.Every(100*time.Millisecond), 30),
	})

	serverAddr := ":" + config.Cfg.Port
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 2 * time.Minute, // session creation waits for the whole fetch batch
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.L.Info("Server starting", "address", serverAddr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gCtx.Done()
		logger.L.Info("Shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.L.Error("Server stopped with error", "error", err)
		os.Exit(1)
	}
	logger.L.Info("Server stopped")
}
