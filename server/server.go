// Package server exposes the rewards ledger over HTTP/JSON.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"rewards/application"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	log "github.com/sirupsen/logrus"
)

// Server is the rewards HTTP API server
type Server struct {
	accounts    application.AccountHandler
	wallet      application.WalletHandler
	missions    application.MissionHandler
	prizes      application.PrizeHandler
	redemptions application.RedemptionHandler

	healthChecks map[string]HealthCheck
}

// HealthCheck reports whether a backing dependency is reachable
type HealthCheck func(ctx context.Context) error

// NewServer creates a server whose handlers share deps
func NewServer(deps application.Dependencies) *Server {
	return &Server{
		accounts:     application.NewAccountHandler(deps),
		wallet:       application.NewWalletHandler(deps),
		missions:     application.NewMissionHandler(deps),
		prizes:       application.NewPrizeHandler(deps),
		redemptions:  application.NewRedemptionHandler(deps),
		healthChecks: make(map[string]HealthCheck),
	}
}

// AddHealthCheck registers a dependency checked by /health
func (s *Server) AddHealthCheck(name string, check HealthCheck) {
	s.healthChecks[name] = check
}

// Handler returns the chi router with all routes mounted
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	r.Get("/health", s.handleHealth)

	r.Route("/v1", func(r chi.Router) {
		r.Post("/accounts", s.handleOpenAccount)
		r.Get("/products", s.handleListProducts)

		r.Route("/users/{userID}", func(r chi.Router) {
			r.Get("/", s.handleGetAccount)
			r.Get("/balance", s.handleGetBalance)
			r.Get("/transactions", s.handleGetTransactions)
			r.Post("/referral", s.handleApplyReferral)

			r.Get("/missions", s.handleListMissions)
			r.Post("/missions/{missionID}/complete", s.handleCompleteMission)

			r.Get("/prizes", s.handleListPrizes)
			r.Post("/prizes/{prizeID}/entries", s.handleEnterPrize)
			r.Get("/prizes/{prizeID}/pity", s.handleGetPityStatus)
			r.Get("/prize-entries", s.handleGetEntryHistory)

			r.Get("/withdrawals", s.handleListWithdrawals)
			r.Post("/withdrawals", s.handleRequestWithdrawal)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Post("/withdrawals/{withdrawalID}/process", s.handleProcessWithdrawal)
			r.Post("/users/{userID}/adjustments", s.handleAdjustBalance)
		})
	})

	return r
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.WithField("addr", addr).Info("HTTP server listening")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("Shutting down HTTP server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down http server: %w", err)
	}
	return nil
}

// requestLogger logs one line per request through logrus
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		entry := log.WithFields(log.Fields{
			"method":    r.Method,
			"path":      r.URL.Path,
			"status":    ww.Status(),
			"duration":  time.Since(start),
			"requestID": middleware.GetReqID(r.Context()),
		})
		if ww.Status() >= http.StatusInternalServerError {
			entry.Warn("Request failed")
			return
		}
		entry.Debug("Request handled")
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	status := http.StatusOK
	body := map[string]string{"status": "ok"}
	for name, check := range s.healthChecks {
		if err := check(ctx); err != nil {
			log.WithError(err).WithField("dependency", name).Warn("Health check failed")
			status = http.StatusServiceUnavailable
			body["status"] = "degraded"
			body[name] = "unavailable"
			continue
		}
		body[name] = "ok"
	}
	writeJSON(w, status, body)
}
