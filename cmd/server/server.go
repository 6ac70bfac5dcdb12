// cmd/server/server.go
package main

import (
	"fmt"
	"net/http"
	"time"

	"github.com/ottawafunsports/ofsl/internal/api"
	"github.com/ottawafunsports/ofsl/internal/api/leagues"
	"github.com/ottawafunsports/ofsl/internal/config"
	"github.com/ottawafunsports/ofsl/internal/ratelimit"
)

func newServer(cfg *config.Config, limiter *ratelimit.Limiter) *http.Server {
	router := http.NewServeMux()

	handler := api.ChainMiddleware(
		router,
		api.WithLogging,
		api.WithCoordinatorKey(cfg.Secrets.AppSecretKey, limiter),
		api.WithRecovery,
		api.WithRequestID,
		api.WithContentType,
	)

	registerRoutes(router)

	return &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.App.Port),
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}

func registerRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	leagues.RegisterRoutes(mux)
}
