// cmd/lendkeeper/main.go
package main

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"golang.org/x/time/rate"

	"lendkeeper/internal/api"
	"lendkeeper/internal/config"
	"lendkeeper/internal/identity"
	"lendkeeper/internal/lending"
	"lendkeeper/internal/store/memory"
	"lendkeeper/internal/store/postgres"
	"lendkeeper/internal/store/sqlite"
	"lendkeeper/internal/telemetry"
)

// stores is what every backend must provide.
type stores interface {
	identity.UserStore
	lending.Store
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	ctx := context.Background()

	shutdownTracing, err := telemetry.Setup(ctx, cfg.Telemetry.OTLPEndpoint)
	if err != nil {
		log.Fatalf("setup telemetry: %v", err)
	}

	store, closeStore, err := openStore(ctx, cfg.Store)
	if err != nil {
		log.Fatalf("open store: %v", err)
	}

	limiter := rate.NewLimiter(rate.Limit(cfg.Auth.RatePerSec), cfg.Auth.Burst)
	identitySvc := identity.NewService(store, limiter)
	lendingSvc := lending.NewService(store)

	router := api.NewRouter(identity.NewHandler(identitySvc), identitySvc, lending.NewHandler(lendingSvc))

	server := &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Printf("Book Lending System API listening on %s (store: %s)", cfg.HTTP.Addr, cfg.Store.Backend)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("listen: %v", err)
		}
	}()

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	<-sigc

	shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown http: %v", err)
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		log.Printf("shutdown tracing: %v", err)
	}
	if err := closeStore(); err != nil {
		log.Printf("close store: %v", err)
	}
}

func openStore(ctx context.Context, cfg config.StoreConfig) (stores, func() error, error) {
	switch cfg.Backend {
	case config.BackendMemory:
		return memory.New(), func() error { return nil }, nil

	case config.BackendSQLite:
		s, err := sqlite.Open(cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		return s, s.Close, nil

	case config.BackendPostgres:
		db, err := sql.Open("postgres", cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		if err := db.PingContext(ctx); err != nil {
			_ = db.Close()
			return nil, nil, err
		}
		s := postgres.New(db)
		if err := s.EnsureSchema(ctx); err != nil {
			_ = db.Close()
			return nil, nil, err
		}
		return s, db.Close, nil

	default:
		return nil, nil, errors.New("unknown store backend " + cfg.Backend)
	}
}
