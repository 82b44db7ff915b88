package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"chirp/auth"
	"chirp/config"
	"chirp/database"
	"chirp/logging"
	"chirp/routes"
	"chirp/services"
	"chirp/store"
	"chirp/websocket"

	"github.com/gin-gonic/gin"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.New(false).Error(context.Background(), "config", "error", err)
		os.Exit(1)
	}

	log := logging.New(cfg.Release())
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Info(ctx, "starting chirp", "port", cfg.Port, "mode", cfg.GinMode)

	st, err := openStore(ctx, cfg, log)
	if err != nil {
		log.Error(ctx, "store", "error", err)
		os.Exit(1)
	}

	if cfg.Release() {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	tokens := auth.NewTokens(cfg.JWTSecret, cfg.TokenTTL)

	hub := websocket.NewManager(log.With("component", "live"))
	go hub.Start(ctx)

	svc := services.New(services.Deps{
		Store:    st,
		Hasher:   auth.NewHasher(),
		Tokens:   tokens,
		Notifier: hub,
		Log:      log.With("component", "services"),
	})

	router := routes.SetupRouter(routes.Deps{
		Config:   cfg,
		Services: svc,
		Tokens:   tokens,
		Hub:      hub,
		Log:      log,
	})

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info(ctx, "server listening", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error(ctx, "server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	log.Info(context.Background(), "shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error(shutdownCtx, "forced shutdown", "error", err)
	}
	if err := database.DisconnectMongo(); err != nil {
		log.Error(shutdownCtx, "mongo disconnect", "error", err)
	}

	log.Info(shutdownCtx, "server stopped")
}

// openStore connects to MongoDB with a few retries, or returns the
// in-process store when MONGODB_URI is "memory".
func openStore(ctx context.Context, cfg config.Config, log logging.Logger) (store.Store, error) {
	if cfg.MongoURI == config.MemoryURI {
		log.Warn(ctx, "using in-memory store; data is lost on exit")
		return store.NewMemory().Store(), nil
	}

	var err error
	for i := 1; i <= 3; i++ {
		if err = database.ConnectMongo(cfg.MongoURI, cfg.MongoDB); err == nil {
			break
		}
		log.Warn(ctx, "mongo connection attempt failed", "attempt", i, "error", err)
		time.Sleep(2 * time.Second)
	}
	if err != nil {
		return store.Store{}, err
	}
	log.Info(ctx, "mongo connected", "db", cfg.MongoDB)

	idxCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	if err := database.EnsureIndexes(idxCtx); err != nil {
		return store.Store{}, err
	}
	return database.NewStore(), nil
}
