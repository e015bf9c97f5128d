// cmd/server/main.go
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/joho/godotenv/autoload"
	"github.com/sirupsen/logrus"

	"github.com/unoarcade/uno-service/internal/auth"
	"github.com/unoarcade/uno-service/internal/cache"
	"github.com/unoarcade/uno-service/internal/database"
	"github.com/unoarcade/uno-service/internal/game"
	"github.com/unoarcade/uno-service/internal/handlers"
	"github.com/unoarcade/uno-service/internal/middleware"
)

func main() {
	logger := logrus.New()
	logger.SetLevel(logrus.DebugLevel)

	if err := auth.Init(); err != nil {
		logger.Fatalf("auth init failed: %v", err)
	}

	ctx := context.Background()

	// STORE=memory runs without Postgres; everything lives in process.
	var store game.Store
	var users handlers.UserStore
	if os.Getenv("STORE") == "memory" {
		mem := database.NewMemory()
		store, users = mem, mem
		logger.Info("using in-memory store")
	} else {
		pool, err := database.Connect(ctx)
		if err != nil {
			logger.Fatalf("database connect failed: %v", err)
		}
		defer pool.Close()
		if err := database.Migrate(ctx, pool); err != nil {
			logger.Fatalf("database migrate failed: %v", err)
		}
		pg := database.NewPG(pool)
		store, users = pg, pg
	}

	// The Redis action log is optional; the server runs without it.
	var actions game.ActionLog
	if os.Getenv("REDIS_ADDR") != "" {
		q, err := cache.Connect()
		if err != nil {
			logger.Warnf("redis connect failed, action log disabled: %v", err)
		} else {
			actions = q
			logger.Info("action log enabled")
		}
	}

	mgr := game.NewManager(store, logger, actions)

	mux := http.NewServeMux()
	logged := middleware.LogMiddleware(logger)

	// user endpoints
	mux.Handle("/user/create", logged(handlers.CreateUserHandler(logger, users)))
	mux.Handle("/user/login", logged(handlers.LoginHandler(logger, users)))

	// game endpoints
	mux.Handle("/game/create", logged(handlers.CreateGameHandler(logger, users, mgr)))
	mux.Handle("/game/ws/", logged(handlers.GameWSHandler(logger, mgr)))
	mux.Handle("/game/", logged(handlers.GameHandler(logger, users, mgr)))

	addr := ":8080"
	if port := os.Getenv("PORT"); port != "" {
		addr = ":" + port
	}
	srv := &http.Server{Addr: addr, Handler: mux}

	go func() {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
		<-sig
		logger.Info("shutting down")
		mgr.Shutdown()
		srv.Close()
	}()

	logger.Infof("Running on %s", addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatalf("server exited: %v", err)
	}
}
