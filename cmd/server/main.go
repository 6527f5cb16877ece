package main

import (
	"database/sql"
	"net/http"

	"uniasia-be/internal/audit"
	"uniasia-be/internal/config"
	"uniasia-be/internal/db"
	"uniasia-be/internal/fulfillment"
	"uniasia-be/internal/inventory"
	"uniasia-be/internal/logger"
	"uniasia-be/internal/middleware"
	"uniasia-be/internal/transport"

	"go.uber.org/zap"
)

// Indirections so tests can run the wiring without a database or a socket.
var (
	initDBFunc      = db.InitDB
	startServerFunc = http.ListenAndServe
)

func newServer(cfg *config.Config, database *sql.DB) http.Handler {
	invRepo := inventory.NewRepository(database)
	recorder := audit.NewRecorder(audit.NewRepository(database))

	repo := fulfillment.NewRepository(database, invRepo)
	svc := fulfillment.NewService(repo, invRepo, fulfillment.NewWorkspaceStore(), recorder)

	var h http.Handler = transport.NewHandler(svc)
	h = middleware.RateLimitMiddleware(h)
	h = middleware.AuthMiddleware(h)
	h = logger.LoggingMiddleware(h)
	h = logger.RequestIDMiddleware(h)
	return h
}

func run() error {
	cfg := config.LoadConfig()

	logger.Init(cfg.AppEnv)
	defer logger.Sync()

	database := initDBFunc(cfg)
	defer database.Close()

	handler := newServer(cfg, database)

	logger.L().Info("fulfillment server listening", zap.String("port", cfg.AppPort))
	return startServerFunc(":"+cfg.AppPort, handler)
}

func main() {
	if err := run(); err != nil {
		logger.L().Fatal("server exited", zap.Error(err))
	}
}
