package main

import (
	"context"
	"fmt"
	"os"

	"github.com/AlibekovAA/task-manager/backend/internal/common/bootstrap"
	"github.com/AlibekovAA/task-manager/backend/internal/common/config"
	"github.com/AlibekovAA/task-manager/backend/internal/common/constants"
	"github.com/AlibekovAA/task-manager/backend/internal/common/logger"
	srv "github.com/AlibekovAA/task-manager/backend/internal/common/server"
)

func main() {
	log, err := logger.New(os.Getenv("LOG_DIR"), constants.DefaultServiceName, os.Getenv("LOG_LEVEL"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Close()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	ctx := context.Background()

	app, err := bootstrap.NewApp(ctx, cfg, log)
	if err != nil {
		log.Fatalf("failed to start: %v", err)
	}

	server := srv.NewServer(srv.DefaultServerConfig(cfg.HTTPPort), app.Handler())

	if err := srv.Run(ctx, server, log, constants.DefaultServiceName, app.ShutdownHooks()...); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
