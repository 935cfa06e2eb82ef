// Package main contains the entrypoint for the ConstruFácil backend.
package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/edgard/construfacil/internal/config"
	"github.com/edgard/construfacil/internal/database"
	"github.com/edgard/construfacil/internal/gemini"
	"github.com/edgard/construfacil/internal/logger"
	"github.com/edgard/construfacil/internal/realtime"
	"github.com/edgard/construfacil/internal/server"
	"github.com/edgard/construfacil/internal/server/handlers"
	"github.com/edgard/construfacil/internal/server/tasks"
	"github.com/edgard/construfacil/internal/store"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	exitCode := run(ctx)
	stop()
	os.Exit(exitCode)
}

// run wires config, logger, stores, the Gemini gateway, the realtime hub and
// the scheduler, serves until ctx is cancelled and returns the exit code.
func run(ctx context.Context) int {
	configPath := flag.String("config", "./config.yaml", "Path to configuration file")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		slog.Error("Failed to load configuration", "path", *configPath, "error", err)
		return 1
	}

	log := logger.NewLogger(cfg.Logger.Level, cfg.Logger.JSON)
	slog.SetDefault(log)
	log.Info("Logger initialized", "level", cfg.Logger.Level, "json", cfg.Logger.JSON)

	if cfg.Logger.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	chat := store.NewChatHistory(store.ChatOptions{
		Limit:             cfg.Chat.HistoryLimit,
		TTL:               cfg.Chat.TTL,
		DefaultNickname:   cfg.Chat.DefaultNickname,
		AvatarURLTemplate: cfg.Chat.AvatarURLTemplate,
	})

	tDeps := tasks.TaskDeps{Logger: log, Chat: chat}
	var directory store.Directory
	if cfg.Database.Path != "" {
		db, err := database.NewDB(cfg.Database.Path)
		if err != nil {
			log.Error("Failed to connect to database", "path", cfg.Database.Path, "error", err)
			return 1
		}
		defer database.CloseDB(db)

		sqlDir := database.NewDirectory(db, cfg.Directory.TTL, nil, log)
		directory = sqlDir
		tDeps.Maintainer = sqlDir
		log.Info("Professional directory backed by SQLite", "path", cfg.Database.Path)
	} else {
		directory = store.NewMemoryDirectory(cfg.Directory.TTL, nil)
		log.Info("Professional directory kept in memory")
	}
	tDeps.Directory = directory

	gateway, err := gemini.NewClient(ctx, cfg.Gemini, log)
	if err != nil {
		log.Error("Failed to initialize Gemini client", "error", err)
		return 1
	}

	hub := realtime.NewHub(chat.SnapshotSeq, log)
	hDeps := handlers.HandlerDeps{
		Logger:      log,
		Config:      cfg,
		Completer:   gateway,
		Directory:   directory,
		Chat:        chat,
		Hub:         hub,
		Broadcaster: realtime.NewBroadcaster(chat, hub),
	}

	sched, err := server.NewScheduler(log, &cfg.Scheduler, tasks.RegisterAllTasks(tDeps))
	if err != nil {
		log.Error("Failed to create scheduler", "error", err)
		return 1
	}

	srv := server.NewServer(log, cfg, server.NewRouter(hDeps), hub, sched)

	runErr := srv.Run(ctx)
	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		log.Error("Server stopped due to error", "error", runErr)
		time.Sleep(time.Second)
		return 1
	}

	log.Info("Server stopped gracefully")
	return 0
}
