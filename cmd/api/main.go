package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/medassist/medchat/internal/config"
	"github.com/medassist/medchat/internal/handler"
	"github.com/medassist/medchat/internal/logger"
	"github.com/medassist/medchat/internal/model/assistant"
	"github.com/medassist/medchat/internal/server"
	"github.com/medassist/medchat/internal/service/chat"
	"github.com/medassist/medchat/internal/service/transport"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load .env file
	if err := godotenv.Load(); err != nil {
		logger.WarnCF("main", "failed to load .env file, continuing with system environment variables only", map[string]any{"error": err.Error()})
	}

	cfg, err := config.Load()
	if err != nil {
		logger.ErrorCF("main", "failed to load configuration", map[string]any{"error": err.Error()})
		os.Exit(1)
	}
	logger.Init(cfg.LogLevel, os.Stderr)

	profile := assistant.Seed(cfg.App.Name, cfg.App.Description, cfg.App.MaxMessageLength)
	client := transport.NewClient(cfg.Client)
	chatService := chat.NewService(client, profile)

	logger.InfoCF("main", "inference endpoint configured", map[string]any{
		"url":     client.URL(),
		"timeout": cfg.Client.Timeout.String(),
	})

	router, err := handler.NewRouter(chatService, cfg.Server)
	if err != nil {
		logger.ErrorCF("main", "failed to build router", map[string]any{"error": err.Error()})
		os.Exit(1)
	}

	go chatService.RunJanitor(ctx, time.Minute, cfg.App.SessionIdleTTL)

	logger.InfoCF("main", "medchat web server listening", map[string]any{"addr": cfg.Server.Addr})
	if err := server.Run(ctx, server.New(cfg.Server.Addr, router)); err != nil {
		logger.ErrorCF("main", "server error", map[string]any{"error": err.Error()})
		os.Exit(1)
	}
}
