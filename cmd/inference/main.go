package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/medassist/medchat/internal/config"
	"github.com/medassist/medchat/internal/handler"
	"github.com/medassist/medchat/internal/logger"
	"github.com/medassist/medchat/internal/server"
	"github.com/medassist/medchat/internal/service/ai"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := godotenv.Load(); err != nil {
		logger.WarnCF("main", "failed to load .env file, continuing with system environment variables only", map[string]any{"error": err.Error()})
	}

	cfg, err := config.Load()
	if err != nil {
		logger.ErrorCF("main", "failed to load configuration", map[string]any{"error": err.Error()})
		os.Exit(1)
	}
	logger.Init(cfg.LogLevel, os.Stderr)

	var aiService *ai.Service
	if cfg.AI.Enabled() {
		aiService, err = ai.NewService(ctx, cfg.AI)
		if err != nil {
			logger.WarnCF("main", "failed to initialize AI service, chat endpoints will answer 503 - 请检查 Ark 模型相关环境变量", map[string]any{"error": err.Error()})
			aiService = nil
		} else {
			logger.InfoCF("main", "AI service initialized successfully", map[string]any{"model": cfg.AI.Model})
		}
	} else {
		logger.WarnCF("main", "Ark 凭证未配置，问答接口将返回 503", nil)
	}

	router := handler.NewInferenceRouter(aiService, cfg.AI.Version, cfg.Inference)

	logger.InfoCF("main", "medchat inference backend listening", map[string]any{"addr": cfg.Inference.Addr})
	if err := server.Run(ctx, server.New(cfg.Inference.Addr, router)); err != nil {
		logger.ErrorCF("main", "server error", map[string]any{"error": err.Error()})
		os.Exit(1)
	}
}
