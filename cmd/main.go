package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"window-measure/config"
	telegram "window-measure/internal/api"
	"window-measure/internal/container"
	"window-measure/internal/infrastructure/logging"
	"window-measure/internal/infrastructure/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("Failed to load config: %v", err)
	}

	log, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		logrus.Fatalf("Failed to init logger: %v", err)
	}

	if cfg.TelegramToken == "" {
		log.Fatal("TELEGRAM_TOKEN is required")
	}

	// Создаём хранилище пользователей
	userRepo := storage.NewMemoryUserRepository()

	// Собираем сервисы приложения
	appContainer := container.New(cfg, userRepo, log)

	// Создаём бота
	bot, err := telegram.NewBot(cfg.TelegramToken, appContainer, log)
	if err != nil {
		log.WithError(err).Fatal("failed to create bot")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info("bot is running")
	if err := bot.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.WithError(err).Fatal("bot stopped")
	}
	log.Info("bot stopped")
}
