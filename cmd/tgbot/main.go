package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/Alias1177/Lucent/config"
	"github.com/Alias1177/Lucent/internal/app"
	"github.com/Alias1177/Lucent/internal/bot"
	"github.com/Alias1177/Lucent/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

func main() {
	cfg, err := config.Load()
	logger := app.SetupLogger(os.Getenv("LOG_LEVEL"), os.Stderr)
	if err != nil {
		logger.Fatal().Err(err).Msg("Invalid configuration")
	}
	if cfg.TelegramToken == "" {
		logger.Fatal().Msg("TELEGRAM_BOT_TOKEN not set in environment")
	}

	var journal models.LookupJournal
	db, err := app.OpenJournal(cfg)
	if err != nil {
		logger.Error().Err(err).Msg("Lookup journal unavailable, continuing without it")
	} else if db != nil {
		defer db.Close()
		journal = db
	}

	api, err := tgbotapi.NewBotAPI(cfg.TelegramToken)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialize Telegram bot")
	}
	logger.Info().Str("username", api.Self.UserName).Str("api_base", cfg.APIBase).Msg("Authorized on Telegram")

	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = 60
	updates := api.GetUpdatesChan(updateConfig)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		<-ctx.Done()
		api.StopReceivingUpdates()
	}()

	bot.New(api, app.NewPredictionClient(cfg), journal).Run(ctx, updates)
	logger.Info().Msg("Bot stopped")
}
