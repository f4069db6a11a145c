package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/kalitka-bot/kalitka/internal/admin"
	"github.com/kalitka-bot/kalitka/internal/api"
	"github.com/kalitka-bot/kalitka/internal/config"
	"github.com/kalitka-bot/kalitka/internal/gate"
	"github.com/kalitka-bot/kalitka/internal/logging"
	"github.com/kalitka-bot/kalitka/internal/membership"
	"github.com/kalitka-bot/kalitka/internal/storage"
	"github.com/kalitka-bot/kalitka/internal/webhookutil"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v4"
)

func main() {
	config.SetupCommon()
	logging.Init()

	cfg := config.New()
	logrus.Debugf("config: %+v", cfg)

	db, err := storage.Open(cfg.DatabaseDSN)
	if err != nil {
		logrus.Fatalf("Failed to connect to database: %v", err)
	}

	store := storage.New(db)
	if err := store.Migrate(); err != nil {
		logrus.Fatalf("Failed to migrate database: %v", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			logrus.Errorf("failed to close database: %v", err)
		}
	}()

	bot, err := telebot.NewBot(telebot.Settings{
		Token: cfg.TelegramToken,
		OnError: func(err error, c telebot.Context) {
			logrus.Errorf("unhandled bot error: %v", err)
		},
	})
	if err != nil {
		logrus.Fatalf("Failed to create bot: %v", err)
	}

	oracle := membership.NewOracle(cfg.TelegramToken)
	console := admin.NewConsole(cfg, store, bot)
	g := gate.New(cfg, store, oracle, console)

	bot.Handle("/start", g.HandleStart)
	bot.Handle("/admin", g.HandleAdmin)
	bot.Handle(telebot.OnCallback, g.HandleCallback)
	bot.Handle(telebot.OnText, g.HandleText)

	secret := webhookutil.SecretToken(cfg.WebhookSecret)
	service := api.NewService(cfg, store, bot, secret)

	e := echo.New()
	e.HideBanner = true
	service.Register(e)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer cancel()

	client := webhookutil.NewClient(cfg.TelegramToken)

	registerCtx, registerCancel := context.WithTimeout(ctx, 10*time.Second)
	defer registerCancel()

	if err := webhookutil.Register(registerCtx, client, cfg.WebhookBaseURL, cfg.TelegramToken, secret); err != nil {
		logrus.Fatalf("Failed to register webhook: %v", err)
	}

	go func() {
		if err := e.Start(cfg.ListenAddress); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.Errorf("http server stopped: %v", err)
		}
	}()

	<-ctx.Done()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := webhookutil.Unregister(shutdownCtx, client); err != nil {
		logrus.Errorf("failed to unregister webhook: %v", err)
	}
	if err := e.Shutdown(shutdownCtx); err != nil {
		logrus.Errorf("failed to shut down http server: %v", err)
	}

	logrus.Info("shutdown complete")
}
