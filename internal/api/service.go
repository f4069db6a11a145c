package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/kalitka-bot/kalitka/internal/config"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v4"
)

const secretTokenHeader = "X-Telegram-Bot-Api-Secret-Token"

type UpdateProcessor interface {
	ProcessUpdate(u telebot.Update)
}

type Pinger interface {
	Ping(ctx context.Context) error
}

// Service is the HTTP boundary: the webhook ingress plus liveness
// endpoints. Deserialization failures are answered here and never reach
// the dispatcher.
type Service struct {
	config  *config.Config
	storage Pinger
	bot     UpdateProcessor
	secret  string
}

func NewService(cfg *config.Config, storage Pinger, bot UpdateProcessor, secret string) *Service {
	return &Service{
		config:  cfg,
		storage: storage,
		bot:     bot,
		secret:  secret,
	}
}

func (s *Service) Register(e *echo.Echo) {
	e.GET("/", s.HandleRoot())
	e.GET("/healthz", s.HandleHealth())
	e.POST("/webhook/:token", s.HandleWebhook())
}

func (s *Service) HandleRoot() echo.HandlerFunc {
	return func(c echo.Context) error {
		return c.String(http.StatusOK, "kalitka is running")
	}
}

func (s *Service) HandleHealth() echo.HandlerFunc {
	return func(c echo.Context) error {
		if err := s.storage.Ping(c.Request().Context()); err != nil {
			logrus.Errorf("health check: database unreachable: %v", err)
			return c.JSON(http.StatusServiceUnavailable, echo.Map{
				"status":   "degraded",
				"database": "unreachable",
			})
		}
		return c.JSON(http.StatusOK, echo.Map{
			"status":   "ok",
			"database": "ok",
		})
	}
}

func (s *Service) HandleWebhook() echo.HandlerFunc {
	return func(c echo.Context) error {
		if c.Param("token") != s.config.TelegramToken {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "not found"})
		}
		if c.Request().Header.Get(secretTokenHeader) != s.secret {
			logrus.Warn("webhook call with bad secret token")
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "bad secret token"})
		}

		var update telebot.Update
		if err := json.NewDecoder(c.Request().Body).Decode(&update); err != nil {
			logrus.Errorf("failed to decode update: %v", err)
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "malformed update"})
		}

		s.bot.ProcessUpdate(update)

		return c.JSON(http.StatusOK, echo.Map{"ok": true})
	}
}
