package gate

import (
	"context"
	"fmt"
	"time"

	"github.com/kalitka-bot/kalitka/internal/admin"
	"github.com/kalitka-bot/kalitka/internal/config"
	"github.com/kalitka-bot/kalitka/internal/membership"
	"github.com/kalitka-bot/kalitka/internal/models"
	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v4"
)

const (
	greetingText     = "👋 Привет! Чтобы получить файл, пожалуйста, подпишись на канал"
	rewardTextFmt    = "🎉 Спасибо за подписку! Держи файл: %s"
	rejectText       = "😔 Упс. Кажется, ты не подписался на канал. Подпишись!"
	checkErrorText   = "😓 Ошибка проверки подписки. Попробуй позже."
	checkErrorNote   = "Ошибка"
	genericErrorText = "😓 Что-то пошло не так. Попробуй позже."

	subscribeButtonText = "Подписаться на канал 📢"
	checkButtonText     = "Проверить подписку ✅"
)

type Store interface {
	UpsertUser(ctx context.Context, user *models.User) error
	TouchActivity(ctx context.Context, telegramID int64) error
	AppendAction(ctx context.Context, telegramID int64, action models.ActionType) error
	SetSubscribed(ctx context.Context, telegramID int64, subscribed bool) error
}

type Oracle interface {
	Status(ctx context.Context, channelID string, userID int64) (membership.Status, error)
}

// Profile carries the sender identity attached to an inbound update.
type Profile struct {
	ID           int64
	Username     string
	FirstName    string
	LastName     string
	LanguageCode string
}

// Reply is the outbound half of a protocol step. CallbackNote, when
// set, is shown in the callback acknowledgment.
type Reply struct {
	Text         string
	Markup       *telebot.ReplyMarkup
	CallbackNote string
}

// Gate runs the subscription-gate protocol: it registers users on
// /start and decides reward vs. rejection from the live membership
// status on every check.
type Gate struct {
	config  *config.Config
	storage Store
	oracle  Oracle
	console *admin.Console
}

func New(cfg *config.Config, storage Store, oracle Oracle, console *admin.Console) *Gate {
	return &Gate{
		config:  cfg,
		storage: storage,
		oracle:  oracle,
		console: console,
	}
}

// Start registers the user (idempotently) and offers the subscribe and
// check actions.
func (g *Gate) Start(ctx context.Context, profile Profile) (*Reply, error) {
	user := &models.User{
		TelegramID:   profile.ID,
		Username:     profile.Username,
		FirstName:    profile.FirstName,
		LastName:     profile.LastName,
		LanguageCode: profile.LanguageCode,
		LastActivity: time.Now(),
	}
	if err := g.storage.UpsertUser(ctx, user); err != nil {
		return nil, fmt.Errorf("upserting user: %w", err)
	}

	if err := g.storage.AppendAction(ctx, profile.ID, models.ActionStart); err != nil {
		logrus.WithField("user_id", profile.ID).Errorf("failed to append start action: %v", err)
	}

	return &Reply{Text: greetingText, Markup: g.subscribeMarkup(true)}, nil
}

// CheckSubscription recomputes the verdict from the live oracle answer.
// The persisted flag is bookkeeping only and is never consulted here.
func (g *Gate) CheckSubscription(ctx context.Context, userID int64) *Reply {
	log := logrus.WithField("user_id", userID)

	if err := g.storage.TouchActivity(ctx, userID); err != nil {
		log.Errorf("failed to touch activity: %v", err)
	}
	if err := g.storage.AppendAction(ctx, userID, models.ActionCheckSubscription); err != nil {
		log.Errorf("failed to append check action: %v", err)
	}

	status, err := g.oracle.Status(ctx, g.config.ChannelID, userID)
	if err != nil {
		log.Errorf("failed to query membership status: %v", err)
		return &Reply{Text: checkErrorText, CallbackNote: checkErrorNote}
	}

	log.Infof("membership status: %s", status)

	if err := g.storage.SetSubscribed(ctx, userID, status.Subscribed()); err != nil {
		log.Errorf("failed to set subscribed flag: %v", err)
	}

	if !status.Subscribed() {
		return &Reply{Text: rejectText, Markup: g.subscribeMarkup(false)}
	}

	return &Reply{Text: fmt.Sprintf(rewardTextFmt, g.config.DocumentLink)}
}

func (g *Gate) subscribeMarkup(withCheck bool) *telebot.ReplyMarkup {
	markup := &telebot.ReplyMarkup{}
	subscribe := markup.URL(subscribeButtonText, g.config.ChannelLink)
	if !withCheck {
		markup.Inline(markup.Row(subscribe))
		return markup
	}

	check := markup.Data(checkButtonText, ActionCheckSubscription.String())
	markup.Inline(markup.Row(subscribe), markup.Row(check))
	return markup
}
