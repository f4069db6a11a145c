package admin

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/kalitka-bot/kalitka/internal/config"
	"github.com/kalitka-bot/kalitka/internal/models"
	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v4"
)

const (
	AccessDeniedText    = "⛔ Доступ запрещён"
	BroadcastPromptText = "📣 Отправь сообщение для рассылки. Оно будет скопировано всем пользователям."

	listLimit = 20

	// Stay well below Telegram's 4096-character message limit.
	maxListLength = 3500

	sessionTTL = 10 * time.Minute

	activityFormat = "02.01.2006 15:04"
)

type Store interface {
	Stats(ctx context.Context) (*models.Stats, error)
	ListRecentUsers(ctx context.Context, limit int) ([]*models.User, error)
	ListUserIDs(ctx context.Context) ([]int64, error)
}

type Copier interface {
	Copy(to telebot.Recipient, msg telebot.Editable, opts ...interface{}) (*telebot.Message, error)
}

// Console implements the admin-only operations: stats, the user
// listing and the two-step broadcast. Every operation checks the
// allow-list before doing anything else.
type Console struct {
	config   *config.Config
	storage  Store
	copier   Copier
	sessions *sessionStore
}

func NewConsole(cfg *config.Config, storage Store, copier Copier) *Console {
	return &Console{
		config:   cfg,
		storage:  storage,
		copier:   copier,
		sessions: newSessionStore(sessionTTL),
	}
}

func (c *Console) Authorized(id int64) bool {
	return c.config.IsAdmin(id)
}

// MenuText renders the root menu; stats are recomputed on every call.
func (c *Console) MenuText(ctx context.Context) (string, error) {
	stats, err := c.storage.Stats(ctx)
	if err != nil {
		return "", fmt.Errorf("querying stats: %w", err)
	}

	return fmt.Sprintf(
		"📊 Статистика\n\n"+
			"Всего пользователей: %d\n"+
			"Подписаны на канал: %d\n"+
			"Активны за 24 часа: %d\n"+
			"Активны за 7 дней: %d\n"+
			"Активны за 30 дней: %d",
		stats.TotalUsers,
		stats.SubscribedUsers,
		stats.ActiveToday,
		stats.ActiveWeek,
		stats.ActiveMonth,
	), nil
}

// UsersText renders the most recently active users, truncating before
// the output would exceed the outbound message limit.
func (c *Console) UsersText(ctx context.Context) (string, error) {
	users, err := c.storage.ListRecentUsers(ctx, listLimit)
	if err != nil {
		return "", fmt.Errorf("listing users: %w", err)
	}

	var b strings.Builder
	b.WriteString("👥 Последние пользователи:")
	for _, user := range users {
		mark := "▫️"
		if user.IsSubscribed {
			mark = "✅"
		}
		line := fmt.Sprintf(
			"\n%s %s (%d) — %s",
			mark,
			user.DisplayName(),
			user.TelegramID,
			user.LastActivity.Format(activityFormat),
		)
		if b.Len()+len(line) > maxListLength {
			b.WriteString("\n…")
			break
		}
		b.WriteString(line)
	}

	return b.String(), nil
}

// BeginBroadcast opens a broadcast session for the admin and returns
// the prompt to show. The next text message from the admin while the
// session is live becomes the broadcast draft.
func (c *Console) BeginBroadcast(adminID int64) (string, bool) {
	if !c.Authorized(adminID) {
		return "", false
	}
	c.sessions.begin(adminID)
	return BroadcastPromptText, true
}

// TakeBroadcast consumes the admin's broadcast session if it is still
// live.
func (c *Console) TakeBroadcast(adminID int64) bool {
	return c.sessions.take(adminID)
}

// Broadcast copies the draft message to every known user. A failed
// delivery is counted and does not stop the fan-out.
func (c *Console) Broadcast(ctx context.Context, adminID int64, msg telebot.Editable) (sent, failed int, err error) {
	if !c.Authorized(adminID) {
		return 0, 0, fmt.Errorf("user %d is not an administrator", adminID)
	}

	ids, err := c.storage.ListUserIDs(ctx)
	if err != nil {
		return 0, 0, fmt.Errorf("listing users: %w", err)
	}

	for _, id := range ids {
		if _, err := c.copier.Copy(telebot.ChatID(id), msg); err != nil {
			logrus.WithField("user_id", id).Warnf("failed to copy broadcast message: %v", err)
			failed++
			continue
		}
		sent++
	}

	return sent, failed, nil
}

func SummaryText(sent, failed int) string {
	return fmt.Sprintf("Рассылка завершена: ✅ %d, ❌ %d", sent, failed)
}
