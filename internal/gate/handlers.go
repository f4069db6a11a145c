package gate

import (
	"context"

	"github.com/kalitka-bot/kalitka/internal/admin"
	"github.com/kalitka-bot/kalitka/internal/models"
	"gopkg.in/telebot.v4"
)

// HandleStart handles the /start command.
func (g *Gate) HandleStart(c telebot.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), g.config.BotHandleTimeout)
	defer cancel()

	uc := NewUpdateContext(ctx, c)
	if uc.Sender() == nil {
		return nil
	}

	uc.L().Infof("received /start")

	reply, err := g.Start(uc, profileFromSender(uc.Sender()))
	if err != nil {
		uc.L().Errorf("failed to handle start: %v", err)
		return c.Send(genericErrorText)
	}

	return send(c, reply)
}

// HandleCallback parses the callback data once and routes to exactly
// one of the known actions; unknown data is acknowledged and dropped.
func (g *Gate) HandleCallback(c telebot.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), g.config.BotHandleTimeout)
	defer cancel()

	uc := NewUpdateContext(ctx, c)
	if c.Callback() == nil || uc.Sender() == nil {
		return nil
	}

	action, ok := ParseAction(c.Callback().Data)
	if !ok {
		uc.L().Warnf("ignoring unknown callback data %q", c.Callback().Data)
		return c.Respond(&telebot.CallbackResponse{})
	}

	uc.L().Infof("received callback action %s", action)

	if action.Admin() {
		return g.handleAdminAction(uc, action)
	}

	reply := g.CheckSubscription(uc, uc.Sender().ID)
	if err := send(c, reply); err != nil {
		uc.L().Errorf("failed to send check reply: %v", err)
	}
	return c.Respond(&telebot.CallbackResponse{Text: reply.CallbackNote})
}

// HandleAdmin handles the /admin command.
func (g *Gate) HandleAdmin(c telebot.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), g.config.BotHandleTimeout)
	defer cancel()

	uc := NewUpdateContext(ctx, c)
	if uc.Sender() == nil {
		return nil
	}

	if !g.console.Authorized(uc.Sender().ID) {
		uc.L().Warnf("unauthorized /admin attempt")
		return c.Send(admin.AccessDeniedText)
	}

	if err := g.storage.AppendAction(uc, uc.Sender().ID, models.ActionAdminPanel); err != nil {
		uc.L().Errorf("failed to append admin action: %v", err)
	}

	text, err := g.console.MenuText(uc)
	if err != nil {
		uc.L().Errorf("failed to render admin menu: %v", err)
		return c.Send(genericErrorText)
	}

	return c.Send(text, adminMenuMarkup())
}

// HandleText routes an admin's pending broadcast draft; any other text
// only refreshes the sender's activity stamp.
func (g *Gate) HandleText(c telebot.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), g.config.BotHandleTimeout)
	defer cancel()

	uc := NewUpdateContext(ctx, c)
	if uc.Sender() == nil || c.Message() == nil {
		return nil
	}

	if g.console.TakeBroadcast(uc.Sender().ID) {
		return g.runBroadcast(uc)
	}

	if err := g.storage.TouchActivity(uc, uc.Sender().ID); err != nil {
		uc.L().Errorf("failed to touch activity: %v", err)
	}
	return nil
}

func (g *Gate) runBroadcast(uc *UpdateContext) error {
	c := uc.TC()

	uc.L().Infof("starting broadcast")
	sent, failed, err := g.console.Broadcast(uc, uc.Sender().ID, c.Message())
	if err != nil {
		uc.L().Errorf("broadcast failed: %v", err)
		return c.Send(genericErrorText)
	}

	uc.L().Infof("broadcast finished: sent=%d, failed=%d", sent, failed)
	return c.Send(admin.SummaryText(sent, failed))
}

func (g *Gate) handleAdminAction(uc *UpdateContext, action Action) error {
	c := uc.TC()

	if !g.console.Authorized(uc.Sender().ID) {
		uc.L().Warnf("unauthorized admin action %s", action)
		return c.Respond(&telebot.CallbackResponse{Text: admin.AccessDeniedText})
	}

	switch action {
	case ActionAdminStats, ActionAdminBack:
		text, err := g.console.MenuText(uc)
		if err != nil {
			uc.L().Errorf("failed to render admin menu: %v", err)
			return c.Respond(&telebot.CallbackResponse{Text: checkErrorNote})
		}
		if err := c.Edit(text, adminMenuMarkup()); err != nil {
			uc.L().Warnf("failed to edit admin menu: %v", err)
		}

	case ActionAdminUsers:
		text, err := g.console.UsersText(uc)
		if err != nil {
			uc.L().Errorf("failed to render user list: %v", err)
			return c.Respond(&telebot.CallbackResponse{Text: checkErrorNote})
		}
		if err := c.Edit(text, adminBackMarkup()); err != nil {
			uc.L().Warnf("failed to edit user list: %v", err)
		}

	case ActionAdminBroadcast:
		prompt, ok := g.console.BeginBroadcast(uc.Sender().ID)
		if !ok {
			return c.Respond(&telebot.CallbackResponse{Text: admin.AccessDeniedText})
		}
		if err := c.Send(prompt); err != nil {
			uc.L().Errorf("failed to send broadcast prompt: %v", err)
		}
	}

	return c.Respond(&telebot.CallbackResponse{})
}

func profileFromSender(sender *telebot.User) Profile {
	return Profile{
		ID:           sender.ID,
		Username:     sender.Username,
		FirstName:    sender.FirstName,
		LastName:     sender.LastName,
		LanguageCode: sender.LanguageCode,
	}
}

func send(c telebot.Context, reply *Reply) error {
	if reply.Markup != nil {
		return c.Send(reply.Text, reply.Markup)
	}
	return c.Send(reply.Text)
}

func adminMenuMarkup() *telebot.ReplyMarkup {
	markup := &telebot.ReplyMarkup{}
	markup.Inline(
		markup.Row(markup.Data("📣 Рассылка", ActionAdminBroadcast.String())),
		markup.Row(markup.Data("👥 Пользователи", ActionAdminUsers.String())),
		markup.Row(markup.Data("🔄 Обновить", ActionAdminStats.String())),
	)
	return markup
}

func adminBackMarkup() *telebot.ReplyMarkup {
	markup := &telebot.ReplyMarkup{}
	markup.Inline(markup.Row(markup.Data("⬅️ Назад", ActionAdminBack.String())))
	return markup
}
