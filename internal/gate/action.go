package gate

import (
	"strings"
)

// Action is the closed set of callback actions the bot understands.
type Action string

const (
	ActionCheckSubscription Action = "check_subscription"
	ActionAdminStats        Action = "admin_stats"
	ActionAdminBroadcast    Action = "admin_broadcast"
	ActionAdminUsers        Action = "admin_users"
	ActionAdminBack         Action = "admin_back"
)

func (a Action) String() string {
	return string(a)
}

// Admin reports whether the action belongs to the admin console.
func (a Action) Admin() bool {
	switch a {
	case ActionAdminStats, ActionAdminBroadcast, ActionAdminUsers, ActionAdminBack:
		return true
	default:
		return false
	}
}

// ParseAction resolves raw callback data to a known action. Buttons
// built by telebot carry a \f prefix and an optional |payload suffix.
func ParseAction(data string) (Action, bool) {
	data = strings.TrimPrefix(data, "\f")
	data, _, _ = strings.Cut(data, "|")

	switch a := Action(data); a {
	case ActionCheckSubscription, ActionAdminStats, ActionAdminBroadcast, ActionAdminUsers, ActionAdminBack:
		return a, true
	default:
		return "", false
	}
}
