package models

import "time"

type ActionType string

const (
	ActionStart             ActionType = "start"
	ActionCheckSubscription ActionType = "check_subscription"
	ActionAdminPanel        ActionType = "admin_panel"
)

// ActionEvent is an append-only audit record of a user action.
type ActionEvent struct {
	ID     uint  `gorm:"primaryKey;autoIncrement"`
	UserID int64 `gorm:"index"`
	Action ActionType

	CreatedAt time.Time `gorm:"autoCreateTime;index"`
}
