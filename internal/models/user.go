package models

import "time"

// User is one chat-platform identity that has ever issued /start.
// TelegramID is assigned by the platform and never changes.
type User struct {
	TelegramID   int64  `gorm:"primaryKey"`
	Username     string `gorm:"index"`
	FirstName    string
	LastName     string
	LanguageCode string

	JoinedAt     time.Time `gorm:"autoCreateTime"`
	LastActivity time.Time `gorm:"index"`
	IsSubscribed bool      `gorm:"default:false"`
}

func (u *User) DisplayName() string {
	if u.Username != "" {
		return "@" + u.Username
	}
	if u.LastName != "" {
		return u.FirstName + " " + u.LastName
	}
	return u.FirstName
}
