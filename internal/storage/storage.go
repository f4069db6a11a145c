package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/kalitka-bot/kalitka/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Storage struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Storage {
	return &Storage{db: db}
}

func (s *Storage) Migrate() error {
	if err := s.db.AutoMigrate(&models.User{}, &models.ActionEvent{}); err != nil {
		return fmt.Errorf("migrating database: %w", err)
	}
	return nil
}

func (s *Storage) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("getting sql db: %w", err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return fmt.Errorf("pinging database: %w", err)
	}
	return nil
}

func (s *Storage) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("getting sql db: %w", err)
	}
	return sqlDB.Close()
}

// UpsertUser creates the user row or refreshes its profile fields.
// JoinedAt is written only on the initial insert.
func (s *Storage) UpsertUser(ctx context.Context, user *models.User) error {
	if err := s.db.
		WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "telegram_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"username",
				"first_name",
				"last_name",
				"language_code",
				"last_activity",
			}),
		}).
		Create(user).
		Error; err != nil {
		return fmt.Errorf("upserting user: %w", err)
	}
	return nil
}

func (s *Storage) GetUser(ctx context.Context, telegramID int64) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Where("telegram_id = ?", telegramID).First(&user).Error; err != nil {
		return nil, fmt.Errorf("getting user: %w", err)
	}
	return &user, nil
}

func (s *Storage) TouchActivity(ctx context.Context, telegramID int64) error {
	if err := s.db.
		WithContext(ctx).
		Model(&models.User{}).
		Where("telegram_id = ?", telegramID).
		Update("last_activity", time.Now()).
		Error; err != nil {
		return fmt.Errorf("touching activity: %w", err)
	}
	return nil
}

func (s *Storage) AppendAction(ctx context.Context, telegramID int64, action models.ActionType) error {
	event := &models.ActionEvent{
		UserID: telegramID,
		Action: action,
	}
	if err := s.db.WithContext(ctx).Create(event).Error; err != nil {
		return fmt.Errorf("appending action: %w", err)
	}
	return nil
}

func (s *Storage) SetSubscribed(ctx context.Context, telegramID int64, subscribed bool) error {
	if err := s.db.
		WithContext(ctx).
		Model(&models.User{}).
		Where("telegram_id = ?", telegramID).
		Update("is_subscribed", subscribed).
		Error; err != nil {
		return fmt.Errorf("setting subscribed: %w", err)
	}
	return nil
}

func (s *Storage) Stats(ctx context.Context) (*models.Stats, error) {
	stats := &models.Stats{}

	if err := s.db.
		WithContext(ctx).
		Model(&models.User{}).
		Count(&stats.TotalUsers).
		Error; err != nil {
		return nil, fmt.Errorf("counting users: %w", err)
	}
	if err := s.db.
		WithContext(ctx).
		Model(&models.User{}).
		Where("is_subscribed = ?", true).
		Count(&stats.SubscribedUsers).
		Error; err != nil {
		return nil, fmt.Errorf("counting subscribed: %w", err)
	}

	var err error
	if stats.ActiveToday, err = s.CountActiveSince(ctx, time.Now().Add(-24*time.Hour)); err != nil {
		return nil, err
	}
	if stats.ActiveWeek, err = s.CountActiveSince(ctx, time.Now().AddDate(0, 0, -7)); err != nil {
		return nil, err
	}
	if stats.ActiveMonth, err = s.CountActiveSince(ctx, time.Now().AddDate(0, 0, -30)); err != nil {
		return nil, err
	}

	return stats, nil
}

func (s *Storage) CountActiveSince(ctx context.Context, since time.Time) (int64, error) {
	var count int64
	if err := s.db.
		WithContext(ctx).
		Model(&models.User{}).
		Where("last_activity > ?", since).
		Count(&count).
		Error; err != nil {
		return 0, fmt.Errorf("counting active users: %w", err)
	}
	return count, nil
}

// ListRecentUsers returns users ordered by last activity, most recent first.
func (s *Storage) ListRecentUsers(ctx context.Context, limit int) ([]*models.User, error) {
	var users []*models.User
	if err := s.db.
		WithContext(ctx).
		Order("last_activity DESC").
		Limit(limit).
		Find(&users).
		Error; err != nil {
		return nil, fmt.Errorf("listing recent users: %w", err)
	}
	return users, nil
}

func (s *Storage) ListUserIDs(ctx context.Context) ([]int64, error) {
	var ids []int64
	if err := s.db.
		WithContext(ctx).
		Model(&models.User{}).
		Order("telegram_id").
		Pluck("telegram_id", &ids).
		Error; err != nil {
		return nil, fmt.Errorf("listing user ids: %w", err)
	}
	return ids, nil
}
