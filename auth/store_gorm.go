package auth

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SessionRecord is the sessions table row.
type SessionRecord struct {
	ID        string    `gorm:"primaryKey;size:64" json:"id"`
	UserID    uint      `gorm:"index;not null" json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
	LastSeen  time.Time `json:"last_seen"`
	ExpiresAt time.Time `gorm:"index" json:"expires_at"`
}

func (SessionRecord) TableName() string { return "sessions" }

// GormStore keeps sessions in the application database.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore { return &GormStore{db: db} }

func (s *GormStore) Save(ctx context.Context, sess Session) error {
	rec := SessionRecord{
		ID:        sess.ID,
		UserID:    sess.UserID,
		CreatedAt: sess.CreatedAt,
		LastSeen:  sess.LastSeen,
		ExpiresAt: sess.ExpiresAt,
	}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"last_seen", "expires_at"}),
	}).Create(&rec).Error
}

func (s *GormStore) Load(ctx context.Context, id string) (Session, error) {
	var rec SessionRecord
	if err := s.db.WithContext(ctx).First(&rec, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Session{}, ErrSessionNotFound
		}
		return Session{}, err
	}
	return Session{
		ID:        rec.ID,
		UserID:    rec.UserID,
		CreatedAt: rec.CreatedAt,
		LastSeen:  rec.LastSeen,
		ExpiresAt: rec.ExpiresAt,
	}, nil
}

func (s *GormStore) Delete(ctx context.Context, id string) error {
	return s.db.WithContext(ctx).Delete(&SessionRecord{}, "id = ?", id).Error
}

// DeleteExpired removes every session that expired before now.
func (s *GormStore) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	res := s.db.WithContext(ctx).Where("expires_at <= ?", now).Delete(&SessionRecord{})
	return res.RowsAffected, res.Error
}
