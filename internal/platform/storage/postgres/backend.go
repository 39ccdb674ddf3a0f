package postgres

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Apurer/adoptionos/internal/platform/storage/ports"
)

// DefaultSessionTTL is how long an untouched session-scope entry survives before purging.
const DefaultSessionTTL = 24 * time.Hour

// Backend persists portal storage in PostgreSQL. A positive TTL marks rows as expiring
// (session scope); a zero TTL keeps rows until deleted (durable scope).
type Backend struct {
	db  *gorm.DB
	ttl time.Duration
	now func() time.Time
}

// NewBackend wires a PostgreSQL-backed storage backend. Caller owns DB lifecycle.
func NewBackend(db *gorm.DB, ttl time.Duration) *Backend {
	if ttl < 0 {
		ttl = DefaultSessionTTL
	}
	return &Backend{db: db, ttl: ttl, now: time.Now}
}

// WithClock overrides the time source for deterministic testing.
func (b *Backend) WithClock(now func() time.Time) {
	if now != nil {
		b.now = now
	}
}

type entryRecord struct {
	Key       string     `gorm:"primaryKey;column:key;size:512"`
	Value     string     `gorm:"column:value;type:text"`
	ExpiresAt *time.Time `gorm:"column:expires_at;index"`
	CreatedAt time.Time  `gorm:"column:created_at"`
	UpdatedAt time.Time  `gorm:"column:updated_at;index"`
}

func (entryRecord) TableName() string { return "portal_storage" }

func (b *Backend) Get(ctx context.Context, key string) (string, bool, error) {
	if err := b.ensureDB(); err != nil {
		return "", false, err
	}
	var rec entryRecord
	err := b.db.WithContext(ctx).
		Where("key = ? AND (expires_at IS NULL OR expires_at > ?)", key, b.now()).
		Take(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return rec.Value, true, nil
}

// Set upserts the value and slides the expiry window forward.
func (b *Backend) Set(ctx context.Context, key, value string) error {
	if err := b.ensureDB(); err != nil {
		return err
	}
	if strings.TrimSpace(key) == "" {
		return errors.New("storage key is required")
	}
	rec := entryRecord{Key: key, Value: value}
	if b.ttl > 0 {
		expiry := b.now().Add(b.ttl)
		rec.ExpiresAt = &expiry
	}
	return b.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "key"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "expires_at", "updated_at"}),
		}).
		Create(&rec).Error
}

func (b *Backend) Delete(ctx context.Context, key string) error {
	if err := b.ensureDB(); err != nil {
		return err
	}
	return b.db.WithContext(ctx).Delete(&entryRecord{}, "key = ?", key).Error
}

func (b *Backend) Clear(ctx context.Context, prefix string) error {
	if err := b.ensureDB(); err != nil {
		return err
	}
	if prefix == "" {
		return b.db.WithContext(ctx).Where("1 = 1").Delete(&entryRecord{}).Error
	}
	return b.db.WithContext(ctx).
		Where("left(key, ?) = ?", utf8.RuneCountInString(prefix), prefix).
		Delete(&entryRecord{}).Error
}

// PurgeExpired removes every expired entry and reports how many rows went away.
func (b *Backend) PurgeExpired(ctx context.Context) (int64, error) {
	if err := b.ensureDB(); err != nil {
		return 0, err
	}
	res := b.db.WithContext(ctx).Where("expires_at IS NOT NULL AND expires_at <= ?", b.now()).Delete(&entryRecord{})
	return res.RowsAffected, res.Error
}

func (b *Backend) ensureDB() error {
	if b == nil || b.db == nil {
		return ports.ErrUnavailable
	}
	return nil
}

var _ ports.Backend = (*Backend)(nil)
