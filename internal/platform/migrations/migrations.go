package migrations

import (
	"time"

	"gorm.io/gorm"
)

// Run applies the portal storage schema.
func Run(db *gorm.DB) error {
	if db == nil {
		return nil
	}
	return db.AutoMigrate(&storageRecord{})
}

// storageRecord mirrors the postgres storage backend.
type storageRecord struct {
	Key       string     `gorm:"primaryKey;column:key;size:512"`
	Value     string     `gorm:"column:value;type:text"`
	ExpiresAt *time.Time `gorm:"column:expires_at;index"`
	CreatedAt time.Time  `gorm:"column:created_at"`
	UpdatedAt time.Time  `gorm:"column:updated_at;index"`
}

func (storageRecord) TableName() string { return "portal_storage" }
