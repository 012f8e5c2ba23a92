package models

import (
	"time"

	"gorm.io/gorm"

	"fintrack/internal/uuid"
)

// Base is the header of soft-deletable rows: users, transactions and audit entries.
type Base struct {
	ID        string         `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (b *Base) BeforeCreate(*gorm.DB) error {
	assignID(&b.ID)
	return nil
}

// Record is the header of rows that are deleted outright. Budgets and plans are
// unique per period, so a soft-deleted row would block re-creation.
type Record struct {
	ID        string    `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (r *Record) BeforeCreate(*gorm.DB) error {
	assignID(&r.ID)
	return nil
}

// assignID gives a new row a time-ordered UUIDv7 unless the caller set one.
func assignID(id *string) {
	if *id == "" {
		*id = uuid.New()
	}
}
