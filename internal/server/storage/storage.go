// Package storage holds the sync server's database models and connection
// handling.
package storage

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// User is an account able to sign in against the token endpoint.
type User struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Email        string    `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string    `gorm:"not null" json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// Category mirrors the client's category shape, keyed by a server uuid.
type Category struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name       string    `gorm:"not null" json:"name"`
	Icon       string    `json:"icon"`
	UserID     uuid.UUID `gorm:"type:uuid;index;not null" json:"user_id"`
	OrderIndex int       `json:"order_index"`
}

// Item mirrors the client's item shape. Metadata keeps the raw external
// search payload an item was created from, when any. Deleting a category
// cascades to its items at the database level; the client never asks for
// that cascade explicitly.
type Item struct {
	ID          uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	Title       string         `gorm:"not null" json:"title"`
	CategoryID  uuid.UUID      `gorm:"type:uuid;index" json:"category_id"`
	Category    *Category      `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Rating      int            `json:"rating"`
	ImageURL    string         `json:"image_url,omitempty"`
	Description string         `json:"description,omitempty"`
	UserID      uuid.UUID      `gorm:"type:uuid;index;not null" json:"user_id"`
	Metadata    datatypes.JSON `json:"metadata,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
}

func (User) TableName() string     { return "users" }
func (Category) TableName() string { return "categories" }
func (Item) TableName() string     { return "items" }

// BeforeCreate assigns ids client-side of the database, so no pgcrypto
// extension is required.
func (u *User) BeforeCreate(*gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

func (c *Category) BeforeCreate(*gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

func (i *Item) BeforeCreate(*gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

// Open connects to Postgres and migrates the schema.
func Open(dsn string, debug bool) (*gorm.DB, error) {
	logLevel := logger.Warn
	if debug {
		logLevel = logger.Info
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.AutoMigrate(&User{}, &Category{}, &Item{}); err != nil {
		return nil, fmt.Errorf("failed to migrate schema: %w", err)
	}

	return db, nil
}
