package models

import (
	"os"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// User is a person reference row. Assets point at users for prepared_by and
// approved_by, audit entries point at users for changed_by. The password
// hash only backs the external login flow; the core never checks it.
type User struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	Username     string    `json:"username" gorm:"uniqueIndex;not null"`
	FullName     string    `json:"full_name" gorm:"not null"`
	Email        string    `json:"email" gorm:"default:''"`
	PasswordHash string    `json:"-" gorm:"default:''"`
	Role         string    `json:"role" gorm:"default:'user'"`
	CreatedAt    time.Time `json:"created_at"`
}

// InitDB opens the database connection
func InitDB() (*gorm.DB, error) {
	// DATABASE_URL selects PostgreSQL for production
	databaseURL := os.Getenv("DATABASE_URL")

	if databaseURL != "" {
		db, err := gorm.Open(postgres.Open(databaseURL), &gorm.Config{})
		if err != nil {
			return nil, err
		}
		return db, nil
	}

	// SQLite for development
	db, err := gorm.Open(sqlite.Open("assettrack.db"), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	return db, nil
}

// BeforeCreate sets the creation timestamp
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now()
	}
	return nil
}
