package database

import (
	"log"
	"os"
	"path/filepath"
	"time"

	"cloudtouch-gate/internal/model"

	"github.com/glebarez/sqlite"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Open connects the SQLite database holding admin accounts, operation
// and login logs, and (in sqlite store mode) the key-value entries. The
// handle is constructed once here and passed to everything that needs
// it; there is no package-level singleton.
func Open(dataDir string) (*gorm.DB, error) {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, err
	}

	db, err := gorm.Open(sqlite.Open(filepath.Join(dataDir, "gate.db")), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	if err := db.AutoMigrate(&model.AdminUser{}, &model.OperationLog{}, &model.LoginLog{}); err != nil {
		return nil, err
	}

	if err := seedAdmin(db); err != nil {
		return nil, err
	}
	return db, nil
}

// seedAdmin creates the default admin account on first start.
func seedAdmin(db *gorm.DB) error {
	var count int64
	db.Model(&model.AdminUser{}).Where("username = ?", "admin").Count(&count)
	if count > 0 {
		return nil
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte("admin"), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	admin := &model.AdminUser{
		Username:  "admin",
		Password:  string(hashed),
		Email:     "admin@example.com",
		Role:      "admin",
		Status:    "active",
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	if err := db.Create(admin).Error; err != nil {
		return err
	}

	log.Println("created default admin account")
	return nil
}
