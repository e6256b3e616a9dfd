package database

import (
	"cloudtouch-gate/internal/model"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

// OpenTest returns an in-memory database with the schema migrated.
// The pool is pinned to one connection so every caller keeps its own
// private database.
func OpenTest() *gorm.DB {
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	if err != nil {
		panic("failed to connect test database")
	}

	sqlDB, err := db.DB()
	if err != nil {
		panic("failed to access test database pool")
	}
	sqlDB.SetMaxIdleConns(1)
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(&model.AdminUser{}, &model.OperationLog{}, &model.LoginLog{}); err != nil {
		panic("failed to migrate test database")
	}
	return db
}

// CloseTest releases the underlying connection.
func CloseTest(db *gorm.DB) {
	sqlDB, err := db.DB()
	if err != nil {
		return
	}
	sqlDB.Close()
}
