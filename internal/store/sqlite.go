package store

import (
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"gorm.io/gorm"
)

// Entry is one key-value row. Collections share a single table.
type Entry struct {
	Collection string    `gorm:"primaryKey"`
	Key        string    `gorm:"primaryKey;column:entry_key"`
	Value      []byte    `gorm:"not null"`
	UpdatedAt  time.Time
}

// SQLiteKV backs the KV contract with a GORM-managed SQLite table, for
// deployments that want the gate's data next to the admin tables.
type SQLiteKV struct {
	db *gorm.DB
}

func NewSQLiteKV(db *gorm.DB) (*SQLiteKV, error) {
	if err := db.AutoMigrate(&Entry{}); err != nil {
		return nil, err
	}
	return &SQLiteKV{db: db}, nil
}

func (s *SQLiteKV) Get(collection, key string) ([]byte, error) {
	var entry Entry
	result := s.db.Where("collection = ? AND entry_key = ?", collection, key).First(&entry)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, result.Error
	}
	return entry.Value, nil
}

func (s *SQLiteKV) Put(collection, key string, value []byte) error {
	entry := Entry{
		Collection: collection,
		Key:        key,
		Value:      value,
		UpdatedAt:  time.Now(),
	}
	return s.db.Save(&entry).Error
}

func (s *SQLiteKV) Delete(collection, key string) error {
	return s.db.Where("collection = ? AND entry_key = ?", collection, key).Delete(&Entry{}).Error
}

func (s *SQLiteKV) ListAll(collection string) (map[string][]byte, error) {
	var entries []Entry
	if err := s.db.Where("collection = ?", collection).Find(&entries).Error; err != nil {
		return nil, err
	}

	out := make(map[string][]byte, len(entries))
	for _, e := range entries {
		out[e.Key] = e.Value
	}
	return out, nil
}

// Blobs serializes each collection to the same JSON-object shape the
// file backend persists, so the forensic scan sees both backends
// identically.
func (s *SQLiteKV) Blobs() ([]Blob, error) {
	var collections []string
	if err := s.db.Model(&Entry{}).Distinct("collection").Pluck("collection", &collections).Error; err != nil {
		return nil, err
	}

	var blobs []Blob
	for _, c := range collections {
		all, err := s.ListAll(c)
		if err != nil {
			continue
		}
		db := make(map[string]json.RawMessage, len(all))
		for k, v := range all {
			if !json.Valid(v) {
				// Keep corrupt values searchable instead of dropping them.
				v = strconv.AppendQuote(nil, string(v))
			}
			db[k] = json.RawMessage(v)
		}
		content, err := json.Marshal(db)
		if err != nil {
			continue
		}
		blobs = append(blobs, Blob{Name: c + ".json", Content: content})
	}
	return blobs, nil
}
