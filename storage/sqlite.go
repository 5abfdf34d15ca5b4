/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

const sqliteName = "flames.db"

// kvEntry is the single table behind SQLStore.
type kvEntry struct {
	Key       string `gorm:"primaryKey;column:key"`
	Value     []byte
	UpdatedAt time.Time
}

func (kvEntry) TableName() string { return "kv_entries" }

// SQLStore keeps keys in a sqlite database through gorm.
type SQLStore struct {
	db *gorm.DB
}

func sqlitePath(dir string) string {
	if dir == "" {
		return sqliteName
	}

	return filepath.Join(dir, sqliteName)
}

// OpenSQLStore opens (creating if needed) the database at dsn and migrates it.
// A dsn of ":memory:" gives a throwaway database.
func OpenSQLStore(dsn string) (*SQLStore, error) {
	if dsn != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dsn), 0o700); err != nil {
			return nil, fmt.Errorf("create data dir: %w", err)
		}
	}

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", dsn, err)
	}

	// sqlite allows a single writer; an in-memory database also exists only
	// per connection, so pin the pool to one.
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(&kvEntry{}); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return &SQLStore{db: db}, nil
}

// keyIs matches one row by key. "key" is an SQL keyword, so the column goes
// through gorm's identifier quoting.
func keyIs(key string) clause.Eq {
	return clause.Eq{Column: clause.Column{Name: "key"}, Value: key}
}

func (s *SQLStore) Get(ctx context.Context, key string) ([]byte, error) {
	var e kvEntry

	err := s.db.WithContext(ctx).Where(keyIs(key)).First(&e).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	return e.Value, nil
}

func (s *SQLStore) Set(ctx context.Context, key string, value []byte) error {
	e := kvEntry{Key: key, Value: value, UpdatedAt: time.Now()}

	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&e).Error
}

func (s *SQLStore) Delete(ctx context.Context, key string) error {
	return s.db.WithContext(ctx).Where(keyIs(key)).Delete(&kvEntry{}).Error
}

func (s *SQLStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}

	return sqlDB.Close()
}
