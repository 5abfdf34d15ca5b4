/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package storage

import (
	"context"
	"errors"
	"fmt"
)

var (
	ErrNotFound      = errors.New("key not found")
	ErrInvalidRecord = errors.New("invalid record")
	ErrUnknownStore  = errors.New("unknown store kind")
)

// Store is a byte-oriented key-value store.
// Get returns ErrNotFound when key has never been set or was deleted.
// Deleting a missing key is not an error.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Close() error
}

const (
	KindMemory = "memory"
	KindFile   = "file"
	KindSQLite = "sqlite"
	KindS3     = "s3"
)

// Kinds lists every store kind accepted by Open.
func Kinds() []string {
	return []string{KindMemory, KindFile, KindSQLite, KindS3}
}

// Options configures Open. Only the fields relevant to the chosen kind are read.
type Options struct {
	// DataDir holds store.json for the file store and flames.db for sqlite.
	DataDir string

	Bucket string
	Prefix string
}

// Open returns the store implementation named by kind.
func Open(ctx context.Context, kind string, opts Options) (Store, error) {
	switch kind {
	case KindMemory:
		return NewMemoryStore(), nil
	case KindFile:
		return NewFileStore(opts.DataDir)
	case KindSQLite:
		return OpenSQLStore(sqlitePath(opts.DataDir))
	case KindS3:
		return OpenS3Store(ctx, opts.Bucket, opts.Prefix)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownStore, kind)
	}
}
