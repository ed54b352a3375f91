package storage

import (
	"errors"
	"fmt"
	"time"
)

// Journal backends.
const (
	BackendNone   = "none"
	BackendMemory = "memory"
	BackendBolt   = "bolt"
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
)

var ErrUnknownBackend = errors.New("unknown journal backend")

type Options struct {
	Backend string
	// Path is the database file for bolt and sqlite.
	Path string

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RedisPrefix   string
	RedisTTL      time.Duration
}

// Open builds the journal selected by opts.Backend.
func Open(opts Options) (Journal, error) {
	switch opts.Backend {
	case "", BackendNone:
		return NopJournal{}, nil
	case BackendMemory:
		return NewMemoryJournal(), nil
	case BackendBolt:
		return NewBoltJournal(opts.Path)
	case BackendSQLite:
		return NewSQLiteJournal(opts.Path)
	case BackendRedis:
		return NewRedisJournal(opts.RedisAddr, opts.RedisPassword, opts.RedisDB, opts.RedisPrefix, opts.RedisTTL), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, opts.Backend)
	}
}
