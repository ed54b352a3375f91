// storage/boltdb_store.go
package storage

import (
	"context"
	"encoding/binary"
	"fmt"
	"time"

	"github.com/chhz0/tasktrack/types"
	bolt "go.etcd.io/bbolt"
)

var (
	eventBucket = []byte("events")
)

// BoltJournal keys events by the bucket sequence, so cursor order is
// append order.
type BoltJournal struct {
	db *bolt.DB
}

func NewBoltJournal(path string) (*BoltJournal, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("open bolt journal: %w", err)
	}

	// 初始化Bucket
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(eventBucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("create bucket: %w", err)
	}

	return &BoltJournal{db: db}, nil
}

func (j *BoltJournal) Append(ctx context.Context, ev *types.Event) error {
	if ev == nil {
		return ErrNilEvent
	}
	data, err := ev.Serialize()
	if err != nil {
		return err
	}

	return j.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(eventBucket)
		seq, err := b.NextSequence()
		if err != nil {
			return err
		}
		key := make([]byte, 8)
		binary.BigEndian.PutUint64(key, seq)
		return b.Put(key, data)
	})
}

func (j *BoltJournal) Events(ctx context.Context, limit int) ([]*types.Event, error) {
	var events []*types.Event
	err := j.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket(eventBucket).Cursor()

		for k, v := c.First(); k != nil; k, v = c.Next() {
			ev, err := types.DeserializeEvent(v)
			if err != nil {
				return fmt.Errorf("decode event %x: %w", k, err)
			}
			events = append(events, ev)
			if limit > 0 && len(events) >= limit {
				break
			}
		}
		return nil
	})
	return events, err
}

func (j *BoltJournal) Close() error {
	return j.db.Close()
}
