package cache

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/input-output-hk/catalyst-forge-libs/aws/simples3/s3types"
)

// Badger is a persistent cache backed by a Badger key-value store.
// Items are stored as JSON and expire through Badger's entry TTL.
type Badger struct {
	db  *badger.DB
	ttl time.Duration
}

var _ s3types.Cache = (*Badger)(nil)

// OpenBadger opens (or creates) a Badger cache in dir.
func OpenBadger(dir string, ttl time.Duration) (*Badger, error) {
	return NewBadger(badger.DefaultOptions(dir).WithLogger(nil), ttl)
}

// NewBadger opens a Badger cache with the given options. Use
// badger.DefaultOptions("").WithInMemory(true) for a throwaway store.
func NewBadger(opts badger.Options, ttl time.Duration) (*Badger, error) {
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger cache: %w", err)
	}
	return &Badger{db: db, ttl: ttl}, nil
}

// Get returns the item stored under bucket and key. Read or decode failures
// count as a miss.
func (b *Badger) Get(bucket, key string) (*s3types.Item, bool) {
	var raw []byte
	err := b.db.View(func(txn *badger.Txn) error {
		it, err := txn.Get([]byte(cacheKey(bucket, key)))
		if err != nil {
			return err
		}
		raw, err = it.ValueCopy(nil)
		return err
	})
	if err != nil {
		return nil, false
	}

	var item s3types.Item
	if err := json.Unmarshal(raw, &item); err != nil {
		return nil, false
	}
	return &item, true
}

// Set stores item under bucket and key.
func (b *Badger) Set(bucket, key string, item *s3types.Item) error {
	if item == nil {
		return b.Delete(bucket, key)
	}

	raw, err := json.Marshal(item)
	if err != nil {
		return fmt.Errorf("encode cache item: %w", err)
	}

	return b.db.Update(func(txn *badger.Txn) error {
		e := badger.NewEntry([]byte(cacheKey(bucket, key)), raw)
		if b.ttl > 0 {
			e = e.WithTTL(b.ttl)
		}
		return txn.SetEntry(e)
	})
}

// Delete removes the item stored under bucket and key.
func (b *Badger) Delete(bucket, key string) error {
	err := b.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(cacheKey(bucket, key)))
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil
	}
	return err
}

// Close flushes and closes the underlying store.
func (b *Badger) Close() error {
	return b.db.Close()
}
