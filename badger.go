package tursokv

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/dgraph-io/badger/v3"
)

// BadgerOptions configures an embedded Badger driver.
type BadgerOptions struct {
	// Dir is the data directory. Ignored when InMemory is set.
	Dir      string
	InMemory bool
	Base     string
	Logger   Logger
}

// Badger implements Driver on an embedded Badger database.
type Badger struct {
	db       *badger.DB
	keys     keyspace
	disposed atomic.Bool
}

// NewBadger opens the database described by opts.
func NewBadger(opts BadgerOptions) (*Badger, error) {
	if !opts.InMemory && strings.TrimSpace(opts.Dir) == "" {
		return nil, &RequiredOptionError{Driver: "badger", Option: "dir"}
	}

	bopts := badger.DefaultOptions(opts.Dir)
	if opts.InMemory {
		bopts = badger.DefaultOptions("").WithInMemory(true)
	}
	logger := opts.Logger
	if logger == nil {
		logger = defaultLogger
	}
	bopts = bopts.WithLogger(badgerLogger{l: logger})

	db, err := badger.Open(bopts)
	if err != nil {
		return nil, fmt.Errorf("open badger db: %w", err)
	}
	return &Badger{db: db, keys: keyspace{base: opts.Base}}, nil
}

func (b *Badger) Name() string { return "badger" }

func (b *Badger) Flags() Flags { return Flags{TTL: true} }

func (b *Badger) HasItem(ctx context.Context, key string) (bool, error) {
	_, ok, err := b.GetItem(ctx, key)
	return ok, err
}

func (b *Badger) GetItem(ctx context.Context, key string) (string, bool, error) {
	if b.disposed.Load() {
		return "", false, ErrDisposed
	}
	var value []byte
	err := b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(b.keys.physical(key)))
		if err != nil {
			return err
		}
		value, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return string(value), true, nil
}

func (b *Badger) SetItem(ctx context.Context, key, value string, ttl time.Duration) error {
	if b.disposed.Load() {
		return ErrDisposed
	}
	return b.db.Update(func(txn *badger.Txn) error {
		e := badger.NewEntry([]byte(b.keys.physical(key)), []byte(value))
		if ttl > 0 {
			e = e.WithTTL(ttl)
		}
		return txn.SetEntry(e)
	})
}

func (b *Badger) RemoveItem(ctx context.Context, key string) error {
	if b.disposed.Load() {
		return ErrDisposed
	}
	return b.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(b.keys.physical(key)))
	})
}

func (b *Badger) GetKeys(ctx context.Context, subPrefix string) ([]string, error) {
	physical, err := b.scan(subPrefix)
	if err != nil {
		return nil, err
	}
	keys := make([]string, 0, len(physical))
	for _, pk := range physical {
		if key, ok := b.keys.logical(string(pk)); ok {
			keys = append(keys, key)
		}
	}
	return keys, nil
}

// Clear deletes matching keys through a write batch.
func (b *Badger) Clear(ctx context.Context, subPrefix string) error {
	physical, err := b.scan(subPrefix)
	if err != nil {
		return err
	}
	wb := b.db.NewWriteBatch()
	defer wb.Cancel()
	for _, pk := range physical {
		if err := wb.Delete(pk); err != nil {
			return err
		}
	}
	return wb.Flush()
}

func (b *Badger) scan(subPrefix string) ([][]byte, error) {
	if b.disposed.Load() {
		return nil, ErrDisposed
	}
	prefix := []byte(b.keys.prefix(subPrefix))
	var keys [][]byte
	err := b.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.IteratorOptions{Prefix: prefix})
		defer it.Close()
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			keys = append(keys, it.Item().KeyCopy(nil))
		}
		return nil
	})
	return keys, err
}

// Dispose closes the database. Later calls fail with ErrDisposed.
func (b *Badger) Dispose() error {
	if !b.disposed.CompareAndSwap(false, true) {
		return nil
	}
	return b.db.Close()
}

// badgerLogger passes badger's logs to a Logger.
type badgerLogger struct {
	l Logger
}

func (bl badgerLogger) Errorf(msg string, args ...interface{}) {
	bl.l.Error(context.Background(), strings.TrimSpace(msg), args...)
}

func (bl badgerLogger) Warningf(msg string, args ...interface{}) {
	bl.l.Warn(context.Background(), strings.TrimSpace(msg), args...)
}

func (bl badgerLogger) Infof(msg string, args ...interface{}) {
	bl.l.Info(context.Background(), strings.TrimSpace(msg), args...)
}

func (bl badgerLogger) Debugf(msg string, args ...interface{}) {
	bl.l.Debug(context.Background(), strings.TrimSpace(msg), args...)
}

// type check
var _ Driver = (*Badger)(nil)
