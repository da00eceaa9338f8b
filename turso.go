package tursokv

import (
	"context"
	"fmt"
	"sync"
	"time"
)

const tursoDriverName = "turso"

// Turso implements Driver on a single (key, value) SQL table reachable
// through an Executor. The Executor is opened on first use and kept until
// Dispose.
type Turso struct {
	opts    Options
	table   string
	keys    keyspace
	factory ClientFactory
	logger  Logger

	mu       sync.Mutex
	client   Executor
	disposed bool
}

// NewTurso validates opts and returns a driver. No connection is made.
func NewTurso(opts Options) (*Turso, error) {
	table := opts.Table
	if table == "" {
		table = DefaultTable
	}
	if err := ValidateTableName(table); err != nil {
		return nil, err
	}
	if opts.Version != "" && opts.Version != DriverVersion {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedVersion, opts.Version)
	}

	d := &Turso{
		opts:    opts,
		table:   table,
		keys:    keyspace{base: opts.Base},
		factory: opts.ClientFactory,
		logger:  opts.Logger,
	}
	if d.factory == nil {
		d.factory = DefaultClientFactory
	}
	if d.logger == nil {
		d.logger = defaultLogger
	}
	return d, nil
}

func (d *Turso) Name() string { return tursoDriverName }

func (d *Turso) Flags() Flags { return Flags{TTL: false, MaxDepth: false} }

// Options returns the options the driver was built with.
func (d *Turso) Options() Options { return d.opts }

// Table returns the validated table name.
func (d *Turso) Table() string { return d.table }

// Instance returns the cached Executor, opening it on first call. A failed
// open is not remembered, so a later call retries.
func (d *Turso) Instance(ctx context.Context) (Executor, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.disposed {
		return nil, ErrDisposed
	}
	if d.client != nil {
		return d.client, nil
	}

	cfg, err := d.opts.clientConfig()
	if err != nil {
		return nil, err
	}
	client, err := d.factory(ctx, cfg)
	if err != nil {
		return nil, err
	}
	d.logger.Debug(ctx, "turso: opened client table=%s base=%q", d.table, d.keys.base)
	d.client = client
	return client, nil
}

func (d *Turso) execute(ctx context.Context, query string, args ...any) (*Result, error) {
	client, err := d.Instance(ctx)
	if err != nil {
		return nil, err
	}
	return client.Execute(ctx, Statement{SQL: query, Args: args})
}

func (d *Turso) HasItem(ctx context.Context, key string) (bool, error) {
	res, err := d.execute(ctx,
		"SELECT EXISTS (SELECT 1 FROM "+d.table+" WHERE key = ?) AS value",
		d.keys.physical(key))
	if err != nil {
		return false, err
	}
	if len(res.Rows) == 0 || len(res.Rows[0]) == 0 {
		return false, nil
	}
	return truthy(res.Rows[0][0]), nil
}

func (d *Turso) GetItem(ctx context.Context, key string) (string, bool, error) {
	res, err := d.execute(ctx,
		"SELECT value FROM "+d.table+" WHERE key = ?",
		d.keys.physical(key))
	if err != nil {
		return "", false, err
	}
	if len(res.Rows) == 0 || len(res.Rows[0]) == 0 {
		return "", false, nil
	}
	value := res.Rows[0][0]
	if value == nil {
		return "", false, nil
	}
	return text(value), true, nil
}

// SetItem upserts value. ttl is ignored.
func (d *Turso) SetItem(ctx context.Context, key, value string, _ time.Duration) error {
	_, err := d.execute(ctx,
		"INSERT INTO "+d.table+" (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value",
		d.keys.physical(key), value)
	return err
}

func (d *Turso) RemoveItem(ctx context.Context, key string) error {
	_, err := d.execute(ctx,
		"DELETE FROM "+d.table+" WHERE key = ?",
		d.keys.physical(key))
	return err
}

func (d *Turso) GetKeys(ctx context.Context, subPrefix string) ([]string, error) {
	res, err := d.execute(ctx,
		"SELECT key FROM "+d.table+" WHERE key LIKE ?",
		d.keys.pattern(subPrefix))
	if err != nil {
		return nil, err
	}

	keys := make([]string, 0, len(res.Rows))
	for _, row := range res.Rows {
		if len(row) == 0 || row[0] == nil {
			continue
		}
		key, ok := d.keys.logical(text(row[0]))
		if !ok {
			continue
		}
		keys = append(keys, key)
	}
	return keys, nil
}

func (d *Turso) Clear(ctx context.Context, subPrefix string) error {
	_, err := d.execute(ctx,
		"DELETE FROM "+d.table+" WHERE key LIKE ?",
		d.keys.pattern(subPrefix))
	return err
}

// Dispose closes the client if one was opened. Later calls fail with
// ErrDisposed.
func (d *Turso) Dispose() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.disposed {
		return nil
	}
	d.disposed = true
	client := d.client
	d.client = nil
	if client == nil {
		return nil
	}
	d.logger.Debug(context.Background(), "turso: closing client table=%s", d.table)
	return client.Close()
}

func text(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case []byte:
		return string(t)
	default:
		return fmt.Sprint(t)
	}
}

func truthy(v any) bool {
	switch t := v.(type) {
	case int64:
		return t != 0
	case bool:
		return t
	default:
		return text(v) == "1"
	}
}

// type check
var _ Driver = (*Turso)(nil)
