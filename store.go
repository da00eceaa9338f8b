package tursokv

import (
	"context"
	"errors"
	"fmt"
	"time"
)

var (
	ErrInvalidTableName   = errors.New("tursokv: invalid table name")
	ErrRequiredOption     = errors.New("tursokv: missing required option")
	ErrDisposed           = errors.New("tursokv: driver disposed")
	ErrUnsupportedVersion = errors.New("tursokv: unsupported driver version")
	ErrUnsupportedURL     = errors.New("tursokv: unsupported database url")
)

// RequiredOptionError names the option a driver could not resolve.
type RequiredOptionError struct {
	Driver string
	Option string
}

func (e *RequiredOptionError) Error() string {
	return fmt.Sprintf("tursokv: [%s] missing required option %q", e.Driver, e.Option)
}

func (e *RequiredOptionError) Is(target error) bool {
	return target == ErrRequiredOption
}

// Flags advertises optional features of a driver.
type Flags struct {
	// TTL reports whether SetItem honors the ttl argument.
	TTL bool
	// MaxDepth reports whether GetKeys can limit nesting depth.
	MaxDepth bool
}

// Driver describes the key-value storage contract every backend implements.
// Values are opaque text. Implementations must be thread-safe.
type Driver interface {
	Name() string
	Flags() Flags

	HasItem(ctx context.Context, key string) (bool, error)
	// GetItem returns ok=false when no value is stored under key.
	GetItem(ctx context.Context, key string) (value string, ok bool, err error)
	// SetItem upserts value. Drivers without TTL support ignore ttl.
	SetItem(ctx context.Context, key, value string, ttl time.Duration) error
	RemoveItem(ctx context.Context, key string) error

	// GetKeys lists keys starting with subPrefix. Order is unspecified.
	GetKeys(ctx context.Context, subPrefix string) ([]string, error)
	// Clear removes every key starting with subPrefix.
	Clear(ctx context.Context, subPrefix string) error

	// Dispose releases the backing resources. Operations after Dispose fail
	// with ErrDisposed and a second Dispose is a no-op.
	Dispose() error
}

// Option customizes Store behavior.
type Option[TKey ~string] func(*store[TKey])

// WithLogger specifies a logger for operation logging.
// If not provided, a no-op logger is used (no logging).
func WithLogger[TKey ~string](logger Logger) Option[TKey] {
	return func(s *store[TKey]) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithLogTag sets a tag prefix for all log messages.
// Useful for identifying the source of logs in multi-store scenarios.
func WithLogTag[TKey ~string](tag string) Option[TKey] {
	return func(s *store[TKey]) {
		s.logTag = tag
	}
}

// Store exposes a Driver with typed keys and error logging.
type Store[TKey ~string] interface {
	Has(ctx context.Context, key TKey) (bool, error)
	Get(ctx context.Context, key TKey) (string, bool, error)
	Set(ctx context.Context, key TKey, value string, ttl time.Duration) error
	Remove(ctx context.Context, key TKey) error

	Keys(ctx context.Context, subPrefix string) ([]TKey, error)
	Clear(ctx context.Context, subPrefix string) error

	// Driver returns the underlying driver.
	Driver() Driver
	Dispose() error
}

type store[TKey ~string] struct {
	driver Driver
	logger Logger
	logTag string
}

// New wraps driver in a typed Store.
func New[TKey ~string](driver Driver, opts ...Option[TKey]) Store[TKey] {
	s := &store[TKey]{
		driver: driver,
		logger: defaultLogger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *store[TKey]) logf(level string, ctx context.Context, format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	if s.logTag != "" {
		msg = s.logTag + " " + msg
	}
	switch level {
	case "info":
		s.logger.Info(ctx, "%s", msg)
	case "warn":
		s.logger.Warn(ctx, "%s", msg)
	case "error":
		s.logger.Error(ctx, "%s", msg)
	case "debug":
		s.logger.Debug(ctx, "%s", msg)
	}
}

func (s *store[TKey]) Driver() Driver {
	return s.driver
}

func (s *store[TKey]) Has(ctx context.Context, key TKey) (bool, error) {
	ok, err := s.driver.HasItem(ctx, string(key))
	if err != nil {
		s.logf("error", ctx, "Has %s failed: %v", key, err)
	}
	return ok, err
}

func (s *store[TKey]) Get(ctx context.Context, key TKey) (string, bool, error) {
	value, ok, err := s.driver.GetItem(ctx, string(key))
	if err != nil {
		s.logf("error", ctx, "Get %s failed: %v", key, err)
	}
	return value, ok, err
}

func (s *store[TKey]) Set(ctx context.Context, key TKey, value string, ttl time.Duration) error {
	if ttl > 0 && !s.driver.Flags().TTL {
		s.logf("debug", ctx, "Set %s: driver %s ignores ttl", key, s.driver.Name())
	}
	err := s.driver.SetItem(ctx, string(key), value, ttl)
	if err != nil {
		s.logf("error", ctx, "Set %s failed: %v", key, err)
	}
	return err
}

func (s *store[TKey]) Remove(ctx context.Context, key TKey) error {
	err := s.driver.RemoveItem(ctx, string(key))
	if err != nil {
		s.logf("error", ctx, "Remove %s failed: %v", key, err)
	}
	return err
}

// Keys returns all keys under subPrefix.
func (s *store[TKey]) Keys(ctx context.Context, subPrefix string) ([]TKey, error) {
	keys, err := s.driver.GetKeys(ctx, subPrefix)
	if err != nil {
		s.logf("error", ctx, "Keys prefix=%s failed: %v", subPrefix, err)
		return nil, err
	}

	typed := make([]TKey, len(keys))
	for i, k := range keys {
		typed[i] = TKey(k)
	}
	return typed, nil
}

// Clear removes all keys under subPrefix.
func (s *store[TKey]) Clear(ctx context.Context, subPrefix string) error {
	err := s.driver.Clear(ctx, subPrefix)
	if err != nil {
		s.logf("error", ctx, "Clear prefix=%s failed: %v", subPrefix, err)
	}
	return err
}

func (s *store[TKey]) Dispose() error {
	err := s.driver.Dispose()
	if err != nil {
		s.logf("warn", context.Background(), "Dispose failed: %v", err)
	}
	return err
}
