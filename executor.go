package tursokv

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"sort"
	"strings"

	_ "github.com/tursodatabase/libsql-client-go/libsql"
	_ "modernc.org/sqlite"
)

// Statement is one parameterized SQL statement. Args bind to '?' placeholders.
type Statement struct {
	SQL  string
	Args []any
}

// Result holds the rows returned by a statement.
type Result struct {
	Columns      []string
	Rows         [][]any
	RowsAffected int64
}

// Executor is a connected handle able to run statements against the backing
// database.
type Executor interface {
	Execute(ctx context.Context, stmt Statement) (*Result, error)
	Close() error
}

// ClientConfig carries connection parameters to a ClientFactory.
type ClientConfig struct {
	URL       string
	AuthToken string
	// Extra is appended to the connection string as query parameters.
	Extra map[string]string
}

// ClientFactory opens an Executor for cfg.
type ClientFactory func(ctx context.Context, cfg ClientConfig) (Executor, error)

// DefaultClientFactory opens local databases (":memory:", "file:" and
// "file://" URLs and plain paths) with modernc.org/sqlite and remote ones (libsql, http, ws
// schemes) with the libsql client.
func DefaultClientFactory(ctx context.Context, cfg ClientConfig) (Executor, error) {
	driverName, dsn, err := clientDSN(cfg)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s db: %w", driverName, err)
	}
	if inMemoryDSN(dsn) {
		// Every connection to a private in-memory database is a separate database.
		db.SetMaxOpenConns(1)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping %s db: %w", driverName, err)
	}
	return &sqlExecutor{db: db}, nil
}

func clientDSN(cfg ClientConfig) (driverName, dsn string, err error) {
	raw := strings.TrimSpace(cfg.URL)
	if raw == "" {
		return "", "", &RequiredOptionError{Driver: tursoDriverName, Option: "url"}
	}

	scheme := ""
	if i := strings.Index(raw, "://"); i > 0 {
		scheme = strings.ToLower(raw[:i])
	}

	switch scheme {
	case "", "file":
		return "sqlite", appendParams(raw, cfg.Extra), nil
	case "libsql", "http", "https", "ws", "wss":
		params := make(map[string]string, len(cfg.Extra)+1)
		for k, v := range cfg.Extra {
			params[k] = v
		}
		if cfg.AuthToken != "" {
			params["authToken"] = cfg.AuthToken
		}
		return "libsql", appendParams(raw, params), nil
	default:
		return "", "", fmt.Errorf("%w: scheme %q", ErrUnsupportedURL, scheme)
	}
}

func inMemoryDSN(dsn string) bool {
	return strings.HasPrefix(dsn, ":memory:") ||
		strings.HasPrefix(dsn, "file::memory:") ||
		strings.Contains(dsn, "mode=memory")
}

func appendParams(dsn string, params map[string]string) string {
	if len(params) == 0 {
		return dsn
	}
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString(dsn)
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	for _, k := range keys {
		b.WriteString(sep)
		b.WriteString(url.QueryEscape(k))
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(params[k]))
		sep = "&"
	}
	return b.String()
}

// sqlExecutor runs statements through database/sql.
type sqlExecutor struct {
	db *sql.DB
}

// NewSQLExecutor wraps an open database handle. Close closes db.
func NewSQLExecutor(db *sql.DB) Executor {
	return &sqlExecutor{db: db}
}

func (e *sqlExecutor) Execute(ctx context.Context, stmt Statement) (*Result, error) {
	if !returnsRows(stmt.SQL) {
		res, err := e.db.ExecContext(ctx, stmt.SQL, stmt.Args...)
		if err != nil {
			return nil, err
		}
		affected, _ := res.RowsAffected()
		return &Result{RowsAffected: affected}, nil
	}

	rows, err := e.db.QueryContext(ctx, stmt.SQL, stmt.Args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	result := &Result{Columns: columns}
	for rows.Next() {
		values := make([]any, len(columns))
		dest := make([]any, len(columns))
		for i := range values {
			dest[i] = &values[i]
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, err
		}
		for i, v := range values {
			if b, ok := v.([]byte); ok {
				values[i] = string(b)
			}
		}
		result.Rows = append(result.Rows, values)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (e *sqlExecutor) Close() error {
	return e.db.Close()
}

func returnsRows(query string) bool {
	fields := strings.Fields(query)
	if len(fields) == 0 {
		return false
	}
	switch strings.ToUpper(fields[0]) {
	case "SELECT", "WITH", "PRAGMA", "VALUES":
		return true
	}
	return false
}
