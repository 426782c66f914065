// Package ch provides a clickhouse client used for append-only activity archives
package ch

import (
	"context"
	"fmt"
	"strings"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
)

// Config configures clickhouse connectivity
type Config struct {
	Addr     string
	Database string
	Username string
	Password string
	Role     string
}

// Rows is the minimal result set iteration for ch
type Rows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
	Close()
	Columns() []string
}

// CH wraps a clickhouse native connection
type CH struct {
	conn driver.Conn
}

// Open dials clickhouse and verifies connectivity
func Open(ctx context.Context, cfg Config) (*CH, error) {
	conn, err := clickhouse.Open(&clickhouse.Options{
		Addr: []string{cfg.Addr},
		Auth: clickhouse.Auth{
			Database: cfg.Database,
			Username: cfg.Username,
			Password: cfg.Password,
		},
		ClientInfo: BuildClientInfo(cfg.Role, ""),
	})
	if err != nil {
		return nil, err
	}
	if err := conn.Ping(ctx); err != nil {
		_ = conn.Close()
		return nil, err
	}
	return &CH{conn: conn}, nil
}

// Ping reports backend readiness
func (c *CH) Ping(ctx context.Context) error { return c.conn.Ping(ctx) }

// Insert appends rows to table via a prepared batch
// cols must match the order of values in each row
func (c *CH) Insert(ctx context.Context, table string, cols []string, rows [][]any) error {
	if len(rows) == 0 {
		return nil
	}
	stmt := fmt.Sprintf("INSERT INTO %s (%s)", table, strings.Join(cols, ", "))
	batch, err := c.conn.PrepareBatch(ctx, stmt)
	if err != nil {
		return err
	}
	for _, r := range rows {
		if err := batch.Append(r...); err != nil {
			_ = batch.Abort()
			return err
		}
	}
	return batch.Send()
}

// Query runs a query and returns ch.Rows
func (c *CH) Query(ctx context.Context, sql string, args ...any) (Rows, error) {
	r, err := c.conn.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	return &rowsAdapter{r: r}, nil
}

// Close closes the underlying connection
func (c *CH) Close() error { return c.conn.Close() }

// rowsAdapter narrows driver.Rows to the ch.Rows contract
type rowsAdapter struct{ r driver.Rows }

func (a *rowsAdapter) Next() bool             { return a.r.Next() }
func (a *rowsAdapter) Scan(dest ...any) error { return a.r.Scan(dest...) }
func (a *rowsAdapter) Err() error             { return a.r.Err() }
func (a *rowsAdapter) Close()                 { _ = a.r.Close() }
func (a *rowsAdapter) Columns() []string      { return a.r.Columns() }
