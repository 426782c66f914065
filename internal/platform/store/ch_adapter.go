package store

import (
	"context"

	"augeo/internal/platform/store/ch"
)

// newCHAdapter wraps an existing *ch.CH and returns the store.Clickhouse seam
func newCHAdapter(c *ch.CH) Clickhouse {
	return &clickhouseAdapter{inner: c}
}

// clickhouseAdapter adapts *ch.CH to the store.Clickhouse interface
type clickhouseAdapter struct {
	inner *ch.CH
}

var _ Clickhouse = (*clickhouseAdapter)(nil)

func (a *clickhouseAdapter) Ping(ctx context.Context) error { return a.inner.Ping(ctx) }

func (a *clickhouseAdapter) Insert(ctx context.Context, table string, cols []string, rows [][]any) error {
	return a.inner.Insert(ctx, table, cols, rows)
}

func (a *clickhouseAdapter) Query(ctx context.Context, sql string, args ...any) (Rows, error) {
	r, err := a.inner.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	return &chRows{r: r}, nil
}

func (a *clickhouseAdapter) Close() error { return a.inner.Close() }

// chRows widens ch.Rows to the store.Rows contract
type chRows struct{ r ch.Rows }

func (x *chRows) Next() bool             { return x.r.Next() }
func (x *chRows) Scan(dest ...any) error { return x.r.Scan(dest...) }
func (x *chRows) Err() error             { return x.r.Err() }
func (x *chRows) Close()                 { x.r.Close() }
func (x *chRows) Columns() []string      { return x.r.Columns() }
