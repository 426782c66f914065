package service

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"augeo/internal/modkit"
	"augeo/internal/platform/config"
	"augeo/internal/platform/logger"
	"augeo/internal/platform/store"
	poller "augeo/internal/services/poller/domain"
)

type fakeTag int64

func (t fakeTag) String() string      { return fmt.Sprintf("FAKE %d", int64(t)) }
func (t fakeTag) RowsAffected() int64 { return int64(t) }

type fakeRow struct{ vals []any }

func (r fakeRow) Scan(dest ...any) error {
	for i := range dest {
		switch d := dest[i].(type) {
		case *int64:
			*d = r.vals[i].(int64)
		default:
			return fmt.Errorf("unsupported scan dest %T", dest[i])
		}
	}
	return nil
}

// scriptDB answers the three statements Apply issues, tracking state in
// memory so idempotence and rollup math are observable
type scriptDB struct {
	seenEvents map[string]bool
	totals     map[string]int64
	levels     map[string]int
}

func newScriptDB() *scriptDB {
	return &scriptDB{
		seenEvents: map[string]bool{},
		totals:     map[string]int64{},
		levels:     map[string]int{},
	}
}

func (db *scriptDB) Exec(_ context.Context, sql string, args ...any) (store.CommandTag, error) {
	switch {
	case strings.Contains(sql, "INSERT INTO activities"):
		key := fmt.Sprint(args[1], args[2], args[3], args[4]) // user, provider, event, kind
		if db.seenEvents[key] {
			return fakeTag(0), nil
		}
		db.seenEvents[key] = true
		return fakeTag(1), nil
	case strings.Contains(sql, "UPDATE skills SET level"):
		db.levels[fmt.Sprint(args[0], "/", args[1])] = args[2].(int)
		return fakeTag(1), nil
	default:
		return nil, fmt.Errorf("unexpected exec: %s", sql)
	}
}

func (db *scriptDB) Query(_ context.Context, sql string, _ ...any) (store.Rows, error) {
	return nil, fmt.Errorf("unexpected query: %s", sql)
}

func (db *scriptDB) QueryRow(_ context.Context, sql string, args ...any) store.Row {
	if !strings.Contains(sql, "INSERT INTO skills") {
		panic("unexpected query row: " + sql)
	}
	key := fmt.Sprint(args[0], "/", args[1])
	db.totals[key] += int64(args[2].(int))
	return fakeRow{vals: []any{db.totals[key]}}
}

func (db *scriptDB) Tx(ctx context.Context, fn func(q store.RowQuerier) error) error {
	return fn(db)
}

type fakeCH struct {
	table string
	cols  []string
	rows  [][]any
}

func (f *fakeCH) Insert(_ context.Context, table string, cols []string, rows [][]any) error {
	f.table, f.cols, f.rows = table, cols, rows
	return nil
}

func (f *fakeCH) Query(context.Context, string, ...any) (store.Rows, error) { return nil, nil }
func (f *fakeCH) Close() error                                             { return nil }

func testActivity(eventID string, exp int) poller.Activity {
	return poller.Activity{
		ID:         "act-" + eventID,
		UserID:     "u-1",
		Provider:   poller.ProviderGitHub,
		EventID:    eventID,
		Kind:       poller.KindCommit,
		Skill:      "GitHub",
		Repo:       "kira/hands",
		Experience: exp,
		CreatedAt:  time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}
}

func newTestSvc(db *scriptDB, ch store.Clickhouse) *Svc {
	s := New(modkit.Deps{
		Log: *logger.Named("test"),
		Cfg: config.New(),
		PG:  db,
		CH:  ch,
	})
	return s
}

func TestApplyRollsUpExperience(t *testing.T) {
	t.Parallel()

	db := newScriptDB()
	ch := &fakeCH{}
	s := newTestSvc(db, ch)
	user := poller.UserProfile{UserID: "u-1", Username: "kira"}

	acts := []poller.Activity{testActivity("10", 25), testActivity("11", 10)}
	if err := s.Apply(context.Background(), user, acts); err != nil {
		t.Fatalf("Apply: %v", err)
	}

	if got := db.totals["u-1/GitHub"]; got != 35 {
		t.Fatalf("total experience = %d, want 35", got)
	}
	// 35 xp crosses the first level threshold
	if got := db.levels["u-1/GitHub"]; got != 2 {
		t.Fatalf("level = %d, want 2", got)
	}
	if ch.table != "activities_archive" || len(ch.rows) != 2 {
		t.Fatalf("archive got table %q with %d rows", ch.table, len(ch.rows))
	}
}

func TestApplyIsIdempotent(t *testing.T) {
	t.Parallel()

	db := newScriptDB()
	s := newTestSvc(db, nil)
	user := poller.UserProfile{UserID: "u-1", Username: "kira"}

	batch := []poller.Activity{testActivity("10", 25)}
	for range 2 {
		if err := s.Apply(context.Background(), user, batch); err != nil {
			t.Fatalf("Apply: %v", err)
		}
	}

	if got := db.totals["u-1/GitHub"]; got != 25 {
		t.Fatalf("total experience = %d after replay, want 25", got)
	}
}

func TestApplyEmptyBatch(t *testing.T) {
	t.Parallel()

	s := newTestSvc(newScriptDB(), nil)
	if err := s.Apply(context.Background(), poller.UserProfile{UserID: "u-1"}, nil); err != nil {
		t.Fatalf("Apply: %v", err)
	}
}
