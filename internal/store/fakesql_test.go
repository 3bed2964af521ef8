package store

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"io"
	"regexp"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// fakeSQL is a database/sql connector that records every statement and
// answers from canned rows, so GormStore's SQL and transaction handling can
// be checked without a server.
type fakeSQL struct {
	mu      sync.Mutex
	stmts   []string
	args    [][]any
	nextID  int64
	updated int64
	rows    map[string]fakeRows
	failOn  string
	failErr error
}

type fakeRows struct {
	cols []string
	vals [][]driver.Value
}

func newFakeSQL() *fakeSQL {
	return &fakeSQL{updated: 1, rows: map[string]fakeRows{}}
}

func (f *fakeSQL) open(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sql.OpenDB(f)}), &gorm.Config{
		DisableAutomaticPing: true,
		Logger:               logger.Discard,
		TranslateError:       true,
	})
	require.NoError(t, err)
	return db
}

// statements returns what ran, with BEGIN/COMMIT/ROLLBACK as markers.
func (f *fakeSQL) statements() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string{}, f.stmts...)
}

// find returns the first statement containing fragment and its arguments.
func (f *fakeSQL) find(fragment string) (string, []any, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, s := range f.stmts {
		if strings.Contains(s, fragment) {
			return s, f.args[i], true
		}
	}
	return "", nil, false
}

func (f *fakeSQL) record(query string, args []driver.NamedValue) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	vals := make([]any, len(args))
	for i, a := range args {
		vals[i] = a.Value
	}
	f.stmts = append(f.stmts, query)
	f.args = append(f.args, vals)
	if f.failOn != "" && strings.Contains(query, f.failOn) {
		return f.failErr
	}
	return nil
}

var fromTable = regexp.MustCompile(`FROM "(\w+)"`)

func (f *fakeSQL) result(query string) driver.Rows {
	f.mu.Lock()
	defer f.mu.Unlock()
	if i := strings.Index(query, " RETURNING "); i >= 0 {
		var cols []string
		var row []driver.Value
		for _, c := range strings.Split(query[i+len(" RETURNING "):], ",") {
			f.nextID++
			cols = append(cols, strings.Trim(strings.TrimSpace(c), `"`))
			row = append(row, f.nextID)
		}
		return &rowsIter{cols: cols, vals: [][]driver.Value{row}}
	}
	if m := fromTable.FindStringSubmatch(query); m != nil {
		if r, ok := f.rows[m[1]]; ok {
			return &rowsIter{cols: r.cols, vals: r.vals}
		}
	}
	return &rowsIter{}
}

func (f *fakeSQL) Connect(context.Context) (driver.Conn, error) { return &fakeConn{db: f}, nil }
func (f *fakeSQL) Driver() driver.Driver                       { return fakeDriver{db: f} }

type fakeDriver struct{ db *fakeSQL }

func (d fakeDriver) Open(string) (driver.Conn, error) { return &fakeConn{db: d.db}, nil }

type fakeConn struct{ db *fakeSQL }

func (c *fakeConn) Prepare(string) (driver.Stmt, error) {
	return nil, errors.New("fakesql: prepared statements are not supported")
}
func (c *fakeConn) Close() error              { return nil }
func (c *fakeConn) Begin() (driver.Tx, error) { return c.BeginTx(context.Background(), driver.TxOptions{}) }

func (c *fakeConn) BeginTx(context.Context, driver.TxOptions) (driver.Tx, error) {
	if err := c.db.record("BEGIN", nil); err != nil {
		return nil, err
	}
	return fakeTx{db: c.db}, nil
}

func (c *fakeConn) CheckNamedValue(*driver.NamedValue) error { return nil }

func (c *fakeConn) ExecContext(_ context.Context, query string, args []driver.NamedValue) (driver.Result, error) {
	if err := c.db.record(query, args); err != nil {
		return nil, err
	}
	c.db.mu.Lock()
	defer c.db.mu.Unlock()
	return driver.RowsAffected(c.db.updated), nil
}

func (c *fakeConn) QueryContext(_ context.Context, query string, args []driver.NamedValue) (driver.Rows, error) {
	if err := c.db.record(query, args); err != nil {
		return nil, err
	}
	return c.db.result(query), nil
}

type fakeTx struct{ db *fakeSQL }

func (t fakeTx) Commit() error   { return t.db.record("COMMIT", nil) }
func (t fakeTx) Rollback() error { return t.db.record("ROLLBACK", nil) }

type rowsIter struct {
	cols []string
	vals [][]driver.Value
	i    int
}

func (r *rowsIter) Columns() []string { return r.cols }
func (r *rowsIter) Close() error      { return nil }

func (r *rowsIter) Next(dest []driver.Value) error {
	if r.i >= len(r.vals) {
		return io.EOF
	}
	copy(dest, r.vals[r.i])
	r.i++
	return nil
}
