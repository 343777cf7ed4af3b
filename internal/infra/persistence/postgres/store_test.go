package postgres

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"fmt"
	"io"
	"strings"
	"sync"
	"testing"
)

// stubConn is an in-memory stand-in for a Postgres connection. It understands
// exactly the statements the store issues.
type stubConn struct {
	mu       sync.Mutex
	data     map[string]string
	execs    []string
	failExec bool
	failPing bool
}

func newStubDB() (*sql.DB, *stubConn) {
	conn := &stubConn{data: map[string]string{}}
	connector := &stubConnector{conn: conn}
	return sql.OpenDB(connector), conn
}

type stubConnector struct{ conn *stubConn }

func (c *stubConnector) Connect(context.Context) (driver.Conn, error) { return c.conn, nil }
func (c *stubConnector) Driver() driver.Driver                        { return stubDriver{} }

type stubDriver struct{}

func (stubDriver) Open(string) (driver.Conn, error) { return nil, fmt.Errorf("use connector") }

func (c *stubConn) Prepare(string) (driver.Stmt, error) { return nil, fmt.Errorf("not supported") }
func (c *stubConn) Close() error                        { return nil }
func (c *stubConn) Begin() (driver.Tx, error)           { return nil, fmt.Errorf("not supported") }

func (c *stubConn) Ping(context.Context) error {
	if c.failPing {
		return fmt.Errorf("ping fail")
	}
	return nil
}

func (c *stubConn) ExecContext(_ context.Context, query string, args []driver.NamedValue) (driver.Result, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.execs = append(c.execs, query)
	if c.failExec {
		return nil, fmt.Errorf("exec fail")
	}
	upper := strings.ToUpper(strings.TrimSpace(query))
	switch {
	case strings.HasPrefix(upper, "CREATE TABLE"):
	case strings.HasPrefix(upper, "INSERT"):
		c.data[args[0].Value.(string)] = args[1].Value.(string)
	case strings.HasPrefix(upper, "DELETE"):
		delete(c.data, args[0].Value.(string))
	default:
		return nil, fmt.Errorf("unexpected statement: %s", query)
	}
	return driver.RowsAffected(1), nil
}

func (c *stubConn) QueryContext(_ context.Context, query string, args []driver.NamedValue) (driver.Rows, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !strings.Contains(query, "SELECT payload FROM state") {
		return nil, fmt.Errorf("unexpected query: %s", query)
	}
	payload, ok := c.data[args[0].Value.(string)]
	rows := &stubRows{}
	if ok {
		rows.values = []string{payload}
	}
	return rows, nil
}

type stubRows struct {
	values []string
	pos    int
}

func (r *stubRows) Columns() []string { return []string{"payload"} }
func (r *stubRows) Close() error      { return nil }
func (r *stubRows) Next(dest []driver.Value) error {
	if r.pos >= len(r.values) {
		return io.EOF
	}
	dest[0] = r.values[r.pos]
	r.pos++
	return nil
}

func TestNewStoreEnsuresStateTable(t *testing.T) {
	db, conn := newStubDB()
	restore := OverrideSQLOpen(func(_, _ string) (*sql.DB, error) { return db, nil })
	defer restore()

	if _, err := NewStore(""); err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	var sawDDL bool
	for _, stmt := range conn.execs {
		if strings.Contains(strings.ToUpper(stmt), "CREATE TABLE") {
			sawDDL = true
		}
	}
	if !sawDDL {
		t.Fatalf("expected state table DDL, got execs: %v", conn.execs)
	}
}

func TestRoundTrip(t *testing.T) {
	ctx := context.Background()
	db, _ := newStubDB()
	restore := OverrideSQLOpen(func(_, _ string) (*sql.DB, error) { return db, nil })
	defer restore()

	store, err := NewStore("postgres://test")
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	if _, ok, err := store.Get(ctx, "cart"); err != nil || ok {
		t.Fatalf("fresh store: ok=%v err=%v", ok, err)
	}
	if err := store.Set(ctx, "cart", `[{"id":"p1"}]`); err != nil {
		t.Fatalf("set: %v", err)
	}
	payload, ok, err := store.Get(ctx, "cart")
	if err != nil || !ok || payload != `[{"id":"p1"}]` {
		t.Fatalf("get after set: payload=%q ok=%v err=%v", payload, ok, err)
	}
	if err := store.Remove(ctx, "cart"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if _, ok, _ := store.Get(ctx, "cart"); ok {
		t.Fatalf("key should be gone after remove")
	}
}

func TestNewStoreOpenError(t *testing.T) {
	restore := OverrideSQLOpen(func(_, _ string) (*sql.DB, error) {
		return nil, fmt.Errorf("open fail")
	})
	defer restore()
	if _, err := NewStore(""); err == nil || !strings.Contains(err.Error(), "open fail") {
		t.Fatalf("expected open error, got %v", err)
	}
}

func TestNewStorePingError(t *testing.T) {
	db, conn := newStubDB()
	conn.failPing = true
	restore := OverrideSQLOpen(func(_, _ string) (*sql.DB, error) { return db, nil })
	defer restore()
	if _, err := NewStore(""); err == nil || !strings.Contains(err.Error(), "ping") {
		t.Fatalf("expected ping error, got %v", err)
	}
}

func TestSetPropagatesExecError(t *testing.T) {
	db, conn := newStubDB()
	restore := OverrideSQLOpen(func(_, _ string) (*sql.DB, error) { return db, nil })
	defer restore()
	store, err := NewStore("")
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	conn.failExec = true
	if err := store.Set(context.Background(), "cart", "[]"); err == nil {
		t.Fatalf("expected exec error from Set")
	}
	if err := store.Remove(context.Background(), "cart"); err == nil {
		t.Fatalf("expected exec error from Remove")
	}
}
