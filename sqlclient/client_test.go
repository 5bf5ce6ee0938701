package sqlclient

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tuannm99/sqllab/internal/engine"
	"github.com/tuannm99/sqllab/internal/record"
	"github.com/tuannm99/sqllab/internal/storage"
	"github.com/tuannm99/sqllab/server/sqllabwire"
)

func startServer(t *testing.T, snaps storage.SnapshotStore) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = sqllabwire.NewServer(sqllabwire.ServerConfig{Snapshots: snaps}).Serve(ctx, ln)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	return ln.Addr().String()
}

func dial(t *testing.T, addr string) *Client {
	t.Helper()
	c, err := Dial(addr, time.Second)
	require.NoError(t, err)
	c.SetRWTimeout(5 * time.Second)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestClient_Roundtrip(t *testing.T) {
	ctx := context.Background()
	c := dial(t, startServer(t, nil))

	ok, err := c.CreateTable(ctx, "CREATE TABLE students (id INT PRIMARY KEY, name TEXT, age INT)")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.NotEmpty(t, c.Session())

	res, err := c.Exec("INSERT INTO students (id, name, age) VALUES (1, 'Alice', 20)")
	require.NoError(t, err)
	require.True(t, res.Success, res.Error)

	res, err = c.ExecContext(ctx, "SELECT name FROM students WHERE age > 18")
	require.NoError(t, err)
	assert.Equal(t, []record.Row{{"name": record.String("Alice")}}, res.Data)

	res, err = c.Exec("SELECT * FROM teachers")
	require.NoError(t, err, "statement failures are results, not errors")
	assert.True(t, errors.Is(res.Err, engine.ErrTableNotFound))

	tables, err := c.ListTables(ctx)
	require.NoError(t, err)
	require.Len(t, tables, 1)
	assert.Len(t, tables[0].Columns, 3)

	rows, err := c.GetTableRows(ctx, "students")
	require.NoError(t, err)
	assert.Len(t, rows, 1)

	hist, err := c.GetHistory(ctx)
	require.NoError(t, err)
	assert.Len(t, hist, 3)

	require.NoError(t, c.Reset(ctx))
	tables, err = c.ListTables(ctx)
	require.NoError(t, err)
	assert.Empty(t, tables)
}

func TestClient_ServerErrorsSurface(t *testing.T) {
	c := dial(t, startServer(t, nil))
	_, err := c.GetTableRows(context.Background(), "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "needs a table")
}

func TestClient_SessionResume(t *testing.T) {
	ctx := context.Background()
	addr := startServer(t, storage.NewMemoryStore())

	first := dial(t, addr)
	first.UseSession("lab1")
	res, err := first.Exec("CREATE TABLE notes (body TEXT)")
	require.NoError(t, err)
	require.True(t, res.Success)
	require.NoError(t, first.Close())

	second := dial(t, addr)
	second.UseSession("lab1")
	tables, err := second.ListTables(ctx)
	require.NoError(t, err)
	require.Len(t, tables, 1)
	assert.Equal(t, "notes", tables[0].Name)
	assert.Equal(t, "lab1", second.Session())
}

func TestClient_NilAndDeadline(t *testing.T) {
	var c *Client
	_, err := c.Exec("SELECT 1")
	require.Error(t, err)
	assert.NoError(t, c.Close())

	srv, cli := net.Pipe()
	defer func() { _ = srv.Close() }()
	client := NewClient(cli)
	defer func() { _ = client.Close() }()

	// nobody answers on srv
	go func() {
		var req sqllabwire.Request
		_ = sqllabwire.ReadFrame(srv, &req)
	}()
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err = client.ExecContext(ctx, "SELECT * FROM t")
	require.Error(t, err)
}
