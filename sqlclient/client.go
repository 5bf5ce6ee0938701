package sqlclient

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/tuannm99/sqllab/internal/engine"
	"github.com/tuannm99/sqllab/internal/record"
	"github.com/tuannm99/sqllab/server/sqllabwire"
)

// Client is a simple synchronous client.
// It locks send/recv so you can call it concurrently but calls serialize.
type Client struct {
	conn net.Conn
	mu   sync.Mutex
	id   atomic.Uint64

	session string

	// Optional per-request timeout (0 = no timeout).
	rwTimeout time.Duration
}

func Dial(addr string, timeout time.Duration) (*Client, error) {
	return DialContext(context.Background(), addr, timeout)
}

func DialContext(ctx context.Context, addr string, timeout time.Duration) (*Client, error) {
	d := net.Dialer{Timeout: timeout}
	c, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, err
	}
	return NewClient(c), nil
}

// NewClient wraps an established connection.
func NewClient(conn net.Conn) *Client {
	return &Client{conn: conn}
}

// SetRWTimeout sets a per-request read/write deadline.
func (c *Client) SetRWTimeout(d time.Duration) {
	if c == nil {
		return
	}
	c.rwTimeout = d
}

// UseSession binds later requests to a snapshot key on the server. An
// empty key lets the server pick one.
func (c *Client) UseSession(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.session = key
}

// Session reports the session the server last bound this client to.
func (c *Client) Session() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session
}

func (c *Client) Close() error {
	if c == nil || c.conn == nil {
		return nil
	}
	return c.conn.Close()
}

func (c *Client) Exec(sql string) (*engine.Result, error) {
	return c.ExecContext(context.Background(), sql)
}

// ExecContext runs one statement. A failed statement is a Result with
// Success false, not an error; errors are transport or protocol failures.
func (c *Client) ExecContext(ctx context.Context, sql string) (*engine.Result, error) {
	resp, err := c.call(ctx, sqllabwire.Request{Op: sqllabwire.OpExec, SQL: sql})
	if err != nil {
		return nil, err
	}
	if resp.Result == nil {
		return nil, fmt.Errorf("sqlclient: response %d has no result", resp.ID)
	}
	return resp.Result, nil
}

func (c *Client) CreateTable(ctx context.Context, sql string) (bool, error) {
	resp, err := c.call(ctx, sqllabwire.Request{Op: sqllabwire.OpCreateTable, SQL: sql})
	if err != nil {
		return false, err
	}
	return resp.OK, nil
}

func (c *Client) ListTables(ctx context.Context) ([]record.TableDefinition, error) {
	resp, err := c.call(ctx, sqllabwire.Request{Op: sqllabwire.OpTables})
	if err != nil {
		return nil, err
	}
	return resp.Tables, nil
}

func (c *Client) GetTableRows(ctx context.Context, table string) ([]record.Row, error) {
	resp, err := c.call(ctx, sqllabwire.Request{Op: sqllabwire.OpRows, Table: table})
	if err != nil {
		return nil, err
	}
	return resp.Rows, nil
}

func (c *Client) GetHistory(ctx context.Context) ([]string, error) {
	resp, err := c.call(ctx, sqllabwire.Request{Op: sqllabwire.OpHistory})
	if err != nil {
		return nil, err
	}
	return resp.History, nil
}

func (c *Client) Reset(ctx context.Context) error {
	_, err := c.call(ctx, sqllabwire.Request{Op: sqllabwire.OpReset})
	return err
}

func (c *Client) call(ctx context.Context, req sqllabwire.Request) (*sqllabwire.Response, error) {
	if c == nil || c.conn == nil {
		return nil, fmt.Errorf("sqlclient: nil client")
	}

	req.ID = c.id.Add(1)

	c.mu.Lock()
	defer c.mu.Unlock()

	req.Session = c.session

	if err := c.applyDeadline(ctx); err != nil {
		return nil, err
	}
	defer func() {
		// Clear deadline after request so idle connection doesn't expire.
		_ = c.conn.SetDeadline(time.Time{})
	}()

	if err := sqllabwire.WriteFrame(c.conn, req); err != nil {
		return nil, err
	}

	var resp sqllabwire.Response
	if err := sqllabwire.ReadFrame(c.conn, &resp); err != nil {
		return nil, err
	}

	if resp.ID != req.ID {
		return nil, fmt.Errorf("sqlclient: response id mismatch: got=%d want=%d", resp.ID, req.ID)
	}
	if resp.Error != "" {
		return nil, errors.New(resp.Error)
	}
	if resp.Session != "" {
		c.session = resp.Session
	}
	return &resp, nil
}

func (c *Client) applyDeadline(ctx context.Context) error {
	// Prefer context deadline if present; otherwise use rwTimeout.
	if dl, ok := ctx.Deadline(); ok {
		return c.conn.SetDeadline(dl)
	}
	if c.rwTimeout > 0 {
		return c.conn.SetDeadline(time.Now().Add(c.rwTimeout))
	}
	return nil
}
