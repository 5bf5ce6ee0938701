package main

import (
	"context"

	"github.com/tuannm99/sqllab/internal/engine"
	"github.com/tuannm99/sqllab/internal/record"
	"github.com/tuannm99/sqllab/sqlclient"
)

// backend is what the REPL drives: an in-process engine or a server.
type backend interface {
	Exec(ctx context.Context, sql string) (*engine.Result, error)
	Tables(ctx context.Context) ([]record.TableDefinition, error)
	Rows(ctx context.Context, table string) ([]record.Row, error)
	History(ctx context.Context) ([]string, error)
	Reset(ctx context.Context) error
	Close() error
}

type localBackend struct {
	eng *engine.Engine
}

func (b localBackend) Exec(ctx context.Context, sql string) (*engine.Result, error) {
	return b.eng.Execute(ctx, sql), nil
}

func (b localBackend) Tables(context.Context) ([]record.TableDefinition, error) {
	return b.eng.ListTables(), nil
}

func (b localBackend) Rows(_ context.Context, table string) ([]record.Row, error) {
	return b.eng.GetTableRows(table), nil
}

func (b localBackend) History(context.Context) ([]string, error) {
	return b.eng.GetHistory(), nil
}

func (b localBackend) Reset(ctx context.Context) error { return b.eng.Reset(ctx) }
func (b localBackend) Close() error                    { return nil }

type remoteBackend struct {
	c *sqlclient.Client
}

func (b remoteBackend) Exec(ctx context.Context, sql string) (*engine.Result, error) {
	return b.c.ExecContext(ctx, sql)
}

func (b remoteBackend) Tables(ctx context.Context) ([]record.TableDefinition, error) {
	return b.c.ListTables(ctx)
}

func (b remoteBackend) Rows(ctx context.Context, table string) ([]record.Row, error) {
	return b.c.GetTableRows(ctx, table)
}

func (b remoteBackend) History(ctx context.Context) ([]string, error) {
	return b.c.GetHistory(ctx)
}

func (b remoteBackend) Reset(ctx context.Context) error { return b.c.Reset(ctx) }
func (b remoteBackend) Close() error                    { return b.c.Close() }
