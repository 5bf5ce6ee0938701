package sqllabwire

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"os/signal"
	"syscall"

	"github.com/google/uuid"

	"github.com/tuannm99/sqllab/internal/engine"
	"github.com/tuannm99/sqllab/internal/storage"
)

type ServerConfig struct {
	Addr      string
	Snapshots storage.SnapshotStore // nil keeps sessions in memory only
	Logger    *slog.Logger
}

type Server struct {
	snaps storage.SnapshotStore
	log   *slog.Logger
}

func NewServer(sc ServerConfig) *Server {
	log := sc.Logger
	if log == nil {
		log = slog.Default()
	}
	return &Server{snaps: sc.Snapshots, log: log}
}

// Run listens on sc.Addr and serves until SIGINT or SIGTERM.
func Run(sc ServerConfig) error {
	ln, err := net.Listen("tcp", sc.Addr)
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	s := NewServer(sc)
	s.log.Info("sqllab tcp server listening", "addr", ln.Addr().String(), "persist", sc.Snapshots != nil)
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is done. It closes ln.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	defer func() { _ = ln.Close() }()

	go func() {
		<-ctx.Done()
		_ = ln.Close()
	}()

	for {
		conn, err := ln.Accept()
		if err != nil {
			select {
			case <-ctx.Done():
				return nil
			default:
			}
			if errors.Is(err, net.ErrClosed) {
				return nil
			}
			s.log.Warn("sqllabwire: accept failed", "err", err)
			continue
		}
		go s.handleConn(ctx, conn)
	}
}

// session is the per-connection engine.
type session struct {
	key string
	eng *engine.Engine
}

func (s *Server) handleConn(ctx context.Context, conn net.Conn) {
	defer func() { _ = conn.Close() }()

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			_ = conn.Close()
		case <-done:
		}
	}()

	remote := conn.RemoteAddr().String()
	s.log.Debug("sqllabwire: connection opened", "remote", remote)

	sess := &session{}
	for {
		var req Request
		if err := ReadFrame(conn, &req); err != nil {
			if !errors.Is(err, io.EOF) && !errors.Is(err, net.ErrClosed) {
				s.log.Debug("sqllabwire: read failed", "remote", remote, "err", err)
			}
			return
		}

		resp := s.dispatch(ctx, sess, req)
		if err := WriteFrame(conn, resp); err != nil {
			s.log.Debug("sqllabwire: write failed", "remote", remote, "err", err)
			return
		}
	}
}

// bind makes sure sess has an engine for key. An empty key keeps the
// current engine or, on first use, opens one under a fresh session id.
func (s *Server) bind(ctx context.Context, sess *session, key string) error {
	if key == "" {
		if sess.eng != nil {
			return nil
		}
		key = uuid.NewString()
	}
	if sess.eng != nil && sess.key == key {
		return nil
	}
	if err := storage.ValidateKey(key); err != nil {
		return err
	}

	eng, err := engine.Open(ctx, engine.Options{
		Snapshots:   s.snaps,
		SnapshotKey: key,
		Logger:      s.log.With("session", key),
	})
	if err != nil {
		// the engine is usable and empty
		s.log.Warn("sqllabwire: session restored empty", "session", key, "err", err)
	}
	sess.key, sess.eng = key, eng
	return nil
}

func (s *Server) dispatch(ctx context.Context, sess *session, req Request) Response {
	resp := Response{ID: req.ID}
	if err := s.bind(ctx, sess, req.Session); err != nil {
		resp.Error = err.Error()
		return resp
	}
	resp.Session = sess.key
	eng := sess.eng

	switch req.Op {
	case OpExec, "":
		resp.Result = eng.Execute(ctx, req.SQL)
	case OpCreateTable:
		resp.OK = eng.CreateTable(ctx, req.SQL)
	case OpTables:
		resp.Tables = eng.ListTables()
	case OpRows:
		if req.Table == "" {
			resp.Error = "sqllabwire: rows needs a table"
			break
		}
		resp.Rows = eng.GetTableRows(req.Table)
	case OpHistory:
		resp.History = eng.GetHistory()
	case OpReset:
		if err := eng.Reset(ctx); err != nil {
			resp.Error = err.Error()
			break
		}
		resp.OK = true
	default:
		resp.Error = fmt.Sprintf("sqllabwire: unknown op %q", req.Op)
	}
	return resp
}
