package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/chzyer/readline"

	"github.com/tuannm99/sqllab/internal"
	"github.com/tuannm99/sqllab/internal/engine"
	"github.com/tuannm99/sqllab/internal/logging"
	"github.com/tuannm99/sqllab/internal/storage"
	"github.com/tuannm99/sqllab/sqlclient"
)

const (
	prompt     = "sqllab> "
	contPrompt = "...> "
)

const helpText = `meta commands:
  \q | quit | exit       quit
  \history [n]           statements run in this session
  \lines [n]             REPL line history (file)
  \tables                list tables
  \rows <table>          dump a table
  \reset                 drop every table and clear history
  \help                  show help

sql:
  end statement with ';'
  multiline is supported (CLI will wait until ';')`

func defaultHistoryPath() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return ".sqllab_history"
	}
	return filepath.Join(home, ".sqllab_history")
}

// runMeta handles one backslash command and reports whether to quit.
func runMeta(ctx context.Context, w io.Writer, b backend, h *History, line string) bool {
	fields := strings.Fields(line)
	cmd, args := fields[0], fields[1:]
	last := 50
	if len(args) > 0 {
		if _, err := fmt.Sscanf(args[0], "%d", &last); err != nil {
			last = 50
		}
	}

	switch cmd {
	case "\\q", "quit", "exit":
		return true
	case "\\help":
		fmt.Fprintln(w, helpText)
	case "\\history":
		lines, err := b.History(ctx)
		if err != nil {
			fmt.Fprintf(w, "error: %v\n", err)
			break
		}
		printNumbered(w, lines, last)
	case "\\lines":
		h.Print(w, last)
	case "\\tables":
		defs, err := b.Tables(ctx)
		if err != nil {
			fmt.Fprintf(w, "error: %v\n", err)
			break
		}
		printTables(w, defs)
	case "\\rows":
		if len(args) != 1 {
			fmt.Fprintln(w, "usage: \\rows <table>")
			break
		}
		if err := dumpTable(ctx, w, b, args[0]); err != nil {
			fmt.Fprintf(w, "error: %v\n", err)
		}
	case "\\reset":
		if err := b.Reset(ctx); err != nil {
			fmt.Fprintf(w, "error: %v\n", err)
			break
		}
		fmt.Fprintln(w, "OK")
	default:
		fmt.Fprintf(w, "unknown command: %s\n", line)
	}
	return false
}

func dumpTable(ctx context.Context, w io.Writer, b backend, table string) error {
	defs, err := b.Tables(ctx)
	if err != nil {
		return err
	}
	rows, err := b.Rows(ctx, table)
	if err != nil {
		return err
	}
	for _, d := range defs {
		if strings.EqualFold(d.Name, table) {
			printRows(w, d.ColumnNames(), rows)
			return nil
		}
	}
	return fmt.Errorf("no such table: %s", table)
}

func openBackend(ctx context.Context, cfg *internal.SQLLabConfig, addr, session string, timeout time.Duration) (backend, string, error) {
	if addr != "" {
		c, err := sqlclient.DialContext(ctx, addr, timeout)
		if err != nil {
			return nil, "", fmt.Errorf("dial: %w", err)
		}
		c.UseSession(session)
		return remoteBackend{c: c}, "connected to " + addr, nil
	}

	snaps, err := storage.New(storage.Backend(cfg.Storage.Backend), cfg.Storage.Dir)
	if err != nil {
		return nil, "", err
	}
	key := cfg.Storage.SnapshotKey
	if session != "" {
		key = session
	}
	eng, err := engine.Open(ctx, engine.Options{Snapshots: snaps, SnapshotKey: key})
	if err != nil {
		// engine is usable and empty; Open already logged the cause
		return localBackend{eng: eng}, "local session " + key + " (snapshot not restored)", nil
	}
	return localBackend{eng: eng}, "local session " + key, nil
}

func main() {
	var (
		cfgPath    = flag.String("config", "", "config file (yaml)")
		addr       = flag.String("addr", "", "server address; empty runs an in-process engine")
		session    = flag.String("session", "", "snapshot key to use")
		timeout    = flag.Duration("timeout", 3*time.Second, "dial timeout")
		histPath   = flag.String("history", defaultHistoryPath(), "history file path")
		histMax    = flag.Int("history-max", 2000, "max history lines loaded into memory")
		oneShotSQL = flag.String("c", "", "execute one SQL statement and exit")
	)
	flag.Parse()

	cfg, err := internal.LoadConfig(*cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	log, closeLog := logging.SetupLogger(logging.Options{Level: cfg.Log.Level, SeqURL: cfg.Log.SeqURL})
	defer closeLog()
	slog.SetDefault(log)

	ctx := context.Background()
	b, banner, err := openBackend(ctx, cfg, *addr, *session, *timeout)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
	defer func() { _ = b.Close() }()

	// one-shot mode
	if strings.TrimSpace(*oneShotSQL) != "" {
		res, err := b.Exec(ctx, *oneShotSQL)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		printResult(os.Stdout, res)
		if !res.Success {
			os.Exit(1)
		}
		return
	}

	h := NewHistory(*histPath)
	_ = h.Load(*histMax)

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          prompt,
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "readline: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = rl.Close() }()

	for _, line := range h.Lines() {
		_ = rl.SaveHistory(line)
	}

	var buf strings.Builder

	fmt.Println(banner)
	fmt.Println("type \\help for help")

	for {
		line, err := rl.Readline()
		if err == readline.ErrInterrupt {
			// Ctrl+C clears current buffer
			if buf.Len() > 0 {
				buf.Reset()
				rl.SetPrompt(prompt)
				continue
			}
			fmt.Println("^C")
			continue
		}
		if err != nil {
			// EOF
			fmt.Println()
			return
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if buf.Len() == 0 && isMetaCommand(line) {
			if runMeta(ctx, os.Stdout, b, h, line) {
				return
			}
			continue
		}

		if buf.Len() > 0 {
			buf.WriteByte('\n')
		}
		buf.WriteString(line)

		if !statementComplete(buf.String()) {
			rl.SetPrompt(contPrompt)
			continue
		}

		stmt := strings.TrimSpace(buf.String())
		buf.Reset()
		rl.SetPrompt(prompt)

		_ = h.Append(stmt)
		_ = rl.SaveHistory(compactOneLine(stmt))

		res, err := b.Exec(ctx, stmt)
		if err != nil {
			fmt.Printf("error: %v\n", err)
			continue
		}
		printResult(os.Stdout, res)
	}
}
