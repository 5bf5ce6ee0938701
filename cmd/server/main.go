package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/tuannm99/sqllab/internal"
	"github.com/tuannm99/sqllab/internal/logging"
	"github.com/tuannm99/sqllab/internal/storage"
	"github.com/tuannm99/sqllab/server/sqllabwire"
)

func main() {
	var (
		cfgPath = flag.String("config", "", "config file (yaml)")
		addr    = flag.String("addr", "", "listen address (overrides server.addr)")
		dataDir = flag.String("data-dir", "", "snapshot directory (overrides storage.dir)")
		noStore = flag.Bool("ephemeral", false, "keep sessions in memory only")
	)
	flag.Parse()

	cfg, err := internal.LoadConfig(*cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	if *addr != "" {
		cfg.Server.Addr = *addr
	}
	if *dataDir != "" {
		cfg.Storage.Dir = *dataDir
	}

	level := cfg.Log.Level
	if cfg.Server.Debug {
		level = "debug"
	}
	log, closeLog := logging.SetupLogger(logging.Options{Level: level, SeqURL: cfg.Log.SeqURL, Source: cfg.Server.Debug})
	defer closeLog()
	slog.SetDefault(log)

	var snaps storage.SnapshotStore
	if !*noStore {
		snaps, err = storage.New(storage.Backend(cfg.Storage.Backend), cfg.Storage.Dir)
		if err != nil {
			log.Error("storage init failed", "err", err)
			os.Exit(1)
		}
	}

	log.Info("starting", "app", cfg.AppName, "storage", cfg.Storage.Backend, "dir", cfg.Storage.Dir)
	if err := sqllabwire.Run(sqllabwire.ServerConfig{
		Addr:      cfg.Server.Addr,
		Snapshots: snaps,
		Logger:    log,
	}); err != nil {
		log.Error("server stopped", "err", err)
		os.Exit(1)
	}
}
