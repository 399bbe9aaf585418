// Command pd-server serves the PredictionSink gRPC service, storing each
// submission as a run in the SQLite store.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/banshee-data/pdwriter/internal/config"
	"github.com/banshee-data/pdwriter/internal/predstore"
	"github.com/banshee-data/pdwriter/internal/submission"
	"github.com/banshee-data/pdwriter/internal/version"
)

type sink struct {
	server *submission.Server
	store  *predstore.Store
	addr   string
}

func (s *sink) Close() {
	s.server.Stop()
	if err := s.store.Close(); err != nil {
		log.Printf("[Submission] close store: %v", err)
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	s, err := newSink(os.Args[1:], os.Stdout)
	if err != nil {
		log.Fatalf("pd-server: %v", err)
	}
	if s == nil {
		return
	}
	if err := s.server.Start(s.addr); err != nil {
		s.store.Close()
		log.Fatalf("pd-server: %v", err)
	}

	<-ctx.Done()
	log.Printf("[Submission] shutting down")
	s.Close()
}

// newSink parses flags and opens the store. It returns nil, nil when the
// invocation only printed the version.
func newSink(args []string, stdout io.Writer) (*sink, error) {
	fs := flag.NewFlagSet("pd-server", flag.ContinueOnError)
	fs.SetOutput(stdout)
	var (
		configPath  = fs.String("config", "", "writer config JSON (optional)")
		dbPath      = fs.String("db", "", "path to sqlite db (overrides config)")
		listen      = fs.String("listen", "", "gRPC listen address (overrides config)")
		showVersion = fs.Bool("version", false, "print version and exit")
	)
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if *showVersion {
		fmt.Fprintln(stdout, version.String("pd-server"))
		return nil, nil
	}

	cfg := config.DefaultWriterConfig()
	if *configPath != "" {
		loaded, err := config.LoadWriterConfig(*configPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	if *dbPath != "" {
		cfg.DBPath = dbPath
	}
	if *listen != "" {
		cfg.ListenAddr = listen
	}

	store, err := predstore.Open(cfg.GetDBPath())
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	srv := submission.NewServer(store,
		submission.WithTask(cfg.GetTask()),
		submission.WithValidation(cfg.GetValidationMode()),
		submission.WithMaxObjectsPerFrame(cfg.GetMaxObjectsPerFrame()),
	)
	return &sink{server: srv, store: store, addr: cfg.GetListenAddr()}, nil
}
