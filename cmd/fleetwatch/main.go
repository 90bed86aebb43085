package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"runtime"
	"runtime/debug"
	"strings"
	"syscall"

	"github.com/darshan-rambhia/fleetwatch/internal/api"
	"github.com/darshan-rambhia/fleetwatch/internal/config"
	"github.com/darshan-rambhia/fleetwatch/internal/fleet"
	"github.com/darshan-rambhia/fleetwatch/internal/keydecode"
	"github.com/darshan-rambhia/fleetwatch/internal/store"
	"golang.org/x/sync/errgroup"
)

// @title Fleetwatch API
// @version 1.0
// @description TrueNAS fleet monitoring: metric ingestion, entity views and health summaries
// @host localhost:8000
// @BasePath /

var (
	version   = "dev"
	commit    = "none"
	buildTime = "unknown"
)

// buildInfo returns version, commit, build time, and VCS details from the
// embedded Go build info. ldflags-injected values take priority; VCS info
// from debug.ReadBuildInfo fills in anything left as default.
func buildInfo() (ver, sha, built, dirty string) {
	ver = version
	sha = commit
	built = buildTime
	dirty = "clean"

	info, ok := debug.ReadBuildInfo()
	if !ok {
		return
	}

	for _, s := range info.Settings {
		switch s.Key {
		case "vcs.revision":
			if sha == "none" {
				sha = s.Value
			}
		case "vcs.time":
			if built == "unknown" {
				built = s.Value
			}
		case "vcs.modified":
			if s.Value == "true" {
				dirty = "dirty"
			}
		}
	}

	return
}

func main() {
	configPath := flag.String("config", "", "path to fleetwatch.yml config file")
	showVersion := flag.Bool("version", false, "print version and exit")
	hashKey := flag.Bool("hash-key", false, "read a webhook key from stdin, print its bcrypt hash and exit")
	flag.Parse()

	ver, sha, built, dirty := buildInfo()

	if *showVersion {
		fmt.Printf("fleetwatch %s\n  commit:    %s (%s)\n  built:     %s\n  go:        %s\n  platform:  %s/%s\n",
			ver, sha, dirty, built, runtime.Version(), runtime.GOOS, runtime.GOARCH)
		os.Exit(0)
	}

	if *hashKey {
		if err := printKeyHash(); err != nil {
			fmt.Fprintf(os.Stderr, "error: %s\n", err)
			os.Exit(1)
		}
		os.Exit(0)
	}

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		if errors.Is(err, config.ErrConfigFileNotFound) {
			fmt.Fprintf(os.Stderr, "error: %s\n\n", err)
			fmt.Fprintf(os.Stderr, "Copy the example config to get started:\n")
			fmt.Fprintf(os.Stderr, "  cp fleetwatch.example.yml %s\n", *configPath)
		} else {
			fmt.Fprintf(os.Stderr, "error: loading config (%s): %s\n", *configPath, err)
		}
		os.Exit(1)
	}

	setupLogging(cfg.LogLevel, cfg.LogFormat)

	slog.Info("starting fleetwatch",
		"version", ver,
		"commit", sha,
		"built", built,
		"dirty", dirty,
		"go", runtime.Version(),
		"listen", cfg.Listen,
		"decoder", cfg.Decoder,
	)
	if cfg.Webhook.APIKeyHash == "" {
		slog.Warn("webhook API key not set, ingestion endpoint is unprotected")
	}

	// Initialize store
	st, err := store.New(cfg.DBPath)
	if err != nil {
		slog.Error("opening database", "error", err)
		os.Exit(1)
	}
	defer st.Close()

	dec, err := keydecode.New(cfg.Decoder)
	if err != nil {
		slog.Error("building decoder", "error", err)
		os.Exit(1)
	}
	svc := fleet.New(st, dec)

	// Setup context with signal handling
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	g, ctx := errgroup.WithContext(ctx)

	server := api.NewServer(cfg.Listen, svc, api.Options{
		APIKeyHash:         cfg.Webhook.APIKeyHash,
		DefaultWindowHours: cfg.DefaultWindowHours,
		ShutdownTimeout:    cfg.ShutdownTimeout.Duration,
	})
	g.Go(func() error { return server.Run(ctx) })

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		slog.Error("fatal error", "error", err)
	}

	slog.Info("fleetwatch stopped gracefully")
}

func setupLogging(level, format string) {
	var logLevel slog.Level
	switch level {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: logLevel}
	var handler slog.Handler
	if format == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}
	slog.SetDefault(slog.New(handler))
}

// printKeyHash reads one line from stdin so the key never shows up in the
// process list or shell history.
func printKeyHash() error {
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil && line == "" {
		return fmt.Errorf("reading key from stdin: %w", err)
	}
	key := strings.TrimSpace(line)
	if key == "" {
		return errors.New("empty key")
	}
	hash, err := config.HashAPIKey(key)
	if err != nil {
		return err
	}
	fmt.Println(hash)
	return nil
}
