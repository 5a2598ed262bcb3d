package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	vitae "github.com/alnah/go-vitae"
	"github.com/alnah/go-vitae/internal/config"
	"github.com/alnah/go-vitae/internal/fileutil"
)

// rebuildDebounce coalesces bursts of filesystem events (editors write
// several times per save) into one rebuild.
const rebuildDebounce = 250 * time.Millisecond

// runServe builds the site, serves it over HTTP, and rebuilds whenever a
// content input changes. Blocks until the context is canceled.
func runServe(ctx context.Context, args []string, deps *Dependencies) error {
	flags, _, err := parseBuildFlags("serve", args)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBadFlags, err)
	}

	cfg, err := loadConfig(flags.config)
	if err != nil {
		return err
	}
	if err := applyOverrides(&cfg, flags); err != nil {
		return err
	}

	log := newLogger(deps, flags)
	svc, err := vitae.New(cfg, vitae.WithLogger(log))
	if err != nil {
		return err
	}
	defer func() { _ = svc.Close() }()

	// Initial build so there is something to serve.
	if report, err := svc.Build(ctx); err != nil {
		return err
	} else {
		printReport(deps, flags, cfg.Output.Dir, report)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	for _, path := range watchPaths(cfg, flags.config) {
		// Missing optional inputs simply are not watched.
		if err := watcher.Add(path); err != nil {
			log.Debug("not watching", "path", path, "error", err)
		}
	}

	server := &http.Server{
		Addr:    cfg.Serve.Addr,
		Handler: http.FileServer(http.Dir(cfg.Output.Dir)),
	}
	serveErr := make(chan error, 1)
	go func() { serveErr <- server.ListenAndServe() }()

	fmt.Fprintf(deps.Stdout, "serving %s at http://%s\n", cfg.Output.Dir, cfg.Serve.Addr)

	watchLoop(ctx, watcher, log, func() {
		report, err := svc.Build(ctx)
		if err != nil {
			log.Error("rebuild failed", "error", err)
			return
		}
		log.Info("rebuilt", "pages", len(report.Pages), "issues", len(report.Issues))
	})

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down server: %w", err)
	}

	select {
	case err := <-serveErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	default:
	}
	return nil
}

// watchLoop dispatches debounced rebuilds until the context is canceled.
func watchLoop(ctx context.Context, watcher *fsnotify.Watcher, log *slog.Logger, rebuild func()) {
	var timer *time.Timer
	pending := make(chan struct{}, 1)

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			log.Debug("change detected", "path", event.Name, "op", event.Op.String())
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(rebuildDebounce, func() {
				select {
				case pending <- struct{}{}:
				default:
				}
			})
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			log.Error("watch error", "error", err)
		case <-pending:
			rebuild()
		}
	}
}

// watchPaths lists everything that should trigger a rebuild on change.
func watchPaths(cfg config.Config, configPath string) []string {
	paths := []string{
		cfg.Content.CV,
		filepath.Dir(cfg.Content.CV),
		cfg.Content.Bibliography,
		cfg.Content.Meta,
	}
	for _, dir := range []string{cfg.Content.PagesDir, cfg.Content.StaticDir, cfg.Content.PDFDir} {
		if fileutil.DirExists(dir) {
			paths = append(paths, dir)
		}
	}
	if configPath != "" {
		paths = append(paths, configPath)
	}
	return paths
}
