package main

import (
	"context"
	"fmt"
	"net/url"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"centerhub/internal/config"
	"centerhub/internal/dashboard"
	"centerhub/internal/filter"
	"centerhub/internal/header"
	"centerhub/internal/health"
	"centerhub/internal/sheet"
	"centerhub/internal/storage"
	"centerhub/internal/web"
)

// app holds the components every command shares.
type app struct {
	cfg     *config.Config
	logger  *zap.Logger
	store   storage.Store
	sheets  *sheet.Client
	monitor *health.Monitor
	dash    *dashboard.Controller
}

// newApp opens the settings store and builds the dashboard controller.
// notifiers receive every notice the controller raises.
func newApp(cfg *config.Config, logger *zap.Logger, notifiers ...dashboard.Notifier) (*app, error) {
	rules, err := header.LoadRules(cfg.HeaderRulesPath)
	if err != nil {
		return nil, err
	}

	store, err := storage.Open(cfg.SettingsBackend, cfg.SettingsPath, logger)
	if err != nil {
		return nil, err
	}

	a := &app{
		cfg:     cfg,
		logger:  logger,
		store:   store,
		sheets:  sheet.NewClient(cfg.HTTPTimeout, logger, sheet.WithBaseURL(cfg.SheetBaseURL)),
		monitor: health.NewMonitor(),
	}

	a.dash, err = dashboard.New(dashboard.Options{
		Fetcher:        a.sheets,
		Store:          store,
		Rules:          rules,
		DefaultSheetID: cfg.SpreadsheetID,
		NoticeDuration: cfg.NoticeDuration,
		RefreshTimeout: cfg.HTTPTimeout,
		Notifiers:      notifiers,
		Observer:       a.monitor,
		Logger:         logger,
	})
	if err != nil {
		_ = store.Close()
		return nil, err
	}
	return a, nil
}

// Close stops the notice workers and closes the settings store.
func (a *app) Close() {
	a.dash.Close()
	if err := a.store.Close(); err != nil {
		a.logger.Warn("⚠️  Failed to close settings store", zap.Error(err))
	}
}

// load fetches the sheet once for a one-shot command.
func (a *app) load(ctx context.Context) error {
	snap, err := a.dash.Refresh(ctx)
	if err != nil {
		return fmt.Errorf("failed to load sheet %s: %w", a.dash.SheetID(), err)
	}
	a.logger.Debug("✓ Loaded centers", zap.Int("count", len(snap.Records)))
	return nil
}

// commandContext is cancelled on SIGINT/SIGTERM. withTimeout adds the
// global --timeout.
func commandContext(withTimeout bool) (context.Context, context.CancelFunc) {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	if !withTimeout {
		return ctx, stop
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	return ctx, func() {
		cancel()
		stop()
	}
}

// filterFlags are the selection flags shared by list, options and summary.
type filterFlags struct {
	search string
	values map[filter.Dimension]*string
}

func addFilterFlags(cmd *cobra.Command) *filterFlags {
	ff := &filterFlags{values: make(map[filter.Dimension]*string, len(filter.Dimensions))}
	cmd.Flags().StringVarP(&ff.search, "search", "s", "", "Search center, officer, serial or union")
	for _, d := range filter.Dimensions {
		usage := fmt.Sprintf("Filter by %s", d)
		if d == filter.TotalVoters {
			usage = "Filter by total voters: lt1500, 1500-2500 or gt2500"
		}
		ff.values[d] = cmd.Flags().String(d.Alias(), "", usage)
	}
	return ff
}

// selection converts the flags with the same rules as the HTTP query string.
func (ff *filterFlags) selection() (filter.Selection, error) {
	q := url.Values{}
	if ff.search != "" {
		q.Set("search", ff.search)
	}
	for d, v := range ff.values {
		if *v != "" {
			q.Set(d.Alias(), *v)
		}
	}
	return web.SelectionFromQuery(q)
}
