package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"centerhub/internal/dashboard"
	"centerhub/internal/summary"
	"centerhub/internal/telegram"
	"centerhub/internal/web"
)

var (
	serveAddr    string
	serveOrigins []string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API, the Telegram bot and the periodic refresh",
	Long: `Starts the dashboard service:
  1. Loads the active spreadsheet
  2. Serves the JSON API and /health on LISTEN_ADDR
  3. Refreshes every REFRESH_INTERVAL (when set)
  4. Answers Telegram commands and posts notices (when TELEGRAM_* is set)`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (default LISTEN_ADDR)")
	serveCmd.Flags().StringSliceVar(&serveOrigins, "cors-origin", nil, "Allowed CORS origins (default any)")
}

func runServe(cmd *cobra.Command, args []string) error {
	logger.Info("🚀 Starting centerhub...")

	tg := telegram.NewClient(cfg.TelegramBotToken, cfg.TelegramChatID, logger,
		telegram.WithDebugMode(cfg.DebugMode))
	var notifiers []dashboard.Notifier
	if tg != nil {
		notifiers = append(notifiers, tg)
	}

	a, err := newApp(cfg, logger, notifiers...)
	if err != nil {
		return err
	}
	defer a.Close()

	addr := cfg.ListenAddr
	if serveAddr != "" {
		addr = serveAddr
	}
	renderer := summary.NewRenderer()
	opts := []web.Option{
		web.WithHealth(a.monitor.Handler()),
		web.WithEditURL(a.sheets.EditURL),
	}
	if len(serveOrigins) > 0 {
		opts = append(opts, web.WithAllowedOrigins(serveOrigins...))
	}
	srv := web.NewServer(a.dash, renderer, logger, opts...)
	bot := telegram.NewBot(tg, a.dash, renderer, logger)

	ctx, stop := commandContext(false)
	defer stop()

	logger.Info("✓ Configuration loaded",
		zap.String("sheet", a.dash.SheetID()),
		zap.String("settings", cfg.SettingsBackend),
		zap.Duration("refresh_interval", cfg.RefreshInterval),
		zap.Bool("telegram", tg != nil),
	)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		a.dash.Run(ctx, cfg.RefreshInterval)
		return nil
	})
	g.Go(func() error {
		bot.HandleUpdates(ctx)
		return nil
	})
	g.Go(func() error {
		return srv.ListenAndServe(ctx, addr)
	})

	if err := g.Wait(); err != nil {
		logger.Error("❌ Service stopped with error", zap.Error(err))
		return err
	}
	logger.Info("👋 centerhub stopped")
	return nil
}
