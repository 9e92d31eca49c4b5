// Package browser opens outbound center links (map, phone) in a local Chrome.
//
// This package handles Chrome/Chromium lifecycle management using ChromeDP.
// The browser is started lazily on the first Open and reused for every later
// link; each link gets its own tab.
//
// Key features:
//   - Thread-safe launcher shared across goroutines
//   - Automatic restart when the browser went away
//   - Action resolution with sentinel no-ops (see Perform)
package browser

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/target"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"
)

// Launcher owns one visible Chrome instance.
//
// Thread-safety:
//   - All methods use mutex locking
//   - A dead browser is replaced on the next Open
type Launcher struct {
	mu         sync.Mutex
	browserCtx context.Context    // root tab context of the running browser
	cancel     context.CancelFunc // stops browser and allocator
	headless   bool
	logger     *zap.Logger
}

// Option configures a Launcher.
type Option func(*Launcher)

// WithHeadless runs Chrome without a window.
func WithHeadless(headless bool) Option {
	return func(l *Launcher) { l.headless = headless }
}

// NewLauncher returns a launcher. No browser is started until Open.
func NewLauncher(logger *zap.Logger, opts ...Option) *Launcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	l := &Launcher{logger: logger}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Open loads url in a new tab.
//
// Flow:
//  1. Start the browser if none is running
//  2. Ask the browser target for a new tab on url
//  3. Drop the browser on failure so the next call starts a fresh one
func (l *Launcher) Open(ctx context.Context, url string) error {
	if url == "" {
		return errors.New("browser: empty url")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.browserCtx == nil || l.browserCtx.Err() != nil {
		if err := l.start(); err != nil {
			return err
		}
	}

	runCtx, cancel := context.WithCancel(l.browserCtx)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	err := chromedp.Run(runCtx, chromedp.ActionFunc(func(ctx context.Context) error {
		c := chromedp.FromContext(ctx)
		_, err := target.CreateTarget(url).Do(cdp.WithExecutor(ctx, c.Browser))
		return err
	}))
	if err != nil {
		if ctx.Err() == nil {
			l.logger.Warn("⚠️  Browser tab failed, restarting on next open", zap.Error(err))
			l.stop()
		}
		return fmt.Errorf("open %s: %w", url, err)
	}

	l.logger.Info("🌐 Opened in browser", zap.String("url", url))
	return nil
}

// start launches Chrome. Caller holds l.mu.
func (l *Launcher) start() error {
	l.stop()
	l.logger.Info("  → Starting browser...", zap.Bool("headless", l.headless))

	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:], chromedp.Flag("headless", l.headless))
	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), allocOpts...)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx, chromedp.WithLogf(l.logger.Sugar().Debugf))

	// The first Run launches the process.
	if err := chromedp.Run(browserCtx); err != nil {
		browserCancel()
		allocCancel()
		return fmt.Errorf("start browser: %w", err)
	}

	l.browserCtx = browserCtx
	l.cancel = func() {
		browserCancel()
		allocCancel()
	}
	l.logger.Info("  ✓ Browser started")
	return nil
}

// stop cancels the running browser, if any. Caller holds l.mu.
func (l *Launcher) stop() {
	if l.cancel != nil {
		l.cancel()
		l.cancel = nil
	}
	l.browserCtx = nil
}

// Close shuts the browser down. Safe to call more than once.
func (l *Launcher) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.stop()
}
