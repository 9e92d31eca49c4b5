// Package dashboard owns the live state of the center dashboard: the active
// spreadsheet, the last good record set, the user's filter selection and the
// current notice.
//
// State flow:
//
//	Fetch → Ingest → Replace snapshot → Queries read the snapshot
//
// Thread-safety:
//   - All state sits behind one RWMutex and is replaced wholesale
//   - Readers always get copies; nothing handed out aliases controller state
//   - Refreshes of the same spreadsheet are coalesced with singleflight
//   - Every refresh carries a sequence number; an older result never
//     overwrites a newer one
package dashboard

import (
	"context"
	stderrors "errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"centerhub/internal/center"
	"centerhub/internal/csvparse"
	apperrors "centerhub/internal/errors"
	"centerhub/internal/filter"
	"centerhub/internal/header"
	"centerhub/internal/sheet"
	"centerhub/internal/storage"
)

// ErrStale is returned by a refresh whose result was superseded by a newer
// refresh or a source change before it could be applied.
var ErrStale = stderrors.New("refresh result superseded")

// Fetcher downloads the CSV export of a spreadsheet.
type Fetcher interface {
	Fetch(ctx context.Context, id string) (string, error)
}

// Observer is told about every refresh outcome. health.Monitor implements it.
type Observer interface {
	RecordRefresh(records int, err error)
}

// Snapshot is one successfully applied refresh.
type Snapshot struct {
	RefreshID string          `json:"refreshId"`
	Seq       uint64          `json:"seq"`
	SheetID   string          `json:"sheetId"`
	Records   []center.Record `json:"records"`
	FetchedAt time.Time       `json:"fetchedAt"`
}

// Options configures a Controller.
type Options struct {
	Fetcher        Fetcher
	Store          storage.Store
	Rules          []header.Rule // nil means header.DefaultRules()
	DefaultSheetID string
	NoticeDuration time.Duration
	RefreshTimeout time.Duration // Bounds one shared fetch; 0 means no bound
	Notifiers      []Notifier
	Observer       Observer
	Logger         *zap.Logger
	Clock          func() time.Time
}

// Controller is the single owner of dashboard state.
type Controller struct {
	fetcher   Fetcher
	store     storage.Store
	rules     []header.Rule
	observer  Observer
	logger    *zap.Logger
	now       func() time.Time
	noticeTTL time.Duration
	timeout   time.Duration

	dispatch *dispatcher
	group    singleflight.Group
	seq      atomic.Uint64

	mu      sync.RWMutex
	sheetID string
	snap    Snapshot
	applied uint64
	sel     filter.Selection
	notice  Notice
}

// New creates a controller. The spreadsheet id is read from the store,
// falling back to opts.DefaultSheetID. No data is fetched until Refresh,
// Sync or Run is called.
func New(opts Options) (*Controller, error) {
	if opts.Fetcher == nil {
		return nil, stderrors.New("dashboard: fetcher is required")
	}
	if opts.Store == nil {
		return nil, stderrors.New("dashboard: settings store is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	rules := opts.Rules
	if rules == nil {
		rules = header.DefaultRules()
	}
	clock := opts.Clock
	if clock == nil {
		clock = time.Now
	}
	ttl := opts.NoticeDuration
	if ttl <= 0 {
		ttl = DefaultNoticeDuration
	}

	sheetID, err := storage.SheetID(opts.Store, opts.DefaultSheetID)
	if err != nil {
		logger.Warn("⚠️  Could not read stored sheet id, using default", zap.Error(err))
	}
	if sheetID == "" {
		return nil, apperrors.NewInvalidSourceError(sheetID)
	}

	c := &Controller{
		fetcher:   opts.Fetcher,
		store:     opts.Store,
		rules:     rules,
		observer:  opts.Observer,
		logger:    logger,
		now:       clock,
		noticeTTL: ttl,
		timeout:   opts.RefreshTimeout,
		sheetID:   sheetID,
		snap:      Snapshot{SheetID: sheetID, Records: []center.Record{}},
		sel:       filter.NewSelection(),
	}
	if len(opts.Notifiers) > 0 {
		c.dispatch = newDispatcher(opts.Notifiers, 2, logger)
	}
	return c, nil
}

// Close stops notice delivery, waiting for queued notices to go out.
func (c *Controller) Close() {
	if c.dispatch != nil {
		c.dispatch.close()
	}
}

// Refresh fetches the active spreadsheet and replaces the record set.
// On failure the previous records stay in place and an error notice is raised.
//
// Concurrent callers share one fetch. The shared fetch is detached from the
// caller that started it and bounded by the refresh timeout; a caller whose
// ctx ends stops waiting without cutting the fetch short for the others.
func (c *Controller) Refresh(ctx context.Context) (Snapshot, error) {
	id := c.SheetID()
	ch := c.group.DoChan(id, func() (interface{}, error) {
		fetchCtx := context.WithoutCancel(ctx)
		if c.timeout > 0 {
			var cancel context.CancelFunc
			fetchCtx, cancel = context.WithTimeout(fetchCtx, c.timeout)
			defer cancel()
		}
		return c.refresh(fetchCtx, id)
	})

	select {
	case <-ctx.Done():
		return c.Snapshot(), ctx.Err()
	case res := <-ch:
		if res.Shared {
			c.logger.Debug("  ↺ Joined in-flight refresh", zap.String("sheet", id))
		}
		if res.Err != nil {
			return c.Snapshot(), res.Err
		}
		return cloneSnapshot(res.Val.(Snapshot)), nil
	}
}

// Sync is a user-requested Refresh. A successful sync raises a success notice.
func (c *Controller) Sync(ctx context.Context) (Snapshot, error) {
	snap, err := c.Refresh(ctx)
	if err == nil {
		c.raise(MsgRefreshed, KindSuccess)
	}
	return snap, err
}

func (c *Controller) refresh(ctx context.Context, id string) (Snapshot, error) {
	seq := c.seq.Add(1)
	refreshID := uuid.NewString()
	log := c.logger.With(zap.String("refresh", refreshID), zap.Uint64("seq", seq), zap.String("sheet", id))

	log.Info("🔄 Refreshing center data")
	text, err := c.fetcher.Fetch(ctx, id)
	if err != nil {
		log.Error("❌ Failed to load center data", zap.Error(err))
		c.fail(id, err)
		return Snapshot{}, err
	}

	rows := csvparse.Parse(text)
	if len(rows) == 0 {
		log.Warn("⚠️  Sheet export is empty, keeping previous records")
		snap := c.Snapshot()
		c.observe(len(snap.Records), nil)
		return snap, nil
	}

	fetchedAt := c.now()
	snap := Snapshot{
		RefreshID: refreshID,
		Seq:       seq,
		SheetID:   id,
		Records:   center.Build(rows, c.rules, fetchedAt),
		FetchedAt: fetchedAt,
	}

	c.mu.Lock()
	if seq <= c.applied || id != c.sheetID {
		c.mu.Unlock()
		log.Debug("  ⏭️  Discarding stale refresh result")
		return Snapshot{}, ErrStale
	}
	c.snap = snap
	c.applied = seq
	c.mu.Unlock()

	log.Info("✅ Center data updated", zap.Int("records", len(snap.Records)))
	c.observe(len(snap.Records), nil)
	return cloneSnapshot(snap), nil
}

// fail raises the load-failure notice unless the source changed meanwhile
// or the fetch was canceled rather than failed.
func (c *Controller) fail(id string, err error) {
	if stderrors.Is(err, context.Canceled) {
		return
	}
	c.observe(len(c.Snapshot().Records), err)
	if id != c.SheetID() {
		return
	}
	c.raise(MsgLoadFailed, KindError)
}

func (c *Controller) observe(n int, err error) {
	if c.observer != nil {
		c.observer.RecordRefresh(n, err)
	}
}

// UpdateSource points the dashboard at another spreadsheet.
//
// input may be a sheet link or a bare id. Invalid input raises a notice and
// changes nothing. A valid id is persisted and becomes active; the caller
// decides when to refresh.
func (c *Controller) UpdateSource(input string) (string, error) {
	id, err := sheet.ExtractID(input)
	if err != nil {
		c.raise(MsgInvalidSource, KindError)
		return "", err
	}
	if err := c.store.Set(storage.SheetIDKey, id); err != nil {
		c.logger.Error("❌ Failed to persist sheet id", zap.Error(err))
		return "", err
	}

	c.mu.Lock()
	c.sheetID = id
	c.mu.Unlock()

	c.logger.Info("📝 Sheet source updated", zap.String("sheet", id))
	c.raise(MsgSourceUpdated, KindSuccess)
	return id, nil
}

// raise makes msg the current notice and hands it to the notifiers.
func (c *Controller) raise(msg string, kind Kind) {
	now := c.now()
	n := Notice{Message: msg, Kind: kind, IssuedAt: now, ExpiresAt: now.Add(c.noticeTTL)}

	c.mu.Lock()
	c.notice = n
	c.mu.Unlock()

	if c.dispatch != nil {
		c.dispatch.submit(n)
	}
}

// Notice returns the current notice, if one is still visible.
func (c *Controller) Notice() (Notice, bool) {
	c.mu.RLock()
	n := c.notice
	c.mu.RUnlock()
	if !n.Active(c.now()) {
		return Notice{}, false
	}
	return n, true
}

// SheetID returns the active spreadsheet id.
func (c *Controller) SheetID() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.sheetID
}

// Snapshot returns a copy of the last applied refresh.
func (c *Controller) Snapshot() Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return cloneSnapshot(c.snap)
}

// Centers returns every record of the current snapshot.
func (c *Controller) Centers() []center.Record {
	return c.Snapshot().Records
}

// Query applies sel to the current records without touching the stored selection.
func (c *Controller) Query(sel filter.Selection) []center.Record {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return filter.Apply(c.snap.Records, sel)
}

// OptionsFor returns the cascading options of d under sel.
func (c *Controller) OptionsFor(sel filter.Selection, d filter.Dimension) []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return filter.Options(c.snap.Records, sel, d)
}

// Filtered applies the stored selection.
func (c *Controller) Filtered() []center.Record {
	return c.Query(c.Selection())
}

// Options returns the options of d under the stored selection.
func (c *Controller) Options(d filter.Dimension) []string {
	return c.OptionsFor(c.Selection(), d)
}

// Tabs returns the upazila tab row.
func (c *Controller) Tabs() []filter.Tab {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return filter.UpazilaTabs(c.snap.Records)
}

// Selection returns the stored selection.
func (c *Controller) Selection() filter.Selection {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.sel.WithSearch(c.sel.Search)
}

// SetFilter changes one dimension of the stored selection.
func (c *Controller) SetFilter(d filter.Dimension, value string) filter.Selection {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sel = c.sel.With(d, value)
	return c.sel.WithSearch(c.sel.Search)
}

// SetSearch replaces the stored search text.
func (c *Controller) SetSearch(s string) filter.Selection {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sel = c.sel.WithSearch(s)
	return c.sel.WithSearch(s)
}

// ClearFilters resets every dimension and the search text.
func (c *Controller) ClearFilters() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sel = filter.NewSelection()
}

// Find looks a record up by id, then by serial number.
func (c *Controller) Find(key string) (center.Record, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, r := range c.snap.Records {
		if r.ID == key {
			return r, true
		}
	}
	for _, r := range c.snap.Records {
		if r.SerialNo == key {
			return r, true
		}
	}
	return center.Record{}, false
}

// Run loads the data once and then refreshes every interval until ctx is
// done. An interval of zero or less means load once and return.
func (c *Controller) Run(ctx context.Context, interval time.Duration) {
	if _, err := c.Refresh(ctx); err != nil && !stderrors.Is(err, ErrStale) {
		c.logger.Warn("⚠️  Initial load failed", zap.Error(err))
	}
	if interval <= 0 {
		return
	}

	c.logger.Info("⏱️  Periodic refresh enabled", zap.Duration("interval", interval))
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			c.logger.Info("🛑 Periodic refresh stopped")
			return
		case <-ticker.C:
			if _, err := c.Refresh(ctx); err != nil && !stderrors.Is(err, ErrStale) {
				c.logger.Warn("⚠️  Periodic refresh failed", zap.Error(err))
			}
		}
	}
}

func cloneSnapshot(s Snapshot) Snapshot {
	out := s
	out.Records = append([]center.Record(nil), s.Records...)
	if out.Records == nil {
		out.Records = []center.Record{}
	}
	return out
}
