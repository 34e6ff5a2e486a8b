package engine

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/flagkit/pkg/bus"
	"github.com/dmitrymomot/flagkit/pkg/cache"
	"github.com/dmitrymomot/flagkit/pkg/flag"
	"github.com/dmitrymomot/flagkit/pkg/store"
)

// Engine is the per-process feature-evaluation handle. It mirrors the
// durable store into a local snapshot, keeps the mirror fresh through
// change-bus events and a periodic full reload, memoizes hot evaluation
// results, and exposes the mutation API that feeds the rest of the fleet.
//
// Construct with New, share by reference, and Close when done. There is no
// ambient singleton.
type Engine struct {
	store store.Store
	bus   bus.Bus
	log   *slog.Logger
	clock func() time.Time

	// flags holds the current snapshot. Readers load the pointer without
	// locking; writers build or merge a replacement map under writeMu and
	// swap it in whole, so a reader never observes a half-updated cache.
	flags   atomic.Pointer[map[string]*flag.Flag]
	writeMu sync.Mutex

	evalCache *cache.TTLCache[string, flag.Result]

	// id marks events this engine published, so its subscriber can skip
	// re-applying state it already holds.
	id string

	reloadInterval time.Duration
	loadTimeout    time.Duration

	cancel      context.CancelFunc
	wg          sync.WaitGroup
	unsubscribe func()
	closeOnce   sync.Once
	closed      atomic.Bool

	notify notifier
	stats  counters
}

// New builds an engine over the given store and bus, seeds and bulk-loads
// the local cache, subscribes to change notifications, and starts the
// periodic reload. The engine takes ownership of both collaborators: they
// are closed by Close, and also on every constructor error path. A nil bus
// degrades to polling-only consistency.
func New(ctx context.Context, st store.Store, b bus.Bus, opts ...Option) (*Engine, error) {
	if st == nil {
		return nil, ErrStoreNil
	}

	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	e := &Engine{
		store:          st,
		bus:            b,
		log:            cfg.log,
		clock:          time.Now,
		evalCache:      cache.NewTTLCache[string, flag.Result](cfg.evalCacheSize, cfg.evalCacheTTL),
		id:             uuid.NewString(),
		reloadInterval: cfg.reloadInterval,
		loadTimeout:    cfg.loadTimeout,
	}
	empty := make(map[string]*flag.Flag)
	e.flags.Store(&empty)

	if err := e.seed(ctx, cfg.seed); err != nil {
		return nil, errors.Join(err, e.teardown())
	}
	if err := e.load(ctx); err != nil {
		return nil, errors.Join(err, e.teardown())
	}

	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	e.cancel = cancel

	if e.bus != nil {
		unsubscribe, err := e.bus.Subscribe(runCtx, e.handleBusEvent)
		if err != nil {
			cancel()
			return nil, errors.Join(err, e.teardown())
		}
		e.unsubscribe = unsubscribe
	}

	e.wg.Add(1)
	go e.reloadLoop(runCtx)

	return e, nil
}

// Close stops the reload loop, removes the bus subscription, and releases
// the store and bus. It is safe to call multiple times; evaluation keeps
// answering from the last snapshot afterwards.
func (e *Engine) Close() error {
	var err error
	e.closeOnce.Do(func() {
		e.closed.Store(true)
		if e.cancel != nil {
			e.cancel()
		}
		e.wg.Wait()
		if e.unsubscribe != nil {
			e.unsubscribe()
		}
		err = e.teardown()
	})
	return err
}

func (e *Engine) teardown() error {
	var errs []error
	if e.bus != nil {
		if err := e.bus.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if err := e.store.Close(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// seed creates the configured bootstrap records when absent. It never
// overwrites: a record that already exists in the store wins.
func (e *Engine) seed(ctx context.Context, seed []*flag.Flag) error {
	for _, f := range seed {
		if err := f.Validate(); err != nil {
			return err
		}
		_, err := e.store.Get(ctx, f.Key)
		if err == nil {
			continue
		}
		if !errors.Is(err, store.ErrNotFound) {
			return err
		}
		record := f.Clone()
		now := e.clock()
		if record.CreatedAt.IsZero() {
			record.CreatedAt = now
		}
		if record.UpdatedAt.IsZero() {
			record.UpdatedAt = record.CreatedAt
		}
		if err := e.store.Set(ctx, record); err != nil {
			return err
		}
	}
	return nil
}

// load bulk-fetches every record and swaps in a fresh snapshot.
func (e *Engine) load(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, e.loadTimeout)
	defer cancel()

	records, err := e.store.ListAll(ctx)
	if err != nil {
		return err
	}

	next := make(map[string]*flag.Flag, len(records))
	for _, record := range records {
		next[record.Key] = record
	}

	e.writeMu.Lock()
	e.flags.Store(&next)
	e.writeMu.Unlock()

	e.stats.reloads.Add(1)
	return nil
}

// reloadLoop is the consistency backstop: even if every bus event is lost,
// the local cache converges to the store within one interval.
func (e *Engine) reloadLoop(ctx context.Context) {
	defer e.wg.Done()

	ticker := time.NewTicker(e.reloadInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := e.load(ctx); err != nil {
				// Stale-but-available: keep serving the previous snapshot.
				e.stats.reloadFailures.Add(1)
				e.log.Warn("flag reload failed, serving stale cache",
					slog.Any("error", err))
			}
		case <-ctx.Done():
			return
		}
	}
}

// handleBusEvent applies a change notification from another process.
// Events from this engine are skipped: the mutation path already applied
// them synchronously.
func (e *Engine) handleBusEvent(event flag.Event) {
	if !event.Valid() {
		e.stats.eventsDropped.Add(1)
		e.log.Warn("dropping malformed change event",
			slog.String("type", string(event.Type)))
		return
	}
	if event.Origin == e.id {
		return
	}
	e.apply(event)
}

// apply merges one event into the snapshot, invalidates the evaluation
// cache wholesale, and notifies in-process subscribers. Application is
// idempotent: last write wins per flag key.
func (e *Engine) apply(event flag.Event) {
	e.writeMu.Lock()
	current := *e.flags.Load()
	next := make(map[string]*flag.Flag, len(current)+1)
	for k, v := range current {
		next[k] = v
	}
	switch event.Type {
	case flag.EventDeleted:
		delete(next, event.Record.Key)
	default:
		next[event.Record.Key] = event.Record
	}
	e.flags.Store(&next)
	e.writeMu.Unlock()

	e.evalCache.Clear()
	e.stats.eventsApplied.Add(1)
	e.notify.dispatch(event)
}

// snapshot returns the current flag map for lock-free reads. Callers must
// not mutate it.
func (e *Engine) snapshot() map[string]*flag.Flag {
	return *e.flags.Load()
}
