// Package sync reconciles the in-memory application state with the single
// remote JSON document: pull on connect, debounced full-document push on
// change, and forced sign-out when the grant dies.
package sync

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/benbjohnson/clock"

	"github.com/coacherp/coacherp/internal/models"
	"github.com/coacherp/coacherp/internal/remote"
	"github.com/coacherp/coacherp/internal/state"
)

var (
	// ErrMalformedDocument marks a pull whose remote content is not a valid
	// state snapshot. Local state is left untouched; no partial hydration.
	ErrMalformedDocument = errors.New("sync: remote document is not a valid state snapshot")

	// ErrDisconnected is returned when a sync is requested without a grant.
	ErrDisconnected = errors.New("sync: not connected")
)

const (
	// DefaultDebounce is the quiet period after the last local change
	// before a push fires. Bursts of edits coalesce into one write.
	DefaultDebounce = 2 * time.Second

	contentType = "application/json"
)

// Config wires an Engine. Clock, Debounce and Metrics may be zero; they
// default to the wall clock, DefaultDebounce and an unexported registry.
type Config struct {
	State   *state.Store
	Remote  remote.Store
	Locator *remote.Locator

	Clock    clock.Clock
	Debounce time.Duration
	Metrics  *Metrics

	// OnAuthFailure is invoked after the provider rejects the grant, so the
	// session can drop the dead credential. Called outside the engine lock.
	OnAuthFailure func()
}

// Engine is the sync state machine: IDLE -> SYNCING -> {SYNCED, ERROR},
// with ERROR and SYNCED both returning to SYNCING on the next trigger.
//
// At most one push or pull is in flight at a time; the status flag is the
// mutual exclusion. Retries are driven entirely by subsequent triggers —
// there is no backoff and no retry counter.
type Engine struct {
	st            *state.Store
	remote        remote.Store
	locator       *remote.Locator
	clk           clock.Clock
	debounce      time.Duration
	metrics       *Metrics
	onAuthFailure func()

	mu         sync.Mutex
	status     models.SyncStatus
	lastSynced time.Time
	connected  bool
	timer      *clock.Timer

	// dirty marks a change that arrived while a sync was in flight. The
	// debounce re-arms when that sync resolves, so the change is deferred,
	// never dropped.
	dirty bool

	// generation increments on every disconnect. A network result carrying
	// an older generation is stale and must be dropped, never applied.
	generation uint64
}

// New creates an idle, disconnected engine.
func New(cfg Config) *Engine {
	clk := cfg.Clock
	if clk == nil {
		clk = clock.New()
	}
	debounce := cfg.Debounce
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	metrics := cfg.Metrics
	if metrics == nil {
		metrics = newUnregisteredMetrics()
	}
	return &Engine{
		st:            cfg.State,
		remote:        cfg.Remote,
		locator:       cfg.Locator,
		clk:           clk,
		debounce:      debounce,
		metrics:       metrics,
		onAuthFailure: cfg.OnAuthFailure,
		status:        models.SyncIdle,
	}
}

// Connect marks the session usable and performs the initial pull: the remote
// document replaces local state wholesale. An absent or empty document is a
// no-op — local state stands. Connecting twice is harmless.
func (e *Engine) Connect(ctx context.Context) error {
	e.mu.Lock()
	if e.connected {
		e.mu.Unlock()
		return nil
	}
	e.connected = true
	gen := e.generation
	e.mu.Unlock()

	slog.Info("Remote sync connected, pulling state")
	return e.pull(ctx, gen)
}

// Disconnect resets the engine to a clean reconnect state: status IDLE, no
// cached document id, no last-synced time. Idempotent.
func (e *Engine) Disconnect() {
	e.mu.Lock()
	e.resetLocked()
	e.mu.Unlock()
}

// NotifyChange schedules a debounced push. The single-shot timer restarts on
// every qualifying change, so only the last change in a quiet window fires.
// A change arriving while a sync is in flight is deferred: the debounce
// re-arms as soon as that sync resolves.
func (e *Engine) NotifyChange() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.connected {
		return
	}
	if e.status == models.SyncSyncing {
		e.dirty = true
		return
	}
	e.scheduleLocked()
}

// scheduleLocked (re)starts the debounce timer. Caller holds e.mu.
func (e *Engine) scheduleLocked() {
	if e.timer != nil {
		e.timer.Stop()
	}
	gen := e.generation
	e.timer = e.clk.AfterFunc(e.debounce, func() {
		// Failures are logged and reflected in status; next trigger retries.
		_ = e.push(context.Background(), gen)
	})
}

// SyncNow forces an immediate push, bypassing the debounce. A sync already
// in flight wins; the request is then a no-op.
func (e *Engine) SyncNow(ctx context.Context) error {
	e.mu.Lock()
	if !e.connected {
		e.mu.Unlock()
		return ErrDisconnected
	}
	if e.timer != nil {
		e.timer.Stop()
		e.timer = nil
	}
	gen := e.generation
	e.mu.Unlock()

	return e.push(ctx, gen)
}

// Status returns the current sync status and the last successful sync time
// (zero if none).
func (e *Engine) Status() (models.SyncStatus, time.Time) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.status, e.lastSynced
}

// Connected reports whether the engine considers the session usable.
func (e *Engine) Connected() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.connected
}

// pull reads the remote document and hydrates the local store.
func (e *Engine) pull(ctx context.Context, gen uint64) error {
	if !e.begin(gen) {
		return nil
	}

	id, err := e.locator.Locate(ctx)
	if err != nil {
		e.finishErr(gen, err)
		return err
	}
	data, err := e.remote.Download(ctx, id)
	if err != nil {
		e.finishErr(gen, err)
		return err
	}
	if !e.live(gen) {
		slog.Debug("Dropping stale pull result")
		return nil
	}

	if len(bytes.TrimSpace(data)) == 0 {
		// Freshly created or empty document: nothing to hydrate.
		if e.finishOK(gen) {
			e.metrics.pulls.Inc()
			slog.Info("Remote document empty, keeping local state")
		}
		return nil
	}

	var doc models.AppState
	if err := json.Unmarshal(data, &doc); err != nil {
		err = fmt.Errorf("%w: %v", ErrMalformedDocument, err)
		e.finishErr(gen, err)
		return err
	}

	if !e.live(gen) {
		slog.Debug("Dropping stale pull result")
		return nil
	}
	e.st.Hydrate(doc)
	if e.finishOK(gen) {
		e.metrics.pulls.Inc()
		slog.Info("Hydrated state from remote document",
			"file_id", id,
			"students", len(doc.Students),
			"team_members", len(doc.TeamMembers),
			"batches", len(doc.Batches),
		)
	}
	return nil
}

// push serializes the full state and overwrites the remote document.
func (e *Engine) push(ctx context.Context, gen uint64) error {
	if !e.begin(gen) {
		return nil
	}

	data, err := json.Marshal(e.st.Snapshot())
	if err != nil {
		e.finishErr(gen, fmt.Errorf("serialize state: %w", err))
		return err
	}
	id, err := e.locator.Locate(ctx)
	if err != nil {
		e.finishErr(gen, err)
		return err
	}
	if err := e.remote.Upload(ctx, id, data, contentType); err != nil {
		e.finishErr(gen, err)
		return err
	}

	if e.finishOK(gen) {
		e.metrics.pushes.Inc()
		slog.Info("Pushed state to remote document", "file_id", id, "bytes", len(data))
	}
	return nil
}

// begin claims the single sync slot. Returns false when the session is gone,
// the result would be stale, or another sync is already in flight.
func (e *Engine) begin(gen uint64) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.connected || gen != e.generation || e.status == models.SyncSyncing {
		return false
	}
	e.setStatusLocked(models.SyncSyncing)
	return true
}

// live reports whether a result for the given generation may still be applied.
func (e *Engine) live(gen uint64) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.connected && gen == e.generation
}

// finishOK records a successful sync. Returns false if the result was stale.
func (e *Engine) finishOK(gen uint64) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if gen != e.generation {
		return false
	}
	e.setStatusLocked(models.SyncSynced)
	e.lastSynced = e.clk.Now()
	e.rearmIfDirtyLocked()
	return true
}

// rearmIfDirtyLocked schedules the push a deferred change is still owed.
// Caller holds e.mu.
func (e *Engine) rearmIfDirtyLocked() {
	if e.dirty {
		e.dirty = false
		e.scheduleLocked()
	}
}

// finishErr records a failed sync. An authorization failure additionally
// forces a disconnect so the user lands in a clean reconnect state instead
// of retrying against a dead credential.
func (e *Engine) finishErr(gen uint64, err error) {
	e.mu.Lock()
	if gen != e.generation {
		e.mu.Unlock()
		return
	}
	e.setStatusLocked(models.SyncError)
	e.metrics.failures.WithLabelValues(failureReason(err)).Inc()
	slog.Error("Sync failed", "error", err)

	if !errors.Is(err, remote.ErrUnauthorized) {
		e.rearmIfDirtyLocked()
		e.mu.Unlock()
		return
	}

	slog.Warn("Grant rejected by provider, signing out")
	e.resetLocked()
	cb := e.onAuthFailure
	e.mu.Unlock()
	if cb != nil {
		cb()
	}
}

// resetLocked clears everything a disconnect must clear: cached document id,
// last-synced time, pending debounce, connected flag. Status returns to IDLE.
func (e *Engine) resetLocked() {
	if e.timer != nil {
		e.timer.Stop()
		e.timer = nil
	}
	e.connected = false
	e.dirty = false
	e.generation++
	e.lastSynced = time.Time{}
	e.locator.Reset()
	e.setStatusLocked(models.SyncIdle)
}

func (e *Engine) setStatusLocked(s models.SyncStatus) {
	e.status = s
	e.metrics.setStatus(s)
}

func failureReason(err error) string {
	switch {
	case errors.Is(err, remote.ErrUnauthorized):
		return "unauthorized"
	case errors.Is(err, ErrMalformedDocument):
		return "malformed"
	default:
		return "transport"
	}
}
