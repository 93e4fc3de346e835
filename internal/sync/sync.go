// Package sync implements the client side of document synchronization:
// debounced pushes of local edits and periodic pulls guarded by a grace
// window so a fresh local edit is never clobbered by server state.
package sync

import (
	"context"
	"sync"
	"time"
)

// Defaults for the three timers.
const (
	DefaultDebounce     = time.Second
	DefaultPollInterval = 3 * time.Second
	DefaultGraceWindow  = 2 * time.Second
)

// Document is the synchronized state as seen by the engine.
type Document struct {
	Content   string
	Language  string
	UpdatedAt time.Time
}

// Remote is the server the engine synchronizes against.
type Remote interface {
	Fetch(ctx context.Context) (Document, error)
	Push(ctx context.Context, content, language string) (Document, error)
}

// Options tunes the engine's timers. Zero values fall back to the defaults.
type Options struct {
	Debounce     time.Duration
	PollInterval time.Duration
	GraceWindow  time.Duration
}

func (o Options) withDefaults() Options {
	if o.Debounce <= 0 {
		o.Debounce = DefaultDebounce
	}
	if o.PollInterval <= 0 {
		o.PollInterval = DefaultPollInterval
	}
	if o.GraceWindow <= 0 {
		o.GraceWindow = DefaultGraceWindow
	}
	return o
}

// Engine runs the push and pull timers for one client. The two timers are
// independent and uncoordinated; concurrent edits from two clients inside the
// grace window resolve as last-push-wins at the server. That tradeoff is the
// protocol, not a bug.
type Engine struct {
	remote Remote
	apply  func(Document)
	opts   Options
	now    func() time.Time

	mu       sync.Mutex
	content  string
	language string
	lastEdit time.Time
	dirty    bool
	debounce *time.Timer

	pushCh chan struct{}
}

// New creates an engine. apply is invoked (outside the engine's lock) each
// time a pulled server document replaces local state.
func New(remote Remote, apply func(Document), opts Options) *Engine {
	return &Engine{
		remote: remote,
		apply:  apply,
		opts:   opts.withDefaults(),
		now:    time.Now,
		pushCh: make(chan struct{}, 1),
	}
}

// SetLocal records a local edit: it refreshes the last-edit timestamp and
// re-arms the debounce timer. The push fires only after Debounce of
// inactivity, collapsing a typing burst into one request.
func (e *Engine) SetLocal(content, language string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.content = content
	if language != "" {
		e.language = language
	}
	e.lastEdit = e.now()
	e.dirty = true
	if e.debounce == nil {
		e.debounce = time.AfterFunc(e.opts.Debounce, e.signalPush)
	} else {
		e.debounce.Reset(e.opts.Debounce)
	}
}

func (e *Engine) signalPush() {
	select {
	case e.pushCh <- struct{}{}:
	default:
	}
}

// Snapshot returns the engine's current local state.
func (e *Engine) Snapshot() Document {
	e.mu.Lock()
	defer e.mu.Unlock()
	return Document{Content: e.content, Language: e.language, UpdatedAt: e.lastEdit}
}

// Run drives the engine until ctx is cancelled. It owns both timers: the
// poll ticker and the debounce-armed push signal.
func (e *Engine) Run(ctx context.Context) error {
	ticker := time.NewTicker(e.opts.PollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-e.pushCh:
			e.push(ctx)
		case <-ticker.C:
			e.pull(ctx)
		}
	}
}

// push sends the full current content+language. On failure the edit stays
// dirty and the debounce timer is re-armed to retry.
func (e *Engine) push(ctx context.Context) {
	e.mu.Lock()
	if !e.dirty {
		e.mu.Unlock()
		return
	}
	content, language := e.content, e.language
	e.dirty = false
	e.mu.Unlock()

	if _, err := e.remote.Push(ctx, content, language); err != nil {
		e.mu.Lock()
		e.dirty = true
		if e.debounce != nil {
			e.debounce.Reset(e.opts.Debounce)
		}
		e.mu.Unlock()
	}
}

// pull fetches the server document and applies it only when the grace window
// has passed since the last local edit AND the server state is newer than
// that edit. Otherwise the result is discarded to protect in-flight typing.
func (e *Engine) pull(ctx context.Context) {
	doc, err := e.remote.Fetch(ctx)
	if err != nil {
		return
	}

	e.mu.Lock()
	if !shouldApply(e.now(), e.lastEdit, e.opts.GraceWindow, doc.UpdatedAt) {
		e.mu.Unlock()
		return
	}
	e.content = doc.Content
	e.language = doc.Language
	apply := e.apply
	e.mu.Unlock()

	if apply != nil {
		apply(doc)
	}
}

// shouldApply is the overwrite heuristic: server state replaces local state
// only outside the grace window and only when strictly newer than the last
// local edit.
func shouldApply(now, lastEdit time.Time, grace time.Duration, remoteUpdated time.Time) bool {
	if now.Sub(lastEdit) <= grace {
		return false
	}
	return remoteUpdated.After(lastEdit)
}
