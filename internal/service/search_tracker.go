package service

import (
	"context"
	"sync"
)

// SearchToken identifies one search within a session.
type SearchToken struct {
	session string
	gen     uint64
}

type searchSlot struct {
	gen    uint64
	cancel context.CancelFunc
}

// SearchTracker keeps the latest search per session. Starting a search
// cancels the previous one of the same session, and only the latest token is
// current, so a slow older response can never replace a newer one.
type SearchTracker struct {
	mu       sync.Mutex
	gen      uint64
	sessions map[string]*searchSlot
}

func NewSearchTracker() *SearchTracker {
	return &SearchTracker{sessions: make(map[string]*searchSlot)}
}

// Begin starts a search for session and returns the context it must run
// under. The context is cancelled when a newer search begins or End is called.
func (t *SearchTracker) Begin(ctx context.Context, session string) (context.Context, SearchToken) {
	ctx, cancel := context.WithCancel(ctx)

	t.mu.Lock()
	defer t.mu.Unlock()

	if prev, ok := t.sessions[session]; ok {
		prev.cancel()
	}
	t.gen++
	t.sessions[session] = &searchSlot{gen: t.gen, cancel: cancel}
	return ctx, SearchToken{session: session, gen: t.gen}
}

// IsCurrent reports whether tok is the latest search of its session.
func (t *SearchTracker) IsCurrent(tok SearchToken) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	slot, ok := t.sessions[tok.session]
	return ok && slot.gen == tok.gen
}

// End releases tok. A superseded token has nothing left to release.
func (t *SearchTracker) End(tok SearchToken) {
	t.mu.Lock()
	defer t.mu.Unlock()

	slot, ok := t.sessions[tok.session]
	if !ok || slot.gen != tok.gen {
		return
	}
	slot.cancel()
	delete(t.sessions, tok.session)
}

// Active returns the number of sessions with a search in flight.
func (t *SearchTracker) Active() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.sessions)
}
