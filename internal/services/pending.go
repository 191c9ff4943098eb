package services

import (
	"sync"
	"time"

	"shinejewelry/internal/mail"
)

type pendingEntry struct {
	msg       mail.Message
	ref       string
	archiveID string
	email     string
	expires   time.Time
}

// Pending holds queued customer confirmations keyed by opaque token.
// Entries expire after the TTL; the map is swept on every insert and
// checked lazily on lookup, so abandoned confirmations cannot pile up
// forever. Process restart still drops all entries.
type Pending struct {
	mu      sync.Mutex
	ttl     time.Duration
	now     func() time.Time
	entries map[string]pendingEntry
}

func NewPending(ttl time.Duration) *Pending {
	return &Pending{ttl: ttl, now: time.Now, entries: make(map[string]pendingEntry)}
}

func (p *Pending) Put(id string, e pendingEntry) {
	p.mu.Lock()
	defer p.mu.Unlock()
	now := p.now()
	for k, v := range p.entries {
		if now.After(v.expires) {
			delete(p.entries, k)
		}
	}
	e.expires = now.Add(p.ttl)
	p.entries[id] = e
}

func (p *Pending) Get(id string) (pendingEntry, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	e, ok := p.entries[id]
	if !ok {
		return pendingEntry{}, false
	}
	if p.now().After(e.expires) {
		delete(p.entries, id)
		return pendingEntry{}, false
	}
	return e, true
}

func (p *Pending) Delete(id string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.entries, id)
}

func (p *Pending) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.entries)
}
