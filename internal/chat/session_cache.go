package chat

import (
	"regexp"
	"sort"
	"sync"
	"time"
)

var sessionTokenRE = regexp.MustCompile(`^[A-Za-z0-9._:-]{8,80}$`)

// ValidSessionToken reports whether a client-supplied session token is
// acceptable. Invalid tokens degrade the chat to anonymous mode instead of
// failing the request.
func ValidSessionToken(token string) bool {
	return sessionTokenRE.MatchString(token)
}

// CachedSession is the ephemeral per-token working state: a capped recent
// message window plus the in-progress lead draft. The durable store remains
// authoritative; this is a restart-lossy cache.
type CachedSession struct {
	History   []Message
	Draft     LeadDraft
	UpdatedAt time.Time
}

// Message is one conversational turn held in memory and mirrored to the
// durable log.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// SessionCache is a bounded TTL map of session token to working state.
// Eviction is a cheap synchronous sweep run opportunistically by callers at
// the start of request handling: TTL first, then oldest-updated entries
// until the cache is back under capacity.
type SessionCache struct {
	mu         sync.Mutex
	sessions   map[string]*CachedSession
	ttl        time.Duration
	maxEntries int
	maxHistory int
	now        func() time.Time
}

// NewSessionCache creates a cache with the given TTL, session cap and
// per-session history cap (entries, i.e. 2x the LLM turn window).
func NewSessionCache(ttl time.Duration, maxEntries, maxHistory int) *SessionCache {
	if maxEntries <= 0 {
		maxEntries = 1000
	}
	if maxHistory <= 0 {
		maxHistory = 20
	}
	return &SessionCache{
		sessions:   make(map[string]*CachedSession),
		ttl:        ttl,
		maxEntries: maxEntries,
		maxHistory: maxHistory,
		now:        time.Now,
	}
}

// Get returns a copy of the cached session state, if present.
func (c *SessionCache) Get(token string) (CachedSession, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	s, ok := c.sessions[token]
	if !ok {
		return CachedSession{}, false
	}
	out := CachedSession{
		History:   append([]Message(nil), s.History...),
		Draft:     s.Draft,
		UpdatedAt: s.UpdatedAt,
	}
	return out, true
}

// Put stores the session state, trimming the history window from the front
// and stamping UpdatedAt.
func (c *SessionCache) Put(token string, history []Message, draft LeadDraft) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(history) > c.maxHistory {
		history = history[len(history)-c.maxHistory:]
	}
	c.sessions[token] = &CachedSession{
		History:   append([]Message(nil), history...),
		Draft:     draft,
		UpdatedAt: c.now(),
	}
}

// ClearDraft drops the working draft but keeps the history window.
func (c *SessionCache) ClearDraft(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if s, ok := c.sessions[token]; ok {
		s.Draft = LeadDraft{}
	}
}

// Len reports the current number of cached sessions.
func (c *SessionCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.sessions)
}

// Sweep removes entries idle past the TTL, then evicts oldest-updated
// entries until the cache is back under capacity. Durable records are never
// touched.
func (c *SessionCache) Sweep() {
	c.mu.Lock()
	defer c.mu.Unlock()

	cutoff := c.now().Add(-c.ttl)
	for token, s := range c.sessions {
		if s.UpdatedAt.Before(cutoff) {
			delete(c.sessions, token)
		}
	}

	if len(c.sessions) <= c.maxEntries {
		return
	}

	type entry struct {
		token     string
		updatedAt time.Time
	}
	entries := make([]entry, 0, len(c.sessions))
	for token, s := range c.sessions {
		entries = append(entries, entry{token, s.UpdatedAt})
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].updatedAt.Before(entries[j].updatedAt)
	})
	for _, e := range entries[:len(c.sessions)-c.maxEntries] {
		delete(c.sessions, e.token)
	}
}
