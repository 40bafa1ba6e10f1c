package webapp

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// actionTokens hands out one-shot tokens for mutating form posts. A token is
// consumed on first use, so a resubmitted form (back button, double click)
// does not repeat the action.
type actionTokens struct {
	mu     sync.Mutex
	ttl    time.Duration
	issued map[string]time.Time
}

func newActionTokens(ttl time.Duration) *actionTokens {
	return &actionTokens{
		ttl:    ttl,
		issued: make(map[string]time.Time),
	}
}

func (a *actionTokens) Issue() string {
	tok := uuid.NewString()
	a.mu.Lock()
	defer a.mu.Unlock()
	now := time.Now()
	for t, exp := range a.issued {
		if now.After(exp) {
			delete(a.issued, t)
		}
	}
	a.issued[tok] = now.Add(a.ttl)
	return tok
}

// Consume reports whether tok is live, and retires it either way.
func (a *actionTokens) Consume(tok string) bool {
	if tok == "" {
		return false
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	exp, ok := a.issued[tok]
	if !ok {
		return false
	}
	delete(a.issued, tok)
	return time.Now().Before(exp)
}
