package memory

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// RevocationList is an in-memory implementation of app.RevocationList.
// Expired entries are dropped by Purge, which StartPurger schedules.
type RevocationList struct {
	clock func() time.Time

	mu      sync.RWMutex
	revoked map[string]time.Time
}

func NewRevocationList() *RevocationList {
	return &RevocationList{
		clock:   time.Now,
		revoked: make(map[string]time.Time),
	}
}

func (l *RevocationList) Revoke(_ context.Context, tokenID string, until time.Time) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.revoked[tokenID] = until
	return nil
}

func (l *RevocationList) IsRevoked(_ context.Context, tokenID string) (bool, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	until, ok := l.revoked[tokenID]
	if !ok {
		return false, nil
	}
	return until.IsZero() || until.After(l.clock()), nil
}

// Purge removes entries whose tokens have expired and returns how many were dropped.
func (l *RevocationList) Purge() int {
	now := l.clock()
	l.mu.Lock()
	defer l.mu.Unlock()
	dropped := 0
	for tokenID, until := range l.revoked {
		if !until.IsZero() && !until.After(now) {
			delete(l.revoked, tokenID)
			dropped++
		}
	}
	return dropped
}

// Len reports the number of tracked token ids.
func (l *RevocationList) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.revoked)
}

// StartPurger runs Purge on the given cron spec until the returned stop func is called.
func (l *RevocationList) StartPurger(spec string) (func(), error) {
	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DefaultLogger)))
	if _, err := c.AddFunc(spec, func() {
		if dropped := l.Purge(); dropped > 0 {
			slog.Debug("purged expired revocations", "count", dropped)
		}
	}); err != nil {
		return nil, err
	}
	c.Start()
	return func() { <-c.Stop().Done() }, nil
}
