// Package ratelimit paces outgoing messages per chat with a sliding window.
package ratelimit

import (
	"context"
	"sync"
	"time"
)

// DefaultPerMinute - лимит Telegram для сообщений в одну группу
const DefaultPerMinute = 20

// Limiter - sliding window rate limiter на чат
type Limiter struct {
	mu     sync.Mutex
	sent   map[int64][]time.Time
	limit  int
	window time.Duration
	now    func() time.Time
}

type Config struct {
	MessagesPerMinute int
	// Window переопределяет минутное окно (для тестов)
	Window time.Duration
}

func New(cfg Config) *Limiter {
	limit := cfg.MessagesPerMinute
	if limit <= 0 {
		limit = DefaultPerMinute
	}
	window := cfg.Window
	if window <= 0 {
		window = time.Minute
	}

	return &Limiter{
		sent:   make(map[int64][]time.Time),
		limit:  limit,
		window: window,
		now:    time.Now,
	}
}

// Allow records a send for chatID if the window has room.
func (l *Limiter) Allow(chatID int64) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	fresh := l.prune(chatID)
	if len(fresh) >= l.limit {
		return false
	}
	l.sent[chatID] = append(fresh, l.now())
	return true
}

// Wait blocks until a send for chatID is allowed or ctx is done.
func (l *Limiter) Wait(ctx context.Context, chatID int64) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		if l.Allow(chatID) {
			return nil
		}

		delay := time.Until(l.ResetTime(chatID))
		if delay <= 0 {
			continue
		}
		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

func (l *Limiter) Remaining(chatID int64) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	if rem := l.limit - len(l.prune(chatID)); rem > 0 {
		return rem
	}
	return 0
}

// ResetTime - когда освободится ближайший слот
func (l *Limiter) ResetTime(chatID int64) time.Time {
	l.mu.Lock()
	defer l.mu.Unlock()

	fresh := l.prune(chatID)
	if len(fresh) < l.limit {
		return l.now()
	}
	// fresh отсортирован по времени: самый старый первый
	return fresh[0].Add(l.window)
}

// prune оставляет только записи внутри окна. Вызывать под mu.
func (l *Limiter) prune(chatID int64) []time.Time {
	cutoff := l.now().Add(-l.window)
	old := l.sent[chatID]
	fresh := old[:0]
	for _, t := range old {
		if t.After(cutoff) {
			fresh = append(fresh, t)
		}
	}
	if len(fresh) == 0 {
		delete(l.sent, chatID)
		return nil
	}
	l.sent[chatID] = fresh
	return fresh
}
