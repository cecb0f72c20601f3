package alerting

import (
	"sync"
	"time"
)

// RateLimiter подавляет повторные алерты с одним ErrorCode в пределах window.
//
// Состояние живёт в памяти процесса, поэтому между запусками rb-ci
// подавления нет. В пределах запуска защищает от серии одинаковых алертов,
// например когда check-migrations вызывается из нескольких шагов одного job.
type RateLimiter struct {
	mu     sync.Mutex
	window time.Duration
	sent   map[string]time.Time
	now    func() time.Time
}

// NewRateLimiter создаёт RateLimiter.
func NewRateLimiter(window time.Duration) *RateLimiter {
	return &RateLimiter{
		window: window,
		sent:   make(map[string]time.Time),
		now:    time.Now,
	}
}

// cleanupThreshold - после скольких записей начинается очистка устаревших.
const cleanupThreshold = 100

// Allow атомарно проверяет и отмечает отправку алерта с errorCode.
func (r *RateLimiter) Allow(errorCode string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	if len(r.sent) > cleanupThreshold {
		for code, at := range r.sent {
			if now.Sub(at) >= r.window {
				delete(r.sent, code)
			}
		}
	}

	if last, ok := r.sent[errorCode]; ok && now.Sub(last) < r.window {
		return false
	}
	r.sent[errorCode] = now
	return true
}

// Reset забывает отправку errorCode.
func (r *RateLimiter) Reset(errorCode string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sent, errorCode)
}

// SetNowFunc подменяет источник времени. Используется в тестах.
func (r *RateLimiter) SetNowFunc(fn func() time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.now = fn
}
