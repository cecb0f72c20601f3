package progress

import (
	"log/slog"
	"sync"
	"time"
)

// NonTTYProgress пишет прогресс в лог при пересечении каждой границы 10%.
// Используется в CI, где stderr не терминал.
type NonTTYProgress struct {
	mu           sync.Mutex
	opts         Options
	log          *slog.Logger
	startTime    time.Time
	lastReported int
	message      string
}

// NewNonTTYProgress создаёт NonTTYProgress.
func NewNonTTYProgress(opts Options) *NonTTYProgress {
	return &NonTTYProgress{opts: opts, log: opts.logger()}
}

func (p *NonTTYProgress) Start(message string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.startTime = time.Now()
	p.message = message
	p.lastReported = 0
	p.log.Info("Операция начата", slog.String("message", message), slog.Int64("total", p.opts.Total))
}

func (p *NonTTYProgress) Update(current int64, message string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if message != "" {
		p.message = message
	}
	if p.opts.Total == 0 {
		return
	}

	threshold := percentOf(current, p.opts.Total) / 10 * 10
	if threshold > p.lastReported && threshold < 100 {
		p.lastReported = threshold
		p.log.Info("Прогресс операции",
			slog.Int("percent", threshold),
			slog.Int64("current", current),
			slog.String("elapsed", FormatDuration(time.Since(p.startTime))),
			slog.String("message", p.message))
	}
}

func (p *NonTTYProgress) SetTotal(total int64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.opts.Total = total
}

func (p *NonTTYProgress) Finish() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.log.Info("Операция завершена", slog.String("duration", FormatDuration(time.Since(p.startTime))))
}
