package progress

import (
	"fmt"
	"log/slog"
	"sync"
	"time"
)

var spinnerFrames = []rune{'⠋', '⠙', '⠹', '⠸', '⠼', '⠴', '⠦', '⠧', '⠇', '⠏'}

// nonTTYReportInterval - как часто spinner без терминала пишет строку в лог.
const nonTTYReportInterval = 30 * time.Second

// SpinnerProgress - индикатор для операций с неизвестным total.
// Вне терминала пишет в лог раз в nonTTYReportInterval.
type SpinnerProgress struct {
	mu         sync.Mutex
	opts       Options
	log        *slog.Logger
	isTTY      bool
	startTime  time.Time
	message    string
	frameIndex int
	lastDraw   time.Time
	lastReport time.Time
}

// NewSpinnerProgress создаёт SpinnerProgress.
func NewSpinnerProgress(opts Options) *SpinnerProgress {
	return &SpinnerProgress{
		opts:  opts,
		log:   opts.logger(),
		isTTY: opts.Output != nil && IsTTY(opts.Output),
	}
}

func (p *SpinnerProgress) Start(message string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.startTime = time.Now()
	p.message = message
	p.frameIndex = 0
	p.lastDraw = time.Time{}
	p.lastReport = p.startTime

	if p.isTTY {
		p.draw()
		return
	}
	p.log.Info("Операция начата", slog.String("message", message))
}

// Update игнорирует current: total неизвестен.
func (p *SpinnerProgress) Update(_ int64, message string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if message != "" {
		p.message = message
	}

	if p.isTTY {
		if p.opts.ThrottleInterval > 0 && time.Since(p.lastDraw) < p.opts.ThrottleInterval {
			return
		}
		p.lastDraw = time.Now()
		p.frameIndex = (p.frameIndex + 1) % len(spinnerFrames)
		p.draw()
		return
	}

	if time.Since(p.lastReport) >= nonTTYReportInterval {
		p.lastReport = time.Now()
		p.log.Info("Прогресс операции",
			slog.String("elapsed", FormatDuration(time.Since(p.startTime))),
			slog.String("message", p.message))
	}
}

func (p *SpinnerProgress) SetTotal(total int64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.opts.Total = total
}

func (p *SpinnerProgress) Finish() {
	p.mu.Lock()
	defer p.mu.Unlock()
	duration := FormatDuration(time.Since(p.startTime))
	if p.isTTY {
		_, _ = fmt.Fprintf(p.opts.Output, "\r✓ %s (завершено за %s)\033[K\n", p.message, duration) //nolint:errcheck // terminal output
		return
	}
	p.log.Info("Операция завершена", slog.String("duration", duration))
}

func (p *SpinnerProgress) draw() {
	if p.opts.Output == nil {
		return
	}
	_, _ = fmt.Fprintf(p.opts.Output, "\r%c %s (время: %s)\033[K", //nolint:errcheck // terminal output
		spinnerFrames[p.frameIndex], p.message, FormatDuration(time.Since(p.startTime)))
}
