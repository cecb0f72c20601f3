package progress

import (
	"fmt"
	"strings"
	"sync"
	"time"
)

const barWidth = 30

// TTYProgress рисует progress bar в терминале:
//
//	[==========>         ] 33% | ETA: 40s | /leaderboard
type TTYProgress struct {
	mu        sync.Mutex
	opts      Options
	startTime time.Time
	current   int64
	lastDraw  time.Time
	message   string
}

// NewTTYProgress создаёт TTYProgress.
func NewTTYProgress(opts Options) *TTYProgress {
	return &TTYProgress{opts: opts}
}

func (p *TTYProgress) Start(message string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.startTime = time.Now()
	p.message = message
	p.current = 0
	p.lastDraw = time.Time{}
}

func (p *TTYProgress) Update(current int64, message string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.current = current
	if message != "" {
		p.message = message
	}
	if p.opts.ThrottleInterval > 0 && time.Since(p.lastDraw) < p.opts.ThrottleInterval {
		return
	}
	p.lastDraw = time.Now()
	p.draw()
}

func (p *TTYProgress) SetTotal(total int64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.opts.Total = total
}

func (p *TTYProgress) Finish() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.current = p.opts.Total
	p.draw()
	if p.opts.Output != nil {
		_, _ = fmt.Fprintln(p.opts.Output) //nolint:errcheck // terminal output
	}
}

func (p *TTYProgress) draw() {
	if p.opts.Output == nil {
		return
	}
	percent := percentOf(p.current, p.opts.Total)

	var line strings.Builder
	fmt.Fprintf(&line, "\r%s %d%%", renderBar(percent), percent)
	if p.opts.ShowETA && p.opts.Total > 0 && p.current > 0 {
		fmt.Fprintf(&line, " | ETA: %s", p.eta())
	}
	if p.message != "" {
		fmt.Fprintf(&line, " | %s", p.message)
	}
	line.WriteString("\033[K")

	_, _ = fmt.Fprint(p.opts.Output, line.String()) //nolint:errcheck // terminal output
}

// renderBar: при 0% стрелки нет, при 100% бар заполнен целиком.
func renderBar(percent int) string {
	filled := min(percent*barWidth/100, barWidth)

	var bar strings.Builder
	bar.WriteByte('[')
	for i := range barWidth {
		switch {
		case i < filled:
			bar.WriteByte('=')
		case i == filled && filled > 0:
			bar.WriteByte('>')
		default:
			bar.WriteByte(' ')
		}
	}
	bar.WriteByte(']')
	return bar.String()
}

func (p *TTYProgress) eta() string {
	remainingWork := p.opts.Total - p.current
	if p.current <= 0 || remainingWork <= 0 {
		return "<1s"
	}
	elapsed := time.Since(p.startTime)
	remaining := time.Duration(float64(elapsed) / float64(p.current) * float64(remainingWork)).Round(time.Second)
	if remaining < time.Second {
		return "<1s"
	}
	return FormatDuration(remaining)
}
