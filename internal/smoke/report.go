package smoke

import (
	"sync"
	"sync/atomic"
	"time"
)

// Исходы посещения страницы. Используются и как метка метрики.
const (
	OutcomeOK              = "ok"
	OutcomeHTTPError       = "http_error"
	OutcomeNoResponse      = "no_response"
	OutcomeExceptionMarker = "exception_marker"
	OutcomeMarkerMissing   = "marker_missing"
	OutcomeVisitError      = "visit_error"
)

// Visit - результат посещения одной страницы.
type Visit struct {
	Path     string        `json:"path"`
	URL      string        `json:"url"`
	Outcome  string        `json:"outcome"`
	Status   int           `json:"status,omitempty"`
	Message  string        `json:"message,omitempty"`
	Duration time.Duration `json:"-"`
}

// OK сообщает об успешном посещении.
func (v Visit) OK() bool { return v.Outcome == OutcomeOK }

// ConsoleEntry - ошибка консоли браузера, пойманная на странице Path.
type ConsoleEntry struct {
	Path string `json:"path"`
	Kind string `json:"kind"`
	Text string `json:"text"`
}

// Report накапливает результаты прогона.
//
// Флаги атомарные: консольные ошибки приходят из горутины событий браузера,
// пока основной поток обходит страницы. Списки защищены mutex.
type Report struct {
	failOnConsole bool

	failed      atomic.Bool
	consoleSeen atomic.Bool

	mu         sync.Mutex
	visits     []Visit
	console    []ConsoleEntry
	pid        int
	terminated bool
	fatal      string
}

// NewReport создаёт пустой Report. failOnConsole: ошибка консоли проваливает прогон.
func NewReport(failOnConsole bool) *Report {
	return &Report{failOnConsole: failOnConsole}
}

// AddVisit добавляет результат посещения. Неуспешный исход проваливает прогон.
func (r *Report) AddVisit(v Visit) {
	r.mu.Lock()
	r.visits = append(r.visits, v)
	r.mu.Unlock()
	if !v.OK() {
		r.failed.Store(true)
	}
}

// RecordConsole записывает ошибку консоли. Безопасен для вызова из любой горутины.
func (r *Report) RecordConsole(e ConsoleEntry) {
	r.mu.Lock()
	r.console = append(r.console, e)
	r.mu.Unlock()
	r.consoleSeen.Store(true)
	if r.failOnConsole {
		r.failed.Store(true)
	}
}

// Fail проваливает прогон по причине вне обхода страниц, например не запустился браузер.
func (r *Report) Fail(reason string) {
	r.mu.Lock()
	if r.fatal == "" {
		r.fatal = reason
	}
	r.mu.Unlock()
	r.failed.Store(true)
}

// SetApp запоминает PID приложения и то, пришлось ли его останавливать.
func (r *Report) SetApp(pid int, terminated bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pid = pid
	r.terminated = terminated
}

// Failed сообщает, была ли записана хотя бы одна ошибка.
func (r *Report) Failed() bool { return r.failed.Load() }

// ConsoleErrorSeen сообщает, приходили ли ошибки консоли.
func (r *Report) ConsoleErrorSeen() bool { return r.consoleSeen.Load() }

// Visits возвращает копию результатов в порядке обхода.
func (r *Report) Visits() []Visit {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Visit(nil), r.visits...)
}

// Console возвращает копию ошибок консоли.
func (r *Report) Console() []ConsoleEntry {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]ConsoleEntry(nil), r.console...)
}

// Data - снимок отчёта для вывода.
type Data struct {
	Passed         bool           `json:"passed"`
	PagesTotal     int            `json:"pages_total"`
	PagesFailed    int            `json:"pages_failed"`
	ConsoleErrors  int            `json:"console_errors"`
	AppPID         int            `json:"app_pid,omitempty"`
	AppTerminated  bool           `json:"app_terminated"`
	FatalError     string         `json:"fatal_error,omitempty"`
	Visits         []Visit        `json:"visits"`
	ConsoleEntries []ConsoleEntry `json:"console_entries,omitempty"`
}

// Snapshot возвращает согласованный снимок отчёта.
func (r *Report) Snapshot() Data {
	r.mu.Lock()
	defer r.mu.Unlock()

	d := Data{
		Passed:         !r.failed.Load(),
		PagesTotal:     len(r.visits),
		ConsoleErrors:  len(r.console),
		AppPID:         r.pid,
		AppTerminated:  r.terminated,
		FatalError:     r.fatal,
		Visits:         append([]Visit{}, r.visits...),
		ConsoleEntries: append([]ConsoleEntry(nil), r.console...),
	}
	for _, v := range r.visits {
		if !v.OK() {
			d.PagesFailed++
		}
	}
	return d
}
