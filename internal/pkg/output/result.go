// Package output форматирует результаты команд rb-ci в JSON и текст.
// Результат пишется в stdout, логи идут в stderr.
package output

import "time"

// Значения Result.Status.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Result - структурированный результат выполнения команды.
type Result struct {
	Status  string `json:"status"`
	Command string `json:"command"`

	// Data - типизированный payload конкретной команды.
	Data any `json:"data,omitempty"`

	// Error заполняется только при Status == StatusError.
	Error *ErrorInfo `json:"error,omitempty"`

	Metadata *Metadata `json:"metadata,omitempty"`

	DryRun   bool        `json:"dry_run,omitempty"`
	PlanOnly bool        `json:"plan_only,omitempty"`
	Plan     *DryRunPlan `json:"plan,omitempty"`

	// Summary в JSON выводится как metadata.summary, см. JSONWriter.
	Summary *SummaryInfo `json:"-"`
}

// ErrorInfo - код и описание ошибки. Message не должен содержать секретов.
type ErrorInfo struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Metadata - метаданные выполнения.
type Metadata struct {
	DurationMs int64        `json:"duration_ms"`
	TraceID    string       `json:"trace_id,omitempty"`
	APIVersion string       `json:"api_version"`
	Summary    *SummaryInfo `json:"summary,omitempty"`
}

// NewMetadata заполняет Metadata длительностью от start.
func NewMetadata(start time.Time, traceID, apiVersion string) *Metadata {
	return &Metadata{
		DurationMs: time.Since(start).Milliseconds(),
		TraceID:    traceID,
		APIVersion: apiVersion,
	}
}

// NewSuccessResult создаёт успешный результат команды.
func NewSuccessResult(command string, data any, meta *Metadata) *Result {
	return &Result{
		Status:   StatusSuccess,
		Command:  command,
		Data:     data,
		Metadata: meta,
	}
}

// NewErrorResult создаёт результат с ошибкой. data может быть nil:
// например, smoke-pages отдаёт отчёт по страницам и при неуспехе.
func NewErrorResult(command, code, message string, data any, meta *Metadata) *Result {
	return &Result{
		Status:   StatusError,
		Command:  command,
		Data:     data,
		Error:    &ErrorInfo{Code: code, Message: message},
		Metadata: meta,
	}
}
