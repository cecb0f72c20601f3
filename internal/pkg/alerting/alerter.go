// Package alerting отправляет алерты о провале CI-проверок во внешний webhook
// (Slack/Discord/Mattermost-совместимый приёмник или собственный сервис).
package alerting

import (
	"context"
	"time"
)

// Severity - уровень критичности алерта.
type Severity int

const (
	SeverityInfo Severity = iota
	SeverityWarning
	SeverityCritical
)

// ChannelWebhook - имя webhook канала в логах.
const ChannelWebhook = "webhook"

// String возвращает INFO, WARNING, CRITICAL или UNKNOWN.
func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "INFO"
	case SeverityWarning:
		return "WARNING"
	case SeverityCritical:
		return "CRITICAL"
	default:
		return "UNKNOWN"
	}
}

// Alert - данные алерта.
type Alert struct {
	// ErrorCode используется и для rate limiting, например "SMOKE.PAGES_FAILED".
	ErrorCode string
	Message   string
	TraceID   string
	Timestamp time.Time
	Command   string
	// Project - проверяемый проект, например ./ReplayBrowser/ReplayBrowser.csproj.
	Project  string
	Severity Severity
}

// Alerter отправляет алерты.
//
// Send всегда возвращает nil: недоступность приёмника алертов
// не должна менять результат CI-проверки. Ошибки логируются.
type Alerter interface {
	Send(ctx context.Context, alert Alert) error
}
