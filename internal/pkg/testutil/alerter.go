package testutil

import (
	"context"
	"sync"

	"github.com/Kargones/rb-ci/internal/pkg/alerting"
)

// AlertRecorder запоминает отправленные алерты.
type AlertRecorder struct {
	mu     sync.Mutex
	alerts []alerting.Alert
}

var _ alerting.Alerter = (*AlertRecorder)(nil)

// Send сохраняет алерт.
func (r *AlertRecorder) Send(_ context.Context, a alerting.Alert) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.alerts = append(r.alerts, a)
	return nil
}

// Codes возвращает коды ошибок отправленных алертов по порядку.
func (r *AlertRecorder) Codes() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	codes := make([]string, 0, len(r.alerts))
	for _, a := range r.alerts {
		codes = append(codes, a.ErrorCode)
	}
	return codes
}

// Alerts возвращает копию отправленных алертов.
func (r *AlertRecorder) Alerts() []alerting.Alert {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]alerting.Alert(nil), r.alerts...)
}
