package testutil

import (
	"sync"
	"time"

	"github.com/Kargones/rb-ci/internal/pkg/metrics"
)

// MetricsRecorder запоминает вызовы metrics.Collector.
type MetricsRecorder struct {
	metrics.NopCollector

	mu               sync.Mutex
	MigrationResults []string
	PageOutcomes     map[string]string
	Commands         map[string]bool
}

var _ metrics.Collector = (*MetricsRecorder)(nil)

// RecordMigrationCheck сохраняет результат.
func (r *MetricsRecorder) RecordMigrationCheck(result string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.MigrationResults = append(r.MigrationResults, result)
}

// RecordPageVisit сохраняет исход по пути.
func (r *MetricsRecorder) RecordPageVisit(path, outcome string, _ time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.PageOutcomes == nil {
		r.PageOutcomes = make(map[string]string)
	}
	r.PageOutcomes[path] = outcome
}

// RecordCommandEnd сохраняет успех команды.
func (r *MetricsRecorder) RecordCommandEnd(command string, _ time.Duration, success bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Commands == nil {
		r.Commands = make(map[string]bool)
	}
	r.Commands[command] = success
}
