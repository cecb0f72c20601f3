// Package metrics собирает метрики запуска rb-ci и отправляет их в Prometheus Pushgateway.
//
// CLI живёт секунды или минуты, поэтому scrape невозможен: метрики копятся
// в приватном registry и отправляются одним Push в конце команды.
package metrics

import (
	"context"
	"time"
)

// Collector определяет интерфейс для сбора метрик.
// Реализации: PrometheusCollector и NopCollector.
type Collector interface {
	// RecordCommandStart отмечает начало команды.
	RecordCommandStart(command string)

	// RecordCommandEnd записывает длительность и результат команды.
	RecordCommandEnd(command string, duration time.Duration, success bool)

	// RecordPageVisit записывает результат посещения одной страницы smoke-проверки.
	// outcome - ok, http_error, no_response, exception_marker, marker_missing, visit_error.
	RecordPageVisit(path, outcome string, duration time.Duration)

	// RecordMigrationCheck записывает результат проверки миграций: clean, pending или error.
	RecordMigrationCheck(result string)

	// Push отправляет метрики в Pushgateway.
	// Все реализации возвращают nil: ошибка отправки логируется и не влияет на exit code.
	Push(ctx context.Context) error
}
