package metrics

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/Kargones/rb-ci/internal/pkg/logging"
	"github.com/Kargones/rb-ci/internal/pkg/urlutil"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
)

const namespace = "rb_ci"

// PrometheusCollector реализует Collector поверх приватного prometheus.Registry.
type PrometheusCollector struct {
	config   Config
	logger   logging.Logger
	registry *prometheus.Registry
	instance string

	commandDuration *prometheus.HistogramVec
	commandTotal    *prometheus.CounterVec
	pageDuration    *prometheus.HistogramVec
	pageTotal       *prometheus.CounterVec
	migrationChecks *prometheus.CounterVec
}

// NewPrometheusCollector регистрирует метрики:
//   - rb_ci_command_duration_seconds{command,status}
//   - rb_ci_command_total{command,status}
//   - rb_ci_page_visit_duration_seconds{path,outcome}
//   - rb_ci_page_visit_total{path,outcome}
//   - rb_ci_migration_check_total{result}
func NewPrometheusCollector(config Config, logger logging.Logger) (*PrometheusCollector, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	instance := config.InstanceLabel
	if instance == "" {
		hostname, err := os.Hostname()
		if err != nil {
			logger.Warn("не удалось получить hostname для metrics instance label, используется 'unknown'",
				"error", err.Error())
			hostname = "unknown"
		}
		instance = hostname
	}

	c := &PrometheusCollector{
		config:   config,
		logger:   logger,
		registry: prometheus.NewRegistry(),
		instance: instance,
		// check-migrations с dotnet build укладывается в минуты, smoke-pages с прогревом тоже.
		commandDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "command_duration_seconds",
			Help:      "Duration of rb-ci command execution in seconds",
			Buckets:   []float64{1, 5, 10, 30, 60, 120, 300, 600, 1200},
		}, []string{"command", "status"}),
		commandTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "command_total",
			Help:      "Total number of rb-ci command executions",
		}, []string{"command", "status"}),
		pageDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "page_visit_duration_seconds",
			Help:      "Duration of a single smoke page visit including settle time",
			Buckets:   []float64{0.5, 1, 2, 3, 5, 10, 20, 30, 60},
		}, []string{"path", "outcome"}),
		pageTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "page_visit_total",
			Help:      "Total number of smoke page visits by outcome",
		}, []string{"path", "outcome"}),
		migrationChecks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "migration_check_total",
			Help:      "Total number of pending model change checks by result",
		}, []string{"result"}),
	}

	// Register вместо MustRegister: ошибка возможна только при дубликате имени.
	for _, m := range []prometheus.Collector{
		c.commandDuration, c.commandTotal, c.pageDuration, c.pageTotal, c.migrationChecks,
	} {
		if err := c.registry.Register(m); err != nil {
			return nil, fmt.Errorf("ошибка регистрации метрики: %w", err)
		}
	}
	return c, nil
}

// RecordCommandStart только логирует: in-flight для CLI не нужен.
func (c *PrometheusCollector) RecordCommandStart(command string) {
	c.logger.Debug("metrics: command started", "command", command)
}

// RecordCommandEnd записывает длительность и результат команды.
func (c *PrometheusCollector) RecordCommandEnd(command string, duration time.Duration, success bool) {
	status := "success"
	if !success {
		status = "error"
	}
	command = sanitizeLabel(command)

	c.commandDuration.WithLabelValues(command, status).Observe(duration.Seconds())
	c.commandTotal.WithLabelValues(command, status).Inc()

	c.logger.Debug("metrics: command ended",
		"command", command,
		"duration_ms", duration.Milliseconds(),
		"success", success,
	)
}

// RecordPageVisit записывает результат посещения страницы.
func (c *PrometheusCollector) RecordPageVisit(path, outcome string, duration time.Duration) {
	path = sanitizeLabel(path)
	outcome = sanitizeLabel(outcome)

	c.pageDuration.WithLabelValues(path, outcome).Observe(duration.Seconds())
	c.pageTotal.WithLabelValues(path, outcome).Inc()
}

// RecordMigrationCheck записывает результат проверки миграций.
func (c *PrometheusCollector) RecordMigrationCheck(result string) {
	c.migrationChecks.WithLabelValues(sanitizeLabel(result)).Inc()
}

// maxLabelLength ограничивает cardinality при длинных путях страниц.
const maxLabelLength = 128

// sanitizeLabel заменяет управляющие символы на '_' и обрезает значение по рунам.
func sanitizeLabel(value string) string {
	clean := strings.Map(func(r rune) rune {
		if r < 0x20 {
			return '_'
		}
		return r
	}, value)

	runes := []rune(clean)
	if len(runes) > maxLabelLength {
		return string(runes[:maxLabelLength])
	}
	return clean
}

// Push отправляет метрики в Pushgateway. Ошибка логируется, возвращается nil.
func (c *PrometheusCollector) Push(ctx context.Context) error {
	if ctx.Err() != nil {
		c.logger.Debug("metrics push отменён")
		return nil
	}

	pushCtx, cancel := context.WithTimeout(ctx, c.config.Timeout)
	defer cancel()

	err := push.New(c.config.PushgatewayURL, c.config.JobName).
		Gatherer(c.registry).
		Grouping("instance", c.instance).
		PushContext(pushCtx)
	if err != nil {
		c.logger.Error("ошибка отправки метрик в Pushgateway",
			"error", err.Error(),
			"url", urlutil.MaskURL(c.config.PushgatewayURL),
			"job", c.config.JobName,
		)
		return nil
	}

	c.logger.Info("метрики отправлены в Pushgateway",
		"url", urlutil.MaskURL(c.config.PushgatewayURL),
		"job", c.config.JobName,
		"instance", c.instance,
	)
	return nil
}

// GetRegistry возвращает внутренний registry. Используется в тестах.
func (c *PrometheusCollector) GetRegistry() *prometheus.Registry {
	return c.registry
}
