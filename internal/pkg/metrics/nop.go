package metrics

import (
	"context"
	"time"
)

// NopCollector ничего не записывает.
type NopCollector struct{}

// NewNopCollector создаёт NopCollector.
func NewNopCollector() *NopCollector {
	return &NopCollector{}
}

func (c *NopCollector) RecordCommandStart(string) {}
func (c *NopCollector) RecordCommandEnd(string, time.Duration, bool) {}
func (c *NopCollector) RecordPageVisit(string, string, time.Duration) {}
func (c *NopCollector) RecordMigrationCheck(string) {}
func (c *NopCollector) Push(context.Context) error { return nil }
