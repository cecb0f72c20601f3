package command

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/Kargones/rb-ci/internal/config"
)

// Deprecatable реализуют обработчики старых имён. help помечает их отдельно.
type Deprecatable interface {
	IsDeprecated() bool
	NewName() string
}

var (
	_ Handler      = (*DeprecatedBridge)(nil)
	_ Deprecatable = (*DeprecatedBridge)(nil)
)

// DeprecatedBridge выполняет команду под старым именем: пишет предупреждение
// в stderr и передаёт управление основному обработчику.
// stdout не трогается, чтобы не ломать JSON-вывод.
type DeprecatedBridge struct {
	actual     Handler
	deprecated string
	newName    string

	// stderr подменяется в тестах.
	stderr io.Writer
}

// Name возвращает старое имя.
func (b *DeprecatedBridge) Name() string { return b.deprecated }

// Description берётся у основного обработчика.
func (b *DeprecatedBridge) Description() string { return b.actual.Description() }

// IsDeprecated всегда true.
func (b *DeprecatedBridge) IsDeprecated() bool { return true }

// NewName - имя, на которое стоит перейти.
func (b *DeprecatedBridge) NewName() string { return b.newName }

// Execute предупреждает о старом имени при каждом вызове.
// Отменённый ctx возвращается сразу, без предупреждения.
func (b *DeprecatedBridge) Execute(ctx context.Context, cfg *config.Config) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	w := b.stderr
	if w == nil {
		w = os.Stderr
	}
	_, _ = fmt.Fprintf(w, "WARNING: command '%s' is deprecated, use '%s' instead\n", b.deprecated, b.newName) //nolint:errcheck // stderr
	return b.actual.Execute(ctx, cfg)
}
