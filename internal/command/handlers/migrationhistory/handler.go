// Package migrationhistory реализует команду migration-history: сверку файлов
// миграций в репозитории с таблицей __EFMigrationsHistory в БД приложения.
package migrationhistory

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/Kargones/rb-ci/internal/adapter/efhistory"
	"github.com/Kargones/rb-ci/internal/command"
	"github.com/Kargones/rb-ci/internal/command/handlers/shared"
	"github.com/Kargones/rb-ci/internal/config"
	"github.com/Kargones/rb-ci/internal/constants"
	"github.com/Kargones/rb-ci/internal/migrations"
	"github.com/Kargones/rb-ci/internal/pkg/apperrors"
	"github.com/Kargones/rb-ci/internal/pkg/dryrun"
	"github.com/Kargones/rb-ci/internal/pkg/output"
	"github.com/Kargones/rb-ci/internal/pkg/urlutil"
)

// RegisterCmd регистрирует команду.
func RegisterCmd() {
	command.Register(&Handler{})
}

// OpenFunc открывает чтение таблицы истории.
type OpenFunc func(ctx context.Context, opts efhistory.Options) (efhistory.Reader, error)

// Data - результат сверки.
type Data struct {
	migrations.Diff
	Dir          string `json:"dir"`
	Table        string `json:"table"`
	TableMissing bool   `json:"table_missing,omitempty"`
}

func (d *Data) writeText(w io.Writer) error {
	var sb strings.Builder
	if len(d.Pending) == 0 {
		sb.WriteString("✅ Все миграции применены\n")
	} else {
		sb.WriteString("❌ Есть неприменённые миграции\n")
	}
	fmt.Fprintf(&sb, "Каталог: %s\nТаблица: %s\n", d.Dir, d.Table)
	fmt.Fprintf(&sb, "В репозитории: %d, применено: %d\n", len(d.Local), len(d.Applied))
	if d.TableMissing {
		sb.WriteString("Таблица истории отсутствует: к БД не применена ни одна миграция\n")
	}
	writeList(&sb, "Не применены", d.Pending)
	writeList(&sb, "Применены, но файла нет", d.Unknown)
	_, err := io.WriteString(w, sb.String())
	return err
}

func writeList(sb *strings.Builder, title string, ids []string) {
	if len(ids) == 0 {
		return
	}
	fmt.Fprintf(sb, "\n%s:\n", title)
	for _, id := range ids {
		fmt.Fprintf(sb, "  - %s\n", id)
	}
}

// Handler обрабатывает migration-history.
type Handler struct {
	// open подменяется в тестах; nil - efhistory.Open.
	open OpenFunc
	out  io.Writer
}

// Name возвращает имя команды.
func (h *Handler) Name() string {
	return constants.ActMigrationHistory
}

// Description возвращает описание команды для help.
func (h *Handler) Description() string {
	return "Сверить файлы миграций с таблицей истории миграций в БД (BR_HISTORY_DSN)"
}

// Execute читает каталог миграций и таблицу истории. Неприменённые миграции
// возвращают ошибку; применённые без файла только попадают в предупреждения.
func (h *Handler) Execute(ctx context.Context, cfg *config.Config) error {
	e := shared.Begin(ctx, cfg, constants.ActMigrationHistory, h.out)

	if err := ctx.Err(); err != nil {
		return e.Fail(ctx, cfg, apperrors.ErrMigrationsHistory, "операция отменена: "+err.Error(), nil, nil)
	}
	if cfg == nil || cfg.Migrations == nil || cfg.History == nil {
		return e.Fail(ctx, cfg, apperrors.ErrConfigValidate, "секции migrations и history не загружены", nil, nil)
	}
	if strings.TrimSpace(cfg.History.DSN) == "" {
		return e.Fail(ctx, cfg, apperrors.ErrConfigValidate, "BR_HISTORY_DSN обязателен", nil, nil)
	}
	e.Project = cfg.Migrations.Project
	dir := migrationsDir(cfg)

	handled, plan, err := e.Preview(func() *output.DryRunPlan { return buildPlan(cfg, dir) })
	if handled {
		return err
	}

	local, err := migrations.ScanDir(dir)
	if err != nil {
		return e.Fail(ctx, cfg, apperrors.ErrMigrationsHistory, err.Error(), nil, nil)
	}
	e.Log.Info("Найдены файлы миграций", slog.String("dir", dir), slog.Int("count", len(local)))

	applied, tableMissing, err := h.readApplied(ctx, cfg, e.Log)
	if err != nil {
		e.Log.Error("Не удалось прочитать историю миграций", slog.String("error", err.Error()))
		return e.Fail(ctx, cfg, apperrors.ErrMigrationsHistory, err.Error(), nil, nil)
	}

	data := &Data{
		Diff:         migrations.Compare(local, applied),
		Dir:          dir,
		Table:        cfg.History.Table,
		TableMissing: tableMissing,
	}
	summary := output.NewSummaryInfo()
	summary.AddMetric("local", fmt.Sprint(len(data.Local)), "")
	summary.AddMetric("applied", fmt.Sprint(len(data.Applied)), "")
	for _, id := range data.Unknown {
		e.Log.Warn("Миграция применена, но её файла нет в репозитории", slog.String("migration", id))
		summary.AddWarning("нет файла миграции " + id)
	}

	if len(data.Pending) > 0 {
		msg := fmt.Sprintf("к БД не применено миграций: %d (%s)", len(data.Pending), strings.Join(data.Pending, ", "))
		return e.Fail(ctx, cfg, apperrors.ErrMigrationsNotApplied, msg, data, data.writeText)
	}
	e.Log.Info("История миграций совпадает с репозиторием")
	return e.Success(data, plan, summary, data.writeText)
}

// readApplied возвращает ID применённых миграций. Отсутствие таблицы
// означает пустую историю и не является ошибкой.
func (h *Handler) readApplied(ctx context.Context, cfg *config.Config, log *slog.Logger) (ids []string, tableMissing bool, err error) {
	open := h.open
	if open == nil {
		open = efhistory.Open
	}
	reader, err := open(ctx, cfg.History.Options())
	if err != nil {
		return nil, false, err
	}
	defer func() {
		if cerr := reader.Close(); cerr != nil {
			log.Warn("Ошибка закрытия соединения с БД", slog.String("error", cerr.Error()))
		}
	}()

	rows, err := reader.AppliedMigrations(ctx)
	if errors.Is(err, efhistory.ErrTableNotFound) {
		log.Warn("Таблица истории миграций не найдена, считаем историю пустой",
			slog.String("table", cfg.History.Table),
			slog.String("dsn", urlutil.MaskDSN(cfg.History.DSN)))
		return []string{}, true, nil
	}
	if err != nil {
		return nil, false, err
	}
	ids = make([]string, 0, len(rows))
	for _, r := range rows {
		ids = append(ids, r.MigrationID)
	}
	return ids, false, nil
}

func migrationsDir(cfg *config.Config) string {
	dir := cfg.Migrations.Dir
	if dir == "" {
		dir = constants.DefaultMigrationsDir
	}
	if cfg.WorkDir != "" && !filepath.IsAbs(dir) {
		dir = filepath.Join(cfg.WorkDir, dir)
	}
	return dir
}

func buildPlan(cfg *config.Config, dir string) *output.DryRunPlan {
	hc := cfg.History
	steps := []output.PlanStep{
		{
			Operation:  "Чтение каталога миграций",
			Parameters: map[string]any{"dir": dir},
		},
		{
			Operation: "Чтение таблицы истории",
			Parameters: map[string]any{
				"driver": hc.Driver,
				"dsn":    urlutil.MaskDSN(hc.DSN),
				"schema": hc.Schema,
				"table":  hc.Table,
			},
			ExpectedChanges: []string{"Нет изменений: только SELECT"},
		},
	}
	return dryrun.BuildPlanWithSummary(constants.ActMigrationHistory, steps, "Сверка миграций с "+hc.Table)
}
