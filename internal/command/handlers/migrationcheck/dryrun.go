package migrationcheck

import (
	"strings"

	"github.com/Kargones/rb-ci/internal/config"
	"github.com/Kargones/rb-ci/internal/constants"
	"github.com/Kargones/rb-ci/internal/migrations"
	"github.com/Kargones/rb-ci/internal/pkg/dryrun"
	"github.com/Kargones/rb-ci/internal/pkg/output"
)

// buildPlan описывает запуск инструмента без самого запуска.
func buildPlan(cfg *config.Config, c Checker) *output.DryRunPlan {
	mc := cfg.Migrations
	params := map[string]any{
		"project":  mc.Project,
		"mode":     mc.Mode,
		"timeout":  mc.Timeout.String(),
		"encoding": mc.Encoding,
		"work_dir": valueOrCurrent(cfg.WorkDir),
	}
	if real, ok := c.(*migrations.Checker); ok {
		params["command"] = real.Command() + " " + strings.Join(dryrun.MaskArgs(real.Args()), " ")
	}

	steps := []output.PlanStep{
		{
			Operation:       "Проверка изменений модели",
			Parameters:      params,
			ExpectedChanges: []string{"Нет изменений: инструмент только сравнивает модель с последней миграцией"},
		},
	}
	return dryrun.BuildPlanWithSummary(constants.ActCheckMigrations, steps, "dotnet ef migrations has-pending-model-changes")
}

func valueOrCurrent(dir string) string {
	if dir == "" {
		return "."
	}
	return dir
}
