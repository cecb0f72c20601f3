package pagesmoke

import (
	"fmt"
	"strings"

	"github.com/Kargones/rb-ci/internal/config"
	"github.com/Kargones/rb-ci/internal/constants"
	"github.com/Kargones/rb-ci/internal/pkg/dryrun"
	"github.com/Kargones/rb-ci/internal/pkg/output"
	"github.com/Kargones/rb-ci/internal/smoke"
)

// buildPlan описывает четыре фазы прогона без их выполнения.
func buildPlan(cfg *config.Config, targets []smoke.Target, source string) *output.DryRunPlan {
	sc := cfg.Smoke
	paths := make([]string, 0, len(targets))
	for _, t := range targets {
		paths = append(paths, t.Path)
	}
	envKeys := make([]string, 0, len(sc.AppEnv))
	for _, kv := range sc.AppEnv {
		key, _, _ := strings.Cut(kv, "=")
		envKeys = append(envKeys, key)
	}
	workDir := cfg.WorkDir
	if workDir == "" {
		workDir = "."
	}

	steps := []output.PlanStep{
		{
			Operation: "Запуск приложения",
			Parameters: map[string]any{
				"command":  sc.Runtime + " " + strings.Join(dryrun.MaskArgs(sc.RunArgs()), " "),
				"work_dir": workDir,
				"env":      strings.Join(envKeys, ","),
			},
			ExpectedChanges: []string{"Приложение будет запущено в отдельной группе процессов"},
		},
		{
			Operation: "Прогрев",
			Parameters: map[string]any{
				"mode":     sc.Warmup,
				"delay":    sc.WarmupDelay.String(),
				"base_url": sc.BaseURL,
			},
		},
		{
			Operation: "Обход страниц",
			Parameters: map[string]any{
				"browser":         sc.Browser,
				"load_condition":  sc.LoadCondition,
				"settle_delay":    sc.SettleDelay.String(),
				"targets_source":  source,
				"targets":         strings.Join(paths, ", "),
				"fail_on_console": !sc.IgnoreConsoleErrors,
			},
		},
		{
			Operation: "Остановка приложения",
			Parameters: map[string]any{
				"grace_period": sc.GracePeriod.String(),
			},
			ExpectedChanges: []string{"SIGTERM группе процессов, после grace period SIGKILL"},
		},
	}
	return dryrun.BuildPlanWithSummary(constants.ActSmokePages, steps,
		fmt.Sprintf("Проверка %d страниц на %s", len(targets), sc.BaseURL))
}
