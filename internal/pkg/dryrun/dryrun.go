// Package dryrun реализует режимы dry-run, plan-only и verbose.
// В dry-run команда возвращает план действий и не запускает внешних процессов.
package dryrun

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/Kargones/rb-ci/internal/constants"
	"github.com/Kargones/rb-ci/internal/pkg/output"
	"github.com/Kargones/rb-ci/internal/pkg/urlutil"
)

// Режимы выполнения команды.
const (
	ModeDryRun   = "dry-run"
	ModePlanOnly = "plan-only"
	ModeVerbose  = "verbose"
	ModeNormal   = "normal"
)

func envFlag(name string) bool {
	val := os.Getenv(name)
	return strings.EqualFold(val, "true") || val == "1"
}

// IsDryRun - BR_DRY_RUN равен "true" (без учёта регистра) или "1".
func IsDryRun() bool { return envFlag(constants.EnvDryRun) }

// IsPlanOnly - BR_PLAN_ONLY равен "true" или "1".
func IsPlanOnly() bool { return envFlag(constants.EnvPlanOnly) }

// IsVerbose - BR_VERBOSE равен "true" или "1".
func IsVerbose() bool { return envFlag(constants.EnvVerbose) }

// EffectiveMode возвращает режим с наибольшим приоритетом:
// dry-run > plan-only > verbose > normal.
func EffectiveMode() string {
	switch {
	case IsDryRun():
		return ModeDryRun
	case IsPlanOnly():
		return ModePlanOnly
	case IsVerbose():
		return ModeVerbose
	default:
		return ModeNormal
	}
}

// WritePlanOnlyUnsupported выводит предупреждение для команд без плана.
// Всегда возвращает nil: информационное сообщение не меняет exit code.
func WritePlanOnlyUnsupported(w io.Writer, command string) error {
	fmt.Fprintf(w, "Команда %s не поддерживает отображение плана операций\n", command) //nolint:errcheck // best-effort output
	return nil
}

// BuildPlan создаёт план операций.
func BuildPlan(command string, steps []output.PlanStep) *output.DryRunPlan {
	return BuildPlanWithSummary(command, steps, "")
}

// BuildPlanWithSummary создаёт план операций с кратким описанием.
func BuildPlanWithSummary(command string, steps []output.PlanStep, summary string) *output.DryRunPlan {
	for i := range steps {
		if steps[i].Order == 0 {
			steps[i].Order = i + 1
		}
	}
	return &output.DryRunPlan{
		Command:          command,
		Steps:            steps,
		Summary:          summary,
		ValidationPassed: true,
	}
}

// secretFlags - аргументы dotnet, за которыми следует строка подключения.
var secretFlags = map[string]bool{
	"--connection": true,
}

// MaskArgs возвращает копию аргументов командной строки,
// в которой строки подключения замаскированы через urlutil.MaskDSN.
// Поддерживаются формы "--connection <dsn>" и "--connection=<dsn>".
func MaskArgs(args []string) []string {
	masked := make([]string, len(args))
	copy(masked, args)
	for i := 0; i < len(masked); i++ {
		arg := masked[i]
		if name, value, ok := strings.Cut(arg, "="); ok && secretFlags[name] {
			masked[i] = name + "=" + urlutil.MaskDSN(value)
			continue
		}
		if secretFlags[arg] && i+1 < len(masked) {
			masked[i+1] = urlutil.MaskDSN(masked[i+1])
			i++
		}
	}
	return masked
}
