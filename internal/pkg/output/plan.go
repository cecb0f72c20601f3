package output

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"time"
)

// DryRunPlan - план операций команды для dry-run, plan-only и verbose.
type DryRunPlan struct {
	Command          string     `json:"command"`
	Steps            []PlanStep `json:"steps"`
	Summary          string     `json:"summary,omitempty"`
	ValidationPassed bool       `json:"validation_passed"`
}

// PlanStep - один шаг плана.
type PlanStep struct {
	Order           int            `json:"order"`
	Operation       string         `json:"operation"`
	Parameters      map[string]any `json:"parameters"`
	ExpectedChanges []string       `json:"expected_changes,omitempty"`
	Skipped         bool           `json:"skipped,omitempty"`
	SkipReason      string         `json:"skip_reason,omitempty"`
}

// WriteText выводит план с заголовком "=== DRY RUN ===".
func (p *DryRunPlan) WriteText(w io.Writer) error {
	return p.writeText(w, "=== DRY RUN ===", "=== END DRY RUN ===")
}

// WritePlanText выводит план с заголовком "=== OPERATION PLAN ===".
func (p *DryRunPlan) WritePlanText(w io.Writer) error {
	return p.writeText(w, "=== OPERATION PLAN ===", "=== END OPERATION PLAN ===")
}

func (p *DryRunPlan) writeText(w io.Writer, header, footer string) error {
	sw := &stickyWriter{w: w}
	sw.printf("\n%s\nКоманда: %s\nВалидация: %s\n\nПлан выполнения:\n",
		header, p.Command, validationStatus(p.ValidationPassed))

	for _, step := range p.Steps {
		if step.Skipped {
			sw.printf("  %d. [SKIP] %s: %s\n", step.Order, step.Operation, step.SkipReason)
			continue
		}
		sw.printf("  %d. %s\n", step.Order, step.Operation)

		keys := make([]string, 0, len(step.Parameters))
		for k := range step.Parameters {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			sw.printf("      %s: %s\n", k, sanitizeValue(step.Parameters[k]))
		}

		if len(step.ExpectedChanges) > 0 {
			sw.printf("      Ожидаемые изменения:\n")
			for _, change := range step.ExpectedChanges {
				sw.printf("        - %s\n", change)
			}
		}
	}

	if p.Summary != "" {
		sw.printf("\nИтого: %s\n", p.Summary)
	}
	sw.printf("%s\n", footer)
	return sw.err
}

func validationStatus(ok bool) string {
	if ok {
		return "✅ Пройдена"
	}
	return "❌ Не пройдена"
}

// sanitizeValue приводит значение параметра к одной строке без ANSI-последовательностей
// и управляющих символов.
func sanitizeValue(v any) string {
	s := fmt.Sprintf("%v", v)
	var b strings.Builder
	inEscape := false
	for _, r := range s {
		switch {
		case r == '\x1b':
			inEscape = true
		case inEscape:
			// ESC [ <params> <letter>
			if (r >= 'A' && r <= 'Z') || (r >= 'a' && r <= 'z') {
				inEscape = false
			}
		case r == '\n' || r == '\t':
			b.WriteRune(' ')
		case r < 32 || r == 127:
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// WritePlanOnlyResult пишет результат plan-only: текстовый план или JSON с plan_only=true.
func WritePlanOnlyResult(w io.Writer, format, command, traceID, apiVersion string, start time.Time, plan *DryRunPlan) error {
	return writePlanResult(w, format, command, traceID, apiVersion, start, plan, true)
}

// WriteDryRunResult пишет результат dry-run: текстовый план или JSON с dry_run=true.
func WriteDryRunResult(w io.Writer, format, command, traceID, apiVersion string, start time.Time, plan *DryRunPlan) error {
	return writePlanResult(w, format, command, traceID, apiVersion, start, plan, false)
}

func writePlanResult(w io.Writer, format, command, traceID, apiVersion string, start time.Time, plan *DryRunPlan, planOnly bool) error {
	if !strings.EqualFold(format, FormatJSON) {
		if planOnly {
			return plan.WritePlanText(w)
		}
		return plan.WriteText(w)
	}

	result := NewSuccessResult(command, nil, NewMetadata(start, traceID, apiVersion))
	result.Plan = plan
	result.PlanOnly = planOnly
	result.DryRun = !planOnly
	return NewJSONWriter().Write(w, result)
}
