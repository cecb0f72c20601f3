// Package help реализует команду help: список команд rb-ci и переменных режимов.
package help

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/Kargones/rb-ci/internal/command"
	"github.com/Kargones/rb-ci/internal/command/handlers/shared"
	"github.com/Kargones/rb-ci/internal/config"
	"github.com/Kargones/rb-ci/internal/constants"
	"github.com/Kargones/rb-ci/internal/pkg/dryrun"
)

// RegisterCmd регистрирует команду.
func RegisterCmd() {
	command.Register(&Handler{})
}

// Data - список доступных команд.
type Data struct {
	Commands []CommandInfo `json:"commands"`
}

// CommandInfo описывает одну команду.
type CommandInfo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	// DeprecatedAlias - старое имя, под которым команда запускалась в CI.
	DeprecatedAlias string `json:"deprecated_alias,omitempty"`
}

// Handler обрабатывает команду help.
type Handler struct {
	out io.Writer
}

// Name возвращает имя команды.
func (h *Handler) Name() string {
	return constants.ActHelp
}

// Description возвращает описание команды для вывода в help.
func (h *Handler) Description() string {
	return "Вывод списка доступных команд"
}

// Execute выводит список команд.
func (h *Handler) Execute(ctx context.Context, cfg *config.Config) error {
	e := shared.Begin(ctx, cfg, constants.ActHelp, h.out)
	if !dryrun.IsDryRun() && dryrun.IsPlanOnly() {
		return dryrun.WritePlanOnlyUnsupported(e.Out, constants.ActHelp)
	}
	data := buildData()
	return e.Success(data, nil, nil, data.writeText)
}

func buildData() *Data {
	data := &Data{Commands: []CommandInfo{}}
	for _, info := range command.ListAllWithAliases() {
		data.Commands = append(data.Commands, CommandInfo{
			Name:            info.Name,
			Description:     info.Description,
			DeprecatedAlias: info.DeprecatedAlias,
		})
	}
	return data
}

func (d *Data) writeText(w io.Writer) error {
	var sb strings.Builder

	sb.WriteString("rb-ci — проверки ReplayBrowser в CI\n")
	sb.WriteString("\nИспользование: rb-ci <команда> или BR_COMMAND=<команда> rb-ci\n")
	sb.WriteString("\nКоманды:\n")

	maxLen := 0
	for _, cmd := range d.Commands {
		maxLen = max(maxLen, len(cmd.Name))
	}
	for _, cmd := range d.Commands {
		fmt.Fprintf(&sb, "  %-*s  %s\n", maxLen, cmd.Name, cmd.Description)
		if cmd.DeprecatedAlias != "" {
			fmt.Fprintf(&sb, "  %-*s  старое имя: %s\n", maxLen, "", cmd.DeprecatedAlias)
		}
	}

	sb.WriteString("\nОпции:\n")
	sb.WriteString("  BR_OUTPUT_FORMAT=json    Машиночитаемый вывод\n")
	sb.WriteString("  BR_DRY_RUN=true          Dry-run: план без выполнения\n")
	sb.WriteString("  BR_PLAN_ONLY=true        Только план операций без выполнения\n")
	sb.WriteString("  BR_VERBOSE=true          План операций перед выполнением\n")
	sb.WriteString("  BR_CONFIG_FILE=<path>    YAML с секциями migrations, smoke, history, logging, metrics, tracing, alerting\n")

	_, err := io.WriteString(w, sb.String())
	return err
}
