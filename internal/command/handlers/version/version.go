// Package version реализует команду version: версия сборки и старые имена команд.
package version

import (
	"context"
	"fmt"
	"io"
	"runtime"

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

// Data содержит информацию о версии приложения.
type Data struct {
	Version   string `json:"version"`
	GoVersion string `json:"go_version"`
	Commit    string `json:"commit"`
	// Aliases - соответствие команд их старым именам для отката CI-скриптов.
	Aliases []AliasEntry `json:"aliases"`
}

// AliasEntry - команда и её старое имя.
type AliasEntry struct {
	Command     string `json:"command"`
	LegacyAlias string `json:"legacy_alias"`
}

func (d *Data) writeText(w io.Writer) error {
	_, err := fmt.Fprintf(w, "%s version %s\n  Go:     %s\n  Commit: %s\n",
		constants.AppName, d.Version, d.GoVersion, d.Commit)
	if err != nil {
		return err
	}
	if len(d.Aliases) == 0 {
		return nil
	}
	if _, err = fmt.Fprintln(w, "\nСтарые имена команд:"); err != nil {
		return err
	}
	for _, a := range d.Aliases {
		if _, err = fmt.Fprintf(w, "  %-20s → %s\n", a.Command, a.LegacyAlias); err != nil {
			return err
		}
	}
	return nil
}

// buildData подставляет "dev" и "unknown", если версия не задана при сборке.
func buildData(version, commit string) *Data {
	if version == "" {
		version = "dev"
	}
	if commit == "" {
		commit = "unknown"
	}
	aliases := []AliasEntry{}
	for _, info := range command.ListAllWithAliases() {
		if info.DeprecatedAlias != "" {
			aliases = append(aliases, AliasEntry{Command: info.Name, LegacyAlias: info.DeprecatedAlias})
		}
	}
	return &Data{
		Version:   version,
		GoVersion: runtime.Version(),
		Commit:    commit,
		Aliases:   aliases,
	}
}

// Handler обрабатывает команду version.
type Handler struct {
	out io.Writer
}

// Name возвращает имя команды.
func (h *Handler) Name() string {
	return constants.ActVersion
}

// Description возвращает описание команды для вывода в help.
func (h *Handler) Description() string {
	return "Вывод информации о версии приложения"
}

// Execute выводит версию. Текстовый формат без metadata, JSON со стандартным Result.
func (h *Handler) Execute(ctx context.Context, cfg *config.Config) error {
	e := shared.Begin(ctx, cfg, constants.ActVersion, h.out)
	if !dryrun.IsDryRun() && dryrun.IsPlanOnly() {
		return dryrun.WritePlanOnlyUnsupported(e.Out, constants.ActVersion)
	}
	data := buildData(constants.Version, constants.PreCommitHash)
	return e.Success(data, nil, nil, data.writeText)
}
