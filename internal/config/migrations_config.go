package config

import (
	"fmt"
	"time"

	"github.com/Kargones/rb-ci/internal/constants"
	"github.com/Kargones/rb-ci/internal/migrations"
	"github.com/Kargones/rb-ci/internal/util/runner"
)

// MigrationsConfig - настройки check-migrations и каталога миграций для migration-history.
type MigrationsConfig struct {
	// Tool - исполняемый файл, обычно dotnet.
	Tool string `yaml:"tool" env:"BR_MIGRATIONS_TOOL" env-default:"dotnet"`

	// Project - путь к .csproj, передаётся в --project.
	Project string `yaml:"project" env:"BR_MIGRATIONS_PROJECT" env-default:"./ReplayBrowser/ReplayBrowser.csproj"`

	// ExtraArgs добавляются после --project, например --no-build.
	ExtraArgs []string `yaml:"extraArgs" env:"BR_MIGRATIONS_EXTRA_ARGS" env-separator:","`

	// Mode - strict, exit-code или sentence.
	Mode string `yaml:"mode" env:"BR_MIGRATIONS_MODE" env-default:"strict"`

	// Sentence - фраза инструмента об отсутствии изменений.
	Sentence string `yaml:"sentence" env:"BR_MIGRATIONS_SENTENCE"`

	// Encoding вывода инструмента: auto, utf-8, cp866, windows-1251.
	Encoding string `yaml:"encoding" env:"BR_MIGRATIONS_ENCODING" env-default:"auto"`

	Timeout time.Duration `yaml:"timeout" env:"BR_MIGRATIONS_TIMEOUT" env-default:"10m"`

	// Dir - каталог файлов миграций.
	Dir string `yaml:"dir" env:"BR_MIGRATIONS_DIR" env-default:"./ReplayBrowser/Data/Migrations"`
}

func isMigrationsConfigPresent(c *MigrationsConfig) bool {
	return c != nil && (c.Tool != "" || c.Project != "" || c.Mode != "" || c.Dir != "")
}

func getDefaultMigrationsConfig() *MigrationsConfig {
	return &MigrationsConfig{
		Tool:     constants.DefaultRuntime,
		Project:  constants.DefaultProject,
		Mode:     string(migrations.ModeStrict),
		Sentence: constants.SearchMsgNoModelChanges,
		Encoding: runner.EncodingAuto,
		Timeout:  migrations.DefaultTimeout,
		Dir:      constants.DefaultMigrationsDir,
	}
}

// Validate проверяет режим, кодировку и таймаут.
func (c *MigrationsConfig) Validate() error {
	if c.Tool == "" {
		return fmt.Errorf("migrations: tool обязателен")
	}
	if _, err := migrations.ParseMode(c.Mode); err != nil {
		return fmt.Errorf("migrations: %w", err)
	}
	if err := runner.ValidateEncoding(c.Encoding); err != nil {
		return fmt.Errorf("migrations: %w", err)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("migrations: timeout должен быть положительным")
	}
	return nil
}
