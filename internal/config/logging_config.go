package config

import (
	"fmt"

	"github.com/Kargones/rb-ci/internal/pkg/logging"
)

// LoggingConfig - настройки логирования. Переводится в logging.Config в di.ProvideSlog.
type LoggingConfig struct {
	// Level: debug, info, warn, error.
	Level string `yaml:"level" env:"BR_LOG_LEVEL" env-default:"info"`

	// Format: text или json.
	Format string `yaml:"format" env:"BR_LOG_FORMAT" env-default:"text"`

	// Output: stderr или file. stdout занят результатом команды.
	Output string `yaml:"output" env:"BR_LOG_OUTPUT" env-default:"stderr"`

	FilePath   string `yaml:"filePath" env:"BR_LOG_FILE_PATH"`
	MaxSize    int    `yaml:"maxSize" env:"BR_LOG_MAX_SIZE" env-default:"100"`
	MaxBackups int    `yaml:"maxBackups" env:"BR_LOG_MAX_BACKUPS" env-default:"3"`
	MaxAge     int    `yaml:"maxAge" env:"BR_LOG_MAX_AGE" env-default:"7"`

	// Compress без env-default: cleanenv перезаписал бы false из YAML.
	// Значение по умолчанию true задаёт getDefaultLoggingConfig.
	Compress bool `yaml:"compress" env:"BR_LOG_COMPRESS"`
}

func isLoggingConfigPresent(c *LoggingConfig) bool {
	return c != nil && (c.Level != "" || c.Format != "" || c.Output != "" || c.FilePath != "")
}

func getDefaultLoggingConfig() *LoggingConfig {
	return &LoggingConfig{
		Level:      logging.DefaultLevel,
		Format:     logging.DefaultFormat,
		Output:     logging.DefaultOutput,
		FilePath:   logging.DefaultFilePath,
		MaxSize:    logging.DefaultMaxSize,
		MaxBackups: logging.DefaultMaxBackups,
		MaxAge:     logging.DefaultMaxAge,
		Compress:   logging.DefaultCompress,
	}
}

// Validate проверяет перечислимые поля.
func (c *LoggingConfig) Validate() error {
	switch c.Level {
	case logging.LevelDebug, logging.LevelInfo, logging.LevelWarn, logging.LevelError:
	default:
		return fmt.Errorf("logging: неизвестный уровень %q", c.Level)
	}
	switch c.Format {
	case logging.FormatText, logging.FormatJSON:
	default:
		return fmt.Errorf("logging: неизвестный формат %q", c.Format)
	}
	switch c.Output {
	case logging.OutputStderr, logging.OutputFile:
	default:
		return fmt.Errorf("logging: неизвестный вывод %q", c.Output)
	}
	return nil
}
