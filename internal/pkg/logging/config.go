package logging

// Форматы, уровни и приёмники логов. Те же строки принимают
// BR_LOG_FORMAT, BR_LOG_LEVEL и BR_LOG_OUTPUT.
const (
	FormatJSON = "json"
	FormatText = "text"

	LevelDebug = "debug"
	LevelInfo  = "info"
	LevelWarn  = "warn"
	LevelError = "error"

	// OutputStderr - журнал CI-задачи. stdout занят результатом команды.
	OutputStderr = "stderr"
	// OutputFile - файл с ротацией lumberjack, для долгих прогонов smoke-pages на агенте.
	OutputFile = "file"
)

// Значения по умолчанию для запуска в CI: текст в stderr на уровне info.
// Файловые параметры действуют только при BR_LOG_OUTPUT=file.
const (
	DefaultLevel      = LevelInfo
	DefaultFormat     = FormatText
	DefaultOutput     = OutputStderr
	DefaultFilePath   = "/var/log/rb-ci.log"
	DefaultMaxSize    = 100 // MB
	DefaultMaxBackups = 3
	DefaultMaxAge     = 7 // дней
	DefaultCompress   = true
)

// DefaultConfig возвращает настройки, которыми di.ProvideSlog заполняет
// пустые поля секции logging.
func DefaultConfig() Config {
	return Config{
		Level:      DefaultLevel,
		Format:     DefaultFormat,
		Output:     DefaultOutput,
		FilePath:   DefaultFilePath,
		MaxSize:    DefaultMaxSize,
		MaxBackups: DefaultMaxBackups,
		MaxAge:     DefaultMaxAge,
		Compress:   DefaultCompress,
	}
}

// Config - настройки логгера одного запуска rb-ci.
// Собирается из config.LoggingConfig в di.ProvideSlog.
type Config struct {
	Format string
	Level  string
	Output string

	// Ротация файла лога, см. lumberjack.Logger.
	FilePath   string
	MaxSize    int
	MaxBackups int
	MaxAge     int
	Compress   bool
}
