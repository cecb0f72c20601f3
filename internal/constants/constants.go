// Package constants содержит все константы, используемые в проекте rb-ci.
// Константы сгруппированы по их функциональному назначению для удобства использования и поддержки.
package constants

// Константы сообщений приложения
const (
	// MsgAppExit - сообщение о завершении работы программы
	MsgAppExit = "Завершение работы программы"
	// MsgErrProcessing - сообщение об обработке ошибки
	MsgErrProcessing = "Обработка ошибки"
)

// Константы действий (команд)
const (
	// ActCheckMigrations - проверка наличия незафиксированных изменений модели
	ActCheckMigrations = "check-migrations"
	// ActSmokePages - smoke-проверка страниц приложения в браузере
	ActSmokePages = "smoke-pages"
	// ActMigrationHistory - сверка файлов миграций с таблицей истории в БД
	ActMigrationHistory = "migration-history"
	// ActVersion - вывод информации о версии
	ActVersion = "version"
	// ActHelp - вывод списка команд
	ActHelp = "help"
)

// Имена исторических скриптов, под которыми команды запускались в CI.
// Регистрируются как deprecated-алиасы.
const (
	// LegacyCheckMigrations - старое имя check-migrations
	LegacyCheckMigrations = "check-model-pending-changes"
	// LegacySmokePages - старое имя smoke-pages
	LegacySmokePages = "test-pages-for-errors"
)

// Константы форматов и окружения
const (
	// APIVersion - версия формата JSON-вывода
	APIVersion = "v1"
	// AppName - имя приложения для логов, метрик и трейсов
	AppName = "rb-ci"
	// TracerName - имя OTel tracer
	TracerName = "rb-ci"
)

// Переменные окружения режимов выполнения
const (
	// EnvCommand - имя команды для cmd/rb-ci
	EnvCommand = "BR_COMMAND"
	// EnvOutputFormat - формат вывода результата (text|json)
	EnvOutputFormat = "BR_OUTPUT_FORMAT"
	// EnvDryRun - режим dry-run
	EnvDryRun = "BR_DRY_RUN"
	// EnvPlanOnly - режим вывода плана без выполнения
	EnvPlanOnly = "BR_PLAN_ONLY"
	// EnvVerbose - вывод плана перед выполнением
	EnvVerbose = "BR_VERBOSE"
	// EnvShowProgress - управление прогресс-баром
	EnvShowProgress = "BR_SHOW_PROGRESS"
)

// Константы целевого приложения (ReplayBrowser)
const (
	// DefaultRuntime - исполняемый файл среды выполнения приложения
	DefaultRuntime = "dotnet"
	// DefaultProject - путь к проекту приложения относительно рабочей директории
	DefaultProject = "./ReplayBrowser/ReplayBrowser.csproj"
	// DefaultBuildConfiguration - конфигурация сборки для smoke-проверки
	DefaultBuildConfiguration = "Testing"
	// DefaultBaseURL - адрес, на котором приложение слушает после прогрева
	DefaultBaseURL = "http://localhost:5000"
	// DefaultMigrationsDir - каталог файлов миграций EF Core
	DefaultMigrationsDir = "./ReplayBrowser/Data/Migrations"
	// DefaultHistoryTable - таблица истории миграций EF Core
	DefaultHistoryTable = "__EFMigrationsHistory"
)

// Строки, по которым анализируется вывод внешних инструментов
const (
	// SearchMsgNoModelChanges - фраза dotnet ef об отсутствии изменений модели
	SearchMsgNoModelChanges = "No changes have been made to the model since the last migration."
	// ErrorMarkerSelector - элемент страницы исключения ASP.NET Core в режиме разработки
	ErrorMarkerSelector = "pre.rawExceptionStackTrace"
)
