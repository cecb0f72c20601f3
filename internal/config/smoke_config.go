package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/Kargones/rb-ci/internal/adapter/browser"
	"github.com/Kargones/rb-ci/internal/constants"
	"github.com/Kargones/rb-ci/internal/util/runner"
)

// Режимы прогрева и браузеры.
const (
	WarmupFixed = "fixed"
	WarmupPoll  = "poll"

	BrowserChrome = "chrome"
	BrowserHTTP   = "http"
)

// TargetConfig - страница из секции smoke.targets.
type TargetConfig struct {
	Path         string `yaml:"path"`
	ExpectStatus int    `yaml:"expect_status"`
	ExpectMarker bool   `yaml:"expect_marker"`
}

// SmokeConfig - настройки smoke-pages.
type SmokeConfig struct {
	// Runtime запускает приложение: <runtime> run --no-build --project <Project> --configuration <Configuration>.
	Runtime       string   `yaml:"runtime" env:"BR_SMOKE_RUNTIME" env-default:"dotnet"`
	Project       string   `yaml:"project" env:"BR_SMOKE_PROJECT" env-default:"./ReplayBrowser/ReplayBrowser.csproj"`
	Configuration string   `yaml:"configuration" env:"BR_SMOKE_CONFIGURATION" env-default:"Testing"`
	ExtraArgs     []string `yaml:"extraArgs" env:"BR_SMOKE_EXTRA_ARGS" env-separator:","`
	// AppEnv - дополнительные переменные окружения приложения, KEY=VALUE.
	AppEnv []string `yaml:"appEnv" env:"BR_SMOKE_APP_ENV" env-separator:","`

	BaseURL string `yaml:"baseUrl" env:"BR_SMOKE_BASE_URL" env-default:"http://localhost:5000"`

	// Warmup - fixed (пауза WarmupDelay) или poll (опрос BaseURL не дольше WarmupDelay).
	Warmup       string        `yaml:"warmup" env:"BR_SMOKE_WARMUP" env-default:"fixed"`
	WarmupDelay  time.Duration `yaml:"warmupDelay" env:"BR_SMOKE_WARMUP_DELAY" env-default:"20s"`
	PollInterval time.Duration `yaml:"pollInterval" env:"BR_SMOKE_POLL_INTERVAL" env-default:"500ms"`

	// Browser - chrome (headless Chrome) или http (без JavaScript и консоли).
	Browser     string `yaml:"browser" env:"BR_SMOKE_BROWSER" env-default:"chrome"`
	ChromePath  string `yaml:"chromePath" env:"BR_SMOKE_CHROME_PATH"`
	ShowBrowser bool   `yaml:"showBrowser" env:"BR_SMOKE_SHOW_BROWSER"`
	NoSandbox   bool   `yaml:"noSandbox" env:"BR_SMOKE_NO_SANDBOX"`

	LoadCondition     string        `yaml:"loadCondition" env:"BR_SMOKE_LOAD_CONDITION" env-default:"networkidle"`
	SettleDelay       time.Duration `yaml:"settleDelay" env:"BR_SMOKE_SETTLE_DELAY" env-default:"3s"`
	ReadySelector     string        `yaml:"readySelector" env:"BR_SMOKE_READY_SELECTOR" env-default:"body"`
	ReadyTimeout      time.Duration `yaml:"readyTimeout" env:"BR_SMOKE_READY_TIMEOUT" env-default:"5s"`
	NavigationTimeout time.Duration `yaml:"navigationTimeout" env:"BR_SMOKE_NAVIGATION_TIMEOUT" env-default:"30s"`

	// IgnoreConsoleErrors: ошибки консоли попадают в отчёт, но не проваливают прогон.
	IgnoreConsoleErrors bool `yaml:"ignoreConsoleErrors" env:"BR_SMOKE_IGNORE_CONSOLE_ERRORS"`

	GracePeriod  time.Duration `yaml:"gracePeriod" env:"BR_SMOKE_GRACE_PERIOD" env-default:"10s"`
	StreamOutput bool          `yaml:"streamOutput" env:"BR_SMOKE_STREAM_OUTPUT"`
	Encoding     string        `yaml:"encoding" env:"BR_SMOKE_ENCODING" env-default:"auto"`

	// TargetsFile - YAML со списком страниц, имеет приоритет над Targets.
	TargetsFile string         `yaml:"targetsFile" env:"BR_SMOKE_TARGETS_FILE"`
	Targets     []TargetConfig `yaml:"targets"`
}

func isSmokeConfigPresent(c *SmokeConfig) bool {
	return c != nil && (c.Runtime != "" || c.Project != "" || c.BaseURL != "" || c.Browser != "" || len(c.Targets) > 0)
}

func getDefaultSmokeConfig() *SmokeConfig {
	return &SmokeConfig{
		Runtime:           constants.DefaultRuntime,
		Project:           constants.DefaultProject,
		Configuration:     constants.DefaultBuildConfiguration,
		BaseURL:           constants.DefaultBaseURL,
		Warmup:            WarmupFixed,
		WarmupDelay:       20 * time.Second,
		PollInterval:      500 * time.Millisecond,
		Browser:           BrowserChrome,
		LoadCondition:     browser.LoadConditionNetworkIdle,
		SettleDelay:       browser.DefaultSettleDelay,
		ReadySelector:     browser.DefaultReadySelector,
		ReadyTimeout:      browser.DefaultReadyTimeout,
		NavigationTimeout: browser.DefaultNavigationTimeout,
		GracePeriod:       runner.DefaultGracePeriod,
		Encoding:          runner.EncodingAuto,
	}
}

// RunArgs возвращает аргументы запуска приложения.
func (c *SmokeConfig) RunArgs() []string {
	args := []string{"run", "--no-build", "--project", c.Project, "--configuration", c.Configuration}
	return append(args, c.ExtraArgs...)
}

// Validate проверяет перечислимые поля, URL и длительности.
func (c *SmokeConfig) Validate() error {
	if c.Runtime == "" {
		return fmt.Errorf("smoke: runtime обязателен")
	}
	u, err := url.Parse(c.BaseURL)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return fmt.Errorf("smoke: некорректный baseUrl %q", c.BaseURL)
	}
	switch c.Warmup {
	case WarmupFixed, WarmupPoll:
	default:
		return fmt.Errorf("smoke: неизвестный режим прогрева %q", c.Warmup)
	}
	switch c.Browser {
	case BrowserChrome, BrowserHTTP:
	default:
		return fmt.Errorf("smoke: неизвестный браузер %q", c.Browser)
	}
	switch c.LoadCondition {
	case browser.LoadConditionLoad, browser.LoadConditionNetworkIdle:
	default:
		return fmt.Errorf("smoke: неизвестное условие загрузки %q", c.LoadCondition)
	}
	if c.WarmupDelay < 0 || c.SettleDelay < 0 {
		return fmt.Errorf("smoke: задержки не могут быть отрицательными")
	}
	if err := runner.ValidateEncoding(c.Encoding); err != nil {
		return fmt.Errorf("smoke: %w", err)
	}
	for _, kv := range c.AppEnv {
		if !strings.Contains(kv, "=") {
			return fmt.Errorf("smoke: appEnv %q должен иметь вид KEY=VALUE", kv)
		}
	}
	return nil
}
