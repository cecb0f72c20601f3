package progress

import (
	"os"
	"strings"
	"time"

	"github.com/Kargones/rb-ci/internal/constants"
)

// DefaultThrottleInterval - интервал перерисовки по умолчанию.
const DefaultThrottleInterval = time.Second

// New выбирает реализацию Progress:
//  1. BR_SHOW_PROGRESS=false → NoopProgress
//  2. BR_OUTPUT_FORMAT=json → NoopProgress, чтобы не смешивать текст с JSON-конвейером
//  3. Total=0 → SpinnerProgress
//  4. TTY → TTYProgress
//  5. иначе → NonTTYProgress
func New(opts Options) Progress {
	if opts.ThrottleInterval == 0 {
		opts.ThrottleInterval = DefaultThrottleInterval
	}
	if opts.Output == nil {
		opts.Output = os.Stderr
	}

	if os.Getenv(constants.EnvShowProgress) == "false" {
		return NewNoOp()
	}
	if strings.EqualFold(os.Getenv(constants.EnvOutputFormat), "json") {
		return NewNoOp()
	}
	if opts.Total == 0 {
		return NewSpinnerProgress(opts)
	}
	if IsTTY(opts.Output) {
		return NewTTYProgress(opts)
	}
	return NewNonTTYProgress(opts)
}

// NewIndeterminate создаёт spinner для операций непредсказуемой длительности,
// например dotnet ef со сборкой проекта.
func NewIndeterminate() Progress {
	return New(Options{Output: os.Stderr})
}
