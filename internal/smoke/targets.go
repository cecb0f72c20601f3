package smoke

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/Kargones/rb-ci/internal/constants"
)

// Target - страница для обхода.
type Target struct {
	// Path начинается с '/', к нему добавляется базовый URL.
	Path string `yaml:"path" json:"path"`
	// ExpectStatus - ожидаемый код ответа. 0 означает любой 2xx.
	ExpectStatus int `yaml:"expect_status,omitempty" json:"expect_status,omitempty"`
	// ExpectMarker - страница обязана отрисовать маркер исключения
	// (диагностическая страница, которая бросает намеренно).
	ExpectMarker bool `yaml:"expect_marker,omitempty" json:"expect_marker,omitempty"`
}

// StatusOK проверяет код ответа.
func (t Target) StatusOK(status int) bool {
	if t.ExpectStatus != 0 {
		return status == t.ExpectStatus
	}
	return status >= 200 && status < 300
}

// DefaultBaseURL - адрес приложения в конфигурации Testing.
const DefaultBaseURL = constants.DefaultBaseURL

// DefaultTargets возвращает встроенный список страниц.
// Игроки: один без редактирования, второй со скрытыми данными.
// /replay/999999999 должен показать "not found" без исключения.
func DefaultTargets() []Target {
	return []Target{
		{Path: "/"},
		{Path: "/privacy"},
		{Path: "/contact"},
		{Path: "/leaderboard"},
		{Path: "/player/aac26166-139a-4163-8aa9-ad2a059a427d"},
		{Path: "/player/8ced134c-8731-4087-bed3-107d59af1a11"},
		{Path: "/downloads"},
		{Path: "/changelog"},
		{Path: "/replay/3"},
		{Path: "/replay/999999999"},
		{Path: "/diagnostics/throw", ExpectStatus: http.StatusInternalServerError, ExpectMarker: true},
		{Path: "/this-page-does-not-exist", ExpectStatus: http.StatusNotFound},
	}
}

// ValidateTargets проверяет список: не пуст, пути начинаются с '/', без повторов.
func ValidateTargets(targets []Target) error {
	if len(targets) == 0 {
		return errors.New("target list is empty")
	}
	seen := make(map[string]bool, len(targets))
	for i, t := range targets {
		if !strings.HasPrefix(t.Path, "/") {
			return fmt.Errorf("target #%d: path %q must start with '/'", i+1, t.Path)
		}
		if seen[t.Path] {
			return fmt.Errorf("target #%d: duplicate path %q", i+1, t.Path)
		}
		seen[t.Path] = true
		if t.ExpectStatus != 0 && (t.ExpectStatus < 100 || t.ExpectStatus > 599) {
			return fmt.Errorf("target %s: invalid expect_status %d", t.Path, t.ExpectStatus)
		}
	}
	return nil
}

// targetsFile - формат файла BR_SMOKE_TARGETS_FILE.
type targetsFile struct {
	Targets []Target `yaml:"targets"`
}

// LoadTargetsFile читает список страниц из YAML:
//
//	targets:
//	  - path: /
//	  - path: /diagnostics/throw
//	    expect_status: 500
//	    expect_marker: true
func LoadTargetsFile(path string) ([]Target, error) {
	data, err := os.ReadFile(path) //nolint:gosec // путь из конфигурации
	if err != nil {
		return nil, fmt.Errorf("read targets file: %w", err)
	}
	var f targetsFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse targets file %s: %w", path, err)
	}
	if err := ValidateTargets(f.Targets); err != nil {
		return nil, fmt.Errorf("targets file %s: %w", path, err)
	}
	return f.Targets, nil
}

// JoinURL склеивает базовый URL и путь без двойного '/'.
func JoinURL(base, path string) string {
	return strings.TrimRight(base, "/") + path
}
