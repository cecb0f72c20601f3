// Package handlers явно регистрирует все обработчики команд в реестре.
package handlers

import (
	"github.com/Kargones/rb-ci/internal/command/handlers/help"
	"github.com/Kargones/rb-ci/internal/command/handlers/migrationcheck"
	"github.com/Kargones/rb-ci/internal/command/handlers/migrationhistory"
	"github.com/Kargones/rb-ci/internal/command/handlers/pagesmoke"
	"github.com/Kargones/rb-ci/internal/command/handlers/version"
)

// RegisterAll регистрирует все команды. Вызывается один раз из main.
// Повторный вызов паникует на дубликате имени.
func RegisterAll() {
	migrationcheck.RegisterCmd()
	pagesmoke.RegisterCmd()
	migrationhistory.RegisterCmd()
	help.RegisterCmd()
	version.RegisterCmd()
}
