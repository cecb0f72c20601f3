// Package command содержит интерфейс обработчика и реестр команд rb-ci.
// Обработчики регистрируются явно из handlers.RegisterAll.
package command

import (
	"context"

	"github.com/Kargones/rb-ci/internal/config"
)

// Handler - обработчик одной команды.
type Handler interface {
	// Name - имя в реестре, kebab-case, совпадает с constants.Act*.
	Name() string
	// Description - одна строка для help.
	Description() string
	// Execute возвращает ошибку, если команда не выполнена или нашла проблемы:
	// вызывающий переводит её в exit code 1.
	Execute(ctx context.Context, cfg *config.Config) error
}
