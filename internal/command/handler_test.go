package command

import (
	"context"

	"github.com/Kargones/rb-ci/internal/config"
)

// stubHandler считает вызовы и возвращает заданную ошибку.
type stubHandler struct {
	name  string
	err   error
	calls int
}

func (h *stubHandler) Name() string        { return h.name }
func (h *stubHandler) Description() string { return "описание " + h.name }
func (h *stubHandler) Execute(_ context.Context, _ *config.Config) error {
	h.calls++
	return h.err
}

var _ Handler = (*stubHandler)(nil)
