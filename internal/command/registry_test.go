package command

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegister(t *testing.T) {
	clearRegistry()
	t.Cleanup(clearRegistry)

	h := &stubHandler{name: "smoke-pages"}
	Register(h)

	got, ok := Get("smoke-pages")
	require.True(t, ok)
	assert.Same(t, h, got)

	_, ok = Get("unknown")
	assert.False(t, ok)
}

func TestRegister_Panics(t *testing.T) {
	tests := []struct {
		name    string
		handler Handler
		wantMsg string
	}{
		{"nil", nil, "nil handler"},
		{"пустое имя", &stubHandler{name: ""}, "empty handler name"},
		{"подчёркивание", &stubHandler{name: "check_migrations"}, "kebab-case"},
		{"заглавные", &stubHandler{name: "SmokePages"}, "kebab-case"},
		{"завершающий дефис", &stubHandler{name: "smoke-"}, "kebab-case"},
		{"двойной дефис", &stubHandler{name: "smoke--pages"}, "kebab-case"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearRegistry()
			t.Cleanup(clearRegistry)
			assert.Contains(t, panicValue(t, func() { Register(tt.handler) }), tt.wantMsg)
		})
	}
}

func TestRegister_Duplicate(t *testing.T) {
	clearRegistry()
	t.Cleanup(clearRegistry)

	Register(&stubHandler{name: "version"})
	assert.Contains(t, panicValue(t, func() { Register(&stubHandler{name: "version"}) }), "duplicate")
}

func TestRegisterWithAlias(t *testing.T) {
	clearRegistry()
	t.Cleanup(clearRegistry)

	h := &stubHandler{name: "check-migrations"}
	RegisterWithAlias(h, "check-model-pending-changes")

	got, ok := Get("check-model-pending-changes")
	require.True(t, ok)
	bridge, ok := got.(*DeprecatedBridge)
	require.True(t, ok)
	assert.Equal(t, "check-migrations", bridge.NewName())

	assert.Equal(t, []string{"check-migrations", "check-model-pending-changes"}, Names())
}

func TestRegisterWithAlias_Errors(t *testing.T) {
	t.Run("алиас совпадает с именем", func(t *testing.T) {
		clearRegistry()
		t.Cleanup(clearRegistry)
		msg := panicValue(t, func() { RegisterWithAlias(&stubHandler{name: "smoke-pages"}, "smoke-pages") })
		assert.Contains(t, msg, "cannot be same")
	})
	t.Run("алиас занят", func(t *testing.T) {
		clearRegistry()
		t.Cleanup(clearRegistry)
		Register(&stubHandler{name: "help"})
		msg := panicValue(t, func() { RegisterWithAlias(&stubHandler{name: "smoke-pages"}, "help") })
		assert.Contains(t, msg, "duplicate")
	})
	t.Run("без алиаса", func(t *testing.T) {
		clearRegistry()
		t.Cleanup(clearRegistry)
		RegisterWithAlias(&stubHandler{name: "version"}, "")
		assert.Equal(t, []string{"version"}, Names())
	})
}

func TestListAllWithAliases(t *testing.T) {
	clearRegistry()
	t.Cleanup(clearRegistry)

	RegisterWithAlias(&stubHandler{name: "smoke-pages"}, "test-pages-for-errors")
	RegisterWithAlias(&stubHandler{name: "check-migrations"}, "check-model-pending-changes")
	Register(&stubHandler{name: "help"})

	assert.Equal(t, []Info{
		{Name: "check-migrations", Description: "описание check-migrations", DeprecatedAlias: "check-model-pending-changes"},
		{Name: "help", Description: "описание help"},
		{Name: "smoke-pages", Description: "описание smoke-pages", DeprecatedAlias: "test-pages-for-errors"},
	}, ListAllWithAliases())
}

// panicValue возвращает строковое значение паники fn.
func panicValue(t *testing.T, fn func()) (msg string) {
	t.Helper()
	defer func() {
		r := recover()
		require.NotNil(t, r, "ожидалась паника")
		msg, _ = r.(string)
	}()
	fn()
	return ""
}
