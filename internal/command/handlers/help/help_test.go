package help

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Kargones/rb-ci/internal/command"
	"github.com/Kargones/rb-ci/internal/config"
	"github.com/Kargones/rb-ci/internal/constants"
	"github.com/Kargones/rb-ci/internal/pkg/output"
)

type fakeHandler struct{ name string }

func (h *fakeHandler) Name() string                                      { return h.name }
func (h *fakeHandler) Description() string                               { return "описание " + h.name }
func (h *fakeHandler) Execute(_ context.Context, _ *config.Config) error { return nil }

func TestMain(m *testing.M) {
	RegisterCmd()
	command.RegisterWithAlias(&fakeHandler{name: "check-migrations"}, "check-model-pending-changes")
	command.Register(&fakeHandler{name: "migration-history"})
	os.Exit(m.Run())
}

func clearModes(t *testing.T) {
	t.Helper()
	for _, env := range []string{constants.EnvOutputFormat, constants.EnvDryRun, constants.EnvPlanOnly, constants.EnvVerbose} {
		t.Setenv(env, "")
	}
}

func TestHandler_Name(t *testing.T) {
	h := &Handler{}
	assert.Equal(t, constants.ActHelp, h.Name())
	assert.Equal(t, "Вывод списка доступных команд", h.Description())
}

func TestHandler_Execute_Text(t *testing.T) {
	clearModes(t)
	var buf bytes.Buffer
	h := &Handler{out: &buf}

	require.NoError(t, h.Execute(context.Background(), nil))

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "rb-ci "))
	assert.Contains(t, out, "check-migrations")
	assert.Contains(t, out, "старое имя: check-model-pending-changes")
	assert.Contains(t, out, "migration-history")
	assert.Contains(t, out, "BR_PLAN_ONLY=true")
	assert.Contains(t, out, "BR_OUTPUT_FORMAT=json")
	// Старое имя не выводится отдельной командой.
	assert.NotContains(t, out, "  check-model-pending-changes  ")
}

func TestHandler_Execute_JSON(t *testing.T) {
	clearModes(t)
	t.Setenv(constants.EnvOutputFormat, output.FormatJSON)
	var buf bytes.Buffer
	h := &Handler{out: &buf}

	require.NoError(t, h.Execute(context.Background(), nil))

	var result struct {
		Status string `json:"status"`
		Data   Data   `json:"data"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &result))
	assert.Equal(t, output.StatusSuccess, result.Status)
	assert.Contains(t, result.Data.Commands, CommandInfo{
		Name:            "check-migrations",
		Description:     "описание check-migrations",
		DeprecatedAlias: "check-model-pending-changes",
	})
	assert.Contains(t, result.Data.Commands, CommandInfo{
		Name:        "migration-history",
		Description: "описание migration-history",
	})
}

func TestBuildData_Sorted(t *testing.T) {
	data := buildData()
	require.NotEmpty(t, data.Commands)
	for i := 1; i < len(data.Commands); i++ {
		assert.Less(t, data.Commands[i-1].Name, data.Commands[i].Name)
	}
}

func TestHandler_PlanOnly(t *testing.T) {
	clearModes(t)
	t.Setenv(constants.EnvPlanOnly, "true")
	var buf bytes.Buffer
	h := &Handler{out: &buf}

	require.NoError(t, h.Execute(context.Background(), nil))
	assert.Contains(t, buf.String(), "не поддерживает отображение плана")
}

func TestData_WriteText_Alignment(t *testing.T) {
	d := &Data{Commands: []CommandInfo{
		{Name: "help", Description: "справка"},
		{Name: "smoke-pages", Description: "обход страниц", DeprecatedAlias: "test-pages-for-errors"},
	}}
	var buf bytes.Buffer

	require.NoError(t, d.writeText(&buf))
	out := buf.String()
	assert.Contains(t, out, "  help         справка\n")
	assert.Contains(t, out, "  smoke-pages  обход страниц\n")
	assert.Contains(t, out, "               старое имя: test-pages-for-errors\n")
}
