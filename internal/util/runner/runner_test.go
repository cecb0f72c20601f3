package runner

import (
	"context"
	"log/slog"
	"os"
	"strings"
	"testing"
	"time"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
}

// TestRunner_ClearParams проверяет очистку параметров
func TestRunner_ClearParams(t *testing.T) {
	r := &Runner{Params: []string{"ef", "migrations", "list"}}
	r.ClearParams()
	if len(r.Params) != 0 {
		t.Errorf("Expected empty params, got %v", r.Params)
	}
}

func TestRunner_RunCommand_Validation(t *testing.T) {
	tests := []struct {
		name     string
		runner   *Runner
		errorMsg string
	}{
		{"пустой исполняемый файл", &Runner{}, "executable path is empty"},
		{"shell в пути", &Runner{RunString: "dotnet; rm -rf /"}, "potentially unsafe executable path"},
		{"NUL в параметре", &Runner{RunString: "/bin/sh", Params: []string{"a\x00b"}}, "NUL byte"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.runner.RunCommand(context.Background(), testLogger())
			if err == nil {
				t.Fatal("Expected error but got none")
			}
			if !strings.Contains(err.Error(), tt.errorMsg) {
				t.Errorf("Expected error containing %q, got %q", tt.errorMsg, err.Error())
			}
			if IsExitError(err) {
				t.Error("validation error must not look like an exit error")
			}
		})
	}
}

func TestRunner_RunCommand_Output(t *testing.T) {
	r := &Runner{
		RunString: "/bin/sh",
		Params:    []string{"-c", "echo out; echo err 1>&2"},
		WorkDir:   t.TempDir(),
	}

	out, err := r.RunCommand(context.Background(), testLogger())
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if !strings.Contains(string(out), "out") || !strings.Contains(string(out), "err") {
		t.Errorf("stdout and stderr must both be captured, got %q", out)
	}
	if r.ExitCode != 0 {
		t.Errorf("Expected exit code 0, got %d", r.ExitCode)
	}
	if len(r.Params) != 0 {
		t.Errorf("Expected params to be cleared after execution, got %v", r.Params)
	}
}

func TestRunner_RunCommand_ExitCode(t *testing.T) {
	r := &Runner{
		RunString: "/bin/sh",
		Params:    []string{"-c", "echo Changes have been made to the model; exit 3"},
	}

	out, err := r.RunCommand(context.Background(), testLogger())
	if !IsExitError(err) {
		t.Fatalf("Expected exit error, got %v", err)
	}
	if r.ExitCode != 3 {
		t.Errorf("Expected exit code 3, got %d", r.ExitCode)
	}
	if !strings.Contains(string(out), "Changes have been made") {
		t.Errorf("output must be returned with exit error, got %q", out)
	}
}

func TestRunner_RunCommand_Timeout(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	r := &Runner{RunString: "/bin/sh", Params: []string{"-c", "sleep 5"}}
	_, err := r.RunCommand(ctx, testLogger())
	if err == nil {
		t.Fatal("Expected timeout error")
	}
	if IsExitError(err) {
		t.Errorf("timeout must not be reported as tool exit code, got %v", err)
	}
}

func TestRunner_RunCommand_NotFound(t *testing.T) {
	r := &Runner{RunString: "definitely-not-a-real-binary-rb-ci"}
	_, err := r.RunCommand(context.Background(), testLogger())
	if err == nil || IsExitError(err) {
		t.Fatalf("Expected start error, got %v", err)
	}
}

func TestRunner_RunCommand_Env(t *testing.T) {
	r := &Runner{
		RunString: "/bin/sh",
		Params:    []string{"-c", "echo $ASPNETCORE_ENVIRONMENT"},
		Env:       []string{"ASPNETCORE_ENVIRONMENT=Testing"},
	}
	out, err := r.RunCommand(context.Background(), testLogger())
	if err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(string(out)) != "Testing" {
		t.Errorf("Expected Testing, got %q", out)
	}
}

func TestAppendEnviron(t *testing.T) {
	t.Setenv("RB_CI_EXISTING", "old")

	env := appendEnviron("RB_CI_EXISTING=new", "RB_CI_NEW=1", "INVALID", "=empty")

	found := map[string]string{}
	for _, kv := range env {
		if k, v, ok := strings.Cut(kv, "="); ok && strings.HasPrefix(k, "RB_CI_") {
			found[k] = v
		}
	}
	if found["RB_CI_EXISTING"] != "new" {
		t.Errorf("existing var must be replaced, got %q", found["RB_CI_EXISTING"])
	}
	if found["RB_CI_NEW"] != "1" {
		t.Errorf("new var must be appended, got %q", found["RB_CI_NEW"])
	}
}

func TestMaskParams(t *testing.T) {
	tests := []struct {
		name     string
		params   []string
		expected []string
	}{
		{
			"отдельный аргумент",
			[]string{"ef", "--connection", "Host=db;Username=rb;Password=secret"},
			[]string{"ef", "--connection", "Host=db;Username=rb;Password=***"},
		},
		{
			"через равно",
			[]string{"--connection=postgres://rb:secret@db/rb"},
			[]string{"--connection=postgres://db/***"},
		},
		{
			"без секретов",
			[]string{"run", "--project", "./ReplayBrowser/ReplayBrowser.csproj"},
			[]string{"run", "--project", "./ReplayBrowser/ReplayBrowser.csproj"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MaskParams(tt.params)
			if strings.Join(got, " ") != strings.Join(tt.expected, " ") {
				t.Errorf("Expected %v, got %v", tt.expected, got)
			}
		})
	}
}

func TestTrimOut(t *testing.T) {
	short := []byte("short output")
	if TrimOut(short) != "short output" {
		t.Errorf("short output must be kept")
	}

	long := []byte(strings.Repeat("a", 1500) + strings.Repeat("b", 1500))
	got := TrimOut(long)
	if !strings.Contains(got, "********") {
		t.Error("long output must contain separator")
	}
	if !strings.HasPrefix(got, "aaaa") || !strings.HasSuffix(got, "bbbb") {
		t.Error("long output must keep head and tail")
	}
}
