//go:build !unix

package runner

import (
	"errors"
	"os"
	"os/exec"
)

// Без групп процессов останавливается только сам процесс.
func setProcGroup(_ *exec.Cmd) {}

func terminateGroup(pid int) error {
	return killGroup(pid)
}

func killGroup(pid int) error {
	proc, err := os.FindProcess(pid)
	if err != nil {
		return nil
	}
	if err := proc.Kill(); err != nil && !errors.Is(err, os.ErrProcessDone) {
		return err
	}
	return nil
}
