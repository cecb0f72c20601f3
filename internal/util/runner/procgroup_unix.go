//go:build unix

package runner

import (
	"errors"
	"os/exec"
	"syscall"

	"golang.org/x/sys/unix"
)

func setProcGroup(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
}

func terminateGroup(pid int) error {
	return signalGroup(pid, unix.SIGTERM)
}

func killGroup(pid int) error {
	return signalGroup(pid, unix.SIGKILL)
}

// signalGroup шлёт сигнал всей группе. Если группу определить не удалось,
// сигнал получает только сам процесс. ESRCH не ошибка: адресатов уже нет.
func signalGroup(pid int, sig unix.Signal) error {
	target := -pid
	if pgid, err := unix.Getpgid(pid); err == nil {
		target = -pgid
	}
	err := unix.Kill(target, sig)
	if errors.Is(err, unix.ESRCH) {
		err = unix.Kill(pid, sig)
	}
	if errors.Is(err, unix.ESRCH) {
		return nil
	}
	return err
}
