//go:build windows

package session

import (
	"os"
	"syscall"
)

// IsRunning checks if the lock file exists and its process is alive.
func (l *Lock) IsRunning() (int, bool) {
	pid, err := l.Read()
	if err != nil {
		return 0, false
	}
	proc, err := os.FindProcess(pid)
	if err != nil {
		return pid, false
	}
	err = proc.Signal(syscall.Signal(0))
	return pid, err == nil
}
