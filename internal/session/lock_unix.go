//go:build !windows

package session

import "syscall"

// IsRunning checks if the lock file exists and its process is alive.
// Returns the PID and whether the process is running.
func (l *Lock) IsRunning() (int, bool) {
	pid, err := l.Read()
	if err != nil {
		return 0, false
	}
	// Signal 0 tests if the process exists without sending a signal.
	err = syscall.Kill(pid, 0)
	return pid, err == nil || err == syscall.EPERM
}
