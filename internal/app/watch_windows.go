//go:build windows

package app

import "os"

// shutdownSignals are the OS signals that stop the watcher.
var shutdownSignals = []os.Signal{os.Interrupt}

// terminate kills the process; Windows has no graceful SIGTERM equivalent.
func terminate(pid int) error {
	proc, err := os.FindProcess(pid)
	if err != nil {
		return err
	}
	return proc.Kill()
}

// processExists reports whether the PID refers to a live process. On Windows
// FindProcess opens a process handle and fails for PIDs that are gone.
func processExists(pid int) bool {
	proc, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	_ = proc.Release()
	return true
}
