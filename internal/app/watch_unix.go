//go:build !windows

package app

import (
	"os"
	"syscall"
)

// shutdownSignals are the OS signals that stop the watcher.
var shutdownSignals = []os.Signal{syscall.SIGINT, syscall.SIGTERM}

// terminate asks the process to shut down gracefully.
func terminate(pid int) error {
	return syscall.Kill(pid, syscall.SIGTERM)
}

// processExists checks the PID with signal 0.
func processExists(pid int) bool {
	return syscall.Kill(pid, 0) == nil
}
