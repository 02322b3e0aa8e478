package app

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// pidFile guards against two watch daemons running at once.
type pidFile struct {
	path string
}

// read returns the PID recorded in the file.
func (p pidFile) read() (int, error) {
	data, err := os.ReadFile(p.path)
	if err != nil {
		return 0, err
	}
	return strconv.Atoi(strings.TrimSpace(string(data)))
}

// acquire records the current PID, refusing if a live daemon holds the file.
// A file left behind by a dead process is replaced.
func (p pidFile) acquire() error {
	if pid, err := p.read(); err == nil {
		if processExists(pid) {
			return fmt.Errorf("daemon already running (PID %d). Use --stop to stop it", pid)
		}
		_ = os.Remove(p.path)
	}
	if err := os.WriteFile(p.path, []byte(strconv.Itoa(os.Getpid())), 0o644); err != nil {
		return fmt.Errorf("writing PID file: %w", err)
	}
	return nil
}

func (p pidFile) release() {
	_ = os.Remove(p.path)
}

// stopDaemon terminates the daemon recorded in the PID file.
func stopDaemon() error {
	pf := pidFile{path: pidFilePath()}
	pid, err := pf.read()
	if err != nil {
		return fmt.Errorf("no daemon running (could not read PID file: %v)", err)
	}
	if !processExists(pid) {
		pf.release()
		return fmt.Errorf("no daemon running (PID %d is not active, cleaned up stale PID file)", pid)
	}
	if err := terminate(pid); err != nil {
		return fmt.Errorf("failed to stop daemon (PID %d): %w", pid, err)
	}
	pf.release()
	fmt.Printf("Stopped daemon (PID %d)\n", pid)
	return nil
}
