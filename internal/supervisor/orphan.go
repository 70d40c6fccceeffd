// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package supervisor

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"

	ps "github.com/mitchellh/go-ps"
)

// PIDFileName records the live backend's PID inside the data directory.
const PIDFileName = "backend.pid"

// maxCommLen is the kernel's limit on process names as reported by ps.
const maxCommLen = 15

func pidFilePath(dataDir string) string {
	return filepath.Join(dataDir, PIDFileName)
}

func writePIDFile(dataDir string, pid int) error {
	return os.WriteFile(pidFilePath(dataDir), []byte(strconv.Itoa(pid)+"\n"), 0644)
}

func removePIDFile(dataDir string) {
	os.Remove(pidFilePath(dataDir))
}

// ReapOrphan kills a backend left running by a previous supervisor that
// exited without stopping it. The PID file is only trusted when the process
// it names still runs the backend executable. Returns the killed PID, or 0.
func ReapOrphan(dataDir string, command []string) (int, error) {
	path := pidFilePath(dataDir)
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("read pid file: %w", err)
	}
	defer os.Remove(path)

	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil || pid <= 0 {
		return 0, fmt.Errorf("invalid pid file %s", path)
	}

	proc, err := ps.FindProcess(pid)
	if err != nil {
		return 0, fmt.Errorf("find process %d: %w", pid, err)
	}
	if proc == nil {
		return 0, nil
	}

	if len(command) == 0 || !matchesExecutable(proc.Executable(), command[0]) {
		log.Printf("Supervisor: pid %d (%s) is not a backend, leaving it alone", pid, proc.Executable())
		return 0, nil
	}

	if err := syscall.Kill(-pid, syscall.SIGKILL); err != nil {
		if err := syscall.Kill(pid, syscall.SIGKILL); err != nil {
			return 0, fmt.Errorf("kill orphaned backend %d: %w", pid, err)
		}
	}
	log.Printf("Supervisor: killed orphaned backend (PID %d)", pid)
	return pid, nil
}

func matchesExecutable(exe, command string) bool {
	base := filepath.Base(command)
	if exe == base {
		return true
	}
	return len(exe) >= maxCommLen && strings.HasPrefix(base, exe)
}
