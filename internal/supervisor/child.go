// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package supervisor

import (
	"fmt"
	"os/exec"
	"sync"
	"syscall"
	"time"
)

// Child owns a running backend process. Stop must be called to release it;
// it kills the whole process group and reaps the exit status.
type Child struct {
	cmd       *exec.Cmd
	pid       int
	startedAt time.Time
	done      chan struct{}

	mu            sync.Mutex
	stopRequested bool
}

// startChild launches cmd in its own process group. onExit is called from a
// background goroutine when the process exits without a Stop request.
func startChild(cmd *exec.Cmd, onExit func(*Child, error)) (*Child, error) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}

	if err := cmd.Start(); err != nil {
		return nil, err
	}

	c := &Child{
		cmd:       cmd,
		pid:       cmd.Process.Pid,
		startedAt: time.Now(),
		done:      make(chan struct{}),
	}
	go c.wait(onExit)
	return c, nil
}

// PID returns the process ID.
func (c *Child) PID() int {
	return c.pid
}

// StartedAt returns the launch time.
func (c *Child) StartedAt() time.Time {
	return c.startedAt
}

// Done is closed once the process has exited and been reaped.
func (c *Child) Done() <-chan struct{} {
	return c.done
}

// Stop kills the process group and waits for the process to be reaped.
// Errors are ignored since the process may already be gone. Safe to call
// more than once.
func (c *Child) Stop() {
	c.mu.Lock()
	c.stopRequested = true
	c.mu.Unlock()

	select {
	case <-c.done:
		return
	default:
	}

	if err := syscall.Kill(-c.pid, syscall.SIGKILL); err != nil {
		c.cmd.Process.Kill()
	}
	<-c.done
}

func (c *Child) wait(onExit func(*Child, error)) {
	err := c.cmd.Wait()

	c.mu.Lock()
	requested := c.stopRequested
	c.mu.Unlock()

	close(c.done)

	if !requested && onExit != nil {
		onExit(c, err)
	}
}

// describeExit renders a wait error for last_error.
func describeExit(err error) string {
	if err == nil {
		return "exit status 0"
	}
	if exitErr, ok := err.(*exec.ExitError); ok {
		return fmt.Sprintf("exit status %d", exitErr.ExitCode())
	}
	return err.Error()
}
