package gpubuild

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"syscall"
	"time"
)

// Executor runs external toolchain commands with an explicit environment.
// The cross-toolchain variables are threaded into every launch rather than
// written into the orchestrator's own process environment, so no stage
// depends on ambient state left behind by another.
type Executor struct {
	Context context.Context // The context to use for cancellation
	Env     []string        // Environment for spawned commands; nil inherits os.Environ()
	Dir     string          // Working directory for spawned commands
	Timeout time.Duration   // Per-command bound; zero means unbounded
}

func NewExecutor(ctx context.Context, env []string, timeout time.Duration) *Executor {
	return &Executor{Context: ctx, Env: env, Timeout: timeout}
}

// CommandResult carries the captured output of a finished command.
type CommandResult struct {
	Stdout string
	Stderr string
}

// decodeOutput converts raw command output to text, substituting malformed
// bytes instead of failing, so diagnostics are never lost to bad encoding.
func decodeOutput(b []byte) string {
	return strings.ToValidUTF8(string(b), "�")
}

func (e *Executor) ctx() context.Context {
	if e.Context != nil {
		return e.Context
	}
	return context.Background()
}

// Capture executes a command and returns its decoded stdout and stderr.
// A non-zero exit is always an error, regardless of any partial stdout.
func (e *Executor) Capture(name string, args ...string) (CommandResult, error) {
	ctx := e.ctx()
	if e.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = e.Dir
	if len(e.Env) > 0 {
		cmd.Env = e.Env
	} else {
		cmd.Env = os.Environ()
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	// Isolate the child in its own process group so cancellation can take
	// down the whole toolchain process tree, not just the direct child.
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}

	if err := cmd.Start(); err != nil {
		return CommandResult{}, fmt.Errorf("failed to start %s: %w", name, err)
	}

	pgid := cmd.Process.Pid
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			syscall.Kill(-pgid, syscall.SIGKILL)
		case <-done:
		}
	}()

	waitErr := cmd.Wait()
	res := CommandResult{
		Stdout: decodeOutput(stdout.Bytes()),
		Stderr: decodeOutput(stderr.Bytes()),
	}
	if waitErr != nil {
		if ctx.Err() != nil {
			time.Sleep(100 * time.Millisecond)
			return res, fmt.Errorf("command aborted: %v", ctx.Err())
		}
		return res, waitErr
	}
	return res, nil
}

// Run executes a command wired to the orchestrator's stdio, for steps
// whose output should stream to the user rather than be captured.
func (e *Executor) Run(name string, args ...string) error {
	cmd := exec.CommandContext(e.ctx(), name, args...)
	cmd.Dir = e.Dir
	if len(e.Env) > 0 {
		cmd.Env = e.Env
	} else {
		cmd.Env = os.Environ()
	}
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}
