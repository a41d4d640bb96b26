package tools

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"time"
)

// ShellRunner executes workflow execute_command actions as subprocesses.
// It satisfies ports.CommandRunner.
type ShellRunner struct {
	Timeout time.Duration
	Dir     string
}

func NewShellRunner() *ShellRunner {
	return &ShellRunner{Timeout: 2 * time.Minute}
}

func (s *ShellRunner) RunCommand(ctx context.Context, command string, args []string, env map[string]string) (string, error) {
	if command == "" {
		return "", fmt.Errorf("empty command")
	}
	if s.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, command, args...)
	cmd.Dir = s.Dir
	cmd.Env = os.Environ()
	for k, v := range env {
		cmd.Env = append(cmd.Env, k+"="+v)
	}

	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out
	if err := cmd.Run(); err != nil {
		return out.String(), fmt.Errorf("command %s: %w", command, err)
	}
	return out.String(), nil
}
