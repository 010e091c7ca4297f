package review

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"time"

	"go.uber.org/zap"

	"github.com/kitbuilder587/skill-optimizer/internal/domain"
)

const (
	DefaultTimeout = 60 * time.Second

	// сколько ждем закрытия pipe'ов после kill, чтобы не повиснуть на внуках
	waitDelay = 2 * time.Second
)

var DefaultCommand = []string{"tessl", "skill", "review"}

type Invoker interface {
	Invoke(ctx context.Context, targetPath string) (domain.RawReport, error)
}

type Config struct {
	Command []string
	Timeout time.Duration
}

// CommandInvoker runs the review tool as a child process in the skill
// directory. The child gets its own process group, which is killed as a
// whole when the timeout fires.
type CommandInvoker struct {
	command []string
	timeout time.Duration
	logger  *zap.Logger
}

func NewCommandInvoker(cfg Config, logger *zap.Logger) (*CommandInvoker, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	command := cfg.Command
	if len(command) == 0 {
		command = DefaultCommand
	}
	if command[0] == "" {
		return nil, domain.ErrEmptyReviewCommand
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}
	if timeout < 0 {
		return nil, domain.ErrInvalidTimeout
	}
	return &CommandInvoker{
		command: command,
		timeout: timeout,
		logger:  logger,
	}, nil
}

func (i *CommandInvoker) Invoke(ctx context.Context, targetPath string) (domain.RawReport, error) {
	ctx, cancel := context.WithTimeout(ctx, i.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, i.command[0], i.command[1:]...)
	cmd.Dir = targetPath
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	cmd.WaitDelay = waitDelay
	isolateProcessGroup(cmd)

	i.logger.Debug("running review command",
		zap.Strings("command", i.command),
		zap.String("dir", targetPath),
		zap.Duration("timeout", i.timeout),
	)

	start := time.Now()
	// Run всегда делает Wait, так что процесс будет собран и при таймауте
	err := cmd.Run()
	elapsed := time.Since(start)

	i.logger.Debug("review command finished",
		zap.Duration("elapsed", elapsed),
		zap.Int("stdout_bytes", stdout.Len()),
		zap.Int("stderr_bytes", stderr.Len()),
	)

	if err != nil {
		// при таймауте err это "signal: killed", поэтому смотрим на контекст
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			i.logger.Warn("review command timed out",
				zap.Duration("timeout", i.timeout),
				zap.String("stderr", stderr.String()),
			)
			return "", fmt.Errorf("%w (limit %v)", domain.ErrReviewTimeout, i.timeout)
		}
		if errors.Is(ctx.Err(), context.Canceled) {
			return "", fmt.Errorf("review cancelled: %w", ctx.Err())
		}

		exitCode := -1
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			exitCode = exitErr.ExitCode()
		}
		return "", &domain.ReviewInvocationError{
			ExitCode: exitCode,
			Stderr:   stderr.String(),
			Err:      err,
		}
	}

	return domain.RawReport(stdout.String()), nil
}

// CheckInstalled makes sure the review binary can be found and answers
// "--version" within a few seconds.
func CheckInstalled(ctx context.Context, binary string) (string, error) {
	path, err := exec.LookPath(binary)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrReviewToolMissing, err)
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	cmd := exec.CommandContext(ctx, path, "--version")
	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.WaitDelay = waitDelay
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("%w: %s --version: %v", domain.ErrReviewToolMissing, binary, err)
	}
	return string(bytes.TrimSpace(out.Bytes())), nil
}
