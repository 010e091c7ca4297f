package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrReviewTimeout     = errors.New("review timed out")
	ErrReviewToolMissing = errors.New("review tool not installed")
)

var (
	ErrSkillPathNotFound = errors.New("skill path does not exist")
	ErrManifestNotFound  = errors.New("SKILL.md not found")
)

var (
	ErrIterationBudgetExhausted = errors.New("iteration budget exhausted")
	ErrRunNotFound              = errors.New("review run not found")
	ErrDuplicateRun             = errors.New("review run already recorded for this iteration")
)

var (
	ErrInvalidMaxIterations = errors.New("max iterations must be positive")
	ErrInvalidTimeout       = errors.New("review timeout must be positive")
	ErrEmptyReviewCommand   = errors.New("review command is empty")
)

// ReviewInvocationError - review-команда не запустилась или вышла с ненулевым кодом.
type ReviewInvocationError struct {
	ExitCode int // -1 если процесс не стартовал
	Stderr   string
	Err      error
}

func (e *ReviewInvocationError) Error() string {
	msg := fmt.Sprintf("review command failed: %v", e.Err)
	if e.ExitCode >= 0 {
		msg = fmt.Sprintf("review command exited with code %d", e.ExitCode)
	}
	if stderr := strings.TrimSpace(e.Stderr); stderr != "" {
		msg += " | stderr: " + stderr
	}
	return msg
}

func (e *ReviewInvocationError) Unwrap() error {
	return e.Err
}
