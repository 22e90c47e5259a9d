package service

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/gunagantinikhil/code-cast1/internal/domain"
)

// Executor runs a program on a remote runner. versionIndex selects the runner's compiler
// version for language.
type Executor interface {
	Execute(ctx context.Context, code, language, versionIndex string) (*domain.ExecutionResult, error)
}

// ExecutionService validates execution requests and forwards them to an Executor. It never
// touches room state and never retries.
type ExecutionService struct {
	executor Executor
	timeout  time.Duration
}

// NewExecutionService creates an ExecutionService. A nil executor means no runner
// credentials were configured; every request then fails with ErrExecutorNotConfigured.
func NewExecutionService(executor Executor, timeout time.Duration) *ExecutionService {
	return &ExecutionService{executor: executor, timeout: timeout}
}

// Execute runs req.Code as req.Language.
func (s *ExecutionService) Execute(ctx context.Context, req domain.ExecutionRequest) (*domain.ExecutionResult, error) {
	if req.Code == "" || req.Language == "" {
		return nil, ErrInvalidExecution
	}
	versionIndex, ok := domain.SupportedLanguages[req.Language]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedLanguage, req.Language)
	}
	if s.executor == nil {
		return nil, ErrExecutorNotConfigured
	}

	logCtx := logrus.WithField("language", req.Language)
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	start := time.Now()
	result, err := s.executor.Execute(ctx, req.Code, req.Language, versionIndex)
	status := "ok"
	if err != nil {
		status = "error"
	}
	executionDuration.WithLabelValues(req.Language, status).Observe(time.Since(start).Seconds())

	if err != nil {
		logCtx.WithError(err).Warn("Remote execution failed")
		return nil, fmt.Errorf("%w: %w", ErrExecutionFailed, err)
	}
	logCtx.Debug("Remote execution finished")
	return result, nil
}
