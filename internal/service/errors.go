package service

import (
	"errors"

	"github.com/gunagantinikhil/code-cast1/internal/registry"
)

var (
	ErrInvalidEvent      = errors.New("invalid event payload")
	ErrUnknownEvent      = errors.New("unknown event")
	ErrRoomMismatch      = errors.New("connection is not a member of that room")
	ErrAlreadyInRoom     = registry.ErrAlreadyInRoom
	ErrUnknownConnection = errors.New("unknown connection")

	ErrInvalidExecution      = errors.New("missing 'code' or 'language' in request body")
	ErrUnsupportedLanguage   = errors.New("unsupported language")
	ErrExecutorNotConfigured = errors.New("compiler is not configured")
	ErrExecutionFailed       = errors.New("failed to compile code")
)

// IsProtocolError reports whether err is a client mistake that should be dropped quietly
// rather than treated as a server fault.
func IsProtocolError(err error) bool {
	return errors.Is(err, ErrInvalidEvent) ||
		errors.Is(err, ErrUnknownEvent) ||
		errors.Is(err, ErrRoomMismatch) ||
		errors.Is(err, ErrAlreadyInRoom) ||
		errors.Is(err, ErrUnknownConnection)
}
