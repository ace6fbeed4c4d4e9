package exitcode

import (
	"errors"
	"os"

	forgeerrors "github.com/forgeflow/forgeflow/internal/errors"
)

// Exit codes for consistent error handling across the CLI
const (
	// Success indicates successful execution
	Success = 0

	// GeneralError indicates a general error condition
	GeneralError = 1

	// UsageError indicates invalid command usage (bad flags, missing args, etc.)
	UsageError = 2

	// QualityGateFailed indicates the run terminated in the failed state
	QualityGateFailed = 3

	// AwaitingInput indicates the run paused for human input
	AwaitingInput = 4

	// UnsupportedTask indicates no engine could serve a requested task type
	UnsupportedTask = 5

	// Interrupted indicates the run was cancelled by the user
	Interrupted = 130
)

// Exit terminates the program with the given exit code
func Exit(code int) {
	os.Exit(code)
}

// ExitWithError exits with an appropriate code based on error type
func ExitWithError(err error) {
	Exit(DetermineExitCode(err))
}

// DetermineExitCode analyzes an error and returns the appropriate exit code
func DetermineExitCode(err error) int {
	if err == nil {
		return Success
	}

	var forgeErr *forgeerrors.ForgeError
	if errors.As(err, &forgeErr) {
		switch forgeErr.Code {
		case forgeerrors.ErrCodeUnsupportedTask:
			return UnsupportedTask
		case forgeerrors.ErrCodeScoringFailure, forgeerrors.ErrCodeOrchestratorFault:
			return QualityGateFailed
		case forgeerrors.ErrCodeAwaitingInput:
			return AwaitingInput
		case forgeerrors.ErrCodeExecCancelled:
			return Interrupted
		}
	}

	return GeneralError
}

// Description returns a human-readable description of an exit code
func Description(code int) string {
	switch code {
	case Success:
		return "Success"
	case GeneralError:
		return "General error"
	case UsageError:
		return "Usage error (invalid flags or arguments)"
	case QualityGateFailed:
		return "Run failed (quality gate or orchestrator fault)"
	case AwaitingInput:
		return "Run paused awaiting human input"
	case UnsupportedTask:
		return "No engine supports a requested task type"
	case Interrupted:
		return "Cancelled by user"
	default:
		return "Unknown error"
	}
}
