package main

import (
	"errors"

	expopdf "github.com/engexpo/go-expopdf"
)

// Exit codes for the expopdf CLI.
// Follows Unix conventions: 0=success, 1=general, 2=usage, and custom codes < 126.
const (
	ExitSuccess = 0 // PDF written
	ExitGeneral = 1 // General/unexpected error, including failed renders
	ExitUsage   = 2 // Invalid flags, config, or validation
	ExitIO      = 3 // File not found, permission denied
	ExitBrowser = 4 // Browser/Chrome errors
)

// exitCodeFor returns the appropriate exit code for an error.
// It uses errors.Is to check wrapped errors, so callers must use fmt.Errorf("%w", err).
func exitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}

	// Browser errors (exit 4)
	if errors.Is(err, expopdf.ErrBrowserConnect) ||
		errors.Is(err, expopdf.ErrPageCreate) ||
		errors.Is(err, expopdf.ErrPageNavigate) ||
		errors.Is(err, expopdf.ErrEvalFailed) ||
		errors.Is(err, expopdf.ErrPDFGeneration) {
		return ExitBrowser
	}

	// I/O errors (exit 3)
	if errors.Is(err, expopdf.ErrWriteOutput) ||
		errors.Is(err, expopdf.ErrServerStart) {
		return ExitIO
	}

	// Usage/config/validation errors (exit 2)
	if errors.Is(err, ErrInvalidFlags) ||
		errors.Is(err, ErrConfigNotFound) ||
		errors.Is(err, ErrConfigParse) ||
		errors.Is(err, expopdf.ErrEmptyRootDir) ||
		errors.Is(err, expopdf.ErrRootDirNotFound) ||
		errors.Is(err, expopdf.ErrInvalidPort) ||
		errors.Is(err, expopdf.ErrEmptyOutput) ||
		errors.Is(err, expopdf.ErrEmptySelector) ||
		errors.Is(err, expopdf.ErrInvalidTimeout) ||
		errors.Is(err, expopdf.ErrInvalidInterval) ||
		errors.Is(err, expopdf.ErrInvalidViewport) {
		return ExitUsage
	}

	return ExitGeneral
}
