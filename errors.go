package expopdf

import "errors"

// Sentinel errors for export operations.
var (
	ErrServerStart       = errors.New("asset server failed to start")
	ErrBrowserConnect    = errors.New("failed to connect to browser")
	ErrPageCreate        = errors.New("failed to create browser page")
	ErrPageNavigate      = errors.New("failed to navigate page")
	ErrNavigationTimeout = errors.New("navigation did not reach network idle")
	ErrEvalFailed        = errors.New("page script evaluation failed")
	ErrPDFGeneration     = errors.New("PDF generation failed")
	ErrWriteOutput       = errors.New("failed to write output file")

	// Config validation errors.
	ErrEmptyRootDir    = errors.New("root directory cannot be empty")
	ErrRootDirNotFound = errors.New("root directory not found")
	ErrInvalidPort     = errors.New("invalid port")
	ErrEmptyOutput     = errors.New("output path cannot be empty")
	ErrEmptySelector   = errors.New("selector cannot be empty")
	ErrInvalidTimeout  = errors.New("timeout must be positive")
	ErrInvalidInterval = errors.New("poll interval must be positive")
	ErrInvalidViewport = errors.New("viewport dimensions must be positive")
)
