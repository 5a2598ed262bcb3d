package main

import (
	"errors"
	"os"

	vitae "github.com/alnah/go-vitae"
	"github.com/alnah/go-vitae/internal/config"
)

// Exit codes for the vitae CLI.
// Follows Unix conventions: 0=success, 1=general, 2=usage, and custom codes < 126.
const (
	ExitSuccess = 0 // Build succeeded
	ExitGeneral = 1 // General/unexpected error, or issues under --strict
	ExitUsage   = 2 // Invalid flags, config, or validation
	ExitIO      = 3 // File not found, permission denied, unwritable output
	ExitBrowser = 4 // Browser or PDF engine errors
)

// ErrStrictIssues reports that a build finished with content issues while
// --strict was set.
var ErrStrictIssues = errors.New("build finished with issues")

// exitCodeFor returns the appropriate exit code for an error.
// It uses errors.Is to check wrapped errors, so callers must use fmt.Errorf("%w", err).
func exitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}

	// Browser and PDF engine errors (exit 4)
	if errors.Is(err, vitae.ErrBrowserConnect) ||
		errors.Is(err, vitae.ErrPageCreate) ||
		errors.Is(err, vitae.ErrPageLoad) ||
		errors.Is(err, vitae.ErrPDFGeneration) ||
		errors.Is(err, vitae.ErrTexNotFound) ||
		errors.Is(err, vitae.ErrTexCompile) {
		return ExitBrowser
	}

	// I/O errors (exit 3)
	if errors.Is(err, os.ErrNotExist) ||
		errors.Is(err, os.ErrPermission) ||
		errors.Is(err, vitae.ErrWriteArtifact) {
		return ExitIO
	}

	// Usage/config/validation errors (exit 2)
	if errors.Is(err, config.ErrConfigNotFound) ||
		errors.Is(err, config.ErrConfigParse) ||
		errors.Is(err, config.ErrFieldTooLong) ||
		errors.Is(err, config.ErrInvalidEngine) ||
		errors.Is(err, vitae.ErrUnsafeOutputDir) ||
		errors.Is(err, ErrBadFlags) {
		return ExitUsage
	}

	return ExitGeneral
}
