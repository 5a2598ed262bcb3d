package vitae

import "errors"

// Sentinel errors for library operations.
var (
	// Transformation errors. These surface as Issues on the document, not
	// as returned errors, but are exported so callers can classify issues.
	ErrMissingReference = errors.New("citation key not found in bibliography")
	ErrMalformedRecord  = errors.New("record is missing a required field")

	// Rendering errors.
	ErrRenderPage    = errors.New("page rendering failed")
	ErrRenderTex     = errors.New("tex rendering failed")
	ErrWriteArtifact = errors.New("failed to write output artifact")

	// PDF build errors.
	ErrPDFGeneration = errors.New("PDF generation failed")
	ErrTexNotFound   = errors.New("no TeX toolchain found")
	ErrTexCompile    = errors.New("TeX compilation failed")

	// Browser errors (chrome engine).
	ErrBrowserConnect = errors.New("failed to connect to browser")
	ErrPageCreate     = errors.New("failed to create browser page")
	ErrPageLoad       = errors.New("failed to load page")

	// Output safety errors.
	ErrUnsafeOutputDir = errors.New("refusing to clean unsafe output dir")
)
