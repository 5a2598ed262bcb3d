// Package vitae generates a personal academic homepage: static HTML pages
// and a typeset PDF CV, rendered from a CV document and a BibTeX
// bibliography.
//
// # Quick Start
//
// Load a config, create a service, and build:
//
//	cfg, err := config.Load("vitae.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	svc, err := vitae.New(cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer svc.Close()
//
//	report, err := svc.Build(ctx)
//
// The report lists the pages written and every issue collected along the
// way. Issues are non-fatal: an unresolvable citation key or a malformed CV
// entry is skipped with a warning and the build still produces output.
//
// # Pipeline
//
//  1. Load the content store: CV document (ordered), BibTeX bibliography,
//     per-publication metadata, markdown page bodies.
//  2. Transform: resolve citation keys, group entries into sections, drop
//     empty sections, collect issues.
//  3. Render: HTML pages via html/template, the CV via LaTeX (or headless
//     Chrome when no TeX toolchain is installed).
//  4. Assemble: write the static site directory atomically.
//
// Re-running a build over unchanged input produces byte-identical output.
//
// # PDF Engines
//
// The typeset CV is built with LaTeX when a TeX toolchain (latexmk or
// pdflatex) is on PATH. Otherwise the "chrome" engine prints the CV page
// with headless Chrome via go-rod, which downloads a managed Chromium on
// first use. Set ROD_BROWSER_BIN to use a pre-installed browser and
// ROD_NO_SANDBOX=true in containers.
package vitae
