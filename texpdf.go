package vitae

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
)

// PDFEngine abstracts CV PDF generation so the build can fall back from
// a LaTeX toolchain to a headless browser.
type PDFEngine interface {
	Name() string
	Available() bool
	BuildPDF(ctx context.Context, doc *Document) ([]byte, error)
	Close() error
}

// CommandRunner abstracts command execution to enable testing without
// real subprocesses.
type CommandRunner interface {
	Run(ctx context.Context, dir, name string, args ...string) (stdout string, stderr string, err error)
}

// ExecRunner implements CommandRunner using os/exec.
type ExecRunner struct{}

func (r *ExecRunner) Run(ctx context.Context, dir, name string, args ...string) (string, string, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir

	var stdout bytes.Buffer
	cmd.Stdout = &stdout

	stderrPipe, err := cmd.StderrPipe()
	if err != nil {
		return "", "", fmt.Errorf("creating stderr pipe: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return "", "", fmt.Errorf("starting command: %w", err)
	}

	stderrContent, err := io.ReadAll(stderrPipe)
	if err != nil {
		return "", "", fmt.Errorf("reading stderr: %w", err)
	}

	err = cmd.Wait()
	return stdout.String(), string(stderrContent), err
}

// Compile-time interface checks
var (
	_ CommandRunner = (*ExecRunner)(nil)
	_ PDFEngine     = (*TexEngine)(nil)
)

// TexEngine produces the CV PDF by compiling rendered LaTeX source with a
// local TeX toolchain (latexmk by default, pdflatex as a direct fallback).
type TexEngine struct {
	renderer *TexRenderer
	runner   CommandRunner
	command  string
}

// NewTexEngine creates a TexEngine using the given compile command.
// Supported commands are "latexmk" and "pdflatex".
func NewTexEngine(renderer *TexRenderer, command string) *TexEngine {
	return &TexEngine{renderer: renderer, runner: &ExecRunner{}, command: command}
}

func (e *TexEngine) Name() string { return "tex" }

// Available reports whether the compile command exists on PATH.
func (e *TexEngine) Available() bool {
	_, err := exec.LookPath(e.command)
	return err == nil
}

// BuildPDF renders the document to LaTeX and compiles it in a temporary
// directory, returning the PDF bytes.
func (e *TexEngine) BuildPDF(ctx context.Context, doc *Document) ([]byte, error) {
	source, err := e.renderer.Render(doc)
	if err != nil {
		return nil, err
	}

	dir, err := os.MkdirTemp("", "vitae-tex-")
	if err != nil {
		return nil, fmt.Errorf("%w: creating temp dir: %v", ErrTexCompile, err)
	}
	defer func() { _ = os.RemoveAll(dir) }()

	texPath := filepath.Join(dir, "cv.tex")
	if err := os.WriteFile(texPath, source, 0o644); err != nil {
		return nil, fmt.Errorf("%w: writing cv.tex: %v", ErrTexCompile, err)
	}

	if err := e.compile(ctx, dir); err != nil {
		return nil, err
	}

	pdf, err := os.ReadFile(filepath.Join(dir, "cv.pdf"))
	if err != nil {
		return nil, fmt.Errorf("%w: reading cv.pdf: %v", ErrTexCompile, err)
	}
	return pdf, nil
}

func (e *TexEngine) compile(ctx context.Context, dir string) error {
	runs := [][]string{{"-pdf", "-interaction=nonstopmode", "-halt-on-error", "cv.tex"}}
	if e.command == "pdflatex" {
		// pdflatex needs a second pass for stable references.
		args := []string{"-interaction=nonstopmode", "-halt-on-error", "cv.tex"}
		runs = [][]string{args, args}
	}

	for _, args := range runs {
		if _, stderr, err := e.runner.Run(ctx, dir, e.command, args...); err != nil {
			if errors.Is(err, exec.ErrNotFound) {
				return fmt.Errorf("%w: %s: %v", ErrTexNotFound, e.command, err)
			}
			return fmt.Errorf("%w: %s: %s: %v", ErrTexCompile, e.command, stderr, err)
		}
	}
	return nil
}

func (e *TexEngine) Close() error { return nil }
