package vitae

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/alnah/go-vitae/internal/assets"
)

// MockRunner records invocations and can simulate a TeX toolchain by
// dropping files into the working directory.
type MockRunner struct {
	Stdout string
	Stderr string
	Err    error
	OnRun  func(dir string)
	Calls  [][]string
}

func (m *MockRunner) Run(ctx context.Context, dir, name string, args ...string) (string, string, error) {
	m.Calls = append(m.Calls, append([]string{name}, args...))
	if m.OnRun != nil {
		m.OnRun(dir)
	}
	return m.Stdout, m.Stderr, m.Err
}

func newTestTexEngine(t *testing.T, runner CommandRunner, command string) *TexEngine {
	t.Helper()
	resolver, err := assets.NewResolver("")
	if err != nil {
		t.Fatalf("NewResolver: %v", err)
	}
	engine := NewTexEngine(NewTexRenderer(resolver), command)
	engine.runner = runner
	return engine
}

func TestTexEngineBuildPDF(t *testing.T) {
	doc := NewTransformer("Jane Doe").Transform(fixtureStore())

	t.Run("latexmk success", func(t *testing.T) {
		mock := &MockRunner{OnRun: func(dir string) {
			if err := os.WriteFile(filepath.Join(dir, "cv.pdf"), []byte("%PDF-fake"), 0o644); err != nil {
				t.Fatal(err)
			}
		}}
		engine := newTestTexEngine(t, mock, "latexmk")

		pdf, err := engine.BuildPDF(context.Background(), doc)
		if err != nil {
			t.Fatalf("BuildPDF: %v", err)
		}
		if string(pdf) != "%PDF-fake" {
			t.Errorf("pdf = %q", pdf)
		}
		if len(mock.Calls) != 1 {
			t.Fatalf("got %d runs, want 1", len(mock.Calls))
		}
		want := []string{"latexmk", "-pdf", "-interaction=nonstopmode", "-halt-on-error", "cv.tex"}
		for i, arg := range want {
			if mock.Calls[0][i] != arg {
				t.Errorf("arg %d = %q, want %q", i, mock.Calls[0][i], arg)
			}
		}
	})

	t.Run("pdflatex runs twice", func(t *testing.T) {
		mock := &MockRunner{OnRun: func(dir string) {
			_ = os.WriteFile(filepath.Join(dir, "cv.pdf"), []byte("%PDF-fake"), 0o644)
		}}
		engine := newTestTexEngine(t, mock, "pdflatex")

		if _, err := engine.BuildPDF(context.Background(), doc); err != nil {
			t.Fatalf("BuildPDF: %v", err)
		}
		if len(mock.Calls) != 2 {
			t.Errorf("got %d runs, want 2", len(mock.Calls))
		}
	})

	t.Run("compile failure", func(t *testing.T) {
		mock := &MockRunner{Stderr: "! LaTeX Error", Err: errors.New("exit status 1")}
		engine := newTestTexEngine(t, mock, "latexmk")

		_, err := engine.BuildPDF(context.Background(), doc)
		if !errors.Is(err, ErrTexCompile) {
			t.Errorf("err = %v, want ErrTexCompile", err)
		}
	})

	t.Run("missing toolchain", func(t *testing.T) {
		mock := &MockRunner{Err: exec.ErrNotFound}
		engine := newTestTexEngine(t, mock, "latexmk")

		_, err := engine.BuildPDF(context.Background(), doc)
		if !errors.Is(err, ErrTexNotFound) {
			t.Errorf("err = %v, want ErrTexNotFound", err)
		}
	})
}

func TestTexEngineAvailable(t *testing.T) {
	engine := newTestTexEngine(t, &MockRunner{}, "definitely-not-a-real-command")
	if engine.Available() {
		t.Error("Available() should be false for a missing command")
	}
}
