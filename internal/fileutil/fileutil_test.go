package fileutil_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/alnah/go-vitae/internal/fileutil"
)

func TestWriteTempFile(t *testing.T) {
	t.Run("creates file with content", func(t *testing.T) {
		path, cleanup, err := fileutil.WriteTempFile("hello", "tex")
		if err != nil {
			t.Fatalf("WriteTempFile() error = %v", err)
		}
		defer cleanup()

		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("reading temp file: %v", err)
		}
		if string(data) != "hello" {
			t.Errorf("content = %q, want %q", data, "hello")
		}
	})

	t.Run("cleanup removes file", func(t *testing.T) {
		path, cleanup, err := fileutil.WriteTempFile("x", "html")
		if err != nil {
			t.Fatalf("WriteTempFile() error = %v", err)
		}
		cleanup()
		if fileutil.FileExists(path) {
			t.Errorf("file %s still exists after cleanup", path)
		}
	})

	t.Run("empty extension rejected", func(t *testing.T) {
		_, _, err := fileutil.WriteTempFile("x", "")
		if !errors.Is(err, fileutil.ErrExtensionEmpty) {
			t.Errorf("error = %v, want ErrExtensionEmpty", err)
		}
	})

	t.Run("extension with separator rejected", func(t *testing.T) {
		_, _, err := fileutil.WriteTempFile("x", "a/b")
		if !errors.Is(err, fileutil.ErrExtensionPathTraversal) {
			t.Errorf("error = %v, want ErrExtensionPathTraversal", err)
		}
	})
}

func TestFileExists(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "f.txt")
	if fileutil.FileExists(path) {
		t.Error("FileExists() = true for missing file")
	}
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatalf("setup: %v", err)
	}
	if !fileutil.FileExists(path) {
		t.Error("FileExists() = false for existing file")
	}
	if fileutil.FileExists(dir) {
		t.Error("FileExists() = true for directory")
	}
}

func TestDirExists(t *testing.T) {
	dir := t.TempDir()
	if !fileutil.DirExists(dir) {
		t.Error("DirExists() = false for existing directory")
	}
	path := filepath.Join(dir, "f.txt")
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatalf("setup: %v", err)
	}
	if fileutil.DirExists(path) {
		t.Error("DirExists() = true for regular file")
	}
	if fileutil.DirExists(filepath.Join(dir, "missing")) {
		t.Error("DirExists() = true for missing path")
	}
}

func TestCopyDir(t *testing.T) {
	t.Run("copies nested tree", func(t *testing.T) {
		src := t.TempDir()
		dst := filepath.Join(t.TempDir(), "out")

		if err := os.MkdirAll(filepath.Join(src, "css"), 0o755); err != nil {
			t.Fatalf("setup: %v", err)
		}
		files := map[string]string{
			"logo.svg":     "<svg/>",
			"css/site.css": "body{}",
		}
		for name, content := range files {
			if err := os.WriteFile(filepath.Join(src, name), []byte(content), 0o644); err != nil {
				t.Fatalf("setup: %v", err)
			}
		}

		if err := fileutil.CopyDir(src, dst); err != nil {
			t.Fatalf("CopyDir() error = %v", err)
		}

		for name, content := range files {
			data, err := os.ReadFile(filepath.Join(dst, name))
			if err != nil {
				t.Fatalf("reading copied %s: %v", name, err)
			}
			if string(data) != content {
				t.Errorf("%s = %q, want %q", name, data, content)
			}
		}
	})

	t.Run("missing source returns error", func(t *testing.T) {
		err := fileutil.CopyDir(filepath.Join(t.TempDir(), "nope"), t.TempDir())
		if err == nil {
			t.Error("CopyDir() error = nil, want error")
		}
	})

	t.Run("file source returns ErrNotADirectory", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "f.txt")
		if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
			t.Fatalf("setup: %v", err)
		}
		if err := fileutil.CopyDir(path, t.TempDir()); !errors.Is(err, fileutil.ErrNotADirectory) {
			t.Errorf("error = %v, want ErrNotADirectory", err)
		}
	})
}
