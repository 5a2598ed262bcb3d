package main

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/alnah/go-vitae/internal/config"
)

func TestParseBuildFlags(t *testing.T) {
	flags, args, err := parseBuildFlags("build", []string{
		"-c", "custom.yaml", "--out", "public", "--pdf", "off", "--strict", "-v",
	})
	if err != nil {
		t.Fatalf("parseBuildFlags: %v", err)
	}
	if flags.config != "custom.yaml" || flags.out != "public" || flags.pdf != "off" {
		t.Errorf("flags = %+v", flags)
	}
	if !flags.strict || !flags.verbose || flags.quiet {
		t.Errorf("bool flags = %+v", flags)
	}
	if len(args) != 0 {
		t.Errorf("positional args = %v", args)
	}
}

func TestLoadConfig(t *testing.T) {
	t.Run("explicit path must exist", func(t *testing.T) {
		_, err := loadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
		if !errors.Is(err, config.ErrConfigNotFound) {
			t.Errorf("err = %v, want ErrConfigNotFound", err)
		}
	})

	t.Run("explicit path is loaded", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "vitae.yaml")
		if err := os.WriteFile(path, []byte("site:\n  title: My Page\n"), 0o644); err != nil {
			t.Fatal(err)
		}
		cfg, err := loadConfig(path)
		if err != nil {
			t.Fatalf("loadConfig: %v", err)
		}
		if cfg.Site.Title != "My Page" {
			t.Errorf("title = %q", cfg.Site.Title)
		}
		// Unset fields fall back to defaults.
		if cfg.Output.Dir != "docs" {
			t.Errorf("output dir = %q", cfg.Output.Dir)
		}
	})

	t.Run("missing default file falls back to defaults", func(t *testing.T) {
		// t.Chdir requires Go 1.24; replicate it for older toolchains.
		oldwd, err := os.Getwd()
		if err != nil {
			t.Fatal(err)
		}
		if err := os.Chdir(t.TempDir()); err != nil {
			t.Fatal(err)
		}
		t.Cleanup(func() {
			if err := os.Chdir(oldwd); err != nil {
				t.Fatal(err)
			}
		})
		cfg, err := loadConfig("")
		if err != nil {
			t.Fatalf("loadConfig: %v", err)
		}
		if cfg.Content.CV != "cv/cv.json" {
			t.Errorf("cv path = %q", cfg.Content.CV)
		}
	})

	t.Run("VITAE_CONFIG is honored", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "env.yaml")
		if err := os.WriteFile(path, []byte("output:\n  dir: public\n"), 0o644); err != nil {
			t.Fatal(err)
		}
		t.Setenv("VITAE_CONFIG", path)
		cfg, err := loadConfig("")
		if err != nil {
			t.Fatalf("loadConfig: %v", err)
		}
		if cfg.Output.Dir != "public" {
			t.Errorf("output dir = %q", cfg.Output.Dir)
		}
	})
}

func TestApplyOverrides(t *testing.T) {
	cfg := config.DefaultConfig()
	if err := applyOverrides(&cfg, &buildFlags{out: "public", pdf: "chrome"}); err != nil {
		t.Fatalf("applyOverrides: %v", err)
	}
	if cfg.Output.Dir != "public" || cfg.PDF.Engine != "chrome" {
		t.Errorf("cfg = %+v", cfg)
	}

	cfg = config.DefaultConfig()
	if err := applyOverrides(&cfg, &buildFlags{pdf: "slideshow"}); !errors.Is(err, config.ErrInvalidEngine) {
		t.Errorf("err = %v, want ErrInvalidEngine", err)
	}
}
