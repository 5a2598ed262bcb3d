// Package config loads and validates the site configuration file.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/alnah/go-vitae/internal/yamlutil"
)

// Sentinel errors for config operations.
var (
	ErrConfigNotFound  = errors.New("config file not found")
	ErrEmptyConfigPath = errors.New("config path cannot be empty")
	ErrConfigParse     = errors.New("failed to parse config")
	ErrInvalidEngine   = errors.New("invalid pdf engine")
	ErrFieldTooLong    = errors.New("field exceeds maximum length")
)

// PDF engine names accepted in the config and on the command line.
const (
	EngineAuto   = "auto"   // tex when a TeX toolchain is found, chrome otherwise
	EngineTex    = "tex"    // LaTeX via latexmk/pdflatex
	EngineChrome = "chrome" // headless Chrome printing the CV page
	EngineOff    = "off"    // skip the PDF build
)

// Field length limits. Config values end up in page titles and file paths,
// so absurd lengths are rejected early.
const (
	MaxTitleLength = 200
	MaxNameLength  = 100
	MaxURLLength   = 2048
	MaxPathLength  = 4096
)

// Config holds all configuration for a site build.
type Config struct {
	Site    SiteConfig    `yaml:"site"`
	Author  AuthorConfig  `yaml:"author"`
	Content ContentConfig `yaml:"content"`
	Output  OutputConfig  `yaml:"output"`
	PDF     PDFConfig     `yaml:"pdf"`
	Assets  AssetsConfig  `yaml:"assets"`
	Serve   ServeConfig   `yaml:"serve"`
}

// SiteConfig describes the site as a whole.
type SiteConfig struct {
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
	BaseURL     string `yaml:"baseURL"`
}

// AuthorConfig identifies the site owner. Highlight is the name matched
// against bibliography author lists; it defaults to the full name.
type AuthorConfig struct {
	GivenName string `yaml:"givenName"`
	SurName   string `yaml:"surName"`
	Highlight string `yaml:"highlight"`
}

// Name returns the author's full display name.
func (a AuthorConfig) Name() string {
	return strings.TrimSpace(a.GivenName + " " + a.SurName)
}

// HighlightName returns the name to highlight in author lists.
func (a AuthorConfig) HighlightName() string {
	if a.Highlight != "" {
		return a.Highlight
	}
	return a.Name()
}

// ContentConfig locates the content store inputs.
type ContentConfig struct {
	CV           string `yaml:"cv"`           // CV document (JSON or YAML)
	Bibliography string `yaml:"bibliography"` // BibTeX file
	Meta         string `yaml:"meta"`         // per-publication metadata (optional)
	PagesDir     string `yaml:"pagesDir"`     // markdown page bodies (optional)
	StaticDir    string `yaml:"staticDir"`    // static assets copied verbatim (optional)
	PDFDir       string `yaml:"pdfDir"`       // extra PDFs copied to the site (optional)
}

// OutputConfig defines where artifacts are written.
type OutputConfig struct {
	Dir string `yaml:"dir"`
}

// PDFConfig controls the typeset CV build.
type PDFConfig struct {
	Engine     string `yaml:"engine"`     // auto, tex, chrome, off
	TexCommand string `yaml:"texCommand"` // TeX toolchain entry point
	File       string `yaml:"file"`       // output file name under pdfDir
}

// AssetsConfig overrides embedded templates and styles.
type AssetsConfig struct {
	BasePath string `yaml:"basePath"` // empty = embedded assets only
}

// ServeConfig configures the local preview server.
type ServeConfig struct {
	Addr string `yaml:"addr"`
}

// DefaultConfig returns the configuration used when fields are unset.
// Paths mirror the conventional repository layout.
func DefaultConfig() Config {
	return Config{
		Site: SiteConfig{Title: "Homepage"},
		Content: ContentConfig{
			CV:           "cv/cv.json",
			Bibliography: "references.bib",
			Meta:         "publications_meta.json",
			PagesDir:     "pages",
			StaticDir:    "static",
			PDFDir:       "pdfs",
		},
		Output: OutputConfig{Dir: "docs"},
		PDF: PDFConfig{
			Engine:     EngineAuto,
			TexCommand: "latexmk",
			File:       "cv.pdf",
		},
		Serve: ServeConfig{Addr: "localhost:8000"},
	}
}

// Load reads and validates a config file, filling unset fields with
// defaults. Returns ErrConfigNotFound if the file does not exist.
func Load(path string) (Config, error) {
	if path == "" {
		return Config{}, ErrEmptyConfigPath
	}

	data, err := os.ReadFile(path) // #nosec G304 -- path is operator-supplied config location
	if err != nil {
		if os.IsNotExist(err) {
			return Config{}, fmt.Errorf("%w: %s", ErrConfigNotFound, path)
		}
		return Config{}, fmt.Errorf("reading config: %w", err)
	}

	cfg := Config{}
	// Strict decoding: a misspelled key is an error, not a silently
	// ignored setting.
	if err := yamlutil.UnmarshalStrict(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("%w: %v", ErrConfigParse, err)
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// applyDefaults fills zero-valued fields from DefaultConfig.
func (c *Config) applyDefaults() {
	def := DefaultConfig()
	fill := func(dst *string, fallback string) {
		if *dst == "" {
			*dst = fallback
		}
	}
	fill(&c.Site.Title, def.Site.Title)
	fill(&c.Content.CV, def.Content.CV)
	fill(&c.Content.Bibliography, def.Content.Bibliography)
	fill(&c.Content.Meta, def.Content.Meta)
	fill(&c.Content.PagesDir, def.Content.PagesDir)
	fill(&c.Content.StaticDir, def.Content.StaticDir)
	fill(&c.Content.PDFDir, def.Content.PDFDir)
	fill(&c.Output.Dir, def.Output.Dir)
	fill(&c.PDF.Engine, def.PDF.Engine)
	fill(&c.PDF.TexCommand, def.PDF.TexCommand)
	fill(&c.PDF.File, def.PDF.File)
	fill(&c.Serve.Addr, def.Serve.Addr)
}

// Validate checks field constraints.
func (c *Config) Validate() error {
	switch c.PDF.Engine {
	case EngineAuto, EngineTex, EngineChrome, EngineOff:
	default:
		return fmt.Errorf("%w: %q (must be auto, tex, chrome, or off)", ErrInvalidEngine, c.PDF.Engine)
	}

	checks := []struct {
		name  string
		value string
		max   int
	}{
		{"site.title", c.Site.Title, MaxTitleLength},
		{"site.baseURL", c.Site.BaseURL, MaxURLLength},
		{"author.givenName", c.Author.GivenName, MaxNameLength},
		{"author.surName", c.Author.SurName, MaxNameLength},
		{"author.highlight", c.Author.Highlight, MaxNameLength},
		{"output.dir", c.Output.Dir, MaxPathLength},
		{"assets.basePath", c.Assets.BasePath, MaxPathLength},
	}
	for _, check := range checks {
		if len(check.value) > check.max {
			return fmt.Errorf("%w: %s (%d > %d)", ErrFieldTooLong, check.name, len(check.value), check.max)
		}
	}
	return nil
}
