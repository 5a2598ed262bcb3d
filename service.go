package vitae

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/alnah/go-vitae/internal/assets"
	"github.com/alnah/go-vitae/internal/config"
	"github.com/alnah/go-vitae/internal/markdown"
)

// Service runs the full build: load content, resolve the document,
// generate the CV PDF, and assemble the site.
type Service struct {
	cfg      config.Config
	log      *slog.Logger
	assets   *assets.Resolver
	renderer *HTMLRenderer
	md       *markdown.Converter
	engine   PDFEngine
	timeout  time.Duration
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(log *slog.Logger) Option {
	return func(s *Service) { s.log = log }
}

// WithPDFEngine overrides engine selection, mainly for tests.
func WithPDFEngine(engine PDFEngine) Option {
	return func(s *Service) { s.engine = engine }
}

// WithTimeout bounds a whole Build call. Zero means no limit.
func WithTimeout(d time.Duration) Option {
	return func(s *Service) { s.timeout = d }
}

// New creates a Service from a validated configuration.
func New(cfg config.Config, opts ...Option) (*Service, error) {
	resolver, err := assets.NewResolver(cfg.Assets.BasePath)
	if err != nil {
		return nil, err
	}

	s := &Service{
		cfg:      cfg,
		log:      slog.Default(),
		assets:   resolver,
		renderer: NewHTMLRenderer(resolver),
		md:       markdown.NewConverter(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.assets.HasCustomLoader() {
		s.log.Debug("custom assets enabled", "path", cfg.Assets.BasePath)
	}
	return s, nil
}

// Build runs one complete build and reports what was written. Content
// problems surface as report issues; only environment failures (unreadable
// inputs, unwritable output) return an error.
func (s *Service) Build(ctx context.Context) (*Report, error) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	store, err := LoadStore(StorePaths{
		CV:           s.cfg.Content.CV,
		Bibliography: s.cfg.Content.Bibliography,
		Meta:         s.cfg.Content.Meta,
		PagesDir:     s.cfg.Content.PagesDir,
	})
	if err != nil {
		return nil, err
	}

	doc := NewTransformer(s.cfg.Author.HighlightName()).Transform(store)
	if doc.GivenName == "" {
		doc.GivenName = s.cfg.Author.GivenName
	}
	if doc.SurName == "" {
		doc.SurName = s.cfg.Author.SurName
	}

	// The PDF is built before the site so the CV page can link it.
	cvPDF := s.buildPDF(ctx, doc)

	assembler := NewAssembler(s.cfg, s.renderer, s.md, s.assets, s.log)
	report, err := assembler.Assemble(ctx, doc, store, cvPDF)
	if err != nil {
		return nil, err
	}

	s.log.Info("build complete",
		"pages", len(report.Pages),
		"pdf", report.PDFPath != "",
		"issues", len(report.Issues))
	return report, nil
}

// buildPDF selects an engine and generates the CV PDF. Failures degrade
// to an issue on the document; the site still builds without the PDF.
func (s *Service) buildPDF(ctx context.Context, doc *Document) []byte {
	engine := s.selectEngine()
	if engine == nil {
		return nil
	}

	pdf, err := engine.BuildPDF(ctx, doc)
	if err != nil {
		doc.Issues = append(doc.Issues, Issue{
			Kind: IssueRenderResource, ID: s.cfg.PDF.File,
			Message: fmt.Sprintf("%s engine: %v; site built without PDF", engine.Name(), err),
		})
		s.log.Warn("cv pdf skipped", "engine", engine.Name(), "error", err)
		return nil
	}

	s.log.Info("cv pdf generated", "engine", engine.Name(), "bytes", len(pdf))
	return pdf
}

// selectEngine picks the PDF engine per configuration: an injected engine
// wins, "off" disables, "auto" prefers the TeX toolchain and falls back
// to headless Chrome.
func (s *Service) selectEngine() PDFEngine {
	if s.engine != nil {
		return s.engine
	}

	switch s.cfg.PDF.Engine {
	case config.EngineOff:
		return nil
	case config.EngineTex:
		s.engine = NewTexEngine(NewTexRenderer(s.assets), s.cfg.PDF.TexCommand)
	case config.EngineChrome:
		s.engine = NewChromeEngine(s.renderer)
	default: // auto
		tex := NewTexEngine(NewTexRenderer(s.assets), s.cfg.PDF.TexCommand)
		if tex.Available() {
			s.engine = tex
		} else {
			s.log.Info("tex toolchain not found, using headless chrome",
				"command", s.cfg.PDF.TexCommand)
			s.engine = NewChromeEngine(s.renderer)
		}
	}
	return s.engine
}

// Close releases engine resources (a running browser, if any).
func (s *Service) Close() error {
	if s.engine != nil {
		return s.engine.Close()
	}
	return nil
}
