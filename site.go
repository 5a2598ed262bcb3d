package vitae

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/natefinch/atomic"

	"github.com/alnah/go-vitae/internal/assets"
	"github.com/alnah/go-vitae/internal/config"
	"github.com/alnah/go-vitae/internal/fileutil"
	"github.com/alnah/go-vitae/internal/markdown"
)

// PageDefinition describes one page of the site: where it goes, which
// content template renders it, and where its body comes from.
type PageDefinition struct {
	Slug     string // output path without extension, e.g. "cv" or "pub/key"
	Title    string
	Template string // content template name
	BodySlug string // markdown body slug, "" if the template has no body
	PubKey   string // publication key for pub pages, "" otherwise
}

// Fallback markdown bodies for pages with no file under the pages
// directory. Keeps a fresh site renderable before any content exists.
var defaultPageBodies = map[string]string{
	"index":    "Welcome. Edit `pages/index.md` to introduce yourself.",
	"research": "Edit `pages/research.md` to describe your research.",
	"blog":     "Nothing here yet.",
}

// Nav labels in display order. Every build emits exactly these pages
// plus one page per publication.
var navPages = []struct {
	Slug  string
	Label string
}{
	{"index", "Bio"},
	{"research", "Research"},
	{"publications", "Publications"},
	{"cv", "CV"},
	{"blog", "Blog"},
}

// PageDefinitions returns the full, deterministic page set for a document:
// the fixed site pages followed by one page per publication, sorted by key.
func PageDefinitions(doc *Document) []PageDefinition {
	defs := []PageDefinition{
		{Slug: "index", Title: "Bio", Template: "home", BodySlug: "index"},
		{Slug: "research", Title: "Research", Template: "page", BodySlug: "research"},
		{Slug: "publications", Title: "Publications", Template: "publications"},
		{Slug: "cv", Title: "Curriculum Vitae", Template: "cv"},
		{Slug: "blog", Title: "Blog", Template: "page", BodySlug: "blog"},
	}

	pubs := make([]PageDefinition, 0, len(doc.Publications))
	for _, pub := range doc.Publications {
		pubs = append(pubs, PageDefinition{
			Slug:     "pub/" + pub.Key,
			Title:    pub.Title,
			Template: "publication",
			PubKey:   pub.Key,
		})
	}
	sort.Slice(pubs, func(i, j int) bool { return pubs[i].Slug < pubs[j].Slug })

	return append(defs, pubs...)
}

// Assembler writes the finished site: rendered pages, copied static
// assets, copied PDFs, and the generated CV PDF. All writes are atomic,
// so rebuilding unchanged inputs leaves byte-identical artifacts.
type Assembler struct {
	cfg      config.Config
	renderer *HTMLRenderer
	md       *markdown.Converter
	assets   *assets.Resolver
	log      *slog.Logger
}

// NewAssembler creates an Assembler for the given configuration.
func NewAssembler(cfg config.Config, renderer *HTMLRenderer, md *markdown.Converter, resolver *assets.Resolver, log *slog.Logger) *Assembler {
	if log == nil {
		log = slog.Default()
	}
	return &Assembler{cfg: cfg, renderer: renderer, md: md, assets: resolver, log: log}
}

// Assemble writes the complete site for doc into the output directory.
// cvPDF may be nil when no PDF engine ran. Page-level failures become
// issues on the report; only filesystem-level failures abort the build.
func (a *Assembler) Assemble(ctx context.Context, doc *Document, store *Store, cvPDF []byte) (*Report, error) {
	outDir := a.cfg.Output.Dir
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrWriteArtifact, err)
	}

	report := &Report{Issues: doc.Issues}

	if err := a.copyStatic(outDir); err != nil {
		return nil, err
	}
	if err := a.copyPDFs(outDir); err != nil {
		return nil, err
	}

	if cvPDF != nil {
		rel := filepath.Join(filepath.Base(a.cfg.Content.PDFDir), a.cfg.PDF.File)
		path := filepath.Join(outDir, rel)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrWriteArtifact, err)
		}
		if err := atomic.WriteFile(path, bytes.NewReader(cvPDF)); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrWriteArtifact, path, err)
		}
		report.PDFPath = filepath.ToSlash(rel)
	}

	site := SiteMeta{
		Title:       a.cfg.Site.Title,
		Owner:       a.cfg.Author.Name(),
		Description: a.cfg.Site.Description,
		BaseURL:     a.cfg.Site.BaseURL,
	}
	if site.Owner == "" {
		site.Owner = doc.Name()
	}

	defs := PageDefinitions(doc)
	for _, def := range defs {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		page, err := a.renderOne(ctx, def, doc, store, site, report.PDFPath)
		if err != nil {
			report.Issues = append(report.Issues, Issue{
				Kind: IssueRenderResource, ID: def.Slug,
				Message: fmt.Sprintf("%v; page skipped", err),
			})
			a.log.Warn("page skipped", "slug", def.Slug, "error", err)
			continue
		}

		rel := def.Slug + ".html"
		path := filepath.Join(outDir, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrWriteArtifact, err)
		}
		if err := atomic.WriteFile(path, bytes.NewReader(page)); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrWriteArtifact, path, err)
		}
		report.Pages = append(report.Pages, rel)
	}

	if err := a.pruneStale(outDir, defs); err != nil {
		return nil, err
	}

	return report, nil
}

// pruneStale removes generated pages that are no longer in the page set,
// so content deleted or renamed at the source disappears from the site
// instead of lingering until a manual clean.
func (a *Assembler) pruneStale(outDir string, defs []PageDefinition) error {
	keep := make(map[string]bool, len(defs))
	for _, def := range defs {
		keep[def.Slug+".html"] = true
	}

	prune := func(dir, prefix string) error {
		entries, err := os.ReadDir(dir)
		if err != nil {
			if os.IsNotExist(err) {
				return nil
			}
			return fmt.Errorf("%w: %v", ErrWriteArtifact, err)
		}
		for _, entry := range entries {
			if entry.IsDir() || filepath.Ext(entry.Name()) != ".html" {
				continue
			}
			rel := prefix + entry.Name()
			if keep[rel] {
				continue
			}
			if err := os.Remove(filepath.Join(dir, entry.Name())); err != nil {
				return fmt.Errorf("%w: %s: %v", ErrWriteArtifact, rel, err)
			}
			a.log.Debug("pruned stale page", "page", rel)
		}
		return nil
	}

	if err := prune(outDir, ""); err != nil {
		return err
	}
	return prune(filepath.Join(outDir, "pub"), "pub/")
}

// renderOne builds the PageData for one page definition and renders it.
func (a *Assembler) renderOne(ctx context.Context, def PageDefinition, doc *Document, store *Store, site SiteMeta, pdfPath string) ([]byte, error) {
	root := ""
	if strings.Contains(def.Slug, "/") {
		root = strings.Repeat("../", strings.Count(def.Slug, "/"))
	}

	data := PageData{
		Site:  site,
		Title: def.Title,
		Slug:  def.Slug,
		Root:  root,
		Nav:   buildNav(def.Slug),
		Doc:   doc,
		CVPDF: pdfPath,
	}

	if def.BodySlug != "" {
		body, ok := store.Pages[def.BodySlug]
		if !ok {
			body = defaultPageBodies[def.BodySlug]
		}
		rendered, err := a.md.ToHTML(ctx, body)
		if err != nil {
			return nil, fmt.Errorf("%w: body %s: %v", ErrRenderPage, def.BodySlug, err)
		}
		data.Body = template.HTML(rendered)
	}

	if def.PubKey != "" {
		pub := findPublication(doc, def.PubKey)
		if pub == nil {
			return nil, fmt.Errorf("%w: unknown publication %s", ErrRenderPage, def.PubKey)
		}
		data.Pub = pub
		data.Title = pub.Title
	}

	return a.renderer.RenderPage(def.Template, data)
}

func buildNav(activeSlug string) []NavItem {
	nav := make([]NavItem, len(navPages))
	for i, p := range navPages {
		nav[i] = NavItem{Label: p.Label, Href: p.Slug + ".html", Active: p.Slug == activeSlug}
	}
	return nav
}

func findPublication(doc *Document, key string) *Publication {
	for i := range doc.Publications {
		if doc.Publications[i].Key == key {
			return &doc.Publications[i]
		}
	}
	return nil
}

// copyStatic copies the static directory into the site and guarantees
// static/site.css exists, writing the embedded stylesheet when the user
// does not ship their own.
func (a *Assembler) copyStatic(outDir string) error {
	target := filepath.Join(outDir, "static")
	if fileutil.DirExists(a.cfg.Content.StaticDir) {
		if err := fileutil.CopyDir(a.cfg.Content.StaticDir, target); err != nil {
			return fmt.Errorf("%w: %v", ErrWriteArtifact, err)
		}
	}

	cssPath := filepath.Join(target, "site.css")
	if fileutil.FileExists(cssPath) {
		return nil
	}
	css, err := a.assets.LoadStyle("site")
	if err != nil {
		return fmt.Errorf("%w: %v", ErrWriteArtifact, err)
	}
	if err := os.MkdirAll(target, 0o755); err != nil {
		return fmt.Errorf("%w: %v", ErrWriteArtifact, err)
	}
	if err := atomic.WriteFile(cssPath, strings.NewReader(css)); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrWriteArtifact, cssPath, err)
	}
	return nil
}

// copyPDFs copies user-provided PDFs (papers, slides) into the site.
func (a *Assembler) copyPDFs(outDir string) error {
	if !fileutil.DirExists(a.cfg.Content.PDFDir) {
		return nil
	}
	target := filepath.Join(outDir, filepath.Base(a.cfg.Content.PDFDir))
	if err := fileutil.CopyDir(a.cfg.Content.PDFDir, target); err != nil {
		return fmt.Errorf("%w: %v", ErrWriteArtifact, err)
	}
	return nil
}

// Clean removes the output directory. Refuses paths that would reach
// outside a project: the root directory, ".", or an empty string.
func Clean(outDir string) error {
	cleaned := filepath.Clean(outDir)
	if cleaned == "" || cleaned == "." || cleaned == ".." ||
		cleaned == string(filepath.Separator) || strings.HasPrefix(cleaned, ".."+string(filepath.Separator)) {
		return fmt.Errorf("%w: %q", ErrUnsafeOutputDir, outDir)
	}
	if err := os.RemoveAll(cleaned); err != nil {
		return fmt.Errorf("%w: %v", ErrWriteArtifact, err)
	}
	return nil
}
