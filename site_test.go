package vitae

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/alnah/go-vitae/internal/assets"
	"github.com/alnah/go-vitae/internal/config"
	"github.com/alnah/go-vitae/internal/markdown"
)

func newTestAssembler(t *testing.T, cfg config.Config) *Assembler {
	t.Helper()
	resolver, err := assets.NewResolver("")
	if err != nil {
		t.Fatalf("NewResolver: %v", err)
	}
	return NewAssembler(cfg, NewHTMLRenderer(resolver), markdown.NewConverter(), resolver, nil)
}

func testConfig(t *testing.T) config.Config {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.Author.GivenName = "Jane"
	cfg.Author.SurName = "Doe"
	cfg.Output.Dir = filepath.Join(t.TempDir(), "docs")
	cfg.Content.StaticDir = filepath.Join(t.TempDir(), "no-static")
	cfg.Content.PDFDir = "pdfs"
	return cfg
}

func TestPageDefinitions(t *testing.T) {
	doc := NewTransformer("Jane Doe").Transform(fixtureStore())
	defs := PageDefinitions(doc)

	// Five fixed pages plus one per publication.
	if want := 5 + len(doc.Publications); len(defs) != want {
		t.Fatalf("got %d definitions, want %d", len(defs), want)
	}
	wantFixed := []string{"index", "research", "publications", "cv", "blog"}
	for i, slug := range wantFixed {
		if defs[i].Slug != slug {
			t.Errorf("definition %d = %q, want %q", i, defs[i].Slug, slug)
		}
	}
	// Publication pages are sorted by key for deterministic output.
	if defs[5].Slug != "pub/doe2019" || defs[7].Slug != "pub/doe2023" {
		t.Errorf("publication pages out of order: %q, %q", defs[5].Slug, defs[7].Slug)
	}
}

func TestAssemble(t *testing.T) {
	cfg := testConfig(t)
	assembler := newTestAssembler(t, cfg)
	doc := NewTransformer("Jane Doe").Transform(fixtureStore())
	store := fixtureStore()

	report, err := assembler.Assemble(context.Background(), doc, store, []byte("%PDF-fake"))
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}

	t.Run("all pages written", func(t *testing.T) {
		if want := 5 + len(doc.Publications); len(report.Pages) != want {
			t.Fatalf("got %d pages, want %d", len(report.Pages), want)
		}
		for _, rel := range report.Pages {
			path := filepath.Join(cfg.Output.Dir, filepath.FromSlash(rel))
			if _, err := os.Stat(path); err != nil {
				t.Errorf("page %s not written: %v", rel, err)
			}
		}
	})

	t.Run("cv pdf written", func(t *testing.T) {
		if report.PDFPath != "pdfs/cv.pdf" {
			t.Fatalf("PDFPath = %q", report.PDFPath)
		}
		data, err := os.ReadFile(filepath.Join(cfg.Output.Dir, "pdfs", "cv.pdf"))
		if err != nil {
			t.Fatal(err)
		}
		if string(data) != "%PDF-fake" {
			t.Errorf("pdf content = %q", data)
		}
	})

	t.Run("default stylesheet shipped", func(t *testing.T) {
		if _, err := os.Stat(filepath.Join(cfg.Output.Dir, "static", "site.css")); err != nil {
			t.Errorf("site.css not written: %v", err)
		}
	})
}

func TestAssembleIsIdempotent(t *testing.T) {
	cfg := testConfig(t)
	assembler := newTestAssembler(t, cfg)
	doc := NewTransformer("Jane Doe").Transform(fixtureStore())
	store := fixtureStore()

	first, err := assembler.Assemble(context.Background(), doc, store, []byte("%PDF-fake"))
	if err != nil {
		t.Fatalf("first Assemble: %v", err)
	}
	snapshot := map[string][]byte{}
	for _, rel := range first.Pages {
		data, err := os.ReadFile(filepath.Join(cfg.Output.Dir, filepath.FromSlash(rel)))
		if err != nil {
			t.Fatal(err)
		}
		snapshot[rel] = data
	}

	second, err := assembler.Assemble(context.Background(), doc, store, []byte("%PDF-fake"))
	if err != nil {
		t.Fatalf("second Assemble: %v", err)
	}
	if len(second.Pages) != len(first.Pages) {
		t.Fatalf("page count changed: %d vs %d", len(second.Pages), len(first.Pages))
	}
	for _, rel := range second.Pages {
		data, err := os.ReadFile(filepath.Join(cfg.Output.Dir, filepath.FromSlash(rel)))
		if err != nil {
			t.Fatal(err)
		}
		if string(data) != string(snapshot[rel]) {
			t.Errorf("page %s changed between identical builds", rel)
		}
	}
}

func TestAssembleNewPublicationAddsOnePage(t *testing.T) {
	cfg := testConfig(t)
	assembler := newTestAssembler(t, cfg)
	store := fixtureStore()
	doc := NewTransformer("Jane Doe").Transform(store)

	first, err := assembler.Assemble(context.Background(), doc, store, nil)
	if err != nil {
		t.Fatalf("first Assemble: %v", err)
	}
	before, err := os.ReadFile(filepath.Join(cfg.Output.Dir, "pub", "doe2021.html"))
	if err != nil {
		t.Fatal(err)
	}

	doc.Publications = append(doc.Publications, Publication{
		Key: "new2025", Title: "Brand New", Year: "2025",
		Authors: []Author{{Name: "Jane Doe"}}, Venue: "J. New",
	})
	second, err := assembler.Assemble(context.Background(), doc, store, nil)
	if err != nil {
		t.Fatalf("second Assemble: %v", err)
	}

	if len(second.Pages) != len(first.Pages)+1 {
		t.Fatalf("page count %d -> %d, want exactly one more", len(first.Pages), len(second.Pages))
	}
	// Untouched publication pages stay byte-identical.
	after, err := os.ReadFile(filepath.Join(cfg.Output.Dir, "pub", "doe2021.html"))
	if err != nil {
		t.Fatal(err)
	}
	if string(before) != string(after) {
		t.Error("existing publication page changed")
	}
}

func TestAssemblePrunesRemovedPages(t *testing.T) {
	cfg := testConfig(t)
	assembler := newTestAssembler(t, cfg)
	store := fixtureStore()
	doc := NewTransformer("Jane Doe").Transform(store)

	if _, err := assembler.Assemble(context.Background(), doc, store, nil); err != nil {
		t.Fatalf("first Assemble: %v", err)
	}
	stale := filepath.Join(cfg.Output.Dir, "pub", "doe2019.html")
	if _, err := os.Stat(stale); err != nil {
		t.Fatalf("publication page not written: %v", err)
	}

	// Drop one publication and rebuild: its page must disappear.
	kept := doc.Publications[:0]
	for _, pub := range doc.Publications {
		if pub.Key != "doe2019" {
			kept = append(kept, pub)
		}
	}
	doc.Publications = kept
	if _, err := assembler.Assemble(context.Background(), doc, store, nil); err != nil {
		t.Fatalf("second Assemble: %v", err)
	}

	if _, err := os.Stat(stale); !os.IsNotExist(err) {
		t.Error("removed publication page still exists after rebuild")
	}
	if _, err := os.Stat(filepath.Join(cfg.Output.Dir, "pub", "doe2021.html")); err != nil {
		t.Errorf("surviving publication page missing: %v", err)
	}
	if _, err := os.Stat(filepath.Join(cfg.Output.Dir, "index.html")); err != nil {
		t.Errorf("fixed page missing: %v", err)
	}
}

func TestAssembleSkipsPageWithBrokenTemplate(t *testing.T) {
	// A custom asset directory whose cv template does not parse. The cv
	// page is skipped with an issue; every other page still renders from
	// the embedded defaults.
	base := t.TempDir()
	if err := os.MkdirAll(filepath.Join(base, "templates"), 0o755); err != nil {
		t.Fatal(err)
	}
	broken := `{{define "content"}}{{.Unclosed`
	if err := os.WriteFile(filepath.Join(base, "templates", "cv.html"), []byte(broken), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg := testConfig(t)
	cfg.Assets.BasePath = base
	resolver, err := assets.NewResolver(base)
	if err != nil {
		t.Fatalf("NewResolver: %v", err)
	}
	assembler := NewAssembler(cfg, NewHTMLRenderer(resolver), markdown.NewConverter(), resolver, nil)
	store := fixtureStore()
	doc := NewTransformer("Jane Doe").Transform(store)

	report, err := assembler.Assemble(context.Background(), doc, store, nil)
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}

	if !hasIssue(report.Issues, IssueRenderResource, "cv") {
		t.Errorf("no render issue for the cv page: %v", report.Issues)
	}
	for _, rel := range report.Pages {
		if rel == "cv.html" {
			t.Error("cv page reported as written")
		}
	}
	if _, err := os.Stat(filepath.Join(cfg.Output.Dir, "cv.html")); !os.IsNotExist(err) {
		t.Error("cv page written despite broken template")
	}
	if want := 4 + len(doc.Publications); len(report.Pages) != want {
		t.Errorf("got %d pages, want %d", len(report.Pages), want)
	}
	if _, err := os.Stat(filepath.Join(cfg.Output.Dir, "publications.html")); err != nil {
		t.Errorf("other pages not written: %v", err)
	}
}

func TestAssembleCopiesStaticAndPDFs(t *testing.T) {
	cfg := testConfig(t)

	staticDir := filepath.Join(t.TempDir(), "static")
	if err := os.MkdirAll(staticDir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(staticDir, "photo.jpg"), []byte("jpeg"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg.Content.StaticDir = staticDir

	pdfDir := filepath.Join(t.TempDir(), "pdfs")
	if err := os.MkdirAll(pdfDir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(pdfDir, "paper.pdf"), []byte("%PDF"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg.Content.PDFDir = pdfDir

	assembler := newTestAssembler(t, cfg)
	doc := NewTransformer("").Transform(fixtureStore())
	if _, err := assembler.Assemble(context.Background(), doc, fixtureStore(), nil); err != nil {
		t.Fatalf("Assemble: %v", err)
	}

	if _, err := os.Stat(filepath.Join(cfg.Output.Dir, "static", "photo.jpg")); err != nil {
		t.Errorf("static file not copied: %v", err)
	}
	if _, err := os.Stat(filepath.Join(cfg.Output.Dir, "pdfs", "paper.pdf")); err != nil {
		t.Errorf("pdf not copied: %v", err)
	}
}

func TestClean(t *testing.T) {
	t.Run("removes the output directory", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "docs")
		if err := os.MkdirAll(filepath.Join(dir, "pub"), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := Clean(dir); err != nil {
			t.Fatalf("Clean: %v", err)
		}
		if _, err := os.Stat(dir); !os.IsNotExist(err) {
			t.Error("directory still exists")
		}
	})

	t.Run("refuses unsafe paths", func(t *testing.T) {
		for _, path := range []string{"", ".", "..", "/", "../elsewhere"} {
			if err := Clean(path); !errors.Is(err, ErrUnsafeOutputDir) {
				t.Errorf("Clean(%q) = %v, want ErrUnsafeOutputDir", path, err)
			}
		}
	})
}
