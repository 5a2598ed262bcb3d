package vitae

import (
	"strings"
	"testing"

	"github.com/alnah/go-vitae/internal/assets"
)

func newTestRenderer(t *testing.T) *HTMLRenderer {
	t.Helper()
	resolver, err := assets.NewResolver("")
	if err != nil {
		t.Fatalf("NewResolver: %v", err)
	}
	return NewHTMLRenderer(resolver)
}

func testPageData(doc *Document) PageData {
	return PageData{
		Site:  SiteMeta{Title: "Site", Owner: "Jane Doe"},
		Title: "Curriculum Vitae",
		Slug:  "cv",
		Nav: []NavItem{
			{Label: "Bio", Href: "index.html"},
			{Label: "CV", Href: "cv.html", Active: true},
		},
		Doc: doc,
	}
}

func TestHTMLRendererRenderPage(t *testing.T) {
	renderer := newTestRenderer(t)
	doc := NewTransformer("Jane Doe").Transform(fixtureStore())

	t.Run("cv page", func(t *testing.T) {
		data := testPageData(doc)
		data.CVPDF = "pdfs/cv.pdf"

		page, err := renderer.RenderPage("cv", data)
		if err != nil {
			t.Fatalf("RenderPage: %v", err)
		}

		html := string(page)
		for _, want := range []string{
			"<title>Curriculum Vitae · Site</title>",
			`<a href="cv.html" class="active">CV</a>`,
			`<a href="pdfs/cv.pdf">Download PDF</a>`,
			"<h2>Education</h2>",
			"Jan 2023 – Present",
			`<span class="highlight">Jane Doe</span>`,
		} {
			if !strings.Contains(html, want) {
				t.Errorf("page missing %q", want)
			}
		}
	})

	t.Run("publications page", func(t *testing.T) {
		page, err := renderer.RenderPage("publications", testPageData(doc))
		if err != nil {
			t.Fatalf("RenderPage: %v", err)
		}

		html := string(page)
		if !strings.Contains(html, "denotes equal contribution") {
			t.Error("missing equal-contribution note")
		}
		if !strings.Contains(html, `href="pub/doe2021.html"`) {
			t.Error("missing link to publication page")
		}
	})

	t.Run("publication page escapes content", func(t *testing.T) {
		data := testPageData(doc)
		data.Pub = &Publication{
			Key: "x", Title: "Ampersands & You", Year: "2024",
			Authors: []Author{{Name: "Jane Doe"}},
			Venue:   "J. X",
		}

		page, err := renderer.RenderPage("publication", data)
		if err != nil {
			t.Fatalf("RenderPage: %v", err)
		}
		if !strings.Contains(string(page), "Ampersands &amp; You") {
			t.Error("title not escaped")
		}
	})

	t.Run("unknown template", func(t *testing.T) {
		if _, err := renderer.RenderPage("nope", testPageData(doc)); err == nil {
			t.Fatal("expected error for missing template")
		}
	})
}

func TestRenderStandaloneCV(t *testing.T) {
	renderer := newTestRenderer(t)
	doc := NewTransformer("Jane Doe").Transform(fixtureStore())

	page, err := renderer.RenderStandaloneCV(PageData{Title: "Curriculum Vitae", Doc: doc})
	if err != nil {
		t.Fatalf("RenderStandaloneCV: %v", err)
	}

	html := string(page)
	if !strings.Contains(html, "<style>") {
		t.Error("styles not inlined")
	}
	if strings.Contains(html, `<header class="site-header">`) {
		t.Error("standalone page should not carry the site chrome")
	}
	if !strings.Contains(html, "<h2>Education</h2>") {
		t.Error("missing CV content")
	}
}

func TestAuthorsHTML(t *testing.T) {
	authors := []Author{
		{Name: "Jane Doe", Highlight: true, EqualContrib: true},
		{Name: "José <Smith>"},
		{Name: "Ann Lee"},
	}

	got := string(authorsHTML(authors))
	for _, want := range []string{
		`<span class="highlight">Jane Doe</span><span class="equal-contrib">*</span>`,
		"José &lt;Smith&gt;",
		", and Ann Lee",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("authorsHTML missing %q in %q", want, got)
		}
	}

	if got := authorsHTML(nil); got != "" {
		t.Errorf("authorsHTML(nil) = %q, want empty", got)
	}
	if got := string(authorsHTML(authors[2:])); got != "Ann Lee" {
		t.Errorf("single author = %q", got)
	}
}
