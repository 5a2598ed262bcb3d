package vitae

import (
	"fmt"
	"html/template"
	"strings"

	"github.com/alnah/go-vitae/internal/assets"
)

// SiteMeta carries the site-wide values every page template sees.
type SiteMeta struct {
	Title       string
	Owner       string
	Description string
	BaseURL     string
}

// NavItem is one entry in the site navigation bar.
type NavItem struct {
	Label  string
	Href   string
	Active bool
}

// PageData is the data passed to a page template. Doc, Pub, and CVPDF are
// only set for the templates that use them.
type PageData struct {
	Site  SiteMeta
	Title string
	Slug  string
	Root  string // relative prefix back to the site root, "" or "../"
	Nav   []NavItem
	Body  template.HTML
	Doc   *Document
	Pub   *Publication
	CVPDF string
}

// HTMLRenderer renders site pages from layout and content templates
// resolved through the asset loader.
type HTMLRenderer struct {
	assets *assets.Resolver
}

// NewHTMLRenderer creates an HTMLRenderer backed by the given asset resolver.
func NewHTMLRenderer(resolver *assets.Resolver) *HTMLRenderer {
	return &HTMLRenderer{assets: resolver}
}

// templateFuncs are the helpers available to every page template.
var templateFuncs = template.FuncMap{
	"authors": authorsHTML,
	"join":    strings.Join,
}

// RenderPage renders one page: the named content template wrapped in the
// site layout. Templates are parsed per call so a custom asset directory
// can override either without restarting.
func (r *HTMLRenderer) RenderPage(name string, data PageData) ([]byte, error) {
	layout, err := r.assets.LoadTemplate("layout")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRenderPage, err)
	}
	content, err := r.assets.LoadTemplate(name)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRenderPage, err)
	}

	tmpl, err := template.New("layout").Funcs(templateFuncs).Parse(layout)
	if err != nil {
		return nil, fmt.Errorf("%w: parse layout: %v", ErrRenderPage, err)
	}
	if _, err := tmpl.New(name).Parse(content); err != nil {
		return nil, fmt.Errorf("%w: parse %s: %v", ErrRenderPage, name, err)
	}

	var buf strings.Builder
	if err := tmpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("%w: execute %s: %v", ErrRenderPage, name, err)
	}
	return []byte(buf.String()), nil
}

// standaloneLayout wraps the CV content template in a self-contained page
// with inlined styles, for printing to PDF without external assets.
const standaloneLayout = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8"/>
<title>{{.Title}}</title>
<style>
{{.Style}}
</style>
</head>
<body>
<main>
{{template "content" .Page}}
</main>
</body>
</html>
`

// RenderStandaloneCV renders the CV page as a single self-contained HTML
// document with the site and print styles inlined, suitable for feeding
// to a headless browser.
func (r *HTMLRenderer) RenderStandaloneCV(data PageData) ([]byte, error) {
	content, err := r.assets.LoadTemplate("cv")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRenderPage, err)
	}
	siteStyle, err := r.assets.LoadStyle("site")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRenderPage, err)
	}
	printStyle, err := r.assets.LoadStyle("print")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRenderPage, err)
	}

	tmpl, err := template.New("standalone").Funcs(templateFuncs).Parse(standaloneLayout)
	if err != nil {
		return nil, fmt.Errorf("%w: parse standalone layout: %v", ErrRenderPage, err)
	}
	if _, err := tmpl.New("cv").Parse(content); err != nil {
		return nil, fmt.Errorf("%w: parse cv: %v", ErrRenderPage, err)
	}

	var buf strings.Builder
	err = tmpl.Execute(&buf, struct {
		Title string
		Style template.CSS
		Page  PageData
	}{
		Title: data.Title,
		Style: template.CSS(siteStyle + "\n" + printStyle),
		Page:  data,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: execute cv: %v", ErrRenderPage, err)
	}
	return []byte(buf.String()), nil
}

// authorsHTML formats an author list as escaped HTML, marking the site
// owner and equal contributors.
func authorsHTML(authors []Author) template.HTML {
	rendered := make([]string, len(authors))
	for i, a := range authors {
		name := template.HTMLEscapeString(a.Name)
		if a.Highlight {
			name = `<span class="highlight">` + name + `</span>`
		}
		if a.EqualContrib {
			name += `<span class="equal-contrib">*</span>`
		}
		rendered[i] = name
	}
	return template.HTML(joinNames(rendered))
}
