package vitae

import (
	"fmt"
	"strings"
	"text/template"

	"github.com/alnah/go-vitae/internal/assets"
)

// texDocument is the view model for the LaTeX CV template.
type texDocument struct {
	Name     string
	Sections []texSection
}

type texSection struct {
	Title   string
	Text    string
	Entries []texEntry
}

// texEntry is one CV line: a bold heading with an optional right-aligned
// column, an optional sub line, and an optional body. Entries without a
// heading render as a bare paragraph.
type texEntry struct {
	Heading string
	Right   string
	Sub     string
	Body    string
}

// TexRenderer renders a Document into LaTeX source for the typeset CV.
type TexRenderer struct {
	assets *assets.Resolver
}

// NewTexRenderer creates a TexRenderer backed by the given asset resolver.
func NewTexRenderer(resolver *assets.Resolver) *TexRenderer {
	return &TexRenderer{assets: resolver}
}

// Render produces the LaTeX source for the document's CV. All document
// values are escaped; the template controls layout only.
func (r *TexRenderer) Render(doc *Document) ([]byte, error) {
	source, err := r.assets.LoadTexTemplate("cv")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRenderTex, err)
	}

	// LaTeX source is full of {} and \, so the template uses << >>.
	tmpl, err := template.New("cv.tex").Delims("<<", ">>").Parse(source)
	if err != nil {
		return nil, fmt.Errorf("%w: parse cv.tex: %v", ErrRenderTex, err)
	}

	var buf strings.Builder
	if err := tmpl.Execute(&buf, buildTexDocument(doc)); err != nil {
		return nil, fmt.Errorf("%w: execute cv.tex: %v", ErrRenderTex, err)
	}
	return []byte(buf.String()), nil
}

// buildTexDocument flattens a Document into the template view model,
// escaping every value on the way in.
func buildTexDocument(doc *Document) texDocument {
	tex := texDocument{Name: latexEscape(doc.Name())}

	for _, section := range doc.Sections {
		if section.Name == "bibliography" {
			// Each citation group becomes its own titled section.
			for _, group := range section.Groups {
				tex.Sections = append(tex.Sections, texSection{
					Title:   latexEscape(group.Title),
					Entries: texPublications(group.Publications),
				})
			}
			continue
		}

		out := texSection{Title: latexEscape(section.Title), Text: latexEscape(section.Text)}
		for _, d := range section.Degrees {
			heading := d.Degree
			if d.Discipline != "" {
				heading += ", " + d.Discipline
			}
			out.Entries = append(out.Entries, texEntry{
				Heading: latexEscape(heading),
				Right:   latexEscape(d.Year),
				Sub:     latexEscape(d.School),
			})
		}
		for _, p := range section.Positions {
			sub := p.Affiliation
			if p.Location != "" {
				sub += ", " + p.Location
			}
			out.Entries = append(out.Entries, texEntry{
				Heading: latexEscape(p.Title),
				Right:   latexEscape(p.Start + " -- " + p.End),
				Sub:     latexEscape(sub),
				Body:    latexEscape(p.Description),
			})
		}
		for _, a := range section.Awards {
			heading := a.Title
			if len(a.Years) > 0 {
				heading += ", " + strings.Join(a.Years, ", ")
			}
			out.Entries = append(out.Entries, texEntry{Body: latexEscape(heading)})
		}
		if len(section.Skills) > 0 {
			out.Entries = append(out.Entries, texEntry{
				Body: latexEscape(strings.Join(section.Skills, " | ")),
			})
		}
		tex.Sections = append(tex.Sections, out)
	}

	return tex
}

func texPublications(pubs []Publication) []texEntry {
	entries := make([]texEntry, 0, len(pubs))
	for _, pub := range pubs {
		line := texAuthors(pub.Authors) + ". \\textbf{" + latexEscape(pub.Title) + "}. " +
			"\\textit{" + latexEscape(pub.Venue) + "}, " + latexEscape(pub.Year) + "."
		entries = append(entries, texEntry{Body: line})
	}
	return entries
}

func texAuthors(authors []Author) string {
	names := make([]string, len(authors))
	for i, a := range authors {
		name := latexEscape(a.Name)
		if a.Highlight {
			name = "\\textbf{" + name + "}"
		}
		if a.EqualContrib {
			name += "$^*$"
		}
		names[i] = name
	}
	return joinNames(names)
}

// latexEscape escapes LaTeX special characters in a single pass.
func latexEscape(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch r {
		case '\\':
			b.WriteString(`\textbackslash{}`)
		case '&', '%', '$', '#', '_':
			b.WriteByte('\\')
			b.WriteRune(r)
		case '{':
			b.WriteString(`\{`)
		case '}':
			b.WriteString(`\}`)
		case '~':
			b.WriteString(`\textasciitilde{}`)
		case '^':
			b.WriteString(`\textasciicircum{}`)
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
