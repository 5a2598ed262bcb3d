package vitae

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/alnah/go-vitae/internal/bibtex"
)

// Transformer resolves a loaded content store into a renderable Document.
// The contract is deliberately forgiving: anything that cannot be resolved
// is reported as an Issue and skipped, so the transformer always returns a
// valid (possibly partial) document and never fails a run.
type Transformer struct {
	highlight string // name highlighted in author lists
}

// NewTransformer creates a Transformer. highlight is the site owner's name
// as it appears in bibliography author fields; empty disables highlighting.
func NewTransformer(highlight string) *Transformer {
	return &Transformer{highlight: highlight}
}

// Display titles for the CV sections the renderers understand. Sections
// with other names are skipped at render time, never an error.
var sectionTitles = map[string]string{
	"summary":      "Summary",
	"degrees":      "Education",
	"employment":   "Experience",
	"bibliography": "Publications",
	"awards":       "Awards & Recognition",
	"skills":       "Skills",
}

// Display titles for well-known citation key groups; anything else is
// derived from the group name.
var groupTitles = map[string]string{
	"conference-papers": "Conference Papers",
	"journal-articles":  "Journal Articles",
	"theses":            "Theses",
	"preprints":         "Preprints",
}

// Transform resolves the store into a Document: citation keys are replaced
// by bibliography entries, sections keep their source order, and sections
// with zero resolvable entries are dropped. Store issues carry over.
func (t *Transformer) Transform(store *Store) *Document {
	doc := &Document{
		GivenName: store.CV.Identity["given-name"],
		SurName:   store.CV.Identity["sur-name"],
	}
	doc.Issues = append(doc.Issues, store.Issues...)

	for _, source := range store.CV.Sections {
		section, issues := t.buildSection(store, source)
		doc.Issues = append(doc.Issues, issues...)
		if section.Empty() {
			continue
		}
		doc.Sections = append(doc.Sections, section)
	}

	var issues []Issue
	doc.Publications, issues = t.resolveAll(store)
	doc.Issues = append(doc.Issues, issues...)
	for _, pub := range doc.Publications {
		if pub.HasEqualContrib() {
			doc.HasEqualContrib = true
			break
		}
	}

	return doc
}

// buildSection maps one CV section to its rendered form. Unknown section
// names produce an empty Section, which the caller drops.
func (t *Transformer) buildSection(store *Store, source CVSection) (Section, []Issue) {
	title, known := sectionTitles[source.Name]
	if !known {
		return Section{}, nil
	}

	section := Section{Name: source.Name, Title: title}
	var issues []Issue

	switch source.Name {
	case "summary":
		section.Text = source.Text
	case "degrees":
		section.Degrees, issues = buildDegrees(source)
	case "employment":
		section.Positions, issues = buildPositions(source)
	case "bibliography":
		section.Groups, issues = t.buildGroups(store, source)
	case "awards":
		section.Awards, issues = buildAwards(source)
	case "skills":
		section.Skills = source.Values
	}

	return section, issues
}

func buildDegrees(source CVSection) ([]Degree, []Issue) {
	var degrees []Degree
	var issues []Issue

	for i, entry := range source.Entries {
		if missing := requireFields(entry, "degree", "school"); missing != "" {
			issues = append(issues, malformedEntry(source.Name, i, missing))
			continue
		}
		degrees = append(degrees, Degree{
			Degree:     entry.Get("degree"),
			Discipline: entry.Get("discipline"),
			School:     entry.Get("school"),
			Year:       entry.Get("year"),
		})
	}
	return degrees, issues
}

func buildPositions(source CVSection) ([]Position, []Issue) {
	var positions []Position
	var issues []Issue

	for i, entry := range source.Entries {
		if missing := requireFields(entry, "title", "affiliation"); missing != "" {
			issues = append(issues, malformedEntry(source.Name, i, missing))
			continue
		}

		start := joinNonEmpty(" ", entry.Get("start-month"), entry.Get("start-year"))
		end := "Present"
		if entry.Has("end-year") {
			end = joinNonEmpty(" ", entry.Get("end-month"), entry.Get("end-year"))
		}

		positions = append(positions, Position{
			Title:       entry.Get("title"),
			Affiliation: entry.Get("affiliation"),
			Location:    entry.Get("location"),
			Start:       start,
			End:         end,
			Description: entry.Get("description"),
		})
	}
	return positions, issues
}

func buildAwards(source CVSection) ([]Award, []Issue) {
	var awards []Award
	var issues []Issue

	for i, entry := range source.Entries {
		if missing := requireFields(entry, "title"); missing != "" {
			issues = append(issues, malformedEntry(source.Name, i, missing))
			continue
		}

		years := entry["years"].Values()
		if len(years) == 0 && entry.Has("year") {
			years = []string{entry.Get("year")}
		}
		awards = append(awards, Award{Title: entry.Get("title"), Years: years})
	}
	return awards, issues
}

// buildGroups resolves citation key groups against the bibliography.
// An unresolvable key is a lookup failure, not a crash: the entry is
// skipped with an issue. Groups with zero resolvable keys are dropped.
func (t *Transformer) buildGroups(store *Store, source CVSection) ([]PublicationGroup, []Issue) {
	var groups []PublicationGroup
	var issues []Issue

	for _, keyGroup := range source.Groups {
		group := PublicationGroup{
			Name:  keyGroup.Name,
			Title: groupTitle(keyGroup.Name),
		}
		for _, key := range keyGroup.Keys {
			entry, ok := store.BibIndex[key]
			if !ok {
				issues = append(issues, Issue{
					Kind: IssueMissingReference, ID: key,
					Message: fmt.Sprintf("%v; entry skipped", ErrMissingReference),
				})
				continue
			}
			pub, pubIssues := t.resolveEntry(entry, store.Meta[key])
			issues = append(issues, pubIssues...)
			if pub == nil {
				continue
			}
			group.Publications = append(group.Publications, *pub)
		}
		if len(group.Publications) == 0 {
			continue
		}
		groups = append(groups, group)
	}

	return groups, issues
}

// resolveAll resolves every bibliography entry for the publications page,
// newest first. Entries sharing a year keep bibliography source order.
func (t *Transformer) resolveAll(store *Store) ([]Publication, []Issue) {
	var pubs []Publication
	var issues []Issue

	seen := map[string]bool{}
	for _, raw := range store.Bib {
		if seen[raw.Key] {
			continue
		}
		seen[raw.Key] = true

		// Index lookup so a duplicated key resolves to its final entry.
		entry := store.BibIndex[raw.Key]
		pub, pubIssues := t.resolveEntry(entry, store.Meta[entry.Key])
		issues = append(issues, pubIssues...)
		if pub == nil {
			continue
		}
		pubs = append(pubs, *pub)
	}

	sort.SliceStable(pubs, func(i, j int) bool {
		return yearValue(pubs[i].Year) > yearValue(pubs[j].Year)
	})
	return pubs, issues
}

// resolveEntry builds a Publication from a bibliography entry and its
// metadata. Returns nil with an issue when a required field is missing.
func (t *Transformer) resolveEntry(entry bibtex.Entry, meta PublicationMeta) (*Publication, []Issue) {
	title := entry.Field("title")
	if title == "" {
		return nil, []Issue{{
			Kind: IssueMalformedRecord, ID: entry.Key,
			Message: fmt.Sprintf("%v: title; entry skipped", ErrMalformedRecord),
		}}
	}

	url := entry.Field("url")
	paperURL := meta.PaperURL
	if paperURL == "" {
		paperURL = url
	}

	return &Publication{
		Key:       entry.Key,
		Type:      entry.Type,
		Title:     title,
		Authors:   parseAuthors(entry.Field("author"), t.highlight, meta.EqualContribution),
		Venue:     deriveVenue(entry),
		Year:      entry.Field("year"),
		URL:       url,
		Abstract:  meta.Abstract,
		PaperURL:  paperURL,
		SlidesURL: meta.SlidesURL,
		CodeURL:   meta.CodeURL,
		Figure:    meta.Figure,
		AlsoAt:    meta.AlsoAt,
	}, nil
}

// deriveVenue derives the display venue from the entry type, the same way
// for the CV, the publications page, and the typeset PDF.
func deriveVenue(entry bibtex.Entry) string {
	switch entry.Type {
	case "inproceedings":
		venue := entry.Field("booktitle")
		if vol := entry.Field("volume"); vol != "" {
			venue += ", vol. " + vol
		}
		if pages := entry.Field("pages"); pages != "" {
			venue += ", pp. " + pages
		}
		return venue
	case "article":
		venue := entry.Field("journal")
		if vol := entry.Field("volume"); vol != "" {
			venue += ", vol. " + vol
		}
		return venue
	case "mastersthesis", "phdthesis":
		thesisType := entry.Field("type")
		if thesisType == "" {
			if entry.Type == "phdthesis" {
				thesisType = "PhD Thesis"
			} else {
				thesisType = "Master's Thesis"
			}
		}
		return joinNonEmpty(", ", thesisType, entry.Field("school"))
	default:
		if journal := entry.Field("journal"); journal != "" {
			return journal
		}
		return entry.Field("booktitle")
	}
}

// groupTitle returns the display title for a citation key group.
func groupTitle(name string) string {
	if title, ok := groupTitles[name]; ok {
		return title
	}
	words := strings.Split(name, "-")
	for i, word := range words {
		if word == "" {
			continue
		}
		words[i] = strings.ToUpper(word[:1]) + word[1:]
	}
	return strings.Join(words, " ")
}

// yearValue parses a year for sorting; unparsable years sort last.
func yearValue(year string) int {
	n, err := strconv.Atoi(strings.TrimSpace(year))
	if err != nil {
		return 0
	}
	return n
}

// requireFields returns the first missing required field name, or "".
func requireFields(entry CVEntry, fields ...string) string {
	for _, field := range fields {
		if !entry.Has(field) {
			return field
		}
	}
	return ""
}

func malformedEntry(section string, index int, field string) Issue {
	return Issue{
		Kind: IssueMalformedRecord, ID: section,
		Message: fmt.Sprintf("%v: entry %d lacks %q; entry skipped", ErrMalformedRecord, index, field),
	}
}

// joinNonEmpty joins the non-empty parts with sep.
func joinNonEmpty(sep string, parts ...string) string {
	var kept []string
	for _, part := range parts {
		if part != "" {
			kept = append(kept, part)
		}
	}
	return strings.Join(kept, sep)
}
