package vitae

import (
	"fmt"
	"strings"
)

// FieldValue is a CV entry field value: either a scalar string or a list of
// strings. Numbers and booleans in the source are formatted as strings.
type FieldValue struct {
	scalar string
	list   []string
	isList bool
}

// Scalar creates a scalar FieldValue.
func Scalar(s string) FieldValue {
	return FieldValue{scalar: s}
}

// List creates a list FieldValue.
func List(values ...string) FieldValue {
	return FieldValue{list: values, isList: true}
}

// String returns the scalar value, or "" for lists.
func (v FieldValue) String() string {
	if v.isList {
		return ""
	}
	return v.scalar
}

// Values returns the list value; a scalar is returned as a one-element list.
func (v FieldValue) Values() []string {
	if v.isList {
		return v.list
	}
	if v.scalar == "" {
		return nil
	}
	return []string{v.scalar}
}

// IsList reports whether the value is a list.
func (v FieldValue) IsList() bool { return v.isList }

// IsZero reports whether the value is empty.
func (v FieldValue) IsZero() bool {
	return !v.isList && v.scalar == "" || v.isList && len(v.list) == 0
}

// CVEntry is one record within a CV section, field name to value.
type CVEntry map[string]FieldValue

// Get returns the named field's scalar value, or "" if absent.
func (e CVEntry) Get(name string) string {
	return e[name].String()
}

// Has reports whether the named field is present and non-empty.
func (e CVEntry) Has(name string) bool {
	v, ok := e[name]
	return ok && !v.IsZero()
}

// CVKeyGroup is a named list of citation keys within the CV's bibliography
// section, e.g. "conference-papers" -> [key, key, ...].
type CVKeyGroup struct {
	Name string
	Keys []string
}

// CVSection is one top-level section of the CV document. Exactly one of
// Text, Entries, Values, or Groups is populated, depending on the shape of
// the source value.
type CVSection struct {
	Name    string
	Text    string       // scalar section body (e.g. summary)
	Entries []CVEntry    // list of records (e.g. degrees, employment)
	Values  []string     // plain string list (e.g. skills)
	Groups  []CVKeyGroup // citation key groups (bibliography)
}

// CVRecord is the parsed CV document: identity fields plus sections in
// source order. Section order and entry order are preserved verbatim.
type CVRecord struct {
	Identity map[string]string
	Sections []CVSection
}

// PublicationMeta is optional per-publication metadata merged into resolved
// publications. Field names follow the metadata file format.
type PublicationMeta struct {
	Abstract          string   `yaml:"abstract"`
	PaperURL          string   `yaml:"paper_url"`
	SlidesURL         string   `yaml:"slides_url"`
	CodeURL           string   `yaml:"code_url"`
	Figure            string   `yaml:"figure"`
	AlsoAt            []string `yaml:"also_at"`
	EqualContribution []int    `yaml:"equal_contribution"`
}

// Author is one name in a publication's author list.
type Author struct {
	Name         string
	Highlight    bool // the site owner
	EqualContrib bool // starred as an equal contributor
}

// Publication is a bibliography entry resolved against its metadata.
type Publication struct {
	Key       string
	Type      string // bibtex entry type
	Title     string
	Authors   []Author
	Venue     string
	Year      string
	URL       string
	Abstract  string
	PaperURL  string
	SlidesURL string
	CodeURL   string
	Figure    string
	AlsoAt    []string
}

// HasEqualContrib reports whether any author is starred.
func (p Publication) HasEqualContrib() bool {
	for _, a := range p.Authors {
		if a.EqualContrib {
			return true
		}
	}
	return false
}

// Degree is one education record.
type Degree struct {
	Degree     string
	Discipline string
	School     string
	Year       string
}

// Position is one employment record.
type Position struct {
	Title       string
	Affiliation string
	Location    string
	Start       string
	End         string // "Present" when the position is current
	Description string
}

// Award is one award record with the year(s) it was received.
type Award struct {
	Title string
	Years []string
}

// PublicationGroup is a titled group of resolved publications on the CV.
type PublicationGroup struct {
	Name         string // source group name, e.g. "conference-papers"
	Title        string // display title, e.g. "Conference Papers"
	Publications []Publication
}

// Section is one rendered CV section. Exactly one of the content fields is
// populated; renderers emit whichever is present, so an empty section
// simply produces nothing.
type Section struct {
	Name      string
	Title     string
	Text      string
	Degrees   []Degree
	Positions []Position
	Groups    []PublicationGroup
	Awards    []Award
	Skills    []string
}

// Empty reports whether the section has no renderable content.
func (s Section) Empty() bool {
	return s.Text == "" &&
		len(s.Degrees) == 0 &&
		len(s.Positions) == 0 &&
		len(s.Groups) == 0 &&
		len(s.Awards) == 0 &&
		len(s.Skills) == 0
}

// Document is the fully resolved output of the transformer: every citation
// key replaced by its bibliography entry, empty sections dropped, source
// order preserved. A Document is always renderable; problems encountered
// during transformation are collected in Issues rather than failing the run.
type Document struct {
	GivenName string
	SurName   string
	Sections  []Section

	// Publications lists every bibliography entry, newest first, for the
	// publications page. Independent of which keys the CV references.
	Publications    []Publication
	HasEqualContrib bool

	Issues []Issue
}

// Name returns the full display name.
func (d *Document) Name() string {
	return strings.TrimSpace(d.GivenName + " " + d.SurName)
}

// IssueKind classifies a non-fatal problem found during a run.
type IssueKind string

// Issue kinds, mirroring the error taxonomy.
const (
	IssueMissingReference IssueKind = "missing-reference"
	IssueMalformedRecord  IssueKind = "malformed-record"
	IssueRenderResource   IssueKind = "render-resource-missing"
	IssueContentMissing   IssueKind = "content-missing"
	IssueDuplicateKey     IssueKind = "duplicate-key"
)

// Issue is a non-fatal problem reported to the operator. The run always
// completes; issues only affect the exit status in strict mode.
type Issue struct {
	Kind    IssueKind
	ID      string // offending key, section, or artifact
	Message string
}

func (i Issue) String() string {
	if i.ID == "" {
		return fmt.Sprintf("%s: %s", i.Kind, i.Message)
	}
	return fmt.Sprintf("%s: %s: %s", i.Kind, i.ID, i.Message)
}

// Report summarizes a completed build.
type Report struct {
	Pages   []string // site-relative paths of pages written
	PDFPath string   // site-relative path of the CV PDF, "" if not built
	Issues  []Issue
}

// HasIssues reports whether any issues were collected.
func (r *Report) HasIssues() bool { return len(r.Issues) > 0 }
