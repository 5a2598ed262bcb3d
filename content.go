package vitae

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/goccy/go-yaml"

	"github.com/alnah/go-vitae/internal/bibtex"
	"github.com/alnah/go-vitae/internal/yamlutil"
)

// StorePaths locates the content store inputs. Empty paths are skipped.
type StorePaths struct {
	CV           string
	Bibliography string
	Meta         string
	PagesDir     string
}

// Store is the loaded content store: a read-only snapshot of all inputs for
// one generation run. Problems encountered while loading are collected in
// Issues; a missing or unparsable input leaves its part of the store empty
// so the run can still produce partial output.
type Store struct {
	CV       CVRecord
	Bib      []bibtex.Entry
	BibIndex map[string]bibtex.Entry
	Meta     map[string]PublicationMeta
	Pages    map[string]string // page slug -> markdown body
	Issues   []Issue
}

// LoadStore reads the content store from disk. The returned error covers
// only unexpected I/O failures; missing files and parse problems become
// Issues on the store.
func LoadStore(paths StorePaths) (*Store, error) {
	store := &Store{
		BibIndex: map[string]bibtex.Entry{},
		Meta:     map[string]PublicationMeta{},
		Pages:    map[string]string{},
	}

	if err := store.loadCV(paths.CV); err != nil {
		return nil, err
	}
	if err := store.loadBibliography(paths.Bibliography); err != nil {
		return nil, err
	}
	if err := store.loadMeta(paths.Meta); err != nil {
		return nil, err
	}
	if err := store.loadPages(paths.PagesDir); err != nil {
		return nil, err
	}

	return store, nil
}

func (s *Store) loadCV(path string) error {
	if path == "" {
		return nil
	}
	data, err := os.ReadFile(path) // #nosec G304 -- operator-configured content path
	if err != nil {
		if os.IsNotExist(err) {
			s.Issues = append(s.Issues, Issue{
				Kind: IssueContentMissing, ID: path, Message: "CV document not found",
			})
			return nil
		}
		return fmt.Errorf("reading CV document: %w", err)
	}

	record, issues := parseCVRecord(data)
	s.CV = record
	s.Issues = append(s.Issues, issues...)
	return nil
}

func (s *Store) loadBibliography(path string) error {
	if path == "" {
		return nil
	}
	data, err := os.ReadFile(path) // #nosec G304 -- operator-configured content path
	if err != nil {
		if os.IsNotExist(err) {
			s.Issues = append(s.Issues, Issue{
				Kind: IssueContentMissing, ID: path, Message: "bibliography not found",
			})
			return nil
		}
		return fmt.Errorf("reading bibliography: %w", err)
	}

	entries, warnings := bibtex.Parse(data)
	for _, w := range warnings {
		s.Issues = append(s.Issues, Issue{
			Kind: IssueMalformedRecord, ID: path, Message: w.String(),
		})
	}

	s.Bib = entries
	for _, entry := range entries {
		if _, dup := s.BibIndex[entry.Key]; dup {
			s.Issues = append(s.Issues, Issue{
				Kind: IssueDuplicateKey, ID: entry.Key, Message: "duplicate citation key, later entry wins",
			})
		}
		s.BibIndex[entry.Key] = entry
	}
	return nil
}

func (s *Store) loadMeta(path string) error {
	if path == "" {
		return nil
	}
	data, err := os.ReadFile(path) // #nosec G304 -- operator-configured content path
	if err != nil {
		if os.IsNotExist(err) {
			return nil // metadata is optional
		}
		return fmt.Errorf("reading publication metadata: %w", err)
	}

	meta := map[string]PublicationMeta{}
	if err := yamlutil.Unmarshal(data, &meta); err != nil {
		s.Issues = append(s.Issues, Issue{
			Kind: IssueMalformedRecord, ID: path, Message: fmt.Sprintf("unparsable metadata: %v", err),
		})
		return nil
	}
	s.Meta = meta
	return nil
}

func (s *Store) loadPages(dir string) error {
	if dir == "" {
		return nil
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil // page bodies are optional
		}
		return fmt.Errorf("reading pages dir: %w", err)
	}

	// ReadDir sorts by name; load order is deterministic.
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".md") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, name)) // #nosec G304 -- file listed from configured dir
		if err != nil {
			return fmt.Errorf("reading page body %s: %w", name, err)
		}
		s.Pages[strings.TrimSuffix(name, ".md")] = string(data)
	}
	return nil
}

// identityFields are top-level CV scalars describing the person rather than
// forming a section of their own.
var identityFields = map[string]bool{
	"given-name": true,
	"sur-name":   true,
	"email":      true,
	"website":    true,
	"location":   true,
}

// parseCVRecord decodes a CV document preserving section and entry order.
// The document is a mapping of section name to scalar, list, or key-group
// value; anything that doesn't fit is reported and skipped.
func parseCVRecord(data []byte) (CVRecord, []Issue) {
	record := CVRecord{Identity: map[string]string{}}
	var issues []Issue

	var root yaml.MapSlice
	if err := yamlutil.UnmarshalOrdered(data, &root); err != nil {
		issues = append(issues, Issue{
			Kind: IssueMalformedRecord, ID: "cv", Message: fmt.Sprintf("unparsable CV document: %v", err),
		})
		return record, issues
	}

	for _, item := range root {
		name, ok := item.Key.(string)
		if !ok {
			issues = append(issues, Issue{
				Kind: IssueMalformedRecord, ID: "cv",
				Message: fmt.Sprintf("non-string section name %v", item.Key),
			})
			continue
		}

		switch value := item.Value.(type) {
		case nil:
			// empty section, skipped at render time
		case yaml.MapSlice:
			groups, groupIssues := parseKeyGroups(name, value)
			issues = append(issues, groupIssues...)
			record.Sections = append(record.Sections, CVSection{Name: name, Groups: groups})
		case []any:
			section, listIssues := parseListSection(name, value)
			issues = append(issues, listIssues...)
			record.Sections = append(record.Sections, section)
		default:
			scalar, ok := scalarString(value)
			if !ok {
				issues = append(issues, Issue{
					Kind: IssueMalformedRecord, ID: name,
					Message: fmt.Sprintf("unsupported section value of type %T", value),
				})
				continue
			}
			if identityFields[name] {
				record.Identity[name] = scalar
				continue
			}
			record.Sections = append(record.Sections, CVSection{Name: name, Text: scalar})
		}
	}

	return record, issues
}

// parseListSection handles list-valued sections: a list of records (degrees,
// employment) or a plain string list (skills).
func parseListSection(name string, items []any) (CVSection, []Issue) {
	section := CVSection{Name: name}
	var issues []Issue

	for i, item := range items {
		switch value := item.(type) {
		case yaml.MapSlice:
			entry, entryIssues := parseEntry(name, i, value)
			issues = append(issues, entryIssues...)
			section.Entries = append(section.Entries, entry)
		default:
			scalar, ok := scalarString(value)
			if !ok {
				issues = append(issues, Issue{
					Kind: IssueMalformedRecord, ID: name,
					Message: fmt.Sprintf("entry %d has unsupported type %T", i, value),
				})
				continue
			}
			section.Values = append(section.Values, scalar)
		}
	}

	return section, issues
}

// parseEntry converts one mapping item into a CVEntry.
func parseEntry(section string, index int, fields yaml.MapSlice) (CVEntry, []Issue) {
	entry := CVEntry{}
	var issues []Issue

	for _, field := range fields {
		name, ok := field.Key.(string)
		if !ok {
			issues = append(issues, Issue{
				Kind: IssueMalformedRecord, ID: section,
				Message: fmt.Sprintf("entry %d has a non-string field name %v", index, field.Key),
			})
			continue
		}

		switch value := field.Value.(type) {
		case nil:
			// absent value; leave field unset
		case []any:
			var list []string
			for _, elem := range value {
				scalar, ok := scalarString(elem)
				if !ok {
					issues = append(issues, Issue{
						Kind: IssueMalformedRecord, ID: section,
						Message: fmt.Sprintf("entry %d field %q has a non-scalar list element", index, name),
					})
					continue
				}
				list = append(list, scalar)
			}
			entry[name] = List(list...)
		default:
			scalar, ok := scalarString(value)
			if !ok {
				issues = append(issues, Issue{
					Kind: IssueMalformedRecord, ID: section,
					Message: fmt.Sprintf("entry %d field %q has unsupported type %T", index, name, value),
				})
				continue
			}
			entry[name] = Scalar(scalar)
		}
	}

	return entry, issues
}

// parseKeyGroups handles mapping-valued sections: group name to a list of
// citation keys (the bibliography section).
func parseKeyGroups(section string, groups yaml.MapSlice) ([]CVKeyGroup, []Issue) {
	var result []CVKeyGroup
	var issues []Issue

	for _, group := range groups {
		name, ok := group.Key.(string)
		if !ok {
			issues = append(issues, Issue{
				Kind: IssueMalformedRecord, ID: section,
				Message: fmt.Sprintf("non-string group name %v", group.Key),
			})
			continue
		}

		items, ok := group.Value.([]any)
		if !ok {
			issues = append(issues, Issue{
				Kind: IssueMalformedRecord, ID: section,
				Message: fmt.Sprintf("group %q is not a list of citation keys", name),
			})
			continue
		}

		keyGroup := CVKeyGroup{Name: name}
		for _, item := range items {
			key, ok := scalarString(item)
			if !ok {
				issues = append(issues, Issue{
					Kind: IssueMalformedRecord, ID: section,
					Message: fmt.Sprintf("group %q contains a non-scalar citation key", name),
				})
				continue
			}
			keyGroup.Keys = append(keyGroup.Keys, key)
		}
		result = append(result, keyGroup)
	}

	return result, issues
}

// scalarString formats a decoded scalar as a string.
func scalarString(v any) (string, bool) {
	switch value := v.(type) {
	case string:
		return value, true
	case int:
		return strconv.Itoa(value), true
	case int64:
		return strconv.FormatInt(value, 10), true
	case uint64:
		return strconv.FormatUint(value, 10), true
	case float64:
		return strconv.FormatFloat(value, 'f', -1, 64), true
	case bool:
		return strconv.FormatBool(value), true
	default:
		return "", false
	}
}
