package vitae

import (
	"os"
	"path/filepath"
	"testing"
)

const testCV = `{
  "given-name": "Jane",
  "sur-name": "Doe",
  "summary": "Researcher of things.",
  "degrees": [
    {"degree": "PhD", "discipline": "Thingology", "school": "Example University", "year": 2023}
  ],
  "bibliography": {
    "conference-papers": ["doe2021"]
  },
  "skills": ["Go", "LaTeX"]
}`

const testBib = `@inproceedings{doe2021,
  title     = {A Study of Things},
  author    = {Doe, Jane and Smith, John},
  booktitle = {Proc. of Things},
  year      = {2021}
}

@article{doe2023,
  title   = {More Things},
  author  = {Doe, Jane},
  journal = {Journal of Things},
  year    = {2023}
}`

const testMeta = `{
  "doe2021": {
    "abstract": "We study things.",
    "equal_contribution": [0, 1]
  }
}`

// writeStore lays out a content store in a temp directory and returns
// its paths.
func writeStore(t *testing.T, cv, bib, meta string) StorePaths {
	t.Helper()
	dir := t.TempDir()

	paths := StorePaths{PagesDir: filepath.Join(dir, "pages")}
	write := func(name, content string) string {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
		return path
	}

	if cv != "" {
		paths.CV = write("cv.json", cv)
	}
	if bib != "" {
		paths.Bibliography = write("references.bib", bib)
	}
	if meta != "" {
		paths.Meta = write("publications_meta.json", meta)
	}

	if err := os.MkdirAll(paths.PagesDir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(paths.PagesDir, "research.md"), []byte("# My Research"), 0o644); err != nil {
		t.Fatal(err)
	}
	return paths
}

func TestLoadStore(t *testing.T) {
	store, err := LoadStore(writeStore(t, testCV, testBib, testMeta))
	if err != nil {
		t.Fatalf("LoadStore: %v", err)
	}

	t.Run("identity and section order", func(t *testing.T) {
		if store.CV.Identity["given-name"] != "Jane" || store.CV.Identity["sur-name"] != "Doe" {
			t.Errorf("identity = %v", store.CV.Identity)
		}
		want := []string{"summary", "degrees", "bibliography", "skills"}
		if len(store.CV.Sections) != len(want) {
			t.Fatalf("got %d sections, want %d", len(store.CV.Sections), len(want))
		}
		for i, name := range want {
			if store.CV.Sections[i].Name != name {
				t.Errorf("section %d = %q, want %q", i, store.CV.Sections[i].Name, name)
			}
		}
	})

	t.Run("numeric scalars become strings", func(t *testing.T) {
		if got := store.CV.Sections[1].Entries[0].Get("year"); got != "2023" {
			t.Errorf("year = %q", got)
		}
	})

	t.Run("bibliography indexed by key", func(t *testing.T) {
		if len(store.Bib) != 2 {
			t.Fatalf("got %d entries, want 2", len(store.Bib))
		}
		if store.BibIndex["doe2021"].Field("title") != "A Study of Things" {
			t.Errorf("doe2021 = %+v", store.BibIndex["doe2021"])
		}
	})

	t.Run("metadata keyed by citation key", func(t *testing.T) {
		meta := store.Meta["doe2021"]
		if meta.Abstract != "We study things." || len(meta.EqualContribution) != 2 {
			t.Errorf("meta = %+v", meta)
		}
	})

	t.Run("pages loaded by slug", func(t *testing.T) {
		if store.Pages["research"] != "# My Research" {
			t.Errorf("pages = %v", store.Pages)
		}
	})

	if len(store.Issues) != 0 {
		t.Errorf("unexpected issues: %v", store.Issues)
	}
}

func TestLoadStoreMissingInputs(t *testing.T) {
	dir := t.TempDir()
	store, err := LoadStore(StorePaths{
		CV:           filepath.Join(dir, "absent-cv.json"),
		Bibliography: filepath.Join(dir, "absent.bib"),
		Meta:         filepath.Join(dir, "absent-meta.json"),
		PagesDir:     filepath.Join(dir, "absent-pages"),
	})
	if err != nil {
		t.Fatalf("LoadStore: %v", err)
	}

	// Required inputs report issues; metadata and pages are optional.
	if len(store.Issues) != 2 {
		t.Fatalf("got %d issues, want 2: %v", len(store.Issues), store.Issues)
	}
	for _, issue := range store.Issues {
		if issue.Kind != IssueContentMissing {
			t.Errorf("issue kind = %v, want IssueContentMissing", issue.Kind)
		}
	}
}

func TestLoadStoreDuplicateKeys(t *testing.T) {
	bib := `@article{dup, title = {First}, year = {2020}}
@article{dup, title = {Second}, year = {2021}}`

	store, err := LoadStore(writeStore(t, testCV, bib, ""))
	if err != nil {
		t.Fatalf("LoadStore: %v", err)
	}

	if !hasIssue(store.Issues, IssueDuplicateKey, "dup") {
		t.Error("missing duplicate-key issue")
	}
	if store.BibIndex["dup"].Field("title") != "Second" {
		t.Errorf("later entry should win, got %q", store.BibIndex["dup"].Field("title"))
	}
}

func TestLoadStoreMalformedCV(t *testing.T) {
	store, err := LoadStore(writeStore(t, "{not json", testBib, ""))
	if err != nil {
		t.Fatalf("LoadStore: %v", err)
	}
	if !hasIssue(store.Issues, IssueMalformedRecord, "cv") {
		t.Error("missing malformed-record issue for unparsable CV")
	}
}
