package vitae

import "strings"

// parseAuthors splits a BibTeX author field ("A and B and C") into Authors,
// normalizing "Last, First" to "First Last", marking the site owner for
// highlighting, and starring equal contributors by position.
func parseAuthors(field, highlight string, equalContrib []int) []Author {
	if strings.TrimSpace(field) == "" {
		return nil
	}

	starred := map[int]bool{}
	for _, idx := range equalContrib {
		starred[idx] = true
	}

	var authors []Author
	for i, raw := range strings.Split(field, " and ") {
		name := normalizeAuthorName(raw)
		if name == "" {
			continue
		}
		authors = append(authors, Author{
			Name:         name,
			Highlight:    matchesHighlight(name, highlight),
			EqualContrib: starred[i],
		})
	}
	return authors
}

// normalizeAuthorName converts "Last, First" to "First Last" and trims
// whitespace. Names without a comma pass through unchanged.
func normalizeAuthorName(raw string) string {
	raw = strings.TrimSpace(raw)
	last, first, found := strings.Cut(raw, ",")
	if !found {
		return raw
	}
	return strings.TrimSpace(strings.TrimSpace(first) + " " + strings.TrimSpace(last))
}

// matchesHighlight reports whether name refers to the highlighted person.
// Matching is loose: the full highlight string or any of its words matching
// as a case-insensitive substring counts. This tolerates initials and
// middle-name differences between the bibliography and the config.
func matchesHighlight(name, highlight string) bool {
	if highlight == "" {
		return false
	}
	lowerName := strings.ToLower(name)
	if strings.Contains(lowerName, strings.ToLower(highlight)) {
		return true
	}
	for _, part := range strings.Fields(highlight) {
		if strings.Contains(lowerName, strings.ToLower(part)) {
			return true
		}
	}
	return false
}

// joinNames joins pre-formatted author names in prose style:
// "A", "A and B", "A, B, and C".
func joinNames(names []string) string {
	switch len(names) {
	case 0:
		return ""
	case 1:
		return names[0]
	case 2:
		return names[0] + " and " + names[1]
	default:
		return strings.Join(names[:len(names)-1], ", ") + ", and " + names[len(names)-1]
	}
}
