// Package article parses raw generated text into a typed document and
// checks it against the required section vocabulary. Structural defects
// short of a missing title are recorded, not fatal: downstream scoring
// penalizes them instead.
package article

import (
	"errors"
	"regexp"
	"strings"
)

// ErrUnparsable is returned for input no scoring can salvage: empty
// text, or text whose first heading is not an H1 title.
var ErrUnparsable = errors.New("article: unparsable content")

var (
	h1Pattern     = regexp.MustCompile(`^#\s+(.+)$`)
	h2Pattern     = regexp.MustCompile(`^##\s+(.+)$`)
	metaPattern   = regexp.MustCompile(`(?i)^\**meta\s*description:?\**:?\s*(.+)$`)
	urlPattern    = regexp.MustCompile(`https?://[^\s\)\]]+`)
	boldQPattern  = regexp.MustCompile(`^\*\*Q:\s*(.+?)\*\*\s*$`)
	answerPattern = regexp.MustCompile(`^A:\s*(.+)$`)
	bulletPattern = regexp.MustCompile(`^\s*[-*]\s+(.+)$`)
	bylinePattern = regexp.MustCompile(`^\*\*(.+?)\*\*\s*[—–-]+\s*(.+)$`)
	authorMarker  = regexp.MustCompile(`(?i)^\**\s*(about the author|à propos de l'auteur|auteur)\s*\**$`)
)

// Validate parses raw text into a Document. It fails only on
// completely unparsable input; missing sections are reported through
// Document.MissingSections.
func Validate(raw string) (*Document, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil, ErrUnparsable
	}

	lines := strings.Split(trimmed, "\n")

	// The first heading in the document must be the H1 title.
	title := ""
	titleIdx := -1
	for i, line := range lines {
		if h2Pattern.MatchString(line) {
			break
		}
		if m := h1Pattern.FindStringSubmatch(line); m != nil {
			title = strings.TrimSpace(m[1])
			titleIdx = i
			break
		}
	}
	if title == "" {
		return nil, ErrUnparsable
	}

	doc := &Document{
		Title:     title,
		Raw:       raw,
		WordCount: len(strings.Fields(trimmed)),
	}

	doc.MetaDescription = findMetaDescription(lines)
	doc.Sections = collectSections(lines, titleIdx+1)

	for _, s := range doc.Sections {
		switch s.Kind {
		case SectionFAQ:
			doc.FAQ = append(doc.FAQ, parseFAQ(s.Body)...)
		case SectionKeyTakeaways:
			doc.KeyTakeaways = append(doc.KeyTakeaways, parseBullets(s.Body)...)
		case SectionSources:
			// Links are extracted from the sources section only; URLs
			// elsewhere are body citations, not source references.
			doc.SourceLinks = append(doc.SourceLinks, parseLinks(s.Body)...)
		case SectionAuthor:
			if a, ok := parseAuthor(s.Body); ok {
				doc.Author = a
			}
		}
	}

	// The author block commonly appears as a bold marker after a rule
	// instead of an H2 heading.
	if doc.Author.Name == "" {
		if a, ok := parseTrailingAuthor(lines); ok {
			doc.Author = a
		}
	}

	doc.MissingSections = missingSections(doc)
	return doc, nil
}

func findMetaDescription(lines []string) string {
	for _, line := range lines {
		if m := metaPattern.FindStringSubmatch(strings.TrimSpace(line)); m != nil {
			desc := strings.TrimSpace(m[1])
			desc = strings.Trim(desc, "*")
			desc = strings.Trim(desc, "[]")
			return strings.TrimSpace(desc)
		}
	}
	return ""
}

func collectSections(lines []string, start int) []Section {
	var sections []Section
	var current *Section

	flush := func() {
		if current != nil {
			current.Body = strings.TrimSpace(current.Body)
			sections = append(sections, *current)
			current = nil
		}
	}

	for i := start; i < len(lines); i++ {
		line := lines[i]
		if m := h2Pattern.FindStringSubmatch(line); m != nil {
			flush()
			heading := strings.TrimSpace(m[1])
			current = &Section{Kind: classifyHeading(heading), Heading: heading}
			continue
		}
		if current != nil {
			current.Body += line + "\n"
		}
	}
	flush()
	return sections
}

// classifyHeading maps an H2 heading onto the fixed section vocabulary.
// Anything unrecognized is free-form body content.
func classifyHeading(heading string) SectionKind {
	h := strings.ToLower(strings.TrimSpace(heading))
	h = strings.Trim(h, ":*")
	switch {
	case strings.Contains(h, "introduction"):
		return SectionIntroduction
	case strings.Contains(h, "table of contents") || strings.Contains(h, "sommaire"):
		return SectionTableOfContents
	case h == "faq" || strings.Contains(h, "frequently asked") || strings.Contains(h, "questions fréquentes"):
		return SectionFAQ
	case strings.Contains(h, "key takeaways") || strings.Contains(h, "points clés"):
		return SectionKeyTakeaways
	case strings.HasPrefix(h, "source"):
		return SectionSources
	case strings.Contains(h, "author") || strings.Contains(h, "auteur"):
		return SectionAuthor
	default:
		return SectionBody
	}
}

func parseFAQ(body string) []FAQEntry {
	var entries []FAQEntry
	var question string
	for _, line := range strings.Split(body, "\n") {
		line = strings.TrimSpace(line)
		if m := boldQPattern.FindStringSubmatch(line); m != nil {
			question = strings.TrimSpace(m[1])
			if !strings.HasSuffix(question, "?") {
				question += "?"
			}
			continue
		}
		if m := answerPattern.FindStringSubmatch(line); m != nil && question != "" {
			entries = append(entries, FAQEntry{Question: question, Answer: strings.TrimSpace(m[1])})
			question = ""
		}
	}
	return entries
}

func parseBullets(body string) []string {
	var items []string
	for _, line := range strings.Split(body, "\n") {
		if m := bulletPattern.FindStringSubmatch(line); m != nil {
			items = append(items, strings.TrimSpace(m[1]))
		}
	}
	return items
}

func parseLinks(body string) []string {
	seen := make(map[string]bool)
	var links []string
	for _, raw := range urlPattern.FindAllString(body, -1) {
		url := strings.TrimRight(raw, ".,;:")
		if !seen[url] {
			seen[url] = true
			links = append(links, url)
		}
	}
	return links
}

func parseAuthor(body string) (Author, bool) {
	for _, line := range strings.Split(body, "\n") {
		if m := bylinePattern.FindStringSubmatch(strings.TrimSpace(line)); m != nil {
			return Author{Name: strings.TrimSpace(m[1]), Bio: strings.TrimSpace(m[2])}, true
		}
	}
	return Author{}, false
}

func parseTrailingAuthor(lines []string) (Author, bool) {
	for i, line := range lines {
		if !authorMarker.MatchString(strings.TrimSpace(line)) {
			continue
		}
		for j := i + 1; j < len(lines); j++ {
			if m := bylinePattern.FindStringSubmatch(strings.TrimSpace(lines[j])); m != nil {
				return Author{Name: strings.TrimSpace(m[1]), Bio: strings.TrimSpace(m[2])}, true
			}
		}
	}
	return Author{}, false
}

func missingSections(doc *Document) []SectionKind {
	present := map[SectionKind]bool{
		SectionTitle:           doc.Title != "",
		SectionMetaDescription: doc.MetaDescription != "",
		SectionFAQ:             len(doc.FAQ) > 0,
		SectionKeyTakeaways:    len(doc.KeyTakeaways) > 0,
		SectionSources:         len(doc.SourceLinks) > 0,
		SectionAuthor:          doc.Author.Name != "",
	}
	for _, s := range doc.Sections {
		switch s.Kind {
		case SectionIntroduction, SectionTableOfContents, SectionBody:
			present[s.Kind] = true
		}
	}

	var missing []SectionKind
	for _, kind := range RequiredSections {
		if !present[kind] {
			missing = append(missing, kind)
		}
	}
	return missing
}
