package article

// SectionKind identifies one of the required blocks of a well-formed
// generated article.
type SectionKind string

const (
	SectionTitle           SectionKind = "title"
	SectionMetaDescription SectionKind = "meta_description"
	SectionIntroduction    SectionKind = "introduction"
	SectionTableOfContents SectionKind = "table_of_contents"
	SectionBody            SectionKind = "body"
	SectionFAQ             SectionKind = "faq"
	SectionKeyTakeaways    SectionKind = "key_takeaways"
	SectionSources         SectionKind = "sources"
	SectionAuthor          SectionKind = "author"
)

// RequiredSections lists every kind a complete article must contain,
// in canonical order. Detection tolerates reordering except for the
// title, which must come first.
var RequiredSections = []SectionKind{
	SectionTitle,
	SectionMetaDescription,
	SectionIntroduction,
	SectionTableOfContents,
	SectionBody,
	SectionFAQ,
	SectionKeyTakeaways,
	SectionSources,
	SectionAuthor,
}

// Section is one recognized heading with its body text.
type Section struct {
	Kind    SectionKind
	Heading string
	Body    string
}

// FAQEntry is a question/answer pair from the FAQ section.
type FAQEntry struct {
	Question string
	Answer   string
}

// Author is the article byline block.
type Author struct {
	Name string
	Bio  string
}

// Document is the validated, typed form of a generated article.
// Instances are never mutated after Validate returns them.
type Document struct {
	Title           string
	MetaDescription string
	Sections        []Section
	FAQ             []FAQEntry
	KeyTakeaways    []string
	SourceLinks     []string
	Author          Author
	MissingSections []SectionKind
	WordCount       int
	Raw             string
}

// Missing reports whether the given required section was not detected.
func (d *Document) Missing(kind SectionKind) bool {
	for _, k := range d.MissingSections {
		if k == kind {
			return true
		}
	}
	return false
}

// BodySections returns the free-form content sections, excluding
// templated blocks like FAQ, takeaways, sources and author.
func (d *Document) BodySections() []Section {
	var out []Section
	for _, s := range d.Sections {
		if s.Kind == SectionBody {
			out = append(out, s)
		}
	}
	return out
}

// Introduction returns the introduction section body, or "".
func (d *Document) Introduction() string {
	for _, s := range d.Sections {
		if s.Kind == SectionIntroduction {
			return s.Body
		}
	}
	return ""
}
