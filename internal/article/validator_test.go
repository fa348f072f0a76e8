package article

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fullArticle = `# Marketing Automation: The Complete Guide

**Meta description:** Everything about marketing automation in one place, from core concepts and tool comparisons to pricing, adoption advice and common pitfalls.

## Introduction

Marketing automation is moving fast.
This guide maps the landscape and gives concrete advice.

## Table of Contents

- What Is Marketing Automation
- Options Compared
- FAQ
- Key Takeaways
- Sources

## What Is Marketing Automation

A set of tools that automate repetitive campaign work. See the vendor docs at https://docs.example.com/intro for details.

## Options Compared

1. Option A
2. Option B

## FAQ

**Q: What is marketing automation?**
A: Software that runs repetitive campaign tasks without manual effort.

**Q: How much does it cost**
A: Entry plans start around $10 per month.

## Key Takeaways

- Start small and measure
- Entry pricing is affordable
- Revisit tooling twice a year

## Sources

1. [Benchmark Report](https://benchmarks.example.com/report) — market data
2. [Survey](https://research.example.org/survey) — practitioner data
3. [Pricing Index](https://pricing.example.net/index).

---

**About the Author**

**Jane Smith** — Senior marketing analyst

Jane has covered the automation market for a decade.
`

func TestValidateFullArticle(t *testing.T) {
	doc, err := Validate(fullArticle)
	require.NoError(t, err)

	assert.Equal(t, "Marketing Automation: The Complete Guide", doc.Title)
	assert.Contains(t, doc.MetaDescription, "Everything about marketing automation")
	assert.Empty(t, doc.MissingSections)

	require.Len(t, doc.FAQ, 2)
	assert.Equal(t, "What is marketing automation?", doc.FAQ[0].Question)
	assert.Equal(t, "Software that runs repetitive campaign tasks without manual effort.", doc.FAQ[0].Answer)
	// Missing question marks are repaired during parsing.
	assert.Equal(t, "How much does it cost?", doc.FAQ[1].Question)

	assert.Len(t, doc.KeyTakeaways, 3)

	assert.Equal(t, "Jane Smith", doc.Author.Name)
	assert.Equal(t, "Senior marketing analyst", doc.Author.Bio)

	assert.True(t, doc.WordCount > 100)
}

func TestValidateSourceLinksOnlyFromSourcesSection(t *testing.T) {
	doc, err := Validate(fullArticle)
	require.NoError(t, err)

	// The body cites https://docs.example.com/intro; that link must not
	// count as a source reference.
	require.Len(t, doc.SourceLinks, 3)
	for _, link := range doc.SourceLinks {
		assert.NotContains(t, link, "docs.example.com")
	}
	// Trailing punctuation is stripped.
	assert.Contains(t, doc.SourceLinks, "https://pricing.example.net/index")
}

func TestValidateUnparsable(t *testing.T) {
	cases := map[string]string{
		"empty":            "",
		"whitespace only":  "   \n\t\n  ",
		"no headings":      "just a paragraph of text\nwith no structure at all",
		"h2 before any h1": "## Introduction\n\nSome text\n\n# Late Title",
		"bullet list only": "- one\n- two\n- three",
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Validate(raw)
			assert.ErrorIs(t, err, ErrUnparsable)
		})
	}
}

func TestValidateMissingSectionsReported(t *testing.T) {
	raw := "# Bare Title\n\nSome intro-less body text.\n"
	doc, err := Validate(raw)
	require.NoError(t, err)

	assert.True(t, doc.Missing(SectionMetaDescription))
	assert.True(t, doc.Missing(SectionIntroduction))
	assert.True(t, doc.Missing(SectionFAQ))
	assert.True(t, doc.Missing(SectionSources))
	assert.True(t, doc.Missing(SectionAuthor))
	assert.False(t, doc.Missing(SectionTitle))
}

func TestValidateSectionOrderIrrelevant(t *testing.T) {
	var b strings.Builder
	b.WriteString("# Reordered Guide\n\n")
	b.WriteString("## Sources\n\n1. [A](https://a.example.com/x)\n\n")
	b.WriteString("## Key Takeaways\n\n- point one\n\n")
	b.WriteString("## FAQ\n\n**Q: Why?**\nA: Because.\n\n")
	b.WriteString("## Table of Contents\n\n- Sources\n- FAQ\n\n")
	b.WriteString("## Introduction\n\nOut of order but complete.\n\n")
	b.WriteString("## Deep Dive\n\nBody content here.\n\n")
	b.WriteString("**Meta description:** A complete article whose sections appear in a scrambled order to prove detection does not depend on position in the document at all.\n\n")
	b.WriteString("**About the Author**\n\n**Sam Lee** — Analyst\n")

	doc, err := Validate(b.String())
	require.NoError(t, err)
	assert.Empty(t, doc.MissingSections)
}

func TestValidateFrenchHeadings(t *testing.T) {
	raw := `# Guide Complet

**Meta description:** Un guide complet sur le sujet, avec des comparaisons détaillées, des conseils pratiques et des réponses aux questions les plus fréquentes du marché.

## Introduction

Texte d'introduction.

## Sommaire

- Section un

## Section Un

Contenu du corps.

## Questions Fréquentes

**Q: Pourquoi ?**
A: Parce que.

## Points Clés

- premier point

## Sources

1. [Source](https://exemple.fr/page)

## À propos de l'auteur

**Marie Dupont** — Analyste senior
`
	doc, err := Validate(raw)
	require.NoError(t, err)
	assert.Empty(t, doc.MissingSections)
	assert.Equal(t, "Marie Dupont", doc.Author.Name)
}

func TestBodySectionsExcludeTemplatedBlocks(t *testing.T) {
	doc, err := Validate(fullArticle)
	require.NoError(t, err)

	bodies := doc.BodySections()
	require.Len(t, bodies, 2)
	assert.Equal(t, "What Is Marketing Automation", bodies[0].Heading)
	assert.Equal(t, "Options Compared", bodies[1].Heading)
}
