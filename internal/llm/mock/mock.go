// Package mock provides an offline llm.Provider used for tests and for
// running the pipeline without an API key. Completions render a fully
// structured article for the requested topic; embeddings are a
// deterministic bag-of-words projection, so identical text always maps
// to the identical vector.
package mock

import (
	"context"
	"fmt"
	"hash/fnv"
	"math"
	"regexp"
	"strings"

	"geogate/internal/llm"
)

// Dimensions is the width of the vectors produced by Embed.
const Dimensions = 128

var topicPattern = regexp.MustCompile(`about:\s*"([^"]+)"`)

// Provider is a deterministic, dependency-free llm.Provider.
type Provider struct {
	// Render overrides the article template when set. Receives the
	// topic extracted from the prompt.
	Render func(topic string) string
}

// New returns a mock provider with the default article template.
func New() *Provider { return &Provider{} }

func (p *Provider) Name() string { return "mock" }

func (p *Provider) Complete(ctx context.Context, prompt *llm.Prompt, _ *llm.RequestOptions) (*llm.Response, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	topic := "Untitled Topic"
	for _, m := range prompt.Messages {
		if match := topicPattern.FindStringSubmatch(m.Content); match != nil {
			topic = match[1]
			break
		}
	}

	text := ""
	if p.Render != nil {
		text = p.Render(topic)
	} else {
		text = renderArticle(topic)
	}

	return &llm.Response{
		Content:      text,
		Model:        "mock",
		OutputTokens: len(strings.Fields(text)),
		StopReason:   "end_turn",
	}, nil
}

// Embed hashes each word into one of Dimensions buckets and normalizes
// the resulting vector to unit length. Texts sharing most words land
// close together, which is all the dedup tests need.
func (p *Provider) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		vec := make([]float32, Dimensions)
		for _, word := range strings.Fields(strings.ToLower(text)) {
			h := fnv.New32a()
			h.Write([]byte(strings.Trim(word, ".,;:!?()[]*#")))
			vec[h.Sum32()%Dimensions]++
		}
		var norm float64
		for _, v := range vec {
			norm += float64(v) * float64(v)
		}
		if norm > 0 {
			scale := float32(1 / math.Sqrt(norm))
			for j := range vec {
				vec[j] *= scale
			}
		}
		vectors[i] = vec
	}
	return vectors, nil
}

func renderArticle(topic string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# %s: The Complete Guide\n\n", topic)
	fmt.Fprintf(&b, "**Meta description:** Everything you need to know about %s, from core concepts to practical adoption advice, with comparisons, pricing notes and answers to common questions.\n\n", topic)

	b.WriteString("## Introduction\n\n")
	fmt.Fprintf(&b, "%s is moving fast, and choosing an approach without a map wastes time and budget.\n", topic)
	b.WriteString("This guide breaks the landscape into clear categories, compares the leading options, and gives concrete adoption advice.\n\n")

	b.WriteString("## Table of Contents\n\n")
	fmt.Fprintf(&b, "- What Is %s\n- Leading Options Compared\n- Pricing and Value Analysis\n- How to Get Started\n- FAQ\n- Key Takeaways\n- Sources\n\n", topic)

	fmt.Fprintf(&b, "## What Is %s\n\n", topic)
	fmt.Fprintf(&b, "At its core, %s groups a set of tools and practices around one goal: better results with less manual effort.\n\n", topic)
	b.WriteString("- **Category one**: foundational tools most teams start with\n- **Category two**: specialized tools for advanced workflows\n- **Category three**: platforms bundling both\n\n")

	b.WriteString("## Leading Options Compared\n\n")
	b.WriteString("The market splits into three tiers. **Entry tier** options favor simplicity. **Professional tier** options add collaboration and integrations. **Enterprise tier** options add governance and support guarantees.\n\n")
	b.WriteString("1. Option A — best overall balance\n2. Option B — best for small teams\n3. Option C — best enterprise controls\n\n")

	b.WriteString("## Pricing and Value Analysis\n\n")
	b.WriteString("Typical pricing lands between $10 and $99 per seat per month. Annual billing usually saves 15-20%. Free tiers exist but cap usage aggressively.\n\n")
	b.WriteString("- Entry: $10-19/month\n- Professional: $29-59/month\n- Enterprise: custom, usually $99+/month\n\n")

	b.WriteString("## How to Get Started\n\n")
	b.WriteString("Start small. Pick one workflow, measure a baseline, introduce one tool, and compare results after two weeks. Expand only when the numbers justify it.\n\n")

	b.WriteString("## FAQ\n\n")
	fmt.Fprintf(&b, "**Q: What is %s?**\nA: A category of tools and practices focused on automating repetitive work while keeping humans in control of quality.\n\n", topic)
	b.WriteString("**Q: How much does it cost to start?**\nA: Most teams start under $50 per month on entry-tier plans.\n\n")
	b.WriteString("**Q: Is it suitable for small teams?**\nA: Yes. Entry-tier options are designed for teams of one to ten people.\n\n")
	b.WriteString("**Q: How long until results show?**\nA: Two to four weeks is a realistic window for the first measurable gains.\n\n")
	b.WriteString("**Q: What is the most common mistake?**\nA: Adopting several tools at once without a baseline to measure against.\n\n")

	b.WriteString("## Key Takeaways\n\n")
	fmt.Fprintf(&b, "- %s rewards an incremental adoption strategy\n", topic)
	b.WriteString("- Entry-tier pricing starts around $10 per month\n")
	b.WriteString("- Measure a baseline before introducing any tool\n")
	b.WriteString("- Professional tiers add collaboration features worth the upgrade\n")
	b.WriteString("- Revisit the tool landscape every six months\n\n")

	b.WriteString("## Sources\n\n")
	b.WriteString("1. [Industry Benchmark Report](https://benchmarks.example.com/annual-report) — yearly market overview\n")
	b.WriteString("2. [Adoption Survey](https://research.example.org/adoption-survey) — practitioner survey data\n")
	b.WriteString("3. [Pricing Index](https://pricing.example.net/index) — tracked pricing across vendors\n\n")

	b.WriteString("---\n\n")
	b.WriteString("**About the Author**\n\n")
	b.WriteString("**Alex Morgan** — Independent industry analyst\n\n")
	b.WriteString("Alex has covered tooling markets for eight years and publishes quarterly adoption studies.\n\n")
	b.WriteString("**Methodology:**\n- Vendor documentation review\n- Practitioner interviews\n- Hands-on trials of entry and professional tiers\n")

	return b.String()
}
