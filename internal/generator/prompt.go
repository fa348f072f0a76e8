package generator

import (
	"fmt"
	"strings"

	"geogate/internal/llm"
	"geogate/internal/topics"
)

const systemPromptTemplate = `You are an expert content writer specializing in articles optimized for generative AI search engines (ChatGPT, Gemini, Perplexity).

Your articles MUST be "LLM-friendly":
- Direct, structured answers (no fluff)
- Explicit entities (brands, concepts, categories)
- Short, scannable sections
- High information density
- Plausible citations/sources
%s
Write %s with a %s tone.`

const userPromptTemplate = `Generate a complete article about: "%s"

The article MUST follow this EXACT structure in Markdown:

# [Compelling H1 Title]

**Meta description:** [Exactly 150-160 characters, compelling summary]

## Introduction
[3-5 lines maximum. Hook the reader, state the problem, preview the solution.]

## Table of Contents
[List of all H2 sections below]

## [H2 Section 1 - Main Topic Area]
## [H2 Section 2 - Another Key Area]
## [H2 Section 3 - Comparison/Analysis]
## [H2 Section 4 - Practical Advice]

## FAQ
[At least 5 entries, each formatted as:]
**Q: [Question]?**
A: [Direct, concise answer]

## Key Takeaways
[5-8 bullet points]

## Sources
[At least 3 numbered markdown links with plausible URLs, or real sources if provided in context]

---

**About the Author**

**[Expert Name]** — [Professional title]

[2-3 lines professional bio]

IMPORTANT RULES:
1. Every section listed above is MANDATORY
2. Use AT LEAST 4 H2 sections in the body (not counting FAQ, Takeaways, Sources)
3. FAQ answers must open with a short, direct sentence
4. Meta description MUST be 150-160 characters
5. Content must be information-dense, no filler text
6. Use bullet points, numbered lists, and bold text for scannability%s`

// BuildPrompt renders the article-generation prompt for a topic.
// researchContext, when non-empty, is injected into the system prompt
// so the model can cite real sources.
func BuildPrompt(t topics.Topic, researchContext string) *llm.Prompt {
	langInstruction := "in English"
	if t.Language == "fr" {
		langInstruction = "en français"
	}

	contextBlock := ""
	if researchContext != "" {
		contextBlock = fmt.Sprintf("\nCONTEXT FROM WEB RESEARCH:\n%s\nUse this context for accuracy and cite real sources where appropriate.\n", researchContext)
	}

	keywordsRule := ""
	if len(t.Keywords) > 0 {
		keywordsRule = fmt.Sprintf("\n7. Naturally include these keywords: %s", strings.Join(t.Keywords, ", "))
	}

	return &llm.Prompt{
		SystemPrompt: fmt.Sprintf(systemPromptTemplate, contextBlock, langInstruction, t.Tone),
		Messages: []llm.Message{
			{Role: llm.RoleUser, Content: fmt.Sprintf(userPromptTemplate, t.Title, keywordsRule)},
		},
	}
}
