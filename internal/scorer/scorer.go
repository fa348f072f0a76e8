// Package scorer computes the weighted multi-criterion quality score
// for a validated article. Five criteria worth 20 points each sum to a
// 0-100 total. The total is advisory: acceptance is decided by the
// duplication check, not by any score threshold.
package scorer

import (
	"fmt"
	"math"
	"net/url"
	"regexp"
	"strings"

	"geogate/internal/article"
)

const maxPerCriterion = 20

// Config carries the tunable thresholds used by the scorer.
type Config struct {
	MinSources    int // links below this cap the sources score
	MinWordCount  int // words below this cap the readability score
	MetaDescMin   int // soft lower bound on meta description length
	MetaDescMax   int // soft upper bound on meta description length
	MaxIntroLines int // soft upper bound on introduction length
}

// DefaultConfig returns the thresholds used in production runs.
func DefaultConfig() Config {
	return Config{
		MinSources:    3,
		MinWordCount:  300,
		MetaDescMin:   150,
		MetaDescMax:   160,
		MaxIntroLines: 5,
	}
}

// Report is the detailed scoring result for one document.
type Report struct {
	Structure       int      `json:"structure"`
	Readability     int      `json:"readability"`
	Sources         int      `json:"sources"`
	LLMFriendliness int      `json:"llm_friendliness"`
	Duplication     int      `json:"duplication"`
	Total           int      `json:"total"`
	Warnings        []string `json:"warnings,omitempty"`
}

// Scorer evaluates documents against a fixed Config.
type Scorer struct {
	cfg Config
}

// New creates a Scorer.
func New(cfg Config) *Scorer {
	return &Scorer{cfg: cfg}
}

// Score evaluates the document. nearestSimilarity is the maximum cosine
// similarity against the corpus, supplied by the deduplicator; it is
// the only input that depends on state outside the document.
func (s *Scorer) Score(doc *article.Document, nearestSimilarity float64) Report {
	var r Report

	r.Structure = s.scoreStructure(doc, &r)
	r.Readability = s.scoreReadability(doc, &r)
	r.Sources = s.scoreSources(doc, &r)
	r.LLMFriendliness = s.scoreLLMFriendliness(doc, &r)
	r.Duplication = scoreDuplication(nearestSimilarity)

	r.Total = r.Structure + r.Readability + r.Sources + r.LLMFriendliness + r.Duplication
	return r
}

func (s *Scorer) scoreStructure(doc *article.Document, r *Report) int {
	required := len(article.RequiredSections)
	present := required - len(doc.MissingSections)
	score := int(math.Round(float64(present) / float64(required) * maxPerCriterion))

	for _, kind := range doc.MissingSections {
		r.Warnings = append(r.Warnings, fmt.Sprintf("structure: missing section %q", kind))
	}

	// A document without a title or meta description cannot rank,
	// however complete the rest of it is.
	if doc.Missing(article.SectionTitle) || doc.Missing(article.SectionMetaDescription) {
		score = min(score, 10)
	}

	if doc.MetaDescription != "" {
		n := len(doc.MetaDescription)
		if n < s.cfg.MetaDescMin {
			r.Warnings = append(r.Warnings, fmt.Sprintf("meta description too short (%d chars, min %d)", n, s.cfg.MetaDescMin))
		} else if n > s.cfg.MetaDescMax+20 {
			r.Warnings = append(r.Warnings, fmt.Sprintf("meta description too long (%d chars, max ~%d)", n, s.cfg.MetaDescMax))
		}
	}

	if intro := doc.Introduction(); intro != "" {
		lines := 0
		for _, l := range strings.Split(intro, "\n") {
			if strings.TrimSpace(l) != "" {
				lines++
			}
		}
		if lines > s.cfg.MaxIntroLines {
			r.Warnings = append(r.Warnings, fmt.Sprintf("introduction too long (%d lines, max %d)", lines, s.cfg.MaxIntroLines))
		}
	}

	return clamp(score)
}

func (s *Scorer) scoreReadability(doc *article.Document, r *Report) int {
	flesch := fleschReadingEase(doc.Raw)

	var score int
	switch {
	case flesch >= 50:
		score = 20
	case flesch >= 30:
		score = 16
	case flesch >= 20:
		score = 12
		r.Warnings = append(r.Warnings, fmt.Sprintf("readability: content may be too complex (Flesch %.0f)", flesch))
	default:
		score = 8
		r.Warnings = append(r.Warnings, fmt.Sprintf("readability: content is very difficult to read (Flesch %.0f)", flesch))
	}

	if doc.WordCount < s.cfg.MinWordCount {
		r.Warnings = append(r.Warnings, fmt.Sprintf("readability: document too short (%d words, min %d)", doc.WordCount, s.cfg.MinWordCount))
		score = min(score, 10)
	}

	return clamp(score)
}

func (s *Scorer) scoreSources(doc *article.Document, r *Report) int {
	if len(doc.SourceLinks) == 0 {
		r.Warnings = append(r.Warnings, "sources: no source links found")
		return 0
	}

	domains := make(map[string]bool)
	for _, link := range doc.SourceLinks {
		if d := registrableDomain(link); d != "" {
			domains[d] = true
		}
	}

	score := min(maxPerCriterion, 4*len(domains))

	if len(doc.SourceLinks) < s.cfg.MinSources {
		r.Warnings = append(r.Warnings, fmt.Sprintf("sources: only %d links (minimum %d)", len(doc.SourceLinks), s.cfg.MinSources))
		score = min(score, 10)
	}
	if len(domains) < len(doc.SourceLinks)/2 {
		r.Warnings = append(r.Warnings, fmt.Sprintf("sources: low domain diversity (%d domains for %d links)", len(domains), len(doc.SourceLinks)))
	}

	return clamp(score)
}

var (
	listItemPattern = regexp.MustCompile(`(?m)^\s*(?:[-*]|\d+\.)\s+`)
	boldPattern     = regexp.MustCompile(`\*\*[^*]+\*\*`)
)

func (s *Scorer) scoreLLMFriendliness(doc *article.Document, r *Report) int {
	score := 0

	// FAQ coverage.
	switch {
	case len(doc.FAQ) >= 5:
		score += 6
	case len(doc.FAQ) >= 3:
		score += 4
		r.Warnings = append(r.Warnings, fmt.Sprintf("llm-friendliness: FAQ has only %d questions (5+ recommended)", len(doc.FAQ)))
	case len(doc.FAQ) >= 1:
		score += 2
		r.Warnings = append(r.Warnings, fmt.Sprintf("llm-friendliness: FAQ too short (%d questions)", len(doc.FAQ)))
	}

	// Direct answers: a short declarative first sentence after each
	// question is what answer engines lift verbatim.
	direct := 0
	for _, entry := range doc.FAQ {
		if first := firstSentence(entry.Answer); len(strings.Fields(first)) <= 30 {
			direct++
		}
	}
	score += min(direct, 6)

	// List density.
	lists := len(listItemPattern.FindAllString(doc.Raw, -1))
	switch {
	case lists >= 15:
		score += 5
	case lists >= 8:
		score += 4
	case lists >= 3:
		score += 2
	default:
		r.Warnings = append(r.Warnings, "llm-friendliness: low use of lists/enumerations")
	}

	// Highlighted terms.
	bold := len(boldPattern.FindAllString(doc.Raw, -1))
	switch {
	case bold >= 10:
		score += 3
	case bold >= 5:
		score += 2
	case bold >= 1:
		score += 1
	}

	return clamp(score)
}

func scoreDuplication(nearestSimilarity float64) int {
	score := int(math.Round(maxPerCriterion * (1 - nearestSimilarity)))
	return clamp(score)
}

func firstSentence(text string) string {
	for i, r := range text {
		if r == '.' || r == '!' || r == '?' {
			return text[:i]
		}
	}
	return text
}

// registrableDomain reduces a URL to its host with any leading "www."
// stripped, which is how link diversity is counted.
func registrableDomain(link string) string {
	u, err := url.Parse(link)
	if err != nil || u.Hostname() == "" {
		return ""
	}
	return strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
}

func clamp(score int) int {
	if score < 0 {
		return 0
	}
	if score > maxPerCriterion {
		return maxPerCriterion
	}
	return score
}
