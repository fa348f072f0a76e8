// Package export writes pipeline results to disk: accepted articles
// as Markdown, one JSON record per topic, and the run summary. It is a
// thin consumer of pipeline results with no decision logic.
package export

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"geogate/internal/pipeline"
	"geogate/internal/topics"
)

// Exporter writes run output under a root directory.
type Exporter struct {
	root string
}

// New creates the output directory layout.
func New(root string) (*Exporter, error) {
	for _, dir := range []string{root, filepath.Join(root, "articles"), filepath.Join(root, "results")} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("export: create %s: %w", dir, err)
		}
	}
	return &Exporter{root: root}, nil
}

type resultRecord struct {
	TopicID           string         `json:"topic_id"`
	Topic             string         `json:"topic"`
	Status            string         `json:"status"`
	Score             map[string]any `json:"score,omitempty"`
	NearestSimilarity float64        `json:"nearest_similarity"`
	Attempts          int            `json:"attempts,omitempty"`
	ElapsedMS         int64          `json:"elapsed_ms,omitempty"`
	Provider          string         `json:"provider,omitempty"`
	MissingSections   []string       `json:"missing_sections,omitempty"`
	Error             string         `json:"error,omitempty"`
}

// WriteResult persists one topic's terminal record. Accepted topics
// additionally get their article written as Markdown. File names carry
// the topic ID so two topics sharing a title in one run keep separate
// records.
func (e *Exporter) WriteResult(res pipeline.Result) error {
	name := resultName(res.Topic)

	rec := resultRecord{
		TopicID:           res.Topic.ID,
		Topic:             res.Topic.Title,
		Status:            string(res.Status),
		NearestSimilarity: res.NearestSimilarity,
	}
	if res.Candidate != nil {
		rec.Attempts = res.Candidate.AttemptCount
		rec.ElapsedMS = res.Candidate.Elapsed.Milliseconds()
		rec.Provider = res.Candidate.Provider
	}
	if res.Score != nil {
		rec.Score = map[string]any{
			"structure":        res.Score.Structure,
			"readability":      res.Score.Readability,
			"sources":          res.Score.Sources,
			"llm_friendliness": res.Score.LLMFriendliness,
			"duplication":      res.Score.Duplication,
			"total":            res.Score.Total,
			"warnings":         res.Score.Warnings,
		}
	}
	if res.Document != nil {
		for _, kind := range res.Document.MissingSections {
			rec.MissingSections = append(rec.MissingSections, string(kind))
		}
	}
	if res.Err != nil {
		rec.Error = res.Err.Error()
	}

	if err := writeJSON(filepath.Join(e.root, "results", name+".json"), rec); err != nil {
		return err
	}

	if res.Status == pipeline.StatusAccepted && res.Document != nil {
		path := filepath.Join(e.root, "articles", name+".md")
		if err := os.WriteFile(path, []byte(res.Document.Raw), 0o644); err != nil {
			return fmt.Errorf("export: write %s: %w", path, err)
		}
	}
	return nil
}

// WriteSummary persists the run summary and returns its path.
func (e *Exporter) WriteSummary(s pipeline.Summary) (string, error) {
	path := filepath.Join(e.root, "summary.json")
	return path, writeJSON(path, s)
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("export: marshal %s: %w", path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("export: write %s: %w", path, err)
	}
	return nil
}

var (
	nonSlug      = regexp.MustCompile(`[^a-z0-9\s-]`)
	slugSpaces   = regexp.MustCompile(`\s+`)
	slugCollapse = regexp.MustCompile(`-+`)
)

var accentReplacer = strings.NewReplacer(
	"é", "e", "è", "e", "ê", "e", "ë", "e",
	"à", "a", "â", "a", "ä", "a",
	"ù", "u", "û", "u", "ü", "u",
	"î", "i", "ï", "i",
	"ô", "o", "ö", "o",
	"ç", "c", "ñ", "n",
)

func resultName(t topics.Topic) string {
	slug := Slug(t.Title)
	if t.ID == "" {
		return slug
	}
	return slug + "-" + t.ID
}

// Slug derives a URL-friendly file name from a topic title.
func Slug(title string) string {
	s := strings.ToLower(strings.TrimSpace(title))
	s = accentReplacer.Replace(s)
	s = nonSlug.ReplaceAllString(s, "")
	s = slugSpaces.ReplaceAllString(s, "-")
	s = slugCollapse.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-")
	if len(s) > 80 {
		s = s[:80]
	}
	if s == "" {
		s = "untitled"
	}
	return s
}
