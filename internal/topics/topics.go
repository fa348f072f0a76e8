// Package topics loads the input topic list the pipeline runs over.
package topics

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

// Topic is one unit of work for the pipeline. Immutable once loaded.
type Topic struct {
	ID       string   `json:"id,omitempty" yaml:"id,omitempty"`
	Title    string   `json:"topic" yaml:"topic"`
	Keywords []string `json:"keywords,omitempty" yaml:"keywords,omitempty"`
	Language string   `json:"language,omitempty" yaml:"language,omitempty"`
	Tone     string   `json:"tone,omitempty" yaml:"tone,omitempty"`
}

// Load reads a topic list from a JSON or YAML file, validates it and
// fills in defaults: language "en", tone "expert", and a fresh UUID
// for topics that do not carry one.
func Load(path string) ([]Topic, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("topics: read %s: %w", path, err)
	}

	var list []Topic
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &list)
	default:
		err = json.Unmarshal(data, &list)
	}
	if err != nil {
		return nil, fmt.Errorf("topics: parse %s: %w", path, err)
	}

	if len(list) == 0 {
		return nil, fmt.Errorf("topics: %s contains no topics", path)
	}

	for i := range list {
		if strings.TrimSpace(list[i].Title) == "" {
			return nil, fmt.Errorf("topics: entry #%d is missing the topic field", i+1)
		}
		if list[i].ID == "" {
			list[i].ID = uuid.NewString()
		}
		if list[i].Language == "" {
			list[i].Language = "en"
		}
		if list[i].Tone == "" {
			list[i].Tone = "expert"
		}
	}
	return list, nil
}
