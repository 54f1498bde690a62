package signal

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/rustyeddy/swingtrader/market"
)

// FileProvider reads candidates from a YAML (or JSON) file written by
// the screening pipeline. The file is re-read on every call so a fresh
// screen can land between runs without restarting anything.
type FileProvider struct {
	Path string
}

func NewFileProvider(path string) *FileProvider {
	return &FileProvider{Path: path}
}

// Candidates implements Provider.
func (p *FileProvider) Candidates(_ context.Context) ([]Candidate, error) {
	return LoadCandidates(p.Path)
}

type candidateFile struct {
	Candidates []Candidate `json:"candidates" yaml:"candidates"`
}

// LoadCandidates parses a candidate file. YAML is tried first, then
// JSON, matching how config files are handled elsewhere.
func LoadCandidates(path string) ([]Candidate, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read candidates: %w", err)
	}

	var f candidateFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		if jsonErr := json.Unmarshal(data, &f); jsonErr != nil {
			return nil, fmt.Errorf("parse candidates %s: %w", path, err)
		}
	}

	for i := range f.Candidates {
		c := &f.Candidates[i]
		if c.Ticker == "" {
			return nil, fmt.Errorf("candidate %d: ticker is required", i)
		}
		if !c.Category.Valid() {
			cat, err := market.ParseCategory(string(c.Category))
			if err != nil {
				return nil, fmt.Errorf("candidate %s: %w", c.Ticker, err)
			}
			c.Category = cat
		}
	}
	return f.Candidates, nil
}
