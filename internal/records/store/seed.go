package store

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/reviewdesk/reviewdesk/internal/records"
)

//go:embed seed/records.yaml
var defaultSeed []byte

type seedFile struct {
	Records []records.Record `yaml:"records"`
}

// DefaultSeed returns the bundled specimen fixture.
func DefaultSeed() ([]records.Record, error) {
	return ParseSeed(defaultSeed)
}

// LoadSeed reads a YAML fixture from path. An empty path yields DefaultSeed.
func LoadSeed(path string) ([]records.Record, error) {
	if path == "" {
		return DefaultSeed()
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("store: read seed: %w", err)
	}
	return ParseSeed(raw)
}

// ParseSeed decodes and checks a YAML fixture.
func ParseSeed(raw []byte) ([]records.Record, error) {
	var file seedFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("store: decode seed: %w", err)
	}
	seen := make(map[string]struct{}, len(file.Records))
	for i, rec := range file.Records {
		if rec.ID == "" {
			return nil, fmt.Errorf("store: seed record %d has no id", i)
		}
		if _, dup := seen[rec.ID]; dup {
			return nil, fmt.Errorf("store: duplicate seed id %q", rec.ID)
		}
		seen[rec.ID] = struct{}{}
		if rec.Status == "" {
			file.Records[i].Status = records.StatusPending
		} else if !rec.Status.Valid() {
			return nil, fmt.Errorf("store: seed record %q has unknown status %q", rec.ID, rec.Status)
		}
	}
	return file.Records, nil
}
