package rules

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"ledger/internal/compliance/models"
	id "ledger/pkg/domain"
)

//go:embed default_rules.yaml
var defaultCatalog []byte

// CatalogEntry is one rule as written in a catalog file.
type CatalogEntry struct {
	Name         string `yaml:"name"`
	Description  string `yaml:"description"`
	Type         string `yaml:"type"`
	Severity     string `yaml:"severity"`
	Jurisdiction string `yaml:"jurisdiction"`
	Active       *bool  `yaml:"active"`
}

type catalogFile struct {
	Rules []CatalogEntry `yaml:"rules"`
}

// Rule builds a fresh rule from the entry. Entries are active unless they
// say otherwise.
func (e CatalogEntry) Rule(now time.Time) (*models.Rule, error) {
	active := true
	if e.Active != nil {
		active = *e.Active
	}
	r, err := models.NewRule(id.NewRuleID(), strings.TrimSpace(e.Name), strings.TrimSpace(e.Description),
		models.RuleType(e.Type), models.Severity(e.Severity), strings.TrimSpace(e.Jurisdiction), active, now)
	if err != nil {
		return nil, fmt.Errorf("rules: entry %q: %w", e.Name, err)
	}
	return r, nil
}

// ParseCatalog decodes and validates a YAML catalog. Rule names must be
// unique.
func ParseCatalog(data []byte) ([]CatalogEntry, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, fmt.Errorf("rules: catalog is empty")
	}
	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("rules: decode catalog: %w", err)
	}
	if len(file.Rules) == 0 {
		return nil, fmt.Errorf("rules: catalog defines no rules")
	}
	seen := make(map[string]bool, len(file.Rules))
	for _, e := range file.Rules {
		if _, err := e.Rule(time.Time{}); err != nil {
			return nil, err
		}
		name := strings.TrimSpace(e.Name)
		if seen[name] {
			return nil, fmt.Errorf("rules: duplicate rule %q", name)
		}
		seen[name] = true
	}
	return file.Rules, nil
}

// LoadCatalog reads the catalog at path, or the built-in NDPR catalog when
// path is empty.
func LoadCatalog(path string) ([]CatalogEntry, error) {
	if strings.TrimSpace(path) == "" {
		return ParseCatalog(defaultCatalog)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("rules: read %s: %w", path, err)
	}
	entries, err := ParseCatalog(data)
	if err != nil {
		return nil, fmt.Errorf("rules: %s: %w", path, err)
	}
	return entries, nil
}
