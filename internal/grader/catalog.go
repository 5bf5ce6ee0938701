package grader

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed exercises.yml
var defaultCatalog []byte

var ErrUnknownExercise = errors.New("sqllab: unknown exercise")

// Seed is one sample table and the statements that build it.
type Seed struct {
	Table      string   `yaml:"table"`
	Statements []string `yaml:"statements"`
}

type Exercise struct {
	ID         string   `yaml:"id" json:"id"`
	Category   string   `yaml:"category" json:"category"`
	Difficulty string   `yaml:"difficulty" json:"difficulty"`
	Question   string   `yaml:"question" json:"question"`
	Expected   string   `yaml:"expected" json:"expected"`
	Hints      []string `yaml:"hints" json:"hints,omitempty"`
}

// Catalog mirrors exercises.yml.
type Catalog struct {
	Seeds     []Seed     `yaml:"seeds"`
	Exercises []Exercise `yaml:"exercises"`
}

// ParseCatalog decodes and validates a YAML catalog.
func ParseCatalog(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("grader: parse catalog: %w", err)
	}
	seen := make(map[string]bool, len(c.Exercises))
	for i, ex := range c.Exercises {
		if strings.TrimSpace(ex.ID) == "" {
			return nil, fmt.Errorf("grader: exercise #%d has no id", i+1)
		}
		if seen[ex.ID] {
			return nil, fmt.Errorf("grader: duplicate exercise id %q", ex.ID)
		}
		if strings.TrimSpace(ex.Expected) == "" {
			return nil, fmt.Errorf("grader: exercise %q has no expected query", ex.ID)
		}
		seen[ex.ID] = true
	}
	return &c, nil
}

// LoadCatalog reads a catalog file; an empty path selects the built-in one.
func LoadCatalog(path string) (*Catalog, error) {
	if path == "" {
		return DefaultCatalog()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("grader: read catalog: %w", err)
	}
	return ParseCatalog(data)
}

func DefaultCatalog() (*Catalog, error) {
	return ParseCatalog(defaultCatalog)
}

func (c *Catalog) Exercise(id string) (Exercise, error) {
	for _, ex := range c.Exercises {
		if ex.ID == id {
			return ex, nil
		}
	}
	return Exercise{}, fmt.Errorf("%w: %s", ErrUnknownExercise, id)
}

// Categories lists categories in first-seen order.
func (c *Catalog) Categories() []string {
	var out []string
	seen := map[string]bool{}
	for _, ex := range c.Exercises {
		if !seen[ex.Category] {
			seen[ex.Category] = true
			out = append(out, ex.Category)
		}
	}
	return out
}

// SeedTables lists the seeded table names in order.
func (c *Catalog) SeedTables() []string {
	out := make([]string, 0, len(c.Seeds))
	for _, s := range c.Seeds {
		out = append(out, s.Table)
	}
	return out
}
