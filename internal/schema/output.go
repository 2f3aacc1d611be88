package schema

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// LoadYAML reads a project schema from a YAML file.
func LoadYAML(path string) (*Project, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading schema file: %w", err)
	}
	p := &Project{}
	if err := yaml.Unmarshal(data, p); err != nil {
		return nil, fmt.Errorf("parsing schema: %w", err)
	}
	return p, nil
}

// WriteYAML writes the project to a YAML file at the given path.
func (p *Project) WriteYAML(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	data, err := yaml.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshaling schema: %w", err)
	}

	return os.WriteFile(path, data, 0o644)
}

// ToYAML returns the project as a YAML byte slice.
func (p *Project) ToYAML() ([]byte, error) {
	return yaml.Marshal(p)
}

// Summary returns a human-readable summary of the project.
func (p *Project) Summary() string {
	fields := 0
	depth := 0
	for _, cfg := range p.Configs() {
		f, d := countFields(cfg.Fields, 1)
		fields += f
		if d > depth {
			depth = d
		}
	}
	return fmt.Sprintf("Found %d collections, %d globals, %d fields (max nesting depth %d)",
		len(p.Collections), len(p.Globals), fields, depth)
}

func countFields(fields []Node, level int) (int, int) {
	count := 0
	depth := level
	for _, f := range fields {
		if f.Name != "" {
			count++
		}
		c, d := countFields(f.Fields, level+1)
		count += c
		if d > depth {
			depth = d
		}
		for _, b := range f.Blocks {
			c, d := countFields(b.Fields, level+1)
			count += c
			if d > depth {
				depth = d
			}
		}
	}
	return count, depth
}
