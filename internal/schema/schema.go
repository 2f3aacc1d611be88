package schema

import "fmt"

// Kind identifies the variant of a schema node. The set is closed; anything
// else fails validation.
type Kind string

const (
	KindScalar      Kind = "scalar"
	KindGroup       Kind = "group"
	KindArray       Kind = "array"
	KindBlocks      Kind = "blocks"
	KindTabs        Kind = "tabs"
	KindRow         Kind = "row"
	KindCollapsible Kind = "collapsible"
)

// Valid reports whether k is one of the known node kinds.
func (k Kind) Valid() bool {
	switch k {
	case KindScalar, KindGroup, KindArray, KindBlocks, KindTabs, KindRow, KindCollapsible:
		return true
	}
	return false
}

// Node is a single field in the declarative schema tree. Exactly one parent
// owns each node; traversal order is declaration order.
type Node struct {
	Name    string   `yaml:"name,omitempty"`
	Kind    Kind     `yaml:"kind"`
	DBName  string   `yaml:"db_name,omitempty"` // explicit short-name override
	Enum    bool     `yaml:"enum,omitempty"`    // scalar backed by a database enum type
	Options []string `yaml:"options,omitempty"` // enum values, informational
	Fields  []Node   `yaml:"fields,omitempty"`
	Blocks  []Block  `yaml:"blocks,omitempty"` // variants, only for KindBlocks
}

// Segment returns the name the node contributes to identifier estimation:
// the explicit DBName override when present, the logical name otherwise.
func (n *Node) Segment() string {
	if n.DBName != "" {
		return n.DBName
	}
	return n.Name
}

// Block is one variant of a blocks (tagged-union) field. Each variant owns an
// independent field tree backed by its own table.
type Block struct {
	Slug   string `yaml:"slug"`
	DBName string `yaml:"db_name,omitempty"`
	Fields []Node `yaml:"fields,omitempty"`
}

// Config is a top-level collection or global definition.
type Config struct {
	Slug   string `yaml:"slug"`
	DBName string `yaml:"db_name,omitempty"`
	Global bool   `yaml:"global,omitempty"`
	Fields []Node `yaml:"fields,omitempty"`
}

// Project is the full schema description supplied by the configuration
// loader. The analyzer treats it as read-only.
type Project struct {
	Name        string   `yaml:"name,omitempty"`
	Collections []Config `yaml:"collections,omitempty"`
	Globals     []Config `yaml:"globals,omitempty"`
}

// Configs returns collections followed by globals, in declaration order.
func (p *Project) Configs() []Config {
	out := make([]Config, 0, len(p.Collections)+len(p.Globals))
	out = append(out, p.Collections...)
	out = append(out, p.Globals...)
	return out
}

// Validate checks structural rules the loader should reject outright:
// unknown node kinds, blocks without variants, and duplicate config slugs.
// Nameless nodes are legal (the analyzer skips them).
func (p *Project) Validate() []error {
	var errs []error
	seen := make(map[string]bool)
	for _, cfg := range p.Configs() {
		if cfg.Slug == "" {
			errs = append(errs, fmt.Errorf("config with empty slug"))
			continue
		}
		if seen[cfg.Slug] {
			errs = append(errs, fmt.Errorf("duplicate config slug %q", cfg.Slug))
		}
		seen[cfg.Slug] = true
		errs = append(errs, validateFields(cfg.Slug, cfg.Fields)...)
	}
	return errs
}

func validateFields(path string, fields []Node) []error {
	var errs []error
	for _, f := range fields {
		fp := path
		if f.Name != "" {
			fp = path + "." + f.Name
		}
		if !f.Kind.Valid() {
			errs = append(errs, fmt.Errorf("%s: unknown kind %q", fp, f.Kind))
			continue
		}
		if f.Kind == KindBlocks && len(f.Blocks) == 0 {
			errs = append(errs, fmt.Errorf("%s: blocks field has no variants", fp))
		}
		if f.Kind != KindBlocks && len(f.Blocks) > 0 {
			errs = append(errs, fmt.Errorf("%s: variants on a non-blocks field", fp))
		}
		errs = append(errs, validateFields(fp, f.Fields)...)
		for _, b := range f.Blocks {
			if b.Slug == "" {
				errs = append(errs, fmt.Errorf("%s: block variant with empty slug", fp))
				continue
			}
			errs = append(errs, validateFields(fp+"."+b.Slug, b.Fields)...)
		}
	}
	return errs
}
