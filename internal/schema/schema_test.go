package schema

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestWriteAndLoadYAML(t *testing.T) {
	p := &Project{
		Name: "site",
		Collections: []Config{
			{
				Slug: "pages",
				Fields: []Node{
					{Name: "title", Kind: KindScalar},
					{Name: "layout", Kind: KindBlocks, Blocks: []Block{
						{Slug: "hero", Fields: []Node{
							{Name: "heading", Kind: KindScalar},
							{Name: "alignment", Kind: KindScalar, Enum: true, Options: []string{"left", "center"}},
						}},
					}},
				},
			},
		},
		Globals: []Config{
			{Slug: "header", Global: true, Fields: []Node{
				{Name: "navItems", Kind: KindArray, Fields: []Node{
					{Name: "label", Kind: KindScalar},
				}},
			}},
		},
	}

	dir := t.TempDir()
	path := filepath.Join(dir, "schema.yaml")

	if err := p.WriteYAML(path); err != nil {
		t.Fatalf("WriteYAML: %v", err)
	}

	if _, err := os.Stat(path); err != nil {
		t.Fatalf("schema file not created: %v", err)
	}

	loaded, err := LoadYAML(path)
	if err != nil {
		t.Fatalf("LoadYAML: %v", err)
	}

	if len(loaded.Collections) != 1 {
		t.Fatalf("expected 1 collection, got %d", len(loaded.Collections))
	}
	pages := loaded.Collections[0]
	if pages.Slug != "pages" {
		t.Errorf("slug = %q, want pages", pages.Slug)
	}
	if len(pages.Fields) != 2 {
		t.Fatalf("pages fields = %d, want 2", len(pages.Fields))
	}
	if pages.Fields[1].Kind != KindBlocks {
		t.Errorf("second field kind = %q, want blocks", pages.Fields[1].Kind)
	}
	if len(pages.Fields[1].Blocks) != 1 || pages.Fields[1].Blocks[0].Slug != "hero" {
		t.Fatalf("hero variant not preserved: %+v", pages.Fields[1].Blocks)
	}
	if !pages.Fields[1].Blocks[0].Fields[1].Enum {
		t.Error("enum flag lost on round trip")
	}
	if len(loaded.Globals) != 1 || !loaded.Globals[0].Global {
		t.Errorf("globals not preserved: %+v", loaded.Globals)
	}
}

func TestLoadYAML_NotFound(t *testing.T) {
	_, err := LoadYAML("/nonexistent/path/schema.yaml")
	if err == nil {
		t.Error("expected error for nonexistent file")
	}
}

func TestValidate(t *testing.T) {
	p := &Project{
		Collections: []Config{
			{Slug: "pages", Fields: []Node{
				{Name: "title", Kind: KindScalar},
				{Name: "bad", Kind: Kind("widget")},
				{Name: "empty", Kind: KindBlocks},
			}},
			{Slug: "pages"},
		},
	}
	errs := p.Validate()
	if len(errs) != 3 {
		t.Fatalf("errors = %d, want 3: %v", len(errs), errs)
	}
	joined := ""
	for _, e := range errs {
		joined += e.Error() + "\n"
	}
	for _, want := range []string{"unknown kind", "no variants", "duplicate config slug"} {
		if !strings.Contains(joined, want) {
			t.Errorf("missing %q in validation errors:\n%s", want, joined)
		}
	}
}

func TestValidate_NamelessNodesAllowed(t *testing.T) {
	p := &Project{
		Collections: []Config{
			{Slug: "pages", Fields: []Node{
				{Kind: KindRow, Fields: []Node{{Name: "title", Kind: KindScalar}}},
			}},
		},
	}
	if errs := p.Validate(); len(errs) != 0 {
		t.Errorf("unexpected errors: %v", errs)
	}
}

func TestSummary(t *testing.T) {
	p := &Project{
		Collections: []Config{
			{Slug: "pages", Fields: []Node{
				{Name: "title", Kind: KindScalar},
				{Name: "meta", Kind: KindGroup, Fields: []Node{{Name: "description", Kind: KindScalar}}},
			}},
		},
	}
	summary := p.Summary()
	if summary == "" {
		t.Error("summary should not be empty")
	}
	if !strings.Contains(summary, "3 fields") {
		t.Errorf("summary = %q, want 3 fields", summary)
	}
}
