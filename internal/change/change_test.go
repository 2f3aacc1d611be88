package change

import (
	"path/filepath"
	"testing"
)

func TestPriorityOrdering(t *testing.T) {
	order := []ObjectType{ObjectEnum, ObjectTable, ObjectColumn, ObjectConstraint, ObjectIndex}
	for i := 1; i < len(order); i++ {
		if order[i-1].Priority() >= order[i].Priority() {
			t.Errorf("%s priority %d not below %s priority %d",
				order[i-1], order[i-1].Priority(), order[i], order[i].Priority())
		}
	}
	if ObjectType("view").Valid() {
		t.Error("unknown type reported valid")
	}
}

func TestScope(t *testing.T) {
	a := Change{ObjectType: ObjectColumn, OwnerTable: "pages", OldName: "x", NewName: "y"}
	b := Change{ObjectType: ObjectColumn, OwnerTable: "posts", OldName: "x", NewName: "y"}
	if a.Scope() == b.Scope() {
		t.Error("different owner tables share a scope")
	}
	c := Change{ObjectType: ObjectColumn, OwnerTable: "pages", Schema: "public"}
	if a.Scope() != c.Scope() {
		t.Errorf("default schema scope %q != explicit public scope %q", a.Scope(), c.Scope())
	}
}

func TestSaveAndLoad(t *testing.T) {
	set := NewSet([]Change{
		{ObjectType: ObjectEnum, OldName: "enum_pages_blocks_hero_code_snippet_language", NewName: "enum_hero_code_lang"},
		{ObjectType: ObjectColumn, OwnerTable: "pages", OldName: "old_col", NewName: "new_col"},
	})

	path := filepath.Join(t.TempDir(), "changes.yaml")
	if err := set.Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(loaded.Changes) != 2 {
		t.Fatalf("changes = %d, want 2", len(loaded.Changes))
	}
	if loaded.Changes[0].ObjectType != ObjectEnum {
		t.Errorf("first change type = %q", loaded.Changes[0].ObjectType)
	}
	if loaded.Changes[1].OwnerTable != "pages" {
		t.Errorf("owner table = %q", loaded.Changes[1].OwnerTable)
	}
	if loaded.GeneratedAt.IsZero() {
		t.Error("generated_at lost on round trip")
	}
}

func TestDerivedTableRename(t *testing.T) {
	c := Change{
		ObjectType: ObjectTable,
		OldName:    "pages_blocks_testimonial_carousel_slides",
		NewName:    "pages_blocks_testim_slides",
		Schema:     "public",
	}

	derived := Derived(c)
	if len(derived) != 3 {
		t.Fatalf("expected pkey, fk, and index renames, got %d", len(derived))
	}

	pk := derived[0]
	if pk.ObjectType != ObjectConstraint {
		t.Errorf("first derived type = %s", pk.ObjectType)
	}
	if pk.OldName != "pages_blocks_testimonial_carousel_slides_pkey" {
		t.Errorf("pkey old = %s", pk.OldName)
	}
	if pk.NewName != "pages_blocks_testim_slides_pkey" {
		t.Errorf("pkey new = %s", pk.NewName)
	}
	if pk.OwnerTable != c.NewName {
		t.Errorf("owner = %s, want the renamed table", pk.OwnerTable)
	}

	fk := derived[1]
	if fk.OldName != "pages_blocks_testimonial_carousel_slides_parent_id_fk" {
		t.Errorf("fk old = %s", fk.OldName)
	}

	idx := derived[2]
	if idx.ObjectType != ObjectIndex {
		t.Errorf("third derived type = %s", idx.ObjectType)
	}
	if idx.NewName != "pages_blocks_testim_slides_parent_id_idx" {
		t.Errorf("index new = %s", idx.NewName)
	}
}

func TestDerivedNonTable(t *testing.T) {
	c := Change{ObjectType: ObjectColumn, OwnerTable: "pages", OldName: "a", NewName: "b"}
	if d := Derived(c); d != nil {
		t.Errorf("column rename derived %d changes", len(d))
	}
}

func TestResolveOwners(t *testing.T) {
	changes := []Change{
		{ObjectType: ObjectTable, OldName: "pages_old", NewName: "pages_new"},
		{ObjectType: ObjectColumn, OwnerTable: "pages_old", OldName: "c", NewName: "d"},
		{ObjectType: ObjectConstraint, OwnerTable: "pages_old", OldName: "k", NewName: "l"},
		{ObjectType: ObjectColumn, OwnerTable: "posts", OldName: "e", NewName: "f"},
	}

	resolved := ResolveOwners(changes)
	if resolved[1].OwnerTable != "pages_new" {
		t.Errorf("column owner = %s, want pages_new", resolved[1].OwnerTable)
	}
	if resolved[2].OwnerTable != "pages_new" {
		t.Errorf("constraint owner = %s, want pages_new", resolved[2].OwnerTable)
	}
	if resolved[3].OwnerTable != "posts" {
		t.Errorf("unrelated owner = %s, want posts", resolved[3].OwnerTable)
	}
	if changes[1].OwnerTable != "pages_old" {
		t.Errorf("input mutated: owner = %s", changes[1].OwnerTable)
	}
}

func TestResolveOwnersSchemaScoped(t *testing.T) {
	changes := []Change{
		{ObjectType: ObjectTable, OldName: "pages", NewName: "pages_v2", Schema: "cms"},
		{ObjectType: ObjectColumn, OwnerTable: "pages", OldName: "c", NewName: "d"},
	}
	resolved := ResolveOwners(changes)
	if resolved[1].OwnerTable != "pages" {
		t.Errorf("column in public followed a cms table rename: owner = %s", resolved[1].OwnerTable)
	}
}

func TestLoad_VersionMismatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "changes.yaml")
	set := NewSet(nil)
	set.Version = 99
	if err := set.Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Error("expected version mismatch error")
	}
}
