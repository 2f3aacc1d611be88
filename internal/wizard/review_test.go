package wizard

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/pgident/pgident/internal/analyze"
	"github.com/pgident/pgident/internal/change"
	"github.com/pgident/pgident/internal/suggest"
)

func testItems() []Item {
	return []Item{
		{
			Violation: analyze.Violation{
				FieldPath:  "pages.hero.background",
				Identifier: "pages_blocks_hero_background_configuration_settings_overflow_col",
				Length:     64,
				Severity:   analyze.SeverityError,
				ObjectType: analyze.ObjectColumn,
				OwnerTable: "pages_blocks_hero",
			},
			Candidates: []suggest.Candidate{
				{Value: "pages_blocks_hero_bg_config_settings", Quality: 0.6},
				{Value: "pages_blocks_hero_bg_settings", Quality: 0.5},
			},
		},
		{
			Violation: analyze.Violation{
				FieldPath:  "header.navItems",
				Identifier: "header_navigation_items_configuration_array_near_the_limit",
				Length:     58,
				Severity:   analyze.SeverityWarning,
				ObjectType: analyze.ObjectTable,
			},
		},
	}
}

func keyRunes(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

func TestBuildItems_ErrorsFirst(t *testing.T) {
	vs := []analyze.Violation{
		{FieldPath: "a", Severity: analyze.SeverityWarning},
		{FieldPath: "b", Severity: analyze.SeverityError},
	}
	items := BuildItems(vs, nil)
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}
	if items[0].Violation.FieldPath != "b" {
		t.Errorf("error should come first, got %s", items[0].Violation.FieldPath)
	}
}

func TestBuildItems_AttachesCandidates(t *testing.T) {
	vs := []analyze.Violation{{FieldPath: "x", Severity: analyze.SeverityError}}
	sugg := map[string][]suggest.Candidate{"x": {{Value: "x_short"}}}
	items := BuildItems(vs, sugg)
	if len(items[0].Candidates) != 1 || items[0].Candidates[0].Value != "x_short" {
		t.Errorf("candidates not attached: %+v", items[0].Candidates)
	}
}

func TestReviewAcceptSuggestion(t *testing.T) {
	m := NewReviewModel(testItems(), 63)

	// Pick the second candidate.
	result, _ := m.Update(keyRunes('j'))
	result, _ = result.Update(tea.KeyMsg{Type: tea.KeyEnter})
	rm := result.(ReviewModel)

	if len(rm.Decisions()) != 1 {
		t.Fatalf("expected 1 decision, got %d", len(rm.Decisions()))
	}
	if got := rm.Decisions()[0].NewName; got != "pages_blocks_hero_bg_settings" {
		t.Errorf("accepted %q", got)
	}
	if rm.Done() {
		t.Error("should not be done with one item left")
	}
}

func TestReviewSkip(t *testing.T) {
	m := NewReviewModel(testItems(), 63)

	result, _ := m.Update(keyRunes('s'))
	result, _ = result.Update(keyRunes('s'))
	rm := result.(ReviewModel)

	if !rm.Done() {
		t.Error("should be done after skipping both items")
	}
	if rm.Cancelled() {
		t.Error("skip is not cancel")
	}
	for _, d := range rm.Decisions() {
		if d.NewName != "" {
			t.Errorf("skipped decision has name %q", d.NewName)
		}
	}
}

func TestReviewQuitCancels(t *testing.T) {
	m := NewReviewModel(testItems(), 63)

	result, _ := m.Update(keyRunes('q'))
	rm := result.(ReviewModel)

	if !rm.Cancelled() {
		t.Error("q should cancel")
	}
}

func TestReviewEditRejectsLongName(t *testing.T) {
	m := NewReviewModel(testItems(), 10)

	result, _ := m.Update(keyRunes('e'))
	rm := result.(ReviewModel)
	if !rm.editing {
		t.Fatal("e should enter edit mode")
	}

	// The prefilled candidate is over the 10-char limit.
	result, _ = rm.Update(tea.KeyMsg{Type: tea.KeyEnter})
	rm = result.(ReviewModel)

	if !rm.editing {
		t.Error("invalid name should keep edit mode open")
	}
	if rm.statusMsg == "" {
		t.Error("expected a validation message")
	}
	if len(rm.Decisions()) != 0 {
		t.Error("no decision should be recorded")
	}
}

func TestReviewEditAcceptsCustomName(t *testing.T) {
	m := NewReviewModel(testItems(), 63)

	result, _ := m.Update(keyRunes('e'))
	rm := result.(ReviewModel)
	rm.input.SetValue("pages_hero_bg")

	result, _ = rm.Update(tea.KeyMsg{Type: tea.KeyEnter})
	rm = result.(ReviewModel)

	if len(rm.Decisions()) != 1 {
		t.Fatalf("expected 1 decision, got %d", len(rm.Decisions()))
	}
	if rm.Decisions()[0].NewName != "pages_hero_bg" {
		t.Errorf("got %q", rm.Decisions()[0].NewName)
	}
	if rm.editing {
		t.Error("edit mode should close on accept")
	}
}

func TestReviewViewShowsCurrentItem(t *testing.T) {
	m := NewReviewModel(testItems(), 63)
	out := m.View()

	if !strings.Contains(out, "pages.hero.background") {
		t.Errorf("view missing field path:\n%s", out)
	}
	if !strings.Contains(out, "1 of 2") {
		t.Errorf("view missing progress:\n%s", out)
	}
	if !strings.Contains(out, "pages_blocks_hero_bg_config_settings") {
		t.Errorf("view missing candidate:\n%s", out)
	}
}

func TestBuildChangeSet(t *testing.T) {
	items := testItems()
	decisions := []Decision{
		{Item: items[0], NewName: "pages_blocks_hero_bg"},
		{Item: items[1]}, // skipped
	}

	set := BuildChangeSet(decisions, 63, "public")
	if len(set.Changes) != 1 {
		t.Fatalf("expected 1 change, got %d", len(set.Changes))
	}

	c := set.Changes[0]
	if c.ObjectType != change.ObjectColumn {
		t.Errorf("object type = %s", c.ObjectType)
	}
	if c.OldName != items[0].Violation.Identifier {
		t.Errorf("old name = %s", c.OldName)
	}
	if c.NewName != "pages_blocks_hero_bg" {
		t.Errorf("new name = %s", c.NewName)
	}
	if c.OwnerTable != "pages_blocks_hero" {
		t.Errorf("owner = %s", c.OwnerTable)
	}
	if c.Schema != "public" {
		t.Errorf("schema = %s", c.Schema)
	}
}

func TestBuildChangeSetDisambiguatesCollisions(t *testing.T) {
	mkItem := func(path, id string) Item {
		return Item{Violation: analyze.Violation{
			FieldPath:  path,
			Identifier: id,
			Severity:   analyze.SeverityError,
			ObjectType: analyze.ObjectColumn,
			OwnerTable: "pages_stn",
		}}
	}
	decisions := []Decision{
		{Item: mkItem("pages.hero.overlay.primaryCta", "pages_stn_hero_banner_overlay_panel_primary_call_to_action_button_group"), NewName: "pages_stn_hero_bnr_overlay_panel_primary_cta_btn_grp"},
		{Item: mkItem("pages.hero.overlay.secondaryCta", "pages_stn_hero_banner_overlay_panel_secondary_call_to_action_button_group"), NewName: "pages_stn_hero_bnr_overlay_panel_primary_cta_btn_grp"},
	}

	set := BuildChangeSet(decisions, 63, "public")
	if len(set.Changes) != 2 {
		t.Fatalf("expected 2 changes, got %d", len(set.Changes))
	}
	first, second := set.Changes[0].NewName, set.Changes[1].NewName
	if first == second {
		t.Fatalf("colliding accepted names were not disambiguated: both %q", first)
	}
	if first != "pages_stn_hero_bnr_overlay_panel_primary_cta_btn_grp" {
		t.Errorf("first accepted name changed: %s", first)
	}
	if second != "pages_stn_hero_bnr_overlay_panel_primary_cta_btn_grp_2" {
		t.Errorf("second name = %s", second)
	}
}
