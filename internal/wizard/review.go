package wizard

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/pgident/pgident/internal/analyze"
	"github.com/pgident/pgident/internal/suggest"
)

// Item pairs a violation with its rename candidates.
type Item struct {
	Violation  analyze.Violation
	Candidates []suggest.Candidate
}

// Decision records what the user chose for one violation. An empty
// NewName means the violation was skipped.
type Decision struct {
	Item    Item
	NewName string
}

// ReviewModel is the bubbletea model for the interactive rename review.
// It walks the violations one at a time; for each, the user picks a
// suggested name, types a custom one, or skips.
type ReviewModel struct {
	items     []Item
	hardLimit int

	index     int // current item
	cursor    int // highlighted candidate
	editing   bool
	input     textinput.Model
	statusMsg string

	decisions []Decision
	done      bool
	cancelled bool
	width     int
	height    int
}

// NewReviewModel creates a review model over the given items.
func NewReviewModel(items []Item, hardLimit int) ReviewModel {
	ti := textinput.New()
	ti.Placeholder = "new_identifier"
	ti.CharLimit = 128

	if hardLimit <= 0 {
		hardLimit = analyze.DefaultHardLimit
	}

	return ReviewModel{
		items:     items,
		hardLimit: hardLimit,
		input:     ti,
		width:     100,
		height:    24,
	}
}

func (m ReviewModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m ReviewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		if m.editing {
			return m.updateEditing(msg)
		}
		return m.updateBrowsing(msg)
	}

	return m, nil
}

func (m ReviewModel) updateBrowsing(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q", "esc":
		m.done = true
		m.cancelled = true
		return m, tea.Quit

	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
		return m, nil

	case "down", "j":
		if m.cursor < len(m.current().Candidates)-1 {
			m.cursor++
		}
		return m, nil

	case "enter":
		cands := m.current().Candidates
		if len(cands) == 0 {
			m.statusMsg = "No suggestions; press e to type a name or s to skip"
			return m, nil
		}
		return m.accept(cands[m.cursor].Value)

	case "e":
		m.editing = true
		m.statusMsg = ""
		m.input.SetValue("")
		if cands := m.current().Candidates; len(cands) > 0 {
			m.input.SetValue(cands[m.cursor].Value)
		}
		m.input.CursorEnd()
		return m, m.input.Focus()

	case "s":
		m.decisions = append(m.decisions, Decision{Item: m.current()})
		return m.advance()
	}

	return m, nil
}

func (m ReviewModel) updateEditing(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.editing = false
		m.input.Blur()
		m.statusMsg = ""
		return m, nil

	case "enter":
		name := strings.TrimSpace(m.input.Value())
		if err := m.checkName(name); err != nil {
			m.statusMsg = err.Error()
			return m, nil
		}
		m.editing = false
		m.input.Blur()
		return m.accept(name)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m ReviewModel) checkName(name string) error {
	if name == "" {
		return fmt.Errorf("name cannot be empty")
	}
	if name == m.current().Violation.Identifier {
		return fmt.Errorf("name is unchanged")
	}
	if len(name) > m.hardLimit {
		return fmt.Errorf("name is %d characters, limit is %d", len(name), m.hardLimit)
	}
	return nil
}

func (m ReviewModel) accept(name string) (tea.Model, tea.Cmd) {
	m.decisions = append(m.decisions, Decision{Item: m.current(), NewName: name})
	return m.advance()
}

func (m ReviewModel) advance() (tea.Model, tea.Cmd) {
	m.index++
	m.cursor = 0
	m.statusMsg = ""
	if m.index >= len(m.items) {
		m.done = true
		return m, tea.Quit
	}
	return m, nil
}

func (m ReviewModel) current() Item {
	return m.items[m.index]
}

func (m ReviewModel) View() string {
	if m.index >= len(m.items) {
		return ""
	}

	var b strings.Builder

	b.WriteString(titleStyle.Render(fmt.Sprintf("Rename Review (%d of %d)", m.index+1, len(m.items))))
	b.WriteString("\n\n")

	it := m.current()
	v := it.Violation

	b.WriteString(fmt.Sprintf("  Field:      %s\n", v.FieldPath))
	b.WriteString(fmt.Sprintf("  Identifier: %s\n", v.Identifier))
	b.WriteString(fmt.Sprintf("  Length:     %d (%s, limit %d)\n\n", v.Length, v.Severity, m.hardLimit))

	if len(it.Candidates) == 0 {
		b.WriteString(dimStyle.Render("  No suggestions for this identifier."))
		b.WriteString("\n")
	} else {
		b.WriteString(highlightStyle.Render("  Suggested names"))
		b.WriteString("\n\n")
		for i, c := range it.Candidates {
			cursor := "  "
			if i == m.cursor && !m.editing {
				cursor = highlightStyle.Render("> ")
			}
			b.WriteString(fmt.Sprintf("  %s%s %s\n", cursor, c.Value,
				dimStyle.Render(fmt.Sprintf("(%d chars, score %.2f)", len(c.Value), c.Quality))))
		}
	}

	b.WriteString("\n")
	if m.editing {
		b.WriteString("  New name: " + m.input.View() + "\n")
	}
	if m.statusMsg != "" {
		b.WriteString(errStyle.Render("  "+m.statusMsg) + "\n")
	}

	b.WriteString("\n")
	if m.editing {
		b.WriteString(dimStyle.Render("  enter: confirm  esc: back"))
	} else {
		b.WriteString(dimStyle.Render("  enter: accept  e: edit  s: skip  q: quit"))
	}

	return b.String()
}

// Done returns true when the model is finished.
func (m ReviewModel) Done() bool {
	return m.done
}

// Cancelled returns true if the user quit before the last item.
func (m ReviewModel) Cancelled() bool {
	return m.cancelled
}

// Decisions returns the accumulated decisions, skips included.
func (m ReviewModel) Decisions() []Decision {
	return m.decisions
}

var (
	titleStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("99")).BorderStyle(lipgloss.DoubleBorder()).BorderBottom(true).Padding(0, 1)
	highlightStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))
	dimStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	errStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
)
