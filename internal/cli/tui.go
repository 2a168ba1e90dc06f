package cli

import (
	"fmt"
	"slices"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/streettype/pkg/letters"
	"github.com/matzehuels/streettype/pkg/pipeline"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// =============================================================================
// ComposeModel - Interactive text composer
// =============================================================================

type composeField int

const (
	fieldText composeField = iota
	fieldStyle
	fieldLocation
	fieldCase
	fieldCount
)

var composeCases = []string{
	string(letters.CaseAsIs),
	string(letters.CaseUpper),
	string(letters.CaseLower),
}

// ComposeModel is the bubbletea model for composing a render interactively:
// the text is typed in, style, city and case are cycled with the arrow keys.
type ComposeModel struct {
	Text      []rune
	Styles    []string
	Locations []string

	style    int
	location int
	caseIdx  int
	focus    composeField

	// Confirmed is set when the user pressed enter. Empty text is accepted
	// and renders the empty canvas.
	Confirmed bool
}

// NewComposeModel creates a composer preset from opts. Unknown presets fall
// back to the first choice; a preset location missing from locations is
// added so it stays selectable.
func NewComposeModel(opts pipeline.Options, styles, locations []string) ComposeModel {
	if opts.Location != "" && !slices.Contains(locations, opts.Location) {
		locations = append([]string{opts.Location}, locations...)
	}
	return ComposeModel{
		Text:      []rune(opts.Text),
		Styles:    styles,
		Locations: locations,
		style:     max(slices.Index(styles, opts.Style), 0),
		location:  max(slices.Index(locations, opts.Location), 0),
		caseIdx:   max(slices.Index(composeCases, opts.Case), 0),
	}
}

// Apply copies the composed choices into opts.
func (m ComposeModel) Apply(opts *pipeline.Options) {
	opts.Text = string(m.Text)
	if len(m.Styles) > 0 {
		opts.Style = m.Styles[m.style]
	}
	if len(m.Locations) > 0 {
		opts.Location = m.Locations[m.location]
	}
	opts.Case = composeCases[m.caseIdx]
}

func (m ComposeModel) Init() tea.Cmd {
	return nil
}

func (m ComposeModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch key.String() {
	case "ctrl+c", "esc":
		return m, tea.Quit
	case "enter":
		m.Confirmed = true
		return m, tea.Quit
	case "tab", "down":
		m.focus = (m.focus + 1) % fieldCount
		return m, nil
	case "shift+tab", "up":
		m.focus = (m.focus + fieldCount - 1) % fieldCount
		return m, nil
	}

	if m.focus == fieldText {
		switch key.Type {
		case tea.KeyRunes:
			if len(m.Text)+len(key.Runes) <= pipeline.MaxTextLength {
				m.Text = append(m.Text, key.Runes...)
			}
		case tea.KeySpace:
			if len(m.Text) < pipeline.MaxTextLength {
				m.Text = append(m.Text, ' ')
			}
		case tea.KeyBackspace:
			if len(m.Text) > 0 {
				m.Text = m.Text[:len(m.Text)-1]
			}
		}
		return m, nil
	}

	step := 0
	switch key.String() {
	case "left":
		step = -1
	case "right", " ":
		step = 1
	}
	if step != 0 {
		switch m.focus {
		case fieldStyle:
			m.style = cycle(m.style, step, len(m.Styles))
		case fieldLocation:
			m.location = cycle(m.location, step, len(m.Locations))
		case fieldCase:
			m.caseIdx = cycle(m.caseIdx, step, len(composeCases))
		}
	}
	return m, nil
}

func cycle(i, step, n int) int {
	if n == 0 {
		return 0
	}
	return ((i+step)%n + n) % n
}

func (m ComposeModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Compose"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("tab/↑/↓ field  ←/→ change  ⏎ render  esc quit"))
	b.WriteString("\n\n")

	var opts pipeline.Options
	m.Apply(&opts)

	m.writeField(&b, fieldText, "Text", string(m.Text)+m.caret())
	m.writeField(&b, fieldStyle, "Style", opts.Style)
	m.writeField(&b, fieldLocation, "City", opts.Location)
	m.writeField(&b, fieldCase, "Case", opts.Case)

	b.WriteString("\n")
	preview := letters.ApplyCase(opts.Text, letters.CaseOption(opts.Case))
	if preview == "" {
		preview = "(empty)"
	}
	b.WriteString(listDimStyle.Render("  preview: "))
	b.WriteString(listNormalStyle.Render(preview))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d characters]", len(m.Text), pipeline.MaxTextLength)))

	return b.String()
}

func (m ComposeModel) writeField(b *strings.Builder, f composeField, label, value string) {
	cursor := "  "
	if m.focus == f {
		cursor = "▸ "
	}
	line := fmt.Sprintf("%s%-6s %s", cursor, label, value)
	if m.focus == f {
		b.WriteString(listSelectedStyle.Render(line))
	} else {
		b.WriteString(listNormalStyle.Render(line))
	}
	b.WriteString("\n")
}

func (m ComposeModel) caret() string {
	if m.focus == fieldText {
		return "█"
	}
	return ""
}
