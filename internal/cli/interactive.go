package cli

import (
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// menuItem represents a single configurable option in the TUI.
type menuItem struct {
	label    string
	value    string
	options  []menuOption
	required bool
	editing  bool
	cursor   int // cursor within options when editing
}

type menuOption struct {
	label string
	value string
}

// menuState tracks which phase the TUI is in.
type menuState int

const (
	stateMenu menuState = iota
	stateEditing
)

// tuiModel is the Bubble Tea model for the interactive menu.
type tuiModel struct {
	items     []menuItem
	cursor    int
	state     menuState
	width     int
	err       error
	confirmed bool
	cancelled bool
}

// style constants
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#7D56F4")).
			MarginBottom(1)

	menuLabelStyle = lipgloss.NewStyle().
			Width(18).
			Align(lipgloss.Right).
			MarginRight(2)

	menuValueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#04B575"))

	menuValueDimStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#555555")).
				Italic(true)

	cursorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#7D56F4")).
			Bold(true)

	requiredStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF5555")).
			Bold(true)

	optionStyle = lipgloss.NewStyle().
			PaddingLeft(4)

	selectedOptionStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#04B575")).
				Bold(true).
				PaddingLeft(2)

	buttonStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 3)

	buttonDimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#555555")).
			Padding(0, 3)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#626262")).
			MarginTop(1)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF5555")).
			Bold(true)

	headerBorder = lipgloss.NewStyle().
			BorderStyle(lipgloss.NormalBorder()).
			BorderBottom(true).
			BorderForeground(lipgloss.Color("#7D56F4")).
			MarginBottom(1).
			PaddingBottom(0)
)

// menu item indices
const (
	idxPersonaA = 0
	idxPersonaB = 1
	idxTopic    = 2
	idxContext  = 3
	idxLength   = 4
	idxProvider = 5
	idxModel    = 6
	idxThinking = 7
	// idxGenerate = last item
)

// modelOptions returns the model choices for a given provider.
func modelOptions(provider string) []menuOption {
	switch provider {
	case "claude":
		return []menuOption{
			{label: "Haiku 4.5 (fast, affordable) (default)", value: "haiku"},
			{label: "Sonnet 4.5 (balanced)", value: "sonnet"},
		}
	case "nova":
		return []menuOption{
			{label: "Nova 2 Lite (fast) (default)", value: "nova-lite"},
			{label: "Nova 2 Pro (powerful)", value: "nova-pro"},
		}
	default:
		return []menuOption{
			{label: "Gemini 2.5 Flash (fast) (default)", value: "gemini-flash"},
			{label: "Gemini 2.5 Pro (powerful)", value: "gemini-pro"},
		}
	}
}

// defaultModel returns the default model alias for a provider.
func defaultModel(provider string) string {
	return modelOptions(provider)[0].value
}

// thinkingOptions returns the reasoning-budget choices for a provider.
func thinkingOptions(provider string) []menuOption {
	if provider != "gemini" {
		return []menuOption{
			{label: "Provider default (" + provider + ")", value: ""},
		}
	}
	return []menuOption{
		{label: "Provider default", value: ""},
		{label: "0 (disable thinking)", value: "0"},
		{label: "512 tokens", value: "512"},
		{label: "2048 tokens", value: "2048"},
		{label: "8192 tokens", value: "8192"},
	}
}

func buildMenuItems() []menuItem {
	provider := flagProvider
	modelVal := flagModel
	if modelVal == "" {
		modelVal = defaultModel(provider)
	}
	thinkingVal := ""
	if flagThinkingBudget >= 0 {
		thinkingVal = strconv.Itoa(flagThinkingBudget)
	}

	items := []menuItem{
		{
			label:    "Persona A doc",
			value:    flagPersonaA,
			required: true,
		},
		{
			label:    "Persona B doc",
			value:    flagPersonaB,
			required: true,
		},
		{
			label:    "Topic",
			value:    flagTopic,
			required: true,
		},
		{
			label: "Context",
			value: flagContext,
		},
		{
			label: "Length",
			value: flagLength,
			options: []menuOption{
				{label: "Short (1-3 mins) (default)", value: "Short (1-3 mins)"},
				{label: "Medium (3-5 mins)", value: "Medium (3-5 mins)"},
				{label: "Long (5-10 mins)", value: "Long (5-10 mins)"},
			},
		},
		{
			label: "Provider",
			value: provider,
			options: []menuOption{
				{label: "Gemini (default)", value: "gemini"},
				{label: "Claude", value: "claude"},
				{label: "Nova (Bedrock)", value: "nova"},
			},
		},
		{
			label:   "Model",
			value:   modelVal,
			options: modelOptions(provider),
		},
		{
			label:   "Thinking budget",
			value:   thinkingVal,
			options: thinkingOptions(provider),
		},
	}

	// Generate button at the end
	items = append(items, menuItem{
		label: ">>> Generate <<<",
	})

	// Pre-select cursor position for options
	for i := range items {
		if len(items[i].options) > 0 {
			for j, opt := range items[i].options {
				if opt.value == items[i].value {
					items[i].cursor = j
					break
				}
			}
		}
	}

	return items
}

func initialTUIModel() tuiModel {
	return tuiModel{
		items:  buildMenuItems(),
		cursor: idxPersonaA,
		state:  stateMenu,
	}
}

func (m tuiModel) Init() tea.Cmd {
	return nil
}

func (m tuiModel) generateIdx() int {
	return len(m.items) - 1
}

func (m tuiModel) isTextInput(idx int) bool {
	return idx == idxPersonaA || idx == idxPersonaB || idx == idxTopic || idx == idxContext
}

func (m tuiModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case tea.KeyMsg:
		switch m.state {
		case stateMenu:
			return m.updateMenu(msg)
		case stateEditing:
			return m.updateEditing(msg)
		}
	}
	return m, nil
}

func (m tuiModel) updateMenu(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q":
		m.cancelled = true
		return m, tea.Quit

	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}

	case "down", "j":
		if m.cursor < len(m.items)-1 {
			m.cursor++
		}

	case "enter", " ":
		if m.cursor == m.generateIdx() {
			// Validate required fields
			for _, idx := range []int{idxPersonaA, idxPersonaB, idxTopic} {
				if m.items[idx].value == "" {
					m.err = fmt.Errorf("%s is required", m.items[idx].label)
					return m, nil
				}
			}
			m.confirmed = true
			return m, tea.Quit
		}

		// Text fields: open inline editor
		if m.isTextInput(m.cursor) {
			m.state = stateEditing
			m.items[m.cursor].editing = true
			m.err = nil
			return m, nil
		}

		// All others: open option selector
		if len(m.items[m.cursor].options) > 0 {
			m.state = stateEditing
			m.items[m.cursor].editing = true
			m.err = nil
			return m, nil
		}
	}
	return m, nil
}

func (m tuiModel) updateEditing(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	idx := m.cursor
	item := &m.items[idx]

	// Text input fields
	if m.isTextInput(idx) {
		switch msg.String() {
		case "enter":
			item.editing = false
			m.state = stateMenu
			// Auto-advance to next item
			if m.cursor < len(m.items)-1 {
				m.cursor++
			}
			return m, nil
		case "esc":
			item.editing = false
			m.state = stateMenu
			return m, nil
		case "backspace":
			if len(item.value) > 0 {
				item.value = item.value[:len(item.value)-1]
			}
			return m, nil
		case "ctrl+u":
			item.value = ""
			return m, nil
		default:
			// Accept typed characters and pasted text
			if msg.Type == tea.KeyRunes {
				item.value += string(msg.Runes)
			}
			return m, nil
		}
	}

	// Option selector for other fields
	switch msg.String() {
	case "enter", " ":
		if item.cursor >= 0 && item.cursor < len(item.options) {
			item.value = item.options[item.cursor].value
		}
		item.editing = false
		m.state = stateMenu

		// Provider changed: rebuild model and thinking options
		if idx == idxProvider {
			m.items[idxModel].options = modelOptions(item.value)
			m.items[idxModel].value = defaultModel(item.value)
			m.items[idxModel].cursor = 0

			m.items[idxThinking].options = thinkingOptions(item.value)
			m.items[idxThinking].value = ""
			m.items[idxThinking].cursor = 0
		}

		// Auto-advance
		if m.cursor < len(m.items)-1 {
			m.cursor++
		}
		return m, nil

	case "esc":
		item.editing = false
		m.state = stateMenu
		return m, nil

	case "up", "k":
		if item.cursor > 0 {
			item.cursor--
		}

	case "down", "j":
		if item.cursor < len(item.options)-1 {
			item.cursor++
		}
	}
	return m, nil
}

func (m tuiModel) View() string {
	var b strings.Builder

	title := titleStyle.Render("SFL Studio")
	header := headerBorder.Render(title)
	b.WriteString(header)
	b.WriteString("\n")

	genIdx := m.generateIdx()

	for i, item := range m.items {
		isActive := m.cursor == i

		// Generate button
		if i == genIdx {
			b.WriteString("\n")
			if isActive {
				b.WriteString("  " + buttonStyle.Render(" Generate "))
			} else {
				b.WriteString("  " + buttonDimStyle.Render(" Generate "))
			}
			b.WriteString("\n")
			continue
		}

		// Cursor indicator
		cursor := "  "
		if isActive {
			cursor = cursorStyle.Render("> ")
		}

		// Label
		label := item.label
		if item.required {
			label = label + requiredStyle.Render("*")
		}
		renderedLabel := menuLabelStyle.Render(label)

		// Value display
		var renderedValue string
		if item.editing && m.isTextInput(i) {
			renderedValue = menuValueStyle.Render(item.value + "_")
		} else if item.value == "" {
			placeholder := "(not set)"
			switch i {
			case idxContext:
				placeholder = "(optional: text file, PDF, or URL)"
			case idxThinking:
				if len(item.options) > 0 {
					placeholder = item.options[0].label
				}
			}
			renderedValue = menuValueDimStyle.Render(placeholder)
		} else {
			displayVal := item.value
			// Show friendly label for option-based items
			for _, opt := range item.options {
				if opt.value == item.value {
					displayVal = opt.label
					break
				}
			}
			renderedValue = menuValueStyle.Render(displayVal)
		}

		b.WriteString(cursor + renderedLabel + " " + renderedValue + "\n")

		// Show expanded options when editing
		if item.editing && len(item.options) > 0 && !m.isTextInput(i) {
			for j, opt := range item.options {
				if j == item.cursor {
					b.WriteString(selectedOptionStyle.Render("> "+opt.label) + "\n")
				} else {
					b.WriteString(optionStyle.Render("  "+opt.label) + "\n")
				}
			}
		}
	}

	// Error message
	if m.err != nil {
		b.WriteString("\n" + errorStyle.Render("  Error: "+m.err.Error()) + "\n")
	}

	// Help text
	switch m.state {
	case stateMenu:
		b.WriteString(helpStyle.Render("  j/k or arrows to navigate | enter to edit | q to quit"))
	case stateEditing:
		if m.isTextInput(m.cursor) {
			b.WriteString(helpStyle.Render("  type value | enter to confirm | esc to cancel | ctrl+u to clear"))
		} else {
			b.WriteString(helpStyle.Render("  j/k or arrows to pick | enter to select | esc to cancel"))
		}
	}
	b.WriteString("\n")

	return b.String()
}

func runInteractiveSetup() error {
	m := initialTUIModel()

	p := tea.NewProgram(m, tea.WithAltScreen())
	result, err := p.Run()
	if err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}

	final := result.(tuiModel)
	if final.cancelled {
		return fmt.Errorf("cancelled")
	}
	if !final.confirmed {
		return fmt.Errorf("generation cancelled")
	}

	// Apply selections to flags
	flagPersonaA = final.items[idxPersonaA].value
	flagPersonaB = final.items[idxPersonaB].value
	flagTopic = final.items[idxTopic].value
	flagContext = final.items[idxContext].value
	flagLength = final.items[idxLength].value
	flagProvider = final.items[idxProvider].value
	flagModel = final.items[idxModel].value
	if v := final.items[idxThinking].value; v != "" {
		n, err := strconv.Atoi(v)
		if err == nil {
			flagThinkingBudget = n
		}
	} else {
		flagThinkingBudget = -1
	}

	return nil
}
