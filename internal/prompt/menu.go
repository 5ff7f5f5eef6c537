package prompt

import (
	"io"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/gorewood/ideabook/internal/output"
)

var (
	menuTitleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	menuHelpStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

// menuItem is one entry of the menu. It keeps its position in the caller's
// slice so filtering does not change the returned index.
type menuItem struct {
	index int
	label string
}

func (i menuItem) Title() string       { return i.label }
func (i menuItem) Description() string { return "" }
func (i menuItem) FilterValue() string { return i.label }

// menuModel is the bubbletea model behind an interactive Select.
type menuModel struct {
	list      list.Model
	chosen    int
	cancelled bool
}

func newMenuModel(label string, items []string) menuModel {
	listItems := make([]list.Item, len(items))
	for i, item := range items {
		listItems[i] = menuItem{index: i, label: item}
	}

	d := list.NewDefaultDelegate()
	d.ShowDescription = false
	d.SetSpacing(0)

	l := list.New(listItems, d, 0, 0)
	l.Title = label
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(true)
	l.Styles.Title = menuTitleStyle
	l.Styles.HelpStyle = menuHelpStyle

	return menuModel{list: l, chosen: -1}
}

func (m menuModel) Init() tea.Cmd {
	return nil
}

func (m menuModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.list.SetSize(msg.Width, msg.Height-1)
		return m, nil
	case tea.KeyMsg:
		if m.list.FilterState() == list.Filtering {
			break
		}
		switch msg.String() {
		case "ctrl+c", "esc", "q":
			m.cancelled = true
			return m, tea.Quit
		case "enter":
			if item, ok := m.list.SelectedItem().(menuItem); ok {
				m.chosen = item.index
				return m, tea.Quit
			}
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m menuModel) View() string {
	return m.list.View()
}

// runMenu shows the interactive list until the user picks or cancels.
func runMenu(label string, items []string, in io.Reader, out io.Writer) (int, error) {
	p := tea.NewProgram(newMenuModel(label, items), tea.WithInput(in), tea.WithOutput(out), tea.WithAltScreen())
	final, err := p.Run()
	if err != nil {
		return 0, output.NewSystemErrorWithCause("selection menu failed", err)
	}
	m, ok := final.(menuModel)
	if !ok || m.cancelled || m.chosen < 0 {
		return 0, &output.ExitError{Code: output.ExitUserError, Message: "no choice made", Cause: ErrCancelled}
	}
	return m.chosen, nil
}
