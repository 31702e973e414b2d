package ui

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rileyhilliard/gitkeys/internal/errors"
	"golang.org/x/term"
)

// KeyInfo contains information about a key for display in the picker.
type KeyInfo struct {
	Name      string // Key file name (e.g., "github_work")
	Platform  string // Platform the key belongs to
	Alias     string // SSH config alias, if one is wired up
	Algorithm string // ed25519, rsa, ecdsa
	Bits      int    // Key size in bits
}

// keyItem implements list.Item for the Bubbles list component.
type keyItem struct {
	info KeyInfo
}

func (i keyItem) Title() string {
	return i.info.Name
}

func (i keyItem) Description() string {
	var parts []string

	if i.info.Algorithm != "" {
		if i.info.Bits > 0 {
			parts = append(parts, fmt.Sprintf("%s %d", i.info.Algorithm, i.info.Bits))
		} else {
			parts = append(parts, i.info.Algorithm)
		}
	}

	if i.info.Alias != "" {
		parts = append(parts, i.info.Alias)
	}

	if i.info.Platform != "" {
		parts = append(parts, "["+i.info.Platform+"]")
	}

	return strings.Join(parts, " | ")
}

func (i keyItem) FilterValue() string {
	// Allow searching by name, platform, and alias
	values := []string{i.info.Name, i.info.Platform, i.info.Alias}
	return strings.Join(values, " ")
}

// KeyPickerModel is a Bubble Tea model for selecting a key.
type KeyPickerModel struct {
	list     list.Model
	keys     []KeyInfo
	selected *KeyInfo
	quitting bool
	width    int
	height   int
}

// keyPickerKeyMap defines key bindings for the key picker.
type keyPickerKeyMap struct {
	Enter key.Binding
	Quit  key.Binding
}

var keyPickerKeys = keyPickerKeyMap{
	Enter: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "select"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "esc", "ctrl+c"),
		key.WithHelp("q/esc", "cancel"),
	),
}

// NewKeyPickerModel creates a new key picker model.
func NewKeyPickerModel(title string, keys []KeyInfo) KeyPickerModel {
	items := make([]list.Item, len(keys))
	for i, k := range keys {
		items[i] = keyItem{info: k}
	}

	// Create list with custom delegate for styling
	delegate := list.NewDefaultDelegate()
	delegate.Styles.SelectedTitle = delegate.Styles.SelectedTitle.
		Foreground(lipgloss.Color(string(ColorPrimary))).
		BorderForeground(lipgloss.Color(string(ColorSecondary)))
	delegate.Styles.SelectedDesc = delegate.Styles.SelectedDesc.
		Foreground(lipgloss.Color(string(ColorMuted)))

	l := list.New(items, delegate, 0, 0)
	l.Title = title
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(true)
	l.Styles.Title = lipgloss.NewStyle().
		Foreground(lipgloss.Color(string(ColorPrimary))).
		Bold(true).
		Padding(0, 0, 1, 0)
	l.Styles.HelpStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(string(ColorMuted)))

	return KeyPickerModel{
		list:   l,
		keys:   keys,
		width:  80,
		height: 15,
	}
}

// Init implements tea.Model.
func (m KeyPickerModel) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m KeyPickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keyPickerKeys.Enter):
			if item, ok := m.list.SelectedItem().(keyItem); ok {
				m.selected = &item.info
			}
			m.quitting = true
			return m, tea.Quit

		case key.Matches(msg, keyPickerKeys.Quit):
			m.quitting = true
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.list.SetSize(msg.Width, msg.Height-2)
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// View implements tea.Model.
func (m KeyPickerModel) View() string {
	if m.quitting {
		return ""
	}
	return m.list.View()
}

// Selected returns the selected key, or nil if cancelled.
func (m KeyPickerModel) Selected() *KeyInfo {
	return m.selected
}

// PickKey displays an interactive key picker and returns the selected key.
// Returns nil if the user cancels (ESC/q/Ctrl+C).
func PickKey(title string, keys []KeyInfo) (*KeyInfo, error) {
	return PickKeyWithOutput(title, keys, os.Stdout, os.Stdin)
}

// PickKeyWithOutput displays the key picker using custom I/O.
func PickKeyWithOutput(title string, keys []KeyInfo, output io.Writer, input io.Reader) (*KeyInfo, error) {
	if len(keys) == 0 {
		return nil, errors.New(errors.ErrConfig, "No keys to pick from", "Run 'gitkeys create' to generate one first.")
	}

	if len(keys) == 1 {
		// Only one key, no need to pick
		return &keys[0], nil
	}

	model := NewKeyPickerModel(title, keys)

	p := tea.NewProgram(
		model,
		tea.WithOutput(output),
		tea.WithInput(input),
	)

	finalModel, err := p.Run()
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrConfig, "Key picker failed", "Try running again or pass the key name directly.")
	}

	if m, ok := finalModel.(KeyPickerModel); ok {
		return m.Selected(), nil
	}

	return nil, nil
}

// IsTerminal returns true if the file descriptor is a terminal.
func IsTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
