// SPDX-License-Identifier: MPL-2.0

// Package tui holds the small interactive pieces of the CLI. Currently that
// is a yes/no confirmation prompt used before an upgrade is applied.
package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// ConfirmOptions configures the Confirm prompt.
type ConfirmOptions struct {
	// Title is the question to display.
	Title string
	// Description provides additional context below the title.
	Description string
	// Affirmative is the text for the affirmative option (default: "Yes").
	Affirmative string
	// Negative is the text for the negative option (default: "No").
	Negative string
	// Default preselects the affirmative option when true.
	Default bool
}

// confirmModel is the bubbletea model behind Confirm.
type confirmModel struct {
	opts      ConfirmOptions
	selection bool
	done      bool
	cancelled bool
}

var (
	confirmTitleStyle    = lipgloss.NewStyle().Bold(true)
	confirmDescStyle     = lipgloss.NewStyle().Faint(true)
	confirmSelectedStyle = lipgloss.NewStyle().Bold(true).Reverse(true).Padding(0, 2)
	confirmOptionStyle   = lipgloss.NewStyle().Padding(0, 2)
)

func newConfirmModel(opts ConfirmOptions) *confirmModel {
	if opts.Affirmative == "" {
		opts.Affirmative = "Yes"
	}
	if opts.Negative == "" {
		opts.Negative = "No"
	}
	return &confirmModel{opts: opts, selection: opts.Default}
}

// Init implements tea.Model.
func (m *confirmModel) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m *confirmModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch keyMsg.String() {
	case "ctrl+c", "esc":
		m.done = true
		m.cancelled = true
		return m, tea.Quit
	case "y":
		m.selection = true
		m.done = true
		return m, tea.Quit
	case "n":
		m.selection = false
		m.done = true
		return m, tea.Quit
	case "left", "right", "tab", "h", "l":
		m.selection = !m.selection
		return m, nil
	case "enter":
		m.done = true
		return m, tea.Quit
	}
	return m, nil
}

// View implements tea.Model.
func (m *confirmModel) View() string {
	if m.done {
		return ""
	}

	var b strings.Builder
	b.WriteString(confirmTitleStyle.Render(m.opts.Title))
	b.WriteString("\n")
	if m.opts.Description != "" {
		b.WriteString(confirmDescStyle.Render(m.opts.Description))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	yes, no := confirmOptionStyle, confirmOptionStyle
	if m.selection {
		yes = confirmSelectedStyle
	} else {
		no = confirmSelectedStyle
	}
	b.WriteString(yes.Render(m.opts.Affirmative))
	b.WriteString("  ")
	b.WriteString(no.Render(m.opts.Negative))
	b.WriteString("\n")
	return b.String()
}

// Confirm runs the prompt and returns the user's choice. Cancelling the
// prompt (esc, ctrl+c) returns false without error.
func Confirm(opts ConfirmOptions) (bool, error) {
	m := newConfirmModel(opts)
	if _, err := tea.NewProgram(m).Run(); err != nil {
		return false, fmt.Errorf("running confirmation prompt: %w", err)
	}
	if m.cancelled {
		return false, nil
	}
	return m.selection, nil
}
