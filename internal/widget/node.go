// Package widget renders the building blocks of an information widget: a
// Container framing a row of Items, with usage bars and labels.
package widget

import (
	"github.com/charmbracelet/lipgloss"
)

// Node is anything that renders to a block of terminal text.
type Node interface {
	View() string
}

// Group is a nested list of nodes. Containers flatten groups one level.
type Group []Node

// View renders the group as a single row.
func (g Group) View() string {
	parts := make([]string, 0, len(g))
	for _, n := range g {
		if n == nil {
			continue
		}
		if v := n.View(); v != "" {
			parts = append(parts, v)
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

// Label is a caption. A Container shows label children a second time
// beneath its wrapped row.
type Label struct {
	Text  string
	Style lipgloss.Style
}

func (l Label) View() string {
	if l.Text == "" {
		return ""
	}
	return l.Style.Inherit(labelStyle).Render(l.Text)
}

// Text is a plain string node.
type Text string

func (t Text) View() string { return string(t) }

// Error is the placeholder shown in place of a widget whose data could not
// be loaded.
type Error struct {
	Message string
}

func (e Error) View() string {
	return errorStyle.Render("⚠ " + e.Message)
}

var (
	labelStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("244")).Italic(true)
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("203")).Bold(true).Padding(0, 1)
	headerStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("45"))
	frameStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("60")).Padding(0, 1)
	focusedFrame = frameStyle.BorderForeground(lipgloss.Color("45"))
	itemStyle    = lipgloss.NewStyle().Padding(0, 1).MarginRight(1)
	valueStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	subtleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	iconStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("81")).Bold(true).MarginRight(1)
)
