package widget

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// NoPercentage omits the usage bar of an Item.
const NoPercentage = -1

const (
	narrowWidth = 14
	wideWidth   = 20
)

// Glyphs used for the metric icons.
const (
	IconCPU    = "⚙"
	IconMemory = "▦"
	IconDisk   = "◍"
	IconTemp   = "♨"
	IconClock  = "◷"
)

// Item is a single metric cell: icon, a value/label pair, an optional
// secondary pair and an optional usage bar.
type Item struct {
	Icon          string
	Value         string
	Label         string
	ExpandedValue string
	ExpandedLabel string
	// Percentage drives the usage bar. The bar is drawn when it is >= 0; the
	// value is handed to the bar unchecked.
	Percentage float64
	Expanded   bool
	Wide       bool
	Style      lipgloss.Style
	Children   []Node
}

func (it Item) textWidth() int {
	if it.Wide {
		return wideWidth
	}
	return narrowWidth
}

// HasBar reports whether View draws a usage bar.
func (it Item) HasBar() bool { return it.Percentage >= 0 }

func (it Item) View() string {
	width := it.textWidth()
	rows := []string{justify(valueStyle.Render(it.Value), subtleStyle.Render(it.Label), width)}
	if it.Expanded {
		rows = append(rows, justify(valueStyle.Render(it.ExpandedValue), subtleStyle.Render(it.ExpandedLabel), width))
	}
	if it.HasBar() {
		rows = append(rows, UsageBar(it.Percentage, width))
	}
	for _, c := range it.Children {
		if c == nil {
			continue
		}
		if v := c.View(); v != "" {
			rows = append(rows, v)
		}
	}

	body := lipgloss.JoinVertical(lipgloss.Left, rows...)
	cell := lipgloss.JoinHorizontal(lipgloss.Top, iconStyle.Render(it.Icon), body)
	return it.Style.Render(itemStyle.Render(cell))
}

// UsageBar draws a horizontal gauge width cells wide. Out of range
// percentages are clamped for drawing only.
func UsageBar(pct float64, width int) string {
	if width <= 0 {
		return ""
	}
	if pct < 0 {
		pct = 0
	}
	if pct > 100 {
		pct = 100
	}
	filled := int((pct / 100) * float64(width))
	if filled > width {
		filled = width
	}
	return barFill.Render(strings.Repeat(gaugeFill, filled)) +
		barEmpty.Render(strings.Repeat(gaugeEmpty, width-filled))
}

var (
	gaugeFill  = "█"
	gaugeEmpty = "░"
	barFill    = lipgloss.NewStyle().Foreground(lipgloss.Color("45"))
	barEmpty   = lipgloss.NewStyle().Foreground(lipgloss.Color("238"))
)

func justify(left, right string, width int) string {
	gap := width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}
	return left + strings.Repeat(" ", gap) + right
}
