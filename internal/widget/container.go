package widget

import (
	"github.com/charmbracelet/lipgloss"
)

// Container frames a set of child nodes. Children are laid out in a row that
// wraps at Width; any Label child is shown again beneath the row.
type Container struct {
	Children []Node

	Header       string
	Underlined   bool
	RightAligned bool

	// Target is the URL the frame links to; LinkTarget mirrors the browser
	// target (_blank, _self) used when opening it.
	Target     string
	LinkTarget string

	Width      int
	Focused    bool
	Style      lipgloss.Style
	InnerStyle lipgloss.Style
}

// Flatten expands Group children one level and drops nils.
func Flatten(children []Node) []Node {
	out := make([]Node, 0, len(children))
	for _, c := range children {
		switch v := c.(type) {
		case nil:
		case Group:
			for _, n := range v {
				if n != nil {
					out = append(out, n)
				}
			}
		default:
			out = append(out, c)
		}
	}
	return out
}

// Labels returns the Label nodes among the flattened children.
func Labels(children []Node) []Node {
	var labels []Node
	for _, c := range Flatten(children) {
		if _, ok := c.(Label); ok {
			labels = append(labels, c)
		}
	}
	return labels
}

// Link returns the navigation target, if any.
func (c Container) Link() (url, target string, ok bool) {
	if c.Target == "" {
		return "", "", false
	}
	target = c.LinkTarget
	if target == "" {
		target = "_blank"
	}
	return c.Target, target, true
}

func (c Container) View() string {
	parts := Flatten(c.Children)

	views := make([]string, 0, len(parts))
	for _, p := range parts {
		if v := p.View(); v != "" {
			views = append(views, v)
		}
	}
	row := c.InnerStyle.Render(wrap(views, c.innerWidth()))

	blocks := []string{}
	if h := c.header(); h != "" {
		blocks = append(blocks, h)
	}
	blocks = append(blocks, row)
	for _, l := range Labels(parts) {
		if v := l.View(); v != "" {
			blocks = append(blocks, v)
		}
	}

	align := lipgloss.Left
	if c.RightAligned {
		align = lipgloss.Right
	}
	frame := frameStyle
	if c.Focused {
		frame = focusedFrame
	}
	return c.Style.Render(frame.Render(lipgloss.JoinVertical(align, blocks...)))
}

func (c Container) header() string {
	if c.Header == "" {
		return ""
	}
	s := headerStyle
	if c.Underlined {
		s = s.Underline(true)
	}
	if c.Target != "" {
		return hyperlink(c.Target, s.Render(c.Header))
	}
	return s.Render(c.Header)
}

func (c Container) innerWidth() int {
	if c.Width <= 0 {
		return 0
	}
	// border and padding on both sides
	w := c.Width - frameStyle.GetHorizontalFrameSize()
	if w < 1 {
		w = 1
	}
	return w
}

// wrap packs views left to right, starting a new line when the next view
// would exceed width. A width of zero never wraps.
func wrap(views []string, width int) string {
	if len(views) == 0 {
		return ""
	}
	var lines []string
	var line []string
	lineWidth := 0
	for _, v := range views {
		w := lipgloss.Width(v)
		if width > 0 && len(line) > 0 && lineWidth+w > width {
			lines = append(lines, lipgloss.JoinHorizontal(lipgloss.Top, line...))
			line, lineWidth = nil, 0
		}
		line = append(line, v)
		lineWidth += w
	}
	lines = append(lines, lipgloss.JoinHorizontal(lipgloss.Top, line...))
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

// hyperlink wraps text in an OSC 8 terminal hyperlink.
func hyperlink(url, text string) string {
	return "\x1b]8;;" + url + "\x1b\\" + text + "\x1b]8;;\x1b\\"
}
