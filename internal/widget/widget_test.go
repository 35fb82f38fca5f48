package widget

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func hasBar(view string) bool {
	return strings.Contains(view, gaugeFill) || strings.Contains(view, gaugeEmpty)
}

func TestItemPercentageGate(t *testing.T) {
	tests := []struct {
		name    string
		pct     float64
		wantBar bool
	}{
		{name: "sentinel omits bar", pct: NoPercentage, wantBar: false},
		{name: "any negative omits bar", pct: -0.5, wantBar: false},
		{name: "zero draws bar", pct: 0, wantBar: true},
		{name: "half", pct: 50, wantBar: true},
		{name: "over 100 passes through", pct: 140, wantBar: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			it := Item{Icon: IconCPU, Value: "42%", Label: "CPU", Percentage: tt.pct}
			assert.Equal(t, tt.wantBar, it.HasBar())
			assert.Equal(t, tt.wantBar, hasBar(it.View()))
		})
	}
}

func TestItemExpanded(t *testing.T) {
	it := Item{Value: "1 GB", Label: "Free", ExpandedValue: "4 GB", ExpandedLabel: "Total", Percentage: NoPercentage}

	collapsed := it.View()
	assert.Contains(t, collapsed, "1 GB")
	assert.Contains(t, collapsed, "Free")
	assert.NotContains(t, collapsed, "Total")

	it.Expanded = true
	expanded := it.View()
	assert.Contains(t, expanded, "4 GB")
	assert.Contains(t, expanded, "Total")
	assert.Greater(t, lipgloss.Height(expanded), lipgloss.Height(collapsed))
}

func TestItemWide(t *testing.T) {
	narrow := Item{Value: "1", Label: "x", Percentage: 10}
	wide := narrow
	wide.Wide = true
	assert.Greater(t, lipgloss.Width(wide.View()), lipgloss.Width(narrow.View()))
}

func TestUsageBar(t *testing.T) {
	assert.Equal(t, strings.Repeat(gaugeEmpty, 10), UsageBar(0, 10))
	assert.Equal(t, strings.Repeat(gaugeFill, 5)+strings.Repeat(gaugeEmpty, 5), UsageBar(50, 10))
	assert.Equal(t, strings.Repeat(gaugeFill, 10), UsageBar(250, 10))
	assert.Equal(t, strings.Repeat(gaugeEmpty, 10), UsageBar(-20, 10))
	assert.Empty(t, UsageBar(50, 0))
}

func TestFlatten(t *testing.T) {
	a, b, c := Text("a"), Text("b"), Text("c")
	nested := Group{Text("x"), Group{Text("deep")}}
	flat := Flatten([]Node{a, Group{b, nil, c}, nil, nested})

	require.Len(t, flat, 5)
	assert.Equal(t, []Node{a, b, c, Text("x"), Group{Text("deep")}}, flat, "only one level is flattened")
}

func TestContainerSurfacesLabels(t *testing.T) {
	c := Container{Children: []Node{
		Group{Text("one"), Label{Text: "caption"}},
		Text("two"),
	}}

	view := c.View()
	assert.Equal(t, 2, strings.Count(view, "caption"), "label shown in the row and beneath it")
	lines := strings.Split(view, "\n")
	var captionLines []int
	for i, l := range lines {
		if strings.Contains(l, "caption") {
			captionLines = append(captionLines, i)
		}
	}
	require.Len(t, captionLines, 2)
	assert.Less(t, captionLines[0], captionLines[1])
	assert.Len(t, Labels(c.Children), 1)
}

func TestContainerEmpty(t *testing.T) {
	view := Container{}.View()
	assert.NotEmpty(t, view, "an empty frame still renders")
	assert.Empty(t, Labels(nil))
}

func TestContainerWraps(t *testing.T) {
	children := []Node{Text(strings.Repeat("a", 10)), Text(strings.Repeat("b", 10)), Text(strings.Repeat("c", 10))}

	unbounded := Container{Children: children}.View()
	assert.Equal(t, 3, lipgloss.Height(unbounded), "single row inside a border")

	narrow := Container{Children: children, Width: 25}.View()
	assert.Greater(t, lipgloss.Height(narrow), lipgloss.Height(unbounded))
}

func TestContainerLink(t *testing.T) {
	_, _, ok := Container{}.Link()
	assert.False(t, ok)

	url, target, ok := Container{Target: "http://nas:61208"}.Link()
	assert.True(t, ok)
	assert.Equal(t, "http://nas:61208", url)
	assert.Equal(t, "_blank", target)

	view := Container{Header: "NAS", Target: "http://nas:61208", Children: []Node{Text("x")}}.View()
	assert.Contains(t, view, "\x1b]8;;http://nas:61208")
}

func TestContainerLinkStyledHeader(t *testing.T) {
	prev := lipgloss.ColorProfile()
	lipgloss.SetColorProfile(termenv.ANSI256)
	t.Cleanup(func() { lipgloss.SetColorProfile(prev) })

	for _, underlined := range []bool{false, true} {
		view := Container{
			Header:     "NAS",
			Underlined: underlined,
			Target:     "http://nas:61208",
			Children:   []Node{Text("x")},
		}.View()
		assert.Contains(t, view, "\x1b]8;;http://nas:61208\x1b\\", "underlined=%v", underlined)
		assert.Contains(t, view, "\x1b]8;;\x1b\\", "underlined=%v", underlined)
	}
}

func TestErrorPlaceholder(t *testing.T) {
	assert.Contains(t, Error{Message: "API Error"}.View(), "API Error")
}
