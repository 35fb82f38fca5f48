package glances

import (
	"time"

	"github.com/Dicklesworthstone/sysmoni_widgets/internal/config"
	"github.com/Dicklesworthstone/sysmoni_widgets/internal/i18n"
	"github.com/Dicklesworthstone/sysmoni_widgets/internal/model"
	"github.com/Dicklesworthstone/sysmoni_widgets/internal/widget"
)

// State is what a widget knows after a poll cycle.
type State struct {
	Sample *model.Sample
	Err    error
}

// Widget renders one configured metrics widget.
type Widget struct {
	cfg config.Widget
	tr  *i18n.Translator
	now func() time.Time
}

func New(cfg config.Widget) *Widget {
	return &Widget{cfg: cfg, tr: i18n.New(cfg.Lang), now: time.Now}
}

// WithClock replaces the wall clock used for the uptime gauge.
func (w *Widget) WithClock(now func() time.Time) *Widget {
	w.now = now
	return w
}

func (w *Widget) Config() config.Widget { return w.cfg }

// Build maps a poll state to a node: an Error placeholder on failure, nil
// while no data has arrived, and the composed Container otherwise.
func (w *Widget) Build(st State) widget.Node {
	if st.Err != nil || (st.Sample != nil && st.Sample.HasError()) {
		return widget.Error{Message: w.tr.T("widget.api_error")}
	}
	if st.Sample == nil {
		return nil
	}
	return w.Compose(st.Sample)
}

// View renders a poll state at the given width.
func (w *Widget) View(st State, width int, focused bool, expanded bool) string {
	n := w.Build(st)
	if n == nil {
		return ""
	}
	if c, ok := n.(widget.Container); ok {
		c.Width = width
		c.Focused = focused
		if !expanded {
			c.Children = collapse(c.Children)
		}
		return c.View()
	}
	return n.View()
}

func collapse(children []widget.Node) []widget.Node {
	out := make([]widget.Node, 0, len(children))
	for _, child := range children {
		g, ok := child.(widget.Group)
		if !ok {
			out = append(out, child)
			continue
		}
		cg := make(widget.Group, 0, len(g))
		for _, n := range g {
			if it, ok := n.(widget.Item); ok {
				it.Expanded = false
				n = it
			}
			cg = append(cg, n)
		}
		out = append(out, cg)
	}
	return out
}

// Compose builds the Container of resource items for a sample.
func (w *Widget) Compose(s *model.Sample) widget.Container {
	d := Derive(s, w.cfg, w.tr, w.now())
	return widget.Container{
		Children:     []widget.Node{w.systemItems(s), w.storageItems(d)},
		Header:       w.cfg.Label,
		Underlined:   w.cfg.Style.Header == "underlined",
		RightAligned: w.cfg.Style.IsRightAligned,
		Target:       w.cfg.URL,
		LinkTarget:   w.cfg.Target,
	}
}

func (w *Widget) systemItems(s *model.Sample) widget.Group {
	var g widget.Group
	if w.cfg.CPU {
		g = append(g, widget.Item{
			Icon:          widget.IconCPU,
			Value:         w.tr.Percent(s.CPU.Total),
			Label:         w.tr.T("glances.cpu"),
			ExpandedValue: w.tr.Percent(s.Load.Min15),
			ExpandedLabel: w.tr.T("glances.load"),
			Percentage:    s.CPU.Total,
			Expanded:      w.cfg.Expanded,
		})
	}
	if w.cfg.Mem {
		g = append(g, widget.Item{
			Icon:          widget.IconMemory,
			Value:         w.tr.Bytes(s.Mem.Available, true),
			Label:         w.tr.T("glances.free"),
			ExpandedValue: w.tr.Bytes(s.Mem.Total, true),
			ExpandedLabel: w.tr.T("glances.total"),
			Percentage:    s.Mem.Percent,
			Expanded:      w.cfg.Expanded,
		})
	}
	return g
}

func (w *Widget) storageItems(d Derived) widget.Group {
	binary := w.cfg.DiskUnits == config.DiskUnitsBBytes
	var g widget.Group
	for _, disk := range d.Disks {
		g = append(g, widget.Item{
			Icon:          widget.IconDisk,
			Value:         w.tr.Bytes(disk.Free, binary),
			Label:         w.tr.T("glances.free"),
			ExpandedValue: w.tr.Bytes(disk.Size, binary),
			ExpandedLabel: w.tr.T("glances.total"),
			Percentage:    disk.Percent,
			Expanded:      w.cfg.Expanded,
		})
	}
	if w.cfg.CPUTemp && d.MainTemp > 0 {
		g = append(g, widget.Item{
			Icon:          widget.IconTemp,
			Value:         w.tr.Temperature(d.MainTemp, d.TempUnit),
			Label:         w.tr.T("glances.temp"),
			ExpandedValue: w.tr.Temperature(d.MaxTemp, d.TempUnit),
			ExpandedLabel: w.tr.T("glances.warn"),
			Percentage:    d.TempPercent,
			Expanded:      w.cfg.Expanded,
		})
	}
	if w.cfg.Uptime && d.Uptime != "" {
		g = append(g, widget.Item{
			Icon:       widget.IconClock,
			Value:      d.Uptime,
			Label:      w.tr.T("glances.uptime"),
			Percentage: d.UptimePercent,
		})
	}
	return g
}

// Items returns the resource items in render order.
func Items(c widget.Container) []widget.Item {
	var items []widget.Item
	for _, n := range widget.Flatten(c.Children) {
		if it, ok := n.(widget.Item); ok {
			items = append(items, it)
		}
	}
	return items
}
