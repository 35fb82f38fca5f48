package ui

import (
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"runtime"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Dicklesworthstone/sysmoni_widgets/internal/config"
	"github.com/Dicklesworthstone/sysmoni_widgets/internal/fetch"
	"github.com/Dicklesworthstone/sysmoni_widgets/internal/glances"
	"github.com/Dicklesworthstone/sysmoni_widgets/internal/widget"
)

// Model renders every configured widget from its poller.
type Model struct {
	widgets   []*glances.Widget
	states    []glances.State
	updated   []time.Time
	streams   []<-chan fetch.Result
	ctxCancel context.CancelFunc
	width     int
	height    int
	focus     int
	expanded  bool
	status    string
	opener    func(url string) error
}

func New(cfg *config.Config, client *fetch.Client) *Model {
	ctx, cancel := context.WithCancel(context.Background())
	widgets := make([]*glances.Widget, 0, len(cfg.Widgets))
	streams := make([]<-chan fetch.Result, 0, len(cfg.Widgets))
	for _, w := range cfg.Widgets {
		widgets = append(widgets, glances.New(w))
		streams = append(streams, fetch.NewPoller(client, w).Stream(ctx))
	}
	return newModel(widgets, streams, cancel)
}

func newModel(widgets []*glances.Widget, streams []<-chan fetch.Result, cancel context.CancelFunc) *Model {
	return &Model{
		widgets:   widgets,
		states:    make([]glances.State, len(widgets)),
		updated:   make([]time.Time, len(widgets)),
		streams:   streams,
		ctxCancel: cancel,
		width:     120,
		height:    40,
		expanded:  true,
		opener:    openURL,
	}
}

// Messages
type (
	tickMsg   struct{}
	openedMsg struct{ err error }
)

func tickCmd() tea.Cmd { return tea.Tick(time.Second/5, func(time.Time) tea.Msg { return tickMsg{} }) }

func (m *Model) Init() tea.Cmd { return tickCmd() }

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.ctxCancel()
			return m, tea.Quit
		case "e":
			m.expanded = !m.expanded
		case "tab":
			if len(m.widgets) > 0 {
				m.focus = (m.focus + 1) % len(m.widgets)
			}
		case "shift+tab":
			if len(m.widgets) > 0 {
				m.focus = (m.focus - 1 + len(m.widgets)) % len(m.widgets)
			}
		case "o":
			return m, m.openFocused()
		}
	case openedMsg:
		if msg.err != nil {
			m.status = "open failed: " + msg.err.Error()
		} else {
			m.status = ""
		}
	case tickMsg:
		m.drain()
		return m, tickCmd()
	}
	return m, nil
}

// drain takes whatever results are ready without blocking.
func (m *Model) drain() {
	for i, ch := range m.streams {
	loop:
		for {
			select {
			case res, ok := <-ch:
				if !ok {
					m.streams[i] = nil
					break loop
				}
				m.apply(i, res)
			default:
				break loop
			}
		}
	}
}

func (m *Model) apply(i int, res fetch.Result) {
	if res.Err != nil {
		m.states[i] = glances.State{Err: res.Err}
	} else {
		m.states[i] = glances.State{Sample: res.Sample}
	}
	m.updated[i] = res.At
}

func (m *Model) openFocused() tea.Cmd {
	if m.focus >= len(m.widgets) {
		return nil
	}
	c, ok := m.widgets[m.focus].Build(m.states[m.focus]).(widget.Container)
	if !ok {
		return nil
	}
	url, target, ok := c.Link()
	if !ok {
		return nil
	}
	opener := m.opener
	return func() tea.Msg {
		slog.Debug("Opening link", "url", url, "target", target)
		return openedMsg{err: opener(url)}
	}
}

// Styles
var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("45"))
	subtleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
)

func (m *Model) View() string {
	header := titleStyle.Render("System Resource Widgets") + "  " +
		subtleStyle.Render(time.Now().Format("Mon Jan 2 15:04:05 MST 2006"))

	blocks := []string{header}
	for i, w := range m.widgets {
		if v := w.View(m.states[i], m.width, i == m.focus, m.expanded); v != "" {
			blocks = append(blocks, v)
		}
	}

	help := "q quit · e expand · tab focus · o open link"
	if m.focus < len(m.updated) && !m.updated[m.focus].IsZero() {
		help += fmt.Sprintf(" · updated %s", m.updated[m.focus].Format("15:04:05"))
	}
	if m.status != "" {
		help = m.status
	}
	blocks = append(blocks, subtleStyle.Render(help))
	return lipgloss.JoinVertical(lipgloss.Left, blocks...)
}

func openURL(url string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("%w: %s", err, strings.TrimSpace(string(out)))
	}
	return nil
}

// RunTUI starts the Bubble Tea program.
func RunTUI(cfg *config.Config, client *fetch.Client) error {
	prog := tea.NewProgram(New(cfg, client), tea.WithAltScreen())
	_, err := prog.Run()
	return err
}
