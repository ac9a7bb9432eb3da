package ui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/ftahirops/xnet/collector"
	"github.com/ftahirops/xnet/engine"
	"github.com/ftahirops/xnet/model"
)

type tickMsg time.Time

// collectMsg carries the result of one engine tick into Update.
type collectMsg struct {
	snap *model.Snapshot
	err  error
}

// Model is the bubbletea model driving the live connection view.
type Model struct {
	app      *engine.App
	interval time.Duration
	width    int
	height   int

	snap     *model.Snapshot
	showHelp bool
	lastErr  string
}

func NewModel(app *engine.App, interval time.Duration) Model {
	return Model{app: app, interval: interval}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(tick(m.interval), collectOnce(m.app))
}

func tick(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func collectOnce(app *engine.App) tea.Cmd {
	return func() tea.Msg {
		snap, err := app.Update()
		return collectMsg{snap: snap, err: err}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		key := msg.String()
		if key == "?" {
			m.showHelp = !m.showHelp
			return m, nil
		}
		if m.showHelp {
			if key == "esc" || key == "q" {
				m.showHelp = false
			}
			return m, nil
		}
		if m.app.HandleKey(key) {
			return m, tea.Quit
		}
		return m, nil

	case tickMsg:
		return m, tea.Batch(tick(m.interval), collectOnce(m.app))

	case collectMsg:
		m.snap = msg.snap
		if msg.err != nil {
			m.lastErr = msg.err.Error()
		}
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	}
	return m, nil
}

func (m Model) View() string {
	if m.showHelp {
		return m.renderHelp()
	}
	if m.snap == nil {
		return "collecting...\n"
	}

	header := m.renderHeader()
	var body string
	switch m.app.Tab {
	case engine.TabConnections:
		body = m.renderConnections()
	case engine.TabTraffic:
		body = m.renderTraffic()
	}
	snippets := m.renderSnippets()
	status := m.renderStatusBar()

	return lipgloss.JoinVertical(lipgloss.Left, header, body, snippets, status)
}

func (m Model) renderHeader() string {
	s := m.snap.Speed
	down := humanize.Bytes(uint64(s.CurrentDown)) + "/s"
	up := humanize.Bytes(uint64(s.CurrentUp)) + "/s"
	peak := humanize.Bytes(uint64(s.PeakDown)) + "/s"
	total := humanize.Bytes(s.TotalDown + s.TotalUp)

	line := fmt.Sprintf("down %s  up %s  peak %s  total %s  iface %s  %s",
		down, up, peak, total, s.Interface, sparkline(s.History.Download))
	return titleStyle.Render("xnet") + "  " + labelStyle.Render(line)
}

func sparkline(points []float64) string {
	ticks := []rune(" ▁▂▃▄▅▆▇█")
	var max float64
	for _, p := range points {
		if p > max {
			max = p
		}
	}
	var sb strings.Builder
	for _, p := range points {
		if max == 0 {
			sb.WriteRune(ticks[0])
			continue
		}
		idx := int((p / max) * float64(len(ticks)-1))
		if idx >= len(ticks) {
			idx = len(ticks) - 1
		}
		sb.WriteRune(ticks[idx])
	}
	return sb.String()
}

func (m Model) renderConnections() string {
	conns := m.app.FilteredConnections()
	var sb strings.Builder
	sb.WriteString(headerStyle.Render(fmt.Sprintf("%-4s %-21s %-21s %-10s %-14s %-8s %s", "PROTO", "LOCAL", "REMOTE", "SERVICE", "STATE", "PID", "PROCESS")))
	sb.WriteString("\n")

	start := m.app.ConnScroll
	if start > len(conns) {
		start = len(conns)
	}
	end := start + 30
	if end > len(conns) {
		end = len(conns)
	}

	for _, c := range conns[start:end] {
		local := fmt.Sprintf("%s:%d", c.Local.Addr, c.Local.Port)
		remote := "-"
		service := "-"
		if c.HasRemote() {
			remote = fmt.Sprintf("%s:%d", c.Remote.Addr, c.Remote.Port)
			if c.Hostname != "" {
				remote = c.Hostname
			}
			if name, ok := collector.PortServiceName(c.Remote.Port); ok {
				service = name
			}
		}
		state := c.State.String()
		if state == "" {
			state = "-"
		}
		row := fmt.Sprintf("%-4s %-21s %-21s %-10s %-14s %-8d %s",
			c.Protocol.String(), local, remote, service, state, c.PID, c.ProcessName)
		sb.WriteString(stateColor(state).Render(row))
		sb.WriteString("\n")
	}

	sb.WriteString(dimStyle.Render(fmt.Sprintf("%d connections (filter:%q listen:%v localhost:%v)",
		len(conns), m.app.FilterText, m.app.ShowListen, m.app.HideLocalhost)))
	return m.panelStyleFor(engine.TabConnections).Render(sb.String())
}

// panelStyleFor highlights whichever pane currently receives key input.
func (m Model) panelStyleFor(tab engine.BottomTab) lipgloss.Style {
	if m.app.Tab == tab {
		return activePanelStyle
	}
	return panelStyle
}

func (m Model) renderTraffic() string {
	t := m.app.Engine.Tracker()
	entries := t.FilteredLog(m.app.FilterText, m.app.HideLocalhost)

	var sb strings.Builder
	sb.WriteString(headerStyle.Render("TIME     EVENT                      PROTO LOCAL                 REMOTE                PROCESS"))
	sb.WriteString("\n")

	start := 0
	if len(entries) > 25 {
		start = len(entries) - 25
	}
	for _, e := range entries[start:] {
		ts := e.Time.Format("15:04:05")
		local := fmt.Sprintf("%s:%d", e.Local.Addr, e.Local.Port)
		remote := "-"
		if !e.Remote.IsZero() {
			remote = fmt.Sprintf("%s:%d", e.Remote.Addr, e.Remote.Port)
		}
		row := fmt.Sprintf("%s %-26s %-5s %-21s %-21s %s",
			ts, e.Kind.String(), e.Protocol.String(), local, remote, e.ProcessName)
		sb.WriteString(directionColor(e.Outbound).Render(row))
		sb.WriteString("\n")
	}

	if t.Paused() {
		sb.WriteString(warnStyle.Render("[paused]"))
	}
	return m.panelStyleFor(engine.TabTraffic).Render(sb.String())
}

func (m Model) renderSnippets() string {
	snips := m.app.Engine.Sniffer.Recent(8)
	var sb strings.Builder
	sb.WriteString(headerStyle.Render("wire preview"))
	sb.WriteString("\n")
	if errMsg, ok := m.app.Engine.Sniffer.Error(); ok {
		sb.WriteString(critStyle.Render(errMsg))
		return panelStyle.Render(sb.String())
	}
	for _, s := range snips {
		dir := directionColor(s.Direction == model.Outbound).Render(s.Direction.String())
		row := fmt.Sprintf("%s %s %s:%d -> %s:%d  %s",
			s.Time.Format("15:04:05"), dir, s.SrcAddr, s.SrcPort, s.DstAddr, s.DstPort, s.Snippet)
		sb.WriteString(row)
		sb.WriteString("\n")
	}
	return panelStyle.Render(sb.String())
}

func (m Model) renderStatusBar() string {
	tab := "connections"
	if m.app.Tab == engine.TabTraffic {
		tab = "traffic"
	}
	left := fmt.Sprintf("[%s] tab:switch  l:listen  x:localhost  1-5:sort  p:pause  q:quit  ?:help", tab)
	if m.lastErr != "" {
		left += "  " + critStyle.Render("err: "+m.lastErr)
	}
	return helpStyle.Render(left)
}

func (m Model) renderHelp() string {
	lines := []string{
		"xnet — live connection monitor",
		"",
		"tab       switch between connections and traffic log",
		"up/down   scroll the connection table (connections tab)",
		"pgup/pgdn scroll the connection table by page",
		"home/end  jump to top/bottom of the connection table",
		"          the traffic log always shows its newest 25 entries",
		"1-5       sort connections (process, remote, port, state, local port)",
		"l         toggle LISTEN rows",
		"x         toggle localhost-to-localhost rows",
		"p         pause/resume the traffic log (traffic tab)",
		"c         clear the traffic log (traffic tab)",
		"type      filter connections/log by substring",
		"backspace erase last filter character",
		"esc       clear filter",
		"q         quit",
		"",
		"press esc or q to close this screen",
	}
	return panelStyle.Render(strings.Join(lines, "\n"))
}
