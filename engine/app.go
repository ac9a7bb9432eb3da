package engine

import (
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/ftahirops/xnet/model"
)

// BottomTab selects which pane scroll/input keys apply to: the connection
// table, or the traffic event log. The packet-snippet preview is always
// visible alongside either tab, not gated by it.
type BottomTab int

const (
	TabConnections BottomTab = iota
	TabTraffic
)

func (t BottomTab) Next() BottomTab {
	if t == TabConnections {
		return TabTraffic
	}
	return TabConnections
}

// Sort columns for the connection table, matching the original's display
// order: 0=Protocol 1=LocalAddr 2=LocalPort 3=RemoteAddr 4=RemotePort
// 5=State 6=ProcessName.
const (
	ColProtocol = iota
	ColLocalAddr
	ColLocalPort
	ColRemoteAddr
	ColRemotePort
	ColState
	ColProcessName
)

// App is the coordinator driven by the renderer: it owns the engine tick,
// the connection table's sort/filter/scroll state, the active bottom tab,
// and dispatches key input to the right sub-state.
type App struct {
	Engine *Engine

	Connections   []model.Connection
	ConnScroll    int
	SortColumn    int
	SortAscending bool
	ShowListen    bool
	FilterText    string
	HideLocalhost bool

	Tab          BottomTab
	SessionStart time.Time

	// Recorder, when set, is ticked instead of Engine directly so every
	// tick is also appended to a recording file. See cmd.runRecord.
	Recorder *Recorder

	// OnTick, when set, is called with every tick's snapshot after it has
	// been applied to Connections, letting callers (the Prometheus
	// collector) observe each tick without the app needing to know about
	// metrics exporting.
	OnTick func(*model.Snapshot)
}

func NewApp(eng *Engine) *App {
	return &App{
		Engine:        eng,
		SortColumn:    ColState,
		SortAscending: true,
		ShowListen:    true,
		HideLocalhost: true,
		Tab:           TabTraffic,
		SessionStart:  time.Now(),
	}
}

// Update runs one engine tick and refreshes the app's sorted connection
// view. Called once per tick by the renderer's driving loop.
func (a *App) Update() (*model.Snapshot, error) {
	var snap *model.Snapshot
	var err error
	if a.Recorder != nil {
		snap, err = a.Recorder.RecordTick()
	} else {
		snap, err = a.Engine.Tick()
	}
	if err != nil {
		return snap, err
	}
	a.Connections = snap.Connections
	a.sortConnections()
	if a.OnTick != nil {
		a.OnTick(snap)
	}
	return snap, nil
}

// FilteredConnections applies hide-localhost, show-listen, and filter-text
// predicates over the sorted connection list, in that order.
func (a *App) FilteredConnections() []model.Connection {
	out := make([]model.Connection, 0, len(a.Connections))
	filter := strings.ToLower(a.FilterText)
	for _, c := range a.Connections {
		if a.HideLocalhost && c.IsLoopbackToLoopback() {
			continue
		}
		if !a.ShowListen && c.Protocol == model.TCP && c.State == model.StateListen {
			continue
		}
		if filter != "" && !connectionMatchesFilter(c, filter) {
			continue
		}
		out = append(out, c)
	}
	return out
}

func connectionMatchesFilter(c model.Connection, filter string) bool {
	fields := []string{
		c.ProcessName,
		c.Local.Addr, strconv.Itoa(int(c.Local.Port)),
		c.Remote.Addr, strconv.Itoa(int(c.Remote.Port)),
		c.State.String(),
		c.Protocol.String(),
		c.Hostname,
	}
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), filter) {
			return true
		}
	}
	return false
}

// sortConnections orders Connections by SortColumn, ascending or
// descending per SortAscending.
func (a *App) sortConnections() {
	col := a.SortColumn
	asc := a.SortAscending
	sort.SliceStable(a.Connections, func(i, j int) bool {
		less := compareConnections(a.Connections[i], a.Connections[j], col)
		if asc {
			return less < 0
		}
		return less > 0
	})
}

func compareConnections(a, b model.Connection, col int) int {
	switch col {
	case ColProtocol:
		return strings.Compare(a.Protocol.String(), b.Protocol.String())
	case ColLocalAddr:
		return strings.Compare(a.Local.Addr, b.Local.Addr)
	case ColLocalPort:
		return compareUint16(a.Local.Port, b.Local.Port)
	case ColRemoteAddr:
		return strings.Compare(a.Remote.Addr, b.Remote.Addr)
	case ColRemotePort:
		return compareUint16(a.Remote.Port, b.Remote.Port)
	case ColState:
		return compareInt(a.State.SortRank(), b.State.SortRank())
	case ColProcessName:
		return strings.Compare(strings.ToLower(a.ProcessName), strings.ToLower(b.ProcessName))
	default:
		return 0
	}
}

func compareUint16(a, b uint16) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func compareInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// ToggleSort implements the cycling rule: pressing the same column again
// reverses direction; a different column switches to it ascending.
func (a *App) ToggleSort(col int) {
	if a.SortColumn == col {
		a.SortAscending = !a.SortAscending
	} else {
		a.SortColumn = col
		a.SortAscending = true
	}
	a.sortConnections()
}

// ToggleTab switches the active bottom pane.
func (a *App) ToggleTab() { a.Tab = a.Tab.Next() }

// ScrollUp/ScrollDown/ScrollHome/ScrollEnd operate on whichever pane Tab
// currently selects, matching the original's per-pane scroll state.
func (a *App) ScrollUp(n int) {
	switch a.Tab {
	case TabConnections:
		a.ConnScroll -= n
		if a.ConnScroll < 0 {
			a.ConnScroll = 0
		}
	case TabTraffic:
		a.Engine.tracker.autoScroll = false
		a.Engine.tracker.scrollOffset -= n
		if a.Engine.tracker.scrollOffset < 0 {
			a.Engine.tracker.scrollOffset = 0
		}
	}
}

func (a *App) ScrollDown(n int) {
	switch a.Tab {
	case TabConnections:
		a.ConnScroll += n
	case TabTraffic:
		a.Engine.tracker.scrollOffset += n
		if a.Engine.tracker.scrollOffset >= len(a.Engine.tracker.log) {
			a.Engine.tracker.autoScroll = true
		}
	}
}

func (a *App) ScrollHome() {
	switch a.Tab {
	case TabConnections:
		a.ConnScroll = 0
	case TabTraffic:
		a.Engine.tracker.autoScroll = false
		a.Engine.tracker.scrollOffset = 0
	}
}

func (a *App) ScrollEnd() {
	switch a.Tab {
	case TabConnections:
		a.ConnScroll = len(a.Connections)
	case TabTraffic:
		a.Engine.tracker.autoScroll = true
		a.Engine.tracker.scrollOffset = len(a.Engine.tracker.log)
	}
}

// HandleKey dispatches a single keystroke. Returns true if the app should
// quit. Navigation keys are handled here regardless of tab; everything
// else is routed to the active tab's own handler.
func (a *App) HandleKey(key string) bool {
	switch key {
	case "q", "Q", "ctrl+c":
		return true
	case "tab":
		a.ToggleTab()
		return false
	case "up":
		a.ScrollUp(1)
		return false
	case "down":
		a.ScrollDown(1)
		return false
	case "pgup":
		a.ScrollUp(20)
		return false
	case "pgdown":
		a.ScrollDown(20)
		return false
	case "home":
		a.ScrollHome()
		return false
	case "end":
		a.ScrollEnd()
		return false
	}

	switch a.Tab {
	case TabConnections:
		a.handleConnectionsKey(key)
	case TabTraffic:
		a.handleTrafficKey(key)
	}
	return false
}

// sort keys mapped to displayed column order: 1=Process 2=RemoteHost
// 3=RemotePort 4=State 5=LocalPort, matching the original's keymap.
func (a *App) handleConnectionsKey(key string) {
	switch key {
	case "l", "L":
		a.ShowListen = !a.ShowListen
	case "x", "X":
		a.HideLocalhost = !a.HideLocalhost
	case "1":
		a.ToggleSort(ColProcessName)
	case "2":
		a.ToggleSort(ColRemoteAddr)
	case "3":
		a.ToggleSort(ColRemotePort)
	case "4":
		a.ToggleSort(ColState)
	case "5":
		a.ToggleSort(ColLocalPort)
	case "backspace":
		a.FilterText = popRune(a.FilterText)
	case "esc":
		a.FilterText = ""
	default:
		if r := singleRune(key); r != 0 && r != 'f' && r != 'F' {
			a.FilterText += string(r)
		}
	}
}

func (a *App) handleTrafficKey(key string) {
	t := a.Engine.tracker
	switch key {
	case "p", "P":
		t.SetPaused(!t.Paused())
	case "c", "C":
		t.log = nil
		t.prev = make(map[model.ConnKey]connInfo)
	case "x", "X":
		a.HideLocalhost = !a.HideLocalhost
	case "backspace":
		a.FilterText = popRune(a.FilterText)
	case "esc":
		a.FilterText = ""
	default:
		if r := singleRune(key); r != 0 {
			a.FilterText += string(r)
		}
	}
}

// popRune removes the last rune (not byte) from s, matching the original's
// char-based backspace over a String.
func popRune(s string) string {
	if s == "" {
		return s
	}
	r := []rune(s)
	return string(r[:len(r)-1])
}

// singleRune returns the rune a single-character key event represents, or
// 0 if key isn't a single printable rune (e.g. a named key like "enter").
func singleRune(key string) rune {
	r := []rune(key)
	if len(r) != 1 {
		return 0
	}
	return r[0]
}
