package engine

import (
	"testing"

	"github.com/ftahirops/xnet/model"
)

func testConnections() []model.Connection {
	return []model.Connection{
		{Protocol: model.TCP, Local: model.Endpoint{Addr: "10.0.0.5", Port: 51000}, Remote: model.Endpoint{Addr: "1.2.3.4", Port: 443}, State: model.StateEstablished, ProcessName: "chrome.exe"},
		{Protocol: model.TCP, Local: model.Endpoint{Addr: "0.0.0.0", Port: 8080}, State: model.StateListen, ProcessName: "nginx.exe"},
		{Protocol: model.UDP, Local: model.Endpoint{Addr: "127.0.0.1", Port: 53}, Remote: model.Endpoint{Addr: "127.0.0.1", Port: 5353}, ProcessName: "svchost.exe"},
	}
}

func TestAppFilteredConnectionsHideLocalhost(t *testing.T) {
	app := &App{Connections: testConnections(), HideLocalhost: true, ShowListen: true}
	out := app.FilteredConnections()
	for _, c := range out {
		if c.IsLoopbackToLoopback() {
			t.Errorf("FilteredConnections() kept a loopback-to-loopback entry: %+v", c)
		}
	}
	if len(out) != 2 {
		t.Fatalf("len(FilteredConnections()) = %d, want 2", len(out))
	}
}

func TestAppFilteredConnectionsHideListen(t *testing.T) {
	app := &App{Connections: testConnections(), ShowListen: false, HideLocalhost: false}
	out := app.FilteredConnections()
	for _, c := range out {
		if c.Protocol == model.TCP && c.State == model.StateListen {
			t.Errorf("FilteredConnections() kept a LISTEN entry with ShowListen=false: %+v", c)
		}
	}
}

func TestAppFilteredConnectionsByText(t *testing.T) {
	app := &App{Connections: testConnections(), ShowListen: true, HideLocalhost: false, FilterText: "chrome"}
	out := app.FilteredConnections()
	if len(out) != 1 || out[0].ProcessName != "chrome.exe" {
		t.Fatalf("FilteredConnections() with filter %q = %+v, want only chrome.exe", app.FilterText, out)
	}
}

func TestAppToggleSortCyclesDirection(t *testing.T) {
	app := NewApp(nil)
	app.SortColumn = ColState
	app.SortAscending = true

	app.ToggleSort(ColState)
	if app.SortAscending {
		t.Error("ToggleSort on the active column should reverse direction")
	}

	app.ToggleSort(ColProcessName)
	if app.SortColumn != ColProcessName || !app.SortAscending {
		t.Error("ToggleSort on a new column should switch to it, ascending")
	}
}

func TestAppSortConnectionsByProcessName(t *testing.T) {
	app := &App{Connections: testConnections(), SortColumn: ColProcessName, SortAscending: true}
	app.sortConnections()
	for i := 1; i < len(app.Connections); i++ {
		if app.Connections[i-1].ProcessName > app.Connections[i].ProcessName {
			t.Fatalf("Connections not sorted ascending by process name: %+v", app.Connections)
		}
	}
}

func TestAppHandleKeyQuit(t *testing.T) {
	app := NewApp(nil)
	if !app.HandleKey("q") {
		t.Error("HandleKey(\"q\") = false, want true (quit)")
	}
	if !app.HandleKey("ctrl+c") {
		t.Error("HandleKey(\"ctrl+c\") = false, want true (quit)")
	}
	if app.HandleKey("tab") {
		t.Error("HandleKey(\"tab\") = true, want false (not a quit key)")
	}
}

func TestAppToggleTabCycles(t *testing.T) {
	app := NewApp(nil)
	app.Tab = TabTraffic
	app.ToggleTab()
	if app.Tab != TabConnections {
		t.Errorf("Tab = %v, want TabConnections after toggling from TabTraffic", app.Tab)
	}
	app.ToggleTab()
	if app.Tab != TabTraffic {
		t.Errorf("Tab = %v, want TabTraffic after toggling from TabConnections", app.Tab)
	}
}

func TestAppHandleConnectionsKeyBuildsFilterText(t *testing.T) {
	app := NewApp(nil)
	app.Tab = TabConnections
	app.HandleKey("c")
	app.HandleKey("h")
	app.HandleKey("i")
	if app.FilterText != "chi" {
		t.Fatalf("FilterText = %q, want %q", app.FilterText, "chi")
	}
	app.HandleKey("backspace")
	if app.FilterText != "ch" {
		t.Fatalf("FilterText after backspace = %q, want %q", app.FilterText, "ch")
	}
	app.HandleKey("esc")
	if app.FilterText != "" {
		t.Fatalf("FilterText after esc = %q, want empty", app.FilterText)
	}
}

func TestAppHandleConnectionsKeyIgnoresF(t *testing.T) {
	app := NewApp(nil)
	app.Tab = TabConnections
	app.HandleKey("f")
	if app.FilterText != "" {
		t.Errorf("FilterText = %q after 'f', want empty — 'f' is reserved and never appended", app.FilterText)
	}
}

func TestAppHandleConnectionsKeyTogglesListenAndLocalhost(t *testing.T) {
	app := NewApp(nil)
	app.Tab = TabConnections
	initialListen := app.ShowListen
	app.HandleKey("l")
	if app.ShowListen == initialListen {
		t.Error("HandleKey(\"l\") did not toggle ShowListen")
	}
	initialLocal := app.HideLocalhost
	app.HandleKey("x")
	if app.HideLocalhost == initialLocal {
		t.Error("HandleKey(\"x\") did not toggle HideLocalhost")
	}
}

func TestPopRune(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"", ""},
		{"a", ""},
		{"abc", "ab"},
	}
	for _, tt := range tests {
		if got := popRune(tt.in); got != tt.want {
			t.Errorf("popRune(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSingleRune(t *testing.T) {
	if r := singleRune("a"); r != 'a' {
		t.Errorf("singleRune(\"a\") = %q, want 'a'", r)
	}
	if r := singleRune("enter"); r != 0 {
		t.Errorf("singleRune(\"enter\") = %q, want 0", r)
	}
	if r := singleRune(""); r != 0 {
		t.Errorf("singleRune(\"\") = %q, want 0", r)
	}
}
