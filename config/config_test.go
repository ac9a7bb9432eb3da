package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

func TestDefaultValues(t *testing.T) {
	cfg := Default()
	if cfg.IntervalSec != 1 {
		t.Errorf("IntervalSec = %d, want 1", cfg.IntervalSec)
	}
	if cfg.HistorySize != 60 {
		t.Errorf("HistorySize = %d, want 60", cfg.HistorySize)
	}
	if !cfg.HideLocalhost {
		t.Error("HideLocalhost = false, want true by default")
	}
	if cfg.Prometheus.Enabled {
		t.Error("Prometheus.Enabled = true, want false by default")
	}
	if cfg.Prometheus.Addr != "127.0.0.1:9100" {
		t.Errorf("Prometheus.Addr = %q, want 127.0.0.1:9100", cfg.Prometheus.Addr)
	}
}

func TestConfigRoundTripsThroughJSON(t *testing.T) {
	cfg := Default()
	cfg.IntervalSec = 5
	cfg.Prometheus.Enabled = true

	data, err := json.Marshal(cfg)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var got Config
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if got != cfg {
		t.Errorf("round-tripped config = %+v, want %+v", got, cfg)
	}
}

func TestPathUnderUserConfigDir(t *testing.T) {
	p := Path()
	if p == "" {
		t.Skip("no user config directory available in this environment")
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		t.Fatalf("os.UserConfigDir: %v", err)
	}
	if want := filepath.Join(dir, "xnet", "config.json"); p != want {
		t.Errorf("Path() = %q, want %q", p, want)
	}
}

func TestSaveThenLoadRoundTrips(t *testing.T) {
	dir := t.TempDir()
	switch runtime.GOOS {
	case "windows":
		t.Setenv("AppData", dir)
	default:
		t.Setenv("XDG_CONFIG_HOME", dir)
	}

	if Path() == "" {
		t.Skip("no user config directory available in this environment")
	}

	cfg := Default()
	cfg.IntervalSec = 9
	cfg.Prometheus.Addr = "0.0.0.0:9999"
	if err := Save(cfg); err != nil {
		t.Fatalf("Save: %v", err)
	}

	if _, err := os.Stat(Path()); err != nil {
		t.Fatalf("Save did not create %s: %v", Path(), err)
	}

	got := Load()
	if got != cfg {
		t.Errorf("Load() after Save() = %+v, want %+v", got, cfg)
	}
}
