package cmd

import (
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	xnetcfg "github.com/ftahirops/xnet/config"
	"github.com/ftahirops/xnet/engine"
	"github.com/ftahirops/xnet/metrics"
	"github.com/ftahirops/xnet/model"
	"github.com/ftahirops/xnet/ui"
)

// Version is set at build time via ldflags.
var Version = "0.1.0"

// ExitCodeError lets Run report a specific process exit code without
// main.go having to know why.
type ExitCodeError struct{ Code int }

func (e ExitCodeError) Error() string { return fmt.Sprintf("exit %d", e.Code) }

// Config holds CLI-parsed flag values, distinct from config.Config (the
// on-disk defaults file).
type Config struct {
	Interval    time.Duration
	HistorySize int
	MaxLogSize  int
	MaxSnippets int
	Headless    bool
	Duration    time.Duration
	RecordPath  string
	PromEnabled bool
	PromAddr    string
}

func printUsage() {
	fmt.Fprintf(os.Stderr, `xnet v%s — live Windows network connection monitor

Usage:
  xnet [OPTIONS]

Modes:
  (default)         Interactive TUI (bubbletea, fullscreen)
  -headless         Print periodic summaries to stdout instead of the TUI

Options:
  -interval N       Collection interval in seconds (default: 1)
  -history N        Speed history points to keep (default: 60)
  -max-log N        Traffic log entries to retain (default: 500)
  -max-snippets N   Packet snippets to retain (default: 200)
  -duration N       Headless run length in seconds (0 = forever)
  -record FILE      Record snapshots to FILE while running (JSON lines)
  -prom             Enable the Prometheus metrics endpoint
  -prom-addr ADDR   Prometheus listen address (default: 127.0.0.1:9100)
  -save-config      Save the resolved flags as the new on-disk defaults and exit
  -version          Print version and exit

Examples:
  xnet
  xnet -interval 2 -history 120
  xnet -headless -duration 60
  xnet -record session.jsonl
  xnet -prom -prom-addr :9100
`, Version)
}

// Run parses flags and starts the application.
func Run() error {
	userCfg := xnetcfg.Load()

	var cfg Config
	var intervalSec, duration int
	var showVersion bool

	flag.IntVar(&intervalSec, "interval", userCfg.IntervalSec, "Collection interval in seconds")
	flag.IntVar(&cfg.HistorySize, "history", userCfg.HistorySize, "Speed history points to keep")
	flag.IntVar(&cfg.MaxLogSize, "max-log", userCfg.MaxLogSize, "Traffic log entries to retain")
	flag.IntVar(&cfg.MaxSnippets, "max-snippets", userCfg.MaxSnippets, "Packet snippets to retain")
	flag.BoolVar(&cfg.Headless, "headless", false, "Print periodic summaries to stdout instead of the TUI")
	flag.IntVar(&duration, "duration", 0, "Headless run length in seconds (0=forever)")
	flag.StringVar(&cfg.RecordPath, "record", "", "Record snapshots to FILE while running")
	flag.BoolVar(&cfg.PromEnabled, "prom", userCfg.Prometheus.Enabled, "Enable Prometheus metrics endpoint")
	flag.StringVar(&cfg.PromAddr, "prom-addr", userCfg.Prometheus.Addr, "Prometheus listen address")
	flag.BoolVar(&showVersion, "version", false, "Print version and exit")
	var saveConfig bool
	flag.BoolVar(&saveConfig, "save-config", false, "Save the resolved flags as the new on-disk defaults and exit")
	flag.Usage = printUsage
	flag.Parse()

	if showVersion {
		fmt.Printf("xnet v%s\n", Version)
		return nil
	}

	if saveConfig {
		userCfg.IntervalSec = intervalSec
		userCfg.HistorySize = cfg.HistorySize
		userCfg.MaxLogSize = cfg.MaxLogSize
		userCfg.MaxSnippets = cfg.MaxSnippets
		userCfg.Prometheus.Enabled = cfg.PromEnabled
		userCfg.Prometheus.Addr = cfg.PromAddr
		if err := xnetcfg.Save(userCfg); err != nil {
			return fmt.Errorf("save config: %w", err)
		}
		fmt.Printf("Saved defaults to %s\n", xnetcfg.Path())
		return nil
	}

	if args := flag.Args(); len(args) > 0 {
		if n, err := strconv.Atoi(args[0]); err == nil && n > 0 {
			intervalSec = n
		}
	}
	if intervalSec <= 0 {
		fmt.Fprintln(os.Stderr, "Error: -interval must be positive")
		return ExitCodeError{Code: 2}
	}
	cfg.Interval = time.Duration(intervalSec) * time.Second
	cfg.Duration = time.Duration(duration) * time.Second

	eng := engine.NewEngine(cfg.HistorySize, cfg.MaxLogSize, cfg.MaxSnippets)
	defer eng.Close()

	var promCollector *metrics.Collector
	if cfg.PromEnabled {
		promCollector = startPrometheus(eng, cfg.PromAddr)
	}

	if cfg.Headless {
		return runHeadless(eng, cfg, promCollector)
	}

	app := engine.NewApp(eng)
	if promCollector != nil {
		app.OnTick = promCollector.Update
	}

	if cfg.RecordPath != "" {
		return runRecord(app, cfg)
	}

	m := ui.NewModel(app, cfg.Interval)
	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err := p.Run()
	return err
}

func startPrometheus(eng *engine.Engine, addr string) *metrics.Collector {
	collector := metrics.New(eng)
	reg := prometheus.NewRegistry()
	reg.MustRegister(collector)

	srv := &http.Server{
		Addr:              addr,
		Handler:           promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			fmt.Fprintf(os.Stderr, "Prometheus endpoint failed: %v\n", err)
		}
	}()
	fmt.Fprintf(os.Stderr, "Prometheus metrics listening on %s\n", addr)
	return collector
}

// runHeadless drives the tick loop without a terminal UI, printing a
// one-line summary per tick until stopped or the duration elapses.
func runHeadless(eng *engine.Engine, cfg Config, promCollector *metrics.Collector) error {
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)

	ticker := time.NewTicker(cfg.Interval)
	defer ticker.Stop()

	deadline := time.Time{}
	if cfg.Duration > 0 {
		deadline = time.Now().Add(cfg.Duration)
	}

	fmt.Println("xnet — headless connection monitor")

	for {
		select {
		case <-sig:
			fmt.Println("\nStopped.")
			return nil
		case <-ticker.C:
			if !deadline.IsZero() && time.Now().After(deadline) {
				fmt.Println("\nDuration reached.")
				return nil
			}
			snap, err := eng.Tick()
			if snap == nil {
				continue
			}
			if err != nil {
				fmt.Fprintf(os.Stderr, "tick error: %v\n", err)
			}
			if promCollector != nil {
				promCollector.Update(snap)
			}
			printHeadlessSummary(snap)
		}
	}
}

func printHeadlessSummary(snap *model.Snapshot) {
	established := 0
	listening := 0
	for _, c := range snap.Connections {
		switch c.State.String() {
		case "ESTABLISHED":
			established++
		case "LISTEN":
			listening++
		}
	}
	s := snap.Speed
	fmt.Printf("[%s] conns=%d established=%d listen=%d down=%.0fB/s up=%.0fB/s iface=%s\n",
		snap.Timestamp.Format("15:04:05"), len(snap.Connections), established, listening,
		s.CurrentDown, s.CurrentUp, s.Interface)
	for _, e := range snap.Errors {
		fmt.Printf("  collector error: %s\n", e)
	}
}

// runRecord drives the TUI while recording every tick to RecordPath as
// JSON lines.
func runRecord(app *engine.App, cfg Config) error {
	f, err := os.OpenFile(cfg.RecordPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("cannot create record file: %w", err)
	}
	defer f.Close()

	rec := engine.NewRecorder(app.Engine, f)
	app.Recorder = rec

	m := ui.NewModel(app, cfg.Interval)
	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err = p.Run()
	rec.Close()
	return err
}
