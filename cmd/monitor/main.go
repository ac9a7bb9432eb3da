// monitor is a headless version of xnet that prints connection and
// traffic summaries to stdout without the bubbletea TUI.
package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/ftahirops/xnet/engine"
)

func main() {
	interval := flag.Int("interval", 1, "Collection interval in seconds")
	duration := flag.Int("duration", 60, "How long to run in seconds (0=forever)")
	historySize := flag.Int("history", 60, "Speed history points to keep")
	maxLogSize := flag.Int("max-log", 500, "Traffic log entries to retain")
	maxSnippets := flag.Int("max-snippets", 200, "Packet snippets to retain")
	flag.Parse()

	eng := engine.NewEngine(*historySize, *maxLogSize, *maxSnippets)
	defer eng.Close()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)

	ticker := time.NewTicker(time.Duration(*interval) * time.Second)
	defer ticker.Stop()

	deadline := time.Time{}
	if *duration > 0 {
		deadline = time.Now().Add(time.Duration(*duration) * time.Second)
	}

	fmt.Println("xnet monitor — headless connection output")
	fmt.Println(strings.Repeat("=", 80))

	for {
		select {
		case <-sig:
			fmt.Println("\nStopped.")
			return
		case <-ticker.C:
			if !deadline.IsZero() && time.Now().After(deadline) {
				fmt.Println("\nDuration reached.")
				return
			}
			snap, err := eng.Tick()
			if snap == nil {
				continue
			}
			if err != nil {
				fmt.Fprintf(os.Stderr, "tick error: %v\n", err)
			}

			ts := snap.Timestamp.Format("15:04:05")
			s := snap.Speed
			fmt.Printf("[%s] %d connections  down=%.0fB/s up=%.0fB/s peak_down=%.0fB/s iface=%s\n",
				ts, len(snap.Connections), s.CurrentDown, s.CurrentUp, s.PeakDown, s.Interface)

			for _, e := range eng.Tracker().Log() {
				if time.Since(e.Time) > time.Duration(*interval)*time.Second {
					continue
				}
				remote := "-"
				if !e.Remote.IsZero() {
					remote = fmt.Sprintf("%s:%d", e.Remote.Addr, e.Remote.Port)
				}
				fmt.Printf("  %-26s %-5s %s:%d -> %s  %s\n",
					e.Kind.String(), e.Protocol.String(), e.Local.Addr, e.Local.Port, remote, e.ProcessName)
			}

			for _, collErr := range snap.Errors {
				fmt.Printf("  collector error: %s\n", collErr)
			}
		}
	}
}
