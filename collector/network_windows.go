//go:build windows

package collector

import (
	"golang.org/x/sys/windows"

	"github.com/ftahirops/xnet/util"
)

// NetworkCollector reads interface byte counters from the kernel's live
// interface table and turns the cumulative totals into a per-tick delta.
// It carries the previous tick's totals since the kernel only ever hands
// back running counters, never a rate. The speed sampler owns it directly
// (engine/speed.go) rather than through a generic collector abstraction,
// since it needs tick-interval timing that a bare Collect(snap) call
// doesn't carry.
type NetworkCollector struct {
	lastDown  uint64
	lastUp    uint64
	lastValid bool
}

func NewNetworkCollector() *NetworkCollector {
	return &NetworkCollector{}
}

// Sample reads the current interface totals and returns this tick's byte
// deltas plus the name of the busiest interface. The first call after
// construction always returns a zero delta since there is no prior sample.
func (c *NetworkCollector) Sample() (downDelta, upDelta uint64, iface string, err error) {
	totalDown, totalUp, iface, err := readInterfaceTotals()
	if err != nil {
		return 0, 0, "", err
	}

	if c.lastValid {
		downDelta = util.Delta(c.lastDown, totalDown)
		upDelta = util.Delta(c.lastUp, totalUp)
	}
	c.lastDown, c.lastUp, c.lastValid = totalDown, totalUp, true

	return downDelta, upDelta, iface, nil
}

// readInterfaceTotals sums InOctets/OutOctets across every operational,
// non-loopback interface and reports the busiest one by total traffic,
// mirroring the "most active interface" selection the original made by
// comparing total_received + total_transmitted per interface.
func readInterfaceTotals() (down, up uint64, iface string, err error) {
	table, err := windows.GetIfTable2()
	if err != nil {
		return 0, 0, "", err
	}
	defer table.Free()

	var bestTraffic uint64
	bestName := "No Interface"

	for _, row := range table.Table {
		if row.OperStatus != windows.IfOperStatusUp {
			continue
		}
		if row.Type == windows.IF_TYPE_SOFTWARE_LOOPBACK {
			continue
		}

		down += row.InOctets
		up += row.OutOctets

		traffic := row.InOctets + row.OutOctets
		if traffic > bestTraffic {
			bestTraffic = traffic
			bestName = utf16ToString(row.Description[:])
		}
	}

	return down, up, bestName, nil
}
