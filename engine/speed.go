package engine

import (
	"time"

	"github.com/ftahirops/xnet/collector"
	"github.com/ftahirops/xnet/model"
	"github.com/ftahirops/xnet/util"
)

// SpeedSampler turns the kernel's cumulative interface byte counters into
// instantaneous rates, running peaks, running totals, and a fixed-length
// history, per tick.
type SpeedSampler struct {
	net      *collector.NetworkCollector
	lastTick time.Time
	state    model.SpeedState
}

func NewSpeedSampler(historyPoints int) *SpeedSampler {
	return &SpeedSampler{
		net: collector.NewNetworkCollector(),
		state: model.SpeedState{
			History: model.NewSpeedHistory(historyPoints),
		},
	}
}

// Sample advances the sampler by one tick and returns the updated state.
// Errors are recoverable: when the interface table can't be read this tick
// the error is appended to snap.Errors, the current rates read zero and a
// zero sample is pushed to the history, while peaks, totals and the
// interface name keep their previous values.
func (s *SpeedSampler) Sample(now time.Time, snap *model.Snapshot) model.SpeedState {
	downDelta, upDelta, iface, err := s.net.Sample()
	if err != nil {
		snap.Errors = append(snap.Errors, err.Error())
	}

	var elapsed time.Duration
	if !s.lastTick.IsZero() {
		elapsed = now.Sub(s.lastTick)
	}
	s.lastTick = now

	down := util.Rate(0, downDelta, elapsed)
	up := util.Rate(0, upDelta, elapsed)

	s.state.CurrentDown = down
	s.state.CurrentUp = up
	if down > s.state.PeakDown {
		s.state.PeakDown = down
	}
	if up > s.state.PeakUp {
		s.state.PeakUp = up
	}
	s.state.TotalDown += downDelta
	s.state.TotalUp += upDelta
	if iface != "" {
		s.state.Interface = iface
	}
	s.state.History.Push(down, up)

	return s.state
}
