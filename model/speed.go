package model

// SpeedHistory is a fixed-capacity, always-full sequence of paired
// (download, upload) rate samples in bytes/sec. It starts zero-filled and
// every push shifts the oldest sample out the front.
type SpeedHistory struct {
	Download []float64
	Upload   []float64
	maxPoints int
}

// NewSpeedHistory creates a history pre-filled with maxPoints zero samples.
func NewSpeedHistory(maxPoints int) *SpeedHistory {
	if maxPoints <= 0 {
		maxPoints = 1
	}
	return &SpeedHistory{
		Download:  make([]float64, maxPoints),
		Upload:    make([]float64, maxPoints),
		maxPoints: maxPoints,
	}
}

// Push appends a new (down, up) sample, evicting the oldest pair so the
// sequence length never changes.
func (h *SpeedHistory) Push(down, up float64) {
	copy(h.Download, h.Download[1:])
	h.Download[len(h.Download)-1] = down
	copy(h.Upload, h.Upload[1:])
	h.Upload[len(h.Upload)-1] = up
}

// MaxPoints returns the fixed capacity, which always equals len(Download)
// and len(Upload).
func (h *SpeedHistory) MaxPoints() int { return h.maxPoints }

// SpeedState is the aggregate state, summed across all counted interfaces,
// tracked by the speed sampler: current rates, running peaks, and running
// totals.
type SpeedState struct {
	CurrentDown float64
	CurrentUp   float64
	PeakDown    float64
	PeakUp      float64
	TotalDown   uint64
	TotalUp     uint64
	Interface   string // name of the most active interface this tick
	History     *SpeedHistory
}
