//go:build windows

package engine

import (
	"net"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"
	"unsafe"

	"golang.org/x/sys/windows"

	"github.com/ftahirops/xnet/model"
)

const (
	sioRCVALL = 0x98000001
	rcvallOn  = 1

	minSnippetRunLen = 6
	maxSnippetLen    = 200
)

// PacketSniffer captures raw IPv4 packets on a background goroutine and
// extracts readable payload fragments into a bounded, thread-safe ring.
// Everything here except the fields below is owned single-threadedly by
// the goroutine or by callers of the exported methods.
type PacketSniffer struct {
	mu        sync.Mutex
	snippets  []model.PacketSnippet
	maxLen    int
	errMsg    string
	hasErr    bool

	active     atomic.Bool
	totalAdded atomic.Uint64
	consumed   uint64

	wg sync.WaitGroup
}

func NewPacketSniffer(maxSnippets int) *PacketSniffer {
	return &PacketSniffer{maxLen: maxSnippets}
}

// Start spawns the capture goroutine. Idempotent: a second call while
// already active is a no-op.
func (s *PacketSniffer) Start() {
	if s.active.Swap(true) {
		return
	}
	s.wg.Add(1)
	go s.run()
}

// Stop clears the active flag and blocks until the goroutine exits. The
// goroutine notices on its next recv completion, not by force.
func (s *PacketSniffer) Stop() {
	s.active.Store(false)
	s.wg.Wait()
}

// Error returns the sniffer's current failure message, if any.
func (s *PacketSniffer) Error() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.errMsg, s.hasErr
}

// TotalCaptured returns the running count of snippets ever added, including
// ones since evicted from the ring.
func (s *PacketSniffer) TotalCaptured() uint64 {
	return s.totalAdded.Load()
}

func (s *PacketSniffer) setError(msg string) {
	s.mu.Lock()
	s.errMsg, s.hasErr = msg, true
	s.mu.Unlock()
}

func (s *PacketSniffer) clearError() {
	s.mu.Lock()
	s.hasErr = false
	s.mu.Unlock()
}

// Recent returns the last count snippets in chronological order.
func (s *PacketSniffer) Recent(count int) []model.PacketSnippet {
	s.mu.Lock()
	defer s.mu.Unlock()
	if count >= len(s.snippets) {
		out := make([]model.PacketSnippet, len(s.snippets))
		copy(out, s.snippets)
		return out
	}
	start := len(s.snippets) - count
	out := make([]model.PacketSnippet, count)
	copy(out, s.snippets[start:])
	return out
}

// DrainNew returns snippets appended since the previous call. If the
// caller has fallen behind eviction, it receives whatever tail remains.
func (s *PacketSniffer) DrainNew() []model.PacketSnippet {
	total := s.totalAdded.Load()
	if total <= s.consumed {
		return nil
	}
	newCount := total - s.consumed
	s.consumed = total

	s.mu.Lock()
	defer s.mu.Unlock()
	n := uint64(len(s.snippets))
	skip := uint64(0)
	if n > newCount {
		skip = n - newCount
	}
	out := make([]model.PacketSnippet, n-skip)
	copy(out, s.snippets[skip:])
	return out
}

// run performs the capture sequence: initialize, resolve the local
// address, open and configure a promiscuous raw socket, then loop
// reading packets until stopped.
func (s *PacketSniffer) run() {
	defer s.wg.Done()
	defer s.active.Store(false)

	if err := windows.WSAStartup(uint32(0x0202), &windows.WSAData{}); err != nil {
		s.setError("WSAStartup failed")
		return
	}
	defer windows.WSACleanup()

	localIP, ok := localIPv4()
	if !ok {
		s.setError("Could not determine local IP")
		return
	}

	sock, err := windows.Socket(windows.AF_INET, windows.SOCK_RAW, 0)
	if err != nil {
		s.setError("Raw socket creation failed (run as Administrator)")
		return
	}
	defer windows.Closesocket(sock)

	addr := &windows.SockaddrInet4{Port: 0, Addr: localIP}
	if err := windows.Bind(sock, addr); err != nil {
		s.setError("Socket bind failed")
		return
	}

	inBuf := uint32(rcvallOn)
	var outLen uint32
	if err := windows.WSAIoctl(
		sock, sioRCVALL,
		(*byte)(unsafe.Pointer(&inBuf)), 4,
		nil, 0,
		&outLen, nil, 0,
	); err != nil {
		s.setError("SIO_RCVALL failed (requires Administrator privileges)")
		return
	}

	s.clearError()

	buf := make([]byte, 65535)
	for s.active.Load() {
		n, _, err := windows.Recvfrom(sock, buf, 0)
		if err != nil || n <= 0 || !s.active.Load() {
			break
		}
		snippet, ok := parsePacket(buf[:n], localIP)
		if !ok {
			continue
		}
		s.push(snippet)
	}
}

func (s *PacketSniffer) push(snip model.PacketSnippet) {
	s.mu.Lock()
	s.snippets = append(s.snippets, snip)
	s.totalAdded.Add(1)
	if over := len(s.snippets) - s.maxLen; over > 0 {
		s.snippets = s.snippets[over:]
	}
	s.mu.Unlock()
}

// localIPv4 resolves the host's own non-loopback IPv4 address by hostname
// lookup, the Go stdlib equivalent of a gethostname+getaddrinfo sequence.
func localIPv4() ([4]byte, bool) {
	var zero [4]byte
	hostname, err := os.Hostname()
	if err != nil {
		return zero, false
	}
	addrs, err := net.LookupIP(hostname)
	if err != nil {
		return zero, false
	}
	for _, addr := range addrs {
		v4 := addr.To4()
		if v4 == nil || v4.IsLoopback() || v4.IsUnspecified() {
			continue
		}
		var out [4]byte
		copy(out[:], v4)
		return out, true
	}
	return zero, false
}

// parsePacket does an IPv4-only header parse, TCP/UDP port and
// payload-offset extraction, and the best-snippet heuristic.
func parsePacket(pkt []byte, localIP [4]byte) (model.PacketSnippet, bool) {
	var zero model.PacketSnippet
	if len(pkt) < 20 {
		return zero, false
	}
	if version := (pkt[0] >> 4) & 0xF; version != 4 {
		return zero, false
	}
	ihl := int(pkt[0]&0xF) * 4
	if len(pkt) < ihl {
		return zero, false
	}

	proto := pkt[9]
	srcBytes := [4]byte{pkt[12], pkt[13], pkt[14], pkt[15]}
	dstBytes := [4]byte{pkt[16], pkt[17], pkt[18], pkt[19]}
	srcIP := net.IPv4(srcBytes[0], srcBytes[1], srcBytes[2], srcBytes[3])
	dstIP := net.IPv4(dstBytes[0], dstBytes[1], dstBytes[2], dstBytes[3])

	if srcIP.IsLoopback() && dstIP.IsLoopback() {
		return zero, false
	}

	var srcPort, dstPort uint16
	var payloadOffset int
	var protocol model.Protocol

	switch proto {
	case 6: // TCP
		if len(pkt) < ihl+20 {
			return zero, false
		}
		srcPort = uint16(pkt[ihl])<<8 | uint16(pkt[ihl+1])
		dstPort = uint16(pkt[ihl+2])<<8 | uint16(pkt[ihl+3])
		tcpHdrLen := int((pkt[ihl+12]>>4)&0xF) * 4
		payloadOffset = ihl + tcpHdrLen
		protocol = model.TCP
	case 17: // UDP
		if len(pkt) < ihl+8 {
			return zero, false
		}
		srcPort = uint16(pkt[ihl])<<8 | uint16(pkt[ihl+1])
		dstPort = uint16(pkt[ihl+2])<<8 | uint16(pkt[ihl+3])
		payloadOffset = ihl + 8
		protocol = model.UDP
	default:
		return zero, false
	}

	if payloadOffset >= len(pkt) {
		return zero, false
	}
	payload := pkt[payloadOffset:]
	if len(payload) == 0 {
		return zero, false
	}

	snippet := extractBestSnippet(payload, maxSnippetLen)
	if snippet == "" {
		return zero, false
	}

	direction := model.Inbound
	if srcBytes == localIP {
		direction = model.Outbound
	}

	return model.PacketSnippet{
		Time:        time.Now(),
		Direction:   direction,
		SrcAddr:     srcIP.String(),
		SrcPort:     srcPort,
		DstAddr:     dstIP.String(),
		DstPort:     dstPort,
		Protocol:    protocol,
		Snippet:     snippet,
		PayloadSize: len(payload),
	}, true
}

// extractBestSnippet scans payload for printable-ASCII runs, scores each
// by length * readability ratio, and renders the best run as display
// text. Returns "" if nothing sufficiently readable is found.
func extractBestSnippet(data []byte, maxLen int) string {
	type run struct{ start, end int }
	var runs []run

	runStart := -1
	for i, b := range data {
		isText := (b >= 0x20 && b <= 0x7E) || b == '\r' || b == '\n' || b == '\t'
		if isText {
			if runStart < 0 {
				runStart = i
			}
		} else if runStart >= 0 {
			if i-runStart >= minSnippetRunLen {
				runs = append(runs, run{runStart, i})
			}
			runStart = -1
		}
	}
	if runStart >= 0 && len(data)-runStart >= minSnippetRunLen {
		runs = append(runs, run{runStart, len(data)})
	}
	if len(runs) == 0 {
		return ""
	}

	bestScore := -1
	bestIdx := 0
	for i, r := range runs {
		slice := data[r.start:r.end]
		ratio := (countScoreChars(slice) * 100) / max(len(slice), 1)
		score := len(slice) * ratio
		if score > bestScore {
			bestScore = score
			bestIdx = i
		}
	}

	chosen := data[runs[bestIdx].start:runs[bestIdx].end]
	ratio := (countReadabilityChars(chosen) * 100) / max(len(chosen), 1)
	if ratio < 40 {
		return ""
	}

	return renderSnippet(chosen, maxLen)
}

func isScoreChar(b byte) bool {
	switch {
	case b >= 'a' && b <= 'z', b >= 'A' && b <= 'Z', b >= '0' && b <= '9':
		return true
	case b == ' ', b == '/', b == ':', b == '.', b == ',', b == '-', b == '=', b == '\n', b == '\r':
		return true
	}
	return false
}

func countScoreChars(data []byte) int {
	n := 0
	for _, b := range data {
		if isScoreChar(b) {
			n++
		}
	}
	return n
}

// isReadabilityChar adds a wider punctuation set than isScoreChar, used
// for the stricter 40%-threshold check after a run has already been
// picked as the best candidate.
func isReadabilityChar(b byte) bool {
	if isScoreChar(b) {
		return true
	}
	switch b {
	case '_', '?', '&', '"', '\'', '{', '}', '[', ']':
		return true
	}
	return false
}

func countReadabilityChars(data []byte) int {
	n := 0
	for _, b := range data {
		if isReadabilityChar(b) {
			n++
		}
	}
	return n
}

// renderSnippet copies up to maxLen printable characters, collapsing any
// run of whitespace bytes into a single " | " separator.
func renderSnippet(data []byte, maxLen int) string {
	out := make([]byte, 0, maxLen)
	lastWasWS := false
	for _, b := range data {
		if len(out) >= maxLen {
			break
		}
		switch {
		case b >= 0x20 && b <= 0x7E:
			out = append(out, b)
			lastWasWS = false
		case b == '\r' || b == '\n' || b == '\t':
			if !lastWasWS {
				out = append(out, ' ', '|', ' ')
				lastWasWS = true
			}
		}
	}
	s := strings.TrimSuffix(string(out), " | ")
	return strings.TrimSpace(s)
}
