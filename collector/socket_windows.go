//go:build windows

package collector

import (
	"encoding/binary"
	"fmt"
	"net"
	"unsafe"

	"golang.org/x/sys/windows"

	"github.com/ftahirops/xnet/model"
)

var (
	iphlpapi               = windows.NewLazySystemDLL("iphlpapi.dll")
	procGetExtendedTCPTable = iphlpapi.NewProc("GetExtendedTcpTable")
	procGetExtendedUDPTable = iphlpapi.NewProc("GetExtendedUdpTable")
)

const (
	afINET  = 2
	afINET6 = 23

	tcpTableOwnerPIDAll = 5
	udpTableOwnerPID    = 1
)

// mibTCPRowOwnerPID mirrors MIB_TCPROW_OWNER_PID. Field order is load-bearing:
// the table is read directly out of a raw byte buffer returned by the kernel.
type mibTCPRowOwnerPID struct {
	State       uint32
	LocalAddr   uint32
	LocalPort   uint32
	RemoteAddr  uint32
	RemotePort  uint32
	OwningPID   uint32
}

// mibTCP6RowOwnerPID mirrors MIB_TCP6ROW_OWNER_PID.
type mibTCP6RowOwnerPID struct {
	LocalAddr      [16]byte
	LocalScopeID   uint32
	LocalPort      uint32
	RemoteAddr     [16]byte
	RemoteScopeID  uint32
	RemotePort     uint32
	State          uint32
	OwningPID      uint32
}

// mibUDPRowOwnerPID mirrors MIB_UDPROW_OWNER_PID.
type mibUDPRowOwnerPID struct {
	LocalAddr uint32
	LocalPort uint32
	OwningPID uint32
}

// mibUDP6RowOwnerPID mirrors MIB_UDP6ROW_OWNER_PID.
type mibUDP6RowOwnerPID struct {
	LocalAddr     [16]byte
	LocalScopeID  uint32
	LocalPort     uint32
	OwningPID     uint32
}

// SocketCollector reads the live TCP/UDP socket tables from the kernel and
// resolves owning process names, populating a Snapshot's Connections.
type SocketCollector struct {
	pids *model.PidCache
}

func NewSocketCollector(pids *model.PidCache) *SocketCollector {
	return &SocketCollector{pids: pids}
}

func (c *SocketCollector) Collect(snap *model.Snapshot) error {
	conns := make([]model.Connection, 0, 512)

	var errs []string
	if err := fetchTCP4(&conns); err != nil {
		errs = append(errs, err.Error())
	}
	if err := fetchTCP6(&conns); err != nil {
		errs = append(errs, err.Error())
	}
	if err := fetchUDP4(&conns); err != nil {
		errs = append(errs, err.Error())
	}
	if err := fetchUDP6(&conns); err != nil {
		errs = append(errs, err.Error())
	}

	resolveProcessNames(conns, c.pids)

	snap.Connections = conns
	snap.Errors = append(snap.Errors, errs...)
	return nil
}

// resolveProcessNames fills in ProcessName for every connection, consulting
// the shared PID cache first, then the cheap per-PID OpenProcess lookup.
// Whatever is still unresolved after that is batched into a single
// toolhelp snapshot walk rather than taking one snapshot per PID.
func resolveProcessNames(conns []model.Connection, pids *model.PidCache) {
	type pending struct {
		idx int
		pid int
	}
	var unresolved []pending
	need := make(map[int]bool)

	for i := range conns {
		pid := conns[i].PID
		if name, ok := pids.Lookup(pid); ok {
			conns[i].ProcessName = name
			continue
		}
		if name, ok := lookupProcessName(pid); ok {
			conns[i].ProcessName = name
			pids.Insert(pid, name)
			continue
		}
		unresolved = append(unresolved, pending{idx: i, pid: pid})
		need[pid] = true
	}

	if len(unresolved) == 0 {
		return
	}

	pidList := make([]int, 0, len(need))
	for pid := range need {
		pidList = append(pidList, pid)
	}
	found := lookupViaToolhelpSnapshot(pidList)

	for _, p := range unresolved {
		if name, ok := found[p.pid]; ok {
			conns[p.idx].ProcessName = name
			pids.Insert(p.pid, name)
			continue
		}
		conns[p.idx].ProcessName = fmt.Sprintf("PID:%d", p.pid)
		// Failures (the "PID:<n>" placeholder) are deliberately never
		// cached so a later tick can retry once the process is visible.
	}
}

func fetchTCP4(conns *[]model.Connection) error {
	buf, n, err := queryTable(procGetExtendedTCPTable, afINET, tcpTableOwnerPIDAll)
	if err != nil || n == 0 {
		return err
	}
	rowSize := int(unsafe.Sizeof(mibTCPRowOwnerPID{}))
	for i := 0; i < n; i++ {
		off := 4 + i*rowSize
		if off+rowSize > len(buf) {
			break
		}
		row := (*mibTCPRowOwnerPID)(unsafe.Pointer(&buf[off]))
		*conns = append(*conns, model.Connection{
			Protocol: model.TCP,
			Local: model.Endpoint{
				Addr: ipv4String(row.LocalAddr),
				Port: Ntohs(row.LocalPort),
			},
			Remote: model.Endpoint{
				Addr: ipv4String(row.RemoteAddr),
				Port: Ntohs(row.RemotePort),
			},
			State: model.TcpStateFromRaw(int(row.State)),
			PID:   int(row.OwningPID),
		})
	}
	return nil
}

func fetchTCP6(conns *[]model.Connection) error {
	buf, n, err := queryTable(procGetExtendedTCPTable, afINET6, tcpTableOwnerPIDAll)
	if err != nil || n == 0 {
		return err
	}
	rowSize := int(unsafe.Sizeof(mibTCP6RowOwnerPID{}))
	for i := 0; i < n; i++ {
		off := 4 + i*rowSize
		if off+rowSize > len(buf) {
			break
		}
		row := (*mibTCP6RowOwnerPID)(unsafe.Pointer(&buf[off]))
		*conns = append(*conns, model.Connection{
			Protocol: model.TCP,
			Local: model.Endpoint{
				Addr: net.IP(row.LocalAddr[:]).String(),
				Port: Ntohs(row.LocalPort),
			},
			Remote: model.Endpoint{
				Addr: net.IP(row.RemoteAddr[:]).String(),
				Port: Ntohs(row.RemotePort),
			},
			State: model.TcpStateFromRaw(int(row.State)),
			PID:   int(row.OwningPID),
		})
	}
	return nil
}

func fetchUDP4(conns *[]model.Connection) error {
	buf, n, err := queryTable(procGetExtendedUDPTable, afINET, udpTableOwnerPID)
	if err != nil || n == 0 {
		return err
	}
	rowSize := int(unsafe.Sizeof(mibUDPRowOwnerPID{}))
	for i := 0; i < n; i++ {
		off := 4 + i*rowSize
		if off+rowSize > len(buf) {
			break
		}
		row := (*mibUDPRowOwnerPID)(unsafe.Pointer(&buf[off]))
		*conns = append(*conns, model.Connection{
			Protocol: model.UDP,
			Local: model.Endpoint{
				Addr: ipv4String(row.LocalAddr),
				Port: Ntohs(row.LocalPort),
			},
			PID: int(row.OwningPID),
		})
	}
	return nil
}

func fetchUDP6(conns *[]model.Connection) error {
	buf, n, err := queryTable(procGetExtendedUDPTable, afINET6, udpTableOwnerPID)
	if err != nil || n == 0 {
		return err
	}
	rowSize := int(unsafe.Sizeof(mibUDP6RowOwnerPID{}))
	for i := 0; i < n; i++ {
		off := 4 + i*rowSize
		if off+rowSize > len(buf) {
			break
		}
		row := (*mibUDP6RowOwnerPID)(unsafe.Pointer(&buf[off]))
		*conns = append(*conns, model.Connection{
			Protocol: model.UDP,
			Local: model.Endpoint{
				Addr: net.IP(row.LocalAddr[:]).String(),
				Port: Ntohs(row.LocalPort),
			},
			PID: int(row.OwningPID),
		})
	}
	return nil
}

// queryTable runs the standard two-phase GetExtended{Tcp,Udp}Table dance:
// a first call with a nil buffer to learn the required size, then a second
// call to fill it. A non-zero return on the second call aborts that table:
// it yields no rows this tick and an error that Collect records in
// snap.Errors rather than treating as fatal.
func queryTable(proc *windows.LazyProc, af, class uint32) ([]byte, int, error) {
	var size uint32
	proc.Call(0, uintptr(unsafe.Pointer(&size)), 0, uintptr(af), uintptr(class), 0)
	if size == 0 {
		return nil, 0, nil
	}

	buf := make([]byte, size)
	ret, _, _ := proc.Call(
		uintptr(unsafe.Pointer(&buf[0])),
		uintptr(unsafe.Pointer(&size)),
		0,
		uintptr(af),
		uintptr(class),
		0,
	)
	if ret != 0 {
		return nil, 0, fmt.Errorf("socket table query failed: status %d", ret)
	}
	if len(buf) < 4 {
		return nil, 0, nil
	}
	n := int(binary.LittleEndian.Uint32(buf[0:4]))
	return buf, n, nil
}

func ipv4String(addr uint32) string {
	return net.IPv4(byte(addr), byte(addr>>8), byte(addr>>16), byte(addr>>24)).String()
}
