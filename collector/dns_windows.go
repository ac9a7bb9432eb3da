//go:build windows

package collector

import (
	"bufio"
	"net"
	"os/exec"
	"strings"
	"unsafe"

	"golang.org/x/sys/windows"

	"github.com/ftahirops/xnet/model"
)

var (
	dnsapi                   = windows.NewLazySystemDLL("dnsapi.dll")
	procDnsGetCacheDataTable = dnsapi.NewProc("DnsGetCacheDataTable")
	procDnsQueryW            = dnsapi.NewProc("DnsQuery_W")
	procDnsRecordListFree    = dnsapi.NewProc("DnsRecordListFree")
)

const (
	dnsTypeA    = 1
	dnsTypeAAAA = 28

	dnsQueryNoWireQuery = 0x10
	dnsFreeRecordList   = 1

	// ipconfigFallbackEvery controls how often the slower, documented
	// ipconfig path supplements the undocumented cache-table API: every
	// 10th tick is frequent enough to pick up names the API missed
	// without spawning a subprocess on every refresh.
	ipconfigFallbackEvery = 10
)

// dnsCacheEntry mirrors DNS_CACHE_ENTRY, walked as a singly linked list
// returned by DnsGetCacheDataTable.
type dnsCacheEntry struct {
	Next       *dnsCacheEntry
	Name       *uint16
	Type       uint16
	DataLength uint16
	Flags      uint32
}

// dnsRecord mirrors DNS_RECORD. Data is sized generously since the real
// union can carry record types larger than A/AAAA; only the first bytes
// are ever interpreted here.
type dnsRecord struct {
	Next       *dnsRecord
	Name       *uint16
	Type       uint16
	DataLength uint16
	Flags      uint32
	Ttl        uint32
	Reserved   uint32
	Data       [64]byte
}

// DnsCollector keeps the shared DnsCache fresh. It mutates model.DnsCache
// directly rather than a Snapshot; the engine then copies each
// connection's hostname from the cache onto the snapshot's connections
// (engine.attachHostnames).
type DnsCollector struct {
	tick int
}

func NewDnsCollector() *DnsCollector {
	return &DnsCollector{}
}

// Refresh populates cache from the live resolver cache. The documented
// ipconfig fallback only runs every ipconfigFallbackEvery calls; the
// undocumented but fast DnsGetCacheDataTable API runs every time.
func (d *DnsCollector) Refresh(cache *model.DnsCache) {
	for ip, name := range readDnsCacheAPI() {
		cache.Insert(ip, name)
	}

	d.tick++
	if d.tick%ipconfigFallbackEvery == 0 {
		for ip, name := range readDnsCacheIpconfig() {
			cache.Insert(ip, name)
		}
	}
}

// readDnsCacheAPI walks the OS resolver's in-memory cache table and
// re-queries each A/AAAA name with DNS_QUERY_NO_WIRE_QUERY so it resolves
// to a numeric address without touching the network.
func readDnsCacheAPI() map[string]string {
	out := make(map[string]string)

	var head *dnsCacheEntry
	ret, _, _ := procDnsGetCacheDataTable.Call(uintptr(unsafe.Pointer(&head)))
	if ret == 0 || head == nil {
		return out
	}

	for entry := head; entry != nil; entry = entry.Next {
		if entry.Name == nil || (entry.Type != dnsTypeA && entry.Type != dnsTypeAAAA) {
			continue
		}
		name := utf16PtrToString(entry.Name)
		if name == "" || name == "." {
			continue
		}

		nameW, err := windows.UTF16PtrFromString(name)
		if err != nil {
			continue
		}

		var records *dnsRecord
		status, _, _ := procDnsQueryW.Call(
			uintptr(unsafe.Pointer(nameW)),
			uintptr(entry.Type),
			uintptr(dnsQueryNoWireQuery),
			0,
			uintptr(unsafe.Pointer(&records)),
			0,
		)
		if status != 0 || records == nil {
			continue
		}

		for rec := records; rec != nil; rec = rec.Next {
			var ip string
			switch rec.Type {
			case dnsTypeA:
				ip = net.IPv4(rec.Data[0], rec.Data[1], rec.Data[2], rec.Data[3]).String()
			case dnsTypeAAAA:
				ip = net.IP(rec.Data[:16]).String()
			default:
				continue
			}
			if _, exists := out[ip]; !exists {
				out[ip] = name
			}
		}
		procDnsRecordListFree.Call(uintptr(unsafe.Pointer(records)), dnsFreeRecordList)
	}

	return out
}

// readDnsCacheIpconfig parses `ipconfig /displaydns`, the slower but
// fully documented path, as a supplement for names the API missed.
func readDnsCacheIpconfig() map[string]string {
	out := make(map[string]string)

	cmd := exec.Command("ipconfig", "/displaydns")
	output, err := cmd.Output()
	if err != nil {
		return out
	}

	var currentName string
	scanner := bufio.NewScanner(strings.NewReader(string(output)))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		switch {
		case strings.HasPrefix(line, "Record Name"):
			if val := afterColon(line); val != "" && val != "." {
				currentName = val
			}
		case strings.HasPrefix(line, "A (Host) Record"), strings.HasPrefix(line, "A (Host)"):
			if currentName == "" {
				continue
			}
			if val := afterColon(line); val != "" {
				if ip := net.ParseIP(val); ip != nil && ip.To4() != nil {
					if _, exists := out[ip.String()]; !exists {
						out[ip.String()] = currentName
					}
				}
			}
		case strings.HasPrefix(line, "AAAA Record"):
			if currentName == "" {
				continue
			}
			if val := afterColon(line); val != "" {
				if ip := net.ParseIP(val); ip != nil {
					if _, exists := out[ip.String()]; !exists {
						out[ip.String()] = currentName
					}
				}
			}
		}
	}

	return out
}

// afterColon extracts the value following the first ':' in a
// "Label . . . . . : value" ipconfig output line.
func afterColon(line string) string {
	i := strings.IndexByte(line, ':')
	if i < 0 {
		return ""
	}
	return strings.TrimSpace(line[i+1:])
}

func utf16PtrToString(p *uint16) string {
	if p == nil {
		return ""
	}
	var buf []uint16
	for i := 0; ; i++ {
		c := *(*uint16)(unsafe.Pointer(uintptr(unsafe.Pointer(p)) + uintptr(i)*2))
		if c == 0 {
			break
		}
		buf = append(buf, c)
	}
	return string(utf16Decode(buf))
}
