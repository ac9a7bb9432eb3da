//go:build windows

package collector

import (
	"strings"
	"unsafe"

	"golang.org/x/sys/windows"
)

var (
	kernel32                        = windows.NewLazySystemDLL("kernel32.dll")
	procQueryFullProcessImageNameW  = kernel32.NewProc("QueryFullProcessImageNameW")
	procCreateToolhelp32Snapshot    = kernel32.NewProc("CreateToolhelp32Snapshot")
	procProcess32FirstW             = kernel32.NewProc("Process32FirstW")
	procProcess32NextW              = kernel32.NewProc("Process32NextW")
)

const (
	processQueryLimitedInformation = 0x1000

	th32csSnapProcess = 0x00000002
)

// processEntry32W mirrors PROCESSENTRY32W, used only by the toolhelp
// snapshot fallback when OpenProcess is denied (e.g. protected processes).
type processEntry32W struct {
	Size              uint32
	CntUsage          uint32
	ProcessID         uint32
	DefaultHeapID     uintptr
	ModuleID          uint32
	CntThreads        uint32
	ParentProcessID   uint32
	PriorityClassBase int32
	Flags             uint32
	ExeFile           [windows.MAX_PATH]uint16
}

// lookupProcessName resolves pid via the cheap per-PID path: the kernel's
// two reserved pseudo-processes short-circuit without touching the API,
// everything else goes through OpenProcess+QueryFullProcessImageName. ok
// is false when none of that resolves the name, leaving the batched
// toolhelp snapshot fallback (lookupViaToolhelpSnapshot) as the caller's
// next step.
func lookupProcessName(pid int) (string, bool) {
	if pid == 0 {
		return "[Kernel]", true
	}
	if pid == 4 {
		return "System", true
	}
	return queryFullProcessImageName(pid)
}

func queryFullProcessImageName(pid int) (string, bool) {
	handle, err := windows.OpenProcess(processQueryLimitedInformation, false, uint32(pid))
	if err != nil {
		return "", false
	}
	defer windows.CloseHandle(handle)

	var buf [1024]uint16
	size := uint32(len(buf))
	ret, _, _ := procQueryFullProcessImageNameW.Call(
		uintptr(handle),
		0,
		uintptr(unsafe.Pointer(&buf[0])),
		uintptr(unsafe.Pointer(&size)),
	)
	if ret == 0 || size == 0 {
		return "", false
	}

	path := utf16ToString(buf[:size])
	return baseName(path), true
}

// lookupViaToolhelpSnapshot resolves every PID in pids with a single
// process snapshot and a single Process32NextW walk, rather than one
// snapshot per PID: taking a snapshot is comparatively expensive, so it's
// spent once per tick on whatever the cheap per-PID path couldn't resolve.
// Entries in pids with no matching process are simply absent from the
// result.
func lookupViaToolhelpSnapshot(pids []int) map[int]string {
	out := make(map[int]string, len(pids))
	if len(pids) == 0 {
		return out
	}
	want := make(map[int]bool, len(pids))
	for _, pid := range pids {
		want[pid] = true
	}

	h, _, _ := procCreateToolhelp32Snapshot.Call(uintptr(th32csSnapProcess), 0)
	if h == uintptr(windows.InvalidHandle) || h == 0 {
		return out
	}
	handle := windows.Handle(h)
	defer windows.CloseHandle(handle)

	var entry processEntry32W
	entry.Size = uint32(unsafe.Sizeof(entry))

	ret, _, _ := procProcess32FirstW.Call(uintptr(handle), uintptr(unsafe.Pointer(&entry)))
	for ret != 0 {
		pid := int(entry.ProcessID)
		if want[pid] {
			out[pid] = utf16ToString(entry.ExeFile[:])
			if len(out) == len(want) {
				break
			}
		}
		ret, _, _ = procProcess32NextW.Call(uintptr(handle), uintptr(unsafe.Pointer(&entry)))
	}
	return out
}

// baseName trims a Windows path down to its final component.
func baseName(path string) string {
	if i := strings.LastIndexByte(path, '\\'); i >= 0 {
		return path[i+1:]
	}
	return path
}
