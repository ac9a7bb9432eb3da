package collector

// Ntohs converts a 32-bit kernel port field to a host-order uint16. The
// kernel's MIB_*ROW_OWNER_PID structures store the port in network byte
// order in the low 16 bits of a 32-bit field; this swaps the low two bytes.
func Ntohs(raw uint32) uint16 {
	return uint16(((raw & 0xFF) << 8) | ((raw >> 8) & 0xFF))
}

// utf16PtrLen walks a NUL-terminated UTF-16 buffer to find its length in
// code units.
func utf16PtrLen(buf []uint16) int {
	for i, c := range buf {
		if c == 0 {
			return i
		}
	}
	return len(buf)
}

// utf16ToString decodes a NUL-terminated (or full-length) UTF-16 buffer.
func utf16ToString(buf []uint16) string {
	n := utf16PtrLen(buf)
	return string(utf16Decode(buf[:n]))
}

// utf16Decode is a minimal UTF-16 -> rune decoder (surrogate-pair aware)
// used so this package doesn't need to pull in golang.org/x/text just for
// string conversion; golang.org/x/sys/windows re-exports a similar helper
// but we keep our own small one here to control allocation explicitly in
// the hot PID-resolution path.
func utf16Decode(s []uint16) []rune {
	out := make([]rune, 0, len(s))
	for i := 0; i < len(s); i++ {
		r := rune(s[i])
		if r >= 0xD800 && r <= 0xDBFF && i+1 < len(s) {
			r2 := rune(s[i+1])
			if r2 >= 0xDC00 && r2 <= 0xDFFF {
				out = append(out, ((r-0xD800)<<10|(r2-0xDC00))+0x10000)
				i++
				continue
			}
		}
		out = append(out, r)
	}
	return out
}
