package collector

import "testing"

func TestNtohs(t *testing.T) {
	tests := []struct {
		raw  uint32
		want uint16
	}{
		{0x5000, 80},  // port 80, network-byte-order low 16 bits
		{0xBB01, 443}, // port 443
		{0x0000, 0},
	}
	for _, tt := range tests {
		if got := Ntohs(tt.raw); got != tt.want {
			t.Errorf("Ntohs(0x%04X) = %d, want %d", tt.raw, got, tt.want)
		}
	}
}

func TestUtf16RoundTrip(t *testing.T) {
	want := "hello.exe"
	buf := make([]uint16, 0, len(want)+1)
	for _, r := range want {
		buf = append(buf, uint16(r))
	}
	buf = append(buf, 0) // NUL terminator

	if n := utf16PtrLen(buf); n != len(want) {
		t.Fatalf("utf16PtrLen() = %d, want %d", n, len(want))
	}
	if got := utf16ToString(buf); got != want {
		t.Fatalf("utf16ToString() = %q, want %q", got, want)
	}
}

func TestUtf16PtrLenNoTerminator(t *testing.T) {
	buf := []uint16{'a', 'b', 'c'}
	if n := utf16PtrLen(buf); n != 3 {
		t.Errorf("utf16PtrLen() with no NUL = %d, want 3 (full buffer)", n)
	}
}

func TestUtf16DecodeSurrogatePair(t *testing.T) {
	// U+1F600 (😀) as a UTF-16 surrogate pair: D83D DE00
	buf := []uint16{0xD83D, 0xDE00}
	out := utf16Decode(buf)
	if len(out) != 1 || out[0] != 0x1F600 {
		t.Fatalf("utf16Decode(surrogate pair) = %v, want single rune 0x1F600", out)
	}
}
