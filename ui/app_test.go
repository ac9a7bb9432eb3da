package ui

import "testing"

func TestSparklineAllZeroRendersBlanks(t *testing.T) {
	got := sparkline([]float64{0, 0, 0})
	want := "   "
	if got != want {
		t.Errorf("sparkline(all zero) = %q, want %q", got, want)
	}
}

func TestSparklinePeakRendersFullBlock(t *testing.T) {
	got := []rune(sparkline([]float64{0, 50, 100}))
	if len(got) != 3 {
		t.Fatalf("sparkline returned %d runes, want 3", len(got))
	}
	if got[2] != '█' {
		t.Errorf("sparkline last point (the max) = %q, want the full block '█'", got[2])
	}
	if got[0] != ' ' {
		t.Errorf("sparkline zero point = %q, want a blank", got[0])
	}
}

func TestSparklineEmptyInput(t *testing.T) {
	if got := sparkline(nil); got != "" {
		t.Errorf("sparkline(nil) = %q, want empty string", got)
	}
}
