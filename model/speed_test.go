package model

import "testing"

func TestNewSpeedHistoryIsZeroFilled(t *testing.T) {
	h := NewSpeedHistory(5)
	if h.MaxPoints() != 5 {
		t.Fatalf("MaxPoints() = %d, want 5", h.MaxPoints())
	}
	if len(h.Download) != 5 || len(h.Upload) != 5 {
		t.Fatalf("expected both series pre-filled to length 5, got %d/%d", len(h.Download), len(h.Upload))
	}
	for i, v := range h.Download {
		if v != 0 {
			t.Errorf("Download[%d] = %v, want 0", i, v)
		}
	}
}

func TestSpeedHistoryPushEvictsOldest(t *testing.T) {
	h := NewSpeedHistory(3)
	h.Push(10, 1)
	h.Push(20, 2)
	h.Push(30, 3)

	wantDown := []float64{10, 20, 30}
	wantUp := []float64{1, 2, 3}
	for i := range wantDown {
		if h.Download[i] != wantDown[i] {
			t.Errorf("Download[%d] = %v, want %v", i, h.Download[i], wantDown[i])
		}
		if h.Upload[i] != wantUp[i] {
			t.Errorf("Upload[%d] = %v, want %v", i, h.Upload[i], wantUp[i])
		}
	}

	h.Push(40, 4)
	wantDown = []float64{20, 30, 40}
	for i := range wantDown {
		if h.Download[i] != wantDown[i] {
			t.Errorf("after eviction Download[%d] = %v, want %v", i, h.Download[i], wantDown[i])
		}
	}
	if len(h.Download) != 3 {
		t.Fatalf("length must never change, got %d", len(h.Download))
	}
}

func TestNewSpeedHistoryRejectsNonPositive(t *testing.T) {
	h := NewSpeedHistory(0)
	if h.MaxPoints() != 1 {
		t.Errorf("MaxPoints() with input 0 = %d, want 1", h.MaxPoints())
	}
}
