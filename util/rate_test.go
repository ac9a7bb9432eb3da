package util

import (
	"testing"
	"time"
)

func TestRate(t *testing.T) {
	tests := []struct {
		name string
		prev uint64
		curr uint64
		dt   time.Duration
		want float64
	}{
		{"one second elapsed", 100, 1100, time.Second, 1000},
		{"half second elapsed", 0, 500, 500 * time.Millisecond, 1000},
		{"zero elapsed yields zero", 0, 500, 0, 0},
		{"counter reset yields zero", 1000, 100, time.Second, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Rate(tt.prev, tt.curr, tt.dt); got != tt.want {
				t.Errorf("Rate(%d, %d, %v) = %v, want %v", tt.prev, tt.curr, tt.dt, got, tt.want)
			}
		})
	}
}

func TestDelta(t *testing.T) {
	tests := []struct {
		name string
		prev uint64
		curr uint64
		want uint64
	}{
		{"normal increase", 10, 25, 15},
		{"no change", 10, 10, 0},
		{"counter wrap saturates to zero", 25, 10, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Delta(tt.prev, tt.curr); got != tt.want {
				t.Errorf("Delta(%d, %d) = %d, want %d", tt.prev, tt.curr, got, tt.want)
			}
		})
	}
}
