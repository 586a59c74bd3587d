package tracker

import (
	"testing"
	"time"
)

func TestEstimateKnownValues(t *testing.T) {
	est := DefaultSpeeds().Estimate(1000)

	if want := 400 * time.Second; est.Minimum != want {
		t.Errorf("Minimum = %v, want %v", est.Minimum, want)
	}
	if want := 300 * time.Second; est.Average != want {
		t.Errorf("Average = %v, want %v", est.Average, want)
	}
	if want := 200 * time.Second; est.Fast != want {
		t.Errorf("Fast = %v, want %v", est.Fast, want)
	}
}

func TestEstimateOrdering(t *testing.T) {
	for _, words := range []int{100, 500, 2000, 50000} {
		est := DefaultSpeeds().Estimate(words)
		if !(est.Fast < est.Average && est.Average < est.Minimum) {
			t.Errorf("words=%d: want Fast < Average < Minimum, got %v / %v / %v",
				words, est.Fast, est.Average, est.Minimum)
		}
	}
}

func TestNormalizeWordCount(t *testing.T) {
	tests := []struct {
		in   int
		want int
	}{
		{0, 1000},  // Failed measurement falls back
		{-5, 1000}, // Negative counts are a failed measurement too
		{50, 100},  // Short pages floor at 100
		{100, 100},
		{150, 150},
		{20000, 20000},
	}

	for _, tt := range tests {
		if got := NormalizeWordCount(tt.in); got != tt.want {
			t.Errorf("NormalizeWordCount(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestEstimateNeverZero(t *testing.T) {
	est := DefaultSpeeds().Estimate(-100)
	if est.Average <= 0 {
		t.Errorf("Average = %v for invalid word count, want > 0", est.Average)
	}
}
