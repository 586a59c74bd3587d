package tracker

import (
	"time"

	"github.com/lectern-app/lectern/internal/domain"
)

// Reading speed reference points in words per minute.
const (
	DefaultSlowWPM    = 150
	DefaultAverageWPM = 200
	DefaultFastWPM    = 300
)

const (
	// minWordCount floors very short pages so they still require a
	// non-zero dwell time.
	minWordCount = 100
	// fallbackWordCount substitutes for a failed or empty measurement
	// (content not yet rendered) so the classifier still produces a
	// sane verdict.
	fallbackWordCount = 1000
)

// Speeds holds the reading-speed constants used for estimation.
type Speeds struct {
	SlowWPM    int
	AverageWPM int
	FastWPM    int
}

// DefaultSpeeds returns the standard 150/200/300 wpm reference speeds.
func DefaultSpeeds() Speeds {
	return Speeds{SlowWPM: DefaultSlowWPM, AverageWPM: DefaultAverageWPM, FastWPM: DefaultFastWPM}
}

// Estimate derives expected reading durations from a word count.
// Pure and deterministic: duration = words / wpm minutes.
// Word counts below the floor are raised to it; non-positive counts fall
// back to the default so estimation never fails.
func (s Speeds) Estimate(wordCount int) domain.Estimate {
	words := NormalizeWordCount(wordCount)
	return domain.Estimate{
		Minimum: durationAt(words, s.SlowWPM),
		Average: durationAt(words, s.AverageWPM),
		Fast:    durationAt(words, s.FastWPM),
	}
}

// NormalizeWordCount applies the fallback and floor rules to a raw
// measured word count.
func NormalizeWordCount(wordCount int) int {
	if wordCount <= 0 {
		wordCount = fallbackWordCount
	}
	if wordCount < minWordCount {
		wordCount = minWordCount
	}
	return wordCount
}

// durationAt converts a word count at a given reading speed to a duration.
func durationAt(words, wpm int) time.Duration {
	if wpm <= 0 {
		return 0
	}
	ms := float64(words) / float64(wpm) * 60000
	return time.Duration(ms) * time.Millisecond
}
