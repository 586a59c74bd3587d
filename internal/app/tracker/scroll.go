package tracker

import "math"

// DefaultCompletionPercent is the scroll depth that triggers the
// engagement check: reaching 90% counts as reaching the end.
const DefaultCompletionPercent = 90

// ScrollMonitor tracks scroll depth for one document visit.
// Reported progress is monotonic: out-of-order or repeated samples never
// regress the recorded percentage. The reached-end transition fires at
// most once per visit, independent of whether the document was already
// completed on a prior visit.
type ScrollMonitor struct {
	threshold  int
	highest    int
	reachedEnd bool
}

// NewScrollMonitor creates a monitor with the given completion threshold.
func NewScrollMonitor(threshold int) *ScrollMonitor {
	if threshold <= 0 || threshold > 100 {
		threshold = DefaultCompletionPercent
	}
	return &ScrollMonitor{threshold: threshold}
}

// ComputePercent converts a raw scroll sample to a 0–100 percentage.
// When the trackable height is zero or negative (content shorter than the
// viewport) the whole document is visible, so the result is 100.
func ComputePercent(scrollTop, documentHeight, viewportHeight float64) int {
	trackable := documentHeight - viewportHeight
	if trackable <= 0 {
		return 100
	}
	pct := int(math.Round(scrollTop / trackable * 100))
	if pct < 0 {
		return 0
	}
	if pct > 100 {
		return 100
	}
	return pct
}

// Observe feeds one percentage sample into the monitor.
// progressed is true when the sample exceeds every earlier one this
// visit; reachedEnd is true exactly once, on the sample that first
// crosses the completion threshold.
func (m *ScrollMonitor) Observe(percent int) (progressed, reachedEnd bool) {
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}

	if percent > m.highest {
		m.highest = percent
		progressed = true
	}

	if !m.reachedEnd && m.highest >= m.threshold {
		m.reachedEnd = true
		reachedEnd = true
	}
	return progressed, reachedEnd
}

// Highest returns the highest percentage observed this visit.
func (m *ScrollMonitor) Highest() int { return m.highest }

// ReachedEnd reports whether the completion threshold was crossed this visit.
func (m *ScrollMonitor) ReachedEnd() bool { return m.reachedEnd }
