package tracker

import (
	"fmt"
	"math"
	"time"

	"github.com/lectern-app/lectern/internal/domain"
)

// Policy holds the engagement thresholds. These are product-tuning
// parameters, not correctness invariants, so they are configurable
// rather than hard-coded.
type Policy struct {
	Speeds Speeds

	// MinimumRatio scales the fast-reader estimate down to the floor of
	// plausible engagement: a skimmer at fast-reader speed for at least
	// this fraction of that time.
	MinimumRatio float64

	// GoodRatio and ExcellentRatio grade timeSpent / average estimate.
	GoodRatio      float64
	ExcellentRatio float64

	// ScrollOnly disables the time gate entirely: every visit that
	// reaches the end of the document is judged engaged. This preserves
	// the older scroll-only tracker behavior as a policy switch.
	ScrollOnly bool
}

// DefaultPolicy returns the time-gated policy with standard thresholds.
func DefaultPolicy() Policy {
	return Policy{
		Speeds:         DefaultSpeeds(),
		MinimumRatio:   0.25,
		GoodRatio:      0.50,
		ExcellentRatio: 0.75,
	}
}

// MinimumRequired returns the least active time that counts as engagement
// for a document of the given word count.
func (p Policy) MinimumRequired(wordCount int) time.Duration {
	est := p.Speeds.Estimate(wordCount)
	return time.Duration(float64(est.Fast) * p.MinimumRatio)
}

// Classify judges a visit's accumulated active time against the estimated
// reading time for the document. Engaged is false only below the minimum;
// the three engaged outcomes differ just in grade and message.
func (p Policy) Classify(timeSpent time.Duration, wordCount int) domain.Verdict {
	est := p.Speeds.Estimate(wordCount)

	ratio := 0.0
	if est.Average > 0 {
		ratio = float64(timeSpent) / float64(est.Average)
	}

	if p.ScrollOnly {
		return domain.Verdict{
			Engaged: true,
			Ratio:   ratio,
			Level:   domain.EngagementQuick,
			Message: "Marked as read.",
		}
	}

	minimum := time.Duration(float64(est.Fast) * p.MinimumRatio)
	if timeSpent < minimum {
		deficit := minimum - timeSpent
		secs := int(math.Ceil(deficit.Seconds()))
		return domain.Verdict{
			Engaged: false,
			Ratio:   ratio,
			Level:   domain.EngagementInsufficient,
			Message: fmt.Sprintf("Keep reading — about %d more seconds to earn credit for this page.", secs),
		}
	}

	switch {
	case ratio >= p.ExcellentRatio:
		return domain.Verdict{
			Engaged: true,
			Ratio:   ratio,
			Level:   domain.EngagementExcellent,
			Message: "Excellent read — you really took your time with this one.",
		}
	case ratio >= p.GoodRatio:
		return domain.Verdict{
			Engaged: true,
			Ratio:   ratio,
			Level:   domain.EngagementGood,
			Message: "Good reading! You spent solid time with this page.",
		}
	default:
		return domain.Verdict{
			Engaged: true,
			Ratio:   ratio,
			Level:   domain.EngagementQuick,
			Message: "Good reading pace — quick, but it counts. Marked complete.",
		}
	}
}
