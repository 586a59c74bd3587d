package engagement

import (
	"fmt"
	"strconv"
	"time"

	"github.com/lectern-app/lectern/internal/domain"
	"github.com/lectern-app/lectern/internal/infra/sqlite"
)

// StreakService tracks consecutive calendar days with at least one
// document read. A broken streak resets silently; there is no warning
// notification and no recovery mechanic.
type StreakService struct {
	db *sqlite.DB
}

// NewStreakService creates a streak service.
func NewStreakService(db *sqlite.DB) *StreakService {
	return &StreakService{db: db}
}

// CurrentStreak loads the current streak state.
func (s *StreakService) CurrentStreak() (domain.Streak, error) {
	var streak domain.Streak

	current, err := s.db.GetEngagement("streak_current")
	if err != nil {
		return streak, fmt.Errorf("get streak_current: %w", err)
	}
	if current != "" {
		streak.CurrentDays, _ = strconv.Atoi(current)
	}

	longest, err := s.db.GetEngagement("streak_longest")
	if err != nil {
		return streak, fmt.Errorf("get streak_longest: %w", err)
	}
	if longest != "" {
		streak.LongestDays, _ = strconv.Atoi(longest)
	}

	lastDate, err := s.db.GetEngagement("streak_last_date")
	if err != nil {
		return streak, fmt.Errorf("get streak_last_date: %w", err)
	}
	if lastDate != "" {
		ts, _ := strconv.ParseInt(lastDate, 10, 64)
		streak.LastDate = time.Unix(ts, 0).UTC()
	}

	return streak, nil
}

// RecordReadingDay records that a document was read on the given day.
// Same day: no-op. Consecutive day: extend. Any gap: reset to 1.
func (s *StreakService) RecordReadingDay(day time.Time) error {
	streak, err := s.CurrentStreak()
	if err != nil {
		return err
	}

	today := day.UTC().Truncate(24 * time.Hour)

	switch {
	case streak.LastDate.IsZero():
		// First reading day ever
		streak.CurrentDays = 1

	case today.Equal(streak.LastDate):
		return nil // Already counted today

	case today.Sub(streak.LastDate) <= 24*time.Hour:
		streak.CurrentDays++

	default:
		streak.CurrentDays = 1
	}

	streak.LastDate = today
	if streak.CurrentDays > streak.LongestDays {
		streak.LongestDays = streak.CurrentDays
	}

	return s.saveStreak(streak)
}

// saveStreak persists streak state to the engagement KV table.
func (s *StreakService) saveStreak(streak domain.Streak) error {
	pairs := map[string]string{
		"streak_current":   strconv.Itoa(streak.CurrentDays),
		"streak_longest":   strconv.Itoa(streak.LongestDays),
		"streak_last_date": strconv.FormatInt(streak.LastDate.Unix(), 10),
	}
	for k, v := range pairs {
		if err := s.db.SetEngagement(k, v); err != nil {
			return fmt.Errorf("save %s: %w", k, err)
		}
	}
	return nil
}
