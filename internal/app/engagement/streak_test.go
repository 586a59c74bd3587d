package engagement

import (
	"testing"
	"time"
)

func day(d int) time.Time {
	return time.Date(2026, 3, d, 10, 0, 0, 0, time.UTC)
}

func TestStreakFirstDay(t *testing.T) {
	s := NewStreakService(testDB(t))

	if err := s.RecordReadingDay(day(2)); err != nil {
		t.Fatal(err)
	}

	streak, err := s.CurrentStreak()
	if err != nil {
		t.Fatal(err)
	}
	if streak.CurrentDays != 1 || streak.LongestDays != 1 {
		t.Errorf("streak = %+v, want 1/1", streak)
	}
}

func TestStreakSameDayIsNoOp(t *testing.T) {
	s := NewStreakService(testDB(t))

	s.RecordReadingDay(day(2))
	// Several completions on the same calendar day count once
	s.RecordReadingDay(day(2).Add(6 * time.Hour))
	s.RecordReadingDay(day(2).Add(13 * time.Hour))

	streak, _ := s.CurrentStreak()
	if streak.CurrentDays != 1 {
		t.Errorf("CurrentDays = %d, want 1", streak.CurrentDays)
	}
}

func TestStreakConsecutiveDaysExtend(t *testing.T) {
	s := NewStreakService(testDB(t))

	for d := 2; d <= 4; d++ {
		if err := s.RecordReadingDay(day(d)); err != nil {
			t.Fatal(err)
		}
	}

	streak, _ := s.CurrentStreak()
	if streak.CurrentDays != 3 {
		t.Errorf("CurrentDays = %d, want 3", streak.CurrentDays)
	}
	if streak.LongestDays != 3 {
		t.Errorf("LongestDays = %d, want 3", streak.LongestDays)
	}
}

func TestStreakGapResets(t *testing.T) {
	s := NewStreakService(testDB(t))

	s.RecordReadingDay(day(2))
	s.RecordReadingDay(day(3))
	s.RecordReadingDay(day(4))
	// Skip March 5th entirely
	s.RecordReadingDay(day(6))

	streak, _ := s.CurrentStreak()
	if streak.CurrentDays != 1 {
		t.Errorf("CurrentDays = %d after a gap, want 1", streak.CurrentDays)
	}
	// The longest streak survives the reset
	if streak.LongestDays != 3 {
		t.Errorf("LongestDays = %d, want 3", streak.LongestDays)
	}
}

func TestStreakSurvivesReopen(t *testing.T) {
	db := testDB(t)

	s := NewStreakService(db)
	s.RecordReadingDay(day(2))
	s.RecordReadingDay(day(3))

	// A new service instance over the same database sees the same state
	s2 := NewStreakService(db)
	streak, err := s2.CurrentStreak()
	if err != nil {
		t.Fatal(err)
	}
	if streak.CurrentDays != 2 {
		t.Errorf("CurrentDays = %d, want 2", streak.CurrentDays)
	}
}
