package engagement

import (
	"fmt"
	"strconv"
	"time"

	"github.com/lectern-app/lectern/internal/domain"
	"github.com/lectern-app/lectern/internal/infra/sqlite"
)

// pointsKey is the engagement KV key holding the additive points total.
const pointsKey = "points_total"

// Counters is the aggregate snapshot fed to requirement checks. It is
// derived from the progress store and streak state at evaluation time;
// the evaluator itself reads nothing else.
type Counters struct {
	DocsCompleted  int
	CategoryRatios map[string]float64 // completed/total per category
	StreakDays     int
	Now            time.Time // time-of-day and day-of-week requirements
}

// AchievementService evaluates the static catalog against counters and
// records unlocks. Unlocking is idempotent: an already-unlocked id is a
// no-op, and the points total grows by each achievement's value exactly
// once, at the locked→unlocked transition.
type AchievementService struct {
	db      *sqlite.DB
	catalog []domain.Achievement
}

// NewAchievementService creates an achievement service with the shipped catalog.
func NewAchievementService(db *sqlite.DB) *AchievementService {
	return &AchievementService{db: db, catalog: Catalog()}
}

// CheckAndUnlock evaluates every catalog entry and unlocks the ones whose
// requirement is now met. Returns only newly unlocked achievements.
func (s *AchievementService) CheckAndUnlock(c Counters) ([]domain.Achievement, error) {
	var newly []domain.Achievement

	for _, def := range s.catalog {
		unlocked, err := s.db.IsAchievementUnlocked(def.ID)
		if err != nil {
			return nil, fmt.Errorf("check %s: %w", def.ID, err)
		}
		if unlocked || !requirementMet(def.Requirement, c) {
			continue
		}

		isNew, err := s.db.UnlockAchievement(def.ID, c.Now)
		if err != nil {
			return nil, fmt.Errorf("unlock %s: %w", def.ID, err)
		}
		if !isNew {
			continue // Lost the race to an earlier unlock — no points
		}

		if err := s.addPoints(def.Points); err != nil {
			return nil, fmt.Errorf("points for %s: %w", def.ID, err)
		}
		newly = append(newly, def)
	}

	return newly, nil
}

// Progress returns the unlocked set and the accumulated points total.
func (s *AchievementService) Progress() (domain.AchievementProgress, error) {
	unlocked, err := s.db.ListUnlockedAchievements()
	if err != nil {
		return domain.AchievementProgress{}, err
	}
	points, err := s.totalPoints()
	if err != nil {
		return domain.AchievementProgress{}, err
	}
	return domain.AchievementProgress{Unlocked: unlocked, TotalPoints: points}, nil
}

// Catalog returns all achievement definitions (for display).
func (s *AchievementService) Catalog() []domain.Achievement {
	return s.catalog
}

// TotalCount returns the number of defined achievements.
func (s *AchievementService) TotalCount() int {
	return len(s.catalog)
}

// requirementMet compares one declarative requirement against the counters.
func requirementMet(r domain.Requirement, c Counters) bool {
	switch r.Type {
	case domain.ReqDocsRead:
		return c.DocsCompleted >= r.Value

	case domain.ReqCategoryComplete:
		ratio, ok := c.CategoryRatios[r.Category]
		return ok && ratio >= 1.0

	case domain.ReqStreak:
		return c.StreakDays >= r.Value

	case domain.ReqTimeOfDay:
		if c.Now.IsZero() {
			return false
		}
		if r.Weekend {
			wd := c.Now.Weekday()
			return wd == time.Saturday || wd == time.Sunday
		}
		h := c.Now.Hour()
		return h >= r.StartHour && h < r.EndHour

	default:
		return false
	}
}

// addPoints increments the points total additively. Never recomputed
// from scratch, so re-evaluation cannot double count.
func (s *AchievementService) addPoints(points int) error {
	current, err := s.totalPoints()
	if err != nil {
		return err
	}
	return s.db.SetEngagement(pointsKey, strconv.Itoa(current+points))
}

func (s *AchievementService) totalPoints() (int, error) {
	v, err := s.db.GetEngagement(pointsKey)
	if err != nil {
		return 0, err
	}
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, nil // Corrupt value — treat as empty, next unlock rewrites it
	}
	return n, nil
}
