package domain

import "time"

// ─── Achievement Catalog Types ──────────────────────────────────────────────
// The catalog is static and versioned with the application. Adding a new
// entry never retroactively unlocks it; the evaluator must be re-run
// against current counters for it to take effect.

// RequirementType selects which counter a requirement is compared against.
type RequirementType string

const (
	ReqDocsRead         RequirementType = "docs_read"
	ReqCategoryComplete RequirementType = "category_complete"
	ReqStreak           RequirementType = "streak"
	ReqTimeOfDay        RequirementType = "time_spent"
)

// Requirement is the declarative unlock rule for one achievement.
// Value is the threshold for docs_read and streak requirements.
// Category names the target category for category_complete.
// StartHour/EndHour bound a time-of-day window and Weekend restricts to
// Saturday/Sunday for time_spent requirements.
type Requirement struct {
	Type      RequirementType `json:"type"`
	Value     int             `json:"value,omitempty"`
	Category  string          `json:"category,omitempty"`
	StartHour int             `json:"start_hour,omitempty"`
	EndHour   int             `json:"end_hour,omitempty"`
	Weekend   bool            `json:"weekend,omitempty"`
}

// Rarity grades how hard an achievement is to earn.
type Rarity string

const (
	RarityCommon    Rarity = "common"
	RarityUncommon  Rarity = "uncommon"
	RarityRare      Rarity = "rare"
	RarityEpic      Rarity = "epic"
	RarityLegendary Rarity = "legendary"
)

// Achievement is one catalog entry. Not mutated at runtime.
type Achievement struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Category    string      `json:"category"`
	Requirement Requirement `json:"requirement"`
	Points      int         `json:"points"`
	Rarity      Rarity      `json:"rarity"`
}

// UnlockedAchievement records when an achievement was earned.
type UnlockedAchievement struct {
	ID         string    `json:"id"`
	UnlockedAt time.Time `json:"unlocked_at"`
}

// AchievementProgress is the user's derived achievement state.
// An id appears in Unlocked at most once, and TotalPoints is the additive
// sum of points granted at each locked→unlocked transition.
type AchievementProgress struct {
	Unlocked    []UnlockedAchievement `json:"unlocked"`
	TotalPoints int                   `json:"total_points"`
}
