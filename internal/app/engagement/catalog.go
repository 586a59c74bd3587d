// Package engagement implements the Lectern gamification layer:
// the achievement evaluator and the reading streak.
// Design rule: rewards recognize real reading, they never manufacture it.
package engagement

import "github.com/lectern-app/lectern/internal/domain"

// ─── Achievement Catalog ────────────────────────────────────────────────────
// The catalog ships with the application and is not user-editable at
// runtime. Requirements are declarative: each entry names the counter it
// is compared against, so the evaluator stays a single rule loop.

// Catalog returns the full achievement catalog.
func Catalog() []domain.Achievement {
	return []domain.Achievement{
		// ── Reading volume ─────────────────────────────────────────────
		{
			ID: "first_page", Name: "First Page", Category: "reading",
			Description: "Finish reading your first document.",
			Requirement: domain.Requirement{Type: domain.ReqDocsRead, Value: 1},
			Points:      10, Rarity: domain.RarityCommon,
		},
		{
			ID: "curious_mind", Name: "Curious Mind", Category: "reading",
			Description: "Finish reading 5 documents.",
			Requirement: domain.Requirement{Type: domain.ReqDocsRead, Value: 5},
			Points:      25, Rarity: domain.RarityCommon,
		},
		{
			ID: "knowledge_seeker", Name: "Knowledge Seeker", Category: "reading",
			Description: "Finish reading 15 documents.",
			Requirement: domain.Requirement{Type: domain.ReqDocsRead, Value: 15},
			Points:      50, Rarity: domain.RarityUncommon,
		},
		{
			ID: "scholar", Name: "Scholar", Category: "reading",
			Description: "Finish reading 30 documents.",
			Requirement: domain.Requirement{Type: domain.ReqDocsRead, Value: 30},
			Points:      100, Rarity: domain.RarityRare,
		},
		{
			ID: "librarian", Name: "Librarian", Category: "reading",
			Description: "Finish reading 75 documents.",
			Requirement: domain.Requirement{Type: domain.ReqDocsRead, Value: 75},
			Points:      250, Rarity: domain.RarityEpic,
		},

		// ── Category mastery ───────────────────────────────────────────
		{
			ID: "guides_complete", Name: "Guided Tour", Category: "mastery",
			Description: "Read every document in the guides section.",
			Requirement: domain.Requirement{Type: domain.ReqCategoryComplete, Category: "guides"},
			Points:      75, Rarity: domain.RarityRare,
		},
		{
			ID: "reference_complete", Name: "Walking Reference", Category: "mastery",
			Description: "Read every document in the reference section.",
			Requirement: domain.Requirement{Type: domain.ReqCategoryComplete, Category: "reference"},
			Points:      75, Rarity: domain.RarityRare,
		},
		{
			ID: "tutorials_complete", Name: "Hands On", Category: "mastery",
			Description: "Read every document in the tutorials section.",
			Requirement: domain.Requirement{Type: domain.ReqCategoryComplete, Category: "tutorials"},
			Points:      75, Rarity: domain.RarityRare,
		},

		// ── Streaks ────────────────────────────────────────────────────
		{
			ID: "streak_3", Name: "Warming Up", Category: "streaks",
			Description: "Read on 3 consecutive days.",
			Requirement: domain.Requirement{Type: domain.ReqStreak, Value: 3},
			Points:      20, Rarity: domain.RarityCommon,
		},
		{
			ID: "streak_7", Name: "Week of Words", Category: "streaks",
			Description: "Read on 7 consecutive days.",
			Requirement: domain.Requirement{Type: domain.ReqStreak, Value: 7},
			Points:      60, Rarity: domain.RarityUncommon,
		},
		{
			ID: "streak_30", Name: "Monthly Habit", Category: "streaks",
			Description: "Read on 30 consecutive days.",
			Requirement: domain.Requirement{Type: domain.ReqStreak, Value: 30},
			Points:      200, Rarity: domain.RarityEpic,
		},
		{
			ID: "streak_100", Name: "Centurion", Category: "streaks",
			Description: "Read on 100 consecutive days.",
			Requirement: domain.Requirement{Type: domain.ReqStreak, Value: 100},
			Points:      500, Rarity: domain.RarityLegendary,
		},

		// ── Time of day ────────────────────────────────────────────────
		{
			ID: "night_owl", Name: "Night Owl", Category: "habits",
			Description: "Finish a document between midnight and 5 AM.",
			Requirement: domain.Requirement{Type: domain.ReqTimeOfDay, StartHour: 0, EndHour: 5},
			Points:      30, Rarity: domain.RarityUncommon,
		},
		{
			ID: "early_bird", Name: "Early Bird", Category: "habits",
			Description: "Finish a document before 7 AM.",
			Requirement: domain.Requirement{Type: domain.ReqTimeOfDay, StartHour: 5, EndHour: 7},
			Points:      30, Rarity: domain.RarityUncommon,
		},
		{
			ID: "weekend_reader", Name: "Weekend Reader", Category: "habits",
			Description: "Finish a document on a weekend.",
			Requirement: domain.Requirement{Type: domain.ReqTimeOfDay, Weekend: true},
			Points:      15, Rarity: domain.RarityCommon,
		},
	}
}
