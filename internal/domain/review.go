package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrInvalidGrade is returned when a grade value is not one of
// again, hard, good or easy.
var ErrInvalidGrade = errors.New("invalid review grade")

// Grade is a learner's self-reported recall quality for one review.
type Grade string

// Possible grade values, ordered from worst to best recall.
const (
	GradeAgain Grade = "again"
	GradeHard  Grade = "hard"
	GradeGood  Grade = "good"
	GradeEasy  Grade = "easy"
)

// Valid reports whether g is one of the four known grades.
func (g Grade) Valid() bool {
	switch g {
	case GradeAgain, GradeHard, GradeGood, GradeEasy:
		return true
	default:
		return false
	}
}

// ParseGrade converts a string into a Grade.
// Returns ErrInvalidGrade for unknown values.
func ParseGrade(s string) (Grade, error) {
	g := Grade(s)
	if !g.Valid() {
		return "", ErrInvalidGrade
	}
	return g, nil
}

// MemoryState is the FSRS memory snapshot carried on a card between
// reviews. Stability estimates how long the memory will last; difficulty
// how hard the card is to remember. The value is replaced wholesale after
// each review, never partially mutated.
type MemoryState struct {
	Stability  float64 `json:"stability"`
	Difficulty float64 `json:"difficulty"`
}

// MemoryFromOutcome derives the new memory state from a review outcome.
func MemoryFromOutcome(outcome ReviewOutcome) MemoryState {
	return MemoryState{
		Stability:  outcome.Stability,
		Difficulty: outcome.Difficulty,
	}
}

// ReviewOutcome is one candidate schedule produced for a card: the next
// review date, the memory parameters that apply if the matching grade is
// chosen, and the interval bookkeeping. ScheduledDays is always at least
// one whole day.
type ReviewOutcome struct {
	NextReviewAt  time.Time `json:"next_review_at"`
	Stability     float64   `json:"stability"`
	Difficulty    float64   `json:"difficulty"`
	ElapsedDays   float64   `json:"elapsed_days"`
	ScheduledDays float64   `json:"scheduled_days"`
}

// ReviewLog records that a card was reviewed with a grade at a point in
// time. Logs are append-only and feed session summary aggregation.
type ReviewLog struct {
	CardID     uuid.UUID `json:"card_id"`
	Grade      Grade     `json:"grade"`
	ReviewedAt time.Time `json:"reviewed_at"`
}

// NewReviewLog creates a review log entry.
func NewReviewLog(cardID uuid.UUID, grade Grade, reviewedAt time.Time) ReviewLog {
	return ReviewLog{
		CardID:     cardID,
		Grade:      grade,
		ReviewedAt: reviewedAt,
	}
}
