package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Summary-specific validation errors
var (
	// ErrSummaryTimeRange is returned when a summary's completion time
	// precedes its start time.
	ErrSummaryTimeRange = errors.New("summary completed_at cannot precede started_at")

	// ErrSummaryCountMismatch is returned when the per-grade counts do not
	// sum to the total card count.
	ErrSummaryCountMismatch = errors.New("summary grade counts must sum to total cards")
)

// SessionSummary aggregates one completed practice session: when it ran,
// how many cards it covered, and how the learner graded them.
type SessionSummary struct {
	DeckID      uuid.UUID `json:"deck_id"`
	StartedAt   time.Time `json:"started_at"`
	CompletedAt time.Time `json:"completed_at"`
	TotalCards  int       `json:"total_cards"`
	AgainCount  int       `json:"again_count"`
	HardCount   int       `json:"hard_count"`
	GoodCount   int       `json:"good_count"`
	EasyCount   int       `json:"easy_count"`
}

// NewSessionSummary rehydrates a summary from stored values, checking the
// internal consistency a freshly built summary has by construction.
func NewSessionSummary(deckID uuid.UUID, startedAt, completedAt time.Time, total, again, hard, good, easy int) (SessionSummary, error) {
	s := SessionSummary{
		DeckID:      deckID,
		StartedAt:   startedAt,
		CompletedAt: completedAt,
		TotalCards:  total,
		AgainCount:  again,
		HardCount:   hard,
		GoodCount:   good,
		EasyCount:   easy,
	}

	if err := s.Validate(); err != nil {
		return SessionSummary{}, err
	}

	return s, nil
}

// SummaryFromLogs builds a summary by tallying the session's review logs.
func SummaryFromLogs(deckID uuid.UUID, startedAt, completedAt time.Time, logs []ReviewLog) SessionSummary {
	s := SessionSummary{
		DeckID:      deckID,
		StartedAt:   startedAt,
		CompletedAt: completedAt,
		TotalCards:  len(logs),
	}

	for _, log := range logs {
		switch log.Grade {
		case GradeAgain:
			s.AgainCount++
		case GradeHard:
			s.HardCount++
		case GradeGood:
			s.GoodCount++
		case GradeEasy:
			s.EasyCount++
		}
	}

	return s
}

// Validate checks if the SessionSummary has consistent data.
// Returns an error if any check fails.
func (s SessionSummary) Validate() error {
	if s.CompletedAt.Before(s.StartedAt) {
		return ErrSummaryTimeRange
	}

	if s.AgainCount+s.HardCount+s.GoodCount+s.EasyCount != s.TotalCards {
		return ErrSummaryCountMismatch
	}

	return nil
}
