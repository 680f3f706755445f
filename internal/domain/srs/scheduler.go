// Package srs implements the spaced repetition scheduling engine. The
// Scheduler turns a card's prior memory state, the elapsed time since its
// last review, and a recall grade into updated memory parameters and a
// next review date, delegating the decay arithmetic to a MemoryModel.
package srs

import (
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/hazelview/studyloop/internal/domain"
)

// DefaultTargetRetention is the retention target used when none is
// configured.
const DefaultTargetRetention = 0.9

// ScheduledStates holds the four candidate outcomes computed for one card
// in one scheduling call. It is transient: the caller selects the outcome
// matching the learner's grade and discards the rest.
type ScheduledStates struct {
	CardID uuid.UUID
	Again  domain.ReviewOutcome
	Hard   domain.ReviewOutcome
	Good   domain.ReviewOutcome
	Easy   domain.ReviewOutcome
}

// Select returns the outcome matching the grade.
func (s ScheduledStates) Select(grade domain.Grade) (domain.ReviewOutcome, error) {
	switch grade {
	case domain.GradeAgain:
		return s.Again, nil
	case domain.GradeHard:
		return s.Hard, nil
	case domain.GradeGood:
		return s.Good, nil
	case domain.GradeEasy:
		return s.Easy, nil
	default:
		return domain.ReviewOutcome{}, domain.ErrInvalidGrade
	}
}

// AppliedReview is the result of applying one graded review: the log
// entry to persist, the outcome that was selected, and the card's new
// memory state.
type AppliedReview struct {
	Log     domain.ReviewLog
	Outcome domain.ReviewOutcome
	Memory  domain.MemoryState
}

// GradeRating maps a grade to its numeric rating: Again=1, Hard=2,
// Good=3, Easy=4.
func GradeRating(grade domain.Grade) int {
	switch grade {
	case domain.GradeAgain:
		return 1
	case domain.GradeHard:
		return 2
	case domain.GradeGood:
		return 3
	case domain.GradeEasy:
		return 4
	default:
		return 0
	}
}

// Scheduler computes review schedules at a fixed target retention. It
// holds no mutable state and is safe for concurrent use.
type Scheduler struct {
	model     MemoryModel
	retention float64
}

// New creates a Scheduler with the default target retention.
func New(model MemoryModel) *Scheduler {
	s, _ := NewWithRetention(model, DefaultTargetRetention)
	return s
}

// NewWithRetention creates a Scheduler targeting the given retention.
// Returns InvalidRetentionError if retention is outside (0, 1].
func NewWithRetention(model MemoryModel, retention float64) (*Scheduler, error) {
	if math.IsNaN(retention) || retention <= 0 || retention > 1 {
		return nil, &InvalidRetentionError{Provided: retention}
	}
	return &Scheduler{model: model, retention: retention}, nil
}

// TargetRetention returns the retention the scheduler was built with.
func (s *Scheduler) TargetRetention() float64 {
	return s.retention
}

// ScheduleNewCard computes the four candidate outcomes for a card that
// has never been reviewed.
func (s *Scheduler) ScheduleNewCard(cardID uuid.UUID, reviewedAt time.Time) (ScheduledStates, error) {
	return s.schedule(cardID, nil, 0, reviewedAt)
}

// ScheduleReview computes the four candidate outcomes for a previously
// reviewed card. elapsedDays must be finite and non-negative; it is
// rounded to whole days before the model is consulted.
func (s *Scheduler) ScheduleReview(cardID uuid.UUID, state domain.MemoryState, elapsedDays float64, reviewedAt time.Time) (ScheduledStates, error) {
	if math.IsNaN(elapsedDays) || math.IsInf(elapsedDays, 0) || elapsedDays < 0 {
		return ScheduledStates{}, &InvalidElapsedDaysError{Provided: elapsedDays}
	}
	return s.schedule(cardID, &state, elapsedDays, reviewedAt)
}

// ApplyReview schedules the card and selects the outcome matching the
// grade. A nil previousState routes through new-card scheduling and
// ignores elapsedDays. This is the single entry point the review service
// calls.
func (s *Scheduler) ApplyReview(cardID uuid.UUID, previousState *domain.MemoryState, grade domain.Grade, reviewedAt time.Time, elapsedDays float64) (AppliedReview, error) {
	var (
		states ScheduledStates
		err    error
	)
	if previousState == nil {
		states, err = s.ScheduleNewCard(cardID, reviewedAt)
	} else {
		states, err = s.ScheduleReview(cardID, *previousState, elapsedDays, reviewedAt)
	}
	if err != nil {
		return AppliedReview{}, err
	}

	outcome, err := states.Select(grade)
	if err != nil {
		return AppliedReview{}, err
	}

	return AppliedReview{
		Log:     domain.NewReviewLog(cardID, grade, reviewedAt),
		Outcome: outcome,
		Memory:  domain.MemoryFromOutcome(outcome),
	}, nil
}

func (s *Scheduler) schedule(cardID uuid.UUID, prior *domain.MemoryState, elapsedDays float64, reviewedAt time.Time) (ScheduledStates, error) {
	rounded := uint32(math.Round(elapsedDays))

	candidates, err := s.model.NextStates(prior, s.retention, rounded)
	if err != nil {
		return ScheduledStates{}, &ModelError{Err: err}
	}

	return ScheduledStates{
		CardID: cardID,
		Again:  toOutcome(candidates.Again, elapsedDays, reviewedAt),
		Hard:   toOutcome(candidates.Hard, elapsedDays, reviewedAt),
		Good:   toOutcome(candidates.Good, elapsedDays, reviewedAt),
		Easy:   toOutcome(candidates.Easy, elapsedDays, reviewedAt),
	}, nil
}

// toOutcome converts a model candidate into a concrete outcome. The
// model's fractional interval is rounded to whole days and clamped to at
// least one, so the next review never lands on the same day.
func toOutcome(item ItemState, elapsedDays float64, reviewedAt time.Time) domain.ReviewOutcome {
	days := math.Max(math.Round(item.Interval), 1)
	return domain.ReviewOutcome{
		NextReviewAt:  reviewedAt.AddDate(0, 0, int(days)),
		Stability:     item.Memory.Stability,
		Difficulty:    item.Memory.Difficulty,
		ElapsedDays:   elapsedDays,
		ScheduledDays: days,
	}
}
