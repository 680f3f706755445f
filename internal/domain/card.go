package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Card-specific validation errors
var (
	// ErrCardIDEmpty is returned when a card ID is empty or nil.
	ErrCardIDEmpty = errors.New("card ID cannot be empty")

	// ErrCardDeckIDEmpty is returned when a card's deck ID is empty or nil.
	ErrCardDeckIDEmpty = errors.New("card deck ID cannot be empty")

	// ErrCardFrontEmpty is returned when a card's front side is blank.
	ErrCardFrontEmpty = errors.New("card front cannot be empty")

	// ErrCardBackEmpty is returned when a card's back side is blank.
	ErrCardBackEmpty = errors.New("card back cannot be empty")
)

// CardPhase is a card's lifecycle stage in the scheduler.
type CardPhase string

// Possible card phases.
const (
	PhaseNew        CardPhase = "new"
	PhaseLearning   CardPhase = "learning"
	PhaseReview     CardPhase = "review"
	PhaseRelearning CardPhase = "relearning"
)

// Card is a flashcard owned by a deck. Scheduling state (phase, memory,
// next review date, review count) is mutated only by the review service;
// everything else is fixed at creation.
//
// Invariant: a card with ReviewCount == 0 has no memory state and is
// treated as new by session selection.
type Card struct {
	ID           uuid.UUID    `json:"id"`
	DeckID       uuid.UUID    `json:"deck_id"`
	Front        string       `json:"front"`
	Back         string       `json:"back"`
	Tags         []string     `json:"tags,omitempty"`
	Phase        CardPhase    `json:"phase"`
	Memory       *MemoryState `json:"memory,omitempty"`
	ReviewCount  int          `json:"review_count"`
	CreatedAt    time.Time    `json:"created_at"`
	NextReviewAt time.Time    `json:"next_review_at"`
	LastReviewAt *time.Time   `json:"last_review_at,omitempty"`
}

// NewCard creates a new card in the given deck. The card starts in the
// New phase and is available for review immediately.
// Returns an error if validation fails.
func NewCard(deckID uuid.UUID, front, back string, now time.Time) (*Card, error) {
	card := &Card{
		ID:           uuid.New(),
		DeckID:       deckID,
		Front:        front,
		Back:         back,
		Phase:        PhaseNew,
		ReviewCount:  0,
		CreatedAt:    now,
		NextReviewAt: now,
	}

	if err := card.Validate(); err != nil {
		return nil, err
	}

	return card, nil
}

// Validate checks if the Card has valid data.
// Returns an error if any field fails validation.
func (c *Card) Validate() error {
	if c.ID == uuid.Nil {
		return ErrCardIDEmpty
	}

	if c.DeckID == uuid.Nil {
		return ErrCardDeckIDEmpty
	}

	if strings.TrimSpace(c.Front) == "" {
		return ErrCardFrontEmpty
	}

	if strings.TrimSpace(c.Back) == "" {
		return ErrCardBackEmpty
	}

	return nil
}

// IsNew reports whether the card has never been reviewed.
func (c *Card) IsNew() bool {
	return c.ReviewCount == 0
}

// IsDue reports whether the card has been reviewed before and its next
// review date has arrived. New cards are never due; they are selected
// through the new-card quota instead.
func (c *Card) IsDue(now time.Time) bool {
	return !c.IsNew() && !c.NextReviewAt.After(now)
}

// HasAnyTag reports whether the card carries at least one of the given tags.
func (c *Card) HasAnyTag(tags []string) bool {
	for _, want := range tags {
		for _, got := range c.Tags {
			if got == want {
				return true
			}
		}
	}
	return false
}

// ApplyReview records the result of one review on the card: the memory
// state is replaced from the outcome, the next review date and review
// count are updated, and the phase advances according to the grade.
func (c *Card) ApplyReview(grade Grade, outcome ReviewOutcome, reviewedAt time.Time) {
	memory := MemoryFromOutcome(outcome)
	c.Memory = &memory
	c.NextReviewAt = outcome.NextReviewAt
	at := reviewedAt
	c.LastReviewAt = &at
	c.ReviewCount++
	c.Phase = nextPhase(c.Phase, grade)
}

// nextPhase advances a card's lifecycle stage after a graded review.
//
// First reviews always move a card out of New into Learning. Good and
// Easy promote Learning/Relearning cards into Review. Again on a card
// that already reached Review (or is relearning) is a lapse and moves it
// to Relearning; Again while still learning keeps the card in Learning.
// Hard never changes the phase.
func nextPhase(current CardPhase, grade Grade) CardPhase {
	switch current {
	case PhaseNew:
		return PhaseLearning
	case PhaseLearning:
		if grade == GradeGood || grade == GradeEasy {
			return PhaseReview
		}
		return PhaseLearning
	case PhaseReview:
		if grade == GradeAgain {
			return PhaseRelearning
		}
		return PhaseReview
	case PhaseRelearning:
		if grade == GradeGood || grade == GradeEasy {
			return PhaseReview
		}
		return PhaseRelearning
	default:
		return current
	}
}
