package store

import (
	"context"

	"github.com/hazelview/studyloop/internal/domain"
)

// ReviewStore persists the effect of one graded review: the card's
// updated scheduling state and the append-only review log entry. The two
// writes MUST happen atomically; implementations are expected to run them
// in a single transaction.
type ReviewStore interface {
	// ApplyReview saves the card's current state and appends the log.
	// Returns ErrCardNotFound if the card does not exist.
	ApplyReview(ctx context.Context, card *domain.Card, log domain.ReviewLog) error
}
