package store

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/hazelview/studyloop/internal/domain"
)

// CardStore defines the interface for card data persistence. The listing
// methods feed session selection and must return deterministic orderings:
// due cards by (next_review_at, id), new cards by (created_at, id).
type CardStore interface {
	// CreateCards saves multiple cards to the store atomically.
	// All cards must be valid according to domain validation rules.
	CreateCards(ctx context.Context, cards []*domain.Card) error

	// GetCard retrieves a card by its unique ID.
	// Returns ErrCardNotFound if the card does not exist.
	GetCard(ctx context.Context, id uuid.UUID) (*domain.Card, error)

	// DueCards retrieves previously reviewed cards in the deck whose next
	// review date is at or before now, ordered by (next_review_at, id),
	// at most limit of them.
	DueCards(ctx context.Context, deckID uuid.UUID, now time.Time, limit uint32) ([]*domain.Card, error)

	// NewCards retrieves never-reviewed cards in the deck, ordered by
	// (created_at, id), at most limit of them.
	NewCards(ctx context.Context, deckID uuid.UUID, limit uint32) ([]*domain.Card, error)

	// ListCards retrieves all cards in the deck ordered by (created_at, id),
	// at most limit of them. A limit of zero returns no cards.
	ListCards(ctx context.Context, deckID uuid.UUID, limit uint32) ([]*domain.Card, error)

	// ListCardsByTags retrieves all cards in the deck carrying at least one
	// of the given tags, ordered by (created_at, id). No quota applies.
	ListCardsByTags(ctx context.Context, deckID uuid.UUID, tags []string) ([]*domain.Card, error)

	// ListCardsInPhase retrieves all cards in the deck currently in the
	// given phase, ordered by (next_review_at, id).
	ListCardsInPhase(ctx context.Context, deckID uuid.UUID, phase domain.CardPhase) ([]*domain.Card, error)
}
