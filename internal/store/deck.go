package store

import (
	"context"

	"github.com/google/uuid"

	"github.com/hazelview/studyloop/internal/domain"
)

// DeckStore defines the interface for deck data persistence.
type DeckStore interface {
	// CreateDeck saves a new deck to the store.
	// Returns validation errors if the deck data is invalid.
	CreateDeck(ctx context.Context, deck *domain.Deck) error

	// GetDeck retrieves a deck by its unique ID.
	// Returns ErrDeckNotFound if the deck does not exist.
	GetDeck(ctx context.Context, id uuid.UUID) (*domain.Deck, error)

	// UpdateDeckSettings replaces the settings of an existing deck.
	// Returns ErrDeckNotFound if the deck does not exist and validation
	// errors if the settings are invalid.
	UpdateDeckSettings(ctx context.Context, id uuid.UUID, settings domain.DeckSettings) error
}
