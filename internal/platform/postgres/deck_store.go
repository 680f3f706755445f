package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/hazelview/studyloop/internal/domain"
	"github.com/hazelview/studyloop/internal/store"
)

// DeckStore implements store.DeckStore using PostgreSQL.
type DeckStore struct {
	db *sql.DB
}

var _ store.DeckStore = (*DeckStore)(nil)

// NewDeckStore creates a new PostgreSQL deck store.
func NewDeckStore(db *sql.DB) *DeckStore {
	return &DeckStore{db: db}
}

// CreateDeck implements store.DeckStore.
func (s *DeckStore) CreateDeck(ctx context.Context, deck *domain.Deck) error {
	if err := deck.Validate(); err != nil {
		return fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
	}

	settings, err := json.Marshal(deck.Settings)
	if err != nil {
		return store.NewStoreError("deck", "create", "failed to marshal settings", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO decks (id, name, settings, created_at) VALUES ($1, $2, $3, $4)`,
		deck.ID, deck.Name, settings, deck.CreatedAt)
	if err != nil {
		return store.NewStoreError("deck", "create", "failed to insert deck", err)
	}
	return nil
}

// GetDeck implements store.DeckStore.
func (s *DeckStore) GetDeck(ctx context.Context, id uuid.UUID) (*domain.Deck, error) {
	var (
		deck     domain.Deck
		settings []byte
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, settings, created_at FROM decks WHERE id = $1`,
		id).Scan(&deck.ID, &deck.Name, &settings, &deck.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrDeckNotFound
	}
	if err != nil {
		return nil, store.NewStoreError("deck", "get", "failed to query deck", err)
	}

	if err := json.Unmarshal(settings, &deck.Settings); err != nil {
		return nil, store.NewStoreError("deck", "get", "failed to unmarshal settings", err)
	}
	return &deck, nil
}

// UpdateDeckSettings implements store.DeckStore.
func (s *DeckStore) UpdateDeckSettings(ctx context.Context, id uuid.UUID, settings domain.DeckSettings) error {
	if err := settings.Validate(); err != nil {
		return fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
	}

	raw, err := json.Marshal(settings)
	if err != nil {
		return store.NewStoreError("deck", "update", "failed to marshal settings", err)
	}

	result, err := s.db.ExecContext(ctx,
		`UPDATE decks SET settings = $2 WHERE id = $1`, id, raw)
	if err != nil {
		return store.NewStoreError("deck", "update", "failed to update settings", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return store.NewStoreError("deck", "update", "failed to read affected rows", err)
	}
	if rows == 0 {
		return store.ErrDeckNotFound
	}
	return nil
}
