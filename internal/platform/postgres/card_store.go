package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/hazelview/studyloop/internal/domain"
	"github.com/hazelview/studyloop/internal/store"
)

const cardColumns = `id, deck_id, front, back, tags, phase, stability, difficulty,
	review_count, created_at, next_review_at, last_review_at`

// CardStore implements store.CardStore using PostgreSQL.
type CardStore struct {
	db *sql.DB
}

var _ store.CardStore = (*CardStore)(nil)

// NewCardStore creates a new PostgreSQL card store.
func NewCardStore(db *sql.DB) *CardStore {
	return &CardStore{db: db}
}

// CreateCards implements store.CardStore. All inserts run in a single
// transaction.
func (s *CardStore) CreateCards(ctx context.Context, cards []*domain.Card) error {
	for _, card := range cards {
		if err := card.Validate(); err != nil {
			return fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
		}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return store.NewStoreError("card", "create", "failed to begin transaction", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, card := range cards {
		if err := insertCard(ctx, tx, card); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: %w", store.ErrTransactionFailed, err)
	}
	return nil
}

// GetCard implements store.CardStore.
func (s *CardStore) GetCard(ctx context.Context, id uuid.UUID) (*domain.Card, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+cardColumns+` FROM cards WHERE id = $1`, id)
	card, err := scanCard(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrCardNotFound
	}
	if err != nil {
		return nil, store.NewStoreError("card", "get", "failed to query card", err)
	}
	return card, nil
}

// DueCards implements store.CardStore.
func (s *CardStore) DueCards(ctx context.Context, deckID uuid.UUID, now time.Time, limit uint32) ([]*domain.Card, error) {
	return s.queryCards(ctx, "due",
		`SELECT `+cardColumns+` FROM cards
		 WHERE deck_id = $1 AND review_count > 0 AND next_review_at <= $2
		 ORDER BY next_review_at, id
		 LIMIT $3`,
		deckID, now, int64(limit))
}

// NewCards implements store.CardStore.
func (s *CardStore) NewCards(ctx context.Context, deckID uuid.UUID, limit uint32) ([]*domain.Card, error) {
	return s.queryCards(ctx, "new",
		`SELECT `+cardColumns+` FROM cards
		 WHERE deck_id = $1 AND review_count = 0
		 ORDER BY created_at, id
		 LIMIT $2`,
		deckID, int64(limit))
}

// ListCards implements store.CardStore.
func (s *CardStore) ListCards(ctx context.Context, deckID uuid.UUID, limit uint32) ([]*domain.Card, error) {
	return s.queryCards(ctx, "list",
		`SELECT `+cardColumns+` FROM cards
		 WHERE deck_id = $1
		 ORDER BY created_at, id
		 LIMIT $2`,
		deckID, int64(limit))
}

// ListCardsByTags implements store.CardStore. Tags are stored as a JSONB
// string array; the ?| operator matches cards carrying any of the given
// tags.
func (s *CardStore) ListCardsByTags(ctx context.Context, deckID uuid.UUID, tags []string) ([]*domain.Card, error) {
	return s.queryCards(ctx, "list_by_tags",
		`SELECT `+cardColumns+` FROM cards
		 WHERE deck_id = $1 AND tags ?| $2
		 ORDER BY created_at, id`,
		deckID, tags)
}

// ListCardsInPhase implements store.CardStore.
func (s *CardStore) ListCardsInPhase(ctx context.Context, deckID uuid.UUID, phase domain.CardPhase) ([]*domain.Card, error) {
	return s.queryCards(ctx, "list_in_phase",
		`SELECT `+cardColumns+` FROM cards
		 WHERE deck_id = $1 AND phase = $2
		 ORDER BY next_review_at, id`,
		deckID, string(phase))
}

func (s *CardStore) queryCards(ctx context.Context, operation, query string, args ...any) ([]*domain.Card, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, store.NewStoreError("card", operation, "failed to query cards", err)
	}
	defer func() { _ = rows.Close() }()

	var cards []*domain.Card
	for rows.Next() {
		card, err := scanCard(rows)
		if err != nil {
			return nil, store.NewStoreError("card", operation, "failed to scan card", err)
		}
		cards = append(cards, card)
	}
	if err := rows.Err(); err != nil {
		return nil, store.NewStoreError("card", operation, "failed to iterate cards", err)
	}
	return cards, nil
}

// scanner covers both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanCard(row scanner) (*domain.Card, error) {
	var (
		card       domain.Card
		tags       []byte
		stability  sql.NullFloat64
		difficulty sql.NullFloat64
		lastReview sql.NullTime
	)
	err := row.Scan(
		&card.ID, &card.DeckID, &card.Front, &card.Back, &tags, &card.Phase,
		&stability, &difficulty, &card.ReviewCount,
		&card.CreatedAt, &card.NextReviewAt, &lastReview)
	if err != nil {
		return nil, err
	}

	if len(tags) > 0 {
		if err := json.Unmarshal(tags, &card.Tags); err != nil {
			return nil, fmt.Errorf("unmarshalling tags: %w", err)
		}
	}
	if stability.Valid && difficulty.Valid {
		card.Memory = &domain.MemoryState{
			Stability:  stability.Float64,
			Difficulty: difficulty.Float64,
		}
	}
	if lastReview.Valid {
		at := lastReview.Time
		card.LastReviewAt = &at
	}
	return &card, nil
}

// execer covers both *sql.DB and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func insertCard(ctx context.Context, db execer, card *domain.Card) error {
	tags, err := json.Marshal(tagsOrEmpty(card.Tags))
	if err != nil {
		return store.NewStoreError("card", "create", "failed to marshal tags", err)
	}

	_, err = db.ExecContext(ctx,
		`INSERT INTO cards (`+cardColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		card.ID, card.DeckID, card.Front, card.Back, tags, string(card.Phase),
		memoryStability(card), memoryDifficulty(card), card.ReviewCount,
		card.CreatedAt, card.NextReviewAt, card.LastReviewAt)
	if err != nil {
		return store.NewStoreError("card", "create", "failed to insert card", err)
	}
	return nil
}

func tagsOrEmpty(tags []string) []string {
	if tags == nil {
		return []string{}
	}
	return tags
}

func memoryStability(card *domain.Card) any {
	if card.Memory == nil {
		return nil
	}
	return card.Memory.Stability
}

func memoryDifficulty(card *domain.Card) any {
	if card.Memory == nil {
		return nil
	}
	return card.Memory.Difficulty
}
