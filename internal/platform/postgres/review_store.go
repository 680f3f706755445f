package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hazelview/studyloop/internal/domain"
	"github.com/hazelview/studyloop/internal/store"
)

// ReviewStore implements store.ReviewStore using PostgreSQL. The card
// update and log insert run in one transaction.
type ReviewStore struct {
	db *sql.DB
}

var _ store.ReviewStore = (*ReviewStore)(nil)

// NewReviewStore creates a new PostgreSQL review store.
func NewReviewStore(db *sql.DB) *ReviewStore {
	return &ReviewStore{db: db}
}

// ApplyReview implements store.ReviewStore.
func (s *ReviewStore) ApplyReview(ctx context.Context, card *domain.Card, log domain.ReviewLog) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return store.NewStoreError("review", "apply", "failed to begin transaction", err)
	}
	defer func() { _ = tx.Rollback() }()

	result, err := tx.ExecContext(ctx,
		`UPDATE cards
		 SET phase = $2, stability = $3, difficulty = $4, review_count = $5,
		     next_review_at = $6, last_review_at = $7
		 WHERE id = $1`,
		card.ID, string(card.Phase),
		memoryStability(card), memoryDifficulty(card), card.ReviewCount,
		card.NextReviewAt, card.LastReviewAt)
	if err != nil {
		return store.NewStoreError("review", "apply", "failed to update card", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return store.NewStoreError("review", "apply", "failed to read affected rows", err)
	}
	if rows == 0 {
		return store.ErrCardNotFound
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO review_logs (card_id, grade, reviewed_at) VALUES ($1, $2, $3)`,
		log.CardID, string(log.Grade), log.ReviewedAt)
	if err != nil {
		return store.NewStoreError("review", "apply", "failed to insert review log", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: %w", store.ErrTransactionFailed, err)
	}
	return nil
}
