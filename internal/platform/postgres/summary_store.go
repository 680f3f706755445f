package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/hazelview/studyloop/internal/domain"
	"github.com/hazelview/studyloop/internal/store"
)

const summaryColumns = `id, deck_id, started_at, completed_at, total_cards,
	again_count, hard_count, good_count, easy_count`

// SummaryStore implements store.SummaryStore using PostgreSQL.
type SummaryStore struct {
	db *sql.DB
}

var _ store.SummaryStore = (*SummaryStore)(nil)

// NewSummaryStore creates a new PostgreSQL summary store.
func NewSummaryStore(db *sql.DB) *SummaryStore {
	return &SummaryStore{db: db}
}

// AppendSummary implements store.SummaryStore.
func (s *SummaryStore) AppendSummary(ctx context.Context, summary domain.SessionSummary) (int64, error) {
	if err := summary.Validate(); err != nil {
		return 0, fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
	}

	var id int64
	err := s.db.QueryRowContext(ctx,
		`INSERT INTO session_summaries
		 (deck_id, started_at, completed_at, total_cards, again_count, hard_count, good_count, easy_count)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING id`,
		summary.DeckID, summary.StartedAt, summary.CompletedAt, summary.TotalCards,
		summary.AgainCount, summary.HardCount, summary.GoodCount, summary.EasyCount).Scan(&id)
	if err != nil {
		return 0, store.NewStoreError("summary", "append", "failed to insert summary", err)
	}
	return id, nil
}

// GetSummary implements store.SummaryStore.
func (s *SummaryStore) GetSummary(ctx context.Context, id int64) (domain.SessionSummary, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+summaryColumns+` FROM session_summaries WHERE id = $1`, id)
	summaryRow, err := scanSummaryRow(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.SessionSummary{}, store.ErrSummaryNotFound
	}
	if err != nil {
		return domain.SessionSummary{}, store.NewStoreError("summary", "get", "failed to query summary", err)
	}
	return summaryRow.Summary, nil
}

// ListSummaries implements store.SummaryStore.
func (s *SummaryStore) ListSummaries(ctx context.Context, deckID uuid.UUID, from, to time.Time) ([]domain.SessionSummary, error) {
	rows, err := s.ListSummaryRows(ctx, deckID, from, to)
	if err != nil {
		return nil, err
	}
	out := make([]domain.SessionSummary, len(rows))
	for i, row := range rows {
		out[i] = row.Summary
	}
	return out, nil
}

// ListSummaryRows implements store.SummaryStore.
func (s *SummaryStore) ListSummaryRows(ctx context.Context, deckID uuid.UUID, from, to time.Time) ([]store.SummaryRow, error) {
	return s.querySummaries(ctx, "list",
		`SELECT `+summaryColumns+` FROM session_summaries
		 WHERE deck_id = $1 AND completed_at >= $2 AND completed_at < $3
		 ORDER BY completed_at, id`,
		deckID, from, to)
}

// ListLatestSummaryRows implements store.SummaryStore.
func (s *SummaryStore) ListLatestSummaryRows(ctx context.Context) ([]store.SummaryRow, error) {
	return s.querySummaries(ctx, "list_latest",
		`SELECT DISTINCT ON (deck_id) `+summaryColumns+`
		 FROM session_summaries
		 ORDER BY deck_id, completed_at DESC, id DESC`)
}

func (s *SummaryStore) querySummaries(ctx context.Context, operation, query string, args ...any) ([]store.SummaryRow, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, store.NewStoreError("summary", operation, "failed to query summaries", err)
	}
	defer func() { _ = rows.Close() }()

	var out []store.SummaryRow
	for rows.Next() {
		row, err := scanSummaryRow(rows)
		if err != nil {
			return nil, store.NewStoreError("summary", operation, "failed to scan summary", err)
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, store.NewStoreError("summary", operation, "failed to iterate summaries", err)
	}
	return out, nil
}

func scanSummaryRow(row scanner) (store.SummaryRow, error) {
	var out store.SummaryRow
	err := row.Scan(
		&out.ID, &out.Summary.DeckID, &out.Summary.StartedAt, &out.Summary.CompletedAt,
		&out.Summary.TotalCards, &out.Summary.AgainCount, &out.Summary.HardCount,
		&out.Summary.GoodCount, &out.Summary.EasyCount)
	if err != nil {
		return store.SummaryRow{}, err
	}
	return out, nil
}
