package store

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/hazelview/studyloop/internal/domain"
)

// SummaryRow is a persisted session summary together with its storage id.
type SummaryRow struct {
	ID      int64
	Summary domain.SessionSummary
}

// SummaryStore defines the interface for session summary persistence.
// Summaries are append-only; rows are never updated or deleted.
type SummaryStore interface {
	// AppendSummary persists the summary and returns its storage id.
	// Returns validation errors if the summary is inconsistent.
	AppendSummary(ctx context.Context, summary domain.SessionSummary) (int64, error)

	// GetSummary retrieves a summary by its storage id.
	// Returns ErrSummaryNotFound if no such row exists.
	GetSummary(ctx context.Context, id int64) (domain.SessionSummary, error)

	// ListSummaries retrieves the deck's summaries completed in
	// [from, to), ordered by (completed_at, id).
	ListSummaries(ctx context.Context, deckID uuid.UUID, from, to time.Time) ([]domain.SessionSummary, error)

	// ListSummaryRows is ListSummaries with storage ids included.
	ListSummaryRows(ctx context.Context, deckID uuid.UUID, from, to time.Time) ([]SummaryRow, error)

	// ListLatestSummaryRows retrieves, for every deck with at least one
	// summary, the most recently completed one, ordered by deck id.
	ListLatestSummaryRows(ctx context.Context) ([]SummaryRow, error)
}
