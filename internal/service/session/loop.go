package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/hazelview/studyloop/internal/domain"
	"github.com/hazelview/studyloop/internal/domain/srs"
	"github.com/hazelview/studyloop/internal/platform/clock"
	"github.com/hazelview/studyloop/internal/service/review"
	"github.com/hazelview/studyloop/internal/store"
)

// LoopService construction errors.
var (
	ErrNilPlanner       = errors.New("planner cannot be nil")
	ErrNilReviewService = errors.New("review service cannot be nil")
	ErrNilDeckStore     = errors.New("deck store cannot be nil")
	ErrNilClock         = errors.New("clock cannot be nil")
)

// AnswerResult is the outcome of answering one card: the scheduling
// result that was applied, the session's progress afterwards, and, when
// the answer completed the session, the persisted summary's id.
type AnswerResult struct {
	Applied   srs.AppliedReview
	Progress  Progress
	SummaryID *int64
}

// LoopService orchestrates whole sessions: it starts them from one of
// the selection variants, persists each answer, and appends the summary
// when a session completes.
type LoopService struct {
	planner   *Planner
	reviews   *review.Service
	deckStore store.DeckStore
	summaries store.SummaryStore
	clk       clock.Clock
	logger    *slog.Logger
}

// NewLoopService creates a LoopService.
// Returns an error if any dependency is nil.
func NewLoopService(
	planner *Planner,
	reviews *review.Service,
	deckStore store.DeckStore,
	summaries store.SummaryStore,
	clk clock.Clock,
	logger *slog.Logger,
) (*LoopService, error) {
	if planner == nil {
		return nil, ErrNilPlanner
	}
	if reviews == nil {
		return nil, ErrNilReviewService
	}
	if deckStore == nil {
		return nil, ErrNilDeckStore
	}
	if summaries == nil {
		return nil, ErrNilSummaryStore
	}
	if clk == nil {
		return nil, ErrNilClock
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &LoopService{
		planner:   planner,
		reviews:   reviews,
		deckStore: deckStore,
		summaries: summaries,
		clk:       clk,
		logger:    logger.With(slog.String("component", "session_loop")),
	}, nil
}

// Start begins a quota-bounded session for the deck.
func (l *LoopService) Start(ctx context.Context, deckID uuid.UUID) (*Session, error) {
	deck, now, err := l.deckAndNow(ctx, deckID)
	if err != nil {
		return nil, err
	}

	plan, err := l.planner.BuildPlan(ctx, deckID, deck.Settings, now)
	if err != nil {
		return nil, err
	}
	return l.started(New(plan, deck.Settings, now))
}

// StartAllCards begins a session over every card in the deck, ignoring
// quotas and the micro cap.
func (l *LoopService) StartAllCards(ctx context.Context, deckID uuid.UUID) (*Session, error) {
	deck, now, err := l.deckAndNow(ctx, deckID)
	if err != nil {
		return nil, err
	}

	plan, err := l.planner.BuildPlanAllCards(ctx, deckID, now)
	if err != nil {
		return nil, err
	}
	return l.started(NewUnbounded(plan, deck.Settings, now))
}

// StartMistakes begins a session over the deck's relearning cards.
func (l *LoopService) StartMistakes(ctx context.Context, deckID uuid.UUID) (*Session, error) {
	deck, now, err := l.deckAndNow(ctx, deckID)
	if err != nil {
		return nil, err
	}

	plan, err := l.planner.BuildPlanMistakes(ctx, deckID)
	if err != nil {
		return nil, err
	}
	return l.started(New(plan, deck.Settings, now))
}

// StartWithTags begins a session over the deck's cards carrying any of
// the given tags. An empty tag list degrades to the default selection.
func (l *LoopService) StartWithTags(ctx context.Context, deckID uuid.UUID, tags []string) (*Session, error) {
	deck, now, err := l.deckAndNow(ctx, deckID)
	if err != nil {
		return nil, err
	}

	plan, err := l.planner.BuildPlanWithTags(ctx, deckID, deck.Settings, tags, now)
	if err != nil {
		return nil, err
	}
	return l.started(New(plan, deck.Settings, now))
}

// AnswerCurrent applies the grade to the session's current card,
// persisting the card update and review log atomically, then advances
// the session. A scheduling failure surfaces as ReviewError and a
// persistence failure as StorageError; in both cases the session and the
// card are unchanged and the same answer can be retried.
//
// Answering the last card completes the session and appends its summary.
// If the summary append fails, the returned result still reflects the
// completed session and the error is a StorageError; call
// FinalizeSummary to retry the append.
func (l *LoopService) AnswerCurrent(ctx context.Context, sess *Session, grade domain.Grade) (AnswerResult, error) {
	card, err := sess.Current()
	if err != nil {
		return AnswerResult{}, err
	}

	now := l.clk.Now()
	applied, err := l.reviews.ReviewCardPersisted(ctx, card, grade, now, sess.Settings())
	if err != nil {
		return AnswerResult{}, classifyAnswerError(err)
	}

	if err := sess.RecordAnswer(applied.Log); err != nil {
		return AnswerResult{}, err
	}

	result := AnswerResult{Applied: applied, Progress: sess.Progress()}
	if !sess.IsComplete() {
		return result, nil
	}

	id, err := l.appendSummary(ctx, sess)
	if err != nil {
		l.logger.Warn("session completed but summary append failed",
			slog.String("deck_id", sess.DeckID().String()),
			slog.Any("error", err))
		return result, err
	}

	result.SummaryID = &id
	l.logger.Info("session completed",
		slog.String("deck_id", sess.DeckID().String()),
		slog.Int("cards", result.Progress.Total),
		slog.Int64("summary_id", id))
	return result, nil
}

// FinalizeSummary persists the completed session's summary if it has not
// been persisted yet, and returns the summary's storage id. Safe to call
// repeatedly; only the first successful append assigns an id.
// Returns ErrSessionActive while the session is still in progress.
func (l *LoopService) FinalizeSummary(ctx context.Context, sess *Session) (int64, error) {
	if id, ok := sess.SummaryID(); ok {
		return id, nil
	}
	if !sess.IsComplete() {
		return 0, ErrSessionActive
	}
	return l.appendSummary(ctx, sess)
}

func (l *LoopService) appendSummary(ctx context.Context, sess *Session) (int64, error) {
	summary, err := sess.Summary()
	if err != nil {
		return 0, err
	}

	id, err := l.summaries.AppendSummary(ctx, summary)
	if err != nil {
		return 0, &StorageError{Err: fmt.Errorf("appending summary: %w", err)}
	}

	if err := sess.AssignSummaryID(id); err != nil {
		return 0, err
	}
	return id, nil
}

func (l *LoopService) deckAndNow(ctx context.Context, deckID uuid.UUID) (*domain.Deck, time.Time, error) {
	deck, err := l.deckStore.GetDeck(ctx, deckID)
	if err != nil {
		return nil, time.Time{}, &StorageError{Err: fmt.Errorf("loading deck: %w", err)}
	}
	return deck, l.clk.Now(), nil
}

func (l *LoopService) started(sess *Session, err error) (*Session, error) {
	if err != nil {
		return nil, err
	}
	l.logger.Debug("session started",
		slog.String("deck_id", sess.DeckID().String()),
		slog.Int("cards", sess.Progress().Total))
	return sess, nil
}

// classifyAnswerError separates scheduling failures from persistence
// failures so callers can distinguish bad input from transient storage
// trouble.
func classifyAnswerError(err error) error {
	var (
		retention *srs.InvalidRetentionError
		elapsed   *srs.InvalidElapsedDaysError
		model     *srs.ModelError
	)
	if errors.Is(err, domain.ErrInvalidGrade) ||
		errors.As(err, &retention) ||
		errors.As(err, &elapsed) ||
		errors.As(err, &model) {
		return &ReviewError{Err: err}
	}
	return &StorageError{Err: err}
}
