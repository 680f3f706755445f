// Package review applies graded reviews to cards: it computes elapsed
// time, consults the scheduler, handles lapses per deck settings, and
// updates the card's scheduling state, optionally persisting the result.
package review

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/hazelview/studyloop/internal/domain"
	"github.com/hazelview/studyloop/internal/domain/srs"
	"github.com/hazelview/studyloop/internal/store"
)

// Common construction errors.
var (
	ErrNilScheduler   = errors.New("scheduler cannot be nil")
	ErrNilCardStore   = errors.New("card store cannot be nil")
	ErrNilDeckStore   = errors.New("deck store cannot be nil")
	ErrNilReviewStore = errors.New("review store cannot be nil")
)

const secondsPerDay = 86400.0

// PersistedResult is the outcome of a persisted review: the updated card
// and the scheduling result that was applied to it.
type PersistedResult struct {
	Card    *domain.Card
	Applied srs.AppliedReview
}

// Service applies reviews. It holds no mutable state; a single instance
// serves all sessions.
type Service struct {
	scheduler   *srs.Scheduler
	cardStore   store.CardStore
	deckStore   store.DeckStore
	reviewStore store.ReviewStore
	logger      *slog.Logger
}

// NewService creates a review Service.
// Returns an error if any dependency is nil.
func NewService(
	scheduler *srs.Scheduler,
	cardStore store.CardStore,
	deckStore store.DeckStore,
	reviewStore store.ReviewStore,
	logger *slog.Logger,
) (*Service, error) {
	if scheduler == nil {
		return nil, ErrNilScheduler
	}
	if cardStore == nil {
		return nil, ErrNilCardStore
	}
	if deckStore == nil {
		return nil, ErrNilDeckStore
	}
	if reviewStore == nil {
		return nil, ErrNilReviewStore
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Service{
		scheduler:   scheduler,
		cardStore:   cardStore,
		deckStore:   deckStore,
		reviewStore: reviewStore,
		logger:      logger.With(slog.String("component", "review_service")),
	}, nil
}

// ComputeElapsedDays returns the fractional days since the card's last
// review. Never-reviewed cards and reviews timestamped before the last
// one (clock skew) yield zero.
func ComputeElapsedDays(card *domain.Card, now time.Time) float64 {
	if card.LastReviewAt == nil {
		return 0
	}
	days := now.Sub(*card.LastReviewAt).Seconds() / secondsPerDay
	if days < 0 {
		return 0
	}
	return days
}

// ReviewCard applies one graded review to the card in memory: schedules
// it, selects the grade's outcome, and updates memory, phase, next review
// date and review count. Nothing is persisted.
//
// A review is a lapse when the card had already reached the review or
// relearning phase and the grade is Again. On a lapse, unless the deck
// preserves stability, the prior memory is discarded and the card is
// rescheduled as if it were new; either way the deck's lapse floor is
// applied to the resulting interval.
func (s *Service) ReviewCard(card *domain.Card, grade domain.Grade, now time.Time, settings domain.DeckSettings) (srs.AppliedReview, error) {
	if !grade.Valid() {
		return srs.AppliedReview{}, domain.ErrInvalidGrade
	}

	elapsed := ComputeElapsedDays(card, now)
	prior := card.Memory
	lapse := grade == domain.GradeAgain &&
		(card.Phase == domain.PhaseReview || card.Phase == domain.PhaseRelearning)

	if lapse && !settings.PreserveStabilityOnLapse {
		prior = nil
		elapsed = 0
	}

	applied, err := s.scheduler.ApplyReview(card.ID, prior, grade, now, elapsed)
	if err != nil {
		return srs.AppliedReview{}, fmt.Errorf("scheduling review: %w", err)
	}

	if lapse {
		applied.Outcome = applyLapseFloor(applied.Outcome, settings.LapseMinIntervalDays, now)
	}

	card.ApplyReview(grade, applied.Outcome, now)

	s.logger.Debug("review applied",
		slog.String("card_id", card.ID.String()),
		slog.String("grade", string(grade)),
		slog.Bool("lapse", lapse),
		slog.Float64("scheduled_days", applied.Outcome.ScheduledDays))

	return applied, nil
}

// ReviewCardPersisted applies a review to the card and persists the
// updated card together with the review log atomically. On a storage
// failure the card is restored to its pre-review state so the caller can
// retry the same answer.
func (s *Service) ReviewCardPersisted(ctx context.Context, card *domain.Card, grade domain.Grade, now time.Time, settings domain.DeckSettings) (srs.AppliedReview, error) {
	snapshot := *card

	applied, err := s.ReviewCard(card, grade, now, settings)
	if err != nil {
		return srs.AppliedReview{}, err
	}

	if err := s.reviewStore.ApplyReview(ctx, card, applied.Log); err != nil {
		*card = snapshot
		return srs.AppliedReview{}, fmt.Errorf("persisting review: %w", err)
	}

	return applied, nil
}

// ReviewCardPersistedByID loads the card and its deck settings, then
// applies and persists the review.
func (s *Service) ReviewCardPersistedByID(ctx context.Context, cardID uuid.UUID, grade domain.Grade, now time.Time) (PersistedResult, error) {
	card, err := s.cardStore.GetCard(ctx, cardID)
	if err != nil {
		return PersistedResult{}, fmt.Errorf("loading card: %w", err)
	}

	deck, err := s.deckStore.GetDeck(ctx, card.DeckID)
	if err != nil {
		return PersistedResult{}, fmt.Errorf("loading deck: %w", err)
	}

	applied, err := s.ReviewCardPersisted(ctx, card, grade, now, deck.Settings)
	if err != nil {
		return PersistedResult{}, err
	}

	return PersistedResult{Card: card, Applied: applied}, nil
}

// applyLapseFloor raises the outcome's interval to the configured
// minimum for lapsed cards.
func applyLapseFloor(outcome domain.ReviewOutcome, minDays uint32, reviewedAt time.Time) domain.ReviewOutcome {
	floor := float64(minDays)
	if floor <= outcome.ScheduledDays {
		return outcome
	}
	outcome.ScheduledDays = floor
	outcome.NextReviewAt = reviewedAt.AddDate(0, 0, int(minDays))
	return outcome
}
