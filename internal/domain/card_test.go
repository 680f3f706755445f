package domain_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hazelview/studyloop/internal/domain"
)

func TestNewCard(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	deckID := uuid.New()

	t.Run("valid card", func(t *testing.T) {
		t.Parallel()

		card, err := domain.NewCard(deckID, "capital of France?", "Paris", now)
		require.NoError(t, err)
		assert.Equal(t, deckID, card.DeckID)
		assert.Equal(t, domain.PhaseNew, card.Phase)
		assert.True(t, card.IsNew())
		assert.Nil(t, card.Memory)
		assert.Equal(t, now, card.NextReviewAt)
	})

	t.Run("empty front", func(t *testing.T) {
		t.Parallel()

		_, err := domain.NewCard(deckID, "  ", "Paris", now)
		assert.ErrorIs(t, err, domain.ErrCardFrontEmpty)
	})

	t.Run("empty back", func(t *testing.T) {
		t.Parallel()

		_, err := domain.NewCard(deckID, "capital of France?", "", now)
		assert.ErrorIs(t, err, domain.ErrCardBackEmpty)
	})

	t.Run("nil deck id", func(t *testing.T) {
		t.Parallel()

		_, err := domain.NewCard(uuid.Nil, "front", "back", now)
		assert.ErrorIs(t, err, domain.ErrCardDeckIDEmpty)
	})
}

func TestCardIsDue(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	card, err := domain.NewCard(uuid.New(), "front", "back", now)
	require.NoError(t, err)

	// New cards are never due, even past their next review date.
	assert.False(t, card.IsDue(now.Add(48*time.Hour)))

	card.ApplyReview(domain.GradeGood, domain.ReviewOutcome{
		NextReviewAt:  now.AddDate(0, 0, 3),
		Stability:     3.1,
		Difficulty:    5.0,
		ScheduledDays: 3,
	}, now)

	assert.False(t, card.IsDue(now.AddDate(0, 0, 2)))
	assert.True(t, card.IsDue(now.AddDate(0, 0, 3)))
	assert.True(t, card.IsDue(now.AddDate(0, 0, 4)))
}

func TestCardHasAnyTag(t *testing.T) {
	t.Parallel()

	card := &domain.Card{Tags: []string{"verbs", "chapter-2"}}

	assert.True(t, card.HasAnyTag([]string{"chapter-2"}))
	assert.True(t, card.HasAnyTag([]string{"nouns", "verbs"}))
	assert.False(t, card.HasAnyTag([]string{"nouns"}))
	assert.False(t, card.HasAnyTag(nil))
}

func TestCardApplyReview(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	outcome := domain.ReviewOutcome{
		NextReviewAt:  now.AddDate(0, 0, 1),
		Stability:     1.2,
		Difficulty:    6.3,
		ScheduledDays: 1,
	}

	t.Run("updates memory and bookkeeping", func(t *testing.T) {
		t.Parallel()

		card, err := domain.NewCard(uuid.New(), "front", "back", now)
		require.NoError(t, err)

		card.ApplyReview(domain.GradeGood, outcome, now)

		require.NotNil(t, card.Memory)
		assert.Equal(t, 1.2, card.Memory.Stability)
		assert.Equal(t, 6.3, card.Memory.Difficulty)
		assert.Equal(t, outcome.NextReviewAt, card.NextReviewAt)
		assert.Equal(t, 1, card.ReviewCount)
		require.NotNil(t, card.LastReviewAt)
		assert.Equal(t, now, *card.LastReviewAt)
	})

	t.Run("phase transitions", func(t *testing.T) {
		t.Parallel()

		tests := []struct {
			name  string
			from  domain.CardPhase
			grade domain.Grade
			want  domain.CardPhase
		}{
			{"first review moves new to learning", domain.PhaseNew, domain.GradeAgain, domain.PhaseLearning},
			{"easy first review still lands in learning", domain.PhaseNew, domain.GradeEasy, domain.PhaseLearning},
			{"again keeps learning", domain.PhaseLearning, domain.GradeAgain, domain.PhaseLearning},
			{"hard keeps learning", domain.PhaseLearning, domain.GradeHard, domain.PhaseLearning},
			{"good graduates learning", domain.PhaseLearning, domain.GradeGood, domain.PhaseReview},
			{"easy graduates learning", domain.PhaseLearning, domain.GradeEasy, domain.PhaseReview},
			{"again lapses review", domain.PhaseReview, domain.GradeAgain, domain.PhaseRelearning},
			{"hard keeps review", domain.PhaseReview, domain.GradeHard, domain.PhaseReview},
			{"good keeps review", domain.PhaseReview, domain.GradeGood, domain.PhaseReview},
			{"again keeps relearning", domain.PhaseRelearning, domain.GradeAgain, domain.PhaseRelearning},
			{"hard keeps relearning", domain.PhaseRelearning, domain.GradeHard, domain.PhaseRelearning},
			{"good recovers relearning", domain.PhaseRelearning, domain.GradeGood, domain.PhaseReview},
		}

		for _, tc := range tests {
			t.Run(tc.name, func(t *testing.T) {
				t.Parallel()

				card, err := domain.NewCard(uuid.New(), "front", "back", now)
				require.NoError(t, err)
				card.Phase = tc.from

				card.ApplyReview(tc.grade, outcome, now)

				assert.Equal(t, tc.want, card.Phase)
			})
		}
	})
}
