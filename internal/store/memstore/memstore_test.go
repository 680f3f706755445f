package memstore_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hazelview/studyloop/internal/domain"
	"github.com/hazelview/studyloop/internal/store"
	"github.com/hazelview/studyloop/internal/store/memstore"
)

func seedDeck(t *testing.T, s *memstore.Store, now time.Time) *domain.Deck {
	t.Helper()
	deck, err := domain.NewDeck("test deck", now)
	require.NoError(t, err)
	require.NoError(t, s.CreateDeck(context.Background(), deck))
	return deck
}

func seedCard(t *testing.T, s *memstore.Store, deckID uuid.UUID, createdAt time.Time, tags ...string) *domain.Card {
	t.Helper()
	card, err := domain.NewCard(deckID, "front", "back", createdAt)
	require.NoError(t, err)
	card.Tags = tags
	require.NoError(t, s.CreateCards(context.Background(), []*domain.Card{card}))
	return card
}

// review marks the card reviewed so it leaves the new pool and becomes
// due at the given date.
func review(t *testing.T, s *memstore.Store, card *domain.Card, grade domain.Grade, reviewedAt, nextAt time.Time) {
	t.Helper()
	card.ApplyReview(grade, domain.ReviewOutcome{
		NextReviewAt:  nextAt,
		Stability:     2,
		Difficulty:    5,
		ScheduledDays: 1,
	}, reviewedAt)
	require.NoError(t, s.ApplyReview(context.Background(), card, domain.NewReviewLog(card.ID, grade, reviewedAt)))
}

func TestDeckStore(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	now := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	s := memstore.New()
	deck := seedDeck(t, s, now)

	got, err := s.GetDeck(ctx, deck.ID)
	require.NoError(t, err)
	assert.Equal(t, deck.Name, got.Name)

	_, err = s.GetDeck(ctx, uuid.New())
	assert.ErrorIs(t, err, store.ErrDeckNotFound)
	assert.True(t, store.IsNotFoundError(err))

	settings := deck.Settings
	settings.NewCardsPerDay = 2
	require.NoError(t, s.UpdateDeckSettings(ctx, deck.ID, settings))
	got, err = s.GetDeck(ctx, deck.ID)
	require.NoError(t, err)
	assert.Equal(t, uint32(2), got.Settings.NewCardsPerDay)

	settings.TargetRetention = 2
	assert.ErrorIs(t, s.UpdateDeckSettings(ctx, deck.ID, settings), store.ErrInvalidEntity)
}

func TestDueAndNewCards(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	now := time.Date(2025, 6, 10, 9, 0, 0, 0, time.UTC)
	s := memstore.New()
	deck := seedDeck(t, s, now)

	// Three new cards created at distinct times, two of them reviewed and
	// due again at distinct dates.
	c1 := seedCard(t, s, deck.ID, now.Add(-72*time.Hour))
	c2 := seedCard(t, s, deck.ID, now.Add(-48*time.Hour))
	c3 := seedCard(t, s, deck.ID, now.Add(-24*time.Hour))
	review(t, s, c1, domain.GradeGood, now.Add(-48*time.Hour), now.Add(-time.Hour))
	review(t, s, c2, domain.GradeGood, now.Add(-24*time.Hour), now.Add(-2*time.Hour))

	due, err := s.DueCards(ctx, deck.ID, now, 10)
	require.NoError(t, err)
	require.Len(t, due, 2)
	// Ordered by next review date: c2 became due before c1.
	assert.Equal(t, c2.ID, due[0].ID)
	assert.Equal(t, c1.ID, due[1].ID)

	due, err = s.DueCards(ctx, deck.ID, now, 1)
	require.NoError(t, err)
	require.Len(t, due, 1)
	assert.Equal(t, c2.ID, due[0].ID)

	fresh, err := s.NewCards(ctx, deck.ID, 10)
	require.NoError(t, err)
	require.Len(t, fresh, 1)
	assert.Equal(t, c3.ID, fresh[0].ID)

	none, err := s.NewCards(ctx, deck.ID, 0)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestListCardsByTags(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	now := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	s := memstore.New()
	deck := seedDeck(t, s, now)

	tagged := seedCard(t, s, deck.ID, now, "verbs")
	seedCard(t, s, deck.ID, now.Add(time.Minute), "nouns")
	both := seedCard(t, s, deck.ID, now.Add(2*time.Minute), "verbs", "nouns")

	cards, err := s.ListCardsByTags(ctx, deck.ID, []string{"verbs"})
	require.NoError(t, err)
	require.Len(t, cards, 2)
	assert.Equal(t, tagged.ID, cards[0].ID)
	assert.Equal(t, both.ID, cards[1].ID)

	cards, err = s.ListCardsByTags(ctx, deck.ID, []string{"idioms"})
	require.NoError(t, err)
	assert.Empty(t, cards)
}

func TestListCardsInPhase(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	now := time.Date(2025, 6, 10, 9, 0, 0, 0, time.UTC)
	s := memstore.New()
	deck := seedDeck(t, s, now)

	lapsed := seedCard(t, s, deck.ID, now.Add(-time.Hour))
	lapsed.Phase = domain.PhaseReview
	lapsed.ReviewCount = 3
	require.NoError(t, s.ApplyReview(ctx, lapsed, domain.NewReviewLog(lapsed.ID, domain.GradeGood, now)))
	review(t, s, lapsed, domain.GradeAgain, now, now.AddDate(0, 0, 1))
	seedCard(t, s, deck.ID, now)

	cards, err := s.ListCardsInPhase(ctx, deck.ID, domain.PhaseRelearning)
	require.NoError(t, err)
	require.Len(t, cards, 1)
	assert.Equal(t, lapsed.ID, cards[0].ID)
}

func TestApplyReviewUnknownCard(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	s := memstore.New()
	card, err := domain.NewCard(uuid.New(), "front", "back", now)
	require.NoError(t, err)

	err = s.ApplyReview(context.Background(), card, domain.NewReviewLog(card.ID, domain.GradeGood, now))
	assert.ErrorIs(t, err, store.ErrCardNotFound)
}

func TestSummaryStore(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := memstore.New()
	deckA := uuid.New()
	deckB := uuid.New()
	base := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)

	mk := func(deckID uuid.UUID, completed time.Time) domain.SessionSummary {
		sum, err := domain.NewSessionSummary(deckID, completed.Add(-10*time.Minute), completed, 2, 0, 0, 2, 0)
		require.NoError(t, err)
		return sum
	}

	id1, err := s.AppendSummary(ctx, mk(deckA, base))
	require.NoError(t, err)
	id2, err := s.AppendSummary(ctx, mk(deckA, base.AddDate(0, 0, 1)))
	require.NoError(t, err)
	_, err = s.AppendSummary(ctx, mk(deckB, base.AddDate(0, 0, 2)))
	require.NoError(t, err)

	assert.Equal(t, int64(1), id1)
	assert.Equal(t, int64(2), id2)

	got, err := s.GetSummary(ctx, id1)
	require.NoError(t, err)
	assert.Equal(t, deckA, got.DeckID)

	_, err = s.GetSummary(ctx, 99)
	assert.ErrorIs(t, err, store.ErrSummaryNotFound)

	// Range is half-open: the day-two summary falls outside [base, base+1d).
	rows, err := s.ListSummaryRows(ctx, deckA, base, base.AddDate(0, 0, 1))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, id1, rows[0].ID)

	summaries, err := s.ListSummaries(ctx, deckA, base, base.AddDate(0, 0, 7))
	require.NoError(t, err)
	assert.Len(t, summaries, 2)

	latest, err := s.ListLatestSummaryRows(ctx)
	require.NoError(t, err)
	require.Len(t, latest, 2)
	for _, row := range latest {
		if row.Summary.DeckID == deckA {
			assert.Equal(t, id2, row.ID)
		}
	}

	// Inconsistent summaries are rejected before assignment of an id.
	bad := mk(deckA, base)
	bad.GoodCount = 1
	_, err = s.AppendSummary(ctx, bad)
	assert.ErrorIs(t, err, store.ErrInvalidEntity)
}
