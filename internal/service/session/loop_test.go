package session_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hazelview/studyloop/internal/domain"
	"github.com/hazelview/studyloop/internal/domain/srs"
	"github.com/hazelview/studyloop/internal/platform/clock"
	"github.com/hazelview/studyloop/internal/service/review"
	"github.com/hazelview/studyloop/internal/service/session"
	"github.com/hazelview/studyloop/internal/store"
	"github.com/hazelview/studyloop/internal/store/memstore"
)

// stubModel returns fixed intervals, optionally failing every call.
type stubModel struct {
	err error
}

func (m *stubModel) NextStates(*domain.MemoryState, float64, uint32) (srs.Candidates, error) {
	if m.err != nil {
		return srs.Candidates{}, m.err
	}
	item := func(interval float64) srs.ItemState {
		return srs.ItemState{Interval: interval, Memory: domain.MemoryState{Stability: interval, Difficulty: 5}}
	}
	return srs.Candidates{Again: item(0.5), Hard: item(2), Good: item(4), Easy: item(8)}, nil
}

// flakyReviewStore fails the first failures calls, then delegates.
type flakyReviewStore struct {
	inner    store.ReviewStore
	failures int
}

func (f *flakyReviewStore) ApplyReview(ctx context.Context, card *domain.Card, log domain.ReviewLog) error {
	if f.failures > 0 {
		f.failures--
		return errors.New("connection reset")
	}
	return f.inner.ApplyReview(ctx, card, log)
}

// flakySummaryStore fails the first failures appends, then delegates.
type flakySummaryStore struct {
	*memstore.Store
	failures int
}

func (f *flakySummaryStore) AppendSummary(ctx context.Context, summary domain.SessionSummary) (int64, error) {
	if f.failures > 0 {
		f.failures--
		return 0, errors.New("connection reset")
	}
	return f.Store.AppendSummary(ctx, summary)
}

type loopFixture struct {
	store *memstore.Store
	clk   *clock.Fixed
	loop  *session.LoopService
}

func newLoop(t *testing.T, model srs.MemoryModel, reviewStore store.ReviewStore, summaries store.SummaryStore) loopFixture {
	t.Helper()

	s := memstore.New()
	if reviewStore == nil {
		reviewStore = s
	}
	if summaries == nil {
		summaries = s
	}

	reviews, err := review.NewService(srs.New(model), s, s, reviewStore, nil)
	require.NoError(t, err)
	planner, err := session.NewPlanner(s, summaries, false, nil)
	require.NoError(t, err)

	clk := clock.NewFixed(monday)
	loop, err := session.NewLoopService(planner, reviews, s, summaries, clk, nil)
	require.NoError(t, err)

	return loopFixture{store: s, clk: clk, loop: loop}
}

func TestLoopFullSession(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	fx := newLoop(t, &stubModel{}, nil, nil)

	settings := domain.DefaultDeckSettings()
	settings.MicroSessionSize = 3
	settings.ReviewLimitPerDay = 10
	settings.NewCardsPerDay = 10
	deck := seedDeck(t, fx.store, settings)
	seedDueCard(t, fx.store, deck.ID, monday.Add(-2*time.Hour))
	seedDueCard(t, fx.store, deck.ID, monday.Add(-time.Hour))
	seedNewCard(t, fx.store, deck.ID, monday.Add(-time.Minute))
	seedNewCard(t, fx.store, deck.ID, monday)

	sess, err := fx.loop.Start(ctx, deck.ID)
	require.NoError(t, err)
	require.Equal(t, 3, sess.Progress().Total)

	grades := []domain.Grade{domain.GradeGood, domain.GradeAgain, domain.GradeEasy}
	var last session.AnswerResult
	for i, grade := range grades {
		fx.clk.Advance(time.Minute)
		card, err := sess.Current()
		require.NoError(t, err)

		last, err = fx.loop.AnswerCurrent(ctx, sess, grade)
		require.NoError(t, err)
		assert.Equal(t, i+1, last.Progress.Answered)

		// The persisted card reflects the applied outcome.
		stored, err := fx.store.GetCard(ctx, card.ID)
		require.NoError(t, err)
		assert.Equal(t, last.Applied.Outcome.NextReviewAt, stored.NextReviewAt)
	}

	assert.True(t, sess.IsComplete())
	require.NotNil(t, last.SummaryID)

	summary, err := fx.store.GetSummary(ctx, *last.SummaryID)
	require.NoError(t, err)
	assert.Equal(t, deck.ID, summary.DeckID)
	assert.Equal(t, 3, summary.TotalCards)
	assert.Equal(t, 1, summary.AgainCount)
	assert.Equal(t, 1, summary.GoodCount)
	assert.Equal(t, 1, summary.EasyCount)

	_, err = fx.loop.AnswerCurrent(ctx, sess, domain.GradeGood)
	assert.ErrorIs(t, err, session.ErrSessionCompleted)
}

func TestLoopStorageFailureIsRetryable(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := memstore.New()
	flaky := &flakyReviewStore{inner: s, failures: 1}

	reviews, err := review.NewService(srs.New(&stubModel{}), s, s, flaky, nil)
	require.NoError(t, err)
	planner, err := session.NewPlanner(s, s, false, nil)
	require.NoError(t, err)
	loop, err := session.NewLoopService(planner, reviews, s, s, clock.NewFixed(monday), nil)
	require.NoError(t, err)

	deck := seedDeck(t, s, domain.DefaultDeckSettings())
	card := seedDueCard(t, s, deck.ID, monday.Add(-time.Hour))

	sess, err := loop.Start(ctx, deck.ID)
	require.NoError(t, err)

	_, err = loop.AnswerCurrent(ctx, sess, domain.GradeGood)
	var storageErr *session.StorageError
	require.ErrorAs(t, err, &storageErr)

	// The session did not advance and the same card can be answered again.
	assert.Equal(t, 0, sess.Progress().Answered)
	current, err := sess.Current()
	require.NoError(t, err)
	assert.Equal(t, card.ID, current.ID)

	result, err := loop.AnswerCurrent(ctx, sess, domain.GradeGood)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Progress.Answered)
}

func TestLoopSchedulingFailure(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	fx := newLoop(t, &stubModel{err: errors.New("bad weights")}, nil, nil)

	deck := seedDeck(t, fx.store, domain.DefaultDeckSettings())
	seedDueCard(t, fx.store, deck.ID, monday.Add(-time.Hour))

	sess, err := fx.loop.Start(ctx, deck.ID)
	require.NoError(t, err)

	_, err = fx.loop.AnswerCurrent(ctx, sess, domain.GradeGood)
	var reviewErr *session.ReviewError
	require.ErrorAs(t, err, &reviewErr)
	assert.Equal(t, 0, sess.Progress().Answered)
}

func TestLoopSummaryAppendRetry(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := memstore.New()
	summaries := &flakySummaryStore{Store: s, failures: 1}

	reviews, err := review.NewService(srs.New(&stubModel{}), s, s, s, nil)
	require.NoError(t, err)
	planner, err := session.NewPlanner(s, summaries, false, nil)
	require.NoError(t, err)
	loop, err := session.NewLoopService(planner, reviews, s, summaries, clock.NewFixed(monday), nil)
	require.NoError(t, err)

	deck := seedDeck(t, s, domain.DefaultDeckSettings())
	seedDueCard(t, s, deck.ID, monday.Add(-time.Hour))

	sess, err := loop.Start(ctx, deck.ID)
	require.NoError(t, err)

	// The last answer completes the session but the summary append fails.
	result, err := loop.AnswerCurrent(ctx, sess, domain.GradeGood)
	var storageErr *session.StorageError
	require.ErrorAs(t, err, &storageErr)
	assert.True(t, sess.IsComplete())
	assert.Nil(t, result.SummaryID)
	_, ok := sess.SummaryID()
	assert.False(t, ok)

	// Retrying persists exactly one summary; later calls return the same id.
	id, err := loop.FinalizeSummary(ctx, sess)
	require.NoError(t, err)
	again, err := loop.FinalizeSummary(ctx, sess)
	require.NoError(t, err)
	assert.Equal(t, id, again)

	rows, err := s.ListSummaryRows(ctx, deck.ID, monday.AddDate(0, 0, -1), monday.AddDate(0, 0, 1))
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

func TestLoopStartVariants(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("unknown deck", func(t *testing.T) {
		t.Parallel()

		fx := newLoop(t, &stubModel{}, nil, nil)
		_, err := fx.loop.Start(ctx, uuid.New())
		var storageErr *session.StorageError
		require.ErrorAs(t, err, &storageErr)
		assert.ErrorIs(t, err, store.ErrDeckNotFound)
	})

	t.Run("no mistakes", func(t *testing.T) {
		t.Parallel()

		fx := newLoop(t, &stubModel{}, nil, nil)
		deck := seedDeck(t, fx.store, domain.DefaultDeckSettings())
		seedNewCard(t, fx.store, deck.ID, monday)

		_, err := fx.loop.StartMistakes(ctx, deck.ID)
		assert.ErrorIs(t, err, session.ErrEmptySession)
	})

	t.Run("no tagged cards", func(t *testing.T) {
		t.Parallel()

		fx := newLoop(t, &stubModel{}, nil, nil)
		deck := seedDeck(t, fx.store, domain.DefaultDeckSettings())
		seedNewCard(t, fx.store, deck.ID, monday, "nouns")

		_, err := fx.loop.StartWithTags(ctx, deck.ID, []string{"idioms"})
		assert.ErrorIs(t, err, session.ErrEmptySession)
	})

	t.Run("all cards ignores micro cap", func(t *testing.T) {
		t.Parallel()

		fx := newLoop(t, &stubModel{}, nil, nil)
		settings := domain.DefaultDeckSettings()
		settings.MicroSessionSize = 2
		deck := seedDeck(t, fx.store, settings)
		for i := 0; i < 5; i++ {
			seedNewCard(t, fx.store, deck.ID, monday.Add(time.Duration(i)*time.Minute))
		}

		sess, err := fx.loop.StartAllCards(ctx, deck.ID)
		require.NoError(t, err)
		assert.Equal(t, 5, sess.Progress().Total)
	})
}
