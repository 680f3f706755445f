package session

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/hazelview/studyloop/internal/domain"
	"github.com/hazelview/studyloop/internal/store"
)

// Planner construction errors.
var (
	ErrNilCardStore    = errors.New("card store cannot be nil")
	ErrNilSummaryStore = errors.New("summary store cannot be nil")
)

// ApplyEasyDayLimit scales a daily quota by the easy-day load factor:
// floor(limit * factor), clamped to the uint32 range. The product is
// computed in float64 so large quotas do not overflow before flooring.
func ApplyEasyDayLimit(limit uint32, factor float64) uint32 {
	scaled := math.Floor(float64(limit) * factor)
	if math.IsNaN(scaled) || scaled <= 0 {
		return 0
	}
	if scaled >= float64(math.MaxUint32) {
		return math.MaxUint32
	}
	return uint32(scaled)
}

// EffectiveDailyLimits returns the review and new-card quotas for the
// given instant, scaled down when it falls on a configured easy day.
func EffectiveDailyLimits(settings domain.DeckSettings, now time.Time) (reviewLimit, newLimit uint32) {
	if settings.IsEasyDay(now) {
		return ApplyEasyDayLimit(settings.ReviewLimitPerDay, settings.EasyDayLoadFactor),
			ApplyEasyDayLimit(settings.NewCardsPerDay, settings.EasyDayLoadFactor)
	}
	return settings.ReviewLimitPerDay, settings.NewCardsPerDay
}

// Planner selects the cards for a session. It only reads from the
// stores and never mutates cards or settings.
type Planner struct {
	cardStore    store.CardStore
	summaryStore store.SummaryStore
	shuffleNew   bool
	logger       *slog.Logger

	mu  sync.Mutex
	rng *rand.Rand
}

// NewPlanner creates a Planner. When shuffleNew is set, new cards are
// shuffled into random order within their segment of the plan.
// Returns an error if any store is nil.
func NewPlanner(cardStore store.CardStore, summaryStore store.SummaryStore, shuffleNew bool, logger *slog.Logger) (*Planner, error) {
	if cardStore == nil {
		return nil, ErrNilCardStore
	}
	if summaryStore == nil {
		return nil, ErrNilSummaryStore
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Planner{
		cardStore:    cardStore,
		summaryStore: summaryStore,
		shuffleNew:   shuffleNew,
		logger:       logger.With(slog.String("component", "session_planner")),
		rng:          rand.New(rand.NewSource(time.Now().UnixNano())),
	}, nil
}

// BuildPlan performs the default quota-bounded selection: due cards up to
// the effective review limit, then new cards up to the effective
// new-card limit, capped at the micro-session size. When overload
// protection is off, all due cards are fetched and only the micro cap
// bounds the session.
func (p *Planner) BuildPlan(ctx context.Context, deckID uuid.UUID, settings domain.DeckSettings, now time.Time) (Plan, error) {
	reviewLimit, newLimit := EffectiveDailyLimits(settings, now)

	dueLimit := reviewLimit
	if !settings.ProtectOverload {
		dueLimit = math.MaxUint32
	}

	due, err := p.cardStore.DueCards(ctx, deckID, now, dueLimit)
	if err != nil {
		return Plan{}, &StorageError{Err: fmt.Errorf("fetching due cards: %w", err)}
	}

	fresh, err := p.cardStore.NewCards(ctx, deckID, newLimit)
	if err != nil {
		return Plan{}, &StorageError{Err: fmt.Errorf("fetching new cards: %w", err)}
	}

	plan := buildPlan(deckID, due, fresh, settings.MicroSessionSize, p.shuffler())

	p.logger.Debug("session plan built",
		slog.String("deck_id", deckID.String()),
		slog.Int("due", plan.DueCount),
		slog.Int("new", plan.NewCount),
		slog.Uint64("review_limit", uint64(reviewLimit)),
		slog.Uint64("new_limit", uint64(newLimit)))

	return plan, nil
}

// BuildPlanAllCards selects every card in the deck, ignoring quotas and
// the micro cap. Cards keep repository order.
func (p *Planner) BuildPlanAllCards(ctx context.Context, deckID uuid.UUID, now time.Time) (Plan, error) {
	cards, err := p.cardStore.ListCards(ctx, deckID, math.MaxUint32)
	if err != nil {
		return Plan{}, &StorageError{Err: fmt.Errorf("listing cards: %w", err)}
	}

	plan := Plan{DeckID: deckID, Cards: cards}
	for _, c := range cards {
		if c.IsDue(now) {
			plan.DueCount++
		} else if c.IsNew() {
			plan.NewCount++
		}
	}
	return plan, nil
}

// BuildPlanMistakes selects the cards currently in the relearning phase,
// ordered by (next review date, id).
func (p *Planner) BuildPlanMistakes(ctx context.Context, deckID uuid.UUID) (Plan, error) {
	cards, err := p.cardStore.ListCardsInPhase(ctx, deckID, domain.PhaseRelearning)
	if err != nil {
		return Plan{}, &StorageError{Err: fmt.Errorf("listing relearning cards: %w", err)}
	}

	return Plan{DeckID: deckID, Cards: cards, DueCount: len(cards)}, nil
}

// BuildPlanWithTags selects cards carrying any of the given tags,
// partitioned into due and new by the cards' own predicates and bounded
// by the effective quotas. An empty tag list degrades to the default
// selection. Returns ErrEmptySession when no tagged card is due or new.
func (p *Planner) BuildPlanWithTags(ctx context.Context, deckID uuid.UUID, settings domain.DeckSettings, tags []string, now time.Time) (Plan, error) {
	if len(tags) == 0 {
		return p.BuildPlan(ctx, deckID, settings, now)
	}

	cards, err := p.cardStore.ListCardsByTags(ctx, deckID, tags)
	if err != nil {
		return Plan{}, &StorageError{Err: fmt.Errorf("fetching cards by tags: %w", err)}
	}

	var due, fresh []*domain.Card
	for _, c := range cards {
		switch {
		case c.IsDue(now):
			due = append(due, c)
		case c.IsNew():
			fresh = append(fresh, c)
		}
	}

	if len(due) == 0 && len(fresh) == 0 {
		return Plan{}, ErrEmptySession
	}

	reviewLimit, newLimit := EffectiveDailyLimits(settings, now)

	sortByNextReview(due)
	due = truncateCards(due, reviewLimit)
	sortByCreated(fresh)
	fresh = truncateCards(fresh, newLimit)

	return buildPlan(deckID, due, fresh, settings.MicroSessionSize, p.shuffler()), nil
}

// GetSummary retrieves a persisted session summary by id.
func (p *Planner) GetSummary(ctx context.Context, id int64) (domain.SessionSummary, error) {
	summary, err := p.summaryStore.GetSummary(ctx, id)
	if err != nil {
		if store.IsNotFoundError(err) {
			return domain.SessionSummary{}, err
		}
		return domain.SessionSummary{}, &StorageError{Err: fmt.Errorf("fetching summary: %w", err)}
	}
	return summary, nil
}

// ListSummaries retrieves the deck's summaries completed in [from, to).
func (p *Planner) ListSummaries(ctx context.Context, deckID uuid.UUID, from, to time.Time) ([]domain.SessionSummary, error) {
	summaries, err := p.summaryStore.ListSummaries(ctx, deckID, from, to)
	if err != nil {
		return nil, &StorageError{Err: fmt.Errorf("listing summaries: %w", err)}
	}
	return summaries, nil
}

// RecentSummaries retrieves the deck's summaries from the last n days.
func (p *Planner) RecentSummaries(ctx context.Context, deckID uuid.UUID, now time.Time, days int) ([]domain.SessionSummary, error) {
	return p.ListSummaries(ctx, deckID, now.AddDate(0, 0, -days), now.AddDate(0, 0, 1))
}

// LatestSummaries retrieves the most recent summary row of every deck.
func (p *Planner) LatestSummaries(ctx context.Context) ([]store.SummaryRow, error) {
	rows, err := p.summaryStore.ListLatestSummaryRows(ctx)
	if err != nil {
		return nil, &StorageError{Err: fmt.Errorf("listing latest summaries: %w", err)}
	}
	return rows, nil
}

// shuffler returns the shuffle function for new cards, or nil when
// shuffling is disabled. The rng is guarded so concurrent selection
// calls stay safe.
func (p *Planner) shuffler() func(n int, swap func(i, j int)) {
	if !p.shuffleNew {
		return nil
	}
	return func(n int, swap func(i, j int)) {
		p.mu.Lock()
		defer p.mu.Unlock()
		p.rng.Shuffle(n, swap)
	}
}

func sortByNextReview(cards []*domain.Card) {
	sort.Slice(cards, func(i, j int) bool {
		if !cards[i].NextReviewAt.Equal(cards[j].NextReviewAt) {
			return cards[i].NextReviewAt.Before(cards[j].NextReviewAt)
		}
		return lessID(cards[i].ID, cards[j].ID)
	})
}

func sortByCreated(cards []*domain.Card) {
	sort.Slice(cards, func(i, j int) bool {
		if !cards[i].CreatedAt.Equal(cards[j].CreatedAt) {
			return cards[i].CreatedAt.Before(cards[j].CreatedAt)
		}
		return lessID(cards[i].ID, cards[j].ID)
	})
}

func lessID(a, b uuid.UUID) bool {
	return bytes.Compare(a[:], b[:]) < 0
}

func truncateCards(cards []*domain.Card, limit uint32) []*domain.Card {
	if uint64(len(cards)) > uint64(limit) {
		return cards[:limit]
	}
	return cards
}
