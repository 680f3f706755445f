// Package memstore provides an in-memory implementation of the store
// interfaces. It backs the service tests and small single-process setups;
// ordering guarantees match the postgres implementation.
package memstore

import (
	"bytes"
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/hazelview/studyloop/internal/domain"
	"github.com/hazelview/studyloop/internal/store"
)

// Store holds all entities in maps guarded by a single mutex.
type Store struct {
	mu            sync.RWMutex
	decks         map[uuid.UUID]domain.Deck
	cards         map[uuid.UUID]domain.Card
	logs          []domain.ReviewLog
	summaries     []store.SummaryRow
	nextSummaryID int64
}

var (
	_ store.DeckStore    = (*Store)(nil)
	_ store.CardStore    = (*Store)(nil)
	_ store.ReviewStore  = (*Store)(nil)
	_ store.SummaryStore = (*Store)(nil)
)

// New creates an empty Store.
func New() *Store {
	return &Store{
		decks:         make(map[uuid.UUID]domain.Deck),
		cards:         make(map[uuid.UUID]domain.Card),
		nextSummaryID: 1,
	}
}

// CreateDeck implements store.DeckStore.
func (s *Store) CreateDeck(_ context.Context, deck *domain.Deck) error {
	if err := deck.Validate(); err != nil {
		return fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.decks[deck.ID] = *deck
	return nil
}

// GetDeck implements store.DeckStore.
func (s *Store) GetDeck(_ context.Context, id uuid.UUID) (*domain.Deck, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	deck, ok := s.decks[id]
	if !ok {
		return nil, store.ErrDeckNotFound
	}
	return &deck, nil
}

// UpdateDeckSettings implements store.DeckStore.
func (s *Store) UpdateDeckSettings(_ context.Context, id uuid.UUID, settings domain.DeckSettings) error {
	if err := settings.Validate(); err != nil {
		return fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	deck, ok := s.decks[id]
	if !ok {
		return store.ErrDeckNotFound
	}
	deck.Settings = settings
	s.decks[id] = deck
	return nil
}

// CreateCards implements store.CardStore.
func (s *Store) CreateCards(_ context.Context, cards []*domain.Card) error {
	for _, card := range cards {
		if err := card.Validate(); err != nil {
			return fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, card := range cards {
		s.cards[card.ID] = cloneCard(card)
	}
	return nil
}

// GetCard implements store.CardStore.
func (s *Store) GetCard(_ context.Context, id uuid.UUID) (*domain.Card, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	card, ok := s.cards[id]
	if !ok {
		return nil, store.ErrCardNotFound
	}
	out := cloneCard(&card)
	return &out, nil
}

// DueCards implements store.CardStore.
func (s *Store) DueCards(_ context.Context, deckID uuid.UUID, now time.Time, limit uint32) ([]*domain.Card, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	matched := s.collect(deckID, func(c *domain.Card) bool { return c.IsDue(now) })
	sortByNextReview(matched)
	return truncate(matched, limit), nil
}

// NewCards implements store.CardStore.
func (s *Store) NewCards(_ context.Context, deckID uuid.UUID, limit uint32) ([]*domain.Card, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	matched := s.collect(deckID, func(c *domain.Card) bool { return c.IsNew() })
	sortByCreated(matched)
	return truncate(matched, limit), nil
}

// ListCards implements store.CardStore.
func (s *Store) ListCards(_ context.Context, deckID uuid.UUID, limit uint32) ([]*domain.Card, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	matched := s.collect(deckID, func(*domain.Card) bool { return true })
	sortByCreated(matched)
	return truncate(matched, limit), nil
}

// ListCardsByTags implements store.CardStore.
func (s *Store) ListCardsByTags(_ context.Context, deckID uuid.UUID, tags []string) ([]*domain.Card, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	matched := s.collect(deckID, func(c *domain.Card) bool { return c.HasAnyTag(tags) })
	sortByCreated(matched)
	return matched, nil
}

// ListCardsInPhase implements store.CardStore.
func (s *Store) ListCardsInPhase(_ context.Context, deckID uuid.UUID, phase domain.CardPhase) ([]*domain.Card, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	matched := s.collect(deckID, func(c *domain.Card) bool { return c.Phase == phase })
	sortByNextReview(matched)
	return matched, nil
}

// ApplyReview implements store.ReviewStore.
func (s *Store) ApplyReview(_ context.Context, card *domain.Card, log domain.ReviewLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.cards[card.ID]; !ok {
		return store.ErrCardNotFound
	}
	s.cards[card.ID] = cloneCard(card)
	s.logs = append(s.logs, log)
	return nil
}

// ReviewLogs returns a copy of all appended review logs, in append order.
func (s *Store) ReviewLogs() []domain.ReviewLog {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.ReviewLog, len(s.logs))
	copy(out, s.logs)
	return out
}

// AppendSummary implements store.SummaryStore.
func (s *Store) AppendSummary(_ context.Context, summary domain.SessionSummary) (int64, error) {
	if err := summary.Validate(); err != nil {
		return 0, fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextSummaryID
	s.nextSummaryID++
	s.summaries = append(s.summaries, store.SummaryRow{ID: id, Summary: summary})
	return id, nil
}

// GetSummary implements store.SummaryStore.
func (s *Store) GetSummary(_ context.Context, id int64) (domain.SessionSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, row := range s.summaries {
		if row.ID == id {
			return row.Summary, nil
		}
	}
	return domain.SessionSummary{}, store.ErrSummaryNotFound
}

// ListSummaries implements store.SummaryStore.
func (s *Store) ListSummaries(ctx context.Context, deckID uuid.UUID, from, to time.Time) ([]domain.SessionSummary, error) {
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
func (s *Store) ListSummaryRows(_ context.Context, deckID uuid.UUID, from, to time.Time) ([]store.SummaryRow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var rows []store.SummaryRow
	for _, row := range s.summaries {
		completed := row.Summary.CompletedAt
		if row.Summary.DeckID == deckID && !completed.Before(from) && completed.Before(to) {
			rows = append(rows, row)
		}
	}
	sort.Slice(rows, func(i, j int) bool {
		if !rows[i].Summary.CompletedAt.Equal(rows[j].Summary.CompletedAt) {
			return rows[i].Summary.CompletedAt.Before(rows[j].Summary.CompletedAt)
		}
		return rows[i].ID < rows[j].ID
	})
	return rows, nil
}

// ListLatestSummaryRows implements store.SummaryStore.
func (s *Store) ListLatestSummaryRows(_ context.Context) ([]store.SummaryRow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	latest := make(map[uuid.UUID]store.SummaryRow)
	for _, row := range s.summaries {
		best, ok := latest[row.Summary.DeckID]
		if !ok || row.Summary.CompletedAt.After(best.Summary.CompletedAt) ||
			(row.Summary.CompletedAt.Equal(best.Summary.CompletedAt) && row.ID > best.ID) {
			latest[row.Summary.DeckID] = row
		}
	}

	rows := make([]store.SummaryRow, 0, len(latest))
	for _, row := range latest {
		rows = append(rows, row)
	}
	sort.Slice(rows, func(i, j int) bool {
		a, b := rows[i].Summary.DeckID, rows[j].Summary.DeckID
		return bytes.Compare(a[:], b[:]) < 0
	})
	return rows, nil
}

// collect gathers copies of the deck's cards matching the predicate.
// Callers must hold at least a read lock.
func (s *Store) collect(deckID uuid.UUID, match func(*domain.Card) bool) []*domain.Card {
	var out []*domain.Card
	for id := range s.cards {
		card := s.cards[id]
		if card.DeckID != deckID || !match(&card) {
			continue
		}
		c := cloneCard(&card)
		out = append(out, &c)
	}
	return out
}

func cloneCard(c *domain.Card) domain.Card {
	out := *c
	if c.Tags != nil {
		out.Tags = append([]string(nil), c.Tags...)
	}
	if c.Memory != nil {
		mem := *c.Memory
		out.Memory = &mem
	}
	if c.LastReviewAt != nil {
		at := *c.LastReviewAt
		out.LastReviewAt = &at
	}
	return out
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

func truncate(cards []*domain.Card, limit uint32) []*domain.Card {
	if uint64(len(cards)) > uint64(limit) {
		return cards[:limit]
	}
	return cards
}
