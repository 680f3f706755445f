package session

import (
	"github.com/google/uuid"

	"github.com/hazelview/studyloop/internal/domain"
)

// Plan is the outcome of card selection for one session: the cards in
// study order plus bookkeeping on how many came from the due and new
// pools.
type Plan struct {
	DeckID   uuid.UUID
	Cards    []*domain.Card
	DueCount int
	NewCount int
}

// buildPlan assembles a plan from the selected due and new cards. Due
// cards come first in their given order; new cards follow, deduplicated
// against the due list and optionally shuffled. When limit is non-zero
// the combined list is cut to at most limit cards.
func buildPlan(deckID uuid.UUID, due, fresh []*domain.Card, limit uint32, shuffle func(n int, swap func(i, j int))) Plan {
	seen := make(map[uuid.UUID]struct{}, len(due))
	cards := make([]*domain.Card, 0, len(due)+len(fresh))
	for _, c := range due {
		if _, ok := seen[c.ID]; ok {
			continue
		}
		seen[c.ID] = struct{}{}
		cards = append(cards, c)
	}
	dueCount := len(cards)

	deduped := make([]*domain.Card, 0, len(fresh))
	for _, c := range fresh {
		if _, ok := seen[c.ID]; ok {
			continue
		}
		seen[c.ID] = struct{}{}
		deduped = append(deduped, c)
	}
	if shuffle != nil {
		shuffle(len(deduped), func(i, j int) {
			deduped[i], deduped[j] = deduped[j], deduped[i]
		})
	}
	cards = append(cards, deduped...)
	newCount := len(cards) - dueCount

	if limit != 0 && uint64(len(cards)) > uint64(limit) {
		cards = cards[:limit]
		if dueCount > len(cards) {
			dueCount = len(cards)
		}
		newCount = len(cards) - dueCount
	}

	return Plan{
		DeckID:   deckID,
		Cards:    cards,
		DueCount: dueCount,
		NewCount: newCount,
	}
}
