// Package fsrsbridge adapts the go-fsrs library to the memory model
// contract the scheduler expects. The bridge works in relative time: it
// reconstructs an FSRS card from the stored stability/difficulty pair and
// the elapsed-day count, so callers never need to persist FSRS's own card
// representation.
package fsrsbridge

import (
	"time"

	fsrs "github.com/open-spaced-repetition/go-fsrs"

	"github.com/hazelview/studyloop/internal/domain"
	"github.com/hazelview/studyloop/internal/domain/srs"
)

// Model wraps an fsrs.Parameters set.
type Model struct {
	params fsrs.Parameters
}

var _ srs.MemoryModel = (*Model)(nil)

// New creates a Model with the library's default weights.
func New() *Model {
	return &Model{params: fsrs.DefaultParam()}
}

// NewWithParams creates a Model with custom FSRS parameters. The request
// retention on the parameters is overridden per call.
func NewWithParams(params fsrs.Parameters) *Model {
	return &Model{params: params}
}

// NextStates computes the four candidate states for a card. A nil prior
// means the card has never been reviewed; otherwise the card is treated
// as a review-phase card last seen elapsedDays ago.
func (m *Model) NextStates(prior *domain.MemoryState, targetRetention float64, elapsedDays uint32) (srs.Candidates, error) {
	params := m.params
	params.RequestRetention = targetRetention

	// All arithmetic is relative to a fixed reference instant; only the
	// differences between Due, LastReview and "now" matter to FSRS.
	ref := time.Unix(0, 0).UTC()

	var card fsrs.Card
	if prior == nil {
		card = fsrs.NewCard()
		card.Due = ref
	} else {
		card = fsrs.Card{
			Due:         ref,
			Stability:   prior.Stability,
			Difficulty:  prior.Difficulty,
			ElapsedDays: uint64(elapsedDays),
			Reps:        1,
			State:       fsrs.Review,
			LastReview:  ref.AddDate(0, 0, -int(elapsedDays)),
		}
	}

	infos := params.Repeat(card, ref)

	return srs.Candidates{
		Again: itemState(infos[fsrs.Again], ref),
		Hard:  itemState(infos[fsrs.Hard], ref),
		Good:  itemState(infos[fsrs.Good], ref),
		Easy:  itemState(infos[fsrs.Easy], ref),
	}, nil
}

// itemState converts one FSRS scheduling result into a candidate. The
// interval is taken from the due date so that sub-day learning steps come
// through as fractions rather than a truncated zero.
func itemState(info fsrs.SchedulingInfo, ref time.Time) srs.ItemState {
	c := info.Card
	return srs.ItemState{
		Interval: c.Due.Sub(ref).Hours() / 24,
		Memory: domain.MemoryState{
			Stability:  c.Stability,
			Difficulty: c.Difficulty,
		},
	}
}
