package srs

import "github.com/hazelview/studyloop/internal/domain"

// ItemState is one candidate the memory model offers for a card: the
// recommended interval in days (fractional, unclamped) and the memory
// parameters that apply if the matching grade is chosen.
type ItemState struct {
	Interval float64
	Memory   domain.MemoryState
}

// Candidates holds the model's four candidate states, one per grade.
type Candidates struct {
	Again ItemState
	Hard  ItemState
	Good  ItemState
	Easy  ItemState
}

// MemoryModel is the external memory-decay algorithm the scheduler
// delegates to. A nil prior means the card has never been reviewed.
// Implementations must satisfy the ordering contract
// Again.Interval <= Hard.Interval <= Good.Interval <= Easy.Interval
// for all valid inputs.
type MemoryModel interface {
	NextStates(prior *domain.MemoryState, targetRetention float64, elapsedDays uint32) (Candidates, error)
}
