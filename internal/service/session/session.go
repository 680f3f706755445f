// Package session builds practice sessions from the scheduled card pool
// and walks the learner through them one card at a time. Selection is
// read-only (Planner); progression is a small one-way state machine
// (Session) driven by the loop service, which persists each answer and
// the final summary.
package session

import (
	"time"

	"github.com/google/uuid"

	"github.com/hazelview/studyloop/internal/domain"
)

// Status is a session's lifecycle state. Sessions move from active to
// completed exactly once and never back.
type Status string

// Possible session statuses.
const (
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
)

// Session walks the learner through a fixed list of cards. It is not
// safe for concurrent use: callers must serialize answer operations, one
// logical answer in flight at a time.
type Session struct {
	deckID      uuid.UUID
	settings    domain.DeckSettings
	cards       []*domain.Card
	logs        []domain.ReviewLog
	pos         int
	status      Status
	startedAt   time.Time
	completedAt time.Time
	summaryID   *int64
}

// New creates a session from a plan, truncating the card list to the
// micro-session size. Returns ErrEmptySession when no cards remain.
func New(plan Plan, settings domain.DeckSettings, startedAt time.Time) (*Session, error) {
	cards := plan.Cards
	if micro := settings.MicroSessionSize; micro != 0 && uint64(len(cards)) > uint64(micro) {
		cards = cards[:micro]
	}
	return newSession(plan.DeckID, cards, settings, startedAt)
}

// NewUnbounded creates a session holding the plan's full card list, used
// for all-cards review. Returns ErrEmptySession when the plan is empty.
func NewUnbounded(plan Plan, settings domain.DeckSettings, startedAt time.Time) (*Session, error) {
	return newSession(plan.DeckID, plan.Cards, settings, startedAt)
}

func newSession(deckID uuid.UUID, cards []*domain.Card, settings domain.DeckSettings, startedAt time.Time) (*Session, error) {
	if len(cards) == 0 {
		return nil, ErrEmptySession
	}
	return &Session{
		deckID:    deckID,
		settings:  settings,
		cards:     cards,
		logs:      make([]domain.ReviewLog, 0, len(cards)),
		status:    StatusActive,
		startedAt: startedAt,
	}, nil
}

// DeckID returns the deck this session studies.
func (s *Session) DeckID() uuid.UUID {
	return s.deckID
}

// Settings returns the deck settings the session was built with.
func (s *Session) Settings() domain.DeckSettings {
	return s.settings
}

// StartedAt returns when the session was created.
func (s *Session) StartedAt() time.Time {
	return s.startedAt
}

// Status returns the session's lifecycle state.
func (s *Session) Status() Status {
	return s.status
}

// IsComplete reports whether every card has been answered.
func (s *Session) IsComplete() bool {
	return s.status == StatusCompleted
}

// Current returns the card awaiting an answer.
// Returns ErrSessionCompleted when the session has finished.
func (s *Session) Current() (*domain.Card, error) {
	if s.status == StatusCompleted {
		return nil, ErrSessionCompleted
	}
	return s.cards[s.pos], nil
}

// RecordAnswer accepts the log of a successfully applied review for the
// current card and advances the session. Answering the last card
// completes the session, with the answer's timestamp as completion time.
// Returns ErrSessionCompleted when the session has already finished.
func (s *Session) RecordAnswer(log domain.ReviewLog) error {
	if s.status == StatusCompleted {
		return ErrSessionCompleted
	}

	s.logs = append(s.logs, log)
	s.pos++
	if s.pos == len(s.cards) {
		s.status = StatusCompleted
		s.completedAt = log.ReviewedAt
	}
	return nil
}

// Progress returns how far through the session the learner is.
func (s *Session) Progress() Progress {
	return Progress{
		Total:     len(s.cards),
		Answered:  s.pos,
		Remaining: len(s.cards) - s.pos,
	}
}

// Logs returns a copy of the answers recorded so far, in answer order.
func (s *Session) Logs() []domain.ReviewLog {
	out := make([]domain.ReviewLog, len(s.logs))
	copy(out, s.logs)
	return out
}

// Summary builds the session's summary from its recorded answers.
// Returns ErrSessionActive while cards remain unanswered.
func (s *Session) Summary() (domain.SessionSummary, error) {
	if s.status != StatusCompleted {
		return domain.SessionSummary{}, ErrSessionActive
	}
	return domain.SummaryFromLogs(s.deckID, s.startedAt, s.completedAt, s.logs), nil
}

// SummaryID returns the persisted summary's storage id, if assigned.
func (s *Session) SummaryID() (int64, bool) {
	if s.summaryID == nil {
		return 0, false
	}
	return *s.summaryID, true
}

// AssignSummaryID records the persisted summary's storage id. The id can
// be assigned at most once.
// Returns ErrSummaryAssigned on a second assignment.
func (s *Session) AssignSummaryID(id int64) error {
	if s.summaryID != nil {
		return ErrSummaryAssigned
	}
	s.summaryID = &id
	return nil
}
