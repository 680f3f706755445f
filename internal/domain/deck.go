package domain

import (
	"errors"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Deck-specific validation errors
var (
	// ErrDeckIDEmpty is returned when a deck ID is empty or nil.
	ErrDeckIDEmpty = errors.New("deck ID cannot be empty")

	// ErrDeckNameEmpty is returned when a deck name is blank.
	ErrDeckNameEmpty = errors.New("deck name cannot be empty")

	// ErrInvalidLoadFactor is returned when the easy-day load factor is
	// outside (0, 1].
	ErrInvalidLoadFactor = errors.New("easy day load factor must be in (0, 1]")

	// ErrInvalidTargetRetention is returned when the FSRS target retention
	// is outside (0, 1].
	ErrInvalidTargetRetention = errors.New("target retention must be in (0, 1]")

	// ErrZeroMicroSession is returned when the micro session size is zero.
	ErrZeroMicroSession = errors.New("micro session size must be at least 1")
)

// WeekdayMask is a bitmask over time.Weekday, bit n set for weekday n.
type WeekdayMask uint8

// MaskOf builds a mask from the given weekdays.
func MaskOf(days ...time.Weekday) WeekdayMask {
	var m WeekdayMask
	for _, d := range days {
		m |= 1 << uint(d)
	}
	return m
}

// Contains reports whether the weekday is set in the mask.
func (m WeekdayMask) Contains(d time.Weekday) bool {
	return m&(1<<uint(d)) != 0
}

// DeckSettings holds the per-deck scheduling and session configuration.
// The session planner reads these; nothing in this module writes them back.
type DeckSettings struct {
	NewCardsPerDay    uint32 `json:"new_cards_per_day"`
	ReviewLimitPerDay uint32 `json:"review_limit_per_day"`
	MicroSessionSize  uint32 `json:"micro_session_size"`

	// ProtectOverload caps the due-card selection at the effective review
	// limit. When off, all due cards are offered to the plan builder.
	ProtectOverload bool `json:"protect_overload"`

	EasyDaysEnabled   bool        `json:"easy_days_enabled"`
	EasyDays          WeekdayMask `json:"easy_days"`
	EasyDayLoadFactor float64     `json:"easy_day_load_factor"`

	// PreserveStabilityOnLapse keeps the prior memory state when a card
	// lapses. When off, a lapsed card is rescheduled as if it were new.
	PreserveStabilityOnLapse bool `json:"preserve_stability_on_lapse"`

	// LapseMinIntervalDays is a floor on the Again outcome's interval
	// applied by the review service to lapsed cards.
	LapseMinIntervalDays uint32 `json:"lapse_min_interval_days"`

	// TargetRetention is the FSRS request retention, in (0, 1].
	TargetRetention float64 `json:"target_retention"`
}

// DefaultDeckSettings returns the settings applied to a deck that has not
// been configured: five new cards and thirty reviews a day, micro sessions
// of five, half load on weekends, lapses rescheduled from scratch with a
// one-day floor, and the standard 0.9 retention target.
func DefaultDeckSettings() DeckSettings {
	return DeckSettings{
		NewCardsPerDay:           5,
		ReviewLimitPerDay:        30,
		MicroSessionSize:         5,
		ProtectOverload:          true,
		EasyDaysEnabled:          true,
		EasyDays:                 MaskOf(time.Saturday, time.Sunday),
		EasyDayLoadFactor:        0.5,
		PreserveStabilityOnLapse: true,
		LapseMinIntervalDays:     1,
		TargetRetention:          0.9,
	}
}

// Validate checks if the DeckSettings have valid values.
// Returns an error if any field fails validation.
func (s DeckSettings) Validate() error {
	if s.MicroSessionSize == 0 {
		return ErrZeroMicroSession
	}

	if math.IsNaN(s.EasyDayLoadFactor) || s.EasyDayLoadFactor <= 0 || s.EasyDayLoadFactor > 1 {
		return ErrInvalidLoadFactor
	}

	if math.IsNaN(s.TargetRetention) || s.TargetRetention <= 0 || s.TargetRetention > 1 {
		return ErrInvalidTargetRetention
	}

	return nil
}

// IsEasyDay reports whether the given instant falls on a configured easy
// day. Always false when easy days are disabled.
func (s DeckSettings) IsEasyDay(now time.Time) bool {
	return s.EasyDaysEnabled && s.EasyDays.Contains(now.Weekday())
}

// Deck is a named collection of cards with its own scheduling settings.
type Deck struct {
	ID        uuid.UUID    `json:"id"`
	Name      string       `json:"name"`
	Settings  DeckSettings `json:"settings"`
	CreatedAt time.Time    `json:"created_at"`
}

// NewDeck creates a deck with default settings.
// Returns an error if validation fails.
func NewDeck(name string, now time.Time) (*Deck, error) {
	deck := &Deck{
		ID:        uuid.New(),
		Name:      name,
		Settings:  DefaultDeckSettings(),
		CreatedAt: now,
	}

	if err := deck.Validate(); err != nil {
		return nil, err
	}

	return deck, nil
}

// Validate checks if the Deck has valid data.
// Returns an error if any field fails validation.
func (d *Deck) Validate() error {
	if d.ID == uuid.Nil {
		return ErrDeckIDEmpty
	}

	if strings.TrimSpace(d.Name) == "" {
		return ErrDeckNameEmpty
	}

	return d.Settings.Validate()
}
