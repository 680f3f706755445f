// Package domain contains the core entities of the spaced repetition
// system: cards, decks, review grades and outcomes, and session summaries.
// Entities validate themselves; persistence and scheduling live elsewhere.
package domain
