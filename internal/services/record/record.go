// Package record holds the per-player "keep the best value" rule shared by the trackers.
package record

import "github.com/mcoot/omnigram/internal/model"

// Tracker decides whether a candidate replaces a player's current best
type Tracker[T any] struct {
	beats func(candidate, best T) bool
}

// NewTracker creates a Tracker. beats must report whether candidate strictly improves on best.
func NewTracker[T any](beats func(candidate, best T) bool) Tracker[T] {
	return Tracker[T]{beats: beats}
}

// Offer returns the best value after considering candidate and whether candidate took over.
// A nil best means the player has no history, so any candidate wins.
func (t Tracker[T]) Offer(best *T, candidate T) (T, bool) {
	if best == nil || t.beats(candidate, *best) {
		return candidate, true
	}
	return *best, false
}

// Highest keeps the largest integer; ties keep the existing value
var Highest = NewTracker(func(candidate, best int) bool {
	return candidate > best
})

// Longest keeps the word with the most characters; ties keep the existing word
var Longest = NewTracker(func(candidate, best string) bool {
	return model.WordLength(candidate) > model.WordLength(best)
})
