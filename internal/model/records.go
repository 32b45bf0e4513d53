package model

import (
	"time"
	"unicode/utf8"
)

// LongestWordRecord is one row of a player's longest-word history.
// The player's current longest word is the row with the greatest Length, earliest first on ties.
type LongestWordRecord struct {
	ID           int64     `json:"id"`
	PlayerID     PlayerID  `json:"player_id"`
	Word         string    `json:"word"`
	SessionToken string    `json:"session_token"`
	CreatedAt    time.Time `json:"created_at"`
}

// Length returns the word length in characters
func (r *LongestWordRecord) Length() int {
	return WordLength(r.Word)
}

// WordLength counts characters rather than bytes
func WordLength(word string) int {
	return utf8.RuneCountInString(word)
}

// WordCountRecord is the single per-player high-score row
type WordCountRecord struct {
	PlayerID         PlayerID  `json:"player_id"`
	WordCount        int       `json:"word_count"`
	HighestWordCount int       `json:"highest_word_count"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// PlayerStreak is one day of a player's login history.
// SessionDate is a CalendarDate value; at most one row exists per player per date.
type PlayerStreak struct {
	ID            int64     `json:"id"`
	PlayerID      PlayerID  `json:"player_id"`
	SessionDate   time.Time `json:"session_date"`
	CurrentStreak int       `json:"current_streak"`
	HighestStreak int       `json:"highest_streak"`
	CreatedAt     time.Time `json:"created_at"`
}

const (
	// DefaultTopLimit is the leaderboard size when none is requested
	DefaultTopLimit = 10
	// MaxTopLimit caps leaderboard requests
	MaxTopLimit = 100
)

// ClampTopLimit applies the default and bounds to a requested leaderboard size
func ClampTopLimit(limit int) int {
	switch {
	case limit <= 0:
		return DefaultTopLimit
	case limit > MaxTopLimit:
		return MaxTopLimit
	default:
		return limit
	}
}
