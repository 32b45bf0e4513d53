package model

import (
	"strings"
	"time"
)

// PlaySessionDuration is how long a play session accepts words after it starts
const PlaySessionDuration = 24 * time.Hour

// PlaySession is a player's puzzle attempt against one omnigram
type PlaySession struct {
	ID        int64         `json:"id"`
	PlayerID  PlayerID      `json:"player_id"`
	Omnigram  string        `json:"omnigram"`
	Score     int           `json:"score"`
	StartedAt time.Time     `json:"started_at"`
	EndedAt   *time.Time    `json:"ended_at,omitempty"`
	Words     []SessionWord `json:"words"`
}

// SessionWord is a word found during a play session, kept in insertion order
type SessionWord struct {
	Word      string    `json:"word"`
	Points    int       `json:"points"`
	CreatedAt time.Time `json:"created_at"`
}

// IsActive reports whether the session is open and inside its 24 hour window
func (s *PlaySession) IsActive(now time.Time) bool {
	return s.EndedAt == nil && now.Sub(s.StartedAt) < PlaySessionDuration
}

// ShouldEnd reports whether the session is still open but past its window
func (s *PlaySession) ShouldEnd(now time.Time) bool {
	return s.EndedAt == nil && now.Sub(s.StartedAt) >= PlaySessionDuration
}

// TimeRemaining returns the time left in the window, floored at zero
func (s *PlaySession) TimeRemaining(now time.Time) time.Duration {
	remaining := s.StartedAt.Add(PlaySessionDuration).Sub(now)
	if remaining < 0 {
		return 0
	}
	return remaining
}

// HasWord reports whether word was already found in this session
func (s *PlaySession) HasWord(word string) bool {
	for _, w := range s.Words {
		if strings.EqualFold(w.Word, word) {
			return true
		}
	}
	return false
}

// SessionSummary is the leaderboard projection of an ended play session
type SessionSummary struct {
	SessionID int64     `json:"session_id"`
	PlayerID  PlayerID  `json:"player_id"`
	StartedAt time.Time `json:"started_at"`
	WordCount int       `json:"word_count"`
	Score     int       `json:"score"`
}
