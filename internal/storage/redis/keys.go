package redis

import (
	"fmt"

	"github.com/mcoot/omnigram/internal/model"
)

// keys builds every Redis key under one prefix
type keys struct {
	prefix string
}

// players is the SET of every player with stored data
func (k keys) players() string {
	return fmt.Sprintf("%s:idx:players", k.prefix)
}

// sequence returns the INCR counter used to assign IDs for an entity type
func (k keys) sequence(entity string) string {
	return fmt.Sprintf("%s:seq:%s", k.prefix, entity)
}

// longestWords is the append-only LIST of a player's longest-word rows
func (k keys) longestWords(playerID model.PlayerID) string {
	return fmt.Sprintf("%s:longest_words:%s", k.prefix, playerID)
}

// longestWordPlayers is the SET of players with at least one longest-word row
func (k keys) longestWordPlayers() string {
	return fmt.Sprintf("%s:idx:longest_word_players", k.prefix)
}

// wordCount is the JSON word count record for a player
func (k keys) wordCount(playerID model.PlayerID) string {
	return fmt.Sprintf("%s:word_count:%s", k.prefix, playerID)
}

// wordCountPlayers is the SET of players with a word count record
func (k keys) wordCountPlayers() string {
	return fmt.Sprintf("%s:idx:word_count_players", k.prefix)
}

// streaks is the HASH of date -> JSON streak row
func (k keys) streaks(playerID model.PlayerID) string {
	return fmt.Sprintf("%s:streaks:%s", k.prefix, playerID)
}

// streakDates is the ZSET of recorded dates scored by unix seconds
func (k keys) streakDates(playerID model.PlayerID) string {
	return fmt.Sprintf("%s:idx:streak_dates:%s", k.prefix, playerID)
}

// session is the HASH holding a play session's scalar fields
func (k keys) session(id int64) string {
	return fmt.Sprintf("%s:session:%d", k.prefix, id)
}

// sessionWords is the LIST of JSON words in insertion order
func (k keys) sessionWords(id int64) string {
	return fmt.Sprintf("%s:session_words:%d", k.prefix, id)
}

// sessionWordSet is the SET used to reject repeated words
func (k keys) sessionWordSet(id int64) string {
	return fmt.Sprintf("%s:session_word_set:%d", k.prefix, id)
}

// openSession maps a player to the ID of their open session
func (k keys) openSession(playerID model.PlayerID) string {
	return fmt.Sprintf("%s:open_session:%s", k.prefix, playerID)
}

// endedSessions is the ZSET of ended session IDs scored by ID
func (k keys) endedSessions() string {
	return fmt.Sprintf("%s:idx:ended_sessions", k.prefix)
}
