package storage

import (
	"context"
	"time"

	"github.com/mcoot/omnigram/internal/model"
)

// Storage defines the interface for data persistence.
// Each tracker owns its own table group; no operation spans more than one group.
type Storage interface {
	// Identity
	// PlayerExists reports whether any tracker holds a row for the player
	PlayerExists(ctx context.Context, id model.PlayerID) (bool, error)

	// Longest word operations
	AddLongestWord(ctx context.Context, rec *model.LongestWordRecord) error
	// GetLongestWord returns the player's longest word (earliest on ties)
	GetLongestWord(ctx context.Context, playerID model.PlayerID) (*model.LongestWordRecord, error)
	// GetLatestLongestWord returns the player's most recently created row
	GetLatestLongestWord(ctx context.Context, playerID model.PlayerID) (*model.LongestWordRecord, error)
	// GetTopLongestWords returns each player's longest word, longest first
	GetTopLongestWords(ctx context.Context, limit int) ([]*model.LongestWordRecord, error)

	// Word count operations
	GetWordCountRecord(ctx context.Context, playerID model.PlayerID) (*model.WordCountRecord, error)
	// SaveWordCountRecord upserts the row; the stored highest count never decreases
	SaveWordCountRecord(ctx context.Context, rec *model.WordCountRecord) error
	GetTopWordCounts(ctx context.Context, limit int) ([]*model.WordCountRecord, error)

	// Streak operations
	GetLatestStreak(ctx context.Context, playerID model.PlayerID) (*model.PlayerStreak, error)
	// AddStreak appends a day row; returns model.ErrStreakExists if the date is already recorded
	AddStreak(ctx context.Context, streak *model.PlayerStreak) error

	// Play session operations
	// GetOpenPlaySession returns the latest session with no end time, words included
	GetOpenPlaySession(ctx context.Context, playerID model.PlayerID) (*model.PlaySession, error)
	// CreatePlaySession assigns session.ID; returns model.ErrOpenSessionExists if one is open
	CreatePlaySession(ctx context.Context, session *model.PlaySession) error
	EndOpenPlaySessions(ctx context.Context, playerID model.PlayerID, endedAt time.Time) error
	// AddSessionWord appends the word and adds its points to the session score;
	// returns model.ErrWordAlreadyFound for a repeated word and
	// model.ErrPlaySessionNotFound when the session is unknown or ended
	AddSessionWord(ctx context.Context, sessionID int64, word model.SessionWord) error
	ListEndedSessionSummaries(ctx context.Context) ([]*model.SessionSummary, error)
}
