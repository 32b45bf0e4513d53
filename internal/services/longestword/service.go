// Package longestword tracks each player's longest submitted word.
package longestword

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mcoot/omnigram/internal/dependencies/clock"
	"github.com/mcoot/omnigram/internal/model"
	"github.com/mcoot/omnigram/internal/services/record"
	"github.com/mcoot/omnigram/internal/storage"
)

// SessionWindow is how long a session token is reused across submissions
const SessionWindow = 24 * time.Hour

// SubmitResult is the outcome of a submission
type SubmitResult struct {
	Word          string
	IsLongest     bool
	LongestWord   string
	LongestLength int
}

// Service tracks the longest word per player
type Service struct {
	storage storage.Storage
	clock   clock.Clock
	logger  *slog.Logger
}

// New creates a new longest word Service
func New(storage storage.Storage, clock clock.Clock, logger *slog.Logger) *Service {
	return &Service{
		storage: storage,
		clock:   clock,
		logger:  logger,
	}
}

// Submit records word if it is strictly longer than the player's current longest
func (s *Service) Submit(ctx context.Context, playerID model.PlayerID, word string) (*SubmitResult, error) {
	word = strings.TrimSpace(word)
	if word == "" {
		return nil, model.NewValidationError("word", "The word field is required.")
	}

	current, err := s.storage.GetLongestWord(ctx, playerID)
	if err != nil && !errors.Is(err, model.ErrLongestWordNotFound) {
		return nil, err
	}
	var best *string
	if current != nil {
		best = &current.Word
	}
	longest, isNew := record.Longest.Offer(best, word)
	result := &SubmitResult{
		Word:          word,
		IsLongest:     isNew,
		LongestWord:   longest,
		LongestLength: model.WordLength(longest),
	}
	if !isNew {
		return result, nil
	}

	now := s.clock.Now()
	token, err := s.sessionToken(ctx, playerID, now)
	if err != nil {
		return nil, err
	}
	rec := &model.LongestWordRecord{
		PlayerID:     playerID,
		Word:         word,
		SessionToken: token,
		CreatedAt:    now,
	}
	if err := s.storage.AddLongestWord(ctx, rec); err != nil {
		return nil, err
	}

	s.logger.Info("new longest word",
		slog.String("player_id", string(playerID)),
		slog.Int("length", result.LongestLength),
	)
	return result, nil
}

// sessionToken reuses the latest row's token inside the session window
func (s *Service) sessionToken(ctx context.Context, playerID model.PlayerID, now time.Time) (string, error) {
	latest, err := s.storage.GetLatestLongestWord(ctx, playerID)
	switch {
	case errors.Is(err, model.ErrLongestWordNotFound):
	case err != nil:
		return "", err
	case now.Sub(latest.CreatedAt) < SessionWindow && latest.SessionToken != "":
		return latest.SessionToken, nil
	}
	return uuid.NewString(), nil
}

// GetLongest returns the player's longest word and its length, or ("", 0)
func (s *Service) GetLongest(ctx context.Context, playerID model.PlayerID) (string, int, error) {
	rec, err := s.storage.GetLongestWord(ctx, playerID)
	if err != nil {
		if errors.Is(err, model.ErrLongestWordNotFound) {
			return "", 0, nil
		}
		return "", 0, err
	}
	return rec.Word, rec.Length(), nil
}

// TopEntry is one leaderboard row
type TopEntry struct {
	PlayerID    model.PlayerID
	Word        string
	Length      int
	SubmittedAt time.Time
}

// GetTop returns each player's longest word, longest first
func (s *Service) GetTop(ctx context.Context, limit int) ([]TopEntry, error) {
	records, err := s.storage.GetTopLongestWords(ctx, model.ClampTopLimit(limit))
	if err != nil {
		return nil, err
	}
	entries := make([]TopEntry, len(records))
	for i, rec := range records {
		entries[i] = TopEntry{
			PlayerID:    rec.PlayerID,
			Word:        rec.Word,
			Length:      rec.Length(),
			SubmittedAt: rec.CreatedAt,
		}
	}
	return entries, nil
}
