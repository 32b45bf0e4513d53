// Package wordcount tracks each player's most words found in a single game.
package wordcount

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/mcoot/omnigram/internal/dependencies/clock"
	"github.com/mcoot/omnigram/internal/model"
	"github.com/mcoot/omnigram/internal/services/record"
	"github.com/mcoot/omnigram/internal/storage"
)

// UpdateResult is the player's record after an update
type UpdateResult struct {
	WordCount        int
	HighestWordCount int
	IsNewRecord      bool
}

// TopEntry is one leaderboard row
type TopEntry struct {
	PlayerID         model.PlayerID
	HighestWordCount int
	UpdatedAt        time.Time
}

// Service maintains the single word count record per player
type Service struct {
	storage storage.Storage
	clock   clock.Clock
	logger  *slog.Logger
}

// New creates a new word count Service
func New(storage storage.Storage, clock clock.Clock, logger *slog.Logger) *Service {
	return &Service{
		storage: storage,
		clock:   clock,
		logger:  logger,
	}
}

// Update stores the latest game's count and raises the highest count when beaten
func (s *Service) Update(ctx context.Context, playerID model.PlayerID, wordCount int) (*UpdateResult, error) {
	if wordCount < 0 {
		return nil, model.NewValidationError("word_count", "The word count field must be at least 0.")
	}

	now := s.clock.Now()
	rec := &model.WordCountRecord{
		PlayerID:  playerID,
		WordCount: wordCount,
		CreatedAt: now,
		UpdatedAt: now,
	}

	existing, err := s.storage.GetWordCountRecord(ctx, playerID)
	if err != nil && !errors.Is(err, model.ErrWordCountNotFound) {
		return nil, err
	}
	prevHighest := 0
	if existing != nil {
		prevHighest = existing.HighestWordCount
	}
	highest, isNew := record.Highest.Offer(&prevHighest, wordCount)
	rec.HighestWordCount = highest

	if err := s.storage.SaveWordCountRecord(ctx, rec); err != nil {
		return nil, err
	}
	if isNew {
		s.logger.Info("new word count record",
			slog.String("player_id", string(playerID)),
			slog.Int("word_count", wordCount),
		)
	}
	return &UpdateResult{
		WordCount:        rec.WordCount,
		HighestWordCount: rec.HighestWordCount,
		IsNewRecord:      isNew,
	}, nil
}

// GetHighest returns the player's highest word count, 0 when none is stored
func (s *Service) GetHighest(ctx context.Context, playerID model.PlayerID) (int, error) {
	rec, err := s.storage.GetWordCountRecord(ctx, playerID)
	if err != nil {
		if errors.Is(err, model.ErrWordCountNotFound) {
			return 0, nil
		}
		return 0, err
	}
	return rec.HighestWordCount, nil
}

// GetTop returns players ordered by highest word count
func (s *Service) GetTop(ctx context.Context, limit int) ([]TopEntry, error) {
	records, err := s.storage.GetTopWordCounts(ctx, model.ClampTopLimit(limit))
	if err != nil {
		return nil, err
	}
	entries := make([]TopEntry, len(records))
	for i, rec := range records {
		entries[i] = TopEntry{
			PlayerID:         rec.PlayerID,
			HighestWordCount: rec.HighestWordCount,
			UpdatedAt:        rec.UpdatedAt,
		}
	}
	return entries, nil
}
