// Package playsession manages each player's daily omnigram puzzle session.
package playsession

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/mcoot/omnigram/internal/dependencies/clock"
	"github.com/mcoot/omnigram/internal/model"
	"github.com/mcoot/omnigram/internal/services/longestword"
	"github.com/mcoot/omnigram/internal/storage"
)

// createAttempts bounds the read-create loop when two requests race to open a session
const createAttempts = 2

// Omnigrams supplies puzzles and checks words against them
type Omnigrams interface {
	RandomOmnigram(ctx context.Context) (string, error)
	IsValidWord(word, omnigram string) bool
}

// LongestWords is the longest-word tracker re-evaluated on every accepted word
type LongestWords interface {
	Submit(ctx context.Context, playerID model.PlayerID, word string) (*longestword.SubmitResult, error)
	GetLongest(ctx context.Context, playerID model.PlayerID) (string, int, error)
}

// SessionView is the player's current puzzle as returned to clients
type SessionView struct {
	SessionID         int64
	Omnigram          string
	StartedAt         time.Time
	TimeRemaining     time.Duration
	Words             []string
	Score             int
	LongestWord       string
	LongestWordLength int
}

// SubmissionResult is the outcome of a word submission.
// Rule failures set Success to false and carry the reason in Error.
type SubmissionResult struct {
	Success           bool
	Word              string
	Points            int
	Score             int
	WordCount         int
	IsLongest         bool
	LongestWord       string
	LongestWordLength int
	Error             string
}

// ScoreEntry is one top-scores row: a player's best day
type ScoreEntry struct {
	PlayerID  model.PlayerID
	WordCount int
	Score     int
	Date      time.Time
}

// Service runs the play session state machine
type Service struct {
	storage   storage.Storage
	omnigrams Omnigrams
	longest   LongestWords
	clock     clock.Clock
	location  *time.Location
	logger    *slog.Logger
}

// New creates a new play session Service. Daily sessions start at midnight in location.
func New(storage storage.Storage, omnigrams Omnigrams, longest LongestWords, clock clock.Clock, location *time.Location, logger *slog.Logger) *Service {
	return &Service{
		storage:   storage,
		omnigrams: omnigrams,
		longest:   longest,
		clock:     clock,
		location:  location,
		logger:    logger,
	}
}

// GetCurrentSession returns the player's active session, starting a new one if needed
func (s *Service) GetCurrentSession(ctx context.Context, playerID model.PlayerID) (*SessionView, error) {
	now := s.clock.Now()

	var session *model.PlaySession
	for attempt := 0; attempt < createAttempts && session == nil; attempt++ {
		open, err := s.activeSession(ctx, playerID, now)
		if err != nil {
			return nil, err
		}
		if open != nil {
			session = open
			break
		}

		session, err = s.start(ctx, playerID, now)
		if errors.Is(err, model.ErrOpenSessionExists) {
			continue
		}
		if err != nil {
			return nil, err
		}
	}
	if session == nil {
		return nil, model.ErrOpenSessionExists
	}

	longestWord, longestLength, err := s.longest.GetLongest(ctx, playerID)
	if err != nil {
		return nil, err
	}

	words := make([]string, len(session.Words))
	for i, w := range session.Words {
		words[i] = w.Word
	}
	return &SessionView{
		SessionID:         session.ID,
		Omnigram:          session.Omnigram,
		StartedAt:         session.StartedAt,
		TimeRemaining:     session.TimeRemaining(now),
		Words:             words,
		Score:             session.Score,
		LongestWord:       longestWord,
		LongestWordLength: longestLength,
	}, nil
}

// activeSession returns the open session if it is active.
// An open session past its window is closed and nil is returned.
func (s *Service) activeSession(ctx context.Context, playerID model.PlayerID, now time.Time) (*model.PlaySession, error) {
	session, err := s.storage.GetOpenPlaySession(ctx, playerID)
	if errors.Is(err, model.ErrPlaySessionNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if session.IsActive(now) {
		return session, nil
	}

	if err := s.storage.EndOpenPlaySessions(ctx, playerID, now); err != nil {
		return nil, err
	}
	s.logger.Info("play session expired",
		slog.String("player_id", string(playerID)),
		slog.Int64("session_id", session.ID),
		slog.Int("score", session.Score),
	)
	return nil, nil
}

func (s *Service) start(ctx context.Context, playerID model.PlayerID, now time.Time) (*model.PlaySession, error) {
	omnigram, err := s.omnigrams.RandomOmnigram(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.storage.EndOpenPlaySessions(ctx, playerID, now); err != nil {
		return nil, err
	}

	session := &model.PlaySession{
		PlayerID:  playerID,
		Omnigram:  omnigram,
		StartedAt: SessionStart(now, s.location),
		Words:     []model.SessionWord{},
	}
	if err := s.storage.CreatePlaySession(ctx, session); err != nil {
		return nil, err
	}

	s.logger.Info("play session started",
		slog.String("player_id", string(playerID)),
		slog.Int64("session_id", session.ID),
		slog.String("omnigram", omnigram),
	)
	return session, nil
}

// SessionStart returns the anchor for a session opened at now: midnight in loc.
// On a day longer than 24 hours the anchor moves forward so the session still ends at the next midnight.
func SessionStart(now time.Time, loc *time.Location) time.Time {
	start := model.StartOfDay(now, loc)
	if now.Sub(start) < model.PlaySessionDuration {
		return start
	}
	y, m, d := start.Date()
	nextMidnight := time.Date(y, m, d+1, 0, 0, 0, 0, loc)
	return nextMidnight.Add(-model.PlaySessionDuration)
}

// SubmitWord adds word to the player's active session and re-evaluates their longest word
func (s *Service) SubmitWord(ctx context.Context, playerID model.PlayerID, word string) (*SubmissionResult, error) {
	word = strings.ToLower(strings.TrimSpace(word))
	if word == "" {
		return nil, model.NewValidationError("word", "The word field is required.")
	}

	now := s.clock.Now()
	session, err := s.activeSession(ctx, playerID, now)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return failure(word, model.ErrSessionInactive), nil
	}
	if !s.omnigrams.IsValidWord(word, session.Omnigram) {
		return failure(word, model.ErrWordNotInOmnigram), nil
	}
	if session.HasWord(word) {
		return failure(word, model.ErrWordAlreadyFound), nil
	}

	points := model.WordLength(word)
	err = s.storage.AddSessionWord(ctx, session.ID, model.SessionWord{
		Word:      word,
		Points:    points,
		CreatedAt: now,
	})
	switch {
	case errors.Is(err, model.ErrWordAlreadyFound):
		return failure(word, err), nil
	case errors.Is(err, model.ErrPlaySessionNotFound):
		return failure(word, model.ErrSessionInactive), nil
	case err != nil:
		return nil, err
	}

	longest, err := s.longest.Submit(ctx, playerID, word)
	if err != nil {
		return nil, err
	}

	s.logger.Debug("word accepted",
		slog.String("player_id", string(playerID)),
		slog.Int64("session_id", session.ID),
		slog.Int("points", points),
	)
	return &SubmissionResult{
		Success:           true,
		Word:              word,
		Points:            points,
		Score:             session.Score + points,
		WordCount:         len(session.Words) + 1,
		IsLongest:         longest.IsLongest,
		LongestWord:       longest.LongestWord,
		LongestWordLength: longest.LongestLength,
	}, nil
}

func failure(word string, reason error) *SubmissionResult {
	return &SubmissionResult{Word: word, Error: reason.Error()}
}

// GetTopScores ranks each player's best day of ended sessions by words found
func (s *Service) GetTopScores(ctx context.Context, limit int) ([]ScoreEntry, error) {
	summaries, err := s.storage.ListEndedSessionSummaries(ctx)
	if err != nil {
		return nil, err
	}

	type dayKey struct {
		player model.PlayerID
		date   time.Time
	}
	days := make(map[dayKey]*ScoreEntry)
	for _, sum := range summaries {
		key := dayKey{player: sum.PlayerID, date: model.CalendarDate(sum.StartedAt, s.location)}
		entry, ok := days[key]
		if !ok {
			entry = &ScoreEntry{PlayerID: key.player, Date: key.date}
			days[key] = entry
		}
		entry.WordCount += sum.WordCount
		entry.Score += sum.Score
	}

	best := make(map[model.PlayerID]ScoreEntry)
	for _, entry := range days {
		current, ok := best[entry.PlayerID]
		if !ok || ranksAbove(*entry, current) {
			best[entry.PlayerID] = *entry
		}
	}

	entries := make([]ScoreEntry, 0, len(best))
	for _, entry := range best {
		entries = append(entries, entry)
	}
	sort.Slice(entries, func(i, j int) bool {
		return ranksAbove(entries[i], entries[j])
	})

	if limit = model.ClampTopLimit(limit); len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}

// ranksAbove orders by word count desc, score desc, date asc, then player id
func ranksAbove(a, b ScoreEntry) bool {
	if a.WordCount != b.WordCount {
		return a.WordCount > b.WordCount
	}
	if a.Score != b.Score {
		return a.Score > b.Score
	}
	if !a.Date.Equal(b.Date) {
		return a.Date.Before(b.Date)
	}
	return a.PlayerID < b.PlayerID
}
