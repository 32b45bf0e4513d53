// Package streak tracks consecutive calendar days on which a player was active.
package streak

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/mcoot/omnigram/internal/dependencies/clock"
	"github.com/mcoot/omnigram/internal/model"
	"github.com/mcoot/omnigram/internal/services/record"
	"github.com/mcoot/omnigram/internal/storage"
)

// State classifies a player's latest streak row relative to today
type State int

const (
	NoHistory State = iota
	ActiveToday
	StreakContinues
	StreakBroken
)

func (s State) String() string {
	switch s {
	case NoHistory:
		return "no_history"
	case ActiveToday:
		return "active_today"
	case StreakContinues:
		return "streak_continues"
	case StreakBroken:
		return "streak_broken"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Classify derives the state from the latest row. A row dated after today counts as today.
func Classify(latest *model.PlayerStreak, today time.Time) State {
	if latest == nil {
		return NoHistory
	}
	switch days := model.DaysBetween(latest.SessionDate, today); {
	case days <= 0:
		return ActiveToday
	case days == 1:
		return StreakContinues
	default:
		return StreakBroken
	}
}

// Info is a player's streak as reported to clients
type Info struct {
	CurrentStreak   int
	HighestStreak   int
	LastSessionDate *time.Time
}

// Service records daily activity and reports streaks
type Service struct {
	storage  storage.Storage
	clock    clock.Clock
	location *time.Location
	logger   *slog.Logger
}

// New creates a new streak Service. Calendar days are taken in location.
func New(storage storage.Storage, clock clock.Clock, location *time.Location, logger *slog.Logger) *Service {
	return &Service{
		storage:  storage,
		clock:    clock,
		location: location,
		logger:   logger,
	}
}

// Record marks the player active today and returns the updated streak.
// Repeated calls on the same day return the existing row unchanged.
func (s *Service) Record(ctx context.Context, playerID model.PlayerID) (*Info, error) {
	now := s.clock.Now()
	today := model.CalendarDate(now, s.location)

	// A concurrent request may insert today's row between our read and write;
	// the second pass then sees ActiveToday.
	for range 2 {
		latest, err := s.latest(ctx, playerID)
		if err != nil {
			return nil, err
		}
		state := Classify(latest, today)
		if state == ActiveToday {
			return infoFromRow(latest), nil
		}

		next := nextRow(playerID, latest, state, today, now)
		err = s.storage.AddStreak(ctx, next)
		if errors.Is(err, model.ErrStreakExists) {
			continue
		}
		if err != nil {
			return nil, err
		}

		s.logger.Info("streak recorded",
			slog.String("player_id", string(playerID)),
			slog.String("state", state.String()),
			slog.Int("current_streak", next.CurrentStreak),
			slog.Int("highest_streak", next.HighestStreak),
		)
		return infoFromRow(next), nil
	}
	return nil, fmt.Errorf("record streak for %s: %w", playerID, model.ErrStreakExists)
}

// GetStreakInfo reports the streak without writing. A streak not continued yesterday or today reads as 0.
func (s *Service) GetStreakInfo(ctx context.Context, playerID model.PlayerID) (*Info, error) {
	latest, err := s.latest(ctx, playerID)
	if err != nil {
		return nil, err
	}
	today := model.CalendarDate(s.clock.Now(), s.location)

	info := infoFromRow(latest)
	if Classify(latest, today) == StreakBroken {
		info.CurrentStreak = 0
	}
	return info, nil
}

func (s *Service) latest(ctx context.Context, playerID model.PlayerID) (*model.PlayerStreak, error) {
	latest, err := s.storage.GetLatestStreak(ctx, playerID)
	if errors.Is(err, model.ErrStreakNotFound) {
		return nil, nil
	}
	return latest, err
}

func nextRow(playerID model.PlayerID, latest *model.PlayerStreak, state State, today, now time.Time) *model.PlayerStreak {
	current := 1
	var prevHighest *int
	if latest != nil {
		prevHighest = &latest.HighestStreak
		if state == StreakContinues {
			current = latest.CurrentStreak + 1
		}
	}
	highest, _ := record.Highest.Offer(prevHighest, current)
	return &model.PlayerStreak{
		PlayerID:      playerID,
		SessionDate:   today,
		CurrentStreak: current,
		HighestStreak: highest,
		CreatedAt:     now,
	}
}

func infoFromRow(row *model.PlayerStreak) *Info {
	if row == nil {
		return &Info{}
	}
	date := row.SessionDate
	return &Info{
		CurrentStreak:   row.CurrentStreak,
		HighestStreak:   row.HighestStreak,
		LastSessionDate: &date,
	}
}
