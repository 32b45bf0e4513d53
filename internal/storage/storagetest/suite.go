// Package storagetest holds the behaviour every storage backend must share.
package storagetest

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/omnigram/internal/model"
	"github.com/mcoot/omnigram/internal/storage"
)

// Suite runs the shared storage contract against a backend built by NewStorage
type Suite struct {
	suite.Suite
	NewStorage func(t *testing.T) storage.Storage

	store storage.Storage
	ctx   context.Context
	base  time.Time
}

func (s *Suite) SetupTest() {
	s.store = s.NewStorage(s.T())
	s.ctx = context.Background()
	s.base = time.Date(2024, 3, 20, 14, 0, 0, 0, time.UTC)
}

func (s *Suite) addWord(player model.PlayerID, word string, at time.Time) *model.LongestWordRecord {
	rec := &model.LongestWordRecord{
		PlayerID:     player,
		Word:         word,
		SessionToken: "token-" + string(player),
		CreatedAt:    at,
	}
	s.Require().NoError(s.store.AddLongestWord(s.ctx, rec))
	return rec
}

// Identity

func (s *Suite) TestPlayerExists() {
	exists, err := s.store.PlayerExists(s.ctx, "player-1")
	s.Require().NoError(err)
	s.False(exists)

	s.addWord("player-1", "hello", s.base)

	exists, err = s.store.PlayerExists(s.ctx, "player-1")
	s.Require().NoError(err)
	s.True(exists)
}

func (s *Suite) TestPlayerExistsFromStreak() {
	s.Require().NoError(s.store.AddStreak(s.ctx, &model.PlayerStreak{
		PlayerID:      "player-2",
		SessionDate:   model.CalendarDate(s.base, time.UTC),
		CurrentStreak: 1,
		HighestStreak: 1,
		CreatedAt:     s.base,
	}))

	exists, err := s.store.PlayerExists(s.ctx, "player-2")
	s.Require().NoError(err)
	s.True(exists)
}

// Longest word

func (s *Suite) TestAddLongestWordAssignsID() {
	first := s.addWord("player-1", "hello", s.base)
	second := s.addWord("player-1", "extraordinary", s.base.Add(time.Minute))

	s.NotZero(first.ID)
	s.Greater(second.ID, first.ID)
}

func (s *Suite) TestGetLongestWordNotFound() {
	_, err := s.store.GetLongestWord(s.ctx, "nobody")
	s.ErrorIs(err, model.ErrLongestWordNotFound)

	_, err = s.store.GetLatestLongestWord(s.ctx, "nobody")
	s.ErrorIs(err, model.ErrLongestWordNotFound)
}

func (s *Suite) TestGetLongestWordPicksLongest() {
	s.addWord("player-1", "hello", s.base)
	s.addWord("player-1", "extraordinary", s.base.Add(time.Minute))
	s.addWord("player-1", "cat", s.base.Add(2*time.Minute))

	rec, err := s.store.GetLongestWord(s.ctx, "player-1")
	s.Require().NoError(err)
	s.Equal("extraordinary", rec.Word)
	s.Equal(13, rec.Length())

	latest, err := s.store.GetLatestLongestWord(s.ctx, "player-1")
	s.Require().NoError(err)
	s.Equal("cat", latest.Word)
	s.Equal("token-player-1", latest.SessionToken)
	s.True(latest.CreatedAt.Equal(s.base.Add(2*time.Minute)))
}

func (s *Suite) TestGetLongestWordTieKeepsEarliest() {
	s.addWord("player-1", "stone", s.base)
	s.addWord("player-1", "tones", s.base.Add(time.Hour))

	rec, err := s.store.GetLongestWord(s.ctx, "player-1")
	s.Require().NoError(err)
	s.Equal("stone", rec.Word)
}

func (s *Suite) TestGetTopLongestWords() {
	s.addWord("player-1", "hello", s.base)
	s.addWord("player-1", "extraordinary", s.base.Add(time.Minute))
	s.addWord("player-2", "incomprehensibilities", s.base)
	s.addWord("player-3", "world", s.base.Add(-time.Minute))

	top, err := s.store.GetTopLongestWords(s.ctx, 10)
	s.Require().NoError(err)
	s.Require().Len(top, 3)
	s.Equal("incomprehensibilities", top[0].Word)
	s.Equal(model.PlayerID("player-2"), top[0].PlayerID)
	s.Equal("extraordinary", top[1].Word)
	s.Equal("world", top[2].Word)

	limited, err := s.store.GetTopLongestWords(s.ctx, 1)
	s.Require().NoError(err)
	s.Len(limited, 1)
}

func (s *Suite) TestGetTopLongestWordsEmpty() {
	top, err := s.store.GetTopLongestWords(s.ctx, 10)
	s.Require().NoError(err)
	s.Empty(top)
}

// Word count

func (s *Suite) TestWordCountNotFound() {
	_, err := s.store.GetWordCountRecord(s.ctx, "nobody")
	s.ErrorIs(err, model.ErrWordCountNotFound)
}

func (s *Suite) TestSaveWordCountRecordNeverLowersHighest() {
	s.Require().NoError(s.store.SaveWordCountRecord(s.ctx, &model.WordCountRecord{
		PlayerID: "player-1", WordCount: 42, HighestWordCount: 42,
		CreatedAt: s.base, UpdatedAt: s.base,
	}))
	s.Require().NoError(s.store.SaveWordCountRecord(s.ctx, &model.WordCountRecord{
		PlayerID: "player-1", WordCount: 10, HighestWordCount: 10,
		CreatedAt: s.base.Add(time.Hour), UpdatedAt: s.base.Add(time.Hour),
	}))

	rec, err := s.store.GetWordCountRecord(s.ctx, "player-1")
	s.Require().NoError(err)
	s.Equal(10, rec.WordCount)
	s.Equal(42, rec.HighestWordCount)
	s.True(rec.CreatedAt.Equal(s.base))
	s.True(rec.UpdatedAt.Equal(s.base.Add(time.Hour)))
}

func (s *Suite) TestGetTopWordCounts() {
	for i, c := range []struct {
		player model.PlayerID
		count  int
	}{{"a", 10}, {"b", 42}, {"c", 10}} {
		at := s.base.Add(time.Duration(i) * time.Minute)
		s.Require().NoError(s.store.SaveWordCountRecord(s.ctx, &model.WordCountRecord{
			PlayerID: c.player, WordCount: c.count, HighestWordCount: c.count,
			CreatedAt: at, UpdatedAt: at,
		}))
	}

	top, err := s.store.GetTopWordCounts(s.ctx, 10)
	s.Require().NoError(err)
	s.Require().Len(top, 3)
	s.Equal(model.PlayerID("b"), top[0].PlayerID)
	s.Equal(model.PlayerID("a"), top[1].PlayerID)
	s.Equal(model.PlayerID("c"), top[2].PlayerID)

	limited, err := s.store.GetTopWordCounts(s.ctx, 2)
	s.Require().NoError(err)
	s.Len(limited, 2)
}

// Streaks

func (s *Suite) TestStreakNotFound() {
	_, err := s.store.GetLatestStreak(s.ctx, "nobody")
	s.ErrorIs(err, model.ErrStreakNotFound)
}

func (s *Suite) TestAddStreakAndLatest() {
	day1 := model.CalendarDate(s.base, time.UTC)
	day2 := day1.AddDate(0, 0, 1)

	s.Require().NoError(s.store.AddStreak(s.ctx, &model.PlayerStreak{
		PlayerID: "player-1", SessionDate: day1, CurrentStreak: 1, HighestStreak: 1, CreatedAt: s.base,
	}))
	s.Require().NoError(s.store.AddStreak(s.ctx, &model.PlayerStreak{
		PlayerID: "player-1", SessionDate: day2, CurrentStreak: 2, HighestStreak: 2, CreatedAt: s.base.AddDate(0, 0, 1),
	}))

	latest, err := s.store.GetLatestStreak(s.ctx, "player-1")
	s.Require().NoError(err)
	s.True(latest.SessionDate.Equal(day2))
	s.Equal(2, latest.CurrentStreak)
	s.Equal(2, latest.HighestStreak)
}

func (s *Suite) TestAddStreakDuplicateDate() {
	day := model.CalendarDate(s.base, time.UTC)
	streak := func() *model.PlayerStreak {
		return &model.PlayerStreak{
			PlayerID: "player-1", SessionDate: day, CurrentStreak: 1, HighestStreak: 1, CreatedAt: s.base,
		}
	}

	s.Require().NoError(s.store.AddStreak(s.ctx, streak()))
	err := s.store.AddStreak(s.ctx, streak())
	s.ErrorIs(err, model.ErrStreakExists)
}

// Play sessions

func (s *Suite) newSession(player model.PlayerID) *model.PlaySession {
	sess := &model.PlaySession{
		PlayerID:  player,
		Omnigram:  "STRANGER",
		StartedAt: s.base,
	}
	s.Require().NoError(s.store.CreatePlaySession(s.ctx, sess))
	return sess
}

func (s *Suite) TestOpenPlaySessionNotFound() {
	_, err := s.store.GetOpenPlaySession(s.ctx, "nobody")
	s.ErrorIs(err, model.ErrPlaySessionNotFound)
}

func (s *Suite) TestCreatePlaySession() {
	sess := s.newSession("player-1")
	s.NotZero(sess.ID)

	open, err := s.store.GetOpenPlaySession(s.ctx, "player-1")
	s.Require().NoError(err)
	s.Equal(sess.ID, open.ID)
	s.Equal("STRANGER", open.Omnigram)
	s.Equal(0, open.Score)
	s.Nil(open.EndedAt)
	s.Empty(open.Words)
	s.True(open.StartedAt.Equal(s.base))
}

func (s *Suite) TestCreatePlaySessionRejectsSecondOpen() {
	s.newSession("player-1")

	err := s.store.CreatePlaySession(s.ctx, &model.PlaySession{
		PlayerID: "player-1", Omnigram: "MASTERED", StartedAt: s.base,
	})
	s.ErrorIs(err, model.ErrOpenSessionExists)
}

func (s *Suite) TestAddSessionWord() {
	sess := s.newSession("player-1")

	s.Require().NoError(s.store.AddSessionWord(s.ctx, sess.ID, model.SessionWord{
		Word: "strange", Points: 7, CreatedAt: s.base.Add(time.Minute),
	}))
	s.Require().NoError(s.store.AddSessionWord(s.ctx, sess.ID, model.SessionWord{
		Word: "rest", Points: 4, CreatedAt: s.base.Add(2 * time.Minute),
	}))

	open, err := s.store.GetOpenPlaySession(s.ctx, "player-1")
	s.Require().NoError(err)
	s.Equal(11, open.Score)
	s.Require().Len(open.Words, 2)
	s.Equal("strange", open.Words[0].Word)
	s.Equal(7, open.Words[0].Points)
	s.Equal("rest", open.Words[1].Word)
}

func (s *Suite) TestAddSessionWordDuplicate() {
	sess := s.newSession("player-1")
	word := model.SessionWord{Word: "strange", Points: 7, CreatedAt: s.base}

	s.Require().NoError(s.store.AddSessionWord(s.ctx, sess.ID, word))
	err := s.store.AddSessionWord(s.ctx, sess.ID, word)
	s.ErrorIs(err, model.ErrWordAlreadyFound)

	open, err := s.store.GetOpenPlaySession(s.ctx, "player-1")
	s.Require().NoError(err)
	s.Equal(7, open.Score)
	s.Len(open.Words, 1)
}

func (s *Suite) TestAddSessionWordUnknownSession() {
	err := s.store.AddSessionWord(s.ctx, 9999, model.SessionWord{Word: "rest", Points: 4, CreatedAt: s.base})
	s.ErrorIs(err, model.ErrPlaySessionNotFound)
}

func (s *Suite) TestAddSessionWordEndedSession() {
	sess := s.newSession("player-1")
	s.Require().NoError(s.store.EndOpenPlaySessions(s.ctx, "player-1", s.base.Add(25*time.Hour)))

	err := s.store.AddSessionWord(s.ctx, sess.ID, model.SessionWord{Word: "rest", Points: 4, CreatedAt: s.base})
	s.ErrorIs(err, model.ErrPlaySessionNotFound)

	summaries, err := s.store.ListEndedSessionSummaries(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(summaries, 1)
	s.Equal(0, summaries[0].Score)
	s.Equal(0, summaries[0].WordCount)
}

func (s *Suite) TestEndOpenPlaySessions() {
	sess := s.newSession("player-1")
	s.Require().NoError(s.store.AddSessionWord(s.ctx, sess.ID, model.SessionWord{
		Word: "strange", Points: 7, CreatedAt: s.base,
	}))
	other := s.newSession("player-2")

	endedAt := s.base.Add(25 * time.Hour)
	s.Require().NoError(s.store.EndOpenPlaySessions(s.ctx, "player-1", endedAt))

	_, err := s.store.GetOpenPlaySession(s.ctx, "player-1")
	s.ErrorIs(err, model.ErrPlaySessionNotFound)

	stillOpen, err := s.store.GetOpenPlaySession(s.ctx, "player-2")
	s.Require().NoError(err)
	s.Equal(other.ID, stillOpen.ID)

	summaries, err := s.store.ListEndedSessionSummaries(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(summaries, 1)
	s.Equal(sess.ID, summaries[0].SessionID)
	s.Equal(model.PlayerID("player-1"), summaries[0].PlayerID)
	s.Equal(1, summaries[0].WordCount)
	s.Equal(7, summaries[0].Score)
	s.True(summaries[0].StartedAt.Equal(s.base))

	next := s.newSession("player-1")
	s.NotEqual(sess.ID, next.ID)
}
