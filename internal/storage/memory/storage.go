package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/mcoot/omnigram/internal/model"
	"github.com/mcoot/omnigram/internal/storage"
)

// Storage is an in-memory implementation of the storage interface
type Storage struct {
	mu sync.RWMutex

	longestWords []*model.LongestWordRecord
	wordCounts   map[model.PlayerID]*model.WordCountRecord
	streaks      map[model.PlayerID][]*model.PlayerStreak
	sessions     []*model.PlaySession

	nextLongestID int64
	nextStreakID  int64
	nextSessionID int64
}

// New creates a new in-memory storage instance
func New() *Storage {
	return &Storage{
		wordCounts: make(map[model.PlayerID]*model.WordCountRecord),
		streaks:    make(map[model.PlayerID][]*model.PlayerStreak),
	}
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

func (s *Storage) PlayerExists(ctx context.Context, id model.PlayerID) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, ok := s.wordCounts[id]; ok {
		return true, nil
	}
	if len(s.streaks[id]) > 0 {
		return true, nil
	}
	for _, rec := range s.longestWords {
		if rec.PlayerID == id {
			return true, nil
		}
	}
	for _, sess := range s.sessions {
		if sess.PlayerID == id {
			return true, nil
		}
	}
	return false, nil
}

// Longest word operations

func (s *Storage) AddLongestWord(ctx context.Context, rec *model.LongestWordRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextLongestID++
	rec.ID = s.nextLongestID
	stored := *rec
	s.longestWords = append(s.longestWords, &stored)
	return nil
}

func (s *Storage) GetLongestWord(ctx context.Context, playerID model.PlayerID) (*model.LongestWordRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	best := storage.BestLongestWord(s.playerLongestWords(playerID))
	if best == nil {
		return nil, model.ErrLongestWordNotFound
	}
	out := *best
	return &out, nil
}

func (s *Storage) GetLatestLongestWord(ctx context.Context, playerID model.PlayerID) (*model.LongestWordRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i := len(s.longestWords) - 1; i >= 0; i-- {
		if s.longestWords[i].PlayerID == playerID {
			out := *s.longestWords[i]
			return &out, nil
		}
	}
	return nil, model.ErrLongestWordNotFound
}

func (s *Storage) GetTopLongestWords(ctx context.Context, limit int) ([]*model.LongestWordRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	best := make(map[model.PlayerID]*model.LongestWordRecord)
	for _, rec := range s.longestWords {
		if cur, ok := best[rec.PlayerID]; !ok || storage.LongerWord(rec, cur) {
			best[rec.PlayerID] = rec
		}
	}
	out := make([]*model.LongestWordRecord, 0, len(best))
	for _, rec := range best {
		cp := *rec
		out = append(out, &cp)
	}
	return storage.RankLongestWords(out, limit), nil
}

func (s *Storage) playerLongestWords(playerID model.PlayerID) []*model.LongestWordRecord {
	var out []*model.LongestWordRecord
	for _, rec := range s.longestWords {
		if rec.PlayerID == playerID {
			out = append(out, rec)
		}
	}
	return out
}

// Word count operations

func (s *Storage) GetWordCountRecord(ctx context.Context, playerID model.PlayerID) (*model.WordCountRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.wordCounts[playerID]
	if !ok {
		return nil, model.ErrWordCountNotFound
	}
	out := *rec
	return &out, nil
}

func (s *Storage) SaveWordCountRecord(ctx context.Context, rec *model.WordCountRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored := *rec
	if cur, ok := s.wordCounts[rec.PlayerID]; ok {
		stored.CreatedAt = cur.CreatedAt
		stored.HighestWordCount = max(cur.HighestWordCount, rec.HighestWordCount)
	}
	s.wordCounts[rec.PlayerID] = &stored
	*rec = stored
	return nil
}

func (s *Storage) GetTopWordCounts(ctx context.Context, limit int) ([]*model.WordCountRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*model.WordCountRecord, 0, len(s.wordCounts))
	for _, rec := range s.wordCounts {
		cp := *rec
		out = append(out, &cp)
	}
	return storage.RankWordCounts(out, limit), nil
}

// Streak operations

func (s *Storage) GetLatestStreak(ctx context.Context, playerID model.PlayerID) (*model.PlayerStreak, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var latest *model.PlayerStreak
	for _, st := range s.streaks[playerID] {
		if latest == nil || st.SessionDate.After(latest.SessionDate) {
			latest = st
		}
	}
	if latest == nil {
		return nil, model.ErrStreakNotFound
	}
	out := *latest
	return &out, nil
}

func (s *Storage) AddStreak(ctx context.Context, streak *model.PlayerStreak) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, st := range s.streaks[streak.PlayerID] {
		if st.SessionDate.Equal(streak.SessionDate) {
			return model.ErrStreakExists
		}
	}
	s.nextStreakID++
	streak.ID = s.nextStreakID
	stored := *streak
	s.streaks[streak.PlayerID] = append(s.streaks[streak.PlayerID], &stored)
	return nil
}

// Play session operations

func (s *Storage) GetOpenPlaySession(ctx context.Context, playerID model.PlayerID) (*model.PlaySession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i := len(s.sessions) - 1; i >= 0; i-- {
		sess := s.sessions[i]
		if sess.PlayerID == playerID && sess.EndedAt == nil {
			return copySession(sess), nil
		}
	}
	return nil, model.ErrPlaySessionNotFound
}

func (s *Storage) CreatePlaySession(ctx context.Context, session *model.PlaySession) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, sess := range s.sessions {
		if sess.PlayerID == session.PlayerID && sess.EndedAt == nil {
			return model.ErrOpenSessionExists
		}
	}
	s.nextSessionID++
	session.ID = s.nextSessionID
	s.sessions = append(s.sessions, copySession(session))
	return nil
}

func (s *Storage) EndOpenPlaySessions(ctx context.Context, playerID model.PlayerID, endedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, sess := range s.sessions {
		if sess.PlayerID == playerID && sess.EndedAt == nil {
			t := endedAt
			sess.EndedAt = &t
		}
	}
	return nil
}

func (s *Storage) AddSessionWord(ctx context.Context, sessionID int64, word model.SessionWord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, sess := range s.sessions {
		if sess.ID != sessionID {
			continue
		}
		if sess.EndedAt != nil {
			return model.ErrPlaySessionNotFound
		}
		if sess.HasWord(word.Word) {
			return model.ErrWordAlreadyFound
		}
		sess.Words = append(sess.Words, word)
		sess.Score += word.Points
		return nil
	}
	return model.ErrPlaySessionNotFound
}

func (s *Storage) ListEndedSessionSummaries(ctx context.Context) ([]*model.SessionSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*model.SessionSummary
	for _, sess := range s.sessions {
		if sess.EndedAt == nil {
			continue
		}
		out = append(out, &model.SessionSummary{
			SessionID: sess.ID,
			PlayerID:  sess.PlayerID,
			StartedAt: sess.StartedAt,
			WordCount: len(sess.Words),
			Score:     sess.Score,
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].SessionID < out[j].SessionID
	})
	return out, nil
}

func copySession(sess *model.PlaySession) *model.PlaySession {
	out := *sess
	if sess.EndedAt != nil {
		t := *sess.EndedAt
		out.EndedAt = &t
	}
	out.Words = append([]model.SessionWord(nil), sess.Words...)
	return &out
}
