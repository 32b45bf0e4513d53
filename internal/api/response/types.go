package response

import (
	"time"

	"github.com/mcoot/omnigram/internal/model"
	"github.com/mcoot/omnigram/internal/services/longestword"
	"github.com/mcoot/omnigram/internal/services/playsession"
	"github.com/mcoot/omnigram/internal/services/streak"
	"github.com/mcoot/omnigram/internal/services/wordcount"
)

// SubmitLongestWord is the response for POST /longest-word
type SubmitLongestWord struct {
	Success       bool   `json:"success"`
	IsLongest     bool   `json:"is_longest"`
	SubmittedWord string `json:"submitted_word"`
	LongestWord   string `json:"longest_word"`
	Length        int    `json:"length"`
	PlayerID      string `json:"player_id"`
}

// SubmitLongestWordFromResult converts a longestword.SubmitResult
func SubmitLongestWordFromResult(res *longestword.SubmitResult, playerID model.PlayerID) SubmitLongestWord {
	return SubmitLongestWord{
		Success:       true,
		IsLongest:     res.IsLongest,
		SubmittedWord: res.Word,
		LongestWord:   res.LongestWord,
		Length:        res.LongestLength,
		PlayerID:      string(playerID),
	}
}

// LongestWord is the response for GET /longest-word
type LongestWord struct {
	Success     bool   `json:"success"`
	LongestWord string `json:"longest_word"`
	Length      int    `json:"length"`
	PlayerID    string `json:"player_id"`
}

// TopWord is one row of the longest-word leaderboard
type TopWord struct {
	Word        string    `json:"word"`
	PlayerID    string    `json:"player_id"`
	Length      int       `json:"length"`
	SubmittedAt time.Time `json:"submitted_at"`
}

// TopWords is the response for GET /longest-word/top
type TopWords struct {
	Success bool      `json:"success"`
	Words   []TopWord `json:"words"`
}

// TopWordsFromEntries converts longest-word leaderboard entries
func TopWordsFromEntries(entries []longestword.TopEntry) TopWords {
	words := make([]TopWord, len(entries))
	for i, e := range entries {
		words[i] = TopWord{
			Word:        e.Word,
			PlayerID:    string(e.PlayerID),
			Length:      e.Length,
			SubmittedAt: e.SubmittedAt.UTC(),
		}
	}
	return TopWords{Success: true, Words: words}
}

// WordCountUpdate is the response for POST /game-words/update
type WordCountUpdate struct {
	Success          bool   `json:"success"`
	WordCount        int    `json:"word_count"`
	HighestWordCount int    `json:"highest_word_count"`
	IsNewRecord      bool   `json:"is_new_record"`
	PlayerID         string `json:"player_id"`
}

// WordCountUpdateFromResult converts a wordcount.UpdateResult
func WordCountUpdateFromResult(res *wordcount.UpdateResult, playerID model.PlayerID) WordCountUpdate {
	return WordCountUpdate{
		Success:          true,
		WordCount:        res.WordCount,
		HighestWordCount: res.HighestWordCount,
		IsNewRecord:      res.IsNewRecord,
		PlayerID:         string(playerID),
	}
}

// HighestWordCount is the response for GET /game-words/highest
type HighestWordCount struct {
	Success          bool   `json:"success"`
	HighestWordCount int    `json:"highest_word_count"`
	PlayerID         string `json:"player_id"`
}

// TopWordCount is one row of the word-count leaderboard
type TopWordCount struct {
	PlayerID         string    `json:"player_id"`
	HighestWordCount int       `json:"highest_word_count"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// TopWordCounts is the response for GET /game-words/top
type TopWordCounts struct {
	Success bool           `json:"success"`
	Scores  []TopWordCount `json:"scores"`
}

// TopWordCountsFromEntries converts word-count leaderboard entries
func TopWordCountsFromEntries(entries []wordcount.TopEntry) TopWordCounts {
	scores := make([]TopWordCount, len(entries))
	for i, e := range entries {
		scores[i] = TopWordCount{
			PlayerID:         string(e.PlayerID),
			HighestWordCount: e.HighestWordCount,
			UpdatedAt:        e.UpdatedAt.UTC(),
		}
	}
	return TopWordCounts{Success: true, Scores: scores}
}

// Streak is the response for POST /session and GET /session/streak.
// LastSessionDate is a YYYY-MM-DD date, null before the first visit.
type Streak struct {
	Success         bool    `json:"success"`
	CurrentStreak   int     `json:"current_streak"`
	HighestStreak   int     `json:"highest_streak"`
	LastSessionDate *string `json:"last_session_date"`
	PlayerID        string  `json:"player_id"`
}

// StreakFromInfo converts a streak.Info
func StreakFromInfo(info *streak.Info, playerID model.PlayerID) Streak {
	resp := Streak{
		Success:       true,
		CurrentStreak: info.CurrentStreak,
		HighestStreak: info.HighestStreak,
		PlayerID:      string(playerID),
	}
	if info.LastSessionDate != nil {
		date := info.LastSessionDate.Format(model.DateLayout)
		resp.LastSessionDate = &date
	}
	return resp
}

// SessionWord is one word in a play session
type SessionWord struct {
	Word string `json:"word"`
}

// PlaySession is the response for GET /play-session/current.
// TimeRemaining is in whole seconds.
type PlaySession struct {
	Success           bool          `json:"success"`
	SessionID         int64         `json:"session_id"`
	Omnigram          string        `json:"omnigram"`
	StartedAt         time.Time     `json:"started_at"`
	TimeRemaining     int64         `json:"time_remaining"`
	Words             []SessionWord `json:"words"`
	Score             int           `json:"score"`
	LongestWord       string        `json:"longest_word"`
	LongestWordLength int           `json:"longest_word_length"`
	PlayerID          string        `json:"player_id"`
}

// PlaySessionFromView converts a playsession.SessionView
func PlaySessionFromView(view *playsession.SessionView, playerID model.PlayerID) PlaySession {
	words := make([]SessionWord, len(view.Words))
	for i, w := range view.Words {
		words[i] = SessionWord{Word: w}
	}
	return PlaySession{
		Success:           true,
		SessionID:         view.SessionID,
		Omnigram:          view.Omnigram,
		StartedAt:         view.StartedAt.UTC(),
		TimeRemaining:     int64(view.TimeRemaining / time.Second),
		Words:             words,
		Score:             view.Score,
		LongestWord:       view.LongestWord,
		LongestWordLength: view.LongestWordLength,
		PlayerID:          string(playerID),
	}
}

// SubmitSessionWord is the response for an accepted POST /play-session/submit-word
type SubmitSessionWord struct {
	Success           bool   `json:"success"`
	Word              string `json:"word"`
	Points            int    `json:"points"`
	Score             int    `json:"score"`
	WordCount         int    `json:"word_count"`
	IsLongest         bool   `json:"is_longest"`
	LongestWord       string `json:"longest_word"`
	LongestWordLength int    `json:"longest_word_length"`
	PlayerID          string `json:"player_id"`
}

// RejectedWord is the response for a submission the session refused
type RejectedWord struct {
	Success bool   `json:"success"`
	Word    string `json:"word"`
	Error   string `json:"error"`
}

// SubmitSessionWordFromResult converts a playsession.SubmissionResult into
// either a SubmitSessionWord or a RejectedWord
func SubmitSessionWordFromResult(res *playsession.SubmissionResult, playerID model.PlayerID) any {
	if !res.Success {
		return RejectedWord{Word: res.Word, Error: res.Error}
	}
	return SubmitSessionWord{
		Success:           true,
		Word:              res.Word,
		Points:            res.Points,
		Score:             res.Score,
		WordCount:         res.WordCount,
		IsLongest:         res.IsLongest,
		LongestWord:       res.LongestWord,
		LongestWordLength: res.LongestWordLength,
		PlayerID:          string(playerID),
	}
}

// TopScore is one row of the play-session leaderboard
type TopScore struct {
	PlayerID  string `json:"player_id"`
	WordCount int    `json:"word_count"`
	Score     int    `json:"score"`
	Date      string `json:"date"`
}

// TopScores is the response for GET /play-session/top-scores
type TopScores struct {
	Success bool       `json:"success"`
	Scores  []TopScore `json:"scores"`
}

// TopScoresFromEntries converts play-session leaderboard entries
func TopScoresFromEntries(entries []playsession.ScoreEntry) TopScores {
	scores := make([]TopScore, len(entries))
	for i, e := range entries {
		scores[i] = TopScore{
			PlayerID:  string(e.PlayerID),
			WordCount: e.WordCount,
			Score:     e.Score,
			Date:      e.Date.Format(model.DateLayout),
		}
	}
	return TopScores{Success: true, Scores: scores}
}

// Health is the response for GET /health
type Health struct {
	Success bool   `json:"success"`
	Status  string `json:"status"`
}
