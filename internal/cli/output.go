package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"time"
)

// Output handles formatting output based on the configured format
type Output struct {
	format string
	w      io.Writer
}

// NewOutput creates a new Output formatter writing to w
func NewOutput(format string, w io.Writer) *Output {
	return &Output{format: format, w: w}
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	if o.format == "json" {
		o.printJSON(data)
	} else {
		o.printText(data)
	}
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(o.w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case HealthResult:
		fmt.Fprintf(o.w, "Status: %s\n", v.Status)
	case PlaySession:
		o.printPlaySession(v)
	case SubmitWordResult:
		o.printSubmitWord(v)
	case TopScores:
		o.printTopScores(v)
	case LongestWord:
		o.printLongestWord(v)
	case SubmitLongestWord:
		o.printSubmitLongestWord(v)
	case TopWords:
		o.printTopWords(v)
	case WordCountUpdate:
		o.printWordCountUpdate(v)
	case HighestWordCount:
		fmt.Fprintf(o.w, "Highest word count: %d\n", v.HighestWordCount)
	case TopWordCounts:
		o.printTopWordCounts(v)
	case Streak:
		o.printStreak(v)
	default:
		// Fallback to JSON for unknown types
		o.printJSON(data)
	}
}

// HealthResult response type
type HealthResult struct {
	Status string `json:"status"`
}

// SessionWord response type
type SessionWord struct {
	Word string `json:"word"`
}

// PlaySession response type (matches API)
type PlaySession struct {
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

// SubmitWordResult covers both accepted and rejected play-session submissions
type SubmitWordResult struct {
	Success           bool   `json:"success"`
	Word              string `json:"word"`
	Error             string `json:"error,omitempty"`
	Points            int    `json:"points,omitempty"`
	Score             int    `json:"score,omitempty"`
	WordCount         int    `json:"word_count,omitempty"`
	IsLongest         bool   `json:"is_longest,omitempty"`
	LongestWord       string `json:"longest_word,omitempty"`
	LongestWordLength int    `json:"longest_word_length,omitempty"`
}

// TopScore response type
type TopScore struct {
	PlayerID  string `json:"player_id"`
	WordCount int    `json:"word_count"`
	Score     int    `json:"score"`
	Date      string `json:"date"`
}

// TopScores response type
type TopScores struct {
	Scores []TopScore `json:"scores"`
}

// LongestWord response type
type LongestWord struct {
	LongestWord string `json:"longest_word"`
	Length      int    `json:"length"`
	PlayerID    string `json:"player_id"`
}

// SubmitLongestWord response type
type SubmitLongestWord struct {
	IsLongest     bool   `json:"is_longest"`
	SubmittedWord string `json:"submitted_word"`
	LongestWord   string `json:"longest_word"`
	Length        int    `json:"length"`
}

// TopWord response type
type TopWord struct {
	Word        string    `json:"word"`
	PlayerID    string    `json:"player_id"`
	Length      int       `json:"length"`
	SubmittedAt time.Time `json:"submitted_at"`
}

// TopWords response type
type TopWords struct {
	Words []TopWord `json:"words"`
}

// WordCountUpdate response type
type WordCountUpdate struct {
	WordCount        int  `json:"word_count"`
	HighestWordCount int  `json:"highest_word_count"`
	IsNewRecord      bool `json:"is_new_record"`
}

// HighestWordCount response type
type HighestWordCount struct {
	HighestWordCount int `json:"highest_word_count"`
}

// TopWordCount response type
type TopWordCount struct {
	PlayerID         string    `json:"player_id"`
	HighestWordCount int       `json:"highest_word_count"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// TopWordCounts response type
type TopWordCounts struct {
	Scores []TopWordCount `json:"scores"`
}

// Streak response type
type Streak struct {
	CurrentStreak   int     `json:"current_streak"`
	HighestStreak   int     `json:"highest_streak"`
	LastSessionDate *string `json:"last_session_date"`
}

func (o *Output) printPlaySession(s PlaySession) {
	remaining := time.Duration(s.TimeRemaining) * time.Second
	fmt.Fprintf(o.w, "Omnigram: %s\n", s.Omnigram)
	fmt.Fprintf(o.w, "Started: %s\n", s.StartedAt.UTC().Format(time.RFC3339))
	fmt.Fprintf(o.w, "Time remaining: %s\n", remaining)
	fmt.Fprintf(o.w, "Score: %d\n", s.Score)
	fmt.Fprintf(o.w, "Words (%d):\n", len(s.Words))
	for _, w := range s.Words {
		fmt.Fprintf(o.w, "  - %s\n", w.Word)
	}
	if s.LongestWord != "" {
		fmt.Fprintf(o.w, "Longest word: %s (%d)\n", s.LongestWord, s.LongestWordLength)
	}
}

func (o *Output) printSubmitWord(r SubmitWordResult) {
	if !r.Success {
		fmt.Fprintf(o.w, "Rejected: %s - %s\n", r.Word, r.Error)
		return
	}
	fmt.Fprintf(o.w, "Accepted: %s (+%d points)\n", r.Word, r.Points)
	fmt.Fprintf(o.w, "Score: %d from %d words\n", r.Score, r.WordCount)
	if r.IsLongest {
		fmt.Fprintf(o.w, "New longest word: %s (%d)\n", r.LongestWord, r.LongestWordLength)
	}
}

func (o *Output) printTopScores(t TopScores) {
	if len(t.Scores) == 0 {
		fmt.Fprintln(o.w, "No scores yet")
		return
	}
	for i, s := range t.Scores {
		fmt.Fprintf(o.w, "%2d. %s  %d words  %d points  %s\n", i+1, shortID(s.PlayerID), s.WordCount, s.Score, s.Date)
	}
}

func (o *Output) printLongestWord(l LongestWord) {
	if l.LongestWord == "" {
		fmt.Fprintln(o.w, "No longest word yet")
		return
	}
	fmt.Fprintf(o.w, "Longest word: %s (%d)\n", l.LongestWord, l.Length)
}

func (o *Output) printSubmitLongestWord(s SubmitLongestWord) {
	if s.IsLongest {
		fmt.Fprintf(o.w, "New longest word: %s (%d)\n", s.LongestWord, s.Length)
		return
	}
	fmt.Fprintf(o.w, "Not longer than %s (%d)\n", s.LongestWord, s.Length)
}

func (o *Output) printTopWords(t TopWords) {
	if len(t.Words) == 0 {
		fmt.Fprintln(o.w, "No words yet")
		return
	}
	for i, w := range t.Words {
		fmt.Fprintf(o.w, "%2d. %s  %s (%d)  %s\n", i+1, shortID(w.PlayerID), w.Word, w.Length, w.SubmittedAt.UTC().Format(time.RFC3339))
	}
}

func (o *Output) printWordCountUpdate(u WordCountUpdate) {
	fmt.Fprintf(o.w, "Word count: %d\n", u.WordCount)
	fmt.Fprintf(o.w, "Highest: %d\n", u.HighestWordCount)
	if u.IsNewRecord {
		fmt.Fprintln(o.w, "New record!")
	}
}

func (o *Output) printTopWordCounts(t TopWordCounts) {
	if len(t.Scores) == 0 {
		fmt.Fprintln(o.w, "No word counts yet")
		return
	}
	for i, s := range t.Scores {
		fmt.Fprintf(o.w, "%2d. %s  %d words  %s\n", i+1, shortID(s.PlayerID), s.HighestWordCount, s.UpdatedAt.UTC().Format(time.RFC3339))
	}
}

func (o *Output) printStreak(s Streak) {
	fmt.Fprintf(o.w, "Current streak: %d\n", s.CurrentStreak)
	fmt.Fprintf(o.w, "Highest streak: %d\n", s.HighestStreak)
	if s.LastSessionDate != nil {
		fmt.Fprintf(o.w, "Last played: %s\n", *s.LastSessionDate)
	}
}

// shortID trims a fingerprint for display
func shortID(id string) string {
	if len(id) > 12 {
		return id[:12]
	}
	return id
}
