// Package sqlite is a single-file SQL backend for small deployments and local play.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mattn/go-sqlite3"

	"github.com/mcoot/omnigram/internal/migrate"
	"github.com/mcoot/omnigram/internal/model"
	"github.com/mcoot/omnigram/internal/storage"
)

// Storage persists all trackers in one SQLite database
type Storage struct {
	db *sql.DB
}

// Open creates or opens the database at path, applies pragmas and migrates the schema.
// Use ":memory:" for a throwaway database.
func Open(ctx context.Context, path string) (*Storage, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite allows one writer; a single connection also keeps :memory: databases alive
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := applyPragmas(ctx, db, path); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply pragmas: %w", err)
	}
	if err := migrate.Up(ctx, db, migrate.SQLite); err != nil {
		db.Close()
		return nil, err
	}
	return &Storage{db: db}, nil
}

func applyPragmas(ctx context.Context, db *sql.DB, path string) error {
	pragmas := []string{
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
	}
	if path != ":memory:" {
		pragmas = append(pragmas, "PRAGMA journal_mode = WAL", "PRAGMA synchronous = NORMAL")
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			return fmt.Errorf("%s: %w", p, err)
		}
	}
	return nil
}

// Close closes the database
func (s *Storage) Close() error {
	return s.db.Close()
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

func (s *Storage) PlayerExists(ctx context.Context, id model.PlayerID) (bool, error) {
	const q = `SELECT EXISTS (SELECT 1 FROM longest_words WHERE player_id = ?1)
		OR EXISTS (SELECT 1 FROM word_count_records WHERE player_id = ?1)
		OR EXISTS (SELECT 1 FROM player_streaks WHERE player_id = ?1)
		OR EXISTS (SELECT 1 FROM play_sessions WHERE player_id = ?1)`
	var exists bool
	if err := s.db.QueryRowContext(ctx, q, string(id)).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

// Longest word operations

const longestWordColumns = `id, player_id, word, session_token, created_at`

func (s *Storage) AddLongestWord(ctx context.Context, rec *model.LongestWordRecord) error {
	const q = `INSERT INTO longest_words (player_id, word, session_token, created_at) VALUES (?, ?, ?, ?)`
	res, err := s.db.ExecContext(ctx, q, string(rec.PlayerID), rec.Word, rec.SessionToken, rec.CreatedAt.UTC())
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	rec.ID = id
	return nil
}

func (s *Storage) GetLongestWord(ctx context.Context, playerID model.PlayerID) (*model.LongestWordRecord, error) {
	q := `SELECT ` + longestWordColumns + ` FROM longest_words WHERE player_id = ?
		ORDER BY LENGTH(word) DESC, created_at ASC, id ASC LIMIT 1`
	return scanLongestWord(s.db.QueryRowContext(ctx, q, string(playerID)))
}

func (s *Storage) GetLatestLongestWord(ctx context.Context, playerID model.PlayerID) (*model.LongestWordRecord, error) {
	q := `SELECT ` + longestWordColumns + ` FROM longest_words WHERE player_id = ? ORDER BY id DESC LIMIT 1`
	return scanLongestWord(s.db.QueryRowContext(ctx, q, string(playerID)))
}

func (s *Storage) GetTopLongestWords(ctx context.Context, limit int) ([]*model.LongestWordRecord, error) {
	q := `SELECT ` + longestWordColumns + ` FROM (
			SELECT ` + longestWordColumns + `,
				ROW_NUMBER() OVER (PARTITION BY player_id ORDER BY LENGTH(word) DESC, created_at ASC, id ASC) AS rn
			FROM longest_words
		) WHERE rn = 1
		ORDER BY LENGTH(word) DESC, created_at ASC, id ASC LIMIT ?`
	rows, err := s.db.QueryContext(ctx, q, sqlLimit(limit))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []*model.LongestWordRecord{}
	for rows.Next() {
		rec, err := scanLongestWord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func scanLongestWord(row scanner) (*model.LongestWordRecord, error) {
	var (
		rec       model.LongestWordRecord
		playerID  string
		createdAt timestamp
	)
	err := row.Scan(&rec.ID, &playerID, &rec.Word, &rec.SessionToken, &createdAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrLongestWordNotFound
		}
		return nil, err
	}
	rec.PlayerID = model.PlayerID(playerID)
	rec.CreatedAt = createdAt.Time
	return &rec, nil
}

// Word count operations

func (s *Storage) GetWordCountRecord(ctx context.Context, playerID model.PlayerID) (*model.WordCountRecord, error) {
	const q = `SELECT player_id, word_count, highest_word_count, created_at, updated_at
		FROM word_count_records WHERE player_id = ?`
	return scanWordCount(s.db.QueryRowContext(ctx, q, string(playerID)))
}

func (s *Storage) SaveWordCountRecord(ctx context.Context, rec *model.WordCountRecord) error {
	const q = `INSERT INTO word_count_records (player_id, word_count, highest_word_count, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (player_id) DO UPDATE SET
			word_count = excluded.word_count,
			highest_word_count = MAX(word_count_records.highest_word_count, excluded.highest_word_count),
			updated_at = excluded.updated_at
		RETURNING highest_word_count, created_at`
	var (
		highest   int
		createdAt timestamp
	)
	err := s.db.QueryRowContext(ctx, q,
		string(rec.PlayerID), rec.WordCount, rec.HighestWordCount, rec.CreatedAt.UTC(), rec.UpdatedAt.UTC(),
	).Scan(&highest, &createdAt)
	if err != nil {
		return err
	}
	rec.HighestWordCount = highest
	rec.CreatedAt = createdAt.Time
	return nil
}

func (s *Storage) GetTopWordCounts(ctx context.Context, limit int) ([]*model.WordCountRecord, error) {
	const q = `SELECT player_id, word_count, highest_word_count, created_at, updated_at
		FROM word_count_records
		ORDER BY highest_word_count DESC, created_at ASC, player_id ASC LIMIT ?`
	rows, err := s.db.QueryContext(ctx, q, sqlLimit(limit))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []*model.WordCountRecord{}
	for rows.Next() {
		rec, err := scanWordCount(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func scanWordCount(row scanner) (*model.WordCountRecord, error) {
	var (
		rec                  model.WordCountRecord
		playerID             string
		createdAt, updatedAt timestamp
	)
	err := row.Scan(&playerID, &rec.WordCount, &rec.HighestWordCount, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrWordCountNotFound
		}
		return nil, err
	}
	rec.PlayerID = model.PlayerID(playerID)
	rec.CreatedAt = createdAt.Time
	rec.UpdatedAt = updatedAt.Time
	return &rec, nil
}

// Streak operations

func (s *Storage) GetLatestStreak(ctx context.Context, playerID model.PlayerID) (*model.PlayerStreak, error) {
	const q = `SELECT id, player_id, session_date, current_streak, highest_streak, created_at
		FROM player_streaks WHERE player_id = ? ORDER BY session_date DESC LIMIT 1`
	var (
		st        model.PlayerStreak
		pid, date string
		createdAt timestamp
	)
	err := s.db.QueryRowContext(ctx, q, string(playerID)).
		Scan(&st.ID, &pid, &date, &st.CurrentStreak, &st.HighestStreak, &createdAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrStreakNotFound
		}
		return nil, err
	}
	st.SessionDate, err = model.ParseDate(date)
	if err != nil {
		return nil, fmt.Errorf("streak %d session_date: %w", st.ID, err)
	}
	st.PlayerID = model.PlayerID(pid)
	st.CreatedAt = createdAt.Time
	return &st, nil
}

func (s *Storage) AddStreak(ctx context.Context, streak *model.PlayerStreak) error {
	const q = `INSERT INTO player_streaks (player_id, session_date, current_streak, highest_streak, created_at)
		VALUES (?, ?, ?, ?, ?)`
	res, err := s.db.ExecContext(ctx, q,
		string(streak.PlayerID), streak.SessionDate.Format(model.DateLayout),
		streak.CurrentStreak, streak.HighestStreak, streak.CreatedAt.UTC(),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return model.ErrStreakExists
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	streak.ID = id
	return nil
}

// Play session operations

func (s *Storage) GetOpenPlaySession(ctx context.Context, playerID model.PlayerID) (*model.PlaySession, error) {
	const q = `SELECT id, player_id, omnigram, score, started_at FROM play_sessions
		WHERE player_id = ? AND ended_at IS NULL ORDER BY id DESC LIMIT 1`
	var (
		sess      model.PlaySession
		pid       string
		startedAt timestamp
	)
	err := s.db.QueryRowContext(ctx, q, string(playerID)).
		Scan(&sess.ID, &pid, &sess.Omnigram, &sess.Score, &startedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrPlaySessionNotFound
		}
		return nil, err
	}
	sess.PlayerID = model.PlayerID(pid)
	sess.StartedAt = startedAt.Time

	sess.Words, err = s.sessionWords(ctx, sess.ID)
	if err != nil {
		return nil, err
	}
	return &sess, nil
}

func (s *Storage) sessionWords(ctx context.Context, sessionID int64) ([]model.SessionWord, error) {
	const q = `SELECT word, points, created_at FROM play_session_words WHERE play_session_id = ? ORDER BY id`
	rows, err := s.db.QueryContext(ctx, q, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	words := []model.SessionWord{}
	for rows.Next() {
		var (
			w         model.SessionWord
			createdAt timestamp
		)
		if err := rows.Scan(&w.Word, &w.Points, &createdAt); err != nil {
			return nil, err
		}
		w.CreatedAt = createdAt.Time
		words = append(words, w)
	}
	return words, rows.Err()
}

func (s *Storage) CreatePlaySession(ctx context.Context, session *model.PlaySession) error {
	const q = `INSERT INTO play_sessions (player_id, omnigram, score, started_at) VALUES (?, ?, ?, ?)`
	res, err := s.db.ExecContext(ctx, q, string(session.PlayerID), session.Omnigram, session.Score, session.StartedAt.UTC())
	if err != nil {
		if isUniqueViolation(err) {
			return model.ErrOpenSessionExists
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	session.ID = id
	return nil
}

func (s *Storage) EndOpenPlaySessions(ctx context.Context, playerID model.PlayerID, endedAt time.Time) error {
	const q = `UPDATE play_sessions SET ended_at = ? WHERE player_id = ? AND ended_at IS NULL`
	_, err := s.db.ExecContext(ctx, q, endedAt.UTC(), string(playerID))
	return err
}

func (s *Storage) AddSessionWord(ctx context.Context, sessionID int64, word model.SessionWord) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
			return
		}
		err = tx.Commit()
	}()

	const upd = `UPDATE play_sessions SET score = score + ? WHERE id = ? AND ended_at IS NULL`
	const ins = `INSERT INTO play_session_words (play_session_id, word, points, created_at) VALUES (?, ?, ?, ?)`

	res, err := tx.ExecContext(ctx, upd, word.Points, sessionID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return model.ErrPlaySessionNotFound
	}

	if _, err = tx.ExecContext(ctx, ins, sessionID, word.Word, word.Points, word.CreatedAt.UTC()); err != nil {
		if isUniqueViolation(err) {
			return model.ErrWordAlreadyFound
		}
		return err
	}
	return nil
}

func (s *Storage) ListEndedSessionSummaries(ctx context.Context) ([]*model.SessionSummary, error) {
	const q = `SELECT s.id, s.player_id, s.started_at, s.score, COUNT(w.id)
		FROM play_sessions s
		LEFT JOIN play_session_words w ON w.play_session_id = s.id
		WHERE s.ended_at IS NOT NULL
		GROUP BY s.id, s.player_id, s.started_at, s.score
		ORDER BY s.id`
	rows, err := s.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []*model.SessionSummary{}
	for rows.Next() {
		var (
			sum       model.SessionSummary
			pid       string
			startedAt timestamp
		)
		if err := rows.Scan(&sum.SessionID, &pid, &startedAt, &sum.Score, &sum.WordCount); err != nil {
			return nil, err
		}
		sum.PlayerID = model.PlayerID(pid)
		sum.StartedAt = startedAt.Time
		out = append(out, &sum)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

// timestamp scans DATETIME columns whether the driver hands back a time or its text form
type timestamp struct {
	Time time.Time
}

func (ts *timestamp) Scan(src any) error {
	switch v := src.(type) {
	case time.Time:
		ts.Time = v.UTC()
		return nil
	case string:
		return ts.parse(v)
	case []byte:
		return ts.parse(string(v))
	default:
		return fmt.Errorf("cannot scan %T into timestamp", src)
	}
}

func (ts *timestamp) parse(s string) error {
	s = strings.TrimSuffix(s, "Z")
	for _, layout := range sqlite3.SQLiteTimestampFormats {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			ts.Time = t.UTC()
			return nil
		}
	}
	return fmt.Errorf("unrecognised timestamp %q", s)
}

// sqlLimit maps a non-positive limit to SQLite's "no limit"
func sqlLimit(limit int) int {
	if limit <= 0 {
		return -1
	}
	return limit
}

func isUniqueViolation(err error) bool {
	var se sqlite3.Error
	return errors.As(err, &se) &&
		(se.ExtendedCode == sqlite3.ErrConstraintUnique || se.ExtendedCode == sqlite3.ErrConstraintPrimaryKey)
}
