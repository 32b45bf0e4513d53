package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/mcoot/omnigram/internal/model"
	"github.com/mcoot/omnigram/internal/storage"
)

// Storage is a PostgreSQL implementation of the storage interface
type Storage struct {
	db *DB
}

// New creates storage over an open pool; the schema must already be migrated
func New(db *DB) *Storage {
	return &Storage{db: db}
}

// Close closes the pool
func (s *Storage) Close() error {
	s.db.Close()
	return nil
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

func (s *Storage) PlayerExists(ctx context.Context, id model.PlayerID) (bool, error) {
	const q = `SELECT EXISTS (SELECT 1 FROM longest_words WHERE player_id = $1)
		OR EXISTS (SELECT 1 FROM word_count_records WHERE player_id = $1)
		OR EXISTS (SELECT 1 FROM player_streaks WHERE player_id = $1)
		OR EXISTS (SELECT 1 FROM play_sessions WHERE player_id = $1)`
	var exists bool
	if err := s.db.Pool.QueryRow(ctx, q, string(id)).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

// Longest word operations

func (s *Storage) AddLongestWord(ctx context.Context, rec *model.LongestWordRecord) error {
	const q = `INSERT INTO longest_words (player_id, word, session_token, created_at) VALUES ($1, $2, $3, $4) RETURNING id`
	return s.db.Pool.QueryRow(ctx, q, string(rec.PlayerID), rec.Word, rec.SessionToken, rec.CreatedAt).Scan(&rec.ID)
}

func (s *Storage) GetLongestWord(ctx context.Context, playerID model.PlayerID) (*model.LongestWordRecord, error) {
	const q = `SELECT id, player_id, word, session_token, created_at FROM longest_words WHERE player_id = $1
		ORDER BY char_length(word) DESC, created_at ASC, id ASC LIMIT 1`
	return scanLongestWord(s.db.Pool.QueryRow(ctx, q, string(playerID)))
}

func (s *Storage) GetLatestLongestWord(ctx context.Context, playerID model.PlayerID) (*model.LongestWordRecord, error) {
	const q = `SELECT id, player_id, word, session_token, created_at FROM longest_words WHERE player_id = $1
		ORDER BY id DESC LIMIT 1`
	return scanLongestWord(s.db.Pool.QueryRow(ctx, q, string(playerID)))
}

func (s *Storage) GetTopLongestWords(ctx context.Context, limit int) ([]*model.LongestWordRecord, error) {
	const q = `SELECT id, player_id, word, session_token, created_at FROM (
			SELECT DISTINCT ON (player_id) id, player_id, word, session_token, created_at
			FROM longest_words
			ORDER BY player_id, char_length(word) DESC, created_at ASC, id ASC
		) best
		ORDER BY char_length(word) DESC, created_at ASC, id ASC LIMIT $1`
	rows, err := s.db.Pool.Query(ctx, q, sqlLimit(limit))
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

func scanLongestWord(row pgx.Row) (*model.LongestWordRecord, error) {
	var (
		rec      model.LongestWordRecord
		playerID string
	)
	if err := row.Scan(&rec.ID, &playerID, &rec.Word, &rec.SessionToken, &rec.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrLongestWordNotFound
		}
		return nil, err
	}
	rec.PlayerID = model.PlayerID(playerID)
	return &rec, nil
}

// Word count operations

func (s *Storage) GetWordCountRecord(ctx context.Context, playerID model.PlayerID) (*model.WordCountRecord, error) {
	const q = `SELECT player_id, word_count, highest_word_count, created_at, updated_at
		FROM word_count_records WHERE player_id = $1`
	return scanWordCount(s.db.Pool.QueryRow(ctx, q, string(playerID)))
}

func (s *Storage) SaveWordCountRecord(ctx context.Context, rec *model.WordCountRecord) error {
	const q = `INSERT INTO word_count_records (player_id, word_count, highest_word_count, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (player_id) DO UPDATE SET
			word_count = EXCLUDED.word_count,
			highest_word_count = GREATEST(word_count_records.highest_word_count, EXCLUDED.highest_word_count),
			updated_at = EXCLUDED.updated_at
		RETURNING highest_word_count, created_at`
	return s.db.Pool.QueryRow(ctx, q,
		string(rec.PlayerID), rec.WordCount, rec.HighestWordCount, rec.CreatedAt, rec.UpdatedAt,
	).Scan(&rec.HighestWordCount, &rec.CreatedAt)
}

func (s *Storage) GetTopWordCounts(ctx context.Context, limit int) ([]*model.WordCountRecord, error) {
	const q = `SELECT player_id, word_count, highest_word_count, created_at, updated_at
		FROM word_count_records
		ORDER BY highest_word_count DESC, created_at ASC, player_id ASC LIMIT $1`
	rows, err := s.db.Pool.Query(ctx, q, sqlLimit(limit))
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

func scanWordCount(row pgx.Row) (*model.WordCountRecord, error) {
	var (
		rec      model.WordCountRecord
		playerID string
	)
	err := row.Scan(&playerID, &rec.WordCount, &rec.HighestWordCount, &rec.CreatedAt, &rec.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrWordCountNotFound
		}
		return nil, err
	}
	rec.PlayerID = model.PlayerID(playerID)
	return &rec, nil
}

// Streak operations

func (s *Storage) GetLatestStreak(ctx context.Context, playerID model.PlayerID) (*model.PlayerStreak, error) {
	const q = `SELECT id, player_id, session_date, current_streak, highest_streak, created_at
		FROM player_streaks WHERE player_id = $1 ORDER BY session_date DESC LIMIT 1`
	var (
		st  model.PlayerStreak
		pid string
	)
	err := s.db.Pool.QueryRow(ctx, q, string(playerID)).
		Scan(&st.ID, &pid, &st.SessionDate, &st.CurrentStreak, &st.HighestStreak, &st.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrStreakNotFound
		}
		return nil, err
	}
	st.PlayerID = model.PlayerID(pid)
	st.SessionDate = model.CalendarDate(st.SessionDate, time.UTC)
	return &st, nil
}

func (s *Storage) AddStreak(ctx context.Context, streak *model.PlayerStreak) error {
	const q = `INSERT INTO player_streaks (player_id, session_date, current_streak, highest_streak, created_at)
		VALUES ($1, $2, $3, $4, $5) RETURNING id`
	err := s.db.Pool.QueryRow(ctx, q,
		string(streak.PlayerID), streak.SessionDate, streak.CurrentStreak, streak.HighestStreak, streak.CreatedAt,
	).Scan(&streak.ID)
	if isUniqueViolation(err) {
		return model.ErrStreakExists
	}
	return err
}

// Play session operations

func (s *Storage) GetOpenPlaySession(ctx context.Context, playerID model.PlayerID) (*model.PlaySession, error) {
	const q = `SELECT id, player_id, omnigram, score, started_at FROM play_sessions
		WHERE player_id = $1 AND ended_at IS NULL ORDER BY id DESC LIMIT 1`
	var (
		sess model.PlaySession
		pid  string
	)
	err := s.db.Pool.QueryRow(ctx, q, string(playerID)).
		Scan(&sess.ID, &pid, &sess.Omnigram, &sess.Score, &sess.StartedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrPlaySessionNotFound
		}
		return nil, err
	}
	sess.PlayerID = model.PlayerID(pid)

	sess.Words, err = s.sessionWords(ctx, sess.ID)
	if err != nil {
		return nil, err
	}
	return &sess, nil
}

func (s *Storage) sessionWords(ctx context.Context, sessionID int64) ([]model.SessionWord, error) {
	const q = `SELECT word, points, created_at FROM play_session_words WHERE play_session_id = $1 ORDER BY id`
	rows, err := s.db.Pool.Query(ctx, q, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	words := []model.SessionWord{}
	for rows.Next() {
		var w model.SessionWord
		if err := rows.Scan(&w.Word, &w.Points, &w.CreatedAt); err != nil {
			return nil, err
		}
		words = append(words, w)
	}
	return words, rows.Err()
}

func (s *Storage) CreatePlaySession(ctx context.Context, session *model.PlaySession) error {
	const q = `INSERT INTO play_sessions (player_id, omnigram, score, started_at) VALUES ($1, $2, $3, $4) RETURNING id`
	err := s.db.Pool.QueryRow(ctx, q, string(session.PlayerID), session.Omnigram, session.Score, session.StartedAt).
		Scan(&session.ID)
	if isUniqueViolation(err) {
		return model.ErrOpenSessionExists
	}
	return err
}

func (s *Storage) EndOpenPlaySessions(ctx context.Context, playerID model.PlayerID, endedAt time.Time) error {
	const q = `UPDATE play_sessions SET ended_at = $1 WHERE player_id = $2 AND ended_at IS NULL`
	_, err := s.db.Pool.Exec(ctx, q, endedAt, string(playerID))
	return err
}

func (s *Storage) AddSessionWord(ctx context.Context, sessionID int64, word model.SessionWord) (err error) {
	tx, err := s.db.Pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
			return
		}
		if e := tx.Commit(ctx); e != nil {
			err = e
		}
	}()

	const upd = `UPDATE play_sessions SET score = score + $1 WHERE id = $2 AND ended_at IS NULL`
	const ins = `INSERT INTO play_session_words (play_session_id, word, points, created_at) VALUES ($1, $2, $3, $4)`

	tag, err := tx.Exec(ctx, upd, word.Points, sessionID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return model.ErrPlaySessionNotFound
	}
	if _, err = tx.Exec(ctx, ins, sessionID, word.Word, word.Points, word.CreatedAt); err != nil {
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
		GROUP BY s.id
		ORDER BY s.id`
	rows, err := s.db.Pool.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []*model.SessionSummary{}
	for rows.Next() {
		var (
			sum   model.SessionSummary
			pid   string
			count int64
		)
		if err := rows.Scan(&sum.SessionID, &pid, &sum.StartedAt, &sum.Score, &count); err != nil {
			return nil, err
		}
		sum.PlayerID = model.PlayerID(pid)
		sum.WordCount = int(count)
		out = append(out, &sum)
	}
	return out, rows.Err()
}

// sqlLimit maps a non-positive limit to LIMIT NULL, which Postgres treats as no limit
func sqlLimit(limit int) any {
	if limit <= 0 {
		return nil
	}
	return limit
}
