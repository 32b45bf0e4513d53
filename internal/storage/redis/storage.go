package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mcoot/omnigram/internal/model"
	"github.com/mcoot/omnigram/internal/storage"
)

// Storage is a Redis-backed implementation of the storage interface
type Storage struct {
	client *redis.Client
	cfg    Config
	keys   keys
}

// New creates a new Redis storage instance
func New(cfg Config) (*Storage, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}

	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns

	client := redis.NewClient(opts)

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return NewWithClient(client, cfg), nil
}

// NewWithClient creates a Redis storage with an existing client (for testing)
func NewWithClient(client *redis.Client, cfg Config) *Storage {
	if cfg.KeyPrefix == "" {
		cfg.KeyPrefix = DefaultConfig().KeyPrefix
	}
	return &Storage{
		client: client,
		cfg:    cfg,
		keys:   keys{prefix: cfg.KeyPrefix},
	}
}

// Client exposes the underlying connection so other components can share it
func (s *Storage) Client() *redis.Client {
	return s.client
}

// Close closes the Redis connection
func (s *Storage) Close() error {
	return s.client.Close()
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

func (s *Storage) PlayerExists(ctx context.Context, id model.PlayerID) (bool, error) {
	return s.client.SIsMember(ctx, s.keys.players(), string(id)).Result()
}

// watch runs fn in an optimistic transaction, retrying on conflicting writes
func (s *Storage) watch(ctx context.Context, fn func(tx *redis.Tx) error, watched ...string) error {
	retries := max(s.cfg.MaxTxRetries, 1)
	for range retries {
		err := s.client.Watch(ctx, fn, watched...)
		if !errors.Is(err, redis.TxFailedErr) {
			return err
		}
	}
	return fmt.Errorf("watch %v: %w", watched, redis.TxFailedErr)
}

// Longest word operations

func (s *Storage) AddLongestWord(ctx context.Context, rec *model.LongestWordRecord) error {
	id, err := s.client.Incr(ctx, s.keys.sequence("longest_word")).Result()
	if err != nil {
		return err
	}
	stored := *rec
	stored.ID = id
	data, err := json.Marshal(stored)
	if err != nil {
		return err
	}

	pipe := s.client.TxPipeline()
	pipe.RPush(ctx, s.keys.longestWords(rec.PlayerID), data)
	pipe.SAdd(ctx, s.keys.longestWordPlayers(), string(rec.PlayerID))
	pipe.SAdd(ctx, s.keys.players(), string(rec.PlayerID))
	if _, err := pipe.Exec(ctx); err != nil {
		return err
	}
	rec.ID = id
	return nil
}

func (s *Storage) GetLongestWord(ctx context.Context, playerID model.PlayerID) (*model.LongestWordRecord, error) {
	raw, err := s.client.LRange(ctx, s.keys.longestWords(playerID), 0, -1).Result()
	if err != nil {
		return nil, err
	}
	records, err := decodeLongestWords(raw)
	if err != nil {
		return nil, err
	}
	best := storage.BestLongestWord(records)
	if best == nil {
		return nil, model.ErrLongestWordNotFound
	}
	return best, nil
}

func (s *Storage) GetLatestLongestWord(ctx context.Context, playerID model.PlayerID) (*model.LongestWordRecord, error) {
	data, err := s.client.LIndex(ctx, s.keys.longestWords(playerID), -1).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrLongestWordNotFound
		}
		return nil, err
	}
	var rec model.LongestWordRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

func (s *Storage) GetTopLongestWords(ctx context.Context, limit int) ([]*model.LongestWordRecord, error) {
	players, err := s.client.SMembers(ctx, s.keys.longestWordPlayers()).Result()
	if err != nil {
		return nil, err
	}
	if len(players) == 0 {
		return []*model.LongestWordRecord{}, nil
	}

	pipe := s.client.Pipeline()
	cmds := make([]*redis.StringSliceCmd, len(players))
	for i, p := range players {
		cmds[i] = pipe.LRange(ctx, s.keys.longestWords(model.PlayerID(p)), 0, -1)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, err
	}

	out := make([]*model.LongestWordRecord, 0, len(players))
	for _, cmd := range cmds {
		records, err := decodeLongestWords(cmd.Val())
		if err != nil {
			return nil, err
		}
		if best := storage.BestLongestWord(records); best != nil {
			out = append(out, best)
		}
	}
	return storage.RankLongestWords(out, limit), nil
}

func decodeLongestWords(raw []string) ([]*model.LongestWordRecord, error) {
	records := make([]*model.LongestWordRecord, 0, len(raw))
	for _, item := range raw {
		var rec model.LongestWordRecord
		if err := json.Unmarshal([]byte(item), &rec); err != nil {
			return nil, err
		}
		records = append(records, &rec)
	}
	return records, nil
}

// Word count operations

func (s *Storage) GetWordCountRecord(ctx context.Context, playerID model.PlayerID) (*model.WordCountRecord, error) {
	data, err := s.client.Get(ctx, s.keys.wordCount(playerID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrWordCountNotFound
		}
		return nil, err
	}
	var rec model.WordCountRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

func (s *Storage) SaveWordCountRecord(ctx context.Context, rec *model.WordCountRecord) error {
	key := s.keys.wordCount(rec.PlayerID)
	return s.watch(ctx, func(tx *redis.Tx) error {
		stored := *rec
		data, err := tx.Get(ctx, key).Bytes()
		switch {
		case err == nil:
			var cur model.WordCountRecord
			if err := json.Unmarshal(data, &cur); err != nil {
				return err
			}
			stored.CreatedAt = cur.CreatedAt
			stored.HighestWordCount = max(cur.HighestWordCount, rec.HighestWordCount)
		case !errors.Is(err, redis.Nil):
			return err
		}

		payload, err := json.Marshal(stored)
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, payload, 0)
			pipe.SAdd(ctx, s.keys.wordCountPlayers(), string(rec.PlayerID))
			pipe.SAdd(ctx, s.keys.players(), string(rec.PlayerID))
			return nil
		})
		if err != nil {
			return err
		}
		*rec = stored
		return nil
	}, key)
}

func (s *Storage) GetTopWordCounts(ctx context.Context, limit int) ([]*model.WordCountRecord, error) {
	players, err := s.client.SMembers(ctx, s.keys.wordCountPlayers()).Result()
	if err != nil {
		return nil, err
	}
	if len(players) == 0 {
		return []*model.WordCountRecord{}, nil
	}

	recordKeys := make([]string, len(players))
	for i, p := range players {
		recordKeys[i] = s.keys.wordCount(model.PlayerID(p))
	}
	values, err := s.client.MGet(ctx, recordKeys...).Result()
	if err != nil {
		return nil, err
	}

	out := make([]*model.WordCountRecord, 0, len(values))
	for _, v := range values {
		str, ok := v.(string)
		if !ok {
			continue
		}
		var rec model.WordCountRecord
		if err := json.Unmarshal([]byte(str), &rec); err != nil {
			return nil, err
		}
		out = append(out, &rec)
	}
	return storage.RankWordCounts(out, limit), nil
}

// Streak operations

func (s *Storage) GetLatestStreak(ctx context.Context, playerID model.PlayerID) (*model.PlayerStreak, error) {
	dates, err := s.client.ZRevRange(ctx, s.keys.streakDates(playerID), 0, 0).Result()
	if err != nil {
		return nil, err
	}
	if len(dates) == 0 {
		return nil, model.ErrStreakNotFound
	}

	data, err := s.client.HGet(ctx, s.keys.streaks(playerID), dates[0]).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrStreakNotFound
		}
		return nil, err
	}
	var streak model.PlayerStreak
	if err := json.Unmarshal(data, &streak); err != nil {
		return nil, err
	}
	return &streak, nil
}

func (s *Storage) AddStreak(ctx context.Context, streak *model.PlayerStreak) error {
	id, err := s.client.Incr(ctx, s.keys.sequence("streak")).Result()
	if err != nil {
		return err
	}
	stored := *streak
	stored.ID = id
	data, err := json.Marshal(stored)
	if err != nil {
		return err
	}

	date := streak.SessionDate.Format(model.DateLayout)
	var added *redis.BoolCmd
	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		added = pipe.HSetNX(ctx, s.keys.streaks(streak.PlayerID), date, data)
		pipe.ZAdd(ctx, s.keys.streakDates(streak.PlayerID), redis.Z{
			Score:  float64(streak.SessionDate.Unix()),
			Member: date,
		})
		pipe.SAdd(ctx, s.keys.players(), string(streak.PlayerID))
		return nil
	})
	if err != nil {
		return err
	}
	if !added.Val() {
		return model.ErrStreakExists
	}
	streak.ID = id
	return nil
}

// Play session operations

const (
	fieldPlayerID  = "player_id"
	fieldOmnigram  = "omnigram"
	fieldScore     = "score"
	fieldStartedAt = "started_at"
	fieldEndedAt   = "ended_at"
)

func (s *Storage) GetOpenPlaySession(ctx context.Context, playerID model.PlayerID) (*model.PlaySession, error) {
	id, err := s.client.Get(ctx, s.keys.openSession(playerID)).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrPlaySessionNotFound
		}
		return nil, err
	}
	return s.loadSession(ctx, id)
}

func (s *Storage) CreatePlaySession(ctx context.Context, session *model.PlaySession) error {
	id, err := s.client.Incr(ctx, s.keys.sequence("play_session")).Result()
	if err != nil {
		return err
	}

	sessionKey := s.keys.session(id)
	var claimed *redis.BoolCmd
	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		claimed = pipe.SetNX(ctx, s.keys.openSession(session.PlayerID), id, 0)
		pipe.HSet(ctx, sessionKey, map[string]any{
			fieldPlayerID:  string(session.PlayerID),
			fieldOmnigram:  session.Omnigram,
			fieldScore:     session.Score,
			fieldStartedAt: formatTime(session.StartedAt),
		})
		pipe.SAdd(ctx, s.keys.players(), string(session.PlayerID))
		return nil
	})
	if err != nil {
		return err
	}
	if !claimed.Val() {
		// The hash was written for an ID that never became visible
		if err := s.client.Del(ctx, sessionKey).Err(); err != nil {
			return err
		}
		return model.ErrOpenSessionExists
	}
	session.ID = id
	return nil
}

func (s *Storage) EndOpenPlaySessions(ctx context.Context, playerID model.PlayerID, endedAt time.Time) error {
	openKey := s.keys.openSession(playerID)
	return s.watch(ctx, func(tx *redis.Tx) error {
		id, err := tx.Get(ctx, openKey).Int64()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				return nil
			}
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.HSet(ctx, s.keys.session(id), fieldEndedAt, formatTime(endedAt))
			pipe.Del(ctx, openKey)
			pipe.ZAdd(ctx, s.keys.endedSessions(), redis.Z{Score: float64(id), Member: id})
			return nil
		})
		return err
	}, openKey)
}

func (s *Storage) AddSessionWord(ctx context.Context, sessionID int64, word model.SessionWord) error {
	data, err := json.Marshal(word)
	if err != nil {
		return err
	}
	sessionKey := s.keys.session(sessionID)
	wordSetKey := s.keys.sessionWordSet(sessionID)
	member := strings.ToLower(word.Word)

	return s.watch(ctx, func(tx *redis.Tx) error {
		vals, err := tx.HMGet(ctx, sessionKey, fieldStartedAt, fieldEndedAt).Result()
		if err != nil {
			return err
		}
		if vals[0] == nil {
			return model.ErrPlaySessionNotFound
		}
		if ended, ok := vals[1].(string); ok && ended != "" {
			return model.ErrPlaySessionNotFound
		}
		found, err := tx.SIsMember(ctx, wordSetKey, member).Result()
		if err != nil {
			return err
		}
		if found {
			return model.ErrWordAlreadyFound
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.SAdd(ctx, wordSetKey, member)
			pipe.RPush(ctx, s.keys.sessionWords(sessionID), data)
			pipe.HIncrBy(ctx, sessionKey, fieldScore, int64(word.Points))
			return nil
		})
		return err
	}, sessionKey, wordSetKey)
}

func (s *Storage) ListEndedSessionSummaries(ctx context.Context) ([]*model.SessionSummary, error) {
	ids, err := s.client.ZRange(ctx, s.keys.endedSessions(), 0, -1).Result()
	if err != nil {
		return nil, err
	}

	type pending struct {
		id     int64
		fields *redis.MapStringStringCmd
		words  *redis.IntCmd
	}
	pipe := s.client.Pipeline()
	rows := make([]pending, 0, len(ids))
	for _, raw := range ids {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("ended session id %q: %w", raw, err)
		}
		rows = append(rows, pending{
			id:     id,
			fields: pipe.HGetAll(ctx, s.keys.session(id)),
			words:  pipe.LLen(ctx, s.keys.sessionWords(id)),
		})
	}
	if len(rows) > 0 {
		if _, err := pipe.Exec(ctx); err != nil {
			return nil, err
		}
	}

	out := make([]*model.SessionSummary, 0, len(rows))
	for _, row := range rows {
		sess, err := parseSession(row.id, row.fields.Val())
		if err != nil {
			return nil, err
		}
		out = append(out, &model.SessionSummary{
			SessionID: sess.ID,
			PlayerID:  sess.PlayerID,
			StartedAt: sess.StartedAt,
			WordCount: int(row.words.Val()),
			Score:     sess.Score,
		})
	}
	return out, nil
}

func (s *Storage) loadSession(ctx context.Context, id int64) (*model.PlaySession, error) {
	pipe := s.client.Pipeline()
	fieldsCmd := pipe.HGetAll(ctx, s.keys.session(id))
	wordsCmd := pipe.LRange(ctx, s.keys.sessionWords(id), 0, -1)
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, err
	}

	fields := fieldsCmd.Val()
	if len(fields) == 0 {
		return nil, model.ErrPlaySessionNotFound
	}
	sess, err := parseSession(id, fields)
	if err != nil {
		return nil, err
	}
	for _, raw := range wordsCmd.Val() {
		var w model.SessionWord
		if err := json.Unmarshal([]byte(raw), &w); err != nil {
			return nil, err
		}
		sess.Words = append(sess.Words, w)
	}
	return sess, nil
}

func parseSession(id int64, fields map[string]string) (*model.PlaySession, error) {
	score, err := strconv.Atoi(fields[fieldScore])
	if err != nil {
		return nil, fmt.Errorf("session %d score: %w", id, err)
	}
	startedAt, err := parseTime(fields[fieldStartedAt])
	if err != nil {
		return nil, fmt.Errorf("session %d started_at: %w", id, err)
	}
	sess := &model.PlaySession{
		ID:        id,
		PlayerID:  model.PlayerID(fields[fieldPlayerID]),
		Omnigram:  fields[fieldOmnigram],
		Score:     score,
		StartedAt: startedAt,
		Words:     []model.SessionWord{},
	}
	if raw, ok := fields[fieldEndedAt]; ok && raw != "" {
		endedAt, err := parseTime(raw)
		if err != nil {
			return nil, fmt.Errorf("session %d ended_at: %w", id, err)
		}
		sess.EndedAt = &endedAt
	}
	return sess, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) (time.Time, error) {
	return time.Parse(time.RFC3339Nano, s)
}
