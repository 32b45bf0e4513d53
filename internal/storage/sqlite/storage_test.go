package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/mcoot/omnigram/internal/model"
	"github.com/mcoot/omnigram/internal/storage"
	"github.com/mcoot/omnigram/internal/storage/storagetest"
)

func openTestStorage(t *testing.T) *Storage {
	t.Helper()
	s, err := Open(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestStorageSuite(t *testing.T) {
	suite.Run(t, &storagetest.Suite{
		NewStorage: func(t *testing.T) storage.Storage { return openTestStorage(t) },
	})
}

func TestOpenIsIdempotentOnFile(t *testing.T) {
	path := t.TempDir() + "/omnigram.db"
	ctx := context.Background()

	first, err := Open(ctx, path)
	require.NoError(t, err)
	require.NoError(t, first.AddLongestWord(ctx, &model.LongestWordRecord{
		PlayerID: "player-1", Word: "hello", SessionToken: "tok", CreatedAt: time.Now(),
	}))
	require.NoError(t, first.Close())

	second, err := Open(ctx, path)
	require.NoError(t, err)
	defer second.Close()

	rec, err := second.GetLongestWord(ctx, "player-1")
	require.NoError(t, err)
	assert.Equal(t, "hello", rec.Word)
}

func TestLongestWordCountsCharactersNotBytes(t *testing.T) {
	s := openTestStorage(t)
	ctx := context.Background()
	base := time.Date(2024, 3, 20, 12, 0, 0, 0, time.UTC)

	require.NoError(t, s.AddLongestWord(ctx, &model.LongestWordRecord{
		PlayerID: "player-1", Word: "ééé", SessionToken: "tok", CreatedAt: base,
	}))
	require.NoError(t, s.AddLongestWord(ctx, &model.LongestWordRecord{
		PlayerID: "player-1", Word: "abcd", SessionToken: "tok", CreatedAt: base.Add(time.Minute),
	}))

	rec, err := s.GetLongestWord(ctx, "player-1")
	require.NoError(t, err)
	assert.Equal(t, "abcd", rec.Word)
}

func TestTimestampScan(t *testing.T) {
	var ts timestamp
	require.NoError(t, ts.Scan("2024-03-20 14:00:00+00:00"))
	assert.True(t, ts.Time.Equal(time.Date(2024, 3, 20, 14, 0, 0, 0, time.UTC)))

	require.NoError(t, ts.Scan([]byte("2024-03-20T14:00:00Z")))
	assert.True(t, ts.Time.Equal(time.Date(2024, 3, 20, 14, 0, 0, 0, time.UTC)))

	assert.Error(t, ts.Scan(42))
}
