package storage

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/mcoot/omnigram/internal/model"
)

func TestRankLongestWordsOrdersByLengthThenTime(t *testing.T) {
	base := time.Date(2024, 3, 20, 12, 0, 0, 0, time.UTC)
	records := []*model.LongestWordRecord{
		{ID: 1, PlayerID: "a", Word: "hello", CreatedAt: base},
		{ID: 2, PlayerID: "b", Word: "extraordinary", CreatedAt: base},
		{ID: 3, PlayerID: "c", Word: "incomprehensibilities", CreatedAt: base},
		{ID: 4, PlayerID: "d", Word: "world", CreatedAt: base.Add(-time.Minute)},
	}

	ranked := RankLongestWords(records, 10)

	words := make([]string, len(ranked))
	for i, r := range ranked {
		words[i] = r.Word
	}
	assert.Equal(t, []string{"incomprehensibilities", "extraordinary", "world", "hello"}, words)
}

func TestRankLongestWordsTruncates(t *testing.T) {
	records := []*model.LongestWordRecord{
		{ID: 1, Word: "aa"}, {ID: 2, Word: "bbb"}, {ID: 3, Word: "c"},
	}

	ranked := RankLongestWords(records, 2)

	assert.Len(t, ranked, 2)
	assert.Equal(t, "bbb", ranked[0].Word)
}

func TestBestLongestWordKeepsEarliestOnTie(t *testing.T) {
	base := time.Date(2024, 3, 20, 12, 0, 0, 0, time.UTC)
	first := &model.LongestWordRecord{ID: 1, Word: "stone", CreatedAt: base}
	second := &model.LongestWordRecord{ID: 2, Word: "tones", CreatedAt: base.Add(time.Hour)}

	assert.Same(t, first, BestLongestWord([]*model.LongestWordRecord{second, first}))
	assert.Nil(t, BestLongestWord(nil))
}

func TestRankWordCounts(t *testing.T) {
	base := time.Date(2024, 3, 20, 12, 0, 0, 0, time.UTC)
	records := []*model.WordCountRecord{
		{PlayerID: "a", HighestWordCount: 10, CreatedAt: base},
		{PlayerID: "b", HighestWordCount: 42, CreatedAt: base},
		{PlayerID: "c", HighestWordCount: 10, CreatedAt: base.Add(-time.Hour)},
	}

	ranked := RankWordCounts(records, 10)

	assert.Equal(t, model.PlayerID("b"), ranked[0].PlayerID)
	assert.Equal(t, model.PlayerID("c"), ranked[1].PlayerID)
	assert.Equal(t, model.PlayerID("a"), ranked[2].PlayerID)
}
