package storage

import (
	"sort"

	"github.com/mcoot/omnigram/internal/model"
)

// Ranking helpers shared by the non-SQL backends. The SQL backends express the same ordering in queries.

// LongerWord reports whether a ranks ahead of b: longer first, then earlier submission
func LongerWord(a, b *model.LongestWordRecord) bool {
	if a.Length() != b.Length() {
		return a.Length() > b.Length()
	}
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.Before(b.CreatedAt)
	}
	return a.ID < b.ID
}

// BestLongestWord returns the record that ranks first, or nil
func BestLongestWord(records []*model.LongestWordRecord) *model.LongestWordRecord {
	var best *model.LongestWordRecord
	for _, rec := range records {
		if best == nil || LongerWord(rec, best) {
			best = rec
		}
	}
	return best
}

// RankLongestWords sorts one-per-player records and truncates to limit
func RankLongestWords(records []*model.LongestWordRecord, limit int) []*model.LongestWordRecord {
	sort.SliceStable(records, func(i, j int) bool {
		return LongerWord(records[i], records[j])
	})
	return truncate(records, limit)
}

// RankWordCounts sorts by highest word count, earliest created first on ties
func RankWordCounts(records []*model.WordCountRecord, limit int) []*model.WordCountRecord {
	sort.SliceStable(records, func(i, j int) bool {
		a, b := records[i], records[j]
		if a.HighestWordCount != b.HighestWordCount {
			return a.HighestWordCount > b.HighestWordCount
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.PlayerID < b.PlayerID
	})
	return truncate(records, limit)
}

func truncate[T any](items []T, limit int) []T {
	if limit > 0 && len(items) > limit {
		return items[:limit]
	}
	return items
}
