// Package omnigram supplies puzzle words and checks candidate words against them.
package omnigram

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/mcoot/omnigram/internal/dependencies/clock"
	"github.com/mcoot/omnigram/internal/dependencies/random"
	"github.com/mcoot/omnigram/internal/model"
)

const (
	// Letters is the number of distinct letters in an omnigram
	Letters = 8
	// RequiredLetter must appear in every omnigram
	RequiredLetter = 's'
	// DefaultRefresh is how long a loaded pool is served before reloading
	DefaultRefresh = 24 * time.Hour
)

// Pool is the cached list of candidate omnigrams
type Pool struct {
	source  Source
	refresh time.Duration
	clock   clock.Clock
	random  random.Random
	logger  *slog.Logger

	loadMu sync.Mutex

	mu       sync.RWMutex
	words    []string
	loadedAt time.Time
	loaded   bool
}

// NewPool creates a pool over source. A nil source is allowed when words are supplied with LoadWords.
func NewPool(source Source, refresh time.Duration, clock clock.Clock, random random.Random, logger *slog.Logger) *Pool {
	return &Pool{
		source:  source,
		refresh: refresh,
		clock:   clock,
		random:  random,
		logger:  logger,
	}
}

// Load reads the source now, replacing the pool on success
func (p *Pool) Load(ctx context.Context) error {
	if p.source == nil {
		return fmt.Errorf("omnigram pool has no source: %w", model.ErrOmnigramPoolEmpty)
	}
	rc, err := p.source.Open(ctx)
	if err != nil {
		return fmt.Errorf("open %s: %w", p.source, err)
	}
	defer rc.Close()

	words, err := ParseWords(rc)
	if err != nil {
		return fmt.Errorf("read %s: %w", p.source, err)
	}
	if len(words) == 0 {
		return fmt.Errorf("%s: %w", p.source, model.ErrOmnigramPoolEmpty)
	}

	p.store(words)
	p.logger.Info("omnigram pool loaded",
		slog.String("source", p.source.String()),
		slog.Int("words", len(words)),
	)
	return nil
}

// LoadWords replaces the pool with the omnigrams among words
func (p *Pool) LoadWords(words []string) {
	var kept []string
	for _, w := range words {
		if w = normalise(w); IsOmnigram(w) {
			kept = append(kept, w)
		}
	}
	p.store(kept)
}

func (p *Pool) store(words []string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.words = words
	p.loadedAt = p.clock.Now()
	p.loaded = true
}

// Size returns the number of omnigrams currently held
func (p *Pool) Size() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.words)
}

// RandomOmnigram picks a uniformly random omnigram, upper-cased
func (p *Pool) RandomOmnigram(ctx context.Context) (string, error) {
	words, err := p.current(ctx)
	if err != nil {
		return "", err
	}
	if len(words) == 0 {
		return "", model.ErrOmnigramPoolEmpty
	}
	return strings.ToUpper(random.Pick(p.random, words)), nil
}

// IsValidWord reports whether word can be spelled from the omnigram's letters
func (p *Pool) IsValidWord(word, omnigram string) bool {
	return IsValidWord(word, omnigram)
}

// current returns the pool, reloading it first when stale.
// A failed reload keeps serving the previous words.
func (p *Pool) current(ctx context.Context) ([]string, error) {
	if words, fresh := p.snapshot(); fresh {
		return words, nil
	}

	p.loadMu.Lock()
	defer p.loadMu.Unlock()

	// Another caller may have reloaded while we waited
	words, fresh := p.snapshot()
	if fresh {
		return words, nil
	}
	if p.source == nil {
		return words, nil
	}
	if err := p.Load(ctx); err != nil {
		if len(words) > 0 {
			p.logger.Warn("omnigram pool reload failed, serving stale words",
				slog.String("source", p.source.String()),
				slog.Any("error", err),
			)
			return words, nil
		}
		return nil, err
	}
	words, _ = p.snapshot()
	return words, nil
}

func (p *Pool) snapshot() ([]string, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if !p.loaded {
		return nil, false
	}
	fresh := p.refresh <= 0 || clock.Since(p.clock, p.loadedAt) < p.refresh
	return p.words, fresh
}

// IsOmnigram reports whether word has at least Letters letters, exactly Letters distinct ones, and an 's'
func IsOmnigram(word string) bool {
	word = normalise(word)
	if utf8.RuneCountInString(word) < Letters {
		return false
	}
	distinct := make(map[rune]struct{}, Letters)
	for _, r := range word {
		distinct[r] = struct{}{}
	}
	return len(distinct) == Letters && strings.ContainsRune(word, RequiredLetter)
}

// IsValidWord reports whether every letter of word is available in omnigram,
// counting repeats. Comparison is case-insensitive.
func IsValidWord(word, omnigram string) bool {
	available := make(map[rune]int)
	for _, r := range strings.ToLower(omnigram) {
		available[r]++
	}
	for _, r := range strings.ToLower(word) {
		available[r]--
		if available[r] < 0 {
			return false
		}
	}
	return true
}

func normalise(word string) string {
	return strings.ToLower(strings.TrimSpace(word))
}
