// Package vocabulary maintains the in-memory catalogue of every drug name
// known to the document index. The resolver depends on it for exact and
// fuzzy name extraction, so the cache is built once from a full index scan
// and shared read-only afterwards.
package vocabulary

import (
	"context"
	"sort"
	"sync"

	"github.com/mediclic/vademecum-ai/internal/domain/record"
	"github.com/mediclic/vademecum-ai/internal/domain/text"
	"github.com/mediclic/vademecum-ai/internal/infrastructure/monitoring/logging"
	apperrors "github.com/mediclic/vademecum-ai/pkg/errors"
)

// Scanner streams every record of the document index. Implemented by the
// OpenSearch store; tests supply fixtures.
type Scanner interface {
	Scan(ctx context.Context, fn func(record.Record) error) error
}

// Entry is one vocabulary item: a normalized name and its preferred display
// form.
type Entry struct {
	Normalized string
	Display    string
}

// Cache holds the deduplicated drug vocabulary. Safe for concurrent use;
// Ensure may be called from many request goroutines and performs at most one
// successful build.
type Cache struct {
	scanner Scanner
	logger  logging.Logger

	mu      sync.RWMutex
	built   bool
	entries []Entry          // sorted longest normalized name first
	display map[string]string // normalized -> display
}

// NewCache constructs an empty cache over the given scanner.
func NewCache(scanner Scanner, logger logging.Logger) *Cache {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Cache{
		scanner: scanner,
		logger:  logger.Named("vocabulary"),
		display: make(map[string]string),
	}
}

// Ensure builds the vocabulary if it has not been built yet. Concurrent
// callers serialize on the build; all of them observe the same outcome. A
// failed build leaves the cache unbuilt so a later call can retry.
func (c *Cache) Ensure(ctx context.Context) error {
	c.mu.RLock()
	built := c.built
	c.mu.RUnlock()
	if built {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.built {
		return nil
	}

	display := make(map[string]string)
	err := c.scanner.Scan(ctx, func(r record.Record) error {
		for _, raw := range []string{r.NameES, r.GenericNameES, r.Name, r.GenericName} {
			n := text.Normalize(raw)
			if len(n) < 3 {
				continue
			}
			if _, seen := display[n]; !seen {
				display[n] = preferredDisplay(r, raw)
			}
		}
		return nil
	})
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeStoreUnavailable, "vocabulary build scan failed")
	}

	entries := make([]Entry, 0, len(display))
	for n, d := range display {
		entries = append(entries, Entry{Normalized: n, Display: d})
	}
	// Longest first so that multi-word names win over their own substrings
	// during extraction ("aspirina forte" before "aspirina").
	sort.Slice(entries, func(i, j int) bool {
		if len(entries[i].Normalized) != len(entries[j].Normalized) {
			return len(entries[i].Normalized) > len(entries[j].Normalized)
		}
		return entries[i].Normalized < entries[j].Normalized
	})

	c.entries = entries
	c.display = display
	c.built = true
	c.logger.Info("vocabulary built", logging.Int("entries", len(entries)))
	return nil
}

// preferredDisplay returns the record's display name when the raw value is a
// generic variant, keeping user-facing names consistent across entries of
// one drug.
func preferredDisplay(r record.Record, raw string) string {
	if d := r.DisplayName(); d != "" && text.Normalize(d) == text.Normalize(raw) {
		return d
	}
	return raw
}

// Entries returns the vocabulary sorted longest normalized name first. The
// returned slice is shared; callers must not modify it.
func (c *Cache) Entries() []Entry {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.entries
}

// Display resolves a normalized name to its display form; falls back to the
// input when unknown.
func (c *Cache) Display(normalized string) string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if d, ok := c.display[normalized]; ok {
		return d
	}
	return normalized
}

// Len reports the number of vocabulary entries.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Invalidate discards the built vocabulary so the next Ensure rebuilds it.
// Called after ingestion changes the index.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.built = false
	c.entries = nil
	c.display = make(map[string]string)
}
