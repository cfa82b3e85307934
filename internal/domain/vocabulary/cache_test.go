package vocabulary

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/mediclic/vademecum-ai/internal/domain/record"
	apperrors "github.com/mediclic/vademecum-ai/pkg/errors"
)

type fixtureScanner struct {
	mu    sync.Mutex
	calls int
	docs  []map[string]interface{}
	fail  error
}

func (f *fixtureScanner) Scan(ctx context.Context, fn func(record.Record) error) error {
	f.mu.Lock()
	f.calls++
	fail := f.fail
	f.mu.Unlock()
	if fail != nil {
		return fail
	}
	for i, d := range f.docs {
		if err := fn(record.Decode(string(rune('a'+i)), d)); err != nil {
			return err
		}
	}
	return nil
}

func fixtureDocs() []map[string]interface{} {
	return []map[string]interface{}{
		{"name_es": "Aspirina", "generic_name_es": "Ácido Acetilsalicílico", "section": "indicaciones"},
		{"name_es": "ASPIRINA", "section": "advertencias"},
		{"name_es": "Aspirina Forte", "section": "dosis"},
		{"name_es": "Ibuprofeno", "generic_name": "ibuprofen", "section": "indicaciones"},
		{"name_es": "Ib", "section": "indicaciones"}, // too short, dropped
	}
}

func TestEnsureBuildsDedupedVocabulary(t *testing.T) {
	c := NewCache(&fixtureScanner{docs: fixtureDocs()}, nil)
	if err := c.Ensure(context.Background()); err != nil {
		t.Fatalf("Ensure: %v", err)
	}

	// aspirina, acido acetilsalicilico, aspirina forte, ibuprofeno,
	// ibuprofen. "ASPIRINA" dedups, "Ib" is dropped.
	if c.Len() != 5 {
		t.Fatalf("Len = %d, want 5", c.Len())
	}

	entries := c.Entries()
	for i := 1; i < len(entries); i++ {
		if len(entries[i-1].Normalized) < len(entries[i].Normalized) {
			t.Fatalf("entries not sorted longest first: %q before %q",
				entries[i-1].Normalized, entries[i].Normalized)
		}
	}

	if d := c.Display("aspirina"); d != "Aspirina" {
		t.Errorf("Display(aspirina) = %q", d)
	}
	if d := c.Display("desconocido"); d != "desconocido" {
		t.Errorf("unknown display = %q", d)
	}
}

func TestEnsureBuildsOnce(t *testing.T) {
	s := &fixtureScanner{docs: fixtureDocs()}
	c := NewCache(s, nil)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = c.Ensure(context.Background())
		}()
	}
	wg.Wait()

	if s.calls != 1 {
		t.Errorf("scanner called %d times, want 1", s.calls)
	}
}

func TestEnsureFailureAllowsRetry(t *testing.T) {
	s := &fixtureScanner{docs: fixtureDocs(), fail: errors.New("connection refused")}
	c := NewCache(s, nil)

	err := c.Ensure(context.Background())
	if !apperrors.IsStoreUnavailable(err) {
		t.Fatalf("expected store unavailable, got %v", err)
	}
	if c.Len() != 0 {
		t.Error("failed build must leave the cache empty")
	}

	s.mu.Lock()
	s.fail = nil
	s.mu.Unlock()
	if err := c.Ensure(context.Background()); err != nil {
		t.Fatalf("retry failed: %v", err)
	}
	if c.Len() == 0 {
		t.Error("retry did not rebuild")
	}
}

func TestInvalidateForcesRebuild(t *testing.T) {
	s := &fixtureScanner{docs: fixtureDocs()}
	c := NewCache(s, nil)
	_ = c.Ensure(context.Background())
	c.Invalidate()
	if c.Len() != 0 {
		t.Error("Invalidate did not clear entries")
	}
	_ = c.Ensure(context.Background())
	if s.calls != 2 {
		t.Errorf("scanner called %d times after invalidate, want 2", s.calls)
	}
}
