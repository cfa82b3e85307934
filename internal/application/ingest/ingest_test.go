package ingest

import (
	"context"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/mediclic/vademecum-ai/internal/domain/record"
	"github.com/mediclic/vademecum-ai/internal/domain/section"
	apperrors "github.com/mediclic/vademecum-ai/pkg/errors"
)

type captureStore struct {
	docs []record.Record
	err  error
}

func (c *captureStore) BulkUpsert(_ context.Context, docs []record.Record) (int, error) {
	if c.err != nil {
		return 0, c.err
	}
	c.docs = append(c.docs, docs...)
	return len(docs), nil
}

const sampleCSV = `name,generic_name,indications,contraindications,form,strength,route
Aspirina,Ácido Acetilsalicílico,Alivio del dolor leve a moderado,Úlcera péptica activa,Comprimido,500 mg,Oral
Ibuprofeno,,Dolor e inflamación,,Cápsula,400 mg,Oral
,,sin nombre no se indexa,,,,
`

func TestIngestCSV(t *testing.T) {
	store := &captureStore{}
	ing := New(store, nil, nil)

	stats, err := ing.IngestCSV(context.Background(), strings.NewReader(sampleCSV))
	if err != nil {
		t.Fatalf("IngestCSV: %v", err)
	}

	if stats.Rows != 3 || stats.Skipped != 1 {
		t.Errorf("stats = %+v", stats)
	}
	// Aspirina: indications + contraindications + dosage. Ibuprofeno:
	// indications + dosage.
	if stats.Fragments != 5 || stats.Indexed != 5 {
		t.Errorf("fragments/indexed = %d/%d, want 5/5", stats.Fragments, stats.Indexed)
	}

	bySection := map[section.Section]int{}
	for _, d := range store.docs {
		bySection[d.Section]++
		if d.DisplayName() == "" {
			t.Errorf("fragment without name: %+v", d)
		}
	}
	if bySection[section.Indications] != 2 || bySection[section.Contraindications] != 1 || bySection[section.Dosage] != 2 {
		t.Errorf("section distribution = %v", bySection)
	}

	for _, d := range store.docs {
		if d.Section == section.Dosage && strings.Contains(d.Text, "500 mg") {
			if !strings.Contains(d.Text, "Comprimido") || !strings.Contains(d.Text, "Oral") {
				t.Errorf("dosage synthesis incomplete: %q", d.Text)
			}
		}
	}
}

func TestIngestDeterministicIDs(t *testing.T) {
	store := &captureStore{}
	ing := New(store, nil, nil)
	_, err := ing.IngestCSV(context.Background(), strings.NewReader(sampleCSV))
	if err != nil {
		t.Fatal(err)
	}

	ids := map[string]bool{}
	for _, d := range store.docs {
		if ids[d.ID] {
			t.Errorf("duplicate fragment id %q", d.ID)
		}
		ids[d.ID] = true
	}
	if !ids["aspirina:contraindications:0"] {
		t.Errorf("expected deterministic id, got %v", ids)
	}
}

func TestIngestRejectsHeaderWithoutName(t *testing.T) {
	ing := New(&captureStore{}, nil, nil)
	_, err := ing.IngestCSV(context.Background(), strings.NewReader("foo,bar\n1,2\n"))
	if !apperrors.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestChunkText(t *testing.T) {
	if got := chunkText("corto", 420); len(got) != 1 || got[0] != "corto" {
		t.Errorf("short text = %v", got)
	}

	sentence := strings.Repeat("Frase de prueba con contenido. ", 40) // ~1240 chars
	chunks := chunkText(strings.TrimSpace(sentence), 420)
	if len(chunks) < 3 {
		t.Fatalf("chunks = %d, want >= 3", len(chunks))
	}
	for _, c := range chunks {
		if utf8.RuneCountInString(c) > 420 {
			t.Errorf("chunk exceeds limit: %d runes", utf8.RuneCountInString(c))
		}
		if strings.TrimSpace(c) == "" {
			t.Error("empty chunk emitted")
		}
	}
	// Sentence-boundary splitting: every chunk ends with a period.
	for _, c := range chunks {
		if !strings.HasSuffix(c, ".") {
			t.Errorf("chunk split mid-sentence: %q", c)
		}
	}

	// A single oversized word falls back to a hard cut.
	word := strings.Repeat("x", 1000)
	hard := chunkText(word, 420)
	if len(hard) != 3 {
		t.Errorf("hard cut chunks = %d, want 3", len(hard))
	}
}
