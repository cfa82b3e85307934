// Package ingest loads vademecum dumps (CSV) into the document index,
// splitting long sections into retrieval-sized fragments.
package ingest

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/mediclic/vademecum-ai/internal/domain/record"
	"github.com/mediclic/vademecum-ai/internal/domain/section"
	"github.com/mediclic/vademecum-ai/internal/domain/text"
	"github.com/mediclic/vademecum-ai/internal/domain/vocabulary"
	"github.com/mediclic/vademecum-ai/internal/infrastructure/monitoring/logging"
	apperrors "github.com/mediclic/vademecum-ai/pkg/errors"
)

// maxFragmentLen is the chunking target. Fragments this size keep template
// answers readable and store matches precise.
const maxFragmentLen = 420

// columnSections maps dump column headers (both header generations) to the
// section their text belongs to.
var columnSections = map[string]section.Section{
	"indications":        section.Indications,
	"indicaciones":       section.Indications,
	"uses":               section.Indications,
	"side_effects":       section.SideEffects,
	"efectos_secundarios": section.SideEffects,
	"contraindications":  section.Contraindications,
	"contraindicaciones": section.Contraindications,
	"interactions":       section.Interactions,
	"interacciones":      section.Interactions,
	"warnings":           section.Warnings,
	"advertencias":       section.Warnings,
	"mechanism":          section.Mechanism,
	"mecanismo_accion":   section.Mechanism,
}

// nameColumns and the dose-form columns are handled apart from the section
// map.
var (
	nameColumns     = []string{"name", "nombre", "name_es", "medicine_name"}
	genericColumns  = []string{"generic_name", "nombre_generico", "generic_name_es"}
	formColumns     = []string{"form", "forma"}
	strengthColumns = []string{"strength", "concentracion"}
	routeColumns    = []string{"route", "via"}
)

// BulkStore is the indexing surface the ingestor needs.
type BulkStore interface {
	BulkUpsert(ctx context.Context, docs []record.Record) (int, error)
}

// Stats summarises one ingestion run.
type Stats struct {
	Rows      int `json:"rows"`
	Fragments int `json:"fragments"`
	Indexed   int `json:"indexed"`
	Skipped   int `json:"skipped"` // rows without a usable name
}

// Ingestor parses dumps and indexes their fragments.
type Ingestor struct {
	store  BulkStore
	vocab  *vocabulary.Cache
	logger logging.Logger
}

// New constructs an Ingestor. vocab may be nil when no cache invalidation is
// wanted (one-shot CLI runs against a fresh process).
func New(store BulkStore, vocab *vocabulary.Cache, logger logging.Logger) *Ingestor {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Ingestor{store: store, vocab: vocab, logger: logger.Named("ingest")}
}

// IngestCSV reads a dump from r and indexes every section fragment. The
// first row must be a header. Returns per-run statistics; the vocabulary is
// invalidated afterwards so the next query sees the new names.
func (i *Ingestor) IngestCSV(ctx context.Context, r io.Reader) (Stats, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err != nil {
		return Stats{}, apperrors.Wrap(err, apperrors.ErrCodeValidation, "read csv header")
	}
	cols := make(map[string]int, len(header))
	for idx, h := range header {
		cols[text.Normalize(strings.ReplaceAll(h, " ", "_"))] = idx
	}
	if _, ok := firstColumn(cols, nameColumns); !ok {
		return Stats{}, apperrors.New(apperrors.ErrCodeValidation, "csv header has no name column")
	}

	var stats Stats
	var docs []record.Record
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return stats, apperrors.Wrapf(err, apperrors.ErrCodeValidation, "read csv row %d", stats.Rows+2)
		}
		stats.Rows++

		name := cell(row, cols, nameColumns)
		if strings.TrimSpace(name) == "" {
			stats.Skipped++
			continue
		}
		generic := cell(row, cols, genericColumns)

		rowDocs := i.rowFragments(name, generic, row, cols)
		stats.Fragments += len(rowDocs)
		docs = append(docs, rowDocs...)
	}

	indexed, err := i.store.BulkUpsert(ctx, docs)
	stats.Indexed = indexed
	if err != nil {
		return stats, err
	}

	if i.vocab != nil {
		i.vocab.Invalidate()
	}
	i.logger.Info("ingestion finished",
		logging.Int("rows", stats.Rows),
		logging.Int("fragments", stats.Fragments),
		logging.Int("indexed", stats.Indexed),
		logging.Int("skipped", stats.Skipped))
	return stats, nil
}

// rowFragments builds the indexable fragments of one dump row: one fragment
// per chunk per populated section column, plus a synthesized dosage fragment
// from the form, strength and route columns.
func (i *Ingestor) rowFragments(name, generic string, row []string, cols map[string]int) []record.Record {
	var docs []record.Record
	emit := func(sec section.Section, body string, part int) {
		payload := map[string]interface{}{
			"name_es": name,
			"section": section.Label(sec),
			"text_es": body,
			"chunk":   part,
		}
		if generic != "" {
			payload["generic_name_es"] = generic
		}
		docs = append(docs, record.Decode(fragmentID(name, sec, part), payload))
	}

	for col, sec := range columnSections {
		idx, ok := cols[col]
		if !ok || idx >= len(row) {
			continue
		}
		body := strings.TrimSpace(row[idx])
		if body == "" {
			continue
		}
		for part, chunk := range chunkText(body, maxFragmentLen) {
			emit(sec, chunk, part)
		}
	}

	if dosage := buildDosage(row, cols); dosage != "" {
		emit(section.Dosage, dosage, 0)
	}
	return docs
}

// buildDosage synthesizes a dosage fragment from the presentation columns,
// since the dumps carry no free-text dosage section.
func buildDosage(row []string, cols map[string]int) string {
	var parts []string
	if v := cell(row, cols, formColumns); v != "" {
		parts = append(parts, fmt.Sprintf("Forma farmacéutica: %s", v))
	}
	if v := cell(row, cols, strengthColumns); v != "" {
		parts = append(parts, fmt.Sprintf("Concentración: %s", v))
	}
	if v := cell(row, cols, routeColumns); v != "" {
		parts = append(parts, fmt.Sprintf("Vía de administración: %s", v))
	}
	if len(parts) == 0 {
		return ""
	}
	return strings.Join(parts, ". ") + "."
}

// fragmentID is deterministic so re-ingesting a dump replaces its fragments
// instead of duplicating them.
func fragmentID(name string, sec section.Section, part int) string {
	slug := strings.ReplaceAll(text.Normalize(name), " ", "-")
	return fmt.Sprintf("%s:%s:%d", slug, sec, part)
}

// chunkText splits body into pieces of at most limit runes, preferring
// paragraph breaks, then sentence ends, then spaces, cutting hard only when
// a single word exceeds the limit.
func chunkText(body string, limit int) []string {
	body = strings.TrimSpace(body)
	if body == "" {
		return nil
	}
	if len([]rune(body)) <= limit {
		return []string{body}
	}

	for _, sep := range []string{"\n\n", "\n", ". ", "; ", " "} {
		left, right, ok := splitNear(body, sep, limit)
		if !ok {
			continue
		}
		out := []string{left}
		return append(out, chunkText(right, limit)...)
	}

	runes := []rune(body)
	return append([]string{string(runes[:limit])}, chunkText(string(runes[limit:]), limit)...)
}

// splitNear splits body at the last occurrence of sep within the first
// limit runes. The separator stays with the left piece except for spaces.
func splitNear(body, sep string, limit int) (string, string, bool) {
	runes := []rune(body)
	window := string(runes[:limit])
	idx := strings.LastIndex(window, sep)
	if idx <= 0 {
		return "", "", false
	}
	cut := idx
	if sep != " " {
		cut += len(sep)
	}
	left := strings.TrimSpace(body[:cut])
	right := strings.TrimSpace(body[cut:])
	if left == "" || right == "" {
		return "", "", false
	}
	return left, right, true
}

func cell(row []string, cols map[string]int, names []string) string {
	if idx, ok := firstColumn(cols, names); ok && idx < len(row) {
		return strings.TrimSpace(row[idx])
	}
	return ""
}

func firstColumn(cols map[string]int, names []string) (int, bool) {
	for _, n := range names {
		if idx, ok := cols[n]; ok {
			return idx, true
		}
	}
	return 0, false
}
