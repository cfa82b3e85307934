// Package resolve turns free-text queries into drug identities using the
// vocabulary cache, layered from exact extraction down to a loose guess, and
// recognises referential follow-ups that inherit the previous drug.
package resolve

import (
	"context"
	"regexp"
	"strings"

	"github.com/mediclic/vademecum-ai/internal/domain/match"
	"github.com/mediclic/vademecum-ai/internal/domain/section"
	"github.com/mediclic/vademecum-ai/internal/domain/text"
	"github.com/mediclic/vademecum-ai/internal/domain/vocabulary"
	"github.com/mediclic/vademecum-ai/internal/infrastructure/monitoring/logging"
)

// Source records which tier produced a resolution, surfaced in responses and
// analytics events.
type Source string

const (
	SourceExact    Source = "exact"     // whole-word vocabulary hit
	SourceLongText Source = "long_text" // fuzzy hit inside a long passage
	SourceLoose    Source = "loose"     // loose token guess
	SourceCarry    Source = "carryover" // inherited from the conversation
)

// Resolution is a resolved drug identity.
type Resolution struct {
	Normalized string
	Display    string
	Source     Source
}

const (
	// longTextMinQueryLen gates the fuzzy passage scan; short queries are
	// served by the exact and loose tiers.
	longTextMinQueryLen = 18

	// longTextMaxScan bounds how much of a pasted passage is scanned.
	longTextMaxScan = 5000

	// longTextMinNameLen keeps trivially short names out of the fuzzy
	// passage scan where they would match noise.
	longTextMinNameLen = 6

	// looseMinTokenLen filters query tokens considered by the loose
	// guesser; shorter Spanish tokens are almost always function words.
	looseMinTokenLen = 5

	// looseMaxEntries bounds the vocabulary prefix the loose guesser
	// compares against, keeping worst-case latency flat.
	looseMaxEntries = 8000
)

// Resolver resolves queries against the shared vocabulary.
type Resolver struct {
	vocab  *vocabulary.Cache
	logger logging.Logger
}

// New constructs a Resolver.
func New(vocab *vocabulary.Cache, logger logging.Logger) *Resolver {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Resolver{vocab: vocab, logger: logger.Named("resolver")}
}

// Resolve determines the drug a query is about. Extraction from the query
// text always wins, through the exact, long-text and loose tiers in that
// order; only when no tier named a drug does the conversation carry-over
// apply. The carry-over fires for explicit referential phrasings and also
// for clinically worded queries that name no drug ("contraindicaciones"
// right after asking about one). ok is false when no tier produced an
// identity.
func (r *Resolver) Resolve(ctx context.Context, query, lastDrug string) (Resolution, bool) {
	if res, ok := r.ExtractName(ctx, query, false); ok {
		return res, true
	}
	if res, ok := r.guessLoose(ctx, query); ok {
		return res, true
	}
	if lastDrug != "" && isFollowup(query) {
		n := text.Normalize(lastDrug)
		return Resolution{Normalized: n, Display: r.vocab.Display(n), Source: SourceCarry}, true
	}
	return Resolution{}, false
}

// isFollowup reports whether a query that named no drug should inherit the
// conversation drug: either it phrases the reference explicitly or it asks a
// clinical question, which only makes sense about the previous drug.
func isFollowup(query string) bool {
	if IsReferentialFollowup(query) {
		return true
	}
	if section.HasClinicalIntent(query) {
		return true
	}
	_, explicit := section.Classify(query)
	return explicit
}

// ExtractName finds a vocabulary name written in the query. The exact pass
// scans entries longest first so compound products beat their own prefixes.
// When strictOnly is false and the query is a longer passage, a fuzzy window
// scan additionally recognises lightly misspelled names.
func (r *Resolver) ExtractName(ctx context.Context, query string, strictOnly bool) (Resolution, bool) {
	if err := r.vocab.Ensure(ctx); err != nil {
		r.logger.Warn("vocabulary unavailable, extraction skipped", logging.Err(err))
		return Resolution{}, false
	}

	n := text.Normalize(query)
	if n == "" {
		return Resolution{}, false
	}

	for _, e := range r.vocab.Entries() {
		if text.ContainsWord(n, e.Normalized) {
			return Resolution{Normalized: e.Normalized, Display: e.Display, Source: SourceExact}, true
		}
	}

	if strictOnly || len(n) < longTextMinQueryLen {
		return Resolution{}, false
	}
	if len(n) > longTextMaxScan {
		n = n[:longTextMaxScan]
	}
	for _, e := range r.vocab.Entries() {
		if len(e.Normalized) < longTextMinNameLen {
			continue
		}
		if match.BestWindowRatio(n, e.Normalized) >= match.LongTextAcceptRatio {
			return Resolution{Normalized: e.Normalized, Display: e.Display, Source: SourceLongText}, true
		}
	}
	return Resolution{}, false
}

// stopTokens are query words the loose guesser must never mistake for drug
// names despite passing the length filter.
var stopTokens = map[string]bool{
	"tomar": true, "puedo": true, "sirve": true, "hace": true,
	"tiene": true, "sobre": true, "para": true, "efectos": true,
	"secundarios": true, "contraindicaciones": true, "advertencias": true,
	"dosis": true, "interacciones": true, "medicamento": true,
	"remedio": true, "pastilla": true, "doctor": true, "hola": true,
	"gracias": true, "informacion": true, "quiero": true, "saber": true,
	"cuales": true, "cuanto": true, "donde": true, "embarazo": true,
	"alcohol": true, "mezclar": true, "junto": true, "riesgo": true,
}

// guessLoose is the last resolution tier: it compares each substantive query
// token against a bounded vocabulary prefix, accepting containment either
// way or similarity at the entity threshold. Precision is deliberately
// lower here; the caller surfaces which drug was assumed.
func (r *Resolver) guessLoose(ctx context.Context, query string) (Resolution, bool) {
	if err := r.vocab.Ensure(ctx); err != nil {
		return Resolution{}, false
	}

	entries := r.vocab.Entries()
	if len(entries) > looseMaxEntries {
		entries = entries[:looseMaxEntries]
	}

	bestRatio := 0.0
	var best *vocabulary.Entry
	for _, tok := range text.Tokens(query) {
		tok = strings.Trim(tok, "¿?¡!.,;:()\"'")
		if len(tok) < looseMinTokenLen || stopTokens[tok] {
			continue
		}
		for i := range entries {
			e := &entries[i]
			ratio := match.Ratio(tok, e.Normalized)
			if strings.Contains(e.Normalized, tok) || strings.Contains(tok, e.Normalized) {
				ratio = 1.0
			}
			if ratio >= match.EntityAcceptRatio && ratio > bestRatio {
				bestRatio, best = ratio, e
			}
		}
	}
	if best == nil {
		return Resolution{}, false
	}
	return Resolution{Normalized: best.Normalized, Display: best.Display, Source: SourceLoose}, true
}

// Referential follow-ups: short queries that point back at the previous
// drug instead of naming one ("y sus contraindicaciones", "¿y la dosis?",
// "cuales son sus efectos").
var referentialPatterns = []*regexp.Regexp{
	regexp.MustCompile(`^(y|e) (sus?|las?|los?|el|la|de)\b`),
	regexp.MustCompile(`^(y|e) (cuales?|que|como|cuando|cuanto)\b`),
	regexp.MustCompile(`\b(ese|esa|este|esta|dicho|dicha) (medicamento|remedio|farmaco|producto)\b`),
	regexp.MustCompile(`\b(del|lo) mismo\b`),
	regexp.MustCompile(`^(sus|las|los) \w+`),
	regexp.MustCompile(`^(cuales son sus|cual es su)\b`),
	regexp.MustCompile(`\brespecto (a|al|de)\b`),
	regexp.MustCompile(`\bde es[aeo]\b`),
	regexp.MustCompile(`^es[ao]\b`),
	regexp.MustCompile(`\bdel (anterior|medicamento|remedio)\b`),
}

// IsReferentialFollowup reports whether the query refers back to a
// previously mentioned drug rather than naming one.
func IsReferentialFollowup(query string) bool {
	n := text.Normalize(query)
	n = strings.TrimLeft(n, "¿¡")
	if n == "" {
		return false
	}
	for _, re := range referentialPatterns {
		if re.MatchString(n) {
			return true
		}
	}
	return false
}
