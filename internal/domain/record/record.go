// Package record models one stored vademecum fragment and the lenient
// decoding rules required by the legacy dumps the index was built from,
// where field names drifted across ingestion generations.
package record

import (
	"fmt"
	"strings"

	"github.com/mediclic/vademecum-ai/internal/domain/section"
	"github.com/mediclic/vademecum-ai/internal/domain/text"
)

// Record is one indexed fragment of a drug monograph: a drug identity, a
// section label and the fragment text, plus whatever legacy fields the dump
// carried.
type Record struct {
	ID string

	// Name fields in decreasing preference. Spanish commercial name first,
	// then Spanish generic, then the English pair.
	NameES        string
	GenericNameES string
	Name          string
	GenericName   string

	// SectionLabel is the raw stored label; Section is its canonical form
	// when recognised.
	SectionLabel string
	Section      section.Section

	// Text is the fragment prose resolved at decode time from the legacy
	// text fields.
	Text string

	// Payload keeps the full raw document for field-alias lookups.
	Payload map[string]interface{}
}

// Decode builds a Record from a raw index document. Missing fields are
// tolerated; a record with no usable name at all is still returned (callers
// filter). The id parameter is the index-assigned document id.
func Decode(id string, payload map[string]interface{}) Record {
	r := Record{
		ID:            id,
		NameES:        str(payload, "name_es", "nombre_es", "nombre"),
		GenericNameES: str(payload, "generic_name_es", "nombre_generico_es", "nombre_generico"),
		Name:          str(payload, "name", "nombre_comercial"),
		GenericName:   str(payload, "generic_name", "generico"),
		SectionLabel:  str(payload, "section", "seccion", "section_label"),
		Payload:       payload,
	}
	if s, ok := section.Canonicalize(r.SectionLabel); ok {
		r.Section = s
	}
	r.Text = str(payload, "text_es", "text", "contenido", "content")
	return r
}

// DisplayName returns the best human-facing name for the record, preferring
// the Spanish commercial name.
func (r Record) DisplayName() string {
	for _, n := range []string{r.NameES, r.GenericNameES, r.Name, r.GenericName} {
		if strings.TrimSpace(n) != "" {
			return strings.TrimSpace(n)
		}
	}
	return ""
}

// DrugKey returns the identity key used to group fragments of the same drug:
// the normalized preferred name joined with the normalized generic name.
// Records of the same drug ingested with different casing or accents share
// one key.
func (r Record) DrugKey() string {
	primary := text.Normalize(firstNonEmpty(r.NameES, r.Name))
	generic := text.Normalize(firstNonEmpty(r.GenericNameES, r.GenericName))
	if primary == "" && generic == "" {
		return text.Normalize(r.DisplayName())
	}
	return fmt.Sprintf("%s|%s", primary, generic)
}

// SectionText returns the fragment text for exactly the requested section:
// the decoded Text when the record's own section matches, otherwise the
// first populated payload field aliased to that section. Empty when the
// record holds nothing for it. This strictness keeps fragments from one
// section out of answers about another.
func (r Record) SectionText(s section.Section) string {
	if r.Section == s && strings.TrimSpace(r.Text) != "" {
		return strings.TrimSpace(r.Text)
	}
	for _, key := range section.FieldAliases(s) {
		if v := str(r.Payload, key); strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

// AnyText returns the first populated prose field of the record regardless
// of section, used only by the last fallback tier where answering with
// adjacent material beats answering nothing.
func (r Record) AnyText() string {
	if strings.TrimSpace(r.Text) != "" {
		return strings.TrimSpace(r.Text)
	}
	for _, key := range section.AnyTextKeys {
		if v := str(r.Payload, key); strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

// NameBlob concatenates every name field for fuzzy comparison against
// queries.
func (r Record) NameBlob() string {
	parts := make([]string, 0, 4)
	for _, n := range []string{r.NameES, r.GenericNameES, r.Name, r.GenericName} {
		if strings.TrimSpace(n) != "" {
			parts = append(parts, n)
		}
	}
	return strings.Join(parts, " ")
}

// HasText reports whether the record carries any prose at all.
func (r Record) HasText() bool { return r.AnyText() != "" }

func str(payload map[string]interface{}, keys ...string) string {
	for _, k := range keys {
		if v, ok := payload[k]; ok {
			if s, ok := v.(string); ok && s != "" {
				return s
			}
		}
	}
	return ""
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
