// Package section defines the canonical clinical sections of a vademecum
// entry and the rules that map natural-language queries and legacy labels
// onto them.
package section

import (
	"strings"

	"github.com/mediclic/vademecum-ai/internal/domain/text"
)

// Section identifies one canonical clinical facet of a drug monograph.
type Section string

const (
	Indications       Section = "indications"
	SideEffects       Section = "side_effects"
	Contraindications Section = "contraindications"
	Interactions      Section = "interactions"
	Warnings          Section = "warnings"
	Dosage            Section = "dosage"
	Mechanism         Section = "mechanism"
)

// All lists every canonical section in default display order. The order
// doubles as the tie-break priority when a drug matches in several sections
// and the query names none.
var All = []Section{
	Indications,
	SideEffects,
	Contraindications,
	Interactions,
	Warnings,
	Dosage,
	Mechanism,
}

// DefaultPriority returns the rank of s in the default order; unknown
// sections sort last.
func DefaultPriority(s Section) int {
	for i, sec := range All {
		if sec == s {
			return i
		}
	}
	return len(All)
}

// Label returns the Spanish label stored in the document index for s.
func Label(s Section) string {
	if l, ok := labels[s]; ok {
		return l
	}
	return string(s)
}

var labels = map[Section]string{
	Indications:       "indicaciones",
	SideEffects:       "efectos secundarios",
	Contraindications: "contraindicaciones",
	Interactions:      "interacciones",
	Warnings:          "advertencias",
	Dosage:            "dosis",
	Mechanism:         "mecanismo de accion",
}

// EnglishAliases returns the English labels under which legacy records may
// carry the section, used as extra store passes when the Spanish label
// yields nothing.
func EnglishAliases(s Section) []string {
	return englishAliases[s]
}

var englishAliases = map[Section][]string{
	Indications:       {"indications", "uses"},
	SideEffects:       {"side effects", "adverse effects", "adverse reactions"},
	Contraindications: {"contraindications"},
	Interactions:      {"interactions", "drug interactions"},
	Warnings:          {"warnings", "precautions"},
	Dosage:            {"dosage", "dose", "posology"},
	Mechanism:         {"mechanism of action", "pharmacology"},
}

// FieldAliases lists the record payload keys that may carry the fragment
// text for s, most specific first. Legacy dumps used several generations of
// field names.
func FieldAliases(s Section) []string {
	return fieldAliases[s]
}

var fieldAliases = map[Section][]string{
	Indications:       {"indicaciones", "indications", "uso", "uses"},
	SideEffects:       {"efectos_secundarios", "side_effects", "efectos_adversos", "adverse_effects"},
	Contraindications: {"contraindicaciones", "contraindications"},
	Interactions:      {"interacciones", "interactions"},
	Warnings:          {"advertencias", "warnings", "precauciones", "precautions"},
	Dosage:            {"dosis", "dosage", "posologia", "dose"},
	Mechanism:         {"mecanismo_accion", "mechanism", "mecanismo", "pharmacology"},
}

// AnyTextKeys lists payload keys inspected, in order, when a record must
// contribute whatever prose it has regardless of section.
var AnyTextKeys = []string{
	"text_es", "text", "contenido", "content",
	"indicaciones", "indications",
	"efectos_secundarios", "side_effects",
	"contraindicaciones", "contraindications",
	"advertencias", "warnings",
	"dosis", "dosage",
	"interacciones", "interactions",
	"mecanismo_accion", "mechanism",
}

// Canonicalize maps a stored section label (Spanish, English or a legacy
// variant, any casing or accenting) to its canonical Section. The second
// return is false when the label is unrecognised.
func Canonicalize(label string) (Section, bool) {
	n := text.Normalize(label)
	if n == "" {
		return "", false
	}
	n = strings.ReplaceAll(n, "_", " ")
	if s, ok := canonical[n]; ok {
		return s, true
	}
	return "", false
}

var canonical = map[string]Section{
	"indicaciones": Indications, "indications": Indications,
	"uso": Indications, "usos": Indications, "uses": Indications,

	"efectos secundarios": SideEffects, "side effects": SideEffects,
	"efectos adversos": SideEffects, "adverse effects": SideEffects,
	"adverse reactions": SideEffects, "reacciones adversas": SideEffects,

	"contraindicaciones": Contraindications, "contraindications": Contraindications,

	"interacciones": Interactions, "interactions": Interactions,
	"drug interactions": Interactions,

	"advertencias": Warnings, "warnings": Warnings,
	"precauciones": Warnings, "precautions": Warnings,

	"dosis": Dosage, "dosage": Dosage, "dose": Dosage,
	"posologia": Dosage, "posology": Dosage, "dosificacion": Dosage,

	"mecanismo de accion": Mechanism, "mecanismo accion": Mechanism,
	"mechanism of action": Mechanism, "mechanism": Mechanism,
	"mecanismo": Mechanism, "farmacologia": Mechanism, "pharmacology": Mechanism,
}
