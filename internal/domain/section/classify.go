package section

import (
	"github.com/mediclic/vademecum-ai/internal/domain/match"
	"github.com/mediclic/vademecum-ai/internal/domain/text"
)

// sectionCue binds a section to the query phrases that ask for it. Order
// matters: earlier entries win when a query mentions cues for more than one
// section ("contraindicaciones y dosis" resolves to contraindications).
type sectionCue struct {
	section Section
	phrases []string
}

var cues = []sectionCue{
	{Contraindications, []string{
		"contraindicacion", "contraindicaciones", "contraindicado",
		"no debo tomar", "no puedo tomar", "quienes no pueden",
	}},
	{Mechanism, []string{
		"mecanismo", "como actua", "como funciona", "farmacologia",
		"accion farmacologica",
	}},
	{Dosage, []string{
		"dosis", "dosificacion", "posologia", "cuanto tomar",
		"cada cuantas horas", "cuantas veces al dia", "como se toma",
		"como tomar",
	}},
	{SideEffects, []string{
		"efectos secundarios", "efectos adversos", "reacciones adversas",
		"efectos colaterales", "me hace mal", "me hara mal",
		"me puede hacer mal", "me cae mal",
	}},
	{Interactions, []string{
		"interaccion", "interacciones", "mezclar con", "junto con",
		"combinar con", "con alcohol",
	}},
	{Warnings, []string{
		"advertencia", "advertencias", "precaucion", "precauciones",
		"embarazo", "lactancia", "riesgo",
	}},
	{Indications, []string{
		"para que sirve", "para que es", "indicacion", "indicaciones",
		"que es", "que cura", "que trata", "beneficios",
	}},
}

// Classify maps a free-text query to the clinical section it asks about.
// Cue phrases are matched on normalized text, exact substring first, then a
// fuzzy pass that tolerates typos ("contraindicasiones"). The second return
// is false when no cue matched and the caller should fall back to
// Indications only as a last resort.
func Classify(query string) (Section, bool) {
	n := text.Normalize(query)
	if n == "" {
		return Indications, false
	}

	for _, cue := range cues {
		for _, phrase := range cue.phrases {
			if text.ContainsWord(n, phrase) {
				return cue.section, true
			}
		}
	}
	for _, cue := range cues {
		for _, phrase := range cue.phrases {
			if match.BestWindowRatio(n, phrase) >= match.KeywordAcceptRatio {
				return cue.section, true
			}
		}
	}
	return Indications, false
}

// clinicalCues mark a query as seeking drug information even when it also
// reads like a symptom description. A pure care query ("me duele la cabeza")
// carries none of these and is answered with self-care guidance instead of a
// monograph lookup.
var clinicalCues = []string{
	"medicamento", "medicamentos", "remedio", "remedios", "farmaco",
	"pastilla", "pastillas", "comprimido", "capsula", "jarabe", "tableta",
	"dosis", "contraindicacion", "contraindicaciones", "efectos secundarios",
	"interaccion", "interacciones", "para que sirve", "sirve",
	"tomar", "tomo", "receta", "mg",
}

// HasClinicalIntent reports whether the query asks about medication rather
// than describing a symptom or care situation alone.
func HasClinicalIntent(query string) bool {
	n := text.Normalize(query)
	for _, cue := range clinicalCues {
		if text.ContainsWord(n, cue) {
			return true
		}
	}
	return false
}
