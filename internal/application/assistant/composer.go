package assistant

import (
	"fmt"
	"strings"

	"github.com/mediclic/vademecum-ai/internal/domain/section"
)

// Deterministic answer templates. These are the source of truth for every
// reply; the optional rewriter only smooths their wording and any rewrite
// failure ships these texts untouched.

const disclaimer = "Esta información es referencial y no reemplaza la " +
	"indicación de un profesional de salud."

const clarificationReply = "¿Sobre qué medicamento te gustaría saber? " +
	"Dime su nombre y te cuento para qué sirve, sus efectos secundarios, " +
	"contraindicaciones, dosis o interacciones."

var sectionTemplates = map[section.Section]string{
	section.Indications:       "%s se utiliza para lo siguiente: %s",
	section.SideEffects:       "Estos son efectos secundarios descritos para %s: %s",
	section.Contraindications: "Contraindicaciones de %s: %s",
	section.Interactions:      "Interacciones descritas para %s: %s",
	section.Warnings:          "Advertencias para %s: %s",
	section.Dosage:            "Sobre la dosis de %s: %s",
	section.Mechanism:         "Así actúa %s: %s",
}

// composeSection renders the template answer for a drug and section.
func composeSection(drug string, sec section.Section, fragment string) string {
	tpl, ok := sectionTemplates[sec]
	if !ok {
		return composeAny(drug, fragment)
	}
	answer := fmt.Sprintf(tpl, drug, tidyFragment(fragment))
	if sec == section.Dosage {
		answer += " Recuerda que la dosis exacta siempre la define tu médico."
	}
	return answer + " " + disclaimer
}

// composeSubstituted renders an answer served from a substitute section,
// disclosing the substitution so the user never mistakes warnings for formal
// contraindications.
func composeSubstituted(drug string, requested, served section.Section, fragment string) string {
	return fmt.Sprintf(
		"No encontré %s específicas para %s, pero te comparto sus %s: %s %s",
		sectionNoun(requested), drug, sectionNoun(served), tidyFragment(fragment), disclaimer)
}

// composeAny renders the loose fallback answer built from whatever prose the
// record had, labeled as general information.
func composeAny(drug, fragment string) string {
	return fmt.Sprintf("Esto es lo que encontré sobre %s: %s %s",
		drug, tidyFragment(fragment), disclaimer)
}

// composeNoData renders the miss answer for a resolved drug.
func composeNoData(drug string, sec section.Section) string {
	return fmt.Sprintf(
		"No tengo registrada información de %s para %s. ¿Quieres preguntarme "+
			"por otra sección o por otro medicamento?", sectionNoun(sec), drug)
}

func sectionNoun(s section.Section) string {
	switch s {
	case section.Indications:
		return "indicaciones"
	case section.SideEffects:
		return "efectos secundarios"
	case section.Contraindications:
		return "contraindicaciones"
	case section.Interactions:
		return "interacciones"
	case section.Warnings:
		return "advertencias"
	case section.Dosage:
		return "información de dosis"
	case section.Mechanism:
		return "mecanismo de acción"
	default:
		return string(s)
	}
}

// tidyFragment trims the fragment and guarantees terminal punctuation so
// templates never produce double or missing periods.
func tidyFragment(fragment string) string {
	f := strings.TrimSpace(fragment)
	if f == "" {
		return f
	}
	switch f[len(f)-1] {
	case '.', '!', '?', ':':
		return f
	}
	return f + "."
}
