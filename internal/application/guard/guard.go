// Package guard screens incoming queries for crisis and emergency signals
// before any retrieval runs. A guarded query is answered with a referral
// reply and never reaches the monograph pipeline.
package guard

import (
	"regexp"

	"github.com/mediclic/vademecum-ai/internal/domain/text"
)

// Rule identifies which screen fired.
type Rule string

const (
	RuleCrisis    Rule = "crisis"    // self-harm or suicide signals
	RuleEmergency Rule = "emergency" // catastrophic symptom signals
	RuleOverdose  Rule = "overdose"  // ingestion beyond prescribed dose
)

// CTA is one actionable contact offered with a guarded reply.
type CTA struct {
	Label string `json:"label"`
	Href  string `json:"href"`
}

// Verdict is the outcome of screening one query.
type Verdict struct {
	Blocked bool
	Rule    Rule
	Reply   string
	CTAs    []CTA
}

var crisisPatterns = []*regexp.Regexp{
	regexp.MustCompile(`\bsuicid`),
	regexp.MustCompile(`\bquitarme la vida\b`),
	regexp.MustCompile(`\bno quiero (vivir|seguir viviendo)\b`),
	regexp.MustCompile(`\bhacerme dano\b`),
	regexp.MustCompile(`\bterminar con todo\b`),
}

var emergencyPatterns = []*regexp.Regexp{
	regexp.MustCompile(`\bdolor (en el )?pecho\b`),
	regexp.MustCompile(`\bno puedo respirar\b`),
	regexp.MustCompile(`\bdificultad para respirar\b`),
	regexp.MustCompile(`\bperdida de conciencia\b`),
	regexp.MustCompile(`\bdesmay(o|ada|ado)\b`),
	regexp.MustCompile(`\bconvulsion`),
	regexp.MustCompile(`\bsangrado (abundante|que no para)\b`),
	regexp.MustCompile(`\b(cara|brazo|boca) (dormida|dormido|caida|caido)\b`),
}

var overdosePatterns = []*regexp.Regexp{
	regexp.MustCompile(`\btom(e|o) (muchas|demasiadas|varias) (pastillas|capsulas|dosis)\b`),
	regexp.MustCompile(`\bsobredosis\b`),
	regexp.MustCompile(`\btom(e|o) (toda|todo) (la caja|el frasco)\b`),
	regexp.MustCompile(`\bme pase de (la )?dosis\b`),
}

const (
	crisisReply = "Siento mucho que estés pasando por esto. No estás sola ni solo: " +
		"en Chile puedes llamar gratis a la línea de prevención del suicidio " +
		"marcando *4141, disponible todos los días. Si el riesgo es inmediato, " +
		"llama al 131 o acude al servicio de urgencia más cercano."

	emergencyReply = "Lo que describes puede ser una urgencia médica. No esperes: " +
		"llama ahora al 131 (SAMU) o acude de inmediato al servicio de urgencia " +
		"más cercano."

	overdoseReply = "Si tomaste más medicamento del indicado, es importante actuar " +
		"rápido. Llama al 131 (SAMU) o consulta de urgencia de inmediato, y ten a " +
		"mano el envase del medicamento."
)

// Screen evaluates the query against every guard rule. Crisis outranks
// emergency, which outranks overdose.
func Screen(query string) Verdict {
	n := text.Normalize(query)
	if n == "" {
		return Verdict{}
	}

	if matchAny(n, crisisPatterns) {
		return Verdict{
			Blocked: true,
			Rule:    RuleCrisis,
			Reply:   crisisReply,
			CTAs: []CTA{
				{Label: "Llamar línea *4141", Href: "tel:*4141"},
				{Label: "Llamar SAMU 131", Href: "tel:131"},
			},
		}
	}
	if matchAny(n, emergencyPatterns) {
		return Verdict{
			Blocked: true,
			Rule:    RuleEmergency,
			Reply:   emergencyReply,
			CTAs:    []CTA{{Label: "Llamar SAMU 131", Href: "tel:131"}},
		}
	}
	if matchAny(n, overdosePatterns) {
		return Verdict{
			Blocked: true,
			Rule:    RuleOverdose,
			Reply:   overdoseReply,
			CTAs:    []CTA{{Label: "Llamar SAMU 131", Href: "tel:131"}},
		}
	}
	return Verdict{}
}

func matchAny(n string, patterns []*regexp.Regexp) bool {
	for _, re := range patterns {
		if re.MatchString(n) {
			return true
		}
	}
	return false
}
