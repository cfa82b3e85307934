package assistant

import (
	"regexp"
	"time"

	"github.com/mediclic/vademecum-ai/internal/domain/section"
	"github.com/mediclic/vademecum-ai/internal/domain/text"
)

// Conversational routing: greetings, thanks and goodbyes get a short social
// reply; pure care questions get self-care guidance; pharmacy questions get
// a pointer to locator services. None of these reach retrieval.

var greetingPatterns = []*regexp.Regexp{
	regexp.MustCompile(`^(hola|buenas|buenos dias|buenas tardes|buenas noches|hey|que tal)\b`),
	regexp.MustCompile(`^(hola|buenas)[!.,\s]*$`),
}

var thanksPatterns = []*regexp.Regexp{
	regexp.MustCompile(`\b(gracias|muchas gracias|se agradece|muy amable)\b`),
}

var byePatterns = []*regexp.Regexp{
	regexp.MustCompile(`\b(chao|adios|hasta luego|nos vemos|hasta pronto)\b`),
}

// carePatterns describe symptom or care situations. A query matching one of
// these with no clinical cue at all is a care query, not a monograph lookup.
var carePatterns = []*regexp.Regexp{
	regexp.MustCompile(`\bme duele\b`),
	regexp.MustCompile(`\btengo (fiebre|tos|gripe|resfrio|dolor|nauseas|mareos)\b`),
	regexp.MustCompile(`\bme siento (mal|enfermo|enferma|decaido|decaida)\b`),
	regexp.MustCompile(`\bestoy (resfriado|resfriada|enfermo|enferma)\b`),
	regexp.MustCompile(`\bque hago si\b`),
}

var pharmacyPatterns = []*regexp.Regexp{
	regexp.MustCompile(`\bfarmacia (de turno|cercana|abierta)\b`),
	regexp.MustCompile(`\bdonde (hay|queda|encuentro) una farmacia\b`),
	regexp.MustCompile(`\bfarmacias de turno\b`),
}

const (
	greetingIntro = "Soy el asistente de medicamentos. Puedes preguntarme " +
		"para qué sirve un medicamento, sus efectos secundarios, contraindicaciones, " +
		"dosis o interacciones."

	thanksReply = "¡De nada! Si tienes otra duda sobre un medicamento, aquí estoy."

	byeReply = "¡Hasta pronto! Cuídate, y recuerda consultar a un profesional de " +
		"salud ante cualquier duda importante."

	careReply = "Siento que no te encuentres bien. Para síntomas leves ayuda " +
		"descansar, hidratarse y observar cómo evolucionas. Si el malestar persiste " +
		"más de 48 horas, empeora o se suma fiebre alta, consulta a un profesional " +
		"de salud. Si me dices qué medicamento te interesa, puedo darte su información."

	pharmacyReply = "Para encontrar una farmacia de turno cercana puedes revisar " +
		"el listado oficial de farmacias de turno del Ministerio de Salud o tu " +
		"aplicación de mapas. ¿Te ayudo con información de algún medicamento?"
)

// salutation picks the greeting opener for the local hour.
func salutation(now time.Time) string {
	switch h := now.Hour(); {
	case h < 12:
		return "¡Buenos días!"
	case h < 20:
		return "¡Buenas tardes!"
	default:
		return "¡Buenas noches!"
	}
}

// routeSmalltalk returns a conversational reply and true when the query is
// social or situational rather than a monograph question. A query that
// carries clinical content alongside the pleasantry ("hola, ¿para qué sirve
// la aspirina?") must reach the engine, so every social route is suppressed
// when a clinical cue is present.
func routeSmalltalk(query string, now time.Time) (reply string, outcome string, ok bool) {
	n := text.Normalize(query)
	if n == "" {
		return "", "", false
	}
	if section.HasClinicalIntent(query) {
		return "", "", false
	}

	switch {
	case matchAny(n, greetingPatterns):
		return salutation(now) + " " + greetingIntro, outcomeSmalltalk, true
	case matchAny(n, byePatterns):
		return byeReply, outcomeSmalltalk, true
	case matchAny(n, thanksPatterns):
		return thanksReply, outcomeSmalltalk, true
	case matchAny(n, pharmacyPatterns):
		return pharmacyReply, outcomeSmalltalk, true
	case matchAny(n, carePatterns):
		return careReply, outcomeCare, true
	}
	return "", "", false
}

func matchAny(n string, patterns []*regexp.Regexp) bool {
	for _, re := range patterns {
		if re.MatchString(n) {
			return true
		}
	}
	return false
}
