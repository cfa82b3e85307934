package guard

import "testing"

func TestScreenCrisis(t *testing.T) {
	queries := []string{
		"he pensado en suicidarme",
		"quiero quitarme la vida",
		"no quiero seguir viviendo",
	}
	for _, q := range queries {
		v := Screen(q)
		if !v.Blocked || v.Rule != RuleCrisis {
			t.Errorf("Screen(%q) = %+v, want crisis block", q, v)
		}
		if len(v.CTAs) == 0 || v.CTAs[0].Href != "tel:*4141" {
			t.Errorf("crisis reply must lead with the *4141 line, got %+v", v.CTAs)
		}
	}
}

func TestScreenEmergency(t *testing.T) {
	queries := []string{
		"tengo un fuerte dolor en el pecho y tomo aspirina",
		"mi papá perdió el conocimiento, perdida de conciencia",
		"no puedo respirar bien desde hace una hora",
	}
	for _, q := range queries {
		v := Screen(q)
		if !v.Blocked || v.Rule != RuleEmergency {
			t.Errorf("Screen(%q) = %+v, want emergency block", q, v)
		}
	}
}

func TestScreenOverdose(t *testing.T) {
	v := Screen("tomé muchas pastillas de paracetamol, ¿qué hago?")
	if !v.Blocked || v.Rule != RuleOverdose {
		t.Errorf("got %+v, want overdose block", v)
	}
}

func TestCrisisOutranksEmergency(t *testing.T) {
	v := Screen("no quiero vivir y me duele el pecho, dolor en el pecho")
	if v.Rule != RuleCrisis {
		t.Errorf("crisis must outrank emergency, got %s", v.Rule)
	}
}

func TestScreenPassesOrdinaryQueries(t *testing.T) {
	queries := []string{
		"¿para qué sirve la aspirina?",
		"contraindicaciones del ibuprofeno",
		"¿la dosis máxima diaria de paracetamol?",
		"",
	}
	for _, q := range queries {
		if v := Screen(q); v.Blocked {
			t.Errorf("Screen(%q) blocked an ordinary query: %+v", q, v)
		}
	}
}
