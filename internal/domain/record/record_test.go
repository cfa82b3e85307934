package record

import (
	"testing"

	"github.com/mediclic/vademecum-ai/internal/domain/section"
)

func payload(kv map[string]interface{}) map[string]interface{} { return kv }

func TestDecodeModernFields(t *testing.T) {
	r := Decode("doc-1", payload(map[string]interface{}{
		"name_es":         "Aspirina",
		"generic_name_es": "Ácido Acetilsalicílico",
		"section":         "indicaciones",
		"text_es":         "Alivio del dolor leve a moderado.",
	}))

	if r.ID != "doc-1" {
		t.Errorf("id = %q", r.ID)
	}
	if r.Section != section.Indications {
		t.Errorf("section = %s", r.Section)
	}
	if r.DisplayName() != "Aspirina" {
		t.Errorf("display name = %q", r.DisplayName())
	}
	if r.Text != "Alivio del dolor leve a moderado." {
		t.Errorf("text = %q", r.Text)
	}
}

func TestDecodeLegacyAliases(t *testing.T) {
	r := Decode("doc-2", payload(map[string]interface{}{
		"nombre":           "Ibuprofeno 600",
		"nombre_generico":  "ibuprofeno",
		"seccion":          "efectos_secundarios",
		"contenido":        "Puede causar molestias gástricas.",
	}))

	if r.NameES != "Ibuprofeno 600" {
		t.Errorf("legacy nombre not picked up: %q", r.NameES)
	}
	if r.GenericNameES != "ibuprofeno" {
		t.Errorf("legacy nombre_generico not picked up: %q", r.GenericNameES)
	}
	if r.Section != section.SideEffects {
		t.Errorf("legacy seccion not canonicalized: %s", r.Section)
	}
	if r.Text != "Puede causar molestias gástricas." {
		t.Errorf("legacy contenido not resolved: %q", r.Text)
	}
}

func TestDrugKeyStability(t *testing.T) {
	a := Decode("1", payload(map[string]interface{}{
		"name_es": "Aspirina", "generic_name_es": "Ácido Acetilsalicílico",
	}))
	b := Decode("2", payload(map[string]interface{}{
		"name_es": "ASPIRINA  ", "generic_name_es": "acido acetilsalicilico",
	}))
	if a.DrugKey() != b.DrugKey() {
		t.Errorf("keys differ for same drug: %q vs %q", a.DrugKey(), b.DrugKey())
	}

	c := Decode("3", payload(map[string]interface{}{"name_es": "Aspirina Forte"}))
	if a.DrugKey() == c.DrugKey() {
		t.Error("different products must not share a key")
	}
}

func TestSectionTextStrict(t *testing.T) {
	r := Decode("1", payload(map[string]interface{}{
		"name_es": "Aspirina",
		"section": "indicaciones",
		"text_es": "Alivio del dolor.",
	}))

	if got := r.SectionText(section.Indications); got != "Alivio del dolor." {
		t.Errorf("own-section text = %q", got)
	}
	// A record holding indications text must not answer for warnings.
	if got := r.SectionText(section.Warnings); got != "" {
		t.Errorf("cross-section leak: %q", got)
	}
}

func TestSectionTextFieldAlias(t *testing.T) {
	r := Decode("1", payload(map[string]interface{}{
		"name_es":       "Aspirina",
		"advertencias":  "No usar en menores con cuadros virales.",
	}))
	if got := r.SectionText(section.Warnings); got != "No usar en menores con cuadros virales." {
		t.Errorf("aliased field not resolved: %q", got)
	}
}

func TestAnyTextOrder(t *testing.T) {
	r := Decode("1", payload(map[string]interface{}{
		"name_es":      "Aspirina",
		"dosis":        "500 mg cada 8 horas.",
		"indicaciones": "Dolor leve.",
	}))
	// AnyText prefers the generic text keys, then sections in display order.
	if got := r.AnyText(); got != "Dolor leve." {
		t.Errorf("AnyText = %q", got)
	}

	empty := Decode("2", payload(map[string]interface{}{"name_es": "Aspirina"}))
	if empty.HasText() {
		t.Error("record without prose reports HasText")
	}
}

func TestNameBlob(t *testing.T) {
	r := Decode("1", payload(map[string]interface{}{
		"name_es": "Aspirina", "generic_name": "acetylsalicylic acid",
	}))
	if got := r.NameBlob(); got != "Aspirina acetylsalicylic acid" {
		t.Errorf("NameBlob = %q", got)
	}
}
