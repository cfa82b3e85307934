package text

import (
	"reflect"
	"testing"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"Aspirina", "aspirina"},
		{"  IBUPROFENO   600MG ", "ibuprofeno 600mg"},
		{"acción farmacológica", "accion farmacologica"},
		{"¿Para qué sirve?", "¿para que sirve?"},
		{"Contraindicación\ty\nadvertencias", "contraindicacion y advertencias"},
	}
	for _, tt := range tests {
		if got := Normalize(tt.in); got != tt.want {
			t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{"Ácido Acetilsalicílico 100 mg", "  múltiples   ESPACIOS  ", "ñandú"}
	for _, in := range inputs {
		once := Normalize(in)
		if twice := Normalize(once); twice != once {
			t.Errorf("Normalize not idempotent for %q: %q != %q", in, once, twice)
		}
	}
}

func TestTokens(t *testing.T) {
	got := Tokens("  Para qué SIRVE la Aspirina ")
	want := []string{"para", "que", "sirve", "la", "aspirina"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Tokens = %v, want %v", got, want)
	}
	if Tokens("   ") != nil {
		t.Error("Tokens of blank input should be nil")
	}
}

func TestContainsWord(t *testing.T) {
	tests := []struct {
		s, needle string
		want      bool
	}{
		{"¿sirve la aspirina?", "aspirina", true},
		{"sirve la Aspirina 100", "aspirina", true},
		{"efectos del naproxeno", "napro", false},
		{"ácido acetilsalicílico ayuda", "acido acetilsalicilico", true},
		{"paracetamoly otras", "paracetamol", false},
		{"", "aspirina", false},
		{"aspirina", "", false},
	}
	for _, tt := range tests {
		if got := ContainsWord(tt.s, tt.needle); got != tt.want {
			t.Errorf("ContainsWord(%q, %q) = %v, want %v", tt.s, tt.needle, got, tt.want)
		}
	}
}
