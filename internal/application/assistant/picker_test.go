package assistant

import (
	"strings"
	"testing"

	"github.com/mediclic/vademecum-ai/internal/domain/record"
	"github.com/mediclic/vademecum-ai/internal/domain/section"
)

func TestGroupByDrugPreservesFirstSeenOrder(t *testing.T) {
	recs := []record.Record{
		doc("1", map[string]interface{}{"name_es": "Aspirina", "section": "indicaciones", "text_es": "a"}),
		doc("2", map[string]interface{}{"name_es": "Ibuprofeno", "section": "dosis", "text_es": "b"}),
		doc("3", map[string]interface{}{"name_es": "ASPIRINA", "section": "advertencias", "text_es": "c"}),
	}
	groups := groupByDrug(recs)
	if len(groups) != 2 {
		t.Fatalf("groups = %d, want 2", len(groups))
	}
	if len(groups[0].records) != 2 {
		t.Errorf("aspirina fragments = %d, want 2", len(groups[0].records))
	}
	if groups[1].records[0].DisplayName() != "Ibuprofeno" {
		t.Errorf("order not preserved: %+v", groups[1].records[0])
	}
}

func TestPickBestGroupSelectsMaximumScore(t *testing.T) {
	groups := groupByDrug([]record.Record{
		doc("1", map[string]interface{}{"name_es": "Ibuprofeno", "section": "indicaciones", "text_es": "x"}),
		doc("2", map[string]interface{}{"name_es": "Ibuprofeno Forte", "section": "indicaciones", "text_es": "y"}),
	})
	g, ok := pickBestGroup(groups, "ibuprofeno")
	if !ok || g.records[0].DisplayName() != "Ibuprofeno" {
		t.Errorf("best-scoring group lost: %+v ok=%v", g, ok)
	}

	// A sole group answers even when its names score poorly against the
	// hint, as when a drug is stored only under its generic name.
	generic := groupByDrug([]record.Record{
		doc("3", map[string]interface{}{"name_es": "Ácido Acetilsalicílico", "section": "indicaciones", "text_es": "z"}),
	})
	g, ok = pickBestGroup(generic, "aspirina")
	if !ok || len(g.records) != 1 {
		t.Errorf("sole generic-name group rejected: %+v ok=%v", g, ok)
	}
}

func TestPickBestRecordPrefersRequestedSectionThenText(t *testing.T) {
	g := groupByDrug([]record.Record{
		doc("1", map[string]interface{}{"name_es": "Aspirina", "section": "indicaciones", "text_es": "ind"}),
		doc("2", map[string]interface{}{"name_es": "Aspirina", "section": "dosis", "text_es": "dos"}),
		doc("3", map[string]interface{}{"name_es": "Aspirina", "section": "advertencias"}),
	})[0]

	rec, ok := pickBestRecord(g, section.Dosage)
	if !ok || rec.Section != section.Dosage {
		t.Errorf("preferred section lost: %+v", rec)
	}

	// Without a match on the preferred section, default order wins among
	// records that carry text.
	rec, _ = pickBestRecord(g, section.Mechanism)
	if rec.Section != section.Indications {
		t.Errorf("default order not applied: %s", rec.Section)
	}

	// A textless record loses to any record with prose.
	rec, _ = pickBestRecord(g, section.Warnings)
	if rec.Section == section.Warnings {
		t.Error("picked a textless record over prose")
	}
}

func TestComposeSection(t *testing.T) {
	out := composeSection("Aspirina", section.Indications, "alivio del dolor")
	if !strings.Contains(out, "Aspirina") || !strings.Contains(out, "alivio del dolor.") {
		t.Errorf("bad composition: %q", out)
	}
	if !strings.Contains(out, "referencial") {
		t.Error("disclaimer missing")
	}

	dos := composeSection("Aspirina", section.Dosage, "500 mg cada 8 horas.")
	if !strings.Contains(dos, "la define tu médico") {
		t.Errorf("dosage caution missing: %q", dos)
	}
}

func TestComposeSubstitutedDiscloses(t *testing.T) {
	out := composeSubstituted("Aspirina", section.Contraindications, section.Warnings, "no usar en niños")
	if !strings.Contains(out, "contraindicaciones") || !strings.Contains(out, "advertencias") {
		t.Errorf("substitution not disclosed: %q", out)
	}
}
