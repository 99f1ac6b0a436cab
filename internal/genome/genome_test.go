package genome

import (
	"testing"

	"go-cantus-firmus/internal/mode"
)

func TestCFAllele_Fix(t *testing.T) {
	tests := []struct {
		in   CFAllele
		want CFAllele
	}{
		{-1, 0}, {0, 0}, {7, 7}, {8, 7}, {100, 7},
	}
	for _, tt := range tests {
		if got := tt.in.Fix(); got != tt.want {
			t.Errorf("Fix(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestCPBlock_Fix_ClampsOutOfRangeSlots(t *testing.T) {
	b := CPBlock{99, -1, 0, 0, 0, 0, 0, 0, 0, 0, 0}
	fixed := b.Fix()
	if fixed[0] != 3 {
		t.Errorf("slot 0 = %d, want clamped to 3", fixed[0])
	}
	if fixed[1] != 0 {
		t.Errorf("slot 1 = %d, want clamped to 0", fixed[1])
	}
}

func TestCPBlock_Expand_WholeNote(t *testing.T) {
	// slot 0 = 3 (log2 -> duration 8), slot 1 = pitch 0: a single whole note.
	b := CPBlock{3, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0}
	tones, err := b.Expand()
	if err != nil {
		t.Fatal(err)
	}
	if len(tones) != 1 || tones[0].Duration != 8 {
		t.Fatalf("expected a single 8-eighth tone, got %+v", tones)
	}
}

func TestCPBlock_Expand_FourQuarterNotes(t *testing.T) {
	// heavy=1/4 (log2=1), light1=1/4, halfheavy=1/4, light2=1/4.
	b := CPBlock{1, 0, 1, 1, 0, 1, 2, 0, 1, 3, 0}
	tones, err := b.Expand()
	if err != nil {
		t.Fatal(err)
	}
	sum := 0
	for _, tone := range tones {
		sum += tone.Duration
	}
	if sum != 8 {
		t.Errorf("expanded durations sum to %d, want 8", sum)
	}
}

func TestPhenotype_FixesOpeningAndClosingBars(t *testing.T) {
	g := mode.Dorian
	length := 5
	genes := Genome{
		CF: make([]CFAllele, length-3),
		CP: make([]CPBlock, length-2),
	}
	tune, err := Phenotype(g, length, genes, 8)
	if err != nil {
		t.Fatal(err)
	}
	cf := tune.Voices[0]
	if cf.Bars[0].Objects[0].Halftone != g.Finalis() {
		t.Error("first CF bar must be the finalis")
	}
	if cf.Bars[length-2].Objects[0].Halftone != g.Step2() {
		t.Error("second-to-last CF bar must be step2")
	}
	if cf.Bars[length-1].Objects[0].Halftone != g.Finalis() {
		t.Error("last CF bar must be the finalis")
	}

	cp := tune.Voices[1]
	subsemitonium, _ := g.Subsemitonium()
	if cp.Bars[length-2].Objects[0].Halftone != subsemitonium {
		t.Error("second-to-last CP bar must be the subsemitonium")
	}
	if cp.Bars[length-1].Objects[0].Halftone != g.At(7) {
		t.Error("last CP bar must be scale degree 7")
	}
}

func TestPhenotype_RejectsWrongAlleleCounts(t *testing.T) {
	g := mode.Dorian
	_, err := Phenotype(g, 5, Genome{CF: make([]CFAllele, 1), CP: make([]CPBlock, 3)}, 8)
	if err == nil {
		t.Fatal("expected an error for a mismatched CF allele count")
	}
}
