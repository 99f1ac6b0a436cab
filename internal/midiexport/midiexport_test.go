package midiexport

import (
	"os"
	"testing"

	"go-cantus-firmus/internal/pitch"
	"go-cantus-firmus/internal/score"
)

func buildTune(t *testing.T) *score.Tune {
	t.Helper()
	key, err := pitch.NewKey(pitch.MustIntern("D"), "dorian")
	if err != nil {
		t.Fatal(err)
	}
	tune := &score.Tune{Meter: "4/4", Unit: 4, Key: key}
	cf := tune.AddVoice("CF")
	bar := cf.AddBar(4)
	if err := bar.Add(&score.Object{Halftone: pitch.MustIntern("D"), Duration: 4}); err != nil {
		t.Fatal(err)
	}
	cp := tune.AddVoice("CP")
	bar2 := cp.AddBar(4)
	if err := bar2.Add(&score.Object{Halftone: pitch.MustIntern("a"), Duration: 2}); err != nil {
		t.Fatal(err)
	}
	if err := bar2.Add(&score.Object{Duration: 2}); err != nil {
		t.Fatal(err)
	}
	return tune
}

func TestMidiNote_AnchorsMiddleOctaves(t *testing.T) {
	if got := midiNote(0); got != 57 {
		t.Errorf("midiNote(0) = %d, want 57 (A3)", got)
	}
	if got := midiNote(12); got != 69 {
		t.Errorf("midiNote(12) = %d, want 69 (A4)", got)
	}
}

func TestWrite_ProducesNonEmptyFile(t *testing.T) {
	tune := buildTune(t)
	path := t.TempDir() + "/out.mid"
	if err := Write(tune, path, 96); err != nil {
		t.Fatal(err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if info.Size() == 0 {
		t.Error("expected a non-empty MIDI file")
	}
}

func TestWrite_RejectsTuneWithoutUnit(t *testing.T) {
	tune := &score.Tune{}
	tune.AddVoice("CF")
	if err := Write(tune, t.TempDir()+"/out.mid", 96); err == nil {
		t.Fatal("expected an error for a tune with no unit")
	}
}

func TestContinuesTie_DetectsTieChain(t *testing.T) {
	tune := &score.Tune{Unit: 4}
	v := tune.AddVoice("T")
	bar := v.AddBar(4)
	a := &score.Object{Halftone: pitch.MustIntern("c"), Duration: 2, Bind: true}
	b := &score.Object{Halftone: pitch.MustIntern("c"), Duration: 2}
	if err := bar.Add(a); err != nil {
		t.Fatal(err)
	}
	if err := bar.Add(b); err != nil {
		t.Fatal(err)
	}
	if continuesTie(a) {
		t.Error("the first object of a tie chain should not itself continue a tie")
	}
	if !continuesTie(b) {
		t.Error("the second object of a tie chain should continue the tie")
	}
	if !endsInTie(a) {
		t.Error("a should be marked as tying into its successor")
	}
	if endsInTie(b) {
		t.Error("b should end the tie chain")
	}
}
