package notation

import (
	"strings"
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
	tune := &score.Tune{Meter: "4/4", Unit: 8, Key: key}
	v := tune.AddVoice("T1")
	bar := v.AddBar(8)
	for _, n := range []string{"B,", "c", "d", "g"} {
		if err := bar.Add(&score.Object{Halftone: pitch.MustIntern(n), Duration: 2}); err != nil {
			t.Fatal(err)
		}
	}
	bar2 := v.AddBar(8)
	if err := bar2.Add(&score.Object{Halftone: pitch.MustIntern("f"), Duration: 6}); err != nil {
		t.Fatal(err)
	}
	if err := bar2.Add(&score.Object{Halftone: pitch.MustIntern("e"), Duration: 2}); err != nil {
		t.Fatal(err)
	}
	return tune
}

func TestEmit_ContainsHeaderFields(t *testing.T) {
	tune := buildTune(t)
	out := Emit(tune)
	for _, want := range []string{"X:1", "M:4/4", "L:1/8", "V:T1"} {
		if !strings.Contains(out, want) {
			t.Errorf("emitted notation missing %q:\n%s", want, out)
		}
	}
}

func TestEmit_BodyLineFormat(t *testing.T) {
	tune := buildTune(t)
	out := Emit(tune)
	if !strings.Contains(out, "[V:T1]") {
		t.Errorf("missing voice body line:\n%s", out)
	}
	if !strings.Contains(out, "|") {
		t.Errorf("missing bar terminator:\n%s", out)
	}
}

func TestParse_RoundTripsEmit(t *testing.T) {
	tune := buildTune(t)
	text := Emit(tune)

	reparsed, err := Parse(text)
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	again := Emit(reparsed)
	if text != again {
		t.Errorf("round trip mismatch:\nfirst:  %q\nsecond: %q", text, again)
	}
}

func TestParse_RejectsUnknownField(t *testing.T) {
	_, err := Parse("X:1\nZ:bogus\n")
	if err == nil {
		t.Fatal("expected an error for an unknown header field")
	}
}

func TestParse_HandlesPausesAndDuration(t *testing.T) {
	text := "X:1\nL:1/8\nV:B1\n[V:B1] z8 |z2 f2 g2 a2 |\n"
	tune, err := Parse(text)
	if err != nil {
		t.Fatal(err)
	}
	objs := tune.Voices[0].Objects()
	if !objs[0].IsPause() || objs[0].Duration != 8 {
		t.Errorf("first object = %+v, want an 8-unit pause", objs[0])
	}
	if objs[1].Duration != 2 || !objs[1].IsPause() {
		t.Errorf("second object = %+v, want a 2-unit pause", objs[1])
	}
}

func TestParse_TiedNoteSetsBind(t *testing.T) {
	text := "X:1\nL:1/8\nV:T1\n[V:T1] f6- f2 |\n"
	tune, err := Parse(text)
	if err != nil {
		t.Fatal(err)
	}
	objs := tune.Voices[0].Objects()
	if !objs[0].Bind {
		t.Error("expected the first object to be tied")
	}
}

func TestParse_VoicePropertiesWithQuotedValues(t *testing.T) {
	text := "X:1\nL:1/8\nV:T1 clef=treble name=\"Tenor 1\"\n[V:T1] c4 |\n"
	tune, err := Parse(text)
	if err != nil {
		t.Fatal(err)
	}
	if tune.Voices[0].Props["name"] != "Tenor 1" {
		t.Errorf("name prop = %q, want %q", tune.Voices[0].Props["name"], "Tenor 1")
	}
}
