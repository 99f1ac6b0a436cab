package rules

import (
	"testing"

	"go-cantus-firmus/internal/pitch"
	"go-cantus-firmus/internal/score"
)

func obj(name string, dur int) *score.Object {
	if name == "" {
		return &score.Object{Duration: dur}
	}
	return &score.Object{Halftone: pitch.MustIntern(name), Duration: dur}
}

func chain(objs ...*score.Object) *score.Voice {
	tune := &score.Tune{Unit: 4}
	v := tune.AddVoice("V")
	bar := v.AddBar(len(objs) * 4)
	for _, o := range objs {
		_ = bar.Add(o)
	}
	return v
}

func TestMelodyInterval_FiresOnForbidden(t *testing.T) {
	v := chain(obj("C", 4), obj("^F", 4))
	r := &MelodyInterval{Desc: "tritone", Forbidden: []int{6}, Octave: true, Badness: 1}
	objs := v.Objects()
	if got := r.CheckMelody(objs[1]); !got.fired() {
		t.Error("expected tritone leap to fire")
	}
}

func TestMelodyInterval_TiedPredecessorSuppressesRule(t *testing.T) {
	first := obj("C", 4)
	first.Bind = true
	v := chain(first, obj("^F", 4))
	r := &MelodyInterval{Desc: "tritone", Forbidden: []int{6}, Octave: true, Badness: 1}
	objs := v.Objects()
	if got := r.CheckMelody(objs[1]); got.fired() {
		t.Error("tied predecessor must suppress the rule")
	}
}

func TestMelodyHistory_RequiresTwoConsecutiveMatches(t *testing.T) {
	v := chain(obj("C", 4), obj("C", 4), obj("C", 4))
	h := &MelodyHistory{Desc: "repeat", Inner: &MelodyInterval{Forbidden: []int{0}}, Ugliness: 1}
	objs := v.Objects()

	if got := h.CheckMelody(objs[1]); got.fired() {
		t.Error("first repeat must only arm the history, not fire")
	}
	if got := h.CheckMelody(objs[2]); !got.fired() {
		t.Error("second consecutive repeat must fire")
	}
}

func TestMelodyJump_SameDirectionAfterJump(t *testing.T) {
	v := chain(obj("C", 4), obj("c", 4), obj("^c", 4))
	r := &MelodyJump{Limit: 2}
	objs := v.Objects()

	if got := r.CheckMelody(objs[1]); got.fired() {
		t.Error("the jump itself must not fire from idle")
	}
	if got := r.CheckMelody(objs[2]); got.Message != "same-direction movement after jump" {
		t.Errorf("expected same-direction firing, got %+v", got)
	}
}

func TestMelodyJump_TwoJumpsInARow(t *testing.T) {
	v := chain(obj("C", 4), obj("c", 4), obj("c'", 4))
	r := &MelodyJump{Limit: 2}
	objs := v.Objects()
	_ = r.CheckMelody(objs[1])
	if got := r.CheckMelody(objs[2]); got.Message != "jump" {
		t.Errorf("expected base jump firing, got %+v", got)
	}
}

func harmonyPair(cfName, cpName string, dur int) (*score.Object, *score.Object) {
	tune := &score.Tune{Unit: 4}
	cfVoice := tune.AddVoice("CF")
	cpVoice := tune.AddVoice("CP")
	cfBar := cfVoice.AddBar(dur)
	cpBar := cpVoice.AddBar(dur)
	cf := obj(cfName, dur)
	cp := obj(cpName, dur)
	_ = cfBar.Add(cf)
	_ = cpBar.Add(cp)
	return cf, cp
}

func TestHarmonyInterval_ParallelFifthInterval(t *testing.T) {
	cf, cp := harmonyPair("D", "A", 4)
	r := &HarmonyInterval{Desc: "fifth", Forbidden: []int{7}, Badness: 1}
	if got := r.CheckHarmony(cf, cp); !got.fired() {
		t.Error("expected fifth (7 semitones) to match")
	}
}

func TestHarmonyFirstInterval_OnlyFiresAtOpening(t *testing.T) {
	r := &HarmonyFirstInterval{Desc: "opening", Allowed: []int{0, 7, 12}, Badness: 1}
	cf, cp := harmonyPair("D", "E", 4) // major second above, not in {0,7,12}
	if got := r.CheckHarmony(cf, cp); !got.fired() {
		t.Error("disallowed opening interval must fire")
	}
}

func TestHarmonyIntervalMin_VoiceCrossing(t *testing.T) {
	r := &HarmonyIntervalMin{Desc: "crossing", Minimum: 0, Badness: 1}
	cf, cp := harmonyPair("D", "C", 4) // cp below cf
	if got := r.CheckHarmony(cf, cp); !got.fired() {
		t.Error("expected voice crossing to fire")
	}
}

func TestDefaultBattery_HasNineHardHarmonyRules(t *testing.T) {
	b := DefaultBattery()
	hard := 0
	for _, r := range b.Harmony {
		switch v := r.(type) {
		case *HarmonyFirstInterval:
			if v.Badness > 0 {
				hard++
			}
		case *HarmonyIntervalMin:
			if v.Badness > 0 {
				hard++
			}
		case *HarmonyIntervalMax:
			if v.Badness > 0 {
				hard++
			}
		case *HarmonyInterval:
			if v.Badness > 0 {
				hard++
			}
		case *HarmonyHistory:
			if v.Badness > 0 {
				hard++
			}
		case *Jump2:
			if v.Badness > 0 {
				hard++
			}
		case *HarmonyMelodyDirection:
			if v.Badness > 0 {
				hard++
			}
		}
	}
	if hard != 9 {
		t.Errorf("default battery has %d hard harmony rules, want 9", hard)
	}
}

func TestHarmonyHistory_ParallelFifthsFireOnSecondOccurrence(t *testing.T) {
	tune := &score.Tune{Unit: 4}
	cfVoice := tune.AddVoice("CF")
	cpVoice := tune.AddVoice("CP")

	cfBar1 := cfVoice.AddBar(8)
	cpBar1 := cpVoice.AddBar(8)
	cf1 := obj("D", 4)
	cf2 := obj("E", 4)
	cp1 := obj("A", 4)
	cp2 := obj("B", 4)
	_ = cfBar1.Add(cf1)
	_ = cfBar1.Add(cf2)
	_ = cpBar1.Add(cp1)
	_ = cpBar1.Add(cp2)

	inner := &HarmonyInterval{Forbidden: []int{7}, Badness: 1}
	h := &HarmonyHistory{Desc: "parallel fifths", Inner: inner, Badness: 1}

	if got := h.CheckHarmony(cf1, cp1); got.fired() {
		t.Error("first fifth must only arm the history")
	}
	if got := h.CheckHarmony(cf2, cp2); !got.fired() {
		t.Error("second consecutive fifth must fire")
	}
}
