package fitness

import (
	"testing"

	"go-cantus-firmus/internal/pitch"
	"go-cantus-firmus/internal/rules"
	"go-cantus-firmus/internal/score"
)

func twoBarTune(cfNames, cpNames []string) *score.Tune {
	tune := &score.Tune{Unit: 4}
	cf := tune.AddVoice("CF")
	cp := tune.AddVoice("CP")
	for _, n := range cfNames {
		bar := cf.AddBar(4)
		_ = bar.Add(&score.Object{Halftone: pitch.MustIntern(n), Duration: 4})
	}
	for _, n := range cpNames {
		bar := cp.AddBar(4)
		_ = bar.Add(&score.Object{Halftone: pitch.MustIntern(n), Duration: 4})
	}
	return tune
}

func TestEvaluate_CleanTuneHasFitnessOne(t *testing.T) {
	tune := twoBarTune([]string{"D", "D"}, []string{"a", "a"})
	battery := &rules.Battery{}
	got := Evaluate(tune, battery)
	if got.Fitness != 1 {
		t.Errorf("fitness = %v, want 1 for an empty battery", got.Fitness)
	}
}

func TestEvaluate_HardRuleMultipliesBadness(t *testing.T) {
	tune := twoBarTune([]string{"D", "D"}, []string{"a", "e"})
	battery := &rules.Battery{
		Harmony: []rules.HarmonyCheck{
			&rules.HarmonyIntervalMax{Desc: "too wide", Maximum: 0, Badness: 2},
		},
	}
	got := Evaluate(tune, battery)
	if got.Badness <= 1 {
		t.Errorf("badness = %v, want > 1 when a hard rule fires every visit", got.Badness)
	}
}

func TestEvaluate_DefaultBatteryHardRuleYieldsFitnessAboveOne(t *testing.T) {
	// Bar 0 opens on a clean unison; bar 1 puts the contrapunctus a third
	// below the cantus firmus, tripping only the voice-crossing rule.
	tune := twoBarTune([]string{"D", "C"}, []string{"D", "A,"})
	got := Evaluate(tune, rules.DefaultBattery())
	if got.Badness <= 1 {
		t.Errorf("badness = %v, want > 1 for a single voice-crossing violation under the shipped default battery", got.Badness)
	}
	if got.Fitness <= 1 {
		t.Errorf("fitness = %v, want > 1 for a single voice-crossing violation under the shipped default battery", got.Fitness)
	}
}

func TestEvaluate_SoftRuleAddsWeightedUgliness(t *testing.T) {
	// Three repeated CP notes: the first repeat arms the history, the
	// second fires it.
	tune := twoBarTune([]string{"D", "D", "D"}, []string{"a", "a", "a"})
	battery := &rules.Battery{
		MelodyCP: []rules.MelodyCheck{
			&rules.MelodyHistory{Desc: "repeat", Inner: &rules.MelodyInterval{Forbidden: []int{0}}, Ugliness: 1},
		},
	}
	got := Evaluate(tune, battery)
	if got.Ugliness <= 1 {
		t.Errorf("ugliness = %v, want > 1 once the repeat history fires", got.Ugliness)
	}
}
