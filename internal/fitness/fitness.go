// Package fitness implements a walk-and-aggregate evaluator: it resets
// the rule battery's history state, walks synchronized (cantus-firmus,
// contrapunctus) pairs across a tune, and combines every rule's
// (badness, ugliness) into a single fitness score.
//
// Grounded on internal/score's ObjectAtOffset/Overlaps cross-voice
// alignment primitives and internal/rules' Battery, cross-checked
// against original_source/contrapunctus/fitness.py for the accumulator
// semantics.
package fitness

import (
	"go-cantus-firmus/internal/rules"
	"go-cantus-firmus/internal/score"
)

// Evaluation is the result of one full tune walk.
type Evaluation struct {
	Badness  float64
	Ugliness float64
	Fitness  float64
}

// Evaluate walks tune.Voices[0] (cantus firmus) against tune.Voices[1]
// (contrapunctus) in ascending (bar, offset) order.
//
// Both accumulators start at a neutral value of 1 so that a tune with zero
// rule violations yields fitness exactly 1: badness only grows when some
// visit's local rule-badness sum exceeds 1, ugliness only grows by the
// (possibly zero) weighted soft-rule sums added to it.
func Evaluate(tune *score.Tune, battery *rules.Battery) Evaluation {
	battery.Reset()

	badness := 1.0
	ugliness := 1.0

	unit := float64(tune.Unit)
	if unit == 0 {
		unit = 1
	}

	cfVoice := tune.Voices[0]
	cpVoice := tune.Voices[1]

	var lastCF *score.Object
	for _, cpObj := range cpVoice.Objects() {
		cfObj := alignedCF(cfVoice, cpObj)

		if cfObj != nil && cfObj != lastCF {
			b, u := 0.0, 0.0
			for _, r := range battery.MelodyCF {
				res := r.CheckMelody(cfObj)
				b += res.Badness
				u += res.Ugliness
			}
			if b > 1 {
				badness *= b
			}
			ugliness += u
			lastCF = cfObj
		}

		b, u := 0.0, 0.0
		for _, r := range battery.MelodyCP {
			res := r.CheckMelody(cpObj)
			b += res.Badness
			u += res.Ugliness
		}
		for _, r := range battery.Harmony {
			res := r.CheckHarmony(cfObj, cpObj)
			b += res.Badness
			u += res.Ugliness
		}
		if b > 1 {
			badness *= b
		}
		weight := float64(cpObj.Duration*cpObj.Duration) / unit
		ugliness += u * weight
	}

	return Evaluation{Badness: badness, Ugliness: ugliness, Fitness: ugliness * badness}
}

// alignedCF finds, in the cantus firmus, the object whose time range
// contains cpObj's offset, used here to synchronize voices that do not
// share a common rhythmic grid.
func alignedCF(cfVoice *score.Voice, cpObj *score.Object) *score.Object {
	idx := cpObj.Bar.Idx
	if idx < 0 || idx >= len(cfVoice.Bars) {
		return nil
	}
	return cfVoice.Bars[idx].ObjectAtOffset(cpObj.Offset)
}
