package rules

// DefaultBattery builds the "default" named rule set. Its harmony list
// carries exactly nine hard (badness > 0) rules, including a
// HarmonyHistory over the perfect fifth (semitone interval 7) so that a
// run of parallel fifths is rejected on its second occurrence.
func DefaultBattery() *Battery {
	fifthHistoryInner := &HarmonyInterval{Desc: "parallel fifth", Forbidden: []int{7}}
	octaveHistoryInner := &HarmonyInterval{Desc: "parallel octave", Forbidden: []int{0}, Octave: true}

	return &Battery{
		Name: "default",
		MelodyCF: []MelodyCheck{
			&MelodyInterval{Desc: "tritone melodic leap", Forbidden: []int{6}, Octave: true, Badness: 10},
			&MelodyJump{Desc: "cantus firmus jump", Limit: 9, JumpBadness: 10, SameDirUgliness: 1},
			&MelodyHistory{
				Desc:     "repeated note twice in a row",
				Inner:    &MelodyInterval{Forbidden: []int{0}},
				Ugliness: 1,
			},
		},
		MelodyCP: []MelodyCheck{
			&MelodyInterval{Desc: "tritone melodic leap", Forbidden: []int{6}, Octave: true, Badness: 10},
			&MelodyInterval{Desc: "seventh melodic leap", Forbidden: []int{10, 11}, Octave: true, Badness: 10},
			&MelodyJump{Desc: "contrapunctus jump", Limit: 9, JumpBadness: 10, SameDirUgliness: 1},
			&MelodyHistory{
				Desc:     "repeated note twice in a row",
				Inner:    &MelodyInterval{Forbidden: []int{0}},
				Ugliness: 1,
			},
		},
		Harmony: []HarmonyCheck{
			// 1: opening must be unison, fifth, or octave above the finalis.
			&HarmonyFirstInterval{Desc: "opening interval", Allowed: []int{0, 7, 12}, Badness: 100},
			// 2: contrapunctus must stay above the cantus firmus.
			&HarmonyIntervalMin{Desc: "voice crossing", Minimum: 0, Badness: 10},
			// 3: cap the vertical spread at an octave and a fifth.
			&HarmonyIntervalMax{Desc: "excessive vertical spread", Maximum: 19, Badness: 10},
			// 4: sustained dissonance (seconds, tritone, sevenths) is forbidden.
			&HarmonyInterval{Desc: "unresolved dissonance", Forbidden: []int{1, 2, 6, 10, 11}, Octave: true, Badness: 10},
			// 5 & 6: parallel perfect consonances, caught on the second occurrence.
			&HarmonyHistory{Desc: "parallel fifths", Inner: fifthHistoryInner, Badness: 9},
			&HarmonyHistory{Desc: "parallel octaves", Inner: octaveHistoryInner, Badness: 9},
			// 7: both voices leaping together is harmonically unstable.
			&Jump2{Desc: "simultaneous leap", Limit: 2, Badness: 10},
			// 8: similar motion into a perfect consonance ("hidden" parallel).
			&HarmonyMelodyDirection{Desc: "hidden parallel", Allowed: []int{0, 7, 12}, Dir: "same", Badness: 9},
			// 9: both voices standing still at once is static voice leading.
			&HarmonyMelodyDirection{Desc: "both voices static", Dir: "zero", Badness: 10},
		},
	}
}

// SpecialBattery builds the "special" named rule set: the same hard
// harmony skeleton as DefaultBattery (parallel-consonance and
// voice-crossing protection must never be optional), but looser melodic
// lists: the repeated-note history rule is dropped for both voices, and
// the jump limit of both voices widens from 9 to 12 semitones, favoring
// freer melodic shapes for exploratory search runs. The tritone and
// seventh leap rules stay hard, as in DefaultBattery.
func SpecialBattery() *Battery {
	b := DefaultBattery()
	b.Name = "special"
	b.MelodyCP = []MelodyCheck{
		&MelodyInterval{Desc: "tritone melodic leap", Forbidden: []int{6}, Octave: true, Badness: 10},
		&MelodyInterval{Desc: "seventh melodic leap", Forbidden: []int{10, 11}, Octave: true, Badness: 10},
		&MelodyJump{Desc: "contrapunctus jump", Limit: 12, JumpBadness: 10, SameDirUgliness: 1},
	}
	b.MelodyCF = []MelodyCheck{
		&MelodyInterval{Desc: "tritone melodic leap", Forbidden: []int{6}, Octave: true, Badness: 10},
		&MelodyJump{Desc: "cantus firmus jump", Limit: 12, JumpBadness: 10, SameDirUgliness: 1},
	}
	return b
}
