// Package rules implements the counterpoint rule battery: a composable
// set of melodic, harmonic, and harmony-melody-direction checks, each
// reporting a (badness, ugliness) pair, plus a History mixin that fires
// only on two consecutive matches. Rules are first-class objects carrying
// their own per-evaluation state, matching
// sergei-shchetnikov-go-cantus-firmus's style of small, single-purpose
// check functions (internal/rules/rules.go, internal/rules/moderules.go)
// generalized from "check a slice of ints" to "check a score.Object
// window".
//
// Cross-checked against original_source/contrapunctus/rules.py for the
// exact family semantics: interval-set membership, the jump state
// machine, and harmony-melody direction comparison.
package rules

import "go-cantus-firmus/internal/score"

// Result is what a check reports for one evaluation. The zero value means
// the check did not fire.
type Result struct {
	Badness  float64
	Ugliness float64
	Message  string
}

func (r Result) fired() bool { return r.Badness != 0 || r.Ugliness != 0 }

// MelodyCheck operates on a single bar object together with its
// predecessor.
type MelodyCheck interface {
	CheckMelody(cur *score.Object) Result
	Reset()
	Describe() string
}

// HarmonyCheck operates on a synchronized (cantus firmus, contrapunctus)
// pair of bar objects.
type HarmonyCheck interface {
	CheckHarmony(cf, cp *score.Object) Result
	Reset()
	Describe() string
}

// interval returns cur.Halftone.Offset - prev.Halftone.Offset. ok is false
// when either side is a pause or absent; melody rules are only defined
// between two sounding tones.
func interval(prev, cur *score.Object) (val int, ok bool) {
	if prev == nil || cur == nil || prev.IsPause() || cur.IsPause() {
		return 0, false
	}
	return cur.Halftone.Offset - prev.Halftone.Offset, true
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

// octaveReduce folds a signed interval into [0, 12).
func octaveReduce(n int) int {
	m := n % 12
	if m < 0 {
		m += 12
	}
	return m
}

func sign(n int) int {
	switch {
	case n > 0:
		return 1
	case n < 0:
		return -1
	default:
		return 0
	}
}

// contains reports whether set holds n.
func contains(set []int, n int) bool {
	for _, v := range set {
		if v == n {
			return true
		}
	}
	return false
}

// Battery groups three rule lists under one configuration: melody rules
// checked against the cantus firmus, melody rules checked against the
// contrapunctus, and harmony rules checked against synchronized
// (cf, cp) pairs.
type Battery struct {
	Name     string
	MelodyCF []MelodyCheck
	MelodyCP []MelodyCheck
	Harmony  []HarmonyCheck
}

// Reset clears per-evaluation state on every history-aware check in the
// battery, ahead of a fresh left-to-right evaluation pass.
func (b *Battery) Reset() {
	for _, c := range b.MelodyCF {
		c.Reset()
	}
	for _, c := range b.MelodyCP {
		c.Reset()
	}
	for _, c := range b.Harmony {
		c.Reset()
	}
}
