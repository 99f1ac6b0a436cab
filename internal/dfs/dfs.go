// Package dfs implements a two-phase deterministic backtracking driver:
// a cantus-firmus search over scale-degree alleles, and a contrapunctus
// search over genome.CPBlock allele vectors, both using a seeded shuffle
// of the candidate order at each decision point and backtracking on rule
// failure.
//
// Grounded on sergei-shchetnikov-go-cantus-firmus's ownership style for
// building up a Realization bar by bar (internal/music/cantus.go),
// adapted from population search to exhaustive backtracking, and
// cross-checked against original_source/contrapunctus/tune_generator.py
// for the phase split and the last-four-bars feasibility pre-check.
package dfs

import (
	"errors"
	"math/rand"

	"go-cantus-firmus/internal/genome"
	"go-cantus-firmus/internal/mode"
	"go-cantus-firmus/internal/rules"
	"go-cantus-firmus/internal/score"
)

// ErrInfeasible is returned when a search exhausts its space without
// finding a satisfying assignment. Callers print a human-readable
// message and exit 0 in that case.
var ErrInfeasible = errors.New("dfs: search space exhausted")

// Options configures both search phases.
type Options struct {
	Seed int64

	// AllowUgliness relaxes pruning: when false (the default), any
	// non-zero cost (badness or ugliness) aborts a branch; when true,
	// only hard (badness > 0) violations prune.
	AllowUgliness bool

	// CFFeasibility gates the last-four-bars pre-check described below;
	// disabling it (--no-cf-feasibility) trades a search-time guarantee
	// for speed.
	CFFeasibility bool
}

// passes reports whether results, taken together, let a branch survive
// under opt's pruning discipline.
func passes(results []rules.Result, opt Options) bool {
	for _, r := range results {
		if r.Badness > 0 {
			return false
		}
		if !opt.AllowUgliness && r.Ugliness > 0 {
			return false
		}
	}
	return true
}

// SearchCF finds scale-degree alleles for the length-3 middle cantus-
// firmus bars of a tune of the given length, keeping the fixed
// first/last-two convention (finalis, ..., step2, finalis). For each
// newly assigned index, the full prefix is replayed through a freshly
// reset battery so history-aware melody rules (MelodyHistory,
// MelodyJump) see consistent state regardless of how many times this
// index has been backtracked into.
//
// When the last middle index succeeds, and opt.CFFeasibility is set,
// the choice is additionally accepted only if some contrapunctus can
// complete the tail (see FeasibleTail): this guarantees the CP search
// phase will not dead-end against a CF that looked fine in isolation.
func SearchCF(g *mode.Gregorian, length int, battery *rules.Battery, opt Options) ([]int, error) {
	if length < 4 {
		return nil, errors.New("dfs: tune length too short for a searched middle CF bar")
	}
	rng := rand.New(rand.NewSource(opt.Seed))

	tune := &score.Tune{Unit: 1}
	cf := tune.AddVoice("CF")
	for i := 0; i < length; i++ {
		cf.AddBar(1)
	}
	place := func(i, degree int) {
		cf.Bars[i].Objects = nil
		cf.Bars[i].Add(&score.Object{Halftone: g.At(degree), Duration: 1})
	}
	unplace := func(i int) { cf.Bars[i].Objects = nil }

	place(0, 0)
	place(length-2, 1)
	place(length-1, 0)
	defer func() {
		unplace(0)
		unplace(length - 2)
		unplace(length - 1)
	}()

	degrees := make([]int, length)
	degrees[length-2] = 1

	start, end := 1, length-3

	var recurse func(i int) bool
	recurse = func(i int) bool {
		if i > end {
			return true
		}
		order := rng.Perm(genome.CFBound)
		for _, d := range order {
			place(i, d)
			if checkCFPrefix(cf, i, battery, opt) {
				if i != end || !opt.CFFeasibility || FeasibleTail(g, cfTail(cf, length), battery, opt) {
					degrees[i] = d
					if recurse(i + 1) {
						return true
					}
				}
			}
			unplace(i)
		}
		return false
	}

	if !recurse(start) {
		return nil, ErrInfeasible
	}

	degrees[0] = 0
	degrees[length-1] = 0
	return degrees, nil
}

// checkCFPrefix resets battery and replays the cantus firmus from bar 0
// through bar upto, requiring only the object at upto to pass (earlier
// objects were already accepted by earlier recursion steps; replaying
// them just rebuilds history-aware rule state deterministically).
func checkCFPrefix(cf *score.Voice, upto int, battery *rules.Battery, opt Options) bool {
	battery.Reset()
	for i := 0; i <= upto; i++ {
		bar := cf.Bars[i]
		if len(bar.Objects) == 0 {
			continue
		}
		o := bar.Objects[0]
		var results []rules.Result
		for _, r := range battery.MelodyCF {
			results = append(results, r.CheckMelody(o))
		}
		if i == upto && !passes(results, opt) {
			return false
		}
	}
	return true
}

// cfTail returns the objects of the last four cantus-firmus bars, nil
// where a bar is empty (already placed by the time the last middle index
// is being tried).
func cfTail(cf *score.Voice, length int) [4]*score.Object {
	var tail [4]*score.Object
	for k := 0; k < 4; k++ {
		bar := cf.Bars[length-4+k]
		if len(bar.Objects) > 0 {
			tail[k] = bar.Objects[0]
		}
	}
	return tail
}
