package dfs

import (
	"math/rand"

	"go-cantus-firmus/internal/genome"
	"go-cantus-firmus/internal/mode"
	"go-cantus-firmus/internal/pitch"
	"go-cantus-firmus/internal/rules"
	"go-cantus-firmus/internal/score"
)

// SearchCP fills the contrapunctus voice against an already-fixed cantus
// firmus: the last two bars are fixed (subsemitonium, scale degree 7,
// matching genome.Phenotype's convention), every other bar is filled by
// backtracking over a
// genome.CPBlock allele vector, slot by slot, in a seeded shuffled
// order, checking melody-CP and harmony rules after every completed bar.
func SearchCP(g *mode.Gregorian, cfDegrees []int, unit int, battery *rules.Battery, opt Options) (*score.Tune, error) {
	length := len(cfDegrees)
	if length < 3 {
		return nil, ErrInfeasible
	}
	rng := rand.New(rand.NewSource(opt.Seed))

	tune := &score.Tune{Meter: "4/4", Unit: unit}
	cf := tune.AddVoice("CF")
	cp := tune.AddVoice("CP")
	for _, d := range cfDegrees {
		bar := cf.AddBar(unit)
		if err := bar.Add(&score.Object{Halftone: g.At(d), Duration: unit}); err != nil {
			return nil, err
		}
	}
	for i := 0; i < length; i++ {
		cp.AddBar(unit)
	}

	subsemitonium, err := g.Subsemitonium()
	if err != nil {
		return nil, err
	}
	scaleDegree7 := g.At(7)

	var recurse func(i int) bool
	recurse = func(i int) bool {
		if i == length {
			return true
		}
		switch i {
		case length - 2:
			return fixedCPBar(cf, cp, i, subsemitonium, unit, battery, opt, func() bool { return recurse(i + 1) })
		case length - 1:
			return fixedCPBar(cf, cp, i, scaleDegree7, unit, battery, opt, func() bool { return recurse(i + 1) })
		default:
			return fillCPBar(g, cf, cp, i, rng, battery, opt, func() bool { return recurse(i + 1) })
		}
	}

	if !recurse(0) {
		return nil, ErrInfeasible
	}
	return tune, nil
}

// fixedCPBar places tone at bar i (one of the two fixed tail bars) and
// calls cont only if the placement passes the rule check; it always
// leaves the bar empty on failure so a caller higher in the recursion
// can try a different earlier choice.
func fixedCPBar(cf, cp *score.Voice, i int, tone *pitch.Halftone, unit int, battery *rules.Battery, opt Options, cont func() bool) bool {
	bar := cp.Bars[i]
	bar.Objects = nil
	if err := bar.Add(&score.Object{Halftone: tone, Duration: unit}); err != nil {
		return false
	}
	if checkCPPrefix(cf, cp, i, battery, opt) && cont() {
		return true
	}
	bar.Objects = nil
	return false
}

// fillCPBar tries every slot assignment of a genome.CPBlock for bar i, in
// a seeded shuffled order per slot, accepting the first one whose
// expansion both passes the rule check and whose continuation (the rest
// of the search) succeeds. Leaves the bar empty if no assignment works.
func fillCPBar(g *mode.Gregorian, cf, cp *score.Voice, i int, rng *rand.Rand, battery *rules.Battery, opt Options, cont func() bool) bool {
	bar := cp.Bars[i]
	var block genome.CPBlock

	var tryslot func(slot int) bool
	tryslot = func(slot int) bool {
		if slot == len(genome.SlotBounds) {
			tones, err := block.Expand()
			if err != nil {
				return false
			}
			bar.Objects = nil
			for _, t := range tones {
				if err := bar.Add(&score.Object{Halftone: g.At(t.Degree), Duration: t.Duration}); err != nil {
					bar.Objects = nil
					return false
				}
			}
			if checkCPPrefix(cf, cp, i, battery, opt) && cont() {
				return true
			}
			bar.Objects = nil
			return false
		}
		lo, hi := genome.SlotBounds[slot][0], genome.SlotBounds[slot][1]
		order := rng.Perm(hi - lo + 1)
		for _, off := range order {
			block[slot] = lo + off
			if tryslot(slot + 1) {
				return true
			}
		}
		return false
	}
	return tryslot(0)
}

// checkCPPrefix resets battery and replays the contrapunctus from bar 0
// through bar upto against the aligned cantus firmus, requiring only the
// objects of bar upto to pass.
func checkCPPrefix(cf, cp *score.Voice, upto int, battery *rules.Battery, opt Options) bool {
	battery.Reset()
	for i := 0; i <= upto; i++ {
		for _, o := range cp.Bars[i].Objects {
			cfObj := alignedCF(cf, o)
			var results []rules.Result
			for _, r := range battery.MelodyCP {
				results = append(results, r.CheckMelody(o))
			}
			for _, r := range battery.Harmony {
				results = append(results, r.CheckHarmony(cfObj, o))
			}
			if i == upto && !passes(results, opt) {
				return false
			}
		}
	}
	return true
}

// alignedCF finds the cantus-firmus object sounding under cpObj,
// mirroring internal/fitness's own alignedCF helper.
func alignedCF(cfVoice *score.Voice, cpObj *score.Object) *score.Object {
	idx := cpObj.Bar.Idx
	if idx < 0 || idx >= len(cfVoice.Bars) {
		return nil
	}
	return cfVoice.Bars[idx].ObjectAtOffset(cpObj.Offset)
}

// FeasibleTail checks whether some contrapunctus can satisfy the rule
// battery over the last four bars, given an already-fixed cantus-firmus
// tail. The two free bars (the two before the fixed
// subsemitonium/scale-degree-7 pair) are searched the same way as
// SearchCP's default case; the genome's fixed lookup-table grid already
// reaches both named rhythm templates ("(8,)" as a single whole-bar
// tone, "(2,1,1,2,1,1)" as six tones at the grid's own offsets) as
// specific allele choices, so this reuses the general CPBlock search
// rather than hand-enumerating the two templates.
func FeasibleTail(g *mode.Gregorian, tail [4]*score.Object, battery *rules.Battery, opt Options) bool {
	const unit = 8
	tune := &score.Tune{Unit: unit}
	cf := tune.AddVoice("CF")
	cp := tune.AddVoice("CP")
	for _, o := range tail {
		if o == nil {
			return false
		}
		bar := cf.AddBar(unit)
		if err := bar.Add(&score.Object{Halftone: o.Halftone, Duration: unit}); err != nil {
			return false
		}
	}
	for i := 0; i < 4; i++ {
		cp.AddBar(unit)
	}

	subsemitonium, err := g.Subsemitonium()
	if err != nil {
		return false
	}
	scaleDegree7 := g.At(7)
	rng := rand.New(rand.NewSource(opt.Seed))

	var recurse func(i int) bool
	recurse = func(i int) bool {
		if i == 4 {
			return true
		}
		switch i {
		case 2:
			return fixedCPBar(cf, cp, i, subsemitonium, unit, battery, opt, func() bool { return recurse(i + 1) })
		case 3:
			return fixedCPBar(cf, cp, i, scaleDegree7, unit, battery, opt, func() bool { return recurse(i + 1) })
		default:
			return fillCPBar(g, cf, cp, i, rng, battery, opt, func() bool { return recurse(i + 1) })
		}
	}
	return recurse(0)
}
