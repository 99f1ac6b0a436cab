// Package genome implements the allele vectors and phenotype map: a
// cantus-firmus allele per searched bar, an eleven-allele mixed
// rhythm+pitch block per contrapunctus bar, and the lookup-table walk
// that expands a CP block into concrete score.Objects.
//
// Grounded on sergei-shchetnikov-go-cantus-firmus's preference for small,
// explicitly-bounded integer slots (internal/music/note.go's
// Step/Octave/Alteration fields are themselves small bounded ints)
// generalized to this allele table, and cross-checked against
// original_source/contrapunctus/genome.py for the exact slot layout and
// lookup table.
package genome

import (
	"fmt"

	"go-cantus-firmus/internal/mode"
	"go-cantus-firmus/internal/score"
)

// CFAllele is one integer per middle cantus-firmus bar, indexing a
// semibreve in the mode's ambitus.
type CFAllele int

// CFBound is the exclusive upper bound of a CF allele: [0, 8).
const CFBound = 8

// Fix clamps a to the valid CF allele range.
func (a CFAllele) Fix() CFAllele {
	if a < 0 {
		return 0
	}
	if a >= CFBound {
		return CFBound - 1
	}
	return a
}

// CPBlock is the eleven-allele-per-bar encoding: mixed rhythm + pitch at
// four metrical positions (heavy, light, half-heavy, light) with
// secondary 1/8-subdivision slots.
type CPBlock [11]int

// SlotBounds gives the inclusive (lo, hi) range of each CPBlock slot, in
// table order; index i bounds CPBlock[i]. Exported so the DFS driver can
// enumerate the same slot space CPBlock.Fix clamps to.
var SlotBounds = [11][2]int{
	{1, 3}, {0, 7}, // 0: heavy duration (log2), 1: heavy pitch
	{0, 1}, {0, 7}, {0, 7}, // 2: 1/4 light duration, 3: pitch, 4: 1/8 subdivision pitch
	{1, 2}, {0, 7}, {0, 7}, // 5: half-heavy duration, 6: pitch, 7: unused 1/8 pitch
	{0, 1}, {0, 7}, {0, 7}, // 8: second 1/4 light duration, 9: pitch, 10: 1/8 subdivision pitch
}

// Fix clamps every slot of b to its declared bound: a gene value exceeding
// its slot's upper (or lower) bound is clamped before use.
func (b CPBlock) Fix() CPBlock {
	out := b
	for i, bound := range SlotBounds {
		if out[i] < bound[0] {
			out[i] = bound[0]
		}
		if out[i] > bound[1] {
			out[i] = bound[1]
		}
	}
	return out
}

// lut maps a bar-offset (in eighths, 0..7) to the CPBlock slot index just
// before the pitch allele that governs the tone emitted there (Expand reads
// the pitch from slot lut[offset]+1): the phenotype-construction lookup
// table.
var lut = map[int]int{0: 0, 2: 2, 3: 3, 4: 5, 6: 8, 7: 9}

// durationSlot maps the same bar-offset to the duration (log2) slot that
// governs the tone emitted there, when that position carries one; grid
// points with no entry here emit a bare 1/8 with no duration allele.
var durationSlot = map[int]int{0: 0, 2: 2, 4: 5, 6: 8}

// Expand walks a CPBlock's eighths-of-a-bar grid, filling a running offset
// boff from 0 to 7 eighths, and returns the tone (scale-degree index,
// duration-in-eighths) pairs to feed into a score.Bar via the mode's
// ambitus.
func (b CPBlock) Expand() ([]struct {
	Degree   int
	Duration int
}, error) {
	b = b.Fix()
	var out []struct {
		Degree   int
		Duration int
	}

	boff := 0
	for boff < 8 {
		pitchIdx, ok := lut[boff]
		if !ok {
			return nil, fmt.Errorf("genome: bar offset %d has no lookup entry", boff)
		}
		degree := b[pitchIdx+1]

		durSlot, hasDuration := durationSlot[boff]
		duration := 1
		if hasDuration {
			duration = 1 << b[durSlot]
		}
		out = append(out, struct {
			Degree   int
			Duration int
		}{Degree: degree, Duration: duration})
		boff += duration
	}
	return out, nil
}

// Genome is the full searched allele vector: one CFAllele per middle CF
// bar, one CPBlock per middle CP bar.
type Genome struct {
	CF []CFAllele
	CP []CPBlock
}

// Phenotype materializes a Genome into a concrete score.Tune: the first
// CF bar is fixed at the finalis, the last two at step2/finalis; the
// last two CP bars are fixed at subsemitonium and
// scale degree 7. length is the tune's total bar count L; g must supply
// exactly L-3 CF alleles and L-2 CP blocks. unit is the bar capacity in
// eighth-note units (8 for a 4/4 bar with L:1/8, matching CPBlock.Expand's
// eighths-of-a-bar grid).
func Phenotype(g *mode.Gregorian, length int, genes Genome, unit int) (*score.Tune, error) {
	if length < 3 {
		return nil, fmt.Errorf("genome: tune length %d too short for the fixed CF bars", length)
	}
	if len(genes.CF) != length-3 {
		return nil, fmt.Errorf("genome: expected %d CF alleles, got %d", length-3, len(genes.CF))
	}
	if len(genes.CP) != length-2 {
		return nil, fmt.Errorf("genome: expected %d CP blocks, got %d", length-2, len(genes.CP))
	}

	tune := &score.Tune{Meter: "4/4", Unit: unit}
	cf := tune.AddVoice("CF")
	cp := tune.AddVoice("CP")

	cfDegrees := make([]int, length)
	cfDegrees[0] = 0 // finalis
	for i, a := range genes.CF {
		cfDegrees[i+1] = int(a.Fix())
	}
	cfDegrees[length-2] = 1 // step2
	cfDegrees[length-1] = 0 // finalis

	for _, degree := range cfDegrees {
		bar := cf.AddBar(unit)
		if err := bar.Add(&score.Object{Halftone: g.At(degree), Duration: unit}); err != nil {
			return nil, err
		}
	}

	subsemitonium, err := g.Subsemitonium()
	if err != nil {
		return nil, err
	}
	scaleDegree7 := g.At(7)

	for i := 0; i < length; i++ {
		bar := cp.AddBar(unit)
		switch {
		case i == length-2:
			if err := bar.Add(&score.Object{Halftone: subsemitonium, Duration: unit}); err != nil {
				return nil, err
			}
		case i == length-1:
			if err := bar.Add(&score.Object{Halftone: scaleDegree7, Duration: unit}); err != nil {
				return nil, err
			}
		default:
			block := genes.CP[i]
			tones, err := block.Expand()
			if err != nil {
				return nil, err
			}
			for _, tone := range tones {
				if err := bar.Add(&score.Object{Halftone: g.At(tone.Degree), Duration: tone.Duration}); err != nil {
					return nil, err
				}
			}
		}
	}

	return tune, nil
}
