// Package mode implements the Gregorian ambitus model: an ordered set of
// seven halftones indexed modulo 7 with octave wrap, plus the special
// scale degrees (finalis, step2, subsemitonium) used throughout the rule
// library and genome.
//
// Grounded on original_source/contrapunctus/gregorian.py, expressed with
// pitch.Halftone's flyweight interning rather than a second ad hoc note
// representation.
package mode

import "go-cantus-firmus/internal/pitch"

// Gregorian is an ordered ambitus of seven halftones plus the index of the
// finalis within it (offset).
type Gregorian struct {
	Ambitus []*pitch.Halftone
	Offset  int
}

// New builds a Gregorian mode from seven letter names (in ascending
// ambitus order) and an offset giving the index of the finalis.
func New(letters []string, offset int) *Gregorian {
	if len(letters) != 7 {
		panic("mode: ambitus must have exactly seven degrees")
	}
	ambitus := make([]*pitch.Halftone, 7)
	for i, l := range letters {
		ambitus[i] = pitch.MustIntern(l)
	}
	return &Gregorian{Ambitus: ambitus, Offset: offset}
}

// At returns the halftone at scale-degree index idx, synthesizing tones
// outside the stored ambitus by transposing the congruent degree by whole
// octaves. Index arithmetic is modulo 7 with octave wrap.
func (g *Gregorian) At(idx int) *pitch.Halftone {
	index := idx + g.Offset
	if index >= 0 && index < len(g.Ambitus) {
		return g.Ambitus[index]
	}
	d, m := floorDivMod(index, 7)
	h, err := pitch.TransposeOctaves(g.Ambitus[m], d)
	if err != nil {
		panic(err) // ambitus entries are always well-formed halftone names
	}
	return h
}

func floorDivMod(a, b int) (int, int) {
	d := a / b
	m := a % b
	if m < 0 {
		d--
		m += b
	}
	return d, m
}

// Finalis is the tonic of the mode: At(0).
func (g *Gregorian) Finalis() *pitch.Halftone { return g.At(0) }

// Step2 is the second scale degree above the finalis: At(1).
func (g *Gregorian) Step2() *pitch.Halftone { return g.At(1) }

// Subsemitonium is the leading tone: the seventh degree above the
// finalis, lowered by a semitone.
func (g *Gregorian) Subsemitonium() (*pitch.Halftone, error) {
	return pitch.Transpose(g.At(7), -1)
}

var (
	Ionian         = New([]string{"C", "D", "E", "F", "G", "A", "B"}, 0)
	HypoIonian     = &Gregorian{Ambitus: Ionian.Ambitus, Offset: -3}
	Dorian         = New([]string{"D", "E", "F", "G", "A", "B", "c"}, 0)
	HypoDorian     = &Gregorian{Ambitus: Dorian.Ambitus, Offset: -3}
	Phrygian       = New([]string{"E", "F", "G", "A", "B", "c", "d"}, 0)
	HypoPhrygian   = &Gregorian{Ambitus: Phrygian.Ambitus, Offset: -3}
	Lydian         = New([]string{"F", "G", "A", "B", "c", "d", "e"}, 0)
	HypoLydian     = &Gregorian{Ambitus: Lydian.Ambitus, Offset: -3}
	Mixolydian     = New([]string{"G", "A", "B", "c", "d", "e", "f"}, 0)
	HypoMixolydian = &Gregorian{Ambitus: Mixolydian.Ambitus, Offset: -3}
	Aeolian        = New([]string{"A", "B", "c", "d", "e", "f", "g"}, 0)
	HypoAeolian    = &Gregorian{Ambitus: Aeolian.Ambitus, Offset: -3}
	Locrian        = New([]string{"B", "c", "d", "e", "f", "g", "a"}, 0)
	HypoLocrian    = &Gregorian{Ambitus: Locrian.Ambitus, Offset: -3}
)

// ByName looks up an authentic/plagal pair of Gregorian modes by name.
func ByName(name string) (authentic, plagal *Gregorian, ok bool) {
	switch name {
	case "ionian", "major":
		return Ionian, HypoIonian, true
	case "dorian":
		return Dorian, HypoDorian, true
	case "phrygian":
		return Phrygian, HypoPhrygian, true
	case "lydian":
		return Lydian, HypoLydian, true
	case "mixolydian":
		return Mixolydian, HypoMixolydian, true
	case "aeolian", "minor":
		return Aeolian, HypoAeolian, true
	case "locrian":
		return Locrian, HypoLocrian, true
	}
	return nil, nil, false
}
