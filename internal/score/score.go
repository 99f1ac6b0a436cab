// Package score implements a bar/voice/tune structure: Tone and Pause bar
// objects, Bars that enforce exact capacity, Voices of Bars, and Tunes of
// Voices, with cross-bar neighbor navigation.
//
// Grounded on sergei-shchetnikov-go-cantus-firmus's ownership style
// (internal/music/cantus.go builds up a Realization bar by bar)
// generalized to this domain's explicit bar-capacity and neighbor-link
// invariants, and cross-checked against original_source/tone.py and
// original_source/contrapunctus/tune.py.
package score

import (
	"errors"
	"fmt"
	"sort"

	"go-cantus-firmus/internal/pitch"
)

// ErrOverfullBar is returned by Bar.Add when the new object's duration
// would push the bar's total past its declared capacity.
var ErrOverfullBar = errors.New("score: bar would overflow its capacity")

// Object is a Tone (Halftone != nil) or a Pause (Halftone == nil) occupying
// a contiguous span of a Bar. Idx and Offset are assigned exactly once, at
// insertion.
type Object struct {
	Halftone *pitch.Halftone // nil for a Pause
	Duration int             // in units of the bar's unit
	Bind     bool            // tied to the next object

	Idx    int // index within Bar.Objects
	Offset int // sum of preceding durations in this bar

	Bar *Bar
}

// IsPause reports whether this object is a rest.
func (o *Object) IsPause() bool { return o.Halftone == nil }

// AbsoluteLength returns the object's duration expressed in whole notes,
// i.e. duration / tune.Unit.
func (o *Object) AbsoluteLength() Rational {
	unit := o.Bar.Voice.Tune.Unit
	return Rational{Num: o.Duration, Den: unit}
}

// Bar holds an ordered sequence of bar objects whose durations must sum
// exactly to Capacity once construction completes.
type Bar struct {
	Capacity int
	Objects  []*Object
	Idx      int
	Voice    *Voice
}

// Add appends a new bar object, assigning its Idx/Offset/Bar and failing
// with ErrOverfullBar if the bar would exceed its declared capacity.
func (b *Bar) Add(o *Object) error {
	sum := 0
	for _, existing := range b.Objects {
		sum += existing.Duration
	}
	if sum+o.Duration > b.Capacity {
		return fmt.Errorf("%w: bar %d capacity %d, have %d, adding %d", ErrOverfullBar, b.Idx, b.Capacity, sum, o.Duration)
	}
	o.Offset = sum
	o.Idx = len(b.Objects)
	o.Bar = b
	b.Objects = append(b.Objects, o)
	return nil
}

// DurationSum is the sum of all object durations currently in the bar.
func (b *Bar) DurationSum() int {
	sum := 0
	for _, o := range b.Objects {
		sum += o.Duration
	}
	return sum
}

// IsComplete reports whether the bar's objects exactly fill its capacity.
func (b *Bar) IsComplete() bool { return b.DurationSum() == b.Capacity }

// ObjectAtOffset finds, via binary search over the strictly ascending
// per-object offsets, the rightmost object whose offset is <= target.
// Used to locate the counterpart voice's sounding object when other is
// known to fall within this bar.
func (b *Bar) ObjectAtOffset(target int) *Object {
	if len(b.Objects) == 0 {
		return nil
	}
	i := sort.Search(len(b.Objects), func(i int) bool { return b.Objects[i].Offset > target })
	if i == 0 {
		return nil
	}
	return b.Objects[i-1]
}

// Prev returns o's predecessor, crossing into the previous bar when o is
// first in its own bar. Returns nil if there is no predecessor, including
// when the neighboring bar exists but is still empty (the case that
// arises mid-search).
func (o *Object) Prev() *Object {
	if o.Offset != 0 {
		return o.Bar.Objects[o.Idx-1]
	}
	voice := o.Bar.Voice
	if o.Bar.Idx == 0 {
		return nil
	}
	prevBar := voice.Bars[o.Bar.Idx-1]
	if len(prevBar.Objects) == 0 {
		return nil
	}
	return prevBar.Objects[len(prevBar.Objects)-1]
}

// Next returns o's successor, crossing into the next bar when o is last
// in its own bar. Returns nil symmetrically to Prev.
func (o *Object) Next() *Object {
	if o.Idx != len(o.Bar.Objects)-1 {
		return o.Bar.Objects[o.Idx+1]
	}
	voice := o.Bar.Voice
	if o.Bar.Idx == len(voice.Bars)-1 {
		return nil
	}
	nextBar := voice.Bars[o.Bar.Idx+1]
	if len(nextBar.Objects) == 0 {
		return nil
	}
	return nextBar.Objects[0]
}

// IsFirst reports whether o is the first object of the whole voice.
func (o *Object) IsFirst() bool { return o.Bar.Idx == 0 && o.Offset == 0 }

// IsLast reports whether o is the last object of the whole voice.
func (o *Object) IsLast() bool {
	v := o.Bar.Voice
	return o.Bar.Idx == len(v.Bars)-1 && o.Idx == len(o.Bar.Objects)-1
}

// EndOffset is the bar-relative offset just past this object's span.
func (o *Object) EndOffset() int { return o.Offset + o.Duration }

// Overlaps reports whether o and other (normally objects of different
// voices) occupy overlapping time, comparing (bar index, offset range).
func (o *Object) Overlaps(other *Object) bool {
	if o.Bar.Idx != other.Bar.Idx {
		return false
	}
	return o.Offset < other.EndOffset() && other.Offset < o.EndOffset()
}

// Voice is an ordered sequence of Bars plus an id and a free-form property
// map (clef, name, short name, ...).
type Voice struct {
	ID    string
	Props map[string]string
	Bars  []*Bar
	Tune  *Tune
}

// AddBar appends a new, empty bar of the given capacity to the voice.
func (v *Voice) AddBar(capacity int) *Bar {
	b := &Bar{Capacity: capacity, Idx: len(v.Bars), Voice: v}
	v.Bars = append(v.Bars, b)
	return b
}

// Objects returns every object of the voice in ascending (bar, offset)
// order, the canonical traversal order used by the fitness evaluator.
func (v *Voice) Objects() []*Object {
	var out []*Object
	for _, b := range v.Bars {
		out = append(out, b.Objects...)
	}
	return out
}

// Tune is a meter, key, unit note length, comment block and a list of
// voices.
type Tune struct {
	Meter   string
	Key     *pitch.Key
	Unit    int
	Comment []string
	Voices  []*Voice
}

// AddVoice creates and attaches a new, empty voice.
func (t *Tune) AddVoice(id string) *Voice {
	v := &Voice{ID: id, Props: map[string]string{}, Tune: t}
	t.Voices = append(t.Voices, v)
	return v
}

// SetUnit rescales every duration in every bar (and every bar's capacity)
// by the rational factor newUnit/oldUnit, atomically: the rescale is
// attempted on a deep clone first, and only committed if every resulting
// duration is an exact integer.
func (t *Tune) SetUnit(newUnit int) error {
	if newUnit <= 0 {
		return fmt.Errorf("score: unit must be positive, got %d", newUnit)
	}
	oldUnit := t.Unit
	if oldUnit == newUnit {
		return nil
	}

	clone := t.Clone()
	if err := clone.rescaleInPlace(oldUnit, newUnit); err != nil {
		return err
	}

	if err := t.rescaleInPlace(oldUnit, newUnit); err != nil {
		return fmt.Errorf("score: internal inconsistency, dry run succeeded but commit failed: %w", err)
	}
	return nil
}

func (t *Tune) rescaleInPlace(oldUnit, newUnit int) error {
	for _, v := range t.Voices {
		for _, b := range v.Bars {
			cap, ok := rescale(b.Capacity, oldUnit, newUnit)
			if !ok {
				return fmt.Errorf("score: bar %d capacity not exactly representable at unit %d", b.Idx, newUnit)
			}
			b.Capacity = cap
			for _, o := range b.Objects {
				d, ok := rescale(o.Duration, oldUnit, newUnit)
				if !ok {
					return fmt.Errorf("score: object at bar %d offset %d not exactly representable at unit %d", b.Idx, o.Offset, newUnit)
				}
				o.Duration = d
			}
			recomputeOffsets(b)
		}
	}
	t.Unit = newUnit
	return nil
}

func rescale(duration, oldUnit, newUnit int) (int, bool) {
	num := duration * newUnit
	if num%oldUnit != 0 {
		return 0, false
	}
	return num / oldUnit, true
}

func recomputeOffsets(b *Bar) {
	sum := 0
	for i, o := range b.Objects {
		o.Offset = sum
		o.Idx = i
		sum += o.Duration
	}
}

// Clone performs a deep structural copy of the tune, reassigning every
// bar/object index and back-reference rather than sharing any pointer with
// the original.
func (t *Tune) Clone() *Tune {
	clone := &Tune{
		Meter:   t.Meter,
		Key:     t.Key,
		Unit:    t.Unit,
		Comment: append([]string(nil), t.Comment...),
	}
	for _, v := range t.Voices {
		nv := clone.AddVoice(v.ID)
		for k, val := range v.Props {
			nv.Props[k] = val
		}
		for _, b := range v.Bars {
			nb := nv.AddBar(b.Capacity)
			for _, o := range b.Objects {
				_ = nb.Add(&Object{Halftone: o.Halftone, Duration: o.Duration, Bind: o.Bind})
			}
		}
	}
	return clone
}

// Rational is a small exact fraction, used for absolute note lengths so
// that unit rescaling never introduces floating-point drift.
type Rational struct {
	Num int
	Den int
}

func gcd(a, b int) int {
	if a < 0 {
		a = -a
	}
	if b < 0 {
		b = -b
	}
	for b != 0 {
		a, b = b, a%b
	}
	return a
}

// Reduced returns r in lowest terms, with a positive denominator.
func (r Rational) Reduced() Rational {
	if r.Den < 0 {
		r.Num, r.Den = -r.Num, -r.Den
	}
	if r.Num == 0 {
		return Rational{0, 1}
	}
	g := gcd(r.Num, r.Den)
	return Rational{r.Num / g, r.Den / g}
}
