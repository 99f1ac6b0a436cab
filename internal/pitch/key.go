package pitch

import (
	"fmt"
	"sync"
)

// Key is a tonal center (pitch class only, octave is irrelevant to a key)
// plus a mode name, represented by its signed fifth offset on the circle
// of fifths. Keys are flyweights, interned the same way Halftones are.
type Key struct {
	Tonic       *Halftone
	Mode        string
	FifthOffset int
}

var keyRegistryMu sync.Mutex
var keyRegistry = map[string]*Key{}

// modeCorrection is the fifth-offset delta between a mode built on a given
// tonic and the major scale sharing the same key signature (e.g. D dorian
// has the same signature as C major, so its correction is -2 relative to
// treating D as a major tonic).
var modeCorrection = map[string]int{
	"ionian": 0, "major": 0,
	"dorian":     -2,
	"phrygian":   -4,
	"lydian":     1,
	"mixolydian": -1,
	"aeolian":    -3, "minor": -3,
	"locrian": -5,
}

// NewKey interns a Key for the given tonic pitch class (octave marks are
// ignored) and mode name.
func NewKey(tonic *Halftone, mode string) (*Key, error) {
	correction, ok := modeCorrection[mode]
	if !ok {
		return nil, fmt.Errorf("pitch: unknown mode %q", mode)
	}
	letter, accidental, err := decompose(tonic)
	if err != nil {
		return nil, err
	}
	offset := fifthsCount(letter, accidental) + correction

	cacheKey := fmt.Sprintf("%s:%s", tonic.Name, mode)
	keyRegistryMu.Lock()
	defer keyRegistryMu.Unlock()
	if k, ok := keyRegistry[cacheKey]; ok {
		return k, nil
	}
	k := &Key{Tonic: tonic, Mode: mode, FifthOffset: offset}
	k, err = k.normalize()
	if err != nil {
		return nil, err
	}
	keyRegistry[cacheKey] = k
	return k, nil
}

// normalize respells the tonic and renormalizes FifthOffset into [-6, 6]
// whenever it falls outside that range. A downward (negative) overflow
// that lands exactly on 6 is respelled to -6, matching the
// flat-preference rule used for halftone transposition.
func (k *Key) normalize() (*Key, error) {
	if k.FifthOffset >= -6 && k.FifthOffset <= 6 {
		return k, nil
	}
	tonic := k.Tonic
	offset := k.FifthOffset
	for offset > 6 {
		flipped, err := EnharmonicEquivalent(tonic)
		if err != nil {
			return nil, err
		}
		tonic = flipped
		offset -= 12
	}
	for offset < -6 {
		flipped, err := EnharmonicEquivalent(tonic)
		if err != nil {
			return nil, err
		}
		tonic = flipped
		offset += 12
	}
	return &Key{Tonic: tonic, Mode: k.Mode, FifthOffset: offset}, nil
}

// sharpOrder / flatOrder are the standard accumulation orders for key
// signature accidentals on the circle of fifths.
var sharpOrder = []byte{'F', 'C', 'G', 'D', 'A', 'E', 'B'}
var flatOrder = []byte{'B', 'E', 'A', 'D', 'G', 'C', 'F'}

// Accidentals returns the letter -> accidental (+1 sharp, -1 flat) map
// implied by the key's fifth offset.
func (k *Key) Accidentals() map[byte]int {
	out := map[byte]int{}
	if k.FifthOffset > 0 {
		for i := 0; i < k.FifthOffset; i++ {
			out[sharpOrder[i]] = 1
		}
	} else if k.FifthOffset < 0 {
		for i := 0; i < -k.FifthOffset; i++ {
			out[flatOrder[i]] = -1
		}
	}
	return out
}

// TransposeFifths moves the key n steps around the circle of fifths,
// renormalizing the result into [-6, 6].
func (k *Key) TransposeFifths(n int) (*Key, error) {
	tonic := k.Tonic
	var err error
	for i := 0; i < n; i++ {
		tonic, err = Transpose(tonic, 7)
		if err != nil {
			return nil, err
		}
	}
	for i := 0; i > n; i-- {
		tonic, err = Transpose(tonic, -7)
		if err != nil {
			return nil, err
		}
	}
	nk := &Key{Tonic: tonic, Mode: k.Mode, FifthOffset: k.FifthOffset + n}
	return nk.normalize()
}
