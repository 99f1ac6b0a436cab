// Package pitch implements the halftone/key algebra: exact semitone
// arithmetic over ABC-notation-style note names, enharmonic equivalence,
// and key-aware transposition by the circle of fifths.
//
// Grounded on internal/music/note.go and internal/music/interval.go of
// sergei-shchetnikov-go-cantus-firmus (Note{Step,Octave,Alteration} +
// semitone math), generalized to this domain's Halftone name grammar and
// cross-checked against original_source/halftone.py and
// original_source/contrapunctus/circle.py.
package pitch

import (
	"fmt"
	"sync"
)

// Halftone is a value object identified by its symbolic name, e.g. "^F",
// "_C,", "c''". Equality is by name: enharmonic equivalents ("^F" and "_G")
// are distinct entities even though Offset is identical.
type Halftone struct {
	Name   string
	Offset int
}

// baseUpper gives the halftone offset of the plain (no accidental) uppercase
// letter, i.e. the canonical table's "C", "D", ... entries.
var baseUpper = map[byte]int{
	'A': 0, 'B': 2, 'C': -9, 'D': -7, 'E': -5, 'F': -4, 'G': -2,
}

var letterOrder = []byte{'A', 'B', 'C', 'D', 'E', 'F', 'G'}

var registryMu sync.Mutex
var registry = map[string]*Halftone{}

// Intern returns the flyweight instance for a parsed halftone name,
// constructing and caching it on first use. The insert path is guarded by
// registryMu so concurrent callers never race on the map.
func Intern(name string) (*Halftone, error) {
	registryMu.Lock()
	if h, ok := registry[name]; ok {
		registryMu.Unlock()
		return h, nil
	}
	registryMu.Unlock()

	offset, err := parseOffset(name)
	if err != nil {
		return nil, err
	}

	registryMu.Lock()
	defer registryMu.Unlock()
	if h, ok := registry[name]; ok {
		return h, nil
	}
	h := &Halftone{Name: name, Offset: offset}
	registry[name] = h
	return h, nil
}

// MustIntern panics on a malformed name; useful for literal constants in
// tests and mode tables where the name is known good.
func MustIntern(name string) *Halftone {
	h, err := Intern(name)
	if err != nil {
		panic(err)
	}
	return h
}

// parseOffset implements the name grammar: an optional leading
// accidental, a letter (uppercase is one octave below lowercase), and
// trailing octave marks (',' subtracts an octave, ''' adds one).
func parseOffset(name string) (int, error) {
	if name == "" {
		return 0, fmt.Errorf("pitch: empty halftone name")
	}

	rest := name
	tr := 0
	for len(rest) > 0 && rest[len(rest)-1] == ',' {
		rest = rest[:len(rest)-1]
		tr -= 12
	}
	if len(rest) > 0 && rest[len(rest)-1] == '\'' && tr != 0 {
		return 0, fmt.Errorf("pitch: %q mixes octave commas and apostrophes", name)
	}
	for len(rest) > 0 && rest[len(rest)-1] == '\'' {
		rest = rest[:len(rest)-1]
		tr += 12
	}

	if rest == "" {
		return 0, fmt.Errorf("pitch: %q has no letter", name)
	}

	accidental := 0
	i := 0
	switch rest[0] {
	case '^':
		accidental = 1
		i = 1
	case '_':
		accidental = -1
		i = 1
	}
	if i >= len(rest) {
		return 0, fmt.Errorf("pitch: %q has no letter after accidental", name)
	}
	letter := rest[i]
	if i != len(rest)-1 {
		return 0, fmt.Errorf("pitch: %q has trailing garbage after the letter", name)
	}

	upper := letter
	lower := false
	if letter >= 'a' && letter <= 'g' {
		upper = letter - ('a' - 'A')
		lower = true
	}
	base, ok := baseUpper[upper]
	if !ok {
		return 0, fmt.Errorf("pitch: %q has an invalid letter %q", name, string(letter))
	}
	offset := base + accidental
	if lower {
		offset += 12
	}
	return offset + tr, nil
}

// nameFromSpelling renders the halftone name for a given letter/accidental
// spelling at the given absolute offset, choosing case and octave marks so
// that re-parsing returns exactly offset. canUpper is the offset of the
// plain uppercase letter plus its accidental (no marks).
func nameFromSpelling(letter byte, accidental int, offset int) (string, error) {
	base, ok := baseUpper[letter]
	if !ok {
		return "", fmt.Errorf("pitch: invalid letter %q", string(letter))
	}
	canUpper := base + accidental
	diff := offset - canUpper
	if diff%12 != 0 {
		return "", fmt.Errorf("pitch: offset %d is not reachable from letter %q accidental %d", offset, string(letter), accidental)
	}
	k := diff / 12

	sym := accidentalSymbol(accidental)
	if k >= 1 {
		marks := ""
		for i := 0; i < k-1; i++ {
			marks += "'"
		}
		return sym + string(letter+('a'-'A')) + marks, nil
	}
	marks := ""
	for i := 0; i < -k; i++ {
		marks += ","
	}
	return sym + string(letter) + marks, nil
}

func accidentalSymbol(a int) string {
	switch a {
	case 1:
		return "^"
	case -1:
		return "_"
	default:
		return ""
	}
}

// TransposeOctaves shifts a halftone by whole octaves, preserving its
// letter/accidental spelling.
func TransposeOctaves(h *Halftone, octaves int) (*Halftone, error) {
	letter, accidental, err := decompose(h)
	if err != nil {
		return nil, err
	}
	name, err := nameFromSpelling(letter, accidental, h.Offset+12*octaves)
	if err != nil {
		return nil, err
	}
	return Intern(name)
}

// decompose extracts the base (uppercase) letter and accidental of a
// halftone, ignoring case and octave marks: the information needed to
// place it on the circle of fifths.
func decompose(h *Halftone) (letter byte, accidental int, err error) {
	rest := h.Name
	for len(rest) > 0 && (rest[len(rest)-1] == ',' || rest[len(rest)-1] == '\'') {
		rest = rest[:len(rest)-1]
	}
	i := 0
	switch rest[0] {
	case '^':
		accidental = 1
		i = 1
	case '_':
		accidental = -1
		i = 1
	}
	letter = rest[i]
	if letter >= 'a' && letter <= 'g' {
		letter -= 'a' - 'A'
	}
	if _, ok := baseUpper[letter]; !ok {
		return 0, 0, fmt.Errorf("pitch: %q has an invalid letter", h.Name)
	}
	return letter, accidental, nil
}

// Spelling decomposes h into a letter, a signed accidental, and a scientific
// octave number (so that uppercase "C" with no marks is octave 3 and
// lowercase "c" with no marks is octave 4, matching nameFromSpelling's
// placement convention). Used by notation and MusicXML emission, which
// both need octave as an integer rather than comma/apostrophe marks.
func Spelling(h *Halftone) (letter byte, accidental int, octave int, err error) {
	letter, accidental, err = decompose(h)
	if err != nil {
		return 0, 0, 0, err
	}
	base := baseUpper[letter]
	canUpper := base + accidental
	k := (h.Offset - canUpper) / 12
	if k >= 1 {
		octave = 4 + (k - 1)
	} else {
		octave = 3 + k
	}
	return letter, accidental, octave, nil
}

// letterFifths is the natural (no-accidental) position of each letter on
// the circle of fifths, anchored so that C = 0.
var letterFifths = map[byte]int{
	'F': -1, 'C': 0, 'G': 1, 'D': 2, 'A': 3, 'E': 4, 'B': 5,
}

var fifthsLetters = []byte{'F', 'C', 'G', 'D', 'A', 'E', 'B'}

func fifthsCount(letter byte, accidental int) int {
	return letterFifths[letter] + 7*accidental
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

func floorMod(a, b int) int {
	m := a % b
	if m != 0 && ((m < 0) != (b < 0)) {
		m += b
	}
	return m
}

func letterFromFifths(fc int) (letter byte, accidental int) {
	idx := floorMod(fc+1, 7)
	return fifthsLetters[idx], floorDiv(fc+1, 7)
}

// flipTable gives, for letter/accidental spellings confined to a single
// sharp or flat, the other spelling of the same pitch class (built in
// init below from the circle of fifths).
var flipTable = map[[2]int]([2]int){}

func flipKey(letter byte, accidental int) [2]int {
	return [2]int{int(letter), accidental}
}

func init() {
	// Build the table from the one invariant: two single-accidental
	// spellings land on the same pitch class iff their fifths counts
	// differ by exactly 12 (one full turn of the circle).
	for _, l1 := range fifthsLetters {
		for a1 := -1; a1 <= 1; a1++ {
			fc1 := fifthsCount(l1, a1)
			for _, l2 := range fifthsLetters {
				for a2 := -1; a2 <= 1; a2++ {
					if l1 == l2 && a1 == a2 {
						continue
					}
					fc2 := fifthsCount(l2, a2)
					if fc1-fc2 == 12 || fc2-fc1 == 12 {
						flipTable[flipKey(l1, a1)] = [2]int{int(l2), a2}
					}
				}
			}
		}
	}
}

// EnharmonicEquivalent returns the other spelling of the same pitch class,
// e.g. "^F" <-> "_G", "^B" <-> "c". Only defined for halftones whose
// pitch class has an alternate single-accidental spelling (naturals A, D
// and G have none); the involution property
// (h.EnharmonicEquivalent().EnharmonicEquivalent() == h) holds whenever it
// succeeds.
func EnharmonicEquivalent(h *Halftone) (*Halftone, error) {
	letter, accidental, err := decompose(h)
	if err != nil {
		return nil, err
	}
	alt, ok := flipTable[flipKey(letter, accidental)]
	if !ok {
		return nil, fmt.Errorf("pitch: %q has no single-accidental enharmonic equivalent", h.Name)
	}
	name, err := nameFromSpelling(byte(alt[0]), alt[1], h.Offset)
	if err != nil {
		return nil, err
	}
	return Intern(name)
}

// Transpose shifts h by s semitones, choosing a spelling via the circle of
// fifths: f is the signed fifths-distance equivalent to s semitones,
// renormalized to (-6, 6]; descending transpositions that land exactly
// on the +/-6 seam are respelled to their flat equivalent.
func Transpose(h *Halftone, s int) (*Halftone, error) {
	newOffset := h.Offset + s

	raw := floorMod(7*s, 12)
	f := raw
	if f > 6 {
		f -= 12
	}

	letter, accidental, err := decompose(h)
	if err != nil {
		return nil, err
	}
	targetFifths := fifthsCount(letter, accidental) + f
	targetLetter, targetAccidental := letterFromFifths(targetFifths)
	// A double accidental has no name in this grammar: step one full turn
	// of the circle (12 fifths, same pitch class) back onto a single one.
	for targetAccidental > 1 {
		targetFifths -= 12
		targetLetter, targetAccidental = letterFromFifths(targetFifths)
	}
	for targetAccidental < -1 {
		targetFifths += 12
		targetLetter, targetAccidental = letterFromFifths(targetFifths)
	}

	name, err := nameFromSpelling(targetLetter, targetAccidental, newOffset)
	if err != nil {
		return nil, err
	}
	result, err := Intern(name)
	if err != nil {
		return nil, err
	}

	if s < 0 && f == 6 {
		flipped, err := EnharmonicEquivalent(result)
		if err == nil {
			return flipped, nil
		}
	}
	return result, nil
}

// Less orders two halftones by pitch (offset), not by name.
func Less(a, b *Halftone) bool { return a.Offset < b.Offset }
