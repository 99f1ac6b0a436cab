// Package cfgen is a supplemental cantus-firmus candidate generator, kept
// alongside the DFS/EA drivers as an alternative, exhaustive way to seed or
// cross-check the cantus-firmus half of the DFS search (internal/dfs). It
// reflects sergei-shchetnikov-go-cantus-firmus's own
// cantusgen+moderules pair, adapted to operate on pitch.Halftone/
// mode.Gregorian rather than its Note{Step,Octave,Alteration}.
//
// Grounded on sergei-shchetnikov-go-cantus-firmus's
// internal/cantusgen/cantusgen.go (the steps/leaps interval-sequence
// enumeration) and internal/rules/moderules.go (the augmented/diminished-
// interval screening rules, rule1 and rule2), with
// internal/music/interval.go's CalculateIntervalQuality reworked to take a
// diatonic step count directly instead of recomputing it from a Note pair.
package cfgen

import (
	"go-cantus-firmus/internal/mode"
	"go-cantus-firmus/internal/pitch"
)

// Steps are single scale-degree motions; Leaps are everything else a
// cantus-firmus candidate is allowed to use between steps.
var Steps = []int{-1, 1}
var DefaultLeaps = []int{-4, -3, -2, 2, 3, 4, 5}

// GenerateCantusIntervals enumerates diatonic scale-degree interval
// sequences of length n that: sum to zero (the melody returns to its
// starting degree), end with two elements of Steps, and use only values
// drawn from Steps or allowedLeaps elsewhere. allowedLeaps generalizes
// sergei-shchetnikov-go-cantus-firmus's hardcoded 70/30 steps/leaps split
// into an explicit allowed-leap set; the caller's windowed rule check
// decides which of the returned sequences actually passes the full rule
// battery.
func GenerateCantusIntervals(n int, allowedLeaps []int) [][]int {
	if n < 2 {
		return nil
	}

	var result [][]int
	prefixLen := n - 2

	var generate func(idx int, cur []int, sum int)
	generate = func(idx int, cur []int, sum int) {
		if idx == prefixLen {
			for _, e1 := range Steps {
				for _, e2 := range Steps {
					if sum+e1+e2 != 0 {
						continue
					}
					seq := make([]int, n)
					copy(seq, cur)
					seq[n-2] = e1
					seq[n-1] = e2
					result = append(result, seq)
				}
			}
			return
		}
		for _, v := range Steps {
			generate(idx+1, append(cur, v), sum+v)
		}
		for _, v := range allowedLeaps {
			generate(idx+1, append(cur, v), sum+v)
		}
	}
	generate(0, make([]int, 0, n), 0)
	return result
}

// Realize walks a diatonic interval sequence starting from a mode's
// finalis, returning the concrete halftones at each scale degree touched.
// intervals[i] is the scale-degree delta from step i to step i+1.
func Realize(g *mode.Gregorian, intervals []int) []*pitch.Halftone {
	out := make([]*pitch.Halftone, len(intervals)+1)
	degree := 0
	out[0] = g.At(degree)
	for i, step := range intervals {
		degree += step
		out[i+1] = g.At(degree)
	}
	return out
}

// IsFreeOfAugmentedDiminished screens a realized candidate for augmented or
// diminished intervals that are not "covered" by surrounding linear
// (stepwise, monotonic) motion, per sergei-shchetnikov-go-cantus-firmus's
// rule1/rule2.
// degrees[i] is the scale-degree index (relative to the mode finalis) that
// produced notes[i], needed to recover the diatonic interval size without
// re-deriving it from pitch alone.
func IsFreeOfAugmentedDiminished(notes []*pitch.Halftone, degrees []int) bool {
	return rule1(notes, degrees) && rule2(notes, degrees)
}

func rule1(notes []*pitch.Halftone, degrees []int) bool {
	for i := range notes {
		for j := i + 1; j < len(notes) && j-i <= 3; j++ {
			quality := intervalQuality(notes[i], notes[j], degrees[j]-degrees[i])
			if quality != "A" && quality != "d" {
				continue
			}
			if !isSurroundedByLinearMotion(degrees, i) && !isSurroundedByLinearMotion(degrees, j) {
				return false
			}
		}
	}
	return true
}

func rule2(notes []*pitch.Halftone, degrees []int) bool {
	n := len(notes)
	if n < 2 {
		return true
	}
	for i := 0; i < n-1; i++ {
		for j := i + 1; j < n; j++ {
			if !isStrictlyMonotonic(degrees[i : j+1]) {
				continue
			}
			extendsLeft := i > 0 && isStrictlyMonotonic(degrees[i-1:j+1])
			extendsRight := j < n-1 && isStrictlyMonotonic(degrees[i:j+2])
			if extendsLeft || extendsRight {
				continue
			}
			quality := intervalQuality(notes[i], notes[j], degrees[j]-degrees[i])
			if quality == "A" || quality == "d" {
				return false
			}
		}
	}
	return true
}

// isStrictlyMonotonic reports whether a run of scale-degree indices is
// strictly ascending or strictly descending throughout.
func isStrictlyMonotonic(degrees []int) bool {
	if len(degrees) < 2 {
		return false
	}
	ascending := degrees[1] > degrees[0]
	for k := 0; k < len(degrees)-1; k++ {
		if degrees[k+1] == degrees[k] {
			return false
		}
		if (degrees[k+1] > degrees[k]) != ascending {
			return false
		}
	}
	return true
}

// isSurroundedByLinearMotion reports whether the note at index i sits
// between two stepwise (adjacent-degree) motions in the same direction.
func isSurroundedByLinearMotion(degrees []int, i int) bool {
	if i <= 0 || i >= len(degrees)-1 {
		return false
	}
	before := degrees[i] - degrees[i-1]
	after := degrees[i+1] - degrees[i]
	return abs(before) == 1 && abs(after) == 1 && sign(before) == sign(after)
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

func sign(n int) int {
	if n < 0 {
		return -1
	}
	return 1
}

// standardSemitones gives the perfect/major semitone span of the simple
// (octave-reduced) diatonic interval sizes 1 (unison) through 8 (octave).
// A zero entry means that family (perfect vs. major) does not apply.
var standardSemitones = map[int][2]int{
	1: {0, 0}, 2: {0, 2}, 3: {0, 4}, 4: {5, 0},
	5: {7, 0}, 6: {0, 9}, 7: {0, 11}, 8: {12, 0},
}

var perfectFamily = map[int]bool{1: true, 4: true, 5: true, 8: true}

// intervalQuality classifies the interval between two halftones given the
// diatonic step count (signed scale-degree distance) already known from the
// caller's walk, returning "P"/"A"/"d" for the perfect family or
// "M"/"m"/"A"/"d" for the major/minor family.
func intervalQuality(a, b *pitch.Halftone, steps int) string {
	semitones := abs(b.Offset - a.Offset)
	size := abs(steps) + 1
	octaves := (size - 1) / 7
	simple := (size-1)%7 + 1
	expected := standardSemitones[simple]
	compoundOffset := 12 * octaves

	if perfectFamily[simple] {
		p := expected[0] + compoundOffset
		switch {
		case semitones == p:
			return "P"
		case semitones > p:
			return "A"
		default:
			return "d"
		}
	}

	m := expected[1] + compoundOffset
	switch {
	case semitones == m:
		return "M"
	case semitones == m-1:
		return "m"
	case semitones > m:
		return "A"
	default:
		return "d"
	}
}

// NoFiveOfSameSign reports whether currentSlice is free of five
// consecutive elements sharing the same sign, excessive one-directional
// drift in a row of diatonic steps/leaps. Works on incomplete slices so a
// DFS driver can call it after each partial assignment.
func NoFiveOfSameSign(currentSlice []int) bool {
	n := len(currentSlice)
	if n < 5 {
		return true
	}
	for i := 0; i <= n-5; i++ {
		s := sign(currentSlice[i])
		allSame := true
		for k := 1; k < 5; k++ {
			if sign(currentSlice[i+k]) != s {
				allSame = false
				break
			}
		}
		if allSame {
			return false
		}
	}
	return true
}
