package rules

import "go-cantus-firmus/internal/score"

// harmonyMatcher is implemented by harmony checks whose raw condition the
// History mixin observes independently of whether it reports this visit.
type harmonyMatcher interface {
	matchesHarmony(cf, cp *score.Object) bool
}

// HarmonyInterval fires when the signed or unsigned interval cp - cf
// (optionally octave-folded) falls in Forbidden.
type HarmonyInterval struct {
	Desc              string
	Forbidden         []int
	Signed            bool
	Octave            bool
	Badness, Ugliness float64
}

func (r *HarmonyInterval) matchesHarmony(cf, cp *score.Object) bool {
	if cf == nil || cp == nil || cf.IsPause() || cp.IsPause() {
		return false
	}
	iv := cp.Halftone.Offset - cf.Halftone.Offset
	if !r.Signed {
		iv = abs(iv)
	}
	if r.Octave {
		iv = octaveReduce(iv)
	}
	return contains(r.Forbidden, iv)
}

func (r *HarmonyInterval) CheckHarmony(cf, cp *score.Object) Result {
	if r.matchesHarmony(cf, cp) {
		return Result{r.Badness, r.Ugliness, r.Desc}
	}
	return Result{}
}

func (r *HarmonyInterval) Reset()           {}
func (r *HarmonyInterval) Describe() string { return r.Desc }

// HarmonyHistory wraps a harmony check (normally a HarmonyInterval) and
// fires only on two consecutive matches, used for parallel-consonance
// detection (e.g. Forbidden={7} catches a run of parallel fifths, firing
// on the second occurrence).
type HarmonyHistory struct {
	Desc              string
	Inner             harmonyMatcher
	Badness, Ugliness float64
	prevMatch         bool
}

func (h *HarmonyHistory) CheckHarmony(cf, cp *score.Object) Result {
	matched := h.Inner.matchesHarmony(cf, cp)
	fire := matched && h.prevMatch
	h.prevMatch = matched
	if fire {
		return Result{h.Badness, h.Ugliness, h.Desc}
	}
	return Result{}
}

func (h *HarmonyHistory) Reset()           { h.prevMatch = false }
func (h *HarmonyHistory) Describe() string { return h.Desc }

// isFirstNonPause reports whether o is the first sounding (non-pause)
// object of its voice: every predecessor, if any, is a pause.
func isFirstNonPause(o *score.Object) bool {
	for p := o.Prev(); p != nil; p = p.Prev() {
		if !p.IsPause() {
			return false
		}
	}
	return true
}

// HarmonyFirstInterval uses inverted membership: it fires unless the
// vertical interval at the tune's very first sounding position is in
// Allowed. It is a no-op everywhere else.
type HarmonyFirstInterval struct {
	Desc              string
	Allowed           []int
	Badness, Ugliness float64
}

func (r *HarmonyFirstInterval) CheckHarmony(cf, cp *score.Object) Result {
	if cf == nil || cp == nil || cf.IsPause() || cp.IsPause() {
		return Result{}
	}
	if !isFirstNonPause(cf) || !isFirstNonPause(cp) {
		return Result{}
	}
	iv := cp.Halftone.Offset - cf.Halftone.Offset
	if contains(r.Allowed, iv) {
		return Result{}
	}
	return Result{r.Badness, r.Ugliness, r.Desc}
}

func (r *HarmonyFirstInterval) Reset()           {}
func (r *HarmonyFirstInterval) Describe() string { return r.Desc }

// HarmonyIntervalMax fires when the signed vertical interval cp - cf
// exceeds Maximum.
type HarmonyIntervalMax struct {
	Desc              string
	Maximum           int
	Badness, Ugliness float64
}

func (r *HarmonyIntervalMax) CheckHarmony(cf, cp *score.Object) Result {
	if cf == nil || cp == nil || cf.IsPause() || cp.IsPause() {
		return Result{}
	}
	if cp.Halftone.Offset-cf.Halftone.Offset > r.Maximum {
		return Result{r.Badness, r.Ugliness, r.Desc}
	}
	return Result{}
}

func (r *HarmonyIntervalMax) Reset()           {}
func (r *HarmonyIntervalMax) Describe() string { return r.Desc }

// HarmonyIntervalMin fires when the signed vertical interval cp - cf
// falls below Minimum, used with Minimum=0 to enforce "contrapunctus
// voice above cf".
type HarmonyIntervalMin struct {
	Desc              string
	Minimum           int
	Badness, Ugliness float64
}

func (r *HarmonyIntervalMin) CheckHarmony(cf, cp *score.Object) Result {
	if cf == nil || cp == nil || cf.IsPause() || cp.IsPause() {
		return Result{}
	}
	if cp.Halftone.Offset-cf.Halftone.Offset < r.Minimum {
		return Result{r.Badness, r.Ugliness, r.Desc}
	}
	return Result{}
}

func (r *HarmonyIntervalMin) Reset()           {}
func (r *HarmonyIntervalMin) Describe() string { return r.Desc }

// Jump2 fires when both voices jump (|interval| > Limit) between the same
// pair of neighboring positions.
type Jump2 struct {
	Desc              string
	Limit             int
	Badness, Ugliness float64
}

func (r *Jump2) limit() int {
	if r.Limit == 0 {
		return 2
	}
	return r.Limit
}

func (r *Jump2) CheckHarmony(cf, cp *score.Object) Result {
	cfIv, cfOk := interval(cf.Prev(), cf)
	cpIv, cpOk := interval(cp.Prev(), cp)
	if cfOk && cpOk && abs(cfIv) > r.limit() && abs(cpIv) > r.limit() {
		return Result{r.Badness, r.Ugliness, r.Desc}
	}
	return Result{}
}

func (r *Jump2) Reset()           {}
func (r *Jump2) Describe() string { return r.Desc }

// prevOf returns cur's in-voice predecessor (Prev, which crosses bar
// boundaries), falling back to a get_by_offset lookup against
// counterpart's predecessor only when cur has no predecessor at all but
// is not the first object of its voice (the previous bar is still empty),
// the alignment Harmony-Melody-Direction rules need when the two voices'
// rhythms differ.
func prevOf(cur, counterpart *score.Object) *score.Object {
	if p := cur.Prev(); p != nil {
		return p
	}
	if counterpart == nil || cur.IsFirst() {
		return nil
	}
	otherPrev := counterpart.Prev()
	if otherPrev == nil {
		return nil
	}
	voice := cur.Bar.Voice
	if otherPrev.Bar.Idx < 0 || otherPrev.Bar.Idx >= len(voice.Bars) {
		return nil
	}
	return voice.Bars[otherPrev.Bar.Idx].ObjectAtOffset(otherPrev.Offset)
}

// HarmonyMelodyDirection compares the sign of each voice's movement into
// (cf, cp) against Dir ("same", "different", "zero"), optionally gated by
// an allowed vertical-interval set and a two-visit History requirement.
type HarmonyMelodyDirection struct {
	Desc              string
	Allowed           []int // empty = any vertical interval
	Dir               string
	OnlyRepeat        bool
	Badness, Ugliness float64
	prevMatch         bool
}

func (r *HarmonyMelodyDirection) matches(cf, cp *score.Object) bool {
	if cf == nil || cp == nil || cf.IsPause() || cp.IsPause() {
		return false
	}
	if len(r.Allowed) > 0 {
		iv := cp.Halftone.Offset - cf.Halftone.Offset
		if !contains(r.Allowed, iv) {
			return false
		}
	}
	cfIv, cfOk := interval(prevOf(cf, cp), cf)
	cpIv, cpOk := interval(prevOf(cp, cf), cp)
	if !cfOk || !cpOk {
		return false
	}
	switch r.Dir {
	case "same":
		return sign(cfIv) == sign(cpIv) && sign(cfIv) != 0
	case "different":
		return sign(cfIv) != sign(cpIv)
	case "zero":
		return cfIv == 0 && cpIv == 0
	default:
		return false
	}
}

func (r *HarmonyMelodyDirection) CheckHarmony(cf, cp *score.Object) Result {
	matched := r.matches(cf, cp)
	if !r.OnlyRepeat {
		if matched {
			return Result{r.Badness, r.Ugliness, r.Desc}
		}
		return Result{}
	}
	fire := matched && r.prevMatch
	r.prevMatch = matched
	if fire {
		return Result{r.Badness, r.Ugliness, r.Desc}
	}
	return Result{}
}

func (r *HarmonyMelodyDirection) Reset()           { r.prevMatch = false }
func (r *HarmonyMelodyDirection) Describe() string { return r.Desc }
