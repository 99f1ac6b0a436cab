package rules

import "go-cantus-firmus/internal/score"

// melodyMatcher is implemented by melody checks whose raw condition the
// History mixin needs to observe independently of whether the check
// itself reports a result this visit.
type melodyMatcher interface {
	matchesMelody(cur *score.Object) bool
}

// MelodyInterval fires when the interval from the previous tone to cur
// falls in Forbidden. Signed keeps direction; Octave folds the interval
// mod 12 before testing membership.
// A tied predecessor (Bind) is treated as a single note with cur and never
// fires the rule.
type MelodyInterval struct {
	Desc               string
	Forbidden          []int
	Signed             bool
	Octave             bool
	Badness, Ugliness  float64
}

func (r *MelodyInterval) matchesMelody(cur *score.Object) bool {
	prev := cur.Prev()
	if prev != nil && prev.Bind {
		return false
	}
	iv, ok := interval(prev, cur)
	if !ok {
		return false
	}
	if !r.Signed {
		iv = abs(iv)
	}
	if r.Octave {
		iv = octaveReduce(iv)
	}
	return contains(r.Forbidden, iv)
}

func (r *MelodyInterval) CheckMelody(cur *score.Object) Result {
	if r.matchesMelody(cur) {
		return Result{r.Badness, r.Ugliness, r.Desc}
	}
	return Result{}
}

func (r *MelodyInterval) Reset()            {}
func (r *MelodyInterval) Describe() string  { return r.Desc }

// MelodyHistory wraps a melody check (normally a MelodyInterval) and fires
// only when its condition matches on two consecutive visits. A bound
// (tied) predecessor is invisible to the history: it neither arms nor
// clears prevMatch: bound tones leave prevMatch untouched.
type MelodyHistory struct {
	Desc              string
	Inner             melodyMatcher
	Badness, Ugliness float64
	prevMatch         bool
}

func (h *MelodyHistory) CheckMelody(cur *score.Object) Result {
	if prev := cur.Prev(); prev != nil && prev.Bind {
		return Result{}
	}
	matched := h.Inner.matchesMelody(cur)
	fire := matched && h.prevMatch
	h.prevMatch = matched
	if fire {
		return Result{h.Badness, h.Ugliness, h.Desc}
	}
	return Result{}
}

func (h *MelodyHistory) Reset()           { h.prevMatch = false }
func (h *MelodyHistory) Describe() string { return h.Desc }

type jumpState int

const (
	jumpIdle jumpState = iota
	jumpPostJump
)

// MelodyJump implements a jump/post-jump state machine. A jump is an
// interval whose magnitude exceeds Limit (default 2, a major second).
type MelodyJump struct {
	Desc        string
	Limit       int
	JumpBadness, JumpUgliness         float64
	SameDirBadness, SameDirUgliness   float64

	state jumpState
	sign  int
}

func (r *MelodyJump) limit() int {
	if r.Limit == 0 {
		return 2
	}
	return r.Limit
}

func (r *MelodyJump) CheckMelody(cur *score.Object) Result {
	prev := cur.Prev()
	if prev != nil && prev.Bind {
		return Result{}
	}
	iv, ok := interval(prev, cur)
	if !ok {
		return Result{}
	}
	isJump := abs(iv) > r.limit()

	if !isJump {
		if r.state == jumpPostJump && sign(iv) == r.sign {
			r.state = jumpIdle
			return Result{r.SameDirBadness, r.SameDirUgliness, "same-direction movement after jump"}
		}
		r.state = jumpIdle
		return Result{}
	}

	wasPostJump := r.state == jumpPostJump
	r.state = jumpPostJump
	r.sign = sign(iv)
	if wasPostJump {
		return Result{r.JumpBadness, r.JumpUgliness, "jump"}
	}
	return Result{}
}

func (r *MelodyJump) Reset() {
	r.state = jumpIdle
	r.sign = 0
}

func (r *MelodyJump) Describe() string { return r.Desc }
