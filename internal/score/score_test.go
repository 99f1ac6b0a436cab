package score

import (
	"testing"

	"go-cantus-firmus/internal/pitch"
)

func buildSimpleTune(t *testing.T) *Tune {
	t.Helper()
	key, err := pitch.NewKey(pitch.MustIntern("D"), "dorian")
	if err != nil {
		t.Fatal(err)
	}
	tune := &Tune{Meter: "4/4", Key: key, Unit: 8}
	voice := tune.AddVoice("CF")
	for i := 0; i < 3; i++ {
		bar := voice.AddBar(8)
		if err := bar.Add(&Object{Halftone: pitch.MustIntern("D"), Duration: 8}); err != nil {
			t.Fatal(err)
		}
	}
	return tune
}

func TestBar_Add_OverfullBar(t *testing.T) {
	bar := &Bar{Capacity: 8}
	if err := bar.Add(&Object{Duration: 8}); err != nil {
		t.Fatal(err)
	}
	if err := bar.Add(&Object{Duration: 1}); err == nil {
		t.Fatal("expected ErrOverfullBar, got nil")
	}
}

func TestBar_Add_AssignsOffsetsAndIdx(t *testing.T) {
	bar := &Bar{Capacity: 8}
	_ = bar.Add(&Object{Duration: 2})
	_ = bar.Add(&Object{Duration: 3})
	_ = bar.Add(&Object{Duration: 3})

	wantOffsets := []int{0, 2, 5}
	for i, o := range bar.Objects {
		if o.Offset != wantOffsets[i] {
			t.Errorf("object %d offset = %d, want %d", i, o.Offset, wantOffsets[i])
		}
		if o.Idx != i {
			t.Errorf("object %d idx = %d, want %d", i, o.Idx, i)
		}
	}
}

func TestBarDurationsSumToCapacity(t *testing.T) {
	tune := buildSimpleTune(t)
	for _, v := range tune.Voices {
		for _, b := range v.Bars {
			if b.DurationSum() != b.Capacity {
				t.Errorf("bar %d: duration sum %d != capacity %d", b.Idx, b.DurationSum(), b.Capacity)
			}
		}
	}
}

func TestNeighborConsistency(t *testing.T) {
	tune := buildSimpleTune(t)
	objs := tune.Voices[0].Objects()
	for i, o := range objs {
		if i > 0 {
			if o.Prev() != objs[i-1] {
				t.Errorf("object %d: Prev() mismatch", i)
			}
		} else if o.Prev() != nil {
			t.Errorf("first object: Prev() should be nil")
		}
		if i < len(objs)-1 {
			if o.Next() != objs[i+1] {
				t.Errorf("object %d: Next() mismatch", i)
			}
		} else if o.Next() != nil {
			t.Errorf("last object: Next() should be nil")
		}
	}
}

func TestNeighborAcrossEmptyBar(t *testing.T) {
	tune := &Tune{Unit: 8}
	voice := tune.AddVoice("V")
	b0 := voice.AddBar(8)
	_ = b0.Add(&Object{Duration: 8})
	voice.AddBar(8) // still empty -- partial-search scenario

	if got := b0.Objects[0].Next(); got != nil {
		t.Errorf("Next() across an empty bar should be nil, got %+v", got)
	}
}

func TestObjectAtOffset(t *testing.T) {
	bar := &Bar{Capacity: 8}
	_ = bar.Add(&Object{Duration: 2})
	_ = bar.Add(&Object{Duration: 4})
	_ = bar.Add(&Object{Duration: 2})

	for offset, wantIdx := range map[int]int{0: 0, 1: 0, 2: 1, 5: 1, 6: 2, 7: 2} {
		got := bar.ObjectAtOffset(offset)
		if got == nil || got.Idx != wantIdx {
			t.Errorf("ObjectAtOffset(%d) = %v, want idx %d", offset, got, wantIdx)
		}
	}
}

func TestOverlaps(t *testing.T) {
	cfBar := &Bar{Capacity: 8, Idx: 0}
	cpBar := &Bar{Capacity: 8, Idx: 0}
	cf := &Object{Duration: 8}
	cfBar.Objects = []*Object{cf}
	cf.Bar = cfBar

	cp1 := &Object{Duration: 4}
	cp2 := &Object{Duration: 4}
	_ = cpBar.Add(cp1)
	_ = cpBar.Add(cp2)

	if !cf.Overlaps(cp1) || !cf.Overlaps(cp2) {
		t.Error("cf whole note should overlap both cp halves")
	}
	if cp1.Overlaps(cp2) {
		t.Error("adjacent cp halves should not overlap")
	}
}

func TestTune_SetUnit_Rescales(t *testing.T) {
	tune := buildSimpleTune(t)
	if err := tune.SetUnit(16); err != nil {
		t.Fatal(err)
	}
	for _, v := range tune.Voices {
		for _, b := range v.Bars {
			if b.Capacity != 16 {
				t.Errorf("bar capacity after rescale = %d, want 16", b.Capacity)
			}
			for _, o := range b.Objects {
				if o.Duration != 16 {
					t.Errorf("object duration after rescale = %d, want 16", o.Duration)
				}
			}
		}
	}
}

func TestTune_SetUnit_RejectsNonExactRescale(t *testing.T) {
	tune := &Tune{Meter: "4/4", Unit: 8}
	bar := tune.AddVoice("CF").AddBar(8)
	if err := bar.Add(&Object{Halftone: pitch.MustIntern("D"), Duration: 1}); err != nil {
		t.Fatal(err)
	}
	if err := bar.Add(&Object{Halftone: pitch.MustIntern("E"), Duration: 7}); err != nil {
		t.Fatal(err)
	}
	before := tune.Unit
	if err := tune.SetUnit(3); err == nil {
		t.Fatal("expected error rescaling a one-eighth duration to unit 3 (1*3/8 is not an integer)")
	}
	if tune.Unit != before {
		t.Errorf("tune.Unit mutated on a failed rescale: got %d, want %d", tune.Unit, before)
	}
}

func TestTune_Clone_IsDeepAndReassignsIndices(t *testing.T) {
	tune := buildSimpleTune(t)
	clone := tune.Clone()

	origObjs := tune.Voices[0].Objects()
	cloneObjs := clone.Voices[0].Objects()
	if len(origObjs) != len(cloneObjs) {
		t.Fatalf("clone has %d objects, want %d", len(cloneObjs), len(origObjs))
	}
	for i := range origObjs {
		if origObjs[i] == cloneObjs[i] {
			t.Errorf("clone shares object pointer at index %d", i)
		}
		if cloneObjs[i].Idx != origObjs[i].Idx || cloneObjs[i].Offset != origObjs[i].Offset {
			t.Errorf("clone object %d has mismatched idx/offset", i)
		}
	}
	// mutating the clone must not affect the original.
	cloneObjs[0].Duration = 1
	if origObjs[0].Duration == 1 {
		t.Error("mutating clone mutated original")
	}
}
