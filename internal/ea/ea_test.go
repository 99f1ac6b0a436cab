package ea

import (
	"testing"

	"go-cantus-firmus/internal/mode"
	"go-cantus-firmus/internal/rules"
)

func smallProblem() Problem {
	return Problem{Mode: mode.Dorian, Length: 4, Unit: 8, Battery: rules.DefaultBattery()}
}

func TestProblem_VectorLenAndBounds(t *testing.T) {
	p := smallProblem()
	if got, want := p.VectorLen(), 1+2*11; got != want {
		t.Fatalf("VectorLen() = %d, want %d", got, want)
	}
	bounds := p.Bounds()
	if len(bounds) != p.VectorLen() {
		t.Fatalf("Bounds() len = %d, want %d", len(bounds), p.VectorLen())
	}
	if bounds[0] != (Bounds{0, 8}) {
		t.Errorf("first bound = %+v, want the CF allele bound {0,8}", bounds[0])
	}
}

func TestProblem_ScoreRoundTripsThroughGenome(t *testing.T) {
	p := smallProblem()
	vec := make([]int, p.VectorLen())
	for i, b := range p.Bounds() {
		vec[i] = b.Lo
	}
	fitnessVal, tune := p.Score(vec)
	if tune == nil {
		t.Fatal("expected a materialized tune for an in-bounds vector")
	}
	if fitnessVal < 1 {
		t.Errorf("fitness = %v, want >= 1", fitnessVal)
	}
}

func TestMinimize_GAReturnsAFeasibleBest(t *testing.T) {
	p := smallProblem()
	cfg := Config{PopSize: 8, MaxGenerations: 5, MaxEvals: 200, Seed: 42}
	result, err := Minimize(p, cfg)
	if err != nil {
		t.Fatal(err)
	}
	if result.BestTune == nil {
		t.Fatal("expected a best tune to be produced")
	}
	if result.BestFitness < 1 {
		t.Errorf("fitness = %v, want >= 1", result.BestFitness)
	}
	if result.Evals == 0 {
		t.Error("expected at least one evaluation to be recorded")
	}
}

func TestMinimize_GAIsDeterministicForAFixedSeed(t *testing.T) {
	p := smallProblem()
	cfg := Config{PopSize: 8, MaxGenerations: 5, MaxEvals: 200, Seed: 7}
	r1, err := Minimize(p, cfg)
	if err != nil {
		t.Fatal(err)
	}
	r2, err := Minimize(p, cfg)
	if err != nil {
		t.Fatal(err)
	}
	if r1.BestFitness != r2.BestFitness {
		t.Errorf("fitness differs across runs with the same seed: %v vs %v", r1.BestFitness, r2.BestFitness)
	}
	for i := range r1.Best {
		if r1.Best[i] != r2.Best[i] {
			t.Fatalf("best vector differs at index %d across runs with the same seed", i)
		}
	}
}

func TestMinimize_DEReturnsAFeasibleBest(t *testing.T) {
	p := smallProblem()
	cfg := DefaultDEConfig(11)
	cfg.MaxGenerations = 5
	cfg.MaxEvals = 200
	result, err := Minimize(p, cfg)
	if err != nil {
		t.Fatal(err)
	}
	if result.BestTune == nil {
		t.Fatal("expected a best tune to be produced")
	}
	if result.BestFitness < 1 {
		t.Errorf("fitness = %v, want >= 1", result.BestFitness)
	}
}

func TestMinimize_RejectsDegenerateProblem(t *testing.T) {
	p := Problem{Mode: mode.Dorian, Length: 2, Unit: 8, Battery: rules.DefaultBattery()}
	if _, err := Minimize(p, DefaultGAConfig(1)); err == nil {
		t.Fatal("expected an error for a problem with no searched alleles")
	}
}
