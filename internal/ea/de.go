package ea

import (
	"math"
	"math/rand"
)

// minimizeDE runs a classic DE/rand/1/bin differential-evolution variant,
// configured via variant name, crossover probability, jitter, and scale
// factor. Only the rand/1/bin variant is implemented; other DEVariant
// values fall back to it. Individuals are kept as real
// vectors and rounded to the nearest in-bounds integer only when scored,
// so small mutations below one allele unit can still accumulate.
func minimizeDE(p Problem, cfg Config) (Result, error) {
	rng := rand.New(rand.NewSource(cfg.Seed))
	bounds := p.Bounds()
	n := len(bounds)
	popSize := cfg.PopSize
	if popSize < 4 {
		popSize = 4 // DE/rand/1 needs at least 3 distinct donors plus the target
	}

	pop := make([][]float64, popSize)
	for i := range pop {
		v := make([]float64, n)
		for j, b := range bounds {
			v[j] = float64(randInBounds(rng, b))
		}
		pop[i] = v
	}

	scores := make([]float64, popSize)
	ints := make([][]int, popSize)
	for i, v := range pop {
		ints[i] = roundVector(v, bounds)
		scores[i], _ = p.Score(ints[i])
	}

	evals := popSize
	bestIdx := argMin(scores)
	bestScore := scores[bestIdx]
	bestGenes := append([]int(nil), ints[bestIdx]...)
	gensRun := 0

	crossoverProb := cfg.CrossoverProb
	if crossoverProb <= 0 {
		crossoverProb = 0.9
	}
	scaleFactor := cfg.ScaleFactor
	if scaleFactor <= 0 {
		scaleFactor = 0.8
	}

	for gen := 0; (cfg.MaxGenerations <= 0 || gen < cfg.MaxGenerations) && bestScore > 1; gen++ {
		gensRun = gen + 1
		for i := 0; i < popSize; i++ {
			if cfg.MaxEvals > 0 && evals >= cfg.MaxEvals {
				break
			}
			a, b, c := pickThreeDistinct(rng, popSize, i)
			jitter := 1.0
			if cfg.Jitter > 0 {
				jitter += (rng.Float64()*2 - 1) * cfg.Jitter
			}
			trial := make([]float64, n)
			jrand := rng.Intn(n)
			for k := 0; k < n; k++ {
				if k == jrand || rng.Float64() < crossoverProb {
					trial[k] = pop[a][k] + scaleFactor*jitter*(pop[b][k]-pop[c][k])
				} else {
					trial[k] = pop[i][k]
				}
			}
			trialInts := roundVector(trial, bounds)
			trialScore, _ := p.Score(trialInts)
			evals++
			if trialScore <= scores[i] {
				pop[i] = trial
				scores[i] = trialScore
				ints[i] = trialInts
				if trialScore < bestScore {
					bestScore = trialScore
					bestGenes = append([]int(nil), trialInts...)
				}
			}
		}
		if cfg.MaxEvals > 0 && evals >= cfg.MaxEvals {
			break
		}
	}

	_, tune := p.Score(bestGenes)
	g := p.toGenome(bestGenes)
	return Result{
		Best: bestGenes, BestGenome: g, BestTune: tune, BestFitness: bestScore,
		Generations: gensRun, Evals: evals,
	}, nil
}

func roundVector(v []float64, bounds []Bounds) []int {
	out := make([]int, len(v))
	for i, b := range bounds {
		out[i] = clamp(int(math.Round(v[i])), b)
	}
	return out
}

func argMin(scores []float64) int {
	best := 0
	for i := 1; i < len(scores); i++ {
		if scores[i] < scores[best] {
			best = i
		}
	}
	return best
}

// pickThreeDistinct returns three population indices distinct from each
// other and from exclude, as DE/rand/1 requires.
func pickThreeDistinct(rng *rand.Rand, popSize, exclude int) (int, int, int) {
	pick := func(taken map[int]bool) int {
		for {
			idx := rng.Intn(popSize)
			if !taken[idx] {
				return idx
			}
		}
	}
	taken := map[int]bool{exclude: true}
	a := pick(taken)
	taken[a] = true
	b := pick(taken)
	taken[b] = true
	c := pick(taken)
	return a, b, c
}
