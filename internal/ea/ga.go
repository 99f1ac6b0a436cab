package ea

import (
	"math/rand"

	"go-cantus-firmus/internal/score"
)

// individual is one scored population member: a flat allele vector plus
// its cached fitness.
type individual struct {
	genes []int
	score float64
}

// minimizeGA runs the genetic algorithm variant: elitism of the top two,
// tournament selection for the rest, two-point crossover, and a mutation
// rate that rises with generations spent without improvement.
func minimizeGA(p Problem, cfg Config) (Result, error) {
	rng := rand.New(rand.NewSource(cfg.Seed))
	bounds := p.Bounds()
	n := len(bounds)

	pop := make([][]int, cfg.PopSize)
	for i := range pop {
		genes := make([]int, n)
		for j, b := range bounds {
			genes[j] = randInBounds(rng, b)
		}
		pop[i] = genes
	}

	var best individual
	best.score = posInf
	evals := 0
	withoutImprovement := 0
	gensRun := 0

	for gen := 0; cfg.MaxGenerations <= 0 || gen < cfg.MaxGenerations; gen++ {
		gensRun = gen + 1
		scored := make([]individual, len(pop))
		for i, genes := range pop {
			fitnessVal, _ := p.Score(genes)
			scored[i] = individual{genes: genes, score: fitnessVal}
			evals++
			if cfg.MaxEvals > 0 && evals >= cfg.MaxEvals {
				scored = scored[:i+1]
				break
			}
		}

		sortByScore(scored)

		improved := false
		if scored[0].score < best.score {
			best = individual{genes: append([]int(nil), scored[0].genes...), score: scored[0].score}
			improved = true
		}
		if improved {
			withoutImprovement = 0
		} else {
			withoutImprovement++
		}

		if best.score <= 1 {
			break
		}
		if cfg.MaxEvals > 0 && evals >= cfg.MaxEvals {
			break
		}

		next := make([][]int, cfg.PopSize)
		next[0] = append([]int(nil), scored[0].genes...)
		if len(scored) > 1 {
			next[1] = append([]int(nil), scored[1].genes...)
		} else {
			next[1] = append([]int(nil), scored[0].genes...)
		}

		mutationRate := minMutationRate + (float64(withoutImprovement)/mutationDecayGen)*(maxMutationRate-minMutationRate)
		if mutationRate > maxMutationRate {
			mutationRate = maxMutationRate
		}

		for i := 2; i < cfg.PopSize; i++ {
			parentA := tournamentSelect(scored, rng)
			parentB := tournamentSelect(scored, rng)
			child := twoPointCrossover(parentA, parentB, rng)
			if rng.Float64() < mutationRate {
				mutate(child, bounds, rng)
			}
			next[i] = child
		}

		pop = next
	}

	tune := finalizeTune(p, best.genes)
	g := p.toGenome(best.genes)
	return Result{
		Best: best.genes, BestGenome: g, BestTune: tune, BestFitness: best.score,
		Generations: gensRun, Evals: evals,
	}, nil
}

const posInf = 1e300

func sortByScore(scored []individual) {
	for i := 1; i < len(scored); i++ {
		j := i
		for j > 0 && scored[j-1].score > scored[j].score {
			scored[j-1], scored[j] = scored[j], scored[j-1]
			j--
		}
	}
}

func tournamentSelect(scored []individual, rng *rand.Rand) []int {
	bestIdx := rng.Intn(len(scored))
	for k := 1; k < tournamentSize; k++ {
		idx := rng.Intn(len(scored))
		if scored[idx].score < scored[bestIdx].score {
			bestIdx = idx
		}
	}
	return scored[bestIdx].genes
}

func twoPointCrossover(a, b []int, rng *rand.Rand) []int {
	n := len(a)
	child := make([]int, n)
	i, j := rng.Intn(n), rng.Intn(n)
	if i > j {
		i, j = j, i
	}
	for k := 0; k < n; k++ {
		if k >= i && k <= j {
			child[k] = b[k]
		} else {
			child[k] = a[k]
		}
	}
	return child
}

func mutate(genes []int, bounds []Bounds, rng *rand.Rand) {
	swaps := 1 + rng.Intn(3)
	for s := 0; s < swaps; s++ {
		idx := rng.Intn(len(genes))
		genes[idx] = randInBounds(rng, bounds[idx])
	}
}

func finalizeTune(p Problem, genes []int) *score.Tune {
	if genes == nil {
		return nil
	}
	_, tune := p.Score(genes)
	return tune
}
