// Command cantus is a thin CLI wiring the library packages together: it
// either runs the population-based EA driver or the two-phase DFS driver
// over a Gregorian mode, emits the resulting tune in the line-oriented
// text notation, and optionally a Standard MIDI File alongside it.
//
// Grounded on sergei-shchetnikov-go-cantus-firmus's cmd/main.go (progress
// messages via fmt, log.Fatalf for setup errors), generalized from
// interactive stdin prompts to the standard flag package: no CLI
// framework appears anywhere in the retrieved reference repos.
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go-cantus-firmus/internal/cfgen"
	"go-cantus-firmus/internal/dfs"
	"go-cantus-firmus/internal/ea"
	"go-cantus-firmus/internal/fitness"
	"go-cantus-firmus/internal/midiexport"
	"go-cantus-firmus/internal/mode"
	"go-cantus-firmus/internal/musicxml"
	"go-cantus-firmus/internal/notation"
	"go-cantus-firmus/internal/pitch"
	"go-cantus-firmus/internal/rules"
	"go-cantus-firmus/internal/score"
	"go-cantus-firmus/internal/utils"
)

func main() {
	var (
		seed           = flag.Int64("random-seed", 1, "seed for the single owned RNG stream")
		tuneLength     = flag.Int("tune-length", 12, "total bar count of the generated tune")
		modeName       = flag.String("mode", "dorian", "Gregorian mode (major, dorian, phrygian, lydian, mixolydian, minor, locrian)")
		popSize        = flag.Int("pop-size", 0, "population size (0: algorithm default)")
		maxEvals       = flag.Int("max-evals", 0, "evaluation budget (0: algorithm default)")
		maxGenerations = flag.Int("max-generations", 0, "generation budget (0: algorithm default)")

		cantusFirmusPath = flag.String("cantus-firmus", "", "file (or - for stdin) holding a pre-fixed cantus firmus in notation format")
		geneFile         = flag.String("gene-file", "", "persisted search-trace file: read to resume, written with the winning allele vector")
		outputFile       = flag.String("output-file", "-", "notation output path (- for stdout)")
		midiFile         = flag.String("midi-file", "", "optional Standard MIDI File output path")
		tempo            = flag.Float64("tempo", 120, "MIDI export tempo in quarter notes per minute")
		musicxmlFile     = flag.String("musicxml-file", "", "optional MusicXML output path, written per voice as <base>-cf<ext> and <base>-cp<ext>")

		transpose   = flag.Int("transpose", 0, "semitones to transpose the whole tune before output")
		transposeCF = flag.Int("transpose-cf", 0, "additional semitones to transpose only the cantus-firmus voice")

		optimizeDepthFirst = flag.Bool("optimize-depth-first", false, "use the DFS backtracking driver instead of the EA driver")
		seedViaIntervals   = flag.Bool("seed-cf-via-intervals", false, "seed/cross-check DFS Phase 1 with cfgen's exhaustive interval enumerator")
		leaps              = flag.Int("leaps", 2, "the one diatonic leap size (in scale degrees, besides single steps) candidates may use when --seed-cf-via-intervals is set; the number of leaps is not limited")

		useDE         = flag.Bool("use-de", false, "use differential evolution instead of the genetic algorithm")
		deVariant     = flag.String("de-variant", "rand/1/bin", "DE variant (only rand/1/bin is implemented)")
		crossoverProb = flag.Float64("crossover-prob", 0, "DE crossover probability (0: algorithm default)")
		jitter        = flag.Float64("jitter", 0, "DE jitter (0: algorithm default)")
		scaleFactor   = flag.Float64("scale-factor", 0, "DE scale factor (0: algorithm default)")

		checks          = flag.String("checks", "default", "rule battery: default or special")
		allowUgliness   = flag.Bool("allow-ugliness", false, "relax DFS pruning and the --cantus-firmus check to ignore soft (ugliness) violations; EA fitness scoring is unchanged")
		noCheckCF       = flag.Bool("no-check-cf", false, "skip rule-checking a supplied --cantus-firmus (requires --cantus-firmus)")
		noCFFeasibility = flag.Bool("no-cf-feasibility", false, "skip the DFS last-four-bars CF feasibility pre-check")
		explainCPCF     = flag.Bool("explain-cp-cf", false, "print the whole tune's badness, ugliness and fitness after generation")
		verbose         = flag.Bool("verbose", false, "print progress messages")
	)
	flag.Parse()

	if *noCheckCF && *cantusFirmusPath == "" {
		fmt.Fprintln(os.Stderr, "cantus: --no-check-cf requires --cantus-firmus")
		os.Exit(1)
	}

	authentic, _, ok := mode.ByName(strings.ToLower(*modeName))
	if !ok {
		fmt.Fprintf(os.Stderr, "cantus: unknown mode %q\n", *modeName)
		os.Exit(1)
	}
	g := authentic

	var battery *rules.Battery
	switch *checks {
	case "default":
		battery = rules.DefaultBattery()
	case "special":
		battery = rules.SpecialBattery()
	default:
		fmt.Fprintf(os.Stderr, "cantus: --checks must be default or special, got %q\n", *checks)
		os.Exit(1)
	}

	const unit = 8
	opt := dfs.Options{Seed: *seed, AllowUgliness: *allowUgliness, CFFeasibility: !*noCFFeasibility}

	var tune *score.Tune

	switch {
	case *cantusFirmusPath != "":
		cfDegrees, err := loadCantusFirmus(*cantusFirmusPath, g)
		if err != nil {
			log.Fatalf("cantus: reading --cantus-firmus: %v", err)
		}
		if len(cfDegrees) != *tuneLength {
			log.Fatalf("cantus: supplied cantus firmus has %d bars, want --tune-length %d", len(cfDegrees), *tuneLength)
		}
		if !*noCheckCF && !cfPassesBattery(g, cfDegrees, battery, opt) {
			fmt.Fprintln(os.Stderr, "cantus: supplied --cantus-firmus fails the rule battery (pass --no-check-cf to use it anyway)")
			os.Exit(1)
		}
		if *verbose {
			fmt.Println("Filling contrapunctus against the supplied cantus firmus...")
		}
		tune, err = dfs.SearchCP(g, cfDegrees, unit, battery, opt)
		if err == dfs.ErrInfeasible {
			fmt.Println("Infeasible: no contrapunctus satisfies the rule battery against this cantus firmus.")
			return
		}
		if err != nil {
			log.Fatalf("cantus: %v", err)
		}

	case *optimizeDepthFirst:
		var cfDegrees []int
		var err error
		if *seedViaIntervals {
			cfDegrees, err = seedCFViaIntervals(g, *tuneLength, *leaps, battery, opt)
		} else {
			cfDegrees, err = dfs.SearchCF(g, *tuneLength, battery, opt)
		}
		if err == dfs.ErrInfeasible {
			fmt.Println("Infeasible: no cantus firmus satisfies the rule battery.")
			return
		}
		if err != nil {
			log.Fatalf("cantus: %v", err)
		}
		if *verbose {
			fmt.Println("Cantus firmus found, filling contrapunctus...")
		}
		tune, err = dfs.SearchCP(g, cfDegrees, unit, battery, opt)
		if err == dfs.ErrInfeasible {
			fmt.Println("Infeasible: no contrapunctus satisfies the rule battery.")
			return
		}
		if err != nil {
			log.Fatalf("cantus: %v", err)
		}

	default:
		problem := ea.Problem{Mode: g, Length: *tuneLength, Unit: unit, Battery: battery}
		var cfg ea.Config
		if *useDE {
			cfg = ea.DefaultDEConfig(*seed)
			cfg.DEVariant = *deVariant
			if *crossoverProb != 0 {
				cfg.CrossoverProb = *crossoverProb
			}
			if *jitter != 0 {
				cfg.Jitter = *jitter
			}
			if *scaleFactor != 0 {
				cfg.ScaleFactor = *scaleFactor
			}
		} else {
			cfg = ea.DefaultGAConfig(*seed)
		}
		if *popSize != 0 {
			cfg.PopSize = *popSize
		}
		if *maxEvals != 0 {
			cfg.MaxEvals = *maxEvals
		}
		if *maxGenerations != 0 {
			cfg.MaxGenerations = *maxGenerations
		}

		if *geneFile != "" {
			if vec, err := readTrace(*geneFile, problem.VectorLen()); err == nil {
				fitnessVal, resumed := problem.Score(vec)
				if resumed != nil {
					if *verbose {
						fmt.Printf("Resumed from %s, fitness %g\n", *geneFile, fitnessVal)
					}
					tune = resumed
					break
				}
			}
		}

		if *verbose {
			fmt.Println("Searching...")
		}
		start := time.Now()
		result, err := ea.Minimize(problem, cfg)
		if err != nil {
			log.Fatalf("cantus: %v", err)
		}
		if *verbose {
			fmt.Printf("Done in %s: fitness %g over %d generations, %d evaluations\n",
				time.Since(start).Round(time.Millisecond), result.BestFitness, result.Generations, result.Evals)
		}
		tune = result.BestTune

		if *geneFile != "" && tune != nil {
			if err := writeTrace(*geneFile, strings.Join(os.Args[1:], " "), result.Best); err != nil {
				fmt.Fprintf(os.Stderr, "cantus: writing --gene-file: %v\n", err)
			}
		}
	}

	if tune == nil {
		fmt.Println("Infeasible: no tune satisfies the rule battery.")
		return
	}

	if *transposeCF != 0 {
		if err := transposeVoice(tune.Voices[0], *transposeCF); err != nil {
			log.Fatalf("cantus: --transpose-cf: %v", err)
		}
	}
	if *transpose != 0 {
		for _, v := range tune.Voices {
			if err := transposeVoice(v, *transpose); err != nil {
				log.Fatalf("cantus: --transpose: %v", err)
			}
		}
	}

	if *explainCPCF {
		eval := fitness.Evaluate(tune, battery)
		fmt.Printf("badness=%g ugliness=%g fitness=%g\n", eval.Badness, eval.Ugliness, eval.Fitness)
	}

	if err := writeOutput(*outputFile, notation.Emit(tune)); err != nil {
		log.Fatalf("cantus: writing --output-file: %v", err)
	}

	if *midiFile != "" {
		if err := midiexport.Write(tune, *midiFile, *tempo); err != nil {
			log.Fatalf("cantus: writing --midi-file: %v", err)
		}
	}

	if *musicxmlFile != "" {
		if err := writeMusicXML(tune, *musicxmlFile); err != nil {
			log.Fatalf("cantus: writing --musicxml-file: %v", err)
		}
	}
}

// writeMusicXML renders the cantus firmus and contrapunctus voices as two
// sibling MusicXML documents, since musicxml.WriteVoice emits one part at
// a time: path "out.xml" becomes "out-cf.xml" and "out-cp.xml".
func writeMusicXML(tune *score.Tune, path string) error {
	ext := filepath.Ext(path)
	base := strings.TrimSuffix(path, ext)
	if err := musicxml.WriteVoice(tune, tune.Voices[0], "Cantus Firmus", base+"-cf"+ext); err != nil {
		return err
	}
	return musicxml.WriteVoice(tune, tune.Voices[1], "Contrapunctus", base+"-cp"+ext)
}

// seedCFViaIntervals exercises cfgen's exhaustive interval enumerator as an
// alternative Phase-1 source: every candidate step sequence it produces is
// screened for augmented/diminished melodic intervals and for five
// consecutive steps drifting the same direction, converted to scale-degree
// indices, and checked against the same rule battery dfs.SearchCF would
// use; one of the survivors is then drawn at random
// (utils.SelectRandomItems, seeded from opt.Seed) rather than always
// taking the first, mirroring the "randomly select N out of M generated
// candidates" step of sergei-shchetnikov-go-cantus-firmus's own
// cmd/main.go. Falls back to dfs.SearchCF if cfgen finds no survivor.
func seedCFViaIntervals(g *mode.Gregorian, length, numLeaps int, battery *rules.Battery, opt dfs.Options) ([]int, error) {
	sequences := cfgen.GenerateCantusIntervals(length-1, []int{numLeaps})
	var survivors [][]int
	for _, seq := range sequences {
		notes := cfgen.Realize(g, seq)
		degrees := make([]int, len(notes))
		degree := 0
		degrees[0] = 0
		for i, step := range seq {
			degree += step
			degrees[i+1] = degree
		}
		if !cfgen.IsFreeOfAugmentedDiminished(notes, degrees) {
			continue
		}
		if !cfgen.NoFiveOfSameSign(seq) {
			continue
		}
		if cfPassesBattery(g, degrees, battery, opt) {
			survivors = append(survivors, degrees)
		}
	}
	if len(survivors) == 0 {
		return dfs.SearchCF(g, length, battery, opt)
	}
	picked := utils.SelectRandomItems(rand.New(rand.NewSource(opt.Seed)), survivors, 1)
	return picked[0], nil
}

func cfPassesBattery(g *mode.Gregorian, degrees []int, battery *rules.Battery, opt dfs.Options) bool {
	battery.Reset()
	cf := (&score.Tune{Unit: 1}).AddVoice("CF")
	for _, d := range degrees {
		o := &score.Object{Halftone: g.At(d), Duration: 1}
		if err := cf.AddBar(1).Add(o); err != nil {
			return false
		}
		for _, r := range battery.MelodyCF {
			res := r.CheckMelody(o)
			if res.Badness > 0 {
				return false
			}
			if !opt.AllowUgliness && res.Ugliness > 0 {
				return false
			}
		}
	}
	return true
}

func transposeVoice(v *score.Voice, semitones int) error {
	for _, bar := range v.Bars {
		for _, o := range bar.Objects {
			if o.IsPause() {
				continue
			}
			t, err := pitch.Transpose(o.Halftone, semitones)
			if err != nil {
				return err
			}
			o.Halftone = t
		}
	}
	return nil
}

func loadCantusFirmus(path string, g *mode.Gregorian) ([]int, error) {
	text, err := readInput(path)
	if err != nil {
		return nil, err
	}
	tune, err := notation.Parse(text)
	if err != nil {
		return nil, err
	}
	if len(tune.Voices) == 0 {
		return nil, fmt.Errorf("no voices in supplied cantus firmus")
	}
	voice := tune.Voices[0]
	degrees := make([]int, len(voice.Bars))
	for i, bar := range voice.Bars {
		if len(bar.Objects) == 0 {
			return nil, fmt.Errorf("bar %d of supplied cantus firmus is empty", i)
		}
		d, err := degreeOf(g, bar.Objects[0].Halftone)
		if err != nil {
			return nil, fmt.Errorf("bar %d: %w", i, err)
		}
		degrees[i] = d
	}
	return degrees, nil
}

// degreeOf reverse-looks-up the scale-degree index a halftone occupies in
// g's ambitus, the inverse of mode.Gregorian.At.
func degreeOf(g *mode.Gregorian, h *pitch.Halftone) (int, error) {
	for d := -14; d <= 14; d++ {
		if g.At(d) == h {
			return d, nil
		}
	}
	return 0, fmt.Errorf("halftone %v is not reachable from this mode's ambitus", h)
}

func readInput(path string) (string, error) {
	if path == "-" {
		b, err := io.ReadAll(os.Stdin)
		return string(b), err
	}
	b, err := os.ReadFile(path)
	return string(b), err
}

func writeOutput(path, text string) error {
	if path == "" || path == "-" {
		_, err := fmt.Print(text)
		return err
	}
	return os.WriteFile(path, []byte(text), 0644)
}
