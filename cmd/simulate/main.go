// Command simulate runs headless combat sessions with a scripted player and
// prints a JSON summary.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"sync"

	"fusion-arena/internal/config"
	"fusion-arena/internal/content"
	"fusion-arena/internal/game"
	"fusion-arena/internal/logger"

	"github.com/sirupsen/logrus"
)

// runResult is the outcome of one session.
type runResult struct {
	Seed       int64         `json:"seed"`
	Duration   float64       `json:"duration"`
	Survived   bool          `json:"survived"`
	WaveIndex  int           `json:"waveIndex"`
	Phase      string        `json:"phase"`
	Kills      int           `json:"kills"`
	Experience int           `json:"experience"`
	Currency   int           `json:"currency"`
	Stats      game.SimStats `json:"stats"`
}

func main() {
	var contentDir, out string
	var seed int64
	var seconds float64
	var n, tps, workers int
	var infinite, verbose bool
	flag.StringVar(&contentDir, "content", "", "content dir (empty = built-in)")
	flag.StringVar(&out, "out", "-", "summary file, - for stdout")
	flag.Int64Var(&seed, "seed", 12345, "seed of the first run")
	flag.Float64Var(&seconds, "duration", 120, "simulated seconds per run")
	flag.IntVar(&n, "n", 1, "number of runs")
	flag.IntVar(&tps, "tps", 20, "ticks per simulated second")
	flag.IntVar(&workers, "workers", 4, "parallel runs")
	flag.BoolVar(&infinite, "infinite", false, "synthesize waves after the defined ones")
	flag.BoolVar(&verbose, "v", false, "log simulation events")
	flag.Parse()

	logger.Init()
	if !verbose {
		logger.Log.SetLevel(logrus.WarnLevel)
	}
	log := logger.For("simulate")

	catalog, err := content.Load(contentDir)
	if err != nil {
		log.WithError(err).Fatal("failed to load content")
	}

	cfg := config.Load()
	cfg.Combat.TickRate = tps
	cfg.Waves.Infinite = cfg.Waves.Infinite || infinite
	cfg.Waves.AutoStart = true

	n = max(n, 1)
	results := make([]runResult, n)
	jobs := make(chan int, n)
	var wg sync.WaitGroup
	var mu sync.Mutex
	var firstErr error
	for w := 0; w < max(workers, 1); w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				res, err := runOnce(cfg, catalog, seed+int64(i), seconds)
				mu.Lock()
				if err != nil && firstErr == nil {
					firstErr = err
				}
				results[i] = res
				mu.Unlock()
			}
		}()
	}
	for i := 0; i < n; i++ {
		jobs <- i
	}
	close(jobs)
	wg.Wait()
	if firstErr != nil {
		log.WithError(firstErr).Fatal("simulation failed")
	}

	var payload any = results[0]
	if n > 1 {
		payload = summarize(results)
	}
	b, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		log.WithError(err).Fatal("failed to encode summary")
	}
	b = append(b, '\n')

	if out == "-" {
		os.Stdout.Write(b)
		return
	}
	if err := os.WriteFile(out, b, 0644); err != nil {
		log.WithError(err).Fatal("failed to write summary")
	}
	fmt.Fprintf(os.Stderr, "%d run(s) finished -> %s\n", n, out)
}

// runOnce plays one seeded session for seconds of simulated time. The run
// ends early when the player dies or the waves complete.
func runOnce(cfg config.AppConfig, catalog *game.Catalog, seed int64, seconds float64) (runResult, error) {
	cfg.Combat.Seed = seed
	wallet := &game.Wallet{}
	sim, err := game.NewSimulation(cfg, catalog, game.SimulationOptions{Progression: wallet})
	if err != nil {
		return runResult{}, err
	}

	pilot := newPilot(sim)
	dt := 1.0 / float64(cfg.Combat.TickRate)
	for sim.Clock() < seconds {
		pilot.Act()
		sim.Step(dt)
		if !sim.Player().Alive {
			break
		}
		if sim.Waves().State().Phase == game.PhaseComplete {
			break
		}
	}

	st := sim.Waves().State()
	return runResult{
		Seed:       seed,
		Duration:   sim.Clock(),
		Survived:   sim.Player().Alive,
		WaveIndex:  st.WaveIndex,
		Phase:      string(st.Phase),
		Kills:      st.TotalKills,
		Experience: wallet.Experience,
		Currency:   wallet.Currency,
		Stats:      sim.Stats(),
	}, nil
}

func summarize(results []runResult) map[string]any {
	var survived, kills, fusions, damage int
	var waves, duration float64
	for _, r := range results {
		if r.Survived {
			survived++
		}
		kills += r.Kills
		fusions += r.Stats.FusionTriggers
		damage += r.Stats.DamageDealt
		waves += float64(r.WaveIndex)
		duration += r.Duration
	}
	runs := float64(len(results))
	return map[string]any{
		"runs":          len(results),
		"survival_rate": float64(survived) / runs,
		"avg_wave":      waves / runs,
		"avg_duration":  duration / runs,
		"avg_kills":     float64(kills) / runs,
		"avg_fusions":   float64(fusions) / runs,
		"avg_damage":    float64(damage) / runs,
	}
}
