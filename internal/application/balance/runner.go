// Package balance juega miles de partidas automáticas con las políticas de
// strategy para medir si la economía del juego está bien calibrada.
package balance

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/toropanov/capetica/internal/domain"
	"github.com/toropanov/capetica/internal/game"
	"github.com/toropanov/capetica/internal/ports"
	"github.com/toropanov/capetica/internal/rng"
	"github.com/toropanov/capetica/internal/strategy"
)

// Rachas de meses con flujo positivo que cuentan como "sostenido" y
// "estable".
const (
	SustainStreak = 5
	StableStreak  = 6
)

var (
	// ErrUnknownPolicy indica que el nombre no está en el registro de estrategias.
	ErrUnknownPolicy = errors.New("unknown policy")
	// ErrNoProfessions indica que el contenido no trae profesiones para repartir.
	ErrNoProfessions = errors.New("content has no professions")
)

// Options configura el Runner.
type Options struct {
	// Workers <= 0 usa runtime.NumCPU().
	Workers int
	// Store es opcional; si está, los resultados se registran ahí.
	Store ports.ReportStore
}

// Runner reparte partidas entre un pool de workers.
type Runner struct {
	sim        *game.Sim
	strategies strategy.Registry
	workers    int
	store      ports.ReportStore
	now        func() time.Time
}

// NewRunner crea un runner sobre el simulador y las estrategias dadas.
func NewRunner(sim *game.Sim, strategies strategy.Registry, opts Options) *Runner {
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return &Runner{
		sim:        sim,
		strategies: strategies,
		workers:    workers,
		store:      opts.Store,
		now:        time.Now,
	}
}

// RunSpec describe una tanda de partidas de una misma política.
type RunSpec struct {
	Policy string
	Runs   int
	Months int
	Seed   int64
	// StopOnWin corta la partida en la primera victoria además de la derrota.
	StopOnWin bool
}

// Run juega spec.Runs partidas en paralelo. El resultado i siempre es la
// partida i, así que el agregado no depende de la cantidad de workers.
func (r *Runner) Run(ctx context.Context, spec RunSpec) ([]domain.RunOutcome, error) {
	p, ok := r.strategies.Get(spec.Policy)
	if !ok {
		return nil, fmt.Errorf("balance.Run: %w: %q", ErrUnknownPolicy, spec.Policy)
	}
	profs := r.sim.Content().Professions
	if len(profs) == 0 {
		return nil, fmt.Errorf("balance.Run: %w", ErrNoProfessions)
	}
	if spec.Runs <= 0 {
		return nil, nil
	}
	workers := min(r.workers, spec.Runs)

	type result struct {
		index   int
		outcome domain.RunOutcome
		err     error
	}
	workCh := make(chan int, spec.Runs)
	resultCh := make(chan result, spec.Runs)

	progress := rate.Sometimes{Interval: time.Second}
	var wg sync.WaitGroup
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range workCh {
				if ctx.Err() != nil {
					continue
				}
				prof := profs[i%len(profs)]
				seed := RunSeed(spec.Seed, spec.Policy, i, prof.ID)
				out, err := r.play(p, prof.ID, seed, spec.Months, spec.StopOnWin)
				resultCh <- result{index: i, outcome: out, err: err}
				progress.Do(func() {
					slog.Info("balance: progress", "policy", spec.Policy, "run", i+1, "runs", spec.Runs)
				})
			}
		}()
	}

	for i := range spec.Runs {
		workCh <- i
	}
	close(workCh)

	go func() {
		wg.Wait()
		close(resultCh)
	}()

	outcomes := make([]domain.RunOutcome, spec.Runs)
	var firstErr error
	for res := range resultCh {
		if res.err != nil && firstErr == nil {
			firstErr = res.err
		}
		outcomes[res.index] = res.outcome
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("balance.Run: %w", err)
	}
	if firstErr != nil {
		return nil, fmt.Errorf("balance.Run: %w", firstErr)
	}

	slog.Debug("balance: policy complete",
		"policy", spec.Policy,
		"runs", spec.Runs,
		"months", spec.Months,
		"workers", workers,
	)
	return outcomes, nil
}

// RunSeed deriva la semilla de la partida i a partir de la semilla base,
// la política y la profesión.
func RunSeed(base int64, policy string, i int, professionID string) uint32 {
	return rng.EnsureSeed(rng.SeedFromString(fmt.Sprintf("%d-%s-%d-%s", base, policy, i, professionID)))
}

// play juega una partida completa con la política p.
func (r *Runner) play(p strategy.Strategy, professionID string, seed uint32, months int, stopOnWin bool) (domain.RunOutcome, error) {
	s, err := r.sim.NewGame(professionID, game.Prefs{}, seed)
	if err != nil {
		return domain.RunOutcome{}, err
	}
	out := domain.RunOutcome{Profession: professionID}
	streak := 0
	for m := 1; m <= months; m++ {
		s = r.sim.AdvanceMonth(p.Act(r.sim, s))

		if ev := s.CurrentEvent; ev != nil && !ev.Prevented {
			out.Events++
			switch ev.Type {
			case "positive":
				out.EventsPos++
			case "negative":
				out.EventsNeg++
			}
		}
		if s.LastTurn != nil && s.LastTurn.Metrics.MonthlyCashFlow > 0 {
			streak++
			if out.PositiveMonth == 0 {
				out.PositiveMonth = m
			}
			if streak >= SustainStreak && out.SustainMonth == 0 {
				out.SustainMonth = m
			}
			if streak >= StableStreak && out.StableMonth == 0 {
				out.StableMonth = m
			}
		} else {
			streak = 0
		}
		if s.WinCondition != nil && out.WinMonth == 0 {
			out.WinMonth = m
		}
		if s.LoseCondition != nil && out.BankruptMonth == 0 {
			out.BankruptMonth = m
		}
		if out.Lost() || (stopOnWin && out.Won()) {
			break
		}
	}
	out.Cash = s.Cash
	out.NetWorth = s.NetWorthNow()
	return out, nil
}
