package balance

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"slices"

	"github.com/google/uuid"

	"github.com/toropanov/capetica/internal/domain"
	"github.com/toropanov/capetica/internal/strategy"
)

// CheckConfig son los parámetros del check de aceptación.
type CheckConfig struct {
	Runs       int
	Turns      int
	ShortTurns int
	Seed       int64
}

// Umbrales del check.
const (
	maxSpeedrunWin            = 0.01
	maxUnfairLose             = 0.01
	maxBalancedBankruptcy     = 0.1
	minBalancedSustain        = 0.4
	maxBalancedSustain        = 0.8
	minAggressiveBankruptcy   = 0.1
	maxAggressiveBankruptcy   = 0.25
	maxConservativeBankruptcy = 0.05
	minStrategyGap            = 1000
	relStrategyGap            = 0.05
)

// Check juega balanced, aggressive y conservative con semillas Seed+1,
// Seed+2 y Seed+3, cortando cada partida en la primera victoria o derrota,
// y evalúa los criterios de aceptación.
func (r *Runner) Check(ctx context.Context, cfg CheckConfig) (domain.CheckResult, error) {
	policies := []string{strategy.Balanced, strategy.Aggressive, strategy.Conservative}
	results := make(map[string][]domain.RunOutcome, len(policies))
	for i, name := range policies {
		out, err := r.Run(ctx, RunSpec{
			Policy:    name,
			Runs:      cfg.Runs,
			Months:    cfg.Turns,
			Seed:      cfg.Seed + int64(i+1),
			StopOnWin: true,
		})
		if err != nil {
			return domain.CheckResult{}, fmt.Errorf("balance.Check: %s: %w", name, err)
		}
		results[name] = out
	}

	res := Evaluate(results[strategy.Balanced], results[strategy.Aggressive], results[strategy.Conservative], cfg.ShortTurns)
	res.ID = uuid.NewString()
	res.Runs = cfg.Runs
	res.Turns = cfg.Turns
	res.ShortTurns = cfg.ShortTurns
	res.Seed = cfg.Seed
	res.CheckedAt = r.now().UTC()

	slog.Info("balance: check complete",
		"id", res.ID,
		"acceptable", res.Acceptable,
		"failed", res.Failed,
	)
	if r.store != nil {
		if err := r.store.SaveCheckResult(ctx, res); err != nil {
			return res, fmt.Errorf("balance.Check: save: %w", err)
		}
	}
	return res, nil
}

// Evaluate calcula las métricas del check y el veredicto. Failed lista los
// criterios incumplidos en orden fijo.
func Evaluate(balanced, aggressive, conservative []domain.RunOutcome, shortTurns int) domain.CheckResult {
	all := slices.Concat(balanced, aggressive, conservative)
	m := domain.CheckMetrics{
		SpeedrunWin: share(all, func(o domain.RunOutcome) bool {
			return o.Won() && o.WinMonth <= shortTurns
		}),
		UnfairLose: share(balanced, func(o domain.RunOutcome) bool {
			return o.Lost() && o.BankruptMonth <= shortTurns
		}),
		BalancedBankruptcy:     share(balanced, domain.RunOutcome.Lost),
		AggressiveBankruptcy:   share(aggressive, domain.RunOutcome.Lost),
		ConservativeBankruptcy: share(conservative, domain.RunOutcome.Lost),
		BalancedSustain:        share(balanced, domain.RunOutcome.Sustained),
		MedianBalanced:         median(netWorths(balanced)),
		MedianAggressive:       median(netWorths(aggressive)),
		MedianConservative:     median(netWorths(conservative)),
	}
	m.StrategyGap = min(
		math.Abs(m.MedianAggressive-m.MedianBalanced),
		math.Abs(m.MedianBalanced-m.MedianConservative),
	)

	criteria := []struct {
		name string
		ok   bool
	}{
		{"speedrunWin", m.SpeedrunWin < maxSpeedrunWin},
		{"unfairLose", m.UnfairLose < maxUnfairLose},
		{"balancedBankruptcy", m.BalancedBankruptcy < maxBalancedBankruptcy},
		{"balancedSustain", m.BalancedSustain >= minBalancedSustain && m.BalancedSustain <= maxBalancedSustain},
		{"aggressiveBankruptcy", m.AggressiveBankruptcy >= minAggressiveBankruptcy && m.AggressiveBankruptcy <= maxAggressiveBankruptcy},
		{"conservativeBankruptcy", m.ConservativeBankruptcy < maxConservativeBankruptcy},
		{"medianOrder", m.MedianAggressive > m.MedianBalanced && m.MedianBalanced > m.MedianConservative},
		{"strategyGap", m.StrategyGap > max(minStrategyGap, math.Abs(m.MedianBalanced)*relStrategyGap)},
	}
	var failed []string
	for _, c := range criteria {
		if !c.ok {
			failed = append(failed, c.name)
		}
	}
	return domain.CheckResult{
		Acceptable: len(failed) == 0,
		Failed:     failed,
		Metrics:    m,
	}
}

func share(outcomes []domain.RunOutcome, pred func(domain.RunOutcome) bool) float64 {
	if len(outcomes) == 0 {
		return 0
	}
	n := 0
	for _, o := range outcomes {
		if pred(o) {
			n++
		}
	}
	return float64(n) / float64(len(outcomes))
}

// median promedia los dos centrales (redondeado) cuando la cantidad es par.
func median(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := slices.Sorted(slices.Values(values))
	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		return domain.RoundMoney((sorted[mid-1] + sorted[mid]) / 2)
	}
	return sorted[mid]
}

func netWorths(outcomes []domain.RunOutcome) []float64 {
	out := make([]float64, len(outcomes))
	for i, o := range outcomes {
		out[i] = o.NetWorth
	}
	return out
}
