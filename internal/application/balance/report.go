package balance

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"slices"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/toropanov/capetica/internal/domain"
	"github.com/toropanov/capetica/internal/strategy"
)

// BankruptcyHorizon es el mes hasta el que se cuenta la quiebra temprana.
const BankruptcyHorizon = 50

// SimConfig son los parámetros del informe de simulación.
type SimConfig struct {
	Runs   int
	Months int
	Seed   int64
}

// Simulate juega las tres políticas por defecto durante cfg.Months meses,
// cortando solo por quiebra, y arma el informe estadístico.
func (r *Runner) Simulate(ctx context.Context, cfg SimConfig) (domain.SimReport, error) {
	report := domain.SimReport{
		Meta: domain.ReportMeta{
			ID:        uuid.NewString(),
			Seed:      cfg.Seed,
			Runs:      cfg.Runs,
			Months:    cfg.Months,
			Timestamp: r.now().UTC(),
		},
	}
	for _, name := range strategy.DefaultNames() {
		out, err := r.Run(ctx, RunSpec{Policy: name, Runs: cfg.Runs, Months: cfg.Months, Seed: cfg.Seed})
		if err != nil {
			return domain.SimReport{}, fmt.Errorf("balance.Simulate: %s: %w", name, err)
		}
		report.Summary = append(report.Summary, Summarize(name, cfg.Months, out))
	}

	slog.Info("balance: simulation complete",
		"id", report.Meta.ID,
		"runs", cfg.Runs,
		"months", cfg.Months,
	)
	if r.store != nil {
		if err := r.store.SaveSimReport(ctx, report); err != nil {
			return report, fmt.Errorf("balance.Simulate: save: %w", err)
		}
	}
	return report, nil
}

// Summarize agrega los resultados de una política. Los hitos que no
// ocurrieron no entran en sus series.
func Summarize(policy string, months int, outcomes []domain.RunOutcome) domain.PolicyReport {
	var positive, stable, bankrupt, win []float64
	netWorth := make([]float64, 0, len(outcomes))
	cash := make([]float64, 0, len(outcomes))
	total := make([]float64, 0, len(outcomes))
	pos := make([]float64, 0, len(outcomes))
	neg := make([]float64, 0, len(outcomes))
	early := 0
	for _, o := range outcomes {
		if o.PositiveMonth > 0 {
			positive = append(positive, float64(o.PositiveMonth))
		}
		if o.StableMonth > 0 {
			stable = append(stable, float64(o.StableMonth))
		}
		if o.Lost() {
			bankrupt = append(bankrupt, float64(o.BankruptMonth))
			if o.BankruptMonth <= BankruptcyHorizon {
				early++
			}
		}
		if o.Won() {
			win = append(win, float64(o.WinMonth))
		}
		netWorth = append(netWorth, o.NetWorth)
		cash = append(cash, o.Cash)
		total = append(total, float64(o.Events))
		pos = append(pos, float64(o.EventsPos))
		neg = append(neg, float64(o.EventsNeg))
	}

	rep := domain.PolicyReport{
		Policy:           policy,
		Runs:             len(outcomes),
		Months:           months,
		TimeToPositive:   ComputeStats(positive),
		TimeToStablePlus: ComputeStats(stable),
		TimeToBankrupt:   ComputeStats(bankrupt),
		TimeToWin:        ComputeStats(win),
		FinalNetWorth:    ComputeStats(netWorth),
		FinalCash:        ComputeStats(cash),
		Events: domain.EventStats{
			Total:    ComputeStats(total),
			Positive: ComputeStats(pos),
			Negative: ComputeStats(neg),
		},
	}
	if len(outcomes) > 0 {
		rep.BankruptcyWithin50.Rate = float64(early) / float64(len(outcomes))
	}
	return rep
}

// ComputeStats resume una serie. El percentil p toma el elemento
// floor(p·(n−1)) de la serie ordenada.
func ComputeStats(values []float64) domain.Stats {
	if len(values) == 0 {
		return domain.Stats{}
	}
	sorted := slices.Sorted(slices.Values(values))
	var sum float64
	for _, v := range values {
		sum += v
	}
	pick := func(p float64) float64 {
		return sorted[min(len(sorted)-1, int(math.Floor(p*float64(len(sorted)-1))))]
	}
	return domain.Stats{
		Count: len(values),
		Mean:  sum / float64(len(values)),
		Min:   sorted[0],
		Max:   sorted[len(sorted)-1],
		P10:   pick(0.1),
		P50:   pick(0.5),
		P90:   pick(0.9),
	}
}

// Markdown arma la versión legible del informe.
func Markdown(r domain.SimReport) string {
	var b strings.Builder
	b.WriteString("# Balance Simulation Report\n\n")
	fmt.Fprintf(&b, "Seed: %d\n", r.Meta.Seed)
	fmt.Fprintf(&b, "Runs per policy: %d\n", r.Meta.Runs)
	fmt.Fprintf(&b, "Months: %d\n", r.Meta.Months)
	for _, p := range r.Summary {
		fmt.Fprintf(&b, "\n## %s\n\n", p.Policy)
		fmt.Fprintf(&b, "- Time to positive cashflow (p50): %s\n", orNA(p.TimeToPositive.P50))
		fmt.Fprintf(&b, "- Time to stable plus (p50): %s\n", orNA(p.TimeToStablePlus.P50))
		fmt.Fprintf(&b, "- Time to bankruptcy (p50): %s\n", orNA(p.TimeToBankrupt.P50))
		fmt.Fprintf(&b, "- Bankruptcy within 50 months: %.2f%%\n", p.BankruptcyWithin50.Rate*100)
		fmt.Fprintf(&b, "- Final net worth p10/p50/p90: %.0f / %.0f / %.0f\n",
			p.FinalNetWorth.P10, p.FinalNetWorth.P50, p.FinalNetWorth.P90)
		fmt.Fprintf(&b, "- Events per run avg: %.2f (pos %.2f, neg %.2f)\n",
			p.Events.Total.Mean, p.Events.Positive.Mean, p.Events.Negative.Mean)
	}
	return b.String()
}

func orNA(v float64) string {
	if v == 0 {
		return "n/a"
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
