package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"

	"github.com/toropanov/capetica/internal/domain"
)

// Console implementa ports.Notifier.
type Console struct {
	out io.Writer

	accent  *color.Color
	success *color.Color
	danger  *color.Color
	warn    *color.Color
}

// NewConsole crea un notificador que escribe a stdout.
func NewConsole() *Console {
	return newConsole(os.Stdout)
}

// NewConsoleWriter crea un notificador sin colores para tests.
func NewConsoleWriter(w io.Writer) *Console {
	c := newConsole(w)
	for _, col := range []*color.Color{c.accent, c.success, c.danger, c.warn} {
		col.DisableColor()
	}
	return c
}

func newConsole(w io.Writer) *Console {
	return &Console{
		out:     w,
		accent:  color.New(color.FgCyan, color.Bold),
		success: color.New(color.FgGreen, color.Bold),
		danger:  color.New(color.FgRed, color.Bold),
		warn:    color.New(color.FgYellow),
	}
}

// --- Partida ---

// NotifyTurn imprime el resumen del mes: métricas, evento, posiciones y log.
func (c *Console) NotifyTurn(_ context.Context, s domain.GameState) error {
	if !s.Started() {
		fmt.Fprintln(c.out, "no game in progress")
		return nil
	}
	c.accent.Fprintf(c.out, "\n== MONTH %d (%s, %s) ==\n", s.Month, s.ProfessionID, s.Difficulty)

	table := tablewriter.NewWriter(c.out)
	table.Header("Metric", "Value", "Δ")
	deltas := map[string]float64{}
	if h := s.TurnHighlight; h != nil {
		for _, m := range h.Metrics {
			deltas[m.Key] = m.Delta
		}
	}
	row := func(key, label string, v float64) {
		d := ""
		if delta, ok := deltas[key]; ok {
			d = signed(delta)
		}
		table.Append(label, usd(v), d)
	}
	row("cash", "Cash", s.Cash)
	row("netWorth", "Net worth", s.NetWorthNow())
	if lt := s.LastTurn; lt != nil {
		row("passiveIncome", "Passive income", lt.PassiveIncome)
		row("", "Salary", lt.Salary)
		row("", "Expenses", lt.EffectiveRecurring)
		row("", "Cash flow", lt.Metrics.MonthlyCashFlow)
	}
	row("", "Debt", s.Debt)
	row("availableCredit", "Available credit", s.AvailableCredit)
	table.Render()

	if ev := s.CurrentEvent; ev != nil {
		if ev.Prevented {
			c.success.Fprintf(c.out, "  %s (prevented)\n", ev.Title)
		} else {
			fmt.Fprintf(c.out, "  %s\n", ev.Message)
		}
	}
	if lt := s.LastTurn; lt != nil {
		for _, w := range lt.StopLossWarnings {
			c.warn.Fprintf(c.out, "  %s\n", w)
		}
	}

	c.printHoldings(s)

	for _, e := range s.RecentLog {
		if e.Month == s.Month {
			fmt.Fprintf(c.out, "  · %s\n", e.Text)
		}
	}

	switch {
	case s.WinCondition != nil:
		c.success.Fprintf(c.out, "\n  WIN: %s (month %d)\n\n", goalLabel(*s.WinCondition), s.WinCondition.Month)
	case s.LoseCondition != nil:
		c.danger.Fprintf(c.out, "\n  LOSE: %s (month %d)\n\n", goalLabel(*s.LoseCondition), s.LoseCondition.Month)
	}
	return nil
}

func (c *Console) printHoldings(s domain.GameState) {
	if len(s.Investments) == 0 {
		return
	}
	table := tablewriter.NewWriter(c.out)
	table.Header("Instrument", "Units", "Price", "Value", "P&L")
	for _, id := range domain.SortedKeys(s.Investments) {
		h := s.Investments[id]
		price := s.PriceState[id].Price
		value := h.Units * price
		table.Append(
			id,
			fmt.Sprintf("%.2f", h.Units),
			fmt.Sprintf("%.2f", price),
			usd(value),
			signed(value-h.Units*h.CostBasis),
		)
	}
	table.Render()
}

// PrintGames lista partidas guardadas.
func (c *Console) PrintGames(games []domain.GameSummary) {
	if len(games) == 0 {
		fmt.Fprintln(c.out, "no saved games")
		return
	}
	table := tablewriter.NewWriter(c.out)
	table.Header("Game", "Profession", "Month", "Net worth", "Outcome", "Updated")
	for _, g := range games {
		outcome := g.Outcome
		if outcome == "" {
			outcome = "playing"
		}
		table.Append(g.ID, g.ProfessionID, fmt.Sprintf("%d", g.Month), usd(g.NetWorth), outcome, humanize.Time(g.UpdatedAt))
	}
	table.Render()
}

// --- Harness ---

// NotifyCheck imprime las métricas del check y el veredicto.
func (c *Console) NotifyCheck(_ context.Context, r domain.CheckResult) error {
	c.accent.Fprintf(c.out, "\n== BALANCE CHECK (runs %d, turns %d, seed %d) ==\n", r.Runs, r.Turns, r.Seed)

	m := r.Metrics
	table := tablewriter.NewWriter(c.out)
	table.Header("Metric", "Value", "Target")
	table.Append("speedrunWin", pct(m.SpeedrunWin), "< 1%")
	table.Append("unfairLose", pct(m.UnfairLose), "< 1%")
	table.Append("balancedBankruptcy", pct(m.BalancedBankruptcy), "< 10%")
	table.Append("balancedSustain", pct(m.BalancedSustain), "40% – 80%")
	table.Append("aggressiveBankruptcy", pct(m.AggressiveBankruptcy), "10% – 25%")
	table.Append("conservativeBankruptcy", pct(m.ConservativeBankruptcy), "< 5%")
	table.Append("medianAggressive", usd(m.MedianAggressive), "> balanced")
	table.Append("medianBalanced", usd(m.MedianBalanced), "> conservative")
	table.Append("medianConservative", usd(m.MedianConservative), "")
	table.Append("strategyGap", usd(m.StrategyGap), fmt.Sprintf("> %s", usd(math.Max(1000, math.Abs(m.MedianBalanced)*0.05))))
	table.Render()

	if r.Acceptable {
		c.success.Fprintln(c.out, "  PASS")
	} else {
		c.danger.Fprintf(c.out, "  FAIL: %v\n", r.Failed)
	}

	// el mismo veredicto en JSON, para CI
	out, err := json.MarshalIndent(checkJSON{
		Acceptable: r.Acceptable,
		Failed:     r.Failed,
		Metrics:    r.Metrics,
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("notify.NotifyCheck: marshal: %w", err)
	}
	fmt.Fprintln(c.out, string(out))
	return nil
}

type checkJSON struct {
	Acceptable bool                `json:"acceptable"`
	Failed     []string            `json:"failed"`
	Metrics    domain.CheckMetrics `json:"metrics"`
}

// NotifyReport imprime una fila por política.
func (c *Console) NotifyReport(_ context.Context, r domain.SimReport) error {
	c.accent.Fprintf(c.out, "\n== BALANCE SIMULATION (runs %d, months %d, seed %d) ==\n", r.Meta.Runs, r.Meta.Months, r.Meta.Seed)

	table := tablewriter.NewWriter(c.out)
	table.Header("Policy", "Positive p50", "Stable p50", "Bankrupt p50", "Bankrupt ≤50", "NW p10", "NW p50", "NW p90", "Events")
	for _, p := range r.Summary {
		table.Append(
			p.Policy,
			monthOrNA(p.TimeToPositive),
			monthOrNA(p.TimeToStablePlus),
			monthOrNA(p.TimeToBankrupt),
			pct(p.BankruptcyWithin50.Rate),
			usd(p.FinalNetWorth.P10),
			usd(p.FinalNetWorth.P50),
			usd(p.FinalNetWorth.P90),
			fmt.Sprintf("%.2f", p.Events.Total.Mean),
		)
	}
	table.Render()
	return nil
}

// --- helpers ---

func usd(v float64) string {
	r := domain.RoundMoney(v)
	if r < 0 {
		return "-$" + humanize.Comma(int64(-r))
	}
	return "$" + humanize.Comma(int64(r))
}

func signed(v float64) string {
	if domain.RoundMoney(v) > 0 {
		return "+" + usd(v)
	}
	return usd(v)
}

func pct(v float64) string {
	return fmt.Sprintf("%.2f%%", v*100)
}

func monthOrNA(s domain.Stats) string {
	if s.Count == 0 {
		return "n/a"
	}
	return fmt.Sprintf("%.0f", s.P50)
}

func goalLabel(g domain.GoalOutcome) string {
	if g.Title != "" {
		return g.Title
	}
	return g.RuleID
}
