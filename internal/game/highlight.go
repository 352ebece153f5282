package game

import (
	"math"

	"github.com/toropanov/capetica/internal/domain"
)

// highlightThreshold es el cambio mínimo que hace visible una métrica.
const highlightThreshold = 5

// highlight compara las métricas del estado previo con las del cierre y
// lista las compras y tratos del mes. nil si no hay nada que destacar.
func (g *Sim) highlight(prev domain.GameState, next domain.TurnMetrics) *domain.TurnHighlight {
	rules := g.rules()
	instruments := g.content.InstrumentMap()

	prevHoldings := domain.HoldingsValue(prev.Investments, prev.PriceState)
	prevPassive := domain.PassiveIncome(prev.Investments, prev.PriceState, instruments, rules.PassiveMultipliers) +
		domain.DealIncome(prev.DealParticipations)

	h := &domain.TurnHighlight{Month: prev.Month}
	visible := false
	for _, m := range []struct {
		key, label string
		prev, next float64
	}{
		{"cash", "Cash", prev.Cash, next.Cash},
		{"netWorth", "Net worth", domain.NetWorth(prev.Cash, prevHoldings, prev.Debt), next.NetWorth},
		{"passiveIncome", "Passive income", prevPassive, next.PassiveIncome},
		{"availableCredit", "Available credit", prev.AvailableCredit, next.AvailableCredit},
	} {
		p, n := domain.RoundMoney(m.prev), domain.RoundMoney(m.next)
		delta := domain.RoundMoney(n - p)
		if math.Abs(delta) >= highlightThreshold {
			visible = true
		}
		h.Metrics = append(h.Metrics, domain.HighlightMetric{Key: m.key, Label: m.label, Prev: p, Next: n, Delta: delta})
	}

	for _, id := range domain.SortedKeys(prev.LastPurchases) {
		buy := prev.LastPurchases[id]
		if buy.Turn != prev.Month {
			continue
		}
		in := instruments[id]
		h.Acquisitions = append(h.Acquisitions, domain.HighlightPurchase{
			InstrumentID: id,
			Title:        in.Title,
			Type:         in.Type,
			Amount:       buy.Amount,
			PassiveGain:  buy.PassiveGain,
		})
	}
	for _, d := range prev.DealParticipations {
		if d.Completed || d.StartedTurn != prev.Month {
			continue
		}
		h.Deals = append(h.Deals, domain.HighlightDeal{ParticipationID: d.ParticipationID, Title: d.Title, Payout: d.MonthlyPayout})
	}

	if !visible && len(h.Acquisitions) == 0 && len(h.Deals) == 0 {
		return nil
	}
	return h
}
