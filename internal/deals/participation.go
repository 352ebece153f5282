package deals

import (
	"slices"

	"github.com/toropanov/capetica/internal/domain"
)

// NewParticipation crea la participación del jugador en un trato.
func NewParticipation(id string, t domain.DealTemplate, month int) domain.DealParticipation {
	return domain.DealParticipation{
		ParticipationID: id,
		DealID:          t.ID,
		Title:           t.Title,
		Invested:        t.EntryCost,
		MonthlyPayout:   t.MonthlyPayout,
		DurationMonths:  t.DurationMonths,
		Risk:            t.RiskMeter,
		StartedTurn:     month,
	}
}

// Mature avanza un mes cada participación activa. Una participación
// completada deja de pagar pero queda en el histórico.
func Mature(ps []domain.DealParticipation) []domain.DealParticipation {
	out := slices.Clone(ps)
	for i := range out {
		p := &out[i]
		if p.Completed {
			continue
		}
		p.ElapsedMonths = min(p.DurationMonths, p.ElapsedMonths+1)
		p.ProfitEarned = domain.RoundMoney(p.ProfitEarned + p.MonthlyPayout)
		p.Completed = p.ElapsedMonths >= p.DurationMonths
	}
	return out
}
