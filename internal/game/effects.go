package game

import (
	"github.com/toropanov/capetica/internal/credit"
	"github.com/toropanov/capetica/internal/domain"
)

// applyEffects aplica los efectos en su orden fijo sobre s, que ya es una
// copia. La deuda mueve también el libro de giros.
func applyEffects(s *domain.GameState, effects domain.Effects) {
	for _, e := range effects {
		switch e := e.(type) {
		case domain.CashDelta:
			s.Cash = domain.RoundMoney(s.Cash + e.Amount)
		case domain.SalaryBonusDelta:
			s.SalaryBonus = domain.RoundMoney(s.SalaryBonus + e.Amount)
		case domain.RecurringDelta:
			s.RecurringExpenses = max(0, domain.RoundMoney(s.RecurringExpenses+e.Amount))
		case domain.DebtDelta:
			applyDebtDelta(s, e.Amount)
		case domain.JoblessMonths:
			s.JoblessMonths = max(0, e.Months)
		case domain.SalaryCut:
			s.SalaryCutMonths = max(0, e.Months)
			s.SalaryCutAmount = max(0, domain.RoundMoney(e.Amount))
		}
	}
}

func applyDebtDelta(s *domain.GameState, amount float64) {
	ids := drawIDs(s)
	next := max(0, domain.RoundMoney(s.Debt+amount))
	draws := credit.Normalize(s.CreditDraws, s.Debt, ids)
	switch delta := domain.RoundMoney(amount); {
	case delta > 0:
		draws = credit.Append(draws, delta, s.Month, ids(s.Month), "")
	case delta < 0:
		draws, _ = credit.Consume(draws, -delta, "")
	}
	s.CreditDraws = credit.Normalize(draws, next, ids)
	s.Debt = next
}
