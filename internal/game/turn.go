package game

import (
	"fmt"
	"math"
	"slices"

	"github.com/toropanov/capetica/internal/credit"
	"github.com/toropanov/capetica/internal/deals"
	"github.com/toropanov/capetica/internal/domain"
	"github.com/toropanov/capetica/internal/events"
	"github.com/toropanov/capetica/internal/market"
)

// stopLossRatio: una posición apalancada se liquida cuando el precio cae a
// la mitad del costo medio apalancado o menos.
const stopLossRatio = 0.5

// AdvanceMonth cierra el mes en curso. Sin profesión devuelve la entrada.
//
// El orden es fijo: mercado, stop-loss, salario, gastos, interés, caja,
// tratos, evento, ofertas y ventanas, crédito de emergencia y metas.
func (g *Sim) AdvanceMonth(prev domain.GameState) domain.GameState {
	p, ok := g.content.Profession(prev.ProfessionID)
	if !ok {
		return prev
	}
	rules := g.rules()
	s := prev.Clone()
	month := prev.Month
	ids := drawIDs(&s)

	tick := market.Simulate(month, s.PriceState, g.content.Instruments, &g.content.Markets, s.RNGSeed, s.ShockState)
	s.PriceState, s.ShockState = tick.Prices, tick.Shocks
	seed := tick.Seed

	s.CreditDraws = credit.Normalize(s.CreditDraws, s.Debt, ids)

	autoLiq, stopLoss := g.stopLoss(&s)

	instruments := g.content.InstrumentMap()
	holdings := domain.HoldingsValue(s.Investments, s.PriceState)
	passive := domain.RoundMoney(
		domain.PassiveIncome(s.Investments, s.PriceState, instruments, rules.PassiveMultipliers) +
			domain.DealIncome(s.DealParticipations))

	salary := realizeSalary(&s, progressSalary(&s, p))

	recurring := domain.RoundMoney(s.RecurringExpenses)
	// el extra progresivo mira la caja con la que se abrió el mes
	progressive := domain.ProgressiveExpense(rules.ProgressiveExpenses, prev.Cash, salary)
	maintenance := domain.MaintenanceExpense(rules.AssetMaintenance, holdings)
	effective := domain.RoundMoney(recurring + progressive + maintenance)

	baseDebt := max(0, domain.RoundMoney(s.Debt))
	interest := domain.RoundMoney(baseDebt * rules.Loans.APR)
	s.Debt = max(0, domain.RoundMoney(baseDebt+interest))
	if interest > 0 && s.Debt > 0 {
		s.CreditDraws = credit.ApplyInterest(s.CreditDraws, interest)
	}
	s.CreditDraws = credit.Normalize(s.CreditDraws, s.Debt, ids)

	s.Cash = domain.RoundMoney(s.Cash + salary + passive - effective + autoLiq)
	s.DealParticipations = deals.Mature(s.DealParticipations)

	roll := events.RollEvent(g.content.Events, rules.Difficulty.EventChance(s.Difficulty), s.Protections, seed)
	seed = roll.Seed
	if roll.Prevented {
		s.Protections[roll.Event.ProtectionKey] = false
	}
	if roll.Applies() {
		applyEffects(&s, roll.Event.Effect)
	}

	s.AvailableActions, seed = g.rollOffers(seed)
	s.DealWindows, seed = deals.Advance(s.DealWindows, g.content.Deals, seed)
	s.RNGSeed = seed

	// el evento puede haber tocado gastos fijos
	effective = domain.RoundMoney(s.RecurringExpenses + progressive + maintenance)

	creditSalary := p.SalaryMonthly + s.SalaryBonus
	netWorth := domain.NetWorth(s.Cash, holdings, s.Debt)
	s.CreditLimit = domain.CreditLimit(p, netWorth, creditSalary, rules.Loans.CreditLimit)
	s.AvailableCredit = s.CreditLimit - s.Debt

	emergency := credit.EmergencyDraw(rules.EmergencyCredit, s.Cash, s.AvailableCredit, effective)
	if emergency > 0 {
		s.CreditDraws = credit.Append(s.CreditDraws, emergency, month, ids(month), "Emergency credit")
		s.Cash = domain.RoundMoney(s.Cash + emergency)
		s.Debt = domain.RoundMoney(s.Debt + emergency)
		netWorth = domain.NetWorth(s.Cash, holdings, s.Debt)
		s.CreditLimit = domain.CreditLimit(p, netWorth, creditSalary, rules.Loans.CreditLimit)
		s.AvailableCredit = s.CreditLimit - s.Debt
	}

	cashFlow := salary + passive - effective
	metrics := domain.TurnMetrics{
		Cash:              s.Cash,
		NetWorth:          netWorth,
		PassiveIncome:     passive,
		RecurringExpenses: effective,
		MonthlyCashFlow:   cashFlow,
		DebtDelta:         interest,
		Debt:              s.Debt,
		AvailableCredit:   s.AvailableCredit,
	}
	goals := domain.EvaluateGoals(rules.Win, rules.Lose, s.Trackers, metrics)
	s.Trackers = goals.Trackers
	if s.WinCondition == nil && goals.Win != nil {
		s.WinCondition = &domain.GoalOutcome{RuleID: goals.Win.ID, Type: goals.Win.Type, Title: goals.Win.Title, Month: month + 1}
	}
	if s.LoseCondition == nil && goals.Lose != nil {
		s.LoseCondition = &domain.GoalOutcome{RuleID: goals.Lose.ID, Type: goals.Lose.Type, Title: goals.Lose.Title, Month: month + 1}
	}

	s.TurnHighlight = g.highlight(prev, metrics)

	s.Month = month + 1
	s.History.NetWorth = appendHistory(s.History.NetWorth, domain.HistoryPoint{Month: s.Month, Value: domain.RoundMoney(netWorth)})
	s.History.CashFlow = appendHistory(s.History.CashFlow, domain.HistoryPoint{Month: s.Month, Value: domain.RoundMoney(cashFlow)})
	s.History.PassiveIncome = appendHistory(s.History.PassiveIncome, domain.HistoryPoint{Month: s.Month, Value: passive})

	s.CurrentEvent = roll.Outcome()
	s.LastTurn = &domain.TurnSummary{
		Month:              s.Month,
		Salary:             salary,
		PassiveIncome:      passive,
		LivingCost:         s.LivingCost,
		RecurringExpenses:  recurring,
		EffectiveRecurring: effective,
		DebtInterest:       interest,
		EmergencyDraw:      emergency,
		AutoLiquidation:    domain.RoundMoney(autoLiq),
		Returns:            tick.Returns,
		StopLossWarnings:   stopLoss,
		Metrics:            metrics,
		Event:              s.CurrentEvent,
	}

	if roll.Event != nil {
		amount, _ := roll.Event.Effect.Cash()
		if roll.Prevented {
			amount = 0
		}
		pushLog(&s, domain.LogEvent, roll.Message, amount)
	}
	for _, w := range stopLoss {
		pushLog(&s, domain.LogStopLoss, w, 0)
	}
	for _, m := range market.SignificantMoves(tick.Returns, g.content.Instruments, g.content.Markets.Global) {
		verb := "rose"
		if m.Return < 0 {
			verb = "fell"
		}
		pushLog(&s, domain.LogMarket, fmt.Sprintf("%s %s %.0f%%", m.Title, verb, math.Abs(m.Return)*100), 0)
	}

	s.ActiveMonthlyOffers = slices.DeleteFunc(s.ActiveMonthlyOffers, func(o domain.ActiveOffer) bool {
		return o.ExpiresMonth <= s.Month
	})
	s.MonthlyOfferUsed = false
	s.ActionsThisTurn = 0
	s.TradeLocks = map[string]int{}
	s.LastPurchases = map[string]domain.Purchase{}
	return s
}

// stopLoss vende la parte apalancada de acciones y cripto cuyo precio cayó a
// la mitad del costo apalancado. Devuelve la caja obtenida y los avisos.
func (g *Sim) stopLoss(s *domain.GameState) (float64, []string) {
	var gained float64
	var warnings []string
	for _, id := range domain.SortedKeys(s.Investments) {
		h := s.Investments[id]
		in, ok := g.content.Instrument(id)
		if !ok || !in.Type.Lockable() || h.LeveragedUnits <= 0 || h.LeveragedCost <= 0 {
			continue
		}
		price := s.PriceState[id].Price
		if price > stopLossRatio*h.LeveragedCost/h.LeveragedUnits {
			continue
		}
		gained += h.LeveragedUnits * price
		warnings = append(warnings, fmt.Sprintf("Stop-loss on %s: sold %.2f leveraged units at %s",
			in.Title, h.LeveragedUnits, money(price)))

		remaining := h.Units - h.LeveragedUnits
		if remaining <= domain.HoldingEpsilon {
			delete(s.Investments, id)
			continue
		}
		h.Units = remaining
		h.LeveragedUnits, h.LeveragedCost = 0, 0
		s.Investments[id] = h
	}
	return gained, warnings
}

// progressSalary avanza la progresión y devuelve el salario base del mes.
func progressSalary(s *domain.GameState, p domain.Profession) float64 {
	sp := s.SalaryProgression
	if sp == nil {
		return p.SalaryMonthly
	}
	sp.MonthsUntilStep--
	if sp.MonthsUntilStep <= 0 {
		if sp.Cap <= 0 || sp.CurrentBase < sp.Cap {
			next := domain.RoundMoney(sp.CurrentBase * (1 + sp.Percent))
			if sp.Cap > 0 {
				next = min(sp.Cap, next)
			}
			sp.CurrentBase = next
		}
		sp.MonthsUntilStep = max(1, sp.StepMonths)
	}
	return sp.CurrentBase
}

// realizeSalary aplica desempleo y recortes sobre el salario base.
func realizeSalary(s *domain.GameState, base float64) float64 {
	if s.JoblessMonths > 0 {
		s.JoblessMonths--
		return 0
	}
	var cut float64
	if s.SalaryCutMonths > 0 {
		cut = s.SalaryCutAmount
		s.SalaryCutMonths--
		if s.SalaryCutMonths == 0 {
			s.SalaryCutAmount = 0
		}
	}
	return max(0, domain.RoundMoney(base+s.SalaryBonus-cut))
}
