package game

import (
	"fmt"
	"slices"

	"github.com/toropanov/capetica/internal/credit"
	"github.com/toropanov/capetica/internal/deals"
	"github.com/toropanov/capetica/internal/domain"
	"github.com/toropanov/capetica/internal/rng"
)

const (
	// DefaultCreditDraw es el giro cuando el llamador no indica monto.
	DefaultCreditDraw = 1200
	// DefaultDebtService es el pago cuando el llamador no indica monto.
	DefaultDebtService = 600
	// DebtServiceFeeRate es la comisión de un pago voluntario de deuda.
	DebtServiceFeeRate = 0.08

	// debt_payment paga hasta el 30% de la caja y exige un colchón mínimo.
	debtPaymentShare   = 0.3
	debtPaymentMinCash = 100

	// tolerancia al comparar el costo de una compra con la caja
	cashTolerance = 1e-3
)

// ActionOptions modifica cómo se registra una acción del hogar.
type ActionOptions struct {
	// FromMonthly marca la acción como la oferta del mes.
	FromMonthly bool
}

func (g *Sim) tradable(s domain.GameState, id string) (domain.Instrument, float64, error) {
	if !s.Started() {
		return domain.Instrument{}, 0, domain.ErrNoProfession
	}
	in, ok := g.content.Instrument(id)
	if !ok {
		return domain.Instrument{}, 0, domain.ErrUnknownInstrument
	}
	price := s.PriceState[id].Price
	if price <= 0 {
		return domain.Instrument{}, 0, domain.ErrUnknownInstrument
	}
	if in.Type.Lockable() {
		if m, locked := s.TradeLocks[id]; locked && m == s.Month {
			return domain.Instrument{}, 0, domain.ErrTradeLocked
		}
	}
	return in, price, nil
}

// Buy invierte amount en el instrumento, comisión aparte. Si la caja no
// alcanza para amount más comisión se compra lo que alcance, siempre que
// supere la orden mínima.
func (g *Sim) Buy(prev domain.GameState, id string, amount float64) (domain.GameState, error) {
	in, price, err := g.tradable(prev, id)
	if err != nil {
		return prev, err
	}
	if amount <= 0 {
		return prev, domain.ErrInvalidAmount
	}
	fee := in.Trading.BuyFeePct
	affordable := prev.Cash / (1 + fee)
	spendable := min(amount, affordable)
	if spendable < in.Trading.MinOrder {
		if amount >= in.Trading.MinOrder {
			return prev, domain.ErrInsufficientCash
		}
		return prev, domain.ErrBelowMinOrder
	}
	spend := max(in.Trading.MinOrder, spendable)
	cost := spend * (1 + fee)
	if spend <= 0 || cost > prev.Cash+cashTolerance {
		return prev, domain.ErrInsufficientCash
	}

	s := prev.Clone()
	units := spend / price
	h := s.Investments[id]
	total := h.Units + units
	h.CostBasis = (h.CostBasis*h.Units + spend) / total
	h.Units = total
	if in.Type.Lockable() && s.CreditBucket > 0 {
		// lo girado de crédito y no invertido todavía financia la compra
		financed := min(s.CreditBucket, spend)
		h.LeveragedUnits += financed / price
		h.LeveragedCost += financed
		s.CreditBucket = domain.RoundMoney(s.CreditBucket - financed)
	}
	s.Investments[id] = h
	s.Cash = domain.RoundMoney(s.Cash - cost)

	mult := g.rules().PassiveMultipliers.For(in.Type)
	if s.LastPurchases == nil {
		s.LastPurchases = map[string]domain.Purchase{}
	}
	s.LastPurchases[id] = domain.Purchase{
		Turn:        s.Month,
		Amount:      domain.RoundMoney(spend),
		PassiveGain: domain.RoundMoney(spend * mult),
		Units:       units,
	}
	s.ActionsThisTurn++
	lock(&s, in)
	pushLog(&s, domain.LogTrade, fmt.Sprintf("Bought %s for %s", in.Title, money(spend)), -cost)
	return s, nil
}

// Sell vende hasta amount del instrumento a precio vigente. Un monto mayor
// que la posición vende la posición entera.
func (g *Sim) Sell(prev domain.GameState, id string, amount float64) (domain.GameState, error) {
	in, price, err := g.tradable(prev, id)
	if err != nil {
		return prev, err
	}
	h, ok := prev.Investments[id]
	if !ok || h.Units <= domain.HoldingEpsilon {
		return prev, domain.ErrNoHolding
	}
	if amount <= 0 {
		return prev, domain.ErrInvalidAmount
	}

	gross := min(amount, h.Units*price)
	sold := gross / price
	fee := gross * in.Trading.SellFeePct

	s := prev.Clone()
	if h.LeveragedUnits > 0 {
		perUnit := h.LeveragedCost / h.LeveragedUnits
		ratio := h.LeveragedUnits / h.Units
		h.LeveragedUnits = max(0, h.LeveragedUnits-sold*ratio)
		h.LeveragedCost = h.LeveragedUnits * perUnit
	}
	h.Units -= sold
	if h.Units <= domain.HoldingEpsilon {
		delete(s.Investments, id)
	} else {
		s.Investments[id] = h
	}
	s.Cash = domain.RoundMoney(s.Cash + gross - fee)
	s.ActionsThisTurn++
	lock(&s, in)
	pushLog(&s, domain.LogTrade, fmt.Sprintf("Sold %s for %s", in.Title, money(gross)), gross-fee)
	return s, nil
}

func lock(s *domain.GameState, in domain.Instrument) {
	if in.Type.Lockable() {
		if s.TradeLocks == nil {
			s.TradeLocks = map[string]int{}
		}
		s.TradeLocks[in.ID] = s.Month
	}
}

// ApplyHomeAction aplica una mejora del hogar y devuelve el mensaje para el
// jugador. El costo se descuenta antes del efecto.
func (g *Sim) ApplyHomeAction(prev domain.GameState, id string, opts ActionOptions) (domain.GameState, string, error) {
	if !prev.Started() {
		return prev, "", domain.ErrNoProfession
	}
	a, ok := g.content.HomeAction(id)
	if !ok {
		return prev, "", domain.ErrUnknownAction
	}

	s := prev.Clone()
	var msg string
	switch a.Kind() {
	case domain.ActionKindDebtPayment:
		if s.Debt <= 0 || s.Cash <= debtPaymentMinCash {
			return prev, "", domain.ErrNothingToRepay
		}
		payment := min(domain.RoundMoney(s.Cash*debtPaymentShare), s.Cash, s.Debt)
		paid := repay(&s, payment, "")
		if paid <= 0 {
			return prev, "", domain.ErrNothingToRepay
		}
		s.Cash = domain.RoundMoney(s.Cash - paid)
		msg = "Repaid " + money(paid) + " of debt"

	default:
		if a.Cost > 0 && s.Cash < a.Cost {
			return prev, "", domain.ErrInsufficientCash
		}
		s.Cash = domain.RoundMoney(s.Cash - max(0, a.Cost))

		switch a.Kind() {
		case domain.ActionKindSalaryUp:
			s.SalaryBonus = domain.RoundMoney(s.SalaryBonus + a.Value)
			msg = "Salary +" + money(a.Value) + " from next month"
		case domain.ActionKindExpenseDown, domain.ActionKindCostDown:
			s.RecurringExpenses = max(0, domain.RoundMoney(s.RecurringExpenses-a.Value))
			msg = "Monthly expenses -" + money(a.Value)
		case domain.ActionKindProtection:
			if s.Protections == nil {
				s.Protections = map[string]bool{}
			}
			s.Protections[a.ProtectionKey] = true
			msg = "Protection active: " + a.Title
		case domain.ActionKindTakeCredit:
			draw := min(a.Value, s.AvailableCreditForDraw())
			if draw <= 0 {
				return prev, "", domain.ErrNoCreditAvailable
			}
			takeCredit(&s, draw, a.Title)
			msg = "Received " + money(draw) + " of credit"
		case domain.ActionKindChance:
			var roll float64
			roll, s.RNGSeed = rng.Uniform(rng.EnsureSeed(s.RNGSeed))
			outcome, verb := a.Fail, "fell through"
			if roll < a.ChanceSuccess {
				outcome, verb = a.Success, "paid off"
			}
			applyEffects(&s, outcome)
			msg = a.Title + " " + verb
			if desc := outcome.Describe(); desc != "" {
				msg += " (" + desc + ")"
			}
		default:
			msg = "Upgrade applied: " + a.Title
		}
	}

	s.ActiveMonthlyOffers = slices.DeleteFunc(s.ActiveMonthlyOffers, func(o domain.ActiveOffer) bool { return o.ID == a.ID })
	s.ActiveMonthlyOffers = append(s.ActiveMonthlyOffers, domain.ActiveOffer{
		ID: a.ID, Title: a.Title, ExpiresMonth: s.Month + OfferLifetime,
	})
	if opts.FromMonthly {
		s.MonthlyOfferUsed = true
	}
	s.ActionsThisTurn++
	pushLog(&s, domain.LogAction, msg, s.Cash-prev.Cash)
	return s, msg, nil
}

// ParticipateInDeal entra en el trato id pagando su costo de entrada.
func (g *Sim) ParticipateInDeal(prev domain.GameState, id string) (domain.GameState, error) {
	if !prev.Started() {
		return prev, domain.ErrNoProfession
	}
	t, ok := g.content.Deal(id)
	if !ok {
		return prev, domain.ErrUnknownDeal
	}
	w, ok := prev.DealWindows[id]
	switch {
	case !ok || w.ExpiresIn <= 0:
		return prev, domain.ErrDealClosed
	case w.SlotsLeft <= 0:
		return prev, domain.ErrNoSlots
	}
	entry := domain.RoundMoney(t.EntryCost)
	if entry <= 0 {
		return prev, domain.ErrInvalidEntryCost
	}
	if prev.Cash < entry {
		return prev, domain.ErrInsufficientCash
	}

	s := prev.Clone()
	windows, err := deals.Enter(s.DealWindows, id)
	if err != nil {
		return prev, err
	}
	s.DealWindows = windows
	s.Cash = domain.RoundMoney(s.Cash - entry)
	s.DealParticipations = append(s.DealParticipations, deals.NewParticipation(nextID(&s, t.ID, s.Month), t, s.Month))
	s.ActionsThisTurn++
	pushLog(&s, domain.LogAction, fmt.Sprintf("Joined %s for %s", t.Title, money(entry)), -entry)
	return s, nil
}

// DrawCredit gira amount de la línea de crédito, recortado a lo disponible.
// amount 0 usa DefaultCreditDraw.
func (g *Sim) DrawCredit(prev domain.GameState, amount float64) (domain.GameState, error) {
	if !prev.Started() {
		return prev, domain.ErrNoProfession
	}
	if amount < 0 {
		return prev, domain.ErrInvalidAmount
	}
	if amount == 0 {
		amount = DefaultCreditDraw
	}
	draw := min(domain.RoundMoney(amount), prev.AvailableCreditForDraw())
	if draw <= 0 {
		return prev, domain.ErrNoCreditAvailable
	}
	s := prev.Clone()
	takeCredit(&s, draw, "")
	s.ActionsThisTurn++
	pushLog(&s, domain.LogCredit, "Drew "+money(draw)+" of credit", draw)
	return s, nil
}

// ServiceDebt paga amount de deuda con una comisión del 8%. Con drawID el
// pago va a ese giro; sin él recorre el libro en orden. amount 0 usa
// DefaultDebtService.
func (g *Sim) ServiceDebt(prev domain.GameState, amount float64, drawID string) (domain.GameState, error) {
	if !prev.Started() {
		return prev, domain.ErrNoProfession
	}
	if amount < 0 {
		return prev, domain.ErrInvalidAmount
	}
	if amount == 0 {
		amount = DefaultDebtService
	}
	if prev.Debt <= 0 || prev.Cash <= 0 {
		return prev, domain.ErrNothingToRepay
	}

	s := prev.Clone()
	s.CreditDraws = credit.Normalize(s.CreditDraws, s.Debt, drawIDs(&s))
	if drawID != "" {
		if _, ok := credit.Find(s.CreditDraws, drawID); !ok {
			return prev, domain.ErrUnknownDraw
		}
	}
	payment := min(domain.RoundMoney(amount), s.Cash, s.Debt)
	paid := repay(&s, payment, drawID)
	if paid <= 0 {
		return prev, domain.ErrNothingToRepay
	}
	fee := min(s.Cash-paid, domain.RoundMoney(paid*DebtServiceFeeRate))
	s.Cash = domain.RoundMoney(s.Cash - paid - fee)
	s.ActionsThisTurn++
	pushLog(&s, domain.LogCredit, fmt.Sprintf("Repaid %s of debt (fee %s)", money(paid), money(fee)), -(paid + fee))
	return s, nil
}

// takeCredit suma draw a caja y deuda y lo anota en el libro y en el
// balde de crédito que financia compras apalancadas.
func takeCredit(s *domain.GameState, draw float64, label string) {
	ids := drawIDs(s)
	draws := credit.Normalize(s.CreditDraws, s.Debt, ids)
	s.CreditDraws = credit.Append(draws, draw, s.Month, ids(s.Month), label)
	s.Cash = domain.RoundMoney(s.Cash + draw)
	s.Debt = domain.RoundMoney(s.Debt + draw)
	s.AvailableCredit = s.CreditLimit - s.Debt
	s.CreditBucket = domain.RoundMoney(s.CreditBucket + draw)
}

// repay descuenta el pago del libro y de la deuda. La caja la mueve el
// llamador porque la comisión depende de la acción.
func repay(s *domain.GameState, payment float64, drawID string) float64 {
	ids := drawIDs(s)
	draws := credit.Normalize(s.CreditDraws, s.Debt, ids)
	draws, paid := credit.Consume(draws, payment, drawID)
	if paid <= 0 {
		return 0
	}
	s.Debt = max(0, domain.RoundMoney(s.Debt-paid))
	s.CreditDraws = credit.Normalize(draws, s.Debt, ids)
	s.AvailableCredit = s.CreditLimit - s.Debt
	return paid
}
