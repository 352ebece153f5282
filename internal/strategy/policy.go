package strategy

import (
	"cmp"
	"math"
	"slices"

	"github.com/toropanov/capetica/internal/domain"
	"github.com/toropanov/capetica/internal/game"
	"github.com/toropanov/capetica/internal/rng"
)

// Nombres de las políticas por defecto.
const (
	Conservative = "conservative"
	Balanced     = "balanced"
	Aggressive   = "aggressive"
)

// orden de compra y de liquidación por clase de activo
var assetOrder = []domain.AssetType{domain.AssetBonds, domain.AssetStocks, domain.AssetCrypto}

// Config parametriza una política basada en reglas.
type Config struct {
	Name string
	// CashBufferMultiplier × gastos fijos es la caja que la política no toca.
	CashBufferMultiplier float64
	// Meses máximos de repago (costo/valor) para aceptar una mejora.
	SalaryROIMonths  float64
	ExpenseROIMonths float64

	AllowChance    bool
	ChancePickRate float64

	AllowTakeCredit bool
	AllowCreditDraw bool
	CreditDrawShare float64

	AllowDebtPayment bool
	AllowProtection  bool

	// DebtRepayRate es la probabilidad mensual de vender cartera para saldar
	// la deuda. 0 nunca, 1 siempre.
	DebtRepayRate float64

	// Allocations reparte la caja invertible por clase de activo.
	Allocations map[domain.AssetType]float64
	// InvestShare es la fracción del excedente sobre el colchón que se invierte.
	InvestShare float64

	MaxDealRisk int
	MinDealROI  float64
}

// DefaultConfigs devuelve conservative, balanced y aggressive.
func DefaultConfigs() []Config {
	return []Config{
		{
			Name:                 Conservative,
			CashBufferMultiplier: 3,
			SalaryROIMonths:      10,
			ExpenseROIMonths:     12,
			AllowDebtPayment:     true,
			AllowProtection:      true,
			DebtRepayRate:        1,
			Allocations:          map[domain.AssetType]float64{domain.AssetBonds: 1},
			InvestShare:          0.25,
			MaxDealRisk:          2,
			MinDealROI:           0.8,
		},
		{
			Name:                 Balanced,
			CashBufferMultiplier: 2,
			SalaryROIMonths:      8,
			ExpenseROIMonths:     10,
			AllowChance:          true,
			ChancePickRate:       0.25,
			AllowDebtPayment:     true,
			AllowProtection:      true,
			DebtRepayRate:        1,
			Allocations: map[domain.AssetType]float64{
				domain.AssetBonds: 0.4, domain.AssetStocks: 0.4, domain.AssetCrypto: 0.2,
			},
			InvestShare: 1,
			MaxDealRisk: 3,
			MinDealROI:  0.7,
		},
		{
			Name:                 Aggressive,
			CashBufferMultiplier: 1,
			SalaryROIMonths:      12,
			ExpenseROIMonths:     12,
			AllowChance:          true,
			ChancePickRate:       0.75,
			AllowTakeCredit:      true,
			AllowCreditDraw:      true,
			CreditDrawShare:      0.5,
			DebtRepayRate:        0.65,
			Allocations: map[domain.AssetType]float64{
				domain.AssetStocks: 0.7, domain.AssetCrypto: 0.3,
			},
			InvestShare: 1,
			MaxDealRisk: 5,
			MinDealROI:  0.6,
		},
	}
}

// Policy implementa Strategy con reglas fijas: una acción del hogar, giro
// de crédito, inversión, un trato, repago de deuda y colchón, en ese orden.
type Policy struct {
	cfg Config
}

// NewPolicy crea la política con la configuración dada.
func NewPolicy(cfg Config) *Policy {
	return &Policy{cfg: cfg}
}

// Name implementa Strategy.
func (p *Policy) Name() string {
	return p.cfg.Name
}

// Config devuelve la configuración de la política.
func (p *Policy) Config() Config {
	return p.cfg
}

// Act implementa Strategy. Las acciones rechazadas por el simulador se
// ignoran: la política simplemente no hace esa jugada este mes.
func (p *Policy) Act(sim *game.Sim, s domain.GameState) domain.GameState {
	if !s.Started() {
		return s
	}
	if id := p.pickAction(sim, &s); id != "" {
		if next, _, err := sim.ApplyHomeAction(s, id, game.ActionOptions{FromMonthly: true}); err == nil {
			s = next
		}
	}
	s = p.drawCredit(sim, s)
	s = p.invest(sim, s)
	if id := p.chooseDeal(sim, s); id != "" {
		if next, err := sim.ParticipateInDeal(s, id); err == nil {
			s = next
		}
	}
	s = p.repayDebt(sim, s)
	return ensureLiquidity(sim, s, p.buffer(s))
}

func (p *Policy) buffer(s domain.GameState) float64 {
	return p.cfg.CashBufferMultiplier * s.RecurringExpenses
}

// pickAction elige una de las acciones ofrecidas. La tirada de las acciones
// de azar sale de la semilla de la partida, que queda avanzada en s.
func (p *Policy) pickAction(sim *game.Sim, s *domain.GameState) string {
	byKind := map[string][]domain.HomeAction{}
	for _, id := range s.AvailableActions {
		a, ok := sim.Content().HomeAction(id)
		if !ok || a.Cost > s.Cash {
			continue
		}
		byKind[a.Kind()] = append(byKind[a.Kind()], a)
	}
	if len(byKind) == 0 {
		return ""
	}
	buffer := p.buffer(*s)

	if debt := byKind[domain.ActionKindDebtPayment]; p.cfg.AllowDebtPayment && len(debt) > 0 && s.Debt > 0 && s.Cash > buffer {
		return debt[0].ID
	}
	if p.cfg.AllowProtection {
		for _, a := range byKind[domain.ActionKindProtection] {
			if !s.HasProtection(a.ProtectionKey) && a.Cost <= s.Cash-buffer {
				return a.ID
			}
		}
	}
	// las mejoras se pagan con el excedente, nunca con el colchón
	if a, ok := cheapest(byKind[domain.ActionKindSalaryUp]); ok && paybackMonths(a) <= p.cfg.SalaryROIMonths && a.Cost <= s.Cash-buffer {
		return a.ID
	}
	cuts := append(slices.Clone(byKind[domain.ActionKindExpenseDown]), byKind[domain.ActionKindCostDown]...)
	if a, ok := cheapest(cuts); ok && paybackMonths(a) <= p.cfg.ExpenseROIMonths && a.Cost <= s.Cash-buffer {
		return a.ID
	}
	chances := slices.DeleteFunc(slices.Clone(byKind[domain.ActionKindChance]), func(a domain.HomeAction) bool {
		return a.Cost > s.Cash-buffer
	})
	if p.cfg.AllowChance && len(chances) > 0 {
		var roll float64
		roll, s.RNGSeed = rng.Uniform(rng.EnsureSeed(s.RNGSeed))
		if roll >= p.cfg.ChancePickRate {
			return ""
		}
		best := slices.MaxFunc(chances, func(a, b domain.HomeAction) int {
			return cmp.Compare(expectedValue(a), expectedValue(b))
		})
		return best.ID
	}
	if credit := byKind[domain.ActionKindTakeCredit]; p.cfg.AllowTakeCredit && len(credit) > 0 {
		best := slices.MaxFunc(credit, func(a, b domain.HomeAction) int { return cmp.Compare(a.Value, b.Value) })
		return best.ID
	}
	return ""
}

// paybackMonths es costo/valor; sin valor nunca se paga.
func paybackMonths(a domain.HomeAction) float64 {
	if a.Value <= 0 {
		return math.Inf(1)
	}
	cost := a.Cost
	if cost == 0 {
		cost = 1
	}
	return cost / a.Value
}

func cheapest(actions []domain.HomeAction) (domain.HomeAction, bool) {
	if len(actions) == 0 {
		return domain.HomeAction{}, false
	}
	return slices.MinFunc(actions, func(a, b domain.HomeAction) int {
		return cmp.Compare(paybackMonths(a), paybackMonths(b))
	}), true
}

// expectedValue es el resultado esperado en caja de una acción de azar.
func expectedValue(a domain.HomeAction) float64 {
	win, _ := a.Success.Cash()
	lose, _ := a.Fail.Cash()
	return -a.Cost + a.ChanceSuccess*win + (1-a.ChanceSuccess)*lose
}

func (p *Policy) drawCredit(sim *game.Sim, s domain.GameState) domain.GameState {
	if !p.cfg.AllowCreditDraw {
		return s
	}
	amount := domain.RoundMoney(s.AvailableCreditForDraw() * p.cfg.CreditDrawShare)
	if amount <= 0 {
		return s
	}
	if next, err := sim.DrawCredit(s, amount); err == nil {
		return next
	}
	return s
}

// invest reparte InvestShare de la caja por encima del colchón entre el
// primer instrumento de cada clase.
func (p *Policy) invest(sim *game.Sim, s domain.GameState) domain.GameState {
	investable := (s.Cash - p.buffer(s)) * p.cfg.InvestShare
	if investable <= 0 {
		return s
	}
	for _, t := range assetOrder {
		share := p.cfg.Allocations[t]
		if share <= 0 {
			continue
		}
		in, ok := sim.Content().FirstOfType(t)
		if !ok {
			continue
		}
		if next, err := sim.Buy(s, in.ID, investable*share); err == nil {
			s = next
		}
	}
	return s
}

// chooseDeal devuelve el trato abierto de mayor ROI que respeta el riesgo
// máximo y deja la caja por encima del colchón.
func (p *Policy) chooseDeal(sim *game.Sim, s domain.GameState) string {
	buffer := p.buffer(s)
	var best domain.DealTemplate
	found := false
	for _, d := range sim.Content().Deals {
		w, ok := s.DealWindows[d.ID]
		switch {
		case !ok || !w.Open():
			continue
		case d.EntryCost <= 0 || s.Cash-d.EntryCost < buffer:
			continue
		case d.RiskMeter > p.cfg.MaxDealRisk || d.ROI() < p.cfg.MinDealROI:
			continue
		}
		if !found || d.ROI() > best.ROI() {
			best, found = d, true
		}
	}
	if !found {
		return ""
	}
	return best.ID
}

// repayDebt vende cartera hasta cubrir deuda y comisión por encima del
// colchón y paga lo que alcance. Con DebtRepayRate < 1 la decisión sale de
// una tirada sobre la semilla de la partida.
func (p *Policy) repayDebt(sim *game.Sim, s domain.GameState) domain.GameState {
	if p.cfg.DebtRepayRate <= 0 || s.Debt <= 0 {
		return s
	}
	if p.cfg.DebtRepayRate < 1 {
		var roll float64
		roll, s.RNGSeed = rng.Uniform(rng.EnsureSeed(s.RNGSeed))
		if roll >= p.cfg.DebtRepayRate {
			return s
		}
	}
	buffer := p.buffer(s)
	s = ensureLiquidity(sim, s, buffer+s.Debt*(1+game.DebtServiceFeeRate))
	amount := min(s.Debt, (s.Cash-buffer)/(1+game.DebtServiceFeeRate))
	if amount <= 0 {
		return s
	}
	if next, err := sim.ServiceDebt(s, amount, ""); err == nil {
		return next
	}
	return s
}

// ensureLiquidity vende bonos, después acciones y después cripto mientras
// la caja siga por debajo de target.
func ensureLiquidity(sim *game.Sim, s domain.GameState, target float64) domain.GameState {
	for _, t := range assetOrder {
		for _, in := range sim.Content().Instruments {
			if s.Cash >= target {
				return s
			}
			if in.Type != t {
				continue
			}
			h, ok := s.Investments[in.ID]
			if !ok {
				continue
			}
			value := h.Units * s.PriceState[in.ID].Price
			if value <= 0 {
				continue
			}
			if next, err := sim.Sell(s, in.ID, min(value, target-s.Cash)); err == nil {
				s = next
			}
		}
	}
	return s
}
