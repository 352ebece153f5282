package game_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/toropanov/capetica/internal/credit"
	"github.com/toropanov/capetica/internal/domain"
	"github.com/toropanov/capetica/internal/game"
)

// --- Compra y venta ---

func TestBuy_AddsHoldingAndChargesFee(t *testing.T) {
	sim := newSim(t)
	s, err := sim.Buy(start(t, sim, "clerk"), "idx", 1000)
	require.NoError(t, err)

	assert.Equal(t, 3990.0, s.Cash)
	h := s.Investments["idx"]
	assert.InDelta(t, 10.0, h.Units, 1e-9)
	assert.InDelta(t, 100.0, h.CostBasis, 1e-9)
	assert.Zero(t, h.LeveragedUnits)
	assert.Equal(t, domain.Purchase{Turn: 0, Amount: 1000, PassiveGain: 6, Units: 10}, s.LastPurchases["idx"])
	assert.Equal(t, "Bought Index for $1,000", s.RecentLog[0].Text)
}

func TestBuy_CapsAtAffordableCash(t *testing.T) {
	sim := newSim(t)
	s, err := sim.Buy(start(t, sim, "clerk"), "idx", 10_000)
	require.NoError(t, err)
	assert.Zero(t, s.Cash)
}

func TestBuy_Rejections(t *testing.T) {
	sim := newSim(t)
	s := start(t, sim, "clerk")

	cases := []struct {
		name   string
		state  domain.GameState
		id     string
		amount float64
		want   error
	}{
		{"unknown instrument", s, "gold", 100, domain.ErrUnknownInstrument},
		{"zero amount", s, "idx", 0, domain.ErrInvalidAmount},
		{"below min order", s, "idx", 5, domain.ErrBelowMinOrder},
		{"no profession", domain.GameState{}, "idx", 100, domain.ErrNoProfession},
	}
	poor := s.Clone()
	poor.Cash = 5
	cases = append(cases, struct {
		name   string
		state  domain.GameState
		id     string
		amount float64
		want   error
	}{"insufficient cash", poor, "idx", 100, domain.ErrInsufficientCash})

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			out, err := sim.Buy(tc.state, tc.id, tc.amount)
			assert.ErrorIs(t, err, tc.want)
			assert.Equal(t, tc.state, out)
		})
	}
}

func TestTrade_MoneyIsConserved(t *testing.T) {
	sim := newSim(t)
	s, err := sim.Buy(start(t, sim, "clerk"), "bnd", 1000)
	require.NoError(t, err)
	assert.Equal(t, 3998.0, s.Cash)

	s, err = sim.Sell(s, "bnd", 1000)
	require.NoError(t, err)
	// solo se pierden las dos comisiones
	assert.Equal(t, 5000.0-2-2, s.Cash)
	assert.NotContains(t, s.Investments, "bnd")
}

func TestSell_Partial(t *testing.T) {
	sim := newSim(t)
	s, err := sim.Buy(start(t, sim, "clerk"), "bnd", 1000)
	require.NoError(t, err)

	s, err = sim.Sell(s, "bnd", 250)
	require.NoError(t, err)
	assert.InDelta(t, 15.0, s.Investments["bnd"].Units, 1e-9)
	assert.InDelta(t, 50.0, s.Investments["bnd"].CostBasis, 1e-9)
	// 3998 + 250 − 0.5 de comisión; el medio redondea hacia arriba
	assert.Equal(t, 4248.0, s.Cash)
}

func TestSell_ReducesLeverageProRata(t *testing.T) {
	sim := newSim(t)
	s := start(t, sim, "clerk")
	s.Investments["idx"] = domain.Holding{Units: 20, CostBasis: 100, LeveragedUnits: 10, LeveragedCost: 1000}

	s, err := sim.Sell(s, "idx", 1000)
	require.NoError(t, err)
	h := s.Investments["idx"]
	assert.InDelta(t, 10.0, h.Units, 1e-9)
	assert.InDelta(t, 5.0, h.LeveragedUnits, 1e-9)
	assert.InDelta(t, 500.0, h.LeveragedCost, 1e-9)
}

func TestSell_Rejections(t *testing.T) {
	sim := newSim(t)
	s := start(t, sim, "clerk")

	_, err := sim.Sell(s, "idx", 100)
	assert.ErrorIs(t, err, domain.ErrNoHolding)

	s.Investments["idx"] = domain.Holding{Units: 1, CostBasis: 100}
	_, err = sim.Sell(s, "idx", -1)
	assert.ErrorIs(t, err, domain.ErrInvalidAmount)
}

func TestTradeLocks(t *testing.T) {
	sim := newSim(t)
	s, err := sim.Buy(start(t, sim, "clerk"), "idx", 500)
	require.NoError(t, err)

	_, err = sim.Buy(s, "idx", 500)
	assert.ErrorIs(t, err, domain.ErrTradeLocked)
	_, err = sim.Sell(s, "idx", 100)
	assert.ErrorIs(t, err, domain.ErrTradeLocked)

	// los bonos no se bloquean
	s, err = sim.Buy(s, "bnd", 100)
	require.NoError(t, err)
	s, err = sim.Buy(s, "bnd", 100)
	require.NoError(t, err)

	s = sim.AdvanceMonth(s)
	_, err = sim.Sell(s, "idx", 100)
	assert.NoError(t, err)
}

func TestBuy_CreditBucketBecomesLeverage(t *testing.T) {
	sim := newSim(t)
	s, err := sim.DrawCredit(start(t, sim, "clerk"), 1000)
	require.NoError(t, err)
	assert.Equal(t, 1000.0, s.CreditBucket)

	s, err = sim.Buy(s, "idx", 1500)
	require.NoError(t, err)
	h := s.Investments["idx"]
	assert.InDelta(t, 10.0, h.LeveragedUnits, 1e-9)
	assert.InDelta(t, 1000.0, h.LeveragedCost, 1e-9)
	assert.Zero(t, s.CreditBucket)
}

// --- Crédito ---

func TestDrawCreditAndServiceDebt(t *testing.T) {
	sim := newSim(t)
	s, err := sim.DrawCredit(start(t, sim, "clerk"), 0)
	require.NoError(t, err)
	assert.Equal(t, 6200.0, s.Cash)
	assert.Equal(t, 1200.0, s.Debt)
	assert.Equal(t, 2050.0, s.AvailableCredit)
	assert.Equal(t, 1200.0, credit.Total(s.CreditDraws))

	s, err = sim.ServiceDebt(s, 0, "")
	require.NoError(t, err)
	assert.Equal(t, 600.0, s.Debt)
	// 600 de capital más 8% de comisión
	assert.Equal(t, 6200.0-648, s.Cash)
	assert.Equal(t, 600.0, credit.Total(s.CreditDraws))
}

func TestServiceDebt_TargetsDraw(t *testing.T) {
	sim := newSim(t)
	s, err := sim.DrawCredit(start(t, sim, "clerk"), 300)
	require.NoError(t, err)
	s, err = sim.DrawCredit(s, 700)
	require.NoError(t, err)
	require.Len(t, s.CreditDraws, 2)
	first := s.CreditDraws[0].ID

	s, err = sim.ServiceDebt(s, 1000, first)
	require.NoError(t, err)
	// el pago se corta en el saldo del giro elegido
	assert.Equal(t, 700.0, s.Debt)
	_, found := credit.Find(s.CreditDraws, first)
	assert.False(t, found)
}

func TestCredit_Rejections(t *testing.T) {
	sim := newSim(t)
	clerk := start(t, sim, "clerk")

	_, err := sim.ServiceDebt(clerk, 100, "")
	assert.ErrorIs(t, err, domain.ErrNothingToRepay)

	_, err = sim.DrawCredit(clerk, -5)
	assert.ErrorIs(t, err, domain.ErrInvalidAmount)

	indebted := start(t, sim, "indebted")
	_, err = sim.ServiceDebt(indebted, 100, "nope")
	assert.ErrorIs(t, err, domain.ErrUnknownDraw)

	stuck := start(t, sim, "stuck")
	out, err := sim.DrawCredit(stuck, 100)
	assert.ErrorIs(t, err, domain.ErrNoCreditAvailable)
	assert.Equal(t, stuck, out)
}

// --- Acciones del hogar ---

func TestApplyHomeAction_SalaryUp(t *testing.T) {
	sim := newSim(t)
	s, msg, err := sim.ApplyHomeAction(start(t, sim, "clerk"), "course", game.ActionOptions{})
	require.NoError(t, err)
	assert.Equal(t, "Salary +$100 from next month", msg)
	assert.Equal(t, 4700.0, s.Cash)
	assert.Equal(t, 100.0, s.SalaryBonus)
	require.Len(t, s.ActiveMonthlyOffers, 1)
	assert.Equal(t, domain.ActiveOffer{ID: "course", Title: "Course", ExpiresMonth: 12}, s.ActiveMonthlyOffers[0])

	s = sim.AdvanceMonth(s)
	assert.Equal(t, 2100.0, s.LastTurn.Salary)
}

func TestApplyHomeAction_ExpenseDown(t *testing.T) {
	sim := newSim(t)
	s, _, err := sim.ApplyHomeAction(start(t, sim, "clerk"), "cook", game.ActionOptions{})
	require.NoError(t, err)
	assert.Equal(t, 800.0, s.RecurringExpenses)
	assert.Equal(t, 5000.0, s.Cash)
}

func TestApplyHomeAction_ReapplyReplacesOffer(t *testing.T) {
	sim := newSim(t)
	s, _, err := sim.ApplyHomeAction(start(t, sim, "clerk"), "cook", game.ActionOptions{})
	require.NoError(t, err)
	s, _, err = sim.ApplyHomeAction(s, "cook", game.ActionOptions{})
	require.NoError(t, err)
	assert.Len(t, s.ActiveMonthlyOffers, 1)
	assert.Equal(t, 600.0, s.RecurringExpenses)
}

func TestApplyHomeAction_OfferExpires(t *testing.T) {
	sim := newSim(t)
	s, _, err := sim.ApplyHomeAction(start(t, sim, "clerk"), "cook", game.ActionOptions{})
	require.NoError(t, err)

	s = advance(sim, s, game.OfferLifetime-1)
	assert.Len(t, s.ActiveMonthlyOffers, 1)
	s = sim.AdvanceMonth(s)
	assert.Empty(t, s.ActiveMonthlyOffers)
}

func TestApplyHomeAction_TakeCredit(t *testing.T) {
	sim := newSim(t)
	s, msg, err := sim.ApplyHomeAction(start(t, sim, "clerk"), "loan", game.ActionOptions{})
	require.NoError(t, err)
	assert.Equal(t, "Received $500 of credit", msg)
	assert.Equal(t, 5500.0, s.Cash)
	assert.Equal(t, 500.0, s.Debt)
	assert.Equal(t, 500.0, s.CreditBucket)
	require.Len(t, s.CreditDraws, 1)
	assert.Equal(t, "Quick loan", s.CreditDraws[0].Label)
}

func TestApplyHomeAction_DebtPayment(t *testing.T) {
	sim := newSim(t)
	s, msg, err := sim.ApplyHomeAction(start(t, sim, "indebted"), "debt_payment", game.ActionOptions{})
	require.NoError(t, err)
	assert.Equal(t, "Repaid $150 of debt", msg)
	assert.Equal(t, 350.0, s.Cash)
	assert.Equal(t, 850.0, s.Debt)
	assert.Equal(t, 850.0, credit.Total(s.CreditDraws))

	_, _, err = sim.ApplyHomeAction(start(t, sim, "clerk"), "debt_payment", game.ActionOptions{})
	assert.ErrorIs(t, err, domain.ErrNothingToRepay)
}

func TestApplyHomeAction_Chance(t *testing.T) {
	sim := newSim(t)
	s := start(t, sim, "clerk")
	out, msg, err := sim.ApplyHomeAction(s, "gamble", game.ActionOptions{})
	require.NoError(t, err)
	assert.Contains(t, msg, "paid off")
	assert.Equal(t, 5900.0, out.Cash)
	assert.NotEqual(t, s.RNGSeed, out.RNGSeed)
}

func TestApplyHomeAction_Rejections(t *testing.T) {
	sim := newSim(t)
	s := start(t, sim, "clerk")

	out, _, err := sim.ApplyHomeAction(s, "yacht", game.ActionOptions{})
	assert.ErrorIs(t, err, domain.ErrInsufficientCash)
	assert.Equal(t, s, out)

	_, _, err = sim.ApplyHomeAction(s, "teleport", game.ActionOptions{})
	assert.ErrorIs(t, err, domain.ErrUnknownAction)

	_, _, err = sim.ApplyHomeAction(start(t, sim, "stuck"), "loan", game.ActionOptions{})
	assert.ErrorIs(t, err, domain.ErrNoCreditAvailable)
}
