package game

import (
	"fmt"
	"math"

	"github.com/dustin/go-humanize"

	"github.com/toropanov/capetica/internal/credit"
	"github.com/toropanov/capetica/internal/deals"
	"github.com/toropanov/capetica/internal/domain"
	"github.com/toropanov/capetica/internal/market"
	"github.com/toropanov/capetica/internal/rng"
)

// Prefs son las elecciones del jugador al arrancar una partida.
type Prefs struct {
	GoalID     string
	Difficulty string
}

// NewGame arma el estado inicial de una partida con la profesión dada.
func (g *Sim) NewGame(professionID string, prefs Prefs, seed uint32) (domain.GameState, error) {
	p, ok := g.content.Profession(professionID)
	if !ok {
		return domain.GameState{}, fmt.Errorf("game.NewGame: %q: %w", professionID, domain.ErrUnknownProfession)
	}
	rules := g.rules()
	seed = rng.EnsureSeed(seed)

	s := domain.GameState{
		ProfessionID:   p.ID,
		Difficulty:     prefs.Difficulty,
		SelectedGoalID: prefs.GoalID,
		Cash:           domain.RoundMoney(p.StartingMoney),
		Debt:           domain.RoundMoney(p.StartingDebt),
		LivingCost:     domain.LivingCost(p.ID, rules.LivingCost),
		Protections:    g.protectionKeys(),
		PriceState:     market.Seed(g.content.Instruments),
		ShockState:     map[string]int{},
		Investments:    map[string]domain.Holding{},
		Trackers:       domain.Trackers{Win: map[string]int{}, Lose: map[string]int{}},
		TradeLocks:     map[string]int{},
		LastPurchases:  map[string]domain.Purchase{},
	}
	if s.Difficulty == "" {
		s.Difficulty = rules.Difficulty.Default
	}
	if s.SelectedGoalID == "" && len(rules.Win) > 0 {
		s.SelectedGoalID = rules.Win[0].ID
	}
	s.RecurringExpenses = domain.RoundMoney(domain.MonthlyExpenses(p) + s.LivingCost)

	// la cartera inicial viene en unidades
	for _, id := range domain.SortedKeys(p.StartingPortfolio) {
		units := p.StartingPortfolio[id]
		if units <= 0 {
			continue
		}
		s.Investments[id] = domain.Holding{Units: units, CostBasis: s.PriceState[id].Price}
	}
	if sp := p.SalaryProgression; sp != nil {
		s.SalaryProgression = &domain.SalaryProgressionState{
			SalaryProgression: *sp,
			MonthsUntilStep:   max(1, sp.StepMonths),
			CurrentBase:       p.SalaryMonthly,
		}
	}

	s.CreditDraws = credit.Normalize(nil, s.Debt, drawIDs(&s))

	holdings := domain.HoldingsValue(s.Investments, s.PriceState)
	netWorth := domain.NetWorth(s.Cash, holdings, s.Debt)
	s.CreditLimit = domain.CreditLimit(p, netWorth, p.SalaryMonthly, rules.Loans.CreditLimit)
	s.AvailableCredit = s.CreditLimit - s.Debt
	s.History.NetWorth = []domain.HistoryPoint{{Month: 0, Value: domain.RoundMoney(netWorth)}}

	s.DealWindows, seed = deals.Init(g.content.Deals, seed)
	s.AvailableActions, seed = g.rollOffers(seed)
	s.RNGSeed = seed
	return s, nil
}

// RandomProfession sortea la profesión con una tirada y arranca la partida.
func (g *Sim) RandomProfession(prefs Prefs, seed uint32) (domain.GameState, error) {
	if len(g.content.Professions) == 0 {
		return domain.GameState{}, fmt.Errorf("game.RandomProfession: %w", domain.ErrUnknownProfession)
	}
	roll, seed := rng.Uniform(rng.EnsureSeed(seed))
	p := g.content.Professions[rng.Index(roll, len(g.content.Professions))]
	return g.NewGame(p.ID, prefs, seed)
}

// Reset reinicia la partida con la misma profesión y preferencias. La semilla
// sigue desde donde quedó, así que no repite la partida anterior.
func (g *Sim) Reset(s domain.GameState) (domain.GameState, error) {
	id := s.ProfessionID
	if id == "" && len(g.content.Professions) > 0 {
		id = g.content.Professions[0].ID
	}
	return g.NewGame(id, Prefs{GoalID: s.SelectedGoalID, Difficulty: s.Difficulty}, s.RNGSeed)
}

// protectionKeys arranca en false cada protección que mencione el contenido.
func (g *Sim) protectionKeys() map[string]bool {
	out := map[string]bool{}
	for _, ev := range g.content.Events {
		if ev.ProtectionKey != "" {
			out[ev.ProtectionKey] = false
		}
	}
	for _, a := range g.content.HomeActions.Actions {
		if a.ProtectionKey != "" {
			out[a.ProtectionKey] = false
		}
	}
	return out
}

func money(v float64) string {
	r := domain.RoundMoney(v)
	if r < 0 {
		return "-$" + humanize.Comma(int64(math.Abs(r)))
	}
	return "$" + humanize.Comma(int64(r))
}
