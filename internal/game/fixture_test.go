package game_test

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/require"
	"github.com/toropanov/capetica/internal/content"
	"github.com/toropanov/capetica/internal/domain"
	"github.com/toropanov/capetica/internal/game"
)

// Contenido chico y plano: precios que no se mueven, sin eventos en
// dificultad normal y números redondos para seguir la caja a mano.
func fixtureFS() fstest.MapFS {
	return fstest.MapFS{
		"game_rules.json": {Data: []byte(`{
			"loans": {"apr": 0.01, "creditLimit": {"netWorthMultiplier": 0.25, "salaryMultiplier": 1, "capMultiplier": 4}},
			"emergencyCredit": {"enabled": true, "minDraw": 100, "drawPercent": 0.5},
			"difficulty": {"default": "normal", "presets": {"normal": {"eventChance": 0}, "chaos": {"eventChance": 1}}},
			"win": [{"id": "rich", "type": "net_worth_reach", "target": 1000000}],
			"lose": [{"id": "broke", "type": "no_liquidity_no_credit", "consecutiveMonths": 1}]
		}`)},
		"home_actions.json": {Data: []byte(`{
			"count": 2, "showChance": 1,
			"typeWeights": {"salary_up": 3, "expense_down": 0, "protection": 0, "take_credit": 0, "debt_payment": 0, "chance": 0, "other": 0},
			"actions": [
				{"id": "course", "title": "Course", "effect": "salary_up", "cost": 300, "value": 100},
				{"id": "cook", "title": "Cook at home", "effect": "expense_down", "value": 200},
				{"id": "shield", "title": "Health plan", "effect": "protection", "cost": 50, "protectionKey": "healthPlan"},
				{"id": "loan", "title": "Quick loan", "effect": "take_credit", "value": 500},
				{"id": "debt_payment", "title": "Pay down debt"},
				{"id": "gamble", "title": "Side gig", "type": "chance", "cost": 100, "chanceSuccess": 1, "success": {"cashDelta": 1000}, "fail": {"cashDelta": -10}},
				{"id": "layoff", "title": "Sabbatical", "type": "chance", "chanceSuccess": 1, "success": {"joblessMonths": 2}},
				{"id": "yacht", "title": "Yacht", "cost": 99999}
			]
		}`)},
		"instruments.json": {Data: []byte(`{"instruments": [
			{"id": "idx", "title": "Index", "type": "stocks", "initialPrice": 100,
			 "trading": {"buyFeePct": 0.01, "sellFeePct": 0.01, "minOrder": 10}},
			{"id": "bnd", "title": "Bonds", "type": "bonds", "initialPrice": 50,
			 "trading": {"buyFeePct": 0.002, "sellFeePct": 0.002}}
		]}`)},
		"markets.json": {Data: []byte(`{}`)},
		"professions.json": {Data: []byte(`{"professions": [
			{"id": "clerk", "title": "Clerk", "startingMoney": 5000, "salaryMonthly": 2000,
			 "monthlyExpenses": {"rent": 1000}, "creditLimitBase": 2000},
			{"id": "indebted", "title": "Indebted", "startingMoney": 500, "startingDebt": 1000, "salaryMonthly": 1000,
			 "monthlyExpenses": {"rent": 900}, "creditLimitBase": 1500},
			{"id": "broke", "title": "Broke", "startingMoney": 100, "salaryMonthly": 0,
			 "monthlyExpenses": {"rent": 500}, "creditLimitBase": 1000},
			{"id": "stuck", "title": "Stuck", "startingMoney": 100, "startingDebt": 1000, "salaryMonthly": 0,
			 "monthlyExpenses": {"rent": 500}, "creditLimitBase": 1000},
			{"id": "junior", "title": "Junior", "startingMoney": 1000, "salaryMonthly": 1000, "creditLimitBase": 500,
			 "salaryProgression": {"percent": 0.1, "stepMonths": 2, "cap": 1150}}
		]}`)},
		"random_events.json": {Data: []byte(`{"events": [
			{"id": "medical", "title": "Medical bill", "description": "Clinic visit.", "type": "negative",
			 "chance": 1, "protectionKey": "healthPlan", "effect": {"cashDelta": -900}}
		]}`)},
		"deals.json": {Data: []byte(`{"deals": [
			{"id": "van", "title": "Delivery van", "entryCost": 1000, "monthlyPayout": 150, "durationMonths": 2,
			 "riskMeter": 2, "window": {"minTurns": 2, "maxTurns": 2, "slots": 1}}
		]}`)},
	}
}

func newSim(t *testing.T) *game.Sim {
	t.Helper()
	b, err := content.LoadFS(fixtureFS())
	require.NoError(t, err)
	return game.New(b)
}

func start(t *testing.T, sim *game.Sim, profession string) domain.GameState {
	t.Helper()
	s, err := sim.NewGame(profession, game.Prefs{}, 42)
	require.NoError(t, err)
	return s
}

func advance(sim *game.Sim, s domain.GameState, months int) domain.GameState {
	for range months {
		s = sim.AdvanceMonth(s)
	}
	return s
}
