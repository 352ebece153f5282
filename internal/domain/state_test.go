package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGameState_CloneIsDeep(t *testing.T) {
	s := GameState{
		Cash:              100,
		Investments:       map[string]Holding{"a": {Units: 1}},
		CreditDraws:       []CreditDraw{{ID: "d1", Balance: 50}},
		Protections:       map[string]bool{"healthPlan": true},
		Trackers:          Trackers{Win: map[string]int{"w": 1}},
		WinCondition:      &GoalOutcome{RuleID: "w"},
		SalaryProgression: &SalaryProgressionState{CurrentBase: 3000},
		DealWindows:       map[string]DealWindow{"venture": {ExpiresIn: 2, SlotsLeft: 1}},
	}
	c := s.Clone()
	c.Investments["a"] = Holding{Units: 9}
	c.CreditDraws[0].Balance = 999
	c.Protections["healthPlan"] = false
	c.Trackers.Win["w"] = 7
	c.WinCondition.RuleID = "x"
	c.SalaryProgression.CurrentBase = 1
	c.DealWindows["venture"] = DealWindow{}

	assert.Equal(t, 1.0, s.Investments["a"].Units)
	assert.Equal(t, 50.0, s.CreditDraws[0].Balance)
	assert.True(t, s.Protections["healthPlan"])
	assert.Equal(t, 1, s.Trackers.Win["w"])
	assert.Equal(t, "w", s.WinCondition.RuleID)
	assert.Equal(t, 3000.0, s.SalaryProgression.CurrentBase)
	assert.Equal(t, 2, s.DealWindows["venture"].ExpiresIn)
}

func TestDealWindow_Open(t *testing.T) {
	assert.True(t, DealWindow{ExpiresIn: 1, SlotsLeft: 1}.Open())
	assert.False(t, DealWindow{ExpiresIn: 0, SlotsLeft: 1}.Open())
	assert.False(t, DealWindow{ExpiresIn: 3, SlotsLeft: 0}.Open())
}
