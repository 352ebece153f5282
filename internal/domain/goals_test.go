package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	testWin = []WinRule{
		{ID: "passive_cover", Type: WinPassiveCoversCosts, RequiredStreakMonths: 3},
		{ID: "rich", Type: WinNetWorthReach, Target: 100000},
	}
	testLose = []LoseRule{
		{ID: "broke", Type: LoseNoLiquidity, ConsecutiveMonths: 2},
		{ID: "spiral", Type: LoseInsolvency, ConsecutiveMonths: 1},
		{ID: "leverage", Type: LoseDebtRatio, MinDebtToNetWorth: 1.5},
	}
)

func TestEvaluateGoals_StreakResetsOnFailure(t *testing.T) {
	covered := TurnMetrics{PassiveIncome: 1000, RecurringExpenses: 900, NetWorth: 10, Cash: 10, AvailableCredit: 10}
	notCovered := covered
	notCovered.PassiveIncome = 100

	tr := Trackers{}
	res := EvaluateGoals(testWin, testLose, tr, covered)
	assert.Nil(t, res.Win)
	assert.Equal(t, 1, res.Trackers.Win["passive_cover"])

	res = EvaluateGoals(testWin, testLose, res.Trackers, covered)
	assert.Equal(t, 2, res.Trackers.Win["passive_cover"])

	res = EvaluateGoals(testWin, testLose, res.Trackers, notCovered)
	assert.Equal(t, 0, res.Trackers.Win["passive_cover"])
	assert.Nil(t, res.Win)
}

func TestEvaluateGoals_FiresAfterRequiredStreak(t *testing.T) {
	m := TurnMetrics{PassiveIncome: 1000, RecurringExpenses: 900, NetWorth: 10, Cash: 10, AvailableCredit: 10}
	tr := Trackers{}
	var res GoalResult
	for i := 0; i < 3; i++ {
		res = EvaluateGoals(testWin, testLose, tr, m)
		tr = res.Trackers
	}
	require.NotNil(t, res.Win)
	assert.Equal(t, "passive_cover", res.Win.ID)
}

func TestEvaluateGoals_FirstRuleInOrderWins(t *testing.T) {
	// ambas reglas se cumplen; la de net worth no pide racha pero va segunda
	m := TurnMetrics{PassiveIncome: 1000, RecurringExpenses: 900, NetWorth: 200000, Cash: 10, AvailableCredit: 10}
	tr := Trackers{Win: map[string]int{"passive_cover": 2}}
	res := EvaluateGoals(testWin, testLose, tr, m)
	require.NotNil(t, res.Win)
	assert.Equal(t, "passive_cover", res.Win.ID)
	// las rachas de todas las reglas se actualizan igualmente
	assert.Equal(t, 1, res.Trackers.Win["rich"])
}

func TestEvaluateGoals_LosePredicates(t *testing.T) {
	broke := TurnMetrics{Cash: -10, AvailableCredit: 0, NetWorth: 5000, Debt: 100, MonthlyCashFlow: 10}
	res := EvaluateGoals(testWin, testLose, Trackers{}, broke)
	assert.Nil(t, res.Lose)
	res = EvaluateGoals(testWin, testLose, res.Trackers, broke)
	require.NotNil(t, res.Lose)
	assert.Equal(t, "broke", res.Lose.ID)

	spiral := TurnMetrics{Cash: 100, AvailableCredit: 100, NetWorth: 5000, MonthlyCashFlow: -1, DebtDelta: 5}
	res = EvaluateGoals(testWin, testLose, Trackers{}, spiral)
	require.NotNil(t, res.Lose)
	assert.Equal(t, "spiral", res.Lose.ID)

	leveraged := TurnMetrics{Cash: 100, AvailableCredit: 100, NetWorth: 1000, Debt: 1500, MonthlyCashFlow: 10}
	res = EvaluateGoals(testWin, testLose, Trackers{}, leveraged)
	require.NotNil(t, res.Lose)
	assert.Equal(t, "leverage", res.Lose.ID)
}

func TestEvaluateGoals_DoesNotMutateInput(t *testing.T) {
	tr := Trackers{Win: map[string]int{"passive_cover": 2}, Lose: map[string]int{}}
	_ = EvaluateGoals(testWin, testLose, tr, TurnMetrics{PassiveIncome: 1})
	assert.Equal(t, 2, tr.Win["passive_cover"])
}
