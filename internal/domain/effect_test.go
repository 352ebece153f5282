package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEffects_DecodeFixedOrder(t *testing.T) {
	raw := `{"salaryCutMonths": 3, "salaryCutAmount": 250, "debtDelta": 400, "cashDelta": -120}`
	var e Effects
	require.NoError(t, json.Unmarshal([]byte(raw), &e))
	require.Len(t, e, 3)

	assert.Equal(t, CashDelta{Amount: -120}, e[0])
	assert.Equal(t, DebtDelta{Amount: 400}, e[1])
	assert.Equal(t, SalaryCut{Months: 3, Amount: 250}, e[2])
}

func TestEffects_EncodeAsBag(t *testing.T) {
	e := Effects{CashDelta{Amount: 50}, JoblessMonths{Months: 2}}
	data, err := json.Marshal(e)
	require.NoError(t, err)
	assert.JSONEq(t, `{"cashDelta": 50, "joblessMonths": 2}`, string(data))
}

func TestEffects_Describe(t *testing.T) {
	e := Effects{
		CashDelta{Amount: -300},
		SalaryBonusDelta{Amount: 120},
		RecurringDelta{Amount: 0},
		DebtDelta{Amount: 500},
		JoblessMonths{Months: 2},
	}
	assert.Equal(t, "-$300, salary +$120, jobless for 2 mo", e.Describe())
	assert.Equal(t, "", Effects{}.Describe())
}

func TestRandomEvent_DefaultChance(t *testing.T) {
	var ev RandomEvent
	require.NoError(t, json.Unmarshal([]byte(`{"id":"flu","effect":{"cashDelta":-100}}`), &ev))
	assert.Equal(t, 0.5, ev.Chance)

	require.NoError(t, json.Unmarshal([]byte(`{"id":"flu","chance":0}`), &ev))
	assert.Equal(t, 0.0, ev.Chance)
}

func TestDealWindowRule_Defaults(t *testing.T) {
	var r DealWindowRule
	require.NoError(t, json.Unmarshal([]byte(`{"minTurns":3}`), &r))
	assert.Equal(t, DealWindowRule{MinTurns: 3, MaxTurns: 3, Slots: 1}, r)

	require.NoError(t, json.Unmarshal([]byte(`{}`), &r))
	assert.Equal(t, DealWindowRule{MinTurns: 2, MaxTurns: 2, Slots: 1}, r)
}

func TestHomeAction_Kind(t *testing.T) {
	assert.Equal(t, ActionKindChance, HomeAction{Type: "chance", Effect: "salary_up"}.Kind())
	assert.Equal(t, ActionKindCostDown, HomeAction{Effect: "cost_down"}.Kind())
	assert.Equal(t, ActionKindDebtPayment, HomeAction{ID: "debt_payment"}.Kind())
	assert.Equal(t, ActionKindOther, HomeAction{ID: "x"}.Kind())
}
