package content_test

import (
	"io/fs"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/toropanov/capetica/internal/content"
	"github.com/toropanov/capetica/internal/domain"
)

func TestLoad_EmbeddedDefaults(t *testing.T) {
	b, err := content.Load("")
	require.NoError(t, err)

	assert.NotEmpty(t, b.Professions)
	assert.NotEmpty(t, b.Instruments)
	assert.NotEmpty(t, b.Events)
	assert.NotEmpty(t, b.Deals)
	assert.NotEmpty(t, b.Rules.Win)
	assert.NotEmpty(t, b.Rules.Lose)

	for _, id := range b.InstrumentIDs() {
		in, ok := b.Instrument(id)
		require.True(t, ok)
		assert.True(t, in.Type.Valid())
	}
	_, ok := b.FirstOfType(domain.AssetBonds)
	assert.True(t, ok)

	credit, ok := b.HomeAction("credit_line")
	require.True(t, ok)
	assert.Equal(t, domain.ActionKindTakeCredit, credit.Kind())
	assert.Equal(t, 1000.0, credit.Value)
}

func TestLoad_MissingDirectory(t *testing.T) {
	_, err := content.Load("/definitely/not/here")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "content.Load")
}

// --- Defaults ---

func minimalFS() fstest.MapFS {
	return fstest.MapFS{
		"game_rules.json": {Data: []byte(`{
			"loans": {"apr": 0.01},
			"win": [{"id": "w", "type": "net_worth_reach", "target": 1000}],
			"lose": [{"id": "l", "type": "debt_ratio"}]
		}`)},
		"home_actions.json": {Data: []byte(`{"actions": [{"id": "loan", "title": "Loan", "effect": "take_credit"}]}`)},
		"instruments.json": {Data: []byte(`{"instruments": [
			{"id": "b", "type": "bonds", "initialPrice": 100, "model": {"muMonthly": 0.001, "sigmaMonthly": 0.01}}
		]}`)},
		"markets.json":       {Data: []byte(`{"cycles": [{"id": "c", "amplitude": 0.01}]}`)},
		"professions.json":   {Data: []byte(`{"professions": [{"id": "p", "salaryMonthly": 1000, "salaryProgression": {"percent": 0.1}}]}`)},
		"random_events.json": {Data: []byte(`{"events": []}`)},
		"deals.json":         {Data: []byte(`{"deals": [{"id": "d", "entryCost": 100, "durationMonths": 3}]}`)},
	}
}

func TestLoadFS_AppliesDefaults(t *testing.T) {
	b, err := content.LoadFS(minimalFS())
	require.NoError(t, err)

	r := b.Rules
	require.NotNil(t, r.Loans.CreditLimit)
	assert.Equal(t, 0.25, r.Loans.CreditLimit.NetWorthMultiplier)
	assert.Equal(t, 1.0, r.Loans.CreditLimit.SalaryMultiplier)
	assert.Equal(t, 4.0, r.Loans.CreditLimit.CapMultiplier)
	assert.Equal(t, 0.012, r.PassiveMultipliers.For(domain.AssetCrypto))
	assert.Equal(t, "normal", r.Difficulty.Default)
	assert.Equal(t, 0.38, r.Difficulty.EventChance("normal"))
	assert.Equal(t, 0.38, r.Difficulty.EventChance("nightmare"))
	assert.Equal(t, 1, r.Win[0].RequiredStreakMonths)
	assert.Equal(t, 1, r.Lose[0].ConsecutiveMonths)
	assert.Equal(t, 1.0, r.Lose[0].MinDebtToNetWorth)

	assert.Equal(t, 4, b.HomeActions.Count)
	assert.Equal(t, 0.55, b.HomeActions.ShowChance)
	assert.Equal(t, 1000.0, b.HomeActions.Actions[0].Value)

	p, ok := b.Profession("p")
	require.True(t, ok)
	assert.Equal(t, 1, p.SalaryProgression.StepMonths)

	assert.Equal(t, 1.0, b.Markets.Cycles[0].PeriodMonths)
	assert.Equal(t, 0.01, b.Markets.Global.MinPrice)
	assert.Equal(t, -0.15, b.Markets.Global.SignificantDrop)
	assert.Equal(t, 0.15, b.Markets.Global.SignificantRise)

	d, ok := b.Deal("d")
	require.True(t, ok)
	assert.Equal(t, domain.DealWindowRule{MinTurns: 2, MaxTurns: 2, Slots: 1}, d.Window)
}

func TestLoadFS_DealWindowPartialDefaults(t *testing.T) {
	fsys := minimalFS()
	fsys["deals.json"] = &fstest.MapFile{Data: []byte(`{"deals": [
		{"id": "bare", "entryCost": 100, "durationMonths": 3},
		{"id": "min", "entryCost": 100, "durationMonths": 3, "window": {"minTurns": 3}},
		{"id": "slots", "entryCost": 100, "durationMonths": 3, "window": {"slots": 4}},
		{"id": "full", "entryCost": 100, "durationMonths": 3, "window": {"minTurns": 1, "maxTurns": 5, "slots": 2}}
	]}`)}

	b, err := content.LoadFS(fsys)
	require.NoError(t, err)

	cases := map[string]domain.DealWindowRule{
		"bare":  {MinTurns: 2, MaxTurns: 2, Slots: 1},
		"min":   {MinTurns: 3, MaxTurns: 3, Slots: 1},
		"slots": {MinTurns: 2, MaxTurns: 2, Slots: 4},
		"full":  {MinTurns: 1, MaxTurns: 5, Slots: 2},
	}
	for id, want := range cases {
		d, ok := b.Deal(id)
		require.True(t, ok, id)
		assert.Equal(t, want, d.Window, id)
	}
}

// --- Validación ---

func TestLoadFS_ValidationAggregatesErrors(t *testing.T) {
	fsys := minimalFS()
	fsys["instruments.json"] = &fstest.MapFile{Data: []byte(`{"instruments": [
		{"id": "b", "type": "bonds", "initialPrice": 100, "model": {"cycleRefs": ["missing"]}},
		{"id": "b", "type": "gold", "initialPrice": 100}
	]}`)}
	fsys["professions.json"] = &fstest.MapFile{Data: []byte(`{"professions": [{"id": "p", "startingPortfolio": {"ghost": 1}}]}`)}
	fsys["markets.json"] = &fstest.MapFile{Data: []byte(`{"correlations": {"matrix": {"b": {"x": 1.5}}}}`)}
	fsys["game_rules.json"] = &fstest.MapFile{Data: []byte(`{"win": [{"id": "w", "type": "be_happy"}]}`)}

	_, err := content.LoadFS(fsys)
	require.Error(t, err)

	msg := err.Error()
	assert.Contains(t, msg, `duplicate id "b"`)
	assert.Contains(t, msg, `unknown type "gold"`)
	assert.Contains(t, msg, `unknown cycle "missing"`)
	assert.Contains(t, msg, `unknown instrument "ghost"`)
	assert.Contains(t, msg, "out of [-1, 1]")
	assert.Contains(t, msg, `unknown type "be_happy"`)
}

func TestLoadFS_MissingFile(t *testing.T) {
	fsys := minimalFS()
	delete(fsys, "deals.json")

	_, err := content.LoadFS(fsys)
	require.Error(t, err)
	assert.ErrorIs(t, err, fs.ErrNotExist)
}

func TestLoadFS_BadJSON(t *testing.T) {
	fsys := minimalFS()
	fsys["markets.json"] = &fstest.MapFile{Data: []byte(`{`)}

	_, err := content.LoadFS(fsys)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse markets.json")
}
