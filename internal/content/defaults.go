package content

import "github.com/toropanov/capetica/internal/domain"

const (
	defaultTakeCreditValue = 1000
	defaultMinPrice        = 0.01
	defaultSignificantDrop = -0.15
	defaultSignificantRise = 0.15
	defaultDifficulty      = "normal"
	defaultWindowMinTurns  = 2
	defaultWindowSlots     = 1
)

func defaultPresets() map[string]domain.DifficultyPreset {
	return map[string]domain.DifficultyPreset{
		"easy":   {EventChance: 0.65},
		"normal": {EventChance: 0.38},
		"hard":   {EventChance: 0.45},
	}
}

// applyDefaults resuelve una sola vez los valores que el contenido puede omitir,
// para que el núcleo de la simulación nunca tenga que hacer fallback al leer.
func applyDefaults(b *Bundle) {
	r := &b.Rules

	if r.Loans.CreditLimit == nil {
		r.Loans.CreditLimit = &domain.CreditLimitRules{}
	}
	cl := r.Loans.CreditLimit
	if cl.NetWorthMultiplier == 0 {
		cl.NetWorthMultiplier = domain.DefaultNetWorthMultiplier
	}
	if cl.SalaryMultiplier == 0 {
		cl.SalaryMultiplier = domain.DefaultSalaryMultiplier
	}
	if cl.CapMultiplier == 0 {
		cl.CapMultiplier = domain.DefaultCapMultiplier
	}

	// los tipos ausentes toman el rendimiento estándar
	pm := domain.DefaultPassiveMultipliers()
	for t, v := range r.PassiveMultipliers {
		pm[t] = v
	}
	r.PassiveMultipliers = pm

	if len(r.Difficulty.Presets) == 0 {
		r.Difficulty.Presets = defaultPresets()
	}
	if r.Difficulty.Default == "" {
		r.Difficulty.Default = defaultDifficulty
	}

	for i := range r.Win {
		if r.Win[i].RequiredStreakMonths <= 0 {
			r.Win[i].RequiredStreakMonths = 1
		}
	}
	for i := range r.Lose {
		l := &r.Lose[i]
		if l.ConsecutiveMonths <= 0 {
			l.ConsecutiveMonths = 1
		}
		if l.Type == domain.LoseDebtRatio && l.MinDebtToNetWorth == 0 {
			l.MinDebtToNetWorth = 1
		}
	}

	for i := range b.HomeActions.Actions {
		a := &b.HomeActions.Actions[i]
		if a.Kind() == domain.ActionKindTakeCredit && a.Value == 0 {
			a.Value = defaultTakeCreditValue
		}
	}

	for i := range b.Professions {
		sp := b.Professions[i].SalaryProgression
		if sp != nil && sp.StepMonths <= 0 {
			sp.StepMonths = 1
		}
	}

	// un trato sin "window" llega con la regla en cero
	for i := range b.Deals {
		w := &b.Deals[i].Window
		if w.MinTurns <= 0 {
			w.MinTurns = defaultWindowMinTurns
		}
		if w.MaxTurns <= 0 {
			w.MaxTurns = w.MinTurns
		}
		if w.Slots <= 0 {
			w.Slots = defaultWindowSlots
		}
	}

	m := &b.Markets
	for i := range m.Cycles {
		if m.Cycles[i].PeriodMonths == 0 {
			m.Cycles[i].PeriodMonths = 1
		}
	}
	if m.Global.MinPrice <= 0 {
		m.Global.MinPrice = defaultMinPrice
	}
	if m.Global.SignificantDrop == 0 {
		m.Global.SignificantDrop = defaultSignificantDrop
	}
	if m.Global.SignificantRise == 0 {
		m.Global.SignificantRise = defaultSignificantRise
	}
}
