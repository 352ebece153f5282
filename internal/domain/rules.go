package domain

// Tipos de regla de victoria y derrota reconocidos.
const (
	WinPassiveCoversCosts = "passive_income_cover_costs"
	WinNetWorthReach      = "net_worth_reach"

	LoseNoLiquidity = "no_liquidity_no_credit"
	LoseDebtSpiral  = "negative_cashflow_debt_growing"
	LoseInsolvency  = "insolvency" // alias de LoseDebtSpiral
	LoseDebtRatio   = "debt_ratio"
)

// WinRule es una condición de victoria con racha mínima.
type WinRule struct {
	ID                   string  `json:"id"`
	Type                 string  `json:"type"`
	Title                string  `json:"title,omitempty"`
	Target               float64 `json:"target,omitempty"`
	RequiredStreakMonths int     `json:"requiredStreakMonths,omitempty"`
}

// LoseRule es una condición de derrota con meses consecutivos requeridos.
type LoseRule struct {
	ID                string  `json:"id"`
	Type              string  `json:"type"`
	Title             string  `json:"title,omitempty"`
	ConsecutiveMonths int     `json:"consecutiveMonths,omitempty"`
	MinDebtToNetWorth float64 `json:"minDebtToNetWorth,omitempty"`
}

// LivingCostRules es la tabla de coste de vida por profesión.
type LivingCostRules struct {
	DefaultMonthly      float64            `json:"defaultMonthly"`
	ProfessionOverrides map[string]float64 `json:"professionOverrides,omitempty"`
}

// CreditLimitRules son los coeficientes de la fórmula del límite de crédito.
type CreditLimitRules struct {
	NetWorthMultiplier float64 `json:"netWorthMultiplier"`
	SalaryMultiplier   float64 `json:"salaryMultiplier"`
	CapMultiplier      float64 `json:"capMultiplier"`
}

// LoanRules agrupa tasa mensual y fórmula de límite.
type LoanRules struct {
	APR         float64           `json:"apr"` // tasa mensual
	TermMonths  int               `json:"termMonths,omitempty"`
	CreditLimit *CreditLimitRules `json:"creditLimit,omitempty"`
}

// ProgressiveExpenses cobra un extra según caja acumulada e ingresos.
type ProgressiveExpenses struct {
	CashThreshold float64 `json:"cashThreshold"`
	CashRate      float64 `json:"cashRate"`
	IncomeRate    float64 `json:"incomeRate"`
	// nil = sin techo
	CapMonthly *float64 `json:"capMonthly,omitempty"`
}

// AssetMaintenance cobra un porcentaje del valor de la cartera, con mínimo.
type AssetMaintenance struct {
	RateMonthly float64 `json:"rateMonthly"`
	MinMonthly  float64 `json:"minMonthly"`
}

// EmergencyCredit dispara un giro automático cuando la caja queda negativa.
type EmergencyCredit struct {
	Enabled     bool    `json:"enabled"`
	MinDraw     float64 `json:"minDraw"`
	DrawPercent float64 `json:"drawPercent"`
}

// DifficultyPreset es el umbral de probabilidad de evento de un nivel.
type DifficultyPreset struct {
	EventChance float64 `json:"eventChance"`
}

// DifficultyRules lista los niveles disponibles.
type DifficultyRules struct {
	Default string                      `json:"default"`
	Presets map[string]DifficultyPreset `json:"presets"`
}

// EventChance devuelve el umbral del nivel, o el del nivel por defecto si el
// nivel no existe.
func (d DifficultyRules) EventChance(level string) float64 {
	if p, ok := d.Presets[level]; ok {
		return p.EventChance
	}
	return d.Presets[d.Default].EventChance
}

// PassiveMultipliers es el rendimiento mensual por clase de activo.
type PassiveMultipliers map[AssetType]float64

// unknownAssetMultiplier se usa para tipos no listados.
const unknownAssetMultiplier = 0.001

// For devuelve el multiplicador del tipo. Un tipo vacío cuenta como acciones.
func (p PassiveMultipliers) For(t AssetType) float64 {
	if t == "" {
		t = AssetStocks
	}
	if v, ok := p[t]; ok {
		return v
	}
	return unknownAssetMultiplier
}

// GameRules es game_rules.json ya tipado.
type GameRules struct {
	LivingCost          *LivingCostRules     `json:"livingCost,omitempty"`
	Loans               LoanRules            `json:"loans"`
	ProgressiveExpenses *ProgressiveExpenses `json:"progressiveExpenses,omitempty"`
	AssetMaintenance    *AssetMaintenance    `json:"assetMaintenance,omitempty"`
	EmergencyCredit     *EmergencyCredit     `json:"emergencyCredit,omitempty"`
	PassiveMultipliers  PassiveMultipliers   `json:"passiveMultipliers,omitempty"`
	Difficulty          DifficultyRules      `json:"difficulty"`
	Win                 []WinRule            `json:"win"`
	Lose                []LoseRule           `json:"lose"`
}
