package domain

import "encoding/json"

// AssetType es la clase de activo de un instrumento.
type AssetType string

const (
	AssetBonds  AssetType = "bonds"
	AssetStocks AssetType = "stocks"
	AssetCrypto AssetType = "crypto"
)

// Lockable indica si el tipo queda bloqueado tras una operación en el mes.
// Solo acciones y cripto; los bonos se pueden operar libremente.
func (t AssetType) Lockable() bool {
	return t == AssetStocks || t == AssetCrypto
}

// Valid reporta si el tipo es uno de los soportados.
func (t AssetType) Valid() bool {
	switch t {
	case AssetBonds, AssetStocks, AssetCrypto:
		return true
	}
	return false
}

// Instrument es un activo negociable del catálogo. Inmutable.
type Instrument struct {
	ID           string          `json:"id"`
	Title        string          `json:"title"`
	Type         AssetType       `json:"type"`
	InitialPrice float64         `json:"initialPrice"`
	Model        InstrumentModel `json:"model"`
	Trading      TradingRules    `json:"trading"`
}

// InstrumentModel son los parámetros del proceso de precios mensual.
type InstrumentModel struct {
	MuMonthly    float64 `json:"muMonthly"`
	SigmaMonthly float64 `json:"sigmaMonthly"`
	// nil = sin piso de caída
	MaxDrawdownClamp *float64 `json:"maxDrawdownClamp,omitempty"`
	CycleRefs        []string `json:"cycleRefs,omitempty"`
	ShockRefs        []string `json:"shockRefs,omitempty"`
}

// TradingRules son las comisiones y el mínimo de orden.
type TradingRules struct {
	BuyFeePct  float64 `json:"buyFeePct"`
	SellFeePct float64 `json:"sellFeePct"`
	MinOrder   float64 `json:"minOrder"`
}

// SalaryProgression sube el salario base un porcentaje cada StepMonths meses.
// Cap 0 significa sin techo.
type SalaryProgression struct {
	Percent    float64 `json:"percent"`
	StepMonths int     `json:"stepMonths"`
	Cap        float64 `json:"cap"`
}

// Profession es el punto de partida de una partida. Inmutable.
type Profession struct {
	ID                string             `json:"id"`
	Title             string             `json:"title"`
	StartingMoney     float64            `json:"startingMoney"`
	StartingDebt      float64            `json:"startingDebt"`
	SalaryMonthly     float64            `json:"salaryMonthly"`
	StartingPortfolio map[string]float64 `json:"startingPortfolio,omitempty"`
	MonthlyExpenses   map[string]float64 `json:"monthlyExpenses,omitempty"`
	SalaryProgression *SalaryProgression `json:"salaryProgression,omitempty"`
	CreditLimitBase   float64            `json:"creditLimitBase"`
}

// DealWindowRule define cuánto dura la ventana de una oportunidad y cuántos
// cupos ofrece.
type DealWindowRule struct {
	MinTurns int `json:"minTurns"`
	MaxTurns int `json:"maxTurns"`
	Slots    int `json:"slots"`
}

// UnmarshalJSON aplica los valores por defecto de las claves ausentes:
// minTurns 2, maxTurns = minTurns, slots 1.
func (r *DealWindowRule) UnmarshalJSON(data []byte) error {
	var raw struct {
		MinTurns *int `json:"minTurns"`
		MaxTurns *int `json:"maxTurns"`
		Slots    *int `json:"slots"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*r = DealWindowRule{MinTurns: 2, Slots: 1}
	if raw.MinTurns != nil {
		r.MinTurns = *raw.MinTurns
	}
	r.MaxTurns = r.MinTurns
	if raw.MaxTurns != nil {
		r.MaxTurns = *raw.MaxTurns
	}
	if raw.Slots != nil {
		r.Slots = *raw.Slots
	}
	return nil
}

// DealTemplate es una oportunidad de inversión con plazo fijo.
type DealTemplate struct {
	ID             string         `json:"id"`
	Title          string         `json:"title"`
	Description    string         `json:"description,omitempty"`
	EntryCost      float64        `json:"entryCost"`
	MonthlyPayout  float64        `json:"monthlyPayout"`
	DurationMonths int            `json:"durationMonths"`
	RiskMeter      int            `json:"riskMeter"`
	Window         DealWindowRule `json:"window"`
}

// ROI es el retorno total del trato sobre el capital de entrada.
func (d DealTemplate) ROI() float64 {
	if d.EntryCost <= 0 {
		return 0
	}
	return d.MonthlyPayout * float64(d.DurationMonths) / d.EntryCost
}

// RandomEvent es un suceso de vida que puede caer al cerrar el mes.
type RandomEvent struct {
	ID            string  `json:"id"`
	Title         string  `json:"title"`
	Description   string  `json:"description"`
	Type          string  `json:"type"` // positive | negative | neutral
	Chance        float64 `json:"chance"`
	ProtectionKey string  `json:"protectionKey,omitempty"`
	Effect        Effects `json:"effect"`
}

// UnmarshalJSON rellena chance=0.5 cuando la clave no viene.
func (e *RandomEvent) UnmarshalJSON(data []byte) error {
	type alias RandomEvent
	a := alias{Chance: 0.5}
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	*e = RandomEvent(a)
	return nil
}

// Tipos de acción del hogar, usados para ponderar las ofertas mensuales.
const (
	ActionKindChance      = "chance"
	ActionKindSalaryUp    = "salary_up"
	ActionKindExpenseDown = "expense_down"
	ActionKindCostDown    = "cost_down"
	ActionKindProtection  = "protection"
	ActionKindTakeCredit  = "take_credit"
	ActionKindDebtPayment = "debt_payment"
	ActionKindOther       = "other"
)

// HomeAction es una mejora que el jugador puede aplicar entre turnos.
type HomeAction struct {
	ID            string  `json:"id"`
	Title         string  `json:"title"`
	Type          string  `json:"type,omitempty"`
	Effect        string  `json:"effect,omitempty"`
	Cost          float64 `json:"cost,omitempty"`
	Value         float64 `json:"value,omitempty"`
	ProtectionKey string  `json:"protectionKey,omitempty"`
	ChanceSuccess float64 `json:"chanceSuccess,omitempty"`
	Success       Effects `json:"success,omitempty"`
	Fail          Effects `json:"fail,omitempty"`
}

// UnmarshalJSON rellena chanceSuccess=0.5 cuando la clave no viene.
func (a *HomeAction) UnmarshalJSON(data []byte) error {
	type alias HomeAction
	v := alias{ChanceSuccess: 0.5}
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*a = HomeAction(v)
	return nil
}

// Kind clasifica la acción. debt_payment se reconoce por id, no por efecto.
func (a HomeAction) Kind() string {
	switch {
	case a.Type == ActionKindChance:
		return ActionKindChance
	case a.Effect == ActionKindSalaryUp:
		return ActionKindSalaryUp
	case a.Effect == ActionKindExpenseDown:
		return ActionKindExpenseDown
	case a.Effect == ActionKindCostDown:
		return ActionKindCostDown
	case a.Effect == ActionKindProtection:
		return ActionKindProtection
	case a.Effect == ActionKindTakeCredit:
		return ActionKindTakeCredit
	case a.ID == ActionKindDebtPayment:
		return ActionKindDebtPayment
	}
	return ActionKindOther
}

// HomeActionCatalog agrupa las acciones y las reglas de la oferta mensual.
type HomeActionCatalog struct {
	Count       int                `json:"count"`
	ShowChance  float64            `json:"showChance"`
	TypeWeights map[string]float64 `json:"typeWeights,omitempty"`
	Actions     []HomeAction       `json:"actions"`
}

// UnmarshalJSON rellena count=4 y showChance=0.55 cuando faltan.
func (c *HomeActionCatalog) UnmarshalJSON(data []byte) error {
	type alias HomeActionCatalog
	v := alias{Count: 4, ShowChance: 0.55}
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*c = HomeActionCatalog(v)
	return nil
}

// Cycle es una componente sinusoidal compartida por varios instrumentos.
type Cycle struct {
	ID           string  `json:"id"`
	PeriodMonths float64 `json:"periodMonths"`
	Amplitude    float64 `json:"amplitude"`
	Phase        float64 `json:"phase"`
}

// Shock es un evento de mercado raro con impacto logarítmico aleatorio.
type Shock struct {
	ID             string  `json:"id"`
	ProbMonthly    float64 `json:"probMonthly"`
	CooldownMonths int     `json:"cooldownMonths"`
	MeanLogImpact  float64 `json:"meanLogImpact"`
	StdLogImpact   float64 `json:"stdLogImpact"`
}

// MarketGlobal son los límites que aplican a todos los instrumentos.
type MarketGlobal struct {
	// nil = sin recorte absoluto
	MaxMonthlyReturnAbs *float64 `json:"maxMonthlyReturnAbs,omitempty"`
	MinPrice            float64  `json:"minPrice"`
	SignificantDrop     float64  `json:"significantDrop"`
	SignificantRise     float64  `json:"significantRise"`
}

// MarketConfig describe el modelo de mercado completo.
type MarketConfig struct {
	Correlations struct {
		Matrix map[string]map[string]float64 `json:"matrix"`
	} `json:"correlations"`
	Cycles     []Cycle `json:"cycles"`
	ShockModel struct {
		Events []Shock `json:"events"`
	} `json:"shockModel"`
	Global MarketGlobal `json:"global"`
}
