package domain

import (
	"maps"
	"slices"
)

// HoldingEpsilon: por debajo de estas unidades la posición se elimina.
const HoldingEpsilon = 0.0001

// PricePoint es un punto del histórico de precios.
type PricePoint struct {
	Month int     `json:"month"`
	Price float64 `json:"price"`
}

// PriceState es el precio vigente de un instrumento. El slice History se trata
// como inmutable: el simulador siempre crea uno nuevo, así que las copias del
// estado pueden compartirlo.
type PriceState struct {
	Price      float64      `json:"price"`
	History    []PricePoint `json:"history"`
	LastReturn float64      `json:"lastReturn"`
}

// Holding es una posición del jugador en un instrumento.
type Holding struct {
	Units          float64 `json:"units"`
	CostBasis      float64 `json:"costBasis"` // precio medio por unidad
	LeveragedUnits float64 `json:"leveragedUnits"`
	LeveragedCost  float64 `json:"leveragedCost"`
}

// DealWindow es la disponibilidad actual de una oportunidad.
type DealWindow struct {
	ExpiresIn int `json:"expiresIn"`
	SlotsLeft int `json:"slotsLeft"`
	MaxSlots  int `json:"maxSlots"`
}

// Open reporta si el trato admite entradas ahora mismo.
func (w DealWindow) Open() bool {
	return w.ExpiresIn > 0 && w.SlotsLeft > 0
}

// DealParticipation es un trato en el que el jugador entró.
type DealParticipation struct {
	ParticipationID string  `json:"participationId"`
	DealID          string  `json:"dealId"`
	Title           string  `json:"title"`
	Invested        float64 `json:"invested"`
	MonthlyPayout   float64 `json:"monthlyPayout"`
	DurationMonths  int     `json:"durationMonths"`
	ElapsedMonths   int     `json:"elapsedMonths"`
	ProfitEarned    float64 `json:"profitEarned"`
	Completed       bool    `json:"completed"`
	Risk            int     `json:"risk"`
	StartedTurn     int     `json:"startedTurn"`
}

// CreditDraw es una entrada del libro de crédito.
type CreditDraw struct {
	ID           string  `json:"id"`
	Balance      float64 `json:"balance"`
	CreatedMonth int     `json:"createdMonth"`
	Label        string  `json:"label"`
}

// Trackers cuentan la racha actual de cada regla de victoria y derrota.
type Trackers struct {
	Win  map[string]int `json:"win"`
	Lose map[string]int `json:"lose"`
}

// GoalOutcome es la regla que se cumplió y el mes en que lo hizo.
type GoalOutcome struct {
	RuleID string `json:"ruleId"`
	Type   string `json:"type"`
	Title  string `json:"title,omitempty"`
	Month  int    `json:"month"`
}

// SalaryProgressionState es el avance de la progresión salarial.
type SalaryProgressionState struct {
	SalaryProgression
	MonthsUntilStep int     `json:"monthsUntilStep"`
	CurrentBase     float64 `json:"currentBase"`
}

// HistoryPoint es un punto mensual de una serie.
type HistoryPoint struct {
	Month int     `json:"month"`
	Value float64 `json:"value"`
}

// History son las series mensuales que se muestran en estadísticas.
type History struct {
	NetWorth      []HistoryPoint `json:"netWorth"`
	CashFlow      []HistoryPoint `json:"cashFlow"`
	PassiveIncome []HistoryPoint `json:"passiveIncome"`
}

// Tipos de entrada del log reciente.
const (
	LogEvent    = "event"
	LogStopLoss = "stoploss"
	LogMarket   = "market"
	LogTrade    = "trade"
	LogAction   = "action"
	LogCredit   = "credit"
)

// LogEntry es una línea del log reciente.
type LogEntry struct {
	ID     string  `json:"id"`
	Month  int     `json:"month"`
	Type   string  `json:"type"`
	Text   string  `json:"text"`
	Amount float64 `json:"amount,omitempty"`
}

// EventOutcome es el evento que cayó en el último turno.
type EventOutcome struct {
	EventID   string `json:"eventId"`
	Title     string `json:"title"`
	Type      string `json:"type"`
	Prevented bool   `json:"prevented"`
	Message   string `json:"message"`
}

// ActiveOffer es una acción del hogar aplicada hace menos de 12 meses.
type ActiveOffer struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	ExpiresMonth int    `json:"expiresMonth"`
}

// Purchase es una compra hecha en el mes en curso.
type Purchase struct {
	Turn        int     `json:"turn"`
	Amount      float64 `json:"amount"`
	PassiveGain float64 `json:"passiveGain"`
	Units       float64 `json:"units"`
}

// TurnMetrics son las métricas finales del turno que alimentan las metas.
type TurnMetrics struct {
	Cash              float64 `json:"cash"`
	NetWorth          float64 `json:"netWorth"`
	PassiveIncome     float64 `json:"passiveIncome"`
	RecurringExpenses float64 `json:"recurringExpenses"` // gasto efectivo del mes
	MonthlyCashFlow   float64 `json:"monthlyCashFlow"`
	DebtDelta         float64 `json:"debtDelta"`
	Debt              float64 `json:"debt"`
	AvailableCredit   float64 `json:"availableCredit"`
}

// TurnSummary es el artefacto que deja cada turno para la capa de
// presentación.
type TurnSummary struct {
	Month              int                `json:"month"`
	Salary             float64            `json:"salary"`
	PassiveIncome      float64            `json:"passiveIncome"`
	LivingCost         float64            `json:"livingCost"`
	RecurringExpenses  float64            `json:"recurringExpenses"`
	EffectiveRecurring float64            `json:"effectiveRecurring"`
	DebtInterest       float64            `json:"debtInterest"`
	EmergencyDraw      float64            `json:"emergencyDraw"`
	AutoLiquidation    float64            `json:"autoLiquidation"`
	Returns            map[string]float64 `json:"returns"`
	StopLossWarnings   []string           `json:"stopLossWarnings"`
	Metrics            TurnMetrics        `json:"metrics"`
	Event              *EventOutcome      `json:"event,omitempty"`
}

// HighlightMetric es el antes y después de una métrica del turno.
type HighlightMetric struct {
	Key   string  `json:"key"`
	Label string  `json:"label"`
	Prev  float64 `json:"prev"`
	Next  float64 `json:"next"`
	Delta float64 `json:"delta"`
}

// HighlightPurchase es una compra del mes listada en el resumen.
type HighlightPurchase struct {
	InstrumentID string    `json:"instrumentId"`
	Title        string    `json:"title"`
	Type         AssetType `json:"type"`
	Amount       float64   `json:"amount"`
	PassiveGain  float64   `json:"passiveGain"`
}

// HighlightDeal es un trato que empezó este mes.
type HighlightDeal struct {
	ParticipationID string  `json:"participationId"`
	Title           string  `json:"title"`
	Payout          float64 `json:"payout"`
}

// TurnHighlight resume qué cambió en el turno.
type TurnHighlight struct {
	Month        int                 `json:"month"`
	Metrics      []HighlightMetric   `json:"metrics"`
	Acquisitions []HighlightPurchase `json:"acquisitions"`
	Deals        []HighlightDeal     `json:"deals"`
}

// GameState es la raíz de una partida. Las funciones de transición reciben
// un valor, lo clonan y devuelven el nuevo estado; nunca mutan la entrada.
type GameState struct {
	ProfessionID   string `json:"professionId"`
	Difficulty     string `json:"difficulty"`
	SelectedGoalID string `json:"selectedGoalId"`
	Month          int    `json:"month"`

	Cash              float64 `json:"cash"`
	Debt              float64 `json:"debt"`
	SalaryBonus       float64 `json:"salaryBonus"`
	RecurringExpenses float64 `json:"recurringExpenses"`
	LivingCost        float64 `json:"livingCost"`

	CreditLimit     float64      `json:"creditLimit"`
	AvailableCredit float64      `json:"availableCredit"`
	CreditBucket    float64      `json:"creditBucket"`
	CreditDraws     []CreditDraw `json:"creditDraws"`

	Protections map[string]bool       `json:"protections"`
	Investments map[string]Holding    `json:"investments"`
	PriceState  map[string]PriceState `json:"priceState"`
	ShockState  map[string]int        `json:"shockState"`

	DealWindows        map[string]DealWindow `json:"dealWindows"`
	DealParticipations []DealParticipation   `json:"dealParticipations"`

	Trackers      Trackers     `json:"trackers"`
	WinCondition  *GoalOutcome `json:"winCondition"`
	LoseCondition *GoalOutcome `json:"loseCondition"`

	SalaryProgression *SalaryProgressionState `json:"salaryProgression"`
	JoblessMonths     int                     `json:"joblessMonths"`
	SalaryCutMonths   int                     `json:"salaryCutMonths"`
	SalaryCutAmount   float64                 `json:"salaryCutAmount"`

	History       History        `json:"history"`
	LastTurn      *TurnSummary   `json:"lastTurn"`
	RecentLog     []LogEntry     `json:"recentLog"`
	CurrentEvent  *EventOutcome  `json:"currentEvent"`
	TurnHighlight *TurnHighlight `json:"turnHighlight"`

	AvailableActions    []string            `json:"availableActions"`
	ActiveMonthlyOffers []ActiveOffer       `json:"activeMonthlyOffers"`
	MonthlyOfferUsed    bool                `json:"monthlyOfferUsed"`
	ActionsThisTurn     int                 `json:"actionsThisTurn"`
	TradeLocks          map[string]int      `json:"tradeLocks"`
	LastPurchases       map[string]Purchase `json:"lastPurchases"`

	RNGSeed uint32 `json:"rngSeed"`
	NextSeq int    `json:"nextSeq"`
}

// Started reporta si hay una profesión elegida.
func (s GameState) Started() bool {
	return s.ProfessionID != ""
}

// Finished reporta si la partida ya tiene resultado.
func (s GameState) Finished() bool {
	return s.WinCondition != nil || s.LoseCondition != nil
}

// Clone hace una copia profunda. Los históricos de precios se comparten
// porque nunca se modifican en sitio.
func (s GameState) Clone() GameState {
	c := s
	c.CreditDraws = slices.Clone(s.CreditDraws)
	c.Protections = maps.Clone(s.Protections)
	c.Investments = maps.Clone(s.Investments)
	c.PriceState = maps.Clone(s.PriceState)
	c.ShockState = maps.Clone(s.ShockState)
	c.DealWindows = maps.Clone(s.DealWindows)
	c.DealParticipations = slices.Clone(s.DealParticipations)
	c.Trackers = Trackers{Win: maps.Clone(s.Trackers.Win), Lose: maps.Clone(s.Trackers.Lose)}
	if s.WinCondition != nil {
		w := *s.WinCondition
		c.WinCondition = &w
	}
	if s.LoseCondition != nil {
		l := *s.LoseCondition
		c.LoseCondition = &l
	}
	if s.SalaryProgression != nil {
		p := *s.SalaryProgression
		c.SalaryProgression = &p
	}
	c.History = History{
		NetWorth:      slices.Clone(s.History.NetWorth),
		CashFlow:      slices.Clone(s.History.CashFlow),
		PassiveIncome: slices.Clone(s.History.PassiveIncome),
	}
	c.RecentLog = slices.Clone(s.RecentLog)
	c.AvailableActions = slices.Clone(s.AvailableActions)
	c.ActiveMonthlyOffers = slices.Clone(s.ActiveMonthlyOffers)
	c.TradeLocks = maps.Clone(s.TradeLocks)
	c.LastPurchases = maps.Clone(s.LastPurchases)
	// LastTurn, CurrentEvent y TurnHighlight se reemplazan enteros, nunca se editan.
	return c
}

// AvailableCreditForDraw es el crédito disponible recortado a 0.
func (s GameState) AvailableCreditForDraw() float64 {
	return max(0, s.CreditLimit-s.Debt)
}

// HasProtection reporta si la protección está activa.
func (s GameState) HasProtection(key string) bool {
	return s.Protections[key]
}

// SortedKeys devuelve las claves de un mapa en orden; se usa en cualquier
// suma de floats sobre mapas para que el resultado no dependa del orden de
// iteración.
func SortedKeys[V any](m map[string]V) []string {
	return slices.Sorted(maps.Keys(m))
}
