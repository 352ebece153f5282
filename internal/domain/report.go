package domain

import "time"

// RunOutcome es el resultado de una partida simulada por el harness.
// Los meses son 1-based; 0 significa que el hito no ocurrió.
type RunOutcome struct {
	Profession    string  `json:"profession"`
	PositiveMonth int     `json:"positiveMonth"`
	SustainMonth  int     `json:"sustainMonth"` // racha de 5 meses positivos
	StableMonth   int     `json:"stableMonth"`  // racha de 6 meses positivos
	BankruptMonth int     `json:"bankruptMonth"`
	WinMonth      int     `json:"winMonth"`
	NetWorth      float64 `json:"netWorth"`
	Cash          float64 `json:"cash"`
	Events        int     `json:"events"`
	EventsPos     int     `json:"eventsPositive"`
	EventsNeg     int     `json:"eventsNegative"`
}

// Won / Lost / Sustained son atajos para los criterios del check.
func (r RunOutcome) Won() bool       { return r.WinMonth > 0 }
func (r RunOutcome) Lost() bool      { return r.BankruptMonth > 0 }
func (r RunOutcome) Sustained() bool { return r.SustainMonth > 0 }

// Stats es el resumen estadístico de una serie.
type Stats struct {
	Count int     `json:"count"`
	Mean  float64 `json:"mean"`
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
	P10   float64 `json:"p10"`
	P50   float64 `json:"p50"`
	P90   float64 `json:"p90"`
}

// EventStats agrupa los conteos de eventos por partida.
type EventStats struct {
	Total    Stats `json:"total"`
	Positive Stats `json:"positive"`
	Negative Stats `json:"negative"`
}

// RateStat es una proporción sobre el total de partidas.
type RateStat struct {
	Rate float64 `json:"rate"`
}

// PolicyReport es el informe estadístico de una política.
type PolicyReport struct {
	Policy             string     `json:"policy"`
	Runs               int        `json:"runs"`
	Months             int        `json:"months"`
	TimeToPositive     Stats      `json:"timeToPositive"`
	TimeToStablePlus   Stats      `json:"timeToStablePlus"`
	TimeToBankrupt     Stats      `json:"timeToBankrupt"`
	TimeToWin          Stats      `json:"timeToWin"`
	FinalNetWorth      Stats      `json:"finalNetWorth"`
	FinalCash          Stats      `json:"finalCash"`
	BankruptcyWithin50 RateStat   `json:"bankruptcyWithin50"`
	Events             EventStats `json:"events"`
}

// ReportMeta identifica una ejecución del simulador.
type ReportMeta struct {
	ID        string    `json:"id"`
	Seed      int64     `json:"seed"`
	Runs      int       `json:"runs"`
	Months    int       `json:"months"`
	Timestamp time.Time `json:"timestamp"`
}

// SimReport es el informe completo de balance.
type SimReport struct {
	Meta    ReportMeta     `json:"meta"`
	Summary []PolicyReport `json:"summary"`
}

// CheckMetrics son las métricas del check de aceptación.
type CheckMetrics struct {
	SpeedrunWin            float64 `json:"speedrunWin"`
	UnfairLose             float64 `json:"unfairLose"`
	BalancedBankruptcy     float64 `json:"balancedBankruptcy"`
	AggressiveBankruptcy   float64 `json:"aggressiveBankruptcy"`
	ConservativeBankruptcy float64 `json:"conservativeBankruptcy"`
	BalancedSustain        float64 `json:"balancedSustain"`
	MedianBalanced         float64 `json:"medianBalanced"`
	MedianAggressive       float64 `json:"medianAggressive"`
	MedianConservative     float64 `json:"medianConservative"`
	StrategyGap            float64 `json:"strategyGap"`
}

// CheckResult es el veredicto del check más las métricas que lo sustentan.
type CheckResult struct {
	ID         string       `json:"id"`
	Acceptable bool         `json:"acceptable"`
	Failed     []string     `json:"failed,omitempty"` // criterios incumplidos
	Metrics    CheckMetrics `json:"metrics"`
	Runs       int          `json:"runs"`
	Turns      int          `json:"turns"`
	ShortTurns int          `json:"shortTurns"`
	Seed       int64        `json:"seed"`
	CheckedAt  time.Time    `json:"checkedAt"`
}
