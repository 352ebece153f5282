package domain

import "time"

// GameSummary es la fila de una partida guardada.
type GameSummary struct {
	ID           string    `json:"id"`
	ProfessionID string    `json:"professionId"`
	Difficulty   string    `json:"difficulty"`
	Month        int       `json:"month"`
	Cash         float64   `json:"cash"`
	NetWorth     float64   `json:"netWorth"`
	Debt         float64   `json:"debt"`
	Outcome      string    `json:"outcome,omitempty"` // "win:<regla>", "lose:<regla>" o vacío
	UpdatedAt    time.Time `json:"updatedAt"`
}

// TurnRecord son las métricas de un mes ya jugado.
type TurnRecord struct {
	Month         int     `json:"month"`
	Cash          float64 `json:"cash"`
	NetWorth      float64 `json:"netWorth"`
	PassiveIncome float64 `json:"passiveIncome"`
	CashFlow      float64 `json:"cashFlow"`
	Debt          float64 `json:"debt"`
	EventID       string  `json:"eventId,omitempty"`
}

// Outcome resume el resultado de la partida para listados.
func (s GameState) Outcome() string {
	switch {
	case s.WinCondition != nil:
		return "win:" + s.WinCondition.RuleID
	case s.LoseCondition != nil:
		return "lose:" + s.LoseCondition.RuleID
	}
	return ""
}

// NetWorthNow es el patrimonio con los precios actuales.
func (s GameState) NetWorthNow() float64 {
	return NetWorth(s.Cash, HoldingsValue(s.Investments, s.PriceState), s.Debt)
}
