// Package game es el núcleo de la simulación: arranque de una partida, el
// turno mensual y las acciones del jugador entre turnos.
//
// Todas las funciones reciben un GameState por valor y devuelven el estado
// nuevo; la entrada nunca se modifica. Una acción rechazada devuelve el
// estado de entrada junto con un error centinela de domain.
package game

import (
	"fmt"
	"slices"

	"github.com/toropanov/capetica/internal/content"
	"github.com/toropanov/capetica/internal/credit"
	"github.com/toropanov/capetica/internal/domain"
)

const (
	// RecentLogSize es cuántas entradas guarda el log reciente.
	RecentLogSize = 5
	// HistoryCap es el máximo de puntos de cada serie del histórico.
	HistoryCap = 120
	// OfferLifetime son los meses que una acción aplicada queda activa.
	OfferLifetime = 12
)

// Sim aplica las reglas de un Bundle. No guarda estado propio, así que un
// mismo Sim se puede usar desde varias goroutines.
type Sim struct {
	content *content.Bundle
}

// New crea un simulador sobre el contenido dado.
func New(b *content.Bundle) *Sim {
	return &Sim{content: b}
}

// Content devuelve el contenido con el que se creó el simulador.
func (g *Sim) Content() *content.Bundle {
	return g.content
}

func (g *Sim) rules() *domain.GameRules {
	return &g.content.Rules
}

// nextID genera ids deterministas a partir del contador de la partida.
func nextID(s *domain.GameState, prefix string, month int) string {
	s.NextSeq++
	return fmt.Sprintf("%s-%d-%d", prefix, month, s.NextSeq)
}

func drawIDs(s *domain.GameState) credit.IDFunc {
	return func(month int) string {
		return nextID(s, "draw", month)
	}
}

// pushLog agrega una entrada al principio del log reciente.
func pushLog(s *domain.GameState, kind, text string, amount float64) {
	entry := domain.LogEntry{
		ID:     nextID(s, kind, s.Month),
		Month:  s.Month,
		Type:   kind,
		Text:   text,
		Amount: amount,
	}
	s.RecentLog = append([]domain.LogEntry{entry}, s.RecentLog...)
	if len(s.RecentLog) > RecentLogSize {
		s.RecentLog = s.RecentLog[:RecentLogSize]
	}
}

func appendHistory(series []domain.HistoryPoint, p domain.HistoryPoint) []domain.HistoryPoint {
	out := append(slices.Clone(series), p)
	if len(out) > HistoryCap {
		out = out[len(out)-HistoryCap:]
	}
	return out
}
