// Package strategy define los jugadores automáticos que usa el harness de
// balance: políticas basadas en reglas que actúan entre turnos.
package strategy

import (
	"slices"

	"github.com/toropanov/capetica/internal/domain"
	"github.com/toropanov/capetica/internal/game"
)

// Strategy define el contrato de un jugador automático.
// Cada estrategia encapsula una forma distinta de manejar el dinero.
type Strategy interface {
	// Name devuelve el identificador único de la estrategia.
	Name() string

	// Act aplica las decisiones del mes sobre s usando las acciones del
	// simulador y devuelve el estado resultante. No avanza el turno.
	Act(sim *game.Sim, s domain.GameState) domain.GameState
}

// Registry mantiene las estrategias disponibles indexadas por nombre.
type Registry map[string]Strategy

// NewRegistry crea un registry vacío.
func NewRegistry() Registry {
	return make(Registry)
}

// Register añade una estrategia al registry.
func (r Registry) Register(s Strategy) {
	r[s.Name()] = s
}

// Get devuelve la estrategia por nombre.
func (r Registry) Get(name string) (Strategy, bool) {
	s, ok := r[name]
	return s, ok
}

// Names lista los nombres registrados en orden alfabético.
func (r Registry) Names() []string {
	return domain.SortedKeys(r)
}

// DefaultRegistry registra las tres políticas por defecto.
func DefaultRegistry() Registry {
	r := NewRegistry()
	for _, cfg := range DefaultConfigs() {
		r.Register(NewPolicy(cfg))
	}
	return r
}

// DefaultNames son las políticas por defecto en el orden del informe.
func DefaultNames() []string {
	cfgs := DefaultConfigs()
	out := make([]string, 0, len(cfgs))
	for _, c := range cfgs {
		out = append(out, c.Name)
	}
	return slices.Clip(out)
}
