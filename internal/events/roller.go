// Package events decide qué suceso de vida cae en el mes. La aplicación de
// sus efectos sobre el estado la hace el orquestador del turno.
package events

import (
	"github.com/toropanov/capetica/internal/domain"
	"github.com/toropanov/capetica/internal/rng"
)

// Roll es el resultado de la tirada de eventos del mes.
type Roll struct {
	Event     *domain.RandomEvent // nil si no cayó nada
	Prevented bool                // una protección absorbió el evento
	Message   string
	Seed      uint32
}

// Applies reporta si hay efectos que aplicar.
func (r Roll) Applies() bool {
	return r.Event != nil && !r.Prevented
}

// RollEvent hace la tirada con doble filtro: primero contra el umbral de
// dificultad, después elige un evento al azar y lo confirma contra su propia
// chance. Si el jugador tiene la protección del evento, el evento se marca
// como prevenido; consumir la protección queda a cargo del llamador.
func RollEvent(pool []domain.RandomEvent, threshold float64, protections map[string]bool, seed uint32) Roll {
	if len(pool) == 0 {
		return Roll{Seed: seed}
	}

	var gate, pick, confirm float64
	gate, seed = rng.Uniform(seed)
	if gate > threshold {
		return Roll{Seed: seed}
	}
	pick, seed = rng.Uniform(seed)
	ev := pool[rng.Index(pick, len(pool))]

	confirm, seed = rng.Uniform(seed)
	if confirm > ev.Chance {
		return Roll{Seed: seed}
	}

	if ev.ProtectionKey != "" && protections[ev.ProtectionKey] {
		return Roll{Event: &ev, Prevented: true, Message: ev.Title + ": protection kicked in", Seed: seed}
	}
	return Roll{Event: &ev, Message: Message(ev), Seed: seed}
}

// Message arma el texto del log: "título: descripción (efectos)". Los
// eventos que no son positivos llevan un aviso delante.
func Message(ev domain.RandomEvent) string {
	base := ev.Title + ": " + ev.Description
	if ev.Type != "positive" {
		base = "⚠ " + base
	}
	if desc := ev.Effect.Describe(); desc != "" {
		return base + " (" + desc + ")"
	}
	return base
}

// Outcome convierte la tirada en el resumen que se guarda en el estado.
func (r Roll) Outcome() *domain.EventOutcome {
	if r.Event == nil {
		return nil
	}
	return &domain.EventOutcome{
		EventID:   r.Event.ID,
		Title:     r.Event.Title,
		Type:      r.Event.Type,
		Prevented: r.Prevented,
		Message:   r.Message,
	}
}
