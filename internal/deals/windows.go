// Package deals rota las ventanas de disponibilidad de las oportunidades de
// inversión y controla sus cupos.
package deals

import (
	"maps"

	"github.com/toropanov/capetica/internal/domain"
	"github.com/toropanov/capetica/internal/rng"
)

// tirada neutra para ventanas que aparecen sin estado previo
const neutralRoll = 0.5

// PickDuration proyecta una tirada sobre [minTurns, maxTurns].
func PickDuration(rule domain.DealWindowRule, roll float64) int {
	lo := max(1, rule.MinTurns)
	hi := max(lo, rule.MaxTurns)
	span := hi - lo + 1
	bucket := min(span-1, max(0, int(roll*float64(span))))
	return lo + bucket
}

// Init abre una ventana por plantilla con una duración tirada de seed.
func Init(templates []domain.DealTemplate, seed uint32) (map[string]domain.DealWindow, uint32) {
	seed = rng.EnsureSeed(seed)
	out := make(map[string]domain.DealWindow, len(templates))
	for _, t := range templates {
		var roll float64
		roll, seed = rng.Uniform(seed)
		out[t.ID] = fresh(t.Window, PickDuration(t.Window, roll))
	}
	return out, seed
}

// Advance descuenta un mes a cada ventana. Las que llegan a 0 se reabren con
// una duración nueva y los cupos completos. Solo esas consumen tirada.
func Advance(current map[string]domain.DealWindow, templates []domain.DealTemplate, seed uint32) (map[string]domain.DealWindow, uint32) {
	seed = rng.EnsureSeed(seed)
	out := make(map[string]domain.DealWindow, len(templates))
	for _, t := range templates {
		w, ok := current[t.ID]
		if ok {
			w.ExpiresIn--
		} else {
			w = fresh(t.Window, PickDuration(t.Window, neutralRoll))
		}
		if w.ExpiresIn <= 0 {
			var roll float64
			roll, seed = rng.Uniform(seed)
			w = fresh(t.Window, PickDuration(t.Window, roll))
		}
		out[t.ID] = w
	}
	return out, seed
}

// Enter ocupa un cupo de la ventana del trato id. No consume tirada.
func Enter(windows map[string]domain.DealWindow, id string) (map[string]domain.DealWindow, error) {
	w, ok := windows[id]
	switch {
	case !ok || w.ExpiresIn <= 0:
		return windows, domain.ErrDealClosed
	case w.SlotsLeft <= 0:
		return windows, domain.ErrNoSlots
	}
	out := maps.Clone(windows)
	w.SlotsLeft--
	out[id] = w
	return out, nil
}

func fresh(rule domain.DealWindowRule, duration int) domain.DealWindow {
	slots := rule.Slots
	if slots <= 0 {
		slots = 1
	}
	return domain.DealWindow{ExpiresIn: duration, SlotsLeft: slots, MaxSlots: slots}
}
