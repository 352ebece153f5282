package game

import (
	"math"

	"github.com/toropanov/capetica/internal/domain"
	"github.com/toropanov/capetica/internal/rng"
)

// rollOffers decide las acciones del hogar que se ofrecen el mes siguiente.
// Primero una tirada contra showChance; si pasa, se eligen hasta count
// acciones distintas de un pool ponderado por tipo.
func (g *Sim) rollOffers(seed uint32) ([]string, uint32) {
	cat := g.content.HomeActions
	pool := weightedPool(cat)
	limit := min(cat.Count, distinct(pool))
	if limit <= 0 {
		return nil, seed
	}
	show := min(1, max(0, cat.ShowChance))
	if show <= 0 {
		return nil, seed
	}
	var roll float64
	roll, seed = rng.Uniform(seed)
	if roll > show {
		return nil, seed
	}

	picked := make(map[string]bool, limit)
	for len(picked) < limit {
		roll, seed = rng.Uniform(seed)
		picked[pool[rng.Index(roll, len(pool))]] = true
	}
	out := make([]string, 0, limit)
	for _, a := range cat.Actions {
		if picked[a.ID] {
			out = append(out, a.ID)
		}
	}
	return out, seed
}

// weightedPool repite cada id según el peso de su tipo (1 si no figura).
// Un peso 0 excluye el tipo; si el pool queda vacío entran todas una vez.
func weightedPool(cat domain.HomeActionCatalog) []string {
	var pool []string
	for _, a := range cat.Actions {
		w, ok := cat.TypeWeights[a.Kind()]
		if !ok {
			w = 1
		}
		for range max(0, int(math.Floor(w+0.5))) {
			pool = append(pool, a.ID)
		}
	}
	if len(pool) == 0 {
		for _, a := range cat.Actions {
			pool = append(pool, a.ID)
		}
	}
	return pool
}

func distinct(ids []string) int {
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		seen[id] = struct{}{}
	}
	return len(seen)
}
