// Package market avanza un mes los precios de todos los instrumentos con un
// modelo de log-retornos correlacionados, ciclos y shocks.
package market

import (
	"maps"
	"math"

	"github.com/toropanov/capetica/internal/domain"
	"github.com/toropanov/capetica/internal/rng"
)

const (
	// HistoryCap es el máximo de puntos que guarda cada histórico de precios.
	HistoryCap = 180

	defaultMinPrice = 0.01
	// piso del factor de caída cuando hay maxDrawdownClamp
	minDrawdownFactor = 0.05
)

// Tick es el resultado de simular un mes.
type Tick struct {
	Prices  map[string]domain.PriceState
	Returns map[string]float64 // retorno simple del mes por instrumento
	Seed    uint32
	Shocks  map[string]int // mes del último disparo por shock
}

// Seed crea el estado de precios inicial a partir del catálogo.
func Seed(instruments []domain.Instrument) map[string]domain.PriceState {
	out := make(map[string]domain.PriceState, len(instruments))
	for _, in := range instruments {
		out[in.ID] = initialState(in)
	}
	return out
}

func initialState(in domain.Instrument) domain.PriceState {
	return domain.PriceState{
		Price:   in.InitialPrice,
		History: []domain.PricePoint{{Month: 0, Price: in.InitialPrice}},
	}
}

// Simulate avanza los precios del mes month. No modifica prices ni shocks.
// Sin configuración o sin instrumentos devuelve la entrada tal cual.
func Simulate(
	month int,
	prices map[string]domain.PriceState,
	instruments []domain.Instrument,
	cfg *domain.MarketConfig,
	seed uint32,
	shocks map[string]int,
) Tick {
	if cfg == nil || len(instruments) == 0 {
		return Tick{Prices: prices, Returns: map[string]float64{}, Seed: seed, Shocks: shocks}
	}

	ids := make([]string, len(instruments))
	for i, in := range instruments {
		ids[i] = in.ID
	}
	lower := rng.Cholesky(rng.CorrelationMatrix(cfg.Correlations.Matrix, ids))
	normals, seed := rng.CorrelatedNormals(lower, seed)

	cycles := cycleContributions(cfg.Cycles, month)
	impacts, nextShocks, seed := rollShocks(cfg.ShockModel.Events, month, seed, shocks)

	minPrice := cfg.Global.MinPrice
	if minPrice <= 0 {
		minPrice = defaultMinPrice
	}

	next := make(map[string]domain.PriceState, len(instruments))
	returns := make(map[string]float64, len(instruments))
	for i, in := range instruments {
		prev, ok := prices[in.ID]
		if !ok {
			prev = initialState(in)
		}

		lr := in.Model.MuMonthly + in.Model.SigmaMonthly*normals[i]
		for _, ref := range in.Model.CycleRefs {
			lr += cycles[ref]
		}
		for _, ref := range in.Model.ShockRefs {
			lr += impacts[ref]
		}
		if maxAbs := cfg.Global.MaxMonthlyReturnAbs; maxAbs != nil {
			lr = min(max(lr, -*maxAbs), *maxAbs)
		}
		if dd := in.Model.MaxDrawdownClamp; dd != nil {
			lr = max(lr, math.Log(max(1-*dd, minDrawdownFactor)))
		}

		price := max(prev.Price*math.Exp(lr), minPrice)
		ret := math.Exp(lr) - 1
		next[in.ID] = domain.PriceState{
			Price:      price,
			History:    appendCapped(prev.History, domain.PricePoint{Month: month + 1, Price: price}),
			LastReturn: ret,
		}
		returns[in.ID] = ret
	}

	return Tick{Prices: next, Returns: returns, Seed: seed, Shocks: nextShocks}
}

// cycleContributions evalúa cada ciclo: amplitude·sin(2π(month+1)/period + phase).
func cycleContributions(cycles []domain.Cycle, month int) map[string]float64 {
	out := make(map[string]float64, len(cycles))
	for _, c := range cycles {
		period := c.PeriodMonths
		if period == 0 {
			period = 1
		}
		out[c.ID] = c.Amplitude * math.Sin(2*math.Pi*float64(month+1)/period+c.Phase)
	}
	return out
}

// rollShocks tira cada shock fuera de cooldown en el orden configurado.
// Un shock que nunca disparó no tiene cooldown.
func rollShocks(events []domain.Shock, month int, seed uint32, state map[string]int) (map[string]float64, map[string]int, uint32) {
	impacts := make(map[string]float64)
	next := maps.Clone(state)
	if next == nil {
		next = make(map[string]int)
	}
	for _, ev := range events {
		if last, ok := next[ev.ID]; ok && month-last < ev.CooldownMonths {
			continue
		}
		var roll float64
		roll, seed = rng.Uniform(seed)
		if roll < ev.ProbMonthly {
			var impact float64
			impact, seed = rng.Normal(seed, ev.MeanLogImpact, ev.StdLogImpact)
			impacts[ev.ID] = impact
			next[ev.ID] = month
		}
	}
	return impacts, next, seed
}

// appendCapped devuelve un slice nuevo; el histórico anterior no se toca
// porque puede estar compartido por copias del estado.
func appendCapped(history []domain.PricePoint, p domain.PricePoint) []domain.PricePoint {
	start := 0
	if len(history)+1 > HistoryCap {
		start = len(history) + 1 - HistoryCap
	}
	out := make([]domain.PricePoint, 0, len(history)-start+1)
	out = append(out, history[start:]...)
	return append(out, p)
}

// Movement es un movimiento de mercado que supera los umbrales de aviso.
type Movement struct {
	InstrumentID string
	Title        string
	Return       float64
}

// SignificantMoves lista, en el orden del catálogo, los instrumentos cuyo
// retorno del mes cruzó significantDrop o significantRise.
func SignificantMoves(returns map[string]float64, instruments []domain.Instrument, g domain.MarketGlobal) []Movement {
	var out []Movement
	for _, in := range instruments {
		r, ok := returns[in.ID]
		if !ok {
			continue
		}
		if r <= g.SignificantDrop || r >= g.SignificantRise {
			out = append(out, Movement{InstrumentID: in.ID, Title: in.Title, Return: r})
		}
	}
	return out
}
