// Package rng es la fuente pseudoaleatoria con semilla de la simulación.
//
// Todas las funciones son puras: reciben el cursor actual y devuelven el valor
// junto con el cursor avanzado. El paquete no guarda estado, así que un turno
// completo se puede reproducir desde la semilla guardada en el GameState.
package rng

import (
	"hash/fnv"
	"math"
)

const (
	lcgMultiplier = 1664525
	lcgIncrement  = 1013904223
	twoPow32      = 4294967296.0

	// semilla usada cuando llega 0 (cursor sin inicializar)
	defaultSeed uint32 = 1
)

// Next avanza el LCG un paso: (seed*1664525 + 1013904223) mod 2^32.
// La aritmética uint32 desborda, y ese desborde es el módulo.
func Next(seed uint32) uint32 {
	return seed*lcgMultiplier + lcgIncrement
}

// Uniform devuelve un valor en [0,1) y el cursor avanzado.
func Uniform(seed uint32) (float64, uint32) {
	next := Next(seed)
	return float64(next) / twoPow32, next
}

// Normal muestrea N(mean, std) con Box–Muller. Un uniforme exactamente 0 se
// vuelve a tirar antes del logaritmo.
func Normal(seed uint32, mean, std float64) (float64, uint32) {
	var u, v float64
	for u == 0 {
		u, seed = Uniform(seed)
	}
	for v == 0 {
		v, seed = Uniform(seed)
	}
	z := math.Sqrt(-2*math.Log(u)) * math.Cos(2*math.Pi*v)
	return mean + std*z, seed
}

// EnsureSeed convierte la semilla 0 en un cursor fijo distinto de cero.
func EnsureSeed(seed uint32) uint32 {
	if seed == 0 {
		return defaultSeed
	}
	return seed
}

// SeedFromString deriva una semilla de 32 bits a partir de una clave (FNV-1a).
func SeedFromString(key string) uint32 {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return h.Sum32()
}

// Index proyecta una tirada uniforme sobre [0, n). n debe ser positivo.
func Index(value float64, n int) int {
	idx := int(math.Floor(value * float64(n)))
	if idx >= n {
		idx = n - 1
	}
	if idx < 0 {
		idx = 0
	}
	return idx
}
