package rng

import "math"

// minPivot mantiene la descomposición finita cuando la matriz configurada
// no es estrictamente definida positiva.
const minPivot = 1e-12

// CorrelationMatrix arma la matriz simétrica n×n para ids a partir de una tabla
// dispersa de pares. Diagonal en 1, pares ausentes en 0; un par puede venir
// declarado en cualquier dirección.
func CorrelationMatrix(table map[string]map[string]float64, ids []string) [][]float64 {
	n := len(ids)
	m := make([][]float64, n)
	for i := range m {
		m[i] = make([]float64, n)
		m[i][i] = 1
	}
	lookup := func(a, b string) (float64, bool) {
		if row, ok := table[a]; ok {
			if v, ok := row[b]; ok {
				return v, true
			}
		}
		return 0, false
	}
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			v, ok := lookup(ids[i], ids[j])
			if !ok {
				v, _ = lookup(ids[j], ids[i])
			}
			m[i][j] = v
			m[j][i] = v
		}
	}
	return m
}

// Cholesky devuelve la triangular inferior L tal que L·Lᵀ = m.
func Cholesky(m [][]float64) [][]float64 {
	n := len(m)
	l := make([][]float64, n)
	for i := range l {
		l[i] = make([]float64, n)
	}
	for i := 0; i < n; i++ {
		for j := 0; j <= i; j++ {
			sum := m[i][j]
			for k := 0; k < j; k++ {
				sum -= l[i][k] * l[j][k]
			}
			if i == j {
				l[i][j] = math.Sqrt(math.Max(sum, minPivot))
				continue
			}
			l[i][j] = sum / l[j][j]
		}
	}
	return l
}

// CorrelatedNormals genera una normal estándar por fila y las acopla con el
// factor triangular inferior.
func CorrelatedNormals(lower [][]float64, seed uint32) ([]float64, uint32) {
	n := len(lower)
	z := make([]float64, n)
	for i := range z {
		z[i], seed = Normal(seed, 0, 1)
	}
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		var acc float64
		for k := 0; k <= i; k++ {
			acc += lower[i][k] * z[k]
		}
		out[i] = acc
	}
	return out, seed
}
