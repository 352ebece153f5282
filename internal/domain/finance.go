package domain

import "math"

// RoundMoney redondea a la unidad, con los medios hacia +∞.
func RoundMoney(v float64) float64 {
	return math.Floor(v + 0.5)
}

// Coeficientes del límite de crédito cuando game_rules no los trae.
const (
	DefaultNetWorthMultiplier = 0.25
	DefaultSalaryMultiplier   = 1.0
	DefaultCapMultiplier      = 4.0
)

// DefaultPassiveMultipliers es el rendimiento mensual por clase de activo.
func DefaultPassiveMultipliers() PassiveMultipliers {
	return PassiveMultipliers{
		AssetBonds:  0.0015,
		AssetStocks: 0.006,
		AssetCrypto: 0.012,
	}
}

// HoldingsValue es Σ unidades × precio.
func HoldingsValue(investments map[string]Holding, prices map[string]PriceState) float64 {
	var total float64
	for _, id := range SortedKeys(investments) {
		total += investments[id].Units * prices[id].Price
	}
	return total
}

// PassiveIncome es Σ valor × multiplicador(tipo). Un instrumento que ya no
// está en el catálogo cuenta como acciones.
func PassiveIncome(
	investments map[string]Holding,
	prices map[string]PriceState,
	instruments map[string]Instrument,
	multipliers PassiveMultipliers,
) float64 {
	var total float64
	for _, id := range SortedKeys(investments) {
		value := investments[id].Units * prices[id].Price
		total += value * multipliers.For(instruments[id].Type)
	}
	return total
}

// DealIncome es el pago mensual de los tratos todavía activos.
func DealIncome(participations []DealParticipation) float64 {
	var total float64
	for _, p := range participations {
		if !p.Completed {
			total += p.MonthlyPayout
		}
	}
	return total
}

// NetWorth es caja + cartera − deuda.
func NetWorth(cash, holdings, debt float64) float64 {
	return cash + holdings - debt
}

// CreditLimit = min(max(base, a·netWorth + b·salary), base·cap).
// Sin reglas de límite devuelve la base de la profesión.
func CreditLimit(p Profession, netWorth, salary float64, rules *CreditLimitRules) float64 {
	base := p.CreditLimitBase
	if rules == nil {
		return base
	}
	formula := max(base, rules.NetWorthMultiplier*netWorth+rules.SalaryMultiplier*salary)
	ceiling := base * rules.CapMultiplier
	if ceiling <= 0 {
		return formula
	}
	return min(formula, ceiling)
}

// LivingCost devuelve el coste de vida de la profesión: override o el valor
// por defecto.
func LivingCost(professionID string, rules *LivingCostRules) float64 {
	if rules == nil {
		return 0
	}
	if v, ok := rules.ProfessionOverrides[professionID]; ok && v != 0 {
		return v
	}
	return rules.DefaultMonthly
}

// MonthlyExpenses suma el desglose de gastos de la profesión.
func MonthlyExpenses(p Profession) float64 {
	var total float64
	for _, k := range SortedKeys(p.MonthlyExpenses) {
		total += p.MonthlyExpenses[k]
	}
	return total
}

// ProgressiveExpense cobra cashRate sobre toda la caja si supera el umbral,
// más incomeRate sobre el salario del mes, con techo opcional.
func ProgressiveExpense(rules *ProgressiveExpenses, cash, salary float64) float64 {
	if rules == nil {
		return 0
	}
	var fromCash float64
	if cash > rules.CashThreshold {
		fromCash = cash * rules.CashRate
	}
	v := max(0, fromCash+salary*rules.IncomeRate)
	if rules.CapMonthly != nil {
		v = min(*rules.CapMonthly, v)
	}
	return v
}

// MaintenanceExpense = max(mínimo, valor de cartera × tasa).
func MaintenanceExpense(rules *AssetMaintenance, holdingsValue float64) float64 {
	if rules == nil {
		return 0
	}
	return max(rules.MinMonthly, holdingsValue*rules.RateMonthly)
}
