package domain

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
)

// Effect es una de las variantes cerradas de efecto de evento o acción.
// Las variantes son CashDelta, SalaryBonusDelta, RecurringDelta, DebtDelta,
// JoblessMonths y SalaryCut; el método privado impide variantes externas.
type Effect interface {
	effect()
}

// CashDelta suma (o resta) caja.
type CashDelta struct{ Amount float64 }

// SalaryBonusDelta ajusta el bono salarial permanente.
type SalaryBonusDelta struct{ Amount float64 }

// RecurringDelta ajusta los gastos fijos; el resultado nunca baja de 0.
type RecurringDelta struct{ Amount float64 }

// DebtDelta ajusta la deuda y el libro de giros; nunca baja de 0.
type DebtDelta struct{ Amount float64 }

// JoblessMonths deja el salario en 0 durante Months turnos.
type JoblessMonths struct{ Months int }

// SalaryCut recorta Amount del salario durante Months turnos.
type SalaryCut struct {
	Months int
	Amount float64
}

func (CashDelta) effect()        {}
func (SalaryBonusDelta) effect() {}
func (RecurringDelta) effect()   {}
func (DebtDelta) effect()        {}
func (JoblessMonths) effect()    {}
func (SalaryCut) effect()        {}

// Effects es una lista ordenada de efectos. En JSON se representa como el
// objeto plano {cashDelta, salaryBonusDelta, ...} del contenido.
type Effects []Effect

// effectBag es la forma JSON de Effects.
type effectBag struct {
	CashDelta        *float64 `json:"cashDelta,omitempty"`
	SalaryBonusDelta *float64 `json:"salaryBonusDelta,omitempty"`
	RecurringDelta   *float64 `json:"recurringDelta,omitempty"`
	DebtDelta        *float64 `json:"debtDelta,omitempty"`
	JoblessMonths    *float64 `json:"joblessMonths,omitempty"`
	SalaryCutMonths  *float64 `json:"salaryCutMonths,omitempty"`
	SalaryCutAmount  *float64 `json:"salaryCutAmount,omitempty"`
}

// UnmarshalJSON convierte la bolsa de propiedades en variantes, siempre en el
// mismo orden de aplicación.
func (e *Effects) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*e = nil
		return nil
	}
	var bag effectBag
	if err := json.Unmarshal(data, &bag); err != nil {
		return fmt.Errorf("domain.Effects: %w", err)
	}
	out := Effects{}
	if bag.CashDelta != nil {
		out = append(out, CashDelta{Amount: *bag.CashDelta})
	}
	if bag.SalaryBonusDelta != nil {
		out = append(out, SalaryBonusDelta{Amount: *bag.SalaryBonusDelta})
	}
	if bag.RecurringDelta != nil {
		out = append(out, RecurringDelta{Amount: *bag.RecurringDelta})
	}
	if bag.DebtDelta != nil {
		out = append(out, DebtDelta{Amount: *bag.DebtDelta})
	}
	if bag.JoblessMonths != nil {
		out = append(out, JoblessMonths{Months: int(math.Round(*bag.JoblessMonths))})
	}
	if bag.SalaryCutMonths != nil {
		cut := SalaryCut{Months: int(math.Round(*bag.SalaryCutMonths))}
		if bag.SalaryCutAmount != nil {
			cut.Amount = *bag.SalaryCutAmount
		}
		out = append(out, cut)
	}
	*e = out
	return nil
}

// MarshalJSON vuelve a la forma de bolsa.
func (e Effects) MarshalJSON() ([]byte, error) {
	var bag effectBag
	for _, eff := range e {
		switch v := eff.(type) {
		case CashDelta:
			bag.CashDelta = ptr(v.Amount)
		case SalaryBonusDelta:
			bag.SalaryBonusDelta = ptr(v.Amount)
		case RecurringDelta:
			bag.RecurringDelta = ptr(v.Amount)
		case DebtDelta:
			bag.DebtDelta = ptr(v.Amount)
		case JoblessMonths:
			bag.JoblessMonths = ptr(float64(v.Months))
		case SalaryCut:
			bag.SalaryCutMonths = ptr(float64(v.Months))
			bag.SalaryCutAmount = ptr(v.Amount)
		}
	}
	return json.Marshal(bag)
}

// Cash devuelve el CashDelta de la lista, si lo hay.
func (e Effects) Cash() (float64, bool) {
	for _, eff := range e {
		if c, ok := eff.(CashDelta); ok {
			return c.Amount, true
		}
	}
	return 0, false
}

// Describe resume los efectos en una línea legible, o "" si no hay nada que
// mostrar. La deuda no se describe.
func (e Effects) Describe() string {
	parts := make([]string, 0, len(e))
	for _, eff := range e {
		switch v := eff.(type) {
		case CashDelta:
			if v.Amount != 0 {
				parts = append(parts, signedMoney(v.Amount))
			}
		case SalaryBonusDelta:
			if v.Amount != 0 {
				parts = append(parts, "salary "+signedMoney(v.Amount))
			}
		case RecurringDelta:
			if v.Amount != 0 {
				parts = append(parts, "monthly expenses "+signedMoney(v.Amount))
			}
		case JoblessMonths:
			if v.Months > 0 {
				parts = append(parts, fmt.Sprintf("jobless for %d mo", v.Months))
			}
		case SalaryCut:
			if v.Months > 0 {
				parts = append(parts, fmt.Sprintf("salary -$%.0f for %d mo", math.Abs(RoundMoney(v.Amount)), v.Months))
			}
		}
	}
	return strings.Join(parts, ", ")
}

func signedMoney(v float64) string {
	sign := "+"
	if v < 0 {
		sign = "-"
	}
	return fmt.Sprintf("%s$%.0f", sign, math.Abs(RoundMoney(v)))
}

func ptr[T any](v T) *T { return &v }
