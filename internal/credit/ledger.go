// Package credit lleva el libro de giros de crédito: cada giro es una entrada
// con saldo propio y la suma de saldos sigue a la deuda total.
package credit

import (
	"math"
	"slices"

	"github.com/toropanov/capetica/internal/domain"
)

const (
	// MinBalance: los giros con saldo igual o menor se eliminan.
	MinBalance = 5

	DefaultLabel = "Credit line"
)

// IDFunc entrega el id del próximo giro. El llamador decide el esquema para
// que los ids sean deterministas.
type IDFunc func(month int) string

// Total suma los saldos de los giros.
func Total(draws []domain.CreditDraw) float64 {
	var sum float64
	for _, d := range draws {
		sum += d.Balance
	}
	return sum
}

// Available es el crédito que queda para girar, recortado a 0.
func Available(limit, debt float64) float64 {
	return max(0, limit-debt)
}

// Normalize ajusta el libro para que sus saldos sumen target:
//   - target <= 0 deja el libro vacío;
//   - sin giros válidos se sintetiza uno por el total, aunque sea chico;
//   - una diferencia de MinBalance o más se reescala pro-rata;
//   - el resto de redondeo va al último giro.
func Normalize(draws []domain.CreditDraw, target float64, newID IDFunc) []domain.CreditDraw {
	target = domain.RoundMoney(target)
	if target <= 0 {
		return nil
	}
	kept := slices.DeleteFunc(slices.Clone(draws), func(d domain.CreditDraw) bool {
		return d.Balance <= MinBalance
	})
	if len(kept) == 0 {
		return []domain.CreditDraw{newDraw(target, 0, newID(0), DefaultLabel)}
	}
	total := Total(kept)
	if math.Abs(total-target) >= MinBalance {
		for i := range kept {
			kept[i].Balance = domain.RoundMoney(kept[i].Balance / total * target)
		}
		kept = slices.DeleteFunc(kept, func(d domain.CreditDraw) bool { return d.Balance <= 0 })
		if len(kept) == 0 {
			return []domain.CreditDraw{newDraw(target, 0, newID(0), DefaultLabel)}
		}
	}
	// el último giro absorbe el resto: la suma queda exacta
	last := &kept[len(kept)-1]
	last.Balance = domain.RoundMoney(last.Balance + target - Total(kept))
	if last.Balance <= 0 {
		return []domain.CreditDraw{newDraw(target, 0, newID(0), DefaultLabel)}
	}
	return kept
}

// ApplyInterest reparte el interés entre los giros según su peso en la deuda.
func ApplyInterest(draws []domain.CreditDraw, interest float64) []domain.CreditDraw {
	if interest <= 0 || len(draws) == 0 {
		return draws
	}
	total := Total(draws)
	if total <= 0 {
		return draws
	}
	out := slices.Clone(draws)
	for i := range out {
		out[i].Balance = domain.RoundMoney(out[i].Balance + out[i].Balance/total*interest)
	}
	return out
}

// Append agrega un giro nuevo. Montos no positivos no hacen nada.
func Append(draws []domain.CreditDraw, amount float64, month int, id, label string) []domain.CreditDraw {
	if amount <= 0 {
		return draws
	}
	if label == "" {
		label = DefaultLabel
	}
	out := slices.Clone(draws)
	return append(out, newDraw(amount, month, id, label))
}

// Consume aplica un pago. Con targetID paga solo ese giro; sin él recorre el
// libro en orden. Devuelve el libro sin los giros saldados y lo efectivamente
// pagado.
func Consume(draws []domain.CreditDraw, payment float64, targetID string) ([]domain.CreditDraw, float64) {
	if payment <= 0 || len(draws) == 0 {
		return draws, 0
	}
	out := slices.Clone(draws)
	remaining := payment
	pay := func(d *domain.CreditDraw) {
		if remaining <= 0 {
			return
		}
		paid := min(d.Balance, remaining)
		if paid > 0 {
			d.Balance = domain.RoundMoney(d.Balance - paid)
			remaining -= paid
		}
	}
	if targetID != "" {
		if i := slices.IndexFunc(out, func(d domain.CreditDraw) bool { return d.ID == targetID }); i >= 0 {
			pay(&out[i])
		}
	} else {
		for i := range out {
			pay(&out[i])
		}
	}
	out = slices.DeleteFunc(out, func(d domain.CreditDraw) bool { return d.Balance <= MinBalance })
	return out, domain.RoundMoney(payment - remaining)
}

// Find busca un giro por id.
func Find(draws []domain.CreditDraw, id string) (domain.CreditDraw, bool) {
	i := slices.IndexFunc(draws, func(d domain.CreditDraw) bool { return d.ID == id })
	if i < 0 {
		return domain.CreditDraw{}, false
	}
	return draws[i], true
}

// EmergencyDraw calcula el giro automático cuando la caja cerró negativa:
// min(available, max(minDraw, effectiveRecurring·drawPercent)). 0 si no aplica.
func EmergencyDraw(rules *domain.EmergencyCredit, cash, available, effectiveRecurring float64) float64 {
	if rules == nil || !rules.Enabled || cash >= 0 || available <= 0 {
		return 0
	}
	want := max(rules.MinDraw, effectiveRecurring*rules.DrawPercent)
	return domain.RoundMoney(min(available, want))
}

func newDraw(amount float64, month int, id, label string) domain.CreditDraw {
	return domain.CreditDraw{
		ID:           id,
		Balance:      domain.RoundMoney(amount),
		CreatedMonth: month,
		Label:        label,
	}
}
