package ports

import (
	"context"

	"github.com/toropanov/capetica/internal/domain"
)

// Notifier presenta resultados al usuario.
type Notifier interface {
	// NotifyTurn muestra el estado después de un mes jugado.
	NotifyTurn(ctx context.Context, s domain.GameState) error

	// NotifyCheck muestra las métricas y el veredicto del check de balance.
	NotifyCheck(ctx context.Context, r domain.CheckResult) error

	// NotifyReport muestra el resumen por política del informe.
	NotifyReport(ctx context.Context, r domain.SimReport) error
}
