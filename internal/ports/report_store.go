package ports

import (
	"context"

	"github.com/toropanov/capetica/internal/domain"
)

// ReportStore registra los resultados del harness de balance.
type ReportStore interface {
	SaveSimReport(ctx context.Context, r domain.SimReport) error
	SaveCheckResult(ctx context.Context, r domain.CheckResult) error
}

// ReportWriter escribe el informe de simulación como archivos.
type ReportWriter interface {
	// WriteSimReport devuelve las rutas escritas.
	WriteSimReport(ctx context.Context, r domain.SimReport) ([]string, error)
}
