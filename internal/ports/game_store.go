package ports

import (
	"context"

	"github.com/toropanov/capetica/internal/domain"
)

// GameStore persiste las partidas en curso.
type GameStore interface {
	// SaveSnapshot guarda el último estado de la partida y la fila del mes.
	// Es idempotente por (gameID, month).
	SaveSnapshot(ctx context.Context, gameID string, s domain.GameState) error

	// LoadSnapshot devuelve el último estado guardado.
	// Devuelve domain.ErrGameNotFound si la partida no existe.
	LoadSnapshot(ctx context.Context, gameID string) (domain.GameState, error)

	// ListGames devuelve las partidas más recientes primero.
	ListGames(ctx context.Context, limit int) ([]domain.GameSummary, error)

	// Turns devuelve los meses jugados de una partida en orden.
	Turns(ctx context.Context, gameID string) ([]domain.TurnRecord, error)

	// Close cierra la conexión a la base de datos limpiamente.
	Close() error
}
