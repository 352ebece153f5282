// Package engine mantiene una partida en curso: serializa las mutaciones
// del jugador y persiste snapshots en segundo plano.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/toropanov/capetica/internal/content"
	"github.com/toropanov/capetica/internal/domain"
	"github.com/toropanov/capetica/internal/game"
	"github.com/toropanov/capetica/internal/ports"
	"github.com/toropanov/capetica/internal/rng"
	"github.com/toropanov/capetica/internal/strategy"
)

const (
	defaultQueueSize = 16
	snapshotTimeout  = 5 * time.Second
)

// ErrNoStore indica que el engine se creó sin almacenamiento.
var ErrNoStore = errors.New("engine has no game store")

// Config parametriza las partidas nuevas.
type Config struct {
	// Seed 0 deriva la semilla del id de la partida.
	Seed       uint32
	Difficulty string
	// QueueSize es la cola de snapshots pendientes; al llenarse se descarta
	// el más viejo.
	QueueSize int
}

type snapshot struct {
	gameID string
	state  domain.GameState
}

// Engine es la sesión de una partida. Es seguro para uso concurrente.
type Engine struct {
	sim   *game.Sim
	store ports.GameStore
	cfg   Config

	mu     sync.Mutex
	gameID string
	state  domain.GameState
	closed bool

	queue chan snapshot
	done  chan struct{}
}

// New crea el engine. store puede ser nil: entonces no se persiste nada.
func New(bundle *content.Bundle, store ports.GameStore, cfg Config) *Engine {
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = defaultQueueSize
	}
	e := &Engine{
		sim:   game.New(bundle),
		store: store,
		cfg:   cfg,
		done:  make(chan struct{}),
	}
	if store == nil {
		close(e.done)
		return e
	}
	e.queue = make(chan snapshot, cfg.QueueSize)
	go e.writeSnapshots()
	return e
}

// Sim expone el simulador para quien necesite el contenido o jugar fuera
// de la sesión (por ejemplo una estrategia automática).
func (e *Engine) Sim() *game.Sim {
	return e.sim
}

// GameID devuelve el id de la partida actual; vacío antes de elegir profesión.
func (e *Engine) GameID() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.gameID
}

// State devuelve una copia del estado actual.
func (e *Engine) State() domain.GameState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.Clone()
}

// SelectProfession empieza una partida nueva con la profesión dada.
func (e *Engine) SelectProfession(id string, prefs game.Prefs) (domain.GameState, error) {
	return e.start(func(seed uint32, prefs game.Prefs) (domain.GameState, error) {
		return e.sim.NewGame(id, prefs, seed)
	}, prefs)
}

// RandomProfession empieza una partida nueva con una profesión al azar.
func (e *Engine) RandomProfession(prefs game.Prefs) (domain.GameState, error) {
	return e.start(func(seed uint32, prefs game.Prefs) (domain.GameState, error) {
		return e.sim.RandomProfession(prefs, seed)
	}, prefs)
}

func (e *Engine) start(newGame func(uint32, game.Prefs) (domain.GameState, error), prefs game.Prefs) (domain.GameState, error) {
	if prefs.Difficulty == "" {
		prefs.Difficulty = e.cfg.Difficulty
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	id := uuid.NewString()
	seed := e.cfg.Seed
	if seed == 0 {
		seed = rng.SeedFromString(id)
	}
	s, err := newGame(rng.EnsureSeed(seed), prefs)
	if err != nil {
		return e.state, fmt.Errorf("engine.start: %w", err)
	}
	e.gameID = id
	e.state = s
	e.enqueue()
	slog.Info("engine: game started", "game_id", id, "profession", s.ProfessionID, "difficulty", s.Difficulty)
	return s, nil
}

// ResetGame reinicia la partida con la misma profesión y preferencias. La
// partida reiniciada conserva el id.
func (e *Engine) ResetGame() (domain.GameState, error) {
	return e.apply(e.sim.Reset)
}

// AdvanceMonth cierra el mes.
func (e *Engine) AdvanceMonth() domain.GameState {
	s, _ := e.apply(func(s domain.GameState) (domain.GameState, error) {
		return e.sim.AdvanceMonth(s), nil
	})
	return s
}

// BuyInstrument compra amount dólares del instrumento.
func (e *Engine) BuyInstrument(id string, amount float64) (domain.GameState, error) {
	return e.apply(func(s domain.GameState) (domain.GameState, error) {
		return e.sim.Buy(s, id, amount)
	})
}

// SellInstrument vende amount dólares del instrumento.
func (e *Engine) SellInstrument(id string, amount float64) (domain.GameState, error) {
	return e.apply(func(s domain.GameState) (domain.GameState, error) {
		return e.sim.Sell(s, id, amount)
	})
}

// ApplyHomeAction aplica una acción del hogar y devuelve el mensaje para el
// jugador.
func (e *Engine) ApplyHomeAction(id string, opts game.ActionOptions) (domain.GameState, string, error) {
	var msg string
	s, err := e.apply(func(s domain.GameState) (domain.GameState, error) {
		next, m, err := e.sim.ApplyHomeAction(s, id, opts)
		msg = m
		return next, err
	})
	return s, msg, err
}

// ParticipateInDeal entra en un trato abierto.
func (e *Engine) ParticipateInDeal(id string) (domain.GameState, error) {
	return e.apply(func(s domain.GameState) (domain.GameState, error) {
		return e.sim.ParticipateInDeal(s, id)
	})
}

// DrawCredit gira crédito; amount 0 usa el giro por defecto.
func (e *Engine) DrawCredit(amount float64) (domain.GameState, error) {
	return e.apply(func(s domain.GameState) (domain.GameState, error) {
		return e.sim.DrawCredit(s, amount)
	})
}

// ServiceDebt paga deuda; drawID vacío reparte el pago entre los giros.
func (e *Engine) ServiceDebt(amount float64, drawID string) (domain.GameState, error) {
	return e.apply(func(s domain.GameState) (domain.GameState, error) {
		return e.sim.ServiceDebt(s, amount, drawID)
	})
}

// PlayMonth deja que la estrategia actúe y después cierra el mes.
func (e *Engine) PlayMonth(p strategy.Strategy) domain.GameState {
	s, _ := e.apply(func(s domain.GameState) (domain.GameState, error) {
		return e.sim.AdvanceMonth(p.Act(e.sim, s)), nil
	})
	return s
}

// ListGames devuelve las partidas guardadas, la más reciente primero.
func (e *Engine) ListGames(ctx context.Context, limit int) ([]domain.GameSummary, error) {
	if e.store == nil {
		return nil, fmt.Errorf("engine.ListGames: %w", ErrNoStore)
	}
	games, err := e.store.ListGames(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("engine.ListGames: %w", err)
	}
	return games, nil
}

// History devuelve los meses persistidos de la partida actual. Los
// snapshots pendientes en la cola todavía no aparecen.
func (e *Engine) History(ctx context.Context) ([]domain.TurnRecord, error) {
	if e.store == nil {
		return nil, fmt.Errorf("engine.History: %w", ErrNoStore)
	}
	turns, err := e.store.Turns(ctx, e.GameID())
	if err != nil {
		return nil, fmt.Errorf("engine.History: %w", err)
	}
	return turns, nil
}

// Resume carga la partida guardada con ese id.
func (e *Engine) Resume(ctx context.Context, gameID string) (domain.GameState, error) {
	if e.store == nil {
		return domain.GameState{}, fmt.Errorf("engine.Resume: %w", ErrNoStore)
	}
	s, err := e.store.LoadSnapshot(ctx, gameID)
	if err != nil {
		return domain.GameState{}, fmt.Errorf("engine.Resume: %w", err)
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.gameID = gameID
	e.state = s
	slog.Info("engine: game resumed", "game_id", gameID, "month", s.Month)
	return s, nil
}

// Close espera a que se escriban los snapshots pendientes. No cierra el
// store.
func (e *Engine) Close() error {
	e.mu.Lock()
	if !e.closed && e.queue != nil {
		close(e.queue)
	}
	e.closed = true
	e.mu.Unlock()
	<-e.done
	return nil
}

// apply corre f bajo el mutex. Si f rechaza la acción el estado no cambia y
// no se encola snapshot.
func (e *Engine) apply(f func(domain.GameState) (domain.GameState, error)) (domain.GameState, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	next, err := f(e.state)
	if err != nil {
		return e.state, err
	}
	e.state = next
	e.enqueue()
	return next, nil
}

// enqueue requiere el mutex tomado.
func (e *Engine) enqueue() {
	if e.queue == nil || e.closed || e.gameID == "" {
		return
	}
	snap := snapshot{gameID: e.gameID, state: e.state}
	select {
	case e.queue <- snap:
		return
	default:
	}
	// cola llena: se descarta el snapshot más viejo
	select {
	case old := <-e.queue:
		slog.Debug("engine: snapshot dropped", "game_id", old.gameID, "month", old.state.Month)
	default:
	}
	select {
	case e.queue <- snap:
	default:
		slog.Warn("engine: snapshot queue full", "game_id", snap.gameID, "month", snap.state.Month)
	}
}

func (e *Engine) writeSnapshots() {
	defer close(e.done)
	for snap := range e.queue {
		ctx, cancel := context.WithTimeout(context.Background(), snapshotTimeout)
		if err := e.store.SaveSnapshot(ctx, snap.gameID, snap.state); err != nil {
			slog.Warn("engine: snapshot failed", "game_id", snap.gameID, "month", snap.state.Month, "err", err)
		}
		cancel()
	}
}
