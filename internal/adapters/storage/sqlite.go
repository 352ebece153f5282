package storage

// sqlite.go — persistencia de partidas y resultados del harness.
//
// Estrategia:
//   - `games`: UNA fila por partida (UPSERT) con el último snapshot en JSON y
//     columnas de cabecera para listar sin decodificar.
//   - `turns`: una fila por (partida, mes). Reescribir el mismo mes es un no-op.
//   - `balance_runs` + `balance_policies`: cada check o informe y sus filas por política.
//   - Cache en memoria del último mes escrito por partida: evita reescribir
//     `turns` cuando el snapshot es del mismo mes (acciones entre turnos).
//   - Prune al arrancar: corridas del harness con más de 90 días.

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/toropanov/capetica/internal/domain"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS games (
    game_id     TEXT PRIMARY KEY,
    profession  TEXT     NOT NULL,
    difficulty  TEXT     NOT NULL DEFAULT '',
    month       INTEGER  NOT NULL DEFAULT 0,
    cash        REAL     NOT NULL DEFAULT 0,
    net_worth   REAL     NOT NULL DEFAULT 0,
    debt        REAL     NOT NULL DEFAULT 0,
    outcome     TEXT     NOT NULL DEFAULT '',
    state_json  TEXT     NOT NULL,
    created_at  DATETIME NOT NULL,
    updated_at  DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS turns (
    game_id        TEXT    NOT NULL,
    month          INTEGER NOT NULL,
    cash           REAL    NOT NULL DEFAULT 0,
    net_worth      REAL    NOT NULL DEFAULT 0,
    passive_income REAL    NOT NULL DEFAULT 0,
    cash_flow      REAL    NOT NULL DEFAULT 0,
    debt           REAL    NOT NULL DEFAULT 0,
    event_id       TEXT    NOT NULL DEFAULT '',
    PRIMARY KEY (game_id, month)
);

CREATE TABLE IF NOT EXISTS balance_runs (
    run_id       TEXT PRIMARY KEY,
    kind         TEXT     NOT NULL,
    seed         INTEGER  NOT NULL,
    runs         INTEGER  NOT NULL,
    months       INTEGER  NOT NULL,
    acceptable   INTEGER,
    failed       TEXT     NOT NULL DEFAULT '',
    metrics_json TEXT     NOT NULL DEFAULT '{}',
    created_at   DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS balance_policies (
    run_id         TEXT    NOT NULL,
    policy         TEXT    NOT NULL,
    runs           INTEGER NOT NULL,
    bankruptcy_50  REAL    NOT NULL DEFAULT 0,
    p50_net_worth  REAL    NOT NULL DEFAULT 0,
    p50_positive   REAL    NOT NULL DEFAULT 0,
    report_json    TEXT    NOT NULL,
    PRIMARY KEY (run_id, policy)
);

CREATE INDEX IF NOT EXISTS idx_games_updated ON games(updated_at DESC);
CREATE INDEX IF NOT EXISTS idx_runs_created  ON balance_runs(created_at DESC);
`

const (
	retentionRuns = 90 * 24 * time.Hour

	kindCheck      = "check"
	kindSimulation = "simulation"
)

// SQLiteStorage implementa ports.GameStore y ports.ReportStore usando
// SQLite (pure Go, sin CGo).
type SQLiteStorage struct {
	db        *sql.DB
	lastMonth map[string]int // gameID → último mes escrito en turns
	mu        sync.Mutex
	now       func() time.Time
}

// NewSQLiteStorage abre (o crea) la base de datos en la ruta dada.
// Aplica el schema y limpia corridas antiguas.
func NewSQLiteStorage(path string) (*SQLiteStorage, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("storage.NewSQLiteStorage: open %q: %w", path, err)
	}
	db.SetMaxOpenConns(1) // SQLite es single-writer
	db.SetMaxIdleConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage.NewSQLiteStorage: apply schema: %w", err)
	}

	s := &SQLiteStorage{
		db:        db,
		lastMonth: make(map[string]int),
		now:       time.Now,
	}
	s.pruneOld(context.Background())
	return s, nil
}

// SaveSnapshot hace upsert de la partida y registra el mes si es nuevo.
func (s *SQLiteStorage) SaveSnapshot(ctx context.Context, gameID string, st domain.GameState) error {
	raw, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("storage.SaveSnapshot: encode: %w", err)
	}
	now := s.now().UTC()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("storage.SaveSnapshot: begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO games
			(game_id, profession, difficulty, month, cash, net_worth, debt,
			 outcome, state_json, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(game_id) DO UPDATE SET
			profession = excluded.profession,
			difficulty = excluded.difficulty,
			month      = excluded.month,
			cash       = excluded.cash,
			net_worth  = excluded.net_worth,
			debt       = excluded.debt,
			outcome    = excluded.outcome,
			state_json = excluded.state_json,
			updated_at = excluded.updated_at
	`,
		gameID, st.ProfessionID, st.Difficulty, st.Month, st.Cash, st.NetWorthNow(), st.Debt,
		st.Outcome(), string(raw),
		now, // created_at: ignorado en ON CONFLICT
		now,
	); err != nil {
		return fmt.Errorf("storage.SaveSnapshot: upsert game %s: %w", gameID, err)
	}

	writeTurn := s.turnChanged(gameID, st.Month)
	if writeTurn {
		rec := turnRecord(st)
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO turns (game_id, month, cash, net_worth, passive_income, cash_flow, debt, event_id)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(game_id, month) DO NOTHING
		`, gameID, rec.Month, rec.Cash, rec.NetWorth, rec.PassiveIncome, rec.CashFlow, rec.Debt, rec.EventID,
		); err != nil {
			return fmt.Errorf("storage.SaveSnapshot: insert turn %s/%d: %w", gameID, st.Month, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("storage.SaveSnapshot: commit: %w", err)
	}
	if writeTurn {
		s.mu.Lock()
		s.lastMonth[gameID] = st.Month
		s.mu.Unlock()
	}
	return nil
}

// LoadSnapshot devuelve el último snapshot de la partida.
func (s *SQLiteStorage) LoadSnapshot(ctx context.Context, gameID string) (domain.GameState, error) {
	var raw string
	err := s.db.QueryRowContext(ctx, `SELECT state_json FROM games WHERE game_id = ?`, gameID).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.GameState{}, fmt.Errorf("storage.LoadSnapshot: %s: %w", gameID, domain.ErrGameNotFound)
	}
	if err != nil {
		return domain.GameState{}, fmt.Errorf("storage.LoadSnapshot: query: %w", err)
	}
	var st domain.GameState
	if err := json.Unmarshal([]byte(raw), &st); err != nil {
		return domain.GameState{}, fmt.Errorf("storage.LoadSnapshot: decode %s: %w", gameID, err)
	}
	return st, nil
}

// ListGames devuelve las partidas más recientes primero.
func (s *SQLiteStorage) ListGames(ctx context.Context, limit int) ([]domain.GameSummary, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT game_id, profession, difficulty, month, cash, net_worth, debt, outcome, updated_at
		FROM games
		ORDER BY updated_at DESC, game_id
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("storage.ListGames: query: %w", err)
	}
	defer rows.Close()

	var games []domain.GameSummary
	for rows.Next() {
		var g domain.GameSummary
		if err := rows.Scan(&g.ID, &g.ProfessionID, &g.Difficulty, &g.Month,
			&g.Cash, &g.NetWorth, &g.Debt, &g.Outcome, &g.UpdatedAt); err != nil {
			return nil, fmt.Errorf("storage.ListGames: scan row: %w", err)
		}
		games = append(games, g)
	}
	return games, rows.Err()
}

// Turns devuelve los meses registrados de la partida en orden.
func (s *SQLiteStorage) Turns(ctx context.Context, gameID string) ([]domain.TurnRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT month, cash, net_worth, passive_income, cash_flow, debt, event_id
		FROM turns
		WHERE game_id = ?
		ORDER BY month
	`, gameID)
	if err != nil {
		return nil, fmt.Errorf("storage.Turns: query: %w", err)
	}
	defer rows.Close()

	var out []domain.TurnRecord
	for rows.Next() {
		var r domain.TurnRecord
		if err := rows.Scan(&r.Month, &r.Cash, &r.NetWorth, &r.PassiveIncome, &r.CashFlow, &r.Debt, &r.EventID); err != nil {
			return nil, fmt.Errorf("storage.Turns: scan row: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// SaveCheckResult registra un check de aceptación.
func (s *SQLiteStorage) SaveCheckResult(ctx context.Context, r domain.CheckResult) error {
	metrics, err := json.Marshal(r.Metrics)
	if err != nil {
		return fmt.Errorf("storage.SaveCheckResult: encode: %w", err)
	}
	acceptable := 0
	if r.Acceptable {
		acceptable = 1
	}
	if _, err := s.db.ExecContext(ctx, `
		INSERT INTO balance_runs (run_id, kind, seed, runs, months, acceptable, failed, metrics_json, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, r.ID, kindCheck, r.Seed, r.Runs, r.Turns, acceptable, strings.Join(r.Failed, ","), string(metrics), r.CheckedAt.UTC(),
	); err != nil {
		return fmt.Errorf("storage.SaveCheckResult: insert %s: %w", r.ID, err)
	}
	return nil
}

// SaveSimReport registra un informe y una fila por política.
func (s *SQLiteStorage) SaveSimReport(ctx context.Context, r domain.SimReport) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("storage.SaveSimReport: begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO balance_runs (run_id, kind, seed, runs, months, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, r.Meta.ID, kindSimulation, r.Meta.Seed, r.Meta.Runs, r.Meta.Months, r.Meta.Timestamp.UTC(),
	); err != nil {
		return fmt.Errorf("storage.SaveSimReport: insert run %s: %w", r.Meta.ID, err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO balance_policies (run_id, policy, runs, bankruptcy_50, p50_net_worth, p50_positive, report_json)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("storage.SaveSimReport: prepare: %w", err)
	}
	defer stmt.Close()

	for _, p := range r.Summary {
		raw, err := json.Marshal(p)
		if err != nil {
			return fmt.Errorf("storage.SaveSimReport: encode %s: %w", p.Policy, err)
		}
		if _, err := stmt.ExecContext(ctx,
			r.Meta.ID, p.Policy, p.Runs, p.BankruptcyWithin50.Rate,
			p.FinalNetWorth.P50, p.TimeToPositive.P50, string(raw),
		); err != nil {
			return fmt.Errorf("storage.SaveSimReport: insert policy %s: %w", p.Policy, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("storage.SaveSimReport: commit: %w", err)
	}
	return nil
}

// PolicyReports devuelve las filas por política de un informe guardado.
func (s *SQLiteStorage) PolicyReports(ctx context.Context, runID string) ([]domain.PolicyReport, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT report_json FROM balance_policies WHERE run_id = ? ORDER BY rowid`, runID)
	if err != nil {
		return nil, fmt.Errorf("storage.PolicyReports: query: %w", err)
	}
	defer rows.Close()

	var out []domain.PolicyReport
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("storage.PolicyReports: scan row: %w", err)
		}
		var p domain.PolicyReport
		if err := json.Unmarshal([]byte(raw), &p); err != nil {
			return nil, fmt.Errorf("storage.PolicyReports: decode: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// Close cierra la conexión a la base de datos.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

// --- helpers internos ---

// turnChanged reporta si el mes todavía no se escribió para la partida.
func (s *SQLiteStorage) turnChanged(gameID string, month int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	last, ok := s.lastMonth[gameID]
	return !ok || last != month
}

func turnRecord(st domain.GameState) domain.TurnRecord {
	rec := domain.TurnRecord{
		Month:    st.Month,
		Cash:     st.Cash,
		NetWorth: st.NetWorthNow(),
		Debt:     st.Debt,
	}
	if st.LastTurn != nil {
		rec.PassiveIncome = st.LastTurn.PassiveIncome
		rec.CashFlow = st.LastTurn.Metrics.MonthlyCashFlow
	}
	if st.CurrentEvent != nil {
		rec.EventID = st.CurrentEvent.EventID
	}
	return rec
}

// pruneOld elimina corridas del harness antiguas para mantener la DB ligera.
func (s *SQLiteStorage) pruneOld(ctx context.Context) {
	cutoff := s.now().UTC().Add(-retentionRuns)
	s.db.ExecContext(ctx, `DELETE FROM balance_policies WHERE run_id IN (SELECT run_id FROM balance_runs WHERE created_at < ?)`, cutoff)
	s.db.ExecContext(ctx, `DELETE FROM balance_runs WHERE created_at < ?`, cutoff)
}
