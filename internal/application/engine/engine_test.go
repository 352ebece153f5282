package engine_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/toropanov/capetica/internal/application/engine"
	"github.com/toropanov/capetica/internal/content"
	"github.com/toropanov/capetica/internal/domain"
	"github.com/toropanov/capetica/internal/game"
	"github.com/toropanov/capetica/internal/strategy"
)

type memStore struct {
	mu    sync.Mutex
	saved []int // meses en orden de escritura
	games map[string]domain.GameState

	entered chan struct{} // opcional: avisa que una escritura empezó
	release chan struct{} // opcional: bloquea la escritura hasta cerrarse
}

func newMemStore() *memStore {
	return &memStore{games: map[string]domain.GameState{}}
}

func (m *memStore) SaveSnapshot(_ context.Context, gameID string, s domain.GameState) error {
	if m.entered != nil {
		m.entered <- struct{}{}
	}
	if m.release != nil {
		<-m.release
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saved = append(m.saved, s.Month)
	m.games[gameID] = s
	return nil
}

func (m *memStore) LoadSnapshot(_ context.Context, gameID string) (domain.GameState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.games[gameID]
	if !ok {
		return domain.GameState{}, domain.ErrGameNotFound
	}
	return s, nil
}

func (m *memStore) ListGames(_ context.Context, limit int) ([]domain.GameSummary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.GameSummary
	for _, id := range domain.SortedKeys(m.games) {
		s := m.games[id]
		out = append(out, domain.GameSummary{ID: id, ProfessionID: s.ProfessionID, Month: s.Month})
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *memStore) Turns(_ context.Context, gameID string) ([]domain.TurnRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.games[gameID]; !ok {
		return nil, nil
	}
	var out []domain.TurnRecord
	for _, month := range m.saved {
		out = append(out, domain.TurnRecord{Month: month})
	}
	return out, nil
}

func (m *memStore) Close() error { return nil }

func (m *memStore) months() []int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]int(nil), m.saved...)
}

// --- Sesión ---

func TestEngine_PlaythroughIsPersisted(t *testing.T) {
	store := newMemStore()
	e := engine.New(content.Default(), store, engine.Config{Seed: 42})

	s, err := e.SelectProfession("engineer", game.Prefs{})
	require.NoError(t, err)
	assert.Equal(t, "engineer", s.ProfessionID)
	id := e.GameID()
	assert.Len(t, id, 36)

	e.AdvanceMonth()
	e.AdvanceMonth()
	require.NoError(t, e.Close())

	assert.Equal(t, []int{0, 1, 2}, store.months())
	saved, err := store.LoadSnapshot(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, e.State(), saved)
}

func TestEngine_SameSeedSameGame(t *testing.T) {
	a := engine.New(content.Default(), nil, engine.Config{Seed: 7})
	b := engine.New(content.Default(), nil, engine.Config{Seed: 7})
	_, err := a.SelectProfession("engineer", game.Prefs{})
	require.NoError(t, err)
	_, err = b.SelectProfession("engineer", game.Prefs{})
	require.NoError(t, err)

	for range 6 {
		a.AdvanceMonth()
		b.AdvanceMonth()
	}
	assert.Equal(t, a.State(), b.State())
	assert.NotEqual(t, a.GameID(), b.GameID())
}

func TestEngine_DefaultDifficulty(t *testing.T) {
	e := engine.New(content.Default(), nil, engine.Config{Seed: 1, Difficulty: "hard"})
	s, err := e.RandomProfession(game.Prefs{})
	require.NoError(t, err)
	assert.Equal(t, "hard", s.Difficulty)
	assert.True(t, s.Started())
}

func TestEngine_RejectedActionKeepsState(t *testing.T) {
	store := newMemStore()
	e := engine.New(content.Default(), store, engine.Config{Seed: 42})
	before, err := e.SelectProfession("engineer", game.Prefs{})
	require.NoError(t, err)

	got, err := e.BuyInstrument("nope", 100)
	assert.ErrorIs(t, err, domain.ErrUnknownInstrument)
	assert.Equal(t, before, got)

	_, _, err = e.ApplyHomeAction("nope", game.ActionOptions{})
	assert.ErrorIs(t, err, domain.ErrUnknownAction)

	_, err = e.ServiceDebt(100, "ghost")
	assert.Error(t, err)

	require.NoError(t, e.Close())
	assert.Equal(t, []int{0}, store.months())
}

func TestEngine_UnknownProfession(t *testing.T) {
	e := engine.New(content.Default(), nil, engine.Config{})
	_, err := e.SelectProfession("astronaut", game.Prefs{})
	assert.ErrorIs(t, err, domain.ErrUnknownProfession)
	assert.Empty(t, e.GameID())
	assert.False(t, e.State().Started())
}

func TestEngine_TradesAndCredit(t *testing.T) {
	e := engine.New(content.Default(), nil, engine.Config{Seed: 3})
	start, err := e.SelectProfession("engineer", game.Prefs{})
	require.NoError(t, err)

	in := e.Sim().Content().Instruments[0]
	s, err := e.BuyInstrument(in.ID, 500)
	require.NoError(t, err)
	assert.Less(t, s.Cash, start.Cash)
	assert.Contains(t, s.Investments, in.ID)

	s, err = e.DrawCredit(0)
	require.NoError(t, err)
	assert.Positive(t, s.Debt)

	s, err = e.ServiceDebt(s.Debt, "")
	require.NoError(t, err)
	assert.Zero(t, s.Debt)
}

func TestEngine_ResetKeepsProfession(t *testing.T) {
	e := engine.New(content.Default(), nil, engine.Config{Seed: 9})
	first, err := e.SelectProfession("engineer", game.Prefs{})
	require.NoError(t, err)
	e.AdvanceMonth()

	s, err := e.ResetGame()
	require.NoError(t, err)
	assert.Equal(t, "engineer", s.ProfessionID)
	assert.Zero(t, s.Month)
	assert.Equal(t, first.Cash, s.Cash)
}

func TestEngine_MutationsAreSerialized(t *testing.T) {
	e := engine.New(content.Default(), newMemStore(), engine.Config{Seed: 5})
	_, err := e.SelectProfession("engineer", game.Prefs{})
	require.NoError(t, err)

	var wg sync.WaitGroup
	for range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			e.AdvanceMonth()
		}()
	}
	wg.Wait()
	require.NoError(t, e.Close())
	assert.Equal(t, 10, e.State().Month)
}

// --- Snapshots ---

func TestEngine_FullQueueDropsOldest(t *testing.T) {
	store := newMemStore()
	store.entered = make(chan struct{}, 10)
	store.release = make(chan struct{})
	e := engine.New(content.Default(), store, engine.Config{Seed: 42, QueueSize: 1})

	_, err := e.SelectProfession("engineer", game.Prefs{})
	require.NoError(t, err)
	<-store.entered // el writer quedó bloqueado con el mes 0

	e.AdvanceMonth()
	e.AdvanceMonth()
	close(store.release)
	require.NoError(t, e.Close())

	assert.Equal(t, []int{0, 2}, store.months())
}

func TestEngine_CloseIsIdempotent(t *testing.T) {
	e := engine.New(content.Default(), newMemStore(), engine.Config{Seed: 1})
	_, err := e.SelectProfession("engineer", game.Prefs{})
	require.NoError(t, err)
	require.NoError(t, e.Close())
	require.NoError(t, e.Close())

	// después de cerrar se sigue jugando, solo que sin persistir
	assert.Equal(t, 1, e.AdvanceMonth().Month)
}

func TestEngine_Resume(t *testing.T) {
	store := newMemStore()
	e := engine.New(content.Default(), store, engine.Config{Seed: 42})
	_, err := e.SelectProfession("engineer", game.Prefs{})
	require.NoError(t, err)
	e.AdvanceMonth()
	id := e.GameID()
	require.NoError(t, e.Close())

	resumed := engine.New(content.Default(), store, engine.Config{})
	s, err := resumed.Resume(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, 1, s.Month)
	assert.Equal(t, id, resumed.GameID())
	assert.Equal(t, e.State(), resumed.State())
	require.NoError(t, resumed.Close())

	_, err = resumed.Resume(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrGameNotFound)

	_, err = engine.New(content.Default(), nil, engine.Config{}).Resume(context.Background(), id)
	assert.ErrorIs(t, err, engine.ErrNoStore)
}

// --- Autoplay ---

func TestEngine_PlayMonthMatchesDirectPlay(t *testing.T) {
	p, ok := strategy.DefaultRegistry().Get(strategy.Balanced)
	require.True(t, ok)

	e := engine.New(content.Default(), nil, engine.Config{Seed: 11})
	_, err := e.SelectProfession("engineer", game.Prefs{})
	require.NoError(t, err)

	sim := game.New(content.Default())
	want, err := sim.NewGame("engineer", game.Prefs{}, 11)
	require.NoError(t, err)

	for range 4 {
		e.PlayMonth(p)
		want = sim.AdvanceMonth(p.Act(sim, want))
	}
	assert.Equal(t, 4, e.State().Month)
	assert.Equal(t, want, e.State())
}

func TestEngine_HistoryAndListGames(t *testing.T) {
	store := newMemStore()
	e := engine.New(content.Default(), store, engine.Config{Seed: 42})
	_, err := e.SelectProfession("engineer", game.Prefs{})
	require.NoError(t, err)
	e.AdvanceMonth()
	require.NoError(t, e.Close())

	turns, err := e.History(context.Background())
	require.NoError(t, err)
	require.Len(t, turns, 2)
	assert.Equal(t, 1, turns[1].Month)

	games, err := e.ListGames(context.Background(), 5)
	require.NoError(t, err)
	require.Len(t, games, 1)
	assert.Equal(t, e.GameID(), games[0].ID)

	bare := engine.New(content.Default(), nil, engine.Config{})
	_, err = bare.History(context.Background())
	assert.ErrorIs(t, err, engine.ErrNoStore)
	_, err = bare.ListGames(context.Background(), 1)
	assert.ErrorIs(t, err, engine.ErrNoStore)
}
