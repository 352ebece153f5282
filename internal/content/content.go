// Package content carga y valida el contenido del juego: reglas, profesiones,
// instrumentos, mercado, eventos, acciones del hogar y tratos.
package content

import (
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"

	"github.com/toropanov/capetica/internal/domain"
)

//go:embed defaults/*.json
var defaultFS embed.FS

// Nombres de los documentos dentro del directorio de contenido.
const (
	fileRules       = "game_rules.json"
	fileHomeActions = "home_actions.json"
	fileInstruments = "instruments.json"
	fileMarkets     = "markets.json"
	fileProfessions = "professions.json"
	fileEvents      = "random_events.json"
	fileDeals       = "deals.json"
)

// Bundle es el contenido completo, ya tipado, con defaults aplicados y validado.
// Se trata como inmutable después de Load.
type Bundle struct {
	Rules       domain.GameRules
	HomeActions domain.HomeActionCatalog
	Instruments []domain.Instrument
	Markets     domain.MarketConfig
	Professions []domain.Profession
	Events      []domain.RandomEvent
	Deals       []domain.DealTemplate

	instruments map[string]domain.Instrument
	professions map[string]domain.Profession
	actions     map[string]domain.HomeAction
	deals       map[string]domain.DealTemplate
}

// Load lee el contenido de dir. Con dir vacío usa los defaults embebidos.
func Load(dir string) (*Bundle, error) {
	var fsys fs.FS
	if dir == "" {
		sub, err := fs.Sub(defaultFS, "defaults")
		if err != nil {
			return nil, fmt.Errorf("content.Load: embedded defaults: %w", err)
		}
		fsys = sub
	} else {
		if _, err := os.Stat(dir); err != nil {
			return nil, fmt.Errorf("content.Load: stat %q: %w", dir, err)
		}
		fsys = os.DirFS(dir)
	}
	return LoadFS(fsys)
}

// Default carga el contenido embebido. Los defaults se validan en los tests,
// así que un fallo aquí es un bug de empaquetado.
func Default() *Bundle {
	b, err := Load("")
	if err != nil {
		panic(err)
	}
	return b
}

// LoadFS lee los siete documentos desde fsys.
func LoadFS(fsys fs.FS) (*Bundle, error) {
	var (
		b           Bundle
		instruments struct {
			Instruments []domain.Instrument `json:"instruments"`
		}
		professions struct {
			Professions []domain.Profession `json:"professions"`
		}
		events struct {
			Events []domain.RandomEvent `json:"events"`
		}
		deals struct {
			Deals []domain.DealTemplate `json:"deals"`
		}
	)

	docs := []struct {
		name string
		dst  any
	}{
		{fileRules, &b.Rules},
		{fileHomeActions, &b.HomeActions},
		{fileInstruments, &instruments},
		{fileMarkets, &b.Markets},
		{fileProfessions, &professions},
		{fileEvents, &events},
		{fileDeals, &deals},
	}
	for _, d := range docs {
		if err := readJSON(fsys, d.name, d.dst); err != nil {
			return nil, err
		}
	}

	b.Instruments = instruments.Instruments
	b.Professions = professions.Professions
	b.Events = events.Events
	b.Deals = deals.Deals

	applyDefaults(&b)
	if err := validate(&b); err != nil {
		return nil, fmt.Errorf("content.Load: validate: %w", err)
	}
	b.index()
	return &b, nil
}

func readJSON(fsys fs.FS, name string, dst any) error {
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		return fmt.Errorf("content.Load: read %s: %w", name, err)
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("content.Load: parse %s: %w", name, err)
	}
	return nil
}

func (b *Bundle) index() {
	b.instruments = make(map[string]domain.Instrument, len(b.Instruments))
	for _, in := range b.Instruments {
		b.instruments[in.ID] = in
	}
	b.professions = make(map[string]domain.Profession, len(b.Professions))
	for _, p := range b.Professions {
		b.professions[p.ID] = p
	}
	b.actions = make(map[string]domain.HomeAction, len(b.HomeActions.Actions))
	for _, a := range b.HomeActions.Actions {
		b.actions[a.ID] = a
	}
	b.deals = make(map[string]domain.DealTemplate, len(b.Deals))
	for _, d := range b.Deals {
		b.deals[d.ID] = d
	}
}

// Instrument busca un instrumento por id.
func (b *Bundle) Instrument(id string) (domain.Instrument, bool) {
	in, ok := b.instruments[id]
	return in, ok
}

// InstrumentMap devuelve el índice de instrumentos. No modificar.
func (b *Bundle) InstrumentMap() map[string]domain.Instrument {
	return b.instruments
}

// InstrumentIDs devuelve los ids en el orden del catálogo.
func (b *Bundle) InstrumentIDs() []string {
	ids := make([]string, len(b.Instruments))
	for i, in := range b.Instruments {
		ids[i] = in.ID
	}
	return ids
}

// FirstOfType devuelve el primer instrumento del catálogo con ese tipo.
func (b *Bundle) FirstOfType(t domain.AssetType) (domain.Instrument, bool) {
	for _, in := range b.Instruments {
		if in.Type == t {
			return in, true
		}
	}
	return domain.Instrument{}, false
}

// Profession busca una profesión por id.
func (b *Bundle) Profession(id string) (domain.Profession, bool) {
	p, ok := b.professions[id]
	return p, ok
}

// HomeAction busca una acción del hogar por id.
func (b *Bundle) HomeAction(id string) (domain.HomeAction, bool) {
	a, ok := b.actions[id]
	return a, ok
}

// Deal busca una plantilla de trato por id.
func (b *Bundle) Deal(id string) (domain.DealTemplate, bool) {
	d, ok := b.deals[id]
	return d, ok
}
