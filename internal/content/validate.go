package content

import (
	"errors"
	"fmt"

	"github.com/toropanov/capetica/internal/domain"
)

// validate junta todos los problemas del contenido en un solo error.
func validate(b *Bundle) error {
	var errs []error
	add := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf(format, args...))
	}

	instruments := make(map[string]bool, len(b.Instruments))
	for _, in := range b.Instruments {
		switch {
		case in.ID == "":
			add("instruments: empty id")
		case instruments[in.ID]:
			add("instruments: duplicate id %q", in.ID)
		}
		instruments[in.ID] = true
		if !in.Type.Valid() {
			add("instrument %q: unknown type %q", in.ID, in.Type)
		}
		if in.InitialPrice <= 0 {
			add("instrument %q: initialPrice must be positive", in.ID)
		}
	}
	if len(b.Instruments) == 0 {
		add("instruments: catalog is empty")
	}

	cycles := make(map[string]bool, len(b.Markets.Cycles))
	for _, c := range b.Markets.Cycles {
		cycles[c.ID] = true
	}
	shocks := make(map[string]bool, len(b.Markets.ShockModel.Events))
	for _, s := range b.Markets.ShockModel.Events {
		shocks[s.ID] = true
	}
	for _, in := range b.Instruments {
		for _, ref := range in.Model.CycleRefs {
			if !cycles[ref] {
				add("instrument %q: unknown cycle %q", in.ID, ref)
			}
		}
		for _, ref := range in.Model.ShockRefs {
			if !shocks[ref] {
				add("instrument %q: unknown shock %q", in.ID, ref)
			}
		}
	}
	for _, a := range domain.SortedKeys(b.Markets.Correlations.Matrix) {
		row := b.Markets.Correlations.Matrix[a]
		for _, c := range domain.SortedKeys(row) {
			if v := row[c]; v < -1 || v > 1 {
				add("markets: correlation %s/%s = %v out of [-1, 1]", a, c, v)
			}
		}
	}

	professions := make(map[string]bool, len(b.Professions))
	for _, p := range b.Professions {
		switch {
		case p.ID == "":
			add("professions: empty id")
		case professions[p.ID]:
			add("professions: duplicate id %q", p.ID)
		}
		professions[p.ID] = true
		for _, id := range domain.SortedKeys(p.StartingPortfolio) {
			if !instruments[id] {
				add("profession %q: portfolio references unknown instrument %q", p.ID, id)
			}
		}
	}
	if len(b.Professions) == 0 {
		add("professions: catalog is empty")
	}

	events := make(map[string]bool, len(b.Events))
	for _, e := range b.Events {
		switch {
		case e.ID == "":
			add("random_events: empty id")
		case events[e.ID]:
			add("random_events: duplicate id %q", e.ID)
		}
		events[e.ID] = true
	}

	actions := make(map[string]bool, len(b.HomeActions.Actions))
	for _, a := range b.HomeActions.Actions {
		switch {
		case a.ID == "":
			add("home_actions: empty id")
		case actions[a.ID]:
			add("home_actions: duplicate id %q", a.ID)
		}
		actions[a.ID] = true
	}

	deals := make(map[string]bool, len(b.Deals))
	for _, d := range b.Deals {
		switch {
		case d.ID == "":
			add("deals: empty id")
		case deals[d.ID]:
			add("deals: duplicate id %q", d.ID)
		}
		deals[d.ID] = true
		if d.Window.MinTurns < 1 || d.Window.MaxTurns < d.Window.MinTurns {
			add("deal %q: window needs 1 <= minTurns <= maxTurns", d.ID)
		}
		if d.DurationMonths < 1 {
			add("deal %q: durationMonths must be at least 1", d.ID)
		}
	}

	errs = append(errs, validateGoals(b.Rules)...)
	return errors.Join(errs...)
}

func validateGoals(r domain.GameRules) []error {
	var errs []error
	seen := make(map[string]bool)
	for _, w := range r.Win {
		if w.ID == "" || seen["win:"+w.ID] {
			errs = append(errs, fmt.Errorf("game_rules: win rule id %q is empty or duplicated", w.ID))
		}
		seen["win:"+w.ID] = true
		switch w.Type {
		case domain.WinPassiveCoversCosts, domain.WinNetWorthReach:
		default:
			errs = append(errs, fmt.Errorf("game_rules: win rule %q has unknown type %q", w.ID, w.Type))
		}
	}
	for _, l := range r.Lose {
		if l.ID == "" || seen["lose:"+l.ID] {
			errs = append(errs, fmt.Errorf("game_rules: lose rule id %q is empty or duplicated", l.ID))
		}
		seen["lose:"+l.ID] = true
		switch l.Type {
		case domain.LoseNoLiquidity, domain.LoseDebtSpiral, domain.LoseInsolvency, domain.LoseDebtRatio:
		default:
			errs = append(errs, fmt.Errorf("game_rules: lose rule %q has unknown type %q", l.ID, l.Type))
		}
	}
	if r.Difficulty.Default != "" {
		if _, ok := r.Difficulty.Presets[r.Difficulty.Default]; !ok {
			errs = append(errs, fmt.Errorf("game_rules: default difficulty %q has no preset", r.Difficulty.Default))
		}
	}
	return errs
}
