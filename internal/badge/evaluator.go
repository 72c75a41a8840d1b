package badge

import (
	"aesthetica/internal/calendar"
	"aesthetica/internal/model"
)

type Evaluator struct {
	catalog Catalog
	rules   map[model.BadgeID]Predicate
}

func NewEvaluator(catalog Catalog, rules map[model.BadgeID]Predicate) *Evaluator {
	return &Evaluator{catalog: catalog, rules: rules}
}

// Default evaluates the embedded catalog with DefaultRules.
func Default() *Evaluator {
	return NewEvaluator(DefaultCatalog, DefaultRules)
}

func (e *Evaluator) Catalog() Catalog {
	return e.catalog
}

// Evaluate returns the unlocked set with any newly earned badges appended, plus the new ones.
// Owned badges are never re-tested, re-stamped or removed. Definitions without a rule never unlock.
func (e *Evaluator) Evaluate(in Input) ([]model.Badge, []model.Badge) {
	updated := make([]model.Badge, len(in.Stats.Badges), len(in.Stats.Badges)+len(e.catalog.defs))
	copy(updated, in.Stats.Badges)

	owned := make(map[model.BadgeID]struct{}, len(updated))
	for _, b := range updated {
		owned[b.ID] = struct{}{}
	}

	stamp := calendar.FormatTimestamp(in.Now)
	var unlocked []model.Badge
	for _, def := range e.catalog.defs {
		if _, ok := owned[def.ID]; ok {
			continue
		}
		rule, ok := e.rules[def.ID]
		if !ok || !rule(in) {
			continue
		}
		b := def.Unlock(stamp)
		updated = append(updated, b)
		unlocked = append(unlocked, b)
		owned[def.ID] = struct{}{}
	}
	return updated, unlocked
}
