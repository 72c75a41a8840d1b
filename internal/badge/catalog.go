// Package badge evaluates achievement unlocks over a user's cumulative progress.
package badge

import (
	_ "embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"aesthetica/internal/model"
)

//go:embed badges.yaml
var badgesRawYAML []byte

type Group string

const (
	GroupMilestones Group = "milestones"
	GroupSkill      Group = "skill"
	GroupBreadth    Group = "breadth"
)

type Definition struct {
	ID          model.BadgeID `yaml:"id" json:"id"`
	Name        string        `yaml:"name" json:"name"`
	Description string        `yaml:"description" json:"description"`
	IconType    string        `yaml:"iconType" json:"iconType"`
	Group       Group         `yaml:"group" json:"group"`
}

// Unlock stamps the definition into a user-owned badge record.
func (d Definition) Unlock(at string) model.Badge {
	return model.Badge{
		ID:          d.ID,
		Name:        d.Name,
		Description: d.Description,
		IconType:    d.IconType,
		UnlockedAt:  at,
	}
}

// Catalog keeps definitions in declaration order.
type Catalog struct {
	defs []Definition
}

var DefaultCatalog = mustLoadCatalog(badgesRawYAML)

func mustLoadCatalog(raw []byte) Catalog {
	c, err := ParseCatalog(raw)
	if err != nil {
		panic(err)
	}
	return c
}

func ParseCatalog(raw []byte) (Catalog, error) {
	var doc struct {
		Badges []Definition `yaml:"badges"`
	}
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return Catalog{}, fmt.Errorf("parse badge catalog: %w", err)
	}
	seen := make(map[model.BadgeID]struct{}, len(doc.Badges))
	defs := make([]Definition, 0, len(doc.Badges))
	for _, def := range doc.Badges {
		def.ID = model.BadgeID(strings.TrimSpace(string(def.ID)))
		if def.ID == "" {
			continue
		}
		if _, dup := seen[def.ID]; dup {
			return Catalog{}, fmt.Errorf("duplicate badge id %q", def.ID)
		}
		seen[def.ID] = struct{}{}
		defs = append(defs, def)
	}
	return Catalog{defs: defs}, nil
}

func (c Catalog) Definitions() []Definition {
	return append([]Definition(nil), c.defs...)
}

func (c Catalog) Lookup(id model.BadgeID) (Definition, bool) {
	for _, def := range c.defs {
		if def.ID == id {
			return def, true
		}
	}
	return Definition{}, false
}

// Entry is a catalog definition joined with the user's unlock state.
type Entry struct {
	Definition
	Unlocked   bool   `json:"unlocked"`
	UnlockedAt string `json:"unlockedAt,omitempty"`
}

// View lists every definition with its unlock timestamp when the user owns it.
func (c Catalog) View(unlocked []model.Badge) []Entry {
	owned := make(map[model.BadgeID]string, len(unlocked))
	for _, b := range unlocked {
		owned[b.ID] = b.UnlockedAt
	}
	entries := make([]Entry, 0, len(c.defs))
	for _, def := range c.defs {
		at, ok := owned[def.ID]
		entries = append(entries, Entry{Definition: def, Unlocked: ok, UnlockedAt: at})
	}
	return entries
}
