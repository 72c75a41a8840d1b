package progression

import (
	_ "embed"
	"fmt"
	"sort"

	"gopkg.in/yaml.v3"
)

//go:embed levels.yaml
var levelsRawYAML []byte

type Level struct {
	Level int    `yaml:"level" json:"level"`
	XP    int    `yaml:"xp" json:"xp"`
	Title string `yaml:"title" json:"title"`
}

// LevelUp is emitted when a completion moves the resolved level upward.
type LevelUp struct {
	Old int `json:"old"`
	New int `json:"new"`
}

// LevelTable is ordered ascending by threshold.
type LevelTable struct {
	levels []Level
}

// DefaultLevels is the embedded level catalog.
var DefaultLevels = mustLoadLevels(levelsRawYAML)

func mustLoadLevels(raw []byte) LevelTable {
	table, err := ParseLevels(raw)
	if err != nil {
		panic(err)
	}
	return table
}

func ParseLevels(raw []byte) (LevelTable, error) {
	var doc struct {
		Levels []Level `yaml:"levels"`
	}
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return LevelTable{}, fmt.Errorf("parse level table: %w", err)
	}
	return NewLevelTable(doc.Levels)
}

func NewLevelTable(levels []Level) (LevelTable, error) {
	if len(levels) == 0 {
		return LevelTable{}, fmt.Errorf("level table is empty")
	}
	sorted := append([]Level(nil), levels...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].XP < sorted[j].XP
	})
	for i := 1; i < len(sorted); i++ {
		if sorted[i].Level <= sorted[i-1].Level {
			return LevelTable{}, fmt.Errorf("level %d does not increase with its threshold", sorted[i].Level)
		}
	}
	return LevelTable{levels: sorted}, nil
}

func (t LevelTable) Levels() []Level {
	return append([]Level(nil), t.levels...)
}

// Resolve returns the highest level whose threshold is <= totalXP.
func (t LevelTable) Resolve(totalXP int) int {
	for i := len(t.levels) - 1; i >= 0; i-- {
		if totalXP >= t.levels[i].XP {
			return t.levels[i].Level
		}
	}
	return t.levels[0].Level
}

// Advance resolves the level for totalXP and reports a LevelUp when it exceeds prev.
func (t LevelTable) Advance(prev int, totalXP int) (int, *LevelUp) {
	next := t.Resolve(totalXP)
	if next > prev {
		return next, &LevelUp{Old: prev, New: next}
	}
	return next, nil
}

// Info returns the entry for level, falling back to the first level.
func (t LevelTable) Info(level int) Level {
	for _, l := range t.levels {
		if l.Level == level {
			return l
		}
	}
	return t.levels[0]
}

// Next returns the entry after level, or false at the top of the table.
func (t LevelTable) Next(level int) (Level, bool) {
	for _, l := range t.levels {
		if l.Level == level+1 {
			return l, true
		}
	}
	return Level{}, false
}

type LevelProgress struct {
	Level   int    `json:"level"`
	Title   string `json:"title"`
	XP      int    `json:"xp"`
	NextXP  int    `json:"next_xp,omitempty"`
	Percent int    `json:"percent"`
	Max     bool   `json:"max"`
}

func (t LevelTable) Progress(level int, xp int) LevelProgress {
	cur := t.Info(level)
	next, ok := t.Next(level)
	if !ok {
		return LevelProgress{Level: cur.Level, Title: cur.Title, XP: xp, Percent: 100, Max: true}
	}
	span := next.XP - cur.XP
	pct := 0
	if span > 0 {
		pct = clamp((xp-cur.XP)*100/span, 0, 100)
	}
	return LevelProgress{Level: cur.Level, Title: cur.Title, XP: xp, NextXP: next.XP, Percent: pct}
}

// ResolveLevel resolves against the embedded level table.
func ResolveLevel(totalXP int) int {
	return DefaultLevels.Resolve(totalXP)
}

func LevelInfo(level int) Level {
	return DefaultLevels.Info(level)
}

func NextLevel(level int) (Level, bool) {
	return DefaultLevels.Next(level)
}
