package persist

import (
	"encoding/json"

	"aesthetica/internal/knowledge"
	"aesthetica/internal/model"
)

// SchemaVersion is written with every stats record.
//
//	0/1: original shape; lastStreakDate and badges may be missing, categories are display labels.
//	2:   schemaVersion added, categories stored as slugs.
const SchemaVersion = 2

const DefaultUsername = "Aesthetic Apprentice"

func DefaultStats(today string) model.UserStats {
	return model.UserStats{
		SchemaVersion:  SchemaVersion,
		Username:       DefaultUsername,
		Avatar:         nil,
		LastStreakDate: "",
		Level:          1,
		Badges:         []model.Badge{},
		ScoresHistory:  []model.ScorePoint{},
		DailyProgress: model.DailyProgress{
			LastDate: today,
		},
	}
}

// decodeStats overlays the stored record on the defaults. Decoding into a pre-filled
// struct keeps defaults for absent fields, including inside dailyProgress.
func decodeStats(raw []byte, today string) (model.UserStats, error) {
	stats := DefaultStats(today)
	stats.SchemaVersion = 0
	if err := json.Unmarshal(raw, &stats); err != nil {
		return model.UserStats{}, err
	}
	return migrateStats(stats), nil
}

func migrateStats(stats model.UserStats) model.UserStats {
	if stats.Badges == nil {
		stats.Badges = []model.Badge{}
	}
	if stats.ScoresHistory == nil {
		stats.ScoresHistory = []model.ScorePoint{}
	}
	if stats.Username == "" {
		stats.Username = DefaultUsername
	}
	if stats.Level < 1 {
		stats.Level = 1
	}
	stats.SchemaVersion = SchemaVersion
	return stats
}

func decodeHistory(raw []byte) ([]model.HistoryItem, error) {
	var items []model.HistoryItem
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, err
	}
	if items == nil {
		return []model.HistoryItem{}, nil
	}
	for i := range items {
		items[i].Challenge.Category = migrateCategory(items[i].Challenge.Category)
	}
	return items, nil
}

// migrateCategory maps legacy display labels onto slugs; unknown values are kept verbatim.
func migrateCategory(c model.Category) model.Category {
	if c.Valid() {
		return c
	}
	if resolved, ok := knowledge.Resolve(string(c)); ok {
		return resolved
	}
	return c
}
