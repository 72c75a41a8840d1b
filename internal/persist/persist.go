// Package persist loads and saves the progression records with schema migration
// and degrading history writes.
package persist

import (
	"context"
	"encoding/json"
	"fmt"

	"aesthetica/internal/history"
	"aesthetica/internal/logger"
	"aesthetica/internal/model"
	"aesthetica/internal/store"
)

const (
	KeyStats    = "stats"
	KeyHistory  = "history"
	KeySettings = "settings"
)

// Settings holds the user-supplied collaborator credential.
type Settings struct {
	APIKey string `json:"apiKey"`
}

// Fidelity reports which history write attempt reached storage.
type Fidelity int

const (
	FidelityNone Fidelity = iota
	FidelityRecentImages
	FidelityTextOnly
)

func (f Fidelity) String() string {
	switch f {
	case FidelityRecentImages:
		return "recent_images"
	case FidelityTextOnly:
		return "text_only"
	default:
		return "none"
	}
}

type Repository struct {
	store store.Store
	log   *logger.Logger
}

func New(st store.Store, log *logger.Logger) *Repository {
	if log == nil {
		log = logger.Nop()
	}
	return &Repository{store: st, log: log.With("component", "persist")}
}

// LoadStats never fails: a missing or unreadable record yields DefaultStats(today).
func (r *Repository) LoadStats(ctx context.Context, today string) model.UserStats {
	raw, ok, err := r.store.Get(ctx, KeyStats)
	if err != nil {
		r.log.Error("read stats failed, using defaults", "error", err)
		return DefaultStats(today)
	}
	if !ok {
		return DefaultStats(today)
	}
	stats, err := decodeStats(raw, today)
	if err != nil {
		r.log.Warn("stats record is malformed, using defaults", "error", err)
		return DefaultStats(today)
	}
	return stats
}

// LoadHistory returns the stored ledger, or an empty one on absence or corruption.
func (r *Repository) LoadHistory(ctx context.Context) []model.HistoryItem {
	raw, ok, err := r.store.Get(ctx, KeyHistory)
	if err != nil {
		r.log.Error("read history failed, starting empty", "error", err)
		return []model.HistoryItem{}
	}
	if !ok {
		return []model.HistoryItem{}
	}
	items, err := decodeHistory(raw)
	if err != nil {
		r.log.Warn("history record is malformed, starting empty", "error", err)
		return []model.HistoryItem{}
	}
	return items
}

func (r *Repository) LoadSettings(ctx context.Context) Settings {
	raw, ok, err := r.store.Get(ctx, KeySettings)
	if err != nil || !ok {
		if err != nil {
			r.log.Error("read settings failed", "error", err)
		}
		return Settings{}
	}
	var s Settings
	if err := json.Unmarshal(raw, &s); err != nil {
		r.log.Warn("settings record is malformed, ignoring", "error", err)
		return Settings{}
	}
	return s
}

func (r *Repository) SaveStats(ctx context.Context, stats model.UserStats) error {
	stats.SchemaVersion = SchemaVersion
	return r.putJSON(ctx, KeyStats, stats)
}

func (r *Repository) SaveSettings(ctx context.Context, s Settings) error {
	return r.putJSON(ctx, KeySettings, s)
}

// SaveHistory first keeps embedded images only on the newest entries, then retries with
// every image stripped. The caller's slice is never modified.
func (r *Repository) SaveHistory(ctx context.Context, items []model.HistoryItem) (Fidelity, error) {
	err := r.putJSON(ctx, KeyHistory, history.PruneImages(items, history.ImageKeepRecent))
	if err == nil {
		return FidelityRecentImages, nil
	}
	r.log.Warn("history write failed, retrying without images", "error", err, "items", len(items))

	err = r.putJSON(ctx, KeyHistory, history.StripAllImages(items))
	if err == nil {
		return FidelityTextOnly, nil
	}
	r.log.Error("history write failed", "error", err, "items", len(items))
	return FidelityNone, err
}

func (r *Repository) putJSON(ctx context.Context, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := r.store.Put(ctx, key, data); err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}
	return nil
}
