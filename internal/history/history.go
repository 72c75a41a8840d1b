// Package history holds the newest-first ledger of completed tasks.
package history

import (
	"errors"
	"fmt"
	"strings"

	"aesthetica/internal/model"
)

// ErrorScoreThreshold separates failed attempts from passing ones in the errors view.
const ErrorScoreThreshold = 60

var ErrUnknownFilter = errors.New("unknown history filter")

type Filter string

const (
	FilterAll         Filter = "all"
	FilterErrors      Filter = "errors"
	FilterMCQ         Filter = "mcq"
	FilterObservation Filter = "observation"
)

func ParseFilter(raw string) (Filter, error) {
	switch f := Filter(strings.ToLower(strings.TrimSpace(raw))); f {
	case "":
		return FilterAll, nil
	case FilterAll, FilterErrors, FilterMCQ, FilterObservation:
		return f, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFilter, raw)
	}
}

// Prepend returns a new ledger with item at index 0. The input slice is left untouched.
func Prepend(items []model.HistoryItem, item model.HistoryItem) []model.HistoryItem {
	out := make([]model.HistoryItem, 0, len(items)+1)
	out = append(out, item)
	return append(out, items...)
}

// Recent returns at most n newest items, sharing the backing array.
func Recent(items []model.HistoryItem, n int) []model.HistoryItem {
	if n <= 0 {
		return nil
	}
	if n > len(items) {
		n = len(items)
	}
	return items[:n]
}

func Categories(items []model.HistoryItem) map[model.Category]struct{} {
	seen := make(map[model.Category]struct{}, len(model.AllCategories))
	for _, item := range items {
		if item.Challenge.Category == "" {
			continue
		}
		seen[item.Challenge.Category] = struct{}{}
	}
	return seen
}

func Apply(items []model.HistoryItem, filter Filter) []model.HistoryItem {
	out := make([]model.HistoryItem, 0, len(items))
	for _, item := range items {
		if matches(item, filter) {
			out = append(out, item)
		}
	}
	return out
}

func matches(item model.HistoryItem, filter Filter) bool {
	switch filter {
	case FilterErrors:
		return item.Assessment.Score < ErrorScoreThreshold
	case FilterMCQ:
		return item.Challenge.Type == model.TaskMultipleChoice
	case FilterObservation:
		return item.Challenge.Type == model.TaskObservation || item.Challenge.Type == model.TaskAnalysis
	default:
		return true
	}
}
