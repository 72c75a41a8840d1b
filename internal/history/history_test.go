package history

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aesthetica/internal/model"
)

func item(id string, tt model.TaskType, cat model.Category, score int, image string) model.HistoryItem {
	return model.HistoryItem{
		ID:         id,
		Challenge:  model.Challenge{ID: "c-" + id, Type: tt, Category: cat, GeneratedImageURL: image},
		Assessment: model.AssessmentResult{Score: score},
	}
}

func TestPrependKeepsNewestFirst(t *testing.T) {
	ledger := []model.HistoryItem{item("1", model.TaskMultipleChoice, model.CategoryNature, 80, "")}
	next := Prepend(ledger, item("2", model.TaskObservation, model.CategoryDesign, 70, ""))

	require.Len(t, next, 2)
	assert.Equal(t, "2", next[0].ID)
	assert.Equal(t, "1", next[1].ID)
	assert.Len(t, ledger, 1)
}

func TestRecent(t *testing.T) {
	ledger := []model.HistoryItem{item("a", "", "", 0, ""), item("b", "", "", 0, ""), item("c", "", "", 0, "")}
	assert.Len(t, Recent(ledger, 2), 2)
	assert.Len(t, Recent(ledger, 10), 3)
	assert.Empty(t, Recent(ledger, 0))
	assert.Empty(t, Recent(nil, 5))
}

func TestCategories(t *testing.T) {
	ledger := []model.HistoryItem{
		item("1", model.TaskMultipleChoice, model.CategoryNature, 0, ""),
		item("2", model.TaskMultipleChoice, model.CategoryNature, 0, ""),
		item("3", model.TaskObservation, model.CategoryFashion, 0, ""),
		item("4", model.TaskObservation, "", 0, ""),
	}
	cats := Categories(ledger)
	assert.Len(t, cats, 2)
	assert.Contains(t, cats, model.CategoryNature)
	assert.Contains(t, cats, model.CategoryFashion)
}

func TestApplyFilters(t *testing.T) {
	ledger := []model.HistoryItem{
		item("mcq-low", model.TaskMultipleChoice, model.CategoryNature, 20, ""),
		item("mcq-high", model.TaskMultipleChoice, model.CategoryNature, 100, ""),
		item("obs", model.TaskObservation, model.CategoryDesign, 59, ""),
		item("analysis", model.TaskAnalysis, model.CategoryEmotion, 60, ""),
	}

	ids := func(items []model.HistoryItem) []string {
		out := make([]string, 0, len(items))
		for _, it := range items {
			out = append(out, it.ID)
		}
		return out
	}

	assert.Equal(t, []string{"mcq-low", "mcq-high", "obs", "analysis"}, ids(Apply(ledger, FilterAll)))
	assert.Equal(t, []string{"mcq-low", "obs"}, ids(Apply(ledger, FilterErrors)))
	assert.Equal(t, []string{"mcq-low", "mcq-high"}, ids(Apply(ledger, FilterMCQ)))
	assert.Equal(t, []string{"obs", "analysis"}, ids(Apply(ledger, FilterObservation)))
}

func TestParseFilter(t *testing.T) {
	f, err := ParseFilter("")
	require.NoError(t, err)
	assert.Equal(t, FilterAll, f)

	f, err = ParseFilter(" ERRORS ")
	require.NoError(t, err)
	assert.Equal(t, FilterErrors, f)

	_, err = ParseFilter("favourites")
	assert.ErrorIs(t, err, ErrUnknownFilter)
}

func TestPruneImagesKeepsRecentAndRemoteURLs(t *testing.T) {
	ledger := make([]model.HistoryItem, 0, 8)
	for i := 0; i < 7; i++ {
		ledger = append(ledger, item(string(rune('a'+i)), model.TaskMultipleChoice, model.CategoryNature, 50, "data:image/png;base64,AAAA"))
	}
	ledger = append(ledger, item("remote", model.TaskMultipleChoice, model.CategoryNature, 50, "https://img.example/x.png"))

	pruned := PruneImages(ledger, ImageKeepRecent)
	require.Len(t, pruned, len(ledger))
	for i := 0; i < ImageKeepRecent; i++ {
		assert.NotEmpty(t, pruned[i].Challenge.GeneratedImageURL, "index %d", i)
	}
	assert.Empty(t, pruned[5].Challenge.GeneratedImageURL)
	assert.Empty(t, pruned[6].Challenge.GeneratedImageURL)
	assert.Equal(t, "https://img.example/x.png", pruned[7].Challenge.GeneratedImageURL)

	assert.Equal(t, "data:image/png;base64,AAAA", ledger[6].Challenge.GeneratedImageURL, "input must not be mutated")
}

func TestStripAllImages(t *testing.T) {
	ledger := []model.HistoryItem{
		item("1", model.TaskMultipleChoice, model.CategoryNature, 50, "data:image/png;base64,AAAA"),
		item("2", model.TaskMultipleChoice, model.CategoryNature, 50, "https://img.example/x.png"),
	}
	for _, it := range StripAllImages(ledger) {
		assert.Empty(t, it.Challenge.GeneratedImageURL)
	}
	assert.NotEmpty(t, ledger[0].Challenge.GeneratedImageURL)
}
