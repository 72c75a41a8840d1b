package history

import (
	"strings"

	"aesthetica/internal/model"
)

// ImageKeepRecent is how many newest entries keep embedded images on the first write attempt.
const ImageKeepRecent = 5

func isEmbeddedImage(url string) bool {
	return strings.HasPrefix(url, "data:")
}

// PruneImages drops embedded data-URL images from every item at index >= keepRecent.
// Remote image URLs are kept since they cost almost nothing to store.
func PruneImages(items []model.HistoryItem, keepRecent int) []model.HistoryItem {
	out := make([]model.HistoryItem, len(items))
	for i, item := range items {
		if i >= keepRecent && isEmbeddedImage(item.Challenge.GeneratedImageURL) {
			item.Challenge.GeneratedImageURL = ""
		}
		out[i] = item
	}
	return out
}

// StripAllImages removes every image reference, the last fidelity level before giving up.
func StripAllImages(items []model.HistoryItem) []model.HistoryItem {
	out := make([]model.HistoryItem, len(items))
	for i, item := range items {
		item.Challenge.GeneratedImageURL = ""
		out[i] = item
	}
	return out
}
