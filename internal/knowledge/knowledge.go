package knowledge

import (
	"fmt"
	"strings"

	"aesthetica/internal/model"
)

type CategoryInfo struct {
	Category model.Category
	Name     string
	// Aliases include the labels older saves used before categories became slugs.
	Aliases []string
	Focus   []string
}

var Categories = []CategoryInfo{
	{
		Category: model.CategoryComposition,
		Name:     "Composition",
		Aliases:  []string{"構圖", "构图"},
		Focus:    []string{"balance and visual weight", "leading lines", "negative space", "rule of thirds"},
	},
	{
		Category: model.CategoryColorTheory,
		Name:     "Color Theory",
		Aliases:  []string{"色彩學", "色彩学", "color"},
		Focus:    []string{"complementary contrast", "temperature and mood", "saturation hierarchy"},
	},
	{
		Category: model.CategoryFashion,
		Name:     "Fashion & Styling",
		Aliases:  []string{"時尚穿搭", "时尚穿搭", "styling"},
		Focus:    []string{"silhouette and proportion", "texture pairing", "palette coordination"},
	},
	{
		Category: model.CategoryNature,
		Name:     "Natural Landscapes",
		Aliases:  []string{"自然景觀", "自然景观", "landscape"},
		Focus:    []string{"light at golden hour", "depth and atmosphere", "organic rhythm"},
	},
	{
		Category: model.CategoryEmotion,
		Name:     "Emotion & Atmosphere",
		Aliases:  []string{"情感氛圍", "情感氛围", "mood"},
		Focus:    []string{"emotional triggers", "tension and calm", "symbolism"},
	},
	{
		Category: model.CategoryDesign,
		Name:     "Graphic Design",
		Aliases:  []string{"平面設計", "平面设计", "graphic_design"},
		Focus:    []string{"typographic hierarchy", "grid and alignment", "contrast of scale"},
	},
	{
		Category: model.CategoryCinematography,
		Name:     "Cinematography",
		Aliases:  []string{"電影運鏡", "电影运镜", "film"},
		Focus:    []string{"framing and shot size", "camera movement", "lighting setups"},
	},
}

func Lookup(c model.Category) (CategoryInfo, bool) {
	for _, info := range Categories {
		if info.Category == c {
			return info, true
		}
	}
	return CategoryInfo{}, false
}

// Resolve matches a slug, display name or alias, ignoring case and surrounding space.
func Resolve(raw string) (model.Category, bool) {
	needle := normalize(raw)
	if needle == "" {
		return "", false
	}
	for _, info := range Categories {
		if normalize(string(info.Category)) == needle || normalize(info.Name) == needle {
			return info.Category, true
		}
		for _, alias := range info.Aliases {
			if normalize(alias) == needle {
				return info.Category, true
			}
		}
	}
	return "", false
}

// ResolvePool validates a user-supplied category restriction. Duplicates collapse and
// an empty input yields nil, which callers treat as every category.
func ResolvePool(raw []string) ([]model.Category, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	seen := make(map[model.Category]struct{}, len(raw))
	pool := make([]model.Category, 0, len(raw))
	for _, value := range raw {
		c, ok := Resolve(value)
		if !ok {
			return nil, fmt.Errorf("unknown category %q", value)
		}
		if _, dup := seen[c]; dup {
			continue
		}
		seen[c] = struct{}{}
		pool = append(pool, c)
	}
	return pool, nil
}

func normalize(v string) string {
	v = strings.ToLower(strings.TrimSpace(v))
	v = strings.ReplaceAll(v, "-", "_")
	return strings.ReplaceAll(v, " ", "_")
}
