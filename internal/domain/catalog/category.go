package catalog

import (
	"errors"
	"fmt"
	"strings"
)

// Category is the closed set of listing categories understood by the
// marketplace. CategoryAny is the client-side "no filter" sentinel and is
// never serialized into a request.
type Category string

const (
	CategoryAny         Category = ""
	CategoryFurniture   Category = "FURNITURE"
	CategoryElectronics Category = "ELECTRONICS"
	CategoryTextbooks   Category = "TEXTBOOKS"
	CategoryClothing    Category = "CLOTHING"
	CategoryBikes       Category = "BIKES"
	CategoryKitchen     Category = "KITCHEN"
	CategoryFreeStuff   Category = "FREE_STUFF"
	CategoryOther       Category = "OTHER"
)

var ErrUnknownCategory = errors.New("catalog: unknown category")

type categoryMeta struct {
	label string
	icon  string
}

var categoryInfo = map[Category]categoryMeta{
	CategoryFurniture:   {label: "Furniture", icon: "armchair"},
	CategoryElectronics: {label: "Electronics", icon: "monitor-smartphone"},
	CategoryTextbooks:   {label: "Textbooks", icon: "book-open"},
	CategoryClothing:    {label: "Clothing", icon: "shirt"},
	CategoryBikes:       {label: "Bikes", icon: "bike"},
	CategoryKitchen:     {label: "Kitchen", icon: "cooking-pot"},
	CategoryFreeStuff:   {label: "Free Stuff", icon: "gift"},
	CategoryOther:       {label: "Other", icon: "package"},
}

// Categories returns every concrete category in display order.
func Categories() []Category {
	return []Category{
		CategoryFurniture,
		CategoryElectronics,
		CategoryTextbooks,
		CategoryClothing,
		CategoryBikes,
		CategoryKitchen,
		CategoryFreeStuff,
		CategoryOther,
	}
}

// ParseCategory maps a wire value to a concrete category. "ALL" and the
// empty string map to CategoryAny.
func ParseCategory(raw string) (Category, error) {
	normalized := strings.ToUpper(strings.TrimSpace(raw))
	if normalized == "" || normalized == "ALL" {
		return CategoryAny, nil
	}
	candidate := Category(normalized)
	if _, ok := categoryInfo[candidate]; !ok {
		return CategoryAny, fmt.Errorf("%w: %q", ErrUnknownCategory, raw)
	}
	return candidate, nil
}

func (c Category) Valid() bool {
	_, ok := categoryInfo[c]
	return ok
}

// Any reports whether the category is the "no filter" sentinel.
func (c Category) Any() bool {
	return c == CategoryAny
}

// Label returns the human-readable name shown in the sidebar.
func (c Category) Label() string {
	if meta, ok := categoryInfo[c]; ok {
		return meta.label
	}
	return "All Items"
}

// Icon returns the glyph name rendered next to the category.
func (c Category) Icon() string {
	if meta, ok := categoryInfo[c]; ok {
		return meta.icon
	}
	return "layout-grid"
}

func (c Category) String() string {
	return string(c)
}
