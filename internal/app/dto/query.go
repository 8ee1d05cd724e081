package dto

import (
	"net/url"
	"strconv"
	"strings"
)

// ListingQuery describes one GET /listings request. MinPrice and MaxPrice
// stay raw strings because they come straight from filter inputs; Values
// decides whether they are well-formed enough to send.
type ListingQuery struct {
	Search    string
	Page      int
	Size      int
	Sort      string
	Category  string
	Condition string
	MinPrice  string
	MaxPrice  string
}

// Values builds the query parameters. Free text is trimmed, the "ALL"/empty
// sentinels are omitted, and price bounds are included only when they parse
// as non-negative numbers.
func (q ListingQuery) Values() url.Values {
	params := url.Values{}
	params.Set("search", strings.TrimSpace(q.Search))
	params.Set("page", strconv.Itoa(q.Page))
	params.Set("size", strconv.Itoa(q.Size))
	sort := q.Sort
	if sort == "" {
		sort = "newest"
	}
	params.Set("sort", sort)

	if category := strings.TrimSpace(q.Category); category != "" && category != "ALL" {
		params.Set("category", category)
	}
	if condition := strings.TrimSpace(q.Condition); condition != "" && condition != "ALL" {
		params.Set("condition", condition)
	}
	if includePrice(q.MinPrice) {
		params.Set("minPrice", strings.TrimSpace(q.MinPrice))
	}
	if includePrice(q.MaxPrice) {
		params.Set("maxPrice", strings.TrimSpace(q.MaxPrice))
	}
	return params
}

func includePrice(raw string) bool {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return false
	}
	value, err := strconv.ParseFloat(raw, 64)
	return err == nil && value >= 0
}
