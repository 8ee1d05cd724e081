package dto

import "testing"

func TestListingQueryValuesDefaults(t *testing.T) {
	values := ListingQuery{Search: "  desk lamp ", Page: 2, Size: 16}.Values()

	if got := values.Get("search"); got != "desk lamp" {
		t.Fatalf("got search=%q, want trimmed text", got)
	}
	if got := values.Get("page"); got != "2" {
		t.Fatalf("got page=%q, want 2", got)
	}
	if got := values.Get("sort"); got != "newest" {
		t.Fatalf("got sort=%q, want newest default", got)
	}
	for _, key := range []string{"category", "condition", "minPrice", "maxPrice"} {
		if values.Has(key) {
			t.Fatalf("empty %s must be omitted, got %q", key, values.Get(key))
		}
	}
}

func TestListingQueryValuesOmitsSentinels(t *testing.T) {
	values := ListingQuery{Category: "ALL", Condition: " ALL "}.Values()
	if values.Has("category") || values.Has("condition") {
		t.Fatalf("ALL sentinels must be omitted, got category=%q condition=%q",
			values.Get("category"), values.Get("condition"))
	}

	values = ListingQuery{Category: "FURNITURE", Condition: "GOOD"}.Values()
	if got := values.Get("category"); got != "FURNITURE" {
		t.Fatalf("got category=%q, want FURNITURE", got)
	}
	if got := values.Get("condition"); got != "GOOD" {
		t.Fatalf("got condition=%q, want GOOD", got)
	}
}

func TestListingQueryValuesPriceBounds(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		want string
	}{
		{"valid integer", "20", "20"},
		{"valid decimal", "19.99", "19.99"},
		{"zero", "0", "0"},
		{"padded", " 15 ", "15"},
		{"negative dropped", "-5", ""},
		{"garbage dropped", "abc", ""},
		{"empty dropped", "", ""},
		{"blank dropped", "   ", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			values := ListingQuery{MinPrice: tc.raw, MaxPrice: tc.raw}.Values()
			if got := values.Get("minPrice"); got != tc.want {
				t.Fatalf("minPrice %q: got %q, want %q", tc.raw, got, tc.want)
			}
			if got := values.Get("maxPrice"); got != tc.want {
				t.Fatalf("maxPrice %q: got %q, want %q", tc.raw, got, tc.want)
			}
		})
	}
}
