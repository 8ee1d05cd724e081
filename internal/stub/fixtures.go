package stub

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"golang.org/x/crypto/bcrypt"

	"unimarket/internal/domain/catalog"
)

// ListingFixture is one entry of the LISTING_FIXTURES JSON file.
type ListingFixture struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Category    string  `json:"category"`
	Condition   string  `json:"condition"`
	SellerEmail string  `json:"sellerEmail,omitempty"`
}

// SeedUsers creates the deterministic dev accounts. All of them share the
// password "password123"; admin@unimarket.dev carries the admin role.
func SeedUsers(store *Store) error {
	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	if err != nil {
		return fmt.Errorf("stub: seed password hash: %w", err)
	}
	seeds := []struct {
		email string
		name  string
		role  string
	}{
		{"alice@unimarket.dev", "Alice", "USER"},
		{"bob@unimarket.dev", "Bob", "USER"},
		{"admin@unimarket.dev", "Admin", "ADMIN"},
	}
	for _, seed := range seeds {
		if _, err := store.CreateUser(seed.email, seed.name, string(hash), seed.role); err != nil {
			return fmt.Errorf("stub: seed user %s: %w", seed.email, err)
		}
	}
	return nil
}

// LoadListingFixtures reads a JSON fixture file and creates its listings.
// Fixtures without a seller email land on the first seeded user.
func LoadListingFixtures(store *Store, path string, logger *slog.Logger) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("stub: read fixtures: %w", err)
	}
	var fixtures []ListingFixture
	if err := json.Unmarshal(raw, &fixtures); err != nil {
		return fmt.Errorf("stub: decode fixtures: %w", err)
	}
	loaded := 0
	for _, fixture := range fixtures {
		sellerEmail := fixture.SellerEmail
		if sellerEmail == "" {
			sellerEmail = "alice@unimarket.dev"
		}
		seller, err := store.UserByEmail(sellerEmail)
		if err != nil {
			if logger != nil {
				logger.Warn("fixture seller missing", "email", sellerEmail, "title", fixture.Title)
			}
			continue
		}
		category, err := catalog.ParseCategory(fixture.Category)
		if err != nil || category.Any() {
			category = catalog.CategoryOther
		}
		condition, err := catalog.ParseCondition(fixture.Condition)
		if err != nil || condition.Any() {
			condition = catalog.ConditionGood
		}
		store.CreateListing(seller.ID, fixture.Title, fixture.Description, fixture.Price, category, condition)
		loaded++
	}
	if logger != nil {
		logger.Info("listing fixtures loaded", "path", path, "count", loaded)
	}
	return nil
}
