package stub

import (
	"errors"
	"testing"

	"unimarket/internal/domain/catalog"
)

func seedStore(t *testing.T) (*Store, int64, int64) {
	t.Helper()
	s := NewStore()
	seller, err := s.CreateUser("seller@unimarket.dev", "Seller", "hash", "USER")
	if err != nil {
		t.Fatalf("CreateUser seller: %v", err)
	}
	buyer, err := s.CreateUser("buyer@unimarket.dev", "Buyer", "hash", "USER")
	if err != nil {
		t.Fatalf("CreateUser buyer: %v", err)
	}
	return s, seller.ID, buyer.ID
}

func TestCreateUserRejectsDuplicateEmail(t *testing.T) {
	s := NewStore()
	if _, err := s.CreateUser("a@x", "A", "h", "USER"); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	if _, err := s.CreateUser("a@x", "B", "h", "USER"); !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("got %v, want ErrEmailTaken", err)
	}
}

func TestSearchFiltersAndPages(t *testing.T) {
	s, sellerID, _ := seedStore(t)
	s.CreateListing(sellerID, "Oak Desk", "solid oak", 80, catalog.CategoryFurniture, catalog.ConditionGood)
	s.CreateListing(sellerID, "Desk Lamp", "warm light", 15, catalog.CategoryElectronics, catalog.ConditionLikeNew)
	s.CreateListing(sellerID, "Road Bike", "fast", 200, catalog.CategoryBikes, catalog.ConditionFair)
	sold := s.CreateListing(sellerID, "Old Desk", "wobbly", 5, catalog.CategoryFurniture, catalog.ConditionPoor)
	if _, err := s.UpdateListing(sold.ID, sellerID, func(l *listing) { l.Status = catalog.StatusSold }); err != nil {
		t.Fatalf("UpdateListing: %v", err)
	}

	// Text search matches title or description, active listings only.
	results, total, last := s.Search(SearchParams{Search: "desk", Size: 10})
	if len(results) != 2 || total != 2 || !last {
		t.Fatalf("got len=%d total=%d last=%v, want 2/2/true (sold excluded)", len(results), total, last)
	}

	// Category narrows further.
	results, _, _ = s.Search(SearchParams{Search: "desk", Category: catalog.CategoryFurniture, Size: 10})
	if len(results) != 1 || results[0].Title != "Oak Desk" {
		t.Fatalf("got %d results, want only the furniture desk", len(results))
	}

	// Price bounds.
	results, _, _ = s.Search(SearchParams{MinPrice: 50, HasMin: true, MaxPrice: 100, HasMax: true, Size: 10})
	if len(results) != 1 || results[0].Title != "Oak Desk" {
		t.Fatalf("price window failed, got %d results", len(results))
	}

	// Paging: 3 active listings, page size 2.
	page0, total, last := s.Search(SearchParams{Size: 2})
	if len(page0) != 2 || total != 3 || last {
		t.Fatalf("page 0: got len=%d total=%d last=%v", len(page0), total, last)
	}
	page1, _, last := s.Search(SearchParams{Size: 2, Page: 1})
	if len(page1) != 1 || !last {
		t.Fatalf("page 1: got len=%d last=%v, want 1/true", len(page1), last)
	}
}

func TestUpdateListingEnforcesOwnership(t *testing.T) {
	s, sellerID, buyerID := seedStore(t)
	l := s.CreateListing(sellerID, "Chair", "", 10, catalog.CategoryFurniture, catalog.ConditionGood)

	if _, err := s.UpdateListing(l.ID, buyerID, func(l *listing) { l.Price = 1 }); !errors.Is(err, ErrNotOwner) {
		t.Fatalf("got %v, want ErrNotOwner", err)
	}
	updated, err := s.UpdateListing(l.ID, sellerID, func(l *listing) { l.Price = 12 })
	if err != nil || updated.Price != 12 {
		t.Fatalf("owner update failed: %v %+v", err, updated)
	}
}

func TestSaveListingIsIdempotent(t *testing.T) {
	s, sellerID, buyerID := seedStore(t)
	l := s.CreateListing(sellerID, "Pan", "", 8, catalog.CategoryKitchen, catalog.ConditionGood)

	if err := s.SaveListing(buyerID, l.ID); err != nil {
		t.Fatalf("SaveListing: %v", err)
	}
	if err := s.SaveListing(buyerID, l.ID); err != nil {
		t.Fatalf("second SaveListing: %v", err)
	}
	if got := len(s.SavedBy(buyerID)); got != 1 {
		t.Fatalf("got %d saved items, want 1", got)
	}
	s.UnsaveListing(buyerID, l.ID)
	if s.IsSaved(buyerID, l.ID) {
		t.Fatal("listing still saved after unsave")
	}
}

func TestConversationRoundTrip(t *testing.T) {
	s, sellerID, buyerID := seedStore(t)
	l := s.CreateListing(sellerID, "Desk", "", 40, catalog.CategoryFurniture, catalog.ConditionGood)

	conv, err := s.GetOrCreateConversation(l.ID, buyerID)
	if err != nil {
		t.Fatalf("GetOrCreateConversation: %v", err)
	}
	again, err := s.GetOrCreateConversation(l.ID, buyerID)
	if err != nil || again.ID != conv.ID {
		t.Fatalf("second call must return the same conversation: %v %d vs %d", err, again.ID, conv.ID)
	}

	if _, err := s.GetOrCreateConversation(l.ID, sellerID); !errors.Is(err, ErrSelfChat) {
		t.Fatalf("got %v, want ErrSelfChat", err)
	}

	if _, err := s.AppendMessage(conv.ID, buyerID, "still available?"); err != nil {
		t.Fatalf("AppendMessage: %v", err)
	}
	stranger, _ := s.CreateUser("stranger@unimarket.dev", "S", "h", "USER")
	if _, err := s.MessagesFor(conv.ID, stranger.ID); !errors.Is(err, ErrNotParticipant) {
		t.Fatalf("got %v, want ErrNotParticipant", err)
	}

	msgs, err := s.MessagesFor(conv.ID, sellerID)
	if err != nil || len(msgs) != 1 || msgs[0].Content != "still available?" {
		t.Fatalf("MessagesFor: %v, %d messages", err, len(msgs))
	}
}

func TestMarkReadIsIdempotent(t *testing.T) {
	s, sellerID, buyerID := seedStore(t)
	l := s.CreateListing(sellerID, "Desk", "", 40, catalog.CategoryFurniture, catalog.ConditionGood)
	conv, _ := s.GetOrCreateConversation(l.ID, buyerID)

	s.AppendMessage(conv.ID, buyerID, "one")
	s.AppendMessage(conv.ID, buyerID, "two")
	if got := s.TotalUnread(sellerID); got != 2 {
		t.Fatalf("got %d unread for the seller, want 2", got)
	}
	if got := s.TotalUnread(buyerID); got != 0 {
		t.Fatalf("got %d unread for the sender, want 0", got)
	}

	for i := 0; i < 3; i++ {
		if err := s.MarkRead(conv.ID, sellerID); err != nil {
			t.Fatalf("MarkRead #%d: %v", i+1, err)
		}
		if got := s.TotalUnread(sellerID); got != 0 {
			t.Fatalf("after MarkRead #%d: got %d unread, want 0 (never negative)", i+1, got)
		}
	}

	msgs, _ := s.MessagesFor(conv.ID, sellerID)
	for _, m := range msgs {
		if !m.Read {
			t.Fatalf("message %d still unread after MarkRead", m.ID)
		}
	}

	// New message after a read starts the counter from zero, not from a
	// negative remainder.
	s.AppendMessage(conv.ID, buyerID, "three")
	if got := s.TotalUnread(sellerID); got != 1 {
		t.Fatalf("got %d unread after a fresh message, want 1", got)
	}
}

func TestUnreadCountsPerParticipant(t *testing.T) {
	s, sellerID, buyerID := seedStore(t)
	l := s.CreateListing(sellerID, "Desk", "", 40, catalog.CategoryFurniture, catalog.ConditionGood)
	conv, _ := s.GetOrCreateConversation(l.ID, buyerID)

	s.AppendMessage(conv.ID, buyerID, "hi")
	s.AppendMessage(conv.ID, sellerID, "hello")

	if got := s.TotalUnread(sellerID); got != 1 {
		t.Fatalf("seller unread=%d, want 1", got)
	}
	if got := s.TotalUnread(buyerID); got != 1 {
		t.Fatalf("buyer unread=%d, want 1", got)
	}
}

func TestStartConversationOnDeletedListing(t *testing.T) {
	s, sellerID, buyerID := seedStore(t)
	l := s.CreateListing(sellerID, "Desk", "", 40, catalog.CategoryFurniture, catalog.ConditionGood)
	if _, err := s.UpdateListing(l.ID, sellerID, func(l *listing) { l.Status = catalog.StatusDeleted }); err != nil {
		t.Fatalf("UpdateListing: %v", err)
	}
	if _, err := s.GetOrCreateConversation(l.ID, buyerID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("got %v, want ErrNotFound for a deleted listing", err)
	}
}

func TestSlugsAreUniquePerListing(t *testing.T) {
	s, sellerID, _ := seedStore(t)
	a := s.CreateListing(sellerID, "Desk", "", 10, catalog.CategoryFurniture, catalog.ConditionGood)
	b := s.CreateListing(sellerID, "Desk", "", 20, catalog.CategoryFurniture, catalog.ConditionGood)
	if a.Slug == b.Slug {
		t.Fatalf("identical titles produced the same slug %q", a.Slug)
	}
	found, err := s.ListingBySlug(b.Slug)
	if err != nil || found.ID != b.ID {
		t.Fatalf("ListingBySlug(%q): %v, id=%d", b.Slug, err, found.ID)
	}
}
