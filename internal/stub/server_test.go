package stub

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"unimarket/internal/app/dto"
	"unimarket/internal/infra/api"
)

// testEnv wires the gin router behind httptest and talks to it through the
// real typed client, so these tests cover the wire format end to end.
type testEnv struct {
	t      *testing.T
	server *Server
	base   string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	store := NewStore()
	server := NewServer(Config{Env: "test", JWTSecret: "test-secret", TokenTTL: time.Hour}, store, nil)
	ts := httptest.NewServer(server.Router("test"))
	t.Cleanup(ts.Close)
	return &testEnv{t: t, server: server, base: ts.URL + "/api"}
}

func (e *testEnv) client(token *string) *api.Client {
	e.t.Helper()
	source := func() string {
		if token == nil {
			return ""
		}
		return *token
	}
	client, err := api.NewClient(api.Config{BaseURL: e.base}, source, nil)
	if err != nil {
		e.t.Fatalf("NewClient: %v", err)
	}
	return client
}

// signup registers a fresh account and returns a client authenticated as it.
func (e *testEnv) signup(email, name string) (*api.Client, dto.User) {
	e.t.Helper()
	var token string
	client := e.client(&token)
	auth, err := client.Signup(context.Background(), dto.SignupRequest{
		Email: email, Name: name, Password: "password123",
	})
	if err != nil {
		e.t.Fatalf("Signup %s: %v", email, err)
	}
	token = auth.Token
	return client, auth.User
}

func TestSignupLoginMe(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, created := env.signup("alice@unimarket.dev", "Alice")
	if created.ID == 0 || created.Email != "alice@unimarket.dev" {
		t.Fatalf("signup returned %+v", created)
	}

	var token string
	client := env.client(&token)
	auth, err := client.Login(ctx, "alice@unimarket.dev", "password123")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	token = auth.Token

	me, err := client.Me(ctx)
	if err != nil {
		t.Fatalf("Me: %v", err)
	}
	if me.ID != created.ID || me.Name != "Alice" {
		t.Fatalf("got %+v, want the signed-up account", me)
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	env := newTestEnv(t)
	env.signup("alice@unimarket.dev", "Alice")

	client := env.client(nil)
	_, err := client.Login(context.Background(), "alice@unimarket.dev", "wrong-password")
	if !api.IsUnauthorized(err) {
		t.Fatalf("got %v, want unauthorized", err)
	}
}

func TestPasswordResetFlow(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.signup("alice@unimarket.dev", "Alice")
	client := env.client(nil)

	// 204 for known and unknown emails alike; no account probing.
	if err := client.ForgotPassword(ctx, "alice@unimarket.dev"); err != nil {
		t.Fatalf("ForgotPassword: %v", err)
	}
	if err := client.ForgotPassword(ctx, "ghost@unimarket.dev"); err != nil {
		t.Fatalf("ForgotPassword unknown email: %v", err)
	}

	token, err := env.server.Store.CreatePasswordReset("alice@unimarket.dev")
	if err != nil {
		t.Fatalf("CreatePasswordReset: %v", err)
	}
	if err := client.ResetPassword(ctx, token, "short"); err == nil {
		t.Fatal("short replacement password must be rejected")
	}
	if err := client.ResetPassword(ctx, token, "brand-new-password"); err != nil {
		t.Fatalf("ResetPassword: %v", err)
	}
	// One-shot: the redeemed token is dead.
	if err := client.ResetPassword(ctx, token, "another-password"); err == nil {
		t.Fatal("reused reset token must be rejected")
	}

	if _, err := client.Login(ctx, "alice@unimarket.dev", "password123"); !api.IsUnauthorized(err) {
		t.Fatalf("got %v, want the old password rejected", err)
	}
	if _, err := client.Login(ctx, "alice@unimarket.dev", "brand-new-password"); err != nil {
		t.Fatalf("Login with the new password: %v", err)
	}
}

func TestMeRequiresAuth(t *testing.T) {
	env := newTestEnv(t)
	client := env.client(nil)
	if _, err := client.Me(context.Background()); !api.IsUnauthorized(err) {
		t.Fatalf("got %v, want unauthorized", err)
	}
}

func TestListingLifecycleOverHTTP(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	seller, _ := env.signup("seller@unimarket.dev", "Seller")
	buyer, _ := env.signup("buyer@unimarket.dev", "Buyer")

	created, err := seller.CreateListing(ctx, dto.ListingRequest{
		Title: "Oak Desk", Description: "solid oak", Price: 80,
		Category: "FURNITURE", Condition: "GOOD",
	})
	if err != nil {
		t.Fatalf("CreateListing: %v", err)
	}
	if created.Slug == "" || created.Status != "ACTIVE" {
		t.Fatalf("created listing incomplete: %+v", created)
	}
	if created.CategoryDisplayName != "Furniture" || created.ConditionDisplayName != "Good" {
		t.Fatalf("display names missing: %+v", created)
	}

	// Anonymous search sees it.
	page, err := env.client(nil).SearchListings(ctx, dto.ListingQuery{Search: "desk"})
	if err != nil || len(page.Content) != 1 {
		t.Fatalf("SearchListings: %v, %d results", err, len(page.Content))
	}

	// A buyer saves it and sees IsSaved on the detail read.
	if err := buyer.SaveListing(ctx, created.ID); err != nil {
		t.Fatalf("SaveListing: %v", err)
	}
	detail, err := buyer.ListingBySlug(ctx, created.Slug)
	if err != nil || !detail.IsSaved {
		t.Fatalf("ListingBySlug: %v, IsSaved=%v", err, detail.IsSaved)
	}
	saved, err := buyer.SavedListings(ctx)
	if err != nil || len(saved) != 1 || saved[0].Listing.ID != created.ID {
		t.Fatalf("SavedListings: %v, %d items", err, len(saved))
	}

	// Only the owner can mutate.
	if err := buyer.MarkListingSold(ctx, created.ID); err == nil {
		t.Fatal("non-owner sold must fail")
	}
	if err := seller.MarkListingSold(ctx, created.ID); err != nil {
		t.Fatalf("MarkListingSold: %v", err)
	}

	// Sold listings fall out of search but stay on the seller's profile.
	page, err = env.client(nil).SearchListings(ctx, dto.ListingQuery{Search: "desk"})
	if err != nil || len(page.Content) != 0 {
		t.Fatalf("sold listing still in search: %v, %d results", err, len(page.Content))
	}
	mine, err := seller.UserListings(ctx, detail.Seller.ID)
	if err != nil || len(mine) != 1 || mine[0].Status != "SOLD" {
		t.Fatalf("UserListings: %v, %+v", err, mine)
	}
}

func TestSearchRejectsBadFilters(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	client := env.client(nil)

	if _, err := client.SearchListings(ctx, dto.ListingQuery{Category: "VEHICLES"}); err == nil {
		t.Fatal("unknown category must be a 400")
	}
	if _, err := client.SearchListings(ctx, dto.ListingQuery{Condition: "MINT"}); err == nil {
		t.Fatal("unknown condition must be a 400")
	}
}

func TestConversationFlowOverHTTP(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	seller, sellerUser := env.signup("seller@unimarket.dev", "Seller")
	buyer, _ := env.signup("buyer@unimarket.dev", "Buyer")

	created, err := seller.CreateListing(ctx, dto.ListingRequest{
		Title: "Desk", Price: 40, Category: "FURNITURE", Condition: "GOOD",
	})
	if err != nil {
		t.Fatalf("CreateListing: %v", err)
	}

	conv, err := buyer.StartConversation(ctx, created.ID)
	if err != nil {
		t.Fatalf("StartConversation: %v", err)
	}
	if !conv.IsBuyer || conv.OtherParticipant.ID != sellerUser.ID {
		t.Fatalf("conversation mapped wrong: %+v", conv)
	}

	// Chatting about your own listing is rejected.
	if _, err := seller.StartConversation(ctx, created.ID); err == nil {
		t.Fatal("self-chat must fail")
	}

	sent, err := buyer.SendMessage(ctx, conv.ID, "still available?")
	if err != nil {
		t.Fatalf("SendMessage: %v", err)
	}
	if !sent.IsOwnMessage {
		t.Fatal("sender must see IsOwnMessage")
	}
	if _, err := buyer.SendMessage(ctx, conv.ID, "   "); err == nil {
		t.Fatal("blank message must be a 400")
	}

	// Seller's perspective: one unread, IsOwnMessage false.
	unread, err := seller.TotalUnread(ctx)
	if err != nil || unread != 1 {
		t.Fatalf("TotalUnread: %v, %d", err, unread)
	}
	msgs, err := seller.Messages(ctx, conv.ID)
	if err != nil || len(msgs) != 1 || msgs[0].IsOwnMessage {
		t.Fatalf("Messages: %v, %+v", err, msgs)
	}

	// Mark read twice; the counter stays at zero.
	if err := seller.MarkRead(ctx, conv.ID); err != nil {
		t.Fatalf("MarkRead: %v", err)
	}
	if err := seller.MarkRead(ctx, conv.ID); err != nil {
		t.Fatalf("second MarkRead: %v", err)
	}
	unread, err = seller.TotalUnread(ctx)
	if err != nil || unread != 0 {
		t.Fatalf("after MarkRead: %v, %d unread", err, unread)
	}

	// A third account cannot read the thread.
	stranger, _ := env.signup("stranger@unimarket.dev", "Stranger")
	if _, err := stranger.Messages(ctx, conv.ID); err == nil {
		t.Fatal("non-participant read must fail")
	}

	sellerConvs, err := seller.Conversations(ctx)
	if err != nil || len(sellerConvs) != 1 {
		t.Fatalf("Conversations: %v, %d", err, len(sellerConvs))
	}
	if got := sellerConvs[0]; got.LastMessage != "still available?" || !got.IsSeller {
		t.Fatalf("conversation summary wrong: %+v", got)
	}
}

func TestAdminSurface(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	// Promote one account to admin directly in the store.
	admin, adminUser := env.signup("admin@unimarket.dev", "Admin")
	if _, err := env.server.Store.UpdateUser(adminUser.ID, func(u *user) { u.Role = "ADMIN" }); err != nil {
		t.Fatalf("UpdateUser: %v", err)
	}
	member, memberUser := env.signup("member@unimarket.dev", "Member")

	created, err := member.CreateListing(ctx, dto.ListingRequest{
		Title: "Suspicious Thing", Price: 1, Category: "OTHER", Condition: "POOR",
	})
	if err != nil {
		t.Fatalf("CreateListing: %v", err)
	}
	if err := admin.SubmitReport(ctx, dto.ReportRequest{ListingID: created.ID, Reason: "scam"}); err != nil {
		t.Fatalf("SubmitReport: %v", err)
	}

	if _, err := member.AdminDashboard(ctx); !api.IsUnauthorized(err) {
		t.Fatalf("got %v, want forbidden for a regular member", err)
	}
	stats, err := admin.AdminDashboard(ctx)
	if err != nil || stats.TotalUsers != 2 || stats.OpenReports != 1 {
		t.Fatalf("AdminDashboard: %v, %+v", err, stats)
	}
	reports, err := admin.AdminReports(ctx)
	if err != nil || len(reports) != 1 || reports[0].Reason != "scam" {
		t.Fatalf("AdminReports: %v, %+v", err, reports)
	}

	// Blocking locks the member out on the next request.
	if err := admin.BlockUser(ctx, memberUser.ID); err != nil {
		t.Fatalf("BlockUser: %v", err)
	}
	if _, err := member.Me(ctx); !api.IsUnauthorized(err) {
		t.Fatalf("got %v, want unauthorized for a blocked account", err)
	}
	if err := admin.UnblockUser(ctx, memberUser.ID); err != nil {
		t.Fatalf("UnblockUser: %v", err)
	}
	if _, err := member.Me(ctx); err != nil {
		t.Fatalf("Me after unblock: %v", err)
	}
}
