// Package stub is an in-memory double of the marketplace backend. It
// implements the REST surface the client consumes — enough for package
// tests and for local development via cmd/marketstub — and nothing the
// production service owns (persistence, moderation workflows, OAuth).
package stub

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"unimarket/internal/domain/catalog"
)

var (
	ErrNotFound       = errors.New("stub: not found")
	ErrEmailTaken     = errors.New("stub: email already registered")
	ErrNotOwner       = errors.New("stub: not the owner")
	ErrNotParticipant = errors.New("stub: not a participant")
	ErrSelfChat       = errors.New("stub: cannot message your own listing")
	ErrTokenInvalid   = errors.New("stub: invalid or expired token")
)

type user struct {
	ID            int64
	Email         string
	Name          string
	PasswordHash  string
	ProfilePicURL string
	Role          string
	EmailVerified bool
	Blocked       bool
	CreatedAt     time.Time
}

type listing struct {
	ID          int64
	Slug        string
	Title       string
	Description string
	Price       float64
	Category    catalog.Category
	Condition   catalog.Condition
	Status      catalog.Status
	SellerID    int64
	CreatedAt   time.Time
	ExpiresAt   time.Time
}

type conversation struct {
	ID            int64
	ListingID     int64
	BuyerID       int64
	SellerID      int64
	CreatedAt     time.Time
	LastMessage   string
	LastMessageAt time.Time
	// Unread counts per participant; MarkRead floors at zero so repeated
	// calls stay idempotent.
	Unread map[int64]int
}

type message struct {
	ID             int64
	ConversationID int64
	SenderID       int64
	Content        string
	Read           bool
	CreatedAt      time.Time
}

type savedItem struct {
	ID        int64
	UserID    int64
	ListingID int64
	SavedAt   time.Time
}

type report struct {
	ID             int64
	ListingID      int64
	ReportedUserID int64
	ReporterID     int64
	Reason         string
	Description    string
	Status         string
	CreatedAt      time.Time
}

// Store holds every stub entity behind one lock. Not suitable for anything
// beyond tests and a dev fixture server.
type Store struct {
	mu            sync.RWMutex
	nextID        int64
	users         map[int64]*user
	usersByEmail  map[string]int64
	listings      map[int64]*listing
	conversations map[int64]*conversation
	messages      map[int64][]*message
	saved         []*savedItem
	reports       []*report
	resetTokens   map[string]int64
	now           func() time.Time
}

func NewStore() *Store {
	return &Store{
		users:         make(map[int64]*user),
		usersByEmail:  make(map[string]int64),
		listings:      make(map[int64]*listing),
		conversations: make(map[int64]*conversation),
		messages:      make(map[int64][]*message),
		resetTokens:   make(map[string]int64),
		now:           time.Now,
	}
}

func (s *Store) id() int64 {
	s.nextID++
	return s.nextID
}

// Users.

func (s *Store) CreateUser(email, name, passwordHash, role string) (*user, error) {
	key := strings.ToLower(strings.TrimSpace(email))
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, taken := s.usersByEmail[key]; taken {
		return nil, ErrEmailTaken
	}
	u := &user{
		ID:           s.id(),
		Email:        key,
		Name:         strings.TrimSpace(name),
		PasswordHash: passwordHash,
		Role:         role,
		CreatedAt:    s.now().UTC(),
	}
	s.users[u.ID] = u
	s.usersByEmail[key] = u.ID
	return cloneUser(u), nil
}

func (s *Store) UserByEmail(email string) (*user, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.usersByEmail[strings.ToLower(strings.TrimSpace(email))]
	if !ok {
		return nil, ErrNotFound
	}
	return cloneUser(s.users[id]), nil
}

func (s *Store) UserByID(id int64) (*user, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	return cloneUser(u), nil
}

func (s *Store) UpdateUser(id int64, mutate func(*user)) (*user, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	mutate(u)
	return cloneUser(u), nil
}

func (s *Store) Users() []*user {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*user, 0, len(s.users))
	for _, u := range s.users {
		out = append(out, cloneUser(u))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// CreatePasswordReset issues a one-shot reset token for the account behind
// email. The real backend mails it; the stub hands it to the caller.
func (s *Store) CreatePasswordReset(email string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	userID, ok := s.usersByEmail[strings.ToLower(strings.TrimSpace(email))]
	if !ok {
		return "", ErrNotFound
	}
	token := uuid.NewString()
	s.resetTokens[token] = userID
	return token, nil
}

// ConsumePasswordReset redeems a reset token exactly once.
func (s *Store) ConsumePasswordReset(token string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	userID, ok := s.resetTokens[token]
	if !ok {
		return 0, ErrTokenInvalid
	}
	delete(s.resetTokens, token)
	return userID, nil
}

// Listings.

func (s *Store) CreateListing(sellerID int64, title, description string, price float64, category catalog.Category, condition catalog.Condition) *listing {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now().UTC()
	l := &listing{
		ID:          s.id(),
		Title:       strings.TrimSpace(title),
		Description: strings.TrimSpace(description),
		Price:       price,
		Category:    category,
		Condition:   condition,
		Status:      catalog.StatusActive,
		SellerID:    sellerID,
		CreatedAt:   now,
		ExpiresAt:   now.AddDate(0, 1, 0),
	}
	l.Slug = slugify(l.Title, l.ID)
	s.listings[l.ID] = l
	return cloneListing(l)
}

func (s *Store) ListingByID(id int64) (*listing, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	l, ok := s.listings[id]
	if !ok || l.Status == catalog.StatusDeleted {
		return nil, ErrNotFound
	}
	return cloneListing(l), nil
}

func (s *Store) ListingBySlug(slug string) (*listing, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, l := range s.listings {
		if l.Slug == slug && l.Status != catalog.StatusDeleted {
			return cloneListing(l), nil
		}
	}
	return nil, ErrNotFound
}

func (s *Store) UpdateListing(id, sellerID int64, mutate func(*listing)) (*listing, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.listings[id]
	if !ok || l.Status == catalog.StatusDeleted {
		return nil, ErrNotFound
	}
	if l.SellerID != sellerID {
		return nil, ErrNotOwner
	}
	mutate(l)
	return cloneListing(l), nil
}

func (s *Store) ListingsBySeller(sellerID int64) []*listing {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*listing
	for _, l := range s.listings {
		if l.SellerID == sellerID && l.Status != catalog.StatusDeleted {
			out = append(out, cloneListing(l))
		}
	}
	sortNewestFirst(out)
	return out
}

// SearchParams mirror the documented /listings query surface.
type SearchParams struct {
	Search    string
	Category  catalog.Category
	Condition catalog.Condition
	MinPrice  float64
	MaxPrice  float64
	HasMin    bool
	HasMax    bool
	Page      int
	Size      int
}

// Search filters active listings, sorts newest first, and slices out the
// requested page. The returned flag reports whether this is the last page.
func (s *Store) Search(params SearchParams) ([]*listing, int64, bool) {
	needle := strings.ToLower(strings.TrimSpace(params.Search))
	s.mu.RLock()
	var matched []*listing
	for _, l := range s.listings {
		if l.Status != catalog.StatusActive {
			continue
		}
		if needle != "" &&
			!strings.Contains(strings.ToLower(l.Title), needle) &&
			!strings.Contains(strings.ToLower(l.Description), needle) {
			continue
		}
		if !params.Category.Any() && l.Category != params.Category {
			continue
		}
		if !params.Condition.Any() && l.Condition != params.Condition {
			continue
		}
		if params.HasMin && l.Price < params.MinPrice {
			continue
		}
		if params.HasMax && l.Price > params.MaxPrice {
			continue
		}
		matched = append(matched, cloneListing(l))
	}
	s.mu.RUnlock()

	sortNewestFirst(matched)
	total := int64(len(matched))
	size := params.Size
	if size <= 0 {
		size = 16
	}
	page := params.Page
	if page < 0 {
		page = 0
	}
	start := page * size
	if start >= len(matched) {
		return []*listing{}, total, true
	}
	end := start + size
	if end > len(matched) {
		end = len(matched)
	}
	return matched[start:end], total, end == len(matched)
}

// Saved listings.

func (s *Store) SaveListing(userID, listingID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.listings[listingID]; !ok {
		return ErrNotFound
	}
	for _, item := range s.saved {
		if item.UserID == userID && item.ListingID == listingID {
			return nil
		}
	}
	s.saved = append(s.saved, &savedItem{
		ID:        s.id(),
		UserID:    userID,
		ListingID: listingID,
		SavedAt:   s.now().UTC(),
	})
	return nil
}

func (s *Store) UnsaveListing(userID, listingID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.saved[:0]
	for _, item := range s.saved {
		if item.UserID != userID || item.ListingID != listingID {
			kept = append(kept, item)
		}
	}
	s.saved = kept
}

func (s *Store) SavedBy(userID int64) []*savedItem {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*savedItem
	for _, item := range s.saved {
		if item.UserID == userID {
			clone := *item
			out = append(out, &clone)
		}
	}
	return out
}

func (s *Store) IsSaved(userID, listingID int64) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, item := range s.saved {
		if item.UserID == userID && item.ListingID == listingID {
			return true
		}
	}
	return false
}

// Conversations.

func (s *Store) GetOrCreateConversation(listingID, buyerID int64) (*conversation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.listings[listingID]
	if !ok || l.Status == catalog.StatusDeleted {
		return nil, ErrNotFound
	}
	if l.SellerID == buyerID {
		return nil, ErrSelfChat
	}
	for _, c := range s.conversations {
		if c.ListingID == listingID && c.BuyerID == buyerID {
			return cloneConversation(c), nil
		}
	}
	c := &conversation{
		ID:        s.id(),
		ListingID: listingID,
		BuyerID:   buyerID,
		SellerID:  l.SellerID,
		CreatedAt: s.now().UTC(),
		Unread:    map[int64]int{},
	}
	s.conversations[c.ID] = c
	return cloneConversation(c), nil
}

func (s *Store) ConversationByID(id, userID int64) (*conversation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.conversations[id]
	if !ok {
		return nil, ErrNotFound
	}
	if c.BuyerID != userID && c.SellerID != userID {
		return nil, ErrNotParticipant
	}
	return cloneConversation(c), nil
}

func (s *Store) ConversationsFor(userID int64) []*conversation {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*conversation
	for _, c := range s.conversations {
		if c.BuyerID == userID || c.SellerID == userID {
			out = append(out, cloneConversation(c))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].LastMessageAt.Equal(out[j].LastMessageAt) {
			return out[i].LastMessageAt.After(out[j].LastMessageAt)
		}
		return out[i].ID > out[j].ID
	})
	return out
}

func (s *Store) MessagesFor(conversationID, userID int64) ([]*message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.conversations[conversationID]
	if !ok {
		return nil, ErrNotFound
	}
	if c.BuyerID != userID && c.SellerID != userID {
		return nil, ErrNotParticipant
	}
	msgs := s.messages[conversationID]
	out := make([]*message, 0, len(msgs))
	for _, m := range msgs {
		clone := *m
		out = append(out, &clone)
	}
	return out, nil
}

func (s *Store) AppendMessage(conversationID, senderID int64, content string) (*message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.conversations[conversationID]
	if !ok {
		return nil, ErrNotFound
	}
	if c.BuyerID != senderID && c.SellerID != senderID {
		return nil, ErrNotParticipant
	}
	m := &message{
		ID:             s.id(),
		ConversationID: conversationID,
		SenderID:       senderID,
		Content:        content,
		CreatedAt:      s.now().UTC(),
	}
	s.messages[conversationID] = append(s.messages[conversationID], m)
	c.LastMessage = content
	c.LastMessageAt = m.CreatedAt
	c.Unread[c.other(senderID)]++
	clone := *m
	return &clone, nil
}

// MarkRead zeroes the caller's unread counter and flags the peer's messages
// read. Calling it again is a no-op; the counter never goes negative.
func (s *Store) MarkRead(conversationID, userID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.conversations[conversationID]
	if !ok {
		return ErrNotFound
	}
	if c.BuyerID != userID && c.SellerID != userID {
		return ErrNotParticipant
	}
	c.Unread[userID] = 0
	for _, m := range s.messages[conversationID] {
		if m.SenderID != userID {
			m.Read = true
		}
	}
	return nil
}

func (s *Store) TotalUnread(userID int64) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	total := 0
	for _, c := range s.conversations {
		if c.BuyerID == userID || c.SellerID == userID {
			total += c.Unread[userID]
		}
	}
	return total
}

// Reports.

func (s *Store) CreateReport(reporterID, listingID, reportedUserID int64, reason, description string) *report {
	s.mu.Lock()
	defer s.mu.Unlock()
	r := &report{
		ID:             s.id(),
		ListingID:      listingID,
		ReportedUserID: reportedUserID,
		ReporterID:     reporterID,
		Reason:         strings.TrimSpace(reason),
		Description:    strings.TrimSpace(description),
		Status:         "OPEN",
		CreatedAt:      s.now().UTC(),
	}
	s.reports = append(s.reports, r)
	clone := *r
	return &clone
}

func (s *Store) Reports() []*report {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*report, 0, len(s.reports))
	for _, r := range s.reports {
		clone := *r
		out = append(out, &clone)
	}
	return out
}

// Stats backs the admin dashboard.
func (s *Store) Stats() (users, listings, active, openReports int64) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	users = int64(len(s.users))
	for _, l := range s.listings {
		if l.Status == catalog.StatusDeleted {
			continue
		}
		listings++
		if l.Status == catalog.StatusActive {
			active++
		}
	}
	for _, r := range s.reports {
		if r.Status == "OPEN" {
			openReports++
		}
	}
	return users, listings, active, openReports
}

func (c *conversation) other(userID int64) int64 {
	if c.BuyerID == userID {
		return c.SellerID
	}
	return c.BuyerID
}

func cloneUser(u *user) *user {
	clone := *u
	return &clone
}

func cloneListing(l *listing) *listing {
	clone := *l
	return &clone
}

func cloneConversation(c *conversation) *conversation {
	clone := *c
	clone.Unread = make(map[int64]int, len(c.Unread))
	for k, v := range c.Unread {
		clone.Unread[k] = v
	}
	return &clone
}

func sortNewestFirst(listings []*listing) {
	sort.Slice(listings, func(i, j int) bool {
		if !listings[i].CreatedAt.Equal(listings[j].CreatedAt) {
			return listings[i].CreatedAt.After(listings[j].CreatedAt)
		}
		return listings[i].ID > listings[j].ID
	})
}

func slugify(title string, id int64) string {
	var b strings.Builder
	for _, r := range strings.ToLower(title) {
		switch {
		case r >= 'a' && r <= 'z' || r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ' || r == '-' || r == '_':
			b.WriteByte('-')
		}
	}
	slug := strings.Trim(b.String(), "-")
	if slug == "" {
		slug = "listing"
	}
	return fmt.Sprintf("%s-%s", slug, strconv.FormatInt(id, 10))
}
