package dto

import "time"

// ListingImage is one photo attached to a listing.
type ListingImage struct {
	ID           int64  `json:"id"`
	ImageURL     string `json:"imageUrl"`
	DisplayOrder int    `json:"displayOrder"`
}

// Seller is the public profile embedded in a listing detail.
type Seller struct {
	ID            int64     `json:"id"`
	Name          string    `json:"name"`
	ProfilePicURL string    `json:"profilePicUrl,omitempty"`
	MemberSince   time.Time `json:"memberSince"`
}

// Listing is a transient client-side copy of a server-owned listing.
type Listing struct {
	ID                   int64          `json:"id"`
	Slug                 string         `json:"slug"`
	Title                string         `json:"title"`
	Description          string         `json:"description"`
	Price                float64        `json:"price"`
	Category             string         `json:"category"`
	CategoryDisplayName  string         `json:"categoryDisplayName"`
	Condition            string         `json:"condition"`
	ConditionDisplayName string         `json:"conditionDisplayName"`
	Status               string         `json:"status"`
	ThumbnailURL         string         `json:"thumbnailUrl,omitempty"`
	Images               []ListingImage `json:"images"`
	Seller               Seller         `json:"seller"`
	CreatedAt            time.Time      `json:"createdAt"`
	ExpiresAt            time.Time      `json:"expiresAt"`
	IsSaved              bool           `json:"isSaved"`
}

// ListingRequest is the body for creating or updating a listing.
type ListingRequest struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Category    string  `json:"category"`
	Condition   string  `json:"condition"`
}

// ListingPage is the paginated envelope returned by GET /listings.
type ListingPage struct {
	Content       []Listing `json:"content"`
	Page          int       `json:"page"`
	Size          int       `json:"size"`
	TotalElements int64     `json:"totalElements"`
	TotalPages    int       `json:"totalPages"`
	Last          bool      `json:"last"`
}

// SavedItem wraps a listing the current user bookmarked.
type SavedItem struct {
	ID      int64     `json:"id"`
	Listing Listing   `json:"listing"`
	SavedAt time.Time `json:"savedAt"`
}

// ReportRequest flags a listing or user for moderation.
type ReportRequest struct {
	ListingID      int64  `json:"listingId,omitempty"`
	ReportedUserID int64  `json:"reportedUserId,omitempty"`
	Reason         string `json:"reason"`
	Description    string `json:"description,omitempty"`
}
