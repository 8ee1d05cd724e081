package dto

import "time"

// DashboardStats backs the admin overview cards.
type DashboardStats struct {
	TotalUsers     int64 `json:"totalUsers"`
	TotalListings  int64 `json:"totalListings"`
	ActiveListings int64 `json:"activeListings"`
	OpenReports    int64 `json:"openReports"`
}

// AdminUser is the moderation view of an account.
type AdminUser struct {
	ID            int64     `json:"id"`
	Email         string    `json:"email"`
	Name          string    `json:"name"`
	Role          string    `json:"role"`
	Blocked       bool      `json:"blocked"`
	EmailVerified bool      `json:"emailVerified"`
	CreatedAt     time.Time `json:"createdAt"`
	ListingCount  int       `json:"listingCount"`
}

// Report is a moderation ticket raised against a listing or a user.
type Report struct {
	ID             int64     `json:"id"`
	ListingID      int64     `json:"listingId,omitempty"`
	ReportedUserID int64     `json:"reportedUserId,omitempty"`
	ReporterID     int64     `json:"reporterId"`
	Reason         string    `json:"reason"`
	Description    string    `json:"description,omitempty"`
	Status         string    `json:"status"`
	CreatedAt      time.Time `json:"createdAt"`
}
