// Package api is the typed REST client for the marketplace backend. Every
// call attaches the bearer token when one is available and maps non-2xx
// responses to *Error so callers can surface the server's own message.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"unimarket/internal/app/dto"
)

// TokenSource yields the current bearer token, or "" when logged out. It is
// a function so the client always sees the live session without holding a
// reference to auth state.
type TokenSource func() string

// Config defines connection settings for the backend.
type Config struct {
	BaseURL string
	Timeout time.Duration
}

// Client wraps the marketplace REST surface.
type Client struct {
	baseURL string
	http    *http.Client
	token   TokenSource
	logger  *slog.Logger
}

func NewClient(cfg Config, token TokenSource, logger *slog.Logger) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		return nil, errors.New("api: base url is required")
	}
	if _, err := url.Parse(base); err != nil {
		return nil, fmt.Errorf("api: invalid base url: %w", err)
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		baseURL: base,
		http:    &http.Client{Timeout: timeout},
		token:   token,
		logger:  logger,
	}, nil
}

// Auth.

func (c *Client) Login(ctx context.Context, email, password string) (dto.AuthResponse, error) {
	var out dto.AuthResponse
	err := c.do(ctx, http.MethodPost, "/auth/login", nil, dto.LoginRequest{Email: email, Password: password}, &out)
	return out, err
}

func (c *Client) Signup(ctx context.Context, req dto.SignupRequest) (dto.AuthResponse, error) {
	var out dto.AuthResponse
	err := c.do(ctx, http.MethodPost, "/auth/signup", nil, req, &out)
	return out, err
}

func (c *Client) ChangePassword(ctx context.Context, current, updated string) error {
	body := map[string]string{"currentPassword": current, "newPassword": updated}
	return c.do(ctx, http.MethodPost, "/auth/change-password", nil, body, nil)
}

func (c *Client) ForgotPassword(ctx context.Context, email string) error {
	return c.do(ctx, http.MethodPost, "/auth/forgot-password", nil, map[string]string{"email": email}, nil)
}

func (c *Client) ResetPassword(ctx context.Context, token, password string) error {
	body := map[string]string{"token": token, "newPassword": password}
	return c.do(ctx, http.MethodPost, "/auth/reset-password", nil, body, nil)
}

// Profile.

func (c *Client) Me(ctx context.Context) (dto.User, error) {
	var out dto.User
	err := c.do(ctx, http.MethodGet, "/users/me", nil, nil, &out)
	return out, err
}

func (c *Client) UpdateProfile(ctx context.Context, req dto.UpdateProfileRequest) (dto.User, error) {
	var out dto.User
	err := c.do(ctx, http.MethodPut, "/users/me", nil, req, &out)
	return out, err
}

func (c *Client) UserListings(ctx context.Context, userID int64) ([]dto.Listing, error) {
	var out []dto.Listing
	err := c.do(ctx, http.MethodGet, fmt.Sprintf("/users/%d/listings", userID), nil, nil, &out)
	return out, err
}

// Listings.

func (c *Client) SearchListings(ctx context.Context, query dto.ListingQuery) (dto.ListingPage, error) {
	var out dto.ListingPage
	err := c.do(ctx, http.MethodGet, "/listings", query.Values(), nil, &out)
	return out, err
}

func (c *Client) ListingBySlug(ctx context.Context, slug string) (dto.Listing, error) {
	var out dto.Listing
	err := c.do(ctx, http.MethodGet, "/listings/"+url.PathEscape(slug), nil, nil, &out)
	return out, err
}

func (c *Client) CreateListing(ctx context.Context, req dto.ListingRequest) (dto.Listing, error) {
	var out dto.Listing
	err := c.do(ctx, http.MethodPost, "/listings", nil, req, &out)
	return out, err
}

func (c *Client) UpdateListing(ctx context.Context, id int64, req dto.ListingRequest) (dto.Listing, error) {
	var out dto.Listing
	err := c.do(ctx, http.MethodPut, fmt.Sprintf("/listings/%d", id), nil, req, &out)
	return out, err
}

func (c *Client) DeleteListing(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/listings/%d", id), nil, nil, nil)
}

func (c *Client) MarkListingSold(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodPatch, fmt.Sprintf("/listings/%d/sold", id), nil, nil, nil)
}

func (c *Client) BumpListing(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodPatch, fmt.Sprintf("/listings/%d/bump", id), nil, nil, nil)
}

// Saved listings.

func (c *Client) SavedListings(ctx context.Context) ([]dto.SavedItem, error) {
	var out []dto.SavedItem
	err := c.do(ctx, http.MethodGet, "/saved", nil, nil, &out)
	return out, err
}

func (c *Client) SaveListing(ctx context.Context, listingID int64) error {
	return c.do(ctx, http.MethodPost, fmt.Sprintf("/saved/%d", listingID), nil, nil, nil)
}

func (c *Client) UnsaveListing(ctx context.Context, listingID int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/saved/%d", listingID), nil, nil, nil)
}

// Chat.

func (c *Client) Conversations(ctx context.Context) ([]dto.Conversation, error) {
	var out []dto.Conversation
	err := c.do(ctx, http.MethodGet, "/conversations", nil, nil, &out)
	return out, err
}

func (c *Client) Conversation(ctx context.Context, id int64) (dto.Conversation, error) {
	var out dto.Conversation
	err := c.do(ctx, http.MethodGet, fmt.Sprintf("/conversations/%d", id), nil, nil, &out)
	return out, err
}

func (c *Client) Messages(ctx context.Context, conversationID int64) ([]dto.ChatMessage, error) {
	var out []dto.ChatMessage
	err := c.do(ctx, http.MethodGet, fmt.Sprintf("/conversations/%d/messages", conversationID), nil, nil, &out)
	return out, err
}

func (c *Client) SendMessage(ctx context.Context, conversationID int64, content string) (dto.ChatMessage, error) {
	var out dto.ChatMessage
	path := fmt.Sprintf("/conversations/%d/messages", conversationID)
	err := c.do(ctx, http.MethodPost, path, nil, dto.SendMessageRequest{Content: content}, &out)
	return out, err
}

func (c *Client) MarkRead(ctx context.Context, conversationID int64) error {
	return c.do(ctx, http.MethodPatch, fmt.Sprintf("/conversations/%d/read", conversationID), nil, nil, nil)
}

func (c *Client) StartConversation(ctx context.Context, listingID int64) (dto.Conversation, error) {
	var out dto.Conversation
	query := url.Values{"listingId": {fmt.Sprint(listingID)}}
	err := c.do(ctx, http.MethodPost, "/conversations", query, nil, &out)
	return out, err
}

func (c *Client) TotalUnread(ctx context.Context) (int, error) {
	var out dto.UnreadTotal
	err := c.do(ctx, http.MethodGet, "/conversations/total-unread", nil, nil, &out)
	return out.Total, err
}

// Moderation.

func (c *Client) SubmitReport(ctx context.Context, req dto.ReportRequest) error {
	return c.do(ctx, http.MethodPost, "/reports", nil, req, nil)
}

func (c *Client) AdminDashboard(ctx context.Context) (dto.DashboardStats, error) {
	var out dto.DashboardStats
	err := c.do(ctx, http.MethodGet, "/admin/dashboard", nil, nil, &out)
	return out, err
}

func (c *Client) AdminUsers(ctx context.Context) ([]dto.AdminUser, error) {
	var out []dto.AdminUser
	err := c.do(ctx, http.MethodGet, "/admin/users", nil, nil, &out)
	return out, err
}

func (c *Client) AdminReports(ctx context.Context) ([]dto.Report, error) {
	var out []dto.Report
	err := c.do(ctx, http.MethodGet, "/admin/reports", nil, nil, &out)
	return out, err
}

func (c *Client) BlockUser(ctx context.Context, userID int64) error {
	return c.do(ctx, http.MethodPost, fmt.Sprintf("/admin/users/%d/block", userID), nil, nil, nil)
}

func (c *Client) UnblockUser(ctx context.Context, userID int64) error {
	return c.do(ctx, http.MethodPost, fmt.Sprintf("/admin/users/%d/unblock", userID), nil, nil, nil)
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("api: encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}
	request, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return fmt.Errorf("api: build request: %w", err)
	}
	if body != nil {
		request.Header.Set("Content-Type", "application/json")
	}
	if c.token != nil {
		if token := c.token(); token != "" {
			request.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := c.http.Do(request)
	if err != nil {
		if c.logger != nil {
			c.logger.Warn("request failed", "method", method, "path", path, "error", err)
		}
		return fmt.Errorf("api: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return c.decodeError(resp, method, path)
	}
	if out == nil {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 1<<16))
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("api: decode %s %s: %w", method, path, err)
	}
	return nil
}

func (c *Client) decodeError(resp *http.Response, method, path string) error {
	apiErr := &Error{Status: resp.StatusCode, Message: fallbackMessage}
	snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	var body struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(snippet, &body); err == nil {
		if body.Message != "" {
			apiErr.Message = body.Message
		} else if body.Error != "" {
			apiErr.Message = body.Error
		}
	}
	if c.logger != nil {
		c.logger.Warn("request rejected", "method", method, "path", path, "status", resp.StatusCode)
	}
	return apiErr
}
