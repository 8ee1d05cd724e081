package dto

import "time"

// ParticipantInfo identifies one side of a conversation.
type ParticipantInfo struct {
	ID            int64  `json:"id"`
	Name          string `json:"name"`
	ProfilePicURL string `json:"profilePicUrl,omitempty"`
}

// ListingRef is the listing summary embedded in a conversation header.
type ListingRef struct {
	ID           int64   `json:"id"`
	Slug         string  `json:"slug"`
	Title        string  `json:"title"`
	Price        float64 `json:"price"`
	ThumbnailURL string  `json:"thumbnailUrl,omitempty"`
	Status       string  `json:"status"`
}

// Conversation is a messaging thread between two users scoped to one
// listing. Created server-side when a buyer initiates contact; the client
// treats it as read-only apart from marking it read.
type Conversation struct {
	ID               int64           `json:"id"`
	Listing          ListingRef      `json:"listing"`
	OtherParticipant ParticipantInfo `json:"otherParticipant"`
	LastMessage      string          `json:"lastMessage,omitempty"`
	LastMessageAt    *time.Time      `json:"lastMessageAt,omitempty"`
	UnreadCount      int             `json:"unreadCount"`
	IsBuyer          bool            `json:"isBuyer"`
	IsSeller         bool            `json:"isSeller"`
}

// ChatMessage is immutable once created; the client only appends new
// messages and marks conversations read.
type ChatMessage struct {
	ID             int64           `json:"id"`
	ConversationID int64           `json:"conversationId"`
	Sender         ParticipantInfo `json:"sender"`
	Content        string          `json:"content"`
	IsRead         bool            `json:"isRead"`
	IsOwnMessage   bool            `json:"isOwnMessage"`
	CreatedAt      time.Time       `json:"createdAt"`
}

// SendMessageRequest is the body of POST /conversations/{id}/messages.
type SendMessageRequest struct {
	Content string `json:"content"`
}

// UnreadTotal is the body of GET /conversations/total-unread.
type UnreadTotal struct {
	Total int `json:"total"`
}
