package stub

import (
	"net/http"
	"strconv"
	"strings"

	gin "github.com/gin-gonic/gin"

	"unimarket/internal/app/dto"
)

func (s *Server) listConversations(c *gin.Context) {
	principal, ok := requireUser(c)
	if !ok {
		return
	}
	conversations := s.Store.ConversationsFor(principal.ID)
	out := make([]dto.Conversation, 0, len(conversations))
	for _, conv := range conversations {
		out = append(out, s.mapConversation(conv, principal.ID))
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) startConversation(c *gin.Context) {
	principal, ok := requireUser(c)
	if !ok {
		return
	}
	listingID, err := strconv.ParseInt(strings.TrimSpace(c.Query("listingId")), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "listingId is required"})
		return
	}
	conv, err := s.Store.GetOrCreateConversation(listingID, principal.ID)
	if err != nil {
		switch err {
		case ErrSelfChat:
			c.JSON(http.StatusBadRequest, gin.H{"error": "cannot message your own listing"})
		default:
			c.JSON(http.StatusNotFound, gin.H{"error": "listing not found"})
		}
		return
	}
	c.JSON(http.StatusOK, s.mapConversation(conv, principal.ID))
}

func (s *Server) getConversation(c *gin.Context) {
	principal, ok := requireUser(c)
	if !ok {
		return
	}
	id, ok := conversationIDParam(c)
	if !ok {
		return
	}
	conv, err := s.Store.ConversationByID(id, principal.ID)
	if err != nil {
		respondConversationError(c, err)
		return
	}
	c.JSON(http.StatusOK, s.mapConversation(conv, principal.ID))
}

func (s *Server) listMessages(c *gin.Context) {
	principal, ok := requireUser(c)
	if !ok {
		return
	}
	id, ok := conversationIDParam(c)
	if !ok {
		return
	}
	messages, err := s.Store.MessagesFor(id, principal.ID)
	if err != nil {
		respondConversationError(c, err)
		return
	}
	out := make([]dto.ChatMessage, 0, len(messages))
	for _, m := range messages {
		out = append(out, s.mapMessage(m, principal.ID))
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) sendMessage(c *gin.Context) {
	principal, ok := requireUser(c)
	if !ok {
		return
	}
	id, ok := conversationIDParam(c)
	if !ok {
		return
	}
	var req dto.SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}
	req.Content = strings.TrimSpace(req.Content)
	if req.Content == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "content is required"})
		return
	}
	m, err := s.Store.AppendMessage(id, principal.ID, req.Content)
	if err != nil {
		respondConversationError(c, err)
		return
	}
	c.JSON(http.StatusCreated, s.mapMessage(m, principal.ID))
}

func (s *Server) markRead(c *gin.Context) {
	principal, ok := requireUser(c)
	if !ok {
		return
	}
	id, ok := conversationIDParam(c)
	if !ok {
		return
	}
	if err := s.Store.MarkRead(id, principal.ID); err != nil {
		respondConversationError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) totalUnread(c *gin.Context) {
	principal, ok := requireUser(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, dto.UnreadTotal{Total: s.Store.TotalUnread(principal.ID)})
}

func (s *Server) mapConversation(conv *conversation, viewer int64) dto.Conversation {
	out := dto.Conversation{
		ID:          conv.ID,
		LastMessage: conv.LastMessage,
		UnreadCount: conv.Unread[viewer],
		IsBuyer:     conv.BuyerID == viewer,
		IsSeller:    conv.SellerID == viewer,
	}
	if !conv.LastMessageAt.IsZero() {
		at := conv.LastMessageAt
		out.LastMessageAt = &at
	}
	if l, err := s.Store.ListingByID(conv.ListingID); err == nil {
		out.Listing = dto.ListingRef{
			ID:     l.ID,
			Slug:   l.Slug,
			Title:  l.Title,
			Price:  l.Price,
			Status: l.Status.String(),
		}
	}
	if other, err := s.Store.UserByID(conv.other(viewer)); err == nil {
		out.OtherParticipant = dto.ParticipantInfo{
			ID:            other.ID,
			Name:          other.Name,
			ProfilePicURL: other.ProfilePicURL,
		}
	}
	return out
}

func (s *Server) mapMessage(m *message, viewer int64) dto.ChatMessage {
	sender := dto.ParticipantInfo{ID: m.SenderID}
	if u, err := s.Store.UserByID(m.SenderID); err == nil {
		sender.Name = u.Name
		sender.ProfilePicURL = u.ProfilePicURL
	}
	return dto.ChatMessage{
		ID:             m.ID,
		ConversationID: m.ConversationID,
		Sender:         sender,
		Content:        m.Content,
		IsRead:         m.Read,
		IsOwnMessage:   m.SenderID == viewer,
		CreatedAt:      m.CreatedAt,
	}
}

func conversationIDParam(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid conversation id"})
		return 0, false
	}
	return id, true
}

func respondConversationError(c *gin.Context, err error) {
	switch err {
	case ErrNotParticipant:
		c.JSON(http.StatusForbidden, gin.H{"error": "not a chat participant"})
	case ErrNotFound:
		c.JSON(http.StatusNotFound, gin.H{"error": "conversation not found"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "conversation lookup failed"})
	}
}
