package stub

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	gin "github.com/gin-gonic/gin"

	"unimarket/internal/app/dto"
	"unimarket/internal/domain/catalog"
)

func (s *Server) searchListings(c *gin.Context) {
	params := SearchParams{
		Search: c.Query("search"),
		Page:   parseNonNegativeInt(c.Query("page"), 0),
		Size:   parsePositiveInt(c.Query("size"), 16),
	}
	category, err := catalog.ParseCategory(c.Query("category"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown category"})
		return
	}
	params.Category = category
	condition, err := catalog.ParseCondition(c.Query("condition"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown condition"})
		return
	}
	params.Condition = condition
	if raw := c.Query("minPrice"); raw != "" {
		value, err := strconv.ParseFloat(raw, 64)
		if err != nil || value < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid minPrice"})
			return
		}
		params.MinPrice = value
		params.HasMin = true
	}
	if raw := c.Query("maxPrice"); raw != "" {
		value, err := strconv.ParseFloat(raw, 64)
		if err != nil || value < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid maxPrice"})
			return
		}
		params.MaxPrice = value
		params.HasMax = true
	}

	matched, total, last := s.Store.Search(params)
	viewer := viewerID(c)
	content := make([]dto.Listing, 0, len(matched))
	for _, l := range matched {
		content = append(content, s.mapListing(l, viewer))
	}
	totalPages := int((total + int64(params.Size) - 1) / int64(params.Size))
	c.JSON(http.StatusOK, dto.ListingPage{
		Content:       content,
		Page:          params.Page,
		Size:          params.Size,
		TotalElements: total,
		TotalPages:    totalPages,
		Last:          last,
	})
}

func (s *Server) listingBySlug(c *gin.Context) {
	l, err := s.Store.ListingBySlug(c.Param("slug"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "listing not found"})
		return
	}
	c.JSON(http.StatusOK, s.mapListing(l, viewerID(c)))
}

func (s *Server) createListing(c *gin.Context) {
	principal, ok := requireUser(c)
	if !ok {
		return
	}
	req, ok := bindListingRequest(c)
	if !ok {
		return
	}
	category, _ := catalog.ParseCategory(req.Category)
	condition, _ := catalog.ParseCondition(req.Condition)
	l := s.Store.CreateListing(principal.ID, req.Title, req.Description, req.Price, category, condition)
	c.JSON(http.StatusCreated, s.mapListing(l, principal.ID))
}

func (s *Server) updateListing(c *gin.Context) {
	principal, ok := requireUser(c)
	if !ok {
		return
	}
	id, ok := listingIDParam(c)
	if !ok {
		return
	}
	req, ok := bindListingRequest(c)
	if !ok {
		return
	}
	category, _ := catalog.ParseCategory(req.Category)
	condition, _ := catalog.ParseCondition(req.Condition)
	updated, err := s.Store.UpdateListing(id, principal.ID, func(l *listing) {
		l.Title = strings.TrimSpace(req.Title)
		l.Description = strings.TrimSpace(req.Description)
		l.Price = req.Price
		l.Category = category
		l.Condition = condition
	})
	if err != nil {
		respondListingError(c, err)
		return
	}
	c.JSON(http.StatusOK, s.mapListing(updated, principal.ID))
}

func (s *Server) deleteListing(c *gin.Context) {
	principal, ok := requireUser(c)
	if !ok {
		return
	}
	id, ok := listingIDParam(c)
	if !ok {
		return
	}
	if _, err := s.Store.UpdateListing(id, principal.ID, func(l *listing) {
		l.Status = catalog.StatusDeleted
	}); err != nil {
		respondListingError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) markSold(c *gin.Context) {
	principal, ok := requireUser(c)
	if !ok {
		return
	}
	id, ok := listingIDParam(c)
	if !ok {
		return
	}
	if _, err := s.Store.UpdateListing(id, principal.ID, func(l *listing) {
		l.Status = catalog.StatusSold
	}); err != nil {
		respondListingError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) bumpListing(c *gin.Context) {
	principal, ok := requireUser(c)
	if !ok {
		return
	}
	id, ok := listingIDParam(c)
	if !ok {
		return
	}
	if _, err := s.Store.UpdateListing(id, principal.ID, func(l *listing) {
		l.CreatedAt = time.Now().UTC()
		l.ExpiresAt = l.CreatedAt.AddDate(0, 1, 0)
	}); err != nil {
		respondListingError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) savedListings(c *gin.Context) {
	principal, ok := requireUser(c)
	if !ok {
		return
	}
	items := s.Store.SavedBy(principal.ID)
	out := make([]dto.SavedItem, 0, len(items))
	for _, item := range items {
		l, err := s.Store.ListingByID(item.ListingID)
		if err != nil {
			continue
		}
		out = append(out, dto.SavedItem{
			ID:      item.ID,
			Listing: s.mapListing(l, principal.ID),
			SavedAt: item.SavedAt,
		})
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) saveListing(c *gin.Context) {
	principal, ok := requireUser(c)
	if !ok {
		return
	}
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid listing id"})
		return
	}
	if err := s.Store.SaveListing(principal.ID, id); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "listing not found"})
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) unsaveListing(c *gin.Context) {
	principal, ok := requireUser(c)
	if !ok {
		return
	}
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid listing id"})
		return
	}
	s.Store.UnsaveListing(principal.ID, id)
	c.Status(http.StatusNoContent)
}

func (s *Server) mapListing(l *listing, viewer int64) dto.Listing {
	seller := dto.Seller{ID: l.SellerID}
	if u, err := s.Store.UserByID(l.SellerID); err == nil {
		seller.Name = u.Name
		seller.ProfilePicURL = u.ProfilePicURL
		seller.MemberSince = u.CreatedAt
	}
	saved := false
	if viewer != 0 {
		saved = s.Store.IsSaved(viewer, l.ID)
	}
	return dto.Listing{
		ID:                   l.ID,
		Slug:                 l.Slug,
		Title:                l.Title,
		Description:          l.Description,
		Price:                l.Price,
		Category:             l.Category.String(),
		CategoryDisplayName:  l.Category.Label(),
		Condition:            l.Condition.String(),
		ConditionDisplayName: l.Condition.Label(),
		Status:               l.Status.String(),
		Images:               []dto.ListingImage{},
		Seller:               seller,
		CreatedAt:            l.CreatedAt,
		ExpiresAt:            l.ExpiresAt,
		IsSaved:              saved,
	}
}

func bindListingRequest(c *gin.Context) (dto.ListingRequest, bool) {
	var req dto.ListingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return req, false
	}
	if strings.TrimSpace(req.Title) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "title is required"})
		return req, false
	}
	if req.Price < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "price must not be negative"})
		return req, false
	}
	category, err := catalog.ParseCategory(req.Category)
	if err != nil || category.Any() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown category"})
		return req, false
	}
	condition, err := catalog.ParseCondition(req.Condition)
	if err != nil || condition.Any() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown condition"})
		return req, false
	}
	return req, true
}

// listingIDParam reads the numeric id from the slug position; mutating
// routes address listings by id while reads use the slug.
func listingIDParam(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("slug"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid listing id"})
		return 0, false
	}
	return id, true
}

func respondListingError(c *gin.Context, err error) {
	switch err {
	case ErrNotOwner:
		c.JSON(http.StatusForbidden, gin.H{"error": "not your listing"})
	case ErrNotFound:
		c.JSON(http.StatusNotFound, gin.H{"error": "listing not found"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "listing update failed"})
	}
}

func parseNonNegativeInt(raw string, def int) int {
	value, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || value < 0 {
		return def
	}
	return value
}

func parsePositiveInt(raw string, def int) int {
	value, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || value <= 0 {
		return def
	}
	return value
}
