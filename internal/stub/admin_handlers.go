package stub

import (
	"net/http"
	"strconv"

	gin "github.com/gin-gonic/gin"

	"unimarket/internal/app/dto"
)

func (s *Server) submitReport(c *gin.Context) {
	principal, ok := requireUser(c)
	if !ok {
		return
	}
	var req dto.ReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}
	if req.Reason == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "reason is required"})
		return
	}
	if req.ListingID == 0 && req.ReportedUserID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "report target is required"})
		return
	}
	s.Store.CreateReport(principal.ID, req.ListingID, req.ReportedUserID, req.Reason, req.Description)
	c.Status(http.StatusCreated)
}

func (s *Server) adminDashboard(c *gin.Context) {
	if _, ok := requireAdmin(c); !ok {
		return
	}
	users, listings, active, open := s.Store.Stats()
	c.JSON(http.StatusOK, dto.DashboardStats{
		TotalUsers:     users,
		TotalListings:  listings,
		ActiveListings: active,
		OpenReports:    open,
	})
}

func (s *Server) adminUsers(c *gin.Context) {
	if _, ok := requireAdmin(c); !ok {
		return
	}
	users := s.Store.Users()
	out := make([]dto.AdminUser, 0, len(users))
	for _, u := range users {
		out = append(out, dto.AdminUser{
			ID:            u.ID,
			Email:         u.Email,
			Name:          u.Name,
			Role:          u.Role,
			Blocked:       u.Blocked,
			EmailVerified: u.EmailVerified,
			CreatedAt:     u.CreatedAt,
			ListingCount:  len(s.Store.ListingsBySeller(u.ID)),
		})
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) adminReports(c *gin.Context) {
	if _, ok := requireAdmin(c); !ok {
		return
	}
	reports := s.Store.Reports()
	out := make([]dto.Report, 0, len(reports))
	for _, r := range reports {
		out = append(out, dto.Report{
			ID:             r.ID,
			ListingID:      r.ListingID,
			ReportedUserID: r.ReportedUserID,
			ReporterID:     r.ReporterID,
			Reason:         r.Reason,
			Description:    r.Description,
			Status:         r.Status,
			CreatedAt:      r.CreatedAt,
		})
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) blockUser(c *gin.Context) {
	s.setBlocked(c, true)
}

func (s *Server) unblockUser(c *gin.Context) {
	s.setBlocked(c, false)
}

func (s *Server) setBlocked(c *gin.Context, blocked bool) {
	admin, ok := requireAdmin(c)
	if !ok {
		return
	}
	userID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}
	if userID == admin.ID {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cannot block yourself"})
		return
	}
	if _, err := s.Store.UpdateUser(userID, func(u *user) { u.Blocked = blocked }); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}
	c.Status(http.StatusNoContent)
}
