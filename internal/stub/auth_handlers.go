package stub

import (
	"net/http"
	"strconv"
	"strings"

	gin "github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	"unimarket/internal/app/dto"
)

func (s *Server) signup(c *gin.Context) {
	var req dto.SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	req.Name = strings.TrimSpace(req.Name)
	if req.Email == "" || req.Name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "email and name are required"})
		return
	}
	if len(req.Password) < 8 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "password must be at least 8 characters"})
		return
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "cannot hash password"})
		return
	}
	u, err := s.Store.CreateUser(req.Email, req.Name, string(hash), "USER")
	if err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": "email already registered"})
		return
	}
	s.respondAuth(c, http.StatusCreated, u)
}

func (s *Server) login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}
	u, err := s.Store.UserByEmail(req.Email)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.Password)); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}
	if u.Blocked {
		c.JSON(http.StatusForbidden, gin.H{"error": "account blocked"})
		return
	}
	s.respondAuth(c, http.StatusOK, u)
}

func (s *Server) changePassword(c *gin.Context) {
	principal, ok := requireUser(c)
	if !ok {
		return
	}
	var req struct {
		CurrentPassword string `json:"currentPassword"`
		NewPassword     string `json:"newPassword"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(principal.PasswordHash), []byte(req.CurrentPassword)); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "current password is incorrect"})
		return
	}
	if len(req.NewPassword) < 8 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "password must be at least 8 characters"})
		return
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "cannot hash password"})
		return
	}
	if _, err := s.Store.UpdateUser(principal.ID, func(u *user) { u.PasswordHash = string(hash) }); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}
	c.Status(http.StatusNoContent)
}

// forgotPassword always answers 204 so callers cannot probe which emails
// exist. The issued token goes to the log, standing in for the reset mail.
func (s *Server) forgotPassword(c *gin.Context) {
	var req struct {
		Email string `json:"email"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Email) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "email is required"})
		return
	}
	token, err := s.Store.CreatePasswordReset(req.Email)
	if err == nil && s.Logger != nil {
		s.Logger.Info("password reset issued", "email", req.Email, "token", token)
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) resetPassword(c *gin.Context) {
	var req struct {
		Token       string `json:"token"`
		NewPassword string `json:"newPassword"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}
	if len(req.NewPassword) < 8 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "password must be at least 8 characters"})
		return
	}
	userID, err := s.Store.ConsumePasswordReset(strings.TrimSpace(req.Token))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid or expired reset token"})
		return
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "cannot hash password"})
		return
	}
	if _, err := s.Store.UpdateUser(userID, func(u *user) { u.PasswordHash = string(hash) }); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) me(c *gin.Context) {
	principal, ok := requireUser(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, mapUser(principal))
}

func (s *Server) updateProfile(c *gin.Context) {
	principal, ok := requireUser(c)
	if !ok {
		return
	}
	var req dto.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}
	updated, err := s.Store.UpdateUser(principal.ID, func(u *user) {
		if name := strings.TrimSpace(req.Name); name != "" {
			u.Name = name
		}
		if req.ProfilePicURL != "" {
			u.ProfilePicURL = req.ProfilePicURL
		}
	})
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}
	c.JSON(http.StatusOK, mapUser(updated))
}

func (s *Server) userListings(c *gin.Context) {
	userID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}
	viewer := viewerID(c)
	listings := s.Store.ListingsBySeller(userID)
	out := make([]dto.Listing, 0, len(listings))
	for _, l := range listings {
		out = append(out, s.mapListing(l, viewer))
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) respondAuth(c *gin.Context, status int, u *user) {
	token, err := s.tokenFor(u.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "cannot issue token"})
		return
	}
	c.JSON(status, dto.AuthResponse{Token: token, User: mapUser(u)})
}

// viewerID returns the authenticated user id or zero for anonymous reads.
func viewerID(c *gin.Context) int64 {
	if value, ok := c.Get(principalContextKey); ok {
		if principal, ok := value.(*user); ok {
			return principal.ID
		}
	}
	return 0
}

func mapUser(u *user) dto.User {
	return dto.User{
		ID:            u.ID,
		Email:         u.Email,
		Name:          u.Name,
		ProfilePicURL: u.ProfilePicURL,
		EmailVerified: u.EmailVerified,
		Role:          u.Role,
	}
}
