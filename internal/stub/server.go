package stub

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	gin "github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const principalContextKey = "unimarket.principal"

// Config defines stub server settings.
type Config struct {
	Env       string
	Addr      string
	JWTSecret string
	TokenTTL  time.Duration
}

// Server bundles the store, token handling, and handlers behind one router.
type Server struct {
	Store    *Store
	Logger   *slog.Logger
	secret   []byte
	tokenTTL time.Duration
}

func NewServer(cfg Config, store *Store, logger *slog.Logger) *Server {
	ttl := cfg.TokenTTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	secret := cfg.JWTSecret
	if secret == "" {
		secret = "unimarket-dev-secret"
	}
	return &Server{
		Store:    store,
		Logger:   logger,
		secret:   []byte(secret),
		tokenTTL: ttl,
	}
}

// Router assembles the gin engine with the documented REST surface.
func (s *Server) Router(env string) *gin.Engine {
	configureGinMode(env)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(s.requestID())
	router.Use(s.loggerMiddleware())
	router.Use(cors.New(cors.Config{
		AllowOrigins:  []string{"*"},
		AllowMethods:  []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders: []string{"Content-Length", "Content-Type", "X-Request-ID"},
		MaxAge:        12 * time.Hour,
	}))
	router.Use(s.authenticate())

	router.GET("/livez", func(c *gin.Context) { c.Status(http.StatusOK) })

	api := router.Group("/api")
	api.POST("/auth/signup", s.signup)
	api.POST("/auth/login", s.login)
	api.POST("/auth/change-password", s.changePassword)
	api.POST("/auth/forgot-password", s.forgotPassword)
	api.POST("/auth/reset-password", s.resetPassword)
	api.GET("/users/me", s.me)
	api.PUT("/users/me", s.updateProfile)
	api.GET("/users/:id/listings", s.userListings)

	api.GET("/listings", s.searchListings)
	api.GET("/listings/:slug", s.listingBySlug)
	api.POST("/listings", s.createListing)
	api.PUT("/listings/:slug", s.updateListing)
	api.DELETE("/listings/:slug", s.deleteListing)
	api.PATCH("/listings/:slug/sold", s.markSold)
	api.PATCH("/listings/:slug/bump", s.bumpListing)

	api.GET("/saved", s.savedListings)
	api.POST("/saved/:id", s.saveListing)
	api.DELETE("/saved/:id", s.unsaveListing)

	api.GET("/conversations", s.listConversations)
	api.GET("/conversations/total-unread", s.totalUnread)
	api.POST("/conversations", s.startConversation)
	api.GET("/conversations/:id", s.getConversation)
	api.GET("/conversations/:id/messages", s.listMessages)
	api.POST("/conversations/:id/messages", s.sendMessage)
	api.PATCH("/conversations/:id/read", s.markRead)

	api.POST("/reports", s.submitReport)
	api.GET("/admin/dashboard", s.adminDashboard)
	api.GET("/admin/users", s.adminUsers)
	api.GET("/admin/reports", s.adminReports)
	api.POST("/admin/users/:id/block", s.blockUser)
	api.POST("/admin/users/:id/unblock", s.unblockUser)

	return router
}

// tokenFor mints a signed bearer token for a user id.
func (s *Server) tokenFor(userID int64) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   strconv.FormatInt(userID, 10),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

// authenticate resolves the bearer token into a principal when present.
// Missing or invalid tokens leave the request anonymous; each handler
// decides whether that is acceptable.
func (s *Server) authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractBearerToken(c.GetHeader("Authorization"))
		if token == "" {
			c.Next()
			return
		}
		claims := jwt.RegisteredClaims{}
		parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
			}
			return s.secret, nil
		})
		if err != nil || !parsed.Valid {
			if s.Logger != nil {
				s.Logger.Debug("token rejected", "error", err)
			}
			c.Next()
			return
		}
		userID, err := strconv.ParseInt(claims.Subject, 10, 64)
		if err != nil {
			c.Next()
			return
		}
		u, err := s.Store.UserByID(userID)
		if err != nil || u.Blocked {
			c.Next()
			return
		}
		c.Set(principalContextKey, u)
		c.Next()
	}
}

func (s *Server) requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		c.Writer.Header().Set("X-Request-ID", id)
		c.Set("request_id", id)
		c.Next()
	}
}

func (s *Server) loggerMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		if s.Logger == nil {
			return
		}
		s.Logger.Info("http",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"duration", time.Since(start),
			"request_id", c.GetString("request_id"),
		)
	}
}

// requireUser aborts with 401 unless the request carries a valid principal.
func requireUser(c *gin.Context) (*user, bool) {
	value, ok := c.Get(principalContextKey)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return nil, false
	}
	principal, ok := value.(*user)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return nil, false
	}
	return principal, true
}

// requireAdmin aborts with 403 unless the principal has the admin role.
func requireAdmin(c *gin.Context) (*user, bool) {
	principal, ok := requireUser(c)
	if !ok {
		return nil, false
	}
	if principal.Role != "ADMIN" {
		c.JSON(http.StatusForbidden, gin.H{"error": "admin only"})
		return nil, false
	}
	return principal, true
}

func extractBearerToken(header string) string {
	header = strings.TrimSpace(header)
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

func configureGinMode(env string) {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "debug":
		gin.SetMode(gin.DebugMode)
	case "test", "testing":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.ReleaseMode)
	}
}
