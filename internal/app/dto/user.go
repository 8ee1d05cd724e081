package dto

// User is the current account as returned by /users/me and /auth/login.
type User struct {
	ID            int64  `json:"id"`
	Email         string `json:"email"`
	Name          string `json:"name"`
	ProfilePicURL string `json:"profilePicUrl,omitempty"`
	EmailVerified bool   `json:"emailVerified"`
	Role          string `json:"role"`
}

// Admin reports whether the account carries the moderation role.
func (u User) Admin() bool {
	return u.Role == "ADMIN"
}

// LoginRequest is the body of POST /auth/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SignupRequest is the body of POST /auth/signup.
type SignupRequest struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"`
}

// AuthResponse pairs the bearer token with the authenticated user. The two
// are persisted together or not at all.
type AuthResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// UpdateProfileRequest is the body of PUT /users/me.
type UpdateProfileRequest struct {
	Name          string `json:"name,omitempty"`
	ProfilePicURL string `json:"profilePicUrl,omitempty"`
}
