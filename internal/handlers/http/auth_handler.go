package http

import (
	"net/http"
	"strings"

	"streamdash/internal/core/domain"
	"streamdash/internal/core/ports"
	"streamdash/internal/core/services"
	apperrors "streamdash/pkg/errors"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	users ports.UserService
	auth  services.AuthService
}

func NewAuthHandler(users ports.UserService, auth services.AuthService) *AuthHandler {
	return &AuthHandler{users: users, auth: auth}
}

func (h *AuthHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/register", h.Register)
	rg.POST("/login", h.Login)
	rg.POST("/verify", h.Verify)
	rg.POST("/logout", h.Logout)
}

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Register creates a viewer account and issues its first token.
func (h *AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperrors.NewInvalidInputError("Invalid request body"))
		c.Abort()
		return
	}
	if req.Username == "" || req.Email == "" || req.Password == "" {
		c.Error(apperrors.NewInvalidInputError("All fields are required"))
		c.Abort()
		return
	}

	user, err := h.users.Create(c.Request.Context(), req.Username, req.Email, req.Password, domain.RoleViewer, "👤")
	if err != nil {
		c.Error(err)
		c.Abort()
		return
	}

	token, err := h.auth.GenerateToken(user)
	if err != nil {
		c.Error(apperrors.WrapError(err, apperrors.ErrCodeInternal, "failed to issue token", http.StatusInternalServerError))
		c.Abort()
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "Registration successful",
		"data": gin.H{
			"user":  user,
			"token": token,
		},
	})
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperrors.NewInvalidInputError("Invalid request body"))
		c.Abort()
		return
	}
	if req.Email == "" || req.Password == "" {
		c.Error(apperrors.NewInvalidInputError("Email and password are required"))
		c.Abort()
		return
	}

	user, err := h.users.Authenticate(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		c.Error(err)
		c.Abort()
		return
	}

	token, err := h.auth.GenerateToken(user)
	if err != nil {
		c.Error(apperrors.WrapError(err, apperrors.ErrCodeInternal, "failed to issue token", http.StatusInternalServerError))
		c.Abort()
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Login successful",
		"data": gin.H{
			"user":  user,
			"token": token,
		},
	})
}

// Verify checks a token from the body or the Authorization header and echoes
// its claims.
func (h *AuthHandler) Verify(c *gin.Context) {
	var req struct {
		Token string `json:"token"`
	}
	_ = c.ShouldBindJSON(&req)

	token := req.Token
	if token == "" {
		if parts := strings.Split(c.GetHeader("Authorization"), " "); len(parts) == 2 && parts[0] == "Bearer" {
			token = parts[1]
		}
	}
	if token == "" {
		c.Error(apperrors.NewInvalidInputError("Token is required"))
		c.Abort()
		return
	}

	claims, err := h.auth.ValidateToken(token)
	if err != nil {
		c.Error(apperrors.NewUnauthorizedError("Invalid token"))
		c.Abort()
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": claims})
}

// Logout is stateless; the client discards its token.
func (h *AuthHandler) Logout(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Logged out successfully",
	})
}
