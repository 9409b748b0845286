package http

import (
	"net/http"

	"streamdash/internal/core/domain"
	"streamdash/internal/core/ports"
	"streamdash/internal/infrastructure/middleware"
	apperrors "streamdash/pkg/errors"

	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	users ports.UserService
}

func NewUserHandler(users ports.UserService) *UserHandler {
	return &UserHandler{users: users}
}

// RegisterRoutes mounts the user registry. The whole group requires a valid
// bearer token; admin-only routes check the role on top of that.
func (h *UserHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.List)
	rg.GET("/profile", h.Profile)
	rg.GET("/stats", h.Stats)
	rg.POST("", h.Create)
	rg.PUT("/:id", h.Update)
	rg.DELETE("/:id", h.Delete)
	rg.GET("/:id", h.Get)
}

type createUserRequest struct {
	Username string          `json:"username"`
	Email    string          `json:"email"`
	Password string          `json:"password"`
	Role     domain.UserRole `json:"role"`
	Avatar   string          `json:"avatar"`
}

type updateUserRequest struct {
	domain.UserPatch
	Password string `json:"password"`
}

func (h *UserHandler) List(c *gin.Context) {
	if !h.requireAdmin(c) {
		return
	}

	page, limit := pageParams(c)
	filter := domain.UserFilter{
		Role:   domain.UserRole(c.Query("role")),
		Status: domain.UserStatus(c.Query("status")),
	}

	users, total, err := h.users.List(c.Request.Context(), filter, page, limit)
	if err != nil {
		c.Error(err)
		c.Abort()
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"data":       users,
		"pagination": newPagination(total, page, limit),
	})
}

func (h *UserHandler) Profile(c *gin.Context) {
	claims, ok := middleware.ClaimsFromContext(c)
	if !ok {
		c.Error(apperrors.NewUnauthorizedError("No token provided"))
		c.Abort()
		return
	}

	user, err := h.users.Get(c.Request.Context(), claims.UserID)
	if err != nil {
		c.Error(err)
		c.Abort()
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": user})
}

func (h *UserHandler) Get(c *gin.Context) {
	if !h.requireAdmin(c) {
		return
	}

	id, ok := parseID(c)
	if !ok {
		c.Error(apperrors.NewNotFoundError("User"))
		c.Abort()
		return
	}

	user, err := h.users.Get(c.Request.Context(), domain.UserID(id))
	if err != nil {
		c.Error(err)
		c.Abort()
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": user})
}

func (h *UserHandler) Create(c *gin.Context) {
	if !h.requireAdmin(c) {
		return
	}

	var req createUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperrors.NewInvalidInputError("Invalid request body"))
		c.Abort()
		return
	}
	if req.Avatar == "" {
		req.Avatar = "👤"
	}

	created, err := h.users.Create(c.Request.Context(), req.Username, req.Email, req.Password, req.Role, req.Avatar)
	if err != nil {
		c.Error(err)
		c.Abort()
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "User created successfully",
		"data":    created,
	})
}

func (h *UserHandler) Update(c *gin.Context) {
	claims, ok := middleware.ClaimsFromContext(c)
	if !ok {
		c.Error(apperrors.NewUnauthorizedError("No token provided"))
		c.Abort()
		return
	}

	id, parsed := parseID(c)
	if !parsed {
		c.Error(apperrors.NewNotFoundError("User"))
		c.Abort()
		return
	}

	// Admins may update anyone; everyone else only themselves.
	if claims.Role != domain.RoleAdmin && claims.UserID != domain.UserID(id) {
		c.Error(apperrors.NewForbiddenError("Permission denied"))
		c.Abort()
		return
	}

	var req updateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperrors.NewInvalidInputError("Invalid request body"))
		c.Abort()
		return
	}

	// Non-admins cannot escalate their own role or status.
	if claims.Role != domain.RoleAdmin {
		req.Role = nil
		req.Status = nil
	}

	updated, err := h.users.Update(c.Request.Context(), domain.UserID(id), req.UserPatch, req.Password)
	if err != nil {
		c.Error(err)
		c.Abort()
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "User updated successfully",
		"data":    updated,
	})
}

func (h *UserHandler) Delete(c *gin.Context) {
	if !h.requireAdmin(c) {
		return
	}

	id, ok := parseID(c)
	if !ok {
		c.Error(apperrors.NewNotFoundError("User"))
		c.Abort()
		return
	}

	if _, err := h.users.Delete(c.Request.Context(), domain.UserID(id)); err != nil {
		c.Error(err)
		c.Abort()
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "User deleted successfully",
	})
}

func (h *UserHandler) Stats(c *gin.Context) {
	if !h.requireAdmin(c) {
		return
	}

	report, err := h.users.Stats(c.Request.Context())
	if err != nil {
		c.Error(err)
		c.Abort()
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": report})
}

func (h *UserHandler) requireAdmin(c *gin.Context) bool {
	claims, ok := middleware.ClaimsFromContext(c)
	if !ok {
		c.Error(apperrors.NewUnauthorizedError("No token provided"))
		c.Abort()
		return false
	}
	if claims.Role != domain.RoleAdmin {
		c.Error(apperrors.NewForbiddenError("Admin access required"))
		c.Abort()
		return false
	}
	return true
}
