package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"chainbank-backend/internal/dto"
	"chainbank-backend/internal/middleware"
	"chainbank-backend/internal/services"
)

// UserHandler exposes registration, login and account management endpoints.
type UserHandler struct {
	users  *services.UserService
	logger *logrus.Logger
}

// NewUserHandler creates the user management handler.
func NewUserHandler(users *services.UserService, logger *logrus.Logger) *UserHandler {
	return &UserHandler{users: users, logger: logger}
}

// Register handles POST /register, the public self-registration endpoint.
func (h *UserHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}

	user, err := h.users.Register(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":  "User registered successfully",
		"username": user.Username,
	})
}

// Login handles POST /token. Credentials arrive as an OAuth2-style password
// grant form; username carries the email.
func (h *UserHandler) Login(c *gin.Context) {
	email := c.PostForm("username")
	password := c.PostForm("password")
	totpCode := c.PostForm("totp_code")

	if email == "" || password == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "Invalid request body",
			"message": "username and password form fields are required",
			"code":    "VALIDATION_ERROR",
		})
		return
	}

	token, err := h.users.Login(c.Request.Context(), email, password, totpCode)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.TokenResponse{
		AccessToken: token,
		TokenType:   "bearer",
	})
}

// CreateUser handles POST /users/, the admin user-creation endpoint.
func (h *UserHandler) CreateUser(c *gin.Context) {
	var req dto.AdminCreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}

	user, err := h.users.AdminCreateUser(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":  "User created successfully",
		"username": user.Username,
		"role":     user.Role,
	})
}

// ListUsers handles GET /users/.
func (h *UserHandler) ListUsers(c *gin.Context) {
	users, err := h.users.ListUsers(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	out := make([]dto.UserResponse, 0, len(users))
	for _, user := range users {
		out = append(out, dto.NewUserResponse(user))
	}
	c.JSON(http.StatusOK, out)
}

// Me handles GET /users/me.
func (h *UserHandler) Me(c *gin.Context) {
	user := middleware.CurrentUser(c)
	c.JSON(http.StatusOK, dto.NewUserResponse(user))
}

// UpdateMe handles PUT /users/me, a partial self-service profile update.
func (h *UserHandler) UpdateMe(c *gin.Context) {
	var req dto.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}

	user := middleware.CurrentUser(c)
	updated, err := h.users.UpdateProfile(c.Request.Context(), user, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "Profile updated successfully",
		"user":    dto.NewUserResponse(updated),
	})
}

// DeleteMe handles DELETE /users/me.
func (h *UserHandler) DeleteMe(c *gin.Context) {
	user := middleware.CurrentUser(c)
	if err := h.users.DeleteAccount(c.Request.Context(), user.ID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Account deleted successfully"})
}

// Activate handles PUT /users/:id/activate.
func (h *UserHandler) Activate(c *gin.Context) {
	h.setDisabled(c, false, "activated")
}

// Deactivate handles PUT /users/:id/deactivate.
func (h *UserHandler) Deactivate(c *gin.Context) {
	h.setDisabled(c, true, "deactivated")
}

func (h *UserHandler) setDisabled(c *gin.Context, disabled bool, verb string) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "Invalid user id",
			"message": "User id must be a positive integer",
			"code":    "VALIDATION_ERROR",
		})
		return
	}

	user, err := h.users.SetDisabled(c.Request.Context(), uint(id), disabled)
	if err != nil {
		respondError(c, err)
		return
	}

	username := ""
	if user.Username != nil {
		username = *user.Username
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "User " + username + " " + verb + " successfully",
	})
}

func (h *UserHandler) badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{
		"success": false,
		"error":   "Invalid request body",
		"message": err.Error(),
		"code":    "VALIDATION_ERROR",
	})
}
