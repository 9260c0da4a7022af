package handler

import (
	"errors"
	"net/http"
	"time"

	"smarttask/internal/auth"
	"smarttask/internal/service"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	users  *service.UserService
	issuer *auth.TokenIssuer
}

func NewAuthHandler(users *service.UserService, issuer *auth.TokenIssuer) *AuthHandler {
	return &AuthHandler{users: users, issuer: issuer}
}

// 请求体：注册
type RegisterRequest struct {
	Username string  `json:"username" binding:"required,min=3,max=50"`
	Email    string  `json:"email" binding:"required,email"`
	Password string  `json:"password" binding:"required,min=8"`
	FullName *string `json:"full_name" binding:"omitempty,max=100"`
}

// POST /api/v1/auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "detail": err.Error()})
		return
	}

	u, err := h.users.Register(c.Request.Context(), service.RegisterParams{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		FullName: req.FullName,
	})
	if err != nil {
		if errors.Is(err, service.ErrUsernameTaken) || errors.Is(err, service.ErrEmailTaken) {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "register failed", "detail": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, u)
}

// 请求体：登录，按 OAuth2 password flow 走表单字段
type LoginRequest struct {
	Username string `form:"username" binding:"required"`
	Password string `form:"password" binding:"required"`
}

// POST /api/v1/auth/login/access-token
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "detail": err.Error()})
		return
	}

	u, err := h.users.Authenticate(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidCredentials):
			c.Header("WWW-Authenticate", "Bearer")
			c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		case errors.Is(err, service.ErrUserDisabled):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "login failed", "detail": err.Error()})
		}
		return
	}

	token, err := h.issuer.Issue(u.ID, u.Username, time.Now())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "issue token failed", "detail": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"access_token": token, "token_type": "bearer"})
}

// GET /api/v1/auth/users/me
func (h *AuthHandler) Me(c *gin.Context) {
	u, err := h.users.GetUser(c.Request.Context(), CurrentUserID(c))
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "get user failed", "detail": err.Error()})
		return
	}
	c.JSON(http.StatusOK, u)
}

// 请求体：更新当前用户
type UpdateMeRequest struct {
	Email    *string `json:"email" binding:"omitempty,email"`
	FullName *string `json:"full_name" binding:"omitempty,max=100"`
	Password *string `json:"password" binding:"omitempty,min=8"`
	Disabled *bool   `json:"disabled"`
}

// PUT /api/v1/auth/users/me
func (h *AuthHandler) UpdateMe(c *gin.Context) {
	var req UpdateMeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "detail": err.Error()})
		return
	}

	u, err := h.users.UpdateUser(c.Request.Context(), CurrentUserID(c), service.UpdateUserParams{
		Email:    req.Email,
		FullName: req.FullName,
		Password: req.Password,
		Disabled: req.Disabled,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUserNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		case errors.Is(err, service.ErrEmailTaken):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "update user failed", "detail": err.Error()})
		}
		return
	}
	c.JSON(http.StatusOK, u)
}

// DELETE /api/v1/auth/users/me
func (h *AuthHandler) DeleteMe(c *gin.Context) {
	if err := h.users.DeleteUser(c.Request.Context(), CurrentUserID(c)); err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "delete user failed", "detail": err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}
