package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/VijayVPatil13/Digital-Lab-Records/internal/dto"
	"github.com/VijayVPatil13/Digital-Lab-Records/internal/service"
	"github.com/VijayVPatil13/Digital-Lab-Records/pkg/response"
)

// AuthHandler 认证模块 HTTP 处理器
type AuthHandler struct {
	authSvc service.AuthService
}

// NewAuthHandler 创建 AuthHandler
func NewAuthHandler(authSvc service.AuthService) *AuthHandler {
	return &AuthHandler{authSvc: authSvc}
}

// Register 注册账号
// POST /api/v1/auth/register（公开，仅 Student/Faculty）
// POST /api/v1/admin/users（Admin，可创建 Admin）
func (h *AuthHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	user, err := h.authSvc.Register(c.Request.Context(), &req, optionalActor(c))
	if err != nil {
		writeError(c, err)
		return
	}

	response.Created(c, user)
}

// Login 用户登录
// POST /api/v1/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	result, err := h.authSvc.Login(c.Request.Context(), &req)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			response.Error(c, http.StatusUnauthorized, 11003, "Invalid email or password.")
			return
		}
		writeError(c, err)
		return
	}

	response.OK(c, result)
}

// Logout 用户登出：当前 Access Token 加入黑名单
// POST /api/v1/auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	jti, remaining := tokenRemaining(c)
	if jti == "" {
		response.Unauthorized(c, 10002, "Authentication required.")
		return
	}

	if err := h.authSvc.Logout(c.Request.Context(), jti, remaining); err != nil {
		writeError(c, err)
		return
	}

	response.OK(c, dto.MessageResponse{Message: "Logged out."})
}

// Me 当前用户信息（含已选课程缓存）
// GET /api/v1/auth/me
func (h *AuthHandler) Me(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	user, err := h.authSvc.Me(c.Request.Context(), actor)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			response.Unauthorized(c, 10002, "Account no longer exists.")
			return
		}
		writeError(c, err)
		return
	}

	response.OK(c, user)
}
