package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/VijayVPatil13/Digital-Lab-Records/internal/service"
	"github.com/VijayVPatil13/Digital-Lab-Records/pkg/response"
)

// MustGetActor 从 Gin 上下文中安全提取 (user_id, role)。
// 如果 JWT 中间件未正确注入身份，返回 false 并写入 401 响应。
// 调用方应在 ok=false 时直接 return。
func MustGetActor(c *gin.Context) (service.Actor, bool) {
	userID := c.GetString("user_id")
	role := c.GetString("role")
	if userID == "" || role == "" {
		response.Unauthorized(c, 10002, "Authentication required.")
		return service.Actor{}, false
	}
	return service.Actor{UserID: userID, Role: role}, true
}

// optionalActor 公开接口上携带了身份时返回调用方，否则 nil
func optionalActor(c *gin.Context) *service.Actor {
	userID := c.GetString("user_id")
	role := c.GetString("role")
	if userID == "" || role == "" {
		return nil
	}
	return &service.Actor{UserID: userID, Role: role}
}

// tokenRemaining 当前 Access Token 的 jti 与剩余有效期
func tokenRemaining(c *gin.Context) (string, time.Duration) {
	jti := c.GetString("token_jti")
	exp := c.GetTime("token_exp")
	if exp.IsZero() {
		return jti, 0
	}
	return jti, time.Until(exp)
}

// pathUUID 读取并校验 UUID 路径参数；格式非法时写入 400
func pathUUID(c *gin.Context, name string) (string, bool) {
	id := c.Param(name)
	if _, err := uuid.Parse(id); err != nil {
		response.BadRequest(c, 10001, "Invalid "+name+".")
		return "", false
	}
	return id, true
}
