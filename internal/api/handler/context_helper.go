package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/medrhouma/Projet-d-integration-sub000/pkg/response"
)

// ctxUserID 由 middleware.JWTAuth 注入
const ctxUserID = "user_id"

// MustGetUserID 从 Gin 上下文中安全提取 user_id。
// 如果 JWT 中间件未正确注入 user_id，返回 false 并写入 401 响应。
// 调用方应在 ok=false 时直接 return。
func MustGetUserID(c *gin.Context) (string, bool) {
	return mustGetString(c, ctxUserID)
}

func mustGetString(c *gin.Context, key string) (string, bool) {
	s := c.GetString(key)
	if s == "" {
		response.Unauthorized(c, 10002, "未认证")
		return "", false
	}
	return s, true
}
