package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"csa-reg/internal/api/middleware"
	"csa-reg/pkg/response"
)

// MustGetUserID 从 Gin 上下文中提取管理员 ID。
// JWT 中间件未注入或格式错误时写入 401 响应并返回 false，调用方应直接 return。
func MustGetUserID(c *gin.Context) (int64, bool) {
	s := c.GetString(middleware.CtxUserID)
	id, err := strconv.ParseInt(s, 10, 64)
	if s == "" || err != nil {
		response.Unauthorized(c, 10002, "未认证")
		return 0, false
	}
	return id, true
}

// MustGetToken 提取当前 Token 的 jti 与过期时间
func MustGetToken(c *gin.Context) (string, time.Time, bool) {
	jti := c.GetString(middleware.CtxTokenID)
	exp := c.GetTime(middleware.CtxTokenExp)
	if jti == "" || exp.IsZero() {
		response.Unauthorized(c, 10002, "未认证")
		return "", time.Time{}, false
	}
	return jti, exp, true
}

// parseIDParam 解析路径中的正整数 ID，失败时写入 400
func parseIDParam(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		response.BadRequest(c, 10001, name+" 参数非法")
		return 0, false
	}
	return id, true
}

// bindJSON 绑定请求体；请求体超限时返回 413，其余绑定错误返回 400
func bindJSON(c *gin.Context, obj any) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			response.Error(c, http.StatusRequestEntityTooLarge, 10005, "请求体过大")
			return false
		}
		response.BadRequest(c, 10001, "参数校验失败")
		return false
	}
	return true
}
