package dto

// ── 认证模块 DTO ──

// LoginRequest 管理员登录请求
type LoginRequest struct {
	Username string `json:"username" binding:"required,max=64"`
	Password string `json:"password" binding:"required"`
}

// TokenResponse 登录成功响应
type TokenResponse struct {
	AccessToken string        `json:"access_token"`
	ExpiresIn   int           `json:"expires_in"` // Access Token 有效期（秒）
	Admin       AdminResponse `json:"admin"`
}

// AdminResponse 管理员信息（登录页下拉列表）
type AdminResponse struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}
