package dto

// ── 认证模块 DTO ──

// RegisterRequest 注册请求（Admin 角色仅限管理员创建）
type RegisterRequest struct {
	FirstName string `json:"firstName" binding:"required,min=1,max=100"`
	LastName  string `json:"lastName"  binding:"omitempty,max=100"`
	Email     string `json:"email"     binding:"required,email"`
	Password  string `json:"password"  binding:"required,min=8,max=72"`
	Role      string `json:"role"      binding:"required,oneof=Student Faculty Admin"`
	USN       string `json:"usn"       binding:"omitempty,max=32"`
}

// LoginRequest 登录请求
type LoginRequest struct {
	Email    string `json:"email"    binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// TokenResponse Token 对响应
type TokenResponse struct {
	AccessToken  string       `json:"accessToken"`
	RefreshToken string       `json:"refreshToken"`
	ExpiresIn    int          `json:"expiresIn"` // Access Token 有效期（秒）
	User         UserResponse `json:"user"`
}

// UserResponse 用户信息响应（脱敏）
type UserResponse struct {
	ID              string   `json:"id"`
	FirstName       string   `json:"firstName"`
	LastName        string   `json:"lastName"`
	FullName        string   `json:"fullName"`
	Email           string   `json:"email"`
	Role            string   `json:"role"`
	USN             string   `json:"usn,omitempty"`
	EnrolledCourses []string `json:"enrolledCourses"`
}
