// Package model 定义核心数据模型
package model

// Role 用户角色
type Role string

const (
	RoleAdmin  Role = "Admin"
	RoleEditor Role = "Editor"
	RoleUser   Role = "User"
)

// Valid 判断角色是否为已知枚举值
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleEditor, RoleUser:
		return true
	}
	return false
}

// User 用户记录（服务内部形态）
//
// Password 仅在模拟服务内部使用，任何返回给调用方的值都必须先经过
// Sanitize 剥离。密码为明文存储，这是 mock 契约的一部分，不是安全设计。
type User struct {
	ID       int    `json:"id" db:"id"`
	Name     string `json:"name" db:"name"`
	Email    string `json:"email" db:"email"`
	Role     Role   `json:"role" db:"role"`
	Password string `json:"-" db:"password"` // never expose in JSON
}

// Sanitize 返回剥离密码后的对外形态
func (u *User) Sanitize() *AuthUser {
	return &AuthUser{
		ID:    u.ID,
		Name:  u.Name,
		Email: u.Email,
		Role:  u.Role,
	}
}

// AuthUser 对外暴露的用户形态（无密码字段）
type AuthUser struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  Role   `json:"role"`
}

// AuthResponse 登录/注册的返回值
type AuthResponse struct {
	User  *AuthUser `json:"user"`
	Token string    `json:"token"`
}

// UserPatch 部分更新：nil 字段表示不修改
type UserPatch struct {
	Name     *string `json:"name,omitempty"`
	Email    *string `json:"email,omitempty"`
	Role     *Role   `json:"role,omitempty"`
	Password *string `json:"password,omitempty"`
}

// NewUserData 创建用户的输入（ID 由服务分配）
type NewUserData struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Role     Role   `json:"role"`
	Password string `json:"password,omitempty"`
}
