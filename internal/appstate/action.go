package appstate

import "users-admin/internal/shared/model"

// Action 状态转移动作（密封和类型）
//
// 接口带未导出的标记方法，包外无法定义新的 Action 种类，
// 未知动作在编译期即被拒绝，不存在运行时 default 分支吞掉动作的问题。
type Action interface {
	isAction()
}

// LoginSuccess 登录成功：写入用户与令牌，清空错误与加载标志
type LoginSuccess struct {
	User  *model.AuthUser
	Token string
}

// RegisterSuccess 注册成功：语义与 LoginSuccess 相同
type RegisterSuccess struct {
	User  *model.AuthUser
	Token string
}

// Logout 登出：清空用户与令牌
type Logout struct{}

// SetUser 替换当前用户并清空错误（不触碰令牌）
type SetUser struct {
	User *model.AuthUser
}

// ClearUser 清空用户、令牌与认证标志
type ClearUser struct{}

// SetTheme 切换主题
type SetTheme struct {
	Theme Theme
}

// SetLoading 设置加载标志
type SetLoading struct {
	IsLoading bool
}

// SetError 记录错误信息并结束加载；Message 为空串表示清除错误
type SetError struct {
	Message string
}

func (LoginSuccess) isAction()    {}
func (RegisterSuccess) isAction() {}
func (Logout) isAction()          {}
func (SetUser) isAction()         {}
func (ClearUser) isAction()       {}
func (SetTheme) isAction()        {}
func (SetLoading) isAction()      {}
func (SetError) isAction()        {}
