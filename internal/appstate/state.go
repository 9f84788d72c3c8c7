// Package appstate 全局应用状态：单写者/多读者的 reducer 状态容器
//
// 设计要点：
//   - AppState 只能通过 Dispatch 提交的 Action 变更（唯一写路径）
//   - 状态转移函数 Reduce 是纯函数：无副作用、无 I/O
//   - 订阅者通过 channel 接收每次 dispatch 后的新状态
//   - 认证相关字段（User/AuthToken）变更时透写到 session.Store，
//     写入失败只记日志，绝不影响状态本身
package appstate

import "users-admin/internal/shared/model"

// Theme 界面主题
type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

// AppState 全局应用状态
//
// 不变量（每次 dispatch 之后恒成立）：
//   - IsAuthenticated == (AuthToken != "")
//   - IsAuthenticated 为 true 时 User != nil
//   - Error != "" 表示上一次操作失败；携带数据的成功 Action 会清空 Error
type AppState struct {
	User            *model.AuthUser `json:"user"`
	IsAuthenticated bool            `json:"isAuthenticated"`
	AuthToken       string          `json:"authToken,omitempty"`
	Theme           Theme           `json:"theme"`
	IsLoading       bool            `json:"isLoading"`
	Error           string          `json:"error,omitempty"`
}

// InitialState 返回初始状态
func InitialState() AppState {
	return AppState{
		User:            nil,
		IsAuthenticated: false,
		AuthToken:       "",
		Theme:           ThemeLight,
		IsLoading:       false,
		Error:           "",
	}
}
