package appstate

import "fmt"

// Reduce 状态转移函数：(state, action) -> state'
//
// 纯函数：不修改入参，返回新的状态值。所有已知 Action 种类都在
// type switch 中显式处理；Action 是密封接口，default 分支理论上
// 不可达，走到即为包内新增动作却漏写分支的编程错误。
func Reduce(state AppState, action Action) AppState {
	switch a := action.(type) {
	case LoginSuccess:
		state.User = a.User
		state.AuthToken = a.Token
		state.IsAuthenticated = true
		state.IsLoading = false
		state.Error = ""
		return state

	case RegisterSuccess:
		state.User = a.User
		state.AuthToken = a.Token
		state.IsAuthenticated = true
		state.IsLoading = false
		state.Error = ""
		return state

	case Logout:
		state.User = nil
		state.AuthToken = ""
		state.IsAuthenticated = false
		return state

	case SetUser:
		state.User = a.User
		state.Error = ""
		return state

	case ClearUser:
		state.User = nil
		state.AuthToken = ""
		state.IsAuthenticated = false
		return state

	case SetTheme:
		state.Theme = a.Theme
		return state

	case SetLoading:
		state.IsLoading = a.IsLoading
		return state

	case SetError:
		state.Error = a.Message
		state.IsLoading = false
		return state

	default:
		panic(fmt.Sprintf("appstate: unhandled action type %T", action))
	}
}
