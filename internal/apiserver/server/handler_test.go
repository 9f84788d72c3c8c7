package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"users-admin/internal/appstate"
	"users-admin/internal/mockapi"
	"users-admin/internal/shared/model"
)

// newTestHandler 零延迟服务 + 内存状态容器
func newTestHandler(t *testing.T) (*Handler, http.Handler) {
	t.Helper()
	svc := mockapi.NewService(mockapi.WithDelayScale(0))
	state := appstate.NewStore()
	h := NewHandler(svc, state, nil)
	return h, h.Router()
}

// doJSON 发送 JSON 请求并返回响应记录器
func doJSON(t *testing.T, router http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&v))
	return v
}

// TestHandler_Login 登录成功返回用户与令牌，并写入全局状态
func TestHandler_Login(t *testing.T) {
	h, router := newTestHandler(t)

	rec := doJSON(t, router, http.MethodPost, "/api/v1/auth/login",
		map[string]string{"email": "john@example.com", "password": "password123"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	resp := decodeBody[model.AuthResponse](t, rec)
	assert.Equal(t, "john@example.com", resp.User.Email)
	assert.NotEmpty(t, resp.Token)

	state := h.state.State()
	assert.True(t, state.IsAuthenticated)
	assert.Equal(t, resp.Token, state.AuthToken)
	assert.False(t, state.IsLoading)
}

// TestHandler_LoginFailure 凭据错误返回 401 并把错误写入状态
func TestHandler_LoginFailure(t *testing.T) {
	h, router := newTestHandler(t)

	rec := doJSON(t, router, http.MethodPost, "/api/v1/auth/login",
		map[string]string{"email": "john@example.com", "password": "nope"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	state := h.state.State()
	assert.False(t, state.IsAuthenticated)
	assert.Contains(t, state.Error, "invalid email or password")
	assert.False(t, state.IsLoading, "错误动作必须结束加载态")
}

// TestHandler_LoginBadRequest 缺字段直接 400，不触发业务调用
func TestHandler_LoginBadRequest(t *testing.T) {
	_, router := newTestHandler(t)

	rec := doJSON(t, router, http.MethodPost, "/api/v1/auth/login",
		map[string]string{"email": "john@example.com"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

// TestHandler_Register 注册返回 201，重复邮箱 409
func TestHandler_Register(t *testing.T) {
	h, router := newTestHandler(t)

	rec := doJSON(t, router, http.MethodPost, "/api/v1/auth/register",
		map[string]string{"name": "Eve", "email": "eve@example.com", "password": "pw"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	resp := decodeBody[model.AuthResponse](t, rec)
	assert.Equal(t, 6, resp.User.ID)
	assert.Equal(t, model.RoleUser, resp.User.Role)
	assert.True(t, h.state.State().IsAuthenticated)

	rec = doJSON(t, router, http.MethodPost, "/api/v1/auth/register",
		map[string]string{"name": "Eve2", "email": "eve@example.com", "password": "pw"})
	assert.Equal(t, http.StatusConflict, rec.Code)
}

// TestHandler_Logout 登出清除认证态
func TestHandler_Logout(t *testing.T) {
	h, router := newTestHandler(t)

	doJSON(t, router, http.MethodPost, "/api/v1/auth/login",
		map[string]string{"email": "john@example.com", "password": "password123"})
	require.True(t, h.state.State().IsAuthenticated)

	rec := doJSON(t, router, http.MethodPost, "/api/v1/auth/logout", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.False(t, h.state.State().IsAuthenticated)
	assert.Empty(t, h.state.State().AuthToken)
}

// TestHandler_Me 合法令牌返回用户，缺失/非法令牌 401
func TestHandler_Me(t *testing.T) {
	_, router := newTestHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil)
	req.Header.Set("Authorization", "Bearer "+mockapi.TokenPrefix+"abc")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	user := decodeBody[model.AuthUser](t, rec)
	assert.Equal(t, 1, user.ID)

	rec = doJSON(t, router, http.MethodGet, "/api/v1/auth/me", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

// TestHandler_UsersCRUD 用户增删改查全链路
func TestHandler_UsersCRUD(t *testing.T) {
	_, router := newTestHandler(t)

	// 列表
	rec := doJSON(t, router, http.MethodGet, "/api/v1/users", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	users := decodeBody[[]model.AuthUser](t, rec)
	assert.Len(t, users, 5)

	// 创建
	rec = doJSON(t, router, http.MethodPost, "/api/v1/users",
		map[string]string{"name": "New User", "email": "new@example.com"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decodeBody[model.AuthUser](t, rec)
	assert.Equal(t, 6, created.ID)
	assert.Equal(t, model.RoleUser, created.Role, "缺省角色为 User")

	// 按 ID 读取
	rec = doJSON(t, router, http.MethodGet, "/api/v1/users/6", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	// 部分更新
	rec = doJSON(t, router, http.MethodPatch, "/api/v1/users/6",
		map[string]string{"name": "Renamed"})
	require.Equal(t, http.StatusOK, rec.Code)
	updated := decodeBody[model.AuthUser](t, rec)
	assert.Equal(t, "Renamed", updated.Name)
	assert.Equal(t, "new@example.com", updated.Email)

	// 删除
	rec = doJSON(t, router, http.MethodDelete, "/api/v1/users/6", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/api/v1/users/6", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

// TestHandler_UserErrors 错误路径的状态码映射
func TestHandler_UserErrors(t *testing.T) {
	_, router := newTestHandler(t)

	tests := []struct {
		name   string
		method string
		path   string
		body   any
		status int
	}{
		{"get unknown user", http.MethodGet, "/api/v1/users/999", nil, http.StatusNotFound},
		{"delete unknown user", http.MethodDelete, "/api/v1/users/999", nil, http.StatusNotFound},
		{"patch unknown user", http.MethodPatch, "/api/v1/users/999", map[string]string{"name": "x"}, http.StatusNotFound},
		{"non-numeric id", http.MethodGet, "/api/v1/users/abc", nil, http.StatusBadRequest},
		{"create without email", http.MethodPost, "/api/v1/users", map[string]string{"name": "x"}, http.StatusBadRequest},
		{"create with bad role", http.MethodPost, "/api/v1/users", map[string]string{"name": "x", "email": "x@example.com", "role": "Root"}, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doJSON(t, router, tt.method, tt.path, tt.body)
			assert.Equal(t, tt.status, rec.Code, rec.Body.String())
		})
	}
}

// TestHandler_Posts 帖子列表与按作者过滤
func TestHandler_Posts(t *testing.T) {
	_, router := newTestHandler(t)

	rec := doJSON(t, router, http.MethodGet, "/api/v1/posts", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	posts := decodeBody[[]model.Post](t, rec)
	assert.Len(t, posts, 8)

	rec = doJSON(t, router, http.MethodGet, "/api/v1/users/2/posts", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	posts = decodeBody[[]model.Post](t, rec)
	require.Len(t, posts, 2)
	for _, p := range posts {
		assert.Equal(t, 2, p.UserID)
	}

	// 没有帖子的作者返回空数组，不是 404
	rec = doJSON(t, router, http.MethodGet, "/api/v1/users/999/posts", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, "[]", rec.Body.String())
}

// TestHandler_State 状态查询与主题切换
func TestHandler_State(t *testing.T) {
	_, router := newTestHandler(t)

	rec := doJSON(t, router, http.MethodGet, "/api/v1/state", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	state := decodeBody[appstate.AppState](t, rec)
	assert.Equal(t, appstate.ThemeLight, state.Theme)
	assert.False(t, state.IsAuthenticated)

	rec = doJSON(t, router, http.MethodPut, "/api/v1/state/theme",
		map[string]string{"theme": "dark"})
	require.Equal(t, http.StatusOK, rec.Code)
	state = decodeBody[appstate.AppState](t, rec)
	assert.Equal(t, appstate.ThemeDark, state.Theme)

	rec = doJSON(t, router, http.MethodPut, "/api/v1/state/theme",
		map[string]string{"theme": "sepia"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

// TestHandler_StateWebSocket 连接即收到当前状态，之后每次 dispatch 都推送新状态
func TestHandler_StateWebSocket(t *testing.T) {
	h, router := newTestHandler(t)

	srv := httptest.NewServer(router)
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/state"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	var msg struct {
		Type string            `json:"type"`
		Data appstate.AppState `json:"data"`
	}

	// 首条消息：连接时的当前状态
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, "state", msg.Type)
	assert.Equal(t, appstate.ThemeLight, msg.Data.Theme)
	assert.False(t, msg.Data.IsAuthenticated)

	// dispatch 之后推送新状态
	h.state.Dispatch(appstate.SetTheme{Theme: appstate.ThemeDark})

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, "state", msg.Type)
	assert.Equal(t, appstate.ThemeDark, msg.Data.Theme)
}

// TestHandler_StateWebSocketDisconnect 客户端断开期间的 dispatch 不得影响服务
func TestHandler_StateWebSocketDisconnect(t *testing.T) {
	h, router := newTestHandler(t)

	srv := httptest.NewServer(router)
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/state"
	for i := 0; i < 20; i++ {
		conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
		require.NoError(t, err)
		conn.Close()
		h.state.Dispatch(appstate.SetLoading{IsLoading: i%2 == 0})
	}

	// 服务仍然健康
	rec := doJSON(t, router, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

// TestHandler_Health 健康检查
func TestHandler_Health(t *testing.T) {
	_, router := newTestHandler(t)

	rec := doJSON(t, router, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}
