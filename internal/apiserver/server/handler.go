package server

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"users-admin/internal/appstate"
	"users-admin/internal/mockapi"
	"users-admin/internal/shared/model"
	"users-admin/pkg/logging"
)

// Handler API 处理器
//
// 控制流与被排除的前端一致：handler 调用模拟服务，再根据结果向状态
// 容器 dispatch 动作。状态容器从不直接调用数据服务，两者只在这一层组合。
type Handler struct {
	svc   *mockapi.Service
	state *appstate.Store
	log   *logging.Logger
}

// NewHandler 创建 API 处理器
func NewHandler(svc *mockapi.Service, state *appstate.Store, log *logging.Logger) *Handler {
	if log == nil {
		log = logging.Default("apiserver")
	}
	return &Handler{svc: svc, state: state, log: log}
}

// Router 构建路由
func (h *Handler) Router() http.Handler {
	mux := http.NewServeMux()

	// 认证
	mux.HandleFunc("POST /api/v1/auth/login", h.Login)
	mux.HandleFunc("POST /api/v1/auth/register", h.Register)
	mux.HandleFunc("POST /api/v1/auth/logout", h.Logout)
	mux.HandleFunc("GET /api/v1/auth/me", h.Me)

	// 用户
	mux.HandleFunc("GET /api/v1/users", h.ListUsers)
	mux.HandleFunc("POST /api/v1/users", h.CreateUser)
	mux.HandleFunc("GET /api/v1/users/{id}", h.GetUser)
	mux.HandleFunc("PATCH /api/v1/users/{id}", h.UpdateUser)
	mux.HandleFunc("DELETE /api/v1/users/{id}", h.DeleteUser)
	mux.HandleFunc("GET /api/v1/users/{id}/posts", h.ListPostsByUser)

	// 帖子
	mux.HandleFunc("GET /api/v1/posts", h.ListPosts)

	// 全局状态
	mux.HandleFunc("GET /api/v1/state", h.GetState)
	mux.HandleFunc("PUT /api/v1/state/theme", h.SetTheme)
	mux.HandleFunc("GET /ws/state", h.StateWebSocket)

	// 运维
	mux.HandleFunc("GET /health", h.Health)
	mux.Handle("GET /metrics", promhttp.Handler())

	return mux
}

// ============================================================================
// 请求/响应类型
// ============================================================================

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type registerRequest struct {
	Name     string     `json:"name"`
	Email    string     `json:"email"`
	Password string     `json:"password"`
	Role     model.Role `json:"role,omitempty"`
}

type themeRequest struct {
	Theme appstate.Theme `json:"theme"`
}

// ============================================================================
// 认证
// ============================================================================

// Login 登录
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "email and password are required")
		return
	}

	h.state.Dispatch(appstate.SetLoading{IsLoading: true})

	resp, err := h.svc.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		h.state.Dispatch(appstate.SetError{Message: err.Error()})
		writeDomainError(w, err)
		return
	}

	h.state.Dispatch(appstate.LoginSuccess{User: resp.User, Token: resp.Token})
	h.log.Info("user logged in", "email", resp.User.Email)
	writeJSON(w, http.StatusOK, resp)
}

// Register 注册
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Name == "" || req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "name, email, password are required")
		return
	}
	if req.Role != "" && !req.Role.Valid() {
		writeError(w, http.StatusBadRequest, "unknown role")
		return
	}

	h.state.Dispatch(appstate.SetLoading{IsLoading: true})

	resp, err := h.svc.Register(r.Context(), mockapi.RegisterData{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Role:     req.Role,
	})
	if err != nil {
		h.state.Dispatch(appstate.SetError{Message: err.Error()})
		writeDomainError(w, err)
		return
	}

	h.state.Dispatch(appstate.RegisterSuccess{User: resp.User, Token: resp.Token})
	h.log.Info("user registered", "email", resp.User.Email)
	writeJSON(w, http.StatusCreated, resp)
}

// Logout 登出
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	h.state.Dispatch(appstate.Logout{})
	w.WriteHeader(http.StatusNoContent)
}

// Me 按令牌返回当前用户
//
// 令牌校验沿用模拟服务的哨兵行为：只检查格式，不检查归属。
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	token := bearerToken(r)

	user, err := h.svc.ValidateToken(r.Context(), token)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	h.state.Dispatch(appstate.SetUser{User: user})
	writeJSON(w, http.StatusOK, user)
}

// ============================================================================
// 用户
// ============================================================================

// ListUsers 列出全部用户
func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.svc.GetUsers(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, users)
}

// CreateUser 创建用户
func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req model.NewUserData
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Name == "" || req.Email == "" {
		writeError(w, http.StatusBadRequest, "name and email are required")
		return
	}
	if req.Role == "" {
		req.Role = model.RoleUser
	}
	if !req.Role.Valid() {
		writeError(w, http.StatusBadRequest, "unknown role")
		return
	}

	user, err := h.svc.CreateUser(r.Context(), req)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, user)
}

// GetUser 按 ID 获取用户
func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	user, err := h.svc.GetUser(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// UpdateUser 部分更新用户
func (h *Handler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var patch model.UserPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if patch.Role != nil && !patch.Role.Valid() {
		writeError(w, http.StatusBadRequest, "unknown role")
		return
	}

	user, err := h.svc.UpdateUser(r.Context(), id, patch)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// DeleteUser 删除用户
func (h *Handler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	if err := h.svc.DeleteUser(r.Context(), id); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListPostsByUser 列出指定用户的帖子
func (h *Handler) ListPostsByUser(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	posts, err := h.svc.GetPostsByUser(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, posts)
}

// ============================================================================
// 帖子
// ============================================================================

// ListPosts 列出全部帖子
func (h *Handler) ListPosts(w http.ResponseWriter, r *http.Request) {
	posts, err := h.svc.GetPosts(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, posts)
}

// ============================================================================
// 全局状态
// ============================================================================

// GetState 返回当前全局状态快照
func (h *Handler) GetState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.state.State())
}

// SetTheme 切换主题
func (h *Handler) SetTheme(w http.ResponseWriter, r *http.Request) {
	var req themeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Theme != appstate.ThemeLight && req.Theme != appstate.ThemeDark {
		writeError(w, http.StatusBadRequest, "theme must be light or dark")
		return
	}

	next := h.state.Dispatch(appstate.SetTheme{Theme: req.Theme})
	writeJSON(w, http.StatusOK, next)
}

// Health 健康检查
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// ============================================================================
// 辅助函数
// ============================================================================

// pathID 解析路径参数 {id}；非法时写出 400 并返回 false
func pathID(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid user id")
		return 0, false
	}
	return id, true
}

// bearerToken 提取 Authorization: Bearer 令牌
func bearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	if after, ok := strings.CutPrefix(auth, "Bearer "); ok {
		return after
	}
	return ""
}
