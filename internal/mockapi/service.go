// Package mockapi 模拟后端数据服务
//
// 在内存数组上模拟远端后端的延迟与失败模式，覆盖 {User, Post} 两类
// 实体与认证端点。每个操作先挂起一段该操作固定的模拟延迟（300ms-1200ms，
// 区分"贵"与"便宜"的调用），再返回结果或失败。
//
// 设计要点：
//   - Service 是显式实例，没有包级全局状态，测试可各自构造互不污染
//   - 互斥锁串行化全部存取：max(id)+1 的 ID 分配在并行环境下必须有锁保护
//   - 所有返回值都是快照副本，调用方改动结果不会影响存储
//   - 无取消语义：延迟一旦开始，操作必定跑完（成功或失败）
package mockapi

import (
	"context"
	"sync"
	"time"

	"users-admin/internal/shared/model"
	"users-admin/pkg/logging"
)

// 每个操作的固定模拟延迟。不可在调用时配置。
const (
	delayLogin          = 800 * time.Millisecond
	delayRegister       = 1000 * time.Millisecond
	delayValidateToken  = 300 * time.Millisecond
	delayGetUsers       = 800 * time.Millisecond
	delayGetUser        = 500 * time.Millisecond
	delayGetPosts       = 1000 * time.Millisecond
	delayGetPostsByUser = 700 * time.Millisecond
	delayCreateUser     = 1200 * time.Millisecond
	delayUpdateUser     = 800 * time.Millisecond
	delayDeleteUser     = 600 * time.Millisecond
)

// RegisterData 注册输入
type RegisterData struct {
	Name     string     `json:"name"`
	Email    string     `json:"email"`
	Password string     `json:"password"`
	Role     model.Role `json:"role,omitempty"` // 缺省为 RoleUser
}

// Service 模拟数据服务
//
// users/posts 由 Service 独占持有，外部组件不可能绕过操作直接改记录。
type Service struct {
	mu    sync.Mutex
	users []model.User
	posts []model.Post

	delayScale float64
	metrics    *Metrics
	log        *logging.Logger
}

// Option Service 构造选项
type Option func(*Service)

// WithDelayScale 缩放全部模拟延迟（测试用 0 关闭延迟）
// 各操作的延迟本身仍是硬编码，只有实例级缩放可注入。
func WithDelayScale(scale float64) Option {
	return func(s *Service) { s.delayScale = scale }
}

// WithMetrics 启用 Prometheus 指标
func WithMetrics(m *Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithLogger 指定日志器
func WithLogger(l *logging.Logger) Option {
	return func(s *Service) { s.log = l }
}

// WithSeed 替换默认种子数据
func WithSeed(users []model.User, posts []model.Post) Option {
	return func(s *Service) {
		s.users = append([]model.User(nil), users...)
		s.posts = append([]model.Post(nil), posts...)
	}
}

// NewService 创建模拟数据服务（默认带上游的 5 用户/8 帖子种子）
func NewService(opts ...Option) *Service {
	s := &Service{
		users:      defaultUsers(),
		posts:      defaultPosts(),
		delayScale: 1,
		log:        logging.Default("mockapi"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// wait 挂起模拟延迟
//
// 刻意不监听 ctx：延迟一旦开始，操作总会跑到结果（无取消语义）。
// ctx 仅作为阻塞操作的惯例参数保留给调用方传递请求信息。
func (s *Service) wait(d time.Duration) {
	if s.delayScale <= 0 {
		return
	}
	time.Sleep(time.Duration(float64(d) * s.delayScale))
}

// ============================================================================
// 认证端点
// ============================================================================

// Login 按 (email, password) 精确匹配查找用户
//
// 无匹配时返回 ErrInvalidCredentials。成功时返回剥离密码的用户副本
// 与一枚新生成的令牌。
func (s *Service) Login(ctx context.Context, email, password string) (resp *model.AuthResponse, err error) {
	start := time.Now()
	defer func() {
		s.metrics.observe("login", start, err)
		s.log.OpLog("login", time.Since(start), err)
	}()

	s.wait(delayLogin)

	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.users {
		u := &s.users[i]
		if u.Email == email && u.Password == password {
			return &model.AuthResponse{User: u.Sanitize(), Token: newToken()}, nil
		}
	}
	return nil, ErrInvalidCredentials
}

// Register 注册新用户
//
// 邮箱已存在（精确匹配）时返回 ErrDuplicateEmail。新 ID 为 max(现有 ID)+1，
// 空库从 1 开始。Role 缺省为 RoleUser。
func (s *Service) Register(ctx context.Context, data RegisterData) (resp *model.AuthResponse, err error) {
	start := time.Now()
	defer func() {
		s.metrics.observe("register", start, err)
		s.log.OpLog("register", time.Since(start), err)
	}()

	s.wait(delayRegister)

	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.users {
		if s.users[i].Email == data.Email {
			return nil, ErrDuplicateEmail
		}
	}

	role := data.Role
	if role == "" {
		role = model.RoleUser
	}

	user := model.User{
		ID:       s.nextIDLocked(),
		Name:     data.Name,
		Email:    data.Email,
		Role:     role,
		Password: data.Password,
	}
	s.users = append(s.users, user)

	return &model.AuthResponse{User: user.Sanitize(), Token: newToken()}, nil
}

// ValidateToken 校验 mock 令牌格式并返回哨兵用户
//
// 令牌为空或缺少 TokenPrefix 前缀时返回 ErrInvalidToken。注意：这里
// 不校验令牌是否属于签发它的会话，任何格式合法的令牌都返回插入序
// 首位的用户。上游就是这个 mock 行为，刻意原样保留（见 DESIGN.md）。
func (s *Service) ValidateToken(ctx context.Context, token string) (user *model.AuthUser, err error) {
	start := time.Now()
	defer func() {
		s.metrics.observe("validate_token", start, err)
		s.log.OpLog("validate_token", time.Since(start), err)
	}()

	s.wait(delayValidateToken)

	if token == "" || len(token) < len(TokenPrefix) || token[:len(TokenPrefix)] != TokenPrefix {
		return nil, ErrInvalidToken
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.users) == 0 {
		return nil, errUserNotFound(1)
	}
	return s.users[0].Sanitize(), nil
}

// ============================================================================
// User 操作
// ============================================================================

// GetUsers 返回全部用户的快照（剥离密码，保持插入顺序）
func (s *Service) GetUsers(ctx context.Context) (users []*model.AuthUser, err error) {
	start := time.Now()
	defer func() {
		s.metrics.observe("get_users", start, err)
		s.log.OpLog("get_users", time.Since(start), err)
	}()

	s.wait(delayGetUsers)

	s.mu.Lock()
	defer s.mu.Unlock()

	users = make([]*model.AuthUser, 0, len(s.users))
	for i := range s.users {
		users = append(users, s.users[i].Sanitize())
	}
	return users, nil
}

// GetUser 按 ID 查找用户，不存在时返回 NotFound
func (s *Service) GetUser(ctx context.Context, id int) (user *model.AuthUser, err error) {
	start := time.Now()
	defer func() {
		s.metrics.observe("get_user", start, err)
		s.log.OpLog("get_user", time.Since(start), err)
	}()

	s.wait(delayGetUser)

	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.users {
		if s.users[i].ID == id {
			return s.users[i].Sanitize(), nil
		}
	}
	return nil, errUserNotFound(id)
}

// CreateUser 创建用户并返回存储后的记录（剥离密码）
//
// ID 分配规则与 Register 相同。
func (s *Service) CreateUser(ctx context.Context, data model.NewUserData) (user *model.AuthUser, err error) {
	start := time.Now()
	defer func() {
		s.metrics.observe("create_user", start, err)
		s.log.OpLog("create_user", time.Since(start), err)
	}()

	s.wait(delayCreateUser)

	s.mu.Lock()
	defer s.mu.Unlock()

	u := model.User{
		ID:       s.nextIDLocked(),
		Name:     data.Name,
		Email:    data.Email,
		Role:     data.Role,
		Password: data.Password,
	}
	s.users = append(s.users, u)
	return u.Sanitize(), nil
}

// UpdateUser 合并部分字段到已有记录
//
// 只有 patch 中非 nil 的字段会被写入，其余字段保持不变。
// 记录不存在时返回 NotFound。
func (s *Service) UpdateUser(ctx context.Context, id int, patch model.UserPatch) (user *model.AuthUser, err error) {
	start := time.Now()
	defer func() {
		s.metrics.observe("update_user", start, err)
		s.log.OpLog("update_user", time.Since(start), err)
	}()

	s.wait(delayUpdateUser)

	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.users {
		if s.users[i].ID != id {
			continue
		}
		if patch.Name != nil {
			s.users[i].Name = *patch.Name
		}
		if patch.Email != nil {
			s.users[i].Email = *patch.Email
		}
		if patch.Role != nil {
			s.users[i].Role = *patch.Role
		}
		if patch.Password != nil {
			s.users[i].Password = *patch.Password
		}
		return s.users[i].Sanitize(), nil
	}
	return nil, errUserNotFound(id)
}

// DeleteUser 删除用户，不存在时返回 NotFound
func (s *Service) DeleteUser(ctx context.Context, id int) (err error) {
	start := time.Now()
	defer func() {
		s.metrics.observe("delete_user", start, err)
		s.log.OpLog("delete_user", time.Since(start), err)
	}()

	s.wait(delayDeleteUser)

	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.users {
		if s.users[i].ID == id {
			s.users = append(s.users[:i], s.users[i+1:]...)
			return nil
		}
	}
	return errUserNotFound(id)
}

// ============================================================================
// Post 操作
// ============================================================================

// GetPosts 返回全部帖子的快照（插入顺序）
func (s *Service) GetPosts(ctx context.Context) (posts []model.Post, err error) {
	start := time.Now()
	defer func() {
		s.metrics.observe("get_posts", start, err)
		s.log.OpLog("get_posts", time.Since(start), err)
	}()

	s.wait(delayGetPosts)

	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]model.Post(nil), s.posts...), nil
}

// GetPostsByUser 返回指定用户的帖子（插入顺序）
//
// 没有匹配帖子时返回空切片，不是错误。
func (s *Service) GetPostsByUser(ctx context.Context, userID int) (posts []model.Post, err error) {
	start := time.Now()
	defer func() {
		s.metrics.observe("get_posts_by_user", start, err)
		s.log.OpLog("get_posts_by_user", time.Since(start), err)
	}()

	s.wait(delayGetPostsByUser)

	s.mu.Lock()
	defer s.mu.Unlock()

	posts = make([]model.Post, 0)
	for _, p := range s.posts {
		if p.UserID == userID {
			posts = append(posts, p)
		}
	}
	return posts, nil
}

// nextIDLocked 计算下一个用户 ID：max(现有 ID)+1，空库返回 1
//
// 调用方必须持有 s.mu。
func (s *Service) nextIDLocked() int {
	maxID := 0
	for i := range s.users {
		if s.users[i].ID > maxID {
			maxID = s.users[i].ID
		}
	}
	return maxID + 1
}
