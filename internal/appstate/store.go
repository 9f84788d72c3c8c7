package appstate

import (
	"context"
	"sync"
	"time"

	"users-admin/internal/shared/model"
	"users-admin/internal/shared/session"
	"users-admin/pkg/logging"
)

// persistTimeout 单次持久化写入的超时
const persistTimeout = 3 * time.Second

// subscriberBuffer 订阅 channel 的缓冲大小
// 慢订阅者的通知会被丢弃（订阅者随后可用 State() 补读最新状态）
const subscriberBuffer = 16

// Store 全局状态容器
//
// 单写者/多读者：Dispatch 持锁串行应用 Reduce，State 返回当前快照，
// 所有订阅者在每次 dispatch 后收到同一份新状态。
type Store struct {
	mu      sync.RWMutex
	state   AppState
	subs    map[int]chan AppState
	nextSub int

	// 认证字段透写；persistMu 串行化全部持久化调用，
	// lastUser/lastToken 记录最近一次持久化的内容（受 persistMu 保护）
	sessions  session.Store
	persistMu sync.Mutex
	lastUser  *model.AuthUser
	lastToken string

	log *logging.Logger
}

// Option Store 构造选项
type Option func(*Store)

// WithSessionStore 启用认证字段持久化
func WithSessionStore(s session.Store) Option {
	return func(st *Store) { st.sessions = s }
}

// WithLogger 指定日志器
func WithLogger(l *logging.Logger) Option {
	return func(st *Store) { st.log = l }
}

// NewStore 创建状态容器
//
// 配置了 session.Store 时会尝试从中恢复 {user, token}；
// 读不到或读失败都退回初始状态，错误只记日志。
func NewStore(opts ...Option) *Store {
	st := &Store{
		state: InitialState(),
		subs:  make(map[int]chan AppState),
		log:   logging.Default("appstate"),
	}
	for _, opt := range opts {
		opt(st)
	}

	if st.sessions != nil {
		ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
		defer cancel()

		rec, err := st.sessions.Load(ctx)
		switch {
		case err != nil:
			st.log.Warn("session restore failed", "error", err.Error())
		case rec != nil && rec.Token != "" && rec.User != nil:
			st.state.User = rec.User
			st.state.AuthToken = rec.Token
			st.state.IsAuthenticated = true
			st.lastUser = rec.User
			st.lastToken = rec.Token
			st.log.Info("session restored", "user", rec.User.Email)
		}
	}

	return st
}

// State 返回当前状态快照
func (st *Store) State() AppState {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return st.state
}

// Dispatch 应用一个动作并广播新状态
//
// 转移本身同步完成且不做 I/O；认证字段的持久化在转移之后尽力而为。
func (st *Store) Dispatch(action Action) AppState {
	st.mu.Lock()
	st.state = Reduce(st.state, action)
	next := st.state
	// 持锁发送，与 Subscribe 取消函数里的 close 互斥；
	// 发送是非阻塞的，不会带着锁卡住
	for _, ch := range st.subs {
		select {
		case ch <- next:
		default: // 慢订阅者，丢弃本次通知
		}
	}
	st.mu.Unlock()

	st.persistAuth()
	return next
}

// Subscribe 注册一个状态订阅者
//
// 返回的取消函数幂等；取消后 channel 会被关闭。
func (st *Store) Subscribe() (<-chan AppState, func()) {
	ch := make(chan AppState, subscriberBuffer)

	st.mu.Lock()
	id := st.nextSub
	st.nextSub++
	st.subs[id] = ch
	st.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			// close 与 Dispatch 的持锁发送互斥
			st.mu.Lock()
			delete(st.subs, id)
			close(ch)
			st.mu.Unlock()
		})
	}
	return ch, cancel
}

// persistAuth 认证字段变更时透写到 session.Store
//
// persistMu 串行化全部持久化调用，且每次持锁后重读当前状态：
// 并发 dispatch 下最后完成的写入总是反映最新状态，不会出现
// 旧的登录记录覆盖掉登出。
// 持久化路径不允许向用户暴露失败：错误一律吞掉、只记非致命日志。
func (st *Store) persistAuth() {
	if st.sessions == nil {
		return
	}

	st.persistMu.Lock()
	defer st.persistMu.Unlock()

	state := st.State()
	if state.AuthToken == st.lastToken && authUserEqual(state.User, st.lastUser) {
		return
	}
	st.lastUser = state.User
	st.lastToken = state.AuthToken

	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()

	var err error
	if state.AuthToken == "" && state.User == nil {
		err = st.sessions.Clear(ctx)
	} else {
		err = st.sessions.Save(ctx, &session.Record{User: state.User, Token: state.AuthToken})
	}
	if err != nil {
		st.log.Warn("session persist failed", "error", err.Error())
	}
}

// authUserEqual 比较两个认证用户是否相同
func authUserEqual(a, b *model.AuthUser) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
