// Package session 认证会话持久化抽象接口
//
// 提供 {user, token} 在进程重启间的存取能力。具体实现在子包中：
//   - memory/：进程内实现（测试与无持久化模式）
//   - sqlitestore/：SQLite 单行表（默认持久化后端）
//   - pgstore/：PostgreSQL
//   - redisstore/：Redis 固定 key
//   - etcdstore/：etcd 固定 key
//   - mongostore/：MongoDB 固定 _id 文档
//
// 调用方（appstate.Store）把持久化视为尽力而为：任何错误只记日志。
package session

import (
	"context"

	"users-admin/internal/shared/model"
)

// Record 持久化的会话记录
type Record struct {
	User  *model.AuthUser `json:"user"`
	Token string          `json:"token"`
}

// Store 会话持久化接口
//
// Load 在无记录时返回 (nil, nil)。
type Store interface {
	Load(ctx context.Context) (*Record, error)
	Save(ctx context.Context, rec *Record) error
	Clear(ctx context.Context) error
	Close() error
}
