// Package memory 进程内会话存储（用于测试与无持久化模式）
package memory

import (
	"context"
	"sync"

	"users-admin/internal/shared/session"
)

// Store 进程内实现
type Store struct {
	mu  sync.Mutex
	rec *session.Record
}

// NewStore 创建进程内会话存储
func NewStore() *Store {
	return &Store{}
}

// Load 读取会话记录；无记录时返回 (nil, nil)
func (s *Store) Load(ctx context.Context) (*session.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.rec == nil {
		return nil, nil
	}
	cp := *s.rec
	return &cp, nil
}

// Save 写入会话记录
func (s *Store) Save(ctx context.Context, rec *session.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if rec == nil {
		s.rec = nil
		return nil
	}
	cp := *rec
	s.rec = &cp
	return nil
}

// Clear 删除会话记录
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rec = nil
	return nil
}

// Close 关闭存储
func (s *Store) Close() error {
	return nil
}

var _ session.Store = (*Store)(nil)
