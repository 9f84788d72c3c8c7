// Package redisstore Redis 会话存储
package redisstore

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"users-admin/internal/shared/session"
)

// Key 会话记录的固定 key
const Key = "usersadmin:auth_session"

// Store Redis 会话存储
type Store struct {
	client *redis.Client
}

// Open 从 URL 创建 Redis 会话存储
func Open(redisURL string) (*Store, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	log.Printf("[Redis] Connected to %s", opts.Addr)
	return &Store{client: client}, nil
}

// NewStoreFromClient 复用已有连接创建会话存储
func NewStoreFromClient(client *redis.Client) *Store {
	return &Store{client: client}
}

// Load 读取会话记录；无记录时返回 (nil, nil)
func (s *Store) Load(ctx context.Context) (*session.Record, error) {
	data, err := s.client.Get(ctx, Key).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	var rec session.Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}
	return &rec, nil
}

// Save 写入会话记录
func (s *Store) Save(ctx context.Context, rec *session.Record) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	if err := s.client.Set(ctx, Key, data, 0).Err(); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

// Clear 删除会话记录
func (s *Store) Clear(ctx context.Context) error {
	if err := s.client.Del(ctx, Key).Err(); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return nil
}

// Close 关闭连接
func (s *Store) Close() error {
	return s.client.Close()
}

var _ session.Store = (*Store)(nil)
