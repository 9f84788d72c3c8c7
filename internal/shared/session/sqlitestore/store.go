// Package sqlitestore SQLite 会话存储
//
// 单行表实现，适合开发、测试与单机部署，是默认的持久化后端。
package sqlitestore

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	_ "modernc.org/sqlite"

	"users-admin/internal/shared/model"
	"users-admin/internal/shared/session"
)

// schema 建表语句；CHECK 约束保证表里至多一行
const schema = `
CREATE TABLE IF NOT EXISTS auth_session (
    id INTEGER PRIMARY KEY CHECK (id = 1),
    user_json TEXT NOT NULL,
    token TEXT NOT NULL,
    updated_at DATETIME DEFAULT (datetime('now'))
);
`

// Store SQLite 会话存储
type Store struct {
	db *sql.DB
}

// Open 打开 SQLite 会话存储
// dsn 示例: "file:session.db?cache=shared&mode=rwc" 或 ":memory:"
func Open(dsn string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite: %w", err)
	}

	// SQLite 优化设置
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA busy_timeout=5000",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return nil, fmt.Errorf("failed to set pragma %s: %w", p, err)
		}
	}

	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("failed to migrate session schema: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping sqlite: %w", err)
	}

	return &Store{db: db}, nil
}

// Load 读取会话记录；无记录时返回 (nil, nil)
func (s *Store) Load(ctx context.Context) (*session.Record, error) {
	var userJSON, token string
	err := s.db.QueryRowContext(ctx,
		`SELECT user_json, token FROM auth_session WHERE id = 1`,
	).Scan(&userJSON, &token)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	var user model.AuthUser
	if err := json.Unmarshal([]byte(userJSON), &user); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session user: %w", err)
	}
	return &session.Record{User: &user, Token: token}, nil
}

// Save 写入会话记录（upsert 到固定行）
func (s *Store) Save(ctx context.Context, rec *session.Record) error {
	data, err := json.Marshal(rec.User)
	if err != nil {
		return fmt.Errorf("failed to marshal session user: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO auth_session (id, user_json, token, updated_at)
		 VALUES (1, ?, ?, datetime('now'))
		 ON CONFLICT (id) DO UPDATE SET
		   user_json = excluded.user_json,
		   token = excluded.token,
		   updated_at = datetime('now')`,
		string(data), rec.Token,
	)
	if err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

// Clear 删除会话记录
func (s *Store) Clear(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM auth_session WHERE id = 1`)
	if err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return nil
}

// Close 关闭数据库连接
func (s *Store) Close() error {
	return s.db.Close()
}

var _ session.Store = (*Store)(nil)
