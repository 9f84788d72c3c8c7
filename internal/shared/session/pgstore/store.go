// Package pgstore PostgreSQL 会话存储
package pgstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"users-admin/internal/shared/model"
	"users-admin/internal/shared/session"
)

const schema = `
CREATE TABLE IF NOT EXISTS auth_session (
    id INTEGER PRIMARY KEY CHECK (id = 1),
    user_json TEXT NOT NULL,
    token TEXT NOT NULL,
    updated_at TIMESTAMPTZ DEFAULT NOW()
);
`

// Store PostgreSQL 会话存储
type Store struct {
	db *sql.DB
}

// Open 打开 PostgreSQL 会话存储
func Open(databaseURL string) (*Store, error) {
	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(5)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("failed to migrate session schema: %w", err)
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
		 VALUES (1, $1, $2, NOW())
		 ON CONFLICT (id) DO UPDATE SET
		   user_json = EXCLUDED.user_json,
		   token = EXCLUDED.token,
		   updated_at = NOW()`,
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
