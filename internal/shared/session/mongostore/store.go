// Package mongostore MongoDB 会话存储
package mongostore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"users-admin/internal/shared/model"
	"users-admin/internal/shared/session"
)

// ColSession 会话 Collection 名称
const ColSession = "auth_session"

// docID 单例文档的固定 _id
const docID = "current"

// sessionDoc 存储文档形态
type sessionDoc struct {
	ID    string          `bson:"_id"`
	User  *model.AuthUser `bson:"user"`
	Token string          `bson:"token"`
}

// Store MongoDB 会话存储
type Store struct {
	client *mongo.Client
	col    *mongo.Collection
}

// Open 创建 MongoDB 会话存储
//
// uri: MongoDB 连接 URI，如 "mongodb://localhost:27017"
// dbName: 数据库名称，如 "users_admin"
func Open(uri, dbName string) (*Store, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongostore: connect failed: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("mongostore: ping failed: %w", err)
	}

	return &Store{
		client: client,
		col:    client.Database(dbName).Collection(ColSession),
	}, nil
}

// Load 读取会话记录；无记录时返回 (nil, nil)
func (s *Store) Load(ctx context.Context) (*session.Record, error) {
	var doc sessionDoc
	err := s.col.FindOne(ctx, bson.M{"_id": docID}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("mongostore: load session failed: %w", err)
	}
	return &session.Record{User: doc.User, Token: doc.Token}, nil
}

// Save 写入会话记录（固定 _id 的 upsert）
func (s *Store) Save(ctx context.Context, rec *session.Record) error {
	doc := sessionDoc{ID: docID, User: rec.User, Token: rec.Token}
	_, err := s.col.ReplaceOne(ctx, bson.M{"_id": docID}, doc,
		options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("mongostore: save session failed: %w", err)
	}
	return nil
}

// Clear 删除会话记录
func (s *Store) Clear(ctx context.Context) error {
	if _, err := s.col.DeleteOne(ctx, bson.M{"_id": docID}); err != nil {
		return fmt.Errorf("mongostore: clear session failed: %w", err)
	}
	return nil
}

// Close 关闭连接
func (s *Store) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

var _ session.Store = (*Store)(nil)
