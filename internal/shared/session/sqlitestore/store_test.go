package sqlitestore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"users-admin/internal/shared/model"
	"users-admin/internal/shared/session"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

// TestStore_Roundtrip 保存后读回相同记录
func TestStore_Roundtrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	rec, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Nil(t, rec, "fresh database loads (nil, nil)")

	require.NoError(t, s.Save(ctx, &session.Record{
		User:  &model.AuthUser{ID: 1, Name: "John Doe", Email: "john@example.com", Role: model.RoleAdmin},
		Token: "token_sqlite",
	}))

	rec, err = s.Load(ctx)
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, "token_sqlite", rec.Token)
	require.NotNil(t, rec.User)
	assert.Equal(t, 1, rec.User.ID)
	assert.Equal(t, model.RoleAdmin, rec.User.Role)
}

// TestStore_Upsert 重复保存覆盖同一行，不会累积
func TestStore_Upsert(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, &session.Record{
		User: &model.AuthUser{ID: 1, Email: "john@example.com"}, Token: "token_old",
	}))
	require.NoError(t, s.Save(ctx, &session.Record{
		User: &model.AuthUser{ID: 2, Email: "jane@example.com"}, Token: "token_new",
	}))

	rec, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "token_new", rec.Token)
	assert.Equal(t, "jane@example.com", rec.User.Email)
}

// TestStore_Clear 清除后读回 (nil, nil)，重复清除无害
func TestStore_Clear(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, &session.Record{
		User: &model.AuthUser{ID: 1}, Token: "token_x",
	}))
	require.NoError(t, s.Clear(ctx))
	require.NoError(t, s.Clear(ctx))

	rec, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Nil(t, rec)
}
