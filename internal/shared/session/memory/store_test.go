package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"users-admin/internal/shared/model"
	"users-admin/internal/shared/session"
)

// TestStore_Roundtrip 写入后读回相同记录
func TestStore_Roundtrip(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	rec, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Nil(t, rec, "empty store loads (nil, nil)")

	require.NoError(t, s.Save(ctx, &session.Record{
		User:  &model.AuthUser{ID: 1, Name: "John Doe", Email: "john@example.com", Role: model.RoleAdmin},
		Token: "token_mem",
	}))

	rec, err = s.Load(ctx)
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, "token_mem", rec.Token)
	assert.Equal(t, "john@example.com", rec.User.Email)
}

// TestStore_LoadReturnsCopy 读出的记录是副本，改动不会写回
func TestStore_LoadReturnsCopy(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, &session.Record{
		User:  &model.AuthUser{ID: 1, Name: "John Doe"},
		Token: "token_a",
	}))

	rec, err := s.Load(ctx)
	require.NoError(t, err)
	rec.Token = "token_mutated"

	again, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "token_a", again.Token)
}

// TestStore_Clear 清除后再读回 (nil, nil)
func TestStore_Clear(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, &session.Record{
		User: &model.AuthUser{ID: 2}, Token: "token_b",
	}))
	require.NoError(t, s.Clear(ctx))

	rec, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Nil(t, rec)
	assert.NoError(t, s.Close())
}
