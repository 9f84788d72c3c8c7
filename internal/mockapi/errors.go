// Package mockapi 模拟后端的领域错误
//
// 错误统一挂接 containerd/errdefs 的哨兵错误，调用方通过
// errdefs.IsNotFound / IsConflict / IsUnauthorized 做分类，
// 不依赖具体错误值。
package mockapi

import (
	"fmt"

	"github.com/containerd/errdefs"
)

var (
	// ErrInvalidCredentials 邮箱/密码不匹配
	ErrInvalidCredentials = fmt.Errorf("invalid email or password: %w", errdefs.ErrUnauthenticated)

	// ErrDuplicateEmail 邮箱已被占用（精确、大小写敏感匹配）
	ErrDuplicateEmail = fmt.Errorf("email already in use: %w", errdefs.ErrConflict)

	// ErrInvalidToken 令牌为空或不符合 mock 令牌前缀格式
	ErrInvalidToken = fmt.Errorf("invalid token: %w", errdefs.ErrUnauthenticated)
)

// errUserNotFound 指定 ID 的用户不存在
func errUserNotFound(id int) error {
	return fmt.Errorf("user with id %d not found: %w", id, errdefs.ErrNotFound)
}
