package mockapi

import (
	"math/rand/v2"
	"strconv"
)

// TokenPrefix mock 令牌的固定前缀，ValidateToken 只认这个格式
const TokenPrefix = "token_"

// newToken 生成一个 mock 令牌：前缀 + 随机 base36 串
//
// 仅保证"建议性"唯一（随机碰撞概率未做保证），无签名、无过期。
// 这是 mock 契约的一部分，不是安全设计。
func newToken() string {
	return TokenPrefix + strconv.FormatUint(rand.Uint64(), 36)
}
