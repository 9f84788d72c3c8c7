// Package server 演示用 JSON API：把模拟数据服务与全局状态容器
// 组合成一个可运行的 HTTP 面。核心契约本身不定义任何网络协议，
// 这一层只是被排除在核心之外的"展示层"在 Go 里的对应物。
package server

import (
	"encoding/json"
	"net/http"

	"github.com/containerd/errdefs"
)

// errorResponse 错误响应体
type errorResponse struct {
	Error string `json:"error"`
}

// writeJSON 写出 JSON 响应
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError 写出错误响应
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// writeDomainError 按领域错误分类映射 HTTP 状态码
func writeDomainError(w http.ResponseWriter, err error) {
	writeError(w, statusFromError(err), err.Error())
}

// statusFromError 领域错误到 HTTP 状态码
func statusFromError(err error) int {
	switch {
	case errdefs.IsNotFound(err):
		return http.StatusNotFound
	case errdefs.IsConflict(err):
		return http.StatusConflict
	case errdefs.IsUnauthorized(err):
		return http.StatusUnauthorized
	case errdefs.IsInvalidArgument(err):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
