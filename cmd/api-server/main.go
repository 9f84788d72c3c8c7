// Package main API Server 入口
package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"users-admin/internal/apiserver/server"
	"users-admin/internal/appstate"
	"users-admin/internal/config"
	"users-admin/internal/mockapi"
	"users-admin/internal/shared/session"
	"users-admin/internal/shared/session/etcdstore"
	"users-admin/internal/shared/session/memory"
	"users-admin/internal/shared/session/mongostore"
	"users-admin/internal/shared/session/pgstore"
	"users-admin/internal/shared/session/redisstore"
	"users-admin/internal/shared/session/sqlitestore"
	"users-admin/pkg/logging"
)

func main() {
	// 加载配置（自动加载 .env，按 APP_ENV 叠加 configs/{env}.yaml）
	cfg := config.Load()

	logger := logging.New(logging.Config{
		Level:     cfg.LogLevel,
		Format:    cfg.LogFormat,
		Output:    "stdout",
		Component: "api-server",
	})

	log.Printf("Starting API Server... [env=%s]", cfg.Env)
	log.Printf("Config: %s", cfg.String())

	// 初始化会话持久化后端
	sessions, err := openSessionStore(cfg)
	if err != nil {
		log.Fatalf("Failed to open session store (%s): %v", cfg.SessionBackend, err)
	}
	defer sessions.Close()
	log.Printf("Session store ready [backend=%s]", cfg.SessionBackend)

	// 全局状态容器（从会话存储恢复登录态）
	state := appstate.NewStore(
		appstate.WithSessionStore(sessions),
		appstate.WithLogger(logging.New(logging.Config{
			Level: cfg.LogLevel, Format: cfg.LogFormat, Output: "stdout", Component: "appstate",
		})),
	)

	// 模拟数据服务
	svc := mockapi.NewService(
		mockapi.WithMetrics(mockapi.NewMetrics(prometheus.DefaultRegisterer, "usersadmin")),
		mockapi.WithLogger(logging.New(logging.Config{
			Level: cfg.LogLevel, Format: cfg.LogFormat, Output: "stdout", Component: "mockapi",
		})),
	)

	h := server.NewHandler(svc, state, logger)

	srv := &http.Server{
		Addr:         ":" + cfg.APIPort,
		Handler:      h.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// 优雅关闭
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Println("Shutting down server...")
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			log.Printf("Server shutdown error: %v", err)
		}
	}()

	log.Printf("API Server listening on :%s", cfg.APIPort)
	if err := srv.ListenAndServe(); err != http.ErrServerClosed {
		log.Fatalf("Server error: %v", err)
	}

	fmt.Println("Server stopped")
}

// openSessionStore 按配置选择会话持久化后端
func openSessionStore(cfg *config.Config) (session.Store, error) {
	switch cfg.SessionBackend {
	case config.SessionBackendMemory:
		return memory.NewStore(), nil
	case config.SessionBackendPostgres:
		return pgstore.Open(cfg.DatabaseURL)
	case config.SessionBackendRedis:
		return redisstore.Open(cfg.RedisURL)
	case config.SessionBackendEtcd:
		return etcdstore.Open(etcdstore.Config{
			Endpoints: cfg.EtcdEndpoints,
			Prefix:    cfg.EtcdPrefix,
		})
	case config.SessionBackendMongo:
		return mongostore.Open(cfg.MongoURI, cfg.MongoDatabase)
	default:
		return sqlitestore.Open(cfg.SQLitePath)
	}
}
