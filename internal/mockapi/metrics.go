// Package mockapi Prometheus 指标导出
package mockapi

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics 模拟服务的操作指标
type Metrics struct {
	// 操作计数（按操作名与结果分类）
	RequestsTotal *prometheus.CounterVec

	// 操作耗时（包含模拟延迟）
	RequestDuration *prometheus.HistogramVec
}

// NewMetrics 创建指标实例并注册到给定 Registerer
func NewMetrics(reg prometheus.Registerer, namespace string) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		RequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "mockapi",
				Name:      "requests_total",
				Help:      "Total mock API operations by op and status",
			},
			[]string{"op", "status"},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "mockapi",
				Name:      "request_duration_seconds",
				Help:      "Mock API operation duration in seconds, simulated latency included",
				Buckets:   []float64{0.1, 0.25, 0.5, 0.75, 1, 1.5, 2.5, 5},
			},
			[]string{"op"},
		),
	}
}

// observe 记录一次操作；m 为 nil 时不做任何事
func (m *Metrics) observe(op string, start time.Time, err error) {
	if m == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.RequestsTotal.WithLabelValues(op, status).Inc()
	m.RequestDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
}
