package metrics

import (
	"context"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/prometheus/client_golang/prometheus/push"
)

// NewRegistry 创建自定义 Prometheus Registry，并注册常用采集器
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

// Handler 返回 Prometheus 指标 HTTP 处理器
func Handler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})
}

// TxMetrics 发送相关指标
type TxMetrics struct {
	FramesTotal *prometheus.CounterVec // labels: result=sent|preview|error
	ErrorsTotal *prometheus.CounterVec // labels: kind
	FrameBytes  prometheus.Counter
}

// NewTxMetrics 注册并返回发送指标
func NewTxMetrics(reg prometheus.Registerer) *TxMetrics {
	m := &TxMetrics{
		FramesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tx433_frames_total",
			Help: "TXP frames built, by result.",
		}, []string{"result"}),
		ErrorsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tx433_errors_total",
			Help: "Encode and transport errors, by kind.",
		}, []string{"kind"}),
		FrameBytes: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tx433_frame_bytes_total",
			Help: "Total bytes handed to the gateway transport.",
		}),
	}
	reg.MustRegister(m.FramesTotal, m.ErrorsTotal, m.FrameBytes)
	return m
}

// Push 推送到 Pushgateway（一次性命令行使用）
func Push(ctx context.Context, url, job string, g prometheus.Gatherer) error {
	return push.New(url, job).Gatherer(g).PushContext(ctx)
}
