// Package metrics 提供监控指标功能.
// 支持Prometheus标准，收集HTTP层与传输核心的业务指标.
//
// Example:
//
//	err := metrics.Init(cfg.Metrics)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	metrics.PresignedURLCounter.WithLabelValues("put").Inc()
package metrics

import (
	"net/http"
	_ "net/http/pprof" // 自动注册pprof端点

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/hey-granth/silo/pkg/configs"
)

// 全局指标变量.
var (
	// RequestCounter HTTP请求计数器.
	RequestCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint"},
	)

	// RequestDuration HTTP请求持续时间.
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	// PresignedURLCounter 已签发的预签名URL计数，按方向（put/get）统计.
	PresignedURLCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "presigned_urls_issued_total",
			Help: "Total number of presigned URLs issued",
		},
		[]string{"method"},
	)

	// ShareAccessCounter 分享链接访问计数，按结果（granted/expired/quota/password/not_found）统计.
	ShareAccessCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "share_access_total",
			Help: "Total number of shared link access attempts by outcome",
		},
		[]string{"outcome"},
	)

	// registry Prometheus注册表.
	registry = prometheus.NewRegistry()
)

// Init 初始化Metrics.
func Init(cfg configs.MetricsConfig) error {
	if !cfg.Enabled {
		return nil
	}

	if cfg.RuntimeMetrics {
		registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}

	registry.MustRegister(RequestCounter, RequestDuration, PresignedURLCounter, ShareAccessCounter)

	return nil
}

// MountMetricsEndpoint 在给定引擎上暴露 /metrics（及可选 pprof）端点.
func MountMetricsEndpoint(cfg configs.MetricsConfig, engine *gin.Engine) {
	if !cfg.Enabled {
		return
	}

	// GORM 插件等第三方指标注册在默认注册表，聚合后一并暴露
	gatherers := prometheus.Gatherers{registry, prometheus.DefaultGatherer}
	engine.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherers, promhttp.HandlerOpts{})))

	if cfg.Pprof {
		engine.GET("/debug/pprof/*any", gin.WrapH(http.DefaultServeMux))
	}
}

// GetRegistry 获取Prometheus注册表.
func GetRegistry() *prometheus.Registry {
	return registry
}
