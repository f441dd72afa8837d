package configs

import (
	"github.com/spf13/viper"
)

const (
	DefaultTracingSampleRate = 1.0 // 默认全量采样
)

// TracingConfig 分布式追踪配置（OTLP HTTP 导出）.
type TracingConfig struct {
	Enabled        bool    `mapstructure:"enabled"`         // 是否启用追踪
	ServiceName    string  `mapstructure:"service_name"`    // 服务名称
	ServiceVersion string  `mapstructure:"service_version"` // 服务版本
	Endpoint       string  `mapstructure:"endpoint"`        // OTLP HTTP 端点
	SampleRate     float64 `mapstructure:"sample_rate"      rule:"min=0,max=1"`
}

// setDefaults 设置追踪配置的默认值.
func (c *TracingConfig) setDefaults(v *viper.Viper) {
	v.SetDefault("tracing.enabled", false)
	v.SetDefault("tracing.service_name", "silo")
	v.SetDefault("tracing.service_version", AppVersion)
	v.SetDefault("tracing.endpoint", "http://localhost:4318")
	v.SetDefault("tracing.sample_rate", DefaultTracingSampleRate)
}
