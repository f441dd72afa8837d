package configs

import "github.com/spf13/viper"

// AuthConfig 身份认证配置. 上游身份服务负责真正的凭证核验，
// 这里只从 Bearer JWT 中解析稳定的 principal（sub）并信任其结果.
type AuthConfig struct {
	Enabled bool `mapstructure:"enabled"` // 开启认证校验
	// Secret 自托管部署下用于校验头部完整性的 HMAC 密钥
	Secret string `mapstructure:"secret"`
	// SkipPaths 跳过认证的路径前缀（如 /metrics、分享访问入口）
	SkipPaths []string `mapstructure:"skip_paths"`
	// DevAllowHeader 开发模式允许用 X-User 头兜底，便于本地调试
	DevAllowHeader bool `mapstructure:"dev_allow_header"`
}

func (c *AuthConfig) setDefaults(v *viper.Viper) {
	v.SetDefault("auth.enabled", true)
	v.SetDefault("auth.secret", "")
	v.SetDefault("auth.dev_allow_header", true)
	v.SetDefault("auth.skip_paths", []string{
		"/metrics",
		"/debug/pprof",
		"/api/v1/health",
		"/api/v1/share/access",
	})
}
