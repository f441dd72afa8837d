// Package configs 管理应用程序配置，包括数据库、对象存储、传输策略与认证的配置信息.
// 支持多种配置格式（YAML、JSON、TOML、dotenv）并启用热重载.
//
// Example:
//
//	cfg, err := configs.Load("./")
//	if err != nil {
//		log.Fatal(err)
//	}
//	fmt.Println(cfg.Server.Port)
//
// 按规范要求，配置在启动时加载一次后以显式值注入各组件，组件内部不读取任何全局配置状态.
package configs

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// AppVersion 应用版本，构建时可通过 ldflags 覆盖.
var AppVersion = "dev"

type (
	// AppConfig 全局应用程序配置.
	AppConfig struct {
		DB       DBConfig       `mapstructure:"db"`       // 数据库配置
		S3       S3Config       `mapstructure:"s3"`       // 对象存储配置
		Transfer TransferConfig `mapstructure:"transfer"` // 上传/下载传输策略配置
		Auth     AuthConfig     `mapstructure:"auth"`     // 身份认证配置
		Server   ServerConfig   `mapstructure:"server"`   // 服务器配置
		Log      LogConfig      `mapstructure:"log"`      // 日志配置
		Metrics  MetricsConfig  `mapstructure:"metrics"`  // 监控配置
		Tracing  TracingConfig  `mapstructure:"tracing"`  // 追踪配置
	}
)

// appViper 全局 Viper 实例，仅供 CLI 侧查询配置文件路径等信息.
var appViper *viper.Viper

// Load 加载应用程序配置并返回配置值，支持多种格式(yaml、json、toml、dotenv)并启用热重载.
// path 可以是配置文件或包含 config.* 的目录.
func Load(path string) (*AppConfig, error) {
	v := viper.New()
	setAllDefaults(v)

	// 检查 path 是否是文件
	if info, err := os.Stat(path); err == nil && !info.IsDir() {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(path)
		v.AddConfigPath(filepath.Join(path, "configs"))

		exts := []string{"yaml", "yml", "json", "toml", "env", "dotenv"}
		for _, ext := range exts {
			cfg := filepath.Join(path, "config."+ext)
			if _, err := os.Stat(cfg); err == nil {
				v.SetConfigFile(cfg)

				break
			}
		}
	}

	v.AutomaticEnv()
	v.SetEnvPrefix("SILO")

	// 读取配置；找不到配置文件时仅使用默认值与环境变量
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && !os.IsNotExist(err) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	cfg := &AppConfig{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	reloadConfig(v, cfg)

	appViper = v

	return cfg, nil
}

// setAllDefaults 设置所有配置段的默认值.
func setAllDefaults(v *viper.Viper) {
	var (
		serverConfig   ServerConfig
		dbConfig       DBConfig
		s3Config       S3Config
		transferConfig TransferConfig
		authConfig     AuthConfig
		logConfig      LogConfig
		metricsConfig  MetricsConfig
		tracingConfig  TracingConfig
	)

	serverConfig.setDefaults(v)
	dbConfig.setDefaults(v)
	s3Config.setDefaults(v)
	transferConfig.setDefaults(v)
	authConfig.setDefaults(v)
	logConfig.setDefaults(v)
	metricsConfig.setDefaults(v)
	tracingConfig.setDefaults(v)
}

// reloadConfig 根据 server.reload_config 启用配置热重载，重载结果写回同一配置值.
func reloadConfig(v *viper.Viper, cfg *AppConfig) {
	if !cfg.Server.ReloadConfig {
		return
	}

	v.OnConfigChange(func(e fsnotify.Event) {
		fmt.Println("Config file changed:", e.Name)

		if err := v.Unmarshal(cfg); err != nil {
			fmt.Printf("Error reloading config: %v\n", err)
		}
	})
	v.WatchConfig()
}

// GetViper 返回加载配置时使用的 Viper 实例（可能为 nil，仅供 CLI 调试命令使用）.
func GetViper() *viper.Viper {
	return appViper
}
