package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/taoyao-code/tx433/internal/protocol/txp"
)

// EnvConfig 配置文件路径环境变量
const EnvConfig = "TX433_CONFIG"

// AppConfig 应用基础信息
type AppConfig struct {
	Name string `mapstructure:"name"`
	Env  string `mapstructure:"env"`
}

// GatewayConfig 433MHz 发射网关地址
type GatewayConfig struct {
	IP           string        `mapstructure:"ip"`
	Port         int           `mapstructure:"port"`
	WriteTimeout time.Duration `mapstructure:"writeTimeout"`
}

// AliasConfig 开关别名文件
type AliasConfig struct {
	Path string `mapstructure:"path"`
}

// HTTPConfig HTTP 桥接服务配置
type HTTPConfig struct {
	Addr         string        `mapstructure:"addr"`
	ReadTimeout  time.Duration `mapstructure:"readTimeout"`
	WriteTimeout time.Duration `mapstructure:"writeTimeout"`
}

// AuthConfig API Key 认证
type AuthConfig struct {
	Enabled bool     `mapstructure:"enabled"`
	APIKeys []string `mapstructure:"apiKeys"`
}

// RateLimitConfig 发送限速（令牌桶）
type RateLimitConfig struct {
	PerSecond int `mapstructure:"perSecond"`
	Burst     int `mapstructure:"burst"`
}

// APIConfig HTTP API 配置
type APIConfig struct {
	Auth      AuthConfig      `mapstructure:"auth"`
	RateLimit RateLimitConfig `mapstructure:"rateLimit"`
}

// LumberjackConfig 日志滚动（lumberjack）配置，filename 为空时不写文件
type LumberjackConfig struct {
	Filename   string `mapstructure:"filename"`
	MaxSizeMB  int    `mapstructure:"maxSize"`
	MaxBackups int    `mapstructure:"maxBackups"`
	MaxAgeDays int    `mapstructure:"maxAge"`
	Compress   bool   `mapstructure:"compress"`
}

// LoggingConfig 日志级别与输出配置
type LoggingConfig struct {
	Level  string           `mapstructure:"level"`
	Format string           `mapstructure:"format"`
	File   LumberjackConfig `mapstructure:"file"`
}

// MetricsConfig Prometheus 指标配置
type MetricsConfig struct {
	Enable  bool   `mapstructure:"enable"`
	Path    string `mapstructure:"path"`
	PushURL string `mapstructure:"pushURL"`
	Job     string `mapstructure:"job"`
}

// Config 顶层配置结构
type Config struct {
	App      AppConfig     `mapstructure:"app"`
	Gateway  GatewayConfig `mapstructure:"gateway"`
	Wire     txp.Config    `mapstructure:"wire"`
	LineCode string        `mapstructure:"linecode"`
	Aliases  AliasConfig   `mapstructure:"aliases"`
	HTTP     HTTPConfig    `mapstructure:"http"`
	API      APIConfig     `mapstructure:"api"`
	Logging  LoggingConfig `mapstructure:"logging"`
	Metrics  MetricsConfig `mapstructure:"metrics"`
}

// flagKeys 命令行参数 -> 配置键
var flagKeys = map[string]string{
	"ip":        "gateway.ip",
	"port":      "gateway.port",
	"linecode":  "linecode",
	"aliases":   "aliases.path",
	"addr":      "http.addr",
	"log-level": "logging.level",
}

// Load 从 YAML/TOML/JSON 文件、环境变量与命令行参数加载配置。
// 若 path 为空，则尝试从环境变量 TX433_CONFIG 读取；否则查找 ./tx433.yaml 或 ./configs/tx433.yaml。
// flags 可为 nil；只有显式设置的参数才覆盖文件与环境变量。
func Load(path string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()

	if path == "" {
		path = os.Getenv(EnvConfig)
	}

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		v.SetConfigName("tx433")
		v.SetConfigType("yaml")
	}

	setDefaults(v)

	// 环境变量覆盖：前缀 TX433_，并将点号替换为下划线
	v.SetEnvPrefix("TX433")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if flags != nil {
		for name, key := range flagKeys {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("bind flag %s: %w", name, err)
				}
			}
		}
	}

	if err := v.ReadInConfig(); err != nil {
		// 允许缺少配置文件，依赖默认值与环境变量
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Wire.Validate(); err != nil {
		return nil, fmt.Errorf("invalid wire config: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	wire := txp.DefaultConfig()

	v.SetDefault("app.name", "tx433")
	v.SetDefault("app.env", "dev")

	v.SetDefault("gateway.ip", "192.168.1.136")
	v.SetDefault("gateway.port", 49880)
	v.SetDefault("gateway.writeTimeout", "2s")

	v.SetDefault("wire.version", wire.Version)
	v.SetDefault("wire.ident", wire.Ident)
	v.SetDefault("wire.channel", wire.Channel)
	v.SetDefault("wire.repeat", wire.Repeat)
	v.SetDefault("wire.pause", wire.Pause)
	v.SetDefault("wire.unitTime", wire.UnitTime)

	v.SetDefault("linecode", "pt2262")
	v.SetDefault("aliases.path", "")

	v.SetDefault("http.addr", ":8433")
	v.SetDefault("http.readTimeout", "5s")
	v.SetDefault("http.writeTimeout", "10s")

	v.SetDefault("api.auth.enabled", false)
	v.SetDefault("api.auth.apiKeys", []string{})
	v.SetDefault("api.rateLimit.perSecond", 5)
	v.SetDefault("api.rateLimit.burst", 10)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("logging.file.filename", "")
	v.SetDefault("logging.file.maxSize", 10)
	v.SetDefault("logging.file.maxBackups", 3)
	v.SetDefault("logging.file.maxAge", 30)
	v.SetDefault("logging.file.compress", true)

	v.SetDefault("metrics.enable", true)
	v.SetDefault("metrics.path", "/metrics")
	v.SetDefault("metrics.pushURL", "")
	v.SetDefault("metrics.job", "tx433")
}
