package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Cfg 是一个全局变量，用于存储所有应用程序的配置
var Cfg *Config

// Config 结构体定义了应用程序的所有配置项
// 它与 config.yaml 文件的结构完全对应
type Config struct {
	Server      ServerConfig      `mapstructure:"server"`
	Database    DatabaseConfig    `mapstructure:"database"`
	Redis       RedisConfig       `mapstructure:"redis"`
	Pi          PiConfig          `mapstructure:"pi"`
	Leaderboard LeaderboardConfig `mapstructure:"leaderboard"`
	Reset       ResetConfig       `mapstructure:"reset"`
	Backup      BackupConfig      `mapstructure:"backup"`
	Admin       AdminConfig       `mapstructure:"admin"`
}

// ServerConfig 定义了服务器相关的配置
type ServerConfig struct {
	Mode    string     `mapstructure:"mode"`
	Address string     `mapstructure:"address"`
	Cors    CorsConfig `mapstructure:"cors"`
}

// CorsConfig 定义了CORS相关的配置
type CorsConfig struct {
	AllowedOrigins []string `mapstructure:"allowedOrigins"`
}

// DatabaseConfig 定义了持久化快照数据库的配置
// Driver 可选 sqlite 或 postgres
type DatabaseConfig struct {
	Driver   string         `mapstructure:"driver"`
	Sqlite   SqliteConfig   `mapstructure:"sqlite"`
	Postgres PostgresConfig `mapstructure:"postgres"`
}

// SqliteConfig 定义了SQLite的配置
type SqliteConfig struct {
	Path string `mapstructure:"path"`
}

// PostgresConfig 定义了PostgreSQL的配置
type PostgresConfig struct {
	DSN string `mapstructure:"dsn"`
}

// RedisConfig 定义了Redis缓存的配置
type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// PiConfig 定义了Pi平台接入的配置
type PiConfig struct {
	APIKey string `mapstructure:"apiKey"`
	AppID  string `mapstructure:"appId"`
}

// LeaderboardConfig 定义了排行榜的准入规则和缓存策略
type LeaderboardConfig struct {
	DefaultLimit int `mapstructure:"defaultLimit"`
	// CacheTTLSeconds 是Redis中排行榜缓存的生存时间
	CacheTTLSeconds int `mapstructure:"cacheTTLSeconds"`
	// RealUserPrefix 是真实用户ID命名空间的前缀
	RealUserPrefix string `mapstructure:"realUserPrefix"`
	// SyntheticIDPrefixes 是测试/演示用户的ID前缀黑名单
	SyntheticIDPrefixes []string `mapstructure:"syntheticIdPrefixes"`
	// UsernameBlocklist 是合成用户名的子串黑名单
	UsernameBlocklist []string `mapstructure:"usernameBlocklist"`
}

// ResetConfig 定义了月度重置调度器的配置
type ResetConfig struct {
	CheckIntervalMinutes int `mapstructure:"checkIntervalMinutes"`
	StartupDelaySeconds  int `mapstructure:"startupDelaySeconds"`
	// StartingScore 是赛季分的初始值，重置时恢复到该值
	StartingScore int `mapstructure:"startingScore"`
}

// BackupConfig 定义了快照持久化的节奏
type BackupConfig struct {
	DebounceSeconds int `mapstructure:"debounceSeconds"`
	IntervalMinutes int `mapstructure:"intervalMinutes"`
}

// AdminConfig 定义了管理接口的共享密钥
// 建议通过环境变量 ADMIN_KEY 覆盖
type AdminConfig struct {
	Key string `mapstructure:"key"`
}

// CheckInterval 返回重置检查间隔
func (r ResetConfig) CheckInterval() time.Duration {
	if r.CheckIntervalMinutes <= 0 {
		return time.Hour
	}
	return time.Duration(r.CheckIntervalMinutes) * time.Minute
}

// StartupDelay 返回启动后首次重置检查的延迟
func (r ResetConfig) StartupDelay() time.Duration {
	if r.StartupDelaySeconds <= 0 {
		return time.Minute
	}
	return time.Duration(r.StartupDelaySeconds) * time.Second
}

// Debounce 返回快照去抖窗口
func (b BackupConfig) Debounce() time.Duration {
	if b.DebounceSeconds <= 0 {
		return 3 * time.Second
	}
	return time.Duration(b.DebounceSeconds) * time.Second
}

// Interval 返回定时全量快照间隔
func (b BackupConfig) Interval() time.Duration {
	if b.IntervalMinutes <= 0 {
		return 10 * time.Minute
	}
	return time.Duration(b.IntervalMinutes) * time.Minute
}

// CacheTTL 返回排行榜缓存的TTL
func (l LeaderboardConfig) CacheTTL() time.Duration {
	if l.CacheTTLSeconds <= 0 {
		return 30 * time.Second
	}
	return time.Duration(l.CacheTTLSeconds) * time.Second
}

// LoadConfig 函数负责查找、加载和解析配置文件
// 它会在指定的路径中查找名为 config.yaml 的文件
func LoadConfig() (*Config, error) {
	v := viper.New()

	// 1. 设置配置文件名和类型
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	// 2. 添加配置文件搜索路径
	v.AddConfigPath("./config")
	v.AddConfigPath(".")

	// 3. 允许通过环境变量覆盖配置，例如 ADMIN_KEY、REDIS_ADDRESS
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// 4. 读取配置文件
	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}

	// 5. 将配置反序列化到结构体中
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	// 6. 将加载的配置赋值给全局变量
	Cfg = &cfg

	return Cfg, nil
}
