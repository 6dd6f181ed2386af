// Package config 提供配置加载和管理功能
package config

import (
	"strings"
	"time"
)

// Config 应用配置根结构
type Config struct {
	App           AppConfig           `yaml:"app" mapstructure:"app"`
	Server        ServerConfig        `yaml:"server" mapstructure:"server"`
	Identity      IdentityConfig      `yaml:"identity" mapstructure:"identity"`
	LLM           LLMConfig           `yaml:"llm" mapstructure:"llm"`
	Images        ImagesConfig        `yaml:"images" mapstructure:"images"`
	Cache         CacheConfig         `yaml:"cache" mapstructure:"cache"`
	Session       SessionConfig       `yaml:"session" mapstructure:"session"`
	Observability ObservabilityConfig `yaml:"observability" mapstructure:"observability"`
	Security      SecurityConfig      `yaml:"security" mapstructure:"security"`
}

// AppConfig 应用基础配置
type AppConfig struct {
	Name    string `yaml:"name" mapstructure:"name"`
	Version string `yaml:"version" mapstructure:"version"`
	Env     string `yaml:"env" mapstructure:"env"`
}

// ServerConfig 服务器配置
type ServerConfig struct {
	HTTP HTTPServerConfig `yaml:"http" mapstructure:"http"`
}

// HTTPServerConfig HTTP 服务器配置
type HTTPServerConfig struct {
	Host           string        `yaml:"host" mapstructure:"host"`
	Port           int           `yaml:"port" mapstructure:"port"`
	ReadTimeout    time.Duration `yaml:"read_timeout" mapstructure:"read_timeout"`
	WriteTimeout   time.Duration `yaml:"write_timeout" mapstructure:"write_timeout"`
	IdleTimeout    time.Duration `yaml:"idle_timeout" mapstructure:"idle_timeout"`
	// MaxUploadBytes 上传照片大小上限
	MaxUploadBytes int64         `yaml:"max_upload_bytes" mapstructure:"max_upload_bytes"`
}

// IdentityConfig 身份提供方配置
type IdentityConfig struct {
	Domain   string `yaml:"domain" mapstructure:"domain"`
	ClientID string `yaml:"client_id" mapstructure:"client_id"`
	// Secret 校验 ID Token 的 HS256 密钥
	Secret   string `yaml:"secret" mapstructure:"secret"`
	Issuer   string `yaml:"issuer" mapstructure:"issuer"`
	Audience string `yaml:"audience" mapstructure:"audience"`
}

// Configured 域名、ClientID 与校验密钥均存在时才开放接口
func (c IdentityConfig) Configured() bool {
	return strings.TrimSpace(c.Domain) != "" &&
		strings.TrimSpace(c.ClientID) != "" &&
		strings.TrimSpace(c.Secret) != ""
}

// LLMConfig 生成式语言模型配置
type LLMConfig struct {
	APIKey     string        `yaml:"api_key" mapstructure:"api_key"`
	BaseURL    string        `yaml:"base_url" mapstructure:"base_url"`
	PlanModel  string        `yaml:"plan_model" mapstructure:"plan_model"`
	ImageModel string        `yaml:"image_model" mapstructure:"image_model"`
	Timeout    time.Duration `yaml:"timeout" mapstructure:"timeout"`
}

// Live 是否配置了可用的模型凭证
func (c LLMConfig) Live() bool {
	return strings.TrimSpace(c.APIKey) != ""
}

// ImagesConfig 步骤配图配置
type ImagesConfig struct {
	// FetchTimeout 单次取图超时
	FetchTimeout time.Duration     `yaml:"fetch_timeout" mapstructure:"fetch_timeout"`
	Search       ImageSearchConfig `yaml:"search" mapstructure:"search"`
	Generative   GenerativeFeature `yaml:"generative" mapstructure:"generative"`
	Placeholder  PlaceholderConfig `yaml:"placeholder" mapstructure:"placeholder"`
}

// ImageSearchConfig 图库搜索配置
type ImageSearchConfig struct {
	APIKey   string `yaml:"api_key" mapstructure:"api_key"`
	BaseURL  string `yaml:"base_url" mapstructure:"base_url"`
	// ProxyURL 关键词取图代理地址（不含 /fetch-image）
	ProxyURL string `yaml:"proxy_url" mapstructure:"proxy_url"`
	PerPage  int    `yaml:"per_page" mapstructure:"per_page"`
}

// Enabled 是否配置了图库凭证
func (c ImageSearchConfig) Enabled() bool {
	return strings.TrimSpace(c.APIKey) != ""
}

// GenerativeFeature 生成式配图开关
type GenerativeFeature struct {
	Enabled       bool `yaml:"enabled" mapstructure:"enabled"`
	// SeedWithPhoto 是否将用户照片作为生成种子
	SeedWithPhoto bool `yaml:"seed_with_photo" mapstructure:"seed_with_photo"`
}

// PlaceholderConfig 占位图配置
type PlaceholderConfig struct {
	Wordmark string `yaml:"wordmark" mapstructure:"wordmark"`
	Caption  string `yaml:"caption" mapstructure:"caption"`
}

// CacheConfig 缓存配置
type CacheConfig struct {
	Redis RedisConfig `yaml:"redis" mapstructure:"redis"`
}

// RedisConfig Redis 配置
type RedisConfig struct {
	Enabled      bool          `yaml:"enabled" mapstructure:"enabled"`
	Host         string        `yaml:"host" mapstructure:"host"`
	Port         int           `yaml:"port" mapstructure:"port"`
	Password     string        `yaml:"password" mapstructure:"password"`
	DB           int           `yaml:"db" mapstructure:"db"`
	PoolSize     int           `yaml:"pool_size" mapstructure:"pool_size"`
	MinIdleConns int           `yaml:"min_idle_conns" mapstructure:"min_idle_conns"`
	DialTimeout  time.Duration `yaml:"dial_timeout" mapstructure:"dial_timeout"`
	ReadTimeout  time.Duration `yaml:"read_timeout" mapstructure:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout" mapstructure:"write_timeout"`
}

// SessionConfig 生成会话配置
type SessionConfig struct {
	// GuardTTL 分布式生成锁的过期时间，防止进程崩溃后锁永久残留
	GuardTTL  time.Duration `yaml:"guard_ttl" mapstructure:"guard_ttl"`
	KeyPrefix string        `yaml:"key_prefix" mapstructure:"key_prefix"`
}

// ObservabilityConfig 可观测性配置
type ObservabilityConfig struct {
	Logging LoggingConfig `yaml:"logging" mapstructure:"logging"`
	Tracing TracingConfig `yaml:"tracing" mapstructure:"tracing"`
	Metrics MetricsConfig `yaml:"metrics" mapstructure:"metrics"`
}

// LoggingConfig 日志配置
type LoggingConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
	Output string `yaml:"output" mapstructure:"output"`
}

// TracingConfig 追踪配置
type TracingConfig struct {
	Enabled    bool    `yaml:"enabled" mapstructure:"enabled"`
	Exporter   string  `yaml:"exporter" mapstructure:"exporter"`
	Endpoint   string  `yaml:"endpoint" mapstructure:"endpoint"`
	SampleRate float64 `yaml:"sample_rate" mapstructure:"sample_rate"`
}

// MetricsConfig 指标配置
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled" mapstructure:"enabled"`
	Path    string `yaml:"path" mapstructure:"path"`
}

// SecurityConfig 安全配置
type SecurityConfig struct {
	CORS CORSConfig `yaml:"cors" mapstructure:"cors"`
}

// CORSConfig CORS 配置
type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins" mapstructure:"allowed_origins"`
	AllowedMethods []string `yaml:"allowed_methods" mapstructure:"allowed_methods"`
	AllowedHeaders []string `yaml:"allowed_headers" mapstructure:"allowed_headers"`
}
