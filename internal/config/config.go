package config

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server     ServerConfig
	Log        LogConfig
	Broker     BrokerConfig
	Cache      CacheConfig
	DB         DBConfig
	S3         S3Config
	Attachment AttachmentConfig
	Auth       AuthConfig
	CORS       CORSConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         string        `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	Environment  string        `mapstructure:"environment"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// BrokerConfig describes one configured broker instance: the model it talks
// to and the input/output schema it exposes.
type BrokerConfig struct {
	InstanceID      string   `mapstructure:"instance_id"`
	APIKey          string   `mapstructure:"api_key"`
	SystemPrompt    string   `mapstructure:"system_prompt"`
	TopicConstraint string   `mapstructure:"topic_constraint"`
	Model           string   `mapstructure:"model"`
	Endpoint        string   `mapstructure:"endpoint"`
	InputFields     []string `mapstructure:"input_fields"`
	OutputFields    []string `mapstructure:"output_fields"`
	ListMode        bool     `mapstructure:"list_mode"`
	RepairJSON      bool     `mapstructure:"repair_json"`
	TimeoutSecs     int      `mapstructure:"timeout_secs"`
}

// Timeout returns the outbound HTTP client timeout.
func (b *BrokerConfig) Timeout() time.Duration {
	return time.Duration(b.TimeoutSecs) * time.Second
}

// Cache backends.
const (
	CacheBackendMemory   = "memory"
	CacheBackendPostgres = "postgres"
	CacheBackendS3       = "s3"
)

// CacheConfig holds response cache settings.
type CacheConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	TTL      time.Duration `mapstructure:"ttl"`
	Backend  string        `mapstructure:"backend"`
	S3Prefix string        `mapstructure:"s3_prefix"`
}

// DBConfig holds PostgreSQL connection settings.
type DBConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode"`
	MaxConns int32  `mapstructure:"max_conns"`
}

// DSN returns the PostgreSQL connection string.
func (d *DBConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode,
	)
}

// S3Config holds AWS S3 settings.
type S3Config struct {
	Region    string `mapstructure:"region"`
	Bucket    string `mapstructure:"bucket"`
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
}

// AttachmentConfig bounds and tunes attachment normalization.
type AttachmentConfig struct {
	MaxSizeMB     int64 `mapstructure:"max_size_mb"`
	CSVAsMarkdown bool  `mapstructure:"csv_as_markdown"`
}

// MaxBytes returns the attachment limit in bytes.
func (a *AttachmentConfig) MaxBytes() int64 {
	return a.MaxSizeMB * 1024 * 1024
}

// AuthConfig holds caller authentication settings. An empty JWTSecret disables auth.
type AuthConfig struct {
	JWTSecret string `mapstructure:"jwt_secret"`
	JWTIssuer string `mapstructure:"jwt_issuer"`
}

// Enabled reports whether bearer tokens are required.
func (a *AuthConfig) Enabled() bool {
	return a.JWTSecret != ""
}

// CORSConfig holds CORS settings.
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// Load reads configuration from environment variables with the LLMBROKER_ prefix.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("LLMBROKER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Server defaults
	v.SetDefault("server.port", ":8080")
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "180s")
	v.SetDefault("server.environment", "development")

	// Log defaults
	v.SetDefault("log.level", "debug")
	v.SetDefault("log.format", "console")

	// Broker defaults
	v.SetDefault("broker.instance_id", "default")
	v.SetDefault("broker.api_key", "")
	v.SetDefault("broker.system_prompt", "Always return the response in JSON format.")
	v.SetDefault("broker.topic_constraint", "")
	v.SetDefault("broker.model", "gpt-4o-mini")
	v.SetDefault("broker.endpoint", "https://api.openai.com/v1/chat/completions")
	v.SetDefault("broker.input_fields", "UserPrompt")
	v.SetDefault("broker.output_fields", "")
	v.SetDefault("broker.list_mode", false)
	v.SetDefault("broker.repair_json", false)
	v.SetDefault("broker.timeout_secs", 120)

	// Cache defaults
	v.SetDefault("cache.enabled", true)
	v.SetDefault("cache.ttl", "1day")
	v.SetDefault("cache.backend", CacheBackendMemory)
	v.SetDefault("cache.s3_prefix", "llmbroker-cache")

	// DB defaults
	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.user", "llmbroker")
	v.SetDefault("db.password", "llmbroker_secret")
	v.SetDefault("db.name", "llmbroker_db")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.max_conns", 10)

	// S3 defaults
	v.SetDefault("s3.region", "us-east-1")
	v.SetDefault("s3.bucket", "llmbroker-cache")
	v.SetDefault("s3.endpoint", "")

	// Attachment defaults
	v.SetDefault("attachment.max_size_mb", 50)
	v.SetDefault("attachment.csv_as_markdown", false)

	// Auth defaults (disabled)
	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("auth.jwt_issuer", "llmbroker")

	// CORS defaults (localhost origins for development)
	v.SetDefault("cors.allowed_origins", "http://localhost:3000,http://127.0.0.1:3000")

	// Bind environment variables explicitly for nested keys
	envBindings := map[string]string{
		"server.port":                "LLMBROKER_SERVER_PORT",
		"server.read_timeout":        "LLMBROKER_SERVER_READ_TIMEOUT",
		"server.write_timeout":       "LLMBROKER_SERVER_WRITE_TIMEOUT",
		"server.environment":         "LLMBROKER_SERVER_ENVIRONMENT",
		"log.level":                  "LLMBROKER_LOG_LEVEL",
		"log.format":                 "LLMBROKER_LOG_FORMAT",
		"broker.instance_id":         "LLMBROKER_BROKER_INSTANCE_ID",
		"broker.api_key":             "LLMBROKER_BROKER_API_KEY",
		"broker.system_prompt":       "LLMBROKER_BROKER_SYSTEM_PROMPT",
		"broker.topic_constraint":    "LLMBROKER_BROKER_TOPIC_CONSTRAINT",
		"broker.model":               "LLMBROKER_BROKER_MODEL",
		"broker.endpoint":            "LLMBROKER_BROKER_ENDPOINT",
		"broker.input_fields":        "LLMBROKER_BROKER_INPUT_FIELDS",
		"broker.output_fields":       "LLMBROKER_BROKER_OUTPUT_FIELDS",
		"broker.list_mode":           "LLMBROKER_BROKER_LIST_MODE",
		"broker.repair_json":         "LLMBROKER_BROKER_REPAIR_JSON",
		"broker.timeout_secs":        "LLMBROKER_BROKER_TIMEOUT_SECS",
		"cache.enabled":              "LLMBROKER_CACHE_ENABLED",
		"cache.ttl":                  "LLMBROKER_CACHE_TTL",
		"cache.backend":              "LLMBROKER_CACHE_BACKEND",
		"cache.s3_prefix":            "LLMBROKER_CACHE_S3_PREFIX",
		"db.host":                    "LLMBROKER_DB_HOST",
		"db.port":                    "LLMBROKER_DB_PORT",
		"db.user":                    "LLMBROKER_DB_USER",
		"db.password":                "LLMBROKER_DB_PASSWORD",
		"db.name":                    "LLMBROKER_DB_NAME",
		"db.sslmode":                 "LLMBROKER_DB_SSLMODE",
		"db.max_conns":               "LLMBROKER_DB_MAX_CONNS",
		"s3.region":                  "LLMBROKER_S3_REGION",
		"s3.bucket":                  "LLMBROKER_S3_BUCKET",
		"s3.endpoint":                "LLMBROKER_S3_ENDPOINT",
		"s3.access_key":              "LLMBROKER_S3_ACCESS_KEY",
		"s3.secret_key":              "LLMBROKER_S3_SECRET_KEY",
		"attachment.max_size_mb":     "LLMBROKER_ATTACHMENT_MAX_SIZE_MB",
		"attachment.csv_as_markdown": "LLMBROKER_ATTACHMENT_CSV_AS_MARKDOWN",
		"auth.jwt_secret":            "LLMBROKER_AUTH_JWT_SECRET",
		"auth.jwt_issuer":            "LLMBROKER_AUTH_JWT_ISSUER",
		"cors.allowed_origins":       "LLMBROKER_CORS_ALLOWED_ORIGINS",
	}
	for key, env := range envBindings {
		_ = v.BindEnv(key, env)
	}

	cfg := &Config{}

	// Railway/Heroku/Render set a PORT env var. Use it if LLMBROKER_SERVER_PORT is not explicitly set.
	serverPort := v.GetString("server.port")
	if port := os.Getenv("PORT"); port != "" && os.Getenv("LLMBROKER_SERVER_PORT") == "" {
		serverPort = ":" + port
	}

	cfg.Server = ServerConfig{
		Port:         serverPort,
		ReadTimeout:  v.GetDuration("server.read_timeout"),
		WriteTimeout: v.GetDuration("server.write_timeout"),
		Environment:  v.GetString("server.environment"),
	}
	cfg.Log = LogConfig{
		Level:  v.GetString("log.level"),
		Format: v.GetString("log.format"),
	}
	cfg.Broker = BrokerConfig{
		InstanceID:      v.GetString("broker.instance_id"),
		APIKey:          v.GetString("broker.api_key"),
		SystemPrompt:    v.GetString("broker.system_prompt"),
		TopicConstraint: v.GetString("broker.topic_constraint"),
		Model:           v.GetString("broker.model"),
		Endpoint:        v.GetString("broker.endpoint"),
		InputFields:     SplitList(v.GetString("broker.input_fields")),
		OutputFields:    SplitList(v.GetString("broker.output_fields")),
		ListMode:        v.GetBool("broker.list_mode"),
		RepairJSON:      v.GetBool("broker.repair_json"),
		TimeoutSecs:     v.GetInt("broker.timeout_secs"),
	}
	cfg.Cache = CacheConfig{
		Enabled:  v.GetBool("cache.enabled"),
		TTL:      ParseTTL(v.GetString("cache.ttl")),
		Backend:  strings.ToLower(strings.TrimSpace(v.GetString("cache.backend"))),
		S3Prefix: strings.Trim(v.GetString("cache.s3_prefix"), "/"),
	}
	cfg.DB = DBConfig{
		Host:     v.GetString("db.host"),
		Port:     v.GetInt("db.port"),
		User:     v.GetString("db.user"),
		Password: v.GetString("db.password"),
		Name:     v.GetString("db.name"),
		SSLMode:  v.GetString("db.sslmode"),
		MaxConns: v.GetInt32("db.max_conns"),
	}
	cfg.S3 = S3Config{
		Region:    v.GetString("s3.region"),
		Bucket:    v.GetString("s3.bucket"),
		Endpoint:  v.GetString("s3.endpoint"),
		AccessKey: v.GetString("s3.access_key"),
		SecretKey: v.GetString("s3.secret_key"),
	}
	cfg.Attachment = AttachmentConfig{
		MaxSizeMB:     v.GetInt64("attachment.max_size_mb"),
		CSVAsMarkdown: v.GetBool("attachment.csv_as_markdown"),
	}
	cfg.Auth = AuthConfig{
		JWTSecret: v.GetString("auth.jwt_secret"),
		JWTIssuer: v.GetString("auth.jwt_issuer"),
	}
	cfg.CORS = CORSConfig{
		AllowedOrigins: SplitList(v.GetString("cors.allowed_origins")),
	}

	switch cfg.Cache.Backend {
	case CacheBackendMemory, CacheBackendPostgres, CacheBackendS3:
	default:
		return nil, fmt.Errorf("unknown cache backend %q", cfg.Cache.Backend)
	}

	return cfg, nil
}

// SplitList splits a comma-separated list, trimming entries and dropping empty ones.
func SplitList(s string) []string {
	var out []string
	for _, item := range strings.Split(s, ",") {
		item = strings.TrimSpace(item)
		if item != "" {
			out = append(out, item)
		}
	}
	return out
}

// DefaultTTL applies when a TTL string cannot be parsed.
const DefaultTTL = 24 * time.Hour

var ttlPattern = regexp.MustCompile(`^(\d+)\s*([a-zA-Z]+)$`)

var ttlUnits = map[string]time.Duration{
	"sec": time.Second,
	"min": time.Minute,
	"day": 24 * time.Hour,
	"mon": 30 * 24 * time.Hour,
	"yr":  365 * 24 * time.Hour,
}

// ParseTTL parses "<integer><unit>" with unit one of sec, min, day, mon (30 days)
// or yr (365 days), e.g. "90min" or "2day". Anything else yields DefaultTTL.
func ParseTTL(s string) time.Duration {
	m := ttlPattern.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return DefaultTTL
	}
	unit, ok := ttlUnits[strings.ToLower(m[2])]
	if !ok {
		return DefaultTTL
	}
	n, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil || n <= 0 || n > int64(1<<63-1)/int64(unit) {
		return DefaultTTL
	}
	return time.Duration(n) * unit
}
