package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config application-wide configuration
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"db"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Log      LogConfig      `mapstructure:"log"`
	Feedback FeedbackConfig `mapstructure:"feedback"`
}

// ServerConfig HTTP server settings
type ServerConfig struct {
	Port           int        `mapstructure:"port"`
	MaxBodyBytes   int64      `mapstructure:"max_body_bytes"`
	MaxUploadBytes int64      `mapstructure:"max_upload_bytes"`
	CORS           CORSConfig `mapstructure:"cors"`
}

// CORSConfig cross-origin settings
type CORSConfig struct {
	AllowOrigins []string `mapstructure:"allow_origins"`
}

// DatabaseConfig PostgreSQL settings
type DatabaseConfig struct {
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	Name            string `mapstructure:"name"`
	User            string `mapstructure:"user"`
	Password        string `mapstructure:"password"`
	SSLMode         string `mapstructure:"sslmode"`
	Timezone        string `mapstructure:"timezone"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime"`  // minutes
	ConnMaxIdleTime int    `mapstructure:"conn_max_idle_time"` // minutes
	// LockTimeout bounds how long a transaction waits on a row or table lock
	// before the store reports it as unavailable.
	LockTimeout time.Duration `mapstructure:"lock_timeout"`
}

// DSN builds the PostgreSQL connection string
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s TimeZone=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode, c.Timezone,
	)
}

// RedisConfig Redis settings
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// AuthConfig JWT and operator account settings
type AuthConfig struct {
	JWTSecret       string          `mapstructure:"jwt_secret"`
	AccessTokenTTL  time.Duration   `mapstructure:"access_token_ttl"`
	StudentTokenTTL time.Duration   `mapstructure:"student_token_ttl"`
	Accounts        []AccountConfig `mapstructure:"accounts"`
}

// AccountConfig an operator login (admin or hod); the password is stored as a bcrypt hash
type AccountConfig struct {
	Username     string `mapstructure:"username"`
	PasswordHash string `mapstructure:"password_hash"`
	Role         string `mapstructure:"role"`
}

// LogConfig logging settings
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// FeedbackConfig feedback engine settings
type FeedbackConfig struct {
	Questions        []string `mapstructure:"questions"`
	SubmitMaxRetries int      `mapstructure:"submit_max_retries"`
	MaxImportRows    int      `mapstructure:"max_import_rows"`
	MaxStudentRange  int      `mapstructure:"max_student_range"`
	// ResolveRateLimit caps register-number lookups per client IP per minute
	ResolveRateLimit int `mapstructure:"resolve_rate_limit"`
	// SubmitRateLimit caps submit calls per register number per minute
	SubmitRateLimit int `mapstructure:"submit_rate_limit"`
}

// DefaultQuestions the ten questions every rating answers, in order
var DefaultQuestions = []string{
	"How is the faculty's approach?",
	"How has the faculty prepared for the classes?",
	"Does the faculty inform you about your expected competencies, course outcomes?",
	"How often does the faculty illustrate the concepts through examples and practical applications?",
	"Whether faculty covers syllabus in time?",
	"Do you agree that the faculty teaches content beyond syllabus?",
	"How does the faculty communicate?",
	"Whether faculty returns answer scripts in time and produces helpful comments?",
	"How does the faculty identify your strengths and encourage you with high level of challenges?",
	"How does the faculty counsel & encourage the students?",
}

// Load reads configuration from file and environment.
// Precedence: environment > config file > defaults
func Load(path string) (*Config, error) {
	v := viper.New()

	// ── defaults ──
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.max_body_bytes", 1<<20)
	v.SetDefault("server.max_upload_bytes", 10<<20)
	v.SetDefault("server.cors.allow_origins", []string{"http://localhost:5173"})

	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.name", "feedback")
	v.SetDefault("db.user", "postgres")
	v.SetDefault("db.password", "")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.timezone", "Asia/Kolkata")
	v.SetDefault("db.max_open_conns", 25)
	v.SetDefault("db.max_idle_conns", 10)
	v.SetDefault("db.conn_max_lifetime", 60)
	v.SetDefault("db.conn_max_idle_time", 30)
	v.SetDefault("db.lock_timeout", "5s")

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("auth.access_token_ttl", "8h")
	v.SetDefault("auth.student_token_ttl", "30m")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	v.SetDefault("feedback.questions", DefaultQuestions)
	v.SetDefault("feedback.submit_max_retries", 3)
	v.SetDefault("feedback.max_import_rows", 5000)
	v.SetDefault("feedback.max_student_range", 600)
	v.SetDefault("feedback.resolve_rate_limit", 30)
	v.SetDefault("feedback.submit_rate_limit", 5)

	// ── config file ──
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
	}

	// ── environment ──
	v.SetEnvPrefix("FEEDBACK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		// no config file: defaults and environment only
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks the settings the service cannot run without
func (c *Config) Validate() error {
	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("invalid config: auth.jwt_secret must not be empty")
	}
	if len(c.Auth.JWTSecret) < 16 {
		return fmt.Errorf("invalid config: auth.jwt_secret must be at least 16 characters")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid config: server.port must be between 1 and 65535")
	}
	if len(c.Feedback.Questions) != 10 {
		return fmt.Errorf("invalid config: feedback.questions must list exactly 10 questions, got %d", len(c.Feedback.Questions))
	}
	if c.Feedback.SubmitMaxRetries < 0 {
		return fmt.Errorf("invalid config: feedback.submit_max_retries must not be negative")
	}
	for _, a := range c.Auth.Accounts {
		if a.Role != "admin" && a.Role != "hod" {
			return fmt.Errorf("invalid config: account %q has unknown role %q", a.Username, a.Role)
		}
	}
	return nil
}
