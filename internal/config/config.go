package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all configuration required by the API process.
// All values come from env (or an env-file loaded by the process runner).
type Config struct {
	App      AppConfig
	Audit    AuditConfig
	DB       DBConfig
	Redis    RedisConfig
	Context  ContextTokenConfig
	Function FunctionConfig
	Gateway  GatewayConfig
}

type AppConfig struct {
	Env  string
	Port int
}

// AuditConfig selects and tunes the audit record store.
type AuditConfig struct {
	// Store is one of redis, postgres, memory.
	Store  string
	Region string
	Table  string

	WriteTimeout  time.Duration
	PurgeInterval time.Duration
}

type DBConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string

	// Accepts: disable, require, verify-ca, verify-full
	SSLMode string
}

type RedisConfig struct {
	Host string
	Port int
}

// ContextTokenConfig signs the authorizer context handed from the authorizer to the target.
type ContextTokenConfig struct {
	Secret string
	Issuer string
	TTL    time.Duration
}

type FunctionConfig struct {
	AuthorizerName string
	TargetName     string
	Version        string
	MemoryMB       int
}

type GatewayConfig struct {
	Stage string
}

const (
	StoreRedis    = "redis"
	StorePostgres = "postgres"
	StoreMemory   = "memory"

	// localContextSecret is only ever used when APP_ENV is local or dev.
	localContextSecret = "local-context-secret"
)

func Load() (Config, error) {
	c := Config{}
	var parseErrs []error

	c.App.Env = strings.TrimSpace(os.Getenv("APP_ENV"))
	c.App.Port, parseErrs = optionalInt("APP_PORT", parseErrs)

	c.Audit.Store = strings.ToLower(strings.TrimSpace(os.Getenv("AUDIT_STORE")))
	c.Audit.Region = strings.TrimSpace(os.Getenv("AWS_REGION"))
	c.Audit.Table = strings.TrimSpace(os.Getenv("DYNAMODB_TABLE"))
	c.Audit.WriteTimeout, parseErrs = optionalDuration("AUDIT_WRITE_TIMEOUT", parseErrs)
	c.Audit.PurgeInterval, parseErrs = optionalDuration("AUDIT_PURGE_INTERVAL", parseErrs)

	c.DB.Host = strings.TrimSpace(os.Getenv("DB_HOST"))
	c.DB.Port, parseErrs = optionalInt("DB_PORT", parseErrs)
	c.DB.User = strings.TrimSpace(os.Getenv("DB_USER"))
	c.DB.Password = os.Getenv("DB_PASSWORD")
	c.DB.Name = strings.TrimSpace(os.Getenv("DB_NAME"))
	c.DB.SSLMode = strings.TrimSpace(os.Getenv("DB_SSLMODE"))

	c.Redis.Host = strings.TrimSpace(os.Getenv("REDIS_HOST"))
	c.Redis.Port, parseErrs = optionalInt("REDIS_PORT", parseErrs)

	c.Context.Secret = os.Getenv("AUTHZ_CONTEXT_SECRET")
	c.Context.Issuer = strings.TrimSpace(os.Getenv("AUTHZ_CONTEXT_ISSUER"))
	c.Context.TTL, parseErrs = optionalDuration("AUTHZ_CONTEXT_TTL", parseErrs)

	c.Function.AuthorizerName = strings.TrimSpace(os.Getenv("AUTHORIZER_FUNCTION_NAME"))
	c.Function.TargetName = strings.TrimSpace(os.Getenv("TARGET_FUNCTION_NAME"))
	c.Function.Version = strings.TrimSpace(os.Getenv("FUNCTION_VERSION"))
	c.Function.MemoryMB, parseErrs = optionalInt("FUNCTION_MEMORY_MB", parseErrs)

	c.Gateway.Stage = strings.TrimSpace(os.Getenv("GATEWAY_STAGE"))

	if err := joinErrors(parseErrs); err != nil {
		return Config{}, err
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Validate applies defaults in place and reports every remaining problem at once.
func (c *Config) Validate() error {
	var errs []error

	if c.App.Env == "" {
		c.App.Env = "local"
	}
	if !isValidEnv(c.App.Env) {
		errs = append(errs, fmt.Errorf("APP_ENV must be one of local, dev, staging, production, got %q", c.App.Env))
	}
	if c.App.Port == 0 {
		c.App.Port = 8080
	}
	if c.App.Port < 0 || c.App.Port > 65535 {
		errs = append(errs, fmt.Errorf("APP_PORT must be a valid port, got %d", c.App.Port))
	}

	if c.Audit.Store == "" {
		if c.IsLocal() {
			c.Audit.Store = StoreMemory
		} else {
			c.Audit.Store = StoreRedis
		}
	}
	if !isValidStore(c.Audit.Store) {
		errs = append(errs, fmt.Errorf("AUDIT_STORE must be one of redis, postgres, memory, got %q", c.Audit.Store))
	}
	if c.Audit.Region == "" {
		c.Audit.Region = "us-east-1"
	}
	if c.Audit.Table == "" {
		c.Audit.Table = "lambda-state-events"
	}
	if c.Audit.WriteTimeout == 0 {
		c.Audit.WriteTimeout = 250 * time.Millisecond
	}
	if c.Audit.WriteTimeout < 0 {
		errs = append(errs, fmt.Errorf("AUDIT_WRITE_TIMEOUT must be positive, got %s", c.Audit.WriteTimeout))
	}
	if c.Audit.PurgeInterval == 0 {
		c.Audit.PurgeInterval = time.Minute
	}
	if c.Audit.PurgeInterval < 0 {
		errs = append(errs, fmt.Errorf("AUDIT_PURGE_INTERVAL must be positive, got %s", c.Audit.PurgeInterval))
	}

	if c.Audit.Store == StorePostgres {
		errs = append(errs, c.validateDB()...)
	}
	if c.Audit.Store == StoreRedis {
		if c.Redis.Host == "" {
			c.Redis.Host = "localhost"
		}
		if c.Redis.Port == 0 {
			c.Redis.Port = 6379
		}
		if c.Redis.Port < 0 || c.Redis.Port > 65535 {
			errs = append(errs, fmt.Errorf("REDIS_PORT must be a valid port, got %d", c.Redis.Port))
		}
	}

	if c.Context.Secret == "" {
		if c.IsLocal() || c.App.Env == "dev" {
			c.Context.Secret = localContextSecret
		} else {
			errs = append(errs, errors.New("AUTHZ_CONTEXT_SECRET is required"))
		}
	}
	if c.Context.TTL == 0 {
		c.Context.TTL = 5 * time.Minute
	}
	if c.Context.TTL < 0 {
		errs = append(errs, fmt.Errorf("AUTHZ_CONTEXT_TTL must be positive, got %s", c.Context.TTL))
	}

	if c.Function.AuthorizerName == "" {
		c.Function.AuthorizerName = "authorizer-function"
	}
	if c.Function.TargetName == "" {
		c.Function.TargetName = "target-function"
	}
	if c.Function.Version == "" {
		c.Function.Version = "$LATEST"
	}
	if c.Function.MemoryMB == 0 {
		c.Function.MemoryMB = 128
	}
	if c.Function.MemoryMB < 0 {
		errs = append(errs, fmt.Errorf("FUNCTION_MEMORY_MB must be positive, got %d", c.Function.MemoryMB))
	}

	if c.Gateway.Stage == "" {
		c.Gateway.Stage = "prod"
	}

	return joinErrors(errs)
}

func (c *Config) validateDB() []error {
	var errs []error
	if c.DB.Host == "" {
		errs = append(errs, errors.New("DB_HOST is required"))
	}
	if c.DB.Port <= 0 || c.DB.Port > 65535 {
		errs = append(errs, fmt.Errorf("DB_PORT must be a valid port, got %d", c.DB.Port))
	}
	if c.DB.User == "" {
		errs = append(errs, errors.New("DB_USER is required"))
	}
	if c.DB.Name == "" {
		errs = append(errs, errors.New("DB_NAME is required"))
	}
	if c.DB.SSLMode == "" {
		if c.IsProduction() {
			errs = append(errs, errors.New("DB_SSLMODE is required in production"))
		} else {
			// Local-friendly default; production must be explicit.
			c.DB.SSLMode = "disable"
		}
	}
	if c.DB.SSLMode != "" && !isValidSSLMode(c.DB.SSLMode) {
		errs = append(errs, fmt.Errorf("DB_SSLMODE must be one of disable, require, verify-ca, verify-full, got %q", c.DB.SSLMode))
	}
	return errs
}

func (c Config) IsProduction() bool {
	return c.App.Env == "production"
}

func (c Config) IsLocal() bool {
	return c.App.Env == "local"
}

func (c Config) HTTPAddr() string {
	return fmt.Sprintf(":%d", c.App.Port)
}

func (c Config) PostgresDSN() string {
	// Avoid logging this string; it contains secrets.
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.DB.Host,
		c.DB.Port,
		c.DB.User,
		c.DB.Password,
		c.DB.Name,
		c.DB.SSLMode,
	)
}

func (c Config) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Redis.Host, c.Redis.Port)
}

func optionalInt(key string, errs []error) (int, []error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return 0, errs
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, append(errs, fmt.Errorf("%s must be an integer, got %q", key, v))
	}
	return n, errs
}

func optionalDuration(key string, errs []error) (time.Duration, []error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return 0, errs
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, append(errs, fmt.Errorf("%s must be a duration, got %q", key, v))
	}
	return d, errs
}

func isValidEnv(v string) bool {
	switch v {
	case "local", "dev", "staging", "production":
		return true
	default:
		return false
	}
}

func isValidStore(v string) bool {
	switch v {
	case StoreRedis, StorePostgres, StoreMemory:
		return true
	default:
		return false
	}
}

func isValidSSLMode(v string) bool {
	switch v {
	case "disable", "require", "verify-ca", "verify-full":
		return true
	default:
		return false
	}
}

func joinErrors(errs []error) error {
	if len(errs) == 0 {
		return nil
	}
	if len(errs) == 1 {
		return errs[0]
	}
	var b strings.Builder
	b.WriteString("config errors:\n")
	for _, e := range errs {
		b.WriteString("- ")
		b.WriteString(e.Error())
		b.WriteString("\n")
	}
	return errors.New(strings.TrimSpace(b.String()))
}
