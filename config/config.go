package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// MinSecretLength is the shortest accepted HS256 signing secret.
const MinSecretLength = 32

// MinBcryptCost matches the hasher's floor.
const MinBcryptCost = 10

const (
	DriverMongo  = "mongodb"
	DriverMemory = "memory"

	StorageNone = ""
	StorageR2   = "r2"
	StorageGCS  = "gcs"
)

type R2 struct {
	Bucket          string `env:"BUCKET"`
	AccessKeyID     string `env:"ACCESS_KEY_ID"`
	SecretAccessKey string `env:"SECRET_ACCESS_KEY"`
	Endpoint        string `env:"ENDPOINT"`
	PublicDomain    string `env:"PUBLIC_DOMAIN"`
}

// Database selects and addresses the document store. It is shared with the
// create-admin command.
type Database struct {
	DatabaseDriver string        `env:"DATABASE_DRIVER" envDefault:"mongodb"`
	MongoURI       string        `env:"MONGODB_URI"`
	DatabaseName   string        `env:"DATABASE_NAME" envDefault:"knowledgebase"`
	StoreTimeout   time.Duration `env:"STORE_TIMEOUT" envDefault:"5s"`
}

func (d Database) Validate() error {
	var errs []error
	switch d.DatabaseDriver {
	case DriverMongo:
		if d.MongoURI == "" {
			errs = append(errs, errors.New("MONGODB_URI is required when DATABASE_DRIVER=mongodb"))
		}
	case DriverMemory:
	default:
		errs = append(errs, fmt.Errorf("DATABASE_DRIVER must be %q or %q, got %q", DriverMongo, DriverMemory, d.DatabaseDriver))
	}
	if d.StoreTimeout <= 0 {
		errs = append(errs, errors.New("STORE_TIMEOUT must be positive"))
	}
	return errors.Join(errs...)
}

// Config holds the application configuration loaded from environment variables.
type Config struct {
	Port      int    `env:"PORT" envDefault:"8080"`
	GinMode   string `env:"GIN_MODE" envDefault:"release"`
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`

	Database

	JWTSecret             string `env:"JWT_SECRET,required"`
	JWTRefreshSecret      string `env:"JWT_REFRESH_SECRET,required"`
	TokenIssuer           string `env:"TOKEN_ISSUER" envDefault:"knowledgebase"`
	AccessTokenTTLMinutes int    `env:"ACCESS_TOKEN_TTL_MINUTES" envDefault:"15"`
	RefreshTokenTTLDays   int    `env:"REFRESH_TOKEN_TTL_DAYS" envDefault:"14"`
	BcryptCost            int    `env:"BCRYPT_COST" envDefault:"12"`
	HashMaxConcurrency    int    `env:"HASH_MAX_CONCURRENCY" envDefault:"4"`

	// Optional admin created at startup if missing.
	AdminEmail    string `env:"ADMIN_EMAIL"`
	AdminPassword string `env:"ADMIN_PASSWORD"`

	AllowedOrigins []string `env:"ALLOWED_ORIGINS" envSeparator:","`
	CookieSecure   bool     `env:"COOKIE_SECURE" envDefault:"true"`
	CookieDomain   string   `env:"COOKIE_DOMAIN"`

	ReadQueryMaxLimit     int `env:"READ_QUERY_MAX_LIMIT" envDefault:"100"`
	DefaultReadQueryLimit int `env:"DEFAULT_READ_QUERY_LIMIT" envDefault:"20"`

	// Attachment storage
	StorageProvider       string   `env:"STORAGE_PROVIDER"`
	R2                    R2       `envPrefix:"R2_"`
	GCSBucket             string   `env:"GCS_BUCKET"`
	CredentialsFile       string   `env:"CREDENTIALS_FILE_LOCATION"`
	AllowedFileExtensions []string `env:"ALLOWED_FILE_EXTENSIONS" envSeparator:"," envDefault:".pdf,.png,.jpg,.jpeg,.webp"`
	AllowedFileMimeTypes  []string `env:"ALLOWED_FILE_MIME_TYPES" envSeparator:"," envDefault:"application/pdf,image/png,image/jpeg,image/webp"`
	MaxUploadSizeMB       int      `env:"MAX_UPLOAD_SIZE_MB" envDefault:"5"`
	MaxArticleAttachments int      `env:"MAX_ARTICLE_ATTACHMENTS" envDefault:"4"`
}

// Load reads .env if there is one, then the environment. Variables already
// set in the environment win over the file.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}
	return Parse()
}

// Parse reads the environment only.
func Parse() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	var errs []error
	if err := c.Database.Validate(); err != nil {
		errs = append(errs, err)
	}

	if len(c.JWTSecret) < MinSecretLength {
		errs = append(errs, fmt.Errorf("JWT_SECRET must be at least %d bytes long", MinSecretLength))
	}
	if len(c.JWTRefreshSecret) < MinSecretLength {
		errs = append(errs, fmt.Errorf("JWT_REFRESH_SECRET must be at least %d bytes long", MinSecretLength))
	}
	if c.JWTSecret == c.JWTRefreshSecret {
		errs = append(errs, errors.New("JWT_SECRET and JWT_REFRESH_SECRET must differ"))
	}
	if c.AccessTokenTTLMinutes <= 0 || c.RefreshTokenTTLDays <= 0 {
		errs = append(errs, errors.New("token TTLs must be positive"))
	}
	if c.BcryptCost < MinBcryptCost {
		errs = append(errs, fmt.Errorf("BCRYPT_COST must be at least 10, got %d", c.BcryptCost))
	}
	if (c.AdminEmail == "") != (c.AdminPassword == "") {
		errs = append(errs, errors.New("ADMIN_EMAIL and ADMIN_PASSWORD must be set together"))
	}

	if c.DefaultReadQueryLimit < 1 || c.ReadQueryMaxLimit < c.DefaultReadQueryLimit {
		errs = append(errs, errors.New("need 1 <= DEFAULT_READ_QUERY_LIMIT <= READ_QUERY_MAX_LIMIT"))
	}

	switch c.LogFormat {
	case "json", "text":
	default:
		errs = append(errs, fmt.Errorf("LOG_FORMAT must be json or text, got %q", c.LogFormat))
	}
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(c.LogLevel)); err != nil {
		errs = append(errs, fmt.Errorf("LOG_LEVEL: %w", err))
	}

	switch strings.ToLower(c.StorageProvider) {
	case StorageNone:
	case StorageR2:
		if c.R2.Bucket == "" || c.R2.AccessKeyID == "" || c.R2.SecretAccessKey == "" || c.R2.Endpoint == "" {
			errs = append(errs, errors.New("STORAGE_PROVIDER=r2 needs R2_BUCKET, R2_ACCESS_KEY_ID, R2_SECRET_ACCESS_KEY and R2_ENDPOINT"))
		}
	case StorageGCS:
		if c.GCSBucket == "" {
			errs = append(errs, errors.New("STORAGE_PROVIDER=gcs needs GCS_BUCKET"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown STORAGE_PROVIDER %q", c.StorageProvider))
	}
	if c.MaxUploadSizeMB <= 0 || c.MaxArticleAttachments <= 0 {
		errs = append(errs, errors.New("MAX_UPLOAD_SIZE_MB and MAX_ARTICLE_ATTACHMENTS must be positive"))
	}

	return errors.Join(errs...)
}

func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

func (c *Config) AccessTTL() time.Duration {
	return time.Duration(c.AccessTokenTTLMinutes) * time.Minute
}

func (c *Config) RefreshTTL() time.Duration {
	return time.Duration(c.RefreshTokenTTLDays) * 24 * time.Hour
}

// Storage returns the normalized provider name.
func (c *Config) Storage() string {
	return strings.ToLower(c.StorageProvider)
}

// Level is LOG_LEVEL as a slog level. Load has already rejected bad values.
func (c *Config) Level() slog.Level {
	var lvl slog.Level
	_ = lvl.UnmarshalText([]byte(c.LogLevel))
	return lvl
}

// MaxUploadBytes bounds a whole multipart request: every allowed file at
// full size plus a little for the form framing.
func (c *Config) MaxUploadBytes() int64 {
	return int64(c.MaxArticleAttachments)*int64(c.MaxUploadSizeMB)<<20 + 1<<20
}
