package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Store drivers
const (
	DriverFirestore = "firestore"
	DriverPostgres  = "postgres"
	DriverMySQL     = "mysql"
	DriverMemory    = "memory"
)

type Config struct {
	Server struct {
		Port           int      `yaml:"port" validate:"min=1,max=65535"`
		AllowedOrigins []string `yaml:"allowedOrigins"`
	} `yaml:"server"`

	Console struct {
		LimitPerPage       int           `yaml:"limitPerPage" validate:"min=1,max=500"`
		SessionIdleTimeout time.Duration `yaml:"sessionIdleTimeout"`
	} `yaml:"console"`

	Store struct {
		Driver     string `yaml:"driver" validate:"oneof=firestore postgres mysql memory"`
		Collection string `yaml:"collection" validate:"required"`
	} `yaml:"store"`

	Firestore struct {
		ProjectID       string `yaml:"projectId"`
		APIKey          string `yaml:"apiKey"`
		CredentialsFile string `yaml:"credentialsFile"`
	} `yaml:"firestore"`

	Database struct {
		Host     string `yaml:"host"`
		Port     int    `yaml:"port"`
		User     string `yaml:"user"`
		Password string `yaml:"password"`
		Name     string `yaml:"name"`
		SSLMode  string `yaml:"sslMode"`
	} `yaml:"database"`

	Minio struct {
		Enabled    bool   `yaml:"enabled"`
		Endpoint   string `yaml:"endpoint"`
		AccessKey  string `yaml:"accessKey"`
		SecretKey  string `yaml:"secretKey"`
		BucketName string `yaml:"bucketName"`
		Region     string `yaml:"region"`
		UseSSL     bool   `yaml:"useSSL"`
	} `yaml:"minio"`

	RateLimit struct {
		RPS   float64 `yaml:"rps"`
		Burst int     `yaml:"burst"`
	} `yaml:"rateLimit"`

	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"log"`
}

// Default config, dipakai kalau file / env tidak mengisi
func Default() *Config {
	var c Config
	c.Server.Port = 8080
	c.Console.LimitPerPage = 15
	c.Console.SessionIdleTimeout = 30 * time.Minute
	c.Store.Driver = DriverFirestore
	c.Store.Collection = "enquiries"
	c.Database.Host = "localhost"
	c.Database.SSLMode = "disable"
	c.Minio.BucketName = "enquiry-archive"
	c.RateLimit.RPS = 5
	c.RateLimit.Burst = 10
	c.Log.Level = "info"
	c.Log.Format = "console"
	return &c
}

// Load baca file config.yaml, lalu override dari environment (.env ikut dibaca).
// A missing file is fine as long as the environment fills the gaps.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := Default()
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
	case errors.Is(err, fs.ErrNotExist):
	default:
		return nil, err
	}

	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks struct tags plus the per-driver requirements
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	switch c.Store.Driver {
	case DriverFirestore:
		if c.Firestore.ProjectID == "" {
			return errors.New("invalid config: firestore.projectId is required")
		}
	case DriverPostgres, DriverMySQL:
		if c.Database.Name == "" || c.Database.User == "" {
			return errors.New("invalid config: database.name and database.user are required")
		}
	}
	if c.Minio.Enabled && (c.Minio.Endpoint == "" || c.Minio.BucketName == "") {
		return errors.New("invalid config: minio.endpoint and minio.bucketName are required when minio is enabled")
	}
	return nil
}

type lookupFunc func(string) (string, bool)

func (c *Config) applyEnv(lookup lookupFunc) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			*dst = strings.TrimSpace(v)
		}
	}
	num := func(key string, dst *int) error {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			n, err := strconv.Atoi(strings.TrimSpace(v))
			if err != nil {
				return fmt.Errorf("invalid %s: %w", key, err)
			}
			*dst = n
		}
		return nil
	}
	flag := func(key string, dst *bool) error {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			b, err := strconv.ParseBool(strings.TrimSpace(v))
			if err != nil {
				return fmt.Errorf("invalid %s: %w", key, err)
			}
			*dst = b
		}
		return nil
	}

	str("STORE_DRIVER", &c.Store.Driver)
	str("ENQUIRY_COLLECTION", &c.Store.Collection)
	str("FIRESTORE_PROJECT_ID", &c.Firestore.ProjectID)
	str("FIRESTORE_API_KEY", &c.Firestore.APIKey)
	str("FIRESTORE_CREDENTIALS_FILE", &c.Firestore.CredentialsFile)
	str("DB_HOST", &c.Database.Host)
	str("DB_USER", &c.Database.User)
	str("DB_PASSWORD", &c.Database.Password)
	str("DB_NAME", &c.Database.Name)
	str("DB_SSLMODE", &c.Database.SSLMode)
	str("MINIO_ENDPOINT", &c.Minio.Endpoint)
	str("MINIO_ACCESS_KEY", &c.Minio.AccessKey)
	str("MINIO_SECRET_KEY", &c.Minio.SecretKey)
	str("MINIO_BUCKET", &c.Minio.BucketName)
	str("MINIO_REGION", &c.Minio.Region)
	str("LOG_LEVEL", &c.Log.Level)
	str("LOG_FORMAT", &c.Log.Format)

	for key, dst := range map[string]*int{
		"SERVER_PORT":            &c.Server.Port,
		"DB_PORT":                &c.Database.Port,
		"CONSOLE_LIMIT_PER_PAGE": &c.Console.LimitPerPage,
	} {
		if err := num(key, dst); err != nil {
			return err
		}
	}
	for key, dst := range map[string]*bool{
		"MINIO_ENABLED": &c.Minio.Enabled,
		"MINIO_USE_SSL": &c.Minio.UseSSL,
	} {
		if err := flag(key, dst); err != nil {
			return err
		}
	}
	if v, ok := lookup("SERVER_ALLOWED_ORIGINS"); ok && strings.TrimSpace(v) != "" {
		c.Server.AllowedOrigins = strings.Split(v, ",")
	}
	return nil
}

// Helper untuk build DSN MySQL
func (c *Config) MySQLDSN() string {
	port := c.Database.Port
	if port == 0 {
		port = 3306
	}
	// clientFoundRows makes UPDATE report matched rows, so re-marking an
	// attended enquiry is not mistaken for a missing one.
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true&charset=utf8mb4&loc=UTC&clientFoundRows=true",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		port,
		c.Database.Name,
	)
}

// Helper untuk build DSN Postgres
func (c *Config) PostgresDSN() string {
	port := c.Database.Port
	if port == 0 {
		port = 5432
	}
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Database.Host,
		port,
		c.Database.User,
		c.Database.Password,
		c.Database.Name,
		c.Database.SSLMode,
	)
}
