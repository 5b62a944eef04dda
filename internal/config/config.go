package config

import (
	"log"
	"os"
	"sync"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"github.com/themagicbeanstock/backend-go/internal/engine"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	App      AppConfig
	Cache    CacheConfig
	Storage  StorageConfig
	Drive    DriveConfig
	Engine   EngineConfig
}

type ServerConfig struct {
	Port           string
	Mode           string
	LogLevel       string
	ReadTimeout    int
	WriteTimeout   int
	AllowedOrigins []string
	MetricsEnabled bool
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type AppConfig struct {
	UploadDir   string
	DataDir     string
	MaxUploadMB int
	TimeZone    string
	AutoMigrate bool
	LoadTimeout int // seconds
}

type CacheConfig struct {
	Enabled        bool
	RedisURL       string
	RedisHost      string
	RedisPort      string
	RedisPassword  string
	RedisDB        int
	PlanTTLSeconds int
}

// StorageConfig points at the S3-compatible bucket raw uploads are archived to.
type StorageConfig struct {
	Enabled   bool
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	Region    string
	UseSSL    bool
	Prefix    string
}

type DriveConfig struct {
	CredentialsJSON string
	FolderID        string
	DownloadDir     string
	Port            string
}

// EngineConfig holds the risk and planning policy values.
type EngineConfig struct {
	RiskWindowDays   int
	ExpiringSoonDays int
	DefaultWastePct  float64
	Precision        int
	UnknownSupplier  string
}

// Policy converts the configured values into an engine policy.
func (e EngineConfig) Policy() engine.Policy {
	p := engine.DefaultPolicy()
	p.RiskWindowDays = e.RiskWindowDays
	p.ExpiringSoonDays = e.ExpiringSoonDays
	p.DefaultWastePct = e.DefaultWastePct
	p.Precision = e.Precision
	if e.UnknownSupplier != "" {
		p.UnknownSupplier = e.UnknownSupplier
	}
	return p
}

var (
	once     sync.Once
	instance *Config
)

func Load() *Config {
	once.Do(func() {
		// Load .env file if it exists
		_ = godotenv.Load()

		setDefaults()

		// Read from environment variables
		viper.AutomaticEnv()

		ensureDir(viper.GetString("APP_UPLOAD_DIR"))
		ensureDir(viper.GetString("APP_DATA_DIR"))

		instance = fromViper()
	})

	return instance
}

func setDefaults() {
	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("SERVER_MODE", "debug")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("SERVER_READ_TIMEOUT", 15)
	viper.SetDefault("SERVER_WRITE_TIMEOUT", 30)
	viper.SetDefault("SERVER_ALLOWED_ORIGINS", []string{"*"})
	viper.SetDefault("METRICS_ENABLED", true)
	viper.SetDefault("DB_HOST", "localhost")
	viper.SetDefault("DB_PORT", "5432")
	viper.SetDefault("DB_USER", "postgres")
	viper.SetDefault("DB_PASSWORD", "postgres")
	viper.SetDefault("DB_NAME", "beanstock")
	viper.SetDefault("DB_SSLMODE", "disable")
	viper.SetDefault("APP_UPLOAD_DIR", "./data/uploads")
	viper.SetDefault("APP_DATA_DIR", "./data/output")
	viper.SetDefault("APP_MAX_UPLOAD_MB", 20)
	viper.SetDefault("APP_TIMEZONE", "Local")
	viper.SetDefault("APP_AUTO_MIGRATE", true)
	viper.SetDefault("APP_LOAD_TIMEOUT_SECONDS", 10)
	viper.SetDefault("CACHE_ENABLED", false)
	viper.SetDefault("REDIS_URL", "")
	viper.SetDefault("REDIS_HOST", "127.0.0.1")
	viper.SetDefault("REDIS_PORT", "6379")
	viper.SetDefault("REDIS_PASSWORD", "")
	viper.SetDefault("REDIS_DB", 0)
	viper.SetDefault("CACHE_PLAN_TTL_SECONDS", 300)
	viper.SetDefault("STORAGE_ENABLED", false)
	viper.SetDefault("STORAGE_REGION", "us-east-1")
	viper.SetDefault("STORAGE_USE_SSL", true)
	viper.SetDefault("STORAGE_PREFIX", "uploads")
	viper.SetDefault("DRIVE_DOWNLOAD_DIR", "./data/tmp/drive")
	viper.SetDefault("DRIVE_PORT", "8081")
	viper.SetDefault("RISK_WINDOW_DAYS", engine.DefaultRiskWindowDays)
	viper.SetDefault("EXPIRING_SOON_DAYS", engine.DefaultExpiringSoonDays)
	viper.SetDefault("DEFAULT_WASTE_PCT", engine.DefaultWastePct)
	viper.SetDefault("ROUNDING_PRECISION", engine.DefaultPrecision)
	viper.SetDefault("UNKNOWN_SUPPLIER_LABEL", engine.DefaultUnknownSupplier)
}

func fromViper() *Config {
	return &Config{
		Server: ServerConfig{
			Port:           viper.GetString("SERVER_PORT"),
			Mode:           viper.GetString("SERVER_MODE"),
			LogLevel:       viper.GetString("LOG_LEVEL"),
			ReadTimeout:    viper.GetInt("SERVER_READ_TIMEOUT"),
			WriteTimeout:   viper.GetInt("SERVER_WRITE_TIMEOUT"),
			AllowedOrigins: viper.GetStringSlice("SERVER_ALLOWED_ORIGINS"),
			MetricsEnabled: viper.GetBool("METRICS_ENABLED"),
		},
		Database: DatabaseConfig{
			Host:     viper.GetString("DB_HOST"),
			Port:     viper.GetString("DB_PORT"),
			User:     viper.GetString("DB_USER"),
			Password: viper.GetString("DB_PASSWORD"),
			DBName:   viper.GetString("DB_NAME"),
			SSLMode:  viper.GetString("DB_SSLMODE"),
		},
		App: AppConfig{
			UploadDir:   viper.GetString("APP_UPLOAD_DIR"),
			DataDir:     viper.GetString("APP_DATA_DIR"),
			MaxUploadMB: viper.GetInt("APP_MAX_UPLOAD_MB"),
			TimeZone:    viper.GetString("APP_TIMEZONE"),
			AutoMigrate: viper.GetBool("APP_AUTO_MIGRATE"),
			LoadTimeout: viper.GetInt("APP_LOAD_TIMEOUT_SECONDS"),
		},
		Cache: CacheConfig{
			Enabled:        viper.GetBool("CACHE_ENABLED"),
			RedisURL:       viper.GetString("REDIS_URL"),
			RedisHost:      viper.GetString("REDIS_HOST"),
			RedisPort:      viper.GetString("REDIS_PORT"),
			RedisPassword:  viper.GetString("REDIS_PASSWORD"),
			RedisDB:        viper.GetInt("REDIS_DB"),
			PlanTTLSeconds: viper.GetInt("CACHE_PLAN_TTL_SECONDS"),
		},
		Storage: StorageConfig{
			Enabled:   viper.GetBool("STORAGE_ENABLED"),
			Endpoint:  viper.GetString("STORAGE_ENDPOINT"),
			AccessKey: viper.GetString("STORAGE_ACCESS_KEY"),
			SecretKey: viper.GetString("STORAGE_SECRET_KEY"),
			Bucket:    viper.GetString("STORAGE_BUCKET"),
			Region:    viper.GetString("STORAGE_REGION"),
			UseSSL:    viper.GetBool("STORAGE_USE_SSL"),
			Prefix:    viper.GetString("STORAGE_PREFIX"),
		},
		Drive: DriveConfig{
			CredentialsJSON: viper.GetString("GOOGLE_DRIVE_CREDENTIALS_JSON"),
			FolderID:        viper.GetString("GOOGLE_DRIVE_FOLDER_ID"),
			DownloadDir:     viper.GetString("DRIVE_DOWNLOAD_DIR"),
			Port:            viper.GetString("DRIVE_PORT"),
		},
		Engine: EngineConfig{
			RiskWindowDays:   viper.GetInt("RISK_WINDOW_DAYS"),
			ExpiringSoonDays: viper.GetInt("EXPIRING_SOON_DAYS"),
			DefaultWastePct:  viper.GetFloat64("DEFAULT_WASTE_PCT"),
			Precision:        viper.GetInt("ROUNDING_PRECISION"),
			UnknownSupplier:  viper.GetString("UNKNOWN_SUPPLIER_LABEL"),
		},
	}
}

// Location resolves the configured time zone used to decide "today".
func (a AppConfig) Location() *time.Location {
	if a.TimeZone == "" || a.TimeZone == "Local" {
		return time.Local
	}
	loc, err := time.LoadLocation(a.TimeZone)
	if err != nil {
		log.Printf("unknown APP_TIMEZONE %q, falling back to local time: %v", a.TimeZone, err)
		return time.Local
	}
	return loc
}

func ensureDir(dir string) {
	if dir == "" {
		return
	}
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		if err := os.MkdirAll(dir, 0755); err != nil {
			log.Fatalf("Failed to create directory %s: %v", dir, err)
		}
	}
}
