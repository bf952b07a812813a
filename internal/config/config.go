// internal/config/config.go
package config

import (
	"strings"
	"sync"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server  ServerConfig
	Swift   SwiftConfig
	TempURL TempURLConfig
	Session SessionConfig
	Cache   CacheConfig
}

type ServerConfig struct {
	Port           string
	Mode           string
	LogLevel       string
	ReadTimeout    int
	WriteTimeout   int
	AllowedOrigins []string
	// BaseURL overrides the scheme://host detected from requests
	BaseURL string
}

type SwiftConfig struct {
	AuthURL           string
	AuthVersion       int
	UserDomainName    string
	ProjectDomainName string
	ProjectName       string
	Region            string
	// StorageURL is the storage URL without the account, used for public listings
	StorageURL        string
	ConnectTimeout    time.Duration
	Timeout           time.Duration
	DeleteConcurrency int
}

type TempURLConfig struct {
	DownloadTTL        time.Duration
	ShareTTL           time.Duration
	UploadTTL          time.Duration
	UploadMaxFileSize  int64
	UploadMaxFileCount int
}

type SessionConfig struct {
	CookieName string
	TTL        time.Duration
	Secure     bool
	// Store is either "memory" or "redis"
	Store string
	// Secret keys the CSRF tokens; random per process when empty
	Secret string
}

type CacheConfig struct {
	Enabled       bool
	RedisURL      string
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int
	TTLSeconds    int
}

var (
	once     sync.Once
	instance *Config
)

// Load reads the configuration once and returns the shared instance
func Load() *Config {
	once.Do(func() {
		// Load .env file if it exists
		_ = godotenv.Load()
		instance = LoadFresh(viper.New())
	})

	return instance
}

// LoadFresh builds a Config from v without touching the shared instance
func LoadFresh(v *viper.Viper) *Config {
	setDefaults(v)

	// Read from environment variables
	v.AutomaticEnv()

	return &Config{
		Server: ServerConfig{
			Port:           v.GetString("SERVER_PORT"),
			Mode:           v.GetString("SERVER_MODE"),
			LogLevel:       v.GetString("LOG_LEVEL"),
			ReadTimeout:    v.GetInt("SERVER_READ_TIMEOUT"),
			WriteTimeout:   v.GetInt("SERVER_WRITE_TIMEOUT"),
			AllowedOrigins: v.GetStringSlice("SERVER_ALLOWED_ORIGINS"),
			BaseURL:        strings.TrimRight(v.GetString("BASE_URL"), "/"),
		},
		Swift: SwiftConfig{
			AuthURL:           v.GetString("SWIFT_AUTH_URL"),
			AuthVersion:       v.GetInt("SWIFT_AUTH_VERSION"),
			UserDomainName:    v.GetString("SWIFT_USER_DOMAIN_NAME"),
			ProjectDomainName: v.GetString("SWIFT_PROJECT_DOMAIN_NAME"),
			ProjectName:       v.GetString("SWIFT_PROJECT_NAME"),
			Region:            v.GetString("SWIFT_REGION"),
			StorageURL:        v.GetString("STORAGE_URL"),
			ConnectTimeout:    v.GetDuration("SWIFT_CONNECT_TIMEOUT"),
			Timeout:           v.GetDuration("SWIFT_TIMEOUT"),
			DeleteConcurrency: v.GetInt("SWIFT_DELETE_CONCURRENCY"),
		},
		TempURL: TempURLConfig{
			DownloadTTL:        v.GetDuration("TEMPURL_DOWNLOAD_TTL"),
			ShareTTL:           v.GetDuration("TEMPURL_SHARE_TTL"),
			UploadTTL:          v.GetDuration("UPLOAD_TTL"),
			UploadMaxFileSize:  v.GetInt64("UPLOAD_MAX_FILE_SIZE"),
			UploadMaxFileCount: v.GetInt("UPLOAD_MAX_FILE_COUNT"),
		},
		Session: SessionConfig{
			CookieName: v.GetString("SESSION_COOKIE_NAME"),
			TTL:        v.GetDuration("SESSION_TTL"),
			Secure:     v.GetBool("SESSION_SECURE"),
			Store:      strings.ToLower(v.GetString("SESSION_STORE")),
			Secret:     v.GetString("SESSION_SECRET"),
		},
		Cache: CacheConfig{
			Enabled:       v.GetBool("CACHE_ENABLED"),
			RedisURL:      v.GetString("REDIS_URL"),
			RedisHost:     v.GetString("REDIS_HOST"),
			RedisPort:     v.GetString("REDIS_PORT"),
			RedisPassword: v.GetString("REDIS_PASSWORD"),
			RedisDB:       v.GetInt("REDIS_DB"),
			TTLSeconds:    v.GetInt("CACHE_LISTING_TTL_SECONDS"),
		},
	}
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("SERVER_PORT", "8080")
	v.SetDefault("SERVER_MODE", "debug")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("SERVER_READ_TIMEOUT", 30)
	v.SetDefault("SERVER_WRITE_TIMEOUT", 30)
	v.SetDefault("SERVER_ALLOWED_ORIGINS", []string{})
	v.SetDefault("BASE_URL", "")

	v.SetDefault("SWIFT_AUTH_URL", "http://127.0.0.1:5000/v3")
	v.SetDefault("SWIFT_AUTH_VERSION", 3)
	v.SetDefault("SWIFT_USER_DOMAIN_NAME", "Default")
	v.SetDefault("SWIFT_PROJECT_DOMAIN_NAME", "Default")
	v.SetDefault("SWIFT_PROJECT_NAME", "")
	v.SetDefault("SWIFT_REGION", "")
	v.SetDefault("STORAGE_URL", "http://127.0.0.1:8080/v1/")
	v.SetDefault("SWIFT_CONNECT_TIMEOUT", 10*time.Second)
	v.SetDefault("SWIFT_TIMEOUT", 60*time.Second)
	v.SetDefault("SWIFT_DELETE_CONCURRENCY", 8)

	v.SetDefault("TEMPURL_DOWNLOAD_TTL", 10*time.Minute)
	v.SetDefault("TEMPURL_SHARE_TTL", 7*24*time.Hour)
	v.SetDefault("UPLOAD_TTL", 15*time.Minute)
	v.SetDefault("UPLOAD_MAX_FILE_SIZE", int64(5*1024*1024*1024))
	v.SetDefault("UPLOAD_MAX_FILE_COUNT", 1)

	v.SetDefault("SESSION_COOKIE_NAME", "swiftbrowser_session")
	v.SetDefault("SESSION_TTL", 12*time.Hour)
	v.SetDefault("SESSION_SECURE", false)
	v.SetDefault("SESSION_STORE", "memory")
	v.SetDefault("SESSION_SECRET", "")

	v.SetDefault("CACHE_ENABLED", false)
	v.SetDefault("REDIS_URL", "")
	v.SetDefault("REDIS_HOST", "127.0.0.1")
	v.SetDefault("REDIS_PORT", "6379")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("CACHE_LISTING_TTL_SECONDS", 30)
}
