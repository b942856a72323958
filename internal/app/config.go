package app

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/yungbote/tourconfig-backend/internal/platform/envutil"
	"github.com/yungbote/tourconfig-backend/internal/platform/logger"
)

type DatabaseConfig struct {
	Driver           string `yaml:"driver"`
	PostgresHost     string `yaml:"postgres_host"`
	PostgresPort     string `yaml:"postgres_port"`
	PostgresUser     string `yaml:"postgres_user"`
	PostgresPassword string `yaml:"postgres_password"`
	PostgresName     string `yaml:"postgres_name"`
	SQLitePath       string `yaml:"sqlite_path"`
}

type StorageConfig struct {
	Mode            string `yaml:"mode"`
	EmulatorHost    string `yaml:"emulator_host"`
	PublicBaseURL   string `yaml:"public_base_url"`
	TourBucket      string `yaml:"tour_bucket"`
	TourCDNDomain   string `yaml:"tour_cdn_domain"`
	AvatarBucket    string `yaml:"avatar_bucket"`
	AvatarCDNDomain string `yaml:"avatar_cdn_domain"`
}

type CatalogConfig struct {
	Dir          string `yaml:"dir"`
	BucketPrefix string `yaml:"bucket_prefix"`
	// Watch reloads a directory catalog when its files change.
	Watch bool `yaml:"watch"`
}

type RedisConfig struct {
	Addr       string `yaml:"addr"`
	Password   string `yaml:"password"`
	DB         int    `yaml:"db"`
	KeyPrefix  string `yaml:"key_prefix"`
	SSEChannel string `yaml:"sse_channel"`
}

// Config is read from an optional YAML file (CONFIG_PATH); environment
// variables override whatever the file sets.
type Config struct {
	Port        string `yaml:"port"`
	LogMode     string `yaml:"log_mode"`
	Environment string `yaml:"environment"`
	Version     string `yaml:"version"`

	JWTSecretKey   string        `yaml:"jwt_secret_key"`
	AccessTokenTTL time.Duration `yaml:"access_token_ttl"`
	AdminEmails    []string      `yaml:"admin_emails"`

	Database DatabaseConfig `yaml:"database"`
	Storage  StorageConfig  `yaml:"storage"`
	Catalog  CatalogConfig  `yaml:"catalog"`
	Redis    RedisConfig    `yaml:"redis"`

	SelectionTTL       time.Duration `yaml:"selection_ttl"`
	AllowedOrigins     []string      `yaml:"allowed_origins"`
	TourAssetsViaProxy bool          `yaml:"tour_assets_via_proxy"`

	AvatarFontPath   string `yaml:"avatar_font_path"`
	AvatarColorsPath string `yaml:"avatar_colors_path"`
}

func defaultConfig() Config {
	return Config{
		Port:           "8080",
		LogMode:        "development",
		Environment:    "development",
		JWTSecretKey:   "defaultsecret",
		AccessTokenTTL: time.Hour,
		Database: DatabaseConfig{
			Driver:       "postgres",
			PostgresHost: "localhost",
			PostgresPort: "5432",
			PostgresUser: "postgres",
			PostgresName: "tourconfig",
			SQLitePath:   "tourconfig.db",
		},
		Catalog:      CatalogConfig{Dir: "assets/catalog"},
		SelectionTTL: 7 * 24 * time.Hour,
	}
}

// LoadConfig builds the runtime config: defaults, then CONFIG_PATH, then env.
func LoadConfig() (Config, error) {
	cfg := defaultConfig()
	if path := envutil.String("CONFIG_PATH", ""); path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	applyEnv(&cfg)
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	cfg.Port = envutil.String("PORT", cfg.Port)
	cfg.LogMode = envutil.String("LOG_MODE", cfg.LogMode)
	cfg.Environment = envutil.String("APP_ENV", cfg.Environment)
	cfg.Version = envutil.String("APP_VERSION", cfg.Version)

	cfg.JWTSecretKey = envutil.String("JWT_SECRET_KEY", cfg.JWTSecretKey)
	cfg.AccessTokenTTL = envutil.Duration("ACCESS_TOKEN_TTL", cfg.AccessTokenTTL)
	if admins := envutil.List("ADMIN_EMAILS"); admins != nil {
		cfg.AdminEmails = admins
	}

	db := &cfg.Database
	db.Driver = envutil.String("DB_DRIVER", db.Driver)
	db.PostgresHost = envutil.String("POSTGRES_HOST", db.PostgresHost)
	db.PostgresPort = envutil.String("POSTGRES_PORT", db.PostgresPort)
	db.PostgresUser = envutil.String("POSTGRES_USER", db.PostgresUser)
	db.PostgresPassword = envutil.String("POSTGRES_PASSWORD", db.PostgresPassword)
	db.PostgresName = envutil.String("POSTGRES_NAME", db.PostgresName)
	db.SQLitePath = envutil.String("SQLITE_PATH", db.SQLitePath)

	st := &cfg.Storage
	st.Mode = envutil.String("OBJECT_STORAGE_MODE", st.Mode)
	st.EmulatorHost = envutil.String("STORAGE_EMULATOR_HOST", st.EmulatorHost)
	st.PublicBaseURL = envutil.String("OBJECT_STORAGE_PUBLIC_BASE_URL", st.PublicBaseURL)
	st.TourBucket = envutil.String("TOUR_GCS_BUCKET_NAME", st.TourBucket)
	st.TourCDNDomain = envutil.String("TOUR_CDN_DOMAIN", st.TourCDNDomain)
	st.AvatarBucket = envutil.String("AVATAR_GCS_BUCKET_NAME", st.AvatarBucket)
	st.AvatarCDNDomain = envutil.String("AVATAR_CDN_DOMAIN", st.AvatarCDNDomain)

	cfg.Catalog.Dir = envutil.String("CATALOG_DIR", cfg.Catalog.Dir)
	cfg.Catalog.BucketPrefix = envutil.String("CATALOG_BUCKET_PREFIX", cfg.Catalog.BucketPrefix)
	cfg.Catalog.Watch = envutil.Bool("CATALOG_WATCH", cfg.Catalog.Watch)

	cfg.Redis.Addr = envutil.String("REDIS_ADDR", cfg.Redis.Addr)
	cfg.Redis.Password = envutil.String("REDIS_PASSWORD", cfg.Redis.Password)
	cfg.Redis.DB = envutil.Int("REDIS_DB", cfg.Redis.DB)
	cfg.Redis.KeyPrefix = envutil.String("REDIS_KEY_PREFIX", cfg.Redis.KeyPrefix)
	cfg.Redis.SSEChannel = envutil.String("REDIS_SSE_CHANNEL", cfg.Redis.SSEChannel)

	cfg.SelectionTTL = envutil.Duration("SELECTION_TTL", cfg.SelectionTTL)
	if origins := envutil.List("CORS_ALLOWED_ORIGINS"); origins != nil {
		cfg.AllowedOrigins = origins
	}
	cfg.TourAssetsViaProxy = envutil.Bool("TOUR_ASSETS_VIA_PROXY", cfg.TourAssetsViaProxy)

	cfg.AvatarFontPath = envutil.String("AVATAR_FONT_PATH", cfg.AvatarFontPath)
	cfg.AvatarColorsPath = envutil.String("AVATAR_COLORS_PATH", cfg.AvatarColorsPath)
}

func (c Config) validate() error {
	switch strings.ToLower(c.Database.Driver) {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.Database.Driver)
	}
	if c.Catalog.BucketPrefix == "" && c.Catalog.Dir == "" {
		return fmt.Errorf("one of CATALOG_DIR or CATALOG_BUCKET_PREFIX is required")
	}
	if c.Catalog.BucketPrefix != "" && c.Storage.TourBucket == "" {
		return fmt.Errorf("CATALOG_BUCKET_PREFIX needs TOUR_GCS_BUCKET_NAME")
	}
	return nil
}

// warnInsecureDefaults flags settings that are fine locally and wrong in production.
func (c Config) warnInsecureDefaults(log *logger.Logger) {
	if c.JWTSecretKey == "defaultsecret" {
		log.Warn("JWT_SECRET_KEY is the built-in default; set it outside development")
	}
	if c.Storage.TourBucket == "" {
		log.Warn("TOUR_GCS_BUCKET_NAME unset: file proxy and avatar uploads are disabled")
	}
}
