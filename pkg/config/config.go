package config

import (
	"errors"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string

	Upstream  UpstreamConfig
	Geofence  GeofenceConfig
	Schedule  ScheduleConfig
	Bounds    BoundsConfig
	Photos    PhotosConfig
	Submit    SubmitConfig
	Redis     RedisConfig
	JWT       JWTConfig
	CORS      CORSConfig
	Log       LogConfig
	Dashboard DashboardConfig
}

// UpstreamConfig points at the college API serving rosters, timetables,
// notices and attendance records.
type UpstreamConfig struct {
	BaseURL string
	Timeout time.Duration
}

// GeofenceConfig defines the campus anchor point and allowed radius.
type GeofenceConfig struct {
	AnchorLatitude  float64
	AnchorLongitude float64
	RadiusMeters    float64
}

// ScheduleConfig tunes day resolution. ClassDuration bounds how long a
// class counts as ongoing after its start time. RestDay has no classes;
// FallbackDay is shown in its place.
type ScheduleConfig struct {
	ClassDuration time.Duration
	RestDay       string
	FallbackDay   string
}

// BoundsConfig caps the FIFO-bounded dashboard lists.
type BoundsConfig struct {
	HistoryCap      int
	ActivityCap     int
	NotificationCap int
}

// PhotosConfig controls captured snapshot storage and signed links.
type PhotosConfig struct {
	StorageDir      string
	SignedURLSecret string
	SignedURLTTL    time.Duration
}

// SubmitConfig tunes the background dispatcher pushing finalized
// attendance records to the upstream API.
type SubmitConfig struct {
	Workers    int
	BufferSize int
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
	Channel  string
}

type JWTConfig struct {
	Secret string
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// DashboardConfig governs dashboard snapshot caching.
type DashboardConfig struct {
	CacheTTL time.Duration
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
	}

	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")

	cfg.Upstream = UpstreamConfig{
		BaseURL: v.GetString("UPSTREAM_BASE_URL"),
		Timeout: parseDuration(v.GetString("UPSTREAM_TIMEOUT"), 10*time.Second),
	}

	cfg.Geofence = GeofenceConfig{
		AnchorLatitude:  v.GetFloat64("GEOFENCE_ANCHOR_LAT"),
		AnchorLongitude: v.GetFloat64("GEOFENCE_ANCHOR_LNG"),
		RadiusMeters:    v.GetFloat64("GEOFENCE_RADIUS_METERS"),
	}

	cfg.Schedule = ScheduleConfig{
		ClassDuration: parseDuration(v.GetString("SCHEDULE_CLASS_DURATION"), time.Hour),
		RestDay:       v.GetString("SCHEDULE_REST_DAY"),
		FallbackDay:   v.GetString("SCHEDULE_FALLBACK_DAY"),
	}

	cfg.Bounds = BoundsConfig{
		HistoryCap:      v.GetInt("HISTORY_CAP"),
		ActivityCap:     v.GetInt("ACTIVITY_CAP"),
		NotificationCap: v.GetInt("NOTIFICATION_CAP"),
	}

	cfg.Photos = PhotosConfig{
		StorageDir:      v.GetString("PHOTOS_STORAGE_DIR"),
		SignedURLSecret: v.GetString("PHOTOS_SIGNED_URL_SECRET"),
		SignedURLTTL:    parseDuration(v.GetString("PHOTOS_SIGNED_URL_TTL"), 24*time.Hour),
	}

	cfg.Submit = SubmitConfig{
		Workers:    v.GetInt("SUBMIT_WORKERS"),
		BufferSize: v.GetInt("SUBMIT_BUFFER_SIZE"),
	}

	cfg.Redis = RedisConfig{
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
		Channel:  v.GetString("REDIS_EVENT_CHANNEL"),
	}

	cfg.JWT = JWTConfig{Secret: v.GetString("JWT_SECRET")}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Dashboard = DashboardConfig{
		CacheTTL: parseDuration(v.GetString("DASHBOARD_CACHE_TTL"), 5*time.Minute),
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api")

	v.SetDefault("UPSTREAM_BASE_URL", "http://localhost:5000/api")
	v.SetDefault("UPSTREAM_TIMEOUT", "10s")

	// Campus anchor point with a 15 meter perimeter.
	v.SetDefault("GEOFENCE_ANCHOR_LAT", 21.2500)
	v.SetDefault("GEOFENCE_ANCHOR_LNG", 81.6300)
	v.SetDefault("GEOFENCE_RADIUS_METERS", 15)

	v.SetDefault("SCHEDULE_CLASS_DURATION", "1h")
	v.SetDefault("SCHEDULE_REST_DAY", "Sunday")
	v.SetDefault("SCHEDULE_FALLBACK_DAY", "Monday")

	v.SetDefault("HISTORY_CAP", 50)
	v.SetDefault("ACTIVITY_CAP", 10)
	v.SetDefault("NOTIFICATION_CAP", 20)

	v.SetDefault("PHOTOS_STORAGE_DIR", "./photos")
	v.SetDefault("PHOTOS_SIGNED_URL_TTL", "24h")

	v.SetDefault("SUBMIT_WORKERS", 2)
	v.SetDefault("SUBMIT_BUFFER_SIZE", 16)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("REDIS_EVENT_CHANNEL", "smartattend:events")

	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("DASHBOARD_CACHE_TTL", "5m")
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}
	return d
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
