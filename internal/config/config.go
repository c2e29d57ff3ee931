package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
	_ "time/tzdata" // 确保在精简镜像中也能识别时区
)

// Config 应用配置
type Config struct {
	Env         string
	DatabaseURL string
	Port        string
	SiteName    string
	SiteUrl     string

	// 上游 SWAPI
	SwapiProvider string
	SwapiBaseURL  string
	SwapiMaxPages int

	// 海报 / 预告片
	TMDBAPIKey      string
	FranchisePrefix string

	// 出站 HTTP
	HTTPTimeout    time.Duration
	HTTPMaxRetries int

	Location *time.Location

	LogLevel         string
	LogFormat        string
	LogRetentionDays int
	LogQueueSize     int

	TemplatesDir string
}

// Load 加载配置
func Load() (*Config, error) {
	dbUser := getEnv("DB_USER", "postgres")
	dbPass := getEnv("DB_PASSWORD", "postgres")
	dbHost := getEnv("DB_HOST", "localhost")
	dbPort := getEnv("DB_PORT", "5432")
	dbName := getEnv("DB_NAME", "swfilms")
	dbSSL := getEnv("DB_SSLMODE", "disable")

	dbURL := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		dbUser, dbPass, dbHost, dbPort, dbName, dbSSL)

	tzName := getEnv("TIMEZONE", "America/Sao_Paulo")
	loc, err := time.LoadLocation(tzName)
	if err != nil {
		return nil, fmt.Errorf("无效的时区 %q: %w", tzName, err)
	}

	provider := getEnv("SWAPI_PROVIDER", "py4e")
	switch provider {
	case "py4e", "tech", "node":
	default:
		return nil, fmt.Errorf("未知的 SWAPI_PROVIDER: %q (可选 py4e, tech, node)", provider)
	}

	port := getEnv("PORT", "5005")

	return &Config{
		Env:         getEnv("APP_ENV", "development"),
		DatabaseURL: dbURL,
		Port:        port,
		SiteName:    getEnv("SITE_NAME", "Star Wars Films"),
		SiteUrl:     getEnv("SITE_URL", "http://localhost:"+port),

		SwapiProvider: provider,
		SwapiBaseURL:  getEnv("SWAPI_BASE_URL", ""),
		SwapiMaxPages: getEnvInt("SWAPI_MAX_PAGES", 100),

		TMDBAPIKey:      getEnv("TMDB_API_KEY", ""),
		FranchisePrefix: getEnv("FRANCHISE_PREFIX", "Star Wars"),

		HTTPTimeout:    time.Duration(getEnvInt("HTTP_TIMEOUT_SECONDS", 20)) * time.Second,
		HTTPMaxRetries: getEnvInt("HTTP_MAX_RETRIES", 0),

		Location: loc,

		LogLevel:         getEnv("LOG_LEVEL", "info"),
		LogFormat:        getEnv("LOG_FORMAT", "json"),
		LogRetentionDays: getEnvInt("LOG_RETENTION_DAYS", 0),
		LogQueueSize:     getEnvInt("LOG_QUEUE_SIZE", 256),

		TemplatesDir: getEnv("TEMPLATES_DIR", "./web/templates"),
	}, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt 解析整数环境变量，解析失败时回退到默认值
func getEnvInt(key string, defaultValue int) int {
	v, err := strconv.Atoi(getEnv(key, strconv.Itoa(defaultValue)))
	if err != nil {
		return defaultValue
	}
	return v
}
