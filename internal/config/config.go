package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Config 应用配置
type Config struct {
	Env         string
	DatabaseURL string
	Port        string
	SiteName    string
	SiteUrl     string

	// TMDB 上游
	TMDBToken    string
	TMDBBaseURL  string
	TMDBImageURL string

	// 同步任务
	SyncPages int      // 每次同步抓取的页数
	SyncAt    []string // 每日定时同步时刻，格式 HH:MM

	LogFile string // 可选，设置后日志写入轮转文件
}

// Load 加载配置
func Load() *Config {
	dbUser := getEnv("DB_USER", "postgres")
	dbPass := getEnv("DB_PASSWORD", "postgres")
	dbHost := getEnv("DB_HOST", "localhost")
	dbPort := getEnv("DB_PORT", "5432")
	dbName := getEnv("DB_NAME", "moviepulse")
	dbSSL := getEnv("DB_SSLMODE", "disable")

	dbURL := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		dbUser, dbPass, dbHost, dbPort, dbName, dbSSL)

	syncPages, _ := strconv.Atoi(getEnv("SYNC_PAGES", "3"))
	if syncPages < 1 {
		syncPages = 1
	}

	// 每日两个固定同步时刻
	var syncAt []string
	for _, t := range strings.Split(getEnv("SYNC_AT", "03:00,15:00"), ",") {
		if t = strings.TrimSpace(t); t != "" {
			syncAt = append(syncAt, t)
		}
	}

	tmdbToken := getEnv("TMDB_TOKEN", "")
	if tmdbToken == "" {
		fmt.Println("【警告】未设置 TMDB_TOKEN，上游请求将全部失败，仅能使用本地数据。")
	}

	return &Config{
		Env:          getEnv("APP_ENV", "development"),
		DatabaseURL:  dbURL,
		Port:         getEnv("PORT", "5006"),
		SiteName:     getEnv("SITE_NAME", "MoviePulse"),
		SiteUrl:      getEnv("SITE_URL", "http://localhost:5006"),
		TMDBToken:    tmdbToken,
		TMDBBaseURL:  getEnv("TMDB_BASE_URL", "https://api.themoviedb.org/3"),
		TMDBImageURL: getEnv("TMDB_IMAGE_URL", "https://image.tmdb.org/t/p"),
		SyncPages:    syncPages,
		SyncAt:       syncAt,
		LogFile:      getEnv("LOG_FILE", ""),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
