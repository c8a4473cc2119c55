package config

import (
	"os"
)

type Config struct {
	DatabaseURL string
	JWTSecret   string
	Port        string
	Environment string

	// 가격 분석 외부 API (OpenAI 분류 + 네이버 쇼핑 검색)
	OpenAIAPIKey      string
	OpenAIModel       string
	NaverClientID     string
	NaverClientSecret string

	// 에브리타임 크롤러 설정
	EverytimeCookie  string
	EverytimeBoardID string
}

func Load() *Config {
	// Default MySQL connection string
	defaultDSN := "root:hunter@tcp(127.0.0.1:3306)/hunter_market?charset=utf8mb4&parseTime=True&loc=Local"

	return &Config{
		DatabaseURL: getEnv("DATABASE_URL", defaultDSN),
		JWTSecret:   getEnv("JWT_SECRET", "your-secret-key"),
		Port:        getEnv("PORT", "8080"),
		Environment: getEnv("ENVIRONMENT", "development"),

		OpenAIAPIKey:      getEnv("OPENAI_API_KEY", ""),
		OpenAIModel:       getEnv("OPENAI_MODEL", "gpt-4o-mini"),
		NaverClientID:     getEnv("NAVER_CLIENT_ID", ""),
		NaverClientSecret: getEnv("NAVER_CLIENT_SECRET", ""),

		EverytimeCookie:  getEnv("EVERYTIME_COOKIE", ""),
		EverytimeBoardID: getEnv("EVERYTIME_BOARD_ID", "420883"),
	}
}

// IsProduction reports whether error detail should be hidden from responses.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
