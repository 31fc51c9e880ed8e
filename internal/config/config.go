package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Port            string
	PostgresURI     string
	RedisURI        string // optional; empty disables the Redis rate limiter
	JWTSecret       string
	JWTTTL          time.Duration
	NominatimURL    string
	GeocoderCountry string // country bias appended to geocoding queries
	AllowedOrigins  []string
	FrontendURL     string

	CloudinaryName      string
	CloudinaryAPIKey    string
	CloudinaryAPISecret string

	Environment string // ENV: production, development, etc.
}

func Load() *Config {
	ttlMinutes := 60
	if v, err := strconv.Atoi(getEnv("JWT_TTL_MINUTES", "60")); err == nil && v > 0 {
		ttlMinutes = v
	}

	allowedOrigins := parseOrigins(getEnv("ALLOWED_ORIGINS", ""))
	frontendURL := getEnv("FRONTEND_URL", "http://localhost:3000")
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{frontendURL}
	}

	return &Config{
		Port:            getEnv("PORT", "8080"),
		PostgresURI:     getEnv("POSTGRES_URI", "postgres://localhost:5432/saveagri?sslmode=disable"),
		RedisURI:        getEnv("REDIS_URI", ""),
		JWTSecret:       getEnv("JWT_SECRET", "your-secret-key-change-in-production"),
		JWTTTL:          time.Duration(ttlMinutes) * time.Minute,
		NominatimURL:    getEnv("NOMINATIM_URL", "https://nominatim.openstreetmap.org"),
		GeocoderCountry: getEnv("GEOCODER_COUNTRY", "France"),
		AllowedOrigins:  allowedOrigins,
		FrontendURL:     frontendURL,

		CloudinaryName:      getEnv("CLOUDINARY_CLOUD_NAME", ""),
		CloudinaryAPIKey:    getEnv("CLOUDINARY_API_KEY", ""),
		CloudinaryAPISecret: getEnv("CLOUDINARY_API_SECRET", ""),

		Environment: strings.ToLower(strings.TrimSpace(getEnv("ENV", "development"))),
	}
}

// IsProduction returns true when ENV is set to "production".
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func parseOrigins(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
