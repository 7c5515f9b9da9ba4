package config

import (
	"os"
	"strconv"
	"time"
)

const DefaultUpstreamURL = "https://omp-gh-progress.southclaws.workers.dev/"

type Config struct {
	UpstreamURL  string
	SiteTitle    string
	DBConn       string
	Port         string
	FetchTimeout time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

func LoadFromEnv() *Config {
	fetchTimeout := getEnvAsInt("FETCH_TIMEOUT", 15)
	readTimeout := getEnvAsInt("READ_TIMEOUT", 10)
	writeTimeout := getEnvAsInt("WRITE_TIMEOUT", 30)
	idleTimeout := getEnvAsInt("IDLE_TIMEOUT", 30)

	return &Config{
		UpstreamURL:  getEnv("UPSTREAM_URL", DefaultUpstreamURL),
		SiteTitle:    getEnv("SITE_TITLE", "open.mp Progress"),
		DBConn:       os.Getenv("DB_CONN"),
		Port:         getEnv("PORT", "8080"),
		FetchTimeout: time.Duration(fetchTimeout) * time.Second,
		ReadTimeout:  time.Duration(readTimeout) * time.Second,
		WriteTimeout: time.Duration(writeTimeout) * time.Second,
		IdleTimeout:  time.Duration(idleTimeout) * time.Second,
	}
}

func getEnv(k, d string) string {
	v := os.Getenv(k)
	if v == "" {
		return d
	}
	return v
}

func getEnvAsInt(k string, d int) int {
	v := os.Getenv(k)
	if v == "" {
		return d
	}
	i, err := strconv.Atoi(v)
	if err != nil || i <= 0 {
		return d
	}
	return i
}
