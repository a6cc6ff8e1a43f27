package config

import (
	"log"

	"github.com/spf13/viper"
)

// Config holds all configuration values.
type Config struct {
	AppPort     string `mapstructure:"APP_PORT"`
	DatabaseURL string `mapstructure:"DATABASE_URL"`
	Env         string `mapstructure:"ENV"`
	LogLevel    string `mapstructure:"LOG_LEVEL"`

	// Redis configuration.
	RedisAddr     string `mapstructure:"REDIS_ADDR"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`
	RedisCacheDB  int    `mapstructure:"REDIS_CACHE_DB"`
	RedisAuthDB   int    `mapstructure:"REDIS_AUTH_DB"`
	RedisQueueDB  int    `mapstructure:"REDIS_QUEUE_DB"`

	// Check-in token settings. The token secret signs both QR tokens
	// and device fingerprints; it must never leave the server.
	TokenSecret         string `mapstructure:"TOKEN_SECRET"`
	TokenValiditySecs   int    `mapstructure:"TOKEN_VALIDITY_SECONDS"`
	TokenGraceSecs      int    `mapstructure:"TOKEN_GRACE_SECONDS"`
	MaxQRPerMinute      int    `mapstructure:"MAX_QR_PER_MINUTE"`
	MaxScansPerMinute   int    `mapstructure:"MAX_SCANS_PER_MINUTE"`
	SessionSecret       string `mapstructure:"SESSION_SECRET"`
	ReminderLeadMinutes int    `mapstructure:"REMINDER_LEAD_MINUTES"`

	// Firebase service account for FCM pushes.
	FirebaseCredentialsFile string `mapstructure:"FIREBASE_CREDENTIALS_FILE"`
}

var AppConfig Config

func LoadConfig() {
	// Look for a config file named "config.yaml" in the current and "config" directory.
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	// Automatically use environment variables where available.
	viper.AutomaticEnv()

	// Set default values.
	viper.SetDefault("APP_PORT", "8080")
	viper.SetDefault("ENV", "development")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("DATABASE_URL", "mongodb://localhost:27017")
	viper.SetDefault("REDIS_ADDR", "localhost:6379")
	viper.SetDefault("REDIS_PASSWORD", "")
	viper.SetDefault("REDIS_CACHE_DB", 0)
	viper.SetDefault("REDIS_AUTH_DB", 1)
	viper.SetDefault("REDIS_QUEUE_DB", 2)
	viper.SetDefault("TOKEN_VALIDITY_SECONDS", 30)
	viper.SetDefault("TOKEN_GRACE_SECONDS", 5)
	viper.SetDefault("MAX_QR_PER_MINUTE", 60)
	viper.SetDefault("MAX_SCANS_PER_MINUTE", 100)
	viper.SetDefault("REMINDER_LEAD_MINUTES", 30)
	viper.SetDefault("FIREBASE_CREDENTIALS_FILE", "serviceAccountKey.json")

	if err := viper.ReadInConfig(); err != nil {
		log.Println("No config file found, using environment variables only")
	}

	if err := viper.Unmarshal(&AppConfig); err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if AppConfig.TokenSecret == "" {
		log.Fatal("TOKEN_SECRET must be set")
	}
	if AppConfig.SessionSecret == "" {
		AppConfig.SessionSecret = AppConfig.TokenSecret
	}
}

func GetEnv() string {
	return AppConfig.Env
}

func IsProduction() bool {
	return GetEnv() == "production"
}
