package config

import (
	"errors"
	"log"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration values.
type Config struct {
	AppPort           string        `mapstructure:"APP_PORT"`
	Env               string        `mapstructure:"ENV"`
	LogLevel          string        `mapstructure:"LOG_LEVEL"`
	JWTSecret         string        `mapstructure:"JWT_SECRET"`
	AppTokenTTL       time.Duration `mapstructure:"APP_TOKEN_TTL"`
	MaxRequestsPerMin int           `mapstructure:"MAX_REQUESTS_PER_MIN"`

	// MongoDB account mirror.
	DatabaseURL  string `mapstructure:"DATABASE_URL"`
	DatabaseName string `mapstructure:"DATABASE_NAME"`

	// Redis configuration.
	RedisAddr      string `mapstructure:"REDIS_ADDR"`
	RedisPassword  string `mapstructure:"REDIS_PASSWORD"`
	RedisSessionDB int    `mapstructure:"REDIS_SESSION_DB"`
	RedisFlowDB    int    `mapstructure:"REDIS_FLOW_DB"`

	// Firebase project.
	FirebaseAPIKey          string `mapstructure:"FIREBASE_API_KEY"`
	FirebaseCredentialsFile string `mapstructure:"FIREBASE_CREDENTIALS_FILE"`
	FirebaseProjectID       string `mapstructure:"FIREBASE_PROJECT_ID"`
	FirebaseRequestURI      string `mapstructure:"FIREBASE_REQUEST_URI"`

	// Auth flows.
	PhoneFlowTTL         time.Duration `mapstructure:"PHONE_FLOW_TTL"`
	RecaptchaTokenTTL    time.Duration `mapstructure:"RECAPTCHA_TOKEN_TTL"`
	OTPSendsPerHour      int           `mapstructure:"OTP_SENDS_PER_HOUR"`
	AuthRejectConcurrent bool          `mapstructure:"AUTH_REJECT_CONCURRENT"`
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

	setDefaults(viper.GetViper())

	if err := viper.ReadInConfig(); err != nil {
		log.Println("No config file found, using environment variables only")
	}

	if err := viper.Unmarshal(&AppConfig); err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if err := AppConfig.Validate(); err != nil {
		log.Fatalf("Invalid config: %v", err)
	}
}

// Validate rejects settings the server must not start with.
func (c Config) Validate() error {
	if c.Env == "production" && c.JWTSecret == "" {
		return errors.New("JWT_SECRET must be set in production")
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_PORT", "8080")
	v.SetDefault("ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("JWT_SECRET", "")
	v.SetDefault("APP_TOKEN_TTL", "24h")
	v.SetDefault("MAX_REQUESTS_PER_MIN", 100)
	// Empty keeps the account mirror disabled.
	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("DATABASE_NAME", "authlink")
	v.SetDefault("REDIS_ADDR", "localhost:6379")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_SESSION_DB", 0)
	v.SetDefault("REDIS_FLOW_DB", 1)
	v.SetDefault("FIREBASE_API_KEY", "")
	v.SetDefault("FIREBASE_CREDENTIALS_FILE", "")
	v.SetDefault("FIREBASE_PROJECT_ID", "")
	v.SetDefault("FIREBASE_REQUEST_URI", "http://localhost")
	v.SetDefault("PHONE_FLOW_TTL", "10m")
	v.SetDefault("RECAPTCHA_TOKEN_TTL", "2m")
	v.SetDefault("OTP_SENDS_PER_HOUR", 5)
	v.SetDefault("AUTH_REJECT_CONCURRENT", true)
}

func GetEnv() string {
	return AppConfig.Env
}

func IsProduction() bool {
	return GetEnv() == "production"
}
