package config

import (
	"time"

	"github.com/caarlos0/env/v10"
)

// Config centraliza la configuración del servicio.
type Config struct {
	HTTPPort      string   `env:"HTTP_PORT" envDefault:"8080"`
	PublicBaseURL string   `env:"PUBLIC_BASE_URL" envDefault:"http://localhost:8080"`
	CORSOrigins   []string `env:"CORS_ALLOWED_ORIGINS" envDefault:"*" envSeparator:","`
	DatabaseURL   string   `env:"DATABASE_URL,required"`

	JWTSecret               string `env:"JWT_SECRET,required,notEmpty"`
	JWTSessionTTLMinutes    int    `env:"JWT_SESSION_TTL_MINUTES" envDefault:"60"`
	OTPTTLMinutes           int    `env:"OTP_TTL_MINUTES" envDefault:"5"`
	ResetTokenTTLMinutes    int    `env:"RESET_TOKEN_TTL_MINUTES" envDefault:"5"`
	OTPRequestsPerWindow    int    `env:"OTP_REQUESTS_PER_WINDOW" envDefault:"3"`
	OTPRequestWindowMinutes int    `env:"OTP_REQUEST_WINDOW_MINUTES" envDefault:"10"`
	UnifyLoginErrors        bool   `env:"AUTH_UNIFY_LOGIN_ERRORS" envDefault:"false"`
	ExposeResetLink         bool   `env:"AUTH_EXPOSE_RESET_LINK" envDefault:"false"`

	SMTPHost     string `env:"SMTP_HOST"`
	SMTPPort     int    `env:"SMTP_PORT" envDefault:"587"`
	SMTPUser     string `env:"SMTP_USER"`
	SMTPPass     string `env:"SMTP_PASS"`
	SMTPFrom     string `env:"SMTP_FROM"`
	SMTPFromName string `env:"SMTP_FROM_NAME" envDefault:"Foodhub"`
	SMTPUseTLS   bool   `env:"SMTP_USE_TLS" envDefault:"false"`

	RedisAddr     string `env:"REDIS_ADDR"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`

	// Sin S3_BUCKET las imágenes se guardan en disco y se sirven desde /uploads.
	S3Bucket        string `env:"S3_BUCKET"`
	S3Region        string `env:"S3_REGION" envDefault:"us-east-1"`
	S3Endpoint      string `env:"S3_ENDPOINT"`
	S3AccessKey     string `env:"S3_ACCESS_KEY"`
	S3SecretKey     string `env:"S3_SECRET_KEY"`
	S3PublicBaseURL string `env:"S3_PUBLIC_BASE_URL"`
	S3UsePathStyle  bool   `env:"S3_USE_PATH_STYLE" envDefault:"true"`
	UploadDir       string `env:"UPLOAD_DIR" envDefault:"uploads"`
	MaxUploadMB     int64  `env:"MAX_UPLOAD_MB" envDefault:"5"`
}

// LoadConfig carga la configuración desde variables de entorno.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) SessionTTL() time.Duration {
	return time.Duration(c.JWTSessionTTLMinutes) * time.Minute
}

func (c *Config) OTPTTL() time.Duration {
	return time.Duration(c.OTPTTLMinutes) * time.Minute
}

func (c *Config) ResetTokenTTL() time.Duration {
	return time.Duration(c.ResetTokenTTLMinutes) * time.Minute
}

func (c *Config) OTPRequestWindow() time.Duration {
	return time.Duration(c.OTPRequestWindowMinutes) * time.Minute
}
