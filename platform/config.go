package platform

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds everything the server reads from the environment.
type Config struct {
	Port       string
	CORSOrigin string
	LogPath    string

	SQLDriver   string
	SQLDSN      string
	SQLHost     string
	SQLPort     string
	SQLUser     string
	SQLPassword string
	SQLDBName   string

	AccessSecret string
	TokenTTL     time.Duration

	StorageDir    string
	StorageBucket string
	PublicBaseURL string

	MaxImages           int
	AssistantReplyDelay time.Duration
	TrialDays           int
	WorkspaceTTL        time.Duration
	MaintenanceCron     string

	SMTPAddr     string
	SMTPUser     string
	SMTPPassword string
	MailFrom     string
}

// LoadConfig reads an optional .env file and then the process environment.
func LoadConfig(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			fmt.Println("failed to load the env file")
		}
	}

	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("PORT", "8080")
	v.SetDefault("CORS_ORIGIN", "http://localhost")
	v.SetDefault("LOG_PATH", "./log")
	v.SetDefault("SQL_DRIVER", "sqlite")
	v.SetDefault("SQL_DSN", "./data/approcciala.db")
	v.SetDefault("SQL_PORT", "3306")
	v.SetDefault("TOKEN_TTL", "168h")
	v.SetDefault("STORAGE_DIR", "./storage")
	v.SetDefault("STORAGE_BUCKET", "chat-images")
	v.SetDefault("PUBLIC_BASE_URL", "http://localhost:8080")
	v.SetDefault("MAX_IMAGES", 10)
	v.SetDefault("ASSISTANT_REPLY_DELAY", "1s")
	v.SetDefault("TRIAL_DAYS", 7)
	v.SetDefault("WORKSPACE_TTL", "24h")
	v.SetDefault("MAINTENANCE_CRON", "17 3 * * *")
	v.SetDefault("MAIL_FROM", "Approcciala <no-reply@approcciala.com>")

	cfg := &Config{
		Port:                v.GetString("PORT"),
		CORSOrigin:          v.GetString("CORS_ORIGIN"),
		LogPath:             v.GetString("LOG_PATH"),
		SQLDriver:           v.GetString("SQL_DRIVER"),
		SQLDSN:              v.GetString("SQL_DSN"),
		SQLHost:             v.GetString("SQL_HOST"),
		SQLPort:             v.GetString("SQL_PORT"),
		SQLUser:             v.GetString("SQL_USER"),
		SQLPassword:         v.GetString("SQL_PASSWORD"),
		SQLDBName:           v.GetString("SQL_DBNAME"),
		AccessSecret:        v.GetString("ACCESS_SECRET"),
		TokenTTL:            v.GetDuration("TOKEN_TTL"),
		StorageDir:          v.GetString("STORAGE_DIR"),
		StorageBucket:       v.GetString("STORAGE_BUCKET"),
		PublicBaseURL:       v.GetString("PUBLIC_BASE_URL"),
		MaxImages:           v.GetInt("MAX_IMAGES"),
		AssistantReplyDelay: v.GetDuration("ASSISTANT_REPLY_DELAY"),
		TrialDays:           v.GetInt("TRIAL_DAYS"),
		WorkspaceTTL:        v.GetDuration("WORKSPACE_TTL"),
		MaintenanceCron:     v.GetString("MAINTENANCE_CRON"),
		SMTPAddr:            v.GetString("SMTP_ADDR"),
		SMTPUser:            v.GetString("SMTP_USER"),
		SMTPPassword:        v.GetString("SMTP_PASSWORD"),
		MailFrom:            v.GetString("MAIL_FROM"),
	}

	if cfg.AccessSecret == "" {
		return nil, fmt.Errorf("ACCESS_SECRET must be set")
	}
	if cfg.MaxImages <= 0 {
		return nil, fmt.Errorf("MAX_IMAGES must be positive, got %d", cfg.MaxImages)
	}
	return cfg, nil
}
