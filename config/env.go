package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// AppConfig holds every environment-provided setting of the API.
type AppConfig struct {
	Port        string
	GinMode     string
	Environment string

	DBDriver    string
	DatabaseURL string
	DBHost      string
	DBPort      string
	DBDatabase  string
	DBUsername  string
	DBPassword  string
	DebugSQL    bool
	AutoMigrate bool

	JWTSecret string
	TokenTTL  time.Duration

	SupabaseURL        string
	SupabaseServiceKey string
	DocumentBucket     string
	UploadBucket       string

	SMTPHost          string
	SMTPPort          int
	SMTPUser          string
	SMTPPass          string
	SMTPFrom          string
	SMTPSkipTLSVerify bool
	OpsMailbox        string

	CloudConvertAPIKey  string
	CloudConvertBaseURL string
	ConvertTimeout      time.Duration

	TemplateDir string
	CORSOrigins []string
	MaxUploadMB int
}

var defaultCORSOrigins = []string{
	"https://surattugaslppm.com",
	"https://www.surattugaslppm.com",
	"https://surattugaslppm.untag-smd.ac.id",
	"https://www.surattugaslppm.untag-smd.ac.id",
	"http://localhost:5173",
}

// Load reads the configuration from the process environment.
func Load() AppConfig {
	cfg := AppConfig{
		Port:        getEnv("SERVER_PORT", getEnv("PORT", "5000")),
		GinMode:     os.Getenv("GIN_MODE"),
		Environment: strings.ToLower(os.Getenv("ENVIRONMENT")),

		DBDriver:    strings.ToLower(getEnv("DB_DRIVER", "postgres")),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		DBHost:      os.Getenv("DB_HOST"),
		DBPort:      os.Getenv("DB_PORT"),
		DBDatabase:  os.Getenv("DB_DATABASE"),
		DBUsername:  os.Getenv("DB_USERNAME"),
		DBPassword:  os.Getenv("DB_PASSWORD"),
		DebugSQL:    getBool("DEBUG_SQL"),
		AutoMigrate: getBool("AUTO_MIGRATE"),

		JWTSecret: os.Getenv("JWT_SECRET"),
		TokenTTL:  time.Duration(getInt("JWT_EXPIRE_SECONDS", 3600)) * time.Second,

		SupabaseURL:        strings.TrimRight(os.Getenv("SUPABASE_URL"), "/"),
		SupabaseServiceKey: os.Getenv("SUPABASE_SERVICE_ROLE_KEY"),
		DocumentBucket:     getEnv("STORAGE_DOCUMENT_BUCKET", "surat-tugas-files"),
		UploadBucket:       getEnv("STORAGE_UPLOAD_BUCKET", "uploads"),

		SMTPHost:          getEnv("SMTP_HOST", "smtp.gmail.com"),
		SMTPPort:          getInt("SMTP_PORT", 587),
		SMTPUser:          os.Getenv("SMTP_USER"),
		SMTPPass:          getEnv("SMTP_PASS", os.Getenv("GMAIL_APP_PASSWORD")),
		SMTPFrom:          os.Getenv("SMTP_FROM"),
		SMTPSkipTLSVerify: os.Getenv("SMTP_SKIP_TLS_VERIFY") == "1",
		OpsMailbox:        os.Getenv("OPS_MAILBOX"),

		CloudConvertAPIKey:  os.Getenv("CLOUDCONVERT_API_KEY"),
		CloudConvertBaseURL: getEnv("CLOUDCONVERT_BASE_URL", "https://api.cloudconvert.com/v2"),
		ConvertTimeout:      time.Duration(getInt("CONVERT_TIMEOUT_SECONDS", 60)) * time.Second,

		TemplateDir: getEnv("TEMPLATE_DIR", "./templates"),
		CORSOrigins: defaultCORSOrigins,
		MaxUploadMB: getInt("MAX_UPLOAD_MB", 10),
	}

	if cfg.SMTPFrom == "" && cfg.SMTPUser != "" {
		cfg.SMTPFrom = fmt.Sprintf("LPPM UNTAG Samarinda <%s>", cfg.SMTPUser)
	}
	if cfg.OpsMailbox == "" {
		cfg.OpsMailbox = cfg.SMTPUser
	}
	if raw := os.Getenv("CORS_ORIGINS"); raw != "" {
		cfg.CORSOrigins = splitList(raw)
	}

	return cfg
}

// Validate returns a fatal error when a setting the API cannot run without is
// absent, plus warnings for optional integrations that will be disabled.
func (c AppConfig) Validate() (warnings []string, err error) {
	var missing []string
	if c.JWTSecret == "" {
		missing = append(missing, "JWT_SECRET")
	}
	switch c.DBDriver {
	case "postgres":
		if c.DatabaseURL == "" && c.DBHost == "" {
			missing = append(missing, "DATABASE_URL")
		}
	case "mysql":
		if c.DBHost == "" || c.DBDatabase == "" {
			missing = append(missing, "DB_HOST/DB_DATABASE")
		}
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", c.DBDriver)
	}
	if len(missing) > 0 {
		return nil, errors.New("missing required environment: " + strings.Join(missing, ", "))
	}

	if !c.StorageEnabled() {
		warnings = append(warnings, "SUPABASE_URL/SUPABASE_SERVICE_ROLE_KEY not set: form submissions will fail at upload")
	}
	if !c.MailEnabled() {
		warnings = append(warnings, "SMTP_USER/SMTP_PASS not set: notification emails disabled")
	}
	if c.CloudConvertAPIKey == "" {
		warnings = append(warnings, "CLOUDCONVERT_API_KEY not set: PDF conversion disabled")
	}
	return warnings, nil
}

func (c AppConfig) StorageEnabled() bool {
	return c.SupabaseURL != "" && c.SupabaseServiceKey != ""
}

func (c AppConfig) MailEnabled() bool {
	return c.SMTPHost != "" && c.SMTPUser != "" && c.SMTPPass != ""
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	v, err := strconv.Atoi(strings.TrimSpace(os.Getenv(key)))
	if err != nil || v <= 0 {
		return fallback
	}
	return v
}

func getBool(key string) bool {
	return strings.EqualFold(strings.TrimSpace(os.Getenv(key)), "true")
}

func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
