package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/rs/zerolog"
)

// DefaultPort is the default port to expose the API server.
const DefaultPort = 8080

// DefaultDBTestName is the default name of the test database.
const DefaultDBTestName = "license_desk_test"

type Config struct {
	Port           int    // Port is the port the API server listens on.
	DBHost         string // DBHost is the host machine running the postgres instance.
	DBPort         string // DBPort is the port that exposes the db server.
	DBName         string // DBName is the postgres database name.
	DBUser         string // DBUser is the postgres user account.
	DBPassword     string // DBPassword is the password for the DBUser postgres account.
	DBSSLMode      string // DBSSLMode sets the SSL mode of the postgres client.
	LogLevel       string // LogLevel is the level of logging for the application.
	AdminUser      string // AdminUser is the username for the admin panel.
	AdminPassword  string // AdminPassword is the password for the admin panel.
	AdminEmail     string // AdminEmail receives new-request alert emails.
	SendgridAPIKey string // SendgridAPIKey is for sending emails through SendGrid.
	SMTPHost       string // SMTPHost is the SMTP relay used when SendGrid is not configured.
	SMTPPort       int    // SMTPPort is the SMTP relay port.
	SMTPUser       string // SMTPUser is the SMTP account used as the envelope sender.
	SMTPPassword   string // SMTPPassword is the app password for SMTPUser.
	EmailFrom      string // EmailFrom is the from address on outbound email.
	EmailName      string // EmailName is the display name on outbound email.
}

func missingEnvErr(envVar string) error {
	return fmt.Errorf("%s not found in environment", envVar)
}

// New builds a Config from the environment. The admin password is required;
// everything else falls back to a documented default. Mail credentials may be
// left unset, in which case sends fail with a not-configured error at dispatch
// time rather than at startup.
func New() (Config, error) {
	adminPassword := os.Getenv("ADMIN_PASSWORD")
	if adminPassword == "" {
		return Config{}, missingEnvErr("ADMIN_PASSWORD")
	}

	port, err := strconv.Atoi(getEnvWithDefault("PORT", strconv.Itoa(DefaultPort)))
	if err != nil {
		return Config{}, fmt.Errorf("PORT must be numeric: %w", err)
	}

	smtpPort, err := strconv.Atoi(getEnvWithDefault("MAIL_PORT", "587"))
	if err != nil {
		return Config{}, fmt.Errorf("MAIL_PORT must be numeric: %w", err)
	}

	return Config{
		Port:           port,
		DBHost:         getEnvWithDefault("LICENSE_DB_HOST", "localhost"),
		DBPort:         getEnvWithDefault("LICENSE_DB_PORT", "5432"),
		DBName:         getEnvWithDefault("LICENSE_DB_NAME", "license_desk"),
		DBUser:         getEnvWithDefault("LICENSE_DB_USER", "postgres"),
		DBPassword:     getEnvWithDefault("LICENSE_DB_PASS", ""),
		DBSSLMode:      getEnvWithDefault("LICENSE_DB_SSL_MODE", "disable"),
		LogLevel:       getEnvWithDefault("LICENSE_LOG_LEVEL", strconv.Itoa(int(zerolog.InfoLevel))),
		AdminUser:      getEnvWithDefault("ADMIN_USERNAME", "admin"),
		AdminPassword:  adminPassword,
		AdminEmail:     getEnvWithDefault("ADMIN_EMAIL", ""),
		SendgridAPIKey: os.Getenv("SENDGRID_API_KEY"),
		SMTPHost:       getEnvWithDefault("MAIL_HOST", "smtp.gmail.com"),
		SMTPPort:       smtpPort,
		SMTPUser:       os.Getenv("MAIL_USERNAME"),
		SMTPPassword:   os.Getenv("MAIL_PASSWORD"),
		EmailFrom:      getEnvWithDefault("EMAIL_FROM", "no-reply@licensedesk.app"),
		EmailName:      getEnvWithDefault("MAIL_FROM_NAME", "License Desk"),
	}, nil
}

func getEnvWithDefault(name string, def string) string {
	res, found := os.LookupEnv(name)
	if !found {
		return def
	}
	return res
}
