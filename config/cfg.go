package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"

	"github.com/mealmarkt/ops-manager/internal/analytics"
	httpapi "github.com/mealmarkt/ops-manager/internal/api/http"
	"github.com/mealmarkt/ops-manager/internal/campaign"
	"github.com/mealmarkt/ops-manager/internal/hyperzod"
	"github.com/mealmarkt/ops-manager/internal/mail"
	"github.com/mealmarkt/ops-manager/internal/store"
	"github.com/mealmarkt/ops-manager/log"
)

// Config represents the global configuration for the service.
type Config struct {
	DB        store.Config     `mapstructure:"mysql"`
	Logger    log.Config       `mapstructure:"logger"`
	HTTP      httpapi.Config   `mapstructure:"http"`
	Mailer    mail.Config      `mapstructure:"mailer"`
	Hyperzod  hyperzod.Config  `mapstructure:"hyperzod"`
	Analytics analytics.Config `mapstructure:"analytics"`
	Campaign  campaign.Config  `mapstructure:"campaign"`
}

// LoadConfig loads the configuration from a file and/or environment variables.
// Environment variables take precedence over config file values.
func LoadConfig(cfgFile string) (*Config, error) {
	viper.SetConfigType("toml")

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "__", "-", "__"))

	bindEnvVars()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
		if err := viper.ReadInConfig(); err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("failed to read config file: %v", err)
			}
		}
	} else {
		viper.SetConfigName("config")
		viper.AddConfigPath("./config")
		viper.AddConfigPath("$HOME/config/ops-manager")
		viper.AddConfigPath("/etc/ops-manager")
		_ = viper.ReadInConfig()
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config into struct: %v", err)
	}

	// Construct the MySQL DSN from individual env vars when not set directly.
	if config.DB.DSN == "" {
		host := os.Getenv("MYSQL_HOST")
		port := os.Getenv("MYSQL_PORT")
		user := os.Getenv("MYSQL_USER")
		password := os.Getenv("MYSQL_PASSWORD")
		database := os.Getenv("MYSQL_DATABASE")

		if host != "" {
			if port == "" {
				port = "3306"
			}
			if user != "" && password != "" && database != "" {
				config.DB.DSN = fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8&parseTime=true",
					user, password, host, port, database)
			}
		}
	}

	return &config, nil
}

// bindEnvVars binds environment variables to config keys, so flat names like
// MYSQL_DSN work alongside the nested MYSQL__DSN form.
func bindEnvVars() {
	// MySQL
	viper.BindEnv("mysql.dsn", "MYSQL_DSN")
	viper.BindEnv("mysql.automigrate", "MYSQL_AUTOMIGRATE")
	viper.BindEnv("mysql.max_open_connections", "MYSQL_MAX_OPEN_CONNECTIONS")
	viper.BindEnv("mysql.max_idle_connections", "MYSQL_MAX_IDLE_CONNECTIONS")
	viper.BindEnv("mysql.tls_ca_path", "MYSQL_TLS_CA_PATH")

	// Logger
	viper.BindEnv("logger.level", "LOG_LEVEL")
	viper.BindEnv("logger.add_source", "LOG_ADD_SOURCE")

	// HTTP
	viper.BindEnv("http.port", "HTTP_PORT")
	viper.BindEnv("http.address", "HTTP_ADDRESS")
	viper.BindEnv("http.allowed_origins", "HTTP_ALLOWED_ORIGINS")
	viper.BindEnv("http.jwt_secret", "HTTP_JWT_SECRET")
	viper.BindEnv("http.master_password", "HTTP_MASTER_PASSWORD")
	viper.BindEnv("http.jwt_ttl", "HTTP_JWT_TTL")

	// Mailer
	viper.BindEnv("mailer.sendgrid_api_key", "MAILER_SENDGRID_API_KEY")
	viper.BindEnv("mailer.from_email", "MAILER_FROM_EMAIL")
	viper.BindEnv("mailer.from_email_name", "MAILER_FROM_EMAIL_NAME")
	viper.BindEnv("mailer.worker_interval", "MAILER_WORKER_INTERVAL")

	// Hyperzod
	viper.BindEnv("hyperzod.base_url", "HYPERZOD_BASE_URL")
	viper.BindEnv("hyperzod.api_key", "HYPERZOD_API_KEY")
	viper.BindEnv("hyperzod.tenant_id", "HYPERZOD_TENANT_ID")
	viper.BindEnv("hyperzod.timeout", "HYPERZOD_TIMEOUT")

	// Analytics
	viper.BindEnv("analytics.weekly_marketing_spend", "ANALYTICS_WEEKLY_MARKETING_SPEND")
	viper.BindEnv("analytics.commission_pct", "ANALYTICS_COMMISSION_PCT")
	viper.BindEnv("analytics.cogs_pct", "ANALYTICS_COGS_PCT")
	viper.BindEnv("analytics.pinned_cities", "ANALYTICS_PINNED_CITIES")
	viper.BindEnv("analytics.top_chefs_limit", "ANALYTICS_TOP_CHEFS_LIMIT")
	viper.BindEnv("campaign.report_email", "CAMPAIGN_REPORT_EMAIL")
}
