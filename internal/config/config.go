package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/mitchellh/mapstructure"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

type Config struct {
	App             App             `mapstructure:",squash"`
	Server          Server          `mapstructure:",squash"`
	Database        Database        `mapstructure:",squash"`
	Meta            Meta            `mapstructure:",squash"`
	Google          Google          `mapstructure:",squash"`
	Retry           Retry           `mapstructure:",squash"`
	Auth            Auth            `mapstructure:",squash"`
	PerformanceSync PerformanceSync `mapstructure:",squash"`
	Governance      Governance      `mapstructure:",squash"`
	Redis           Redis           `mapstructure:",squash"`
	RabbitMQ        RabbitMQ        `mapstructure:",squash"`
}

type App struct {
	LogLevel string `mapstructure:"log_level"`
}

type Server struct {
	Host           string   `mapstructure:"host"`
	Port           string   `mapstructure:"port"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type Database struct {
	DSN           string `mapstructure:"-"`
	Driver        string `mapstructure:"database_driver"`
	Password      string `mapstructure:"database_password"`
	URL           string `mapstructure:"database_url"`
	User          string `mapstructure:"database_user"`
	RunMigrations bool   `mapstructure:"database_run_migrations"`
}

type Meta struct {
	BaseURL  string `mapstructure:"meta_base_url"`
	Version  string `mapstructure:"meta_version"`
	PageSize int    `mapstructure:"meta_page_size"`
}

// Google guarda os defaults da plataforma para campos não secretos.
// Tokens de acesso e refresh sempre vêm da linha do tenant.
type Google struct {
	BaseURL        string `mapstructure:"google_ads_base_url"`
	Version        string `mapstructure:"google_ads_version"`
	TokenURL       string `mapstructure:"google_oauth_token_url"`
	DeveloperToken string `mapstructure:"google_ads_developer_token"`
	ClientID       string `mapstructure:"google_ads_client_id"`
	ClientSecret   string `mapstructure:"google_ads_client_secret"`
}

type Retry struct {
	MaxRetries  int           `mapstructure:"provider_max_retries"`
	BaseDelay   time.Duration `mapstructure:"provider_retry_base_delay"`
	HTTPTimeout time.Duration `mapstructure:"provider_http_timeout"`
}

type Auth struct {
	Secret string `mapstructure:"auth_secret"`
}

type PerformanceSync struct {
	CronSchedule      string `mapstructure:"performance_sync_cron"`
	LookbackDays      int    `mapstructure:"performance_sync_lookback_days"`
	MaxConcurrentJobs int    `mapstructure:"performance_sync_max_concurrent_jobs"`
	Enabled           bool   `mapstructure:"performance_sync_enabled"`
}

type Governance struct {
	DailyTokenLimit        int64         `mapstructure:"governance_daily_token_limit"`
	DailyCostLimit         string        `mapstructure:"governance_daily_cost_limit"`
	LoopDetectionThreshold int           `mapstructure:"governance_loop_detection_threshold"`
	LoopWindow             time.Duration `mapstructure:"governance_loop_window"`
	BudgetWarningPct       float64       `mapstructure:"governance_budget_warning_pct"`
	Cooldown               time.Duration `mapstructure:"governance_cooldown"`
	Timezone               string        `mapstructure:"governance_timezone"`
	AlertLogSize           int           `mapstructure:"governance_alert_log_size"`
	SnapshotInterval       time.Duration `mapstructure:"governance_snapshot_interval"`
}

type Redis struct {
	Addr     string `mapstructure:"redis_addr"`
	Password string `mapstructure:"redis_password"`
	DB       int    `mapstructure:"redis_db"`
	Key      string `mapstructure:"redis_governance_key"`
}

type RabbitMQ struct {
	URL        string `mapstructure:"rabbitmq_url"`
	AlertQueue string `mapstructure:"rabbitmq_alert_queue"`
}

func SetDefaults() {
	viper.SetDefault("HOST", "localhost")
	viper.SetDefault("PORT", 8000)
	viper.SetDefault("ALLOWED_ORIGINS", "http://localhost:3000")

	viper.SetDefault("DATABASE_DRIVER", "postgres")
	viper.SetDefault("DATABASE_URL", "localhost:5432/adcore?sslmode=disable")
	viper.SetDefault("DATABASE_USER", "postgres")
	viper.SetDefault("DATABASE_PASSWORD", "root")
	viper.SetDefault("DATABASE_RUN_MIGRATIONS", true)

	viper.SetDefault("META_BASE_URL", "https://graph.facebook.com")
	viper.SetDefault("META_VERSION", "v22.0")
	viper.SetDefault("META_PAGE_SIZE", 500)

	viper.SetDefault("GOOGLE_ADS_BASE_URL", "https://googleads.googleapis.com")
	viper.SetDefault("GOOGLE_ADS_VERSION", "v18")
	viper.SetDefault("GOOGLE_OAUTH_TOKEN_URL", "https://oauth2.googleapis.com/token")
	viper.SetDefault("GOOGLE_ADS_DEVELOPER_TOKEN", "")
	viper.SetDefault("GOOGLE_ADS_CLIENT_ID", "")
	viper.SetDefault("GOOGLE_ADS_CLIENT_SECRET", "")

	viper.SetDefault("PROVIDER_MAX_RETRIES", 3)         // 2s, 4s, 8s
	viper.SetDefault("PROVIDER_RETRY_BASE_DELAY", "1s") // 2^tentativa * base
	viper.SetDefault("PROVIDER_HTTP_TIMEOUT", "30s")

	viper.SetDefault("AUTH_SECRET", "your_secret_key")

	viper.SetDefault("PERFORMANCE_SYNC_CRON", "0 3 * * *")        // Todos os dias às 3h da manhã
	viper.SetDefault("PERFORMANCE_SYNC_LOOKBACK_DAYS", 3)         // Reprocessa conversões ainda não consolidadas
	viper.SetDefault("PERFORMANCE_SYNC_MAX_CONCURRENT_JOBS", 4)   // Jobs (tenant, plataforma) em paralelo
	viper.SetDefault("PERFORMANCE_SYNC_ENABLED", false)

	viper.SetDefault("GOVERNANCE_DAILY_TOKEN_LIMIT", 2_000_000)
	viper.SetDefault("GOVERNANCE_DAILY_COST_LIMIT", "50")
	viper.SetDefault("GOVERNANCE_LOOP_DETECTION_THRESHOLD", 5)
	viper.SetDefault("GOVERNANCE_LOOP_WINDOW", "1m")
	viper.SetDefault("GOVERNANCE_BUDGET_WARNING_PCT", 80)
	viper.SetDefault("GOVERNANCE_COOLDOWN", "5m")
	viper.SetDefault("GOVERNANCE_TIMEZONE", "UTC")
	viper.SetDefault("GOVERNANCE_ALERT_LOG_SIZE", 200)
	viper.SetDefault("GOVERNANCE_SNAPSHOT_INTERVAL", "30s")

	viper.SetDefault("REDIS_ADDR", "")
	viper.SetDefault("REDIS_PASSWORD", "")
	viper.SetDefault("REDIS_DB", 0)
	viper.SetDefault("REDIS_GOVERNANCE_KEY", "adcore:governance:snapshot")

	viper.SetDefault("RABBITMQ_URL", "")
	viper.SetDefault("RABBITMQ_ALERT_QUEUE", "governance_alerts")

	viper.SetDefault("LOG_LEVEL", "info")
}

func NewConfig() (*Config, error) {
	// Primeiro carregar o arquivo .env usando godotenv
	loadEnvFile()

	config := &Config{}

	SetDefaults()

	viper.SetConfigType("env")
	viper.SetConfigFile(".env")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		logrus.Debug("Usando variáveis de ambiente (viper não conseguiu ler .env): ", err)
	}

	err := viper.Unmarshal(&config, viper.DecodeHook(
		mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
	))
	if err != nil {
		return nil, err
	}

	config.Database.DSN = fmt.Sprintf(
		"%s://%s:%s@%s",
		config.Database.Driver,
		config.Database.User,
		config.Database.Password,
		config.Database.URL,
	)

	return config, nil
}

// Função auxiliar para carregar o arquivo .env usando godotenv
func loadEnvFile() {
	cwd, err := os.Getwd()
	if err != nil {
		logrus.Warn("Não foi possível obter o diretório atual:", err)
		return
	}

	locations := []string{
		filepath.Join(cwd, ".env"),
		filepath.Join(filepath.Dir(cwd), ".env"),
		filepath.Join(cwd, "../../.env"),
	}

	for _, location := range locations {
		if err := godotenv.Load(location); err == nil {
			logrus.Info("Arquivo .env carregado de:", location)
			return
		}
	}

	logrus.Debug("Nenhum arquivo .env encontrado; usando apenas variáveis de ambiente")
}
