package config

import (
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

type Config struct {
	DatabaseURL     string `envconfig:"database_url" required:"true"`
	ServerAddr      string `envconfig:"server_addr" default:":8080"`
	FrontendOrigins string `envconfig:"frontend_origins" default:"http://localhost:5173"`
	LogLevel        string `envconfig:"log_level" default:"info"`
	LogPretty       bool   `envconfig:"log_pretty" default:"false"`

	RabbitMQURL string `envconfig:"rabbitmq_url"`

	RedisAddr     string        `envconfig:"redis_addr"`
	RedisPassword string        `envconfig:"redis_password"`
	RedisDB       int           `envconfig:"redis_db" default:"0"`
	BoardCacheTTL time.Duration `envconfig:"board_cache_ttl" default:"5m"`

	JWTSecret    string        `envconfig:"jwt_secret" required:"true"`
	AuthURL      string        `envconfig:"auth_url"`
	AuthAPIKey   string        `envconfig:"auth_api_key"`
	LoginTimeout time.Duration `envconfig:"login_timeout" default:"15s"`

	CronSecret              string        `envconfig:"cron_secret"`
	SchedulerEnabled        bool          `envconfig:"scheduler_enabled" default:"false"`
	TaskDueInterval         time.Duration `envconfig:"task_due_interval" default:"1h"`
	MeetingReminderInterval time.Duration `envconfig:"meeting_reminder_interval" default:"5m"`
	NPSInterval             time.Duration `envconfig:"nps_interval" default:"24h"`

	SMTPHost     string `envconfig:"smtp_host"`
	SMTPPort     int    `envconfig:"smtp_port" default:"587"`
	SMTPUser     string `envconfig:"smtp_user"`
	SMTPPassword string `envconfig:"smtp_password"`
	MailFrom     string `envconfig:"mail_from" default:"Ligue Agência <contato@ligue.com.br>"`

	WhatsAppToken    string `envconfig:"whatsapp_token"`
	WhatsAppPhoneID  string `envconfig:"whatsapp_phone_id"`
	WhatsAppTemplate string `envconfig:"whatsapp_template" default:"pesquisa_nps"`

	S3Bucket    string `envconfig:"s3_bucket"`
	S3Region    string `envconfig:"s3_region" default:"us-east-1"`
	S3Endpoint  string `envconfig:"s3_endpoint"`
	S3PublicURL string `envconfig:"s3_public_url"`
	S3AccessKey string `envconfig:"s3_access_key"`
	S3SecretKey string `envconfig:"s3_secret_key"`

	NPSPublicURL    string `envconfig:"nps_public_url" default:"http://localhost:5173/nps"`
	CommissionRate  string `envconfig:"commission_rate" default:"0.10"`
	RateLimitPublic int    `envconfig:"rate_limit_public" default:"10"`
}

// Load lê o .env (se existir) e as variáveis com prefixo LIGUE_.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var c Config
	if err := envconfig.Process("ligue", &c); err != nil {
		return nil, errors.WithStack(err)
	}

	if _, err := c.Rate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Config) Rate() (decimal.Decimal, error) {
	rate, err := decimal.NewFromString(c.CommissionRate)
	if err != nil {
		return decimal.Zero, errors.Wrap(err, "LIGUE_COMMISSION_RATE inválido")
	}
	if rate.IsNegative() || rate.GreaterThan(decimal.NewFromInt(1)) {
		return decimal.Zero, errors.Errorf("LIGUE_COMMISSION_RATE fora de [0,1]: %s", c.CommissionRate)
	}
	return rate, nil
}

func (c *Config) Origins() []string {
	var out []string
	for _, o := range strings.Split(c.FrontendOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}

func (c *Config) SMTPEnabled() bool {
	return c.SMTPHost != ""
}

func (c *Config) WhatsAppEnabled() bool {
	return c.WhatsAppToken != "" && c.WhatsAppPhoneID != ""
}

func (c *Config) StorageEnabled() bool {
	return c.S3Bucket != ""
}
