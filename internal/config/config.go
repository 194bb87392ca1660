package config

import (
	"os"
	"strings"
	"time"

	"github.com/cristalhq/aconfig"
	"github.com/go-faster/errors"
	"github.com/joho/godotenv"
)

// Config is the process configuration. Values come from SHOP_-prefixed
// environment variables, optionally preloaded from a .env file.
type Config struct {
	Addr            string        `default:":8080" env:"ADDR"`
	MongoURI        string        `env:"MONGO_URI"`
	DBName          string        `default:"storefront" env:"DB_NAME"`
	JWTSecret       string        `env:"JWT_SECRET"`
	AccessTokenTTL  time.Duration `default:"24h" env:"ACCESS_TOKEN_TTL"`
	RequestTimeout  time.Duration `default:"5s" env:"REQUEST_TIMEOUT"`
	LogLevel        string        `default:"info" env:"LOG_LEVEL"`
	Development     bool          `default:"false" env:"DEV"`
	OrderTxEnabled  bool          `default:"false" env:"ORDER_TRANSACTIONS"`
	ShutdownTimeout time.Duration `default:"15s" env:"SHUTDOWN_TIMEOUT"`
	VNPay           VNPayConfig   `env:"VNPAY"`
	Mail            MailConfig    `env:"MAIL"`
}

// VNPayConfig holds the payment gateway merchant settings.
type VNPayConfig struct {
	TmnCode           string `env:"TMN_CODE"`
	HashSecret        string `env:"HASH_SECRET"`
	PayURL            string `default:"https://sandbox.vnpayment.vn/paymentv2/vpcpay.html" env:"URL"`
	ReturnURL         string `default:"http://localhost:8080/payment/vnpay/return" env:"RETURN_URL"`
	FrontendResultURL string `default:"http://localhost:3001/payment/vnpay-result" env:"FRONTEND_RESULT_URL"`
}

// MailConfig configures the SMTP transport and the background dispatcher.
type MailConfig struct {
	Host         string        `default:"smtp.gmail.com" env:"HOST"`
	Port         int           `default:"587" env:"PORT"`
	Username     string        `env:"USER"`
	Password     string        `env:"PASS"`
	From         string        `env:"FROM"`
	Workers      int           `default:"2" env:"WORKERS"`
	QueueSize    int           `default:"256" env:"QUEUE_SIZE"`
	MaxRetryTime time.Duration `default:"2m" env:"MAX_RETRY_TIME"`
}

// Enabled reports whether SMTP credentials are present.
func (m MailConfig) Enabled() bool {
	return m.Username != "" && m.Password != ""
}

// Load reads .env (when present) and then the environment.
func Load() (*Config, error) {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	var cfg Config
	loader := aconfig.LoaderFor(&cfg, aconfig.Config{
		EnvPrefix: "SHOP",
		SkipFlags: true,
		SkipFiles: true,
	})
	if err := loader.Load(); err != nil {
		return nil, errors.Wrap(err, "load config")
	}
	cfg.applyPlatformDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// applyPlatformDefaults honours the unprefixed names most hosting platforms set.
func (c *Config) applyPlatformDefaults() {
	if c.MongoURI == "" {
		c.MongoURI = getEnvOrDefault("MONGO_URI", "")
	}
	if c.JWTSecret == "" {
		c.JWTSecret = getEnvOrDefault("JWT_SECRET", "")
	}
	if c.VNPay.TmnCode == "" {
		c.VNPay.TmnCode = getEnvOrDefault("VNPAY_TMN_CODE", "")
	}
	if c.VNPay.HashSecret == "" {
		c.VNPay.HashSecret = getEnvOrDefault("VNPAY_HASH_SECRET", "")
	}
	if c.Mail.Username == "" {
		c.Mail.Username = getEnvOrDefault("EMAIL_USER", "")
	}
	if c.Mail.Password == "" {
		c.Mail.Password = getEnvOrDefault("EMAIL_PASS", "")
	}
	if c.Mail.From == "" {
		c.Mail.From = c.Mail.Username
	}
	if port := getEnvOrDefault("PORT", ""); port != "" && c.Addr == ":8080" {
		c.Addr = ":" + port
	}
}

// Validate fails fast on settings the server cannot run without.
func (c *Config) Validate() error {
	var missing []string
	if c.MongoURI == "" {
		missing = append(missing, "SHOP_MONGO_URI")
	}
	if c.JWTSecret == "" {
		missing = append(missing, "SHOP_JWT_SECRET")
	}
	if c.VNPay.TmnCode == "" {
		missing = append(missing, "SHOP_VNPAY_TMN_CODE")
	}
	if c.VNPay.HashSecret == "" {
		missing = append(missing, "SHOP_VNPAY_HASH_SECRET")
	}
	if len(missing) > 0 {
		return errors.Errorf("missing required configuration: %s", strings.Join(missing, ", "))
	}
	return nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}
