package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	BackendMongo  = "mongo"
	BackendMemory = "memory"

	devJWTSecret = "dev-only-jwt-secret"
)

type Config struct {
	Env          string
	Port         int
	StoreBackend string

	MongoURI      string
	MongoDatabase string

	JWTSecret string
	TokenTTL  time.Duration

	RazorpayKeyID     string
	RazorpayKeySecret string
	RazorpayBaseURL   string
	ProviderTimeout   time.Duration
	Currency          string

	PostmarkToken string
	EmailSender   string

	ImagesDir string
}

func Default() Config {
	return Config{
		Env:             "dev",
		Port:            5000,
		StoreBackend:    BackendMongo,
		MongoURI:        "mongodb://localhost:27017",
		MongoDatabase:   "ds-choco-bliss",
		TokenTTL:        7 * 24 * time.Hour,
		RazorpayBaseURL: "https://api.razorpay.com",
		ProviderTimeout: 10 * time.Second,
		Currency:        "INR",
		ImagesDir:       "./public/images",
	}
}

// Load reads the process environment over the defaults.
func Load() (Config, error) {
	return fromEnv(Default(), os.Getenv)
}

func fromEnv(c Config, getenv func(string) string) (Config, error) {
	if v := getenv("APP_ENV"); v != "" {
		c.Env = strings.ToLower(v)
	}
	if v := getenv("PORT"); v != "" {
		p, err := strconv.Atoi(v)
		if err != nil {
			return c, fmt.Errorf("PORT: %w", err)
		}
		c.Port = p
	}
	if v := getenv("STORE_BACKEND"); v != "" {
		c.StoreBackend = strings.ToLower(v)
	}
	if v := getenv("MONGODB_URI"); v != "" {
		c.MongoURI = v
	}
	if v := getenv("MONGODB_DATABASE"); v != "" {
		c.MongoDatabase = v
	}
	if v := getenv("JWT_SECRET"); v != "" {
		c.JWTSecret = v
	}
	if v := getenv("JWT_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return c, fmt.Errorf("JWT_TTL: %w", err)
		}
		c.TokenTTL = d
	}
	if v := getenv("RAZORPAY_KEY_ID"); v != "" {
		c.RazorpayKeyID = v
	}
	if v := getenv("RAZORPAY_KEY_SECRET"); v != "" {
		c.RazorpayKeySecret = v
	}
	if v := getenv("RAZORPAY_BASE_URL"); v != "" {
		c.RazorpayBaseURL = v
	}
	if v := getenv("PAYMENT_PROVIDER_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return c, fmt.Errorf("PAYMENT_PROVIDER_TIMEOUT: %w", err)
		}
		c.ProviderTimeout = d
	}
	if v := getenv("DEFAULT_CURRENCY"); v != "" {
		c.Currency = strings.ToUpper(v)
	}
	if v := getenv("POSTMARK_API_TOKEN"); v != "" {
		c.PostmarkToken = v
	}
	if v := getenv("EMAIL_SENDER"); v != "" {
		c.EmailSender = v
	}
	if v := getenv("IMAGES_DIR"); v != "" {
		c.ImagesDir = v
	}

	if c.JWTSecret == "" && c.IsDev() {
		c.JWTSecret = devJWTSecret
	}
	return c, c.Validate()
}

func (c Config) IsDev() bool { return c.Env == "dev" }

func (c Config) Addr() string { return ":" + strconv.Itoa(c.Port) }

func (c Config) Validate() error {
	var errs []error
	if c.Port <= 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("port %d out of range", c.Port))
	}
	if c.StoreBackend != BackendMongo && c.StoreBackend != BackendMemory {
		errs = append(errs, fmt.Errorf("unknown store backend %q", c.StoreBackend))
	}
	if c.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET is required outside dev"))
	}
	if c.ProviderTimeout <= 0 {
		errs = append(errs, errors.New("payment provider timeout must be positive"))
	}
	return errors.Join(errs...)
}
