package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"travelplanner/services"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// ─── Types ────────────────────────────────────────────────────────────────────

type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Keys      KeysConfig      `koanf:"keys"`
	Providers ProvidersConfig `koanf:"providers"`
	LLM       LLMConfig       `koanf:"llm"`
	Models    ModelsConfig    `koanf:"models"`
	Planner   PlannerConfig   `koanf:"planner"`
	Database  DatabaseConfig  `koanf:"database"`
	Telemetry TelemetryConfig `koanf:"telemetry"`
	PDF       PDFConfig       `koanf:"pdf"`
}

type ServerConfig struct {
	Port         string `koanf:"port"`
	GinMode      string `koanf:"gin_mode"`
	FrontendURLs string `koanf:"frontend_urls"`
}

// KeysConfig holds provider credentials. Aviation is optional.
type KeysConfig struct {
	OpenAI      string `koanf:"openai"`
	SerpAPI     string `koanf:"serpapi"`
	Weather     string `koanf:"weather"`
	Exchange    string `koanf:"exchange"`
	Aviation    string `koanf:"aviation"`
	HuggingFace string `koanf:"huggingface"`
}

// Secrets lists every configured credential, for log and span redaction.
func (k KeysConfig) Secrets() []string {
	return []string{k.OpenAI, k.SerpAPI, k.Weather, k.Exchange, k.Aviation, k.HuggingFace}
}

// LLMConfig picks the completion backend: openai (default) or huggingface.
type LLMConfig struct {
	Provider         string `koanf:"provider"`
	HuggingFaceModel string `koanf:"huggingface_model"`
}

// ProvidersConfig overrides provider base URLs (tests, proxies).
type ProvidersConfig struct {
	OpenAIURL      string `koanf:"openai_url"`
	SerpAPIURL     string `koanf:"serpapi_url"`
	WeatherURL     string `koanf:"weather_url"`
	ExchangeURL    string `koanf:"exchange_url"`
	AviationURL    string `koanf:"aviation_url"`
	NominatimURL   string `koanf:"nominatim_url"`
	HuggingFaceURL string `koanf:"huggingface_url"`
	UserAgent      string `koanf:"user_agent"`
}

// ModelsConfig selects the completion model per guide topic.
type ModelsConfig struct {
	Default       string `koanf:"default"`
	Transport     string `koanf:"transport"`
	Emergency     string `koanf:"emergency"`
	Accommodation string `koanf:"accommodation"`
	Shopping      string `koanf:"shopping"`
	Packing       string `koanf:"packing"`
	Phrases       string `koanf:"phrases"`
}

type PlannerConfig struct {
	Timeout        time.Duration `koanf:"timeout"`
	MaxRetries     int           `koanf:"max_retries"`
	RetryBaseDelay time.Duration `koanf:"retry_base_delay"`
	QuoteCurrency  string        `koanf:"quote_currency"`
	Concurrent     bool          `koanf:"concurrent"`
}

type DatabaseConfig struct {
	Driver   string `koanf:"driver"` // postgres, memory
	URL      string `koanf:"url"`
	Host     string `koanf:"host"`
	Port     string `koanf:"port"`
	User     string `koanf:"user"`
	Password string `koanf:"password"`
	Name     string `koanf:"name"`
	SSLMode  string `koanf:"sslmode"`
}

type TelemetryConfig struct {
	Enabled     bool   `koanf:"enabled"`
	ServiceName string `koanf:"service_name"`
}

// PDFConfig points at a Unicode TrueType font for plan exports.
type PDFConfig struct {
	FontPath string `koanf:"font_path"`
}

// envKeys maps the process environment onto koanf keys.
var envKeys = map[string]string{
	"OPENAI_API_KEY":      "keys.openai",
	"SERP_API_KEY":        "keys.serpapi",
	"WEATHER_API_KEY":     "keys.weather",
	"EXCHANGE_API_KEY":    "keys.exchange",
	"AVIATION_API_KEY":    "keys.aviation",
	"HUGGINGFACE_API_KEY": "keys.huggingface",

	"LLM_PROVIDER": "llm.provider",
	"HF_MODEL":     "llm.huggingface_model",

	"PORT":         "server.port",
	"GIN_MODE":     "server.gin_mode",
	"FRONTEND_URL": "server.frontend_urls",

	"OPENAI_BASE_URL":      "providers.openai_url",
	"SERPAPI_BASE_URL":     "providers.serpapi_url",
	"WEATHER_BASE_URL":     "providers.weather_url",
	"EXCHANGE_BASE_URL":    "providers.exchange_url",
	"AVIATION_BASE_URL":    "providers.aviation_url",
	"NOMINATIM_BASE_URL":   "providers.nominatim_url",
	"HUGGINGFACE_BASE_URL": "providers.huggingface_url",

	"LLM_MODEL":               "models.default",
	"LLM_MODEL_TRANSPORT":     "models.transport",
	"LLM_MODEL_EMERGENCY":     "models.emergency",
	"LLM_MODEL_ACCOMMODATION": "models.accommodation",
	"LLM_MODEL_SHOPPING":      "models.shopping",
	"LLM_MODEL_PACKING":       "models.packing",
	"LLM_MODEL_PHRASES":       "models.phrases",

	"PLANNER_TIMEOUT":          "planner.timeout",
	"PLANNER_MAX_RETRIES":      "planner.max_retries",
	"PLANNER_RETRY_BASE_DELAY": "planner.retry_base_delay",
	"PLANNER_QUOTE_CURRENCY":   "planner.quote_currency",
	"PLANNER_CONCURRENT":       "planner.concurrent",

	"DB_DRIVER":    "database.driver",
	"DATABASE_URL": "database.url",
	"DB_HOST":      "database.host",
	"DB_PORT":      "database.port",
	"DB_USER":      "database.user",
	"DB_PASSWORD":  "database.password",
	"DB_NAME":      "database.name",
	"DB_SSLMODE":   "database.sslmode",

	"OTEL_ENABLED":      "telemetry.enabled",
	"OTEL_SERVICE_NAME": "telemetry.service_name",

	"PDF_FONT_PATH": "pdf.font_path",
}

var defaults = map[string]any{
	"server.port": "8080",

	"providers.openai_url":      "https://api.openai.com/v1",
	"providers.serpapi_url":     "https://serpapi.com",
	"providers.weather_url":     "http://api.openweathermap.org",
	"providers.exchange_url":    "https://v6.exchangerate-api.com",
	"providers.aviation_url":    "http://api.aviationstack.com",
	"providers.nominatim_url":   "https://nominatim.openstreetmap.org",
	"providers.huggingface_url": "https://api-inference.huggingface.co",
	"providers.user_agent":      "travelplanner/1.0",

	"llm.provider": "openai",

	"models.default":       "gpt-4o-mini",
	"models.emergency":     "gpt-4-turbo",
	"models.accommodation": "gpt-4-turbo",

	"planner.timeout":          "10s",
	"planner.max_retries":      1,
	"planner.retry_base_delay": "500ms",
	"planner.quote_currency":   "INR",
	"planner.concurrent":       true,

	"database.host":     "localhost",
	"database.port":     "5432",
	"database.user":     "postgres",
	"database.password": "postgres",
	"database.name":     "travelplanner",
	"database.sslmode":  "disable",

	"telemetry.service_name": "travelplanner",
}

// ─── Load ─────────────────────────────────────────────────────────────────────

// Load reads defaults, then an optional YAML file, then the environment.
// path may be empty, in which case TRAVEL_CONFIG or config.yaml is tried.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	for key, val := range defaults {
		if err := k.Set(key, val); err != nil {
			return nil, err
		}
	}

	if path == "" {
		path = os.Getenv("TRAVEL_CONFIG")
	}
	if path == "" {
		path = "config.yaml"
	}
	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		// File not found is OK, we'll use env vars
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to load %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider("", ".", func(s string) string {
		return envKeys[s]
	}), nil); err != nil {
		return nil, err
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, err
	}
	cfg.Planner.QuoteCurrency = strings.ToUpper(strings.TrimSpace(cfg.Planner.QuoteCurrency))
	return &cfg, nil
}

// Validate reports every required credential that is missing, then checks
// planner settings.
func (c *Config) Validate() error {
	var missing []string
	switch strings.ToLower(c.LLM.Provider) {
	case "", "openai":
		if c.Keys.OpenAI == "" {
			missing = append(missing, "OPENAI_API_KEY")
		}
	case "huggingface":
		if c.Keys.HuggingFace == "" {
			missing = append(missing, "HUGGINGFACE_API_KEY")
		}
	default:
		return fmt.Errorf("unknown LLM provider %q (want openai or huggingface)", c.LLM.Provider)
	}
	if c.Keys.SerpAPI == "" {
		missing = append(missing, "SERP_API_KEY")
	}
	if c.Keys.Weather == "" {
		missing = append(missing, "WEATHER_API_KEY")
	}
	if c.Keys.Exchange == "" {
		missing = append(missing, "EXCHANGE_API_KEY")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing API keys: %s", strings.Join(missing, ", "))
	}
	if c.Planner.Timeout <= 0 {
		return fmt.Errorf("planner timeout must be positive, got %s", c.Planner.Timeout)
	}
	if !services.ValidCurrencyCode(c.Planner.QuoteCurrency) {
		return fmt.Errorf("planner quote currency must be a 3-letter code, got %q", c.Planner.QuoteCurrency)
	}
	return nil
}

// ModelFor returns the configured model for a guide topic, falling back to the default.
func (m ModelsConfig) ModelFor(topic string) string {
	var model string
	switch topic {
	case "transport":
		model = m.Transport
	case "emergency":
		model = m.Emergency
	case "accommodation":
		model = m.Accommodation
	case "shopping":
		model = m.Shopping
	case "packing":
		model = m.Packing
	case "phrases":
		model = m.Phrases
	}
	if model == "" {
		return m.Default
	}
	return model
}

// UsePostgres reports whether plans go to Postgres. Without an explicit driver,
// a DATABASE_URL selects Postgres and its absence selects in-memory storage.
func (d DatabaseConfig) UsePostgres() bool {
	switch strings.ToLower(d.Driver) {
	case "postgres", "postgresql":
		return true
	case "memory":
		return false
	}
	return d.URL != ""
}

// DSN returns the Postgres connection string.
func (d DatabaseConfig) DSN() string {
	if d.URL != "" {
		return d.URL
	}
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
}
