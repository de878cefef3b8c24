package config

import (
	"bytes"
	_ "embed"
	"fmt"
	"net/url"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/google/uuid"
	"github.com/spf13/viper"
)

//go:embed config.yml
var embeddedConfig []byte

const (
	ModeDevelopment = "development"
	ModeProduction  = "production"
	ModeTest        = "test"
)

const maxUpstreamTimeout = 60 * time.Second

type ServerConfig struct {
	HTTPPort string        `mapstructure:"HTTPPort"`
	Timeout  time.Duration `mapstructure:"HTTPTimeout"`
}

type PrometheusConfig struct {
	Port string `mapstructure:"port"`
}

// NotionConfig identifies the upstream database and how to talk to it.
type NotionConfig struct {
	Token        string        `mapstructure:"token"`
	DatabaseID   string        `mapstructure:"databaseID"`
	BaseURL      string        `mapstructure:"baseURL"`
	APIVersion   string        `mapstructure:"apiVersion"`
	CityProperty string        `mapstructure:"cityProperty"`
	Timeout      time.Duration `mapstructure:"timeout"`
}

type CORSConfig struct {
	DevOrigin    string   `mapstructure:"devOrigin"`
	ExtraOrigins []string `mapstructure:"extraOrigins"`
}

type HandlersConfig struct {
	Prometheus PrometheusConfig `mapstructure:"prometheus"`
}

// Config is built once at startup and never mutated afterwards.
type Config struct {
	Mode      string         `mapstructure:"mode"`
	Server    ServerConfig   `mapstructure:"server"`
	Handlers  HandlersConfig `mapstructure:"handlers"`
	Notion    NotionConfig   `mapstructure:"notion"`
	CORS      CORSConfig     `mapstructure:"cors"`
	VercelURL string         `mapstructure:"vercelURL"`
}

var envBindings = map[string]string{
	"mode":                     "APP_ENV",
	"server.HTTPPort":          "PORT",
	"handlers.prometheus.port": "METRICS_PORT",
	"notion.token":             "NOTION_API_TOKEN",
	"notion.databaseID":        "NOTION_DATABASE_ID",
	"notion.baseURL":           "NOTION_BASE_URL",
	"notion.cityProperty":      "NOTION_CITY_PROPERTY",
	"notion.timeout":           "NOTION_TIMEOUT",
	"cors.extraOrigins":        "CORS_EXTRA_ORIGINS",
	"vercelURL":                "VERCEL_URL",
}

func InitConfig() (Config, error) {
	var config Config
	v := viper.New()

	v.AddConfigPath(".")
	v.AddConfigPath("config")
	v.AddConfigPath("/app/config")

	v.SetConfigName("config")
	v.SetConfigType("yml")

	err := v.ReadInConfig()
	if err != nil {
		if err = v.ReadConfig(bytes.NewReader(embeddedConfig)); err != nil {
			return Config{}, fmt.Errorf("failed to read embedded config: %w", err)
		}
	}

	for key, env := range envBindings {
		if err = v.BindEnv(key, env); err != nil {
			return Config{}, fmt.Errorf("failed to bind %s: %w", env, err)
		}
	}

	if err = v.Unmarshal(&config); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err = config.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid configuration: %w", err)
	}
	return config, nil
}

func (c *Config) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Mode,
			validation.Required,
			validation.In(ModeDevelopment, ModeProduction, ModeTest),
		),
		validation.Field(&c.Server,
			validation.By(func(value interface{}) error {
				sc, ok := value.(ServerConfig)
				if !ok {
					return validation.NewError("validation_invalid_type", "must be a ServerConfig")
				}
				return validation.ValidateStruct(&sc,
					validation.Field(&sc.HTTPPort, validation.Required, is.Port),
					validation.Field(&sc.Timeout, validation.Required, validation.Min(time.Second)),
				)
			}),
		),
		validation.Field(&c.Handlers,
			validation.By(func(value interface{}) error {
				hc, ok := value.(HandlersConfig)
				if !ok {
					return validation.NewError("validation_invalid_type", "must be a HandlersConfig")
				}
				return validation.Validate(hc.Prometheus.Port, is.Port)
			}),
		),
		validation.Field(&c.Notion,
			validation.By(func(value interface{}) error {
				nc, ok := value.(NotionConfig)
				if !ok {
					return validation.NewError("validation_invalid_type", "must be a NotionConfig")
				}
				return validation.ValidateStruct(&nc,
					validation.Field(&nc.Token, validation.Required),
					validation.Field(&nc.DatabaseID, validation.Required, validation.By(validateDatabaseID)),
					validation.Field(&nc.BaseURL, validation.Required, validation.By(validateBaseURL)),
					validation.Field(&nc.APIVersion, validation.Required),
					validation.Field(&nc.CityProperty, validation.Required),
					validation.Field(&nc.Timeout,
						validation.Required,
						validation.Min(time.Millisecond),
						validation.Max(maxUpstreamTimeout),
					),
				)
			}),
		),
		validation.Field(&c.CORS,
			validation.By(func(value interface{}) error {
				cc, ok := value.(CORSConfig)
				if !ok {
					return validation.NewError("validation_invalid_type", "must be a CORSConfig")
				}
				return validation.ValidateStruct(&cc,
					validation.Field(&cc.DevOrigin, validation.By(validateOrigin)),
					validation.Field(&cc.ExtraOrigins, validation.Each(validation.By(validateOrigin))),
				)
			}),
		),
	)
}

// AllowedOrigins returns the CORS allow-list: the deployment origin derived
// from VercelURL first, then any extra origins, then the dev origin.
func (c *Config) AllowedOrigins() []string {
	var origins []string
	seen := make(map[string]bool)
	add := func(origin string) {
		origin = strings.TrimRight(strings.TrimSpace(origin), "/")
		if origin == "" || seen[origin] {
			return
		}
		seen[origin] = true
		origins = append(origins, origin)
	}

	if host := strings.TrimSpace(c.VercelURL); host != "" {
		add("https://" + strings.TrimPrefix(host, "https://"))
	}
	for _, o := range c.CORS.ExtraOrigins {
		add(o)
	}
	add(c.CORS.DevOrigin)
	return origins
}

func (c *Config) IsDevelopment() bool {
	return c.Mode == ModeDevelopment
}

// validateDatabaseID accepts 32 hex characters, optionally in the hyphenated
// 8-4-4-4-12 layout. The urn and braced forms uuid.Parse allows are rejected.
func validateDatabaseID(value interface{}) error {
	id, ok := value.(string)
	if !ok {
		return validation.NewError("validation_invalid_type", "must be a string")
	}
	if id == "" {
		return nil
	}
	if len(id) != 32 && len(id) != 36 {
		return validation.NewError("validation_invalid_database_id", "must be a 32 character Notion id")
	}
	if _, err := uuid.Parse(id); err != nil {
		return validation.NewError("validation_invalid_database_id", "must be a 32 character Notion id")
	}
	return nil
}

func validateBaseURL(value interface{}) error {
	raw, ok := value.(string)
	if !ok {
		return validation.NewError("validation_invalid_type", "must be a string")
	}
	if raw == "" {
		return nil
	}
	u, err := url.Parse(raw)
	if err != nil {
		return validation.NewError("validation_invalid_url", "must be a valid URL")
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return validation.NewError("validation_invalid_scheme", "URL must use http or https scheme")
	}
	if u.Host == "" {
		return validation.NewError("validation_missing_host", "URL must have a host")
	}
	return nil
}

func validateOrigin(value interface{}) error {
	origin, ok := value.(string)
	if !ok {
		return validation.NewError("validation_invalid_type", "must be a string")
	}
	if origin == "" {
		return nil
	}
	return validateBaseURL(origin)
}
