package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/sells-group/countries-cli/internal/source"
	"github.com/sells-group/countries-cli/internal/throttle"
)

// Config holds the full application configuration.
type Config struct {
	Env     string        `yaml:"env" mapstructure:"env"`
	Store   StoreConfig   `yaml:"store" mapstructure:"store"`
	Scrape  ScrapeConfig  `yaml:"scrape" mapstructure:"scrape"`
	Sources SourcesConfig `yaml:"sources" mapstructure:"sources"`
	Log     LogConfig     `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the snapshot backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	Dir         string `yaml:"dir" mapstructure:"dir"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

// ScrapeConfig configures fetching and stage pacing.
type ScrapeConfig struct {
	Throttle       time.Duration `yaml:"throttle" mapstructure:"throttle"`
	GeoNamesQuota  int           `yaml:"geonames_quota" mapstructure:"geonames_quota"`
	GeoNamesWindow time.Duration `yaml:"geonames_window" mapstructure:"geonames_window"`
	Timeout        time.Duration `yaml:"timeout" mapstructure:"timeout"`
	MaxRetries     int           `yaml:"max_retries" mapstructure:"max_retries"`
	UserAgent      string        `yaml:"user_agent" mapstructure:"user_agent"`
	Strict         bool          `yaml:"strict" mapstructure:"strict"`
}

// Schedule paces the subdivision, Wikipedia and Wikidata stages.
func (s ScrapeConfig) Schedule() throttle.Schedule {
	return throttle.Schedule{Interval: s.Throttle}
}

// GeoNamesSchedule paces the GeoNames stage within its hourly quota.
func (s ScrapeConfig) GeoNamesSchedule() throttle.Schedule {
	return throttle.Schedule{
		Interval:      s.Throttle,
		QuotaCapacity: s.GeoNamesQuota,
		QuotaWindow:   s.GeoNamesWindow,
	}
}

// SourcesConfig holds the base URLs of the scraped sources.
type SourcesConfig struct {
	WikipediaURL    string `yaml:"wikipedia_url" mapstructure:"wikipedia_url"`
	WikipediaAPIURL string `yaml:"wikipedia_api_url" mapstructure:"wikipedia_api_url"`
	WikidataAPIURL  string `yaml:"wikidata_api_url" mapstructure:"wikidata_api_url"`
	GeoNamesURL     string `yaml:"geonames_url" mapstructure:"geonames_url"`
	UNSDURL         string `yaml:"unsd_url" mapstructure:"unsd_url"`
}

// Endpoints converts the configured URLs.
func (s SourcesConfig) Endpoints() source.Endpoints {
	return source.Endpoints{
		Wikipedia:    s.WikipediaURL,
		WikipediaAPI: s.WikipediaAPIURL,
		WikidataAPI:  s.WikidataAPIURL,
		GeoNames:     s.GeoNamesURL,
		UNSD:         s.UNSDURL,
	}
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Drivers lists the supported store drivers.
var Drivers = []string{"json", "sqlite", "postgres"}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("COUNTRIES")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	ep := source.DefaultEndpoints()
	v.SetDefault("env", "production")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("store.driver", "json")
	v.SetDefault("store.dir", "./data")
	v.SetDefault("store.database_url", "")
	v.SetDefault("scrape.throttle", 250*time.Millisecond)
	v.SetDefault("scrape.geonames_quota", 1700)
	v.SetDefault("scrape.geonames_window", time.Hour)
	v.SetDefault("scrape.timeout", 30*time.Second)
	v.SetDefault("scrape.max_retries", 3)
	v.SetDefault("scrape.user_agent", "countries-cli/1.0 (+https://github.com/sells-group/countries-cli)")
	v.SetDefault("scrape.strict", false)
	v.SetDefault("sources.wikipedia_url", ep.Wikipedia)
	v.SetDefault("sources.wikipedia_api_url", ep.WikipediaAPI)
	v.SetDefault("sources.wikidata_api_url", ep.WikidataAPI)
	v.SetDefault("sources.geonames_url", ep.GeoNames)
	v.SetDefault("sources.unsd_url", ep.UNSD)

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var problems []string

	switch c.Store.Driver {
	case "json":
		if c.Store.Dir == "" {
			problems = append(problems, "store.dir is required for the json driver")
		}
	case "sqlite":
		if c.Store.Dir == "" && c.Store.DatabaseURL == "" {
			problems = append(problems, "store.dir or store.database_url is required for the sqlite driver")
		}
	case "postgres":
		if c.Store.DatabaseURL == "" {
			problems = append(problems, "store.database_url is required for the postgres driver")
		}
	default:
		problems = append(problems, fmt.Sprintf("store.driver %q is not one of %s", c.Store.Driver, strings.Join(Drivers, ", ")))
	}

	if c.Scrape.Throttle < 0 {
		problems = append(problems, "scrape.throttle must not be negative")
	}
	if c.Scrape.GeoNamesQuota <= 0 {
		problems = append(problems, "scrape.geonames_quota must be positive")
	}
	if c.Scrape.GeoNamesWindow < 0 {
		problems = append(problems, "scrape.geonames_window must not be negative")
	}
	if c.Scrape.MaxRetries < 0 {
		problems = append(problems, "scrape.max_retries must not be negative")
	}

	if len(problems) > 0 {
		return eris.Errorf("config: %s", strings.Join(problems, "; "))
	}
	return nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
