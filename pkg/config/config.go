package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	// Server
	Port string `mapstructure:"PORT"`
	Env  string `mapstructure:"ENV"`

	// Redis (optional - in-memory cache is used when empty)
	RedisURL string `mapstructure:"REDIS_URL"`

	// The Odds API
	OddsAPIKey     string `mapstructure:"ODDS_API_KEY"`
	OddsAPIBaseURL string `mapstructure:"ODDS_API_BASE_URL"`
	SportKey       string `mapstructure:"SPORT_KEY"`
	DaysAhead      int    `mapstructure:"DAYS_AHEAD"`
	Bookmakers     []string
	PropMarkets    []string

	// Player stats API
	StatsAPIKey       string        `mapstructure:"STATS_API_KEY"`
	StatsAPIBaseURL   string        `mapstructure:"STATS_API_BASE_URL"`
	StatsRateInterval time.Duration `mapstructure:"STATS_RATE_INTERVAL"`

	// External call protection
	ExternalAPITimeout      time.Duration `mapstructure:"EXTERNAL_API_TIMEOUT"`
	CircuitBreakerThreshold int           `mapstructure:"CIRCUIT_BREAKER_THRESHOLD"`

	// Pipeline scheduling
	RunInterval        string `mapstructure:"RUN_INTERVAL"`
	RunOnStartup       bool   `mapstructure:"RUN_ON_STARTUP"`
	EnableScheduledRun bool   `mapstructure:"ENABLE_SCHEDULED_RUN"`

	// Data files
	DataDir          string `mapstructure:"DATA_DIR"`
	TrackingFile     string `mapstructure:"TRACKING_FILE"`
	PerformanceFile  string `mapstructure:"PERFORMANCE_FILE"`
	PropsHistoryFile string `mapstructure:"PROPS_HISTORY_FILE"`
	DashboardFile    string `mapstructure:"DASHBOARD_FILE"`

	// Dashboard
	DashboardTitle    string `mapstructure:"DASHBOARD_TITLE"`
	DashboardSubtitle string `mapstructure:"DASHBOARD_SUBTITLE"`
}

func LoadConfig() (*Config, error) {
	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")
	viper.AddConfigPath("..")

	// Set defaults
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("ENV", "development")
	viper.SetDefault("REDIS_URL", "")

	viper.SetDefault("ODDS_API_KEY", "")
	viper.SetDefault("ODDS_API_BASE_URL", "https://api.the-odds-api.com/v4")
	viper.SetDefault("SPORT_KEY", "basketball_nba")
	viper.SetDefault("DAYS_AHEAD", 3)
	viper.SetDefault("BOOKMAKERS", "fanduel,draftkings,betmgm,pointsbet,caesars,pinnacle")
	viper.SetDefault("PROP_MARKETS", "player_points,player_assists,player_rebounds,player_threes")

	viper.SetDefault("STATS_API_KEY", "")
	viper.SetDefault("STATS_API_BASE_URL", "https://api.balldontlie.io/v1")
	viper.SetDefault("STATS_RATE_INTERVAL", "600ms")

	viper.SetDefault("EXTERNAL_API_TIMEOUT", "10s")
	viper.SetDefault("CIRCUIT_BREAKER_THRESHOLD", 5)

	viper.SetDefault("RUN_INTERVAL", "2h")
	viper.SetDefault("RUN_ON_STARTUP", true)
	viper.SetDefault("ENABLE_SCHEDULED_RUN", true)

	viper.SetDefault("DATA_DIR", "data")
	viper.SetDefault("TRACKING_FILE", "data/tracking.json")
	viper.SetDefault("PERFORMANCE_FILE", "data/performance.json")
	viper.SetDefault("PROPS_HISTORY_FILE", "data/props_history.json")
	viper.SetDefault("DASHBOARD_FILE", "index.html")

	viper.SetDefault("DASHBOARD_TITLE", "CourtSide Analytics - NBA Props")
	viper.SetDefault("DASHBOARD_SUBTITLE", "Powered by The Odds API • Real-Time Props")

	// Read from environment
	viper.AutomaticEnv()

	// Read config file if exists
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	// Parse bookmakers from comma-separated string
	if bookStr := viper.GetString("BOOKMAKERS"); bookStr != "" {
		config.Bookmakers = strings.Split(bookStr, ",")
	}

	// Parse prop markets from comma-separated string
	if marketStr := viper.GetString("PROP_MARKETS"); marketStr != "" {
		config.PropMarkets = strings.Split(marketStr, ",")
	}

	return &config, nil
}

func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}
