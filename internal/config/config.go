package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Store  StoreConfig  `yaml:"store" mapstructure:"store"`
	Server ServerConfig `yaml:"server" mapstructure:"server"`
	Log    LogConfig    `yaml:"log" mapstructure:"log"`
	Engine EngineConfig `yaml:"engine" mapstructure:"engine"`
	Impact ImpactConfig `yaml:"impact" mapstructure:"impact"`
	ML     MLConfig     `yaml:"ml" mapstructure:"ml"`
	Market MarketConfig `yaml:"market" mapstructure:"market"`
}

// StoreConfig configures the bond store backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`             // "sqlite" or "postgres"
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"` // postgres connection string
	SQLitePath  string `yaml:"sqlite_path" mapstructure:"sqlite_path"`
}

// ServerConfig configures the HTTP API server.
type ServerConfig struct {
	Port           int      `yaml:"port" mapstructure:"port"`
	AllowedOrigins []string `yaml:"allowed_origins" mapstructure:"allowed_origins"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// EngineConfig holds the transparency scoring weights and thresholds.
// The three component weights form a convex combination and must sum to 1.
type EngineConfig struct {
	UseOfProceedsWeight float64 `yaml:"use_of_proceeds_weight" mapstructure:"use_of_proceeds_weight"`
	ReportingWeight     float64 `yaml:"reporting_weight" mapstructure:"reporting_weight"`
	VerificationWeight  float64 `yaml:"verification_weight" mapstructure:"verification_weight"`

	// Transparency scores above this threshold label the bond "low" risk.
	// The cutoff is an unresolved calibration; keep it tunable.
	RiskLowThreshold float64 `yaml:"risk_low_threshold" mapstructure:"risk_low_threshold"`
}

// ImpactConfig holds the impact-gap estimator constants. The intensity and
// realization fraction are rule-of-thumb placeholders with no documented
// derivation; they stay configurable rather than hard-coded.
type ImpactConfig struct {
	IntensityTonsPerMUSD float64 `yaml:"intensity_tons_per_musd" mapstructure:"intensity_tons_per_musd"`
	RealizationFraction  float64 `yaml:"realization_fraction" mapstructure:"realization_fraction"`
	AmountUncertaintyPct float64 `yaml:"amount_uncertainty_pct" mapstructure:"amount_uncertainty_pct"`
	ClaimUncertaintyPct  float64 `yaml:"claim_uncertainty_pct" mapstructure:"claim_uncertainty_pct"`
	UncertaintyFloorTons float64 `yaml:"uncertainty_floor_tons" mapstructure:"uncertainty_floor_tons"`
}

// MLConfig configures the learned transparency scorer.
type MLConfig struct {
	ModelPath string `yaml:"model_path" mapstructure:"model_path"`
}

// MarketConfig configures market data sources.
type MarketConfig struct {
	SeriesPath    string `yaml:"series_path" mapstructure:"series_path"`
	DefaultSymbol string `yaml:"default_symbol" mapstructure:"default_symbol"`
	StooqBaseURL  string `yaml:"stooq_base_url" mapstructure:"stooq_base_url"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("GREENPRISM")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.sqlite_path", "greenprism.db")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.allowed_origins", []string{"http://localhost:5173", "http://127.0.0.1:5173"})
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("engine.use_of_proceeds_weight", 0.4)
	v.SetDefault("engine.reporting_weight", 0.3)
	v.SetDefault("engine.verification_weight", 0.3)
	v.SetDefault("engine.risk_low_threshold", 75)
	v.SetDefault("impact.intensity_tons_per_musd", 5.0)
	v.SetDefault("impact.realization_fraction", 0.65)
	v.SetDefault("impact.amount_uncertainty_pct", 0.10)
	v.SetDefault("impact.claim_uncertainty_pct", 0.15)
	v.SetDefault("impact.uncertainty_floor_tons", 1.0)
	v.SetDefault("ml.model_path", "models/transparency_regressor.json")
	v.SetDefault("market.series_path", "data/market_series.csv")
	v.SetDefault("market.default_symbol", "GRNB")
	v.SetDefault("market.stooq_base_url", "https://stooq.com")

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
