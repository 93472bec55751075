package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/jadaunkg/horizon/internal/core"
	"github.com/spf13/viper"
)

type Config struct {
	Instruments []InstrumentConfig `mapstructure:"instruments"`
	Data        DataConfig         `mapstructure:"data"`
	Forecast    ForecastConfig     `mapstructure:"forecast"`
	Boost       BoostConfig        `mapstructure:"boost"`
	Collector   CollectorConfig    `mapstructure:"collector"`
	Storage     StorageConfig      `mapstructure:"storage"`
	Report      ReportConfig       `mapstructure:"report"`
	Analyst     AnalystConfig      `mapstructure:"analyst"`
	Metrics     MetricsConfig      `mapstructure:"metrics"`
	Server      ServerConfig       `mapstructure:"server"`
}

// ServerConfig holds settings for the run browser HTTP server
type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

// InstrumentConfig identifies one asset to forecast, with its optional
// historical price adjustment (e.g. a pre-split rescale).
type InstrumentConfig struct {
	Symbol     string          `mapstructure:"symbol"`
	Name       string          `mapstructure:"name"`
	Adjustment *AdjustmentRule `mapstructure:"adjustment"`
}

// AdjustmentRule rescales closes strictly before Cutoff by Multiplier.
// Declarative so new instruments need no code changes.
type AdjustmentRule struct {
	Cutoff     string  `mapstructure:"cutoff"` // YYYY-MM-DD
	Multiplier float64 `mapstructure:"multiplier"`
}

// CutoffTime parses the rule's cutoff date
func (r AdjustmentRule) CutoffTime() (time.Time, error) {
	return time.Parse("2006-01-02", r.Cutoff)
}

// DataConfig holds input quality gates and macro source symbols
type DataConfig struct {
	MinRawRows    int     `mapstructure:"min_raw_rows"`    // raw asset history gate
	MinMergedRows int     `mapstructure:"min_merged_rows"` // merged table gate
	MinAvgVolume  float64 `mapstructure:"min_avg_volume"`  // liquidity gate
	IndexSymbol   string  `mapstructure:"index_symbol"`    // equity index proxy
	RateSymbol    string  `mapstructure:"rate_symbol"`     // interest rate proxy
}

// ForecastConfig holds Stage A and split settings
type ForecastConfig struct {
	Horizon        int     `mapstructure:"horizon"`          // future periods
	SplitFraction  float64 `mapstructure:"split_fraction"`   // train share
	CVFolds        int     `mapstructure:"cv_folds"`         // rolling-origin folds
	CapMultiplier  float64 `mapstructure:"cap_multiplier"`   // price ceiling factor
	SeasonalOrder  int     `mapstructure:"seasonal_order"`   // yearly Fourier order
	AllowTrendOnly bool    `mapstructure:"allow_trend_only"` // tolerate Stage B data shortfall
}

// BoostConfig holds Stage B gradient boosting hyperparameters.
// Fixed by configuration, never tuned inside the pipeline.
type BoostConfig struct {
	Estimators         int     `mapstructure:"estimators"`
	LearningRate       float64 `mapstructure:"learning_rate"`
	MaxDepth           int     `mapstructure:"max_depth"`
	Subsample          float64 `mapstructure:"subsample"`
	ValidationFraction float64 `mapstructure:"validation_fraction"`
	Patience           int     `mapstructure:"patience"`
	Seed               int64   `mapstructure:"seed"`
}

// CollectorConfig holds data retrieval settings
type CollectorConfig struct {
	Provider string        `mapstructure:"provider"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

// StorageConfig holds artifact archive settings
type StorageConfig struct {
	Type string   `mapstructure:"type"` // "localfs" or "s3"
	Path string   `mapstructure:"path"` // For localfs
	S3   S3Config `mapstructure:"s3"`   // For S3
}

type S3Config struct {
	Bucket    string `mapstructure:"bucket"`
	Endpoint  string `mapstructure:"endpoint"`
	Region    string `mapstructure:"region"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	Prefix    string `mapstructure:"prefix"`
}

// ReportConfig holds report rendering settings
type ReportConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	OutputDir string `mapstructure:"output_dir"`
}

// AnalystConfig holds LLM commentary settings. Disabled by default.
type AnalystConfig struct {
	Enabled  bool         `mapstructure:"enabled"`
	Provider string       `mapstructure:"provider"`
	Claude   ClaudeConfig `mapstructure:"claude"`
	OpenAI   OpenAIConfig `mapstructure:"openai"`
	Ollama   OllamaConfig `mapstructure:"ollama"`
}

type ClaudeConfig struct {
	APIKey string `mapstructure:"api_key"`
	Model  string `mapstructure:"model"`
}

type OpenAIConfig struct {
	APIKey string `mapstructure:"api_key"`
	Model  string `mapstructure:"model"`
}

type OllamaConfig struct {
	Endpoint string `mapstructure:"endpoint"`
	Model    string `mapstructure:"model"`
}

// MetricsConfig holds metrics configuration.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Addr    string `mapstructure:"addr"`
	Path    string `mapstructure:"path"`
}

// Load reads configuration from file
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	// Support environment variable overrides
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	// Expand environment variables in string values
	for _, key := range v.AllKeys() {
		val := v.GetString(key)
		if strings.HasPrefix(val, "${") && strings.HasSuffix(val, "}") {
			envKey := strings.TrimSuffix(strings.TrimPrefix(val, "${"), "}")
			v.Set(key, os.Getenv(envKey))
		}
	}

	cfg := Defaults()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	return cfg, nil
}

// Defaults returns a config with sensible defaults
func Defaults() *Config {
	return &Config{
		Data: DataConfig{
			MinRawRows:    100,
			MinMergedRows: 30,
			MinAvgVolume:  900,
			IndexSymbol:   "^GSPC",
			RateSymbol:    "^TNX",
		},
		Forecast: ForecastConfig{
			Horizon:       365,
			SplitFraction: 0.8,
			CVFolds:       5,
			CapMultiplier: 2.0,
			SeasonalOrder: 6,
		},
		Boost: BoostConfig{
			Estimators:         500,
			LearningRate:       0.01,
			MaxDepth:           3,
			Subsample:          0.8,
			ValidationFraction: 0.2,
			Patience:           15,
			Seed:               42,
		},
		Collector: CollectorConfig{
			Provider: "yahoo",
			Timeout:  10 * time.Second,
		},
		Storage: StorageConfig{
			Type: "localfs",
			Path: "artifacts",
		},
		Report: ReportConfig{
			Enabled:   true,
			OutputDir: "reports",
		},
		Metrics: MetricsConfig{
			Enabled: false,
			Addr:    ":9190",
			Path:    "/metrics",
		},
		Server: ServerConfig{
			Host: "127.0.0.1",
			Port: 8400,
		},
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if len(c.Instruments) == 0 {
		return core.WrapError(core.ErrConfigMissing,
			fmt.Errorf("at least one instrument required"))
	}
	for _, inst := range c.Instruments {
		if inst.Symbol == "" {
			return core.WrapError(core.ErrConfigInvalid,
				fmt.Errorf("instrument symbol cannot be empty"))
		}
		if inst.Adjustment != nil {
			if _, err := inst.Adjustment.CutoffTime(); err != nil {
				return core.WrapError(core.ErrConfigInvalid,
					fmt.Errorf("instrument %s adjustment cutoff: %w", inst.Symbol, err))
			}
			if inst.Adjustment.Multiplier <= 0 {
				return core.WrapError(core.ErrConfigInvalid,
					fmt.Errorf("instrument %s adjustment multiplier must be positive, got %f",
						inst.Symbol, inst.Adjustment.Multiplier))
			}
		}
	}

	if c.Forecast.Horizon < 1 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("horizon must be at least 1, got %d", c.Forecast.Horizon))
	}
	if c.Forecast.SplitFraction <= 0 || c.Forecast.SplitFraction >= 1 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("split_fraction must be in (0, 1), got %f", c.Forecast.SplitFraction))
	}
	if c.Forecast.CVFolds < 2 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("cv_folds must be at least 2, got %d", c.Forecast.CVFolds))
	}
	if c.Forecast.CapMultiplier <= 1 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("cap_multiplier must exceed 1, got %f", c.Forecast.CapMultiplier))
	}

	if c.Boost.Estimators < 1 || c.Boost.MaxDepth < 1 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("boost estimators and max_depth must be positive"))
	}
	if c.Boost.LearningRate <= 0 || c.Boost.LearningRate > 1 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("learning_rate must be in (0, 1], got %f", c.Boost.LearningRate))
	}
	if c.Boost.Subsample <= 0 || c.Boost.Subsample > 1 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("subsample must be in (0, 1], got %f", c.Boost.Subsample))
	}

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("server port must be in 1..65535, got %d", c.Server.Port))
	}

	// Analyst validation - if enabled, check provider config exists
	if c.Analyst.Enabled {
		switch c.Analyst.Provider {
		case "claude":
			if c.Analyst.Claude.APIKey == "" {
				return core.WrapError(core.ErrConfigMissing,
					fmt.Errorf("claude api_key required when provider is claude"))
			}
		case "openai":
			if c.Analyst.OpenAI.APIKey == "" {
				return core.WrapError(core.ErrConfigMissing,
					fmt.Errorf("openai api_key required when provider is openai"))
			}
		case "ollama":
			if c.Analyst.Ollama.Endpoint == "" {
				return core.WrapError(core.ErrConfigMissing,
					fmt.Errorf("ollama endpoint required when provider is ollama"))
			}
		default:
			return core.WrapError(core.ErrConfigInvalid,
				fmt.Errorf("unknown analyst provider: %s", c.Analyst.Provider))
		}
	}

	return nil
}
