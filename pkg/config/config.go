package config

import (
	"fmt"
	"os"
	"regexp"
	"time"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// DateLayout is the layout of every date given in configuration or on the command line
const DateLayout = "2006-01-02"

// Config contains every tunable used by the importers, the analysis and the backtest.
type Config struct {
	Database  DatabaseConfig  `yaml:"database"`
	Cache     CacheConfig     `yaml:"cache"`
	Source    SourceConfig    `yaml:"source"`
	Window    WindowConfig    `yaml:"window"`
	Predictor PredictorConfig `yaml:"predictor"`
	Backtest  BacktestConfig  `yaml:"backtest"`
	Log       LogConfig       `yaml:"log"`
}

type DatabaseConfig struct {
	Driver string `yaml:"driver" default:"sqlite" validate:"oneof=sqlite postgres"`
	DSN    string `yaml:"dsn" default:"results.db" validate:"required"`
}

type CacheConfig struct {
	Path string `yaml:"path" default:".predictomatic/cache"`
}

type SourceConfig struct {
	ResultsURL      string `yaml:"results_url" default:"https://www.bbc.co.uk/sport/football/premier-league/results" validate:"required,url"`
	FootballDataURL string `yaml:"football_data_url" default:"https://www.football-data.co.uk/mmz4281" validate:"required,url"`
	League          string `yaml:"league" default:"E0" validate:"required"`
	Season          string `yaml:"season" default:"2016/2017"`
}

type WindowConfig struct {
	Weeks     int  `yaml:"weeks" default:"40" validate:"min=1"`
	Samples   int  `yaml:"samples" default:"76" validate:"min=1"` // two seasons, 19 home and 19 away each
	Normalize bool `yaml:"normalize"`
}

type PredictorConfig struct {
	HomeAdvantageBoost float64   `yaml:"home_advantage_boost"`
	Threshold          float64   `yaml:"threshold" validate:"min=0"`
	DrawRange          []float64 `yaml:"draw_range" validate:"omitempty,len=2"`
}

type BacktestConfig struct {
	FirstEvaluation string        `yaml:"first_evaluation" default:"2016-08-18" validate:"datetime=2006-01-02"`
	Interval        time.Duration `yaml:"interval" default:"168h" validate:"min=24h"`
	MinWindow       int           `yaml:"min_window" default:"2" validate:"min=1"`
	MaxWindow       int           `yaml:"max_window" default:"40" validate:"min=1"`
	WindowUnit      string        `yaml:"window_unit" default:"weeks" validate:"oneof=weeks days samples"`
	Strategy        string        `yaml:"strategy" default:"league" validate:"oneof=league model"`
	LogPredictions  bool          `yaml:"log_predictions"`
}

type LogConfig struct {
	Level  string `yaml:"level" default:"info"`
	Output string `yaml:"output" default:"c" validate:"oneof=c f b"`
	File   string `yaml:"file"`
}

var validate = validator.New()

var seasonPattern = regexp.MustCompile(`^\d{4}/\d{4}$`)

// DefaultConfig returns the configuration with every default applied
func DefaultConfig() *Config {
	cfg := &Config{}
	if err := defaults.Set(cfg); err != nil {
		// only reachable with a malformed default tag
		panic(fmt.Sprintf("invalid default tag: %v", err))
	}
	return cfg
}

// Load reads a YAML configuration file over the defaults, applies environment
// overrides and validates the result. An empty path yields the defaults.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(b, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	}

	if v := os.Getenv("PREDICTOMATIC_DB"); v != "" {
		cfg.Database.DSN = v
	}
	if v := os.Getenv("LOGLEVEL"); v != "" {
		cfg.Log.Level = v
	}

	if err := ValidateConfig(cfg); err != nil {
		return nil, fmt.Errorf("failed to validate config: %w", err)
	}
	return cfg, nil
}

// ValidateConfig ensures all configuration values are within reasonable ranges
func ValidateConfig(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		return err
	}

	if cfg.Source.Season != "" && !seasonPattern.MatchString(cfg.Source.Season) {
		return fmt.Errorf("Season must be in the format 'yyyy/yyyy', got: %s", cfg.Source.Season)
	}

	if cfg.Backtest.MinWindow > cfg.Backtest.MaxWindow {
		return fmt.Errorf("MinWindow (%d) must not exceed MaxWindow (%d)", cfg.Backtest.MinWindow, cfg.Backtest.MaxWindow)
	}

	if len(cfg.Predictor.DrawRange) == 2 && cfg.Predictor.DrawRange[0] > cfg.Predictor.DrawRange[1] {
		return fmt.Errorf("DrawRange lower bound %f is above upper bound %f", cfg.Predictor.DrawRange[0], cfg.Predictor.DrawRange[1])
	}

	return nil
}

// FirstEvaluationDate parses Backtest.FirstEvaluation
func (c *Config) FirstEvaluationDate() (time.Time, error) {
	return time.Parse(DateLayout, c.Backtest.FirstEvaluation)
}

// WindowSizes lists every window size the backtest sweeps, smallest first
func (c *Config) WindowSizes() []int {
	sizes := make([]int, 0, c.Backtest.MaxWindow-c.Backtest.MinWindow+1)
	for w := c.Backtest.MinWindow; w <= c.Backtest.MaxWindow; w++ {
		sizes = append(sizes, w)
	}
	return sizes
}

// DrawRange returns the configured draw range, if any
func (c *Config) DrawRange() (lo, hi float64, ok bool) {
	if len(c.Predictor.DrawRange) != 2 {
		return 0, 0, false
	}
	return c.Predictor.DrawRange[0], c.Predictor.DrawRange[1], true
}
