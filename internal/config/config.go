package config

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	DriverSQLite = "sqlite"
	DriverPgx    = "pgx"

	envPrefix  = "FURNACE"
	dateLayout = "2006-01-02"
)

// Config is the full runtime configuration read from configs/config.yml
// and FURNACE_* environment variables.
type Config struct {
	Port    string        `mapstructure:"port"`
	Log     LogConfig     `mapstructure:"log"`
	DB      DBConfig      `mapstructure:"db"`
	Catalog CatalogConfig `mapstructure:"catalog"`
	Sampler SamplerConfig `mapstructure:"sampler"`
	Trend   TrendConfig   `mapstructure:"trend"`
	KPI     KPIConfig     `mapstructure:"kpi"`
	Report  ReportConfig  `mapstructure:"report"`
	WS      WSConfig      `mapstructure:"ws"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // console | json
}

type DBConfig struct {
	Driver       string        `mapstructure:"driver"` // sqlite | pgx
	DSN          string        `mapstructure:"dsn"`
	Table        string        `mapstructure:"table"`
	Migrate      bool          `mapstructure:"migrate"`
	MaxOpenConns int           `mapstructure:"max_open_conns"`
	QueryTimeout time.Duration `mapstructure:"query_timeout"`
}

type CatalogConfig struct {
	Path string `mapstructure:"path"` // empty means the built-in table
}

type SamplerConfig struct {
	Hour int `mapstructure:"hour"`
}

type TrendConfig struct {
	LookbackDays  int      `mapstructure:"lookback_days"`
	DefaultStart  string   `mapstructure:"default_start"` // YYYY-MM-DD, optional
	DefaultEnd    string   `mapstructure:"default_end"`   // YYYY-MM-DD, optional
	DefaultParams []string `mapstructure:"default_params"`
}

type KPIConfig struct {
	LookbackDays int `mapstructure:"lookback_days"`
}

type ReportConfig struct {
	MaxRows      int `mapstructure:"max_rows"`
	LookbackDays int `mapstructure:"lookback_days"`
}

type WSConfig struct {
	DefaultInterval time.Duration `mapstructure:"default_interval"`
	MaxInterval     time.Duration `mapstructure:"max_interval"`
}

var tableNameRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_.]*$`)

func setDefaults(v *viper.Viper) {
	v.SetDefault("port", "8080")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("db.driver", DriverSQLite)
	v.SetDefault("db.dsn", "app.db")
	v.SetDefault("db.table", "float_table")
	v.SetDefault("db.migrate", true)
	v.SetDefault("db.max_open_conns", 4)
	v.SetDefault("db.query_timeout", 15*time.Second)
	v.SetDefault("catalog.path", "")
	v.SetDefault("sampler.hour", 6)
	v.SetDefault("trend.lookback_days", 19)
	v.SetDefault("trend.default_start", "")
	v.SetDefault("trend.default_end", "")
	v.SetDefault("trend.default_params", []string{"Set V"})
	v.SetDefault("kpi.lookback_days", 15)
	v.SetDefault("report.max_rows", 5000)
	v.SetDefault("report.lookback_days", 1)
	v.SetDefault("ws.default_interval", 30*time.Second)
	v.SetDefault("ws.max_interval", 10*time.Minute)
}

// Load reads config.yml from the given directories (first match wins).
// A missing file is not an error: defaults and environment still apply.
func Load(paths ...string) (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	for _, p := range paths {
		v.AddConfigPath(p)
	}
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects settings the service cannot run with.
func (c *Config) Validate() error {
	switch c.DB.Driver {
	case DriverSQLite, DriverPgx:
	default:
		return fmt.Errorf("db.driver %q: must be %q or %q", c.DB.Driver, DriverSQLite, DriverPgx)
	}
	if strings.TrimSpace(c.DB.DSN) == "" {
		return errors.New("db.dsn is required")
	}
	if !tableNameRe.MatchString(c.DB.Table) {
		return fmt.Errorf("db.table %q is not a valid table name", c.DB.Table)
	}
	if c.DB.MaxOpenConns <= 0 {
		return fmt.Errorf("db.max_open_conns must be > 0, got %d", c.DB.MaxOpenConns)
	}
	if c.Sampler.Hour < 0 || c.Sampler.Hour > 23 {
		return fmt.Errorf("sampler.hour must be within 0..23, got %d", c.Sampler.Hour)
	}
	if c.Trend.LookbackDays < 0 || c.KPI.LookbackDays < 0 || c.Report.LookbackDays < 0 {
		return errors.New("lookback_days must not be negative")
	}
	start, err := parseOptionalDate("trend.default_start", c.Trend.DefaultStart)
	if err != nil {
		return err
	}
	end, err := parseOptionalDate("trend.default_end", c.Trend.DefaultEnd)
	if err != nil {
		return err
	}
	if !start.IsZero() && !end.IsZero() && start.After(end) {
		return errors.New("trend.default_start is after trend.default_end")
	}
	if c.Report.MaxRows <= 0 {
		return fmt.Errorf("report.max_rows must be > 0, got %d", c.Report.MaxRows)
	}
	if c.WS.DefaultInterval <= 0 || c.WS.MaxInterval < c.WS.DefaultInterval {
		return fmt.Errorf("ws intervals: need 0 < default_interval (%s) <= max_interval (%s)", c.WS.DefaultInterval, c.WS.MaxInterval)
	}
	return nil
}

// TrendDefaults returns the configured default trend range; zero values mean
// "derive from lookback_days".
func (c *Config) TrendDefaults() (start, end time.Time) {
	start, _ = parseOptionalDate("", c.Trend.DefaultStart)
	end, _ = parseOptionalDate("", c.Trend.DefaultEnd)
	return start, end
}

func parseOptionalDate(key, s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%s %q: use YYYY-MM-DD", key, s)
	}
	return t, nil
}
