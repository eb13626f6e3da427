package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	App       AppConfig
	Database  DatabaseConfig
	Log       LogConfig
	Matching  MatchingConfig
	Scheduler SchedulerConfig
}

// AppConfig holds application-level configuration
type AppConfig struct {
	Name string
	Env  string
}

// DatabaseConfig holds database configuration.
// Driver selects the backend: "postgres" for deployments, "sqlite" for a
// single-terminal install or local development.
type DatabaseConfig struct {
	Driver          string
	Host            string
	Port            int
	User            string
	Password        string
	DBName          string
	SSLMode         string
	SQLitePath      string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime int // minutes
	ConnMaxIdleTime int // minutes
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string
	Format string
	Output string
}

// MatchingConfig holds the clustering weights and thresholds.
// The defaults are the tuned values; overriding them is for experiments,
// not day-to-day operation.
type MatchingConfig struct {
	PartyWeight       float64
	TemporalWeight    float64
	ItemWeight        float64
	AssignThreshold   float64
	TieBand           float64
	CandidateDaysBack int
	CandidateLimit    int
}

// SchedulerConfig holds background job configuration
type SchedulerConfig struct {
	Enabled             bool
	RescoreInterval     time.Duration
	RescoreBatchSize    int
	SweepInterval       time.Duration
	SweepBatchSize      int
	ValidationInterval  time.Duration
	ValidationBatchSize int
	JobTimeout          time.Duration
}

// Load loads configuration from config file and environment variables
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	v.AddConfigPath("./configs")
	v.AddConfigPath("/app")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found is OK, we'll use defaults and env vars
	}

	v.SetEnvPrefix("BARA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{
		App: AppConfig{
			Name: v.GetString("app.name"),
			Env:  v.GetString("app.env"),
		},
		Database: DatabaseConfig{
			Driver:          v.GetString("database.driver"),
			Host:            v.GetString("database.host"),
			Port:            v.GetInt("database.port"),
			User:            v.GetString("database.user"),
			Password:        v.GetString("database.password"),
			DBName:          v.GetString("database.dbname"),
			SSLMode:         v.GetString("database.sslmode"),
			SQLitePath:      v.GetString("database.sqlite_path"),
			MaxOpenConns:    v.GetInt("database.max_open_conns"),
			MaxIdleConns:    v.GetInt("database.max_idle_conns"),
			ConnMaxLifetime: v.GetInt("database.conn_max_lifetime"),
			ConnMaxIdleTime: v.GetInt("database.conn_max_idle_time"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
			Output: v.GetString("log.output"),
		},
		Matching: MatchingConfig{
			PartyWeight:       v.GetFloat64("matching.party_weight"),
			TemporalWeight:    v.GetFloat64("matching.temporal_weight"),
			ItemWeight:        v.GetFloat64("matching.item_weight"),
			AssignThreshold:   v.GetFloat64("matching.assign_threshold"),
			TieBand:           v.GetFloat64("matching.tie_band"),
			CandidateDaysBack: v.GetInt("matching.candidate_days_back"),
			CandidateLimit:    v.GetInt("matching.candidate_limit"),
		},
		Scheduler: SchedulerConfig{
			Enabled:             v.GetBool("scheduler.enabled"),
			RescoreInterval:     v.GetDuration("scheduler.rescore_interval"),
			RescoreBatchSize:    v.GetInt("scheduler.rescore_batch_size"),
			SweepInterval:       v.GetDuration("scheduler.sweep_interval"),
			SweepBatchSize:      v.GetInt("scheduler.sweep_batch_size"),
			ValidationInterval:  v.GetDuration("scheduler.validation_interval"),
			ValidationBatchSize: v.GetInt("scheduler.validation_batch_size"),
			JobTimeout:          v.GetDuration("scheduler.job_timeout"),
		},
	}

	applyDefaults(cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// applyDefaults sets default values for any empty config fields
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "bara-backend"
	}
	if cfg.App.Env == "" {
		cfg.App.Env = "development"
	}
	if cfg.Database.Driver == "" {
		cfg.Database.Driver = "postgres"
	}
	if cfg.Database.Host == "" {
		cfg.Database.Host = "localhost"
	}
	if cfg.Database.Port == 0 {
		cfg.Database.Port = 5432
	}
	if cfg.Database.User == "" {
		cfg.Database.User = "postgres"
	}
	if cfg.Database.DBName == "" {
		cfg.Database.DBName = "bara"
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
	}
	if cfg.Database.SQLitePath == "" {
		cfg.Database.SQLitePath = "bara.db"
	}
	if cfg.Database.MaxOpenConns == 0 {
		cfg.Database.MaxOpenConns = 25
	}
	if cfg.Database.MaxIdleConns == 0 {
		cfg.Database.MaxIdleConns = 5
	}
	if cfg.Database.ConnMaxLifetime == 0 {
		cfg.Database.ConnMaxLifetime = 30
	}
	if cfg.Database.ConnMaxIdleTime == 0 {
		cfg.Database.ConnMaxIdleTime = 10
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		if cfg.App.Env == "production" {
			cfg.Log.Format = "json"
		} else {
			cfg.Log.Format = "console"
		}
	}
	if cfg.Log.Output == "" {
		cfg.Log.Output = "stdout"
	}
	if cfg.Matching.PartyWeight == 0 {
		cfg.Matching.PartyWeight = 0.4
	}
	if cfg.Matching.TemporalWeight == 0 {
		cfg.Matching.TemporalWeight = 0.3
	}
	if cfg.Matching.ItemWeight == 0 {
		cfg.Matching.ItemWeight = 0.3
	}
	if cfg.Matching.AssignThreshold == 0 {
		cfg.Matching.AssignThreshold = 0.6
	}
	if cfg.Matching.TieBand == 0 {
		cfg.Matching.TieBand = 0.01
	}
	if cfg.Matching.CandidateDaysBack == 0 {
		cfg.Matching.CandidateDaysBack = 90
	}
	if cfg.Matching.CandidateLimit == 0 {
		cfg.Matching.CandidateLimit = 200
	}
	if cfg.Scheduler.RescoreInterval == 0 {
		cfg.Scheduler.RescoreInterval = 6 * time.Hour
	}
	if cfg.Scheduler.RescoreBatchSize == 0 {
		cfg.Scheduler.RescoreBatchSize = 100
	}
	if cfg.Scheduler.SweepInterval == 0 {
		cfg.Scheduler.SweepInterval = 10 * time.Minute
	}
	if cfg.Scheduler.SweepBatchSize == 0 {
		cfg.Scheduler.SweepBatchSize = 100
	}
	if cfg.Scheduler.ValidationInterval == 0 {
		cfg.Scheduler.ValidationInterval = 15 * time.Minute
	}
	if cfg.Scheduler.ValidationBatchSize == 0 {
		cfg.Scheduler.ValidationBatchSize = 50
	}
	if cfg.Scheduler.JobTimeout == 0 {
		cfg.Scheduler.JobTimeout = 5 * time.Minute
	}
}

// validate checks configuration consistency
func (c *Config) validate() error {
	switch c.Database.Driver {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("database.driver must be postgres or sqlite, got %q", c.Database.Driver)
	}

	m := &c.Matching
	sum := m.PartyWeight + m.TemporalWeight + m.ItemWeight
	if sum < 0.999 || sum > 1.001 {
		return fmt.Errorf("matching weights must sum to 1.0, got %f", sum)
	}
	if m.AssignThreshold <= 0 || m.AssignThreshold >= 1 {
		return fmt.Errorf("matching.assign_threshold must be between 0.0 and 1.0, got %f", m.AssignThreshold)
	}
	if m.TieBand < 0 {
		return fmt.Errorf("matching.tie_band cannot be negative, got %f", m.TieBand)
	}

	return nil
}

// DSN returns the database connection string with properly escaped values
func (d *DatabaseConfig) DSN() string {
	if d.Driver == "sqlite" {
		return d.SQLitePath
	}
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(d.User, d.Password),
		Host:   fmt.Sprintf("%s:%d", d.Host, d.Port),
		Path:   d.DBName,
	}
	q := u.Query()
	q.Set("sslmode", d.SSLMode)
	u.RawQuery = q.Encode()
	return u.String()
}

// IsProduction returns true when running in the production environment
func (c *Config) IsProduction() bool {
	return c.App.Env == "production"
}
