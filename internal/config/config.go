package config

import (
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

type Config struct {
	Database  DatabaseConfig  `mapstructure:"database"`
	Server    ServerConfig    `mapstructure:"server"`
	Scoring   ScoringConfig   `mapstructure:"scoring"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
	Backup    BackupConfig    `mapstructure:"backup"`
	Logging   LoggingConfig   `mapstructure:"logging"`
}

type DatabaseConfig struct {
	Driver          string `mapstructure:"driver"`
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	User            string `mapstructure:"user"`
	Password        string `mapstructure:"password"`
	DBName          string `mapstructure:"dbname"`
	SSLMode         string `mapstructure:"sslmode"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime"`
	AutoMigrate     bool   `mapstructure:"auto_migrate"`
}

// DSN builds the driver-specific connection string.
func (d *DatabaseConfig) DSN() string {
	if d.Driver == DriverPostgres {
		return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
			d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode)
	}
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		d.User, d.Password, d.Host, d.Port, d.DBName)
}

const (
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"
)

type ServerConfig struct {
	Port         int `mapstructure:"port"`
	ReadTimeout  int `mapstructure:"read_timeout"`
	WriteTimeout int `mapstructure:"write_timeout"`
}

type ScoringConfig struct {
	// SettlementWorkers bounds concurrent prediction writes per match; 1 keeps them sequential.
	SettlementWorkers int    `mapstructure:"settlement_workers"`
	TopScorers        int    `mapstructure:"top_scorers"`
	DefaultMultiplier string `mapstructure:"default_multiplier"`
}

// Multiplier returns DefaultMultiplier parsed, falling back to 1.
func (s ScoringConfig) Multiplier() decimal.Decimal {
	m, err := decimal.NewFromString(s.DefaultMultiplier)
	if err != nil || !m.IsPositive() {
		return decimal.NewFromInt(1)
	}
	return m
}

type SchedulerConfig struct {
	Enabled        bool   `mapstructure:"enabled"`
	AutoSettleCron string `mapstructure:"auto_settle_cron"`
	RecomputeCron  string `mapstructure:"recompute_cron"`
	BackupCron     string `mapstructure:"backup_cron"`
}

type BackupConfig struct {
	Enabled         bool   `mapstructure:"enabled"`
	RetentionDays   int    `mapstructure:"retention_days"`
	Bucket          string `mapstructure:"bucket"`
	Region          string `mapstructure:"region"`
	Endpoint        string `mapstructure:"endpoint"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
	KeyPrefix       string `mapstructure:"key_prefix"`
}

// ArchiveEnabled reports whether snapshots should also be pushed to object storage.
func (b BackupConfig) ArchiveEnabled() bool {
	return b.Enabled && b.Bucket != ""
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("database.driver", DriverMySQL)
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 3306)
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_open_conns", 20)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", 300)
	v.SetDefault("database.auto_migrate", true)

	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 15)
	v.SetDefault("server.write_timeout", 60)

	v.SetDefault("scoring.settlement_workers", 1)
	v.SetDefault("scoring.top_scorers", 5)
	v.SetDefault("scoring.default_multiplier", "1")

	v.SetDefault("scheduler.enabled", true)
	v.SetDefault("scheduler.auto_settle_cron", "0 */5 * * * *")
	v.SetDefault("scheduler.recompute_cron", "0 0 * * * *")
	v.SetDefault("scheduler.backup_cron", "0 30 3 * * *")

	v.SetDefault("backup.retention_days", 30)
	v.SetDefault("backup.region", "auto")
	v.SetDefault("backup.key_prefix", "leaderboard")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
	v.SetDefault("logging.output", "stdout")
}

// Load reads the YAML file at configPath, layering PRODE_* environment variables on top.
// A .env file in the working directory is loaded first when present.
func Load(configPath string) (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	v.SetConfigFile(configPath)
	v.SetConfigType("yaml")
	v.SetEnvPrefix("PRODE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

func (c *Config) Validate() error {
	switch c.Database.Driver {
	case DriverMySQL, DriverPostgres:
	default:
		return fmt.Errorf("unsupported database driver: %q", c.Database.Driver)
	}
	if c.Scoring.SettlementWorkers < 1 {
		return fmt.Errorf("scoring.settlement_workers must be at least 1, got %d", c.Scoring.SettlementWorkers)
	}
	if c.Scoring.TopScorers < 0 {
		return fmt.Errorf("scoring.top_scorers must not be negative, got %d", c.Scoring.TopScorers)
	}
	if m, err := decimal.NewFromString(c.Scoring.DefaultMultiplier); err != nil || !m.IsPositive() {
		return fmt.Errorf("scoring.default_multiplier must be a positive number, got %q", c.Scoring.DefaultMultiplier)
	}
	return nil
}
