package config

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Database   DatabaseConfig   `mapstructure:"database"`
	Classifier ClassifierConfig `mapstructure:"classifier"`
	Extractor  ExtractorConfig  `mapstructure:"extractor"`
	Pipeline   PipelineConfig   `mapstructure:"pipeline"`
}

type DatabaseConfig struct {
	Host        string `mapstructure:"host"`
	Port        int    `mapstructure:"port"`
	User        string `mapstructure:"user"`
	Password    string `mapstructure:"password"`
	DBName      string `mapstructure:"dbname"`
	SSLMode     string `mapstructure:"sslmode"`
	UseInMemory bool   `mapstructure:"use_in_memory"`
}

// ClassifierConfig carries the current classifier version and the threshold
// bands for both decision axes. Version is injected, never a process global:
// bumping it is the only way to force every message back through the
// pipeline.
type ClassifierConfig struct {
	Version             int     `mapstructure:"version"`
	OTPUpperThreshold   float64 `mapstructure:"otp_upper_threshold"`
	OTPLowerThreshold   float64 `mapstructure:"otp_lower_threshold"`
	PhishUpperThreshold float64 `mapstructure:"phish_upper_threshold"`
	PhishLowerThreshold float64 `mapstructure:"phish_lower_threshold"`
}

type ExtractorConfig struct {
	MaxBodyLength int `mapstructure:"max_body_length"`
}

type PipelineConfig struct {
	Workers int `mapstructure:"workers"`
}

func parseDatabaseURL(dbURL string) (DatabaseConfig, error) {
	u, err := url.Parse(dbURL)
	if err != nil {
		return DatabaseConfig{}, err
	}

	password, _ := u.User.Password()
	port := 5432 // default PostgreSQL port
	if u.Port() != "" {
		fmt.Sscanf(u.Port(), "%d", &port)
	}

	// Remove leading slash from path to get database name
	dbName := strings.TrimPrefix(u.Path, "/")

	return DatabaseConfig{
		Host:     u.Hostname(),
		Port:     port,
		User:     u.User.Username(),
		Password: password,
		DBName:   dbName,
		SSLMode:  "disable",
	}, nil
}

func LoadConfig(path string) (*Config, error) {
	v := viper.New()

	// Set default values
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.use_in_memory", false)
	v.SetDefault("classifier.version", 1)
	v.SetDefault("classifier.otp_upper_threshold", 0.7)
	v.SetDefault("classifier.otp_lower_threshold", 0.4)
	v.SetDefault("classifier.phish_upper_threshold", 0.6)
	v.SetDefault("classifier.phish_lower_threshold", 0.25)
	v.SetDefault("extractor.max_body_length", 4096)
	v.SetDefault("pipeline.workers", 4)

	// Enable environment variable support
	v.AutomaticEnv()

	// Read the config file
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	// Check for DATABASE_URL environment variable
	if dbURL := v.GetString("DATABASE_URL"); dbURL != "" {
		dbConfig, err := parseDatabaseURL(dbURL)
		if err != nil {
			return nil, fmt.Errorf("failed to parse DATABASE_URL: %v", err)
		}
		config.Database = dbConfig
	}

	if err := config.validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

func (c *Config) validate() error {
	if c.Classifier.Version < 1 {
		return fmt.Errorf("classifier.version must be >= 1, got %d", c.Classifier.Version)
	}
	if c.Classifier.OTPLowerThreshold > c.Classifier.OTPUpperThreshold {
		return fmt.Errorf("classifier.otp_lower_threshold %v exceeds upper %v",
			c.Classifier.OTPLowerThreshold, c.Classifier.OTPUpperThreshold)
	}
	if c.Classifier.PhishLowerThreshold > c.Classifier.PhishUpperThreshold {
		return fmt.Errorf("classifier.phish_lower_threshold %v exceeds upper %v",
			c.Classifier.PhishLowerThreshold, c.Classifier.PhishUpperThreshold)
	}
	return nil
}
