package config

import (
	"fmt"
	"strings"
	"time"
)

type Mount struct {
	Path         string   `mapstructure:"path"`
	TestDir      string   `mapstructure:"test_dir"`
	TestFile     string   `mapstructure:"test_file"`
	RequiredDirs []string `mapstructure:"required_dirs"`
}

type Monitor struct {
	Interval          time.Duration `mapstructure:"interval"`
	FailureThreshold  int           `mapstructure:"failure_threshold"`
	AlertCooldown     time.Duration `mapstructure:"alert_cooldown"`
	TestInterval      time.Duration `mapstructure:"test_interval"`
	SendTestOnStartup bool          `mapstructure:"send_test_on_startup"`
	DryRun            bool          `mapstructure:"dry_run"`
}

type SMTP struct {
	Enabled        bool          `mapstructure:"enabled"`
	Addr           string        `mapstructure:"addr"`
	From           string        `mapstructure:"from"`
	To             []string      `mapstructure:"to"`
	User           string        `mapstructure:"user"`
	Password       string        `mapstructure:"password"`
	PasswordFile   string        `mapstructure:"password_file"`
	UseTLS         bool          `mapstructure:"use_tls"`
	Timeout        time.Duration `mapstructure:"timeout"`
	SubjPrefix     string        `mapstructure:"subj_prefix"`
	TestSubjPrefix string        `mapstructure:"test_subj_prefix"`
}

type Log struct {
	Level  string `mapstructure:"level"`
	Pretty bool   `mapstructure:"pretty"`
}

type OTEL struct {
	Enable      bool    `mapstructure:"enable"`
	Endpoint    string  `mapstructure:"endpoint"`
	ServiceName string  `mapstructure:"service_name"`
	SampleRatio float64 `mapstructure:"sample_ratio"`
}

type Server struct {
	MetricsAddr string `mapstructure:"metrics_addr"`
}

type Config struct {
	Mount   Mount   `mapstructure:"mount"`
	Monitor Monitor `mapstructure:"monitor"`
	SMTP    SMTP    `mapstructure:"smtp"`
	Log     Log     `mapstructure:"log"`
	OTEL    OTEL    `mapstructure:"otel"`
	Server  Server  `mapstructure:"server"`
}

// Validate checks the resolved configuration once at startup and reports
// every missing or invalid key in a single error.
func (c *Config) Validate() error {
	var problems []string

	if strings.TrimSpace(c.Mount.Path) == "" {
		problems = append(problems, "mount.path is required")
	}
	if c.Monitor.Interval <= 0 {
		problems = append(problems, "monitor.interval must be > 0")
	}
	if c.Monitor.FailureThreshold < 1 {
		problems = append(problems, "monitor.failure_threshold must be >= 1")
	}
	if c.Monitor.AlertCooldown < 0 {
		problems = append(problems, "monitor.alert_cooldown must be >= 0")
	}
	if c.Monitor.TestInterval < 0 {
		problems = append(problems, "monitor.test_interval must be >= 0")
	}

	if c.SMTP.Enabled {
		if strings.TrimSpace(c.SMTP.Addr) == "" {
			problems = append(problems, "smtp.addr is required when smtp.enabled")
		}
		if strings.TrimSpace(c.SMTP.From) == "" {
			problems = append(problems, "smtp.from is required when smtp.enabled")
		}
		if len(c.SMTP.To) == 0 {
			problems = append(problems, "smtp.to is required when smtp.enabled")
		}
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid configuration: %s", strings.Join(problems, "; "))
	}
	return nil
}
