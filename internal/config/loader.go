package config

import (
	"strings"

	"github.com/spf13/viper"
)

func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, err
		}
	}

	v.SetDefault("mount.path", "")
	v.SetDefault("mount.test_dir", ".health_check")
	v.SetDefault("mount.test_file", "health_check.tmp")
	v.SetDefault("mount.required_dirs", []string{})

	v.SetDefault("monitor.interval", "5m")
	v.SetDefault("monitor.failure_threshold", 3)
	v.SetDefault("monitor.alert_cooldown", "1h")
	v.SetDefault("monitor.test_interval", "0")
	v.SetDefault("monitor.send_test_on_startup", false)
	v.SetDefault("monitor.dry_run", false)

	v.SetDefault("smtp.enabled", true)
	v.SetDefault("smtp.addr", "localhost:587")
	v.SetDefault("smtp.use_tls", false)
	v.SetDefault("smtp.timeout", "15s")
	v.SetDefault("smtp.subj_prefix", "[Mount Alert]")
	v.SetDefault("smtp.test_subj_prefix", "[Mount Test]")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.pretty", false)

	v.SetDefault("otel.enable", false)
	v.SetDefault("otel.endpoint", "localhost:4317")
	v.SetDefault("otel.service_name", "mount-health")
	v.SetDefault("otel.sample_ratio", 1.0)

	v.SetDefault("server.metrics_addr", "")

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
