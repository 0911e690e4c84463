package appconfig

import (
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"pkt.systems/termfolio/console"
	"pkt.systems/termfolio/schema"
)

// Load reads configuration from the provided path. If path is empty, uses DefaultConfigPath.
func Load(path string) (Config, error) {
	if path == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			return Config{}, err
		}
		path = defaultPath
	}

	cfg, err := DefaultConfig()
	if err != nil {
		return Config{}, err
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetDefault("config_version", cfg.ConfigVersion)
	v.SetDefault("content_dir", cfg.ContentDir)
	v.SetDefault("watch_content", cfg.WatchContent)
	v.SetDefault("http.addr", cfg.HTTP.Addr)
	v.SetDefault("http.base_path", cfg.HTTP.BasePath)
	v.SetDefault("ssh.addr", cfg.SSH.Addr)
	v.SetDefault("ssh.host_key_path", cfg.SSH.HostKeyPath)
	v.SetDefault("ssh.max_sessions", cfg.SSH.MaxSessions)
	v.SetDefault("ssh.idle_timeout_minutes", cfg.SSH.IdleTimeoutMinutes)
	v.SetDefault("terminal.user", cfg.Terminal.User)
	v.SetDefault("terminal.host", cfg.Terminal.Host)
	v.SetDefault("terminal.theme", cfg.Terminal.Theme)
	v.SetDefault("terminal.typewriter.enabled", cfg.Terminal.Typewriter.Enabled)
	v.SetDefault("terminal.typewriter.text", cfg.Terminal.Typewriter.Text)
	v.SetDefault("terminal.typewriter.start_delay_ms", cfg.Terminal.Typewriter.StartDelayMS)
	v.SetDefault("terminal.typewriter.char_delay_ms", cfg.Terminal.Typewriter.CharDelayMS)
	v.SetDefault("terminal.typewriter.enter_delay_ms", cfg.Terminal.Typewriter.EnterDelayMS)
	v.SetDefault("terminal.typewriter.settle_delay_ms", cfg.Terminal.Typewriter.SettleDelayMS)
	v.SetDefault("terminal.reflow.max_attempts", cfg.Terminal.Reflow.MaxAttempts)
	v.SetDefault("terminal.reflow.initial_delay_ms", cfg.Terminal.Reflow.InitialDelayMS)
	v.SetDefault("terminal.reflow.multiplier", cfg.Terminal.Reflow.Multiplier)
	v.SetDefault("terminal.reflow.max_delay_ms", cfg.Terminal.Reflow.MaxDelayMS)
	v.SetDefault("terminal.observe_interval_ms", cfg.Terminal.ObserveIntervalMS)
	v.SetDefault("terminal.scroll_settle_ms", cfg.Terminal.ScrollSettleMS)
	v.SetDefault("terminal.history_limit", cfg.Terminal.HistoryLimit)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
			return Config{}, err
		}
	} else {
		if !v.IsSet("config_version") {
			return Config{}, fmt.Errorf("config_version is required; expected %d", CurrentConfigVersion)
		}
		if v.GetInt("config_version") != CurrentConfigVersion {
			return Config{}, fmt.Errorf("unsupported config_version %d; expected %d", v.GetInt("config_version"), CurrentConfigVersion)
		}
	}

	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}
	expandConfigEnv(&cfg)
	if err := Validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks a config for values the servers cannot run with.
func Validate(cfg Config) error {
	if err := validateAddr("http.addr", cfg.HTTP.Addr); err != nil {
		return err
	}
	if err := validateAddr("ssh.addr", cfg.SSH.Addr); err != nil {
		return err
	}
	if cfg.SSH.MaxSessions < 0 || cfg.SSH.IdleTimeoutMinutes < 0 {
		return fmt.Errorf("%w: ssh.max_sessions and ssh.idle_timeout_minutes must not be negative", schema.ErrInvalidConfig)
	}
	if err := validateBasePath(cfg.HTTP.BasePath); err != nil {
		return err
	}
	return validateTerminal(cfg.Terminal)
}

func validateAddr(key, addr string) error {
	if strings.TrimSpace(addr) == "" {
		return nil
	}
	if _, _, err := net.SplitHostPort(addr); err != nil {
		return fmt.Errorf("%w: %s %q: %v", schema.ErrInvalidConfig, key, addr, err)
	}
	return nil
}

func validateBasePath(basePath string) error {
	basePath = strings.TrimSpace(basePath)
	if basePath == "" {
		return nil
	}
	if strings.Contains(basePath, "://") {
		return fmt.Errorf("%w: http.base_path must be a path prefix, not a URL", schema.ErrInvalidConfig)
	}
	if strings.ContainsAny(basePath, "?#") {
		return fmt.Errorf("%w: http.base_path must not include query or fragment", schema.ErrInvalidConfig)
	}
	return nil
}

func validateTerminal(cfg TerminalConfig) error {
	if _, err := console.ThemeNamed(cfg.Theme); err != nil {
		return fmt.Errorf("%w: terminal.theme: %v (have %s)", schema.ErrInvalidConfig, err, strings.Join(console.ThemeNames(), ", "))
	}
	tw := cfg.Typewriter
	for key, value := range map[string]int{
		"terminal.typewriter.start_delay_ms":  tw.StartDelayMS,
		"terminal.typewriter.char_delay_ms":   tw.CharDelayMS,
		"terminal.typewriter.enter_delay_ms":  tw.EnterDelayMS,
		"terminal.typewriter.settle_delay_ms": tw.SettleDelayMS,
		"terminal.reflow.initial_delay_ms":    cfg.Reflow.InitialDelayMS,
		"terminal.reflow.max_delay_ms":        cfg.Reflow.MaxDelayMS,
		"terminal.observe_interval_ms":        cfg.ObserveIntervalMS,
		"terminal.scroll_settle_ms":           cfg.ScrollSettleMS,
		"terminal.history_limit":              cfg.HistoryLimit,
	} {
		if value < 0 {
			return fmt.Errorf("%w: %s must not be negative", schema.ErrInvalidConfig, key)
		}
	}
	if cfg.Reflow.MaxAttempts < 1 {
		return fmt.Errorf("%w: terminal.reflow.max_attempts must be at least 1", schema.ErrInvalidConfig)
	}
	if cfg.Reflow.Multiplier < 1 {
		return fmt.Errorf("%w: terminal.reflow.multiplier must be at least 1", schema.ErrInvalidConfig)
	}
	if cfg.Reflow.MaxDelayMS < cfg.Reflow.InitialDelayMS {
		return fmt.Errorf("%w: terminal.reflow.max_delay_ms must not be below initial_delay_ms", schema.ErrInvalidConfig)
	}
	return nil
}

func expandConfigEnv(cfg *Config) {
	if cfg == nil {
		return
	}
	cfg.ContentDir = expandEnv(cfg.ContentDir)
	cfg.SSH.HostKeyPath = expandEnv(cfg.SSH.HostKeyPath)
	cfg.Terminal.User = expandEnv(cfg.Terminal.User)
	cfg.Terminal.Host = expandEnv(cfg.Terminal.Host)
}

func expandEnv(value string) string {
	if value == "" {
		return value
	}
	return os.Expand(value, func(key string) string {
		if key == "" {
			return ""
		}
		if val, ok := lookupEnv(key); ok {
			return val
		}
		return "$" + key
	})
}

func lookupEnv(key string) (string, bool) {
	if val, ok := os.LookupEnv(key); ok {
		return val, true
	}
	switch key {
	case "UID":
		return fmt.Sprintf("%d", os.Getuid()), true
	case "HOSTNAME":
		if name, err := os.Hostname(); err == nil {
			return name, true
		}
	}
	return "", false
}

// WriteDefault writes the default config to the target path.
func WriteDefault(path string, overwrite bool) (string, error) {
	if path == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			return "", err
		}
		path = defaultPath
	}

	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return "", fmt.Errorf("config already exists at %s", path)
		}
	}

	cfg, err := DefaultConfig()
	if err != nil {
		return "", err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", err
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return "", err
	}
	return path, nil
}
