package appconfig

import (
	"os"
	"path/filepath"
	"time"

	"pkt.systems/termfolio/console"
)

// Config is the top-level application configuration.
type Config struct {
	ConfigVersion int            `mapstructure:"config_version" yaml:"config_version"`
	ContentDir    string         `mapstructure:"content_dir" yaml:"content_dir"`
	WatchContent  bool           `mapstructure:"watch_content" yaml:"watch_content"`
	HTTP          HTTPConfig     `mapstructure:"http" yaml:"http"`
	SSH           SSHConfig      `mapstructure:"ssh" yaml:"ssh"`
	Terminal      TerminalConfig `mapstructure:"terminal" yaml:"terminal"`
}

// CurrentConfigVersion marks the supported config version.
const CurrentConfigVersion = 1

// HTTPConfig configures the plain view and JSON API.
type HTTPConfig struct {
	Addr     string `mapstructure:"addr" yaml:"addr"`
	BasePath string `mapstructure:"base_path" yaml:"base_path"`
}

// SSHConfig configures the SSH server.
type SSHConfig struct {
	Addr               string `mapstructure:"addr" yaml:"addr"`
	HostKeyPath        string `mapstructure:"host_key_path" yaml:"host_key_path"`
	MaxSessions        int    `mapstructure:"max_sessions" yaml:"max_sessions"`
	IdleTimeoutMinutes int    `mapstructure:"idle_timeout_minutes" yaml:"idle_timeout_minutes"`
}

// TerminalConfig configures every terminal session, over SSH or local.
type TerminalConfig struct {
	User              string           `mapstructure:"user" yaml:"user"`
	Host              string           `mapstructure:"host" yaml:"host"`
	Theme             string           `mapstructure:"theme" yaml:"theme"`
	Typewriter        TypewriterConfig `mapstructure:"typewriter" yaml:"typewriter"`
	Reflow            ReflowConfig     `mapstructure:"reflow" yaml:"reflow"`
	ObserveIntervalMS int              `mapstructure:"observe_interval_ms" yaml:"observe_interval_ms"`
	ScrollSettleMS    int              `mapstructure:"scroll_settle_ms" yaml:"scroll_settle_ms"`
	HistoryLimit      int              `mapstructure:"history_limit" yaml:"history_limit"`
}

// TypewriterConfig scripts the opening keystrokes.
type TypewriterConfig struct {
	Enabled       bool   `mapstructure:"enabled" yaml:"enabled"`
	Text          string `mapstructure:"text" yaml:"text"`
	StartDelayMS  int    `mapstructure:"start_delay_ms" yaml:"start_delay_ms"`
	CharDelayMS   int    `mapstructure:"char_delay_ms" yaml:"char_delay_ms"`
	EnterDelayMS  int    `mapstructure:"enter_delay_ms" yaml:"enter_delay_ms"`
	SettleDelayMS int    `mapstructure:"settle_delay_ms" yaml:"settle_delay_ms"`
}

// ReflowConfig bounds the fit retries made while a terminal has no size.
type ReflowConfig struct {
	MaxAttempts    int     `mapstructure:"max_attempts" yaml:"max_attempts"`
	InitialDelayMS int     `mapstructure:"initial_delay_ms" yaml:"initial_delay_ms"`
	Multiplier     float64 `mapstructure:"multiplier" yaml:"multiplier"`
	MaxDelayMS     int     `mapstructure:"max_delay_ms" yaml:"max_delay_ms"`
}

// DefaultConfig returns a config populated with defaults.
func DefaultConfig() (Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return Config{}, err
	}
	base := filepath.Join(home, ".termfolio")
	term := console.DefaultConfig()
	return Config{
		ConfigVersion: CurrentConfigVersion,
		ContentDir:    "",
		WatchContent:  true,
		HTTP: HTTPConfig{
			Addr: ":27480",
		},
		SSH: SSHConfig{
			Addr:               ":27422",
			HostKeyPath:        filepath.Join(base, "ssh", "host_ed25519"),
			MaxSessions:        64,
			IdleTimeoutMinutes: 30,
		},
		Terminal: TerminalConfig{
			User:  term.User,
			Host:  term.Host,
			Theme: term.Theme.Name,
			Typewriter: TypewriterConfig{
				Enabled:       term.Typewriter.Enabled,
				Text:          term.Typewriter.Text,
				StartDelayMS:  millis(term.Typewriter.StartDelay),
				CharDelayMS:   millis(term.Typewriter.CharDelay),
				EnterDelayMS:  millis(term.Typewriter.EnterDelay),
				SettleDelayMS: millis(term.Typewriter.SettleDelay),
			},
			Reflow: ReflowConfig{
				MaxAttempts:    term.Reflow.MaxAttempts,
				InitialDelayMS: millis(term.Reflow.InitialDelay),
				Multiplier:     term.Reflow.Multiplier,
				MaxDelayMS:     millis(term.Reflow.MaxDelay),
			},
			ObserveIntervalMS: millis(term.ObserveInterval),
			ScrollSettleMS:    millis(term.ScrollSettle),
			HistoryLimit:      term.HistoryLimit,
		},
	}, nil
}

// Console maps the terminal section onto a session config. The theme name
// must already have passed validation.
func (c TerminalConfig) Console() (console.Config, error) {
	theme, err := console.ThemeNamed(c.Theme)
	if err != nil {
		return console.Config{}, err
	}
	return console.Config{
		User:  c.User,
		Host:  c.Host,
		Theme: theme,
		Typewriter: console.TypewriterConfig{
			Enabled:     c.Typewriter.Enabled,
			Text:        c.Typewriter.Text,
			StartDelay:  ms(c.Typewriter.StartDelayMS),
			CharDelay:   ms(c.Typewriter.CharDelayMS),
			EnterDelay:  ms(c.Typewriter.EnterDelayMS),
			SettleDelay: ms(c.Typewriter.SettleDelayMS),
		},
		Reflow: console.RetryPolicy{
			MaxAttempts:  c.Reflow.MaxAttempts,
			InitialDelay: ms(c.Reflow.InitialDelayMS),
			Multiplier:   c.Reflow.Multiplier,
			MaxDelay:     ms(c.Reflow.MaxDelayMS),
		},
		ObserveInterval: ms(c.ObserveIntervalMS),
		ScrollSettle:    ms(c.ScrollSettleMS),
		HistoryLimit:    c.HistoryLimit,
	}, nil
}

// DefaultConfigPath returns the standard config path.
func DefaultConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".termfolio", "config.yaml"), nil
}

func millis(d time.Duration) int {
	return int(d / time.Millisecond)
}

func ms(n int) time.Duration {
	return time.Duration(n) * time.Millisecond
}
