package console

import "time"

// TypewriterConfig scripts the keystrokes typed on the visitor's behalf
// right after mount.
type TypewriterConfig struct {
	Enabled     bool
	Text        string
	StartDelay  time.Duration
	CharDelay   time.Duration
	EnterDelay  time.Duration
	SettleDelay time.Duration
}

// Config tunes a session.
type Config struct {
	User            string
	Host            string
	Theme           Theme
	Typewriter      TypewriterConfig
	Reflow          RetryPolicy
	ObserveInterval time.Duration
	ScrollSettle    time.Duration
	HistoryLimit    int
}

func DefaultConfig() Config {
	theme, _ := ThemeNamed(DefaultTheme)
	return Config{
		User:  "shivansh",
		Host:  "terminal",
		Theme: theme,
		Typewriter: TypewriterConfig{
			Enabled:     true,
			Text:        "shiv",
			StartDelay:  time.Second,
			CharDelay:   100 * time.Millisecond,
			EnterDelay:  500 * time.Millisecond,
			SettleDelay: 100 * time.Millisecond,
		},
		Reflow:          DefaultRetryPolicy(),
		ObserveInterval: 500 * time.Millisecond,
		ScrollSettle:    16 * time.Millisecond,
		HistoryLimit:    500,
	}
}
