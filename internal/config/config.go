package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

const (
	DefaultPollInterval = 3 * time.Second
	DefaultToastTTL     = 3 * time.Second
)

type MySQL struct {
	Host string
	Port int
	User string
	Pass string
	Name string
}

// History selects where the command journal is stored. An empty Driver
// disables it.
type History struct {
	Driver string
	Path   string
	// Keep is how many entries survive the startup prune; 0 keeps everything.
	Keep  int
	MySQL MySQL
}

// Auth configures the bearer token sent to the admin API. No secret, no token.
type Auth struct {
	Secret  string
	Issuer  string
	Subject string
	ExpMin  int
}

type AppConfig struct {
	BackendURL     string
	PollInterval   time.Duration
	RequestTimeout time.Duration
	ToastTTL       time.Duration
	LogPath        string
	LogLevel       string
	QuickBlock     []string
	History        History
	Auth           Auth
}

// Source wraps the viper instance so the file can be re-read on change.
type Source struct {
	v *viper.Viper
}

// Open reads path (yaml). A missing file is not an error; defaults and
// environment variables (console.backend.url -> CONSOLE_BACKEND_URL) still apply.
func Open(path string) (*Source, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("console.backend.url", "http://localhost:5000")
	v.SetDefault("console.poll_interval", DefaultPollInterval)
	v.SetDefault("console.request_timeout", time.Duration(0))
	v.SetDefault("console.toast_ttl", DefaultToastTTL)
	v.SetDefault("console.log_path", "console.log")
	v.SetDefault("console.log_level", "info")
	v.SetDefault("console.quick_block", []string{"youtube", "facebook", "twitter", "instagram"})
	v.SetDefault("console.history.driver", "sqlite")
	v.SetDefault("console.history.path", "console-history.db")
	v.SetDefault("console.history.keep", 1000)
	v.SetDefault("console.history.mysql.host", "127.0.0.1")
	v.SetDefault("console.history.mysql.port", 3306)
	v.SetDefault("console.history.mysql.user", "root")
	v.SetDefault("console.history.mysql.pass", "")
	v.SetDefault("console.history.mysql.name", "proxy_console")
	v.SetDefault("console.auth.issuer", "proxy-console")
	v.SetDefault("console.auth.subject", "console")
	v.SetDefault("console.auth.exp_min", 5)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}
	s := &Source{v: v}
	if s.Config().BackendURL == "" {
		return nil, errors.New("console.backend.url must not be empty")
	}
	return s, nil
}

func (s *Source) Config() AppConfig {
	v := s.v
	cfg := AppConfig{
		BackendURL:     strings.TrimRight(v.GetString("console.backend.url"), "/"),
		PollInterval:   v.GetDuration("console.poll_interval"),
		RequestTimeout: v.GetDuration("console.request_timeout"),
		ToastTTL:       v.GetDuration("console.toast_ttl"),
		LogPath:        v.GetString("console.log_path"),
		LogLevel:       v.GetString("console.log_level"),
		QuickBlock:     v.GetStringSlice("console.quick_block"),
		History: History{
			Driver: strings.ToLower(v.GetString("console.history.driver")),
			Path:   v.GetString("console.history.path"),
			Keep:   v.GetInt("console.history.keep"),
			MySQL: MySQL{
				Host: v.GetString("console.history.mysql.host"),
				Port: v.GetInt("console.history.mysql.port"),
				User: v.GetString("console.history.mysql.user"),
				Pass: v.GetString("console.history.mysql.pass"),
				Name: v.GetString("console.history.mysql.name"),
			},
		},
		Auth: Auth{
			Secret:  v.GetString("console.auth.secret"),
			Issuer:  v.GetString("console.auth.issuer"),
			Subject: v.GetString("console.auth.subject"),
			ExpMin:  v.GetInt("console.auth.exp_min"),
		},
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = DefaultPollInterval
	}
	if cfg.ToastTTL <= 0 {
		cfg.ToastTTL = DefaultToastTTL
	}
	if cfg.RequestTimeout < 0 {
		cfg.RequestTimeout = 0
	}
	if cfg.History.Keep < 0 {
		cfg.History.Keep = 0
	}
	if cfg.Auth.ExpMin <= 0 {
		cfg.Auth.ExpMin = 5
	}
	return cfg
}

// Watch calls fn with the re-read config every time the file changes on disk.
func (s *Source) Watch(fn func(AppConfig, fsnotify.Event)) {
	s.v.OnConfigChange(func(e fsnotify.Event) {
		fn(s.Config(), e)
	})
	s.v.WatchConfig()
}
