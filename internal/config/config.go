// Package config loads the YAML configuration file: the saved connections
// and the key bindings.
package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	Connections []Connection `yaml:"connections"`
	Key         KeyConfig    `yaml:"key"`
}

// Connection holds parameters for one configured database connection.
type Connection struct {
	Name     string `yaml:"name"`
	Adapter  string `yaml:"adapter"` // mysql, postgres, sqlite
	DSN      string `yaml:"dsn,omitempty"`
	Host     string `yaml:"host,omitempty"`
	Port     int    `yaml:"port,omitempty"`
	User     string `yaml:"user,omitempty"`
	Password string `yaml:"password,omitempty"`
	Database string `yaml:"database,omitempty"` // optional default database pin
	Path     string `yaml:"path,omitempty"`     // sqlite file
}

// KeyConfig maps actions to key names understood by Bubble Tea.
type KeyConfig struct {
	Quit       string `yaml:"quit"`
	ExitPopup  string `yaml:"exit_popup"`
	Copy       string `yaml:"copy"`
	OpenHelp   string `yaml:"open_help"`
	FocusUp    string `yaml:"focus_up"`
	FocusDown  string `yaml:"focus_down"`
	FocusLeft  string `yaml:"focus_left"`
	FocusRight string `yaml:"focus_right"`
	Execute    string `yaml:"execute"`
}

// DefaultConfig returns a Config populated with the default key bindings and
// no connections.
func DefaultConfig() *Config {
	return &Config{
		Key: KeyConfig{
			Quit:       "q",
			ExitPopup:  "esc",
			Copy:       "y",
			OpenHelp:   "?",
			FocusUp:    "up",
			FocusDown:  "down",
			FocusLeft:  "left",
			FocusRight: "right",
			Execute:    "f5",
		},
	}
}

// Load reads a Config from the YAML file at path. Missing key bindings fall
// back to the defaults; an unreadable or unparsable file returns an error.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	cfg.applyKeyDefaults()
	return cfg, nil
}

func (c *Config) applyKeyDefaults() {
	def := DefaultConfig().Key
	if c.Key.Quit == "" {
		c.Key.Quit = def.Quit
	}
	if c.Key.ExitPopup == "" {
		c.Key.ExitPopup = def.ExitPopup
	}
	if c.Key.Copy == "" {
		c.Key.Copy = def.Copy
	}
	if c.Key.OpenHelp == "" {
		c.Key.OpenHelp = def.OpenHelp
	}
	if c.Key.FocusUp == "" {
		c.Key.FocusUp = def.FocusUp
	}
	if c.Key.FocusDown == "" {
		c.Key.FocusDown = def.FocusDown
	}
	if c.Key.FocusLeft == "" {
		c.Key.FocusLeft = def.FocusLeft
	}
	if c.Key.FocusRight == "" {
		c.Key.FocusRight = def.FocusRight
	}
	if c.Key.Execute == "" {
		c.Key.Execute = def.Execute
	}
}

// BuildDSN constructs a driver connection string from the connection fields.
// An explicit DSN wins. For sqlite the file path is the DSN. For postgres a
// postgres:// URL is built with escaped credentials; for mysql the
// go-sql-driver format.
func (c *Connection) BuildDSN() string {
	if c.DSN != "" {
		return c.DSN
	}

	adapter := strings.ToLower(c.Adapter)
	if adapter == "sqlite" {
		return c.Path
	}

	host := c.Host
	if host == "" {
		host = "localhost"
	}

	switch adapter {
	case "postgres":
		u := &url.URL{Scheme: "postgres", Host: host}
		if c.Port > 0 {
			u.Host = fmt.Sprintf("%s:%d", host, c.Port)
		}
		if c.User != "" {
			if c.Password != "" {
				u.User = url.UserPassword(c.User, c.Password)
			} else {
				u.User = url.User(c.User)
			}
		}
		if c.Database != "" {
			u.Path = "/" + c.Database
		}
		return u.String()

	case "mysql":
		var b strings.Builder
		if c.User != "" {
			b.WriteString(c.User)
			if c.Password != "" {
				b.WriteByte(':')
				b.WriteString(url.QueryEscape(c.Password))
			}
			b.WriteByte('@')
		}
		port := c.Port
		if port == 0 {
			port = 3306
		}
		fmt.Fprintf(&b, "tcp(%s:%d)", host, port)
		b.WriteByte('/')
		if c.Database != "" {
			b.WriteString(c.Database)
		}
		return b.String()

	default:
		var b strings.Builder
		if c.User != "" {
			b.WriteString(c.User)
			b.WriteByte('@')
		}
		b.WriteString(host)
		if c.Port > 0 {
			fmt.Fprintf(&b, ":%d", c.Port)
		}
		if c.Database != "" {
			b.WriteByte('/')
			b.WriteString(c.Database)
		}
		return b.String()
	}
}

// DisplayString returns a human-readable representation of the connection,
// shown in the connection picker.
func (c *Connection) DisplayString() string {
	adapter := strings.ToLower(c.Adapter)
	if adapter == "sqlite" {
		return fmt.Sprintf("[%s] %s %s", c.Adapter, c.Name, c.Path)
	}

	host := c.Host
	if host == "" {
		host = "localhost"
	}
	location := host
	if c.Port > 0 {
		location = fmt.Sprintf("%s:%d", host, c.Port)
	}
	if c.Database != "" {
		return fmt.Sprintf("[%s] %s %s/%s", c.Adapter, c.Name, location, c.Database)
	}
	return fmt.Sprintf("[%s] %s %s", c.Adapter, c.Name, location)
}
