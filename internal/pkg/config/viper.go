package config

import (
	"bytes"
	"encoding/base64"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// Viper implements Config on top of spf13/viper.
type Viper struct {
	v *viper.Viper
}

func newViper() *viper.Viper {
	v := viper.New()
	for key, val := range defaults {
		v.SetDefault(key, val)
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return v
}

// NewViper reads file and keeps watching it; a reload that fails to parse
// keeps the previous values.
func NewViper(file string) (*Viper, error) {
	v := newViper()
	v.SetConfigFile(file)

	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}

	v.OnConfigChange(func(ev fsnotify.Event) {
		if err := v.ReadInConfig(); err != nil {
			slog.Error("config reload failed", "path", file, "op", ev.Op.String(), "error", err)
			return
		}
		slog.Info("config reloaded", "path", file)
	})
	v.WatchConfig()

	return &Viper{v: v}, nil
}

// NewViperFromBytes reads config of the given format ("yaml", "json", ...)
// from memory. Defaults and env overrides still apply.
func NewViperFromBytes(format string, data []byte) (*Viper, error) {
	format = strings.TrimPrefix(strings.TrimSpace(format), ".")
	if format == "" {
		return nil, errors.New("config: format is required")
	}

	v := newViper()
	v.SetConfigType(format)
	if err := v.ReadConfig(bytes.NewReader(data)); err != nil {
		return nil, err
	}

	return &Viper{v: v}, nil
}

func (c *Viper) scaled(key string, unit time.Duration) time.Duration {
	return time.Duration(c.v.GetInt64(key)) * unit
}

func (c *Viper) GetMillisecond(key string) time.Duration { return c.scaled(key, time.Millisecond) }
func (c *Viper) GetSecond(key string) time.Duration { return c.scaled(key, time.Second) }
func (c *Viper) GetMinute(key string) time.Duration { return c.scaled(key, time.Minute) }

func (c *Viper) GetInt(key string) int { return c.v.GetInt(key) }
func (c *Viper) GetInt32(key string) int32 { return c.v.GetInt32(key) }
func (c *Viper) GetFloat64(key string) float64 { return c.v.GetFloat64(key) }
func (c *Viper) GetBool(key string) bool { return c.v.GetBool(key) }
func (c *Viper) GetString(key string) string { return c.v.GetString(key) }

func (c *Viper) GetBinary(key string) []byte {
	raw := strings.TrimSpace(c.v.GetString(key))
	if raw == "" {
		return nil
	}

	data, err := base64.StdEncoding.DecodeString(raw)
	if err != nil {
		return nil
	}
	return data
}

func (c *Viper) GetArray(key string) []string {
	var out []string
	for part := range strings.SplitSeq(c.v.GetString(key), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// Close is a no-op; the file watcher lives as long as the process.
func (c *Viper) Close() error { return nil }
