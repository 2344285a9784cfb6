package app

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/shandysiswandi/gotp/internal/pkg/clock"
	"github.com/shandysiswandi/gotp/internal/pkg/config"
	"github.com/shandysiswandi/gotp/internal/pkg/goroutine"
	"github.com/shandysiswandi/gotp/internal/pkg/instrument"
	"github.com/shandysiswandi/gotp/internal/pkg/jwt"
	"github.com/shandysiswandi/gotp/internal/pkg/mfa"
	"github.com/shandysiswandi/gotp/internal/pkg/uid"
	"github.com/shandysiswandi/gotp/internal/pkg/validator"
)

const aes256KeyLen = 32

// configPath resolves CONFIG_PATH, falling back to the container mount or,
// with LOCAL=true, to the repository copy.
func configPath() string {
	if p := os.Getenv("CONFIG_PATH"); p != "" {
		return p
	}
	if os.Getenv("LOCAL") == "true" {
		return "./config/config.yaml"
	}
	return "/config/config.yaml"
}

func (a *App) initConfig() error {
	cfg, err := config.NewViper(configPath())
	if err != nil {
		return err
	}
	a.config = cfg
	a.onClose("config", func(context.Context) error { return cfg.Close() })

	if tz := cfg.GetString("app.tz"); tz != "" {
		if err := os.Setenv("TZ", tz); err != nil {
			return fmt.Errorf("set TZ: %w", err)
		}
	}
	return nil
}

func (a *App) initInstrument() error {
	ins, err := instrument.New(a.ctx, &instrument.Config{
		Enabled:          a.config.GetBool("instrument.enabled"),
		ServiceName:      a.config.GetString("app.name"),
		ServiceVersion:   a.config.GetString("app.version"),
		Environment:      a.config.GetString("app.env"),
		OTLPEndpoint:     a.config.GetString("instrument.otlp_endpoint"),
		OTLPSecure:       a.config.GetBool("instrument.otlp_secure"),
		TraceSampleRatio: a.config.GetFloat64("instrument.trace_sample_ratio"),
		MetricsInterval:  a.config.GetSecond("instrument.metric_interval_seconds"),
		MaskFields:       a.config.GetArray("instrument.log_mask_fields"),
	})
	if err != nil {
		return err
	}

	a.ins = ins
	a.onClose("instrument", ins.Shutdown)
	return nil
}

func (a *App) initLibraries() error {
	v, err := validator.NewV10Validator()
	if err != nil {
		return err
	}

	a.validator = v
	a.clock = clock.New()
	a.uuid = uid.NewUUID()
	a.goroutine = goroutine.NewManager(a.config.GetInt("app.server.max_goroutine"))

	enc, err := a.secretSealer()
	if err != nil {
		return err
	}
	if enc == nil {
		slog.Warn("mfa.secret is empty, otp secrets are stored unsealed")
	}
	a.mfaEncryptor = enc
	return nil
}

// secretSealer returns nil, not a typed nil, when no key is configured.
func (a *App) secretSealer() (mfa.Encryptor, error) {
	raw := strings.TrimSpace(a.config.GetString("mfa.secret"))
	if raw == "" {
		return nil, nil
	}

	key, err := base64.StdEncoding.DecodeString(raw)
	if err != nil {
		return nil, fmt.Errorf("mfa.secret is not base64: %w", err)
	}
	if len(key) != aes256KeyLen {
		return nil, fmt.Errorf("mfa.secret must decode to %d bytes, got %d", aes256KeyLen, len(key))
	}

	return mfa.NewAESGCMEncryptor(mfa.StaticKeyProvider{KeyBytes: key}), nil
}

// initJWT turns on bearer authentication only when jwt.secret is set.
func (a *App) initJWT() error {
	secret := a.config.GetString("jwt.secret")
	if secret == "" {
		slog.Warn("jwt.secret is empty, api is served without authentication")
		return nil
	}

	signer, err := jwt.NewHS512(jwt.Config{
		Secret:    []byte(secret),
		Issuer:    a.config.GetString("jwt.issuer"),
		Audiences: a.config.GetArray("jwt.audiences"),
		TTL:       a.config.GetMinute("jwt.ttl_minutes"),
		Clock:     a.clock,
		UUID:      a.uuid,
	})
	if err != nil {
		return errors.Join(errors.New("jwt.secret rejected"), err)
	}

	a.jwt = signer
	return nil
}
