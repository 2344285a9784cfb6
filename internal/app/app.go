package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/shandysiswandi/gotp/internal/pkg/clock"
	"github.com/shandysiswandi/gotp/internal/pkg/config"
	"github.com/shandysiswandi/gotp/internal/pkg/goroutine"
	"github.com/shandysiswandi/gotp/internal/pkg/instrument"
	"github.com/shandysiswandi/gotp/internal/pkg/jwt"
	"github.com/shandysiswandi/gotp/internal/pkg/messaging"
	"github.com/shandysiswandi/gotp/internal/pkg/mfa"
	"github.com/shandysiswandi/gotp/internal/pkg/router"
	"github.com/shandysiswandi/gotp/internal/pkg/uid"
	"github.com/shandysiswandi/gotp/internal/pkg/validator"
)

type closer struct {
	name string
	fn   func(context.Context) error
}

// App owns every process-wide resource of the service.
type App struct {
	ctx    context.Context
	cancel context.CancelFunc

	config config.Config
	ins    instrument.Instrumentation

	goroutine    *goroutine.Manager
	validator    validator.Validator
	clock        clock.Clocker
	uuid         uid.StringID
	jwt          jwt.JWT
	mfaEncryptor mfa.Encryptor

	dbConn    *pgxpool.Pool
	cacheConn *redis.Client
	messaging messaging.Publisher

	router     *router.Router
	httpServer *http.Server

	// closed in reverse order of registration
	closers []closer
}

// New builds the App. When a step fails, everything opened before it is
// closed again and the error names the step.
func New() (*App, error) {
	ctx, cancel := context.WithCancel(context.Background())
	a := &App{ctx: ctx, cancel: cancel}

	steps := []struct {
		name string
		run  func() error
	}{
		{"config", a.initConfig},
		{"instrument", a.initInstrument},
		{"libraries", a.initLibraries},
		{"jwt", a.initJWT},
		{"database", a.initDatabase},
		{"cache", a.initCache},
		{"messaging", a.initMessaging},
		{"http server", a.initHTTPServer},
		{"modules", a.initModules},
	}

	for _, step := range steps {
		if err := step.run(); err != nil {
			cancel()
			a.closeAll(context.Background())
			return nil, fmt.Errorf("init %s: %w", step.name, err)
		}
	}

	return a, nil
}

func (a *App) onClose(name string, fn func(context.Context) error) {
	a.closers = append(a.closers, closer{name: name, fn: fn})
}

func (a *App) closeAll(ctx context.Context) {
	for i := len(a.closers) - 1; i >= 0; i-- {
		c := a.closers[i]
		if err := c.fn(ctx); err != nil {
			slog.ErrorContext(ctx, "close resource", "name", c.name, "error", err)
		}
	}
	a.closers = nil
}
