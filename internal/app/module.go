package app

import (
	"log/slog"

	"github.com/shandysiswandi/gotp/internal/authenticator"
)

func (a *App) initModules() error {
	if !a.config.GetBool("modules.authenticator.enabled") {
		slog.Warn("authenticator module is disabled, only /health is served")
		return nil
	}

	return authenticator.New(authenticator.Dependency{
		Ctx:          a.ctx,
		DBConn:       a.dbConn,
		CacheConn:    a.cacheConn,
		Goroutine:    a.goroutine,
		Router:       a.router,
		Messaging:    a.messaging,
		Config:       a.config,
		Instrument:   a.ins,
		UUID:         a.uuid,
		Clock:        a.clock,
		Validator:    a.validator,
		MFAEncryptor: a.mfaEncryptor,
	})
}
