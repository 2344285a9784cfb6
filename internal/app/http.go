package app

import (
	"context"
	"net/http"
	"time"

	"github.com/rs/cors"
	"github.com/shandysiswandi/gotp/internal/pkg/goerror"
	"github.com/shandysiswandi/gotp/internal/pkg/router"
)

func (a *App) initHTTPServer() error {
	a.router = router.NewRouter(router.Config{
		Config:     a.config,
		UUID:       a.uuid,
		JWT:        a.jwt,
		Instrument: a.ins,
		Clock:      a.clock,
	})
	a.router.GET("/health", a.health)

	handler := cors.New(cors.Options{
		AllowedOrigins:   a.config.GetArray("app.server.cors"),
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	}).Handler(a.router)

	const p = "app.server.http."
	a.httpServer = &http.Server{
		Addr:              a.config.GetString(p + "address"),
		Handler:           handler,
		ReadTimeout:       a.config.GetSecond(p + "read_timeout_seconds"),
		ReadHeaderTimeout: a.config.GetSecond(p + "read_header_timeout_seconds"),
		WriteTimeout:      a.config.GetSecond(p + "write_timeout_seconds"),
		IdleTimeout:       a.config.GetSecond(p + "idle_timeout_seconds"),
	}
	return nil
}

// health reports 500 when either backing store is unreachable.
func (a *App) health(r *router.Request) (any, error) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := a.dbConn.Ping(ctx); err != nil {
		return nil, goerror.NewServerKind(err, goerror.KindDatabaseError)
	}
	if err := a.cacheConn.Ping(ctx).Err(); err != nil {
		return nil, goerror.NewServer(err)
	}

	return map[string]string{"status": "ok"}, nil
}
