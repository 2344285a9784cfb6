package authenticator

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/shandysiswandi/gotp/internal/authenticator/inbound"
	"github.com/shandysiswandi/gotp/internal/authenticator/outbound/db"
	"github.com/shandysiswandi/gotp/internal/authenticator/outbound/mq"
	"github.com/shandysiswandi/gotp/internal/authenticator/outbound/qr"
	"github.com/shandysiswandi/gotp/internal/authenticator/usecase"
	"github.com/shandysiswandi/gotp/internal/pkg/clock"
	"github.com/shandysiswandi/gotp/internal/pkg/config"
	"github.com/shandysiswandi/gotp/internal/pkg/goroutine"
	"github.com/shandysiswandi/gotp/internal/pkg/instrument"
	"github.com/shandysiswandi/gotp/internal/pkg/locker"
	"github.com/shandysiswandi/gotp/internal/pkg/messaging"
	"github.com/shandysiswandi/gotp/internal/pkg/mfa"
	"github.com/shandysiswandi/gotp/internal/pkg/otp"
	"github.com/shandysiswandi/gotp/internal/pkg/router"
	"github.com/shandysiswandi/gotp/internal/pkg/uid"
	"github.com/shandysiswandi/gotp/internal/pkg/validator"
)

type Dependency struct {
	Ctx        context.Context
	DBConn     *pgxpool.Pool              `validate:"required"`
	CacheConn  *redis.Client              `validate:"required"`
	Goroutine  *goroutine.Manager         `validate:"required"`
	Router     *router.Router             `validate:"required"`
	Messaging  messaging.Publisher        `validate:"required"`
	Config     config.Config              `validate:"required"`
	Instrument instrument.Instrumentation `validate:"required"`
	UUID       uid.StringID               `validate:"required"`
	Clock      clock.Clocker              `validate:"required"`
	Validator  validator.Validator        `validate:"required"`
	// MFAEncryptor seals stored secrets. Nil keeps them as plain Base32.
	MFAEncryptor mfa.Encryptor
}

func New(dep Dependency) error {
	if err := dep.Validator.Validate(dep); err != nil {
		return err
	}

	ctx := dep.Ctx
	if ctx == nil {
		ctx = context.Background()
	}

	dbOTP := db.NewDB(dep.DBConn, dep.MFAEncryptor, dep.Instrument)
	if err := dbOTP.Migrate(ctx); err != nil {
		return err
	}

	repoMsg := mq.NewMessaging(dep.Messaging, dep.Instrument)
	lock := locker.New(dep.CacheConn,
		locker.WithPrefix("lock:"),
		locker.WithTTL(dep.Config.GetSecond("modules.authenticator.lock_ttl_seconds")),
	)

	uc := usecase.New(usecase.Dependency{
		RepoDB:        dbOTP,
		RepoMessaging: repoMsg,
		Locker:        lock,
		Engine:        otp.NewEngine(dep.Clock, nil),
		QR:            qr.NewEncoder(),
		Validator:     dep.Validator,
		Config:        dep.Config,
		UUID:          dep.UUID,
		Clock:         dep.Clock,
		Instrument:    dep.Instrument,
		Goroutine:     dep.Goroutine,
	})

	inbound.RegisterHTTPEndpoint(dep.Router, uc)

	return nil
}
