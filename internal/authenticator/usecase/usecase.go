package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"time"

	"github.com/shandysiswandi/gotp/internal/authenticator/entity"
	"github.com/shandysiswandi/gotp/internal/pkg/clock"
	"github.com/shandysiswandi/gotp/internal/pkg/config"
	"github.com/shandysiswandi/gotp/internal/pkg/goerror"
	"github.com/shandysiswandi/gotp/internal/pkg/goroutine"
	"github.com/shandysiswandi/gotp/internal/pkg/instrument"
	"github.com/shandysiswandi/gotp/internal/pkg/otp"
	"github.com/shandysiswandi/gotp/internal/pkg/uid"
	"github.com/shandysiswandi/gotp/internal/pkg/validator"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/trace"
)

const defaultQRSize = 400

type OTPEnabledEvent struct {
	EventID    string
	UserID     int64
	OccurredAt time.Time
}

type OTPDisabledEvent struct {
	EventID    string
	UserID     int64
	Reason     string
	OccurredAt time.Time
}

type repoMessaging interface {
	PublishOTPEnabled(ctx context.Context, msg OTPEnabledEvent) error
	PublishOTPDisabled(ctx context.Context, msg OTPDisabledEvent) error
}

type repoDB interface {
	// GetAccount returns goerror.ErrNotFound when the user has no record.
	GetAccount(ctx context.Context, userID int64) (*entity.Account, error)

	// MutateAccount runs fn on the locked record of userID, or on a fresh
	// unconfigured account when none exists, and stores it when fn reports a
	// change. Errors returned by fn are passed through untouched.
	MutateAccount(ctx context.Context, userID int64, fn func(acc *entity.Account) (bool, error)) (*entity.Account, error)
}

type totpEngine interface {
	GenerateSecret() (string, error)
	VerifyCode(code, secret string) (bool, error)
	RemainingSeconds() int
}

type qrEncoder interface {
	Encode(content string, size int) ([]byte, error)
}

type locker interface {
	WithLock(ctx context.Context, key string, fn func(context.Context) error) error
}

type Usecase struct {
	repoDB        repoDB
	repoMessaging repoMessaging
	locker        locker
	engine        totpEngine
	qr            qrEncoder
	validator     validator.Validator
	cfg           config.Config
	uuid          uid.StringID
	clock         clock.Clocker
	ins           instrument.Instrumentation
	goroutine     *goroutine.Manager

	verifications metric.Int64Counter
	transitions   metric.Int64Counter
}

type Dependency struct {
	RepoDB        repoDB
	RepoMessaging repoMessaging
	Locker        locker
	Engine        totpEngine
	QR            qrEncoder
	Validator     validator.Validator
	Config        config.Config
	UUID          uid.StringID
	Clock         clock.Clocker
	Instrument    instrument.Instrumentation
	Goroutine     *goroutine.Manager
}

func New(dep Dependency) *Usecase {
	s := &Usecase{
		repoDB:        dep.RepoDB,
		repoMessaging: dep.RepoMessaging,
		locker:        dep.Locker,
		engine:        dep.Engine,
		qr:            dep.QR,
		validator:     dep.Validator,
		cfg:           dep.Config,
		uuid:          dep.UUID,
		clock:         dep.Clock,
		ins:           dep.Instrument,
		goroutine:     dep.Goroutine,
	}

	meter := s.ins.Meter("authenticator.usecase")
	s.verifications = newCounter(meter, "authenticator.verifications", "Verification outcomes by result.")
	s.transitions = newCounter(meter, "authenticator.transitions", "Account state transitions by target state.")

	return s
}

func newCounter(meter metric.Meter, name, desc string) metric.Int64Counter {
	c, err := meter.Int64Counter(name, metric.WithDescription(desc))
	if err != nil {
		slog.Warn("failed to create counter, falling back to noop", "name", name, "error", err)
		return metricnoop.Int64Counter{}
	}
	return c
}

func (s *Usecase) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return s.ins.Tracer("authenticator.usecase").Start(ctx, name)
}

// RemainingSeconds returns how long the current code stays valid.
func (s *Usecase) RemainingSeconds() int {
	return s.engine.RemainingSeconds()
}

func (s *Usecase) issuer() string {
	if v := s.cfg.GetString("modules.authenticator.issuer"); v != "" {
		return v
	}
	return otp.DefaultIssuer
}

func (s *Usecase) qrSize() int {
	if v := s.cfg.GetInt("modules.authenticator.qr_size"); v > 0 {
		return v
	}
	return defaultQRSize
}

func (s *Usecase) uri(userID int64, secret string) string {
	return otp.BuildURI(secret, accountLabel(userID), s.issuer())
}

func accountLabel(userID int64) string {
	return strconv.FormatInt(userID, 10)
}

func lockKey(userID int64) string {
	return "authenticator:otp:" + strconv.FormatInt(userID, 10)
}

// getAccount maps a missing record to the unconfigured account.
func (s *Usecase) getAccount(ctx context.Context, userID int64) (*entity.Account, error) {
	acc, err := s.repoDB.GetAccount(ctx, userID)
	if errors.Is(err, goerror.ErrNotFound) {
		return entity.NewAccount(userID), nil
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo get account", "user_id", userID, "error", err)
		return nil, goerror.NewServerKind(err, goerror.KindDatabaseError)
	}

	return acc, nil
}

// mutate serializes fn per user, first on the distributed lock and then on
// the row lock held by the repository transaction.
func (s *Usecase) mutate(ctx context.Context, userID int64, fn func(acc *entity.Account) (bool, error)) (*entity.Account, error) {
	var acc *entity.Account
	err := s.locker.WithLock(ctx, lockKey(userID), func(ctx context.Context) error {
		var err error
		acc, err = s.repoDB.MutateAccount(ctx, userID, fn)
		if err != nil && !isDomainError(err) {
			slog.ErrorContext(ctx, "failed to repo mutate account", "user_id", userID, "error", err)
			return goerror.NewServerKind(err, goerror.KindDatabaseError)
		}
		return err
	})
	if err == nil {
		return acc, nil
	}
	if isDomainError(err) {
		return nil, err
	}

	slog.ErrorContext(ctx, "failed to acquire account lock", "user_id", userID, "error", err)
	return nil, goerror.NewServer(err)
}

func isDomainError(err error) bool {
	var gerr *goerror.Error
	return errors.As(err, &gerr)
}

func (s *Usecase) recordTransition(ctx context.Context, to entity.Status) {
	s.transitions.Add(ctx, 1, metric.WithAttributes(attribute.String("to", to.String())))
}

func (s *Usecase) recordVerification(ctx context.Context, out entity.VerificationOutcome) {
	result := "accepted"
	if !out.IsAccepted() {
		result = out.Reason().String()
	}
	s.verifications.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", result)))
}

func (s *Usecase) publishEnabled(ctx context.Context, userID int64, at time.Time) {
	ev := OTPEnabledEvent{EventID: s.uuid.Generate(), UserID: userID, OccurredAt: at}
	s.goroutine.Go(context.WithoutCancel(ctx), func(ctx context.Context) error {
		if err := s.repoMessaging.PublishOTPEnabled(ctx, ev); err != nil {
			slog.ErrorContext(ctx, "failed to publish otp enabled", "user_id", userID, "error", err)
			return err
		}
		return nil
	})
}

func (s *Usecase) publishDisabled(ctx context.Context, userID int64, reason string, at time.Time) {
	ev := OTPDisabledEvent{EventID: s.uuid.Generate(), UserID: userID, Reason: reason, OccurredAt: at}
	s.goroutine.Go(context.WithoutCancel(ctx), func(ctx context.Context) error {
		if err := s.repoMessaging.PublishOTPDisabled(ctx, ev); err != nil {
			slog.ErrorContext(ctx, "failed to publish otp disabled", "user_id", userID, "error", err)
			return err
		}
		return nil
	})
}
