package db

import (
	"context"
	_ "embed"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shandysiswandi/gotp/internal/authenticator/entity"
	"github.com/shandysiswandi/gotp/internal/pkg/goerror"
	"github.com/shandysiswandi/gotp/internal/pkg/instrument"
	"github.com/shandysiswandi/gotp/internal/pkg/mfa"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

//go:embed schema.sql
var schema string

var errSealedWithoutKey = errors.New("db: stored secret is sealed but no encryptor is configured")

// Pool is the subset of *pgxpool.Pool used here.
type Pool interface {
	BeginTx(ctx context.Context, txOptions pgx.TxOptions) (pgx.Tx, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
}

type DB struct {
	conn Pool
	enc  mfa.Encryptor
	ins  instrument.Instrumentation
}

// NewDB builds the repository. A nil enc stores secrets as plain Base32.
func NewDB(conn Pool, enc mfa.Encryptor, ins instrument.Instrumentation) *DB {
	return &DB{
		conn: conn,
		enc:  enc,
		ins:  ins,
	}
}

// Migrate creates the table when it does not exist yet.
func (s *DB) Migrate(ctx context.Context) (err error) {
	ctx, span := s.startSpan(ctx, "Migrate")
	defer func() { s.endSpan(span, err) }()

	_, err = s.conn.Exec(ctx, schema)
	return err
}

// - 23505 unique violation → goerror.ErrConflict
// - 40001 serialization_failure and 40P01 deadlock_detected are returned as is
func (s *DB) mapError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, pgx.ErrNoRows) {
		return goerror.ErrNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return goerror.ErrConflict
	}

	return err
}

func (s *DB) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return s.ins.Tracer("authenticator.outbound.db").Start(ctx, name)
}

func (s *DB) endSpan(span trace.Span, err error) {
	if err != nil && !errors.Is(err, goerror.ErrNotFound) && !errors.Is(err, goerror.ErrConflict) {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

func scope(userID int64) mfa.Scope {
	return mfa.Scope{UserID: userID, Purpose: mfa.PurposeOTPSeed}
}

func (s *DB) seal(userID int64, secret string) (string, error) {
	if s.enc == nil || secret == "" {
		return secret, nil
	}
	return mfa.SealString(s.enc, secret, scope(userID))
}

func (s *DB) open(userID int64, stored string) (string, error) {
	if !mfa.IsSealed(stored) {
		return stored, nil
	}
	if s.enc == nil {
		return "", errSealedWithoutKey
	}
	return mfa.OpenString(s.enc, stored, scope(userID))
}

func (s *DB) scanAccount(row pgx.Row) (*entity.Account, error) {
	var (
		acc    entity.Account
		status int16
		stored string
	)
	if err := row.Scan(&acc.UserID, &stored, &status, &acc.CreatedAt, &acc.UpdatedAt); err != nil {
		return nil, s.mapError(err)
	}

	secret, err := s.open(acc.UserID, stored)
	if err != nil {
		return nil, err
	}

	acc.Secret = secret
	acc.Status = entity.Status(status).Ensure()
	return &acc, nil
}
