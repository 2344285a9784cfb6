package db

import (
	"context"
	"errors"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/shandysiswandi/gotp/internal/authenticator/entity"
	"github.com/shandysiswandi/gotp/internal/pkg/goerror"
)

const (
	queryGetAccount = `SELECT user_id, secret, status, created_at, updated_at
FROM authenticator_user_otps
WHERE user_id = $1`

	queryGetAccountForUpdate = queryGetAccount + `
FOR UPDATE`

	queryLockAccount = `SELECT pg_advisory_xact_lock($1)`

	queryUpsertAccount = `INSERT INTO authenticator_user_otps (user_id, secret, status, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (user_id) DO UPDATE
SET secret = EXCLUDED.secret, status = EXCLUDED.status, updated_at = EXCLUDED.updated_at`
)

func (s *DB) GetAccount(ctx context.Context, userID int64) (acc *entity.Account, err error) {
	ctx, span := s.startSpan(ctx, "GetAccount")
	defer func() { s.endSpan(span, err) }()

	return s.scanAccount(s.conn.QueryRow(ctx, queryGetAccount, userID))
}

// MutateAccount performs the read-modify-write of one user's record in a
// single transaction. The advisory lock covers users without a row yet, and
// FOR UPDATE covers writers that skip the advisory lock.
func (s *DB) MutateAccount(ctx context.Context, userID int64, fn func(acc *entity.Account) (bool, error)) (acc *entity.Account, err error) {
	ctx, span := s.startSpan(ctx, "MutateAccount")
	defer func() { s.endSpan(span, err) }()

	tx, err := s.conn.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer func() {
		if rErr := tx.Rollback(ctx); rErr != nil && !errors.Is(rErr, pgx.ErrTxClosed) {
			slog.ErrorContext(ctx, "failed to rolback", "error", rErr)
		}
	}()

	if _, err = tx.Exec(ctx, queryLockAccount, userID); err != nil {
		return nil, s.mapError(err)
	}

	acc, err = s.scanAccount(tx.QueryRow(ctx, queryGetAccountForUpdate, userID))
	if errors.Is(err, goerror.ErrNotFound) {
		acc, err = entity.NewAccount(userID), nil
	}
	if err != nil {
		return nil, err
	}

	changed, err := fn(acc)
	if err != nil {
		return nil, err
	}
	if !changed {
		return acc, nil
	}

	stored, err := s.seal(userID, acc.Secret)
	if err != nil {
		return nil, err
	}

	if _, err = tx.Exec(ctx, queryUpsertAccount, acc.UserID, stored, int16(acc.Status), acc.CreatedAt, acc.UpdatedAt); err != nil {
		return nil, s.mapError(err)
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, s.mapError(err)
	}

	return acc, nil
}
