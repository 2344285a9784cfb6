package db

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/shandysiswandi/gotp/internal/authenticator/entity"
	"github.com/shandysiswandi/gotp/internal/pkg/goerror"
	"github.com/shandysiswandi/gotp/internal/pkg/instrument"
	"github.com/shandysiswandi/gotp/internal/pkg/mfa"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	t0      = time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC)
	columns = []string{"user_id", "secret", "status", "created_at", "updated_at"}
)

func newMock(t *testing.T, enc mfa.Encryptor) (*DB, pgxmock.PgxPoolIface) {
	t.Helper()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)

	return NewDB(mock, enc, instrument.NewNoop()), mock
}

func testEncryptor() mfa.Encryptor {
	return mfa.NewAESGCMEncryptor(mfa.StaticKeyProvider{KeyBytes: []byte("0123456789abcdef0123456789abcdef")})
}

func TestDB_Migrate(t *testing.T) {
	repo, mock := newMock(t, nil)

	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE IF NOT EXISTS authenticator_user_otps")).
		WillReturnResult(pgxmock.NewResult("CREATE TABLE", 0))

	require.NoError(t, repo.Migrate(context.Background()))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDB_GetAccount(t *testing.T) {
	repo, mock := newMock(t, nil)

	mock.ExpectQuery(regexp.QuoteMeta(queryGetAccount)).
		WithArgs(int64(7)).
		WillReturnRows(pgxmock.NewRows(columns).AddRow(int64(7), "JBSWY3DPEHPK3PXP", int16(2), t0, t0.Add(time.Hour)))

	acc, err := repo.GetAccount(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, &entity.Account{
		UserID:    7,
		Secret:    "JBSWY3DPEHPK3PXP",
		Status:    entity.StatusEnabled,
		CreatedAt: t0,
		UpdatedAt: t0.Add(time.Hour),
	}, acc)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDB_GetAccount_NotFound(t *testing.T) {
	repo, mock := newMock(t, nil)

	mock.ExpectQuery(regexp.QuoteMeta(queryGetAccount)).
		WithArgs(int64(7)).
		WillReturnError(pgx.ErrNoRows)

	_, err := repo.GetAccount(context.Background(), 7)
	assert.ErrorIs(t, err, goerror.ErrNotFound)
}

func TestDB_GetAccount_UnknownStatus(t *testing.T) {
	repo, mock := newMock(t, nil)

	mock.ExpectQuery(regexp.QuoteMeta(queryGetAccount)).
		WithArgs(int64(7)).
		WillReturnRows(pgxmock.NewRows(columns).AddRow(int64(7), "X", int16(42), t0, t0))

	acc, err := repo.GetAccount(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, entity.StatusUnconfigured, acc.Status)
}

func TestDB_GetAccount_Sealed(t *testing.T) {
	enc := testEncryptor()
	repo, mock := newMock(t, enc)

	sealed, err := mfa.SealString(enc, "JBSWY3DPEHPK3PXP", scope(7))
	require.NoError(t, err)

	mock.ExpectQuery(regexp.QuoteMeta(queryGetAccount)).
		WithArgs(int64(7)).
		WillReturnRows(pgxmock.NewRows(columns).AddRow(int64(7), sealed, int16(2), t0, t0))

	acc, err := repo.GetAccount(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, "JBSWY3DPEHPK3PXP", acc.Secret)
}

func TestDB_GetAccount_SealedOtherUser(t *testing.T) {
	enc := testEncryptor()
	repo, mock := newMock(t, enc)

	sealed, err := mfa.SealString(enc, "JBSWY3DPEHPK3PXP", scope(8))
	require.NoError(t, err)

	mock.ExpectQuery(regexp.QuoteMeta(queryGetAccount)).
		WithArgs(int64(7)).
		WillReturnRows(pgxmock.NewRows(columns).AddRow(int64(7), sealed, int16(2), t0, t0))

	_, err = repo.GetAccount(context.Background(), 7)
	assert.ErrorIs(t, err, mfa.ErrDecryptFailed)
}

func TestDB_GetAccount_SealedWithoutKey(t *testing.T) {
	repo, mock := newMock(t, nil)

	mock.ExpectQuery(regexp.QuoteMeta(queryGetAccount)).
		WithArgs(int64(7)).
		WillReturnRows(pgxmock.NewRows(columns).AddRow(int64(7), mfa.SealedPrefix+"AAAA", int16(2), t0, t0))

	_, err := repo.GetAccount(context.Background(), 7)
	assert.ErrorIs(t, err, errSealedWithoutKey)
}

func expectLockedRead(mock pgxmock.PgxPoolIface, userID int64) *pgxmock.ExpectedQuery {
	mock.ExpectBeginTx(pgx.TxOptions{})
	mock.ExpectExec(regexp.QuoteMeta(queryLockAccount)).
		WithArgs(userID).
		WillReturnResult(pgxmock.NewResult("SELECT", 1))
	return mock.ExpectQuery(regexp.QuoteMeta(queryGetAccountForUpdate)).WithArgs(userID)
}

func TestDB_MutateAccount_Insert(t *testing.T) {
	repo, mock := newMock(t, nil)

	expectLockedRead(mock, 9).WillReturnError(pgx.ErrNoRows)
	mock.ExpectExec(regexp.QuoteMeta(queryUpsertAccount)).
		WithArgs(int64(9), "SECRET", int16(entity.StatusPendingActivation), t0, t0).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()

	acc, err := repo.MutateAccount(context.Background(), 9, func(acc *entity.Account) (bool, error) {
		assert.False(t, acc.IsConfigured())
		return true, acc.Begin("SECRET", t0)
	})
	require.NoError(t, err)
	assert.Equal(t, entity.StatusPendingActivation, acc.Status)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDB_MutateAccount_Update(t *testing.T) {
	repo, mock := newMock(t, nil)
	t1 := t0.Add(time.Minute)

	expectLockedRead(mock, 9).
		WillReturnRows(pgxmock.NewRows(columns).AddRow(int64(9), "SECRET", int16(entity.StatusPendingActivation), t0, t0))
	mock.ExpectExec(regexp.QuoteMeta(queryUpsertAccount)).
		WithArgs(int64(9), "SECRET", int16(entity.StatusEnabled), t0, t1).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()

	acc, err := repo.MutateAccount(context.Background(), 9, func(acc *entity.Account) (bool, error) {
		return acc.Enable("SECRET", t1), nil
	})
	require.NoError(t, err)
	assert.Equal(t, entity.StatusEnabled, acc.Status)
	assert.Equal(t, t0, acc.CreatedAt)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDB_MutateAccount_SealsSecret(t *testing.T) {
	repo, mock := newMock(t, testEncryptor())

	expectLockedRead(mock, 9).WillReturnError(pgx.ErrNoRows)
	mock.ExpectExec(regexp.QuoteMeta(queryUpsertAccount)).
		WithArgs(int64(9), pgxmock.AnyArg(), int16(entity.StatusEnabled), t0, t0).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()

	acc, err := repo.MutateAccount(context.Background(), 9, func(acc *entity.Account) (bool, error) {
		return acc.Enable("SECRET", t0), nil
	})
	require.NoError(t, err)
	assert.Equal(t, "SECRET", acc.Secret)
	require.NoError(t, mock.ExpectationsWereMet())

	stored, err := repo.seal(9, "SECRET")
	require.NoError(t, err)
	assert.True(t, mfa.IsSealed(stored))
	assert.NotContains(t, stored, "SECRET")
}

func TestDB_MutateAccount_NoChange(t *testing.T) {
	repo, mock := newMock(t, nil)

	expectLockedRead(mock, 9).
		WillReturnRows(pgxmock.NewRows(columns).AddRow(int64(9), "SECRET", int16(entity.StatusEnabled), t0, t0))
	mock.ExpectRollback()

	acc, err := repo.MutateAccount(context.Background(), 9, func(acc *entity.Account) (bool, error) {
		return acc.Enable("OTHER", t0.Add(time.Hour)), nil
	})
	require.NoError(t, err)
	assert.Equal(t, "SECRET", acc.Secret)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDB_MutateAccount_CallbackError(t *testing.T) {
	repo, mock := newMock(t, nil)

	expectLockedRead(mock, 9).WillReturnError(pgx.ErrNoRows)
	mock.ExpectRollback()

	want := goerror.NewOTP(goerror.KindNotConfigured)
	_, err := repo.MutateAccount(context.Background(), 9, func(acc *entity.Account) (bool, error) {
		return false, want
	})
	assert.Same(t, want, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDB_MutateAccount_Faults(t *testing.T) {
	t.Run("begin", func(t *testing.T) {
		repo, mock := newMock(t, nil)
		mock.ExpectBeginTx(pgx.TxOptions{}).WillReturnError(errors.New("pool closed"))

		_, err := repo.MutateAccount(context.Background(), 9, func(*entity.Account) (bool, error) {
			t.Fatal("callback must not run")
			return false, nil
		})
		assert.EqualError(t, err, "pool closed")
	})

	t.Run("lock", func(t *testing.T) {
		repo, mock := newMock(t, nil)
		mock.ExpectBeginTx(pgx.TxOptions{})
		mock.ExpectExec(regexp.QuoteMeta(queryLockAccount)).
			WithArgs(int64(9)).
			WillReturnError(errors.New("canceling statement due to lock timeout"))
		mock.ExpectRollback()

		_, err := repo.MutateAccount(context.Background(), 9, func(*entity.Account) (bool, error) {
			t.Fatal("callback must not run")
			return false, nil
		})
		assert.Error(t, err)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("upsert conflict", func(t *testing.T) {
		repo, mock := newMock(t, nil)
		expectLockedRead(mock, 9).WillReturnError(pgx.ErrNoRows)
		mock.ExpectExec(regexp.QuoteMeta(queryUpsertAccount)).
			WithArgs(int64(9), "S", int16(entity.StatusEnabled), t0, t0).
			WillReturnError(&pgconn.PgError{Code: "23505"})
		mock.ExpectRollback()

		_, err := repo.MutateAccount(context.Background(), 9, func(acc *entity.Account) (bool, error) {
			return acc.Enable("S", t0), nil
		})
		assert.ErrorIs(t, err, goerror.ErrConflict)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}
