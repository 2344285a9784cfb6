package usecase

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"
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
	"github.com/stretchr/testify/require"
)

const testSecret = "JBSWY3DPEHPK3PXP"

var testNow = time.Unix(1000000*otp.Period+7, 0).UTC()

type fakeRepoDB struct {
	mu       sync.Mutex
	accounts map[int64]entity.Account
	writes   int
	getErr   error
	mutErr   error
}

func newFakeRepoDB() *fakeRepoDB {
	return &fakeRepoDB{accounts: map[int64]entity.Account{}}
}

func (f *fakeRepoDB) GetAccount(_ context.Context, userID int64) (*entity.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.getErr != nil {
		return nil, f.getErr
	}
	acc, ok := f.accounts[userID]
	if !ok {
		return nil, goerror.ErrNotFound
	}
	return &acc, nil
}

func (f *fakeRepoDB) MutateAccount(_ context.Context, userID int64, fn func(acc *entity.Account) (bool, error)) (*entity.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.mutErr != nil {
		return nil, f.mutErr
	}

	acc := entity.NewAccount(userID)
	if cur, ok := f.accounts[userID]; ok {
		acc = &cur
	}

	changed, err := fn(acc)
	if err != nil {
		return nil, err
	}
	if changed {
		f.accounts[userID] = *acc
		f.writes++
	}
	return acc, nil
}

func (f *fakeRepoDB) put(acc entity.Account) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.accounts[acc.UserID] = acc
}

func (f *fakeRepoDB) get(userID int64) (entity.Account, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	acc, ok := f.accounts[userID]
	return acc, ok
}

type fakeMessaging struct {
	mu       sync.Mutex
	enabled  []OTPEnabledEvent
	disabled []OTPDisabledEvent
	err      error
}

func (f *fakeMessaging) PublishOTPEnabled(_ context.Context, msg OTPEnabledEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.enabled = append(f.enabled, msg)
	return f.err
}

func (f *fakeMessaging) PublishOTPDisabled(_ context.Context, msg OTPDisabledEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.disabled = append(f.disabled, msg)
	return f.err
}

type fakeLocker struct {
	mu   sync.Mutex
	keys []string
	err  error
}

func (f *fakeLocker) WithLock(ctx context.Context, key string, fn func(context.Context) error) error {
	f.mu.Lock()
	f.keys = append(f.keys, key)
	err := f.err
	f.mu.Unlock()

	if err != nil {
		return err
	}
	return fn(ctx)
}

type fakeQR struct {
	content string
	size    int
	err     error
}

func (f *fakeQR) Encode(content string, size int) ([]byte, error) {
	f.content, f.size = content, size
	if f.err != nil {
		return nil, f.err
	}
	return []byte("\x89PNG"), nil
}

type suite struct {
	uc     *Usecase
	db     *fakeRepoDB
	mq     *fakeMessaging
	lock   *fakeLocker
	qr     *fakeQR
	clock  *clock.Frozen
	engine *otp.Engine
	gm     *goroutine.Manager
}

func newSuite(t *testing.T, yaml string) *suite {
	t.Helper()

	cfg, err := config.NewViperFromBytes("yaml", []byte(yaml))
	require.NoError(t, err)

	v, err := validator.NewV10Validator()
	require.NoError(t, err)

	s := &suite{
		db:    newFakeRepoDB(),
		mq:    &fakeMessaging{},
		lock:  &fakeLocker{},
		qr:    &fakeQR{},
		clock: clock.NewFrozen(testNow),
		gm:    goroutine.NewManager(4),
	}
	s.engine = otp.NewEngine(s.clock, bytes.NewReader(bytes.Repeat([]byte{0xA5}, otp.SecretSize*4)))

	s.uc = New(Dependency{
		RepoDB:        s.db,
		RepoMessaging: s.mq,
		Locker:        s.lock,
		Engine:        s.engine,
		QR:            s.qr,
		Validator:     v,
		Config:        cfg,
		UUID:          uid.NewUUID(),
		Clock:         s.clock,
		Instrument:    instrument.NewNoop(),
		Goroutine:     s.gm,
	})
	return s
}

// code returns the currently valid code of secret.
func (s *suite) code(t *testing.T, secret string) string {
	t.Helper()

	c, err := s.engine.ComputeCode(secret, s.engine.Counter())
	require.NoError(t, err)
	return c
}

// wrongCode returns a well formed code outside the accepted window.
func (s *suite) wrongCode(t *testing.T, secret string) string {
	t.Helper()

	now := s.engine.Counter()
	c, err := s.engine.ComputeCode(secret, now+5)
	require.NoError(t, err)
	for _, counter := range []uint64{now - 1, now, now + 1} {
		near, err := s.engine.ComputeCode(secret, counter)
		require.NoError(t, err)
		require.NotEqual(t, near, c)
	}
	return c
}

// drain waits for async event publication.
func (s *suite) drain(t *testing.T) {
	t.Helper()
	_ = s.gm.Wait()
}

func requireKind(t *testing.T, err error, kind goerror.Kind) {
	t.Helper()

	var gerr *goerror.Error
	require.True(t, errors.As(err, &gerr), "expected goerror, got %v", err)
	require.Equal(t, kind, gerr.Kind(), "got %v", err)
}
