package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/shandysiswandi/gotp/internal/authenticator/entity"
	"github.com/shandysiswandi/gotp/internal/pkg/goerror"
	"github.com/shandysiswandi/gotp/internal/pkg/otp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUsecase_Info(t *testing.T) {
	s := newSuite(t, baseYAML)
	s.db.put(enabledAccount(1))
	s.db.put(entity.Account{UserID: 2, Secret: testSecret, Status: entity.StatusPendingActivation, CreatedAt: testNow, UpdatedAt: testNow})

	out, err := s.uc.Info(context.Background(), UserInput{UserID: 1})
	require.NoError(t, err)
	assert.Equal(t, &InfoOutput{
		UserID:    1,
		Status:    entity.StatusEnabled,
		Enabled:   true,
		CreatedAt: testNow,
		UpdatedAt: testNow,
		URI:       otp.BuildURI(testSecret, "1", otp.DefaultIssuer),
	}, out)

	out, err = s.uc.Info(context.Background(), UserInput{UserID: 2})
	require.NoError(t, err)
	assert.False(t, out.Enabled)
	assert.Empty(t, out.URI)

	_, err = s.uc.Info(context.Background(), UserInput{UserID: 3})
	requireKind(t, err, goerror.KindNotConfigured)
}

func TestUsecase_Provisioning(t *testing.T) {
	t.Run("enabled returns the stored secret", func(t *testing.T) {
		s := newSuite(t, baseYAML)
		s.db.put(enabledAccount(1))

		out, err := s.uc.Provisioning(context.Background(), UserInput{UserID: 1})
		require.NoError(t, err)
		assert.Equal(t, &ProvisioningOutput{
			UserID:   1,
			Username: "user1",
			Secret:   testSecret,
			URI:      otp.BuildURI(testSecret, "1", otp.DefaultIssuer),
			Enabled:  true,
		}, out)
		assert.Equal(t, 0, s.db.writes)
	})

	t.Run("unconfigured starts enrollment", func(t *testing.T) {
		s := newSuite(t, baseYAML)

		out, err := s.uc.Provisioning(context.Background(), UserInput{UserID: 2})
		require.NoError(t, err)
		assert.False(t, out.Enabled)
		assert.NotEmpty(t, out.Secret)

		acc, _ := s.db.get(2)
		assert.Equal(t, entity.StatusPendingActivation, acc.Status)
		assert.Equal(t, out.Secret, acc.Secret)
	})
}

func TestUsecase_QRCode(t *testing.T) {
	s := newSuite(t, "modules:\n  authenticator:\n    qr_size: 256\n")
	s.db.put(enabledAccount(1))
	s.db.put(entity.Account{UserID: 2, Secret: testSecret, Status: entity.StatusDisabled})

	png, err := s.uc.QRCode(context.Background(), UserInput{UserID: 1})
	require.NoError(t, err)
	assert.Equal(t, []byte("\x89PNG"), png)
	assert.Equal(t, otp.BuildURI(testSecret, "1", otp.DefaultIssuer), s.qr.content)
	assert.Equal(t, 256, s.qr.size)

	_, err = s.uc.QRCode(context.Background(), UserInput{UserID: 2})
	requireKind(t, err, goerror.KindDisabled)

	_, err = s.uc.QRCode(context.Background(), UserInput{UserID: 3})
	requireKind(t, err, goerror.KindNotConfigured)

	s.qr.err = errors.New("data too long")
	_, err = s.uc.QRCode(context.Background(), UserInput{UserID: 1})
	requireKind(t, err, goerror.KindQRGenerationFailed)
}
