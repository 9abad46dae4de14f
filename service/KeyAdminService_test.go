package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"keyportal/dto"
	"keyportal/model"
	"keyportal/repository"
	"keyportal/util"
)

func newAdmin(t *testing.T) *KeyAdminService {
	t.Helper()
	return NewKeyAdminService(repository.NewInMemoryAccessKeyRepo(), zap.NewNop(), "keyportal")
}

func TestAddKeyGeneratesNameAndSecret(t *testing.T) {
	admin := newAdmin(t)

	k, err := admin.AddKey(dto.AddKeyRequest{})
	require.NoError(t, err)
	assert.Regexp(t, `^KEY-[A-Z2-9]{10}$`, k.Name)
	assert.True(t, util.IsValidTOTPSecret(k.Secret))
	assert.Equal(t, 1, k.MaxUses)
}

func TestAddKeyKeepsGivenValues(t *testing.T) {
	admin := newAdmin(t)

	k, err := admin.AddKey(dto.AddKeyRequest{Name: "MULTI_USE_KEY_001", Secret: "jbswy3dpehpk3pxp", MaxUses: 5})
	require.NoError(t, err)
	assert.Equal(t, "JBSWY3DPEHPK3PXP", k.Secret)
	assert.Equal(t, 5, k.MaxUses)

	_, err = admin.AddKey(dto.AddKeyRequest{Name: "MULTI_USE_KEY_001"})
	assert.ErrorIs(t, err, repository.ErrKeyExists)
}

func TestAddKeyRejectsBadInput(t *testing.T) {
	admin := newAdmin(t)

	_, err := admin.AddKey(dto.AddKeyRequest{Name: "OK-NAME", MaxUses: -5})
	assert.Error(t, err)
	_, err = admin.AddKey(dto.AddKeyRequest{Name: "OK-NAME", Secret: "short"})
	assert.Error(t, err)
}

func TestModifyResetDelete(t *testing.T) {
	admin := newAdmin(t)
	_, err := admin.AddKey(dto.AddKeyRequest{Name: "KEY-1", Secret: testSecret, MaxUses: 2})
	require.NoError(t, err)

	old, err := admin.ModifyUsage(dto.ModifyUsageRequest{Name: "KEY-1", MaxUses: model.UnlimitedUses})
	require.NoError(t, err)
	assert.Equal(t, 2, old)

	require.NoError(t, admin.ImportKey(&model.AccessKey{Name: "KEY-2", Secret: testSecret, MaxUses: 1, UsageCount: 1}))
	old, err = admin.ResetUsage("KEY-2")
	require.NoError(t, err)
	assert.Equal(t, 1, old)

	keys, err := admin.ListKeys()
	require.NoError(t, err)
	require.Len(t, keys, 2)
	assert.Equal(t, model.KeyStatusUnlimited, keys[0].Status())
	assert.Equal(t, 0, keys[1].UsageCount)

	require.NoError(t, admin.DeleteKey("KEY-1"))
	_, err = admin.GetKey("KEY-1")
	assert.ErrorIs(t, err, repository.ErrKeyNotFound)

	_, err = admin.ModifyUsage(dto.ModifyUsageRequest{Name: "KEY-1", MaxUses: 3})
	assert.ErrorIs(t, err, repository.ErrKeyNotFound)
}

func TestImportKeyValidation(t *testing.T) {
	admin := newAdmin(t)
	assert.Error(t, admin.ImportKey(&model.AccessKey{Name: "X", Secret: "bad", MaxUses: 1}))
	assert.Error(t, admin.ImportKey(&model.AccessKey{Name: "X", Secret: testSecret, MaxUses: 0}))
}

func TestQRCode(t *testing.T) {
	admin := newAdmin(t)
	_, err := admin.AddKey(dto.AddKeyRequest{Name: "KEY-QR", Secret: testSecret})
	require.NoError(t, err)

	png, err := admin.QRCode("KEY-QR")
	require.NoError(t, err)
	assert.Equal(t, []byte("\x89PNG"), png[:4])
}

func TestVerifyCode(t *testing.T) {
	admin := newAdmin(t)
	_, err := admin.AddKey(dto.AddKeyRequest{Name: "VERIFY", Secret: "JBSWY3DPEHPK3PXP"})
	require.NoError(t, err)

	code, err := util.GenerateTOTPCode("JBSWY3DPEHPK3PXP", time.Now())
	require.NoError(t, err)

	ok, err := admin.VerifyCode("VERIFY", " "+code+" ")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = admin.VerifyCode("VERIFY", "abcdef")
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = admin.VerifyCode("MISSING", code)
	assert.ErrorIs(t, err, repository.ErrKeyNotFound)

	k, err := admin.GetKey("VERIFY")
	require.NoError(t, err)
	assert.Zero(t, k.UsageCount)
}
