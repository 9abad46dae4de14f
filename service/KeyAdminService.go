package service

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"keyportal/dto"
	"keyportal/model"
	"keyportal/repository"
	"keyportal/util"
)

// KeyAdminService backs keyctl and the seeder: everything an operator does to keys.
type KeyAdminService struct {
	repo   repository.AccessKeyRepository
	log    *zap.Logger
	issuer string
}

func NewKeyAdminService(repo repository.AccessKeyRepository, log *zap.Logger, issuer string) *KeyAdminService {
	return &KeyAdminService{repo: repo, log: log, issuer: issuer}
}

// AddKey creates a key. A missing name or secret is generated; MaxUses 0 means the default of one use.
func (s *KeyAdminService) AddKey(req dto.AddKeyRequest) (*model.AccessKey, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Secret = util.NormalizeSecret(req.Secret)
	if req.MaxUses == 0 {
		req.MaxUses = 1
	}
	if err := util.ValidateStruct(&req); err != nil {
		return nil, err
	}

	if req.Name == "" {
		name, err := util.GenerateAccessKey("KEY", 10)
		if err != nil {
			return nil, fmt.Errorf("generate key name: %w", err)
		}
		req.Name = name
	}
	if req.Secret == "" {
		secret, err := util.GenerateTOTPSecret(s.issuer, req.Name)
		if err != nil {
			return nil, err
		}
		req.Secret = secret
	}

	key := &model.AccessKey{Name: req.Name, Secret: req.Secret, MaxUses: req.MaxUses}
	if err := s.repo.Create(key); err != nil {
		return nil, err
	}
	s.log.Info("key added", zap.String("key", key.Name), zap.Int("max_uses", key.MaxUses))
	return key, nil
}

// ImportKey stores a key exactly as given, usage and timestamps included.
func (s *KeyAdminService) ImportKey(key *model.AccessKey) error {
	key.Secret = util.NormalizeSecret(key.Secret)
	if !util.IsValidTOTPSecret(key.Secret) {
		return fmt.Errorf("key %s: secret is not valid base32", key.Name)
	}
	if key.MaxUses == 0 || key.MaxUses < model.UnlimitedUses {
		return fmt.Errorf("key %s: max_uses must be -1 or positive", key.Name)
	}
	return s.repo.Create(key)
}

// ModifyUsage changes the limit and returns the previous one.
func (s *KeyAdminService) ModifyUsage(req dto.ModifyUsageRequest) (int, error) {
	if err := util.ValidateStruct(&req); err != nil {
		return 0, err
	}
	key, err := s.repo.GetByName(req.Name)
	if err != nil {
		return 0, err
	}
	old := key.MaxUses
	key.MaxUses = req.MaxUses
	if err := s.repo.Update(key); err != nil {
		return 0, err
	}
	s.log.Info("key limit changed", zap.String("key", key.Name), zap.Int("from", old), zap.Int("to", req.MaxUses))
	return old, nil
}

// ResetUsage sets the usage count back to zero and returns the previous count.
func (s *KeyAdminService) ResetUsage(name string) (int, error) {
	key, err := s.repo.GetByName(name)
	if err != nil {
		return 0, err
	}
	old := key.UsageCount
	key.UsageCount = 0
	if err := s.repo.Update(key); err != nil {
		return 0, err
	}
	s.log.Info("key usage reset", zap.String("key", name), zap.Int("was", old))
	return old, nil
}

func (s *KeyAdminService) DeleteKey(name string) error {
	if err := s.repo.Delete(name); err != nil {
		return err
	}
	s.log.Info("key deleted", zap.String("key", name))
	return nil
}

func (s *KeyAdminService) ListKeys() ([]model.AccessKey, error) {
	return s.repo.List()
}

func (s *KeyAdminService) GetKey(name string) (*model.AccessKey, error) {
	return s.repo.GetByName(name)
}

// VerifyCode reports whether code is the key's current TOTP code. It does not consume a use.
func (s *KeyAdminService) VerifyCode(name, code string) (bool, error) {
	key, err := s.repo.GetByName(name)
	if err != nil {
		return false, err
	}
	return util.VerifyTOTP(key.Secret, strings.TrimSpace(code)), nil
}

// QRCode renders the enrollment QR of a key for authenticator apps.
func (s *KeyAdminService) QRCode(name string) ([]byte, error) {
	key, err := s.repo.GetByName(name)
	if err != nil {
		return nil, err
	}
	return util.GetTOTPQRCode(key.Secret, key.Name, s.issuer)
}
