package service

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"keyportal/dto"
	"keyportal/metrics"
	"keyportal/model"
	"keyportal/repository"
	"keyportal/util"
)

// Messages shown to the user as-is by the page.
const (
	MsgKeyRequired    = "Key is required"
	MsgInvalidKey     = "Invalid key provided"
	MsgValidUnlimited = "Key is valid and has unlimited uses"
)

var (
	ErrKeyRequired = errors.New("key is required")
	ErrInvalidKey  = errors.New("invalid key provided")
)

// LimitError is returned when a key has no uses left.
type LimitError struct {
	UsageCount int
	MaxUses    int
}

func (e *LimitError) Error() string {
	return limitMessage(e.UsageCount, e.MaxUses)
}

func (e *LimitError) Unwrap() error {
	return repository.ErrUsageLimitReached
}

func limitMessage(used, max int) string {
	return fmt.Sprintf("Key has reached its usage limit (%d/%d uses)", used, max)
}

func newLimitError(k *model.AccessKey) error {
	return &LimitError{UsageCount: k.UsageCount, MaxUses: k.MaxUses}
}

type KeyService struct {
	repo repository.AccessKeyRepository
	log  *zap.Logger
	now  func() time.Time
}

func NewKeyService(repo repository.AccessKeyRepository, log *zap.Logger) *KeyService {
	return &KeyService{repo: repo, log: log, now: time.Now}
}

// ValidateKey never fails for an unknown or spent key; that is reported in the response.
func (s *KeyService) ValidateKey(name string) (*dto.ValidationResponse, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		metrics.KeyValidations.WithLabelValues("missing").Inc()
		return &dto.ValidationResponse{Valid: false, Message: MsgKeyRequired}, nil
	}

	key, err := s.repo.GetByName(name)
	if errors.Is(err, repository.ErrKeyNotFound) {
		metrics.KeyValidations.WithLabelValues("unknown").Inc()
		return &dto.ValidationResponse{Valid: false, Message: MsgInvalidKey}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load key: %w", err)
	}

	res := &dto.ValidationResponse{Valid: key.IsValid(), UsageInfo: usageInfo(key)}
	switch {
	case key.Unlimited():
		res.Message = MsgValidUnlimited
	case res.Valid:
		res.Message = fmt.Sprintf("Key is valid (%d uses remaining out of %d)", key.RemainingUses(), key.MaxUses)
	default:
		res.Message = limitMessage(key.UsageCount, key.MaxUses)
	}

	if res.Valid {
		metrics.KeyValidations.WithLabelValues("valid").Inc()
	} else {
		metrics.KeyValidations.WithLabelValues("depleted").Inc()
	}
	return res, nil
}

// GetCode issues the current TOTP code for a key and takes one use from it.
func (s *KeyService) GetCode(name string) (*dto.CodeResponse, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		metrics.CodeRequestsRejected.WithLabelValues("missing").Inc()
		return nil, ErrKeyRequired
	}

	key, err := s.repo.GetByName(name)
	if errors.Is(err, repository.ErrKeyNotFound) {
		metrics.CodeRequestsRejected.WithLabelValues("unknown").Inc()
		return nil, ErrInvalidKey
	}
	if err != nil {
		return nil, fmt.Errorf("load key: %w", err)
	}
	if !key.IsValid() {
		metrics.CodeRequestsRejected.WithLabelValues("depleted").Inc()
		return nil, newLimitError(key)
	}

	now := s.now()
	code, err := util.GenerateTOTPCode(key.Secret, now)
	if err != nil {
		s.log.Error("code generation failed", zap.String("key", name), zap.Error(err))
		return nil, fmt.Errorf("error generating TOTP code: %w", err)
	}

	updated, err := s.repo.ConsumeUse(name, now)
	switch {
	case errors.Is(err, repository.ErrUsageLimitReached):
		// another request took the last use between the read and the update
		metrics.CodeRequestsRejected.WithLabelValues("depleted").Inc()
		return nil, newLimitError(updated)
	case errors.Is(err, repository.ErrKeyNotFound):
		metrics.CodeRequestsRejected.WithLabelValues("unknown").Inc()
		return nil, ErrInvalidKey
	case err != nil:
		return nil, fmt.Errorf("failed to update key usage count: %w", err)
	}

	metrics.CodesIssued.Inc()
	s.log.Info("code issued",
		zap.String("key", name),
		zap.Int("usage_count", updated.UsageCount),
		zap.Int("max_uses", updated.MaxUses))

	return &dto.CodeResponse{Success: true, Code: code, UsageInfo: usageInfo(updated)}, nil
}

func (s *KeyService) KeyInfo(name string) (*dto.KeyInfoResponse, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrKeyRequired
	}
	key, err := s.repo.GetByName(name)
	if err != nil {
		return nil, err
	}

	info := usageInfo(key)
	created := key.CreatedAt
	return &dto.KeyInfoResponse{
		Exists:        true,
		MaxUses:       key.MaxUses,
		UsageCount:    key.UsageCount,
		RemainingUses: info.RemainingUses,
		IsValid:       key.IsValid(),
		Status:        string(key.Status()),
		LastUsed:      key.LastUsedAt,
		CreatedAt:     &created,
	}, nil
}

func usageInfo(k *model.AccessKey) *dto.UsageInfo {
	return &dto.UsageInfo{
		MaxUses:       k.MaxUses,
		UsageCount:    k.UsageCount,
		RemainingUses: dto.Remaining{Count: k.RemainingUses(), Unlimited: k.Unlimited()},
	}
}
