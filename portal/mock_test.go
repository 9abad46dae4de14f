package portal

import (
	"context"

	"github.com/stretchr/testify/mock"

	"keyportal/dto"
)

type MockAPI struct {
	mock.Mock
}

func (m *MockAPI) ValidateKey(ctx context.Context, key string) (*dto.ValidationResponse, error) {
	args := m.Called(ctx, key)
	res, _ := args.Get(0).(*dto.ValidationResponse)
	return res, args.Error(1)
}

func (m *MockAPI) GetCode(ctx context.Context, key string) (*dto.CodeResponse, error) {
	args := m.Called(ctx, key)
	res, _ := args.Get(0).(*dto.CodeResponse)
	return res, args.Error(1)
}

func messages(toasts []Toast) []string {
	out := make([]string, 0, len(toasts))
	for _, t := range toasts {
		out = append(out, t.Message)
	}
	return out
}
